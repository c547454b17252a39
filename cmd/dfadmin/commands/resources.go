package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/fivetwenty-io/dfapi/internal/constants"
	"github.com/fivetwenty-io/dfapi/pkg/dfapi"
)

// ResourceConfig describes one record collection exposed as a command group.
type ResourceConfig[T any] struct {
	Use     string
	Aliases []string
	Short   string
	Long    string
	Codec   *dfapi.Codec[T]
	// Columns are wire keys shown in table output.
	Columns []string
	Client  func(dfapi.Client) dfapi.ResourceClient[T]
}

type listOptions struct {
	filter       string
	order        string
	fields       []string
	related      []string
	ids          []int
	limit        int
	offset       int
	includeCount bool
}

// NewResourceCommand creates list, get, create, update and delete
// subcommands for a record collection.
func NewResourceCommand[T any](config ResourceConfig[T]) *cobra.Command {
	cmd := &cobra.Command{
		Use:     config.Use,
		Aliases: config.Aliases,
		Short:   config.Short,
		Long:    config.Long,
	}

	cmd.AddCommand(newResourceListCommand(config))
	cmd.AddCommand(newResourceGetCommand(config))
	cmd.AddCommand(newResourceCreateCommand(config))
	cmd.AddCommand(newResourceUpdateCommand(config))
	cmd.AddCommand(newResourceDeleteCommand(config))

	return cmd
}

func newResourceListCommand[T any](config ResourceConfig[T]) *cobra.Command {
	opts := &listOptions{}

	cmd := &cobra.Command{
		Use:   "list",
		Short: fmt.Sprintf("List %ss", config.Codec.Kind),
		RunE: func(cmd *cobra.Command, args []string) error {
			query, err := buildQuery(config.Codec, opts)
			if err != nil {
				return err
			}

			c, err := createClient()
			if err != nil {
				return err
			}

			records, err := config.Client(c).List(context.Background(), query)
			if err != nil {
				return fmt.Errorf("failed to list %ss: %w", config.Codec.Kind, err)
			}

			return outputRecords(cmd, config, records)
		},
	}

	cmd.Flags().StringVar(&opts.filter, "filter", "", "filter expression, e.g. \"is_active=true\"")
	cmd.Flags().StringVar(&opts.order, "order", "", "order clause, e.g. \"name desc\"")
	cmd.Flags().StringSliceVar(&opts.fields, "fields", nil, "fields to return (default all)")
	cmd.Flags().StringSliceVar(&opts.related, "related", nil, "related records to expand (default all)")
	cmd.Flags().IntSliceVar(&opts.ids, "ids", nil, "only return these ids")
	cmd.Flags().IntVar(&opts.limit, "limit", constants.DefaultListLimit, "maximum number of records")
	cmd.Flags().IntVar(&opts.offset, "offset", 0, "index of the first record")
	cmd.Flags().BoolVar(&opts.includeCount, "include-count", false, "ask the server for the total count")

	return cmd
}

func buildQuery[T any](codec *dfapi.Codec[T], opts *listOptions) (*dfapi.Query, error) {
	query := dfapi.NewQuery()

	if opts.filter != "" {
		query.WithFilter(opts.filter)
	}

	if opts.order != "" {
		query.WithOrder(opts.order)
	}

	if len(opts.fields) > 0 {
		query.WithFields(opts.fields...)
	}

	if len(opts.related) > 0 && opts.related[0] != constants.AllSentinel {
		keys, err := codec.RelatedKeys(opts.related...)
		if err != nil {
			return nil, err
		}

		query.WithRelated(keys...)
	}

	if len(opts.ids) > 0 {
		query.WithIDs(opts.ids...)
	}

	if opts.limit > 0 {
		query.WithLimit(opts.limit)
	}

	if opts.offset != 0 {
		query.WithOffset(opts.offset)
	}

	if opts.includeCount {
		query.WithIncludeCount(true)
	}

	err := query.Validate()
	if err != nil {
		return nil, err
	}

	return query, nil
}

func newResourceGetCommand[T any](config ResourceConfig[T]) *cobra.Command {
	var (
		fields  []string
		related []string
	)

	cmd := &cobra.Command{
		Use:   "get ID",
		Short: fmt.Sprintf("Get a %s by id", config.Codec.Kind),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseIDs(args)
			if err != nil {
				return err
			}

			query, err := buildQuery(config.Codec, &listOptions{fields: fields, related: related})
			if err != nil {
				return err
			}

			c, err := createClient()
			if err != nil {
				return err
			}

			record, err := config.Client(c).Get(context.Background(), ids[0], query)
			if err != nil {
				return fmt.Errorf("failed to get %s %d: %w", config.Codec.Kind, ids[0], err)
			}

			return outputRecord(cmd, config, record)
		},
	}

	cmd.Flags().StringSliceVar(&fields, "fields", nil, "fields to return (default all)")
	cmd.Flags().StringSliceVar(&related, "related", nil, "related records to expand (default all)")

	return cmd
}

func newResourceCreateCommand[T any](config ResourceConfig[T]) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "create",
		Short: fmt.Sprintf("Create %ss from a JSON or YAML file", config.Codec.Kind),
		Long: fmt.Sprintf("Create one or more %ss in a single batch. Use --file - to read from stdin. "+
			"If any record is rejected the whole batch is rejected.", config.Codec.Kind),
		RunE: func(cmd *cobra.Command, args []string) error {
			records, err := readRecords[T](file)
			if err != nil {
				return err
			}

			c, err := createClient()
			if err != nil {
				return err
			}

			created, err := config.Client(c).Create(context.Background(), records)
			if err != nil {
				return fmt.Errorf("failed to create %ss: %w", config.Codec.Kind, err)
			}

			return outputRecords(cmd, config, created)
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "file containing the records")

	return cmd
}

func newResourceUpdateCommand[T any](config ResourceConfig[T]) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "update",
		Short: fmt.Sprintf("Patch %ss from a JSON or YAML file", config.Codec.Kind),
		Long:  "Every record must carry its id. Only the fields present are changed.",
		RunE: func(cmd *cobra.Command, args []string) error {
			records, err := readRecords[T](file)
			if err != nil {
				return err
			}

			c, err := createClient()
			if err != nil {
				return err
			}

			updated, err := config.Client(c).Update(context.Background(), records)
			if err != nil {
				return fmt.Errorf("failed to update %ss: %w", config.Codec.Kind, err)
			}

			return outputRecords(cmd, config, updated)
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "file containing the records")

	return cmd
}

func newResourceDeleteCommand[T any](config ResourceConfig[T]) *cobra.Command {
	var params []string

	cmd := &cobra.Command{
		Use:   "delete ID [ID...]",
		Short: fmt.Sprintf("Delete %ss by id", config.Codec.Kind),
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseIDs(args)
			if err != nil {
				return err
			}

			opts, err := deleteOptions(params)
			if err != nil {
				return err
			}

			c, err := createClient()
			if err != nil {
				return err
			}

			err = config.Client(c).Delete(context.Background(), ids, opts...)
			if err != nil {
				return fmt.Errorf("failed to delete %ss: %w", config.Codec.Kind, err)
			}

			printf(cmd, "Deleted %d %s(s): %s\n", len(ids), config.Codec.Kind, dfapi.JoinIDs(ids))

			return nil
		},
	}

	cmd.Flags().StringArrayVar(&params, "param", nil, "extra query parameter as key=value (repeatable)")

	return cmd
}

func deleteOptions(params []string) ([]dfapi.DeleteOption, error) {
	opts := make([]dfapi.DeleteOption, 0, len(params))

	for _, pair := range params {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("%w: %s", constants.ErrInvalidKeyValue, pair)
		}

		opts = append(opts, dfapi.WithDeleteParam(key, value))
	}

	return opts, nil
}

func outputRecords[T any](cmd *cobra.Command, config ResourceConfig[T], records []T) error {
	redacted := make([]T, len(records))
	for i, record := range records {
		redacted[i] = redact(record)
	}

	records = redacted

	handled, err := writeStructured(cmd.OutOrStdout(), records)
	if handled {
		return err
	}

	if len(records) == 0 {
		printf(cmd, "No %ss found\n", config.Codec.Kind)

		return nil
	}

	rows := make([][]string, 0, len(records))

	for _, record := range records {
		row, err := toRow(record)
		if err != nil {
			return err
		}

		cells := make([]string, len(config.Columns))
		for i, column := range config.Columns {
			cells[i] = formatCell(row[column])
		}

		rows = append(rows, cells)
	}

	return renderTable(cmd.OutOrStdout(), headers(config.Columns), rows)
}

func outputRecord[T any](cmd *cobra.Command, config ResourceConfig[T], record *T) error {
	if record != nil {
		redacted := redact(*record)
		record = &redacted
	}

	handled, err := writeStructured(cmd.OutOrStdout(), record)
	if handled {
		return err
	}

	row, err := toRow(record)
	if err != nil {
		return err
	}

	props := make(map[string]string, len(row))
	for key, value := range row {
		props[key] = formatCell(value)
	}

	return renderProperties(cmd.OutOrStdout(), props)
}

// redact masks write-only fields on a copy of record.
func redact[T any](record T) T {
	if user, ok := any(&record).(*dfapi.User); ok && user.Password != nil {
		user.Password = dfapi.String(Masked)
	}

	return record
}

func headers(columns []string) []string {
	out := make([]string, len(columns))
	for i, column := range columns {
		out[i] = strings.ToUpper(strings.ReplaceAll(column, "_", " "))
	}

	return out
}

// NewResourceCommands creates the command groups for every record collection
// except apps, which has its own group.
func NewResourceCommands() []*cobra.Command {
	return []*cobra.Command{
		NewResourceCommand(ResourceConfig[dfapi.AppGroup]{
			Use:     "app-groups",
			Aliases: []string{"app-group"},
			Short:   "Manage app groups",
			Codec:   dfapi.AppGroupCodec,
			Columns: []string{"id", "name", "description"},
			Client:  func(c dfapi.Client) dfapi.ResourceClient[dfapi.AppGroup] { return c.AppGroups() },
		}),
		NewResourceCommand(ResourceConfig[dfapi.Role]{
			Use:     "roles",
			Aliases: []string{"role"},
			Short:   "Manage roles",
			Codec:   dfapi.RoleCodec,
			Columns: []string{"id", "name", "is_active", "default_app_id", "description"},
			Client:  func(c dfapi.Client) dfapi.ResourceClient[dfapi.Role] { return c.Roles() },
		}),
		NewResourceCommand(ResourceConfig[dfapi.User]{
			Use:     "users",
			Aliases: []string{"user"},
			Short:   "Manage users",
			Codec:   dfapi.UserCodec,
			Columns: []string{"id", "name", "email", "is_active", "is_sys_admin", "last_login_date"},
			Client:  func(c dfapi.Client) dfapi.ResourceClient[dfapi.User] { return c.Users() },
		}),
		NewResourceCommand(ResourceConfig[dfapi.Service]{
			Use:     "services",
			Aliases: []string{"service"},
			Short:   "Manage services",
			Codec:   dfapi.ServiceCodec,
			Columns: []string{"id", "name", "label", "type", "is_active"},
			Client:  func(c dfapi.Client) dfapi.ResourceClient[dfapi.Service] { return c.Services() },
		}),
		NewResourceCommand(ResourceConfig[dfapi.EmailTemplate]{
			Use:     "email-templates",
			Aliases: []string{"email-template"},
			Short:   "Manage email templates",
			Codec:   dfapi.EmailTemplateCodec,
			Columns: []string{"id", "name", "subject", "from_email"},
			Client:  func(c dfapi.Client) dfapi.ResourceClient[dfapi.EmailTemplate] { return c.EmailTemplates() },
		}),
		NewResourceCommand(ResourceConfig[dfapi.Device]{
			Use:     "devices",
			Aliases: []string{"device"},
			Short:   "Manage registered devices",
			Codec:   dfapi.DeviceCodec,
			Columns: []string{"id", "user_id", "platform", "model", "version"},
			Client:  func(c dfapi.Client) dfapi.ResourceClient[dfapi.Device] { return c.Devices() },
		}),
		NewResourceCommand(ResourceConfig[dfapi.Provider]{
			Use:     "providers",
			Aliases: []string{"provider"},
			Short:   "Manage login providers",
			Codec:   dfapi.ProviderCodec,
			Columns: []string{"id", "provider_name", "api_name", "is_active", "is_login_provider"},
			Client:  func(c dfapi.Client) dfapi.ResourceClient[dfapi.Provider] { return c.Providers() },
		}),
		NewResourceCommand(ResourceConfig[dfapi.ProviderUser]{
			Use:     "provider-users",
			Aliases: []string{"provider-user"},
			Short:   "Manage provider user links",
			Codec:   dfapi.ProviderUserCodec,
			Columns: []string{"id", "user_id", "provider_id", "provider_user_id", "last_use_date"},
			Client:  func(c dfapi.Client) dfapi.ResourceClient[dfapi.ProviderUser] { return c.ProviderUsers() },
		}),
	}
}
