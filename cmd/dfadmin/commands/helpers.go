package commands

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/fivetwenty-io/dfapi/internal/constants"
)

// Common string constants used throughout the commands package.
const (
	NotAvailable = "N/A"

	// Output formats.
	OutputFormatJSON  = "json"
	OutputFormatYAML  = "yaml"
	OutputFormatTable = "table"

	Yes    = "yes"
	No     = "no"
	True   = "true"
	False  = "false"
	Masked = "***"
)

// writeStructured encodes value as JSON or YAML. It reports false when the
// selected format is a table.
func writeStructured(out io.Writer, value any) (bool, error) {
	switch viper.GetString("output") {
	case OutputFormatJSON:
		encoder := json.NewEncoder(out)
		encoder.SetIndent("", "  ")

		return true, encoder.Encode(value)
	case OutputFormatYAML:
		return true, yaml.NewEncoder(out).Encode(value)
	default:
		return false, nil
	}
}

func renderTable(out io.Writer, header []string, rows [][]string) error {
	table := tablewriter.NewWriter(out)
	table.Header(toAny(header)...)

	for _, row := range rows {
		_ = table.Append(row)
	}

	err := table.Render()
	if err != nil {
		return fmt.Errorf("failed to render table: %w", err)
	}

	return nil
}

func renderProperties(out io.Writer, props map[string]string) error {
	keys := make([]string, 0, len(props))
	for key := range props {
		keys = append(keys, key)
	}

	sort.Strings(keys)

	rows := make([][]string, 0, len(keys))
	for _, key := range keys {
		rows = append(rows, []string{key, props[key]})
	}

	return renderTable(out, []string{"Property", "Value"}, rows)
}

func toAny(values []string) []any {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = v
	}

	return out
}

// toRow flattens a record into its wire map so tables can pick columns by
// wire key.
func toRow(record any) (map[string]any, error) {
	data, err := json.Marshal(record)
	if err != nil {
		return nil, fmt.Errorf("failed to encode record: %w", err)
	}

	row := make(map[string]any)

	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.UseNumber()

	err = decoder.Decode(&row)
	if err != nil {
		return nil, fmt.Errorf("failed to decode record: %w", err)
	}

	return row, nil
}

func formatCell(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case bool:
		if v {
			return Yes
		}

		return No
	case []any:
		return strconv.Itoa(len(v))
	case map[string]any:
		if name, ok := v["name"].(string); ok {
			return name
		}

		return NotAvailable
	default:
		return fmt.Sprint(v)
	}
}

func parseIDs(args []string) ([]int, error) {
	ids := make([]int, 0, len(args))

	for _, arg := range args {
		for _, part := range strings.Split(arg, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}

			id, err := strconv.Atoi(part)
			if err != nil {
				return nil, fmt.Errorf("invalid id %q: %w", part, err)
			}

			ids = append(ids, id)
		}
	}

	if len(ids) == 0 {
		return nil, constants.ErrAtLeastOneIDNeeded
	}

	return ids, nil
}

// parseKeyValues turns key=value pairs into a map. Values that parse as
// numbers or booleans keep that type.
func parseKeyValues(pairs []string) (map[string]any, error) {
	params := make(map[string]any, len(pairs))

	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("%w: %s", constants.ErrInvalidKeyValue, pair)
		}

		params[key] = typedValue(value)
	}

	return params, nil
}

func typedValue(value string) any {
	if i, err := strconv.Atoi(value); err == nil {
		return i
	}

	if b, err := strconv.ParseBool(value); err == nil && (value == True || value == False) {
		return b
	}

	return value
}

// readRecords loads a JSON or YAML list of records. A single object is
// accepted as a list of one.
func readRecords[T any](path string) ([]T, error) {
	if path == "" {
		return nil, constants.ErrRecordFileRequired
	}

	var (
		data []byte
		err  error
	)

	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to read record file: %w", err)
	}

	trimmed := bytes.TrimSpace(data)

	if bytes.HasPrefix(trimmed, []byte("[")) || bytes.HasPrefix(trimmed, []byte("{")) {
		return decodeJSONRecords[T](trimmed)
	}

	var records []T

	err = yaml.Unmarshal(trimmed, &records)
	if err == nil {
		return records, nil
	}

	var single T

	if yaml.Unmarshal(trimmed, &single) == nil {
		return []T{single}, nil
	}

	return nil, fmt.Errorf("%w: %w", constants.ErrInvalidRecordFormat, err)
}

func decodeJSONRecords[T any](data []byte) ([]T, error) {
	if data[0] == '{' {
		var single T

		err := json.Unmarshal(data, &single)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", constants.ErrInvalidRecordFormat, err)
		}

		return []T{single}, nil
	}

	var records []T

	err := json.Unmarshal(data, &records)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", constants.ErrInvalidRecordFormat, err)
	}

	return records, nil
}

func printf(cmd *cobra.Command, format string, args ...any) {
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), format, args...)
}
