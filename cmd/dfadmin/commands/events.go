package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/fivetwenty-io/dfapi/pkg/dfapi"
)

// NewEventsCommand creates the events command group.
func NewEventsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "events",
		Aliases: []string{"event"},
		Short:   "Manage event listeners",
	}

	cmd.AddCommand(newEventsListCommand())
	cmd.AddCommand(newEventsListenerCommand("register", "Register listeners for an event", true))
	cmd.AddCommand(newEventsListenerCommand("unregister", "Remove listeners from an event", false))

	return cmd
}

func newEventsListCommand() *cobra.Command {
	var allEvents, asCached bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List events and their listeners",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := createClient()
			if err != nil {
				return err
			}

			events, err := c.Events().List(context.Background(), allEvents, asCached)
			if err != nil {
				return fmt.Errorf("failed to list events: %w", err)
			}

			handled, err := writeStructured(cmd.OutOrStdout(), events)
			if handled {
				return err
			}

			rows := eventRows(events)
			if len(rows) == 0 {
				printf(cmd, "No events found\n")

				return nil
			}

			return renderTable(cmd.OutOrStdout(), []string{"Family", "Path", "Verb", "Event", "Listeners"}, rows)
		},
	}

	cmd.Flags().BoolVar(&allEvents, "all", false, "include events without listeners")
	cmd.Flags().BoolVar(&asCached, "as-cached", false, "return the server's cached event map")

	return cmd
}

func eventRows(events []dfapi.EventCache) [][]string {
	var rows [][]string

	for _, family := range events {
		for _, path := range family.Paths {
			for _, verb := range path.Verbs {
				for _, event := range verb.Event {
					rows = append(rows, []string{
						deref(family.Name),
						deref(path.Path),
						strings.ToUpper(deref(verb.Type)),
						event,
						strings.Join(verb.Listeners, ", "),
					})
				}
			}
		}
	}

	return rows
}

func newEventsListenerCommand(use, short string, register bool) *cobra.Command {
	return &cobra.Command{
		Use:   use + " EVENT SCRIPT [SCRIPT...]",
		Short: short,
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := createClient()
			if err != nil {
				return err
			}

			requests := []dfapi.EventRequest{{EventName: args[0], Listeners: args[1:]}}

			if register {
				err = c.Events().Register(context.Background(), requests)
			} else {
				err = c.Events().Unregister(context.Background(), requests)
			}

			if err != nil {
				return fmt.Errorf("failed to %s listeners for %s: %w", use, args[0], err)
			}

			printf(cmd, "%sed %d listener(s) for %s\n", cases.Title(language.English).String(use), len(args)-1, args[0])

			return nil
		},
	}
}
