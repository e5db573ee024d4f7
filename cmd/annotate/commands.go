package main

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	annotate "github.com/goliatone/go-annotate"
	"github.com/spf13/cobra"
)

func newModelsCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "models",
		Short: "Add schema information to model files",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.invoke(cmd, "annotate_models")
		},
	}
}

func newRoutesCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "routes",
		Short: "Prepend the route map to the routes file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.invoke(cmd, "annotate_routes")
		},
	}
}

func newRemoveCmd(c *cli) *cobra.Command {
	var routes bool
	cmd := &cobra.Command{
		Use:   "remove",
		Short: "Remove model annotations, or route annotations with --routes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if routes {
				return c.invoke(cmd, "remove_routes")
			}
			return c.invoke(cmd, "remove_annotation")
		},
	}
	cmd.Flags().BoolVar(&routes, "routes", false, "remove route annotations instead")
	return cmd
}

func newRunCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "run TASK...",
		Short: "Run tasks by name",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.invoke(cmd, args...)
		},
	}
}

func newMigrateHookCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate-hook",
		Short: "Refresh annotations after a schema migration",
		Long: `Runs annotate_after_migrate. Nothing happens when
ANNOTATE_SKIP_ON_DB_MIGRATE or skip_on_db_migrate is true; models and
routes are refreshed when the matching option is true.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.invoke(cmd, "annotate_after_migrate")
		},
	}
}

func newTasksCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "tasks",
		Short: "List defined tasks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := c.open(cmd)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, titleStyle.Render("Tasks"))
			for _, task := range s.runner.Tasks() {
				line := "  " + keyStyle.Render(task.Name)
				if task.Description != "" {
					line += "  " + subtitleStyle.Render(task.Description)
				}
				if len(task.Prerequisites) > 0 {
					line += subtitleStyle.Render(" (after " + strings.Join(task.Prerequisites, ", ") + ")")
				}
				fmt.Fprintln(out, line)
			}
			return nil
		},
	}
}

func newOptionsCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "options",
		Short: "Inspect annotation options",
	}
	cmd.AddCommand(newOptionsShowCmd(c), newOptionsExplainCmd(c), newOptionsSchemaCmd())
	return cmd
}

func newOptionsShowCmd(c *cli) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show the resolved options",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := c.open(cmd)
			if err != nil {
				return err
			}
			resolved := s.runtime.SetupOptions()
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), resolved.Map())
			}
			printResolved(cmd.OutOrStdout(), resolved)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print as JSON")
	return cmd
}

func newOptionsExplainCmd(c *cli) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "explain KEY",
		Short: "Show which layer supplied an option",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !annotate.IsOption(args[0]) {
				return fmt.Errorf("unknown option %q", args[0])
			}
			s, err := c.open(cmd)
			if err != nil {
				return err
			}
			trace := s.runtime.Trace(annotate.Key(args[0]))
			out := cmd.OutOrStdout()
			if asJSON {
				payload, err := trace.ToJSON()
				if err != nil {
					return err
				}
				_, err = fmt.Fprintln(out, string(payload))
				return err
			}
			printTrace(out, trace)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print as JSON")
	return cmd
}

func newOptionsSchemaCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "Describe every recognized option",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return writeJSON(cmd.OutOrStdout(), annotate.Describe())
		},
	}
}

func printResolved(w io.Writer, resolved annotate.ResolvedOptions) {
	groups := []struct {
		title string
		keys  []annotate.Key
	}{
		{"Positions", annotate.PositionOptions()},
		{"Flags", annotate.FlagOptions()},
		{"Paths", annotate.PathOptions()},
		{"Other", annotate.OtherOptions()},
	}
	for _, group := range groups {
		fmt.Fprintln(w, titleStyle.Render(group.title))
		keys := group.keys
		sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
		for _, key := range keys {
			fmt.Fprintf(w, "  %s = %v\n", keyStyle.Render(string(key)), formatValue(resolved.Value(key)))
		}
	}
}

func printTrace(w io.Writer, trace annotate.Trace) {
	fmt.Fprintln(w, titleStyle.Render(string(trace.Key)))
	if scope, ok := trace.Winner(); ok {
		fmt.Fprintf(w, "  value %q from %s\n", trace.Value, keyStyle.Render(scope.Name))
	} else {
		fmt.Fprintln(w, subtitleStyle.Render("  not set in any layer"))
	}
	for _, layer := range trace.Layers {
		marker := " "
		if layer.Found {
			marker = "*"
		}
		fmt.Fprintf(w, "  %s %-12s %q\n", marker, layer.Scope.Name, layer.Value)
	}
}

func formatValue(value any) string {
	switch v := value.(type) {
	case nil:
		return subtitleStyle.Render("(unset)")
	case []string:
		return "[" + strings.Join(v, ", ") + "]"
	default:
		return fmt.Sprint(v)
	}
}

func writeJSON(w io.Writer, value any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(value)
}
