package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/markdave123-py/Scholara/internal/app"
	"github.com/markdave123-py/Scholara/internal/services"
)

var sourcesJSON bool

var sourcesCmd = &cobra.Command{
	Use:   "sources",
	Short: "Manage research sources and the topic",
}

var sourcesListCmd = &cobra.Command{
	Use:   "list",
	Short: "Show the topic, PDFs and URLs",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		set := sourceService().Snapshot()
		out := cmd.OutOrStdout()
		if sourcesJSON {
			data, err := json.MarshalIndent(set, "", "  ")
			if err != nil {
				return fmt.Errorf("failed to marshal sources: %w", err)
			}
			fmt.Fprintln(out, string(data))
			return nil
		}

		fmt.Fprintf(out, "Topic: %s\n", set.Topic)
		fmt.Fprintf(out, "PDFs (%d):\n", len(set.PDFs))
		for _, p := range set.PDFs {
			fmt.Fprintf(out, "  - %s\n", p)
		}
		fmt.Fprintf(out, "URLs (%d):\n", len(set.URLs))
		for _, u := range set.URLs {
			fmt.Fprintf(out, "  - %s\n", u)
		}
		return nil
	},
}

// mutation builds a subcommand that applies fn to the source service and
// reports done on success.
func mutation(use, short string, posArgs cobra.PositionalArgs, done string, fn func(*services.SourceService, []string) error) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  posArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := fn(sourceService(), args); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), done)
			return nil
		},
	}
}

func init() {
	sourcesListCmd.Flags().BoolVar(&sourcesJSON, "json", false, "output the source set as JSON")

	sourcesCmd.AddCommand(
		sourcesListCmd,
		mutation("add-pdf [path]", "Add a local PDF", cobra.ExactArgs(1), "PDF added.",
			func(s *services.SourceService, a []string) error { return s.AddPDF(a[0]) }),
		mutation("add-url [url]", "Add a web page", cobra.ExactArgs(1), "URL added.",
			func(s *services.SourceService, a []string) error { return s.AddURL(a[0]) }),
		mutation("remove-pdf [path]", "Remove a PDF", cobra.ExactArgs(1), "PDF removed.",
			func(s *services.SourceService, a []string) error { return s.RemovePDF(a[0]) }),
		mutation("remove-url [url]", "Remove a web page", cobra.ExactArgs(1), "URL removed.",
			func(s *services.SourceService, a []string) error { return s.RemoveURL(a[0]) }),
		mutation("clear", "Remove every source, keeping the topic", cobra.NoArgs, "Sources cleared.",
			func(s *services.SourceService, _ []string) error { return s.Clear() }),
		mutation("topic [topic]", "Set the research topic", cobra.MinimumNArgs(1), "Topic updated.",
			func(s *services.SourceService, a []string) error { return s.SetTopic(strings.Join(a, " ")) }),
		mutation("samples", "Replace the sources with the bundled samples", cobra.NoArgs, "Sample sources loaded.",
			func(s *services.SourceService, _ []string) error { return s.LoadSamples() }),
	)
	rootCmd.AddCommand(sourcesCmd)
}

func sourceService() *services.SourceService {
	return app.NewSourceService(loadConfig())
}
