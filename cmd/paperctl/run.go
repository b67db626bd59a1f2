package main

import (
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/spf13/cobra"

	"github.com/markdave123-py/Scholara/internal/app"
	"github.com/markdave123-py/Scholara/internal/core/ingestion_engine"
	"github.com/markdave123-py/Scholara/internal/models"
)

const previewChars = 500

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Generate a research paper from the configured sources",
	Long: `Extracts text from every configured PDF and URL, chunks it, optionally
indexes the chunks, and asks the language model for a paper on the topic.
Sources that fail are reported and skipped.`,
	Args: cobra.NoArgs,
	RunE: runPipeline,
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func runPipeline(cmd *cobra.Command, _ []string) error {
	cfg := loadConfig()
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	a, err := app.NewApp(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	out := cmd.OutOrStdout()
	set := a.Sources.Snapshot()
	fmt.Fprintf(out, "Generating a paper on %q from %d sources\n", set.Topic, len(set.PDFs)+len(set.URLs))

	report, err := a.Pipeline.Run(cmd.Context(), set, ingestion_engine.ObserverFuncs{
		Stage: func(s ingestion_engine.Stage) {
			fmt.Fprintf(out, "==> %s\n", s)
		},
		Progress: func(f float64) {
			fmt.Fprintf(out, "    %3.0f%% of sources processed\n", f*100)
		},
	})
	printReport(out, report)
	return err
}

func printReport(out io.Writer, report *models.RunReport) {
	if report == nil {
		return
	}
	fmt.Fprintf(out, "Sources used: %d/%d\n", report.Succeeded, report.TotalSources)
	for _, f := range report.Failures {
		fmt.Fprintf(out, "  skipped %s %s: %s\n", f.Source.Kind, f.Source.Ref, f.Reason)
	}
	if report.Paper == nil {
		return
	}
	if report.Paper.Truncated {
		fmt.Fprintf(out, "Note: source text was truncated (%d chars dropped)\n", report.Paper.DroppedChars)
	}

	fmt.Fprintln(out, "\n--- Preview ---")
	fmt.Fprintln(out, preview(report.Paper.Content, previewChars))
	fmt.Fprintln(out, "---------------")
	if report.OutputPath != "" {
		fmt.Fprintf(out, "Paper saved to %s\n", report.OutputPath)
	}
	if report.RemoteURL != "" {
		fmt.Fprintf(out, "Published at %s\n", report.RemoteURL)
	}
}

// preview returns the first n code points of s, with an ellipsis when cut.
func preview(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n]) + "..."
}
