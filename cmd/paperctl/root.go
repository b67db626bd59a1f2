package main

import (
	"github.com/spf13/cobra"

	"github.com/markdave123-py/Scholara/internal/config"
)

// loadConfig is swapped in tests.
var loadConfig = config.LoadConfig

var rootCmd = &cobra.Command{
	Use:   "paperctl",
	Short: "Generate research papers from PDFs and web pages",
	Long: `paperctl manages the list of research sources, extracts and chunks
their text, and asks a language model to write a structured markdown paper
on the configured topic.`,
	SilenceUsage: true,
}
