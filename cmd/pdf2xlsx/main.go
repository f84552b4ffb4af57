// Command pdf2xlsx converts PDF documents to workbooks without the server.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Macora01/pdftoexcl/internal/core"
	"github.com/Macora01/pdftoexcl/internal/extract"
	"github.com/Macora01/pdftoexcl/internal/logging"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		if core.IsUserFacing(err) {
			fmt.Fprintln(os.Stderr, core.FormatUserError(err))
		} else {
			fmt.Fprintln(os.Stderr, "error:", err)
		}
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		strategy string
		logLevel string
	)

	root := &cobra.Command{
		Use:           "pdf2xlsx",
		Short:         "Extract tables and text from PDF files into Excel workbooks",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logging.Setup(logLevel, "text")
		},
	}
	root.PersistentFlags().StringVar(&strategy, "strategy", string(extract.StrategyLines), "Table detection: lines, text or auto")
	root.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "Log level: debug, info, warn, error")

	newExtractor := func() (*extract.Extractor, error) {
		st, err := extract.ParseStrategy(strategy)
		if err != nil {
			return nil, err
		}
		opts := extract.DefaultOptions()
		opts.Strategy = st
		return extract.New(opts), nil
	}

	root.AddCommand(newConvertCmd(newExtractor), newInspectCmd(newExtractor))
	return root
}

// readPDF loads path, applying the same checks as the upload endpoint.
func readPDF(path string) ([]byte, error) {
	if !core.IsPDFFilename(path) {
		return nil, &core.ValidationError{Code: core.CodeNotPDF, Message: core.Lookup(core.CodeNotPDF).Message}
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return data, nil
}
