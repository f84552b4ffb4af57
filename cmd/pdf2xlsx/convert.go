package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/Macora01/pdftoexcl/internal/core"
	"github.com/Macora01/pdftoexcl/internal/extract"
	"github.com/Macora01/pdftoexcl/internal/xlsx"
)

func newConvertCmd(newExtractor func() (*extract.Extractor, error)) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "convert <input.pdf>",
		Short: "Convert a PDF to an Excel workbook",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			input := args[0]
			data, err := readPDF(input)
			if err != nil {
				return err
			}
			extractor, err := newExtractor()
			if err != nil {
				return err
			}

			res, err := extractor.Extract(cmd.Context(), data)
			if err != nil {
				return err
			}
			if res.TotalRows == 0 {
				return &core.ValidationError{Code: core.CodeNoData, Message: core.Lookup(core.CodeNoData).Message}
			}

			if output == "" {
				output = filepath.Join(filepath.Dir(input), core.DownloadFilename(input))
			}
			if err := xlsx.RenderFile(res.Rows, output); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s: %d rows from %d pages\n", output, res.TotalRows, res.TotalPages)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output workbook path (default: input name with .xlsx)")
	return cmd
}
