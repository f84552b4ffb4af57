package main

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/Macora01/pdftoexcl/internal/extract"
)

type inspectResult struct {
	Rows       [][]string `json:"rows"`
	TotalRows  int        `json:"total_rows"`
	TotalPages int        `json:"total_pages"`
	Strategy   string     `json:"strategy"`
}

func newInspectCmd(newExtractor func() (*extract.Extractor, error)) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "inspect <input.pdf>",
		Short: "Print the rows extracted from a PDF as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readPDF(args[0])
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

			rows := res.Rows
			if limit > 0 && len(rows) > limit {
				rows = rows[:limit]
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(inspectResult{
				Rows:       rows,
				TotalRows:  res.TotalRows,
				TotalPages: res.TotalPages,
				Strategy:   string(extractor.Options().Strategy),
			})
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Rows to print (0 for all)")
	return cmd
}
