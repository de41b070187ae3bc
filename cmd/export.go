package main

import (
	"fmt"
	"strconv"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"github.com/tealeg/xlsx/v2"

	"github.com/ledgerline/ingest-cli/internal/store"
)

var (
	exportOut    string
	exportSource string
	exportLimit  int
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export recorded feedback to an XLSX workbook",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		items, err := st.ListRecentFeedback(ctx, store.FeedbackFilter{
			Source: exportSource,
			Limit:  exportLimit,
		})
		if err != nil {
			return eris.Wrap(err, "list feedback")
		}

		file := xlsx.NewFile()
		sheet, err := file.AddSheet("Feedback")
		if err != nil {
			return eris.Wrap(err, "add sheet")
		}

		header := sheet.AddRow()
		for _, h := range []string{"ID", "Source", "Category", "Accepted", "Confidence", "Amount", "Description", "Created At"} {
			header.AddCell().SetString(h)
		}

		for _, fb := range items {
			row := sheet.AddRow()
			row.AddCell().SetString(fb.ID)
			row.AddCell().SetString(fb.Source)
			row.AddCell().SetString(string(fb.Category))
			row.AddCell().SetString(strconv.FormatBool(fb.Accepted))
			row.AddCell().SetFloat(fb.Confidence)
			row.AddCell().SetFloat(fb.Amount)
			row.AddCell().SetString(fb.Description)
			row.AddCell().SetString(fb.CreatedAt.Format("2006-01-02 15:04:05"))
		}

		if err := file.Save(exportOut); err != nil {
			return eris.Wrapf(err, "save %s", exportOut)
		}
		fmt.Printf("Exported %d feedback rows to %s\n", len(items), exportOut)
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVar(&exportOut, "out", "feedback.xlsx", "output workbook path")
	exportCmd.Flags().StringVar(&exportSource, "source", "", "filter by source form (bill|expense)")
	exportCmd.Flags().IntVar(&exportLimit, "limit", 500, "maximum rows to export")
	rootCmd.AddCommand(exportCmd)
}
