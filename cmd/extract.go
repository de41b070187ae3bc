package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ledgerline/ingest-cli/internal/extractor"
	"github.com/ledgerline/ingest-cli/internal/ingest"
	"github.com/ledgerline/ingest-cli/internal/match"
	"github.com/ledgerline/ingest-cli/internal/model"
	"github.com/ledgerline/ingest-cli/internal/score"
)

var (
	extractFile   string
	extractType   string
	extractLocale string
)

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Extract structured fields from a document",
	Long:  "Sends document text (from --file or stdin) to the extraction backend and prints the extracted fields, a completeness score, and a vendor suggestion.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		text, err := readInput(extractFile)
		if err != nil {
			return err
		}

		client := newBackend()
		locale := extractLocale
		if locale == "" {
			locale = cfg.Ingest.Locale
		}

		result, err := client.ExtractDocument(ctx, extractor.ExtractRequest{
			Text:   text,
			Type:   model.DocumentKind(extractType),
			Locale: locale,
		})
		if err != nil {
			return eris.Wrap(err, "extract")
		}

		mapping := ingest.BillsMapping()
		if extractType == "receipt" {
			mapping = ingest.ExpensesMapping()
		}

		printExtraction(os.Stdout, result, mapping)

		// Vendor suggestion against known contacts, best effort.
		if result.VendorName != "" {
			contacts, err := client.ListContacts(ctx)
			if err != nil {
				zap.L().Warn("contact list unavailable", zap.Error(err))
			} else if best := (match.TokenOverlap{Threshold: cfg.Ingest.MatchThreshold}).Best(result.VendorName, contacts); best != nil {
				fmt.Printf("\nSuggested vendor: %s (%.0f%% match)\n", best.Contact.Name, best.Score*100)
			}
		}
		return nil
	},
}

func readInput(path string) (string, error) {
	if path == "" || path == "-" {
		raw, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", eris.Wrap(err, "read stdin")
		}
		return string(raw), nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", eris.Wrapf(err, "read %s", path)
	}
	return string(raw), nil
}

func printExtraction(w io.Writer, result *model.ExtractionResult, mapping *model.FieldMapping) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, rule := range mapping.Rules {
		value := result.Field(rule.Source)
		if value == "" {
			continue
		}
		conf := ""
		if c, ok := result.Confidence[rule.Source]; ok {
			conf = fmt.Sprintf("%.0f%%", c*100)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", rule.Label, value, conf)
	}
	tw.Flush()

	s := score.Completeness(result, mapping.RequiredFields())
	fmt.Fprintf(w, "\nCompleteness: %d/%d (%d%%)\n", s.Count, s.Total, s.Percent)
}

func init() {
	extractCmd.Flags().StringVar(&extractFile, "file", "", "document text file (default: stdin)")
	extractCmd.Flags().StringVar(&extractType, "type", "invoice", "document type hint (invoice|receipt)")
	extractCmd.Flags().StringVar(&extractLocale, "locale", "", "document locale (default from config)")
	rootCmd.AddCommand(extractCmd)
}
