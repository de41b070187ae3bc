package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ledgerline/ingest-cli/internal/ingest"
	"github.com/ledgerline/ingest-cli/internal/match"
	"github.com/ledgerline/ingest-cli/internal/model"
	"github.com/ledgerline/ingest-cli/internal/toggles"
)

var (
	ingestProfile  string
	ingestFile     string
	ingestFormPath string
	ingestOutPath  string
	ingestToggles  []string
	ingestAll      bool
	ingestReset    bool
)

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Run the full ingestion pipeline against a target form",
	Long:  "Extracts fields from a document, seeds apply toggles from presence and saved defaults, applies the selected fields to a form JSON file, and records apply feedback.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		mapping := ingest.MappingForProfile(ingestProfile)
		if mapping == nil {
			return eris.Errorf("unknown profile %q (want bills, invoices or expenses)", ingestProfile)
		}

		text, err := readInput(ingestFile)
		if err != nil {
			return err
		}

		form := ingest.NewForm(nil)
		if ingestFormPath != "" {
			raw, err := os.ReadFile(ingestFormPath)
			if err != nil {
				return eris.Wrapf(err, "read form %s", ingestFormPath)
			}
			if err := json.Unmarshal(raw, form); err != nil {
				return eris.Wrapf(err, "parse form %s", ingestFormPath)
			}
		}

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		client := newBackend()

		contacts, err := client.ListContacts(ctx)
		if err != nil {
			zap.L().Warn("contact list unavailable", zap.Error(err))
			contacts = nil
		}

		orch := ingest.New(client, mapping, ingest.Options{
			Matcher:  match.TokenOverlap{Threshold: cfg.Ingest.MatchThreshold},
			Contacts: contacts,
			Defaults: toggles.NewStoreRepo(ctx, st),
		})

		kind := model.KindInvoice
		if ingestProfile == "expenses" {
			kind = model.KindReceipt
		}
		if err := orch.Submit(ctx, ingest.RawInput{
			Text:     text,
			TypeHint: kind,
			Locale:   cfg.Ingest.Locale,
		}); err != nil {
			if msg := orch.LastError(); msg != "" {
				fmt.Fprintln(os.Stderr, msg)
			}
			return err
		}

		if ingestReset {
			orch.ResetToggles()
		}
		if cmd.Flags().Changed("all") {
			orch.ToggleAll(ingestAll)
		}
		for _, kv := range ingestToggles {
			key, val, ok := strings.Cut(kv, "=")
			if !ok {
				return eris.Errorf("invalid --toggle %q (want key=true|false)", kv)
			}
			orch.ToggleField(key, val == "true")
		}

		printExtraction(os.Stdout, orch.Extraction(), mapping)
		if best := orch.BestMatch(); best != nil {
			fmt.Printf("Suggested vendor: %s (%.0f%% match)\n", best.Contact.Name, best.Score*100)
		}

		applied, err := orch.Apply(ctx, form)
		if err != nil {
			return err
		}
		fmt.Printf("\nApplied fields: %s\n", strings.Join(applied, ", "))

		out, err := json.MarshalIndent(form, "", "  ")
		if err != nil {
			return eris.Wrap(err, "encode form")
		}
		outPath := ingestOutPath
		if outPath == "" {
			outPath = ingestFormPath
		}
		if outPath == "" {
			fmt.Println(string(out))
		} else if err := os.WriteFile(outPath, out, 0o644); err != nil {
			return eris.Wrapf(err, "write form %s", outPath)
		}

		// Let the fire-and-forget feedback call finish before exit.
		orch.Wait()
		return nil
	},
}

func init() {
	ingestCmd.Flags().StringVar(&ingestProfile, "profile", "bills", "apply profile (bills|invoices|expenses)")
	ingestCmd.Flags().StringVar(&ingestFile, "file", "", "document text file (default: stdin)")
	ingestCmd.Flags().StringVar(&ingestFormPath, "form", "", "target form JSON file to apply into")
	ingestCmd.Flags().StringVar(&ingestOutPath, "out", "", "output path for the updated form (default: --form path or stdout)")
	ingestCmd.Flags().StringArrayVar(&ingestToggles, "toggle", nil, "override one apply toggle, e.g. --toggle due_date=false")
	ingestCmd.Flags().BoolVar(&ingestAll, "all", false, "set every apply toggle (bounded by field presence)")
	ingestCmd.Flags().BoolVar(&ingestReset, "reset-defaults", false, "clear saved toggle defaults before applying")
	rootCmd.AddCommand(ingestCmd)
}
