package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/ledgerline/ingest-cli/internal/model"
	"github.com/ledgerline/ingest-cli/internal/store"
)

var contactsCmd = &cobra.Command{
	Use:   "contacts",
	Short: "Manage the vendor contact list",
}

var contactsListCmd = &cobra.Command{
	Use:   "list",
	Short: "Print known contacts",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		contacts, err := st.ListContacts(ctx)
		if err != nil {
			return eris.Wrap(err, "list contacts")
		}

		tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tNAME\tEMAIL\tTAX NUMBER")
		for _, c := range contacts {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", c.ID, c.Name, c.Email, c.TaxNumber)
		}
		return tw.Flush()
	},
}

var contactsImportFile string

var contactsImportCmd = &cobra.Command{
	Use:   "import",
	Short: "Import contacts from a JSON file",
	Long:  "Reads a JSON array of contacts and upserts each one by name. Missing IDs are generated.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		raw, err := os.ReadFile(contactsImportFile)
		if err != nil {
			return eris.Wrapf(err, "read %s", contactsImportFile)
		}
		var contacts []model.Contact
		if err := json.Unmarshal(raw, &contacts); err != nil {
			return eris.Wrapf(err, "parse %s", contactsImportFile)
		}

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		imported, err := importContacts(ctx, st, contacts)
		if err != nil {
			return err
		}
		fmt.Printf("Imported %d contacts\n", imported)
		return nil
	},
}

// importContacts upserts each named contact, generating IDs when missing.
func importContacts(ctx context.Context, st store.Store, contacts []model.Contact) (int, error) {
	imported := 0
	for _, c := range contacts {
		if c.Name == "" {
			continue
		}
		if c.ID == "" {
			c.ID = uuid.NewString()
		}
		if _, err := st.UpsertContact(ctx, c); err != nil {
			return imported, eris.Wrapf(err, "upsert contact %s", c.Name)
		}
		imported++
	}
	return imported, nil
}

func init() {
	contactsImportCmd.Flags().StringVar(&contactsImportFile, "file", "", "JSON file with a contact array")
	contactsImportCmd.MarkFlagRequired("file") //nolint:errcheck
	contactsCmd.AddCommand(contactsListCmd, contactsImportCmd)
	rootCmd.AddCommand(contactsCmd)
}
