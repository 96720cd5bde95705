package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var reconcileCSVFile string

var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Retry unresolved Message-ID lookups",
	Long: `Retry Message-ID resolution for sends whose permanent identifier was
not indexed in time. Newly found identifiers are merged into the contact
table, making those rows eligible for reminder replies.`,
	RunE: runReconcile,
}

var reconcileListCmd = &cobra.Command{
	Use:   "list",
	Short: "List sends awaiting Message-ID resolution",
	RunE:  runReconcileList,
}

func init() {
	reconcileCmd.Flags().StringVar(&reconcileCSVFile, "csv", "", "use a local CSV file instead of the configured spreadsheet")
	reconcileCmd.AddCommand(reconcileListCmd)
	rootCmd.AddCommand(reconcileCmd)
}

func runReconcile(cmd *cobra.Command, args []string) error {
	a, err := loadApp()
	if err != nil {
		return err
	}
	defer a.Close()

	ctx := cmd.Context()
	if err := a.ConnectGoogle(ctx); err != nil {
		return err
	}

	store, err := a.TableStore(ctx, reconcileCSVFile)
	if err != nil {
		return err
	}
	runner, err := a.Runner(store)
	if err != nil {
		return err
	}

	sum, err := runner.Reconcile(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("Reconcile finished (%d pending)\n", sum.Rows)
	fmt.Printf("  Resolved:   %d\n", sum.Resolved)
	fmt.Printf("  Unresolved: %d\n", sum.Unresolved)
	return nil
}

func runReconcileList(cmd *cobra.Command, args []string) error {
	a, err := loadApp()
	if err != nil {
		return err
	}
	defer a.Close()

	entries, err := a.Pending.List(cmd.Context())
	if err != nil {
		return err
	}

	if len(entries) == 0 {
		fmt.Println("No pending reconciliations")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ROW\tEMAIL\tGMAIL ID\tATTEMPTS\tFIRST SEEN")
	for _, e := range entries {
		fmt.Fprintf(w, "%d\t%s\t%s\t%d\t%s\n",
			e.Row+2, // 1-based sheet row below the header
			e.Email,
			e.GmailID,
			e.Attempts,
			e.CreatedAt.Format("2006-01-02 15:04"),
		)
	}
	w.Flush()

	fmt.Printf("\nTotal: %d pending\n", len(entries))
	return nil
}
