package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/abhisek/quizplay/internal/config"
	"github.com/abhisek/quizplay/internal/store"
)

var journalCmd = &cobra.Command{
	Use:   "journal",
	Short: "Show recent gateway calls recorded in the local journal",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Load()
		dbPath, err := resolveDBPath(cmd, cfg)
		if err != nil {
			return fmt.Errorf("resolve DB path: %w", err)
		}
		st, err := store.Open(dbPath)
		if err != nil {
			return fmt.Errorf("open store: %w", err)
		}
		defer st.Close()

		flags := cmd.Flags()
		limit, _ := flags.GetInt("limit")
		session, _ := flags.GetString("session")
		op, _ := flags.GetString("op")
		asJSON, _ := flags.GetBool("json")

		entries, err := st.JournalRepo().Recent(cmd.Context(), store.QueryOpts{
			Limit:     limit,
			SessionID: session,
			Op:        op,
		})
		if err != nil {
			return err
		}

		if asJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(entries)
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "SEQ\tTIME\tOP\tATTEMPT\tPAGE\tOK\tMS\tERROR")
		for _, e := range entries {
			ok := "yes"
			if !e.Success {
				ok = "no"
			}
			fmt.Fprintf(w, "%d\t%s\t%s\t%d\t%d\t%s\t%d\t%s\n",
				e.Sequence, e.CreatedAt.Local().Format("01-02 15:04:05"), e.Op,
				e.AttemptID, e.Page, ok, e.LatencyMs, e.ErrorMessage)
		}
		return w.Flush()
	},
}

func init() {
	journalCmd.Flags().Int("limit", 50, "Maximum number of entries")
	journalCmd.Flags().String("session", "", "Only entries of this session id")
	journalCmd.Flags().String("op", "", "Only entries of this operation")
	journalCmd.Flags().Bool("json", false, "Print entries as JSON")
}
