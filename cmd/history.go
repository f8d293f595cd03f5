package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"canvasdigest/pkg/state"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show last run timestamps and recently first-seen assignments (default 50)",
	RunE: func(cmd *cobra.Command, _ []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		dbPath := viper.GetString("digest.state_db")
		if _, err := os.Stat(dbPath); err != nil {
			return fmt.Errorf("state database not found: %s", dbPath)
		}

		store, err := state.Open(dbPath)
		if err != nil {
			return err
		}
		defer store.Close()

		ctx := context.Background()
		st, err := store.Load(ctx)
		if err != nil {
			return err
		}

		if st.LastMorningRun != nil {
			fmt.Printf("Last morning run: %s\n", st.LastMorningRun.Format("2006-01-02 15:04:05 MST"))
		} else {
			fmt.Println("Last morning run: never")
		}
		if st.LastEveningRun != nil {
			fmt.Printf("Last evening run: %s\n", st.LastEveningRun.Format("2006-01-02 15:04:05 MST"))
		} else {
			fmt.Println("Last evening run: never")
		}

		seen, err := store.RecentSeen(ctx, limit)
		if err != nil {
			return err
		}
		fmt.Printf("\nSeen assignments (%d most recent):\n", len(seen))
		for _, sa := range seen {
			due := "no deadline"
			if sa.DueAt != nil {
				due = "due " + sa.DueAt.Format("2006-01-02 15:04")
			}
			fmt.Printf("%s  first seen %s  %-10s  %s (%s)\n",
				sa.ID, sa.FirstSeen.Format("2006-01-02"), due, sa.Name, sa.Course)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().Int("limit", 50, "Number of seen assignments to show")
}
