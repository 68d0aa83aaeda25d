package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(sessionsCmd)
	sessionsCmd.AddCommand(sessionsExpireCmd)

	sessionsExpireCmd.Flags().Duration("older-than", 24*time.Hour, "Settle open sessions started longer ago than this")
}

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "Manage game sessions",
}

var sessionsExpireCmd = &cobra.Command{
	Use:   "expire",
	Short: "Settle abandoned open sessions as losses",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		olderThan, _ := cmd.Flags().GetDuration("older-than")

		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.close()

		expired, err := a.settlement.ExpireStaleSessions(cmd.Context(), olderThan)
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Expired %d session(s)\n", expired)
		return nil
	},
}
