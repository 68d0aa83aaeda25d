package cmd

import (
	"fmt"

	"barrierbet/domain/utils"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(balanceCmd)
	balanceCmd.AddCommand(balanceAdjustCmd)

	balanceAdjustCmd.Flags().String("reason", "", "Why the balance is adjusted (required, recorded in balance history)")
	_ = balanceAdjustCmd.MarkFlagRequired("reason")
}

var balanceCmd = &cobra.Command{
	Use:   "balance",
	Short: "Inspect and adjust player balances",
}

var balanceAdjustCmd = &cobra.Command{
	Use:   "adjust USER_ID AMOUNT",
	Short: "Credit or debit a balance",
	Long: `Credit (positive AMOUNT) or debit (negative AMOUNT) a player's balance.
AMOUNT is in currency units with up to two decimals, e.g. 25 or -12.50.
A debit never takes the balance below zero. Put -- before the arguments
when the amount is negative:

  barrierbet balance adjust --reason "chargeback" -- USER_ID -12.50`,
	Args: cobra.ExactArgs(2),
	RunE: runBalanceAdjust,
}

func runBalanceAdjust(cmd *cobra.Command, args []string) error {
	userID, err := uuid.Parse(args[0])
	if err != nil {
		return fmt.Errorf("invalid user id %q: %w", args[0], err)
	}

	amount, err := utils.ParseAmount(args[1])
	if err != nil {
		return fmt.Errorf("invalid amount %q: %w", args[1], err)
	}

	reason, _ := cmd.Flags().GetString("reason")

	a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.close()

	// uuid.Nil marks adjustments made from the command line
	newBalance, err := a.admin.AdjustBalance(cmd.Context(), uuid.Nil, userID, amount, reason)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Adjusted %s by %s, new balance %s\n", userID, utils.FormatAmount(amount), utils.FormatAmount(newBalance))
	return nil
}
