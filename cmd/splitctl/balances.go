package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mmynk/splitchain/internal/calculator"
	"github.com/mmynk/splitchain/internal/ledger"
	"github.com/mmynk/splitchain/internal/models"
)

var balancesCmd = &cobra.Command{
	Use:   "balances <group-id>",
	Short: "Show your balance summary within a group",
	Args:  cobra.ExactArgs(1),
	RunE:  runBalances,
}

var debtsCmd = &cobra.Command{
	Use:   "debts <group-id>",
	Short: "Show a group's net debts",
	Args:  cobra.ExactArgs(1),
	RunE:  runDebts,
}

func init() {
	rootCmd.AddCommand(balancesCmd, debtsCmd)
}

func runBalances(_ *cobra.Command, args []string) error {
	id, err := parseGroupID(args[0])
	if err != nil {
		return err
	}
	from, err := requireFrom()
	if err != nil {
		return err
	}
	client, err := newLedger()
	if err != nil {
		return err
	}
	ctx, cancel := cmdContext()
	defer cancel()

	summary, err := client.BalanceSummary(ctx, id, from)
	if err != nil && !errors.Is(err, ledger.ErrNotFound) {
		return err
	}
	if summary == nil {
		// The ledger offers no summary; compute one from the expense log.
		expenses, err := client.AllGroupExpenses(ctx, id)
		if err != nil {
			return err
		}
		computed := calculator.Compute(expenses, from)
		summary = &computed
	}

	fmt.Printf("Balance for %s in group %d\n", models.ShortAddress(from), id)
	fmt.Printf("  You owe:      %s\n", models.FormatDisplay(summary.TotalOwed))
	fmt.Printf("  Owed to you:  %s\n", models.FormatDisplay(summary.TotalOwedTo))
	fmt.Printf("  Net:          %s\n", models.FormatDisplay(summary.NetBalance))

	if len(summary.Balances) == 0 {
		fmt.Println("All settled up.")
		return nil
	}

	rows := make([][]string, len(summary.Balances))
	for i, b := range summary.Balances {
		rows[i] = []string{
			models.ShortAddress(b.OtherUser),
			formatSigned(b.Amount, b.Direction),
		}
	}
	fmt.Print(renderTable("Per member", []string{"Member", "Balance"}, rows))
	return nil
}

func runDebts(_ *cobra.Command, args []string) error {
	id, err := parseGroupID(args[0])
	if err != nil {
		return err
	}
	client, err := newLedger()
	if err != nil {
		return err
	}
	ctx, cancel := cmdContext()
	defer cancel()

	debts, err := client.Debts(ctx, id)
	if err != nil {
		return err
	}
	if len(debts) == 0 {
		fmt.Println("No outstanding debts.")
		return nil
	}

	rows := make([][]string, len(debts))
	for i, d := range debts {
		rows[i] = []string{
			models.ShortAddress(d.From),
			models.ShortAddress(d.To),
			models.FormatDisplay(d.Amount),
		}
	}
	fmt.Print(renderTable(fmt.Sprintf("Net debts in group %d", id), []string{"Debtor", "Creditor", "Amount"}, rows))
	return nil
}
