package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/mmynk/splitchain/internal/models"
)

var expensesCmd = &cobra.Command{
	Use:   "expenses <group-id>",
	Short: "List a group's expense log",
	Args:  cobra.ExactArgs(1),
	RunE:  runListExpenses,
}

var (
	flagExpenseAmount string
	flagExpenseSplit  []string
)

var expenseAddCmd = &cobra.Command{
	Use:   "add <group-id> <description>",
	Short: "Record a cost against a group",
	Args:  cobra.ExactArgs(2),
	RunE:  runAddExpense,
}

func init() {
	expenseAddCmd.Flags().StringVar(&flagExpenseAmount, "amount", "", "Amount in base units (required)")
	expenseAddCmd.Flags().StringSliceVar(&flagExpenseSplit, "split", nil, "Addresses to split between (default: all members)")
	_ = expenseAddCmd.MarkFlagRequired("amount")

	expensesCmd.AddCommand(expenseAddCmd)
	rootCmd.AddCommand(expensesCmd)
}

func runListExpenses(_ *cobra.Command, args []string) error {
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

	expenses, err := client.AllGroupExpenses(ctx, id)
	if err != nil {
		return err
	}
	if len(expenses) == 0 {
		fmt.Println("No expenses recorded.")
		return nil
	}

	rows := make([][]string, len(expenses))
	var total models.Amount
	for i, e := range expenses {
		rows[i] = []string{
			strconv.FormatUint(e.ID, 10),
			e.Description,
			models.FormatDisplay(e.Amount),
			models.ShortAddress(e.PaidBy),
			strconv.Itoa(len(e.SplitBetween)),
			models.TimeAgo(e.CreatedAt, time.Now()),
		}
		total += e.Amount
	}
	fmt.Print(renderTable(
		fmt.Sprintf("Expenses for group %d (total %s)", id, models.FormatDisplay(total)),
		[]string{"ID", "Description", "Amount", "Paid by", "Split", "When"},
		rows,
	))
	return nil
}

func runAddExpense(_ *cobra.Command, args []string) error {
	id, err := parseGroupID(args[0])
	if err != nil {
		return err
	}
	from, err := requireFrom()
	if err != nil {
		return err
	}
	amount, err := models.ParseAmount(flagExpenseAmount)
	if err != nil {
		return err
	}
	if amount <= 0 {
		return fmt.Errorf("amount must be positive")
	}

	client, err := newLedger()
	if err != nil {
		return err
	}
	ctx, cancel := cmdContext()
	defer cancel()

	tx, err := client.AddExpense(ctx, from, id, args[1], amount, flagExpenseSplit)
	if err != nil {
		return err
	}
	fmt.Printf("Expense recorded. id=%s tx=%s\n", tx.WasmAttribute("expense_id"), tx.TransactionHash)
	return nil
}
