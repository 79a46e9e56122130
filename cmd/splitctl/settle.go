package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mmynk/splitchain/internal/models"
	"github.com/mmynk/splitchain/internal/settle"
)

var (
	flagSettleTo     string
	flagSettleAmount string
)

var settleCmd = &cobra.Command{
	Use:   "settle <group-id>",
	Short: "Pay down a debt to one member",
	Args:  cobra.ExactArgs(1),
	RunE:  runSettle,
}

var settleAllCmd = &cobra.Command{
	Use:   "settle-all <group-id>",
	Short: "Clear everything you owe in a group",
	Args:  cobra.ExactArgs(1),
	RunE:  runSettleAll,
}

func init() {
	settleCmd.Flags().StringVar(&flagSettleTo, "to", "", "Creditor address (required)")
	settleCmd.Flags().StringVar(&flagSettleAmount, "amount", "", "Amount in base units (required)")
	_ = settleCmd.MarkFlagRequired("to")
	_ = settleCmd.MarkFlagRequired("amount")

	rootCmd.AddCommand(settleCmd, settleAllCmd)
}

func printSettleResult(res *settle.Result) {
	switch res.State {
	case settle.StateSucceeded:
		fmt.Printf("Settled %s. tx=%s\n", models.FormatDisplay(res.Amount), res.Tx.TransactionHash)
	case settle.StateRejected:
		fmt.Printf("Not submitted: %s\n", res.Reason)
	default:
		fmt.Printf("Settlement failed: %s\n", res.Reason)
		if res.Retryable {
			fmt.Println("The ledger was unreachable; it is safe to retry.")
		}
	}
}

func runSettle(_ *cobra.Command, args []string) error {
	id, err := parseGroupID(args[0])
	if err != nil {
		return err
	}
	from, err := requireFrom()
	if err != nil {
		return err
	}
	amount, err := models.ParseAmount(flagSettleAmount)
	if err != nil {
		return err
	}

	client, err := newLedger()
	if err != nil {
		return err
	}
	ctx, cancel := cmdContext()
	defer cancel()

	res, err := settle.New(client).Settle(ctx, models.SettlementRequest{
		GroupID: id,
		Payer:   from,
		Payee:   flagSettleTo,
		Amount:  amount,
	})
	if err != nil {
		return err
	}
	printSettleResult(res)
	return nil
}

func runSettleAll(_ *cobra.Command, args []string) error {
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

	res, err := settle.New(client).Settle(ctx, models.SettlementRequest{
		GroupID: id,
		Payer:   from,
		All:     true,
	})
	if err != nil {
		return err
	}
	printSettleResult(res)
	return nil
}
