package main

import (
	"context"
	"errors"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/mmynk/splitchain/internal/ledger"
)

var (
	flagLedgerURL string
	flagFrom      string
	flagDenom     string
	flagTimeout   time.Duration
)

var rootCmd = &cobra.Command{
	Use:   "splitctl",
	Short: "Group expense ledger CLI",
	Long:  "Inspect groups, expenses and balances on the ledger, and settle debts.",
	SilenceUsage: true,
}

// Execute is the main entry point called from main.go.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagLedgerURL, "ledger", os.Getenv("LEDGER_URL"), "Ledger facade base URL (default from LEDGER_URL)")
	rootCmd.PersistentFlags().StringVar(&flagFrom, "from", os.Getenv("LEDGER_ADDRESS"), "Acting ledger address (default from LEDGER_ADDRESS)")
	rootCmd.PersistentFlags().StringVar(&flagDenom, "denom", "uxion", "Base currency denomination")
	rootCmd.PersistentFlags().DurationVar(&flagTimeout, "timeout", 30*time.Second, "Request timeout")
}

// newLedger builds a ledger client from the persistent flags.
func newLedger() (*ledger.Client, error) {
	if flagLedgerURL == "" {
		return nil, errors.New("no ledger URL: pass --ledger or set LEDGER_URL")
	}
	return ledger.NewClient(flagLedgerURL, ledger.WithDenom(flagDenom)), nil
}

// requireFrom is used by commands that submit transactions.
func requireFrom() (string, error) {
	if flagFrom == "" {
		return "", errors.New("no acting address: pass --from or set LEDGER_ADDRESS")
	}
	return flagFrom, nil
}

func cmdContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), flagTimeout)
}
