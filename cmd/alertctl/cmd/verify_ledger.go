package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

// VerifyLedgerOptions flags del comando verify-ledger.
type VerifyLedgerOptions struct {
	*RootOptions
	ProductID string
}

// NewVerifyLedgerCommand reproduce el ledger de un producto y lo compara con su stock.
func NewVerifyLedgerCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &VerifyLedgerOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "verify-ledger",
		Short: "Verifica que el ledger de un producto reproduzca su stock actual",
		Long: `Reproduce los movimientos del producto en orden y compara el resultado con current_stock.

Sale con error si el ledger es inconsistente.

Ejemplos:
  alertctl verify-ledger --product 6f1c...`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVerifyLedger(cmd, opts)
		},
	}
	cmd.Flags().StringVar(&opts.ProductID, "product", "", "ID del producto (obligatorio)")
	_ = cmd.MarkFlagRequired("product")
	return cmd
}

func runVerifyLedger(cmd *cobra.Command, opts *VerifyLedgerOptions) error {
	ctx := context.Background()
	c, err := openContainer(ctx, opts.RootOptions, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer c.Close()

	v, err := c.Stock.VerifyLedger(ctx, opts.ProductID)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if opts.Format == "json" {
		if err := printJSON(out, v); err != nil {
			return err
		}
	} else {
		fmt.Fprintf(out, "producto %s: stock %s, reproducido %s, %d movimientos\n",
			v.ProductID, v.CurrentStock, v.ReplayedStock, v.Movements)
	}
	if !v.Consistent {
		return fmt.Errorf("ledger inconsistente: %s", v.Problem)
	}
	if opts.Format != "json" {
		fmt.Fprintln(out, "ledger consistente")
	}
	return nil
}
