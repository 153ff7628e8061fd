// Package cmd comandos de alertctl.
package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/jhoicas/inventario-salidas/internal/bootstrap"
	"github.com/jhoicas/inventario-salidas/pkg/config"
	"github.com/jhoicas/inventario-salidas/pkg/logger"
)

// RootOptions flags globales.
type RootOptions struct {
	Format string // "json" | "text"
	Debug  bool
}

// ValidFormats formatos de salida admitidos.
var ValidFormats = []string{"text", "json"}

// NewRootCommand crea el comando raíz.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "alertctl",
		Short: "Operaciones de mantenimiento de alertas e inventario",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if opts.Format != "text" && opts.Format != "json" {
				return fmt.Errorf("formato %q inválido: use uno de %v", opts.Format, ValidFormats)
			}
			return nil
		},
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "formato de salida (json|text)")
	cmd.PersistentFlags().BoolVar(&opts.Debug, "debug", false, "logs en nivel debug")

	cmd.AddCommand(NewScanCommand(opts))
	cmd.AddCommand(NewVerifyLedgerCommand(opts))
	return cmd
}

// Execute ejecuta el comando raíz.
func Execute() error {
	return NewRootCommand().Execute()
}

// openContainer se reemplaza en tests.
var openContainer = func(ctx context.Context, opts *RootOptions, stderr io.Writer) (*bootstrap.Container, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	level := cfg.App.LogLevel
	if opts.Debug {
		level = "debug"
	}
	log := logger.New(logger.Config{Env: "development", Level: level, Output: stderr})
	return bootstrap.Build(ctx, cfg, log)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
