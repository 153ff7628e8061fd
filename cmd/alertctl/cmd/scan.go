package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jhoicas/inventario-salidas/internal/application/dto"
)

// ScanOptions flags del comando scan.
type ScanOptions struct {
	*RootOptions
	Dispatch bool
}

// NewScanCommand ejecuta una detección y, con --dispatch, notifica a los suscriptores.
func NewScanCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ScanOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Ejecuta el motor de detección una vez",
		Long: `Ejecuta el motor de detección sobre el catálogo actual e imprime el reporte.

Con --dispatch ejecuta el ciclo completo (detección + envío a suscriptores),
respetando el lock de ciclo si hay Redis configurado.

Ejemplos:
  alertctl scan
  alertctl scan --format json
  alertctl scan --dispatch`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScan(cmd, opts)
		},
	}
	cmd.Flags().BoolVar(&opts.Dispatch, "dispatch", false, "enviar notificaciones a los suscriptores")
	return cmd
}

func runScan(cmd *cobra.Command, opts *ScanOptions) error {
	ctx := context.Background()
	c, err := openContainer(ctx, opts.RootOptions, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer c.Close()
	out := cmd.OutOrStdout()

	if opts.Dispatch {
		res, err := c.Monitor.TriggerNow(ctx)
		if err != nil {
			return err
		}
		r := dto.DispatchResultDTO{Findings: res.Findings, Sent: res.Sent, Skipped: res.Skipped, Failed: res.Failed}
		if opts.Format == "json" {
			return printJSON(out, r)
		}
		fmt.Fprintf(out, "hallazgos: %d  enviados: %d  omitidos: %d  fallidos: %d\n", r.Findings, r.Sent, r.Skipped, r.Failed)
		return nil
	}

	rep, err := c.Detection.Scan(ctx)
	if err != nil {
		return err
	}
	report := dto.ToAlertReportDTO(rep)
	if opts.Format == "json" {
		return printJSON(out, report)
	}
	fmt.Fprintf(out, "Reporte generado %s\n", report.GeneratedAt.UTC().Format("2006-01-02 15:04 MST"))
	fmt.Fprintf(out, "Stock bajo: %d\n", len(report.StockAlerts))
	for _, a := range report.StockAlerts {
		fmt.Fprintf(out, "  [%s] %s %s: %s / %s (%s%%)\n",
			a.Severity, a.Reference, a.Designation, a.CurrentStock, a.MinStock, a.Percentage.StringFixed(2))
	}
	fmt.Fprintf(out, "Consumo anómalo: %d\n", len(report.ConsumptionAlerts))
	for _, a := range report.ConsumptionAlerts {
		fmt.Fprintf(out, "  %s %s: %s/día -> %s/día (+%s%%, %d salidas)\n",
			a.Reference, a.Designation, a.AverageDaily.StringFixed(2), a.RecentDaily.StringFixed(2),
			a.PercentageIncrease.StringFixed(2), a.ExitCount)
	}
	return nil
}
