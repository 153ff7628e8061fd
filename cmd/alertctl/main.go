// Comando alertctl: operaciones de mantenimiento sobre alertas y ledger sin levantar la API.
package main

import (
	"os"

	"github.com/jhoicas/inventario-salidas/cmd/alertctl/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
