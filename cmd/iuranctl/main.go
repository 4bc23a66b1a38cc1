// iuranctl ejecuta tareas administrativas del komplek: migraciones, generación
// programada de tagihan, barrido de vencidas y carga del padrón de warga.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

func main() {
	// .env opcional: las variables del entorno tienen prioridad.
	_ = godotenv.Load()

	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "iuranctl: %v\n", err)
		os.Exit(1)
	}
}
