package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/komplek-api/internal/application/billing"
	"github.com/jhoicas/komplek-api/internal/bootstrap"
	"github.com/jhoicas/komplek-api/internal/domain/entity"
	"github.com/jhoicas/komplek-api/internal/domain/permission"
	"github.com/jhoicas/komplek-api/internal/infrastructure/postgres"
	"github.com/jhoicas/komplek-api/internal/infrastructure/seed"
	"github.com/jhoicas/komplek-api/pkg/config"
	"github.com/jhoicas/komplek-api/pkg/logger"
)

var version = "1.0.0"

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "iuranctl",
		Short: "Tareas administrativas de iuran del komplek",
		Long: `iuranctl opera sobre la base de datos del komplek como administrador del sistema.

Las corridas son idempotentes: generate y mark-overdue pueden repetirse en cada
tick del scheduler sin duplicar tagihan ni asientos.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newMigrateCmd(), newGenerateCmd(), newMarkOverdueCmd(), newSeedResidentsCmd())
	return root
}

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Aplica el esquema de la base de datos",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, err := loadEnv()
			if err != nil {
				return err
			}
			pool, err := postgres.NewPool(cmd.Context(), cfg.DB)
			if err != nil {
				return err
			}
			defer pool.Close()
			if err := postgres.Migrate(cmd.Context(), pool); err != nil {
				return err
			}
			log.Info().Msg("esquema aplicado")
			return nil
		},
	}
}

func newGenerateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Genera las tagihan de un iuran para un periodo",
		Example: `  # Periodo en curso
  iuranctl generate --cluster <uuid> --iuran <uuid>

  # Periodo explícito
  iuranctl generate --cluster <uuid> --iuran <uuid> --period 2024-03`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			clusterID, _ := cmd.Flags().GetString("cluster")
			iuranID, _ := cmd.Flags().GetString("iuran")
			period, _ := cmd.Flags().GetString("period")
			if period == "" {
				period = entity.PeriodOf(time.Now()).String()
			}
			return withServices(cmd.Context(), func(svc *bootstrap.Services) error {
				res, err := svc.Generator.Generate(cmd.Context(), permission.SystemActor(clusterID), clusterID, iuranID, period)
				if err != nil {
					return err
				}
				if err := printJSON(cmd.OutOrStdout(), billing.ToGenerateResponse(res)); err != nil {
					return err
				}
				return res.FailureError()
			})
		},
	}
	cmd.Flags().String("cluster", "", "ID del komplek")
	cmd.Flags().String("iuran", "", "ID del iuran")
	cmd.Flags().String("period", "", "Periodo YYYY-MM (por defecto, el mes en curso)")
	_ = cmd.MarkFlagRequired("cluster")
	_ = cmd.MarkFlagRequired("iuran")
	return cmd
}

func newMarkOverdueCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mark-overdue",
		Short: "Marca como overdue las tagihan pending vencidas",
		RunE: func(cmd *cobra.Command, _ []string) error {
			clusterID, _ := cmd.Flags().GetString("cluster")
			return withServices(cmd.Context(), func(svc *bootstrap.Services) error {
				out, err := svc.Invoices.MarkOverdue(cmd.Context(), permission.SystemActor(clusterID), clusterID)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), out)
			})
		},
	}
	cmd.Flags().String("cluster", "", "ID del komplek")
	_ = cmd.MarkFlagRequired("cluster")
	return cmd
}

func newSeedResidentsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed-residents",
		Short: "Genera el script SQL del padrón de warga a partir de un CSV",
		Long: `Lee un CSV con columnas name,email,phone,block,house_number,role y escribe
un script SQL con el komplek, los perfiles y sus permisos. role=admin concede
administración del komplek; el resto de warga solo ve sus propias tagihan.`,
		Example: `  iuranctl seed-residents --file warga.csv --cluster-name "Griya Asri" --password rahasia > seed.sql
  iuranctl seed-residents --file warga.csv --encoding latin1 --out seed.sql --password rahasia`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			file, _ := cmd.Flags().GetString("file")
			encoding, _ := cmd.Flags().GetString("encoding")
			clusterID, _ := cmd.Flags().GetString("cluster-id")
			clusterName, _ := cmd.Flags().GetString("cluster-name")
			password, _ := cmd.Flags().GetString("password")
			outPath, _ := cmd.Flags().GetString("out")
			cost, _ := cmd.Flags().GetInt("bcrypt-cost")

			in, err := os.Open(file)
			if err != nil {
				return fmt.Errorf("abrir CSV: %w", err)
			}
			defer in.Close()
			residents, err := seed.ParseResidents(in, encoding)
			if err != nil {
				return err
			}
			plan, err := seed.BuildPlan(clusterID, clusterName, residents, password, cost)
			if err != nil {
				return err
			}

			var w io.Writer = cmd.OutOrStdout()
			if outPath != "" {
				f, err := os.Create(outPath)
				if err != nil {
					return fmt.Errorf("crear archivo: %w", err)
				}
				defer f.Close()
				w = f
			}
			if err := plan.WriteSQL(w); err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "komplek %s: %d warga\n", plan.Cluster.ID, len(plan.Profiles))
			return nil
		},
	}
	cmd.Flags().String("file", "", "Ruta del CSV del padrón")
	cmd.Flags().String("encoding", "", "utf-8 | latin1 | windows-1252")
	cmd.Flags().String("cluster-id", "", "UUID del komplek (nuevo si se omite)")
	cmd.Flags().String("cluster-name", "", "Nombre del komplek")
	cmd.Flags().String("password", "", "Password inicial de todos los warga")
	cmd.Flags().String("out", "", "Archivo de salida (por defecto, stdout)")
	cmd.Flags().Int("bcrypt-cost", bcrypt.DefaultCost, "Costo de bcrypt")
	_ = cmd.MarkFlagRequired("file")
	_ = cmd.MarkFlagRequired("cluster-name")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func loadEnv() (*config.Config, *logger.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	// stdout queda para el JSON de resultados
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel, Service: "iuranctl", Out: os.Stderr})
	return cfg, log, nil
}

// withServices abre el pool de PostgreSQL y arma los casos de uso para una sola corrida.
func withServices(ctx context.Context, fn func(*bootstrap.Services) error) error {
	cfg, log, err := loadEnv()
	if err != nil {
		return err
	}
	if cfg.Store.Driver != "postgres" {
		return fmt.Errorf("iuranctl requiere STORE_DRIVER=postgres")
	}
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		return err
	}
	defer pool.Close()
	return fn(bootstrap.NewServices(bootstrap.PostgresStores(pool), cfg, log))
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
