package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/komplek-api/internal/bootstrap"
	"github.com/jhoicas/komplek-api/internal/infrastructure/memory"
	"github.com/jhoicas/komplek-api/internal/infrastructure/postgres"
	"github.com/jhoicas/komplek-api/internal/infrastructure/seed"
	httpRouter "github.com/jhoicas/komplek-api/internal/interfaces/http"
	"github.com/jhoicas/komplek-api/pkg/config"
	"github.com/jhoicas/komplek-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:     cfg.App.Env,
		Level:   cfg.App.LogLevel,
		Service: cfg.App.Name,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("store", cfg.Store.Driver).
		Msg("iniciando aplicación")

	ctx := context.Background()

	var stores bootstrap.Stores
	switch cfg.Store.Driver {
	case "memory":
		mem := memory.New()
		if cfg.Seed.ResidentsFile != "" {
			if err := seedMemory(mem, cfg.Seed); err != nil {
				log.Fatal().Err(err).Str("file", cfg.Seed.ResidentsFile).Msg("carga del padrón")
			}
			log.Info().Str("file", cfg.Seed.ResidentsFile).Msg("padrón cargado en memoria")
		} else {
			log.Warn().Msg("store en memoria vacío: defina SEED_RESIDENTS_FILE para cargar warga")
		}
		stores = bootstrap.MemoryStores(mem)
	default:
		pool, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a PostgreSQL")
		}
		defer pool.Close()
		if cfg.Store.AutoMigrate {
			if err := postgres.Migrate(ctx, pool); err != nil {
				log.Fatal().Err(err).Msg("migración del esquema")
			}
		}
		stores = bootstrap.PostgresStores(pool)
	}

	svc := bootstrap.NewServices(stores, cfg, log)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 30,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(httpRouter.RequestLogger(log))

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Komplek Iuran API",
	}))

	httpRouter.Router(app, httpRouter.RouterDeps{
		AuthUC:      svc.Auth,
		Resolver:    svc.Resolver,
		IuranUC:     svc.Iuran,
		Generator:   svc.Generator,
		InvoiceUC:   svc.Invoices,
		PDFUC:       svc.PDF,
		Compiler:    svc.Compiler,
		Adjustments: svc.Adjustments,
		ChartUC:     svc.Chart,
		JWTSecret:   cfg.JWT.Secret,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}

// seedMemory carga el padrón CSV en el store en memoria.
func seedMemory(mem *memory.Store, sc config.SeedConfig) error {
	f, err := os.Open(sc.ResidentsFile)
	if err != nil {
		return err
	}
	defer f.Close()
	residents, err := seed.ParseResidents(f, sc.Encoding)
	if err != nil {
		return err
	}
	plan, err := seed.BuildPlan(sc.ClusterID, sc.ClusterName, residents, sc.DefaultPassword, bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	plan.LoadInto(mem)
	return nil
}
