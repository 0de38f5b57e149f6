package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/haxia/expense-integrator/internal/config"
	"github.com/haxia/expense-integrator/internal/integrator"
	"github.com/haxia/expense-integrator/internal/ledger"
	"github.com/haxia/expense-integrator/internal/rindegastos"
	"github.com/haxia/expense-integrator/pkg/database"
	"github.com/haxia/expense-integrator/pkg/utils"
	"github.com/subosito/gotenv"
	"go.uber.org/zap"
)

func main() {
	configPath := flag.String("config", "", "path to config.yaml (optional, env vars suffice)")
	flag.Parse()

	// Credentials live in .env on the batch host; absence is fine when
	// the environment is already populated.
	_ = gotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := utils.NewLogger(utils.LoggerConfig{
		Level:      cfg.Logger.Level,
		OutputPath: cfg.Logger.OutputPath,
		Format:     cfg.Logger.Format,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting expense ledger integrator",
		zap.String("database", cfg.Database.Name),
		zap.String("schedule", cfg.Run.Schedule))

	db, err := database.New(database.Config{
		Server:   cfg.Database.Server,
		Database: cfg.Database.Name,
		User:     cfg.Database.User,
		Password: cfg.Database.Password,
	}, logger)
	if err != nil {
		logger.Fatal("Failed to connect to accounting backend", zap.Error(err))
	}
	defer db.Close()

	client := rindegastos.NewClient(rindegastos.Config{
		BaseURL:  cfg.RindeGastos.BaseURL,
		APIToken: cfg.RindeGastos.APIToken,
		Timeout:  cfg.RindeGastos.APITimeout,
	}, logger)

	writer := ledger.NewWriter(db, ledger.WriterConfig{
		MovementsTable:     cfg.Ledger.MovementsTable,
		VoucherProcedure:   cfg.Ledger.VoucherProcedure,
		MovementsProcedure: cfg.Ledger.MovementsProcedure,
	}, logger)

	driver := integrator.NewDriver(client, writer, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Run.Schedule == "" {
		if _, err := driver.Run(ctx); err != nil {
			logger.Fatal("Integration run aborted", zap.Error(err))
		}
		return
	}

	scheduler := integrator.NewScheduler(driver, logger)
	if err := scheduler.Start(ctx, cfg.Run.Schedule, cfg.Run.Timezone); err != nil {
		logger.Fatal("Scheduler failed", zap.Error(err))
	}
}
