package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"novelhub-backend/internal/config"
	coinRepo "novelhub-backend/internal/domains/coin/repository"
	coinService "novelhub-backend/internal/domains/coin/service"
	notificationRepo "novelhub-backend/internal/domains/notification/repository"
	notificationService "novelhub-backend/internal/domains/notification/service"
	userModel "novelhub-backend/internal/domains/user/model"
	userRepo "novelhub-backend/internal/domains/user/repository"
	"novelhub-backend/internal/infrastructure/database"
	pkgdb "novelhub-backend/pkg/database"
	"novelhub-backend/pkg/logger"
)

var rootCmd = &cobra.Command{
	Use:           "novelctl [command] [flags]",
	Short:         "NovelHub operator tool: migrations, coin grants, roles, ledger",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logger.Init(logger.Options{Env: "development", Level: logLevel})
	},
}

var logLevel string

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "debug | info | warn | error")

	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(grantCoinsCmd)
	rootCmd.AddCommand(promoteCmd)
	rootCmd.AddCommand(ledgerCmd)
}

// =====================================================
// RUNTIME: chỉ mở Postgres, không cần Redis / MinIO
// =====================================================

type runtime struct {
	db    *database.PostgresDB
	users userRepo.Repository
	coins coinService.ServiceInterface
}

func openRuntime(ctx context.Context) (*runtime, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	dbConfig, err := config.LoadDatabaseConfig(cfg.Database)
	if err != nil {
		return nil, err
	}

	db := database.NewPostgresDB(dbConfig)
	connectCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()
	if err := db.Connect(connectCtx); err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	catalog, err := config.LoadCoinCatalog(cfg.Coins.PackagesFile)
	if err != nil {
		db.Close()
		return nil, err
	}

	repo := coinRepo.NewPostgresRepository(db.Pool)
	notifier := notificationService.NewNotificationService(notificationRepo.NewNotificationRepository(db.Pool))

	return &runtime{
		db:    db,
		users: userRepo.NewPostgresRepository(db.Pool),
		coins: coinService.NewCoinService(
			repo,
			pkgdb.NewTransactor(db.Pool),
			coinService.NewLedger(repo),
			catalog,
			cfg.Coins,
			cfg.PayPal.Currency,
			notifier,
		),
	}, nil
}

func (r *runtime) Close() {
	r.db.Close()
}

// findProfile nhận uuid hoặc username
func (r *runtime) findProfile(ctx context.Context, ref string) (*userModel.Profile, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, fmt.Errorf("--user is required")
	}

	if id, err := uuid.Parse(ref); err == nil {
		return r.users.FindByID(ctx, id)
	}
	return r.users.FindByUsername(ctx, strings.TrimPrefix(ref, "@"))
}
