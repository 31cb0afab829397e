package command

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/iliyamo/parking-reservation/internal/config"
	"github.com/iliyamo/parking-reservation/internal/database"
	"github.com/iliyamo/parking-reservation/internal/handler"
	"github.com/iliyamo/parking-reservation/internal/queue"
	"github.com/iliyamo/parking-reservation/internal/repository"
	"github.com/iliyamo/parking-reservation/internal/router"
	"github.com/iliyamo/parking-reservation/internal/service"
	"github.com/iliyamo/parking-reservation/internal/stats"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server (default command)",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(_ *cobra.Command, _ []string) error {
	cfg, log, db, err := bootstrap()
	if err != nil {
		return err
	}
	defer db.Close()

	if cfg.AutoMigrate {
		if err := database.MigrateUp(db); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
		log.Info("migrations applied")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rdb := config.NewRedisClient(log)
	if rdb != nil {
		defer rdb.Close()
	}

	var (
		events  service.EventPublisher = queue.NopPublisher{}
		workers sync.WaitGroup
	)
	if cfg.AMQPURL != "" {
		events = queue.NewPublisher(cfg.AMQPURL, log)
		consumer := queue.NewConsumer(cfg.AMQPURL, cfg.AuditLogDir, log)
		workers.Add(1)
		go func() {
			defer workers.Done()
			if err := consumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.WithError(err).Error("audit consumer stopped")
			}
		}()
	} else {
		log.Info("AMQP_URL not set, parking events are not published")
	}

	store := repository.NewStore(db)
	deps := service.Deps{Store: service.NewSQLStore(store), Events: events, Log: log}
	accounts := service.NewAccountService(deps, cfg.Auth())
	lots := service.NewLotService(deps)
	bookings := service.NewBookingService(deps)
	wallet := service.NewWalletService(deps)
	reports := service.NewReportService(deps)

	if cfg.StatsEnabled {
		rollup := stats.NewRollup(store, log)
		if err := rollup.Start(cfg.StatsCron); err != nil {
			return fmt.Errorf("stats rollup: %w", err)
		}
		defer func() {
			sctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownGrace)
			defer cancel()
			rollup.Stop(sctx)
		}()
	}

	e := router.New(router.Handlers{
		Auth:   handler.NewAuthHandler(accounts, log),
		Admin:  handler.NewAdminHandler(lots, reports, log),
		User:   handler.NewUserHandler(accounts, bookings, wallet, reports, log),
		Public: handler.NewPublicHandler(reports, log),
	}, router.Options{
		JWTSecret: cfg.JWTSecret,
		Cache:     cfg.Cache,
		RateLimit: cfg.RateLimit,
		Redis:     rdb,
		Log:       log,
	})

	addr := ":" + cfg.Port
	errCh := make(chan error, 1)
	go func() {
		log.WithField("addr", addr).WithField("env", cfg.Env).Info("listening")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	}

	log.Info("shutting down")
	sctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownGrace)
	defer cancel()
	if err := e.Shutdown(sctx); err != nil {
		log.WithError(err).Warn("http shutdown")
	}
	stop()
	workers.Wait()
	return nil
}
