package commands

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kontor-dev/kontor/internal/accounts"
	"github.com/kontor-dev/kontor/internal/config"
	"github.com/kontor-dev/kontor/internal/documents"
	"github.com/kontor-dev/kontor/internal/gitops"
	"github.com/kontor-dev/kontor/internal/ledger"
	"github.com/kontor-dev/kontor/internal/reports"
	"github.com/kontor-dev/kontor/internal/server"
	"github.com/kontor-dev/kontor/internal/tax"
)

func newServeCommand() *cobra.Command {
	var dataDir string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the bookkeeping API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			absDir, err := filepath.Abs(dataDir)
			if err != nil {
				return fmt.Errorf("resolving data dir: %w", err)
			}
			return runServe(absDir)
		},
	}

	cmd.Flags().StringVar(&dataDir, "data-dir", ".", "Kontor data directory")

	return cmd
}

func runServe(dataDir string) error {
	cfg, err := config.Load(filepath.Join(dataDir, "kontor.yaml"))
	if err != nil {
		return fmt.Errorf("loading config (did you run 'kontor init'?): %w", err)
	}

	log, err := newLogger(cfg.Server.Mode)
	if err != nil {
		return fmt.Errorf("building logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	// Chart of accounts.
	registry, err := accounts.Load(dataDir)
	if err != nil {
		return fmt.Errorf("loading chart of accounts: %w", err)
	}

	// Tax keys.
	taxEngine, err := buildTaxEngine(cfg.TaxKeys)
	if err != nil {
		return err
	}

	// Ledger with durable journal.
	led := ledger.NewEngine(registry, log)
	if err := led.AttachStore(ledger.NewStore(dataDir)); err != nil {
		return fmt.Errorf("loading journal: %w", err)
	}
	if cfg.Period.LockedThrough != "" {
		lock, err := time.Parse("2006-01-02", cfg.Period.LockedThrough)
		if err != nil {
			return fmt.Errorf("parsing period.locked_through: %w", err)
		}
		led.LockThrough(lock)
	}

	// Document lifecycles.
	docService := documents.NewService(documents.Deps{
		Store:    documents.NewStore(),
		Ledger:   led,
		Taxes:    taxEngine,
		Accounts: registry,
		Policy: documents.Policy{
			ReceivableAccountCode: cfg.Policy.ReceivableAccount,
			InputTaxAccounts:      cfg.Policy.InputTaxAccounts,
			OutputTaxAccounts:     cfg.Policy.OutputTaxAccounts,
		},
		Files:    documents.NewLocalFileStore(dataDir),
		AuditDir: dataDir,
		Logger:   log,
	})

	reportEngine := reports.NewEngine(led, registry, taxEngine)
	handler := server.NewHandler(registry, led, docService, reportEngine)
	srv := server.New(log, cfg.Server.Port, cfg.Server.Mode, handler)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		if err := srv.Run(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	if cfg.Git.AutoCommit && gitops.IsRepo(dataDir) {
		if _, err := gitops.CommitAll(dataDir, "snapshot: shutdown", cfg.Git.AuthorName, cfg.Git.AuthorEmail); err != nil {
			log.Warn("data dir commit failed", zap.Error(err))
		}
	}
	return nil
}

func buildTaxEngine(keys []config.TaxKeyConfig) (*tax.Engine, error) {
	if len(keys) == 0 {
		return tax.NewEngine(tax.DefaultKeys()), nil
	}

	parsed := make([]tax.Key, len(keys))
	for i, k := range keys {
		rate, err := decimal.NewFromString(k.Rate)
		if err != nil {
			return nil, fmt.Errorf("parsing tax key %s rate %q: %w", k.Code, k.Rate, err)
		}
		parsed[i] = tax.Key{Code: k.Code, Name: k.Name, Rate: rate}
	}
	return tax.NewEngine(parsed), nil
}

func newLogger(mode string) (*zap.Logger, error) {
	if mode == "debug" {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
