package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/fastprodman/wagerledger/internal/api"
	"github.com/fastprodman/wagerledger/internal/config"
	"github.com/fastprodman/wagerledger/internal/infra/logging"
	"github.com/fastprodman/wagerledger/internal/infra/metrics"
	"github.com/fastprodman/wagerledger/internal/infra/pgutils"
	"github.com/fastprodman/wagerledger/internal/ledger"
	"github.com/fastprodman/wagerledger/internal/randomness"
	"github.com/fastprodman/wagerledger/internal/services/wagering"
	"github.com/fastprodman/wagerledger/internal/token"
	"github.com/fastprodman/wagerledger/pkg/envconf"
	"github.com/fastprodman/wagerledger/pkg/shutdownqueue"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := run(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error running api: %v", err)
		//nolint:gocritic
		os.Exit(1)
	}
}

func run(ctx context.Context) (retErr error) {
	// a missing .env is fine, the environment may already be set
	_ = godotenv.Load()

	cfg := new(apiConfig)

	err := envconf.Load(cfg)
	if err != nil {
		return fmt.Errorf("init config: %w", err)
	}

	err = cfg.validate()
	if err != nil {
		return fmt.Errorf("validate config: %w", err)
	}

	if cfg.LogFile != "" {
		closer := logging.SetupJSONWithFile(cfg.LogLevel, cfg.logFile())
		shutdownqueue.Add(func(context.Context) error {
			return closer.Close()
		})
	} else {
		logging.SetupJSON(cfg.LogLevel)
	}

	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()

		serr := shutdownqueue.Shutdown(shutdownCtx)
		if serr != nil {
			retErr = errors.Join(retErr, serr)
		}
	}()

	// --- Infra ---
	store, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}

	m := metrics.New()
	tokens := token.NewClient(cfg.Token.Endpoint, cfg.Token.Secret, cfg.Token.Timeout)

	svc := wagering.New(store, tokens, randomness.New(), m)

	err = svc.Start(ctx)
	if err != nil {
		return fmt.Errorf("start ledger: %w", err)
	}

	err = seedContract(ctx, svc, cfg.Ledger)
	if err != nil {
		return err
	}

	// Outbound transfers finish before the store goes away.
	shutdownqueue.AddNamed("withdrawals", func(c context.Context) error {
		done := make(chan struct{})
		go func() {
			svc.Wait()
			close(done)
		}()

		select {
		case <-done:
			return nil
		case <-c.Done():
			return c.Err()
		}
	})

	go svc.RunResumer(ctx, cfg.Ledger.ResumeInterval)

	// --- HTTP server ---
	srv := api.NewServer(cfg.Port, svc, api.Options{
		CallbackSecret: cfg.Token.Secret,
		RateLimit:      cfg.RateLimit,
		CORSOrigins:    cfg.CORS.AllowedOrigins,
		Metrics:        m,
	})

	// Register HTTP server graceful shutdown
	shutdownqueue.AddNamed("http server", srv.Shutdown)

	// Run server
	errCh := make(chan error, 1)

	go func() {
		serr := srv.ListenAndServe()
		// http.ErrServerClosed is the normal path during Shutdown
		if serr != nil && !errors.Is(serr, http.ErrServerClosed) {
			errCh <- serr
			return
		}

		errCh <- nil
	}()

	slog.Info("API started", "port", cfg.Port, "store", cfg.Ledger.Store)

	// --- Wait until either context cancels or server errors out ---
	select {
	case <-ctx.Done():
		// graceful path; deferred shutdownqueue.Shutdown will run
		return nil
	case serr := <-errCh:
		if serr != nil {
			return fmt.Errorf("server error: %w", serr)
		}

		return nil
	}
}

func openStore(ctx context.Context, cfg *apiConfig) (wagering.Store, error) {
	if cfg.Ledger.Store == config.StoreMemory {
		slog.Warn("ledger is kept in memory and is lost on exit")
		return wagering.NewMemoryStore(), nil
	}

	db, err := pgutils.OpenDB(ctx, cfg.Postgres)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	shutdownqueue.AddNamed("database", func(context.Context) error {
		return db.Close()
	})

	return wagering.NewPostgresStore(db), nil
}

// seedContract initializes the contract from LEDGER_OWNER_ID on first start.
func seedContract(ctx context.Context, svc *wagering.Service, cfg config.LedgerConfig) error {
	if cfg.OwnerID == "" {
		return nil
	}

	_, err := svc.Init(ctx, cfg.OwnerID, cfg.NftAccount)
	if err != nil && !errors.Is(err, ledger.ErrAlreadyInitialized) {
		return fmt.Errorf("init contract: %w", err)
	}

	return nil
}
