package cmd

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/DTMaciejM/pracosfera-main/internal/application"
	"github.com/DTMaciejM/pracosfera-main/internal/config"
	httptransport "github.com/DTMaciejM/pracosfera-main/internal/http"
	"github.com/DTMaciejM/pracosfera-main/internal/lifecycle"
	"github.com/DTMaciejM/pracosfera-main/internal/notify"
	"github.com/DTMaciejM/pracosfera-main/internal/persistence/sqlite"
	"github.com/DTMaciejM/pracosfera-main/internal/runner"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API together with the periodic reconciler",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
			slog.SetDefault(logger)

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			pool, err := sqlite.Open(cfg.SQLiteDSN)
			if err != nil {
				return fmt.Errorf("open storage: %w", err)
			}
			defer func() {
				if cerr := pool.Close(); cerr != nil {
					logger.Error("failed to close storage", "error", cerr)
				}
			}()

			if err := pool.Migrate(context.Background()); err != nil {
				return fmt.Errorf("apply migrations: %w", err)
			}

			idGenerator := func() string { return uuid.NewString() }
			tokenGenerator := func() string { return randomHex(32) }
			numberGenerator := func() string {
				return "RES-" + strings.ToUpper(randomHex(4))
			}
			now := time.Now

			reservationRepo := sqlite.NewReservationRepository(pool)
			shiftRepo := sqlite.NewShiftRepository(pool)
			userRepo := sqlite.NewUserRepository(pool)
			sessionRepo := sqlite.NewSessionRepository(pool)

			var notifier application.ReservationNotifier
			if cfg.WebhookURL != "" {
				notifier = notify.NewWebhookNotifier(cfg.WebhookURL, shiftRepo, userRepo, nil, logger)
			}

			reservationService := application.NewReservationService(
				reservationRepo, shiftRepo, userRepo, notifier,
				idGenerator, numberGenerator, now, logger)
			shiftService := application.NewShiftService(shiftRepo, userRepo, idGenerator, logger)
			userService := application.NewUserService(userRepo, idGenerator, logger)
			authService := application.NewAuthService(userRepo, sessionRepo, nil,
				idGenerator, tokenGenerator, now, cfg.SessionTTL, logger)

			engine := lifecycle.NewEngine(cfg.VerificationStep)
			engine.VerificationTTL = cfg.VerificationTTL
			reconcileService := application.NewReconcileService(reservationRepo, engine, now, logger)

			go func() {
				if err := runner.New(reconcileService, cfg.ReconcileInterval, logger).Run(ctx); err != nil &&
					!errors.Is(err, context.Canceled) {
					logger.Error("reconcile runner stopped", "error", err)
				}
			}()

			codec := httptransport.NewSessionCodec([]byte(cfg.SessionSecret), blockKey(cfg.CookieBlockKey))

			router := httptransport.NewRouter(httptransport.RouterConfig{
				Auth:         httptransport.NewAuthHandler(authService, codec, logger),
				Reservations: httptransport.NewReservationHandler(reservationService, logger),
				Shifts:       httptransport.NewShiftHandler(shiftService, logger),
				Users:        httptransport.NewUserHandler(userService, logger),
				Reports:      httptransport.NewReportHandler(reservationService, logger),
			})

			protected := httptransport.RequireSession(authService, codec, logger)(router)
			handler := httptransport.RequestLogger(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path == "/sessions" && r.Method == http.MethodPost {
					router.ServeHTTP(w, r)
					return
				}
				protected.ServeHTTP(w, r)
			}))

			server := &http.Server{
				Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
				Handler:           handler,
				ReadHeaderTimeout: 10 * time.Second,
				ReadTimeout:       30 * time.Second,
				WriteTimeout:      30 * time.Second,
				IdleTimeout:       60 * time.Second,
			}

			go func() {
				<-ctx.Done()
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
					logger.Error("failed to shutdown server", "error", err)
				}
			}()

			logger.Info("pracosfera API listening", "addr", server.Addr)
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		},
	}
}

func blockKey(key string) []byte {
	if key == "" {
		return nil
	}
	return []byte(key)
}

func randomHex(bytes int) string {
	if bytes <= 0 {
		bytes = 16
	}
	buf := make([]byte, bytes)
	if _, err := io.ReadFull(rand.Reader, buf); err != nil {
		return fmt.Sprintf("fallback-%d", time.Now().UnixNano())
	}
	return hex.EncodeToString(buf)
}
