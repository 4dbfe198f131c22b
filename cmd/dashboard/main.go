package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Sternrassler/che-dashboard/internal/config"
	"github.com/Sternrassler/che-dashboard/pkg/etag"
	"github.com/Sternrassler/che-dashboard/pkg/logging"
	"github.com/Sternrassler/che-dashboard/pkg/metrics"
	"github.com/Sternrassler/che-dashboard/pkg/route"
	"github.com/Sternrassler/che-dashboard/pkg/session"
	"github.com/alexflint/go-arg"
	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stderr); err != nil {
		if errors.Is(err, arg.ErrHelp) {
			config.WriteHelp(os.Stdout)
			return
		}
		fmt.Fprintf(os.Stderr, "dashboard: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, logOutput io.Writer) error {
	cfg, err := config.Load(args)
	if err != nil {
		return err
	}

	logger := logging.Setup(logging.Config{
		Level:  logging.LogLevel(cfg.LogLevel),
		Pretty: cfg.LogPretty,
		Output: logOutput,
	})

	store, closeStore, err := newStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	a, err := newApp(ctx, cfg, store, logger)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              cfg.Listen,
		Handler:           a.handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().
			Str("addr", cfg.Listen).
			Str("api", cfg.APIURL+cfg.APIPrefix).
			Msg("Starting dashboard server")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info().Msg("Shutting down dashboard server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// newStore picks the validator store. Without a Redis address validators
// live in process memory.
func newStore(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (etag.Store, func(), error) {
	if cfg.RedisAddr == "" {
		logger.Info().Msg("Using in-memory ETag store")
		return etag.NewMemoryStore(), func() {}, nil
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr: cfg.RedisAddr,
	})

	if err := redisClient.Ping(ctx).Err(); err != nil {
		redisClient.Close()
		return nil, nil, fmt.Errorf("connect to redis at %s: %w", cfg.RedisAddr, err)
	}
	logger.Info().Str("addr", cfg.RedisAddr).Msg("Connected to Redis")

	return etag.NewRedisStore(redisClient), func() { redisClient.Close() }, nil
}

// app wires the session services into the gated dashboard routes.
type app struct {
	router  *route.Router
	users   *session.UserService
	profile *session.ProfileService
	logger  zerolog.Logger
}

func newApp(ctx context.Context, cfg *config.Config, store etag.Store, logger zerolog.Logger) (*app, error) {
	client, err := session.NewClient(session.Config{
		BaseURL: cfg.APIURL,
		Prefix:  cfg.APIPrefix,
		Token:   cfg.Token,
		Timeout: cfg.RequestTimeout,
		Store:   store,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("create API client: %w", err)
	}

	a := &app{
		router:  route.NewRouter(logger),
		users:   session.NewUserService(client, logger),
		profile: session.NewProfileService(client, cfg.PreferencesTimeout, logger),
		logger:  logger,
	}
	a.router.Subscribe(route.LogListener(logger))

	// Start loading preferences before the first navigation
	a.profile.GetPreferences(ctx)

	gate := route.NewGate(a.users, a.profile, logger)
	gate.AccessWhen(a.router, route.DefaultRoute, &route.Route{Name: "home", Handler: http.HandlerFunc(a.home)})
	gate.AccessWhen(a.router, "/workspaces", &route.Route{Name: "workspaces", Handler: a.page("workspaces")})
	gate.AccessWhen(a.router, "/workspace/{namespace}/{name}", &route.Route{Name: "workspace-details", Handler: a.page("workspace-details")})
	gate.AccessWhen(a.router, "/projects", &route.Route{Name: "projects", Handler: a.page("projects")})
	gate.AccessWhen(a.router, "/ide/{namespace}/{name}", &route.Route{Name: "ide", Handler: a.page("ide")})
	gate.AccessOtherwise(a.router, &route.Route{Handler: http.HandlerFunc(a.home)})

	a.router.Handle("/health", http.HandlerFunc(healthHandler))
	a.router.Handle("/metrics", metrics.Handler())

	return a, nil
}

// handler returns the router wrapped with panic recovery and access logs.
func (a *app) handler() http.Handler {
	access := logging.AccessWriter(a.logger.With().Str("component", "access").Logger())
	recovery := handlers.RecoveryHandler(
		handlers.RecoveryLogger(recoveryLogger{a.logger}),
		handlers.PrintRecoveryStack(true),
	)
	return recovery(handlers.CombinedLoggingHandler(access, a.router))
}

func (a *app) home(w http.ResponseWriter, r *http.Request) {
	prefs := a.profile.GetPreferences(r.Context())
	writeJSON(w, map[string]any{
		"route":       "home",
		"user":        a.users.Current(),
		"preferences": prefs.Values(),
	})
}

func (a *app) page(name string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{
			"route": name,
			"vars":  mux.Vars(r),
		})
	})
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, "OK")
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// recoveryLogger adapts zerolog to handlers.RecoveryHandlerLogger.
type recoveryLogger struct {
	logger zerolog.Logger
}

func (l recoveryLogger) Println(v ...interface{}) {
	l.logger.Error().Msg(fmt.Sprint(v...))
}
