package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/idilsaglam/items/internal/config"
	"github.com/idilsaglam/items/internal/server"
	"github.com/idilsaglam/items/internal/store"
	"github.com/idilsaglam/items/internal/store/jsonstore"
	"github.com/idilsaglam/items/internal/store/mongostore"
	"github.com/idilsaglam/items/internal/store/rediscache"
	"github.com/idilsaglam/items/internal/store/sqlitestore"
)

func newServeCmd(app *App) *cobra.Command {
	var addr, kind, dbURL, redisAddr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the items HTTP API",
		Args:  noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := app.cfg
			if addr != "" {
				cfg.Addr = addr
			}
			if kind != "" {
				cfg.Store = kind
			}
			if dbURL != "" {
				cfg.DatabaseURL = dbURL
			}
			if redisAddr != "" {
				cfg.RedisAddr = redisAddr
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			st, err := openStore(ctx, cfg, app.logger)
			if err != nil {
				return err
			}
			defer st.Close()

			app.logger.Info("store ready", "store", cfg.Store, "cache", cfg.RedisAddr != "")
			return server.New(st, app.logger).ListenAndServe(ctx, cfg.Addr)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default "+config.DefaultAddr+")")
	cmd.Flags().StringVar(&kind, "store", "", "Backend: sqlite|mongo|json")
	cmd.Flags().StringVar(&dbURL, "db", "", "SQLite or JSON file path")
	cmd.Flags().StringVar(&redisAddr, "redis", "", "Redis address for the list cache")
	return cmd
}

// openStore builds the backend named by cfg.Store, wrapped in the Redis list
// cache when cfg.RedisAddr is set.
func openStore(ctx context.Context, cfg config.Config, logger *log.Logger) (store.Store, error) {
	var (
		st  store.Store
		err error
	)
	switch strings.ToLower(strings.TrimSpace(cfg.Store)) {
	case "sqlite":
		st, err = sqlitestore.Open(ctx, cfg.DatabaseURL)
	case "mongo":
		if cfg.MongoURI == "" {
			return nil, usageErr("store mongo needs mongo_uri (MONGO_URI)")
		}
		st, err = mongostore.Open(ctx, cfg.MongoURI, cfg.MongoDatabase)
	case "json":
		path := cfg.DatabaseURL
		if path == "" || path == config.DefaultDatabaseURL {
			path = config.DefaultJSONPath
		}
		st, err = jsonstore.Open(path)
	default:
		return nil, usageErr("unknown store %q (sqlite|mongo|json)", cfg.Store)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", cfg.Store, err)
	}
	if cfg.RedisAddr == "" {
		return st, nil
	}
	cached, err := rediscache.Dial(ctx, cfg.RedisAddr, cfg.RedisPassword, st, logger)
	if err != nil {
		_ = st.Close()
		return nil, fmt.Errorf("redis %s: %w", cfg.RedisAddr, err)
	}
	return cached, nil
}
