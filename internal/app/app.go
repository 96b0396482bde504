package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/redis/go-redis/v9"
	_ "modernc.org/sqlite"

	"github.com/rhinobase/workshop/internal/cache"
	"github.com/rhinobase/workshop/internal/config"
	"github.com/rhinobase/workshop/internal/repo"
	"github.com/rhinobase/workshop/internal/service"
	"github.com/rhinobase/workshop/migrations"
)

type App struct {
	cfg    config.Config
	logger *log.Logger
	pg     *pgxpool.Pool
	sqlite *sql.DB
	redis  *redis.Client
	router *gin.Engine
}

// New opens the configured store and optional Redis cache, applies
// migrations and builds the router. Close releases everything New opened.
func New(ctx context.Context, cfg config.Config, logger *log.Logger) (*App, error) {
	a := &App{cfg: cfg, logger: logger}

	taskRepo, err := a.openStore(ctx)
	if err != nil {
		return nil, err
	}

	var taskCache *cache.TaskCache
	if cfg.Redis.Enabled() {
		rdb, err := newRedis(ctx, cfg.Redis)
		if err != nil {
			_ = a.Close(ctx)
			return nil, err
		}
		a.redis = rdb
		taskCache = cache.NewTaskCache(rdb, cfg.Redis.DefaultTTL.Duration())
		logger.Info("redis list cache enabled", "addr", cfg.Redis.Addr, "ttl", cfg.Redis.DefaultTTL.Duration())
	} else {
		logger.Info("redis not configured, list cache disabled")
	}

	svc := service.NewTaskService(taskRepo, taskCache, logger)
	a.router = NewRouter(cfg, svc, logger)
	return a, nil
}

func (a *App) Router() *gin.Engine {
	return a.router
}

func (a *App) Close(ctx context.Context) error {
	_ = ctx
	var errs []error
	if a.redis != nil {
		errs = append(errs, a.redis.Close())
	}
	if a.pg != nil {
		a.pg.Close()
	}
	if a.sqlite != nil {
		errs = append(errs, a.sqlite.Close())
	}
	return errors.Join(errs...)
}

func (a *App) openStore(ctx context.Context) (repo.TaskRepo, error) {
	switch a.cfg.DB.Driver {
	case config.DriverSQLite:
		db, err := newSQLite(ctx, a.cfg.DB.SQLitePath)
		if err != nil {
			return nil, err
		}
		a.sqlite = db
		if a.cfg.DB.AutoMigrate {
			if err := a.migrate(ctx, db, goose.DialectSQLite3); err != nil {
				_ = db.Close()
				return nil, err
			}
		}
		a.logger.Info("using sqlite store", "path", a.cfg.DB.SQLitePath)
		return repo.NewSQLiteTaskRepo(db), nil
	default:
		pool, err := newPostgres(ctx, a.cfg.DB.DSN)
		if err != nil {
			return nil, err
		}
		a.pg = pool
		if a.cfg.DB.AutoMigrate {
			db := stdlib.OpenDBFromPool(pool)
			err := a.migrate(ctx, db, goose.DialectPostgres)
			_ = db.Close()
			if err != nil {
				pool.Close()
				return nil, err
			}
		}
		a.logger.Info("using postgres store")
		return repo.NewPGTaskRepo(pool), nil
	}
}

func (a *App) migrate(ctx context.Context, db *sql.DB, dialect goose.Dialect) error {
	results, err := migrations.Up(ctx, db, dialect)
	if err != nil {
		return err
	}
	for _, r := range results {
		a.logger.Info("migration applied", "version", r.Source.Version, "file", r.Source.Path, "took", r.Duration)
	}
	return nil
}

func newPostgres(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("pg parse config: %w", err)
	}
	cfg.MaxConns = 10
	cfg.MinConns = 2
	cfg.MaxConnIdleTime = 5 * time.Minute
	cfg.MaxConnLifetime = 30 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("pg connect: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pg ping: %w", err)
	}

	return pool, nil
}

func newSQLite(ctx context.Context, path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("sqlite open: %w", err)
	}
	// One writer at a time; also keeps ":memory:" on a single database.
	db.SetMaxOpenConns(1)
	if _, err := db.ExecContext(ctx, `PRAGMA busy_timeout = 5000`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite pragma: %w", err)
	}
	return db, nil
}

func newRedis(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	opt, err := cfg.Options()
	if err != nil {
		return nil, err
	}
	rdb := redis.NewClient(opt)

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return rdb, nil
}
