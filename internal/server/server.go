package server

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/OFFIS-RIT/atlas/internal/queue"
	mid "github.com/OFFIS-RIT/atlas/internal/server/middleware"
	"github.com/OFFIS-RIT/atlas/internal/util"
	"github.com/OFFIS-RIT/atlas/pkg/graph"
	"github.com/OFFIS-RIT/atlas/pkg/identity"
	"github.com/OFFIS-RIT/atlas/pkg/logger"
	pgxstore "github.com/OFFIS-RIT/atlas/pkg/store/pgx"

	"github.com/go-playground/validator"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

type CustomValidator struct {
	validator *validator.Validate
}

func (cv *CustomValidator) Validate(i any) error {
	if err := cv.validator.Struct(i); err != nil {
		return err
	}
	return nil
}

func Init() {
	e := echo.New()
	e.Validator = &CustomValidator{validator: validator.New()}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	databaseURL := util.GetEnv("DATABASE_URL")
	if err := util.RetryErr(10, func() error {
		return pgxstore.Migrate(databaseURL)
	}); err != nil {
		logger.Fatal("Failed to apply migrations", "err", err)
	}

	conn, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		logger.Fatal("Failed to connect to database", "err", err)
	}
	defer conn.Close()

	que := queue.Init()
	defer que.Close()
	ch, err := que.Channel()
	if err != nil {
		logger.Fatal("Failed to open channel", "err", err)
	}

	if err := queue.SetupQueues(ch, queue.Queues); err != nil {
		logger.Fatal("Failed to set up queues", "err", err)
	}

	graphClient, err := NewGraphClient(ctx, conn)
	if err != nil {
		logger.Fatal("Failed to create graph client", "err", err)
	}
	defer graphClient.Close(context.Background())

	authSecret := util.GetEnv("AUTH_SECRET")
	if authSecret == "" {
		logger.Fatal("AUTH_SECRET is not set")
	}
	masterAPIKey := util.GetEnv("MASTER_API_KEY")

	e.Use(mid.AppContextMiddleware(graphClient, ch, []byte(authSecret), masterAPIKey))
	e.Use(middleware.CORS())
	e.Use(middleware.RequestLogger())
	e.Use(middleware.Recover())
	e.Use(middleware.BodyLimit("64M"))

	RegisterRoutes(e)

	go func() {
		port := util.GetEnv("PORT")
		if port == "" {
			port = "8080"
		}
		logger.Info("Starting server", "port", port)
		if err := e.Start(":" + port); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed shutting down server", "err", err)
		}
	}()

	<-ctx.Done()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		logger.Error("Failed to shutdown server", "err", err)
	}
}

// NewGraphClient assembles the engine client from the environment: the
// PostgreSQL store, a shared redis identity cache when REDIS_ADDR is set (a
// process-local one otherwise), the optional property schema file and the
// identity mode.
func NewGraphClient(ctx context.Context, conn *pgxpool.Pool) (*graph.Client, error) {
	var cache identity.Cache
	if addr := util.GetEnv("REDIS_ADDR"); addr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: util.GetEnv("REDIS_PASSWORD"),
			DB:       util.GetEnvInt("REDIS_DB", 0),
		})
		if err := util.RetryErrWithContext(ctx, 3, func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		}); err != nil {
			logger.Warn("Redis not reachable, falling back to local cache", "err", err)
		} else {
			cache = identity.NewRedisCache(redisClient, util.GetEnvInt("CACHE_SIZE", 0))
		}
	}
	if cache == nil {
		cache = identity.NewLocalCache(util.GetEnvInt("CACHE_SIZE", 0))
	}

	var schema *graph.PropertySchema
	if path := util.GetEnv("PROPERTY_SCHEMA_PATH"); path != "" {
		loaded, err := graph.LoadPropertySchema(path)
		if err != nil {
			return nil, err
		}
		schema = loaded
	}

	return graph.NewClient(graph.Params{
		Store:          pgxstore.NewStoreWithConnection(conn),
		Cache:          cache,
		Mode:           graph.IdentityMode(util.GetEnvString("IDENTITY_MODE", string(graph.ModeStrict))),
		Schema:         schema,
		ParallelGroups: util.GetEnvInt("UNIFY_PARALLEL_GROUPS", 0),
	})
}
