package server

import (
	"context"
	"net/http"

	"github.com/getsentry/sentry-go"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"

	"github.com/gdblog/go-blog/env"
	"github.com/gdblog/go-blog/event"
	"github.com/gdblog/go-blog/middleware"
	"github.com/gdblog/go-blog/publicapi"
	"github.com/gdblog/go-blog/service/comment"
	"github.com/gdblog/go-blog/service/limiters"
	"github.com/gdblog/go-blog/service/logger"
	"github.com/gdblog/go-blog/service/notifications"
	"github.com/gdblog/go-blog/service/persist/postgres"
	"github.com/gdblog/go-blog/service/redis"
	"github.com/gdblog/go-blog/util"
)

// Init initializes the server
func Init() {
	SetDefaults()

	ctx := context.Background()
	c := ClientInit(ctx)
	router := CoreInitServer(ctx, c)

	logger.For(nil).Info("Starting blog server...")
	http.Handle("/", router)
}

// Clients are the long-lived connections the server is built on
type Clients struct {
	Repos              *postgres.Repositories
	CommentRateLimiter *redis.Cache
}

// ClientInit opens the database and cache connections
func ClientInit(ctx context.Context) *Clients {
	return &Clients{
		Repos:              postgres.NewRepositories(postgres.MustCreateClient(), postgres.NewPgxClient()),
		CommentRateLimiter: redis.NewCache(redis.CommentRateLimiterCache),
	}
}

// CoreInitServer builds the router from already initialized clients
func CoreInitServer(ctx context.Context, clients *Clients) *gin.Engine {
	InitSentry()
	initLogger()

	if env.GetString("ENV") != "production" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestID(), middleware.Sentry(true), middleware.Logger(), middleware.HandleCORS(), middleware.ErrLogger())

	stores := publicapi.StoresFrom(clients.Repos)
	sender := event.NewSender(notifications.NewFanout(stores.Posts, stores.Comments, stores.Notifications))
	api := publicapi.New(stores, sender,
		comment.WithFetchCap(env.GetInt("COMMENT_FETCH_CAP")),
		comment.WithMaxDepth(env.GetInt("COMMENT_MAX_DEPTH")),
	)

	commentLimiter := limiters.NewKeyRateLimiter(ctx, clients.CommentRateLimiter, "comments", env.GetInt64("COMMENT_RATE_LIMIT"), env.GetSeconds("COMMENT_RATE_WINDOW_SECONDS"))

	logger.For(nil).Info("Registering handlers...")
	return HandlersInit(router, api, stores, commentLimiter)
}

func SetDefaults() {
	viper.SetDefault("ENV", "local")
	viper.SetDefault("PORT", 4000)
	viper.SetDefault("POSTGRES_HOST", "0.0.0.0")
	viper.SetDefault("POSTGRES_PORT", 5432)
	viper.SetDefault("POSTGRES_USER", "postgres")
	viper.SetDefault("POSTGRES_PASSWORD", "")
	viper.SetDefault("POSTGRES_DB", "postgres")
	viper.SetDefault("REDIS_URL", "redis://localhost:6379")
	viper.SetDefault("SENTRY_DSN", "")
	viper.SetDefault("SENTRY_TRACES_SAMPLE_RATE", 0.2)
	viper.SetDefault("VERSION", "")
	viper.SetDefault("AUTH_JWT_SECRET", "Test-Secret")
	viper.SetDefault("AUTH_JWT_TTL", 60*60*24*14)
	viper.SetDefault("COMMENT_FETCH_CAP", comment.DefaultFetchCap)
	viper.SetDefault("COMMENT_MAX_DEPTH", comment.DefaultMaxDepth)
	viper.SetDefault("COMMENT_RATE_LIMIT", 10)
	viper.SetDefault("COMMENT_RATE_WINDOW_SECONDS", 60)
	viper.SetDefault("ALLOWED_ORIGINS", "http://localhost:3000")

	viper.AutomaticEnv()

	if env.GetString("ENV") != "local" {
		util.VarNotSetTo("SENTRY_DSN", "")
		util.VarNotSetTo("VERSION", "")
		util.VarNotSetTo("AUTH_JWT_SECRET", "Test-Secret")
	}
}

func initLogger() {
	opts := []logger.LoggerOption{}
	if env.GetString("ENV") != "local" {
		opts = append(opts, logger.WithJSONFormatter())
	}
	if env.GetString("ENV") != "production" {
		opts = append(opts, logger.WithLogLevel(logrus.DebugLevel))
	}
	logger.SetLoggerOptions(opts...)
}

func InitSentry() {
	if env.GetString("ENV") == "local" {
		logger.For(nil).Info("skipping sentry init")
		return
	}

	logger.For(nil).Info("initializing sentry...")

	err := sentry.Init(sentry.ClientOptions{
		Dsn:              env.GetString("SENTRY_DSN"),
		Environment:      env.GetString("ENV"),
		TracesSampleRate: env.GetFloat64("SENTRY_TRACES_SAMPLE_RATE"),
		Release:          env.GetString("VERSION"),
		AttachStacktrace: true,
		BeforeSend:       scrubAuthHeaders,
	})

	if err != nil {
		logger.For(nil).Fatalf("failed to start sentry: %s", err)
	}
}

// scrubAuthHeaders keeps bearer tokens out of reported events
func scrubAuthHeaders(event *sentry.Event, hint *sentry.EventHint) *sentry.Event {
	if event.Request == nil {
		return event
	}
	for k := range event.Request.Headers {
		if http.CanonicalHeaderKey(k) == "Authorization" {
			event.Request.Headers[k] = "[filtered]"
		}
	}
	return event
}
