// Command authd runs the authentication service: credential and Google
// sign-in flows, token rotation, logout, password reset, and the quota
// guard for metered routes.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	auth "github.com/linguetta/linguetta-auth"
	"github.com/linguetta/linguetta-auth/googleid"
	"github.com/linguetta/linguetta-auth/httpapi"
	"github.com/linguetta/linguetta-auth/jwt"
	"github.com/linguetta/linguetta-auth/middleware"
	"github.com/linguetta/linguetta-auth/quota"
	"github.com/linguetta/linguetta-auth/ratelimit"
	"github.com/linguetta/linguetta-auth/session"
	"github.com/linguetta/linguetta-auth/store/postgres"
)

func main() {
	_ = godotenv.Load()

	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()

	if err := run(logger); err != nil {
		logger.Fatal("authd exited", zap.Error(err))
	}
}

func run(logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := pgxpool.New(ctx, os.Getenv("DATABASE_URL"))
	if err != nil {
		return err
	}
	defer pool.Close()

	redisClient := redis.NewClient(&redis.Options{
		Addr:     envOr("REDIS_ADDR", "localhost:6379"),
		Password: os.Getenv("REDIS_PASSWORD"),
	})
	defer func() { _ = redisClient.Close() }()

	accessTTL, err := auth.ParseExpiry(envOr("JWT_EXPIRY", auth.DefaultAccessTokenExpiry))
	if err != nil {
		return err
	}

	jwtManager, err := jwt.NewManager(jwt.Config{
		Secret: []byte(os.Getenv("JWT_SECRET")),
		TTL:    accessTTL,
		Issuer: "linguetta",
	}, nil)
	if err != nil {
		return err
	}

	users := postgres.NewUserStore(pool)
	engine, err := auth.New(auth.Config{
		AccessTokenExpiry: envOr("JWT_EXPIRY", auth.DefaultAccessTokenExpiry),
		RefreshTokenDays:  envInt("REFRESH_TOKEN_DAYS", 30),
	}, auth.Deps{
		Users:  users,
		Tokens: postgres.NewRefreshTokenStore(pool),
		Resets: postgres.NewPasswordResetStore(pool),
		JWT:    jwtManager,
		Logger: logger,
	})
	if err != nil {
		return err
	}

	var googleVerifier googleid.Verifier
	if clientID := os.Getenv("GOOGLE_CLIENT_ID"); clientID != "" {
		googleVerifier = googleid.NewVerifier(clientID)
	}

	sessions := session.NewStore(redisClient, "sess", 30*24*time.Hour)

	throttle := ratelimit.New(envInt("THROTTLE_LIMIT", 30), time.Minute)
	throttle.Start()
	defer throttle.Stop()

	checker := quota.New(redisClient, quota.Config{
		Limit:  envInt("QUOTA_LIMIT", 100),
		Window: 24 * time.Hour,
		Prefix: "quota:ai",
	})

	prod := envOr("ENV", "development") == "production"
	handler := httpapi.NewHandler(engine, googleVerifier, httpapi.HandlerConfig{
		SecureCookies:    prod,
		RefreshTokenDays: envInt("REFRESH_TOKEN_DAYS", 30),
	}, logger)

	router := httpapi.NewRouter(httpapi.RouterDeps{
		Handler: handler,
		Authenticator: middleware.Authenticator(
			envOr("SESSION_COOKIE_NAME", "sessionId"),
			sessions,
			userLookup{users: users},
			jwtManager,
		),
		Throttle: throttle,
		Quota:    checker,
		Logger:   logger,
	})

	srv := &http.Server{
		Addr:         ":" + envOr("PORT", "8080"),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("authd listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// userLookup adapts the credential store to the middleware's identity check.
type userLookup struct {
	users auth.UserStore
}

func (l userLookup) ByEmail(ctx context.Context, email string) (*middleware.Identity, error) {
	user, err := l.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	return &middleware.Identity{UserID: user.ID, Email: user.Email}, nil
}

func (l userLookup) ByID(ctx context.Context, id string) (*middleware.Identity, error) {
	user, err := l.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return &middleware.Identity{UserID: user.ID, Email: user.Email}, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
