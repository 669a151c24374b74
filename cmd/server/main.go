// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in internal services packages.
package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/lib/pq"
	"golang.org/x/sync/errgroup"

	"contactvault/internal/changelog"
	"contactvault/internal/contacts/cache"
	contactcrypto "contactvault/internal/contacts/crypto"
	contacthandler "contactvault/internal/contacts/handler"
	contactmetrics "contactvault/internal/contacts/metrics"
	"contactvault/internal/contacts/service"
	"contactvault/internal/contacts/store"
	"contactvault/internal/jwtauth"
	"contactvault/internal/platform/config"
	"contactvault/internal/platform/httpserver"
	"contactvault/internal/platform/logger"
	platformredis "contactvault/internal/platform/redis"
	httpapi "contactvault/internal/transport/http"
)

func main() {
	cfg := config.FromEnv()
	log := logger.New()
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	keyring := contactcrypto.NewSymmetricKeyRing(cfg.Crypto.Passphrase, cfg.Crypto.Salt)
	cryptor := contactcrypto.NewLocalCryptor()

	redisClient, err := platformredis.New(cfg.Redis)
	if err != nil {
		log.Error("redis setup failed", "error", err)
		os.Exit(1)
	}

	var pool *pgxpool.Pool
	if cfg.Postgres.URL != "" {
		pool, err = pgxpool.New(ctx, cfg.Postgres.URL)
		if err != nil {
			log.Error("postgres setup failed", "error", err)
			os.Exit(1)
		}
		defer pool.Close()
	}

	contactStore := pickStore(cfg, pool, redisClient, log)

	contactCache, err := cache.New(cache.DefaultSize)
	if err != nil {
		log.Error("cache setup failed", "error", err)
		os.Exit(1)
	}

	group, ctx := errgroup.WithContext(ctx)

	changelogStore, changelogDB := pickChangelogStore(cfg, log)
	if changelogDB != nil {
		defer changelogDB.Close()
	}
	publisher := changelog.NewPublisher(changelogStore)

	if len(cfg.Kafka.Brokers) > 0 && changelogDB != nil {
		kafkaPublisher, err := changelog.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		if err != nil {
			log.Error("kafka setup failed", "error", err)
			os.Exit(1)
		}
		defer kafkaPublisher.Close()
		relay := changelog.NewOutboxRelay(changelogDB, kafkaPublisher, log)
		group.Go(func() error {
			err := relay.Run(ctx)
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		})
	}

	contacts := service.New(
		contactStore,
		contactCache,
		cryptor,
		service.StaticKeySource{Recipient: keyring, Signer: keyring},
		publisher,
		contactmetrics.New(),
		log,
	)

	jwtService := jwtauth.NewJWTService(cfg.Server.JWTSigningKey, "contactvault", "contactvault-api")
	router := httpapi.NewRouter(
		contacthandler.New(contacts, log),
		jwtService,
		log,
		healthCheckers(redisClient)...,
	)

	srv := httpserver.New(cfg.Server.Addr, router)

	group.Go(func() error {
		log.Info("starting contactvault", "addr", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	group.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := group.Wait(); err != nil {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}

// pickStore selects the persistence backend: remote vault first, then
// Postgres, then Redis, then process memory.
func pickStore(cfg config.Config, pool *pgxpool.Pool, redisClient *platformredis.Client, log *slog.Logger) store.Store {
	switch {
	case cfg.Remote.URL != "":
		log.Info("using remote contact store", "url", cfg.Remote.URL)
		return store.NewRemoteStore(cfg.Remote.URL, cfg.Remote.Token, log)
	case pool != nil:
		log.Info("using postgres contact store")
		return store.NewPostgresStore(pool)
	case redisClient != nil:
		log.Info("using redis contact store")
		return store.NewRedisStore(redisClient.Client)
	default:
		log.Info("using in-memory contact store")
		return store.NewInMemoryStore()
	}
}

// pickChangelogStore prefers the Postgres outbox so mutations survive
// restarts and reach Kafka; without Postgres the log stays in memory.
func pickChangelogStore(cfg config.Config, log *slog.Logger) (changelog.Store, *sql.DB) {
	if cfg.Postgres.URL == "" {
		return changelog.NewInMemoryStore(), nil
	}
	db, err := sql.Open("postgres", cfg.Postgres.URL)
	if err != nil {
		log.Error("changelog store setup failed", "error", err)
		os.Exit(1)
	}
	return changelog.NewPostgresStore(db), db
}

func healthCheckers(redisClient *platformredis.Client) []httpapi.HealthChecker {
	if redisClient == nil {
		return nil
	}
	return []httpapi.HealthChecker{redisClient}
}
