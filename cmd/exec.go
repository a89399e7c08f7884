package cmd

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/foaademad/event-test/config"
	"github.com/foaademad/event-test/data"
	"github.com/foaademad/event-test/internal/services"
	"github.com/foaademad/event-test/monitoring"
	"github.com/foaademad/event-test/security"
	"github.com/foaademad/event-test/utils"
	"github.com/pocketbase/pocketbase"
	"github.com/redis/go-redis/v9"
)

// server holds everything the routes and background jobs share.
type server struct {
	cfg      *config.Config
	redis    *redis.Client
	events   *services.EventStore
	auth     *services.AuthStore
	sessions services.SessionStore
	monitor  *monitoring.Monitor
	limiter  *security.RateLimiter
	guard    *security.Guard
	seed     *data.Seed
	pages    map[string]data.Page
}

func Start() error {
	cfg := config.LoadConfig()

	// Serve on the configured port when started without a command.
	if len(os.Args) < 2 {
		os.Args = append(os.Args, "serve", "--http=0.0.0.0:"+cfg.Port)
	}

	app := pocketbase.NewWithConfig(pocketbase.Config{
		DefaultDev: cfg.IsDevelopment(),
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	srv, err := newServer(ctx, cfg)
	if err != nil {
		return err
	}

	// Warm the catalog before accepting requests.
	warm := services.Go(ctx, srv.events.FetchEvents)
	if events, err := warm.Await(ctx); err != nil {
		log.Printf("Initial catalog load failed: %v", err)
	} else {
		log.Printf("Loaded %d events", len(events))
	}
	srv.monitor.Collect(ctx)

	jobs, err := srv.scheduleJobs(ctx)
	if err != nil {
		return err
	}
	jobs.Start()

	go handleShutdown(cancel)
	go func() {
		<-ctx.Done()
		<-jobs.Stop().Done()
		if srv.redis != nil {
			srv.redis.Close()
		}
	}()

	srv.registerRoutes(app)

	return app.Start()
}

func newServer(ctx context.Context, cfg *config.Config) (*server, error) {
	seed, err := data.LoadSeed(cfg.SeedFile)
	if err != nil {
		return nil, err
	}
	pages, err := data.LoadPages()
	if err != nil {
		return nil, err
	}

	srv := &server{cfg: cfg, seed: seed, pages: pages}

	switch cfg.SessionBackend {
	case "redis":
		srv.redis, err = utils.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			return nil, err
		}
		srv.sessions = services.NewRedisSessionStore(srv.redis)
	case "memory":
		srv.sessions = services.NewMemorySessionStore()
	default:
		return nil, fmt.Errorf("unknown session backend %q", cfg.SessionBackend)
	}
	log.Printf("Using %s session store", cfg.SessionBackend)

	var notifier services.Notifier = services.NopNotifier{}
	if cfg.PubNubEnabled() {
		notifier = services.NewPubNubNotifier(services.PubNubConfig{
			PublishKey:   cfg.PubNubPublishKey,
			SubscribeKey: cfg.PubNubSubscribeKey,
			SecretKey:    cfg.PubNubSecretKey,
			UserID:       cfg.PubNubUserID,
			Channel:      cfg.EventsChannel,
		})
		log.Printf("Publishing catalog changes to PubNub channel %s", cfg.EventsChannel)
	}

	latency := services.NewSimulatedLatency(cfg.LatencyScale)
	tracker := monitoring.OperationTracker{}
	loc := cfg.Location()

	srv.events = services.NewEventStore(
		services.NewMockBackend(seed.Events, latency),
		services.WithNotifier(notifier),
		services.WithTracker(tracker),
		services.WithClock(func() time.Time { return time.Now().In(loc) }),
		services.WithWeekStart(cfg.WeekStart),
	)

	srv.auth = services.NewAuthStore(seed.Users, srv.sessions, latency, services.AuthConfig{
		DemoPassword: cfg.DemoPassword,
		Secret:       []byte(cfg.JWTSecret),
		SessionTTL:   cfg.SessionTTL,
	})
	srv.auth.SetTracker(tracker)

	srv.monitor = monitoring.NewMonitor(srv.events, srv.auth, srv.sessions)
	srv.limiter = security.NewRateLimiter(cfg.AuthRateLimit, cfg.AuthRateBurst)
	srv.guard = security.NewGuard(srv.auth)

	return srv, nil
}

// handleShutdown handles graceful shutdown
func handleShutdown(cancel context.CancelFunc) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	<-sigChan
	log.Println("Shutdown signal received, cleaning up...")
	cancel()
}
