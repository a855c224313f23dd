// cmd/server/main.go
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"
	"github.com/streadway/amqp"

	"github.com/mkandie/concierge-backend/internal/controller"
	"github.com/mkandie/concierge-backend/internal/db"
	"github.com/mkandie/concierge-backend/internal/dispatch"
	"github.com/mkandie/concierge-backend/internal/guard"
	"github.com/mkandie/concierge-backend/internal/handler"
	"github.com/mkandie/concierge-backend/internal/metrics"
	"github.com/mkandie/concierge-backend/internal/repository"
	"github.com/mkandie/concierge-backend/internal/scheduler"
	"github.com/mkandie/concierge-backend/internal/service"
	"github.com/mkandie/concierge-backend/internal/transport"
	"github.com/mkandie/concierge-backend/pkg/postgres"
)

func main() {
	// Load .env
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️ No .env file found, relying on OS environment variables")
	}

	// Init DB and apply schema
	db.Init()
	if err := postgres.MigrateUp(db.DSN(), migrationsPath()); err != nil {
		log.Fatalf("failed to run migrations: %v", err)
	}

	campaignRepo := &repository.CampaignRepository{DB: db.DB}
	notificationRepo := &repository.NotificationRepository{DB: db.DB}

	campaignGuard := buildGuard()
	sender := buildSender()
	dispatcher := dispatch.New(campaignRepo, sender)
	evaluator := scheduler.NewEvaluator(windowLocation())

	campaignService := service.NewCampaignService(campaignRepo, campaignGuard, dispatcher, evaluator)

	r := chi.NewRouter()

	if os.Getenv("METRICS_ENABLED") == "true" {
		reg := prometheus.NewRegistry()
		campaignService.WithMetrics(metrics.NewPrometheusSink(reg))
		r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	}

	campaignController := &controller.CampaignController{
		CampaignService: campaignService,
	}
	notificationHandler := handler.NewNotificationHandler(notificationRepo)

	// Campaign routes
	r.Post("/campaigns", campaignController.UpsertCampaign)
	r.Get("/campaigns", campaignController.ListCampaigns)
	r.Get("/campaigns/{id}", campaignController.GetCampaign)
	r.Post("/campaigns/run", campaignController.RunDueCampaigns)
	r.Post("/campaigns/{id}/deliver", campaignController.DeliverCampaign)

	// Notification feed routes
	r.Post("/notifications", notificationHandler.UpsertNotificationHandler)
	r.Get("/notifications", notificationHandler.ListNotificationsHandler)
	r.Get("/notifications/{id}", notificationHandler.GetNotificationHandler)

	startCronTrigger(campaignService)

	addr := os.Getenv("HTTP_ADDR")
	if addr == "" {
		addr = ":8080"
	}
	log.Println("🚀 Server running on", addr)
	log.Fatal(http.ListenAndServe(addr, r))
}

// buildGuard prefers the Redis lease so concurrent server instances
// serialize per campaign; without REDIS_ADDR the lease is process-local.
func buildGuard() guard.Guard {
	ttl := guard.DefaultLeaseTTL
	if raw := os.Getenv("GUARD_LEASE_TTL"); raw != "" {
		if parsed, err := time.ParseDuration(raw); err == nil && parsed > 0 {
			ttl = parsed
		} else {
			log.Printf("⚠️ invalid GUARD_LEASE_TTL %q, using default %s", raw, ttl)
		}
	}

	redisAddr := os.Getenv("REDIS_ADDR")
	if redisAddr == "" {
		log.Println("⚠️ REDIS_ADDR not set, delivery guard is process-local")
		return guard.NewLocalGuard(ttl)
	}

	client := redis.NewClient(&redis.Options{Addr: redisAddr})
	if err := client.Ping(context.Background()).Err(); err != nil {
		log.Fatalf("failed to ping redis: %v", err)
	}
	log.Println("✅ Connected to redis")
	return guard.NewRedisGuard(client, ttl)
}

// buildSender wires the AMQP push transport when a broker is
// configured, the mock transport otherwise.
func buildSender() dispatch.Sender {
	amqpURL := os.Getenv("AMQP_URL")
	if amqpURL == "" {
		log.Println("⚠️ AMQP_URL not set, using mock push transport")
		return transport.NewMockSender()
	}

	conn, err := amqp.Dial(amqpURL)
	if err != nil {
		log.Fatalf("failed to connect to RabbitMQ: %v", err)
	}
	sender, err := transport.NewAMQPSender(conn)
	if err != nil {
		log.Fatalf("failed to open queue channel: %v", err)
	}
	log.Println("✅ Connected to RabbitMQ")
	return sender
}

// startCronTrigger registers the periodic caller. Each fire is a
// discrete scheduler run, same entry point as the manual trigger.
func startCronTrigger(svc *service.CampaignService) {
	spec := os.Getenv("SCHEDULER_CRON")
	if spec == "" {
		return
	}

	c := cron.New()
	_, err := c.AddFunc(spec, func() {
		summary, err := svc.RunDue(context.Background())
		if err != nil {
			log.Printf("cron run failed: %v", err)
			return
		}
		log.Printf("cron run: checked=%d due=%d delivered=%d skipped=%d failed=%d",
			summary.Checked, summary.Due, summary.Delivered, summary.Skipped, summary.Failed)
	})
	if err != nil {
		log.Fatalf("invalid SCHEDULER_CRON %q: %v", spec, err)
	}
	c.Start()
	log.Println("⏰ Scheduler cron trigger enabled:", spec)
}

func migrationsPath() string {
	if p := os.Getenv("MIGRATIONS_PATH"); p != "" {
		return p
	}
	return "file://migrations"
}

func windowLocation() *time.Location {
	name := os.Getenv("DELIVERY_WINDOW_TZ")
	if name == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		log.Printf("⚠️ invalid DELIVERY_WINDOW_TZ %q, using UTC", name)
		return time.UTC
	}
	return loc
}
