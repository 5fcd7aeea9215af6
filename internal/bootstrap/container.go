package bootstrap

import (
	"context"
	"log"

	"formhive-be/internal/config"
	"formhive-be/internal/controller"
	"formhive-be/internal/pkg/logger"
	"formhive-be/internal/pkg/mailer"
	"formhive-be/internal/repository/unitofwork"
	"formhive-be/internal/service"
	pktNats "formhive-be/pkg/nats"
	"formhive-be/pkg/payment"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	SubscriptionController controller.ISubscriptionController
	WebhookController      controller.IWebhookController
	PlanController         controller.IPlanController
	FormController         controller.IFormController

	// Exposed for cmd/expire and for tests of the wiring
	SubscriptionService service.ISubscriptionService

	Logger logger.ILogger
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// Core facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	emailService := mailer.NewEmailService(
		cfg.SMTP.Host,
		cfg.SMTP.Port,
		cfg.SMTP.Email,
		cfg.SMTP.Password,
		cfg.SMTP.Sender,
	)

	// Event bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// NATS
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
	}

	// Redis, best effort: the webhook replay cache degrades to the
	// database check when it is down.
	opt, err := redis.ParseURL(cfg.App.RedisURL)
	if err != nil {
		log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
		opt = &redis.Options{
			Addr: cfg.App.RedisURL,
		}
	}
	rdb := redis.NewClient(opt)
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		log.Printf("[WARN] Failed to connect to Redis: %v", err)
	}

	// Payment gateways
	providers := payment.NewRegistry(
		payment.NewMidtransProvider(
			cfg.Billing.MidtransServerKey,
			cfg.Billing.MidtransIsProduction,
			cfg.App.ClientURL+"/account?payment=success",
		),
	)

	// Services
	publisherService := service.NewPublisherService(pubSub, natsPub, sysLogger)
	subscriptionService := service.NewSubscriptionService(uowFactory, providers, publisherService, sysLogger, cfg.Billing.Enabled)
	webhookService := service.NewWebhookService(uowFactory, providers, subscriptionService, publisherService, rdb, sysLogger)
	usageService := service.NewUsageService(uowFactory, sysLogger)
	planService := service.NewPlanService(uowFactory, sysLogger)

	notificationService := service.NewNotificationService(pubSub, uowFactory, emailService, sysLogger)
	if err := notificationService.Start(context.Background()); err != nil {
		log.Printf("[WARN] Failed to start notification worker: %v", err)
	}

	return &Container{
		SubscriptionController: controller.NewSubscriptionController(subscriptionService),
		WebhookController:      controller.NewWebhookController(webhookService),
		PlanController:         controller.NewPlanController(planService),
		FormController:         controller.NewFormController(usageService),

		SubscriptionService: subscriptionService,
		Logger:              sysLogger,
	}
}
