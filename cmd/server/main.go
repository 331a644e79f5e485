package main

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"

	"appforge/internal/config"
	httpctrl "appforge/internal/controllers/http"
	"appforge/internal/infra"
	mmysql "appforge/internal/infra/mysql"
	"appforge/internal/infra/rabbitmq"
	"appforge/internal/repository"
	memoryrepo "appforge/internal/repository/memory"
	mysqlrepo "appforge/internal/repository/mysql"
	"appforge/internal/services"
)

func main() {
	logrus.SetFormatter(&logrus.JSONFormatter{})

	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("config load failed")
	}

	var orderRepo repository.OrderRepository
	var paymentRepo repository.PaymentRepository
	if cfg.MySQLHost != "" {
		db, err := mmysql.Open(cfg.MySQLUser, cfg.MySQLPassword, cfg.MySQLHost, cfg.MySQLPort, cfg.MySQLDatabase)
		if err != nil {
			logrus.WithError(err).Fatal("mysql connect failed")
		}
		sqlDB, _ := db.DB()
		sqlDB.SetMaxOpenConns(100)
		sqlDB.SetMaxIdleConns(20)
		sqlDB.SetConnMaxLifetime(5 * time.Minute)

		orderRepo = mysqlrepo.NewOrderRepository(db)
		paymentRepo = mysqlrepo.NewPaymentRepository(db)
	} else {
		logrus.Warn("MYSQL_HOST unset, using in-memory repositories")
		orderRepo = memoryrepo.NewOrderRepository()
		paymentRepo = memoryrepo.NewPaymentRepository()
	}

	var publisher rabbitmq.PublisherInterface
	if cfg.RabbitURL != "" {
		p, err := rabbitmq.NewPublisher(cfg.RabbitURL, cfg.RabbitExchange)
		if err != nil {
			logrus.WithError(err).Fatal("rabbitmq connect failed")
		}
		defer p.Close()
		publisher = p
	} else {
		logrus.Warn("RABBITMQ_URL unset, events go to the log only")
		publisher = rabbitmq.LogPublisher{}
	}

	orderService := services.NewOrderService(orderRepo, publisher)
	paymentService := services.NewPaymentService(paymentRepo, orderService, publisher, services.PaymentConfig{
		Latency:       cfg.PaymentLatency,
		RefundLatency: cfg.RefundLatency,
		FailureRate:   cfg.PaymentFailureRate,
		WebhookSecret: cfg.WebhookSecret,
	})
	orderService.SetRefunder(paymentService)

	dashboardService := services.NewDashboardService(orderRepo)

	if cfg.RedisHost != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:         cfg.RedisHost + ":6379",
			DB:           0,
			PoolSize:     200,
			MinIdleConns: 20,
			DialTimeout:  2 * time.Second,
			ReadTimeout:  500 * time.Millisecond,
			WriteTimeout: 500 * time.Millisecond,
		})
		orderService.SetRedisClient(redisClient)
		dashboardService.SetRedisClient(redisClient)
	}

	pipelineService := services.NewPipelineService(
		orderService,
		paymentService,
		infra.NewCodegenClient(cfg.CodegenURL, cfg.CollaboratorT),
		infra.NewContractClient(cfg.ContractURL, cfg.ContractKey, cfg.CollaboratorT),
		infra.NewGitHubClient(cfg.GitHubURL, cfg.GitHubToken, cfg.GitHubOwner, cfg.CollaboratorT),
		infra.NewVercelClient(cfg.VercelURL, cfg.VercelToken, cfg.CollaboratorT),
		infra.NewClusterClient(cfg.ClusterURL, cfg.ClusterToken, cfg.CollaboratorT),
		services.PipelineConfig{
			PaymentWaitTimeout: cfg.PaymentWaitTimeout,
			ClusterNamespace:   cfg.ClusterNS,
			VendorName:         cfg.VendorName,
			VendorEmail:        cfg.VendorEmail,
		},
	)

	watchdog := services.NewWatchdog(orderRepo, publisher, cfg.WatchdogSchedule, cfg.StuckThreshold)
	if err := watchdog.Start(); err != nil {
		logrus.WithError(err).Fatal("watchdog start failed")
	}
	defer watchdog.Stop()

	handler := httpctrl.NewHandler(orderService, paymentService, dashboardService, pipelineService)

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	handler.RegisterRoutes(r)

	logrus.WithField("port", cfg.Port).Info("starting appforge server")
	if err := r.Run(":" + cfg.Port); err != nil {
		logrus.WithError(err).Fatal("server run failed")
	}
}
