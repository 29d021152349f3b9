package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"CampusEat/backend/go/internal/campus_status_service/api"
	"CampusEat/backend/go/internal/campus_status_service/cache"
	"CampusEat/backend/go/internal/campus_status_service/consumer"
	"CampusEat/backend/go/internal/campus_status_service/publisher"
	"CampusEat/backend/go/internal/campus_status_service/scheduler"
	"CampusEat/backend/go/internal/campus_status_service/service"
	"CampusEat/backend/go/internal/campus_status_service/store"
	"CampusEat/backend/go/internal/campus_status_service/summarizer"
	"CampusEat/backend/go/internal/campus_status_service/trainer"
	"CampusEat/backend/go/internal/config"
	kafkadb "CampusEat/backend/go/internal/database/kafka"
	"CampusEat/backend/go/internal/database/mysql"
	redisdb "CampusEat/backend/go/internal/database/redis"
	"CampusEat/backend/go/internal/llm"
	"CampusEat/backend/go/internal/models"
	"CampusEat/backend/go/pkg/logger"

	"github.com/sirupsen/logrus"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig("config.yaml")
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	// Initialize logger
	level, err := logrus.ParseLevel(cfg.Logger.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.Init(level)
	appLogger := logger.New("campus_status_service", "", "")

	appLogger.Info("Logger initialized")

	// 两个后台定时任务随进程退出信号一起停止。
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize database connection
	db, err := mysql.GetDB(&cfg.Databases.MySQL)
	if err != nil {
		appLogger.Fatal(err.Error())
	}
	appLogger.Info("Database connection established")

	// Auto-migrate database schema
	err = db.AutoMigrate(
		&models.User{},
		&models.University{},
		&models.CampusReport{},
		&models.CampusSummary{},
		&models.CampusPrediction{},
	)
	if err != nil {
		appLogger.Fatal(err.Error())
	}
	appLogger.Info("Database migration completed")

	// Initialize dependencies (Store -> Engine -> Scheduler -> Handler)
	statusStore := store.NewStore(db)

	// 最新摘要的 Redis 缓存；未配置 Redis 时整条链路直接读写数据库。
	var summaryCache *cache.RedisSummaryCache
	if cfg.Databases.Redis.Address != "" {
		redisClient, err := redisdb.GetClient(&cfg.Databases.Redis)
		if err != nil {
			appLogger.Fatal(err.Error())
		}
		summaryCache = cache.NewRedisSummaryCache(redisClient)
		appLogger.Info("Summary cache enabled")
	}

	llmClient, err := llm.NewClient(cfg.LLM)
	if err != nil {
		appLogger.Fatal(err.Error())
	}
	appLogger.Info("LLM client initialized: " + cfg.LLM.Provider)

	window := config.ParseDurationOr(cfg.Scheduler.ReportWindow, 10*time.Minute)
	engineLogger := logger.New("campus_status_service.summarizer", "", "")
	var engineCache summarizer.SummaryCache
	if summaryCache != nil {
		engineCache = summaryCache
	}
	engine := summarizer.NewEngine(statusStore, statusStore, engineCache, llmClient, summarizer.Options{
		Window:      window,
		Validity:    config.ParseDurationOr(cfg.Scheduler.SummaryValidity, 10*time.Minute),
		Timeout:     config.ParseDurationOr(cfg.LLM.Timeout, 60*time.Second),
		Temperature: cfg.LLM.Temperature,
	}, engineLogger)

	// 摘要任务的派发方式：启用 Kafka 时走队列，否则在进程内直接执行。
	var dispatcher scheduler.Dispatcher
	if cfg.Databases.Kafka.Enabled {
		kafkaClient, err := kafkadb.GetClient(&cfg.Databases.Kafka)
		if err != nil {
			appLogger.Fatal(err.Error())
		}
		defer kafkaClient.Close()
		jobPublisher := publisher.NewSummaryJobPublisher(kafkaClient)
		defer jobPublisher.Close()

		groupID := cfg.Databases.Kafka.GroupID
		if groupID == "" {
			groupID = "campus-summary-workers"
		}
		jobConsumer := consumer.NewSummaryJobConsumer(
			cfg.Databases.Kafka.Brokers,
			publisher.SummaryJobTopic,
			groupID,
			engine,
			logger.New("campus_status_service.consumer", "", ""),
		)
		defer jobConsumer.Close()
		jobConsumer.Start(ctx)

		dispatcher = jobPublisher
		appLogger.Info("Summary jobs dispatched via Kafka")
	} else {
		dispatcher = scheduler.NewLocalDispatcher(engine)
		appLogger.Info("Summary jobs dispatched in-process")
	}

	// 每周训练触发器；未配置训练服务时跳过。
	var trainingTrigger scheduler.TrainingTrigger
	if cfg.MLServer.URL != "" {
		trainerClient, err := trainer.NewClient(cfg.MLServer, cfg.Middleware.CircuitBreaker)
		if err != nil {
			appLogger.Fatal(err.Error())
		}
		trainingTrigger = trainerClient
		appLogger.Info("Weekly training trigger enabled")
	}

	sched := scheduler.New(statusStore, dispatcher, trainingTrigger, scheduler.Options{
		AggregationInterval: config.ParseDurationOr(cfg.Scheduler.AggregationInterval, 10*time.Minute),
		ReportWindow:        window,
		TrainingWeekday:     scheduler.ParseWeekday(cfg.Scheduler.TrainingWeekday),
		TrainingHour:        cfg.Scheduler.TrainingHour,
	}, logger.New("campus_status_service.scheduler", "", ""))
	sched.Start(ctx)
	appLogger.Info("Background schedulers started")

	statusService := service.NewService(statusStore, summaryCacheOrNil(summaryCache), logger.New("campus_status_service.service", "", ""))
	apiHandler := api.NewHandler(statusService)
	appLogger.Info("Dependencies injected")

	// Setup and start Gin router
	router, err := api.SetupRouter(apiHandler, cfg.Auth.JwtSecret, cfg.Middleware)
	if err != nil {
		appLogger.Fatal(err.Error())
	}
	appLogger.Info("Router setup completed")

	serverAddress := cfg.Server.Address
	if serverAddress == "" {
		serverAddress = ":8080"
	}
	appLogger.Info("Starting server on " + serverAddress)

	if err := router.Run(serverAddress); err != nil {
		appLogger.Fatal(err.Error())
	}
}

// summaryCacheOrNil 避免把携带 nil 指针的接口值传进门面。
func summaryCacheOrNil(c *cache.RedisSummaryCache) service.SummaryCache {
	if c == nil {
		return nil
	}
	return c
}
