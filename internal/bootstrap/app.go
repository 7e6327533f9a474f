package bootstrap

import (
	"context"
	"fmt"
	"log"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	appsvc "learning-yogi/internal/app"
	"learning-yogi/internal/cache"
	"learning-yogi/internal/config"
	"learning-yogi/internal/extraction"
	"learning-yogi/internal/model"
	mysqlClient "learning-yogi/internal/platform/mysql"
	rabbitmqClient "learning-yogi/internal/platform/rabbitmq"
	redisClient "learning-yogi/internal/platform/redis"
	"learning-yogi/internal/repository"
	"learning-yogi/internal/storage"
	"learning-yogi/internal/worker"
)

type App struct {
	Config *config.Config
	MySQL  *gorm.DB
	Redis  *redis.Client
	MQConn *amqp.Connection
	Store  storage.Storage

	Documents      *appsvc.DocumentService
	Timetables     *appsvc.TimetableService
	PipelineWorker *worker.PipelineWorker

	StartedAt time.Time
}

func New(ctx context.Context) (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config failed: %w", err)
	}

	mysqlDB, err := mysqlClient.New(ctx, cfg.MySQLDSN())
	if err != nil {
		return nil, err
	}
	if err := mysqlDB.AutoMigrate(&model.Document{}, &model.Timetable{}); err != nil {
		return nil, fmt.Errorf("auto migrate tables failed: %w", err)
	}

	redisCli, err := redisClient.New(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		return nil, err
	}

	store, err := storage.NewMinIO(ctx, storage.MinIOConfig{
		Endpoint:  cfg.MinIO.Endpoint,
		AccessKey: cfg.MinIO.AccessKey,
		SecretKey: cfg.MinIO.SecretKey,
		Bucket:    cfg.MinIO.Bucket,
		UseSSL:    cfg.MinIO.UseSSL,
	})
	if err != nil {
		return nil, err
	}

	docRepo := repository.NewDocumentRepository(mysqlDB)
	ttRepo := repository.NewTimetableRepository(mysqlDB)
	ttCache := cache.NewTimetableCache(redisCli, time.Duration(cfg.Redis.TimetableTTLSeconds)*time.Second)
	gateway := extraction.NewHTTPGateway(extraction.Config{
		BaseURL:        cfg.Extraction.BaseURL,
		RequestTimeout: time.Duration(cfg.Extraction.TimeoutSeconds) * time.Second,
	})

	a := &App{
		Config:     cfg,
		MySQL:      mysqlDB,
		Redis:      redisCli,
		Store:      store,
		Timetables: appsvc.NewTimetableService(ttRepo, ttCache),
		StartedAt:  time.Now(),
	}

	// The broker is optional: without it, pipelines run on background
	// goroutines of this process instead of the task queue.
	var scheduler appsvc.PipelineScheduler
	if cfg.RabbitMQ.URL != "" {
		mqConn, err := rabbitmqClient.New(ctx, cfg.RabbitMQ.URL)
		if err != nil {
			return nil, err
		}
		a.MQConn = mqConn
		scheduler = rabbitmqClient.NewTaskPublisher(mqConn, cfg.RabbitMQ.PipelineQueue)
	} else {
		log.Printf("rabbitmq url not configured, running pipelines in-process")
	}

	a.Documents = appsvc.NewDocumentService(docRepo, ttRepo, store, gateway, scheduler)

	if a.MQConn != nil {
		var retry worker.RetryPolicy = worker.NoRetryPolicy{}
		if cfg.RabbitMQ.RequeueOnce {
			retry = worker.RequeueOncePolicy{}
		}
		a.PipelineWorker = worker.NewPipelineWorker(a.MQConn, a.Documents, cfg.RabbitMQ.PipelineQueue, retry)
		if err := a.PipelineWorker.Start(ctx); err != nil {
			return nil, fmt.Errorf("start pipeline worker failed: %w", err)
		}
	}

	return a, nil
}

func (a *App) Close() error {
	var closeErr error
	if a.PipelineWorker != nil {
		a.PipelineWorker.Close()
	}
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			closeErr = err
		}
	}
	if a.MQConn != nil {
		if err := a.MQConn.Close(); err != nil {
			closeErr = err
		}
	}
	if a.MySQL != nil {
		sqlDB, err := a.MySQL.DB()
		if err == nil {
			if err := sqlDB.Close(); err != nil {
				closeErr = err
			}
		}
	}
	return closeErr
}
