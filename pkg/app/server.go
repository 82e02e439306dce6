package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/shashiranjanraj/kashvi-shop/config"
	"github.com/shashiranjanraj/kashvi-shop/internal/server"
	"github.com/shashiranjanraj/kashvi-shop/pkg/cache"
	"github.com/shashiranjanraj/kashvi-shop/pkg/database"
	"github.com/shashiranjanraj/kashvi-shop/pkg/event"
	"github.com/shashiranjanraj/kashvi-shop/pkg/logger"
	"github.com/shashiranjanraj/kashvi-shop/pkg/notification"
	"github.com/shashiranjanraj/kashvi-shop/pkg/queue"
	"github.com/shashiranjanraj/kashvi-shop/pkg/schedule"
	"github.com/shashiranjanraj/kashvi-shop/pkg/sse"
	"github.com/shashiranjanraj/kashvi-shop/pkg/ws"
)

// failedJobRetention is how long failed_jobs rows are kept.
const failedJobRetention = 30 * 24 * time.Hour

func connect() error {
	if err := config.Load(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	logger.Boot()

	if err := database.Connect(); err != nil {
		return err
	}
	if err := cache.Connect(); err != nil {
		logger.Warn("cache: redis unavailable, using memory store", "error", err)
	}
	return nil
}

func connectedEnv() Env {
	return Env{
		DB:       database.DB,
		Hub:      ws.NewHub(),
		Feed:     sse.NewBroker(),
		Events:   event.Default,
		Queue:    NewQueue(database.DB),
		Notifier: notification.FromConfig(),
	}
}

// NewQueue puts jobs on Redis when the cache is connected to it and on an
// in-process channel otherwise. Exhausted jobs are recorded in db.
func NewQueue(db *gorm.DB) *queue.Queue {
	var driver queue.Driver = queue.NewMemoryDriver()
	if rdb := cache.RedisClient(); rdb != nil {
		driver = queue.NewRedisDriver(rdb)
	}
	q := queue.New(driver, queue.Options{Workers: config.QueueWorkers()})
	q.UseDB(db)
	return q
}

func (a *Application) scheduler(env Env) (*schedule.Scheduler, error) {
	s := schedule.New()
	err := s.Daily().At("03:00").Name("queue:prune-failed").Run(func(ctx context.Context) error {
		n, err := env.Queue.PruneFailed(ctx, failedJobRetention)
		if err == nil && n > 0 {
			logger.WithCtx(ctx).Info("queue: pruned failed jobs", "count", n)
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	for _, fn := range a.scheduleFns {
		if err := fn(s, env); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func serve(ctx context.Context, a *Application) error {
	if err := connect(); err != nil {
		return err
	}
	defer logger.Shutdown()

	env := connectedEnv()
	defer env.close()

	if err := a.boot(env); err != nil {
		return err
	}
	sched, err := a.scheduler(env)
	if err != nil {
		return err
	}

	handler, stop, err := a.Handler(env)
	if err != nil {
		return err
	}
	defer stop()

	bg, cancel := context.WithCancel(ctx)
	var wg sync.WaitGroup
	wg.Add(2)
	go func() { defer wg.Done(); env.Queue.Work(bg) }()
	go func() { defer wg.Done(); sched.Run(bg) }()
	defer func() {
		cancel()
		wg.Wait()
	}()

	return server.Run(ctx, server.Config{
		HTTPPort: config.AppPort(),
		GRPCPort: config.GRPCPort(),
		Handler:  handler,
		Ready: func(ctx context.Context) error {
			sqlDB, err := env.DB.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		},
	})
}

func work(ctx context.Context, a *Application) error {
	if err := connect(); err != nil {
		return err
	}
	defer logger.Shutdown()

	env := connectedEnv()
	defer env.close()
	if err := a.boot(env); err != nil {
		return err
	}
	if env.Queue.Driver() == "memory" {
		logger.Warn("queue: redis unavailable, this worker only sees jobs it dispatches itself")
	}
	env.Queue.Work(ctx)
	return nil
}
