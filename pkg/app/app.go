// Package app assembles the HTTP kernel around route callbacks and runs it
// next to the gRPC health server, the job queue and the scheduler. It knows
// nothing about the shop's models; the project plugs in through callbacks:
//
//	app.New().
//	    Boot(jobs.Register).
//	    Schedule(jobs.Schedule).
//	    Routes(routes.Register).
//	    Serve(ctx)
package app

import (
	"context"
	"net/http"

	"gorm.io/gorm"

	"github.com/shashiranjanraj/kashvi-shop/pkg/event"
	"github.com/shashiranjanraj/kashvi-shop/pkg/notification"
	"github.com/shashiranjanraj/kashvi-shop/pkg/queue"
	"github.com/shashiranjanraj/kashvi-shop/pkg/router"
	"github.com/shashiranjanraj/kashvi-shop/pkg/schedule"
	"github.com/shashiranjanraj/kashvi-shop/pkg/sse"
	"github.com/shashiranjanraj/kashvi-shop/pkg/ws"
)

// Env is what callbacks may build controllers, jobs and listeners from.
type Env struct {
	DB       *gorm.DB
	Hub      *ws.Hub
	Feed     *sse.Broker
	Events   *event.Dispatcher
	Queue    *queue.Queue
	Notifier *notification.Notifier
}

type (
	BootFunc     func(env Env) error
	RouteFunc    func(r *router.Router, env Env) error
	ScheduleFunc func(s *schedule.Scheduler, env Env) error
)

// Application collects callbacks and builds the kernel from them.
// Callbacks of each kind run in the order added.
type Application struct {
	bootFns     []BootFunc
	routeFns    []RouteFunc
	scheduleFns []ScheduleFunc
}

func New() *Application {
	return &Application{}
}

// Boot adds a callback that runs once the environment is connected, before
// routes are mounted. Job types and event listeners belong here.
func (a *Application) Boot(fn BootFunc) *Application {
	a.bootFns = append(a.bootFns, fn)
	return a
}

func (a *Application) Routes(fn RouteFunc) *Application {
	a.routeFns = append(a.routeFns, fn)
	return a
}

// Schedule adds a callback that registers periodic tasks.
func (a *Application) Schedule(fn ScheduleFunc) *Application {
	a.scheduleFns = append(a.scheduleFns, fn)
	return a
}

// Handler builds the full middleware stack and routes over env. The
// returned stop func releases background resources of the stack.
func (a *Application) Handler(env Env) (http.Handler, func(), error) {
	return buildHandler(a, env)
}

// RouteList registers every route against a detached environment and lists
// them. Nothing is connected.
func (a *Application) RouteList() ([]router.Route, error) {
	r := router.New()
	env := detachedEnv()
	defer env.close()
	for _, fn := range a.routeFns {
		if err := fn(r, env); err != nil {
			return nil, err
		}
	}
	return r.Routes(), nil
}

// ScheduleList describes every periodic task without running any.
func (a *Application) ScheduleList() ([]string, error) {
	env := detachedEnv()
	defer env.close()
	s, err := a.scheduler(env)
	if err != nil {
		return nil, err
	}
	return s.List(), nil
}

// Serve boots config, logging, database and cache, then serves HTTP and
// gRPC until ctx is cancelled. The queue worker and the scheduler run
// alongside and stop with the servers.
func (a *Application) Serve(ctx context.Context) error {
	return serve(ctx, a)
}

// Work runs only the queue worker until ctx is cancelled.
func (a *Application) Work(ctx context.Context) error {
	return work(ctx, a)
}

func (a *Application) boot(env Env) error {
	for _, fn := range a.bootFns {
		if err := fn(env); err != nil {
			return err
		}
	}
	return nil
}

func detachedEnv() Env {
	return Env{
		Hub:      ws.NewHub(),
		Feed:     sse.NewBroker(),
		Events:   event.New(),
		Queue:    queue.New(queue.NewMemoryDriver(), queue.Options{}),
		Notifier: notification.New(),
	}
}

func (e Env) close() {
	if e.Hub != nil {
		e.Hub.Close()
	}
	if e.Feed != nil {
		e.Feed.Close()
	}
}
