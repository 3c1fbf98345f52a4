package scheduler

import (
	"context"
	"time"

	"github.com/go-co-op/gocron"
)

type JobFunc func(ctx context.Context)

// Scheduler runs cron-spec jobs until its context is cancelled. Jobs are
// registered up front with Add and armed by Start or StartAsync.
type Scheduler struct {
	s    *gocron.Scheduler
	ctx  context.Context
	jobs map[string]JobFunc
}

func New(ctx context.Context, loc *time.Location) *Scheduler {
	return &Scheduler{s: gocron.NewScheduler(loc), ctx: ctx, jobs: make(map[string]JobFunc)}
}

func (sch *Scheduler) Add(spec string, fn JobFunc) {
	sch.jobs[spec] = fn
}

func (sch *Scheduler) register() {
	for spec, fn := range sch.jobs {
		sch.s.Cron(spec).Do(func(fn JobFunc) {
			select {
			case <-sch.ctx.Done():
				return
			default:
				fn(sch.ctx)
			}
		}, fn)
	}
}

// Start blocks until the context is done, then stops the scheduler.
func (sch *Scheduler) Start() {
	sch.register()
	sch.s.StartAsync()

	<-sch.ctx.Done()
	sch.s.Stop()
}

// StartAsync arms the jobs and returns. The caller owns Stop.
func (sch *Scheduler) StartAsync() {
	sch.register()
	sch.s.StartAsync()
}

func (sch *Scheduler) Stop() {
	sch.s.Stop()
}
