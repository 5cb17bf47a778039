package scheduler

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

const DefaultHeartbeatSpec = "*/2 * * * *"

var heartbeats = prometheus.NewCounter(prometheus.CounterOpts{
	Name: "scheduler_heartbeats_total",
	Help: "Heartbeat job runs",
})

func init() { prometheus.MustRegister(heartbeats) }

type Scheduler struct {
	c *cron.Cron
	l *zap.Logger
}

func New(l *zap.Logger) *Scheduler {
	cl := zapLogger{l.Named("cron")}
	return &Scheduler{
		c: cron.New(cron.WithLogger(cl), cron.WithChain(cron.Recover(cl))),
		l: l,
	}
}

// Add registers job under a standard 5-field spec.
func (s *Scheduler) Add(name, spec string, job func()) error {
	id, err := s.c.AddFunc(spec, job)
	if err != nil {
		return fmt.Errorf("schedule %s (%q): %w", name, spec, err)
	}
	s.l.Info("job scheduled", zap.String("job", name), zap.String("spec", spec), zap.Int("entry", int(id)))
	return nil
}

func (s *Scheduler) Len() int { return len(s.c.Entries()) }

func (s *Scheduler) Start() { s.c.Start() }

// Stop prevents new runs and waits for running jobs or ctx, whichever ends first.
func (s *Scheduler) Stop(ctx context.Context) error {
	done := s.c.Stop()
	select {
	case <-done.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Heartbeat only logs; it shows the process is alive.
func Heartbeat(l *zap.Logger) func() {
	return func() {
		heartbeats.Inc()
		l.Info("cron job is running")
	}
}

// zapLogger adapts zap to cron.Logger.
type zapLogger struct{ l *zap.Logger }

func (z zapLogger) Info(msg string, kv ...any) {
	z.l.Sugar().Debugw(msg, kv...)
}

func (z zapLogger) Error(err error, msg string, kv ...any) {
	z.l.Sugar().Errorw(msg, append(kv, "error", err)...)
}
