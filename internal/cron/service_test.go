package cron

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/harborlane/importdesk-backend/pkg/logger"
)

type fakeLock struct {
	allow    bool
	acquires int
	releases int
}

func (f *fakeLock) Acquire(ctx context.Context) (bool, error) {
	f.acquires++
	return f.allow, nil
}

func (f *fakeLock) Release(ctx context.Context) error {
	f.releases++
	return nil
}

type countingJob struct {
	name string
	runs int
	err  error
}

func (c *countingJob) Name() string { return c.name }

func (c *countingJob) Run(ctx context.Context) error {
	c.runs++
	return c.err
}

func newCronService(t *testing.T, lock Lock, jobs ...Job) *Service {
	t.Helper()
	svc, err := NewService(ServiceParams{
		Logger:   logger.New(logger.Options{ServiceName: "test", Output: io.Discard}),
		Registry: NewRegistry(jobs...),
		Lock:     lock,
		Interval: time.Minute,
	})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc
}

func TestRunCycleExecutesAllJobs(t *testing.T) {
	lock := &fakeLock{allow: true}
	first := &countingJob{name: "first"}
	second := &countingJob{name: "second", err: errors.New("boom")}
	third := &countingJob{name: "third"}
	svc := newCronService(t, lock, first, second, third)

	if err := svc.runCycle(context.Background()); err != nil {
		t.Fatalf("runCycle: %v", err)
	}

	// A failing job must not block the ones after it.
	for _, job := range []*countingJob{first, second, third} {
		if job.runs != 1 {
			t.Fatalf("job %s ran %d times, want 1", job.name, job.runs)
		}
	}
	if lock.releases != 1 {
		t.Fatalf("lock released %d times, want 1", lock.releases)
	}
}

func TestRunCycleSkipsWhenLockHeld(t *testing.T) {
	lock := &fakeLock{allow: false}
	job := &countingJob{name: "only"}
	svc := newCronService(t, lock, job)

	if err := svc.runCycle(context.Background()); err != nil {
		t.Fatalf("runCycle: %v", err)
	}
	if job.runs != 0 {
		t.Fatalf("job ran %d times while lock was held elsewhere", job.runs)
	}
	if lock.releases != 0 {
		t.Fatalf("lock released %d times without being acquired", lock.releases)
	}
}

func TestRegistryIgnoresNilJobs(t *testing.T) {
	registry := NewRegistry(nil, &countingJob{name: "real"}, nil)
	registry.Register(nil)
	if got := len(registry.Jobs()); got != 1 {
		t.Fatalf("registry holds %d jobs, want 1", got)
	}
}
