package cron

import "context"

// Job is one unit of recurring background work, such as dispatching queued
// notifications or pruning expired ones. Run must be safe to invoke again
// after an error; the scheduler retries on the next tick.
type Job interface {
	Name() string
	Run(ctx context.Context) error
}

// Registry holds the jobs the scheduler cycles through. Jobs execute in
// registration order on every tick.
type Registry struct {
	jobs []Job
}

// NewRegistry builds a registry from the given jobs, skipping nil entries.
func NewRegistry(jobs ...Job) *Registry {
	registry := &Registry{}
	for _, job := range jobs {
		if job == nil {
			continue
		}
		registry.jobs = append(registry.jobs, job)
	}
	return registry
}

// Register appends a job. Nil jobs are ignored.
func (r *Registry) Register(job Job) {
	if job == nil {
		return
	}
	r.jobs = append(r.jobs, job)
}

// Jobs returns a copy of the registered jobs so callers cannot mutate the
// registry's slice.
func (r *Registry) Jobs() []Job {
	jobs := make([]Job, len(r.jobs))
	copy(jobs, r.jobs)
	return jobs
}
