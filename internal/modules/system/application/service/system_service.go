package service

import (
	"context"
	"sync"
	"time"

	"ChatEduca/internal/modules/system/application/dto/respond"
)

const (
	Version      = "1.0.0"
	probeTimeout = 3 * time.Second
)

// Probe reports whether a dependency answers.
type Probe struct {
	Name  string
	Check func(ctx context.Context) error
}

type SystemService interface {
	Status(ctx context.Context) *respond.StatusRespond
	Config() *respond.ConfigRespond
}

type systemServiceImpl struct {
	environment string
	caching     bool
	startedAt   time.Time
	probes      []Probe
}

// NewSystemService takes the probes run by Status, in display order.
func NewSystemService(environment string, caching bool, probes ...Probe) SystemService {
	return &systemServiceImpl{
		environment: environment,
		caching:     caching,
		startedAt:   time.Now(),
		probes:      probes,
	}
}

// Status runs every probe concurrently. Any failing probe makes the system
// degraded; all failing makes it down.
func (s *systemServiceImpl) Status(ctx context.Context) *respond.StatusRespond {
	results := make([]respond.ServiceStatus, len(s.probes))
	var wg sync.WaitGroup
	for i, p := range s.probes {
		wg.Add(1)
		go func(i int, p Probe) {
			defer wg.Done()
			results[i] = run(ctx, p)
		}(i, p)
	}
	wg.Wait()

	down := 0
	for _, r := range results {
		if r.Status != "up" {
			down++
		}
	}
	status := "healthy"
	switch {
	case len(results) > 0 && down == len(results):
		status = "down"
	case down > 0:
		status = "degraded"
	}

	return &respond.StatusRespond{
		Status:      status,
		Uptime:      time.Since(s.startedAt).Seconds(),
		Version:     Version,
		Environment: s.environment,
		Services:    results,
	}
}

func run(ctx context.Context, p Probe) respond.ServiceStatus {
	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	start := time.Now()
	err := p.Check(ctx)
	out := respond.ServiceStatus{
		Name:      p.Name,
		Status:    "up",
		Latency:   time.Since(start).Milliseconds(),
		LastCheck: time.Now(),
	}
	if err != nil {
		out.Status = "down"
		out.Error = err.Error()
	}
	return out
}

func (s *systemServiceImpl) Config() *respond.ConfigRespond {
	return &respond.ConfigRespond{
		Environment: s.environment,
		Features: respond.Features{
			Authentication: true,
			Streaming:      true,
			Caching:        s.caching,
		},
	}
}
