// Package jobmgr runs named long-lived jobs, such as transports, under a
// shared parent context and waits for them to finish.
//
//	jm := jobmgr.NewManager(func(msg string) { log.Println("[JOB]", msg) })
//	_ = jm.Start(ctx, "http", func(ctx context.Context) error {
//	    return serve(ctx)
//	})
//	select {
//	case <-ctx.Done():
//	case err := <-jm.Failed():
//	    log.Println(err)
//	}
//	jm.StopAll()
//	jm.Wait()
package jobmgr

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
)

// StatusReporter receives lifecycle events:
//
//	running:http
//	error:http:listen tcp :8080: bind: address already in use
//	done:http
type StatusReporter func(string)

// Manager is safe for concurrent use.
type Manager struct {
	mu       sync.Mutex
	jobs     map[string]context.CancelFunc
	wg       sync.WaitGroup
	failed   chan error
	reporter StatusReporter
}

// NewManager returns a Manager. reporter may be nil.
func NewManager(reporter StatusReporter) *Manager {
	return &Manager{
		jobs:     make(map[string]context.CancelFunc),
		failed:   make(chan error, 1),
		reporter: reporter,
	}
}

// Start runs runner in its own goroutine with a context derived from ctx.
// A name can only run once at a time.
func (m *Manager) Start(ctx context.Context, name string, runner func(ctx context.Context) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.jobs[name]; exists {
		return fmt.Errorf("job %q is already running", name)
	}
	jobCtx, cancel := context.WithCancel(ctx)
	m.jobs[name] = cancel
	m.wg.Add(1)

	go func() {
		defer m.wg.Done()
		defer cancel()
		m.report("running:" + name)

		err := runner(jobCtx)
		switch {
		case err != nil && !errors.Is(err, context.Canceled):
			m.report("error:" + name + ":" + err.Error())
			select {
			case m.failed <- fmt.Errorf("job %s: %w", name, err):
			default:
			}
		default:
			m.report("done:" + name)
		}

		m.mu.Lock()
		delete(m.jobs, name)
		m.mu.Unlock()
	}()
	return nil
}

// Failed delivers the first job error.
func (m *Manager) Failed() <-chan error {
	return m.failed
}

// Stop cancels a running job.
func (m *Manager) Stop(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	cancel, ok := m.jobs[name]
	if !ok {
		return fmt.Errorf("job %q not running", name)
	}
	cancel()
	return nil
}

// StopAll cancels every running job.
func (m *Manager) StopAll() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, cancel := range m.jobs {
		cancel()
	}
}

// Wait blocks until every started job has returned.
func (m *Manager) Wait() {
	m.wg.Wait()
}

// List returns the running job names, sorted.
func (m *Manager) List() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]string, 0, len(m.jobs))
	for k := range m.jobs {
		out = append(out, k)
	}
	slices.Sort(out)
	return out
}

func (m *Manager) report(s string) {
	if m.reporter != nil {
		m.reporter(s)
	}
}
