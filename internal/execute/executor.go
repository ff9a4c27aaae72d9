// Package execute fans compiled queries out to endpoints and collects
// deduplicated binding rows.
package execute

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ScienceLiveHub/science-live-pipeline/internal/cache"
	"github.com/ScienceLiveHub/science-live-pipeline/internal/endpoint"
	"github.com/ScienceLiveHub/science-live-pipeline/internal/model"
)

const (
	defaultConcurrency = 4
	defaultCallTimeout = 30 * time.Second
	defaultCacheTTL    = 5 * time.Minute
)

// Executor runs compiled queries with bounded concurrency. Results are
// tagged, cached and structurally deduplicated; transport failures are
// downgraded to diagnostics.
type Executor struct {
	manager     *endpoint.Manager
	cache       cache.Cache
	cacheTTL    time.Duration
	callTimeout time.Duration
	concurrency int
}

// Option configures an Executor
type Option func(*Executor)

// WithCache enables result caching with the given TTL
func WithCache(c cache.Cache, ttl time.Duration) Option {
	return func(x *Executor) {
		x.cache = c
		if ttl > 0 {
			x.cacheTTL = ttl
		}
	}
}

// WithCallTimeout bounds each endpoint call
func WithCallTimeout(d time.Duration) Option {
	return func(x *Executor) {
		if d > 0 {
			x.callTimeout = d
		}
	}
}

// WithConcurrency bounds in-flight endpoint calls
func WithConcurrency(n int) Option {
	return func(x *Executor) {
		if n > 0 {
			x.concurrency = n
		}
	}
}

func NewExecutor(manager *endpoint.Manager, opts ...Option) *Executor {
	x := &Executor{
		manager:     manager,
		cacheTTL:    defaultCacheTTL,
		callTimeout: defaultCallTimeout,
		concurrency: defaultConcurrency,
	}
	for _, opt := range opts {
		opt(x)
	}
	return x
}

// Outcome carries collected bindings plus recovered problems
type Outcome struct {
	Bindings    []model.RawBinding
	Diagnostics []model.Diagnostic
}

// task is one (query, endpoint) execution unit
type task struct {
	query model.CompiledQuery
	ep    endpoint.Endpoint
}

// Execute resolves each query's endpoint hint and runs all resulting
// calls concurrently. A query with no hint fans out to every
// registered endpoint. Only an empty registry is fatal; individual
// call failures become diagnostics.
func (x *Executor) Execute(ctx context.Context, queries []model.CompiledQuery) (*Outcome, error) {
	out := &Outcome{}
	if len(queries) == 0 {
		return out, nil
	}

	tasks, diags, err := x.plan(queries)
	if err != nil {
		return nil, err
	}
	out.Diagnostics = diags

	results := make([][]model.RawBinding, len(tasks))
	var mu sync.Mutex
	var wg sync.WaitGroup
	sem := make(chan struct{}, x.concurrency)

	for i, t := range tasks {
		wg.Add(1)
		go func(i int, t task) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			rows, err := x.runOne(ctx, t)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				out.Diagnostics = append(out.Diagnostics, model.Diagnostic{
					Stage:    "execute",
					Endpoint: t.ep.Name(),
					Message:  err.Error(),
				})
				return
			}
			results[i] = rows
		}(i, t)
	}
	wg.Wait()

	// Flatten in task order so dedup keeps the first-planned row
	seen := make(map[string]bool)
	for _, rows := range results {
		for _, row := range rows {
			fp := row.Fingerprint()
			if seen[fp] {
				continue
			}
			seen[fp] = true
			out.Bindings = append(out.Bindings, row)
		}
	}
	return out, nil
}

// plan expands endpoint hints into concrete tasks
func (x *Executor) plan(queries []model.CompiledQuery) ([]task, []model.Diagnostic, error) {
	all := x.manager.All()
	if len(all) == 0 {
		return nil, nil, &endpoint.NotFoundError{}
	}

	var tasks []task
	var diags []model.Diagnostic
	for _, q := range queries {
		if q.Endpoint == "" {
			for _, ep := range all {
				tasks = append(tasks, task{query: q, ep: ep})
			}
			continue
		}
		ep, err := x.manager.Get(q.Endpoint)
		if err != nil {
			var nf *endpoint.NotFoundError
			if errors.As(err, &nf) {
				// Unknown hint degrades to the default endpoint
				diags = append(diags, model.Diagnostic{
					Stage:    "execute",
					Endpoint: q.Endpoint,
					Message:  fmt.Sprintf("unknown endpoint %q, using default", q.Endpoint),
				})
				if ep, err = x.manager.Default(); err != nil {
					return nil, nil, err
				}
			} else {
				return nil, nil, err
			}
		}
		tasks = append(tasks, task{query: q, ep: ep})
	}
	return tasks, diags, nil
}

// runOne executes a single call with its own timeout, consulting the
// cache first when enabled.
func (x *Executor) runOne(ctx context.Context, t task) ([]model.RawBinding, error) {
	key := ""
	if x.cache != nil {
		key = cache.Key(t.ep.Name(), t.query.Query)
		if raw, found := x.cache.Get(key); found {
			var rows []model.RawBinding
			if err := json.Unmarshal(raw, &rows); err == nil {
				return rows, nil
			}
			_ = x.cache.Delete(key)
		}
	}

	callCtx, cancel := context.WithTimeout(ctx, x.callTimeout)
	defer cancel()

	rows, err := t.ep.ExecuteQuery(callCtx, t.query)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", t.query.Statement.Template, err)
	}

	if x.cache != nil {
		if raw, err := json.Marshal(rows); err == nil {
			_ = x.cache.Set(key, raw, x.cacheTTL)
		}
	}
	return rows, nil
}
