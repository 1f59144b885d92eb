// Package solver runs linear models through a named LP engine.
//
// The adapter owns the session lifecycle: every Solve opens a fresh session,
// applies the caller's timeout and releases the session whatever the outcome.
// It forwards raw variable values and never interprets them.
package solver

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/aristath/rebalancer/internal/modules/optimization/lp"
	"github.com/rs/zerolog"
)

// Status is the outcome class of a solve.
type Status int

const (
	StatusOptimal Status = iota
	StatusInfeasible
	StatusUnbounded
	StatusSolverUnavailable
	StatusOther
)

var statusNames = map[Status]string{
	StatusOptimal:           "OPTIMAL",
	StatusInfeasible:        "INFEASIBLE",
	StatusUnbounded:         "UNBOUNDED",
	StatusSolverUnavailable: "SOLVER_UNAVAILABLE",
	StatusOther:             "OTHER",
}

// String returns the upper-case status name.
func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return fmt.Sprintf("Status(%d)", int(s))
}

// MarshalText implements encoding.TextMarshaler.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Status) UnmarshalText(text []byte) error {
	for status, name := range statusNames {
		if name == string(text) {
			*s = status
			return nil
		}
	}
	return fmt.Errorf("unknown solver status %q", string(text))
}

// Result is what an engine returns for a model.
type Result struct {
	Status Status
	// Values is indexed by lp.VarID. Only set when Status is StatusOptimal.
	Values         []float64
	ObjectiveValue float64
	// Err carries the engine or context error behind a non-optimal status.
	Err error
}

// Optimal reports whether the result carries a certified optimum.
func (r Result) Optimal() bool {
	return r.Status == StatusOptimal
}

// Value returns the solved value of v, or 0 when no values are available.
func (r Result) Value(v lp.VarID) float64 {
	if int(v) < 0 || int(v) >= len(r.Values) {
		return 0
	}
	return r.Values[v]
}

// Session is a single-use engine instance.
type Session interface {
	Solve(ctx context.Context, model *lp.Model) Result
	Close() error
}

// Factory opens engine sessions.
type Factory func() (Session, error)

// ErrUnknownEngine is returned when no engine is registered under a name.
var ErrUnknownEngine = errors.New("unknown solver engine")

var (
	registryMu sync.RWMutex
	registry   = make(map[string]Factory)
)

// Register makes an engine available under name. Registering the same name
// twice replaces the earlier factory.
func Register(name string, factory Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[name] = factory
}

// Engines lists registered engine names in sorted order.
func Engines() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func lookup(name string) (Factory, error) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	factory, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownEngine, name)
	}
	return factory, nil
}

// Config configures an Adapter.
type Config struct {
	Engine  string
	Timeout time.Duration // zero disables the timeout
}

// Adapter invokes the configured engine for each model.
type Adapter struct {
	engine  string
	timeout time.Duration
	log     zerolog.Logger
}

// NewAdapter creates an adapter. The engine is resolved lazily on each solve so
// a missing engine surfaces as StatusSolverUnavailable instead of a startup error.
func NewAdapter(cfg Config, log zerolog.Logger) *Adapter {
	return &Adapter{
		engine:  cfg.Engine,
		timeout: cfg.Timeout,
		log:     log.With().Str("component", "solver").Str("engine", cfg.Engine).Logger(),
	}
}

// Engine returns the configured engine name.
func (a *Adapter) Engine() string {
	return a.engine
}

// Solve runs the model through a fresh session.
// When ctx expires first Solve returns StatusOther at once, but engines that
// cannot be interrupted keep solving in the background until they finish,
// and only then is the session closed.
func (a *Adapter) Solve(ctx context.Context, model *lp.Model) Result {
	factory, err := lookup(a.engine)
	if err != nil {
		a.log.Error().Err(err).Msg("Solver engine not registered")
		return Result{Status: StatusSolverUnavailable, Err: err}
	}

	session, err := factory()
	if err != nil {
		a.log.Error().Err(err).Msg("Failed to create solver session")
		return Result{Status: StatusSolverUnavailable, Err: fmt.Errorf("failed to create solver session: %w", err)}
	}

	if a.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}

	start := time.Now()
	done := make(chan Result, 1)
	go func() {
		defer func() {
			if p := recover(); p != nil {
				done <- Result{Status: StatusOther, Err: fmt.Errorf("solver panic: %v", p)}
			}
			if cerr := session.Close(); cerr != nil {
				a.log.Warn().Err(cerr).Msg("Failed to close solver session")
			}
		}()
		done <- session.Solve(ctx, model)
	}()

	select {
	case res := <-done:
		a.log.Debug().
			Str("model", model.Name).
			Int("variables", model.NumVariables()).
			Int("constraints", len(model.Constraints)).
			Stringer("status", res.Status).
			Dur("elapsed", time.Since(start)).
			Msg("Solve finished")
		return res
	case <-ctx.Done():
		a.log.Warn().Err(ctx.Err()).Str("model", model.Name).Msg("Solve abandoned")
		return Result{Status: StatusOther, Err: fmt.Errorf("solve abandoned: %w", ctx.Err())}
	}
}
