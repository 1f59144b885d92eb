package solver

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/aristath/rebalancer/internal/modules/optimization/lp"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSession struct {
	result  Result
	release chan struct{}
	closed  *atomic.Int32
	panics  bool
}

func (f *fakeSession) Solve(ctx context.Context, model *lp.Model) Result {
	if f.panics {
		panic("boom")
	}
	if f.release != nil {
		<-f.release
	}
	return f.result
}

func (f *fakeSession) Close() error {
	f.closed.Add(1)
	return nil
}

func TestStatus_TextRoundTrip(t *testing.T) {
	for status, name := range statusNames {
		text, err := status.MarshalText()
		require.NoError(t, err)
		assert.Equal(t, name, string(text))

		var back Status
		require.NoError(t, back.UnmarshalText(text))
		assert.Equal(t, status, back)
	}

	var s Status
	assert.Error(t, s.UnmarshalText([]byte("MAYBE")))
	assert.Equal(t, "Status(42)", Status(42).String())
}

func TestResult_Value(t *testing.T) {
	r := Result{Status: StatusOptimal, Values: []float64{1.5, 2.5}}
	assert.True(t, r.Optimal())
	assert.Equal(t, 2.5, r.Value(1))
	assert.Equal(t, 0.0, r.Value(5))
	assert.Equal(t, 0.0, Result{}.Value(0))
}

func TestAdapter_UnknownEngineIsUnavailable(t *testing.T) {
	a := NewAdapter(Config{Engine: "does-not-exist"}, zerolog.Nop())

	res := a.Solve(context.Background(), lp.NewModel("m"))

	assert.Equal(t, StatusSolverUnavailable, res.Status)
	assert.ErrorIs(t, res.Err, ErrUnknownEngine)
}

func TestAdapter_FactoryFailureIsUnavailable(t *testing.T) {
	Register("test-broken", func() (Session, error) {
		return nil, errors.New("license missing")
	})
	a := NewAdapter(Config{Engine: "test-broken"}, zerolog.Nop())

	res := a.Solve(context.Background(), lp.NewModel("m"))

	assert.Equal(t, StatusSolverUnavailable, res.Status)
	assert.NotEqual(t, StatusInfeasible, res.Status)
	assert.Contains(t, res.Err.Error(), "license missing")
}

func TestAdapter_ForwardsResultAndClosesSession(t *testing.T) {
	var closed atomic.Int32
	want := Result{Status: StatusOptimal, Values: []float64{3, 0}, ObjectiveValue: 3}
	Register("test-optimal", func() (Session, error) {
		return &fakeSession{result: want, closed: &closed}, nil
	})
	a := NewAdapter(Config{Engine: "test-optimal", Timeout: time.Second}, zerolog.Nop())

	res := a.Solve(context.Background(), lp.NewModel("m"))

	assert.Equal(t, want, res)
	assert.Eventually(t, func() bool { return closed.Load() == 1 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, "test-optimal", a.Engine())
	assert.Contains(t, Engines(), "test-optimal")
}

func TestAdapter_NonOptimalForwarded(t *testing.T) {
	var closed atomic.Int32
	Register("test-infeasible", func() (Session, error) {
		return &fakeSession{result: Result{Status: StatusInfeasible}, closed: &closed}, nil
	})
	a := NewAdapter(Config{Engine: "test-infeasible"}, zerolog.Nop())

	res := a.Solve(context.Background(), lp.NewModel("m"))

	assert.Equal(t, StatusInfeasible, res.Status)
	assert.Eventually(t, func() bool { return closed.Load() == 1 }, time.Second, 5*time.Millisecond)
}

func TestAdapter_TimeoutIsOther(t *testing.T) {
	var closed atomic.Int32
	release := make(chan struct{})
	Register("test-slow", func() (Session, error) {
		return &fakeSession{result: Result{Status: StatusOptimal}, release: release, closed: &closed}, nil
	})
	a := NewAdapter(Config{Engine: "test-slow", Timeout: 20 * time.Millisecond}, zerolog.Nop())

	res := a.Solve(context.Background(), lp.NewModel("m"))

	assert.Equal(t, StatusOther, res.Status)
	assert.ErrorIs(t, res.Err, context.DeadlineExceeded)

	// The session is released once the engine returns.
	assert.Equal(t, int32(0), closed.Load())
	close(release)
	assert.Eventually(t, func() bool { return closed.Load() == 1 }, time.Second, 5*time.Millisecond)
}

func TestAdapter_PanicIsOther(t *testing.T) {
	var closed atomic.Int32
	Register("test-panic", func() (Session, error) {
		return &fakeSession{panics: true, closed: &closed}, nil
	})
	a := NewAdapter(Config{Engine: "test-panic"}, zerolog.Nop())

	res := a.Solve(context.Background(), lp.NewModel("m"))

	assert.Equal(t, StatusOther, res.Status)
	assert.Contains(t, res.Err.Error(), "boom")
	assert.Eventually(t, func() bool { return closed.Load() == 1 }, time.Second, 5*time.Millisecond)
}
