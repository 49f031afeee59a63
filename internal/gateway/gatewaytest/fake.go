// Package gatewaytest provides an in-memory Gateway for store tests.
package gatewaytest

import (
	"context"
	"sync"

	"confreg/internal/gateway"
)

// Call records one procedure invocation.
type Call struct {
	Kind   string // "table", "scalar" or "exec"
	Op     string
	Params gateway.Params
}

// Fake satisfies gateway.Gateway with per-kind hooks. Unset hooks return
// zero values so tests only script what they assert on.
type Fake struct {
	mu    sync.Mutex
	calls []Call

	TableFn  func(op string, p gateway.Params) ([]gateway.Row, error)
	ScalarFn func(op string, p gateway.Params) (any, error)
	ExecFn   func(op string, p gateway.Params) (int, error)
}

func (f *Fake) Table(_ context.Context, op string, p gateway.Params) ([]gateway.Row, error) {
	f.record("table", op, p)
	if f.TableFn != nil {
		return f.TableFn(op, p)
	}
	return nil, nil
}

func (f *Fake) Scalar(_ context.Context, op string, p gateway.Params) (any, error) {
	f.record("scalar", op, p)
	if f.ScalarFn != nil {
		return f.ScalarFn(op, p)
	}
	return nil, nil
}

func (f *Fake) Exec(_ context.Context, op string, p gateway.Params) (int, error) {
	f.record("exec", op, p)
	if f.ExecFn != nil {
		return f.ExecFn(op, p)
	}
	return 0, nil
}

// Calls returns a snapshot of every recorded invocation.
func (f *Fake) Calls() []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]Call, len(f.calls))
	copy(out, f.calls)
	return out
}

// CallsTo filters recorded invocations by procedure name.
func (f *Fake) CallsTo(op string) []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []Call
	for _, c := range f.calls {
		if c.Op == op {
			out = append(out, c)
		}
	}
	return out
}

func (f *Fake) record(kind, op string, p gateway.Params) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, Call{Kind: kind, Op: op, Params: p})
}
