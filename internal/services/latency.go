package services

import (
	"context"
	"sync"
	"time"
)

type Operation string

const (
	OpListEvents    Operation = "list_events"
	OpGetEvent      Operation = "get_event"
	OpCreateEvent   Operation = "create_event"
	OpUpdateEvent   Operation = "update_event"
	OpDeleteEvent   Operation = "delete_event"
	OpRegisterEvent Operation = "register_event"
	OpLogin         Operation = "login"
	OpSignup        Operation = "signup"
)

// DefaultDelays are the round-trip times the mock backend pretends to take.
var DefaultDelays = map[Operation]time.Duration{
	OpListEvents:    800 * time.Millisecond,
	OpGetEvent:      500 * time.Millisecond,
	OpCreateEvent:   time.Second,
	OpUpdateEvent:   time.Second,
	OpDeleteEvent:   500 * time.Millisecond,
	OpRegisterEvent: time.Second,
	OpLogin:         time.Second,
	OpSignup:        time.Second,
}

// Latency stands in for the network between the stores and a backend.
type Latency interface {
	Wait(ctx context.Context, op Operation) error
}

type SimulatedLatency struct {
	delays map[Operation]time.Duration
}

// NewSimulatedLatency scales DefaultDelays by scale. A scale of zero or
// less disables the delay.
func NewSimulatedLatency(scale float64) *SimulatedLatency {
	delays := make(map[Operation]time.Duration, len(DefaultDelays))
	for op, d := range DefaultDelays {
		if scale > 0 {
			delays[op] = time.Duration(float64(d) * scale)
		}
	}
	return &SimulatedLatency{delays: delays}
}

func (l *SimulatedLatency) Delay(op Operation) time.Duration {
	return l.delays[op]
}

func (l *SimulatedLatency) Wait(ctx context.Context, op Operation) error {
	d := l.delays[op]
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

type NoLatency struct{}

func (NoLatency) Wait(ctx context.Context, _ Operation) error {
	return ctx.Err()
}

// FaultInjector fails selected operations after the wrapped latency has
// elapsed.
type FaultInjector struct {
	next Latency

	mu       sync.RWMutex
	failures map[Operation]error
}

func NewFaultInjector(next Latency) *FaultInjector {
	if next == nil {
		next = NoLatency{}
	}
	return &FaultInjector{
		next:     next,
		failures: make(map[Operation]error),
	}
}

func (f *FaultInjector) Fail(op Operation, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failures[op] = err
}

func (f *FaultInjector) Clear(op Operation) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.failures, op)
}

func (f *FaultInjector) Wait(ctx context.Context, op Operation) error {
	if err := f.next.Wait(ctx, op); err != nil {
		return err
	}

	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.failures[op]
}
