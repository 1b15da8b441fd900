// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package state

import (
	"context"
	"time"
)

// Clock abstracts time for choreography so tests run instantly.
type Clock interface {
	Sleep(ctx context.Context, d time.Duration) error
}

// RealClock sleeps on the wall clock, honouring context cancellation.
type RealClock struct{}

// Sleep blocks for d or until ctx is done.
func (RealClock) Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// InstantClock never blocks. Used in tests.
type InstantClock struct{}

// Sleep returns immediately (or the context error if already cancelled).
func (InstantClock) Sleep(ctx context.Context, d time.Duration) error { return ctx.Err() }

// SeqStep is one step of a choreographed sequence: an optional delay
// before the step runs, then its action.
type SeqStep struct {
	Delay time.Duration
	Run   func()
}

// Sequence runs steps strictly in order: step N's delay and action
// complete before step N+1 starts. This replaces the nested-timeout
// choreography of the original UI with a structure whose ordering and
// cancellation are explicit. It returns the context error if cancelled
// mid-flight; completed steps are not rolled back.
func Sequence(ctx context.Context, clock Clock, steps []SeqStep) error {
	for _, s := range steps {
		if err := clock.Sleep(ctx, s.Delay); err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if s.Run != nil {
			s.Run()
		}
	}
	return nil
}

// RevealDelay is the fixed pause between consecutive card reveals.
const RevealDelay = 300 * time.Millisecond
