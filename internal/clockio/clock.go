// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package clockio defines the two timing sources spec.md §6 names as
// external collaborators — a 1ms periodic Clock and a 20ms PWM-frame
// pulse — plus time.Ticker-backed implementations for host execution.
//
// The original firmware delivers both from hardware timer interrupts.
// Go has no ISR context, so each is modeled as a channel the scheduler
// selects on from an ordinary goroutine, grounded on the teacher's
// time.Ticker publish loop in its former producer command.
package clockio

import "time"

// Clock delivers one pulse per base tick (1ms); the scheduler counts
// these ticks into sample periods.
type Clock interface {
	C() <-chan time.Time
	Stop()
}

// PwmFrame delivers one pulse at the start of every PWM period (spec: 20ms).
type PwmFrame interface {
	C() <-chan time.Time
	Stop()
}

type tickerClock struct{ t *time.Ticker }

// NewTickerClock returns a Clock driven by a real time.Ticker at period.
// Production wiring uses 1ms; tests drive the scheduler's Tick directly.
func NewTickerClock(period time.Duration) Clock {
	return &tickerClock{t: time.NewTicker(period)}
}

func (c *tickerClock) C() <-chan time.Time { return c.t.C }
func (c *tickerClock) Stop()               { c.t.Stop() }

type tickerFrame struct{ t *time.Ticker }

// NewTickerFrame returns a PwmFrame driven by a real time.Ticker at
// period. Production wiring uses 20ms (50Hz servo frame rate).
func NewTickerFrame(period time.Duration) PwmFrame {
	return &tickerFrame{t: time.NewTicker(period)}
}

func (f *tickerFrame) C() <-chan time.Time { return f.t.C }
func (f *tickerFrame) Stop()               { f.t.Stop() }
