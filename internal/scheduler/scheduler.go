// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package scheduler reproduces the firmware's cascaded tick counters:
// a sample counter gates gyro/accel acquisition, a result counter gates
// attitude fusion, and a control counter gates the adaptive controller
// and actuation, with the whole cascade re-armed once per PWM frame.
//
// The original runs this as two hardware timer ISRs writing counters a
// main loop polls. Go has no ISR context, so the two entry points below
// (Tick and Frame) are ordinary exported methods a Clock/PwmFrame driver
// calls synchronously; both take the same mutex the counters live
// behind, which preserves the single-writer-at-a-time ordering the
// original gets from running outside interrupt nesting.
package scheduler

import "sync"

// Timing holds the three cascade periods, in units of the caller's
// choosing (the firmware measures T_SAMPLE in milliseconds and
// T_RESULT/T_CONTROL in completed-predecessor counts).
type Timing struct {
	SamplePeriod      uint8 // ticks between acquisitions
	SamplesPerFusion  uint8 // acquisitions between fusions
	FusionsPerControl uint8 // fusions between control/actuation runs
}

// Scheduler dispatches Sample, Fuse, and Control callbacks in the
// correct cascade order. It holds no sensor or control state itself.
type Scheduler struct {
	cfg Timing

	mu        sync.Mutex
	tSample   uint8
	tResult   uint8
	tControl  uint8
	tProcess  bool

	// OnSample is called with the elapsed tick count whenever the
	// sample period elapses. It always fires, regardless of frame
	// gating — acquisition runs every sample period independent of
	// whether a control frame is in progress.
	OnSample func(dt uint8)

	// OnFuse is called once per SamplesPerFusion acquisitions, but only
	// while a frame is in progress (tProcess is true).
	OnFuse func()

	// OnControl is called once per FusionsPerControl fusions, but only
	// while a frame is in progress. After it fires, tProcess clears
	// until the next Frame pulse.
	OnControl func()
}

// New returns a Scheduler with the given cascade timing. All counters
// start at zero, matching power-on state.
func New(cfg Timing) *Scheduler {
	return &Scheduler{cfg: cfg}
}

// Tick advances the sample counter by one unit. Call this from the
// periodic sample-rate clock (1ms in production).
func (s *Scheduler) Tick() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.tSample++
	if s.tSample >= s.cfg.SamplePeriod {
		dt := s.tSample
		s.tSample = 0
		if s.OnSample != nil {
			s.OnSample(dt)
		}
		s.tResult++
	}

	if !s.tProcess {
		return
	}

	if s.tResult >= s.cfg.SamplesPerFusion {
		s.tResult = 0
		if s.OnFuse != nil {
			s.OnFuse()
		}
		s.tControl++
	}

	if s.tControl >= s.cfg.FusionsPerControl {
		s.tControl = 0
		s.tProcess = false
		if s.OnControl != nil {
			s.OnControl()
		}
	}
}

// Frame re-arms the cascade for a new PWM period: it resets the result
// and control counters and marks the frame in progress, so the next
// qualifying sample ticks will run a fusion and, eventually, a control
// step. Call this from the PWM frame-start pulse (20ms in production).
func (s *Scheduler) Frame() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tProcess = true
	s.tResult = 0
	s.tControl = 0
}

// Processing reports whether a frame is currently in progress (a fusion
// or control step is still owed before the next Frame pulse). Exposed
// for diagnostics and tests; not needed by normal dispatch.
func (s *Scheduler) Processing() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tProcess
}
