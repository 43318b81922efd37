// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package scheduler

import "testing"

func TestSampleFiresEveryPeriodRegardlessOfFrame(t *testing.T) {
	s := New(Timing{SamplePeriod: 2, SamplesPerFusion: 6, FusionsPerControl: 1})
	var samples int
	s.OnSample = func(dt uint8) { samples++ }

	for i := 0; i < 10; i++ {
		s.Tick()
	}
	if samples != 5 {
		t.Errorf("samples = %d, want 5 (one per 2 ticks, no frame armed)", samples)
	}
}

func TestFuseAndControlRequireFrame(t *testing.T) {
	s := New(Timing{SamplePeriod: 1, SamplesPerFusion: 3, FusionsPerControl: 2})
	var fuses, controls int
	s.OnSample = func(dt uint8) {}
	s.OnFuse = func() { fuses++ }
	s.OnControl = func() { controls++ }

	for i := 0; i < 20; i++ {
		s.Tick()
	}
	if fuses != 0 || controls != 0 {
		t.Errorf("fuses=%d controls=%d, want 0,0 with no frame ever armed", fuses, controls)
	}
}

func TestExactlyOneControlPerFrame(t *testing.T) {
	s := New(Timing{SamplePeriod: 1, SamplesPerFusion: 2, FusionsPerControl: 2})
	var controls int
	s.OnSample = func(dt uint8) {}
	s.OnControl = func() { controls++ }

	s.Frame()
	// One frame needs SamplesPerFusion*FusionsPerControl = 4 sample
	// ticks to produce exactly one control invocation.
	for i := 0; i < 4; i++ {
		s.Tick()
	}
	if controls != 1 {
		t.Errorf("controls = %d, want exactly 1 after one fully-elapsed frame", controls)
	}

	// Without a second Frame(), tProcess cleared and nothing more fires
	// no matter how many more ticks arrive.
	for i := 0; i < 20; i++ {
		s.Tick()
	}
	if controls != 1 {
		t.Errorf("controls = %d after 20 extra ticks with no new frame, want still 1", controls)
	}
}

func TestFrameRearmsCascade(t *testing.T) {
	s := New(Timing{SamplePeriod: 1, SamplesPerFusion: 1, FusionsPerControl: 1})
	var controls int
	s.OnSample = func(dt uint8) {}
	s.OnControl = func() { controls++ }

	for frame := 0; frame < 5; frame++ {
		s.Frame()
		s.Tick()
	}
	if controls != 5 {
		t.Errorf("controls = %d, want 5 (one full cascade per Frame/Tick pair)", controls)
	}
}

func TestFrameResetsInFlightCounters(t *testing.T) {
	s := New(Timing{SamplePeriod: 1, SamplesPerFusion: 10, FusionsPerControl: 10})
	s.OnSample = func(dt uint8) {}

	s.Frame()
	s.Tick()
	s.Tick()
	s.Tick() // tResult now partway toward 10, well short

	s.Frame() // should reset tResult/tControl back to zero
	if s.tResult != 0 || s.tControl != 0 {
		t.Errorf("tResult=%d tControl=%d after Frame, want 0,0", s.tResult, s.tControl)
	}
}
