// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package control

import (
	"math"
	"testing"
)

func testParams(seed [5]float64, maxOut float64) Params {
	return Params{
		GainA: 0.4, GainB: 0.2,
		RegressorDelayA: 1, RegressorDelayB: 2,
		Horizon: 5, NoiseLevel: 0.0002,
		HDivergenceFloor: 1e-9, MaxOut: maxOut,
		Seed: seed,
	}
}

// testRollParams/testYawParams use the derived saturation limits
// (UP_Roll/GainT_Roll = 800/25 = 32, UP_Yaw/GainT_Yaw = 180/5 = 36),
// matching how cmd/firmware and cmd/bench wire MaxOut from config.
func testRollParams() Params { return testParams(RollSeed, 800.0/25.0) }
func testYawParams() Params  { return testParams(YawSeed, 180.0/5.0) }

func TestStepSaturatesAtMaxOut(t *testing.T) {
	c := New(testRollParams())
	var last float64
	for i := 0; i < 200; i++ {
		// A wildly swinging setpoint and process output should never
		// push the output beyond the configured saturation limit.
		sp := 1000.0
		out := -1000.0
		if i%2 == 0 {
			sp, out = out, sp
		}
		last = c.Step(sp, out)
		if math.Abs(last) > c.p.MaxOut+1e-9 {
			t.Fatalf("Step %d: |%v| exceeds MaxOut %v", i, last, c.p.MaxOut)
		}
	}
}

func TestStepHistoryShiftInvariant(t *testing.T) {
	c := New(testRollParams())
	u0 := c.Step(0, 1.0)
	if c.u[0] != u0 || c.u[1] != u0 {
		t.Errorf("after one Step, u[0] and u[1] must both equal the returned output; got u[0]=%v u[1]=%v want %v", c.u[0], c.u[1], u0)
	}
	if c.yp[1] != 1.0 {
		t.Errorf("yp[1] should hold this call's processOutput (1), shifted down for the next call, got %v", c.yp[1])
	}
}

func TestDivergenceGuardAvoidsNaN(t *testing.T) {
	c := New(testParams([5]float64{0, 0, 0, 0, 0}, 800.0/25.0))
	for i := range c.y {
		c.y[i] = 0
	}
	c.t = [5]float64{0, 0, 0, 0, 0}

	// processOutput = -180 puts y[0] at exactly zero after the +180
	// bias shift, matching the zeroed history; with t all zero the
	// horizon gain h is exactly zero, which would divide by zero
	// without the guard.
	out := c.Step(0, -180)
	if out != 0 {
		t.Errorf("Step with a zero horizon gain = %v, want 0 (held at previous output via the divergence guard)", out)
	}
	if c.DivergenceGuardTrips != 1 {
		t.Errorf("DivergenceGuardTrips = %d, want 1", c.DivergenceGuardTrips)
	}
	if c.AdaptationEnabled() {
		t.Errorf("AdaptationEnabled() = true, want false: the innovation is zero and should fall inside the noise band")
	}
	if c.t != ([5]float64{0, 0, 0, 0, 0}) {
		t.Errorf("parameters changed despite adaptation being disabled: %v", c.t)
	}
}

func TestParameterResetOnBlowup(t *testing.T) {
	// A non-finite process output drives the innovation to infinity,
	// which would propagate into the parameter vector without the
	// reset-on-blowup guard.
	p := testRollParams()
	c := New(p)

	c.Step(0, math.Inf(1))

	if c.t != p.Seed {
		t.Errorf("after a blown-up update, parameters = %v, want reseeded to %v", c.t, p.Seed)
	}
	if c.ParameterResets != 1 {
		t.Errorf("ParameterResets = %d, want 1", c.ParameterResets)
	}
}

func TestStepIsDeterministic(t *testing.T) {
	c1 := New(testYawParams())
	c2 := New(testYawParams())
	for i := 0; i < 50; i++ {
		sp := float64(i%7) - 3
		in := float64(i%5) - 2
		o1 := c1.Step(sp, in)
		o2 := c2.Step(sp, in)
		if o1 != o2 {
			t.Fatalf("iteration %d: identical inputs produced different outputs: %v vs %v", i, o1, o2)
		}
	}
}

func TestStepUnitStepResponseBoundedByRollMaxOut(t *testing.T) {
	c := New(testRollParams())
	processOutput := 0.0
	for i := 0; i < 50; i++ {
		processOutput = 10.0 // a step disturbance: yp[0] jumps from 0 to +10 and is held there
		out := c.Step(0, processOutput)
		if math.Abs(out) > c.p.MaxOut+1e-9 {
			t.Fatalf("iteration %d: |%v| exceeds MaxOut_Roll %v", i, out, c.p.MaxOut)
		}
	}
}
