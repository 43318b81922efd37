// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package control implements the adaptive-predictive controller: online
// ARX parameter identification (normalized LMS) plus a receding-horizon
// control law built from a fixed second-order reference model.
package control

import "math"

// Seed parameter vectors for the two axes this controller drives.
var (
	RollSeed = [5]float64{0.49, 0.49, 0.051, 0.041, 0.011}
	YawSeed  = [5]float64{1.0, 0.003, 0.02, 0.012, 0.013}
)

// reference model coefficients for prediction horizon hz=5, order 2.
// These are fixed, not configurable — they are derived offline for the
// specific horizon/order combination.
const (
	refCoeffYp0 = 0.2387
	refCoeffYp1 = -0.083467
	refCoeffSp  = 0.844767
)

// Params holds the tunable constants of one axis's control loop as
// named configuration rather than scattered literals.
type Params struct {
	GainA            float64 // GainA
	GainB            float64 // GainB
	RegressorDelayA  int     // PmA
	RegressorDelayB  int     // PmB
	Horizon          int     // hz
	NoiseLevel       float64 // NL
	HDivergenceFloor float64 // guard against a near-zero horizon gain
	MaxOut           float64 // per-axis saturation
	Seed             [5]float64
}

// Controller is one independent roll- or yaw-axis adaptive-predictive
// loop. State is exactly the t/y/u/yp vectors of the algorithm.
type Controller struct {
	p Params

	t  [5]float64 // adaptive parameters a1, a2, b1, b2, b3
	y  [4]float64 // shifted (+180) output history, y[0] newest
	u  [6]float64 // controller output history, u[0] newest
	yp [2]float64 // unshifted output history, yp[0] newest

	adaptEnabled bool

	// Diagnostics for the divergence guard below — not present in the
	// original firmware.
	DivergenceGuardTrips int
	ParameterResets      int
}

// New returns a controller seeded with y history at the +180° bias
// point (process output starts at zero), u history at zero, t at the
// given seed.
func New(p Params) *Controller {
	c := &Controller{p: p, t: p.Seed}
	for i := range c.y {
		c.y[i] = 180.0
	}
	return c
}

// Params returns the controller's configuration.
func (c *Controller) Params() Params { return c.p }

// Parameters returns a copy of the current adaptive parameter vector.
func (c *Controller) Parameters() [5]float64 { return c.t }

// AdaptationEnabled reports whether the most recent Step's innovation
// exceeded the noise band.
func (c *Controller) AdaptationEnabled() bool { return c.adaptEnabled }

// Step runs one full invocation of the control algorithm: shift in the
// new process output, predict, compute the innovation and projection
// gain, update parameters, compute the reference trajectory and horizon
// recursion, derive and saturate the control output, then shift
// history. It returns the new u[0].
//
// processOutput is the current unshifted measured output (the fused
// attitude for this axis); sp is the setpoint.
func (c *Controller) Step(sp, processOutput float64) float64 {
	pmA := c.p.RegressorDelayA
	pmB := c.p.RegressorDelayB

	c.yp[0] = processOutput

	// Step 1: shift input.
	c.y[0] = c.yp[0] + 180.0

	// Step 2: predict.
	yHat := c.t[0]*c.y[pmA] + c.t[1]*c.y[pmA+1] + c.t[2]*c.u[pmB] + c.t[3]*c.u[pmB+1] + c.t[4]*c.u[pmB+2]

	// Step 3: innovation.
	e := c.y[0] - yHat
	c.adaptEnabled = math.Abs(e) > c.p.NoiseLevel

	// Step 4: normalized projection gain.
	denom := 1.0 + c.p.GainA*(sq(c.y[pmA])+sq(c.y[pmA+1])) + c.p.GainB*(sq(c.u[pmB])+sq(c.u[pmB+1])+sq(c.u[pmB+2]))
	var q float64
	if c.adaptEnabled {
		q = e / denom
	}

	// Step 5: parameter update (normalized LMS).
	newT := c.t
	newT[0] += c.p.GainA * q * c.y[pmA]
	newT[1] += c.p.GainA * q * c.y[pmA+1]
	newT[2] += c.p.GainB * q * c.u[pmB]
	newT[3] += c.p.GainB * q * c.u[pmB+1]
	newT[4] += c.p.GainB * q * c.u[pmB+2]

	if anyNonFinite(newT) {
		// Reset parameters to seed on blowup rather than propagate
		// NaN/Inf forever.
		c.t = c.p.Seed
		c.ParameterResets++
	} else {
		c.t = newT
	}

	// Step 6: reference trajectory. refCoeffYp1 already carries its
	// negative sign, so this reads as 0.2387*yp[0] - 0.083467*yp[1] +
	// 0.844767*sp.
	yPdk := refCoeffYp0*c.yp[0] + refCoeffYp1*c.yp[1] + refCoeffSp*sp
	yDk := yPdk + 180.0

	// Step 7: horizon recursion.
	hz := c.p.Horizon
	e1 := make([]float64, hz)
	e2 := make([]float64, hz)
	g1 := make([]float64, hz)
	g2 := make([]float64, hz)
	g3 := make([]float64, hz)
	e1[0], e2[0], g1[0], g2[0], g3[0] = c.t[0], c.t[1], c.t[2], c.t[3], c.t[4]
	for j := 1; j < hz; j++ {
		e1[j] = e1[j-1]*e1[0] + e2[j-1]
		e2[j] = e1[j-1] * e2[0]
		g1[j] = e1[j-1]*g1[0] + g2[j-1]
		g2[j] = e1[j-1]*g2[0] + g3[j-1]
		g3[j] = e1[j-1] * g3[0]
	}
	var h float64
	for j := 0; j < hz; j++ {
		h += g1[j]
	}

	// Step 8/9: control law + saturate. Guard against a non-finite or
	// near-zero h — the source has no such guard and leaves behavior
	// undefined there.
	var u0 float64
	if !math.IsInf(h, 0) && !math.IsNaN(h) && math.Abs(h) >= c.p.HDivergenceFloor {
		u0 = (yDk - e1[hz-1]*c.y[0] - e2[hz-1]*c.y[1] - g2[hz-1]*c.u[1] - g3[hz-1]*c.u[2]) / h
	} else {
		u0 = c.u[0] // leave output at its previous value
		c.DivergenceGuardTrips++
	}

	if u0 > c.p.MaxOut {
		u0 = c.p.MaxOut
	} else if u0 < -c.p.MaxOut {
		u0 = -c.p.MaxOut
	}

	// Step 10: shift history.
	c.y[3] = c.y[2]
	c.y[2] = c.y[1]
	c.y[1] = c.y[0]

	c.u[5] = c.u[4]
	c.u[4] = c.u[3]
	c.u[3] = c.u[2]
	c.u[2] = c.u[1]
	c.u[1] = u0
	c.u[0] = u0

	c.yp[1] = c.yp[0]

	return u0
}

func sq(v float64) float64 { return v * v }

func anyNonFinite(v [5]float64) bool {
	for _, x := range v {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return true
		}
	}
	return false
}
