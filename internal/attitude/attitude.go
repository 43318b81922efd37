// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package attitude implements the gyro/accel complementary filter:
// fixed-point gyro integration crossing to float64 only at the
// estimator's output boundary.
package attitude

import "math"

// gradePerRadTimes2to16 converts atan2's radians into the same
// degrees×2^16 fixed-point units as the gyro accumulator: (180/π) × 2^16.
const gradePerRadTimes2to16 = (180.0 / math.Pi) * 65536.0

// yawWrapThreshold is 180° expressed in degrees×2^16 fixed point
// (180 × 65536 = 11,796,480).
const yawWrapThreshold int32 = 11796480

// Result is the fused attitude, exported in floating-point degrees.
type Result struct {
	Roll float64
	Yaw  float64
}

// Estimator holds all attitude-estimation state. Zero value is the
// correct boot state: all accumulators start at zero.
type Estimator struct {
	DeadBandRoll int // gyro LSB threshold at or below which roll rate is zeroed
	DeadBandYaw  int // gyro LSB threshold at or below which yaw rate is zeroed

	aGyroRoll int32 // a_gyro[roll], degrees×2^16
	aGyroYaw  int32 // a_gyro[yaw], degrees×2^16

	prevCorrectedRoll int32 // gyro_correct_ant[roll]
	prevCorrectedYaw  int32 // gyro_correct_ant[yaw]

	accelFilteredAx int32 // accel_correct[0]
	accelFilteredAz int32 // accel_correct[2]

	result Result
}

// NewEstimator returns a zero-initialized estimator with the given
// gyro dead-bands (40 LSB for roll, 100 LSB for yaw, typically).
func NewEstimator(deadBandRoll, deadBandYaw int) *Estimator {
	return &Estimator{DeadBandRoll: deadBandRoll, DeadBandYaw: deadBandYaw}
}

// LowPass16 is the first-order IIR low-pass used for accelerometer
// smoothing: new = (kf*raw + (16-kf)*prev) / 16, implemented as a
// right-shift by 4. Exported for tests; the fusion path always calls
// it with kf=1.
func LowPass16(raw, prev int32, kf int32) int32 {
	return (kf*raw + (16-kf)*prev) >> 4
}

// LowPass8 is the sibling filter from the original firmware
// (new = (kf*raw + (8-kf)*prev) / 8, right-shift by 3). The source
// defines it but never calls it; ported for parity but left unused by
// Sample/Fuse below.
func LowPass8(raw, prev int32, kf int32) int32 {
	return (kf*raw + (8-kf)*prev) >> 3
}

// deadBand zeros g if its magnitude does not exceed threshold. Equality
// is zeroed too — only strictly-above values pass through.
func deadBand(g int16, threshold int) int32 {
	if abs16(g) <= int16(threshold) {
		return 0
	}
	return int32(g)
}

func abs16(v int16) int16 {
	if v < 0 {
		return -v
	}
	return v
}

// Sample performs one trapezoidal gyro-integration step and updates the
// accelerometer low-pass filters. dt is the elapsed sample time in
// milliseconds (the scheduler's captured t_sample). Call this once per
// sample period.
func (e *Estimator) Sample(dt uint8, gyroRoll, gyroYaw, ax, az int16) {
	correctedRoll := deadBand(gyroRoll, e.DeadBandRoll)
	correctedYaw := deadBand(gyroYaw, e.DeadBandYaw)

	// a_gyro[axis] += dt * (g_now + g_prev) / 2, divide as >>1.
	e.aGyroRoll += int32(dt) * ((correctedRoll + e.prevCorrectedRoll) >> 1)
	e.aGyroYaw += int32(dt) * ((correctedYaw + e.prevCorrectedYaw) >> 1)

	if e.aGyroYaw > yawWrapThreshold || e.aGyroYaw < -yawWrapThreshold {
		e.aGyroYaw = 0
	}

	e.prevCorrectedRoll = correctedRoll
	e.prevCorrectedYaw = correctedYaw

	e.accelFilteredAx = LowPass16(int32(ax), e.accelFilteredAx, 1)
	e.accelFilteredAz = LowPass16(int32(az), e.accelFilteredAz, 1)
}

// Fuse runs the complementary filter: computes accel-derived tilt via
// atan2, blends it 63:1 against the gyro-integrated angle, and exports
// the result in floating-point degrees. Call this every T_RESULT
// samples.
func (e *Estimator) Fuse() Result {
	accelTilt := math.Atan2(float64(e.accelFilteredAx), float64(e.accelFilteredAz)) * gradePerRadTimes2to16

	// Divide by right-shift (not "/64") to match the source's
	// arithmetic-shift semantics on negative accumulator values.
	e.aGyroRoll = (63*e.aGyroRoll + 1*int32(-accelTilt)) >> 6

	// a_result[roll] = a_gyro[roll] / 2^16, computed as the source does
	// (>>10 then /64.0) to preserve intermediate precision.
	e.result.Roll = float64(e.aGyroRoll>>10) / 64.0
	e.result.Yaw = float64(e.aGyroYaw>>10) / 64.0
	return e.result
}

// Result returns the most recently fused attitude without recomputing
// it — the value produced by the last call to Fuse.
func (e *Estimator) Result() Result {
	return e.result
}
