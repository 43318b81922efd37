// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package busio defines the two-wire register bus the IMU driver talks
// to, and provides a real I2C-backed implementation plus an in-memory
// fake for tests and the simulation bench.
package busio

// Bus is the register-level transaction contract consumed by
// internal/imudrv. It deliberately has no concept of the IMU's init
// sequence or register map — those live in imudrv, which is the only
// caller.
type Bus interface {
	// WriteRegister writes a single byte to reg. ok=false on any
	// transaction failure; the caller treats that as a silently
	// dropped write.
	WriteRegister(reg byte, val byte) (ok bool)

	// ReadRegisters reads len(buf) consecutive bytes starting at reg
	// into buf. ok=false on any transaction failure; buf is left
	// untouched in that case.
	ReadRegisters(reg byte, buf []byte) (ok bool)
}
