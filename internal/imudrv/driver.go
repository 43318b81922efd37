// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package imudrv

import (
	"encoding/binary"
	"log"
	"time"

	"github.com/relabs-tech/segway-balancer/internal/busio"
)

// RawSample is one gyro+accel acquisition. Only Gy, Gz, Ax, Az are
// consumed downstream: roll uses Gy (the gyro axis aligned with the
// wheel axle) plus the Ax/Az accelerometer tilt, yaw uses Gz only.
// Gx and Ay are read off the bus but discarded.
type RawSample struct {
	Gx, Gy, Gz int16
	Ax, Ay, Az int16
}

// Driver drives a single IMU over a Bus. It holds no retry state: a
// failed transaction is silently skipped, and the caller simply tries
// again next sample period.
type Driver struct {
	bus busio.Bus
}

// New wraps bus with the register-level driver. It does not itself
// touch the bus; call Init to bring the device up.
func New(bus busio.Bus) *Driver {
	return &Driver{bus: bus}
}

// Init issues the configuration sequence: clock source, a 100ms settle
// delay, gyro scale, accel scale, DLPF off, sample-rate divider. A
// failed write is logged and otherwise ignored — the next acquisition
// will simply return whatever the device delivers.
func (d *Driver) Init() {
	if !d.bus.WriteRegister(RegPwrMgmt1, ValClockPLLGyroX) {
		log.Printf("imudrv: PWR_MGMT_1 write failed, continuing with device defaults")
	}
	time.Sleep(100 * time.Millisecond)

	if !d.bus.WriteRegister(RegGyroConfig, ValGyroFS500) {
		log.Printf("imudrv: GYRO_CONFIG write failed, continuing with device defaults")
	}
	if !d.bus.WriteRegister(RegAccelConfig, ValAccelFS16G) {
		log.Printf("imudrv: ACCEL_CONFIG write failed, continuing with device defaults")
	}
	if !d.bus.WriteRegister(RegConfig, ValDLPFOff) {
		log.Printf("imudrv: CONFIG (DLPF) write failed, continuing with device defaults")
	}
	if !d.bus.WriteRegister(RegSMPRTDiv, ValSampleRateDiv) {
		log.Printf("imudrv: SMPRT_DIV write failed, continuing with device defaults")
	}
}

// ReadGyro fetches the six gyro bytes and decodes them big-endian into
// out. On bus failure out is left unmodified and ok is false.
func (d *Driver) ReadGyro(out *[3]int16) (ok bool) {
	var buf [6]byte
	if !d.bus.ReadRegisters(RegGyroXOut, buf[:]) {
		return false
	}
	out[0] = int16(binary.BigEndian.Uint16(buf[0:2]))
	out[1] = int16(binary.BigEndian.Uint16(buf[2:4]))
	out[2] = int16(binary.BigEndian.Uint16(buf[4:6]))
	return true
}

// ReadAccel fetches the six accel bytes and decodes them big-endian
// into out. On bus failure out is left unmodified and ok is false.
func (d *Driver) ReadAccel(out *[3]int16) (ok bool) {
	var buf [6]byte
	if !d.bus.ReadRegisters(RegAccelXOut, buf[:]) {
		return false
	}
	out[0] = int16(binary.BigEndian.Uint16(buf[0:2]))
	out[1] = int16(binary.BigEndian.Uint16(buf[2:4]))
	out[2] = int16(binary.BigEndian.Uint16(buf[4:6]))
	return true
}

// ReadSample reads both gyro and accel into a single RawSample. If
// either read fails, the corresponding fields of prev are carried over
// unchanged and ok reports which reads succeeded.
func (d *Driver) ReadSample(prev RawSample) (sample RawSample, gyroOK, accelOK bool) {
	sample = prev
	var g, a [3]int16
	if d.ReadGyro(&g) {
		sample.Gx, sample.Gy, sample.Gz = g[0], g[1], g[2]
		gyroOK = true
	}
	if d.ReadAccel(&a) {
		sample.Ax, sample.Ay, sample.Az = a[0], a[1], a[2]
		accelOK = true
	}
	return sample, gyroOK, accelOK
}
