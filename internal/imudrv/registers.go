// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package imudrv implements the IMU register-level driver: the init
// sequence and raw gyro/accel acquisition.
package imudrv

// Register addresses, matching the register map of the target device.
const (
	RegSMPRTDiv    byte = 0x19
	RegConfig      byte = 0x1A // DLPF
	RegGyroConfig  byte = 0x1B
	RegAccelConfig byte = 0x1C
	RegAccelXOut   byte = 0x3B
	RegGyroXOut    byte = 0x43
	RegPwrMgmt1    byte = 0x6B
)

// Register values written during Init.
const (
	ValDLPFOff       byte = 0x00 // digital low-pass filter disabled
	ValGyroFS500     byte = 0x08 // gyro full scale ±500 °/s
	ValAccelFS16G    byte = 0x18 // accel full scale ±16 g
	ValSampleRateDiv byte = 0x03 // internal rate 2 kHz with DLPF off
	ValClockPLLGyroX byte = 0x09 // PLL locked to gyro X, sleep off, temp off
)

// RegisterInfo names a register for diagnostic dumps. Grounded on the
// teacher's sensors/mpu9250_registers.go metadata table, trimmed to the
// seven registers this driver actually touches.
type RegisterInfo struct {
	Address     byte
	Name        string
	Description string
}

// RegisterMap returns metadata for the registers this driver uses. Not
// on the control path — a debug/diagnostic helper only.
func RegisterMap() []RegisterInfo {
	return []RegisterInfo{
		{RegSMPRTDiv, "SMPRT_DIV", "Sample Rate Divider"},
		{RegConfig, "CONFIG", "Digital Low Pass Filter configuration"},
		{RegGyroConfig, "GYRO_CONFIG", "Gyroscope full-scale range"},
		{RegAccelConfig, "ACCEL_CONFIG", "Accelerometer full-scale range"},
		{RegAccelXOut, "ACCEL_XOUT", "Accelerometer X/Y/Z high+low bytes (6)"},
		{RegGyroXOut, "GYRO_XOUT", "Gyroscope X/Y/Z high+low bytes (6)"},
		{RegPwrMgmt1, "PWR_MGMT_1", "Power management / clock source"},
	}
}
