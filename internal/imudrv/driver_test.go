// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package imudrv

import (
	"testing"

	"github.com/relabs-tech/segway-balancer/internal/busio"
)

func TestReadSampleDecodesBigEndian(t *testing.T) {
	bus := busio.NewFakeBus()
	bus.SetBE16(RegGyroXOut, 100)
	bus.SetBE16(RegGyroXOut+2, -200)
	bus.SetBE16(RegGyroXOut+4, 300)
	bus.SetBE16(RegAccelXOut, 1000)
	bus.SetBE16(RegAccelXOut+2, -2000)
	bus.SetBE16(RegAccelXOut+4, 3000)

	d := New(bus)
	sample, gyroOK, accelOK := d.ReadSample(RawSample{})
	if !gyroOK || !accelOK {
		t.Fatalf("expected both reads to succeed, got gyroOK=%v accelOK=%v", gyroOK, accelOK)
	}
	want := RawSample{Gx: 100, Gy: -200, Gz: 300, Ax: 1000, Ay: -2000, Az: 3000}
	if sample != want {
		t.Errorf("sample = %+v, want %+v", sample, want)
	}
}

func TestReadSampleCarriesOverOnFailure(t *testing.T) {
	bus := busio.NewFakeBus()
	bus.SetBE16(RegGyroXOut, 42)
	bus.SetBE16(RegAccelXOut, 7)

	d := New(bus)
	prev := RawSample{Gx: 1, Gy: 2, Gz: 3, Ax: 4, Ay: 5, Az: 6}

	bus.FailNextRead = true // fails the gyro read only
	sample, gyroOK, accelOK := d.ReadSample(prev)
	if gyroOK {
		t.Error("gyroOK = true, want false (forced failure)")
	}
	if !accelOK {
		t.Error("accelOK = false, want true")
	}
	if sample.Gx != prev.Gx || sample.Gy != prev.Gy || sample.Gz != prev.Gz {
		t.Errorf("gyro fields not carried over from prev on failure: %+v", sample)
	}
	if sample.Ax != 7 {
		t.Errorf("accel field not updated despite a successful read: %+v", sample)
	}
}

func TestInitContinuesPastWriteFailures(t *testing.T) {
	bus := busio.NewFakeBus()
	bus.FailNextWrite = true // fails only the first register write

	d := New(bus)
	d.Init() // must not panic or block despite the forced failure

	if !bus.ReadRegisters(RegSMPRTDiv, make([]byte, 1)) {
		t.Fatal("ReadRegisters failed unexpectedly on a healthy fake bus")
	}
}
