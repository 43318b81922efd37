// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package busio

import (
	"fmt"

	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/host/v3"
)

// I2CBus implements Bus over a real periph.io I2C port, grounded on the
// teacher's device-opening pattern (host.Init, then open+configure a
// single periph conn and hold it for the process lifetime).
type I2CBus struct {
	dev *i2c.Dev
}

// OpenI2CBus initializes the periph host (once per process, like the
// teacher's repeated host.Init() calls — periph itself is idempotent)
// and opens busName at addr (7-bit I2C address).
func OpenI2CBus(busName string, addr uint16) (*I2CBus, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("busio: periph host init: %w", err)
	}

	port, err := i2creg.Open(busName)
	if err != nil {
		return nil, fmt.Errorf("busio: open I2C bus %q: %w", busName, err)
	}

	return &I2CBus{dev: &i2c.Dev{Addr: addr, Bus: port}}, nil
}

func (b *I2CBus) WriteRegister(reg byte, val byte) bool {
	if err := b.dev.Tx([]byte{reg, val}, nil); err != nil {
		return false
	}
	return true
}

func (b *I2CBus) ReadRegisters(reg byte, buf []byte) bool {
	if err := b.dev.Tx([]byte{reg}, buf); err != nil {
		return false
	}
	return true
}
