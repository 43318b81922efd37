// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package displaydbg draws a single-panel SSD1306 debug readout: fused
// attitude and controller diagnostics. It is optional — nothing in the
// control loop depends on a display being attached, and the firmware
// runs unchanged without one.
package displaydbg

import (
	"fmt"
	"image"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"periph.io/x/devices/v3/ssd1306"
	"periph.io/x/devices/v3/ssd1306/image1bit"
)

// Snapshot is the set of values one redraw needs. Reset counts let
// the caller decide whether to skip redundant redraws.
type Snapshot struct {
	Roll, Yaw           float64
	RollOut, YawOut     float64
	RollResets, YawResets int
}

// Panel draws Snapshot values onto an attached SSD1306.
type Panel struct {
	dev *ssd1306.Dev
}

// New wraps an already-opened SSD1306 device.
func New(dev *ssd1306.Dev) *Panel {
	return &Panel{dev: dev}
}

// Splash draws a static boot screen, mirroring the teacher's startup
// panel.
func (p *Panel) Splash() error {
	img := blank()
	drawer := drawerFor(img)

	drawer.Dot = fixed.P(15, 26)
	drawer.DrawBytes([]byte("Segway Balancer"))
	drawer.Dot = fixed.P(20, 43)
	drawer.DrawBytes([]byte("stabilizing"))

	return p.dev.Draw(p.dev.Bounds(), img, image.Point{})
}

// Draw renders one telemetry frame.
func (p *Panel) Draw(s Snapshot) error {
	img := blank()
	drawer := drawerFor(img)

	drawer.Dot = fixed.P(0, 13)
	drawer.DrawBytes([]byte(fmt.Sprintf("R:%6.1f Y:%6.1f", s.Roll, s.Yaw)))

	drawer.Dot = fixed.P(0, 26)
	drawer.DrawBytes([]byte(fmt.Sprintf("uR:%6.1f uY:%6.1f", s.RollOut, s.YawOut)))

	drawer.Dot = fixed.P(0, 39)
	drawer.DrawBytes([]byte(fmt.Sprintf("resets R:%d Y:%d", s.RollResets, s.YawResets)))

	return p.dev.Draw(p.dev.Bounds(), img, image.Point{})
}

func blank() *image1bit.VerticalLSB {
	img := image1bit.NewVerticalLSB(image.Rect(0, 0, 128, 64))
	for i := range img.Pix {
		img.Pix[i] = 0
	}
	return img
}

func drawerFor(img *image1bit.VerticalLSB) *font.Drawer {
	return &font.Drawer{
		Dst:  img,
		Src:  &image.Uniform{C: image1bit.On},
		Face: basicfont.Face7x13,
	}
}
