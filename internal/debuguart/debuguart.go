// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package debuguart writes plain-text diagnostic lines to a local
// serial wire. It is initialized only when a port is configured; when
// it is not, the firmware runs with no UART traffic at all. This is
// never a telemetry transport — it exists for a bench-top debug
// terminal, not for remote monitoring.
package debuguart

import (
	"fmt"
	"io"

	serial "github.com/jacobsa/go-serial/serial"
)

// Writer wraps an open serial port with a line-oriented Printf.
type Writer struct {
	port io.ReadWriteCloser
}

// Open opens portName at baud 8N1 with a 1-byte minimum read, matching
// the options a simple debug terminal expects.
func Open(portName string, baud uint) (*Writer, error) {
	options := serial.OpenOptions{
		PortName:        portName,
		BaudRate:        baud,
		DataBits:        8,
		StopBits:        1,
		MinimumReadSize: 1,
	}
	port, err := serial.Open(options)
	if err != nil {
		return nil, fmt.Errorf("debuguart: open %s: %w", portName, err)
	}
	return &Writer{port: port}, nil
}

// Printf writes a formatted line terminated with CRLF, as a terminal
// emulator expects.
func (w *Writer) Printf(format string, args ...any) {
	fmt.Fprintf(w.port, format+"\r\n", args...)
}

// Close releases the underlying port.
func (w *Writer) Close() error {
	return w.port.Close()
}
