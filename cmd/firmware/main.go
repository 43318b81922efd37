// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Command firmware runs the balancer's realtime control loop against
// real hardware: an I2C-attached IMU and two PWM-driven servo outputs.
// It has no network, no CLI beyond a config-path flag, and writes no
// files beyond reading that one config file, matching the original
// firmware's "no CLI, no files, no network" scope.
package main

import (
	"flag"
	"log"
	"time"

	"github.com/relabs-tech/segway-balancer/internal/actuator"
	"github.com/relabs-tech/segway-balancer/internal/attitude"
	"github.com/relabs-tech/segway-balancer/internal/busio"
	"github.com/relabs-tech/segway-balancer/internal/clockio"
	"github.com/relabs-tech/segway-balancer/internal/config"
	"github.com/relabs-tech/segway-balancer/internal/control"
	"github.com/relabs-tech/segway-balancer/internal/debuguart"
	"github.com/relabs-tech/segway-balancer/internal/imudrv"
	"github.com/relabs-tech/segway-balancer/internal/scheduler"
)

// loggingPwmSink stands in for a real PWM peripheral driver, which is
// out of scope here (named an external collaborator, not a hardware
// driver to build). It logs every compare write instead of toggling a
// register; swap in a real periph.io/x/conn/v3/pwm-backed sink once one
// is wired to actual timer hardware.
type loggingPwmSink struct{}

func (loggingPwmSink) SetCompare(ch actuator.Channel, value uint16) {
	log.Printf("pwm: channel=%d compare=%d", ch, value)
}

func main() {
	configPath := flag.String("config", "", "path to a KEY=VALUE override file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("firmware: failed to load config: %v", err)
	}

	bus, err := busio.OpenI2CBus(cfg.IMUI2CBus, cfg.IMUI2CAddr)
	if err != nil {
		log.Fatalf("firmware: failed to open IMU bus: %v", err)
	}

	imu := imudrv.New(bus)
	imu.Init()

	est := attitude.NewEstimator(cfg.DeadBandRoll, cfg.DeadBandYaw)

	rollCtl := control.New(control.Params{
		GainA: cfg.GainA, GainB: cfg.GainB,
		RegressorDelayA: cfg.RegressorDelayA, RegressorDelayB: cfg.RegressorDelayB,
		Horizon: cfg.Horizon, NoiseLevel: cfg.NoiseLevel,
		HDivergenceFloor: cfg.HDivergenceFloor, MaxOut: cfg.UpperLimitRoll / cfg.GainTotalRoll,
		Seed: control.RollSeed,
	})
	yawCtl := control.New(control.Params{
		GainA: cfg.GainA, GainB: cfg.GainB,
		RegressorDelayA: cfg.RegressorDelayA, RegressorDelayB: cfg.RegressorDelayB,
		Horizon: cfg.Horizon, NoiseLevel: cfg.NoiseLevel,
		HDivergenceFloor: cfg.HDivergenceFloor, MaxOut: cfg.UpperLimitYaw / cfg.GainTotalYaw,
		Seed: control.YawSeed,
	})

	mixer := &actuator.Mixer{
		Center: cfg.PwmCenter, Min: cfg.PwmMin, Max: cfg.PwmMax,
		GainRoll: cfg.GainTotalRoll, GainYaw: cfg.GainTotalYaw,
		ClipRoll: cfg.UpperLimitRoll, ClipYaw: cfg.UpperLimitYaw,
	}
	var sink actuator.PwmSink = loggingPwmSink{}

	var debug *debuguart.Writer
	if cfg.DebugUARTPort != "" {
		debug, err = debuguart.Open(cfg.DebugUARTPort, uint(cfg.DebugUARTBaud))
		if err != nil {
			log.Printf("firmware: debug UART unavailable: %v", err)
			debug = nil
		} else {
			defer debug.Close()
		}
	}

	var prev imudrv.RawSample
	sched := scheduler.New(scheduler.Timing{
		SamplePeriod:      uint8(cfg.SamplePeriodMs),
		SamplesPerFusion:  uint8(cfg.SamplesPerFusion),
		FusionsPerControl: uint8(cfg.FusionsPerControl),
	})

	sched.OnSample = func(dt uint8) {
		sample, _, _ := imu.ReadSample(prev)
		prev = sample
		est.Sample(dt, sample.Gy, sample.Gz, sample.Ax, sample.Az)
	}
	sched.OnFuse = func() {
		est.Fuse()
	}
	sched.OnControl = func() {
		result := est.Result()
		rollOut := rollCtl.Step(0, result.Roll)
		yawOut := yawCtl.Step(0, result.Yaw)
		mixer.Drive(sink, rollOut, yawOut)
		if debug != nil {
			debug.Printf("roll=%.2f yaw=%.2f uR=%.2f uY=%.2f", result.Roll, result.Yaw, rollOut, yawOut)
		}
	}

	// The clock fires at the base 1ms tick granularity; the scheduler
	// accumulates ticks until cfg.SamplePeriodMs elapses before it
	// actually samples.
	clock := clockio.NewTickerClock(1 * time.Millisecond)
	frame := clockio.NewTickerFrame(20 * time.Millisecond)
	defer clock.Stop()
	defer frame.Stop()

	log.Println("firmware: control loop starting")
	for {
		select {
		case <-clock.C():
			sched.Tick()
		case <-frame.C():
			sched.Frame()
		}
	}
}
