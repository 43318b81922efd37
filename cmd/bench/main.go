// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Command bench runs the same control-loop core against a synthetic
// IMU signal instead of real hardware, and streams the result to an
// MQTT topic and a websocket live view for development and testing.
// None of this is reachable from cmd/firmware: the firmware control
// loop has no network, no telemetry protocol, and no display.
package main

import (
	"flag"
	"log"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/relabs-tech/segway-balancer/internal/actuator"
	"github.com/relabs-tech/segway-balancer/internal/attitude"
	"github.com/relabs-tech/segway-balancer/internal/busio"
	"github.com/relabs-tech/segway-balancer/internal/config"
	"github.com/relabs-tech/segway-balancer/internal/control"
	"github.com/relabs-tech/segway-balancer/internal/imudrv"
	"github.com/relabs-tech/segway-balancer/internal/scheduler"
	"github.com/relabs-tech/segway-balancer/internal/telemetry"
)

// recordingSink captures the last PWM compare values written, for
// logging and telemetry framing.
type recordingSink struct {
	right, left uint16
}

func (s *recordingSink) SetCompare(ch actuator.Channel, value uint16) {
	if ch == actuator.ChannelRight {
		s.right = value
	} else {
		s.left = value
	}
}

// plant is a synthetic tilting-robot signal: the gyro rate is the
// derivative of a slowly oscillating tilt angle, and the accelerometer
// reports gravity projected onto that tilt, matching the shape of the
// teacher's sinusoidal mock orientation source.
type plant struct {
	start time.Time
}

func (p *plant) sample(now time.Time) (gyroRoll, gyroYaw int16, ax, az int16) {
	t := now.Sub(p.start).Seconds()
	tiltDeg := 6.0 * math.Sin(0.5*t)
	tiltRateDegPerSec := 6.0 * 0.5 * math.Cos(0.5*t)

	// Gyro LSBs at ±500 dps full scale: 65.5 LSB/(deg/s).
	gyroRoll = int16(tiltRateDegPerSec * 65.5)
	gyroYaw = int16(2.0 * math.Sin(0.1*t) * 65.5)

	// Accel LSBs at ±16g full scale: 2048 LSB/g, gravity split between
	// the two axes by the tilt angle.
	rad := tiltDeg * math.Pi / 180
	ax = int16(math.Sin(rad) * 2048)
	az = int16(math.Cos(rad) * 2048)
	return
}

func main() {
	configPath := flag.String("config", "", "path to a KEY=VALUE override file")
	mqttEnabled := flag.Bool("mqtt", false, "publish telemetry to the configured MQTT broker")
	webEnabled := flag.Bool("web", true, "serve a websocket live view")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("bench: failed to load config: %v", err)
	}

	bus := busio.NewFakeBus()
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
	sink := &recordingSink{}

	var pub *telemetry.Publisher
	if *mqttEnabled {
		pub, err = telemetry.NewPublisher(cfg.BenchMQTTBroker, cfg.BenchMQTTClientID, cfg.BenchTopicState)
		if err != nil {
			log.Printf("bench: MQTT unavailable, continuing without it: %v", err)
			pub = nil
		} else {
			defer pub.Close()
		}
	}

	hub := telemetry.NewHub()
	if *webEnabled {
		http.HandleFunc("/ws", hub.ServeWS)
		go func() {
			log.Printf("bench: serving websocket live view on :%d/ws", cfg.BenchWebPort)
			if err := http.ListenAndServe(":"+strconv.Itoa(cfg.BenchWebPort), nil); err != nil {
				log.Printf("bench: web server stopped: %v", err)
			}
		}()
	}

	p := &plant{start: time.Now()}
	var prev imudrv.RawSample

	sched := scheduler.New(scheduler.Timing{
		SamplePeriod:      uint8(cfg.SamplePeriodMs),
		SamplesPerFusion:  uint8(cfg.SamplesPerFusion),
		FusionsPerControl: uint8(cfg.FusionsPerControl),
	})

	var lastResult attitude.Result
	sched.OnSample = func(dt uint8) {
		gRoll, gYaw, ax, az := p.sample(time.Now())
		// Roll reads the Y gyro axis, yaw reads Z; X is left untouched
		// and discarded downstream, matching the real driver's layout.
		bus.SetBE16(imudrv.RegGyroXOut+2, gRoll)
		bus.SetBE16(imudrv.RegGyroXOut+4, gYaw)
		bus.SetBE16(imudrv.RegAccelXOut, ax)
		bus.SetBE16(imudrv.RegAccelXOut+4, az)

		sample, _, _ := imu.ReadSample(prev)
		prev = sample
		est.Sample(dt, sample.Gy, sample.Gz, sample.Ax, sample.Az)
	}
	sched.OnFuse = func() {
		lastResult = est.Fuse()
	}
	sched.OnControl = func() {
		rollOut := rollCtl.Step(0, lastResult.Roll)
		yawOut := yawCtl.Step(0, lastResult.Yaw)
		mixer.Drive(sink, rollOut, yawOut)

		frame := telemetry.Frame{
			Time: time.Now(), Roll: lastResult.Roll, Yaw: lastResult.Yaw,
			RollOut: rollOut, YawOut: yawOut,
			PwmRight: sink.right, PwmLeft: sink.left,
		}
		if pub != nil {
			pub.Publish(frame)
		}
		hub.Broadcast(frame)
		log.Printf("roll=%7.2f yaw=%7.2f uR=%7.2f uY=%7.2f pwm=(%d,%d)",
			lastResult.Roll, lastResult.Yaw, rollOut, yawOut, sink.right, sink.left)
	}

	log.Println("bench: simulation starting")
	tick := time.NewTicker(time.Millisecond)
	defer tick.Stop()
	frameTick := time.NewTicker(20 * time.Millisecond)
	defer frameTick.Stop()

	for {
		select {
		case <-tick.C:
			sched.Tick()
		case <-frameTick.C:
			sched.Frame()
		}
	}
}
