// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package config loads the recognized-options set for the balancer as a
// flat KEY=VALUE file and exposes it through a thread-safe singleton.
package config

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
)

// Config holds every tunable constant of the balancer as named
// configuration rather than scattered literals.
type Config struct {
	// Scheduler timing (milliseconds / sample counts)
	SamplePeriodMs   int // T_SAMPLE
	SamplesPerFusion int // T_RESULT
	FusionsPerControl int // T_CONTROL

	// Adaptive controller
	NoiseLevel     float64 // NL
	GainA          float64
	GainB          float64
	RegressorDelayA int // PmA
	RegressorDelayB int // PmB
	Horizon        int // hz
	HDivergenceFloor float64 // guard against a near-zero horizon gain

	// Output saturation and scaling
	UpperLimitRoll float64 // UP_Roll
	UpperLimitYaw  float64 // UP_Yaw
	GainTotalRoll  float64 // GainT_Roll
	GainTotalYaw   float64 // GainT_Yaw

	// Dead-bands (raw gyro LSB units)
	DeadBandRoll int
	DeadBandYaw  int

	// PWM
	PwmCenter int
	PwmMin    int
	PwmMax    int

	// IMU hardware
	IMUI2CBus     string
	IMUI2CAddr    uint16 // 7-bit address, e.g. 0x68 (0xD0>>1)
	GyroFullScale byte   // GYRO_FS register value
	AccelFullScale byte  // AFS_SEL register value
	DLPFConfig    byte   // DLPF_CFG register value
	SampleRateDiv byte   // SMPLRT_DIV register value

	// Optional debug UART (local wire, not network)
	DebugUARTPort string
	DebugUARTBaud int

	// Optional debug OLED
	DisplayI2CAddr     uint16
	DisplayUpdateEvery int // control frames between redraws

	// Bench / simulation only — never read by cmd/firmware
	BenchMQTTBroker   string
	BenchMQTTClientID string
	BenchTopicState   string
	BenchWebPort      int
}

// Default returns the seed configuration: T_SAMPLE=2, T_RESULT=6,
// T_CONTROL=1, NL=2e-4, GainA=0.4, GainB=0.2, PmA=1, PmB=2, hz=5,
// UP_Roll=800, UP_Yaw=180, GainT_Roll=25, GainT_Yaw=5, dead-bands
// 40/100, PWM [2000,3000,4000].
func Default() *Config {
	return &Config{
		SamplePeriodMs:    2,
		SamplesPerFusion:  6,
		FusionsPerControl: 1,

		NoiseLevel:      0.0002,
		GainA:           0.4,
		GainB:           0.2,
		RegressorDelayA: 1,
		RegressorDelayB: 2,
		Horizon:         5,
		HDivergenceFloor: 1e-9,

		UpperLimitRoll: 800.0,
		UpperLimitYaw:  180.0,
		GainTotalRoll:  25.0,
		GainTotalYaw:   5.0,

		DeadBandRoll: 40,
		DeadBandYaw:  100,

		PwmCenter: 3000,
		PwmMin:    2000,
		PwmMax:    4000,

		IMUI2CBus:      "/dev/i2c-1",
		IMUI2CAddr:     0x68,
		GyroFullScale:  0x08,
		AccelFullScale: 0x18,
		DLPFConfig:     0x00,
		SampleRateDiv:  0x03,

		DebugUARTPort: "",
		DebugUARTBaud: 115200,

		DisplayI2CAddr:     0x3C,
		DisplayUpdateEvery: 10,

		BenchMQTTBroker:   "tcp://localhost:1883",
		BenchMQTTClientID: "segway-bench",
		BenchTopicState:   "segway/state",
		BenchWebPort:      8090,
	}
}

var (
	globalConfig *Config
	configOnce   sync.Once
	configMu     sync.RWMutex
)

// Load reads a KEY=VALUE override file on top of Default() and returns
// the merged configuration. An empty path returns Default() unchanged.
func Load(configPath string) (*Config, error) {
	cfg := Default()
	if configPath == "" {
		return cfg, nil
	}

	file, err := os.Open(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("invalid config line %d: %q", lineNum, line)
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])
		if err := cfg.setValue(key, value); err != nil {
			return nil, fmt.Errorf("config line %d: %w", lineNum, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	return cfg, nil
}

func (c *Config) setValue(key, value string) error {
	switch key {
	case "SAMPLE_PERIOD_MS":
		v, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid SAMPLE_PERIOD_MS %q: %w", value, err)
		}
		c.SamplePeriodMs = v
	case "SAMPLES_PER_FUSION":
		v, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid SAMPLES_PER_FUSION %q: %w", value, err)
		}
		c.SamplesPerFusion = v
	case "FUSIONS_PER_CONTROL":
		v, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid FUSIONS_PER_CONTROL %q: %w", value, err)
		}
		c.FusionsPerControl = v
	case "NOISE_LEVEL":
		v, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("invalid NOISE_LEVEL %q: %w", value, err)
		}
		c.NoiseLevel = v
	case "GAIN_A":
		v, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("invalid GAIN_A %q: %w", value, err)
		}
		c.GainA = v
	case "GAIN_B":
		v, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("invalid GAIN_B %q: %w", value, err)
		}
		c.GainB = v
	case "HORIZON":
		v, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid HORIZON %q: %w", value, err)
		}
		c.Horizon = v
	case "UPPER_LIMIT_ROLL":
		v, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("invalid UPPER_LIMIT_ROLL %q: %w", value, err)
		}
		c.UpperLimitRoll = v
	case "UPPER_LIMIT_YAW":
		v, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("invalid UPPER_LIMIT_YAW %q: %w", value, err)
		}
		c.UpperLimitYaw = v
	case "GAIN_TOTAL_ROLL":
		v, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("invalid GAIN_TOTAL_ROLL %q: %w", value, err)
		}
		c.GainTotalRoll = v
	case "GAIN_TOTAL_YAW":
		v, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("invalid GAIN_TOTAL_YAW %q: %w", value, err)
		}
		c.GainTotalYaw = v
	case "DEAD_BAND_ROLL":
		v, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid DEAD_BAND_ROLL %q: %w", value, err)
		}
		c.DeadBandRoll = v
	case "DEAD_BAND_YAW":
		v, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid DEAD_BAND_YAW %q: %w", value, err)
		}
		c.DeadBandYaw = v
	case "IMU_I2C_BUS":
		c.IMUI2CBus = value
	case "IMU_I2C_ADDR":
		v, err := strconv.ParseUint(value, 0, 16)
		if err != nil {
			return fmt.Errorf("invalid IMU_I2C_ADDR %q: %w", value, err)
		}
		c.IMUI2CAddr = uint16(v)
	case "DEBUG_UART_PORT":
		c.DebugUARTPort = value
	case "DEBUG_UART_BAUD":
		v, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid DEBUG_UART_BAUD %q: %w", value, err)
		}
		c.DebugUARTBaud = v
	case "DISPLAY_I2C_ADDR":
		v, err := strconv.ParseUint(value, 0, 16)
		if err != nil {
			return fmt.Errorf("invalid DISPLAY_I2C_ADDR %q: %w", value, err)
		}
		c.DisplayI2CAddr = uint16(v)
	case "DISPLAY_UPDATE_EVERY":
		v, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid DISPLAY_UPDATE_EVERY %q: %w", value, err)
		}
		c.DisplayUpdateEvery = v
	case "BENCH_MQTT_BROKER":
		c.BenchMQTTBroker = value
	case "BENCH_MQTT_CLIENT_ID":
		c.BenchMQTTClientID = value
	case "BENCH_TOPIC_STATE":
		c.BenchTopicState = value
	case "BENCH_WEB_PORT":
		v, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid BENCH_WEB_PORT %q: %w", value, err)
		}
		c.BenchWebPort = v
	default:
		return fmt.Errorf("unknown config key: %q", key)
	}
	return nil
}

// InitGlobal loads the global configuration exactly once, even if called
// from multiple goroutines.
func InitGlobal(configPath string) error {
	var err error
	configOnce.Do(func() {
		configMu.Lock()
		defer configMu.Unlock()
		globalConfig, err = Load(configPath)
	})
	return err
}

// Get returns the global configuration. InitGlobal must run first.
func Get() *Config {
	configMu.RLock()
	defer configMu.RUnlock()
	return globalConfig
}
