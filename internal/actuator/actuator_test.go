// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package actuator

import "testing"

func testMixer() *Mixer {
	return &Mixer{
		Center: 3000, Min: 2000, Max: 4000,
		GainRoll: 25, GainYaw: 5,
		ClipRoll: 800, ClipYaw: 180,
	}
}

func TestMixZeroInputsReturnCenter(t *testing.T) {
	m := testMixer()
	right, left := m.Mix(0, 0)
	if right != 3000 || left != 3000 {
		t.Errorf("Mix(0,0) = (%d,%d), want (3000,3000)", right, left)
	}
}

func TestMixOutputWithinPwmRange(t *testing.T) {
	cases := []struct {
		name      string
		roll, yaw float64
	}{
		{"roll positive", 900, 0},
		{"roll negative", -900, 0},
		{"yaw positive", 0, 300},
		{"yaw negative", 0, -300},
		{"roll and yaw positive", 900, 300},
		{"roll and yaw negative", -900, -300},
	}
	m := testMixer()
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			right, left := m.Mix(c.roll, c.yaw)
			if right < uint16(m.Min) || right > uint16(m.Max) {
				t.Errorf("right=%d out of range [%d,%d]", right, m.Min, m.Max)
			}
			if left < uint16(m.Min) || left > uint16(m.Max) {
				t.Errorf("left=%d out of range [%d,%d]", left, m.Min, m.Max)
			}
		})
	}
}

func TestMixScalesBeforeClippingBalanceTerm(t *testing.T) {
	m := testMixer()
	// rollOut*GainRoll = 900*25 = 22500, which must be clipped to
	// ±ClipRoll (800) after scaling, not before — a pre-scale clip of
	// rollOut itself to 800 would leave the term at 800*25 = 20000.
	right, left := m.Mix(900, 0)
	wantRight := uint16(m.Center + int(m.ClipRoll))
	wantLeft := uint16(m.Center - int(m.ClipRoll))
	if right != wantRight {
		t.Errorf("right with +900 roll = %d, want %d (center + ClipRoll)", right, wantRight)
	}
	if left != wantLeft {
		t.Errorf("left with +900 roll = %d, want %d (center - ClipRoll)", left, wantLeft)
	}
}

func TestMixBothChannelsClippedIdentically(t *testing.T) {
	// A narrow PWM range, tighter than Center±ClipRoll, to exercise the
	// final independent per-channel range clamp once the (already
	// post-scale-clipped) balance term is added to center.
	m := testMixer()
	m.Min, m.Max = 2800, 3200
	rHigh, lHigh := m.Mix(900, 0)
	rLow, lLow := m.Mix(-900, 0)
	if rHigh != uint16(m.Max) {
		t.Errorf("right with +900 balance = %d, want clipped to Max %d", rHigh, m.Max)
	}
	if lHigh != uint16(m.Min) {
		t.Errorf("left with +900 balance = %d, want clipped to Min %d", lHigh, m.Min)
	}
	_ = lLow
	_ = rLow
}

type recordingSink struct {
	calls map[Channel]uint16
}

func (s *recordingSink) SetCompare(ch Channel, value uint16) {
	if s.calls == nil {
		s.calls = make(map[Channel]uint16)
	}
	s.calls[ch] = value
}

func TestDriveWritesBothChannelsExactlyOnce(t *testing.T) {
	m := testMixer()
	sink := &recordingSink{}
	m.Drive(sink, 100, 20)
	if len(sink.calls) != 2 {
		t.Fatalf("sink received %d distinct channel writes, want 2", len(sink.calls))
	}
	if _, ok := sink.calls[ChannelRight]; !ok {
		t.Errorf("ChannelRight never written")
	}
	if _, ok := sink.calls[ChannelLeft]; !ok {
		t.Errorf("ChannelLeft never written")
	}
}
