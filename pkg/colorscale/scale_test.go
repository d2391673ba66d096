package colorscale

import (
	"math"
	"testing"
)

func TestRedsEndpoints(t *testing.T) {
	r := Reds()
	if got := r(0).Hex(); got != "#fff5f0" {
		t.Errorf("Reds(0) = %s, want #fff5f0", got)
	}
	if got := r(1).Hex(); got != "#67000d" {
		t.Errorf("Reds(1) = %s, want #67000d", got)
	}
	if got := r(-5).Hex(); got != "#fff5f0" {
		t.Errorf("Reds(-5) = %s, want clamped #fff5f0", got)
	}
	if got := r(7).Hex(); got != "#67000d" {
		t.Errorf("Reds(7) = %s, want clamped #67000d", got)
	}
}

func TestRedsMonotonic(t *testing.T) {
	r := Reds()
	prev := math.Inf(1)
	for i := 0; i <= 100; i++ {
		l, _, _ := r(float64(i) / 100).Lab()
		if l > prev+1e-9 {
			t.Fatalf("lightness increased at t=%.2f: %v > %v", float64(i)/100, l, prev)
		}
		prev = l
	}
}

func TestSequentialDomain(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
		lo, hi float64
	}{
		{"simple", []float64{5, 1, 9, 3}, 1, 9},
		{"ignores NaN", []float64{math.NaN(), 4, 2, math.NaN()}, 2, 4},
		{"single", []float64{7}, 7, 7},
		{"empty", nil, 0, 0},
		{"all NaN", []float64{math.NaN()}, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lo, hi := NewSequential(tt.values, nil).Domain()
			if lo != tt.lo || hi != tt.hi {
				t.Errorf("Domain() = [%v, %v], want [%v, %v]", lo, hi, tt.lo, tt.hi)
			}
		})
	}
}

func TestSequentialEndsOfGradient(t *testing.T) {
	s := NewSequential([]float64{12.5, 3.2, 48.9}, Reds())

	if got := s.Hex(3.2); got != "#fff5f0" {
		t.Errorf("Hex(min) = %s, want #fff5f0", got)
	}
	if got := s.Hex(48.9); got != "#67000d" {
		t.Errorf("Hex(max) = %s, want #67000d", got)
	}
}

func TestSequentialClampsOutOfDomain(t *testing.T) {
	s := NewSequential([]float64{10, 20}, nil)

	if s.Hex(-100) != s.Hex(10) {
		t.Error("below-domain value should clamp to min color")
	}
	if s.Hex(500) != s.Hex(20) {
		t.Error("above-domain value should clamp to max color")
	}
}

func TestSequentialDegenerateDomain(t *testing.T) {
	s := NewSequential([]float64{4, 4}, nil)
	if got := s.Normalize(4); got != 0 {
		t.Errorf("Normalize() = %v, want 0", got)
	}
	if got := s.Hex(4); got != "#fff5f0" {
		t.Errorf("Hex() = %s, want #fff5f0", got)
	}
}

func TestNormalize(t *testing.T) {
	s := NewSequential([]float64{0, 50}, nil)
	tests := []struct {
		v, want float64
	}{
		{0, 0}, {25, 0.5}, {50, 1}, {-1, 0}, {60, 1}, {math.NaN(), 0},
	}
	for _, tt := range tests {
		if got := s.Normalize(tt.v); got != tt.want {
			t.Errorf("Normalize(%v) = %v, want %v", tt.v, got, tt.want)
		}
	}
}

func TestTicks(t *testing.T) {
	s := NewSequential([]float64{10, 50}, nil)
	got := s.Ticks(5)
	want := []float64{10, 20, 30, 40, 50}
	if len(got) != len(want) {
		t.Fatalf("Ticks(5) = %v, want %v", got, want)
	}
	for i := range want {
		if math.Abs(got[i]-want[i]) > 1e-9 {
			t.Errorf("Ticks(5)[%d] = %v, want %v", i, got[i], want[i])
		}
	}

	if got := s.Ticks(0); got != nil {
		t.Errorf("Ticks(0) = %v, want nil", got)
	}
	if got := s.Ticks(1); len(got) != 1 || got[0] != 10 {
		t.Errorf("Ticks(1) = %v, want [10]", got)
	}
}

func TestStops(t *testing.T) {
	s := NewSequential([]float64{0, 1}, nil)
	stops := s.Stops(10)
	if len(stops) != 11 {
		t.Fatalf("len(Stops(10)) = %d, want 11", len(stops))
	}
	if stops[0].Offset != 0 || stops[0].Color != "#fff5f0" {
		t.Errorf("first stop = %+v", stops[0])
	}
	if stops[10].Offset != 1 || stops[10].Color != "#67000d" {
		t.Errorf("last stop = %+v", stops[10])
	}
}
