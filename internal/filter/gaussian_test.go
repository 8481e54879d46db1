package filter

import (
	"math"
	"testing"
)

func TestGaussianPDF(t *testing.T) {
	tests := []struct {
		name  string
		x     float32
		sigma float32
		want  float32
	}{
		{"peak unit sigma", 0, 1, 0.39894},
		{"peak sigma four", 0, 4, 0.39894 / 4},
		{"one sigma", 1, 1, 0.39894 * float32(math.Exp(-0.5))},
		{"zero sigma", 0, 0, 0},
		{"negative sigma", 1, -1, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := GaussianPDF(tt.x, tt.sigma)
			if absf32(got-tt.want) > 1e-6 {
				t.Errorf("GaussianPDF(%v, %v) = %v, want %v", tt.x, tt.sigma, got, tt.want)
			}
		})
	}
}

func TestGaussianPDFSymmetric(t *testing.T) {
	for _, x := range []float32{0.1, 0.5, 2, 7} {
		if a, b := GaussianPDF(x, 2), GaussianPDF(-x, 2); a != b {
			t.Errorf("GaussianPDF(%v) = %v, GaussianPDF(%v) = %v", x, a, -x, b)
		}
	}
}

func TestSeparableKernel(t *testing.T) {
	k := SeparableKernel(1, 0, 100, 50, 4, 4)

	if len(k.Taps) != 4 {
		t.Fatalf("len(Taps) = %d, want 4", len(k.Taps))
	}
	// delta = 1/100 * 4/4
	for i, tap := range k.Taps {
		want := float32(i+1) * 0.01
		if absf32(tap.Offset[0]-want) > 1e-6 {
			t.Errorf("Taps[%d].Offset.x = %v, want %v", i, tap.Offset[0], want)
		}
		if tap.Offset[1] != 0 {
			t.Errorf("Taps[%d].Offset.y = %v, want 0", i, tap.Offset[1])
		}
		if tap.Weight > k.Center {
			t.Errorf("Taps[%d].Weight = %v exceeds center %v", i, tap.Weight, k.Center)
		}
	}
}

func TestSeparableKernelVertical(t *testing.T) {
	k := SeparableKernel(0, 1, 100, 50, 2, 4)
	// Weights follow the horizontal offset, which is zero for a vertical pass.
	for i, tap := range k.Taps {
		if tap.Weight != k.Center {
			t.Errorf("Taps[%d].Weight = %v, want center %v", i, tap.Weight, k.Center)
		}
		want := float32(i+1) * (1.0 / 50) * 0.5
		if absf32(tap.Offset[1]-want) > 1e-6 {
			t.Errorf("Taps[%d].Offset.y = %v, want %v", i, tap.Offset[1], want)
		}
	}
	if got, want := k.WeightSum(), k.Center*9; absf32(got-want) > 1e-6 {
		t.Errorf("WeightSum = %v, want %v", got, want)
	}
}

func TestSeparableKernelClampsRadius(t *testing.T) {
	k := SeparableKernel(1, 0, 0, 0, 1, 0)
	if len(k.Taps) != 1 {
		t.Errorf("len(Taps) = %d, want 1", len(k.Taps))
	}
}
