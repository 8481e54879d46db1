package filter

import "github.com/chewxy/math32"

// invSqrt2Pi is 1/sqrt(2*pi) rounded the way the blur programs round it.
const invSqrt2Pi = 0.39894

// GaussianPDF returns the normal density with standard deviation sigma at x.
// A non-positive sigma yields 0.
func GaussianPDF(x, sigma float32) float32 {
	if sigma <= 0 {
		return 0
	}
	return invSqrt2Pi * math32.Exp(-0.5*x*x/(sigma*sigma)) / sigma
}

// Tap is a symmetric pair of samples at center+Offset and center-Offset.
type Tap struct {
	// Offset is in texture coordinates.
	Offset [2]float32
	Weight float32
}

// Kernel is a separable blur kernel along one direction.
type Kernel struct {
	Center float32
	Taps   []Tap
}

// WeightSum returns the total weight of the center sample and both halves of
// every tap.
func (k Kernel) WeightSum() float32 {
	sum := k.Center
	for _, t := range k.Taps {
		sum += 2 * t.Weight
	}
	return sum
}

// SeparableKernel builds the kernel for a blur along direction (dx, dy) over
// a texture of width x height texels. maxRadius is clamped to at least one
// tap.
func SeparableKernel(dx, dy float32, width, height int, kernelRadius float32, maxRadius int) Kernel {
	maxRadius = max(maxRadius, 1)
	invW := 1 / float32(max(width, 1))
	invH := 1 / float32(max(height, 1))
	step := kernelRadius / float32(maxRadius)
	delta := [2]float32{dx * invW * step, dy * invH * step}

	k := Kernel{
		Center: GaussianPDF(0, kernelRadius),
		Taps:   make([]Tap, maxRadius),
	}
	off := delta
	for i := range k.Taps {
		k.Taps[i] = Tap{Offset: off, Weight: GaussianPDF(off[0], kernelRadius)}
		off[0] += delta[0]
		off[1] += delta[1]
	}
	return k
}
