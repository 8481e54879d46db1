// Package blend evaluates the fixed-function blend equation on the CPU.
//
// Colors are straight (non-premultiplied) RGBA in [0,1]. The source is
// clamped to [0,1] before blending, matching how a UNORM color attachment
// stores fragment output.
package blend

import "github.com/gogpu/gputypes"

// Color is an RGBA color with float32 components.
type Color [4]float32

// Apply blends src over dst with state s. A nil state replaces dst with
// the clamped source.
func Apply(s *gputypes.BlendState, src, dst Color) Color {
	src = Clamp(src)
	if s == nil {
		return src
	}

	var out Color
	for i := 0; i < 3; i++ {
		out[i] = combine(s.Color, src[i], dst[i],
			factor(s.Color.SrcFactor, src, dst, i),
			factor(s.Color.DstFactor, src, dst, i))
	}
	out[3] = combine(s.Alpha, src[3], dst[3],
		factor(s.Alpha.SrcFactor, src, dst, 3),
		factor(s.Alpha.DstFactor, src, dst, 3))
	return Clamp(out)
}

// combine applies the blend operation to weighted source and destination.
func combine(c gputypes.BlendComponent, s, d, sf, df float32) float32 {
	switch c.Operation {
	case gputypes.BlendOperationSubtract:
		return s*sf - d*df
	case gputypes.BlendOperationReverseSubtract:
		return d*df - s*sf
	case gputypes.BlendOperationMin:
		return min(s, d)
	case gputypes.BlendOperationMax:
		return max(s, d)
	default:
		return s*sf + d*df
	}
}

// factor returns the blend factor for channel i.
func factor(f gputypes.BlendFactor, src, dst Color, i int) float32 {
	switch f {
	case gputypes.BlendFactorZero:
		return 0
	case gputypes.BlendFactorOne:
		return 1
	case gputypes.BlendFactorSrc:
		return src[i]
	case gputypes.BlendFactorOneMinusSrc:
		return 1 - src[i]
	case gputypes.BlendFactorSrcAlpha:
		return src[3]
	case gputypes.BlendFactorOneMinusSrcAlpha:
		return 1 - src[3]
	case gputypes.BlendFactorDst:
		return dst[i]
	case gputypes.BlendFactorOneMinusDst:
		return 1 - dst[i]
	case gputypes.BlendFactorDstAlpha:
		return dst[3]
	case gputypes.BlendFactorOneMinusDstAlpha:
		return 1 - dst[3]
	case gputypes.BlendFactorSrcAlphaSaturated:
		if i == 3 {
			return 1
		}
		return min(src[3], 1-dst[3])
	default:
		// Constant factors are not used by any material; treat the
		// constant as opaque white.
		if f == gputypes.BlendFactorOneMinusConstant {
			return 0
		}
		return 1
	}
}

// Clamp limits every component to [0,1]. NaN becomes 0.
func Clamp(c Color) Color {
	for i, v := range c {
		switch {
		case v != v, v < 0:
			c[i] = 0
		case v > 1:
			c[i] = 1
		}
	}
	return c
}
