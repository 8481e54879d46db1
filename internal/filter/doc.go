// Package filter provides the Gaussian sampling kernels shared by the
// software and GPU blur programs.
//
// The separable blur samples MAX_RADIUS symmetric pairs on each side of the
// center texel. Tap spacing scales with the kernel radius so that the same
// number of samples spans a wider or narrower footprint:
//
//	delta  = direction * invSize * kernelRadius / maxRadius
//	offset = i * delta, i = 1..maxRadius
//
// Each pair is weighted by GaussianPDF evaluated at the horizontal component
// of its texture-space offset, and the result is divided by the total weight.
package filter
