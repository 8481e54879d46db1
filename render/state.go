// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import "github.com/gogpu/gputypes"

// State is the renderer's mutable fixed-function state shared by every
// pass. Passes that change it restore it before returning, except mask
// passes whose stencil configuration is the point of running them.
type State struct {
	Color   ColorBuffer
	Depth   DepthBuffer
	Stencil StencilBuffer
}

// NewState returns the default state: color and depth writes on, depth
// test on, stencil test off with ALWAYS/KEEP and full masks.
func NewState() *State {
	s := &State{}
	s.Reset()
	return s
}

// Reset restores the default state and unlocks every buffer.
func (s *State) Reset() {
	s.Color = ColorBuffer{mask: true}
	s.Depth = DepthBuffer{mask: true, test: true}
	s.Stencil = StencilBuffer{
		compare:   gputypes.CompareFunctionAlways,
		funcMask:  0xffffffff,
		writeMask: 0xffffffff,
		fail:      gputypes.StencilOperationKeep,
		zFail:     gputypes.StencilOperationKeep,
		zPass:     gputypes.StencilOperationKeep,
	}
}

// ColorBuffer controls color writes.
type ColorBuffer struct {
	mask   bool
	locked bool
}

// SetMask enables or disables color writes. Ignored while locked.
func (b *ColorBuffer) SetMask(on bool) {
	if !b.locked {
		b.mask = on
	}
}

// Mask reports whether color writes are enabled.
func (b *ColorBuffer) Mask() bool { return b.mask }

// SetLocked freezes the mask.
func (b *ColorBuffer) SetLocked(locked bool) { b.locked = locked }

// Locked reports whether the mask is frozen.
func (b *ColorBuffer) Locked() bool { return b.locked }

// DepthBuffer controls depth writes and testing.
type DepthBuffer struct {
	mask   bool
	test   bool
	locked bool
}

// SetMask enables or disables depth writes. Ignored while locked.
func (b *DepthBuffer) SetMask(on bool) {
	if !b.locked {
		b.mask = on
	}
}

// Mask reports whether depth writes are enabled.
func (b *DepthBuffer) Mask() bool { return b.mask }

// SetTest enables or disables the depth test globally. Materials may
// disable it further.
func (b *DepthBuffer) SetTest(on bool) { b.test = on }

// Test reports whether the depth test is enabled.
func (b *DepthBuffer) Test() bool { return b.test }

// SetLocked freezes the mask.
func (b *DepthBuffer) SetLocked(locked bool) { b.locked = locked }

// Locked reports whether the mask is frozen.
func (b *DepthBuffer) Locked() bool { return b.locked }

// StencilBuffer controls the stencil test and stencil writes.
type StencilBuffer struct {
	test      bool
	compare   gputypes.CompareFunction
	ref       uint32
	funcMask  uint32
	writeMask uint32
	fail      gputypes.StencilOperation
	zFail     gputypes.StencilOperation
	zPass     gputypes.StencilOperation
	clear     uint32
	locked    bool
}

// SetTest enables or disables the stencil test. Ignored while locked.
func (b *StencilBuffer) SetTest(on bool) {
	if !b.locked {
		b.test = on
	}
}

// Test reports whether the stencil test is enabled.
func (b *StencilBuffer) Test() bool { return b.test }

// SetFunc sets the comparison, reference value and comparison mask.
func (b *StencilBuffer) SetFunc(compare gputypes.CompareFunction, ref, mask uint32) {
	if b.locked {
		return
	}
	b.compare = compare
	b.ref = ref
	b.funcMask = mask
}

// Func returns the comparison, reference value and comparison mask.
func (b *StencilBuffer) Func() (compare gputypes.CompareFunction, ref, mask uint32) {
	return b.compare, b.ref, b.funcMask
}

// SetOp sets the operations applied when the stencil test fails, when it
// passes but the depth test fails, and when both pass.
func (b *StencilBuffer) SetOp(fail, zFail, zPass gputypes.StencilOperation) {
	if b.locked {
		return
	}
	b.fail = fail
	b.zFail = zFail
	b.zPass = zPass
}

// Op returns the stencil operations.
func (b *StencilBuffer) Op() (fail, zFail, zPass gputypes.StencilOperation) {
	return b.fail, b.zFail, b.zPass
}

// SetMask sets the stencil write mask.
func (b *StencilBuffer) SetMask(writeMask uint32) {
	if !b.locked {
		b.writeMask = writeMask
	}
}

// Mask returns the stencil write mask.
func (b *StencilBuffer) Mask() uint32 { return b.writeMask }

// SetClear sets the value stencil clears write.
func (b *StencilBuffer) SetClear(v uint32) { b.clear = v }

// ClearValue returns the value stencil clears write.
func (b *StencilBuffer) ClearValue() uint32 { return b.clear }

// SetLocked freezes the stencil configuration.
func (b *StencilBuffer) SetLocked(locked bool) { b.locked = locked }

// Locked reports whether the stencil configuration is frozen.
func (b *StencilBuffer) Locked() bool { return b.locked }

// Passes evaluates the stencil comparison against a stored value.
func (b *StencilBuffer) Passes(stored uint32) bool {
	return CompareUint(b.compare, b.ref&b.funcMask, stored&b.funcMask)
}

// Apply returns the stored value after op with the reference value,
// honouring the write mask. Values are 8-bit.
func (b *StencilBuffer) Apply(op gputypes.StencilOperation, stored uint32) uint32 {
	var v uint32
	switch op {
	case gputypes.StencilOperationZero:
		v = 0
	case gputypes.StencilOperationReplace:
		v = b.ref
	case gputypes.StencilOperationInvert:
		v = ^stored
	case gputypes.StencilOperationIncrementClamp:
		v = min(stored+1, 0xff)
	case gputypes.StencilOperationDecrementClamp:
		if stored > 0 {
			v = stored - 1
		}
	case gputypes.StencilOperationIncrementWrap:
		v = stored + 1
	case gputypes.StencilOperationDecrementWrap:
		v = stored - 1
	default:
		v = stored
	}
	return (stored &^ b.writeMask) | (v & b.writeMask & 0xff)
}

// CompareUint evaluates "ref compare stored" for integer values.
func CompareUint(f gputypes.CompareFunction, ref, stored uint32) bool {
	switch f {
	case gputypes.CompareFunctionNever:
		return false
	case gputypes.CompareFunctionLess:
		return ref < stored
	case gputypes.CompareFunctionEqual:
		return ref == stored
	case gputypes.CompareFunctionLessEqual:
		return ref <= stored
	case gputypes.CompareFunctionGreater:
		return ref > stored
	case gputypes.CompareFunctionNotEqual:
		return ref != stored
	case gputypes.CompareFunctionGreaterEqual:
		return ref >= stored
	default:
		return true
	}
}

// CompareDepth evaluates "incoming compare stored" for depth values.
func CompareDepth(f gputypes.CompareFunction, incoming, stored float32) bool {
	switch f {
	case gputypes.CompareFunctionNever:
		return false
	case gputypes.CompareFunctionLess:
		return incoming < stored
	case gputypes.CompareFunctionEqual:
		return incoming == stored
	case gputypes.CompareFunctionLessEqual:
		return incoming <= stored
	case gputypes.CompareFunctionGreater:
		return incoming > stored
	case gputypes.CompareFunctionNotEqual:
		return incoming != stored
	case gputypes.CompareFunctionGreaterEqual:
		return incoming >= stored
	default:
		return true
	}
}
