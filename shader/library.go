// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package shader

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/gogpu/naga"

	"github.com/gogpu/postfx/render"
)

// ErrEmptyName is returned when registering a program without a name.
var ErrEmptyName = errors.New("shader: program name is empty")

// Library is a set of programs with a compile cache. It is safe for
// concurrent use.
type Library struct {
	mu       sync.Mutex
	programs map[string]*Program
	spirv    map[string][]uint32
}

// NewLibrary returns a library holding the built-in programs.
func NewLibrary() *Library {
	l := &Library{
		programs: make(map[string]*Program),
		spirv:    make(map[string][]uint32),
	}
	for _, p := range builtins() {
		l.programs[p.Name] = p
	}
	return l
}

var (
	defaultOnce sync.Once
	defaultLib  *Library
)

// Default returns the shared library of built-in programs.
func Default() *Library {
	defaultOnce.Do(func() { defaultLib = NewLibrary() })
	return defaultLib
}

// Register adds or replaces a program and drops its cached binaries.
func (l *Library) Register(p *Program) error {
	if p == nil || p.Name == "" {
		return ErrEmptyName
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.programs[p.Name] = p
	for k := range l.spirv {
		if k == p.Name || strings.HasPrefix(k, p.Name+";") {
			delete(l.spirv, k)
		}
	}
	return nil
}

// Lookup returns a program by name.
func (l *Library) Lookup(name string) (*Program, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	p, ok := l.programs[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", render.ErrUnknownProgram, name)
	}
	return p, nil
}

// Has reports whether a program is registered.
func (l *Library) Has(name string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, ok := l.programs[name]
	return ok
}

// Names returns the registered program names, sorted.
func (l *Library) Names() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	names := make([]string, 0, len(l.programs))
	for n := range l.programs {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Compile returns the SPIR-V of a program for a define set.
func (l *Library) Compile(name string, defines map[string]int) ([]uint32, error) {
	p, err := l.Lookup(name)
	if err != nil {
		return nil, err
	}
	key := p.DefinesKey(defines)

	l.mu.Lock()
	code, ok := l.spirv[key]
	l.mu.Unlock()
	if ok {
		return code, nil
	}

	src, err := p.Expand(defines)
	if err != nil {
		return nil, err
	}
	code, err = CompileWGSL(src)
	if err != nil {
		return nil, fmt.Errorf("shader %s: %w", name, err)
	}

	l.mu.Lock()
	l.spirv[key] = code
	l.mu.Unlock()
	return code, nil
}

// CompileWGSL compiles WGSL source to SPIR-V words.
func CompileWGSL(source string) ([]uint32, error) {
	spirvBytes, err := naga.Compile(source)
	if err != nil {
		return nil, fmt.Errorf("failed to compile shader: %w", err)
	}

	// SPIR-V is little-endian 32-bit words.
	code := make([]uint32, len(spirvBytes)/4)
	for i := range code {
		code[i] = uint32(spirvBytes[i*4]) |
			uint32(spirvBytes[i*4+1])<<8 |
			uint32(spirvBytes[i*4+2])<<16 |
			uint32(spirvBytes[i*4+3])<<24
	}
	return code, nil
}
