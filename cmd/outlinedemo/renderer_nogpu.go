//go:build nogpu

package main

import (
	"errors"

	"github.com/gogpu/postfx/render"
)

func openGPU(int, int) (render.Renderer, func(), error) {
	return nil, nil, errors.New("built with nogpu")
}
