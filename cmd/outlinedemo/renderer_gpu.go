//go:build !nogpu

package main

import (
	"github.com/gogpu/postfx/gpu"
	"github.com/gogpu/postfx/render"
)

// openGPU opens the best available HAL backend.
func openGPU(width, height int) (render.Renderer, func(), error) {
	gpu.SetLogger(logger)
	r, err := gpu.OpenBest(width, height)
	if err != nil {
		return nil, nil, err
	}
	logger.Info("gpu renderer opened", "backend", r.Backend(), "adapter", r.AdapterName())
	return r, r.Close, nil
}
