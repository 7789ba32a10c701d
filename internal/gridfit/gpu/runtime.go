// Package gpu is a placeholder for an OpenCL-backed EdgeProjector runtime.
// No OpenCL kernel source was part of the retrieved material this repo was
// built from, so there is nothing here to adapt; InitOpenCL always reports
// the backend unavailable.
package gpu

import "fmt"

// Runtime is a placeholder for a future OpenCL device/queue handle.
type Runtime struct{}

// ErrNotBuilt indicates no OpenCL runtime is compiled into this binary.
var ErrNotBuilt = fmt.Errorf("opencl support is not available in this build")

// InitOpenCL always fails: there is no OpenCL runtime behind this package.
func InitOpenCL() (*Runtime, error) {
	return nil, ErrNotBuilt
}

// Close is a no-op.
func (r *Runtime) Close() {}
