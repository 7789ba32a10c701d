package gridfit

import (
	"fmt"

	"github.com/cwbudde/gridfit/internal/gridfit/gpu"
)

// newOpenCLProjector is the factory for ProjectorBackendOpenCL. No OpenCL
// kernel was part of the retrieved source this repo was built from, so it
// always reports the backend unavailable rather than fabricating one.
func newOpenCLProjector() (EdgeProjector, func(), error) {
	_, err := gpu.InitOpenCL()
	return nil, noopCleanup, fmt.Errorf("%w: %v", ErrProjectorBackendUnavailable, err)
}
