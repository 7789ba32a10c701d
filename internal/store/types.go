package store

import (
	"fmt"
	"time"
)

// JobConfig holds configuration for a batch grid-fit analysis job
// (checkpoint copy). This avoids import cycles with the server package.
type JobConfig struct {
	ImagePaths         []string `json:"imagePaths"`
	MaxScale           int      `json:"maxScale"`
	SampleCenterOnly   bool     `json:"sampleCenterOnly"`
	ProjectorBackend   string   `json:"projectorBackend,omitempty"`
	CheckpointInterval int      `json:"checkpointInterval,omitempty"` // checkpoint every N images processed (0 = disabled)
}

// ImageResult is the fitted grid for a single image in a batch.
type ImageResult struct {
	ImagePath  string  `json:"imagePath"`
	ScaleX     float64 `json:"scaleX"`
	OffsetX    float64 `json:"offsetX"`
	ConfidenceX float64 `json:"confidenceX"`
	ScaleY     float64 `json:"scaleY"`
	OffsetY    float64 `json:"offsetY"`
	ConfidenceY float64 `json:"confidenceY"`
}

// Checkpoint represents the saved progress of a batch analysis job that
// can be resumed later.
//
// Resume model:
//
// Unlike an iterative optimizer, grid-fit analysis is a closed-form,
// deterministic computation per image: there is no population or search
// state to snapshot mid-computation. A checkpoint instead records which
// images in the batch have already been analyzed and their results, so
// resuming a job means re-running Analyze only on the remaining paths.
// This makes resume exact rather than approximate: a resumed job
// produces identical results to an uninterrupted one, image for image.
type Checkpoint struct {
	// JobID is the unique identifier for this job.
	JobID string `json:"jobId"`

	// Results holds the fitted grid for every image processed so far, in
	// the order ImagePaths were submitted.
	Results []ImageResult `json:"results"`

	// ProcessedCount is len(Results); kept alongside for quick metadata reads.
	ProcessedCount int `json:"processedCount"`

	// Timestamp records when this checkpoint was created.
	Timestamp time.Time `json:"timestamp"`

	// Config holds the job configuration, needed for validation during resume.
	Config JobConfig `json:"config"`
}

// CheckpointInfo contains metadata about a checkpoint without the full
// per-image result data. Used for listing jobs efficiently.
type CheckpointInfo struct {
	JobID          string    `json:"jobId"`
	ProcessedCount int       `json:"processedCount"`
	TotalCount     int       `json:"totalCount"`
	Timestamp      time.Time `json:"timestamp"`
}

// NewCheckpoint creates a checkpoint from job state.
func NewCheckpoint(jobID string, results []ImageResult, config JobConfig) *Checkpoint {
	return &Checkpoint{
		JobID:          jobID,
		Results:        results,
		ProcessedCount: len(results),
		Timestamp:      time.Now(),
		Config:         config,
	}
}

// ToInfo converts a full Checkpoint to CheckpointInfo (metadata only).
func (c *Checkpoint) ToInfo() CheckpointInfo {
	return CheckpointInfo{
		JobID:          c.JobID,
		ProcessedCount: c.ProcessedCount,
		TotalCount:     len(c.Config.ImagePaths),
		Timestamp:      c.Timestamp,
	}
}

// RemainingPaths returns the image paths not yet present in Results,
// preserving the order they appear in Config.ImagePaths.
func (c *Checkpoint) RemainingPaths() []string {
	done := make(map[string]bool, len(c.Results))
	for _, r := range c.Results {
		done[r.ImagePath] = true
	}

	var remaining []string
	for _, p := range c.Config.ImagePaths {
		if !done[p] {
			remaining = append(remaining, p)
		}
	}
	return remaining
}

// Validate checks if the checkpoint has valid data.
func (c *Checkpoint) Validate() error {
	if c.JobID == "" {
		return &ValidationError{Field: "JobID", Reason: "cannot be empty"}
	}
	if c.ProcessedCount != len(c.Results) {
		return &ValidationError{Field: "ProcessedCount", Reason: "must match len(Results)"}
	}
	if c.Timestamp.IsZero() {
		return &ValidationError{Field: "Timestamp", Reason: "cannot be zero"}
	}
	if len(c.Config.ImagePaths) == 0 {
		return &ValidationError{Field: "Config.ImagePaths", Reason: "cannot be empty"}
	}
	if c.Config.MaxScale < 2 {
		return &ValidationError{Field: "Config.MaxScale", Reason: "must be >= 2"}
	}
	if c.ProcessedCount > len(c.Config.ImagePaths) {
		return &ValidationError{
			Field:  "ProcessedCount",
			Reason: fmt.Sprintf("exceeds total batch size %d", len(c.Config.ImagePaths)),
		}
	}
	return nil
}

// ValidationError represents a checkpoint validation error.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return "validation error: " + e.Field + " " + e.Reason
}

// IsCompatible checks if this checkpoint can be resumed with the given
// config. The batch's image set and maxScale must match exactly; a
// different sample set or scale bound would change every already-fitted
// result.
func (c *Checkpoint) IsCompatible(config JobConfig) error {
	if len(c.Config.ImagePaths) != len(config.ImagePaths) {
		return &CompatibilityError{
			Field:    "ImagePaths",
			Expected: fmt.Sprintf("%d paths", len(c.Config.ImagePaths)),
			Actual:   fmt.Sprintf("%d paths", len(config.ImagePaths)),
		}
	}
	for i, p := range c.Config.ImagePaths {
		if config.ImagePaths[i] != p {
			return &CompatibilityError{
				Field:    fmt.Sprintf("ImagePaths[%d]", i),
				Expected: p,
				Actual:   config.ImagePaths[i],
			}
		}
	}
	if c.Config.MaxScale != config.MaxScale {
		return &CompatibilityError{
			Field:    "MaxScale",
			Expected: fmt.Sprintf("%d", c.Config.MaxScale),
			Actual:   fmt.Sprintf("%d", config.MaxScale),
		}
	}
	return nil
}

// CompatibilityError represents a checkpoint compatibility error.
type CompatibilityError struct {
	Field    string
	Expected string
	Actual   string
}

func (e *CompatibilityError) Error() string {
	return "compatibility error: " + e.Field + " mismatch (expected " + e.Expected + ", got " + e.Actual + ")"
}
