package server

import (
	"context"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/cwbudde/gridfit/internal/store"
)

func TestRunJob_Success(t *testing.T) {
	tmpDir := t.TempDir()
	imgPath := filepath.Join(tmpDir, "test.png")
	createStripedTestImage(t, imgPath)

	jm := NewJobManager()
	config := JobConfig{
		ImagePaths: []string{imgPath},
		MaxScale:   8,
	}

	job := jm.CreateJob(config)

	ctx := context.Background()
	if err := runJob(ctx, jm, nil, job.ID); err != nil {
		t.Errorf("runJob should succeed: %v", err)
	}

	updated, _ := jm.GetJob(job.ID)
	if updated.State != StateCompleted {
		t.Errorf("Job should be completed, got %s", updated.State)
	}
	if updated.ProcessedCount != 1 {
		t.Errorf("ProcessedCount = %d, want 1", updated.ProcessedCount)
	}
	if len(updated.Results) != 1 {
		t.Fatalf("Results = %v, want 1 entry", updated.Results)
	}
	if updated.Results[0].ImagePath != imgPath {
		t.Errorf("Results[0].ImagePath = %q, want %q", updated.Results[0].ImagePath, imgPath)
	}
}

func TestRunJob_InvalidImage(t *testing.T) {
	jm := NewJobManager()
	config := JobConfig{
		ImagePaths: []string{"/nonexistent/image.png"},
		MaxScale:   8,
	}

	job := jm.CreateJob(config)

	ctx := context.Background()
	err := runJob(ctx, jm, nil, job.ID)
	if err == nil {
		t.Error("runJob should fail with invalid image path")
	}

	updated, _ := jm.GetJob(job.ID)
	if updated.State != StateFailed {
		t.Errorf("Job should be failed, got %s", updated.State)
	}
	if updated.Error == "" {
		t.Error("Error message should be set")
	}
}

func TestRunJob_Cancellation(t *testing.T) {
	tmpDir := t.TempDir()
	imgPath := filepath.Join(tmpDir, "test.png")
	createStripedTestImage(t, imgPath)

	jm := NewJobManager()
	config := JobConfig{
		ImagePaths: []string{imgPath, imgPath, imgPath},
		MaxScale:   8,
	}

	job := jm.CreateJob(config)

	ctx, cancel := context.WithCancel(context.Background())
	cancel() // Cancel before the loop observes the first image.

	err := runJob(ctx, jm, nil, job.ID)
	if err == nil {
		t.Error("runJob should return error when cancelled")
	}

	updated, _ := jm.GetJob(job.ID)
	if updated.State != StateCancelled {
		t.Errorf("Job should be cancelled, got %s", updated.State)
	}
}

func TestRunJob_SkipsAlreadyProcessed(t *testing.T) {
	tmpDir := t.TempDir()
	imgA := filepath.Join(tmpDir, "a.png")
	imgB := filepath.Join(tmpDir, "b.png")
	createStripedTestImage(t, imgA)
	createStripedTestImage(t, imgB)

	jm := NewJobManager()
	config := JobConfig{
		ImagePaths: []string{imgA, imgB},
		MaxScale:   8,
	}

	job := jm.CreateJob(config)
	jm.UpdateJob(job.ID, func(j *Job) {
		j.Results = []store.ImageResult{{ImagePath: imgA, ScaleX: 4}}
		j.ProcessedCount = 1
	})

	ctx := context.Background()
	if err := runJob(ctx, jm, nil, job.ID); err != nil {
		t.Fatalf("runJob should succeed: %v", err)
	}

	updated, _ := jm.GetJob(job.ID)
	if updated.ProcessedCount != 2 {
		t.Errorf("ProcessedCount = %d, want 2", updated.ProcessedCount)
	}

	seen := map[string]bool{}
	for _, r := range updated.Results {
		seen[r.ImagePath] = true
	}
	if !seen[imgA] || !seen[imgB] {
		t.Errorf("Results = %v, want both %s and %s present", updated.Results, imgA, imgB)
	}
}

// createStripedTestImage writes a PNG with a 4x vertical stripe pattern,
// upscaled by an integer factor, so the grid-fit pipeline has a genuine
// periodic signal to recover.
func createStripedTestImage(t *testing.T, path string) {
	t.Helper()

	const tile = 6
	const scale = 4
	w, h := tile*scale, tile*scale

	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	white := color.NRGBA{255, 255, 255, 255}
	black := color.NRGBA{0, 0, 0, 255}

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			col := x / scale
			if col%2 == 0 {
				img.Set(x, y, white)
			} else {
				img.Set(x, y, black)
			}
		}
	}

	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("Failed to create test image: %v", err)
	}
	defer f.Close()

	if err := png.Encode(f, img); err != nil {
		t.Fatalf("Failed to encode test image: %v", err)
	}
}
