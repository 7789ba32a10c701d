package server

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cwbudde/gridfit/internal/gridfit"
	"github.com/cwbudde/gridfit/internal/store"
)

// runJob executes a batch grid-fit analysis job in the background.
//
// Unlike an iterative optimizer, each image's analysis is a closed-form
// computation that completes in milliseconds: there is no in-flight
// iteration count to poll on a ticker. Progress is instead broadcast
// synchronously after each image finishes, which gives finer-grained and
// more accurate progress than a fixed-interval ticker could for a
// workload this fast. When a store is given and Config.CheckpointInterval
// is positive, a checkpoint is saved every CheckpointInterval images.
func runJob(ctx context.Context, jm *JobManager, checkpointStore store.Store, jobID string) error {
	job, exists := jm.GetJob(jobID)
	if !exists {
		return fmt.Errorf("job not found: %s", jobID)
	}

	if err := jm.UpdateJob(jobID, func(j *Job) { j.State = StateRunning }); err != nil {
		return err
	}

	slog.Info("Starting job", "job_id", jobID, "images", len(job.Config.ImagePaths))

	results := append([]store.ImageResult(nil), job.Results...)
	processed := make(map[string]bool, len(results))
	for _, r := range results {
		processed[r.ImagePath] = true
	}

	var traceWriter *store.TraceWriter
	tw, err := store.NewTraceWriter("./data", jobID, len(results) > 0)
	if err != nil {
		slog.Warn("Failed to create trace writer", "job_id", jobID, "error", err)
	} else {
		traceWriter = tw
		defer func() {
			if err := traceWriter.Close(); err != nil {
				slog.Warn("Failed to close trace writer", "job_id", jobID, "error", err)
			}
		}()
	}

	opts := gridfit.Options{
		MaxScale:         job.Config.MaxScale,
		SampleCenterOnly: job.Config.SampleCenterOnly,
		ProjectorBackend: job.Config.ProjectorBackend,
	}

	start := time.Now()
	checkpointInterval := job.Config.CheckpointInterval
	sinceCheckpoint := 0

	for i, path := range job.Config.ImagePaths {
		select {
		case <-ctx.Done():
			markJobCancelled(jm, jobID)
			return ctx.Err()
		default:
		}

		if processed[path] {
			continue
		}

		imgStart := time.Now()
		result, err := analyzeOne(path, opts)
		elapsed := time.Since(imgStart)
		if err != nil {
			markJobFailed(jm, jobID, fmt.Errorf("analyzing %s: %w", path, err))
			return err
		}

		results = append(results, result)
		sinceCheckpoint++

		if traceWriter != nil {
			entry := store.TraceEntry{
				Index:       i,
				ImagePath:   result.ImagePath,
				ScaleX:      result.ScaleX,
				OffsetX:     result.OffsetX,
				ConfidenceX: result.ConfidenceX,
				ScaleY:      result.ScaleY,
				OffsetY:     result.OffsetY,
				ConfidenceY: result.ConfidenceY,
				ElapsedMs:   float64(elapsed.Microseconds()) / 1000,
				Timestamp:   time.Now(),
			}
			if err := traceWriter.Write(entry); err != nil {
				slog.Error("Failed to write trace entry", "job_id", jobID, "error", err)
			}
		}

		if err := jm.UpdateJob(jobID, func(j *Job) {
			j.Results = append([]store.ImageResult(nil), results...)
			j.ProcessedCount = len(results)
		}); err != nil {
			return err
		}

		broadcastProgress(jm, jobID, start)

		if checkpointStore != nil && checkpointInterval > 0 && sinceCheckpoint >= checkpointInterval {
			if err := saveCheckpoint(jm, checkpointStore, jobID); err != nil {
				slog.Error("Failed to save checkpoint", "job_id", jobID, "error", err)
			}
			sinceCheckpoint = 0
		}
	}

	if traceWriter != nil {
		if err := traceWriter.Flush(); err != nil {
			slog.Warn("Failed to flush trace writer", "job_id", jobID, "error", err)
		}
	}

	elapsed := time.Since(start)

	select {
	case <-ctx.Done():
		markJobCancelled(jm, jobID)
		return ctx.Err()
	default:
	}

	endTime := time.Now()
	if err := jm.UpdateJob(jobID, func(j *Job) {
		j.State = StateCompleted
		j.EndTime = &endTime
	}); err != nil {
		return err
	}

	var ips float64
	if elapsed.Seconds() > 0 {
		ips = float64(len(results)) / elapsed.Seconds()
	}

	slog.Info("Job completed",
		"job_id", jobID,
		"elapsed", elapsed,
		"processed", len(results),
		"images_per_second", ips,
	)

	jm.broadcaster.Broadcast(ProgressEvent{
		JobID:           jobID,
		State:           StateCompleted,
		ProcessedCount:  len(results),
		TotalCount:      len(job.Config.ImagePaths),
		ImagesPerSecond: ips,
		Timestamp:       time.Now(),
	})

	return nil
}

// analyzeOne loads and analyzes a single image, returning its persisted result shape.
func analyzeOne(path string, opts gridfit.Options) (store.ImageResult, error) {
	img, err := loadImage(path)
	if err != nil {
		return store.ImageResult{}, err
	}

	result, err := gridfit.Analyze(img, opts)
	if err != nil {
		return store.ImageResult{}, err
	}

	return resultFromAnalysis(path, result), nil
}

// broadcastProgress publishes the job's current progress to SSE subscribers.
func broadcastProgress(jm *JobManager, jobID string, startTime time.Time) {
	job, exists := jm.GetJob(jobID)
	if !exists {
		return
	}

	elapsed := time.Since(startTime).Seconds()
	var ips float64
	if elapsed > 0 {
		ips = float64(job.ProcessedCount) / elapsed
	}

	jm.broadcaster.Broadcast(ProgressEvent{
		JobID:           jobID,
		State:           job.State,
		ProcessedCount:  job.ProcessedCount,
		TotalCount:      job.TotalCount,
		ImagesPerSecond: ips,
		Timestamp:       time.Now(),
	})
}

// markJobFailed marks a job as failed with an error message.
func markJobFailed(jm *JobManager, jobID string, err error) {
	endTime := time.Now()
	jm.UpdateJob(jobID, func(j *Job) {
		j.State = StateFailed
		j.Error = err.Error()
		j.EndTime = &endTime
	})
	slog.Error("Job failed", "job_id", jobID, "error", err)
}

// markJobCancelled marks a job as cancelled.
func markJobCancelled(jm *JobManager, jobID string) {
	endTime := time.Now()
	jm.UpdateJob(jobID, func(j *Job) {
		j.State = StateCancelled
		j.EndTime = &endTime
	})
	slog.Info("Job cancelled", "job_id", jobID)
}

// saveCheckpoint persists the job's accumulated results.
func saveCheckpoint(jm *JobManager, checkpointStore store.Store, jobID string) error {
	job, exists := jm.GetJob(jobID)
	if !exists {
		return fmt.Errorf("job not found: %s", jobID)
	}

	if len(job.Results) == 0 {
		slog.Debug("Skipping checkpoint, no results yet", "job_id", jobID)
		return nil
	}

	checkpoint := store.NewCheckpoint(jobID, job.Results, job.Config)

	if err := checkpointStore.SaveCheckpoint(jobID, checkpoint); err != nil {
		return fmt.Errorf("failed to save checkpoint: %w", err)
	}

	slog.Info("Checkpoint saved", "job_id", jobID, "processed", job.ProcessedCount, "total", job.TotalCount)
	return nil
}
