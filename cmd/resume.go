package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/cwbudde/gridfit/internal/gridfit"
	"github.com/cwbudde/gridfit/internal/store"
	"github.com/spf13/cobra"
)

var (
	resumeServerURL string
	resumeLocalMode bool
)

var resumeCmd = &cobra.Command{
	Use:   "resume [job-id]",
	Short: "Resume a batch grid-fit job from a checkpoint",
	Long: `Resume a batch grid-fit analysis job from a saved checkpoint.

Unlike an iterative optimizer, each image's fit is a closed-form
computation, so resuming means re-running Analyze on the images in the
batch that were not yet processed when the checkpoint was taken.

Supports two modes:
  1. Server mode (default): POST to the server's resume endpoint
  2. Local mode (--local): load the checkpoint and finish the remaining
     images in this process, with no server involved

Examples:
  # Resume via server
  gridfit resume abc123 --server http://localhost:8080

  # Resume locally
  gridfit resume abc123 --local --data ./data`,
	Args: cobra.ExactArgs(1),
	RunE: runResume,
}

func init() {
	resumeCmd.Flags().StringVar(&resumeServerURL, "server", "http://localhost:8080", "Server URL for remote resume")
	resumeCmd.Flags().BoolVar(&resumeLocalMode, "local", false, "Resume locally instead of via server")
	resumeCmd.Flags().StringVar(&dataDir, "data", "./data", "Checkpoint/trace data directory for local mode")
	rootCmd.AddCommand(resumeCmd)
}

func runResume(cmd *cobra.Command, args []string) error {
	jobID := args[0]

	if resumeLocalMode {
		return runResumeLocal(jobID)
	}
	return runResumeServer(jobID)
}

// runResumeServer sends a resume request to a running server.
func runResumeServer(jobID string) error {
	url := fmt.Sprintf("%s/api/v1/jobs/%s/resume", resumeServerURL, jobID)

	slog.Info("Resuming job via server", "job_id", jobID, "url", url)

	resp, err := http.Post(url, "application/json", nil)
	if err != nil {
		return fmt.Errorf("failed to connect to server: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("checkpoint not found for job %s", jobID)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("server returned status %d", resp.StatusCode)
	}

	var result struct {
		JobID             string `json:"jobId"`
		State             string `json:"state"`
		Message           string `json:"message,omitempty"`
		PreviousProcessed int    `json:"previousProcessed"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}

	fmt.Printf("Job resumed as %s (was %s)\n", result.JobID, jobID)
	fmt.Printf("  State: %s\n", result.State)
	fmt.Printf("  Already processed: %d\n", result.PreviousProcessed)
	if result.Message != "" {
		fmt.Printf("  Message: %s\n", result.Message)
	}
	fmt.Printf("\nUse 'gridfit status %s' to monitor progress\n", result.JobID)

	return nil
}

// runResumeLocal loads the checkpoint and finishes the remaining images
// in this process, with no server involved.
func runResumeLocal(jobID string) error {
	slog.Info("Resuming job locally", "job_id", jobID)

	checkpointStore, err := store.NewFSStore(dataDir)
	if err != nil {
		return fmt.Errorf("failed to open checkpoint store: %w", err)
	}

	checkpoint, err := checkpointStore.LoadCheckpoint(jobID)
	if err != nil {
		return fmt.Errorf("failed to load checkpoint: %w", err)
	}

	if err := checkpoint.Validate(); err != nil {
		return fmt.Errorf("invalid checkpoint: %w", err)
	}

	remaining := checkpoint.RemainingPaths()

	fmt.Printf("Loaded checkpoint:\n")
	fmt.Printf("  Job ID: %s\n", checkpoint.JobID)
	fmt.Printf("  Processed: %d/%d\n", checkpoint.ProcessedCount, len(checkpoint.Config.ImagePaths))
	fmt.Printf("  Remaining: %d\n", len(remaining))
	fmt.Printf("  Checkpoint time: %s\n\n", checkpoint.Timestamp.Format(time.RFC3339))

	if len(remaining) == 0 {
		fmt.Println("Nothing left to process.")
		return nil
	}

	opts := gridfit.Options{
		MaxScale:         checkpoint.Config.MaxScale,
		SampleCenterOnly: checkpoint.Config.SampleCenterOnly,
		ProjectorBackend: checkpoint.Config.ProjectorBackend,
	}

	results := append([]store.ImageResult(nil), checkpoint.Results...)

	fmt.Println("Resuming analysis...")
	start := time.Now()

	for _, path := range remaining {
		img, err := loadImageForAnalyze(path)
		if err != nil {
			return fmt.Errorf("analyzing %s: %w", path, err)
		}
		result, err := gridfit.Analyze(img, opts)
		if err != nil {
			return fmt.Errorf("analyzing %s: %w", path, err)
		}
		results = append(results, store.ImageResult{
			ImagePath:   path,
			ScaleX:      result.X.Scale,
			OffsetX:     result.X.Offset,
			ConfidenceX: result.X.Confidence,
			ScaleY:      result.Y.Scale,
			OffsetY:     result.Y.Offset,
			ConfidenceY: result.Y.Confidence,
		})
		fmt.Printf("  %s: scale=(%.3f, %.3f) offset=(%.3f, %.3f)\n",
			path, result.X.Scale, result.Y.Scale, result.X.Offset, result.Y.Offset)
	}

	elapsed := time.Since(start)
	fmt.Printf("\nFinished %d remaining image(s) in %s\n", len(remaining), elapsed.Round(time.Millisecond))

	updated := store.NewCheckpoint(jobID, results, checkpoint.Config)
	if err := checkpointStore.SaveCheckpoint(jobID, updated); err != nil {
		return fmt.Errorf("failed to save updated checkpoint: %w", err)
	}
	fmt.Println("Checkpoint updated.")

	return nil
}
