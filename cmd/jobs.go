package main

import (
	"errors"
	"fmt"

	"github.com/cwbudde/gridfit/internal/store"
	"github.com/spf13/cobra"
)

var jobsCmd = &cobra.Command{
	Use:   "jobs",
	Short: "List or delete persisted batch job checkpoints",
}

var jobsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List persisted checkpoints",
	RunE:  runJobsList,
}

var jobsDeleteCmd = &cobra.Command{
	Use:   "delete [job-id]",
	Short: "Delete a persisted checkpoint and its artifacts",
	Args:  cobra.ExactArgs(1),
	RunE:  runJobsDelete,
}

func init() {
	jobsCmd.PersistentFlags().StringVar(&dataDir, "data", "./data", "Checkpoint/trace data directory")
	jobsCmd.AddCommand(jobsListCmd)
	jobsCmd.AddCommand(jobsDeleteCmd)
	rootCmd.AddCommand(jobsCmd)
}

func runJobsList(cmd *cobra.Command, args []string) error {
	checkpointStore, err := store.NewFSStore(dataDir)
	if err != nil {
		return fmt.Errorf("failed to open checkpoint store: %w", err)
	}

	infos, err := checkpointStore.ListCheckpoints()
	if err != nil {
		return fmt.Errorf("failed to list checkpoints: %w", err)
	}

	if len(infos) == 0 {
		fmt.Println("No persisted jobs found")
		return nil
	}

	fmt.Printf("Found %d persisted job(s):\n\n", len(infos))
	for _, info := range infos {
		fmt.Printf("Job ID: %s\n", info.JobID)
		fmt.Printf("  Processed: %d/%d\n", info.ProcessedCount, info.TotalCount)
		fmt.Printf("  Checkpointed: %s\n\n", info.Timestamp.Format("2006-01-02 15:04:05"))
	}

	return nil
}

func runJobsDelete(cmd *cobra.Command, args []string) error {
	jobID := args[0]

	checkpointStore, err := store.NewFSStore(dataDir)
	if err != nil {
		return fmt.Errorf("failed to open checkpoint store: %w", err)
	}

	if err := checkpointStore.DeleteCheckpoint(jobID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("no checkpoint found for job %s", jobID)
		}
		return fmt.Errorf("failed to delete checkpoint: %w", err)
	}

	fmt.Printf("Deleted checkpoint for job %s\n", jobID)
	return nil
}
