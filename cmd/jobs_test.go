package main

import (
	"testing"

	"github.com/cwbudde/gridfit/internal/store"
)

func TestJobsListCommand_NoCheckpoints(t *testing.T) {
	tmpDir := t.TempDir()

	original := dataDir
	dataDir = tmpDir
	defer func() { dataDir = original }()

	if err := runJobsList(nil, nil); err != nil {
		t.Errorf("expected no error, got %v", err)
	}
}

func TestJobsListCommand_WithCheckpoints(t *testing.T) {
	tmpDir := t.TempDir()

	checkpointStore, err := store.NewFSStore(tmpDir)
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}

	config := store.JobConfig{ImagePaths: []string{"a.png", "b.png"}, MaxScale: 16}
	results := []store.ImageResult{{ImagePath: "a.png", ScaleX: 4, ScaleY: 4}}
	checkpoint := store.NewCheckpoint("job-1", results, config)

	if err := checkpointStore.SaveCheckpoint("job-1", checkpoint); err != nil {
		t.Fatalf("failed to save checkpoint: %v", err)
	}

	original := dataDir
	dataDir = tmpDir
	defer func() { dataDir = original }()

	if err := runJobsList(nil, nil); err != nil {
		t.Errorf("expected no error, got %v", err)
	}
}

func TestJobsDeleteCommand(t *testing.T) {
	tmpDir := t.TempDir()

	checkpointStore, err := store.NewFSStore(tmpDir)
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}

	config := store.JobConfig{ImagePaths: []string{"a.png"}, MaxScale: 16}
	checkpoint := store.NewCheckpoint("job-2", nil, config)
	if err := checkpointStore.SaveCheckpoint("job-2", checkpoint); err != nil {
		t.Fatalf("failed to save checkpoint: %v", err)
	}

	original := dataDir
	dataDir = tmpDir
	defer func() { dataDir = original }()

	if err := runJobsDelete(nil, []string{"job-2"}); err != nil {
		t.Errorf("expected no error, got %v", err)
	}

	if _, err := checkpointStore.LoadCheckpoint("job-2"); err == nil {
		t.Error("expected checkpoint to be deleted")
	}
}

func TestJobsDeleteCommand_NotFound(t *testing.T) {
	tmpDir := t.TempDir()

	original := dataDir
	dataDir = tmpDir
	defer func() { dataDir = original }()

	if err := runJobsDelete(nil, []string{"missing-job"}); err == nil {
		t.Error("expected an error for a missing checkpoint")
	}
}
