package store

import (
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestTraceWriterWriteAndRead(t *testing.T) {
	tmpDir := t.TempDir()
	jobID := "test-job-123"

	writer, err := NewTraceWriter(tmpDir, jobID, false)
	if err != nil {
		t.Fatalf("NewTraceWriter() error = %v", err)
	}

	entries := []TraceEntry{
		{Index: 0, ImagePath: "a.png", ScaleX: 4, ScaleY: 4, Timestamp: time.Now()},
		{Index: 1, ImagePath: "b.png", ScaleX: 5, OffsetX: 2, ScaleY: 5, Timestamp: time.Now()},
		{Index: 2, ImagePath: "c.png", ScaleX: 7.14, ScaleY: 7.14, ConfidenceX: 0.6, Timestamp: time.Now()},
	}

	for _, entry := range entries {
		if err := writer.Write(entry); err != nil {
			t.Fatalf("Write() error = %v", err)
		}
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	tracePath := filepath.Join(tmpDir, "jobs", jobID, "trace.jsonl")
	if _, err := os.Stat(tracePath); os.IsNotExist(err) {
		t.Fatalf("trace file not created: %s", tracePath)
	}

	reader, err := NewTraceReader(tmpDir, jobID)
	if err != nil {
		t.Fatalf("NewTraceReader() error = %v", err)
	}
	defer reader.Close()

	got, err := reader.ReadAll()
	if err != nil {
		t.Fatalf("ReadAll() error = %v", err)
	}
	if len(got) != len(entries) {
		t.Fatalf("ReadAll() returned %d entries, want %d", len(got), len(entries))
	}
	for i, e := range got {
		if e.ImagePath != entries[i].ImagePath || e.ScaleX != entries[i].ScaleX {
			t.Errorf("entry[%d] = %+v, want %+v", i, e, entries[i])
		}
	}
}

func TestTraceWriterAppendMode(t *testing.T) {
	tmpDir := t.TempDir()
	jobID := "job-append"

	w1, err := NewTraceWriter(tmpDir, jobID, false)
	if err != nil {
		t.Fatalf("NewTraceWriter() error = %v", err)
	}
	if err := w1.Write(TraceEntry{Index: 0, ImagePath: "a.png"}); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if err := w1.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	w2, err := NewTraceWriter(tmpDir, jobID, true)
	if err != nil {
		t.Fatalf("NewTraceWriter(append) error = %v", err)
	}
	if err := w2.Write(TraceEntry{Index: 1, ImagePath: "b.png"}); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if err := w2.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	reader, err := NewTraceReader(tmpDir, jobID)
	if err != nil {
		t.Fatalf("NewTraceReader() error = %v", err)
	}
	defer reader.Close()

	got, err := reader.ReadAll()
	if err != nil {
		t.Fatalf("ReadAll() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("ReadAll() returned %d entries, want 2", len(got))
	}
}

func TestTraceReaderNotFound(t *testing.T) {
	tmpDir := t.TempDir()

	_, err := NewTraceReader(tmpDir, "missing-job")
	if _, ok := err.(*NotFoundError); !ok {
		t.Errorf("NewTraceReader() error = %v, want *NotFoundError", err)
	}
}

func TestTraceReaderReadReturnsEOF(t *testing.T) {
	tmpDir := t.TempDir()
	jobID := "job-empty"

	writer, err := NewTraceWriter(tmpDir, jobID, false)
	if err != nil {
		t.Fatalf("NewTraceWriter() error = %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	reader, err := NewTraceReader(tmpDir, jobID)
	if err != nil {
		t.Fatalf("NewTraceReader() error = %v", err)
	}
	defer reader.Close()

	if _, err := reader.Read(); err != io.EOF {
		t.Errorf("Read() error = %v, want io.EOF", err)
	}
}

func TestDeleteTraceMissingIsNoop(t *testing.T) {
	tmpDir := t.TempDir()
	if err := DeleteTrace(tmpDir, "missing-job"); err != nil {
		t.Errorf("DeleteTrace() error = %v, want nil for a missing file", err)
	}
}
