package main

import (
	"fmt"
	"image"
	_ "image/jpeg"
	"image/png"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"runtime/pprof"
	"time"

	"github.com/cwbudde/gridfit/internal/gridfit"
	"github.com/spf13/cobra"
)

var (
	analyzeInPath           string
	analyzeOutDir           string
	analyzeMaxScale         int
	analyzeSampleCenterOnly bool
	analyzeBackend          string
	analyzeNoReconstruct    bool
	analyzeCPUProfile       string
	analyzeMemProfile       string

	// dataDir is the checkpoint and trace directory shared by the jobs and
	// resume commands (serve always uses ./data).
	dataDir string
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Recover the native grid of a single upscaled image",
	Long: `Runs the EdgeProjector -> PeriodicityFitter -> GridModel -> Reconstructor
pipeline on a single image and writes the recovered low-resolution image
and a grid-snapped preview.`,
	RunE: runAnalyze,
}

func init() {
	analyzeCmd.Flags().StringVar(&analyzeInPath, "in", "", "Input image path (required)")
	analyzeCmd.Flags().StringVar(&analyzeOutDir, "out", ".", "Output directory for lowres.png/preview.png")
	analyzeCmd.Flags().IntVar(&analyzeMaxScale, "max-scale", gridfit.DefaultMaxScale, "Maximum scale searched per axis (>= 2)")
	analyzeCmd.Flags().BoolVar(&analyzeSampleCenterOnly, "sample-center-only", false, "Sample the cell center instead of box-averaging")
	analyzeCmd.Flags().StringVar(&analyzeBackend, "backend", "cpu", "EdgeProjector backend: cpu, opencl")
	analyzeCmd.Flags().BoolVar(&analyzeNoReconstruct, "no-reconstruct", false, "Only fit the grid, skip writing output images")

	analyzeCmd.Flags().StringVar(&analyzeCPUProfile, "cpuprofile", "", "Write CPU profile to file")
	analyzeCmd.Flags().StringVar(&analyzeMemProfile, "memprofile", "", "Write memory profile to file")

	analyzeCmd.MarkFlagRequired("in")
	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	if analyzeCPUProfile != "" {
		f, err := os.Create(analyzeCPUProfile)
		if err != nil {
			return fmt.Errorf("failed to create CPU profile: %w", err)
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			return fmt.Errorf("failed to start CPU profile: %w", err)
		}
		defer pprof.StopCPUProfile()
		slog.Info("CPU profiling enabled", "output", analyzeCPUProfile)
	}

	slog.Info("Analyzing image", "path", analyzeInPath, "maxScale", analyzeMaxScale, "backend", analyzeBackend)

	img, err := loadImageForAnalyze(analyzeInPath)
	if err != nil {
		return err
	}

	opts := gridfit.Options{
		MaxScale:         analyzeMaxScale,
		SampleCenterOnly: analyzeSampleCenterOnly,
		ProjectorBackend: analyzeBackend,
	}

	start := time.Now()

	if analyzeNoReconstruct {
		result, err := gridfit.Analyze(img, opts)
		if err != nil {
			return fmt.Errorf("analyze: %w", err)
		}
		printAxisEstimates(img, result, time.Since(start))
		return nil
	}

	result, recon, err := gridfit.AnalyzeAndReconstruct(img, opts)
	if err != nil {
		return fmt.Errorf("analyze: %w", err)
	}
	elapsed := time.Since(start)

	if err := os.MkdirAll(analyzeOutDir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	lowResPath := filepath.Join(analyzeOutDir, "lowres.png")
	if err := savePNG(recon.LowRes.ToNRGBA(), lowResPath); err != nil {
		return fmt.Errorf("failed to write low-res output: %w", err)
	}

	previewPath := filepath.Join(analyzeOutDir, "preview.png")
	if err := savePNG(recon.Preview.ToNRGBA(), previewPath); err != nil {
		return fmt.Errorf("failed to write preview: %w", err)
	}

	printAxisEstimates(img, result, elapsed)
	fmt.Printf("  Low-res output: %s (%dx%d)\n", lowResPath, recon.LowRes.Width, recon.LowRes.Height)
	fmt.Printf("  Preview:        %s (%dx%d)\n", previewPath, recon.Preview.Width, recon.Preview.Height)

	if analyzeMemProfile != "" {
		f, err := os.Create(analyzeMemProfile)
		if err != nil {
			return fmt.Errorf("failed to create memory profile: %w", err)
		}
		defer f.Close()
		runtime.GC()
		if err := pprof.WriteHeapProfile(f); err != nil {
			return fmt.Errorf("failed to write memory profile: %w", err)
		}
		slog.Info("Memory profile written", "output", analyzeMemProfile)
	}

	return nil
}

func printAxisEstimates(img *gridfit.Image, result *gridfit.Result, elapsed time.Duration) {
	pixelsPerSecond := float64(img.Width*img.Height) / elapsed.Seconds()

	slog.Info("analysis complete",
		"elapsed", elapsed,
		"scaleX", result.X.Scale, "offsetX", result.X.Offset, "confidenceX", result.X.Confidence,
		"scaleY", result.Y.Scale, "offsetY", result.Y.Offset, "confidenceY", result.Y.Confidence,
		"pixels_per_second", fmt.Sprintf("%.0f", pixelsPerSecond),
	)

	fmt.Printf("X axis: scale=%.3f offset=%.3f confidence=%.3f\n", result.X.Scale, result.X.Offset, result.X.Confidence)
	fmt.Printf("Y axis: scale=%.3f offset=%.3f confidence=%.3f\n", result.Y.Scale, result.Y.Offset, result.Y.Confidence)
	fmt.Printf("Elapsed: %s (%.0f px/sec)\n", elapsed.Round(time.Millisecond), pixelsPerSecond)
}

// loadImageForAnalyze decodes the image at path into the pipeline's
// native representation. Shared by analyze and local resume.
func loadImageForAnalyze(path string) (*gridfit.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	return gridfit.FromImage(img), nil
}

// savePNG encodes img as a PNG at path.
func savePNG(img image.Image, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return png.Encode(f, img)
}
