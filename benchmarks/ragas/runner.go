// ABOUTME: Test runner for RAGAS benchmarks - executes scenarios and collects results
// ABOUTME: Asks each scenario's question through the query engine and scores the answer

package ragas

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/harper/guia/internal/models"
)

// Asker is the query engine surface the benchmarks need
type Asker interface {
	Ask(ctx context.Context, query string) (*models.Answer, error)
}

// BenchmarkRunner executes RAGAS benchmark tests
type BenchmarkRunner struct {
	engine  Asker
	metrics *MetricsCalculator
	logger  *zap.Logger
	out     io.Writer
	verbose bool
}

// NewBenchmarkRunner creates a runner over an ingested engine. Progress is
// written to out.
func NewBenchmarkRunner(engine Asker, out io.Writer, logger *zap.Logger, verbose bool) *BenchmarkRunner {
	if logger == nil {
		logger = zap.NewNop()
	}
	if out == nil {
		out = io.Discard
	}
	return &BenchmarkRunner{
		engine:  engine,
		metrics: NewMetricsCalculator(),
		logger:  logger,
		out:     out,
		verbose: verbose,
	}
}

// RunTest executes a single benchmark test
func (r *BenchmarkRunner) RunTest(ctx context.Context, scenario TestScenario) (TestResult, error) {
	if r.verbose {
		fmt.Fprintf(r.out, "\n========================================\n")
		fmt.Fprintf(r.out, "RUNNING: %s\n", scenario.Name)
		fmt.Fprintf(r.out, "========================================\n")
		if scenario.Description != "" {
			fmt.Fprintf(r.out, "Description: %s\n", scenario.Description)
		}
		fmt.Fprintf(r.out, "Query: %s\n\n", scenario.Query)
	}

	began := time.Now()
	answer, err := r.engine.Ask(ctx, scenario.Query)
	if err != nil {
		return TestResult{}, fmt.Errorf("asking %q: %w", scenario.Query, err)
	}

	retrieved := make([]string, 0, len(answer.Sources))
	for _, sc := range answer.Sources {
		retrieved = append(retrieved, sc.Chunk.Content)
	}

	result := r.metrics.EvaluateTest(scenario, answer.Text, retrieved)
	result.Details["latency_ms"] = time.Since(began).Milliseconds()

	r.logger.Debug("scenario evaluated",
		zap.String("id", scenario.ID),
		zap.Float64("faithfulness", result.FaithfulnessScore),
		zap.Float64("context_recall", result.ContextRecallScore))

	if r.verbose {
		fmt.Fprintf(r.out, "Answer: %s\n", answer.Text)
		fmt.Fprintf(r.out, "Retrieved %d chunk(s)\n", len(retrieved))
		fmt.Fprintf(r.out, "Status: %s\n", result.Status)
	}
	return result, nil
}

// RunAllTests executes every scenario in order, stopping at the first error
func (r *BenchmarkRunner) RunAllTests(ctx context.Context, scenarios []TestScenario) ([]TestResult, error) {
	results := make([]TestResult, 0, len(scenarios))

	for _, scenario := range scenarios {
		result, err := r.RunTest(ctx, scenario)
		if err != nil {
			return nil, fmt.Errorf("test %s failed: %w", scenario.ID, err)
		}
		results = append(results, result)
	}

	return results, nil
}

// Summary is the exported benchmark report
type Summary struct {
	Timestamp  string       `json:"timestamp"`
	TotalTests int          `json:"total_tests"`
	Passed     int          `json:"passed"`
	Failed     int          `json:"failed"`
	Results    []TestResult `json:"results"`
}

// Summarize counts passes and failures
func Summarize(results []TestResult) Summary {
	summary := Summary{
		Timestamp:  time.Now().Format(time.RFC3339),
		TotalTests: len(results),
		Results:    results,
	}
	for _, result := range results {
		if result.Status == StatusPass {
			summary.Passed++
		} else {
			summary.Failed++
		}
	}
	return summary
}

// ExportResults exports test results to JSON
func (r *BenchmarkRunner) ExportResults(results []TestResult, outputPath string) error {
	jsonData, err := json.MarshalIndent(Summarize(results), "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}

	if err := os.WriteFile(outputPath, jsonData, 0644); err != nil {
		return fmt.Errorf("failed to write results file: %w", err)
	}

	fmt.Fprintf(r.out, "✓ Results exported to: %s\n", outputPath)
	return nil
}
