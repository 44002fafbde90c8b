// ABOUTME: Command-line benchmark runner for RAGAS tests
// ABOUTME: Ingests the configured sources, asks each scenario and outputs JSON results

package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/harper/guia/benchmarks/ragas"
	"github.com/harper/guia/internal/app"
)

func main() {
	// Command-line flags
	testID := flag.String("test", "", "Run specific test by id. If empty, runs all tests.")
	scenariosPath := flag.String("scenarios", "", "YAML file with scenarios (defaults to the built-in set)")
	outputPath := flag.String("output", "benchmark_results.json", "Output path for JSON results")
	configPath := flag.String("config", "", "Config file path")
	verbose := flag.Bool("verbose", false, "Enable verbose output")
	flag.Parse()

	scenarios := ragas.GetAllTests()
	if *scenariosPath != "" {
		loaded, err := ragas.LoadScenarios(*scenariosPath)
		if err != nil {
			log.Fatalf("Failed to load scenarios: %v", err)
		}
		scenarios = loaded
	}

	if *testID != "" {
		scenario, ok := ragas.FindScenario(scenarios, *testID)
		if !ok {
			ids := make([]string, 0, len(scenarios))
			for _, s := range scenarios {
				ids = append(ids, s.ID)
			}
			log.Fatalf("Unknown test ID: %s (valid options: %s)", *testID, strings.Join(ids, ", "))
		}
		scenarios = []ragas.TestScenario{scenario}
	}

	// Loads .env and requires OPENAI_API_KEY
	a, err := app.New(*configPath, *verbose, !*verbose)
	if err != nil {
		log.Fatalf("Failed to initialize: %v", err)
	}
	defer a.Close()

	// Print header
	fmt.Println("========================================")
	fmt.Println("Guia RAGAS Benchmarks")
	fmt.Println("========================================")
	fmt.Println()

	ctx := context.Background()
	engine, stats, err := a.BuildEngine(ctx)
	if err != nil {
		log.Fatalf("Failed to build index: %v", err)
	}
	fmt.Printf("Indexed %d chunk(s) from %d page(s)\n\n", stats.Chunks, stats.Documents)

	runner := ragas.NewBenchmarkRunner(engine, os.Stdout, a.Logger, *verbose)

	fmt.Printf("Running %d RAGAS benchmark test(s)...\n", len(scenarios))
	results, err := runner.RunAllTests(ctx, scenarios)
	if err != nil {
		log.Fatalf("Benchmark failed: %v", err)
	}

	// Print summary
	fmt.Println("\n========================================")
	fmt.Println("BENCHMARK SUMMARY")
	fmt.Println("========================================")

	for _, result := range results {
		fmt.Printf("\n%s: %s\n", result.TestID, result.TestName)
		fmt.Printf("  Faithfulness: %.2f\n", result.FaithfulnessScore)
		fmt.Printf("  Context Recall: %.2f\n", result.ContextRecallScore)
		fmt.Printf("  Overall: %.2f\n", result.OverallScore)
		fmt.Printf("  Status: %s\n", result.Status)
	}

	summary := ragas.Summarize(results)
	fmt.Println("\n========================================")
	fmt.Printf("Total Tests: %d\n", summary.TotalTests)
	fmt.Printf("Passed: %d\n", summary.Passed)
	fmt.Printf("Failed: %d\n", summary.Failed)
	fmt.Println("========================================")

	// Export results
	if err := runner.ExportResults(results, *outputPath); err != nil {
		log.Fatalf("Failed to export results: %v", err)
	}

	// Exit with error code if any tests failed
	if summary.Failed > 0 {
		a.Close()
		os.Exit(1)
	}
}
