// Package main provides a performance benchmarking tool for the witdiff CLI.
// It measures comparison times across process template exports of different sizes,
// running each test multiple times, treating the first successful run as cold and averaging the rest as warm,
// generating CSV output for performance analysis and documentation.
//
// Prerequisites:
// - witdiff binary installed and available in PATH
// - Benchmark data laid out under the specified base directory:
//   - <base>/templates/<template>/ - process template XML
//   - <base>/exports/<project>/    - exported team project XML
//   - <base>/manifest.yaml         - manifest referencing the above (optional)
//
// Usage: go run benchmark/main.go [data-base-dir]
//
//	data-base-dir: Directory containing benchmark data
package main

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

// BenchmarkResult holds the result of a benchmark run (no-cache average, cold run and average of warm runs).
type BenchmarkResult struct {
	Scenario    string
	Command     string
	NoCacheTime string
	ColdTime    string
	WarmTime    string
}

// BenchmarkScenario pairs a source template with a target export.
type BenchmarkScenario struct {
	Name     string
	Template string
	Project  string
}

// BenchmarkConfig holds configuration for the benchmark run.
type BenchmarkConfig struct {
	DataBase    string
	Timeout     time.Duration
	Workers     int
	NoCacheRuns int
	CacheRuns   int
	Scenarios   []BenchmarkScenario
}

func main() {
	if len(os.Args) != 2 {
		fmt.Printf("Usage: %s [data-base-dir]\n", os.Args[0])
		os.Exit(1)
	}

	config := BenchmarkConfig{
		DataBase:    os.Args[1],
		Timeout:     2 * time.Minute,
		Workers:     8,
		NoCacheRuns: 3,
		CacheRuns:   4,
		Scenarios: []BenchmarkScenario{
			{Name: "agile-small", Template: "Agile", Project: "Fabrikam"},
			{Name: "scrum-medium", Template: "Scrum", Project: "Contoso"},
			{Name: "cmmi-large", Template: "CMMI", Project: "AdventureWorks"},
		},
	}

	if err := checkPrerequisites(config); err != nil {
		fmt.Printf("Prerequisites check failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Clearing cache...\n")
	clearCmd := exec.Command("witdiff", "cache", "clear")
	if output, err := clearCmd.CombinedOutput(); err != nil {
		fmt.Printf("Warning: failed to clear cache: %v\nOutput: %s\n", err, string(output))
	} else {
		fmt.Printf("Cache cleared successfully\n")
	}

	results := runBenchmarks(config)

	if err := saveResults(results); err != nil {
		fmt.Printf("Failed to save results: %v\n", err)
		os.Exit(1)
	}

	printSummary(results)
}

// checkPrerequisites verifies that the witdiff binary and benchmark data exist
func checkPrerequisites(config BenchmarkConfig) error {
	if _, err := exec.LookPath("witdiff"); err != nil {
		return fmt.Errorf("witdiff binary not found in PATH")
	}

	for _, scenario := range config.Scenarios {
		for _, dir := range []string{templatePath(config, scenario), projectPath(config, scenario)} {
			if _, err := os.Stat(dir); errors.Is(err, os.ErrNotExist) {
				return fmt.Errorf("scenario %s: %s not found", scenario.Name, dir)
			}
		}
	}

	return nil
}

func templatePath(config BenchmarkConfig, scenario BenchmarkScenario) string {
	return filepath.Join(config.DataBase, "templates", scenario.Template)
}

func projectPath(config BenchmarkConfig, scenario BenchmarkScenario) string {
	return filepath.Join(config.DataBase, "exports", scenario.Project)
}

// runBenchmarks executes all benchmark tests across configured scenarios
func runBenchmarks(config BenchmarkConfig) []BenchmarkResult {
	var results []BenchmarkResult

	fmt.Printf("Starting benchmark: %d scenarios, %v timeout, %d workers, no-cache: %d runs, cache: %d runs\n",
		len(config.Scenarios), config.Timeout, config.Workers, config.NoCacheRuns, config.CacheRuns)

	for _, scenario := range config.Scenarios {
		fmt.Printf("Benchmarking %s\n", scenario.Name)

		args := []string{
			"--source", templatePath(config, scenario),
			"--target", projectPath(config, scenario),
			"--source-name", scenario.Template,
			"--target-name", scenario.Project,
		}
		desc := fmt.Sprintf("compare (%s -> %s)", scenario.Template, scenario.Project)
		results = append(results, runBenchmarkSuite(config, scenario.Name, "compare", desc, args))
	}

	manifest := filepath.Join(config.DataBase, "manifest.yaml")
	if _, err := os.Stat(manifest); err == nil {
		results = append(results, runBenchmarkSuite(config, "manifest", "projects", "projects (manifest.yaml)", []string{manifest}))
	}

	return results
}

// runBenchmarkSuite runs both no-cache and cache benchmarks for a command
func runBenchmarkSuite(config BenchmarkConfig, scenario, command, description string, extraArgs []string) BenchmarkResult {
	fmt.Printf("Running %s on %s\n", description, scenario)

	runPhase := func(cacheBackend string, numRuns int, phaseName string) (coldTime float64, avgTime string) {
		fmt.Printf("  %s phase (%d runs)\n", phaseName, numRuns)
		cold, times := runBenchmark(config, command, extraArgs, cacheBackend, numRuns)
		if len(times) == 0 {
			avgTime = "TIMEOUT"
		} else {
			var sum float64
			for _, t := range times {
				sum += t
			}
			avgTime = fmt.Sprintf("%.3fs", sum/float64(len(times)))
		}
		return cold, avgTime
	}

	// Phase 1: No-cache runs
	_, noCacheAvg := runPhase("none", config.NoCacheRuns, "No-cache")

	// Phase 2: Cache runs
	coldTime, warmAvg := runPhase("sqlite", config.CacheRuns, "Cache")

	coldTimeStr := "TIMEOUT"
	if coldTime > 0 {
		coldTimeStr = fmt.Sprintf("%.3fs", coldTime)
	}

	fmt.Printf("  No-cache average: %s, Cold time: %s, Warm average: %s\n", noCacheAvg, coldTimeStr, warmAvg)

	return BenchmarkResult{
		Scenario:    scenario,
		Command:     command,
		NoCacheTime: noCacheAvg,
		ColdTime:    coldTimeStr,
		WarmTime:    warmAvg,
	}
}

// runBenchmark executes a witdiff command multiple times with specified cache backend and returns cold time and warm times
func runBenchmark(config BenchmarkConfig, command string, extraArgs []string, cacheBackend string, numRuns int) (coldTime float64, warmTimes []float64) {
	args := []string{command, "--cache-backend", cacheBackend, "--workers", fmt.Sprint(config.Workers)}
	args = append(args, extraArgs...)

	var times []float64
	for run := 1; run <= numRuns; run++ {
		ctx, cancel := context.WithTimeout(context.Background(), config.Timeout)
		start := time.Now()
		// A failed min-match gate exits non-zero, so success is judged by the footer
		output, _ := exec.CommandContext(ctx, "witdiff", args...).CombinedOutput()
		elapsed := time.Since(start).Seconds()
		timedOut := ctx.Err() != nil
		cancel()

		if !timedOut && isSuccess(output) {
			times = append(times, elapsed)
		}
	}

	if len(times) > 0 {
		coldTime = times[0]
		warmTimes = times[1:]
	}
	return coldTime, warmTimes
}

// isSuccess checks if command output indicates successful completion
func isSuccess(output []byte) bool {
	outputStr := string(output)
	return strings.Contains(outputStr, "Comparison completed in") &&
		strings.Contains(outputStr, "workers")
}

// saveResults writes benchmark results to a timestamped CSV file
func saveResults(results []BenchmarkResult) error {
	timestamp := time.Now().Format("20060102_150405")
	filename := filepath.Join(os.TempDir(), fmt.Sprintf("witdiff_benchmark_%s.csv", timestamp))

	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			fmt.Printf("Warning: failed to close file %s: %v\n", filename, closeErr)
		}
	}()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	if err := writer.Write([]string{"scenario", "cmd", "no_cache_avg", "cold_time", "warm_avg"}); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, result := range results {
		if err := writer.Write([]string{result.Scenario, result.Command, result.NoCacheTime, result.ColdTime, result.WarmTime}); err != nil {
			return fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	fmt.Printf("Results saved to %s\n", filename)
	return nil
}

// printSummary displays the final benchmark results summary
func printSummary(results []BenchmarkResult) {
	fmt.Printf("Benchmark complete\n")

	printCommandSummary(results, "compare", "Compare:")
	printCommandSummary(results, "projects", "Projects:")

	fmt.Printf("Benchmark script completed successfully\n")
}

// printCommandSummary displays results for a specific command type
func printCommandSummary(results []BenchmarkResult, command, title string) {
	fmt.Printf("%s\n", title)
	for _, result := range results {
		if result.Command == command {
			fmt.Printf("  %-14s: No-cache: %s, Cold: %s, Warm: %s\n", result.Scenario, result.NoCacheTime, result.ColdTime, result.WarmTime)
		}
	}
}
