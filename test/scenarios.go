// Package test holds integration scenarios run against a live roster
// service by cmd/testrunner.
package test

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync/atomic"

	"github.com/lawnchairsociety/rosterforge/server/internal/ingest"
)

// Verbose controls whether detailed logging is shown during tests
var Verbose = false

var clientCounter uint64

// clientName returns a unique label for a test client.
func clientName(base string) string {
	return fmt.Sprintf("%s-%d", base, atomic.AddUint64(&clientCounter, 1))
}

// TestResult represents the result of a test
type TestResult struct {
	Name    string
	Passed  bool
	Message string
}

func pass(name, format string, args ...any) TestResult {
	return TestResult{Name: name, Passed: true, Message: fmt.Sprintf(format, args...)}
}

func fail(name, format string, args ...any) TestResult {
	return TestResult{Name: name, Passed: false, Message: fmt.Sprintf(format, args...)}
}

// logAction logs a test action when verbose mode is enabled
func logAction(testName, action string) {
	if Verbose {
		fmt.Printf("  [%s] %s\n", testName, action)
	}
}

// logResult logs an expected vs actual result when verbose mode is enabled
func logResult(testName string, success bool, detail string) {
	if Verbose {
		status := "OK"
		if !success {
			status = "FAIL"
		}
		fmt.Printf("  [%s] %s: %s\n", testName, status, detail)
	}
}

// Sample is one roster file used by the scenarios.
type Sample struct {
	Filename string
	Data     []byte
}

// BuiltinSample is a small BattleScribe roster that every run uses.
func BuiltinSample() Sample {
	return Sample{Filename: "builtin.ros", Data: []byte(builtinRoster)}
}

// LoadSamples reads every roster file in dir, sorted by name.
func LoadSamples(dir string) ([]Sample, error) {
	if dir == "" {
		return nil, nil
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read samples: %w", err)
	}
	var samples []Sample
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if _, err := ingest.FormatFor(e.Name()); err != nil {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, e.Name()))
		if err != nil {
			return nil, fmt.Errorf("failed to read sample %s: %w", e.Name(), err)
		}
		samples = append(samples, Sample{Filename: e.Name(), Data: data})
	}
	sort.Slice(samples, func(i, j int) bool { return samples[i].Filename < samples[j].Filename })
	return samples, nil
}

// RunAllTests runs every scenario against baseURL.
func RunAllTests(baseURL string, samples []Sample) []TestResult {
	samples = append([]Sample{BuiltinSample()}, samples...)
	results := make([]TestResult, 0)

	// Group 1: Formatting
	for _, s := range samples {
		results = append(results, TestFormattedArmy(baseURL, s))
	}
	results = append(results, TestAllocationModes(baseURL))
	results = append(results, TestInvalidFormat(baseURL))

	// Group 2: Codes
	for _, s := range samples {
		results = append(results, TestArmyCodeRoundTrip(baseURL, s))
	}
	results = append(results, TestMakeArmyAndReturnCode(baseURL))
	results = append(results, TestUnknownCode(baseURL))

	// Group 3: WebSocket
	results = append(results, TestWebSocketUpload(baseURL))

	return results
}

// PrintResults prints test results
func PrintResults(results []TestResult) {
	passed := 0
	failed := 0

	fmt.Println("============================================================")
	fmt.Println("Integration Test Results")
	fmt.Println("============================================================")
	fmt.Println()

	for _, r := range results {
		status := "PASS"
		if !r.Passed {
			status = "FAIL"
			failed++
		} else {
			passed++
		}
		fmt.Printf("[%s] %s: %s\n", status, r.Name, r.Message)
	}

	fmt.Println()
	fmt.Println(strings.Repeat("-", 60))
	fmt.Printf("Total: %d | Passed: %d | Failed: %d\n", len(results), passed, failed)
	fmt.Println(strings.Repeat("-", 60))
}

const builtinRoster = `<?xml version="1.0" encoding="UTF-8"?>
<roster id="smoke" name="Smoke Test" gameSystemId="sys-352e-adc2-7639-d6a9" gameSystemName="Warhammer 40,000 10th Edition" gameSystemRevision="1" battleScribeVersion="2.03">
  <forces>
    <force id="f1" name="Test Force">
      <selections>
        <selection id="u1" name="Tactical Squad" type="unit" number="1">
          <profiles>
            <profile id="p1" name="Tactical Squad" typeName="Unit">
              <characteristics>
                <characteristic name="M">6"</characteristic>
                <characteristic name="T">4</characteristic>
                <characteristic name="SV">3+</characteristic>
                <characteristic name="W">2</characteristic>
                <characteristic name="LD">6+</characteristic>
                <characteristic name="OC">2</characteristic>
              </characteristics>
            </profile>
          </profiles>
          <selections>
            <selection id="m1" name="Marine" type="model" number="4">
              <selections>
                <selection id="w1" name="Boltgun" type="upgrade" number="4">
                  <profiles>
                    <profile id="p2" name="Boltgun" typeName="Ranged Weapons">
                      <characteristics>
                        <characteristic name="Range">24"</characteristic>
                        <characteristic name="A">2</characteristic>
                        <characteristic name="BS">3+</characteristic>
                        <characteristic name="S">4</characteristic>
                        <characteristic name="AP">0</characteristic>
                        <characteristic name="D">1</characteristic>
                        <characteristic name="Keywords">-</characteristic>
                      </characteristics>
                    </profile>
                  </profiles>
                </selection>
              </selections>
            </selection>
            <selection id="w2" name="Plasma gun" type="upgrade" number="1">
              <profiles>
                <profile id="p3" name="Plasma gun" typeName="Ranged Weapons">
                  <characteristics>
                    <characteristic name="Range">24"</characteristic>
                    <characteristic name="A">1</characteristic>
                    <characteristic name="BS">3+</characteristic>
                    <characteristic name="S">7</characteristic>
                    <characteristic name="AP">-2</characteristic>
                    <characteristic name="D">1</characteristic>
                    <characteristic name="Keywords">Rapid Fire 1, Hazardous</characteristic>
                  </characteristics>
                </profile>
              </profiles>
            </selection>
          </selections>
          <categories>
            <category id="c1" name="Faction: Adeptus Astartes" primary="false"/>
            <category id="c2" name="Infantry" primary="false"/>
          </categories>
        </selection>
      </selections>
    </force>
  </forces>
</roster>`
