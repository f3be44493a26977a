package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/lawnchairsociety/rosterforge/server/test"
)

func main() {
	baseURL := flag.String("addr", "http://localhost:8080", "Roster service base URL")
	samplesDir := flag.String("samples", "", "Directory of .regiztry/.rosz/.ros files to run through the service")
	verbose := flag.Bool("v", false, "Verbose output - show detailed actions for each test")
	flag.Parse()

	test.Verbose = *verbose

	samples, err := test.LoadSamples(*samplesDir)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}

	fmt.Printf("Running integration tests against %s\n", *baseURL)
	fmt.Println("Make sure the roster service is running!")
	if *verbose {
		fmt.Println("Verbose mode enabled - showing detailed test actions")
	}
	fmt.Println()

	results := test.RunAllTests(*baseURL, samples)
	test.PrintResults(results)

	// Exit with error code if any tests failed
	for _, result := range results {
		if !result.Passed {
			os.Exit(1)
		}
	}
}
