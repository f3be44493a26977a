// Command rosterdump formats one roster file and prints the roster JSON.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/lawnchairsociety/rosterforge/server/internal/ingest"
	"github.com/lawnchairsociety/rosterforge/server/internal/roster"
	"github.com/lawnchairsociety/rosterforge/server/internal/rosz"
	"github.com/lawnchairsociety/rosterforge/server/internal/text"
)

func main() {
	mode := flag.String("mode", string(rosz.AllModels), "Wargear allocation mode: allModels, oneModel or separateModels")
	indent := flag.Int("indent", 2, "JSON indent, 0 for compact output")
	palette := flag.String("palette", "", "Path to a palette YAML file")
	depth := flag.Int("max-depth", 64, "Maximum source tree depth")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: rosterdump [flags] <file.regiztry|file.rosz|file.ros>\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}
	path := flag.Arg(0)

	allocation, err := rosz.ParseAllocationMode(*mode)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(2)
	}
	if err := text.Initialize(*palette); err != nil {
		fmt.Fprintln(os.Stderr, "Error loading palette:", err)
		os.Exit(1)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}

	r, err := ingest.Parse(filepath.Base(path), data, ingest.Options{
		AllocationMode: allocation,
		MaxDepth:       *depth,
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}

	out, err := roster.Serialize(r, *indent)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
	fmt.Println(string(out))

	for _, msg := range r.Errors {
		fmt.Fprintln(os.Stderr, "warning:", msg)
	}
}
