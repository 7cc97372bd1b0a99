//go:build ignore

package main

import (
	"fmt"
	"os"

	"github.com/praxislabs/gauntlet/pkg/engine"
	"github.com/praxislabs/gauntlet/pkg/replay"
)

func main() {
	data, err := engine.GenerateResultJSONSchema()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	if err := os.WriteFile("schemas/result-v0.json", data, 0644); err != nil {
		fmt.Fprintf(os.Stderr, "write: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("wrote schemas/result-v0.json")

	trData, err := replay.GenerateTranscriptJSONSchema()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error generating transcript schema: %v\n", err)
		os.Exit(1)
	}
	if err := os.WriteFile("schemas/transcript-v0.json", trData, 0644); err != nil {
		fmt.Fprintf(os.Stderr, "write: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("wrote schemas/transcript-v0.json")
}
