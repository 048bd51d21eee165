package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/com4-wkflws/shopify/topics"
)

/* validate-topics - Standalone CLI tool to validate topics.yaml
 * Usage: go run cmd/validate-topics/main.go [topics.yaml]
 * Exit codes: 0 = valid, 1 = invalid
 */

func main() {
	topicsFile := "topics.yaml"
	if len(os.Args) > 1 {
		topicsFile = os.Args[1]
	}

	fmt.Printf("Validating topics file: %s\n", topicsFile)
	fmt.Println(strings.Repeat("-", 50))

	loader := topics.NewLoader()
	if err := loader.Load(topicsFile); err != nil {
		fmt.Fprintf(os.Stderr, "VALIDATION FAILED\n\n")
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	subs := loader.List()
	fmt.Printf("VALIDATION PASSED\n\n")
	fmt.Printf("Loaded %d topic(s):\n", len(subs))

	for i, sub := range subs {
		fmt.Printf("\n%d. Topic: %s\n", i+1, sub.Topic)
		fmt.Printf("   Target:  %s\n", sub.Target)
		fmt.Printf("   Enabled: %t\n", sub.Enabled)
	}

	fmt.Printf("\nAll topics are valid!\n")
}
