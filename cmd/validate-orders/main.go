package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/Gunvolt24/salesops/pkg/validate"
)

// CLI-приложение для офлайн-проверки размещений заказов (формат топика orders.placements).
func main() {
	inputPath := flag.String("in", "", "path to input (.json or .jsonl). If empty, reads from stdin.")
	formatStr := flag.String("format", "auto", "input format: auto|json|jsonl")
	strict := flag.Bool("strict", false, "exit with code 2 if any record is rejected")
	flag.Parse()

	ctx := context.Background()
	inputValidator := validate.NewValidator()

	format := validate.InputFormat(*formatStr)
	path := *inputPath

	// stdin вариант: считаем, что jsonl
	if path == "" {
		path = "/dev/stdin"
		if format == validate.FormatAuto {
			format = validate.FormatJSONL
		}
	}

	report, err := validate.ValidateFile(ctx, inputValidator, path, format, os.Stdout)
	for _, r := range report.Rejected {
		fmt.Fprintf(os.Stderr, "record %d: %s\n", r.Line, r.Reason)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "validation: %v (%s)\n", err, report)
		os.Exit(1)
	}
	if report.Invalid > 0 && *strict {
		fmt.Fprintf(os.Stderr, "validation failed (%s)\n", report)
		os.Exit(2)
	}
	fmt.Fprintf(os.Stderr, "validation ok (%s)\n", report)
}
