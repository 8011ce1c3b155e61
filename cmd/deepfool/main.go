// Package main provides the deepfool CLI.
//
// Usage:
//
//	deepfool attack -config attack.yaml [-index N] [-region x1,y1,x2,y2] [-max-iter N] [-out result.json]
//	deepfool eval -config eval.yaml [-workers N] [-metrics out.prom] [-out report.json]
//	deepfool version
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
)

const version = "v0.1.0-dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		usage(stderr)
		return 2
	}

	var err error
	switch args[0] {
	case "version":
		fmt.Fprintf(stdout, "deepfool %s\n", version)
		return 0
	case "attack":
		err = runAttack(ctx, args[1:], stdout, stderr)
	case "eval":
		err = runEval(ctx, args[1:], stdout, stderr)
	case "help", "-h", "-help", "--help":
		usage(stdout)
		return 0
	default:
		fmt.Fprintf(stderr, "unknown command %q\n\n", args[0])
		usage(stderr)
		return 2
	}
	if err != nil {
		fmt.Fprintf(stderr, "deepfool %s: %v\n", args[0], err)
		return 1
	}
	return 0
}

func usage(w io.Writer) {
	fmt.Fprintf(w, "deepfool %s - minimal adversarial perturbations\n\n", version)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  attack     Attack one image and write the result as JSON")
	fmt.Fprintln(w, "  eval       Attack a batch of images and report robustness")
	fmt.Fprintln(w, "  version    Show version")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Run 'deepfool <command> -h' for flags.")
}
