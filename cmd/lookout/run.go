package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/awynne/lookout/internal/jobs"
	"github.com/awynne/lookout/internal/logging"
)

func runJob() {
	fs := flag.NewFlagSet("run", flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: lookout run <job>")
		fmt.Fprintln(os.Stderr, "Jobs: fetch_sources, normalize, dedupe_and_cluster, summarize_and_analyze, alerts, full_pipeline")
	}
	fs.Parse(os.Args[1:])

	if fs.NArg() < 1 {
		fs.Usage()
		os.Exit(1)
	}
	name := fs.Arg(0)

	snap, st := setup()
	defer st.Close()
	defer logging.Close()

	count, err := jobs.New(st, snap).Run(context.Background(), name)
	if err != nil {
		fmt.Fprintf(os.Stderr, "lookout: job %s failed: %v\n", name, err)
		os.Exit(1)
	}
	fmt.Printf("%s: %d items processed\n", name, count)
}
