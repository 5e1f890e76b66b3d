package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/awynne/lookout/internal/model"
	"github.com/awynne/lookout/internal/store"
)

func runStories() {
	fs := flag.NewFlagSet("stories", flag.ExitOnError)
	priority := fs.String("priority", "", "Filter by priority (P0, P1, P2)")
	competitor := fs.String("competitor", "", "Filter by competitor name")
	sinceHours := fs.Int("since", 0, "Only stories analyzed in the last N hours")
	limit := fs.Int("limit", 25, "Maximum stories to show")
	fs.Parse(os.Args[1:])

	_, st := setup()
	defer st.Close()

	filter := store.SummaryFilter{
		Priority:   model.Priority(*priority),
		Competitor: *competitor,
		Limit:      *limit,
	}
	if *sinceHours > 0 {
		filter.Since = time.Now().Add(-time.Duration(*sinceHours) * time.Hour)
	}

	sums, err := st.ListSummaries(context.Background(), filter)
	if err != nil {
		fmt.Fprintf(os.Stderr, "lookout: %v\n", err)
		os.Exit(1)
	}
	if len(sums) == 0 {
		fmt.Println("No stories found.")
		return
	}

	for _, sum := range sums {
		style := dimStyle
		switch sum.Priority {
		case model.PriorityP0:
			style = p0Style
		case model.PriorityP1:
			style = p1Style
		}

		competitor := sum.Competitor
		if competitor == "" {
			competitor = "(unknown)"
		}

		fmt.Printf("%s  %s  %s  confidence %d/5  %s\n",
			style.Render(string(sum.Priority)),
			competitor,
			sum.Verification,
			sum.Confidence,
			sum.CreatedAt.Format("2006-01-02"))
		fmt.Printf("   %s\n", sum.Summary)
		if len(sum.Capabilities) > 0 {
			labels := make([]string, len(sum.Capabilities))
			for i, c := range sum.Capabilities {
				labels[i] = c.Label()
			}
			fmt.Printf("   %s\n", dimStyle.Render(strings.Join(labels, ", ")))
		}
		fmt.Println()
	}
}
