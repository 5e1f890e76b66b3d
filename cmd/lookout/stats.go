package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"

	"github.com/awynne/lookout/internal/model"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	labelStyle  = lipgloss.NewStyle().Width(22)
	p0Style     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))
	p1Style     = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	dimStyle    = lipgloss.NewStyle().Faint(true)
)

func runStats() {
	fs := flag.NewFlagSet("stats", flag.ExitOnError)
	jobRuns := fs.Int("runs", 10, "Number of recent job runs to show")
	fs.Parse(os.Args[1:])

	_, st := setup()
	defer st.Close()

	ctx := context.Background()

	items, _ := st.ItemCount(ctx)
	unprocessed, _ := st.UnprocessedCount(ctx)
	clusters, _ := st.ClusterCount(ctx)
	links, _ := st.LinkCount(ctx)
	summaries, _ := st.SummaryCount(ctx)
	notifications, _ := st.NotificationCount(ctx)

	fmt.Println(headerStyle.Render("Pipeline"))
	fmt.Printf("%s %d\n", labelStyle.Render("Raw items:"), items)
	fmt.Printf("%s %d\n", labelStyle.Render("Awaiting clustering:"), unprocessed)
	fmt.Printf("%s %d\n", labelStyle.Render("Story clusters:"), clusters)
	fmt.Printf("%s %d\n", labelStyle.Render("Item links:"), links)
	fmt.Printf("%s %d\n", labelStyle.Render("Summaries:"), summaries)
	fmt.Printf("%s %d\n", labelStyle.Render("Notifications:"), notifications)

	byPriority, err := st.SummaryCountByPriority(ctx)
	if err == nil && len(byPriority) > 0 {
		fmt.Println()
		fmt.Println(headerStyle.Render("Summaries by priority"))
		fmt.Printf("%s %d\n", labelStyle.Render(p0Style.Render("P0:")), byPriority[model.PriorityP0])
		fmt.Printf("%s %d\n", labelStyle.Render(p1Style.Render("P1:")), byPriority[model.PriorityP1])
		fmt.Printf("%s %d\n", labelStyle.Render("P2:"), byPriority[model.PriorityP2])
	}

	runs, err := st.RecentJobRuns(ctx, *jobRuns)
	if err != nil || len(runs) == 0 {
		return
	}

	fmt.Println()
	fmt.Println(headerStyle.Render("Recent job runs"))
	for _, r := range runs {
		line := fmt.Sprintf("%-24s %-10s %5d items  %s",
			r.Name, r.Status, r.ItemCount, r.StartedAt.Format("2006-01-02 15:04:05"))
		if r.Status == model.JobFailed {
			line += "  " + dimStyle.Render(r.Error)
		}
		fmt.Println(line)
	}
}
