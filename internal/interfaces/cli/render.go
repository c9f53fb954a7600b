package cli

import (
	"fmt"
	"io"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/lite-lake/peerdns/internal/application/orchestrator"
	"github.com/lite-lake/peerdns/internal/domain/entity"
	"github.com/lite-lake/peerdns/internal/domain/service"
)

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(MutedStyle).
		Headers(headers...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return HeaderStyle.Padding(0, 1)
			}
			return lipgloss.NewStyle().Padding(0, 1)
		})
}

// renderProbes prints every probe result, reachable peers first in rank order.
func renderProbes(w io.Writer, report *orchestrator.Report) {
	t := newTable("RANK", "PEER", "LATENCY", "ATTEMPTS", "STATUS")

	rank := make(map[string]int, len(report.Ranked))
	for i, r := range report.Ranked {
		rank[r.Peer.Address()] = i + 1
		t.Row(strconv.Itoa(i+1), r.Peer.String(), fmt.Sprintf("%.2fms", r.Latency),
			fmt.Sprintf("%d/%d", r.Successes, r.Attempts), SuccessStyle.Render("selected"))
	}
	for _, r := range report.Probes {
		if _, ok := rank[r.Peer.Address()]; ok {
			continue
		}
		status, latency := ChangeDeleteStyle.Render("unreachable"), "-"
		if r.Success {
			status, latency = MutedStyle.Render("reachable"), fmt.Sprintf("%.2fms", r.Latency)
		}
		t.Row("-", r.Peer.String(), latency, fmt.Sprintf("%d/%d", r.Successes, r.Attempts), status)
	}

	fmt.Fprintln(w, TitleStyle.Render(fmt.Sprintf("Probed %d peers, %d selected", len(report.Probes), len(report.Ranked))))
	fmt.Fprintln(w, t.String())
}

// renderPlan prints the zone the next sync would publish.
func renderPlan(w io.Writer, report *orchestrator.Report) error {
	zone, err := service.RenderZone(report.Plan)
	if err != nil {
		return err
	}

	renderProbes(w, report)
	fmt.Fprintln(w)
	fmt.Fprintln(w, TitleStyle.Render(fmt.Sprintf("Planned %s records", report.Plan.Strategy())))
	if report.Plan.Len() == 0 {
		fmt.Fprintln(w, MutedStyle.Render("(empty)"))
		return nil
	}
	fmt.Fprintln(w, ZoneStyle.Render(zone))
	return nil
}

func renderSummary(w io.Writer, report *orchestrator.Report, dryRun bool) {
	sum := report.Summary

	title := "Sync Result"
	if dryRun {
		title += " (dry-run, nothing was written)"
	}
	fmt.Fprintln(w, TitleStyle.Render(title))
	fmt.Fprintln(w, "================")

	for _, ch := range sum.Changes {
		rec := ch.Record()
		line := fmt.Sprintf("%s %-4s %s %s", changePrefix(ch.Type()), rec.Type, rec.Name, rec.Value)
		if ch.Failed() {
			fmt.Fprintf(w, "%s %s\n", ChangeDeleteStyle.Render("✗"), line)
			fmt.Fprintf(w, "    %s\n", ErrorStyle.Render(ch.Err().Error()))
			continue
		}
		fmt.Fprintln(w, changeStyle(ch.Type()).Render("✓ "+line))
	}

	if report.Snapshot != nil {
		fmt.Fprintln(w, MutedStyle.Render(fmt.Sprintf("snapshot %s (%d records), pruned %d",
			report.Snapshot.ID, len(report.Snapshot.Records), report.Pruned)))
	}
	for _, warn := range report.Warnings {
		fmt.Fprintln(w, WarningStyle.Render("⚠ "+warn))
	}

	style := SuccessStyle
	if sum.HasFailures() {
		style = ErrorStyle
	}
	fmt.Fprintln(w, style.Render(sum.String()))
}

func renderSnapshots(w io.Writer, infos []entity.SnapshotInfo) {
	if len(infos) == 0 {
		fmt.Fprintln(w, "No snapshots found.")
		return
	}
	t := newTable("ID", "CREATED", "RECORD SET", "RECORDS")
	for _, info := range infos {
		t.Row(info.ID, info.CreatedAt.Format("2006-01-02 15:04:05Z07:00"), info.Key.String(), strconv.Itoa(info.Records))
	}
	fmt.Fprintln(w, t.String())
}
