package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"chemequip/internal/models"

	"github.com/dustin/go-humanize"
)

const barWidth = 40

func printEquipment(w io.Writer, items []models.Equipment) {
	if len(items) == 0 {
		fmt.Fprintln(w, "No equipment data uploaded yet")
		return
	}

	fmt.Fprintln(w, "------------------------------------------------------------------------")
	fmt.Fprintf(w, "%-24s  %-14s  %10s  %10s  %11s\n", "Name", "Type", "Flowrate", "Pressure", "Temperature")
	fmt.Fprintln(w, "------------------------------------------------------------------------")
	for _, item := range items {
		fmt.Fprintf(w, "%-24s  %-14s  %10.2f  %10.2f  %11.2f\n",
			item.Name, item.Type, item.Flowrate, item.Pressure, item.Temperature)
	}
	fmt.Fprintln(w, "------------------------------------------------------------------------")
	fmt.Fprintf(w, "%s records\n", humanize.Comma(int64(len(items))))
}

func printSummary(w io.Writer, summary *models.EquipmentSummary) {
	fmt.Fprintf(w, "Total Equipment:     %s\n", humanize.Comma(summary.Total))
	fmt.Fprintf(w, "Average Flowrate:    %.2f\n", summary.AvgFlowrate)
	fmt.Fprintf(w, "Average Pressure:    %.2f\n", summary.AvgPressure)
	fmt.Fprintf(w, "Average Temperature: %.2f\n", summary.AvgTemperature)

	if len(summary.TypeDistribution) == 0 {
		return
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Type distribution:")
	for _, line := range typeBars(summary.TypeDistribution, barWidth) {
		fmt.Fprintln(w, line)
	}
}

// typeBars scales each count against the largest bucket.
func typeBars(dist []models.TypeCount, width int) []string {
	var maxCount int64
	nameWidth := 0
	for _, bucket := range dist {
		if bucket.Count > maxCount {
			maxCount = bucket.Count
		}
		if len(bucket.Type) > nameWidth {
			nameWidth = len(bucket.Type)
		}
	}

	lines := make([]string, 0, len(dist))
	for _, bucket := range dist {
		n := 0
		if maxCount > 0 {
			n = int(bucket.Count * int64(width) / maxCount)
		}
		if n == 0 && bucket.Count > 0 {
			n = 1
		}
		lines = append(lines, fmt.Sprintf("  %-*s | %s %d", nameWidth, bucket.Type, strings.Repeat("#", n), bucket.Count))
	}
	return lines
}

func printHistory(w io.Writer, history []models.UploadHistory, now time.Time) {
	if len(history) == 0 {
		fmt.Fprintln(w, "No uploads yet")
		return
	}

	for _, entry := range history {
		fmt.Fprintf(w, "%-32s  %8s records  %s (%s)\n",
			entry.FileName,
			humanize.Comma(int64(entry.TotalRecords)),
			entry.UploadedAt.Local().Format("2006-01-02 15:04:05"),
			humanize.RelTime(entry.UploadedAt, now, "ago", "from now"))
	}
}
