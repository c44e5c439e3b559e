package main

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"chemequip/internal/models"
)

func TestTypeBarsScaleToLargestBucket(t *testing.T) {
	lines := typeBars([]models.TypeCount{
		{Type: "Pump", Count: 4},
		{Type: "Reactor", Count: 2},
		{Type: "Valve", Count: 0},
	}, 8)

	want := []string{
		"  Pump    | ######## 4",
		"  Reactor | #### 2",
		"  Valve   |  0",
	}
	if len(lines) != len(want) {
		t.Fatalf("expected %d lines, got %d", len(want), len(lines))
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Fatalf("line %d: expected %q, got %q", i, want[i], lines[i])
		}
	}
}

func TestTypeBarsKeepSmallBucketsVisible(t *testing.T) {
	lines := typeBars([]models.TypeCount{{Type: "A", Count: 1000}, {Type: "B", Count: 1}}, 10)
	if !strings.Contains(lines[1], "| # 1") {
		t.Fatalf("expected a single-mark bar, got %q", lines[1])
	}
}

func TestPrintSummaryAndHistory(t *testing.T) {
	var out bytes.Buffer
	printSummary(&out, &models.EquipmentSummary{
		Total:            1200,
		AvgFlowrate:      5,
		AvgPressure:      12.5,
		AvgTemperature:   27.5,
		TypeDistribution: []models.TypeCount{{Type: "Pump", Count: 1200}},
	})
	for _, want := range []string{"Total Equipment:     1,200", "Average Pressure:    12.50", "Type distribution:"} {
		if !strings.Contains(out.String(), want) {
			t.Fatalf("summary output missing %q:\n%s", want, out.String())
		}
	}

	out.Reset()
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	printHistory(&out, []models.UploadHistory{
		{FileName: "plant.csv", TotalRecords: 60, UploadedAt: now.Add(-2 * time.Hour)},
	}, now)
	if !strings.Contains(out.String(), "plant.csv") || !strings.Contains(out.String(), "2 hours ago") {
		t.Fatalf("unexpected history output %q", out.String())
	}

	out.Reset()
	printEquipment(&out, nil)
	if strings.TrimSpace(out.String()) != "No equipment data uploaded yet" {
		t.Fatalf("unexpected empty list output %q", out.String())
	}
}
