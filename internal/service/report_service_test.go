package service

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"strings"
	"testing"
	"time"
)

type fixedClock struct{ at time.Time }

func (c fixedClock) Now() time.Time { return c.at }

func TestReportServiceWritePDF(t *testing.T) {
	ctx := context.Background()
	equipment := newTestService(t, nil, nil)

	var csv strings.Builder
	csv.WriteString("name,type,flowrate,pressure,temperature\n")
	for i := 0; i < 60; i++ {
		fmt.Fprintf(&csv, "Unit%d,Pump,%d,1,2\n", i, i)
	}
	if _, err := equipment.Upload(ctx, "sixty.csv", strings.NewReader(csv.String())); err != nil {
		t.Fatalf("upload: %v", err)
	}

	var buf bytes.Buffer
	pages, err := NewReportService(equipment, t.TempDir(), nil).WritePDF(ctx, &buf)
	if err != nil {
		t.Fatalf("pdf: %v", err)
	}
	if pages != 2 {
		t.Fatalf("expected 2 pages, got %d", pages)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")) {
		t.Fatal("expected PDF output")
	}
}

func TestReportServiceExportSnapshot(t *testing.T) {
	ctx := context.Background()
	equipment := newTestService(t, nil, nil)
	if _, err := equipment.Upload(ctx, "plant.csv", strings.NewReader(scenarioCSV)); err != nil {
		t.Fatalf("upload: %v", err)
	}

	dir := t.TempDir()
	clock := fixedClock{at: time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC)}
	paths, err := NewReportService(equipment, dir, clock).ExportSnapshot(ctx)
	if err != nil {
		t.Fatalf("export: %v", err)
	}

	if len(paths) != 2 {
		t.Fatalf("expected pdf and xlsx, got %v", paths)
	}
	for _, path := range paths {
		if !strings.Contains(path, "equipment_report_20240506_070809") {
			t.Fatalf("unexpected file name %s", path)
		}
		info, err := os.Stat(path)
		if err != nil {
			t.Fatalf("stat %s: %v", path, err)
		}
		if info.Size() == 0 {
			t.Fatalf("%s is empty", path)
		}
	}
}
