package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"chemequip/internal/models"
	"chemequip/internal/repository/mocks"

	"go.uber.org/mock/gomock"
)

const scenarioCSV = "name,type,flowrate,pressure,temperature\n" +
	"Pump1,Pump,10,20,30\n" +
	"Tank1,Tank,0,5,25\n"

func TestUploadThenSummary(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, nil, nil)

	entry, err := svc.Upload(ctx, "plant.csv", strings.NewReader(scenarioCSV))
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if entry.TotalRecords != 2 || entry.FileName != "plant.csv" {
		t.Fatalf("unexpected history entry: %+v", entry)
	}

	summary, err := svc.GetSummary(ctx)
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if summary.Total != 2 || summary.AvgFlowrate != 5 || summary.AvgPressure != 12.5 || summary.AvgTemperature != 27.5 {
		t.Fatalf("unexpected summary: %+v", summary)
	}
	if len(summary.TypeDistribution) != 2 ||
		summary.TypeDistribution[0] != (models.TypeCount{Type: "Pump", Count: 1}) ||
		summary.TypeDistribution[1] != (models.TypeCount{Type: "Tank", Count: 1}) {
		t.Fatalf("unexpected distribution: %+v", summary.TypeDistribution)
	}
}

func TestUploadReplacesReadings(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, nil, nil)

	if _, err := svc.Upload(ctx, "a.csv", strings.NewReader(scenarioCSV)); err != nil {
		t.Fatalf("upload: %v", err)
	}
	second := "name,type,flowrate,pressure,temperature\nMixer1,Mixer,1,bad,3\n"
	if _, err := svc.Upload(ctx, "b.csv", strings.NewReader(second)); err != nil {
		t.Fatalf("upload: %v", err)
	}

	items, err := svc.ListEquipment(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(items) != 1 || items[0].Name != "Mixer1" || items[0].Pressure != 0 {
		t.Fatalf("expected only Mixer1 with pressure 0, got %+v", items)
	}
}

func TestUploadKeepsFiveNewestHistoryEntries(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, nil, nil)

	for i := 1; i <= 6; i++ {
		if _, err := svc.Upload(ctx, fmt.Sprintf("upload-%d.csv", i), strings.NewReader(scenarioCSV)); err != nil {
			t.Fatalf("upload %d: %v", i, err)
		}
	}

	history, err := svc.GetHistory(ctx)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(history) != HistoryLimit {
		t.Fatalf("expected %d entries, got %d", HistoryLimit, len(history))
	}
	for i, entry := range history {
		want := fmt.Sprintf("upload-%d.csv", 6-i)
		if entry.FileName != want {
			t.Fatalf("entry %d: expected %s, got %s", i, want, entry.FileName)
		}
	}
}

func TestUploadValidationLeavesStateUntouched(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, nil, nil)

	if _, err := svc.Upload(ctx, "good.csv", strings.NewReader(scenarioCSV)); err != nil {
		t.Fatalf("upload: %v", err)
	}

	_, err := svc.Upload(ctx, "", nil)
	var vErr *ValidationError
	if !errors.As(err, &vErr) || vErr.Kind != MissingFile {
		t.Fatalf("expected MissingFile, got %v", err)
	}

	_, err = svc.Upload(ctx, "bad.csv", strings.NewReader("name,type\n\"broken\n"))
	if !errors.As(err, &vErr) || vErr.Kind != MalformedInput {
		t.Fatalf("expected MalformedInput, got %v", err)
	}

	items, err := svc.ListEquipment(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	history, err := svc.GetHistory(ctx)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(items) != 2 || len(history) != 1 {
		t.Fatalf("rejected uploads must not write: %d items, %d history", len(items), len(history))
	}
}

func TestUploadNotifiesAfterCommit(t *testing.T) {
	notifier := &recordingNotifier{}
	svc := newTestService(t, nil, notifier)

	if _, err := svc.Upload(context.Background(), "plant.csv", strings.NewReader(scenarioCSV)); err != nil {
		t.Fatalf("upload: %v", err)
	}

	if len(notifier.entries) != 1 {
		t.Fatalf("expected one event, got %d", len(notifier.entries))
	}
	if got := string(notifier.entries[0].Columns); got != `["name","type","flowrate","pressure","temperature"]` {
		t.Fatalf("unexpected columns %s", got)
	}
}

func TestSummaryEmpty(t *testing.T) {
	summary, err := newTestService(t, nil, nil).GetSummary(context.Background())
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if summary.Total != 0 || summary.AvgFlowrate != 0 || summary.AvgPressure != 0 || summary.AvgTemperature != 0 {
		t.Fatalf("expected zeros, got %+v", summary)
	}
}

func TestSummaryServedFromCache(t *testing.T) {
	ctrl := gomock.NewController(t)
	cache := mocks.NewMockCacheRepository(ctrl)
	svc := newTestService(t, cache, nil)

	cached := models.EquipmentSummary{Total: 42, AvgFlowrate: 1}
	cache.EXPECT().
		GetJSON(gomock.Any(), summaryCacheKey(0), gomock.Any()).
		DoAndReturn(func(_ context.Context, _ string, dest interface{}) (bool, error) {
			*dest.(*models.EquipmentSummary) = cached
			return true, nil
		})

	summary, err := svc.GetSummary(context.Background())
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if summary.Total != 42 {
		t.Fatalf("expected cached summary, got %+v", summary)
	}
}

func TestSummaryCacheMissPopulatesAndUploadInvalidates(t *testing.T) {
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	cache := mocks.NewMockCacheRepository(ctrl)
	svc := newTestService(t, cache, nil)

	gomock.InOrder(
		cache.EXPECT().GetJSON(gomock.Any(), summaryCacheKey(0), gomock.Any()).Return(false, nil),
		cache.EXPECT().SetJSON(gomock.Any(), summaryCacheKey(0), gomock.Any(), 5*time.Minute).Return(nil),
		cache.EXPECT().Delete(gomock.Any(), summaryCacheKey(0), historyCacheKey(0)).Return(nil),
		cache.EXPECT().GetJSON(gomock.Any(), summaryCacheKey(1), gomock.Any()).Return(false, nil),
		cache.EXPECT().SetJSON(gomock.Any(), summaryCacheKey(1), gomock.Any(), 5*time.Minute).Return(nil),
	)

	if _, err := svc.GetSummary(ctx); err != nil {
		t.Fatalf("summary: %v", err)
	}
	if _, err := svc.Upload(ctx, "plant.csv", strings.NewReader(scenarioCSV)); err != nil {
		t.Fatalf("upload: %v", err)
	}

	summary, err := svc.GetSummary(ctx)
	if err != nil {
		t.Fatalf("summary after upload: %v", err)
	}
	if summary.Total != 2 {
		t.Fatalf("expected fresh total 2 after upload, got %d", summary.Total)
	}
}

func TestCacheErrorsDoNotFailReads(t *testing.T) {
	ctrl := gomock.NewController(t)
	cache := mocks.NewMockCacheRepository(ctrl)
	svc := newTestService(t, cache, nil)

	cache.EXPECT().GetJSON(gomock.Any(), historyCacheKey(0), gomock.Any()).Return(false, errors.New("redis down"))
	cache.EXPECT().SetJSON(gomock.Any(), historyCacheKey(0), gomock.Any(), gomock.Any()).Return(errors.New("redis down"))

	history, err := svc.GetHistory(context.Background())
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(history) != 0 {
		t.Fatalf("expected empty history, got %+v", history)
	}
}
