package service

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sort"
	"time"

	"chemequip/internal/models"
	"chemequip/internal/utils"
)

type ReportService interface {
	WritePDF(ctx context.Context, w io.Writer) (int, error)
	WriteExcel(ctx context.Context, w io.Writer) error
	ExportSnapshot(ctx context.Context) ([]string, error)
}

type reportService struct {
	equipment EquipmentService
	outputDir string
	clock     utils.Clock
}

func NewReportService(equipment EquipmentService, outputDir string, clock utils.Clock) ReportService {
	if outputDir == "" {
		outputDir = "./data/reports"
	}
	if clock == nil {
		clock = utils.RealClock{}
	}

	return &reportService{
		equipment: equipment,
		outputDir: outputDir,
		clock:     clock,
	}
}

// load derives the summary from the listed readings so a report never
// mixes totals and rows from different uploads.
func (s *reportService) load(ctx context.Context) (*models.EquipmentSummary, []models.Equipment, error) {
	items, err := s.equipment.ListEquipment(ctx)
	if err != nil {
		return nil, nil, err
	}
	return summarizeReadings(items), items, nil
}

func summarizeReadings(items []models.Equipment) *models.EquipmentSummary {
	summary := &models.EquipmentSummary{
		Total:            int64(len(items)),
		TypeDistribution: make([]models.TypeCount, 0),
	}
	if len(items) == 0 {
		return summary
	}

	counts := make(map[string]int64)
	var flowrate, pressure, temperature float64
	for _, item := range items {
		flowrate += item.Flowrate
		pressure += item.Pressure
		temperature += item.Temperature
		counts[item.Type]++
	}

	n := float64(len(items))
	summary.AvgFlowrate = flowrate / n
	summary.AvgPressure = pressure / n
	summary.AvgTemperature = temperature / n

	for kind, count := range counts {
		summary.TypeDistribution = append(summary.TypeDistribution, models.TypeCount{Type: kind, Count: count})
	}
	sort.Slice(summary.TypeDistribution, func(i, j int) bool {
		return summary.TypeDistribution[i].Type < summary.TypeDistribution[j].Type
	})

	return summary
}

func (s *reportService) WritePDF(ctx context.Context, w io.Writer) (int, error) {
	summary, items, err := s.load(ctx)
	if err != nil {
		return 0, err
	}

	return utils.WritePDFReport(w, summary, items, utils.PDFOptions{Compress: true})
}

func (s *reportService) WriteExcel(ctx context.Context, w io.Writer) error {
	summary, items, err := s.load(ctx)
	if err != nil {
		return err
	}

	f, err := utils.CreateExcelReport(summary, items)
	if err != nil {
		return fmt.Errorf("failed to create Excel report: %w", err)
	}
	defer f.Close()

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write Excel report: %w", err)
	}
	return nil
}

// ExportSnapshot writes the current PDF and XLSX reports into the output
// directory and returns their paths.
func (s *reportService) ExportSnapshot(ctx context.Context) ([]string, error) {
	if err := os.MkdirAll(s.outputDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create report directory: %w", err)
	}

	timestamp := s.clock.Now().UTC().Format("20060102_150405")
	base := filepath.Join(s.outputDir, "equipment_report_"+timestamp)

	pdfPath := base + ".pdf"
	if err := writeFile(pdfPath, func(w io.Writer) error {
		_, err := s.WritePDF(ctx, w)
		return err
	}); err != nil {
		return nil, err
	}

	xlsxPath := base + ".xlsx"
	if err := writeFile(xlsxPath, func(w io.Writer) error {
		return s.WriteExcel(ctx, w)
	}); err != nil {
		return nil, err
	}

	log.Printf("Report snapshot written: %s.{pdf,xlsx}", base)
	return []string{pdfPath, xlsxPath}, nil
}

func writeFile(path string, write func(w io.Writer) error) (err error) {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer func() {
		if cerr := file.Close(); cerr != nil && err == nil {
			err = cerr
		}
		if err != nil {
			os.Remove(path)
		}
	}()

	start := time.Now()
	if err := write(file); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	log.Printf("Wrote %s in %v", filepath.Base(path), time.Since(start))
	return nil
}
