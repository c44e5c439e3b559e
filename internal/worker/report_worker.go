package worker

import (
	"context"
	"log"
	"sync"
	"time"

	"chemequip/internal/service"
)

// ReportWorker periodically writes PDF and XLSX snapshots of the current readings.
type ReportWorker struct {
	service   service.ReportService
	interval  time.Duration
	stopChan  chan struct{}
	mu        sync.Mutex
	isRunning bool
	done      chan struct{}
}

func NewReportWorker(service service.ReportService, interval time.Duration) *ReportWorker {
	if interval <= 0 {
		interval = time.Hour
	}
	return &ReportWorker{
		service:  service,
		interval: interval,
	}
}

func (w *ReportWorker) Start() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.isRunning {
		return
	}

	w.stopChan = make(chan struct{})
	w.done = make(chan struct{})
	w.isRunning = true
	log.Printf("Report Worker started with interval %v", w.interval)

	go w.run(w.stopChan, w.done)
}

func (w *ReportWorker) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.isRunning {
		return
	}

	close(w.stopChan)
	<-w.done
	w.isRunning = false
	log.Println("Report Worker stopped")
}

func (w *ReportWorker) run(stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.exportSnapshot()

	for {
		select {
		case <-ticker.C:
			w.exportSnapshot()
		case <-stop:
			return
		}
	}
}

func (w *ReportWorker) exportSnapshot() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	paths, err := w.service.ExportSnapshot(ctx)
	if err != nil {
		log.Printf("Report Worker error: %v", err)
		return
	}
	log.Printf("Report Worker: wrote %v", paths)
}
