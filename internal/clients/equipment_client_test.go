package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func newFakeAPI(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	requireToken := func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get("Authorization") != "Bearer good-token" {
				w.WriteHeader(http.StatusUnauthorized)
				io.WriteString(w, `{"error":"Authentication credentials were not provided."}`)
				return
			}
			next(w, r)
		}
	}

	mux.HandleFunc("/api/login/", func(w http.ResponseWriter, r *http.Request) {
		var req map[string]string
		json.NewDecoder(r.Body).Decode(&req)
		if req["username"] != "admin" || req["password"] != "pw" {
			w.WriteHeader(http.StatusUnauthorized)
			io.WriteString(w, `{"error":"No active account found with the given credentials"}`)
			return
		}
		io.WriteString(w, `{"access":"good-token","refresh":"refresh-token"}`)
	})
	mux.HandleFunc("/api/token/refresh/", func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"access":"good-token"}`)
	})
	mux.HandleFunc("/api/upload/", requireToken(func(w http.ResponseWriter, r *http.Request) {
		file, header, err := r.FormFile("file")
		if err != nil {
			w.WriteHeader(http.StatusBadRequest)
			io.WriteString(w, `{"error":"No file uploaded"}`)
			return
		}
		defer file.Close()
		data, _ := io.ReadAll(file)
		if header.Filename != "plant.csv" || !strings.HasPrefix(string(data), "name,type") {
			w.WriteHeader(http.StatusBadRequest)
			io.WriteString(w, `{"error":"Invalid CSV file: unexpected"}`)
			return
		}
		io.WriteString(w, `{"message":"CSV uploaded successfully","total_records":1}`)
	}))
	mux.HandleFunc("/api/equipment/", requireToken(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `[{"id":1,"name":"P1","type":"Pump","flowrate":10,"pressure":5,"temperature":30}]`)
	}))
	mux.HandleFunc("/api/summary/", requireToken(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"total":1,"avg_flowrate":10,"avg_pressure":5,"avg_temperature":30,"type_distribution":[{"type":"Pump","count":1}]}`)
	}))
	mux.HandleFunc("/api/history/", requireToken(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `[{"id":3,"file_name":"plant.csv","total_records":1,"uploaded_at":"2024-01-01T00:00:00Z"}]`)
	}))
	mux.HandleFunc("/api/report/pdf/", requireToken(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/pdf")
		io.WriteString(w, "%PDF-1.3 fake")
	}))

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func TestEquipmentClientRoundTrip(t *testing.T) {
	server := newFakeAPI(t)
	ctx := context.Background()

	pair, err := NewEquipmentClient(server.URL, "").Login(ctx, "admin", "pw")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if pair.Access != "good-token" || pair.Refresh != "refresh-token" {
		t.Fatalf("unexpected tokens %+v", pair)
	}

	client := NewEquipmentClient(server.URL+"/", pair.Access)

	result, err := client.Upload(ctx, "plant.csv", strings.NewReader("name,type\nP1,Pump\n"))
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if result.TotalRecords != 1 {
		t.Fatalf("unexpected upload result %+v", result)
	}

	items, err := client.ListEquipment(ctx)
	if err != nil || len(items) != 1 || items[0].Name != "P1" {
		t.Fatalf("list: %v %+v", err, items)
	}

	summary, err := client.GetSummary(ctx)
	if err != nil || summary.Total != 1 || summary.TypeDistribution[0].Type != "Pump" {
		t.Fatalf("summary: %v %+v", err, summary)
	}

	history, err := client.GetHistory(ctx)
	if err != nil || len(history) != 1 || history[0].FileName != "plant.csv" {
		t.Fatalf("history: %v %+v", err, history)
	}

	var report bytes.Buffer
	n, err := client.DownloadReport(ctx, "pdf", &report)
	if err != nil || n != int64(report.Len()) || !strings.HasPrefix(report.String(), "%PDF") {
		t.Fatalf("report: %v %d %q", err, n, report.String())
	}

	access, err := client.RefreshAccess(ctx, pair.Refresh)
	if err != nil || access != "good-token" {
		t.Fatalf("refresh: %v %q", err, access)
	}
}

func TestEquipmentClientSurfacesAPIError(t *testing.T) {
	server := newFakeAPI(t)

	_, err := NewEquipmentClient(server.URL, "").ListEquipment(context.Background())
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.StatusCode != http.StatusUnauthorized || apiErr.Message != "Authentication credentials were not provided." {
		t.Fatalf("unexpected API error %+v", apiErr)
	}

	_, err = NewEquipmentClient(server.URL, "good-token").DownloadReport(context.Background(), "docx", io.Discard)
	if err == nil {
		t.Fatal("expected unsupported format error")
	}
}

func TestConfigLoadSave(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "equipmentctl.yaml")

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("load missing: %v", err)
	}
	if cfg.ServerURL != DefaultServerURL {
		t.Fatalf("expected default server url, got %q", cfg.ServerURL)
	}

	cfg.AccessToken = "a"
	cfg.RefreshToken = "r"
	cfg.Username = "admin"
	if err := SaveConfig(path, cfg); err != nil {
		t.Fatalf("save: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if info.Mode().Perm() != 0600 {
		t.Fatalf("expected 0600 permissions, got %v", info.Mode().Perm())
	}

	loaded, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if *loaded != *cfg {
		t.Fatalf("round trip mismatch: %+v vs %+v", loaded, cfg)
	}
}
