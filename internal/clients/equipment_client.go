package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"chemequip/internal/auth"
	"chemequip/internal/models"
)

type EquipmentClient interface {
	Login(ctx context.Context, username, password string) (*auth.TokenPair, error)
	RefreshAccess(ctx context.Context, refreshToken string) (string, error)
	Upload(ctx context.Context, fileName string, file io.Reader) (*UploadResult, error)
	ListEquipment(ctx context.Context) ([]models.Equipment, error)
	GetSummary(ctx context.Context) (*models.EquipmentSummary, error)
	GetHistory(ctx context.Context) ([]models.UploadHistory, error)
	DownloadReport(ctx context.Context, format string, w io.Writer) (int64, error)
}

type UploadResult struct {
	Message      string `json:"message"`
	TotalRecords int    `json:"total_records"`
}

// APIError carries a non-2xx response and the server's "error" message.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("API returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("API returned status %d: %s", e.StatusCode, e.Message)
}

type equipmentClient struct {
	baseURL     string
	accessToken string
	httpClient  *http.Client
}

func NewEquipmentClient(baseURL, accessToken string) EquipmentClient {
	return &equipmentClient{
		baseURL:     strings.TrimRight(baseURL, "/"),
		accessToken: accessToken,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

func (c *equipmentClient) Login(ctx context.Context, username, password string) (*auth.TokenPair, error) {
	var pair auth.TokenPair
	body := map[string]string{"username": username, "password": password}
	if err := c.postJSON(ctx, "/api/login/", body, &pair); err != nil {
		return nil, err
	}
	return &pair, nil
}

func (c *equipmentClient) RefreshAccess(ctx context.Context, refreshToken string) (string, error) {
	var resp struct {
		Access string `json:"access"`
	}
	if err := c.postJSON(ctx, "/api/token/refresh/", map[string]string{"refresh": refreshToken}, &resp); err != nil {
		return "", err
	}
	return resp.Access, nil
}

func (c *equipmentClient) Upload(ctx context.Context, fileName string, file io.Reader) (*UploadResult, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	part, err := writer.CreateFormFile("file", fileName)
	if err != nil {
		return nil, fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", fileName, err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to finish multipart body: %w", err)
	}

	req, err := c.newRequest(ctx, http.MethodPost, "/api/upload/", &body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	var result UploadResult
	if err := c.doJSON(req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *equipmentClient) ListEquipment(ctx context.Context) ([]models.Equipment, error) {
	var items []models.Equipment
	if err := c.getJSON(ctx, "/api/equipment/", &items); err != nil {
		return nil, err
	}
	return items, nil
}

func (c *equipmentClient) GetSummary(ctx context.Context) (*models.EquipmentSummary, error) {
	var summary models.EquipmentSummary
	if err := c.getJSON(ctx, "/api/summary/", &summary); err != nil {
		return nil, err
	}
	return &summary, nil
}

func (c *equipmentClient) GetHistory(ctx context.Context) ([]models.UploadHistory, error) {
	var history []models.UploadHistory
	if err := c.getJSON(ctx, "/api/history/", &history); err != nil {
		return nil, err
	}
	return history, nil
}

// DownloadReport streams the pdf or xlsx report into w and returns the byte count.
func (c *equipmentClient) DownloadReport(ctx context.Context, format string, w io.Writer) (int64, error) {
	if format != "pdf" && format != "xlsx" {
		return 0, fmt.Errorf("unsupported report format %q (want pdf or xlsx)", format)
	}

	req, err := c.newRequest(ctx, http.MethodGet, "/api/report/"+format+"/", nil)
	if err != nil {
		return 0, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, decodeAPIError(resp)
	}

	n, err := io.Copy(w, resp.Body)
	if err != nil {
		return n, fmt.Errorf("failed to download report: %w", err)
	}
	return n, nil
}

func (c *equipmentClient) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", "equipmentctl/1.0")
	if c.accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.accessToken)
	}
	return req, nil
}

func (c *equipmentClient) getJSON(ctx context.Context, path string, dest interface{}) error {
	req, err := c.newRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return err
	}
	return c.doJSON(req, dest)
}

func (c *equipmentClient) postJSON(ctx context.Context, path string, payload, dest interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := c.newRequest(ctx, http.MethodPost, path, bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.doJSON(req, dest)
}

func (c *equipmentClient) doJSON(req *http.Request, dest interface{}) error {
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeAPIError(resp)
	}

	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return fmt.Errorf("failed to decode JSON: %w", err)
	}
	return nil
}

func decodeAPIError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))

	var payload struct {
		Error string `json:"error"`
	}
	message := strings.TrimSpace(string(body))
	if json.Unmarshal(body, &payload) == nil && payload.Error != "" {
		message = payload.Error
	}

	return &APIError{StatusCode: resp.StatusCode, Message: message}
}
