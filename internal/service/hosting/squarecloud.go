package hosting

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/hostbr/deploybot/internal/domain"
)

const squareCloudBaseURL = "https://api.squarecloud.app/v2"

// SquareCloud is the real hosting provider client.
type SquareCloud struct {
	baseURL string
	apiKey  string
	client  *http.Client
	logger  *slog.Logger
}

// NewSquareCloud returns a client authenticated with the given API key.
func NewSquareCloud(apiKey string, logger *slog.Logger) *SquareCloud {
	return &SquareCloud{
		baseURL: squareCloudBaseURL,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: 60 * time.Second},
		logger:  logger,
	}
}

type scEnvelope struct {
	Status   string          `json:"status"`
	Code     string          `json:"code"`
	Response json.RawMessage `json:"response"`
}

type scApp struct {
	ID          string `json:"id"`
	Tag         string `json:"tag"`
	Description string `json:"description"`
	URL         string `json:"url"`
}

type scStatus struct {
	Status  string `json:"status"`
	Running bool   `json:"running"`
	Uptime  int64  `json:"uptime"`
	Usage   struct {
		RAM string `json:"ram"`
		CPU string `json:"cpu"`
	} `json:"usage"`
}

// CreateApp uploads the artifact and manifest as a multipart request.
func (s *SquareCloud) CreateApp(ctx context.Context, artifactPath, manifestPath string) (domain.Application, error) {
	pr, pw := io.Pipe()
	form := multipart.NewWriter(pw)
	go func() {
		err := writeUploadForm(form, artifactPath, manifestPath)
		if cerr := form.Close(); err == nil {
			err = cerr
		}
		pw.CloseWithError(err)
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/apps", pr)
	if err != nil {
		return domain.Application{}, fmt.Errorf("build upload request: %w", err)
	}
	req.Header.Set("Authorization", s.apiKey)
	req.Header.Set("Content-Type", form.FormDataContentType())

	var app scApp
	if err := s.send(req, &app); err != nil {
		return domain.Application{}, err
	}
	if app.ID == "" {
		return domain.Application{}, errors.New("provider returned empty application")
	}

	url := app.URL
	if url == "" {
		url = fmt.Sprintf("https://%s.squarecloud.app", app.ID)
	}
	s.logger.Info("application created", "app_id", app.ID, "tag", app.Tag)
	return domain.Application{
		ID:          app.ID,
		Name:        app.Tag,
		URL:         url,
		Tag:         app.Tag,
		Description: app.Description,
	}, nil
}

func writeUploadForm(form *multipart.Writer, artifactPath, manifestPath string) error {
	if err := attachFile(form, "file", artifactPath); err != nil {
		return err
	}
	return attachFile(form, "config", manifestPath)
}

func attachFile(form *multipart.Writer, field, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", field, err)
	}
	defer f.Close()
	part, err := form.CreateFormFile(field, strings.TrimPrefix(path, "/"))
	if err != nil {
		return fmt.Errorf("create %s part: %w", field, err)
	}
	if _, err := io.Copy(part, f); err != nil {
		return fmt.Errorf("copy %s: %w", field, err)
	}
	return nil
}

// AppStatus fetches a resource snapshot for an application.
func (s *SquareCloud) AppStatus(ctx context.Context, appID string) (domain.AppStatus, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/apps/"+appID+"/status", nil)
	if err != nil {
		return domain.AppStatus{}, fmt.Errorf("build status request: %w", err)
	}
	req.Header.Set("Authorization", s.apiKey)

	var status scStatus
	if err := s.send(req, &status); err != nil {
		return domain.AppStatus{}, err
	}

	uptime := "Offline"
	if status.Running {
		uptime = "Online"
	}
	return domain.AppStatus{
		ID:           appID,
		Name:         "App " + appID,
		Status:       status.Status,
		Running:      status.Running,
		MemoryUsedMB: parseMB(status.Usage.RAM),
		MemoryMB:     256,
		CPUPercent:   parsePercent(status.Usage.CPU),
		Uptime:       uptime,
		URL:          fmt.Sprintf("https://%s.squarecloud.app", appID),
		SampledAt:    time.Now().UTC(),
	}, nil
}

// DeleteApp removes an application.
func (s *SquareCloud) DeleteApp(ctx context.Context, appID string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, s.baseURL+"/apps/"+appID, nil)
	if err != nil {
		return fmt.Errorf("build delete request: %w", err)
	}
	req.Header.Set("Authorization", s.apiKey)
	if err := s.send(req, nil); err != nil {
		return err
	}
	s.logger.Info("application deleted", "app_id", appID)
	return nil
}

// ListApps returns the account's applications with a best-effort status
// for each; status failures degrade to an unknown entry instead of
// failing the whole listing.
func (s *SquareCloud) ListApps(ctx context.Context) ([]domain.AppStatus, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/user", nil)
	if err != nil {
		return nil, fmt.Errorf("build user request: %w", err)
	}
	req.Header.Set("Authorization", s.apiKey)

	var user struct {
		Applications []scApp `json:"applications"`
	}
	if err := s.send(req, &user); err != nil {
		return nil, err
	}

	apps := make([]domain.AppStatus, 0, len(user.Applications))
	for _, a := range user.Applications {
		st, err := s.AppStatus(ctx, a.ID)
		if err != nil {
			s.logger.Warn("app status unavailable", "app_id", a.ID, "error", err)
			st = domain.AppStatus{
				ID:     a.ID,
				Status: "unknown",
				URL:    fmt.Sprintf("https://%s.squarecloud.app", a.ID),
				Uptime: "Unknown",
			}
		}
		if a.Tag != "" {
			st.Name = a.Tag
		}
		apps = append(apps, st)
	}
	return apps, nil
}

// AppLogs fetches the recent log output of an application.
func (s *SquareCloud) AppLogs(ctx context.Context, appID string) (domain.AppLogs, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/apps/"+appID+"/logs", nil)
	if err != nil {
		return domain.AppLogs{}, fmt.Errorf("build logs request: %w", err)
	}
	req.Header.Set("Authorization", s.apiKey)

	var payload struct {
		Logs string `json:"logs"`
	}
	if err := s.send(req, &payload); err != nil {
		return domain.AppLogs{}, err
	}

	var lines []string
	for _, line := range strings.Split(payload.Logs, "\n") {
		if strings.TrimSpace(line) != "" {
			lines = append(lines, line)
		}
	}
	return domain.AppLogs{ID: appID, Lines: lines}, nil
}

// RestartApp restarts an application.
func (s *SquareCloud) RestartApp(ctx context.Context, appID string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/apps/"+appID+"/restart", nil)
	if err != nil {
		return fmt.Errorf("build restart request: %w", err)
	}
	req.Header.Set("Authorization", s.apiKey)
	if err := s.send(req, nil); err != nil {
		return err
	}
	s.logger.Info("application restarted", "app_id", appID)
	return nil
}

func (s *SquareCloud) send(req *http.Request, out any) error {
	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("hosting provider request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return ErrAppNotFound
	}
	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("hosting provider error (status %d): %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var envelope scEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return fmt.Errorf("decode provider response: %w", err)
	}
	if envelope.Status != "" && envelope.Status != "success" {
		return fmt.Errorf("hosting provider rejected request: %s", envelope.Code)
	}
	if out == nil || len(envelope.Response) == 0 {
		return nil
	}
	if err := json.Unmarshal(envelope.Response, out); err != nil {
		return fmt.Errorf("decode provider payload: %w", err)
	}
	return nil
}

func parseMB(raw string) int {
	raw = strings.TrimSuffix(strings.TrimSpace(raw), "MB")
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0
	}
	return v
}

func parsePercent(raw string) float64 {
	raw = strings.TrimSuffix(strings.TrimSpace(raw), "%")
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0
	}
	return v
}
