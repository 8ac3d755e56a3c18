package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/meltforce/periodix/internal/models"
	"github.com/meltforce/periodix/internal/phase"
	"github.com/meltforce/periodix/internal/program"
	"github.com/meltforce/periodix/internal/volume"
)

// HTTPClient implements DataSource by calling the Periodix REST API.
// Used for remote MCP mode and by periodixctl, where data lives on the
// server (accessed over Tailscale).
type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
}

var _ DataSource = (*HTTPClient)(nil)

// NewHTTPClient creates an HTTPClient targeting the given base URL.
func NewHTTPClient(baseURL string) *HTTPClient {
	return &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// apiError maps a non-2xx response onto the model error sentinels so
// callers can use errors.Is regardless of transport.
func apiError(path string, status int, body []byte) error {
	var payload struct {
		Error string `json:"error"`
	}
	msg := strings.TrimSpace(string(body))
	if json.Unmarshal(body, &payload) == nil && payload.Error != "" {
		msg = payload.Error
	}
	switch status {
	case http.StatusNotFound:
		return fmt.Errorf("%w: %s", models.ErrNotFound, msg)
	case http.StatusBadRequest:
		return fmt.Errorf("%w: %s", models.ErrInvalidArgument, msg)
	case http.StatusConflict:
		return fmt.Errorf("%w: %s", models.ErrIncompatibleMutation, msg)
	default:
		return fmt.Errorf("httpclient: %s returned %d: %s", path, status, msg)
	}
}

func (c *HTTPClient) do(ctx context.Context, method, path string, params url.Values, body any, out any) error {
	u := c.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("httpclient: encode body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reqBody)
	if err != nil {
		return fmt.Errorf("httpclient: create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("httpclient: %s: %w", path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("httpclient: read body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return apiError(path, resp.StatusCode, data)
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("httpclient: decode %s: %w", path, err)
	}
	return nil
}

func (c *HTTPClient) get(ctx context.Context, path string, params url.Values, out any) error {
	return c.do(ctx, http.MethodGet, path, params, nil, out)
}

func (c *HTTPClient) CurrentWeekVolume(ctx context.Context, _ int64) (*models.CurrentWeekVolume, error) {
	var v models.CurrentWeekVolume
	if err := c.get(ctx, "/api/v1/volume/current", nil, &v); err != nil {
		return nil, err
	}
	return &v, nil
}

func (c *HTTPClient) VolumeHistory(ctx context.Context, _ int64, weeks int, muscleGroup string) (*models.VolumeHistory, error) {
	params := url.Values{}
	if weeks != 0 {
		params.Set("weeks", strconv.Itoa(weeks))
	}
	if muscleGroup != "" {
		params.Set("muscle_group", muscleGroup)
	}
	var h models.VolumeHistory
	if err := c.get(ctx, "/api/v1/volume/history", params, &h); err != nil {
		return nil, err
	}
	return &h, nil
}

func (c *HTTPClient) ProgramVolume(ctx context.Context, _ int64) (*models.ProgramVolumeAnalysis, error) {
	var a *models.ProgramVolumeAnalysis
	if err := c.get(ctx, "/api/v1/programs/active/volume", nil, &a); err != nil {
		return nil, err
	}
	return a, nil
}

func (c *HTTPClient) ActiveProgram(ctx context.Context, _ int64) (*program.View, error) {
	var p program.View
	if err := c.get(ctx, "/api/v1/programs/active", nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *HTTPClient) Landmarks(ctx context.Context) (map[models.MuscleGroup]volume.Landmark, error) {
	var l map[models.MuscleGroup]volume.Landmark
	if err := c.get(ctx, "/api/v1/volume/landmarks", nil, &l); err != nil {
		return nil, err
	}
	return l, nil
}

// AdvancePhase moves a program to its next mesocycle phase, or to target
// when manual is set.
func (c *HTTPClient) AdvancePhase(ctx context.Context, programID int64, manual bool, target string) (*phase.Transition, error) {
	body := map[string]any{"manual": manual}
	if target != "" {
		body["target_phase"] = target
	}
	var t phase.Transition
	path := fmt.Sprintf("/api/v1/programs/%d/phase", programID)
	if err := c.do(ctx, http.MethodPost, path, nil, body, &t); err != nil {
		return nil, err
	}
	return &t, nil
}
