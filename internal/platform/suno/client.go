package suno

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/hashicorp/go-cleanhttp"
	"github.com/phrazzld/melodysnap-api/internal/config"
	"github.com/phrazzld/melodysnap-api/internal/domain"
	"github.com/phrazzld/melodysnap-api/internal/generation"
)

// maxErrorBody caps how much of a failed response is kept for diagnostics.
const maxErrorBody = 4 << 10

// codeOK is the success value of the envelope code field.
const codeOK = 200

// Vendor job states.
const (
	stateSuccess             = "SUCCESS"
	stateFailed              = "FAILED"
	stateCreateTaskFailed    = "CREATE_TASK_FAILED"
	stateGenerateAudioFailed = "GENERATE_AUDIO_FAILED"
	stateCallbackException   = "CALLBACK_EXCEPTION"
	stateSensitiveWordError  = "SENSITIVE_WORD_ERROR"
)

// Client talks to the Suno API.
type Client struct {
	httpClient  *http.Client
	generateURL string
	recordURL   string
	token       string
	model       string
	callbackURL string
	logger      *slog.Logger
}

var (
	_ generation.Submitter     = (*Client)(nil)
	_ generation.StatusQuerier = (*Client)(nil)
)

// NewClient creates a Client. A nil httpClient gets a pooled client with the
// configured request timeout.
func NewClient(cfg config.SunoConfig, httpClient *http.Client, logger *slog.Logger) (*Client, error) {
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}
	if cfg.APIToken == "" {
		return nil, fmt.Errorf("%w: suno api token cannot be empty", generation.ErrInvalidConfig)
	}
	if _, err := url.ParseRequestURI(cfg.APIURL); err != nil {
		return nil, fmt.Errorf("%w: invalid suno api url: %v", generation.ErrInvalidConfig, err)
	}

	if httpClient == nil {
		httpClient = cleanhttp.DefaultPooledClient()
		httpClient.Timeout = cfg.RequestTimeout()
	}

	generateURL := strings.TrimRight(cfg.APIURL, "/")
	base := strings.TrimSuffix(generateURL, "/generate")

	return &Client{
		httpClient:  httpClient,
		generateURL: generateURL,
		recordURL:   base + "/generate/record-info",
		token:       cfg.APIToken,
		model:       cfg.Model,
		callbackURL: cfg.CallbackURL,
		logger:      logger.With("component", "suno_client"),
	}, nil
}

type generateRequest struct {
	Prompt              string  `json:"prompt"`
	Style               string  `json:"style"`
	Title               string  `json:"title"`
	CustomMode          bool    `json:"customMode"`
	Instrumental        bool    `json:"instrumental"`
	Model               string  `json:"model"`
	VocalGender         string  `json:"vocalGender"`
	NegativeTags        string  `json:"negativeTags,omitempty"`
	PersonaID           string  `json:"personaId,omitempty"`
	StyleWeight         float64 `json:"styleWeight"`
	WeirdnessConstraint float64 `json:"weirdnessConstraint"`
	AudioWeight         float64 `json:"audioWeight"`
	CallBackURL         string  `json:"callBackUrl,omitempty"`
}

type generateResponse struct {
	Code int    `json:"code"`
	Msg  string `json:"msg"`
	Data struct {
		TaskID string `json:"taskId"`
	} `json:"data"`
}

type recordInfoResponse struct {
	Code int    `json:"code"`
	Msg  string `json:"msg"`
	Data struct {
		TaskID       string `json:"taskId"`
		Status       string `json:"status"`
		ErrorMessage string `json:"errorMessage"`
		Response     struct {
			SunoData []struct {
				ID       string  `json:"id"`
				AudioURL string  `json:"audioUrl"`
				ImageURL string  `json:"imageUrl"`
				Title    string  `json:"title"`
				Duration float64 `json:"duration"`
			} `json:"sunoData"`
		} `json:"response"`
	} `json:"data"`
}

// Submit starts a generation job and returns its task id.
func (c *Client) Submit(ctx context.Context, cfg *domain.SongConfig) (string, error) {
	if cfg == nil {
		return "", fmt.Errorf("%w: nil song config", domain.ErrInvalidSongConfig)
	}

	model := c.model
	if model == "" {
		model = cfg.Model
	}
	body, err := json.Marshal(generateRequest{
		Prompt:              cfg.Prompt,
		Style:               cfg.Style,
		Title:               cfg.Title,
		CustomMode:          cfg.CustomMode,
		Instrumental:        cfg.Instrumental,
		Model:               model,
		VocalGender:         string(cfg.VocalGender),
		NegativeTags:        cfg.NegativeTags,
		PersonaID:           cfg.PersonaID,
		StyleWeight:         cfg.StyleWeight,
		WeirdnessConstraint: cfg.WeirdnessConstraint,
		AudioWeight:         cfg.AudioWeight,
		CallBackURL:         c.callbackURL,
	})
	if err != nil {
		return "", fmt.Errorf("failed to encode generation request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.generateURL, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to build generation request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")

	c.logger.InfoContext(ctx, "submitting generation job", "title", cfg.Title, "model", model)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", &generation.SubmissionError{Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		c.logger.ErrorContext(ctx, "generation request rejected", "status_code", resp.StatusCode)
		return "", &generation.SubmissionError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(raw))}
	}

	var out generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", &generation.SubmissionError{
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("%w: %v", generation.ErrInvalidResponse, err),
		}
	}
	if out.Code != codeOK {
		return "", &generation.SubmissionError{StatusCode: out.Code, Body: out.Msg}
	}
	if out.Data.TaskID == "" {
		return "", &generation.SubmissionError{
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("%w: response carries no taskId", generation.ErrInvalidResponse),
		}
	}

	c.logger.InfoContext(ctx, "generation job created", "job_id", out.Data.TaskID)
	return out.Data.TaskID, nil
}

// QueryStatus fetches the record of a generation job once.
func (c *Client) QueryStatus(ctx context.Context, jobID string) (*generation.JobStatus, error) {
	u := c.recordURL + "?" + url.Values{"taskId": {jobID}}.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build status request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", generation.ErrTransientFailure, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 200))
		return nil, fmt.Errorf("%w: status query returned %d: %s",
			generation.ErrTransientFailure, resp.StatusCode, strings.TrimSpace(string(raw)))
	}

	var out recordInfoResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("%w: %v", generation.ErrInvalidResponse, err)
	}
	if out.Code != codeOK {
		return nil, fmt.Errorf("%w: status query code %d: %s",
			generation.ErrTransientFailure, out.Code, out.Msg)
	}

	status := &generation.JobStatus{
		State:        mapState(out.Data.Status),
		RawState:     out.Data.Status,
		ErrorMessage: out.Data.ErrorMessage,
	}
	// Order is kept, empty URLs included: the first variant is the result.
	for _, d := range out.Data.Response.SunoData {
		status.Variants = append(status.Variants, generation.Variant{
			ID:       d.ID,
			AudioURL: d.AudioURL,
			ImageURL: d.ImageURL,
			Title:    d.Title,
			Duration: d.Duration,
		})
	}
	return status, nil
}

func mapState(raw string) generation.JobState {
	switch raw {
	case stateSuccess:
		return generation.JobStateSucceeded
	case stateFailed, stateCreateTaskFailed, stateGenerateAudioFailed,
		stateCallbackException, stateSensitiveWordError:
		return generation.JobStateFailed
	default:
		return generation.JobStateRunning
	}
}
