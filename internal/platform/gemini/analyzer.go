package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/phrazzld/melodysnap-api/internal/config"
	"github.com/phrazzld/melodysnap-api/internal/domain"
	"github.com/phrazzld/melodysnap-api/internal/generation"
	"github.com/phrazzld/melodysnap-api/internal/redact"
	"github.com/sethvargo/go-retry"
	"google.golang.org/genai"
)

// Analyzer implements generation.Analyzer with the Gemini API.
type Analyzer struct {
	logger       *slog.Logger
	client       contentGenerator
	model        string
	systemPrompt string
	songModel    string
	maxRetries   int
	baseDelay    time.Duration
}

var _ generation.Analyzer = (*Analyzer)(nil)

// NewAnalyzer creates an Analyzer backed by a real Gemini client.
// songModel is the generation model written into every configuration.
func NewAnalyzer(ctx context.Context, logger *slog.Logger, cfg config.LLMConfig, songModel string) (*Analyzer, error) {
	if cfg.GeminiAPIKey == "" {
		return nil, fmt.Errorf("%w: gemini API key cannot be empty", generation.ErrInvalidConfig)
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.GeminiAPIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create Gemini client: %v",
			generation.ErrInvalidConfig, err)
	}

	return newAnalyzer(logger, client.Models, cfg, songModel)
}

func newAnalyzer(logger *slog.Logger, client contentGenerator, cfg config.LLMConfig, songModel string) (*Analyzer, error) {
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}
	if cfg.ModelName == "" {
		return nil, fmt.Errorf("%w: model name cannot be empty", generation.ErrInvalidConfig)
	}
	if cfg.PromptPath == "" {
		return nil, fmt.Errorf("%w: prompt path cannot be empty", generation.ErrInvalidConfig)
	}

	prompt, err := os.ReadFile(cfg.PromptPath)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read system prompt from %s: %v",
			generation.ErrInvalidConfig, cfg.PromptPath, err)
	}
	if strings.TrimSpace(string(prompt)) == "" {
		return nil, fmt.Errorf("%w: system prompt %s is empty", generation.ErrInvalidConfig, cfg.PromptPath)
	}

	maxRetries := cfg.MaxRetries
	if maxRetries < 0 {
		maxRetries = 0
	}
	delay := time.Duration(cfg.RetryDelaySeconds) * time.Second
	if delay <= 0 {
		delay = 2 * time.Second
	}

	return &Analyzer{
		logger:       logger.With("component", "gemini_analyzer", "model", cfg.ModelName),
		client:       client,
		model:        cfg.ModelName,
		systemPrompt: string(prompt),
		songModel:    songModel,
		maxRetries:   maxRetries,
		baseDelay:    delay,
	}, nil
}

// Analyze sends the image to Gemini and turns the reply into a song configuration.
func (a *Analyzer) Analyze(ctx context.Context, image []byte, mimeType string) (*domain.SongConfig, error) {
	if len(image) == 0 {
		return nil, &generation.AnalysisError{Err: domain.ErrEmptyImage}
	}
	if mimeType == "" {
		mimeType = mimetype.Detect(image).String()
	}

	a.logger.InfoContext(ctx, "analyzing image", "bytes", len(image), "mime_type", mimeType)

	text, err := a.generateWithRetry(ctx, image, mimeType)
	if err != nil {
		return nil, &generation.AnalysisError{Err: err}
	}

	cfg, err := a.parse(text)
	if err != nil {
		a.logger.WarnContext(ctx, "model output rejected",
			"error", err,
			"output_prefix", truncate(text, 200))
		return nil, err
	}

	a.logger.InfoContext(ctx, "image analysis complete", "title", cfg.Title, "style", cfg.Style)
	return cfg, nil
}

// generateWithRetry calls the model, retrying transient failures with
// exponential backoff and jitter. Safety blocks and empty candidates are
// returned immediately.
func (a *Analyzer) generateWithRetry(ctx context.Context, image []byte, mimeType string) (string, error) {
	contents := []*genai.Content{{
		Role: "user",
		Parts: []*genai.Part{
			{Text: "Analyze this photo and compose the song configuration."},
			{InlineData: &genai.Blob{MIMEType: mimeType, Data: image}},
		},
	}}
	genCfg := &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: a.systemPrompt}}},
		ResponseMIMEType:  "application/json",
	}

	b := retry.NewExponential(a.baseDelay)
	b = retry.WithJitterPercent(50, b)
	b = retry.WithMaxRetries(uint64(a.maxRetries), b)

	attempt := 0
	var text string
	err := retry.Do(ctx, b, func(ctx context.Context) error {
		attempt++
		a.logger.DebugContext(ctx, "calling Gemini API", "attempt", attempt, "max_attempts", a.maxRetries+1)

		resp, err := a.client.GenerateContent(ctx, a.model, contents, genCfg)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			a.logger.WarnContext(ctx, "Gemini API call failed",
				"attempt", attempt,
				"error", redact.Error(err))
			return retry.RetryableError(fmt.Errorf("%w: %v", generation.ErrTransientFailure, err))
		}

		out, err := responseText(resp)
		if err != nil {
			return err
		}
		text = out
		return nil
	})
	if err != nil {
		return "", err
	}
	return text, nil
}

// responseText extracts the text of the first candidate.
func responseText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		return "", fmt.Errorf("%w: no content generated", generation.ErrInvalidResponse)
	}
	cand := resp.Candidates[0]
	if cand.FinishReason == genai.FinishReasonSafety {
		return "", generation.ErrContentBlocked
	}
	if cand.Content == nil {
		return "", fmt.Errorf("%w: empty content in response", generation.ErrInvalidResponse)
	}

	var sb strings.Builder
	for _, part := range cand.Content.Parts {
		if part != nil {
			sb.WriteString(part.Text)
		}
	}
	if strings.TrimSpace(sb.String()) == "" {
		return "", fmt.Errorf("%w: empty text in response", generation.ErrInvalidResponse)
	}
	return sb.String(), nil
}

// parse decodes the model output into a complete SongConfig.
func (a *Analyzer) parse(text string) (*domain.SongConfig, error) {
	var out analysisOutput
	if err := json.Unmarshal([]byte(stripCodeFence(text)), &out); err != nil {
		return nil, &generation.AnalysisError{
			Err: fmt.Errorf("%w: failed to parse JSON response: %v", generation.ErrInvalidResponse, err),
		}
	}

	var missing []string
	required := []struct {
		name  string
		value *string
	}{
		{"prompt", out.Prompt},
		{"style", out.Style},
		{"title", out.Title},
		{"vocalGender", out.VocalGender},
	}
	for _, f := range required {
		if f.value == nil || strings.TrimSpace(*f.value) == "" {
			missing = append(missing, f.name)
		}
	}
	if len(missing) > 0 {
		return nil, &generation.AnalysisError{MissingFields: missing}
	}

	cfg := &domain.SongConfig{
		Prompt:              strings.TrimSpace(*out.Prompt),
		Style:               strings.TrimSpace(*out.Style),
		Title:               strings.TrimSpace(*out.Title),
		VocalGender:         domain.NormalizeVocalGender(*out.VocalGender),
		CustomMode:          true,
		Instrumental:        false,
		Model:               a.songModel,
		NegativeTags:        out.NegativeTags,
		PersonaID:           out.PersonaID,
		StyleWeight:         weightOrDefault(out.StyleWeight),
		WeirdnessConstraint: weightOrDefault(out.WeirdnessConstraint),
		AudioWeight:         weightOrDefault(out.AudioWeight),
	}
	if err := cfg.Validate(); err != nil {
		return nil, &generation.AnalysisError{Err: err}
	}
	return cfg, nil
}

// stripCodeFence removes a surrounding ```json or ``` fence.
func stripCodeFence(text string) string {
	text = strings.TrimSpace(text)
	switch {
	case strings.HasPrefix(text, "```json"):
		text = text[len("```json"):]
	case strings.HasPrefix(text, "```"):
		text = text[len("```"):]
	}
	text = strings.TrimSuffix(text, "```")
	return strings.TrimSpace(text)
}

func weightOrDefault(w *float64) float64 {
	if w == nil {
		return domain.DefaultTuningWeight
	}
	return domain.ClampWeight(*w)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
