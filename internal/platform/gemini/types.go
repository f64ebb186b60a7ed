package gemini

import (
	"context"

	"google.golang.org/genai"
)

// contentGenerator is the subset of the genai client the Analyzer uses.
// *genai.Models satisfies it.
type contentGenerator interface {
	GenerateContent(
		ctx context.Context,
		model string,
		contents []*genai.Content,
		config *genai.GenerateContentConfig,
	) (*genai.GenerateContentResponse, error)
}

// analysisOutput is the JSON object the model is asked to produce. Pointer
// fields distinguish absent keys from zero values.
type analysisOutput struct {
	Prompt              *string  `json:"prompt"`
	Style               *string  `json:"style"`
	Title               *string  `json:"title"`
	VocalGender         *string  `json:"vocalGender"`
	NegativeTags        string   `json:"negativeTags,omitempty"`
	PersonaID           string   `json:"personaId,omitempty"`
	StyleWeight         *float64 `json:"styleWeight,omitempty"`
	WeirdnessConstraint *float64 `json:"weirdnessConstraint,omitempty"`
	AudioWeight         *float64 `json:"audioWeight,omitempty"`
}
