package domain

import (
	"fmt"
	"strings"
)

// VocalGender selects a male or female vocal timbre using the single-letter
// code the music backend expects.
type VocalGender string

// Supported vocal genders
const (
	VocalGenderMale   VocalGender = "m"
	VocalGenderFemale VocalGender = "f"
)

// DefaultTuningWeight is used for any generation weight the analysis omits.
const DefaultTuningWeight = 0.65

// NormalizeVocalGender maps the analysis output onto m/f. The full words
// male and female map to their letters; anything unrecognized becomes f.
func NormalizeVocalGender(raw string) VocalGender {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "m", "male":
		return VocalGenderMale
	case "f", "female":
		return VocalGenderFemale
	default:
		return VocalGenderFemale
	}
}

// SongConfig is the structured output of image analysis and the input of
// music generation.
type SongConfig struct {
	Prompt              string      `json:"prompt"`
	Style               string      `json:"style"`
	Title               string      `json:"title"`
	VocalGender         VocalGender `json:"vocalGender"`
	CustomMode          bool        `json:"customMode"`
	Instrumental        bool        `json:"instrumental"`
	Model               string      `json:"model,omitempty"`
	NegativeTags        string      `json:"negativeTags,omitempty"`
	PersonaID           string      `json:"personaId,omitempty"`
	StyleWeight         float64     `json:"styleWeight"`
	WeirdnessConstraint float64     `json:"weirdnessConstraint"`
	AudioWeight         float64     `json:"audioWeight"`
}

// ClampWeight bounds a generation weight to [0, 1].
func ClampWeight(w float64) float64 {
	switch {
	case w < 0:
		return 0
	case w > 1:
		return 1
	default:
		return w
	}
}

// Validate checks that the required fields are present and the weights are in range.
func (c *SongConfig) Validate() error {
	var missing []string
	if strings.TrimSpace(c.Prompt) == "" {
		missing = append(missing, "prompt")
	}
	if strings.TrimSpace(c.Style) == "" {
		missing = append(missing, "style")
	}
	if strings.TrimSpace(c.Title) == "" {
		missing = append(missing, "title")
	}
	if c.VocalGender != VocalGenderMale && c.VocalGender != VocalGenderFemale {
		missing = append(missing, "vocalGender")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing or invalid %s", ErrInvalidSongConfig, strings.Join(missing, ", "))
	}

	for name, w := range map[string]float64{
		"styleWeight":         c.StyleWeight,
		"weirdnessConstraint": c.WeirdnessConstraint,
		"audioWeight":         c.AudioWeight,
	} {
		if w < 0 || w > 1 {
			return fmt.Errorf("%w: %s out of range: %v", ErrInvalidSongConfig, name, w)
		}
	}
	return nil
}
