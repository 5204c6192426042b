package gemini

import "github.com/google/generative-ai-go/genai"

const DefaultModel = "gemini-2.0-flash"

// ModelConfig holds the generation parameters and safety thresholds.
// It is built once at start-up and handed to New.
type ModelConfig struct {
	Model           string
	Temperature     float32
	TopP            float32
	TopK            int32
	MaxOutputTokens int32
	Safety          []*genai.SafetySetting
}

// DefaultModelConfig returns the settings the extraction prompts were tuned for.
func DefaultModelConfig(model string) ModelConfig {
	if model == "" {
		model = DefaultModel
	}
	return ModelConfig{
		Model:           model,
		Temperature:     0.2,
		TopP:            1,
		TopK:            32,
		MaxOutputTokens: 4096,
		Safety: []*genai.SafetySetting{
			{Category: genai.HarmCategoryHarassment, Threshold: genai.HarmBlockMediumAndAbove},
			{Category: genai.HarmCategoryHateSpeech, Threshold: genai.HarmBlockMediumAndAbove},
			{Category: genai.HarmCategorySexuallyExplicit, Threshold: genai.HarmBlockMediumAndAbove},
			{Category: genai.HarmCategoryDangerousContent, Threshold: genai.HarmBlockMediumAndAbove},
		},
	}
}

// apply copies the configuration onto a model handle.
func (c ModelConfig) apply(m *genai.GenerativeModel) {
	m.GenerationConfig = genai.GenerationConfig{
		Temperature:     ptr(c.Temperature),
		TopP:            ptr(c.TopP),
		TopK:            ptr(c.TopK),
		MaxOutputTokens: ptr(c.MaxOutputTokens),
	}
	m.SafetySettings = c.Safety
}

func ptr[T any](v T) *T { return &v }
