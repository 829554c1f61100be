package model

// GenerationOptions are the sampling settings sent with a completion request.
type GenerationOptions struct {
	// Temperature controls randomness: 0 is deterministic, higher is more varied.
	Temperature float64 `yaml:"temperature" json:"temperature"`
	// MaxOutputTokens bounds the generated length.
	MaxOutputTokens int `yaml:"max_output_tokens" json:"max_tokens"`
	// TopP is the nucleus-sampling cutoff.
	TopP float64 `yaml:"top_p" json:"top_p"`
	// FrequencyPenalty and PresencePenalty weight repetition control.
	FrequencyPenalty float64 `yaml:"frequency_penalty" json:"frequency_penalty"`
	PresencePenalty  float64 `yaml:"presence_penalty" json:"presence_penalty"`
}

// DefaultGenerationOptions returns the settings shared by every content kind
// unless a kind overrides them.
func DefaultGenerationOptions() GenerationOptions {
	return GenerationOptions{
		Temperature:      0.7,
		MaxOutputTokens:  256,
		TopP:             1,
		FrequencyPenalty: 0,
		PresencePenalty:  0,
	}
}

// PromptRequest asks for one piece of generated content of a given kind.
type PromptRequest struct {
	Kind   string
	Fields map[string]string
}
