package guidance

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// PromptConfig holds the system instruction and sampling style for one
// completion call shape.
type PromptConfig struct {
	System      string  `yaml:"system"`
	Temperature float32 `yaml:"temperature"`
	MaxTokens   int     `yaml:"max_tokens"`
}

// PromptSpec bundles the two prompt shapes the guidance flow issues:
// the intent classification call and the persona generation call.
type PromptSpec struct {
	Classifier PromptConfig `yaml:"classifier"`
	Persona    PromptConfig `yaml:"persona"`
}

const defaultClassifierSystem = `You are the intent router for HealBuddy, a mental-wellness chatbot.
Classify the user's message into exactly one intent:

- "safety": ANY message expressing thoughts of self-harm, suicide, crisis, or immediate danger. This intent takes priority: when safety signals are present alongside anything else, always choose "safety".
- "therapist_handoff": the user expresses a clear desire to talk to a human, person, or professional, or their issues seem complex and require professional help.
- "general_chat": all other general conversation, wellness questions, and emotional support.

Respond ONLY with a JSON object of the form {"intent": "safety" | "therapist_handoff" | "general_chat"}. No markdown, no explanation.`

const defaultPersonaSystem = `You are HealBuddy, an AI-powered chatbot designed to provide empathetic wellness guidance. You communicate in Hinglish (a mix of Hindi and English) and use principles of Cognitive Behavioral Therapy (CBT) to help users explore their feelings in a safe and supportive environment. Your responses should be concise, supportive, and culturally sensitive. Always prioritize user safety and well-being. Do not give any medical or diagnostic advice. Focus on guiding users to explore and understand their feelings, not on providing definitive solutions. Be short and conversational. Add a smiley emoji at the end of every message. Keep responses under 50 words.`

// DefaultPromptSpec returns the compiled-in prompt spec. The binary works
// without a prompts file; LoadPromptSpec overrides these when one exists.
func DefaultPromptSpec() PromptSpec {
	return PromptSpec{
		Classifier: PromptConfig{
			System:      defaultClassifierSystem,
			Temperature: 0.0,
			MaxTokens:   32,
		},
		Persona: PromptConfig{
			System:      defaultPersonaSystem,
			Temperature: 0.7,
			MaxTokens:   200,
		},
	}
}

// promptFileConfig is the on-disk shape. Pointer fields distinguish
// "absent, keep the default" from an explicit zero like temperature: 0.
type promptFileConfig struct {
	System      string   `yaml:"system"`
	Temperature *float32 `yaml:"temperature"`
	MaxTokens   *int     `yaml:"max_tokens"`
}

type promptFile struct {
	Classifier promptFileConfig `yaml:"classifier"`
	Persona    promptFileConfig `yaml:"persona"`
}

// LoadPromptSpec reads a YAML prompt spec from path. Fields left out of
// the file keep their defaults, so a spec file may override just the
// persona wording.
func LoadPromptSpec(path string) (PromptSpec, error) {
	spec := DefaultPromptSpec()
	b, err := os.ReadFile(path)
	if err != nil {
		return spec, err
	}
	var loaded promptFile
	if err := yaml.Unmarshal(b, &loaded); err != nil {
		return spec, fmt.Errorf("parse prompt spec %s: %w", path, err)
	}
	spec.Classifier = mergePromptConfig(spec.Classifier, loaded.Classifier)
	spec.Persona = mergePromptConfig(spec.Persona, loaded.Persona)
	return spec, nil
}

func mergePromptConfig(base PromptConfig, override promptFileConfig) PromptConfig {
	if override.System != "" {
		base.System = override.System
	}
	if override.Temperature != nil {
		base.Temperature = *override.Temperature
	}
	if override.MaxTokens != nil {
		base.MaxTokens = *override.MaxTokens
	}
	return base
}
