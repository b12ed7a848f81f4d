package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Persona holds the fixed mentor identity sent to the generation backend
// and the voice used when synthesizing replies.
type Persona struct {
	Name        string `yaml:"name"`
	Instruction string `yaml:"instruction"`
	Generation  struct {
		Model string `yaml:"model"`
	} `yaml:"generation"`
	Voice struct {
		Model  string `yaml:"model"`
		Voice  string `yaml:"voice"`
		Format string `yaml:"format"`
	} `yaml:"voice"`
}

// DefaultPersona mirrors the shipped mentor.yaml so the service still
// works when the file is absent.
func DefaultPersona() Persona {
	p := Persona{
		Name:        "MentorMate",
		Instruction: "You are a mentor for Mentormate, providing concise, helpful advice.",
	}
	p.Generation.Model = "gemini-1.5-flash"
	p.Voice.Model = "tts-1"
	p.Voice.Voice = "nova"
	p.Voice.Format = "mp3"
	return p
}

// LoadPersona reads the persona YAML, falling back to defaults for any
// field the file leaves empty.
func LoadPersona(path string) (Persona, error) {
	persona := DefaultPersona()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return persona, nil
		}
		return persona, fmt.Errorf("read persona file: %w", err)
	}

	if err := yaml.Unmarshal(data, &persona); err != nil {
		return DefaultPersona(), fmt.Errorf("parse persona file: %w", err)
	}

	defaults := DefaultPersona()
	if persona.Name == "" {
		persona.Name = defaults.Name
	}
	if persona.Instruction == "" {
		persona.Instruction = defaults.Instruction
	}
	if persona.Generation.Model == "" {
		persona.Generation.Model = defaults.Generation.Model
	}
	if persona.Voice.Model == "" {
		persona.Voice.Model = defaults.Voice.Model
	}
	if persona.Voice.Voice == "" {
		persona.Voice.Voice = defaults.Voice.Voice
	}
	if persona.Voice.Format == "" {
		persona.Voice.Format = defaults.Voice.Format
	}
	return persona, nil
}
