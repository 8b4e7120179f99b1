package run

import (
	"bytes"
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"kstest/domain/core"
)

var validate = validator.New()

// Manifest describes a batch run.
// It fully determines the inputs, so two runs of the same manifest over the
// same files produce the same results.
type Manifest struct {
	Type       SampleType `json:"type" yaml:"type" validate:"omitempty,oneof=f64 i64"`
	Confidence float64    `json:"confidence,omitempty" yaml:"confidence,omitempty" validate:"omitempty,gt=0,lt=1"`
	Strategy   string     `json:"strategy,omitempty" yaml:"strategy,omitempty" validate:"omitempty,oneof=critical probability both"`
	Summaries  bool       `json:"summaries,omitempty" yaml:"summaries,omitempty"`
	Pairs      []PairSpec `json:"pairs" yaml:"pairs" validate:"required,min=1,dive"`

	// BaseDir resolves relative file paths. It is set by the loader and not
	// part of the fingerprint.
	BaseDir string `json:"-" yaml:"-"`
}

// ParseManifest decodes a YAML manifest and validates it. Unknown keys are
// rejected. Relative file paths resolve against baseDir.
func ParseManifest(data []byte, baseDir string) (*Manifest, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var m Manifest
	if err := dec.Decode(&m); err != nil {
		return nil, fmt.Errorf("decode manifest: %w", err)
	}
	m.BaseDir = baseDir
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

// Validate checks if the manifest is complete
func (m *Manifest) Validate() error {
	if err := validate.Struct(m); err != nil {
		return fmt.Errorf("invalid manifest: %w", err)
	}
	seen := make(map[string]bool, len(m.Pairs))
	for _, p := range m.Pairs {
		if seen[p.Name] {
			return fmt.Errorf("invalid manifest: duplicate pair name %q", p.Name)
		}
		seen[p.Name] = true
		if err := p.First.Validate(); err != nil {
			return fmt.Errorf("invalid manifest: pair %q first sample: %w", p.Name, err)
		}
		if err := p.Second.Validate(); err != nil {
			return fmt.Errorf("invalid manifest: pair %q second sample: %w", p.Name, err)
		}
	}
	return nil
}

// SampleType returns the declared type, defaulting to f64.
func (m *Manifest) SampleType() SampleType {
	if m.Type == "" {
		return SampleTypeFloat
	}
	return m.Type
}

// ConfidenceFor returns the pair's confidence, else the manifest's, else
// fallback.
func (m *Manifest) ConfidenceFor(p PairSpec, fallback float64) float64 {
	switch {
	case p.Confidence > 0:
		return p.Confidence
	case m.Confidence > 0:
		return m.Confidence
	default:
		return fallback
	}
}

// ResolvePath resolves a file source relative to BaseDir.
func (m *Manifest) ResolvePath(path string) string {
	if path == "" || filepath.IsAbs(path) || m.BaseDir == "" {
		return path
	}
	return filepath.Join(m.BaseDir, path)
}

// Fingerprint hashes the canonical JSON form of the manifest.
func (m *Manifest) Fingerprint() core.Hash {
	data, err := json.Marshal(m)
	if err != nil {
		// Only unsupported float values can fail here, and Validate rejects
		// those for every field that could hold them.
		return core.NewHash([]byte(fmt.Sprintf("%#v", *m)))
	}
	return core.NewHash(data)
}
