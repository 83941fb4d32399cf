package policy

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"veritas-hq/minerva/pkg/conversation"
	"veritas-hq/minerva/pkg/detector"
)

// packFile is the YAML wire form of a policy pack. Detectors are declared
// as data tables so packs stay declarative and testable in isolation from
// the engine.
type packFile struct {
	ID           string         `yaml:"id"`
	Name         string         `yaml:"name"`
	Version      string         `yaml:"version"`
	Jurisdiction string         `yaml:"jurisdiction"`
	Detectors    []detectorSpec `yaml:"detectors"`
	Rules        []Rule         `yaml:"rules"`
}

// detectorSpec declares one detector in a pack file.
//
// Kinds:
//   - regex:   Roles + Patterns
//   - keyword: Roles + Groups
//   - builtin: Name references the in-code catalog
type detectorSpec struct {
	Kind     string                  `yaml:"kind"`
	Name     string                  `yaml:"name"`
	Roles    []conversation.Role     `yaml:"roles"`
	Patterns []detector.Pattern      `yaml:"patterns"`
	Groups   []detector.KeywordGroup `yaml:"groups"`
}

// builtinDetectors maps builtin detector names usable from pack files to
// their constructors.
var builtinDetectors = map[string]func() detector.Detector{
	"self-harm":      func() detector.Detector { return detector.NewSelfHarmDetector() },
	"escalation":     func() detector.Detector { return detector.NewEscalationDetector() },
	"medical-advice": func() detector.Detector { return detector.NewMedicalAdviceDetector() },
	"ai-disclosure":  func() detector.Detector { return detector.NewDisclosureDetector() },
	"privacy":        func() detector.Detector { return detector.NewPrivacyDetector() },
	"bias":           func() detector.Detector { return detector.NewBiasDetector() },
}

// LoadPack loads and validates a single pack file.
func LoadPack(path string) (*Pack, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{Path: path, Cause: err}
	}

	var pf packFile
	if err := yaml.Unmarshal(data, &pf); err != nil {
		return nil, &LoadError{Path: path, Cause: err}
	}

	pack := &Pack{
		ID:           pf.ID,
		Name:         pf.Name,
		Version:      pf.Version,
		Jurisdiction: pf.Jurisdiction,
		Rules:        pf.Rules,
	}

	for i, spec := range pf.Detectors {
		det, err := buildDetector(spec)
		if err != nil {
			return nil, &LoadError{Path: path, Cause: fmt.Errorf("detector %d: %w", i, err)}
		}
		pack.Detectors = append(pack.Detectors, det)
	}

	if err := pack.Validate(); err != nil {
		return nil, &LoadError{Path: path, Cause: err}
	}
	return pack, nil
}

// LoadDir loads all .yaml/.yml pack files in a directory. Hidden files are
// skipped. An empty directory yields an empty slice, not an error.
func LoadDir(dir string) ([]*Pack, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, &LoadError{Path: dir, Cause: err}
	}

	var packs []*Pack
	for _, entry := range entries {
		if entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		ext := filepath.Ext(entry.Name())
		if ext != ".yaml" && ext != ".yml" {
			continue
		}

		pack, err := LoadPack(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, err
		}
		packs = append(packs, pack)
	}
	return packs, nil
}

// buildDetector constructs a detector from its file spec.
func buildDetector(spec detectorSpec) (detector.Detector, error) {
	switch spec.Kind {
	case "regex":
		return detector.NewRegexDetector(spec.Name, spec.Roles, spec.Patterns)
	case "keyword":
		return detector.NewKeywordDetector(spec.Name, spec.Roles, spec.Groups)
	case "builtin":
		ctor, ok := builtinDetectors[spec.Name]
		if !ok {
			return nil, fmt.Errorf("unknown builtin detector %q", spec.Name)
		}
		return ctor(), nil
	default:
		return nil, fmt.Errorf("unknown detector kind %q", spec.Kind)
	}
}
