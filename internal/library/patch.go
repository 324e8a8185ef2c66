// Package library is the on-disk patch and bank store: a <slug>.json
// metadata sidecar next to a <slug>.syx raw dump per patch, and bank
// files mapping program slots to patch files.
package library

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

// Patch is one stored program: metadata plus the raw dump payload.
type Patch struct {
	Name          string
	ProgramNumber int
	Category      string
	Notes         string
	// SysExData is the raw program-dump payload; nil means metadata only.
	SysExData []byte
	// Created is an ISO date, YYYY-MM-DD.
	Created string

	// extra holds JSON keys this version does not recognize so they
	// survive a load/save round-trip.
	extra map[string]json.RawMessage
}

var slugPattern = regexp.MustCompile(`[^a-z0-9_-]+`)

// Slug derives the file stem from the patch name.
func (p *Patch) Slug() string {
	s := slugPattern.ReplaceAllString(strings.ToLower(p.Name), "-")
	return strings.Trim(s, "-")
}

var knownPatchKeys = map[string]bool{
	"name": true, "program_number": true, "category": true,
	"notes": true, "created": true, "sysex_file": true,
}

// Save writes the metadata JSON at jsonPath and, when SysExData is
// present, the raw payload to the sibling .syx file.
func (p *Patch) Save(jsonPath string) error {
	doc := map[string]any{}
	for k, v := range p.extra {
		doc[k] = v
	}
	doc["name"] = p.Name
	doc["program_number"] = p.ProgramNumber
	doc["category"] = p.Category
	doc["notes"] = p.Notes
	doc["created"] = p.createdOrToday()

	if p.SysExData != nil {
		syxPath := withSuffix(jsonPath, ".syx")
		if err := os.WriteFile(syxPath, p.SysExData, 0o644); err != nil {
			return err
		}
		doc["sysex_file"] = filepath.Base(syxPath)
	} else {
		doc["sysex_file"] = nil
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(jsonPath, data, 0o644)
}

// LoadPatch reads a patch metadata file and its referenced .syx
// payload. A missing .syx file is tolerated; a missing name is not.
func LoadPatch(jsonPath string) (*Patch, error) {
	data, err := os.ReadFile(jsonPath)
	if err != nil {
		return nil, err
	}
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%s: %w", jsonPath, err)
	}

	p := &Patch{extra: map[string]json.RawMessage{}}
	if raw, ok := doc["name"]; ok {
		if err := json.Unmarshal(raw, &p.Name); err != nil {
			return nil, fmt.Errorf("%s: name: %w", jsonPath, err)
		}
	} else {
		return nil, fmt.Errorf("%s: missing required name field", jsonPath)
	}
	if raw, ok := doc["program_number"]; ok {
		_ = json.Unmarshal(raw, &p.ProgramNumber)
	}
	if raw, ok := doc["category"]; ok {
		_ = json.Unmarshal(raw, &p.Category)
	}
	if raw, ok := doc["notes"]; ok {
		_ = json.Unmarshal(raw, &p.Notes)
	}
	if raw, ok := doc["created"]; ok {
		_ = json.Unmarshal(raw, &p.Created)
	}
	if p.Created == "" {
		p.Created = time.Now().Format("2006-01-02")
	}

	var sysexFile string
	if raw, ok := doc["sysex_file"]; ok {
		_ = json.Unmarshal(raw, &sysexFile)
	}
	if sysexFile != "" {
		syxPath := filepath.Join(filepath.Dir(jsonPath), sysexFile)
		if payload, err := os.ReadFile(syxPath); err == nil {
			p.SysExData = payload
		}
	}

	for k, v := range doc {
		if !knownPatchKeys[k] {
			p.extra[k] = v
		}
	}
	return p, nil
}

func (p *Patch) createdOrToday() string {
	if p.Created != "" {
		return p.Created
	}
	return time.Now().Format("2006-01-02")
}

func withSuffix(path, suffix string) string {
	return strings.TrimSuffix(path, filepath.Ext(path)) + suffix
}
