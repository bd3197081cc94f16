package site

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Manifest records the SHA3-256 digest of every file a build wrote.
// Deployment verification compares it against what the host serves.
type Manifest struct {
	GeneratedAt time.Time         `json:"generated_at"`
	BaseURL     string            `json:"base_url"`
	Files       map[string]string `json:"files"`
}

// Digest returns the recorded digest of a site-relative path.
func (m *Manifest) Digest(rel string) (string, bool) {
	d, ok := m.Files[filepath.ToSlash(rel)]
	return d, ok
}

// WriteManifest writes m as manifest.json into dir.
func WriteManifest(dir string, m *Manifest) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode manifest: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, ManifestFile), append(data, '\n'), 0o644); err != nil { //nolint:gosec // published file
		return fmt.Errorf("failed to write manifest: %w", err)
	}
	return nil
}

// LoadManifest reads manifest.json from dir.
func LoadManifest(dir string) (*Manifest, error) {
	data, err := os.ReadFile(filepath.Join(dir, ManifestFile)) //nolint:gosec // path from user config
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse manifest: %w", err)
	}
	if m.Files == nil {
		m.Files = make(map[string]string)
	}
	return &m, nil
}
