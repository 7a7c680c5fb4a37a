package filesystem

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"media-remuxer/domain/container"

	"github.com/google/uuid"
)

// Stager writes outputs under a hidden temporary name in the destination
// directory and renames them into place on success
type Stager struct{}

// NewStager creates a new Stager
func NewStager() *Stager {
	return &Stager{}
}

// Stage returns a unique temporary path next to finalPath, creating the
// output directory if needed. The extension is kept so tools that pick a
// format by file name still work.
func (s *Stager) Stage(finalPath string) (string, error) {
	dir := filepath.Dir(finalPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}
	ext := filepath.Ext(finalPath)
	base := strings.TrimSuffix(filepath.Base(finalPath), ext)
	return filepath.Join(dir, fmt.Sprintf(".%s.%s.tmp%s", base, uuid.NewString(), ext)), nil
}

// Commit atomically moves tmpPath to finalPath
func (s *Stager) Commit(tmpPath, finalPath string) error {
	if err := os.Rename(tmpPath, finalPath); err != nil {
		return fmt.Errorf("failed to move output into place: %w", err)
	}
	return nil
}

// Discard removes tmpPath; a missing file is not an error
func (s *Stager) Discard(tmpPath string) {
	_ = os.Remove(tmpPath)
}

// Ensure Stager implements container.Stager
var _ container.Stager = (*Stager)(nil)
