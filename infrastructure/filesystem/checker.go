package filesystem

import (
	"os"

	"media-remuxer/domain/container"
)

// Checker implements container.FileChecker using the os package
type Checker struct{}

// NewChecker creates a new filesystem checker
func NewChecker() *Checker {
	return &Checker{}
}

// Exists returns true if path exists and is a regular file
func (c *Checker) Exists(path string) bool {
	fi, err := os.Stat(path)
	return err == nil && fi.Mode().IsRegular()
}

// Ensure Checker implements container.FileChecker
var _ container.FileChecker = (*Checker)(nil)
