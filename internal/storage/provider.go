// Package storage defines the article directory file-system abstraction.
package storage

import "time"

// FileInfo describes one markdown file under the corpus root.
type FileInfo struct {
	Path      string // relative to corpus root
	Checksum  string // sha256 of contents, hex encoded
	UpdatedAt time.Time
}

// Provider is the read-only interface for corpus file access.
type Provider interface {
	// List returns metadata for every .md file under dir (relative to corpus root).
	List(dir string) ([]FileInfo, error)
	// Read returns the raw bytes of the file at path (relative to corpus root).
	Read(path string) ([]byte, error)
}
