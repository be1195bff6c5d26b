// Package media holds the local media asset type shared by the image
// and audio providers and consumed by the card sink.
package media

import (
	"os"
	"path/filepath"
)

// Asset is a media file produced locally by a provider
type Asset struct {
	Filename string // Name the card store will use
	Path     string // Full local path
}

// IsZero reports whether no asset was produced
func (a Asset) IsZero() bool {
	return a.Filename == ""
}

// NewAsset builds an asset for filename inside dir
func NewAsset(dir, filename string) Asset {
	return Asset{Filename: filename, Path: filepath.Join(dir, filename)}
}

// Exists reports whether the asset's local file is present and non-empty
func (a Asset) Exists() bool {
	info, err := os.Stat(a.Path)
	return err == nil && !info.IsDir() && info.Size() > 0
}

// Read returns the asset bytes
func (a Asset) Read() ([]byte, error) {
	return os.ReadFile(a.Path)
}
