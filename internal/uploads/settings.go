// Package uploads owns the private uploads directory layout: where the
// private root lives on disk, which public URL the web server is expected to
// block, and the query key the delivery route answers to. Delivery and the
// privacy probe both consume the same Settings so their view of paths and
// URLs can never drift apart.
package uploads

import (
	"fmt"
	"path/filepath"
	"strings"

	"privuploads/internal/config"
)

// maxCacheKeyLength bounds the verdict cache key; long identifiers are truncated.
const maxCacheKeyLength = 191

// Settings describes one private uploads instance.
type Settings struct {
	// Identifier names the instance and derives the query key and cache key.
	Identifier string
	// BaseDir is the uploads base directory on disk.
	BaseDir string
	// BaseURL is the public URL corresponding to BaseDir.
	BaseURL string
	// Subdirectory is the private root's directory name under BaseDir.
	Subdirectory string
}

// NewSettings builds Settings from the application configuration.
func NewSettings(cfg *config.Config) Settings {
	return Settings{
		Identifier:   cfg.Uploads.Identifier,
		BaseDir:      cfg.Uploads.BaseDir,
		BaseURL:      cfg.Uploads.BaseURL,
		Subdirectory: cfg.Uploads.Subdirectory,
	}
}

// PrivateDir returns the absolute path of the private uploads root. An empty
// base directory means the uploads root cannot be resolved; delivery maps
// that to a server error.
func (s Settings) PrivateDir() (string, error) {
	if s.BaseDir == "" {
		return "", fmt.Errorf("uploads base directory is not configured")
	}

	return filepath.Join(s.BaseDir, s.Subdirectory), nil
}

// PrivateURL returns the public URL of the private root, with a trailing
// slash. Requesting this URL (or any file under it) from outside must be
// blocked by the web server; the probe checks exactly this URL space.
func (s Settings) PrivateURL() string {
	return strings.TrimRight(s.BaseURL, "/") + "/" + s.Subdirectory + "/"
}

// FileQueryKey returns the query parameter carrying the requested relative
// path, e.g. "invoices-private-uploads-file". Identifier underscores map to
// hyphens so the key is usable in a URL rewrite target.
func (s Settings) FileQueryKey() string {
	return strings.ReplaceAll(s.Identifier, "_", "-") + "-private-uploads-file"
}

// VerdictCacheKey returns the store key for this instance's privacy verdict.
// The key length is bounded so arbitrarily long identifiers cannot produce
// unbounded keys.
func (s Settings) VerdictCacheKey() string {
	key := fmt.Sprintf("privuploads:%s:is_private", s.Identifier)
	if len(key) > maxCacheKeyLength {
		key = key[:maxCacheKeyLength]
	}

	return key
}
