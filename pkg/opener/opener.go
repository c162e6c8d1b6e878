// Package opener hands files and URLs to the operating system's default application.
package opener

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/browser"
)

var (
	// ErrEmptyTarget is returned when there is nothing to open.
	ErrEmptyTarget = errors.New("nothing to open")

	// ErrUnsupportedScheme is returned for URLs whose scheme is not allowed.
	ErrUnsupportedScheme = errors.New("unsupported URL scheme")
)

// allowedSchemes are the URL schemes handed to the system browser.
var allowedSchemes = map[string]bool{
	"http":   true,
	"https":  true,
	"mailto": true,
}

// Opener opens an external resource (a URL or a local path).
type Opener interface {
	Open(target string) error
}

// Browser opens URLs in the default browser and local files with their default application.
type Browser struct {
	openURL  func(string) error
	openFile func(string) error
}

var _ Opener = (*Browser)(nil)

// NewBrowser returns an Opener backed by the desktop environment.
func NewBrowser() *Browser {
	return &Browser{
		openURL:  browser.OpenURL,
		openFile: browser.OpenFile,
	}
}

// Open opens target. http, https and mailto URLs go to the browser, file URLs and
// plain paths must name an existing local file. Any other scheme is refused with
// ErrUnsupportedScheme.
func (b *Browser) Open(target string) error {
	if target == "" {
		return ErrEmptyTarget
	}

	// single letters are Windows drive names, not schemes
	if u, err := url.Parse(target); err == nil && len(u.Scheme) > 1 {
		scheme := strings.ToLower(u.Scheme)
		switch {
		case allowedSchemes[scheme]:
			return b.openURL(target)
		case scheme == "file":
			target = u.Path
		default:
			return fmt.Errorf("%w: %q", ErrUnsupportedScheme, u.Scheme)
		}
	} else if err != nil && looksLikeURL(target) {
		return fmt.Errorf("%w: %s", ErrUnsupportedScheme, target)
	}

	path, err := filepath.Abs(target)
	if err != nil {
		return fmt.Errorf("resolving %s: %w", target, err)
	}

	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("cannot open %s: %w", path, err)
	}

	return b.openFile(path)
}

// looksLikeURL reports whether target starts with something shaped like a scheme,
// for inputs url.Parse rejects.
func looksLikeURL(target string) bool {
	scheme, _, ok := strings.Cut(target, ":")
	if !ok || len(scheme) < 2 {
		return false
	}

	for i, c := range scheme {
		isLetter := (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
		if !isLetter && (i == 0 || !(c >= '0' && c <= '9' || c == '+' || c == '-' || c == '.')) {
			return false
		}
	}

	return true
}
