// Package window models the window-manager handoff between the container and
// a host GUI layer. The core registers window declarations as value providers
// keyed by a hash string; the host turns a Registration into an actual window
// through a Factory and gets handle caching from Cache. No GUI toolkit is
// bound here.
package window

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/trae-op/electron-modular/di"
	"github.com/trae-op/electron-modular/settings"
)

// Config declares one window: its addressable hash and the presentation
// parameters the host needs to create it.
type Config struct {
	Hash      string
	Name      string
	Width     int
	Height    int
	Frameless bool
	Params    map[string]string
}

// Registration pairs a window configuration with the manager constructor the
// host GUI layer instantiates for it.
type Registration struct {
	Config Config
	New    any
}

// Token returns the container token addressing a window registration by hash.
func Token(hash string) di.Token {
	return di.Name("window:" + hash)
}

// PageURL derives the URL a window should load: the localhost dev server
// when a port is configured, otherwise the built renderer bundle on disk.
func PageURL(s *settings.Settings, cfg Config) string {
	if s.LocalhostPort > 0 {
		return fmt.Sprintf("http://localhost:%d/%s", s.LocalhostPort, cfg.Name)
	}
	return "file://" + filepath.Join(s.Folders.DistRenderer, cfg.Name+".html")
}

// CSP builds the Content-Security-Policy header value for window content,
// extending connect-src with the configured extra sources.
func CSP(s *settings.Settings) string {
	connect := append([]string{"'self'"}, s.CSPConnectSources...)
	return fmt.Sprintf("default-src 'self'; script-src 'self'; connect-src %s", strings.Join(connect, " "))
}
