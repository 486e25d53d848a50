// Package config loads the engine's KDL configuration file, adapting
// the teacher's hand-rolled KDL-document-walk pattern to the engine's
// much smaller tuning surface: sorting-pool bounds, the initial
// threading flag, and an optional file-watch block.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	kdl "github.com/sblinch/kdl-go"
	"github.com/sblinch/kdl-go/document"

	"github.com/standardbeagle/complete-engine/internal/engine"
)

// Watch configures the optional fsnotify bridge (internal/watch).
type Watch struct {
	Enabled     bool
	Roots       []string
	DebounceMs  int
	GlobPattern string
}

// Config is the on-disk configuration shape: the engine's tuning
// surface plus the optional watch block.
type Config struct {
	Engine engine.Config
	Watch  Watch
}

// Default returns the built-in defaults used when no .complete.kdl
// file is present.
func Default() Config {
	return Config{
		Engine: engine.DefaultConfig(),
		Watch: Watch{
			Enabled:     false,
			DebounceMs:  100,
			GlobPattern: "**/*.{cc,cpp,cxx,h,hpp}",
		},
	}
}

// Load reads ".complete.kdl" from projectRoot. A missing file is not
// an error: it returns Default().
func Load(projectRoot string) (Config, error) {
	path := filepath.Join(projectRoot, ".complete.kdl")
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return Default(), nil
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	return parseKDL(string(content))
}

func parseKDL(content string) (Config, error) {
	cfg := Default()

	doc, err := kdl.Parse(strings.NewReader(content))
	if err != nil {
		return Config{}, fmt.Errorf("config: parse kdl: %w", err)
	}

	for _, n := range doc.Nodes {
		switch nodeName(n) {
		case "threading":
			for _, cn := range n.Children {
				switch nodeName(cn) {
				case "min_async_threads":
					if v, ok := firstIntArg(cn); ok {
						cfg.Engine.MinAsyncThreads = v
					}
				case "max_async_threads":
					if v, ok := firstIntArg(cn); ok {
						cfg.Engine.MaxAsyncThreads = v
					}
				case "enabled_initially":
					if b, ok := firstBoolArg(cn); ok {
						cfg.Engine.ThreadingEnabledInitially = b
					}
				}
			}
		case "watch":
			for _, cn := range n.Children {
				switch nodeName(cn) {
				case "enabled":
					if b, ok := firstBoolArg(cn); ok {
						cfg.Watch.Enabled = b
					}
				case "debounce_ms":
					if v, ok := firstIntArg(cn); ok {
						cfg.Watch.DebounceMs = v
					}
				case "glob":
					if s, ok := firstStringArg(cn); ok {
						cfg.Watch.GlobPattern = s
					}
				case "roots":
					cfg.Watch.Roots = collectStringArgs(cn)
				}
			}
		}
	}

	if cfg.Engine.MinAsyncThreads < 1 {
		cfg.Engine.MinAsyncThreads = 1
	}
	if cfg.Engine.MaxAsyncThreads < cfg.Engine.MinAsyncThreads {
		cfg.Engine.MaxAsyncThreads = cfg.Engine.MinAsyncThreads
	}

	return cfg, nil
}

// Helper functions adapted from the teacher's KDL config loader,
// walking the kdl-go document model directly rather than using
// reflection-based unmarshalling.
func nodeName(n *document.Node) string {
	if n == nil || n.Name == nil {
		return ""
	}
	return n.Name.NodeNameString()
}

func firstIntArg(n *document.Node) (int, bool) {
	if len(n.Arguments) == 0 {
		return 0, false
	}
	switch v := n.Arguments[0].Value.(type) {
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	default:
		return 0, false
	}
}

func firstStringArg(n *document.Node) (string, bool) {
	if len(n.Arguments) == 0 {
		return "", false
	}
	if s, ok := n.Arguments[0].Value.(string); ok {
		return s, true
	}
	return "", false
}

func firstBoolArg(n *document.Node) (bool, bool) {
	if len(n.Arguments) == 0 {
		return false, false
	}
	if b, ok := n.Arguments[0].Value.(bool); ok {
		return b, true
	}
	return false, false
}

func collectStringArgs(n *document.Node) []string {
	if n == nil {
		return nil
	}
	out := make([]string, 0, len(n.Arguments))
	for _, a := range n.Arguments {
		if s, ok := a.Value.(string); ok {
			out = append(out, s)
		}
	}
	if len(out) == 0 && len(n.Children) > 0 {
		out = make([]string, 0, len(n.Children))
		for _, child := range n.Children {
			if s, ok := firstStringArg(child); ok {
				out = append(out, s)
			} else if child.Name != nil {
				if s, ok := child.Name.Value.(string); ok {
					out = append(out, s)
				}
			}
		}
	}
	return out
}
