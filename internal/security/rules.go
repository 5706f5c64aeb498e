package security

import (
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Rules is the on-disk security configuration.
type Rules struct {
	Enabled       bool          `yaml:"enabled"`
	AutoReload    bool          `yaml:"auto_reload"`
	AccessControl AccessControl `yaml:"access_control"`
}

// AccessControl lists the paths tools may never touch. Patterns may be
// literal paths, shell globs, or directories (matched by prefix); a leading
// ~/ expands to the user's home directory.
type AccessControl struct {
	DenyFiles []string `yaml:"deny_files"`
}

// DefaultConfigPath returns the standard rules location, honouring the
// DOCWORKS_SECURITY_CONFIG override.
func DefaultConfigPath() string {
	if p := os.Getenv("DOCWORKS_SECURITY_CONFIG"); p != "" {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".mcp-docworks", "security.yaml")
}

// LoadRules reads rules from path, falling back to the built-in defaults
// when no config file exists.
func LoadRules(path string) (*Rules, error) {
	if path == "" {
		return defaultRules(), nil
	}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return defaultRules(), nil
	}
	if err != nil {
		return nil, err
	}

	var rules Rules
	if err := yaml.Unmarshal(data, &rules); err != nil {
		return nil, err
	}
	return &rules, nil
}

// defaultRules blocks the usual credential material.
func defaultRules() *Rules {
	return &Rules{
		Enabled: true,
		AccessControl: AccessControl{
			DenyFiles: []string{
				"~/.ssh",
				"~/.aws/credentials",
				"~/.gnupg",
				"*.pem",
				"*.key",
				"/etc/shadow",
			},
		},
	}
}

// pathMatcher matches a candidate path against one deny pattern.
type pathMatcher interface {
	Match(path string) bool
	Pattern() string
}

// compileFilePatterns expands and classifies each pattern.
func compileFilePatterns(patterns []string) []pathMatcher {
	matchers := make([]pathMatcher, 0, len(patterns))
	for _, p := range patterns {
		expanded := expandHome(p)
		if strings.ContainsAny(expanded, "*?[") {
			matchers = append(matchers, globMatcher{pattern: expanded, raw: p})
		} else {
			matchers = append(matchers, prefixMatcher{pattern: filepath.Clean(expanded), raw: p})
		}
	}
	return matchers
}

type globMatcher struct {
	pattern string
	raw     string
}

func (g globMatcher) Match(path string) bool {
	path = filepath.Clean(expandHome(path))
	if ok, _ := filepath.Match(g.pattern, path); ok {
		return true
	}
	// Also match against the basename so "*.pem" blocks any directory.
	ok, _ := filepath.Match(g.pattern, filepath.Base(path))
	return ok
}

func (g globMatcher) Pattern() string { return g.raw }

// prefixMatcher matches the exact path or anything beneath it.
type prefixMatcher struct {
	pattern string
	raw     string
}

func (p prefixMatcher) Match(path string) bool {
	path = filepath.Clean(expandHome(path))
	if path == p.pattern {
		return true
	}
	return strings.HasPrefix(path, p.pattern+string(filepath.Separator))
}

func (p prefixMatcher) Pattern() string { return p.raw }

func expandHome(path string) string {
	if strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[2:])
		}
	}
	return path
}
