// Package security provides an opt-in file-access control layer for tools
// that read user-supplied paths. It is enabled by naming "security" in
// ENABLE_ADDITIONAL_TOOLS; without it every check passes.
package security

import (
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/docworks/mcp-docworks/internal/tools"
)

// AccessDeniedError reports a path blocked by the deny list.
type AccessDeniedError struct {
	Path    string
	Pattern string
}

func (e *AccessDeniedError) Error() string {
	return fmt.Sprintf("access to %s denied by security policy (pattern %q)", e.Path, e.Pattern)
}

// Manager evaluates file-access checks against loaded rules.
type Manager struct {
	mu    sync.RWMutex
	rules *Rules
	deny  []pathMatcher
}

var (
	globalManager *Manager
	globalMu      sync.RWMutex
)

// NewManager builds a manager from rules, compiling the deny patterns once.
func NewManager(rules *Rules) *Manager {
	m := &Manager{rules: rules}
	m.deny = compileFilePatterns(rules.AccessControl.DenyFiles)
	return m
}

// Reload swaps in a new rule set. Used by the config watcher.
func (m *Manager) Reload(rules *Rules) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rules = rules
	m.deny = compileFilePatterns(rules.AccessControl.DenyFiles)
}

// CheckFileAccess returns an AccessDeniedError when path matches a deny
// pattern.
func (m *Manager) CheckFileAccess(path string) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, matcher := range m.deny {
		if matcher.Match(path) {
			return &AccessDeniedError{Path: path, Pattern: matcher.Pattern()}
		}
	}
	return nil
}

// InitGlobal loads rules from the default config location and installs the
// global manager. A missing or broken config never fails startup; the
// security layer just stays off.
func InitGlobal(logger *logrus.Logger) error {
	globalMu.Lock()
	defer globalMu.Unlock()

	if globalManager != nil {
		return nil
	}
	if !tools.IsToolEnabled("security") {
		logger.Debug("Security layer not enabled")
		return nil
	}

	rules, err := LoadRules(DefaultConfigPath())
	if err != nil {
		logger.WithError(err).Warn("Failed to load security rules, continuing without security")
		return nil
	}
	if !rules.Enabled {
		logger.Debug("Security rules present but disabled")
		return nil
	}

	globalManager = NewManager(rules)
	logger.WithField("deny_patterns", len(rules.AccessControl.DenyFiles)).Debug("Security layer initialised")

	if rules.AutoReload {
		if err := watchConfig(globalManager, DefaultConfigPath(), logger); err != nil {
			logger.WithError(err).Warn("Security config watcher failed to start")
		}
	}
	return nil
}

// CheckFileAccess consults the global manager; a nil manager allows
// everything.
func CheckFileAccess(path string) error {
	globalMu.RLock()
	m := globalManager
	globalMu.RUnlock()

	if m == nil {
		return nil
	}
	return m.CheckFileAccess(path)
}

// ResetGlobal clears the global manager. Test hook.
func ResetGlobal() {
	globalMu.Lock()
	globalManager = nil
	globalMu.Unlock()
}
