package style

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/kerf-editor/kerf/internal/logger"
)

const (
	// DefaultCacheTimeout bounds how often configuration files are re-read
	// during rapid typing.
	DefaultCacheTimeout = time.Second

	// CacheTimeoutEnv overrides the cache TTL with a millisecond integer,
	// mainly for tests. Non-numeric or absent values keep the default.
	CacheTimeoutEnv = "KERF_STYLE_CACHE_TIMEOUT"

	configFileName    = ".clang-format"
	configFileAltName = "_clang-format"
)

type cacheEntry struct {
	style   *Style
	expires time.Time
}

// Resolver resolves the effective style per file path with a TTL cache.
// Safe for concurrent use; the config watcher invalidates entries from its
// own goroutine.
type Resolver struct {
	mu        sync.Mutex
	ttl       time.Duration
	overrides map[string]*Style
	cache     map[string]cacheEntry
	lastError string
	now       func() time.Time

	// onConfigFile is notified with every config file path a resolution
	// actually read, so a watcher can track it.
	onConfigFile func(path string)
}

// NewResolver creates a resolver with the TTL taken from the environment
// override or the default.
func NewResolver() *Resolver {
	return &Resolver{
		ttl:       cacheTimeout(),
		overrides: make(map[string]*Style),
		cache:     make(map[string]cacheEntry),
		now:       time.Now,
	}
}

func cacheTimeout() time.Duration {
	if v := os.Getenv(CacheTimeoutEnv); v != "" {
		if ms, err := strconv.Atoi(v); err == nil {
			return time.Duration(ms) * time.Millisecond
		}
	}
	return DefaultCacheTimeout
}

// SetOverride pins an explicit style for a file. Overrides never expire and
// take precedence over everything else.
func (r *Resolver) SetOverride(filePath string, s *Style) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s == nil {
		delete(r.overrides, filePath)
	} else {
		r.overrides[filePath] = s
	}
	delete(r.cache, filePath)
}

// ClearOverride removes an explicit override.
func (r *Resolver) ClearOverride(filePath string) {
	r.SetOverride(filePath, nil)
}

// Invalidate drops the cached entry for one file.
func (r *Resolver) Invalidate(filePath string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.cache, filePath)
}

// InvalidateAll drops every cached entry. Used when a watched config file
// changes, since several files may share one config.
func (r *Resolver) InvalidateAll() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cache = make(map[string]cacheEntry)
}

func (r *Resolver) setCache(filePath string, s *Style, ttl time.Duration) {
	r.cache[filePath] = cacheEntry{style: s, expires: r.now().Add(ttl)}
}

// StyleFor resolves the effective style for a file. It never fails: a
// malformed or missing configuration degrades to the built-in default.
func (r *Resolver) StyleFor(filePath string) *Style {
	r.mu.Lock()
	defer r.mu.Unlock()

	if s, ok := r.overrides[filePath]; ok {
		return s
	}
	if entry, ok := r.cache[filePath]; ok && r.now().Before(entry.expires) {
		return entry.style
	}

	if settingsPath := FindSettings(filePath); settingsPath != "" {
		s := r.settingsStyle(settingsPath)
		AddStatementMacros(s)
		r.setCache(filePath, s, r.ttl)
		return s
	}

	if configPath := findConfig(filePath); configPath != "" {
		s, err := parseConfigFile(configPath)
		if err == nil {
			if r.onConfigFile != nil {
				r.onConfigFile(configPath)
			}
			AddStatementMacros(s)
			r.setCache(filePath, s, r.ttl)
			return s
		}
		r.reportConfigError(configPath, err)
	}

	// The default is cached with a zero TTL: the next request looks for a
	// config file again, so a freshly created one is picked up immediately.
	s := Default()
	r.setCache(filePath, s, 0)
	return s
}

// reportConfigError surfaces a one-line diagnostic, suppressing repeats of
// the identical error between keystrokes.
func (r *Resolver) reportConfigError(configPath string, err error) {
	msg := fmt.Sprintf("%s: %v", configPath, err)
	if msg == r.lastError {
		return
	}
	r.lastError = msg
	logger.Warnf("style: failed to parse config %s, falling back to default style: %v", configPath, err)
}

// settingsStyle builds a style from a kerf settings file, degrading to the
// default on parse failure.
func (r *Resolver) settingsStyle(settingsPath string) *Style {
	settings, err := LoadSettings(settingsPath)
	if err != nil {
		r.reportConfigError(settingsPath, err)
		return Default()
	}
	if r.onConfigFile != nil {
		r.onConfigFile(settingsPath)
	}
	return settings.EffectiveStyle()
}

// findConfig searches the file's ancestor directories for an engine
// configuration file. Absence is not an error.
func findConfig(filePath string) string {
	dir := filepath.Dir(filePath)
	for {
		for _, name := range []string{configFileName, configFileAltName} {
			candidate := filepath.Join(dir, name)
			if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
				return candidate
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

func parseConfigFile(configPath string) (*Style, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	s := Default()
	if err := yaml.Unmarshal(data, s); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return s, nil
}
