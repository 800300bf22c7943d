package style

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/kerf-editor/kerf/internal/logger"
)

// SettingsFileName is the per-project settings file. A kerf.toml anywhere in
// a file's ancestor directories takes precedence over a discovered engine
// config, matching the custom-settings-over-discovery precedence.
const SettingsFileName = "kerf.toml"

// appName names the per-user config directory for the global fallback file.
const appName = "kerf"

// Settings is the decoded kerf.toml.
type Settings struct {
	Style  Style          `toml:"style"`
	Engine EngineSettings `toml:"engine"`
}

// EngineSettings configures the external engine binding.
type EngineSettings struct {
	Binary string `toml:"binary"` // path to the reformat executable
}

// FindSettings looks for a settings file near the given file: first the
// ancestor directories, then the user's config directory. Returns "" when
// there is none.
func FindSettings(filePath string) string {
	dir := filepath.Dir(filePath)
	for {
		candidate := filepath.Join(dir, SettingsFileName)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	if configDir, err := os.UserConfigDir(); err == nil {
		candidate := filepath.Join(configDir, appName, SettingsFileName)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate
		}
	}
	return ""
}

// LoadSettings parses a settings file.
func LoadSettings(settingsPath string) (*Settings, error) {
	settings := &Settings{}
	metadata, err := toml.DecodeFile(settingsPath, settings)
	if err != nil {
		return nil, fmt.Errorf("failed to parse settings file '%s': %w", settingsPath, err)
	}
	if undecoded := metadata.Undecoded(); len(undecoded) > 0 {
		logger.Warnf("Settings file '%s': unrecognized keys: %v", settingsPath, undecoded)
	}
	return settings, nil
}

// EffectiveStyle merges the settings' style section over the built-in
// default. Zero values keep the default.
func (s *Settings) EffectiveStyle() *Style {
	out := Default()
	set := &s.Style
	if set.BasedOnStyle != "" {
		out.BasedOnStyle = set.BasedOnStyle
	}
	if set.Language != "" {
		out.Language = set.Language
	}
	if set.ColumnLimit > 0 {
		out.ColumnLimit = set.ColumnLimit
	}
	if set.IndentWidth > 0 {
		out.IndentWidth = set.IndentWidth
	}
	if set.TabWidth > 0 {
		out.TabWidth = set.TabWidth
	}
	if set.UseTab != "" {
		out.UseTab = set.UseTab
	}
	if set.MaxEmptyLinesToKeep > 0 {
		out.MaxEmptyLinesToKeep = set.MaxEmptyLinesToKeep
	}
	if set.SortIncludes != "" {
		out.SortIncludes = set.SortIncludes
	}
	if set.SortUsingDeclarations != "" {
		out.SortUsingDeclarations = set.SortUsingDeclarations
	}
	if set.AlignTrailingComments != "" {
		out.AlignTrailingComments = set.AlignTrailingComments
	}
	if set.BreakBeforeBraces != "" {
		out.BreakBeforeBraces = set.BreakBeforeBraces
	}
	if len(set.StatementMacros) > 0 {
		out.StatementMacros = mergeUnique(out.StatementMacros, set.StatementMacros)
	}
	return out
}
