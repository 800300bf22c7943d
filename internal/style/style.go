// Package style resolves the effective formatting style for a file and
// caches it between keystrokes. Precedence: explicit override, unexpired
// cache entry, per-project settings file, discovered .clang-format config,
// built-in default.
package style

import "gopkg.in/yaml.v3"

// Style is the set of formatting parameters handed to the reformat engine.
// Field names and YAML keys follow the engine's configuration schema so a
// discovered config file decodes directly into it.
type Style struct {
	BasedOnStyle          string `yaml:"BasedOnStyle,omitempty" toml:"based_on_style"`
	Language              string `yaml:"Language,omitempty" toml:"language"`
	ColumnLimit           int    `yaml:"ColumnLimit" toml:"column_limit"`
	IndentWidth           int    `yaml:"IndentWidth" toml:"indent_width"`
	TabWidth              int    `yaml:"TabWidth" toml:"tab_width"`
	UseTab                string `yaml:"UseTab" toml:"use_tab"`
	MaxEmptyLinesToKeep   int    `yaml:"MaxEmptyLinesToKeep" toml:"max_empty_lines_to_keep"`
	SortIncludes          string `yaml:"SortIncludes" toml:"sort_includes"`
	SortUsingDeclarations string `yaml:"SortUsingDeclarations" toml:"sort_using_declarations"`
	FixNamespaceComments  bool   `yaml:"FixNamespaceComments" toml:"fix_namespace_comments"`
	AlignTrailingComments string `yaml:"AlignTrailingComments" toml:"align_trailing_comments"`
	BreakBeforeBraces     string `yaml:"BreakBeforeBraces,omitempty" toml:"break_before_braces"`
	IndentCaseLabels      bool   `yaml:"IndentCaseLabels" toml:"indent_case_labels"`

	StatementMacros              []string `yaml:"StatementMacros,omitempty" toml:"statement_macros"`
	StatementAttributeLikeMacros []string `yaml:"StatementAttributeLikeMacros,omitempty" toml:"statement_attribute_like_macros"`
}

// Clone returns a deep copy; callers adjust styles per request and must not
// mutate the cached instance.
func (s *Style) Clone() *Style {
	cp := *s
	cp.StatementMacros = append([]string(nil), s.StatementMacros...)
	cp.StatementAttributeLikeMacros = append([]string(nil), s.StatementAttributeLikeMacros...)
	return &cp
}

// MarshalEngineConfig renders the style as the engine's YAML configuration
// document. Satisfies engine.StyleSource.
func (s *Style) MarshalEngineConfig() ([]byte, error) {
	return yaml.Marshal(s)
}

// Default returns the built-in style used when nothing else resolves.
func Default() *Style {
	return &Style{
		ColumnLimit:           100,
		IndentWidth:           4,
		TabWidth:              4,
		UseTab:                "Never",
		MaxEmptyLinesToKeep:   1,
		SortIncludes:          "CaseSensitive",
		SortUsingDeclarations: "Lexicographic",
		FixNamespaceComments:  true,
		AlignTrailingComments: "Always",
		BreakBeforeBraces:     "Attach",
	}
}

// statementMacros are identifiers the engine should treat as complete
// statements even though they look like calls without a semicolon. The
// table targets Qt-flavored C/C++ sources, which is what the subprocess
// engine binding formats.
var statementMacros = []string{
	"Q_CLASSINFO",
	"Q_ENUM",
	"Q_ENUM_NS",
	"Q_FLAG",
	"Q_FLAG_NS",
	"Q_GADGET",
	"Q_GADGET_EXPORT",
	"Q_INTERFACES",
	"Q_LOGGING_CATEGORY",
	"Q_MOC_INCLUDE",
	"Q_NAMESPACE",
	"Q_NAMESPACE_EXPORT",
	"Q_OBJECT",
	"Q_PROPERTY",
	"Q_REVISION",
	"Q_DISABLE_COPY",
	"Q_SET_OBJECT_NAME",
	"QT_BEGIN_NAMESPACE",
	"QT_END_NAMESPACE",
	"QML_ADDED_IN_MINOR_VERSION",
	"QML_ANONYMOUS",
	"QML_ATTACHED",
	"QML_DECLARE_TYPE",
	"QML_DECLARE_TYPEINFO",
	"QML_ELEMENT",
	"QML_EXTENDED",
	"QML_EXTENDED_NAMESPACE",
	"QML_EXTRA_VERSION",
	"QML_FOREIGN",
	"QML_FOREIGN_NAMESPACE",
	"QML_IMPLEMENTS_INTERFACES",
	"QML_INTERFACE",
	"QML_NAMED_ELEMENT",
	"QML_REMOVED_IN_MINOR_VERSION",
	"QML_SINGLETON",
	"QML_UNAVAILABLE",
	"QML_UNCREATABLE",
	"QML_VALUE_TYPE",
}

var attributeLikeMacros = []string{"emit", "Q_EMIT"}

// AddStatementMacros merges the fixed macro tables into the style.
// Idempotent: macros already present are not duplicated.
func AddStatementMacros(s *Style) {
	s.StatementMacros = mergeUnique(s.StatementMacros, statementMacros)
	s.StatementAttributeLikeMacros = mergeUnique(s.StatementAttributeLikeMacros, attributeLikeMacros)
}

func mergeUnique(existing, add []string) []string {
	seen := make(map[string]struct{}, len(existing))
	for _, m := range existing {
		seen[m] = struct{}{}
	}
	for _, m := range add {
		if _, ok := seen[m]; !ok {
			existing = append(existing, m)
			seen[m] = struct{}{}
		}
	}
	return existing
}
