// Package language maps document file names to formatter language tags and
// models the per-profile language filter.
package language

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
)

// Filter restricts whole-document formatting to one language family.
type Filter int

const (
	// All disables filtering.
	All Filter = iota
	// Cpp matches C and C++ documents.
	Cpp
	// Cs matches C# documents.
	Cs
	// D matches D documents.
	D
	// Java matches Java documents.
	Java
)

var filterNames = map[Filter]string{
	All:  "all",
	Cpp:  "cpp",
	Cs:   "cs",
	D:    "d",
	Java: "java",
}

var filterDescriptions = map[Filter]string{
	All:  "<All languages>",
	Cpp:  "C/C++",
	Cs:   "C#",
	D:    "D",
	Java: "Java",
}

// String returns the configuration name of the filter.
func (f Filter) String() string {
	if name, ok := filterNames[f]; ok {
		return name
	}
	return fmt.Sprintf("filter(%d)", int(f))
}

// Description returns the display name of the filter.
func (f Filter) Description() string {
	if d, ok := filterDescriptions[f]; ok {
		return d
	}
	return f.String()
}

// Allows reports whether a document of language l passes the filter.
func (f Filter) Allows(l Language) bool {
	return f == All || f == l.Filter
}

// ParseFilter parses a filter name. Matching is case-insensitive and accepts
// the display names as well ("C/C++", "C#").
func ParseFilter(s string) (Filter, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return All, nil
	}
	for f, name := range filterNames {
		if strings.EqualFold(s, name) || strings.EqualFold(s, filterDescriptions[f]) {
			return f, nil
		}
	}
	return All, fmt.Errorf("unknown language filter %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (f Filter) MarshalText() ([]byte, error) {
	if _, ok := filterNames[f]; !ok {
		return nil, fmt.Errorf("unknown language filter %d", int(f))
	}
	return []byte(f.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (f *Filter) UnmarshalText(text []byte) error {
	parsed, err := ParseFilter(string(text))
	if err != nil {
		return err
	}
	*f = parsed
	return nil
}

// Filters returns all filters in declaration order.
func Filters() []Filter {
	return []Filter{All, Cpp, Cs, D, Java}
}

// Language is a formatter language: its filter family and the tag passed to
// the formatter through the %LANGUAGE% placeholder.
type Language struct {
	Filter Filter
	Tag    string
}

// IsZero reports whether the language is unset.
func (l Language) IsZero() bool {
	return l.Tag == ""
}

func (l Language) String() string {
	return l.Tag
}

var tags = map[Filter]string{
	All:  "OTHER",
	Cpp:  "CPP",
	Cs:   "CSharp",
	D:    "D",
	Java: "JAVA",
}

var extensions = map[string]Filter{
	".c":    Cpp,
	".cpp":  Cpp,
	".h":    Cpp,
	".cs":   Cs,
	".d":    D,
	".java": Java,
}

// ForFilter returns the language registered for a filter family.
func ForFilter(f Filter) Language {
	return Language{Filter: f, Tag: tags[f]}
}

// Detect returns the language for a document path based on its extension.
func Detect(path string) (Language, bool) {
	ext := strings.ToLower(filepath.Ext(path))
	f, ok := extensions[ext]
	if !ok {
		return Language{}, false
	}
	return ForFilter(f), true
}

// Extensions returns the known extensions, sorted.
func Extensions() []string {
	exts := make([]string, 0, len(extensions))
	for ext := range extensions {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}
