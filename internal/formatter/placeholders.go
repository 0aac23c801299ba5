package formatter

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/mattn/go-shellwords"

	"github.com/dshills/keyfmt/internal/config"
)

// FragmentFlag is appended when formatting a selection.
const FragmentFlag = "--frag"

// Vars are the values substituted into a command line template.
type Vars struct {
	ConfigFile string // %CFGFILE%
	File       string // %FILE%, the transient file
	FileName   string // %FILENAME%, base name of the document
	FileDir    string // %FILE_DIR%, directory of the document
	Language   string // %LANGUAGE%
	Solution   string // %SOLUTION%, the workspace
}

// Expand substitutes placeholders in s in a single pass, so a value that
// contains another placeholder name is not expanded again.
func (v Vars) Expand(s string) string {
	return strings.NewReplacer(
		"%CFGFILE%", v.ConfigFile,
		"%FILENAME%", v.FileName,
		"%FILE_DIR%", v.FileDir,
		"%FILE%", v.File,
		"%LANGUAGE%", v.Language,
		"%SOLUTION%", v.Solution,
	).Replace(s)
}

// BuildArgs turns the profile's command line into argv. The template is
// split into words first, so substituted paths containing spaces or quotes
// stay single arguments.
func BuildArgs(profile config.Profile, vars Vars, selectionOnly bool) ([]string, error) {
	words, err := shellwords.Parse(profile.CommandLine)
	if err != nil {
		return nil, fmt.Errorf("parse command line %q: %w", profile.CommandLine, err)
	}

	args := make([]string, 0, len(words)+1)
	for _, w := range words {
		args = append(args, vars.Expand(w))
	}
	if selectionOnly && profile.FragmentFormatting {
		args = append(args, FragmentFlag)
	}
	return args, nil
}

func varsFor(doc Document, profile config.Profile, lang, file, workspace string) Vars {
	v := Vars{
		ConfigFile: profile.ConfigFile,
		File:       file,
		Language:   lang,
		Solution:   workspace,
	}
	if p := doc.Path(); p != "" {
		v.FileName = filepath.Base(p)
		v.FileDir = filepath.Dir(p)
	}
	return v
}
