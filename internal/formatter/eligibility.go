package formatter

import (
	"fmt"
	"path/filepath"

	"github.com/dshills/keyfmt/internal/config"
	"github.com/dshills/keyfmt/internal/language"
)

// Eligibility is the outcome of CanFormat.
type Eligibility struct {
	OK bool
	// Language is set when OK.
	Language language.Language
	// Reason explains why formatting is not possible.
	Reason string
}

func ineligible(format string, args ...any) Eligibility {
	return Eligibility{Reason: fmt.Sprintf(format, args...)}
}

// CanFormat reports whether doc can be formatted with profile. It has no side
// effects and drives command enablement as well as the first stage of Format.
func CanFormat(doc Document, profile config.Profile, selectionOnly bool) Eligibility {
	if doc == nil {
		return ineligible("no active document")
	}
	if doc.ReadOnly() {
		return ineligible("document is read-only")
	}
	if kind := doc.Kind(); kind != "text" {
		return ineligible("document kind %q is not text", kind)
	}

	lang, ok := language.Detect(doc.Path())
	if !ok {
		return ineligible("unsupported file type %q", filepath.Ext(doc.Path()))
	}
	if !profile.LanguageFilter.Allows(lang) {
		return ineligible("language %s is excluded by filter %s", lang.Tag, profile.LanguageFilter)
	}
	if selectionOnly && doc.Selection().IsEmpty() {
		return ineligible("selection is empty")
	}
	return Eligibility{OK: true, Language: lang}
}

// Commands reports which format commands are enabled for doc.
type Commands struct {
	Document  Eligibility
	Selection Eligibility
}

// CheckCommands evaluates both format commands for doc.
func CheckCommands(doc Document, profile config.Profile) Commands {
	return Commands{
		Document:  CanFormat(doc, profile, false),
		Selection: CanFormat(doc, profile, true),
	}
}
