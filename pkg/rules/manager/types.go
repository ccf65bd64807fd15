package manager

import (
	"time"

	"mercator-hq/urlcat/pkg/categorizer"
	"mercator-hq/urlcat/pkg/rules/ast"
	ruleErrors "mercator-hq/urlcat/pkg/rules/errors"
)

// Ruleset is one loaded version of the rule file. It is immutable.
type Ruleset struct {
	// ID uniquely identifies this load.
	ID string

	// Root is the parsed rule tree.
	Root *ast.Root

	// Evaluator evaluates URLs against Root.
	Evaluator *categorizer.Evaluator

	// Path is the rule file the ruleset was loaded from.
	Path string

	// LoadedAt is when the ruleset became active.
	LoadedAt time.Time

	// Checksum is the hex SHA-256 of the raw file contents.
	Checksum string

	// Warnings are the lint findings of the rule file.
	Warnings []*ruleErrors.Error
}

// Info is the serializable summary of a Ruleset.
type Info struct {
	ID         string    `json:"id"`
	Path       string    `json:"path"`
	LoadedAt   time.Time `json:"loaded_at"`
	Checksum   string    `json:"checksum"`
	Segments   []string  `json:"segments"`
	Categories int       `json:"categories"`
	Warnings   []string  `json:"warnings"`
}

// Info summarizes the ruleset.
func (rs *Ruleset) Info() Info {
	warnings := make([]string, len(rs.Warnings))
	for i, w := range rs.Warnings {
		warnings[i] = w.Error()
	}
	return Info{
		ID:         rs.ID,
		Path:       rs.Path,
		LoadedAt:   rs.LoadedAt,
		Checksum:   rs.Checksum,
		Segments:   rs.Root.SegmentNames(),
		Categories: rs.Root.CategoryCount(),
		Warnings:   warnings,
	}
}

// Recorder receives manager and evaluation telemetry.
type Recorder interface {
	categorizer.Recorder
	RecordReload(status string, segments, categories int)
}
