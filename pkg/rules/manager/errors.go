package manager

import (
	"errors"
	"fmt"

	ruleErrors "mercator-hq/urlcat/pkg/rules/errors"
)

// ErrNotLoaded is returned when no ruleset has been loaded yet.
var ErrNotLoaded = errors.New("no ruleset loaded")

// StrictError rejects a rule file that has lint warnings while strict mode is on.
type StrictError struct {
	Path     string
	Warnings []*ruleErrors.Error
}

// Error implements the error interface.
func (e *StrictError) Error() string {
	return fmt.Sprintf("rules %s rejected in strict mode: %d lint warning(s), first: %s",
		e.Path, len(e.Warnings), e.Warnings[0].Message)
}
