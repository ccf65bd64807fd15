package categorizer

import (
	"fmt"
	"log/slog"
	"time"

	"mercator-hq/urlcat/pkg/rules/ast"
	ruleErrors "mercator-hq/urlcat/pkg/rules/errors"
)

// NoMatch is the category reported for a segment where no category matched.
const NoMatch = "no_match"

// Result is the classification of one URL along one segment.
type Result struct {
	Segment  string `json:"segment"`
	Category string `json:"category"`
	Matched  bool   `json:"matched"`
}

// Recorder receives evaluation telemetry. Implementations must be safe for concurrent use.
type Recorder interface {
	RecordEvaluation(results []Result, duration time.Duration)
	RecordEvaluationError(kind string)
}

// Evaluator evaluates URLs against one immutable rule tree.
type Evaluator struct {
	root     *ast.Root
	logger   *slog.Logger
	recorder Recorder
}

// Option configures an Evaluator.
type Option func(*Evaluator)

// WithLogger sets the logger used for per-URL debug output.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Evaluator) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithRecorder sets the telemetry recorder.
func WithRecorder(recorder Recorder) Option {
	return func(e *Evaluator) {
		e.recorder = recorder
	}
}

// New creates an evaluator for root. The tree must not be modified afterwards.
func New(root *ast.Root, opts ...Option) *Evaluator {
	e := &Evaluator{
		root:   root,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Root returns the rule tree the evaluator walks.
func (e *Evaluator) Root() *ast.Root {
	return e.root
}

// Evaluate is a convenience function that evaluates one URL without telemetry.
func Evaluate(root *ast.Root, rawURL string) ([]Result, error) {
	return New(root).Evaluate(rawURL)
}

// Evaluate classifies rawURL along every segment, in segment declaration order.
func (e *Evaluator) Evaluate(rawURL string) ([]Result, error) {
	u, err := Decompose(rawURL)
	if err != nil {
		e.recordError("url")
		return nil, err
	}
	return e.EvaluateURL(u)
}

// EvaluateURL classifies an already decomposed URL.
func (e *Evaluator) EvaluateURL(u *URL) ([]Result, error) {
	start := time.Now()

	results := make([]Result, 0, len(e.root.Segments))
	for _, segment := range e.root.Segments {
		result, err := e.evaluateSegment(segment, u)
		if err != nil {
			e.recordError("selector")
			return nil, err
		}
		results = append(results, result)
	}

	if e.recorder != nil {
		e.recorder.RecordEvaluation(results, time.Since(start))
	}

	return results, nil
}

// evaluateSegment returns the first matching category of the segment.
func (e *Evaluator) evaluateSegment(segment *ast.Segment, u *URL) (Result, error) {
	for _, category := range segment.Categories {
		matched, err := e.matchCategory(category, u)
		if err != nil {
			return Result{}, err
		}
		if matched {
			e.logger.Debug("segment matched",
				"url", u.Raw,
				"segment", segment.Name,
				"category", category.Name,
			)
			return Result{Segment: segment.Name, Category: category.Name, Matched: true}, nil
		}
	}

	e.logger.Debug("segment not matched", "url", u.Raw, "segment", segment.Name)
	return Result{Segment: segment.Name, Category: NoMatch}, nil
}

// matchCategory evaluates the category's matches as an implicit AND.
func (e *Evaluator) matchCategory(category *ast.Category, u *URL) (bool, error) {
	for _, match := range category.Matches {
		matched, err := e.match(match, u)
		if err != nil {
			return false, err
		}
		if !matched {
			return false, nil
		}
	}
	return len(category.Matches) > 0, nil
}

// match evaluates a match node.
func (e *Evaluator) match(node *ast.MatchNode, u *URL) (bool, error) {
	switch node.Type {
	case ast.MatchTypePredicate:
		return e.matchPredicate(node, u)

	case ast.MatchTypeBoolean:
		switch node.Op {
		case ast.BoolOpAnd:
			return e.matchAll(node, u)
		case ast.BoolOpOr:
			return e.matchAny(node, u)
		}
		return false, fmt.Errorf("%s: unknown boolean operator %q", node.Location, node.Op)

	default:
		return false, fmt.Errorf("%s: unknown match type %q", node.Location, node.Type)
	}
}

// matchAll evaluates an AND node - all children must match.
func (e *Evaluator) matchAll(node *ast.MatchNode, u *URL) (bool, error) {
	for _, child := range node.Children {
		matched, err := e.match(child, u)
		if err != nil {
			return false, err
		}

		// Short-circuit: if any child doesn't match, return false
		if !matched {
			return false, nil
		}
	}
	return true, nil
}

// matchAny evaluates an OR node - at least one child must match.
func (e *Evaluator) matchAny(node *ast.MatchNode, u *URL) (bool, error) {
	for _, child := range node.Children {
		matched, err := e.match(child, u)
		if err != nil {
			return false, err
		}

		// Short-circuit: if any child matches, return true
		if matched {
			return true, nil
		}
	}
	return false, nil
}

// matchPredicate applies the node's compiled pattern to the selected URL component.
func (e *Evaluator) matchPredicate(node *ast.MatchNode, u *URL) (bool, error) {
	value, ok := u.Component(node.Selector)
	if !ok {
		return false, &ruleErrors.EvaluationError{URL: u.Raw, Selector: node.Selector}
	}
	if node.Matcher == nil {
		return false, fmt.Errorf("%s: predicate on %q has no compiled pattern", node.Location, node.Selector)
	}
	return node.Matcher.Match(value), nil
}

func (e *Evaluator) recordError(kind string) {
	if e.recorder != nil {
		e.recorder.RecordEvaluationError(kind)
	}
}
