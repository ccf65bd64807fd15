package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"mercator-hq/urlcat/pkg/categorizer"
	"mercator-hq/urlcat/pkg/rules/manager"
	"mercator-hq/urlcat/pkg/telemetry/logging"
	"mercator-hq/urlcat/pkg/telemetry/tracing"
)

// maxBodyBytes bounds POST /v1/categorize request bodies.
const maxBodyBytes = 10 << 20

// CategorizeResponse is the result of GET /v1/categorize.
type CategorizeResponse struct {
	URL       string               `json:"url"`
	RulesetID string               `json:"ruleset_id"`
	Results   []categorizer.Result `json:"results"`
}

// BatchRequest is the body of POST /v1/categorize.
type BatchRequest struct {
	URLs []string `json:"urls"`
}

// BatchItem is the outcome for one URL of a batch.
type BatchItem struct {
	URL     string               `json:"url"`
	Results []categorizer.Result `json:"results,omitempty"`
	Error   string               `json:"error,omitempty"`
}

// BatchResponse is the result of POST /v1/categorize.
type BatchResponse struct {
	RulesetID string      `json:"ruleset_id"`
	Items     []BatchItem `json:"items"`
}

// ReloadResponse is the result of POST /v1/rules/reload.
type ReloadResponse struct {
	Changed bool         `json:"changed"`
	Ruleset manager.Info `json:"ruleset"`
}

// ruleset returns the active ruleset, writing a 503 if none is loaded.
func (s *Server) ruleset(w http.ResponseWriter, r *http.Request) (*manager.Ruleset, bool) {
	rs := s.rules.Current()
	if rs == nil {
		writeError(w, r, http.StatusServiceUnavailable, ErrorTypeUnavailable, "no ruleset loaded")
		return nil, false
	}
	return rs, true
}

func (s *Server) handleCategorizeGet(w http.ResponseWriter, r *http.Request) {
	rawURL := r.URL.Query().Get("url")
	if rawURL == "" {
		writeError(w, r, http.StatusBadRequest, ErrorTypeInvalidRequest, "missing url query parameter")
		return
	}

	rs, ok := s.ruleset(w, r)
	if !ok {
		return
	}

	ctx, span := s.tracer.Start(r.Context(), "categorize")
	defer span.End()
	span.SetAttributes(tracing.RulesetAttributes(rs.ID, 1)...)
	ctx = logging.WithRuleset(ctx, rs.ID)

	results, err := rs.Evaluator.Evaluate(rawURL)
	tracing.SetStatus(span, err)
	if err != nil {
		s.logger.DebugContext(ctx, "URL evaluation failed", "url", rawURL, "error", err)
		writeError(w, r, http.StatusUnprocessableEntity, ErrorTypeEvaluation, err.Error())
		return
	}

	s.logger.DebugContext(ctx, "URL categorized", "url", rawURL, "results", len(results))
	writeJSON(w, http.StatusOK, CategorizeResponse{
		URL:       rawURL,
		RulesetID: rs.ID,
		Results:   results,
	})
}

func (s *Server) handleCategorizePost(w http.ResponseWriter, r *http.Request) {
	var req BatchRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, ErrorTypeInvalidRequest, fmt.Sprintf("invalid request body: %v", err))
		return
	}
	if len(req.URLs) == 0 {
		writeError(w, r, http.StatusBadRequest, ErrorTypeInvalidRequest, "urls must not be empty")
		return
	}
	if limit := s.config.MaxBatchSize; limit > 0 && len(req.URLs) > limit {
		writeError(w, r, http.StatusRequestEntityTooLarge, ErrorTypeInvalidRequest,
			fmt.Sprintf("batch of %d urls exceeds the limit of %d", len(req.URLs), limit))
		return
	}

	rs, ok := s.ruleset(w, r)
	if !ok {
		return
	}

	ctx, span := s.tracer.Start(r.Context(), "categorize_batch")
	defer span.End()
	span.SetAttributes(tracing.RulesetAttributes(rs.ID, len(req.URLs))...)

	start := time.Now()
	items := make([]BatchItem, len(req.URLs))
	failed := 0
	for i, rawURL := range req.URLs {
		items[i].URL = rawURL
		results, err := rs.Evaluator.Evaluate(rawURL)
		if err != nil {
			items[i].Error = err.Error()
			failed++
			continue
		}
		items[i].Results = results
	}
	tracing.SetFailures(span, failed)

	s.logger.DebugContext(logging.WithRuleset(ctx, rs.ID), "Batch categorized",
		"urls", len(req.URLs),
		"failed", failed,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	writeJSON(w, http.StatusOK, BatchResponse{
		RulesetID: rs.ID,
		Items:     items,
	})
}

func (s *Server) handleRules(w http.ResponseWriter, r *http.Request) {
	rs, ok := s.ruleset(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, rs.Info())
}

func (s *Server) handleReload(w http.ResponseWriter, r *http.Request) {
	_, span := s.tracer.Start(r.Context(), "rules_reload")
	defer span.End()

	before := s.rules.Current()

	rs, err := s.rules.Reload()
	tracing.SetStatus(span, err)
	if err != nil {
		// The previous ruleset stays active.
		writeError(w, r, http.StatusUnprocessableEntity, ErrorTypeRules, err.Error())
		return
	}

	changed := before == nil || before.ID != rs.ID
	span.SetAttributes(tracing.AttrRulesetID.String(rs.ID), tracing.AttrChanged.Bool(changed))

	writeJSON(w, http.StatusOK, ReloadResponse{
		Changed: changed,
		Ruleset: rs.Info(),
	})
}

// checkRules fails until a ruleset has been loaded.
func (s *Server) checkRules(ctx context.Context) error {
	if s.rules.Current() == nil {
		return manager.ErrNotLoaded
	}
	return nil
}
