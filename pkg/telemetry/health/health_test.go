package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

// TestReadiness tests aggregation of check results.
func TestReadiness(t *testing.T) {
	tests := []struct {
		name   string
		checks map[string]CheckFunc
		want   string
	}{
		{name: "no checks", want: StatusReady},
		{
			name: "all pass",
			checks: map[string]CheckFunc{
				"rules": func(context.Context) error { return nil },
				"disk":  func(context.Context) error { return nil },
			},
			want: StatusReady,
		},
		{
			name: "one fails",
			checks: map[string]CheckFunc{
				"rules": func(context.Context) error { return errors.New("no ruleset loaded") },
				"disk":  func(context.Context) error { return nil },
			},
			want: StatusNotReady,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New(time.Second)
			for name, check := range tt.checks {
				c.Register(name, check)
			}

			status := c.Readiness(context.Background())
			if status.Status != tt.want {
				t.Errorf("Status = %q, want %q", status.Status, tt.want)
			}
			if len(status.Checks) != len(tt.checks) {
				t.Errorf("got %d check results, want %d", len(status.Checks), len(tt.checks))
			}
		})
	}
}

// TestReadiness_Timeout tests that a hanging check is reported unhealthy.
func TestReadiness_Timeout(t *testing.T) {
	c := New(20 * time.Millisecond)
	release := make(chan struct{})
	defer close(release)
	c.Register("slow", func(ctx context.Context) error {
		select {
		case <-release:
		case <-time.After(time.Second):
		}
		return nil
	})

	status := c.Readiness(context.Background())
	result := status.Checks["slow"]
	if result.Status != StatusUnhealthy || result.Message != "health check timeout" {
		t.Errorf("slow check = %+v", result)
	}
}

// TestRegister tests replacing and listing checks.
func TestRegister(t *testing.T) {
	c := New(0)
	c.Register("b", func(context.Context) error { return nil })
	c.Register("a", func(context.Context) error { return nil })
	c.Register("a", func(context.Context) error { return errors.New("replaced") })

	names := c.Names()
	if len(names) != 2 || names[0] != "a" || names[1] != "b" {
		t.Errorf("Names() = %v", names)
	}
	if got := c.Readiness(context.Background()).Checks["a"].Message; got != "replaced" {
		t.Errorf("check a message = %q, want replaced", got)
	}
}

// TestHandlers tests probe status codes and bodies.
func TestHandlers(t *testing.T) {
	c := New(time.Second)
	ready := false
	c.Register("rules", func(context.Context) error {
		if !ready {
			return errors.New("no ruleset loaded")
		}
		return nil
	})

	rec := httptest.NewRecorder()
	c.LivenessHandler()(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("liveness code = %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	c.ReadinessHandler()(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("readiness code = %d, want 503", rec.Code)
	}
	var status Status
	if err := json.Unmarshal(rec.Body.Bytes(), &status); err != nil {
		t.Fatalf("body is not JSON: %v", err)
	}
	if status.Checks["rules"].Message != "no ruleset loaded" {
		t.Errorf("rules check = %+v", status.Checks["rules"])
	}

	ready = true
	rec = httptest.NewRecorder()
	c.ReadinessHandler()(rec, httptest.NewRequest(http.MethodHead, "/ready", nil))
	if rec.Code != http.StatusOK || rec.Body.Len() != 0 {
		t.Errorf("HEAD readiness code = %d, body %q", rec.Code, rec.Body.String())
	}
}
