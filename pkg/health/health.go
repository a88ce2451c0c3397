// Package health exposes liveness and readiness endpoints. Readiness fans
// out to registered dependency checks; liveness only proves the process is
// serving.
package health

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"
)

// checkTimeout bounds the whole readiness sweep, not each check.
const checkTimeout = 5 * time.Second

// Checker reports whether a single dependency is reachable.
type Checker func(ctx context.Context) error

type Status string

const (
	StatusUp Status = "up"
	// StatusDegraded means only non-critical dependencies are down; the
	// endpoint still returns 200 so orchestrators keep routing traffic.
	StatusDegraded Status = "degraded"
	StatusDown     Status = "down"
)

// Response is the body of both health endpoints.
type Response struct {
	Status    Status                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Checks    map[string]CheckResult `json:"checks,omitempty"`
}

type CheckResult struct {
	Status   Status `json:"status"`
	Critical bool   `json:"critical"`
	Error    string `json:"error,omitempty"`
}

type registration struct {
	name     string
	check    Checker
	critical bool
}

// Handler holds the registered dependency checks.
type Handler struct {
	mu     sync.RWMutex
	checks []registration
}

func NewHandler() *Handler {
	return &Handler{}
}

// Register adds a critical dependency check. Registering the same name again
// replaces the previous check.
func (h *Handler) Register(name string, c Checker) {
	h.register(name, c, true)
}

// RegisterCritical adds a dependency whose failure makes the service
// unready (503).
func (h *Handler) RegisterCritical(name string, c Checker) {
	h.register(name, c, true)
}

// RegisterNonCritical adds a dependency the service can run without; its
// failure only degrades the reported status.
func (h *Handler) RegisterNonCritical(name string, c Checker) {
	h.register(name, c, false)
}

func (h *Handler) register(name string, c Checker, critical bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for i := range h.checks {
		if h.checks[i].name == name {
			h.checks[i] = registration{name: name, check: c, critical: critical}
			return
		}
	}
	h.checks = append(h.checks, registration{name: name, check: c, critical: critical})
}

// LivenessHandler always reports up while the process can serve requests.
func (h *Handler) LivenessHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeHealth(w, http.StatusOK, Response{
			Status:    StatusUp,
			Timestamp: time.Now().UTC(),
		})
	}
}

// ReadinessHandler runs every registered check concurrently. Any critical
// failure yields 503/down; non-critical failures alone yield 200/degraded.
func (h *Handler) ReadinessHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), checkTimeout)
		defer cancel()

		h.mu.RLock()
		regs := make([]registration, len(h.checks))
		copy(regs, h.checks)
		h.mu.RUnlock()

		results := make([]CheckResult, len(regs))
		var wg sync.WaitGroup
		for i, reg := range regs {
			wg.Add(1)
			go func(i int, reg registration) {
				defer wg.Done()
				res := CheckResult{Status: StatusUp, Critical: reg.critical}
				if err := reg.check(ctx); err != nil {
					res.Status = StatusDown
					res.Error = err.Error()
				}
				results[i] = res
			}(i, reg)
		}
		wg.Wait()

		resp := Response{
			Status:    StatusUp,
			Timestamp: time.Now().UTC(),
			Checks:    make(map[string]CheckResult, len(results)),
		}
		code := http.StatusOK
		for i, res := range results {
			resp.Checks[regs[i].name] = res
			if res.Status != StatusDown {
				continue
			}
			if res.Critical {
				resp.Status = StatusDown
				code = http.StatusServiceUnavailable
			} else if resp.Status == StatusUp {
				resp.Status = StatusDegraded
			}
		}

		writeHealth(w, code, resp)
	}
}

func writeHealth(w http.ResponseWriter, code int, resp Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(resp) //nolint:errcheck
}
