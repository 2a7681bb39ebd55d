package handler

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/Dhairyashah5122/project-hotelrover/internal/domain"
)

const (
	defaultListLimit = 100
	maxListLimit     = 1000
)

// parseBound reads an RFC 3339 timestamp or a YYYY-MM-DD date from query
// parameter name. A date-only end bound covers the whole UTC day.
func parseBound(r *http.Request, name string, end bool) (*time.Time, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339Nano, raw); err == nil {
		t = t.UTC()
		return &t, nil
	}
	d, err := time.Parse(time.DateOnly, raw)
	if err != nil {
		return nil, &domain.InvalidInputError{Field: name, Reason: "must be RFC 3339 or YYYY-MM-DD"}
	}
	if end {
		_, last := domain.DayBounds(d)
		return &last, nil
	}
	return &d, nil
}

func parseRange(r *http.Request) (from, to *time.Time, err error) {
	if from, err = parseBound(r, "startDate", false); err != nil {
		return nil, nil, err
	}
	if to, err = parseBound(r, "endDate", true); err != nil {
		return nil, nil, err
	}
	return from, to, nil
}

func parseStatuses(r *http.Request) ([]domain.Status, error) {
	raw := r.URL.Query().Get("status")
	if raw == "" {
		return nil, nil
	}
	var out []domain.Status
	for _, part := range strings.Split(raw, ",") {
		s := domain.Status(strings.TrimSpace(part))
		if !s.Valid() {
			return nil, &domain.InvalidInputError{Field: "status", Reason: "unknown status " + strconv.Quote(string(s))}
		}
		out = append(out, s)
	}
	return out, nil
}

func parseLimit(r *http.Request) (int, error) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return defaultListLimit, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 || n > maxListLimit {
		return 0, &domain.InvalidInputError{Field: "limit", Reason: "must be between 1 and " + strconv.Itoa(maxListLimit)}
	}
	return n, nil
}

// transitionAliases maps legacy route names onto transitions.
var transitionAliases = map[string]domain.Transition{
	"complete": domain.TransitionFinish,
}

func parseTransition(s string) (domain.Transition, bool) {
	if t, ok := transitionAliases[s]; ok {
		return t, true
	}
	return domain.ParseTransition(s)
}
