package api

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// queryTime parses a required RFC 3339 query parameter.
func queryTime(r *http.Request, name string) (time.Time, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return time.Time{}, fmt.Errorf("query parameter %q is required", name)
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("query parameter %q must be an RFC 3339 timestamp", name)
	}
	return t, nil
}

// queryWindow parses the start and end query parameters.
func queryWindow(r *http.Request) (start, end time.Time, err error) {
	if start, err = queryTime(r, "start"); err != nil {
		return time.Time{}, time.Time{}, err
	}
	if end, err = queryTime(r, "end"); err != nil {
		return time.Time{}, time.Time{}, err
	}
	return start, end, nil
}

// queryInt parses a required integer query parameter. Range checks are
// left to the service.
func queryInt(r *http.Request, name string) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return 0, fmt.Errorf("query parameter %q is required", name)
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("query parameter %q must be an integer", name)
	}
	return n, nil
}

// queryString returns a required, non-blank query parameter.
func queryString(r *http.Request, name string) (string, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return "", fmt.Errorf("query parameter %q is required", name)
	}
	return raw, nil
}
