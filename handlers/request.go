package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-chi/chi/v5"

	"github.com/camden-git/labelloopbackend/logging"
)

const (
	defaultLimit     = 100
	maxLimit         = 1000
	maxNameLength    = 255
	maxDescLength    = 1000
	minExpiresIn     = 60
	maxExpiresIn     = 604800 // 7 days, the S3 presign maximum
	defaultExpiresIn = 3600
)

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			logging.Named("http").Errorf("Error encoding JSON response: %v", err)
		}
	}
}

// decodeJSON reads the request body into dst, rejecting unknown fields
func decodeJSON(r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("Invalid request body: %v", err)
	}
	return nil
}

// idParam parses a positive integer path parameter
func idParam(r *http.Request, name string) (uint, error) {
	raw := chi.URLParam(r, name)
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("Invalid %s: must be a positive integer", name)
	}
	return uint(id), nil
}

// queryInt reads an integer query parameter bounded by [min, max]; max < 0 means unbounded
func queryInt(r *http.Request, name string, def, min, max int) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("Invalid %s: must be an integer", name)
	}
	if v < min || (max >= 0 && v > max) {
		if max >= 0 {
			return 0, fmt.Errorf("Invalid %s: must be between %d and %d", name, min, max)
		}
		return 0, fmt.Errorf("Invalid %s: must be at least %d", name, min)
	}
	return v, nil
}

// paging reads skip (>= 0) and limit ([1, 1000], default 100)
func paging(r *http.Request) (skip, limit int, err error) {
	if skip, err = queryInt(r, "skip", 0, 0, -1); err != nil {
		return 0, 0, err
	}
	if limit, err = queryInt(r, "limit", defaultLimit, 1, maxLimit); err != nil {
		return 0, 0, err
	}
	return skip, limit, nil
}

// expiresIn reads the presigned URL lifetime in seconds
func expiresIn(r *http.Request) (time.Duration, error) {
	secs, err := queryInt(r, "expires_in", defaultExpiresIn, minExpiresIn, maxExpiresIn)
	if err != nil {
		return 0, err
	}
	return time.Duration(secs) * time.Second, nil
}

// validateName trims name and checks it is 1..255 characters
func validateName(field, name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", fmt.Errorf("%s is required", field)
	}
	if utf8.RuneCountInString(name) > maxNameLength {
		return "", fmt.Errorf("%s must be at most %d characters", field, maxNameLength)
	}
	return name, nil
}

func validateDescription(desc *string) error {
	if desc != nil && utf8.RuneCountInString(*desc) > maxDescLength {
		return fmt.Errorf("description must be at most %d characters", maxDescLength)
	}
	return nil
}

func validateNonNegative(field string, v *int) error {
	if v != nil && *v < 0 {
		return fmt.Errorf("%s must be greater than or equal to 0", field)
	}
	return nil
}
