package web

import (
	"errors"
	"fmt"
	"math"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
)

// ParseQueryInt reads an integer query parameter, falling back to def when it is absent.
// Integers beyond the int range saturate to math.MaxInt or math.MinInt and are left to the
// caller's range checks. A present but malformed value is answered with 422 and false is returned.
func ParseQueryInt(w http.ResponseWriter, r *http.Request, logger *slog.Logger, key string, def int) (int, bool) {
	value := r.URL.Query().Get(key)
	if value == "" {
		return def, true
	}
	intValue, err := strconv.Atoi(value)
	switch {
	case err == nil:
		return intValue, true
	case errors.Is(err, strconv.ErrRange) && strings.HasPrefix(value, "-"):
		return math.MinInt, true
	case errors.Is(err, strconv.ErrRange):
		return math.MaxInt, true
	default:
		RespondError(w, logger, http.StatusUnprocessableEntity, fmt.Sprintf("Invalid %s number: %s", key, value))
		return 0, false
	}
}

// ParseQueryBool reads an optional boolean query parameter. A nil result means the parameter was absent.
func ParseQueryBool(w http.ResponseWriter, r *http.Request, logger *slog.Logger, key string) (*bool, bool) {
	value := r.URL.Query().Get(key)
	if value == "" {
		return nil, true
	}
	b, err := parseBool(value)
	if err != nil {
		RespondError(w, logger, http.StatusUnprocessableEntity, fmt.Sprintf("Invalid %s boolean: %s", key, value))
		return nil, false
	}
	return &b, true
}

// parseBool accepts the strconv spellings plus yes/no and on/off.
func parseBool(value string) (bool, error) {
	switch strings.ToLower(value) {
	case "yes", "on":
		return true, nil
	case "no", "off":
		return false, nil
	}
	return strconv.ParseBool(value)
}
