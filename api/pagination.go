package api

import (
	"net/http"
	"strconv"

	"github.com/pkg/errors"

	"github.com/buildwatch/notifier/model"
)

const (
	defaultPageSize = 10
	maxPageSize     = 20
)

// parsePageRequest reads the pagePosition and pageSize query parameters. The position
// must be non-negative and the size must be between 1 and 20; both have defaults.
func parsePageRequest(r *http.Request) (model.PageRequest, error) {
	page := model.PageRequest{Position: 0, Size: defaultPageSize}

	if raw := r.URL.Query().Get("pagePosition"); raw != "" {
		position, err := strconv.Atoi(raw)
		if err != nil || position < 0 {
			return page, errors.Errorf("invalid pagePosition: %s", raw)
		}
		page.Position = position
	}

	if raw := r.URL.Query().Get("pageSize"); raw != "" {
		size, err := strconv.Atoi(raw)
		if err != nil || size < 1 || size > maxPageSize {
			return page, errors.Errorf("invalid pageSize: %s", raw)
		}
		page.Size = size
	}

	return page, nil
}

// parseID reads a path parameter as a numeric entity ID.
func parseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, errors.Errorf("invalid id: %s", raw)
	}
	return id, nil
}

// parseOptionalInt64 reads an optional numeric query parameter, returning nil when the
// parameter is absent or blank.
func parseOptionalInt64(r *http.Request, name string) (*int64, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, nil
	}
	value, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, errors.Errorf("invalid %s: %s", name, raw)
	}
	return &value, nil
}
