package rest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/dmitrijs2005/taxportal/internal/server/pagination"
)

// paging reads skip and limit. Absent values default to 0 and
// pagination.DefaultLimit; clamping is left to the services.
func paging(r *http.Request) (skip, limit int, err error) {
	q := r.URL.Query()

	skip, err = intParam(q.Get("skip"), "skip", 0)
	if err != nil {
		return 0, 0, err
	}
	limit, err = intParam(q.Get("limit"), "limit", pagination.DefaultLimit)
	if err != nil {
		return 0, 0, err
	}
	return skip, limit, nil
}

func intParam(raw, name string, def int) (int, error) {
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be an integer", errBadRequest, name)
	}
	return n, nil
}

func decodeJSON(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return fmt.Errorf("%w: invalid JSON: %v", errBadRequest, err)
	}
	return nil
}
