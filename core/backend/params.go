package backend

import (
	"fmt"
	"net/url"
	"strconv"

	"github.com/campusmaps/studyspot/core/model"
	"github.com/campusmaps/studyspot/core/store"
)

// pagination defaults; page_size is capped so a single request cannot
// drag the whole collection through the wire
const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// splitPagination consumes the page and page_size parameters out of query
// and returns the resulting page selection. The remaining parameters are
// left for the resource's filter parser.
func splitPagination(query url.Values) (store.Page, error) {
	page := store.Page{Number: 1, Size: defaultPageSize}
	if value := query.Get("page"); value != "" {
		n, err := strconv.Atoi(value)
		if err != nil || n < 1 {
			return page, fmt.Errorf("parameter 'page': must be a positive integer")
		}
		page.Number = n
	}
	if value := query.Get("page_size"); value != "" {
		n, err := strconv.Atoi(value)
		if err != nil || n < 1 {
			return page, fmt.Errorf("parameter 'page_size': must be a positive integer")
		}
		if n > maxPageSize {
			n = maxPageSize
		}
		page.Size = n
	}
	query.Del("page")
	query.Del("page_size")
	return page, nil
}

func parseBoolParam(key, value string) (*bool, error) {
	v, err := strconv.ParseBool(value)
	if err != nil {
		return nil, fmt.Errorf("parameter '%s': %s", key, err)
	}
	return &v, nil
}

func parseNeighborhoodParam(key, value string) (model.Neighborhood, error) {
	n := model.Neighborhood(value)
	if !n.Valid() {
		return "", fmt.Errorf("parameter '%s': unknown neighborhood '%s'", key, value)
	}
	return n, nil
}

func parseSeatingParam(key, value string) (model.Seating, error) {
	s := model.Seating(value)
	if !s.Valid() {
		return "", fmt.Errorf("parameter '%s': unknown seating bucket '%s'", key, value)
	}
	return s, nil
}

func parseEnvironmentParam(key, value string) (model.Environment, error) {
	e := model.Environment(value)
	if !e.Valid() {
		return "", fmt.Errorf("parameter '%s': unknown environment '%s'", key, value)
	}
	return e, nil
}
