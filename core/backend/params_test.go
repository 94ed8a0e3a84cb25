package backend

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campusmaps/studyspot/core/store"
)

func TestSplitPagination(t *testing.T) {
	query := url.Values{"page": {"3"}, "page_size": {"10"}, "city": {"New York"}}
	page, err := splitPagination(query)
	require.NoError(t, err)
	assert.Equal(t, store.Page{Number: 3, Size: 10}, page)
	assert.Equal(t, 20, page.Offset())

	// pagination parameters are consumed, filters stay
	assert.Empty(t, query.Get("page"))
	assert.Empty(t, query.Get("page_size"))
	assert.Equal(t, "New York", query.Get("city"))
}

func TestSplitPaginationDefaults(t *testing.T) {
	page, err := splitPagination(url.Values{})
	require.NoError(t, err)
	assert.Equal(t, store.Page{Number: 1, Size: defaultPageSize}, page)
	assert.Equal(t, 0, page.Offset())
}

func TestSplitPaginationCapsSize(t *testing.T) {
	page, err := splitPagination(url.Values{"page_size": {"5000"}})
	require.NoError(t, err)
	assert.Equal(t, maxPageSize, page.Size)
}

func TestSplitPaginationRejectsGarbage(t *testing.T) {
	for _, query := range []url.Values{
		{"page": {"0"}},
		{"page": {"-2"}},
		{"page": {"two"}},
		{"page_size": {"0"}},
		{"page_size": {"many"}},
	} {
		_, err := splitPagination(query)
		assert.Error(t, err, "query %v must be rejected", query)
	}
}

func TestParseParams(t *testing.T) {
	v, err := parseBoolParam("wifi", "true")
	require.NoError(t, err)
	assert.True(t, *v)
	_, err = parseBoolParam("wifi", "maybe")
	assert.Error(t, err)

	_, err = parseNeighborhoodParam("neighborhood", "Hoboken")
	assert.Error(t, err)
	_, err = parseSeatingParam("seating", "500")
	assert.Error(t, err)
	_, err = parseEnvironmentParam("environment", "orbital")
	assert.Error(t, err)
}
