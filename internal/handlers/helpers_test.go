package handlers

import (
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPagination(t *testing.T) {
	tests := []struct {
		query      string
		wantLimit  int
		wantOffset int
	}{
		{"", defaultLimit, 0},
		{"limit=50&offset=10", 50, 10},
		{"limit=500", maxLimit, 0},
		{"limit=0", 1, 0},
		{"limit=-3&offset=-7", 1, 0},
		{"limit=abc&offset=xyz", defaultLimit, 0},
	}
	for _, tt := range tests {
		r := httptest.NewRequest("GET", "/events?"+tt.query, nil)
		limit, offset := pagination(r)
		assert.Equal(t, tt.wantLimit, limit, "query %q", tt.query)
		assert.Equal(t, tt.wantOffset, offset, "query %q", tt.query)
	}
}

func TestSlicePage(t *testing.T) {
	items := []int{1, 2, 3, 4, 5}

	assert.Equal(t, []int{1, 2}, slicePage(items, 2, 0))
	assert.Equal(t, []int{3, 4}, slicePage(items, 2, 2))
	assert.Equal(t, []int{5}, slicePage(items, 10, 4))
	assert.Empty(t, slicePage(items, 2, 5), "offset past the end yields an empty page")
	assert.Empty(t, slicePage([]int{}, 10, 0))
}

func TestWriteError(t *testing.T) {
	w := httptest.NewRecorder()
	writeError(w, 400, "status must be one of confirmed, developing, all")

	assert.Equal(t, 400, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "status must be one of confirmed, developing, all", body["detail"])
}

func TestRequestScheme(t *testing.T) {
	r := httptest.NewRequest("GET", "/feeds/verified.xml", nil)
	assert.Equal(t, "http", requestScheme(r))

	r.Header.Set("X-Forwarded-Proto", "https")
	assert.Equal(t, "https", requestScheme(r), "proxy-terminated TLS must yield https links")

	r.Header.Set("X-Forwarded-Proto", "gopher")
	assert.Equal(t, "http", requestScheme(r), "unknown proto values fall back to the socket")
}

func TestQueryBool(t *testing.T) {
	assert.True(t, queryBool(httptest.NewRequest("GET", "/?flag=true", nil), "flag"))
	assert.True(t, queryBool(httptest.NewRequest("GET", "/?flag=1", nil), "flag"))
	assert.False(t, queryBool(httptest.NewRequest("GET", "/?flag=maybe", nil), "flag"))
	assert.False(t, queryBool(httptest.NewRequest("GET", "/", nil), "flag"))
}
