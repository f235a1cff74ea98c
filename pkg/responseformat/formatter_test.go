package responseformat

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"
)

type item struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

type table []item

func (t table) WriteCSV(w io.Writer) error {
	if _, err := io.WriteString(w, "name,value\n"); err != nil {
		return err
	}
	for _, it := range t {
		if _, err := io.WriteString(w, it.Name+",1\n"); err != nil {
			return err
		}
	}
	return nil
}

func TestWriteResponse(t *testing.T) {
	f := NewFormatter()
	data := table{{Name: "a", Value: 1}}

	tests := []struct {
		name        string
		query       string
		data        any
		wantStatus  int
		contentType string
	}{
		{"default json", "", data, http.StatusOK, "application/json"},
		{"unknown format", "?format=xml", data, http.StatusOK, "application/json"},
		{"msgpack", "?format=msgpack", data, http.StatusOK, "application/x-msgpack"},
		{"csv", "?format=csv", data, http.StatusOK, "text/csv"},
		{"csv unsupported", "?format=csv", item{Name: "b"}, http.StatusNotAcceptable, "application/json"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/x"+tt.query, nil)

			require.NoError(t, f.WriteResponse(rec, req, tt.data, map[string]string{"X-Test": "1"}))
			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.contentType, rec.Header().Get("Content-Type"))
			assert.Equal(t, "1", rec.Header().Get("X-Test"))
		})
	}
}

func TestMsgPackUsesJSONTags(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/x?format=msgpack", nil)
	require.NoError(t, NewFormatter().WriteResponseStatus(rec, req, http.StatusCreated, item{Name: "a", Value: 2}, nil))

	assert.Equal(t, http.StatusCreated, rec.Code)
	var got map[string]any
	require.NoError(t, msgpack.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "a", got["name"])
	assert.Equal(t, 2.0, got["value"])
}

func TestCSVBody(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/x?format=csv", nil)
	require.NoError(t, NewFormatter().WriteResponse(rec, req, table{{Name: "a"}, {Name: "b"}}, nil))
	assert.Equal(t, "name,value\na,1\nb,1\n", rec.Body.String())

	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/x", nil)
	require.NoError(t, NewFormatter().WriteResponse(rec, req, table{{Name: "a", Value: 3}}, nil))
	var got []item
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, 3.0, got[0].Value)
}
