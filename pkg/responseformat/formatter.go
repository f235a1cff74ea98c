package responseformat

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/vmihailenco/msgpack/v5"
)

// Supported values of the format query parameter.
const (
	FormatJSON    = "json"
	FormatMsgPack = "msgpack"
	FormatCSV     = "csv"
)

// CSVWriter is implemented by responses that can be rendered as CSV.
type CSVWriter interface {
	WriteCSV(w io.Writer) error
}

// Formatter handles encoding and writing responses in JSON, MessagePack or CSV format
type Formatter struct{}

// NewFormatter creates a new response formatter
func NewFormatter() *Formatter {
	return &Formatter{}
}

// WriteResponse writes the response in the appropriate format based on the query parameter.
// JSON is the default format. MessagePack is used when format=msgpack is specified and
// CSV when format=csv is specified and data implements CSVWriter.
func (f *Formatter) WriteResponse(w http.ResponseWriter, req *http.Request, data any, headers map[string]string) error {
	return f.WriteResponseStatus(w, req, http.StatusOK, data, headers)
}

// WriteResponseStatus is WriteResponse with an explicit status code.
func (f *Formatter) WriteResponseStatus(w http.ResponseWriter, req *http.Request, status int, data any, headers map[string]string) error {
	// Set any provided headers first
	for k, v := range headers {
		w.Header().Set(k, v)
	}

	switch req.URL.Query().Get("format") {
	case FormatMsgPack:
		return f.writeMsgPack(w, status, data)
	case FormatCSV:
		cw, ok := data.(CSVWriter)
		if !ok {
			return f.writeJSON(w, http.StatusNotAcceptable, map[string]string{"error": "csv is not available for this resource"})
		}
		w.Header().Set("Content-Type", "text/csv")
		w.WriteHeader(status)
		return cw.WriteCSV(w)
	}

	// Default to JSON format (when no format parameter or any other value)
	return f.writeJSON(w, status, data)
}

func (f *Formatter) writeJSON(w http.ResponseWriter, status int, data any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(data)
}

func (f *Formatter) writeMsgPack(w http.ResponseWriter, status int, data any) error {
	w.Header().Set("Content-Type", "application/x-msgpack")
	w.WriteHeader(status)
	encoder := msgpack.NewEncoder(w)
	encoder.SetCustomStructTag("json") // Use json tags for MessagePack
	return encoder.Encode(data)
}
