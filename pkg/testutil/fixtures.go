package testutil

import (
	"bytes"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
)

// DefaultRemoteAddr is the client address used by NewJSONRequest.
const DefaultRemoteAddr = "203.0.113.10:41000"

// NewJSONRequest builds a request with body encoded as JSON. A string body
// is sent verbatim so tests can post malformed payloads.
func NewJSONRequest(method, path string, body any) *http.Request {
	var raw []byte
	switch b := body.(type) {
	case nil:
	case string:
		raw = []byte(b)
	case []byte:
		raw = b
	default:
		var err error
		raw, err = json.Marshal(b)
		if err != nil {
			panic(err)
		}
	}
	req := httptest.NewRequest(method, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	req.RemoteAddr = DefaultRemoteAddr
	return req
}

// FromAddress returns req with RemoteAddr set to addr:port.
func FromAddress(req *http.Request, addr string) *http.Request {
	req.RemoteAddr = net.JoinHostPort(addr, "41000")
	return req
}

// DecodeBody decodes a recorder body into a generic map.
func DecodeBody(w *httptest.ResponseRecorder) map[string]any {
	var out map[string]any
	_ = json.Unmarshal(w.Body.Bytes(), &out)
	return out
}
