package prometheus

import (
	"io"
	"net/http"

	"github.com/golang/gddo/httputil"
	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
)

const (
	contentTypePlainText = "text/plain"
	contentTypeJSON      = "application/json"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// plainTexter is implemented by response data with a text/plain rendering.
type plainTexter interface {
	writePlainText(w io.Writer) error
}

type generatedResponse struct {
	Err  string      `json:"error"`
	Data plainTexter `json:"data"`
}

// negotiateContentType picks the response type from the Accept header,
// falling back to plain text.
func negotiateContentType(r *http.Request) string {
	return httputil.NegotiateContentType(r, []string{contentTypePlainText, contentTypeJSON}, contentTypePlainText)
}

func writeResponse(w http.ResponseWriter, r *http.Request, status int, response generatedResponse) error {
	if negotiateContentType(r) == contentTypeJSON {
		w.Header().Set("Content-Type", contentTypeJSON)
		w.WriteHeader(status)
		return json.NewEncoder(w).Encode(response)
	}
	w.Header().Set("Content-Type", contentTypePlainText)
	w.WriteHeader(status)
	if response.Data == nil {
		return nil
	}
	return errors.Wrap(response.Data.writePlainText(w), "could not write response body")
}
