// Package httputil writes JSON responses and errors for HTTP handlers.
package httputil

import (
	"net/http"

	jsoniter "github.com/json-iterator/go"
	"github.com/sirupsen/logrus"
)

var log = logrus.WithField("prefix", "httputil")

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const (
	jsonMediaType   = "application/json"
	contentTypeName = "Content-Type"
)

// WriteJson writes the response message in JSON format.
func WriteJson(w http.ResponseWriter, v any) {
	w.Header().Set(contentTypeName, jsonMediaType)
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.WithError(err).Error("Could not write response message")
	}
}

// WriteError writes the error by manipulating headers and the body of the final response.
func WriteError(w http.ResponseWriter, errJson HasStatusCode) {
	j, err := json.Marshal(errJson)
	if err != nil {
		log.WithError(err).Error("Could not marshal error message")
		return
	}
	w.Header().Set(contentTypeName, jsonMediaType)
	w.WriteHeader(errJson.StatusCode())
	if _, err := w.Write(j); err != nil {
		log.WithError(err).Error("Could not write error message")
	}
}
