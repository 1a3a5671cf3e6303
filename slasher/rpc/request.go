package rpc

import (
	"io"
	"net/http"
	"strconv"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
	"github.com/sealwatch/slasher/network/httputil"
)

const maxRequestBodySize = 1 << 20

// ValidateUint parses s as a base-10 uint64. On failure it writes a 400
// response naming the field and returns false.
func ValidateUint(w http.ResponseWriter, name string, s string) (uint64, bool) {
	if s == "" {
		httputil.HandleError(w, name+" is required", http.StatusBadRequest)
		return 0, false
	}
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		httputil.HandleError(w, name+" is invalid: "+err.Error(), http.StatusBadRequest)
		return 0, false
	}
	return v, true
}

// ValidateAddress parses s as a hex account address. On failure it writes
// a 400 response naming the field and returns false.
func ValidateAddress(w http.ResponseWriter, name string, s string) (common.Address, bool) {
	if s == "" {
		httputil.HandleError(w, name+" is required", http.StatusBadRequest)
		return common.Address{}, false
	}
	if !common.IsHexAddress(s) {
		httputil.HandleError(w, name+" is invalid", http.StatusBadRequest)
		return common.Address{}, false
	}
	return common.HexToAddress(s), true
}

// decodeBody unmarshals a JSON body that was already read and authenticated.
func decodeBody(w http.ResponseWriter, body []byte, v any) bool {
	if len(body) == 0 {
		httputil.HandleError(w, "No data submitted", http.StatusBadRequest)
		return false
	}
	if err := json.Unmarshal(body, v); err != nil {
		httputil.HandleError(w, "Could not decode request body: "+err.Error(), http.StatusBadRequest)
		return false
	}
	return true
}

func readBody(r *http.Request) ([]byte, error) {
	if r.Body == nil {
		return nil, nil
	}
	body, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBodySize+1))
	if err != nil {
		return nil, errors.Wrap(err, "could not read request body")
	}
	if len(body) > maxRequestBodySize {
		return nil, NewDecodeError(errors.New("request body too large"), "Body")
	}
	return body, nil
}
