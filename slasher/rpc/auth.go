package rpc

import (
	"context"
	"crypto/ecdsa"
	"net/http"
	"strconv"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/pkg/errors"
)

const (
	// CallerHeader carries the hex address of the account signing the request.
	CallerHeader = "X-Slasher-Caller"
	// NonceHeader carries the decimal request nonce. Each caller's nonces
	// must strictly increase across accepted requests.
	NonceHeader = "X-Slasher-Nonce"
	// SignatureHeader carries the hex encoded secp256k1 signature over
	// RequestDigest.
	SignatureHeader = "X-Slasher-Signature"
)

// RequestDigest is the Keccak256 hash a caller signs: the method, the URL
// path, the nonce and the body, newline separated.
func RequestDigest(method, path string, nonce uint64, body []byte) []byte {
	return crypto.Keccak256(
		[]byte(method), []byte("\n"),
		[]byte(path), []byte("\n"),
		[]byte(strconv.FormatUint(nonce, 10)), []byte("\n"),
		body,
	)
}

// SignRequest signs RequestDigest with key and hex encodes the 65 byte
// [R || S || V] signature for SignatureHeader.
func SignRequest(key *ecdsa.PrivateKey, method, path string, nonce uint64, body []byte) (string, error) {
	sig, err := crypto.Sign(RequestDigest(method, path, nonce, body), key)
	if err != nil {
		return "", errors.Wrap(err, "could not sign request")
	}
	return hexutil.Encode(sig), nil
}

// RecoverSigner returns the account that signed digest.
func RecoverSigner(digest []byte, signature string) (common.Address, error) {
	if signature == "" {
		return common.Address{}, errMissingSignature
	}
	sig, err := hexutil.Decode(signature)
	if err != nil {
		return common.Address{}, errors.Wrap(errInvalidSignature, err.Error())
	}
	if len(sig) != crypto.SignatureLength {
		return common.Address{}, errors.Wrapf(errInvalidSignature, "signature is %d bytes, want %d", len(sig), crypto.SignatureLength)
	}
	pub, err := crypto.SigToPub(digest, sig)
	if err != nil {
		return common.Address{}, errors.Wrap(errInvalidSignature, err.Error())
	}
	return crypto.PubkeyToAddress(*pub), nil
}

// authenticate reads the request body, checks that the claimed caller signed
// this method, path, nonce and body, then consumes the nonce.
func (s *Server) authenticate(ctx context.Context, r *http.Request) (common.Address, []byte, error) {
	body, err := readBody(r)
	if err != nil {
		return common.Address{}, nil, err
	}
	claimed := r.Header.Get(CallerHeader)
	if !common.IsHexAddress(claimed) {
		return common.Address{}, nil, errors.Wrapf(errInvalidSignature, "missing or malformed %s header", CallerHeader)
	}
	caller := common.HexToAddress(claimed)
	nonce, err := strconv.ParseUint(r.Header.Get(NonceHeader), 10, 64)
	if err != nil {
		return common.Address{}, nil, errors.Wrapf(errInvalidSignature, "missing or malformed %s header", NonceHeader)
	}
	signer, err := RecoverSigner(RequestDigest(r.Method, r.URL.Path, nonce, body), r.Header.Get(SignatureHeader))
	if err != nil {
		return common.Address{}, nil, err
	}
	if signer != caller {
		return common.Address{}, nil, errors.Wrap(errInvalidSignature, "signature does not match caller")
	}
	if err := s.cfg.nonces.ConsumeNonce(ctx, caller, nonce); err != nil {
		return common.Address{}, nil, err
	}
	return caller, body, nil
}
