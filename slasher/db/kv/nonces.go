package kv

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
	"github.com/sealwatch/slasher/encoding/bytesutil"
	bolt "go.etcd.io/bbolt"
	"go.opencensus.io/trace"
)

// LastNonce returns the last request nonce accepted from caller, 0 if none.
func (s *Store) LastNonce(ctx context.Context, caller common.Address) (uint64, error) {
	_, span := trace.StartSpan(ctx, "SlasherDB.LastNonce")
	defer span.End()
	var nonce uint64
	err := s.view(func(tx *bolt.Tx) error {
		if enc := tx.Bucket(requestNoncesBucket).Get(caller.Bytes()); enc != nil {
			nonce = bytesutil.BytesToUint64BigEndian(enc)
		}
		return nil
	})
	return nonce, err
}

// ConsumeNonce accepts nonce for caller only if it is strictly greater than
// the last one accepted, and stores it. Otherwise it fails with ErrStaleNonce.
func (s *Store) ConsumeNonce(ctx context.Context, caller common.Address, nonce uint64) error {
	_, span := trace.StartSpan(ctx, "SlasherDB.ConsumeNonce")
	defer span.End()
	return s.update(func(tx *bolt.Tx) error {
		bkt := tx.Bucket(requestNoncesBucket)
		if enc := bkt.Get(caller.Bytes()); enc != nil {
			if last := bytesutil.BytesToUint64BigEndian(enc); nonce <= last {
				return errors.Wrapf(ErrStaleNonce, "nonce %d, last accepted %d", nonce, last)
			}
		}
		return bkt.Put(caller.Bytes(), bytesutil.Uint64ToBytesBigEndian(nonce))
	})
}
