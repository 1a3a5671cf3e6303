package primitives

// ValidatorIndex is a validator's seat within one epoch's validator set. The
// same index may refer to different validators in different epochs.
type ValidatorIndex uint64
