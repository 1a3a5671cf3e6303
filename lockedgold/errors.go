package lockedgold

import "github.com/pkg/errors"

// ErrInsufficientBalance is returned when an exact debit exceeds the balance of an account.
var ErrInsufficientBalance = errors.New("insufficient nonvoting balance")
