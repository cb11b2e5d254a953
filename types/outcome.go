package types

import (
	"github.com/ipfs/go-cid"
)

// PaymentOutcome is the terminal result of one funding attempt.
type PaymentOutcome struct {
	// MsgCid is the funding message, nil when no transaction was needed.
	MsgCid *cid.Cid

	Succeeded bool

	// Skipped is set on the zero-deposit, already-sufficient fast path. This
	// is a normal outcome, not an error.
	Skipped bool

	Error string
}
