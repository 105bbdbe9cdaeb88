package contract

import (
	"fmt"

	goerrors "github.com/go-errors/errors"
)

// Kind classifies the failure a transition aborted with. It mirrors the
// taxonomy used throughout the protocol: verification failures are fatal
// for the contract, while collaborator faults are left to the host to
// retry or not.
type Kind int

const (
	// ErrInvalidParameters is returned for ill-formed inputs: bad payout
	// sums, an undecodable previous transaction, a vout past the end of
	// a previous transaction's outputs, or insufficient fee coverage.
	ErrInvalidParameters Kind = iota

	// ErrInvalidState is returned when a serial id can't be located
	// during witness reconciliation, or a transition is invoked from the
	// wrong phase.
	ErrInvalidState

	// ErrInvalidAdaptorSignature is returned when a peer's adaptor
	// signature fails verification under the counterparty's fund pubkey.
	ErrInvalidAdaptorSignature

	// ErrInvalidRefundSignature is returned when a peer's refund
	// signature fails verification.
	ErrInvalidRefundSignature

	// ErrNoMatchingCET is returned at closure time when no CET matches
	// the provided oracle attestations.
	ErrNoMatchingCET

	// ErrWallet wraps a fault propagated from the Wallet collaborator.
	ErrWallet

	// ErrBlockchain wraps a fault propagated from the Blockchain
	// collaborator.
	ErrBlockchain

	// ErrSigner wraps a fault propagated from the Signer collaborator.
	ErrSigner
)

func (k Kind) String() string {
	switch k {
	case ErrInvalidParameters:
		return "InvalidParameters"
	case ErrInvalidState:
		return "InvalidState"
	case ErrInvalidAdaptorSignature:
		return "InvalidAdaptorSignature"
	case ErrInvalidRefundSignature:
		return "InvalidRefundSignature"
	case ErrNoMatchingCET:
		return "NoMatchingCET"
	case ErrWallet:
		return "WalletError"
	case ErrBlockchain:
		return "BlockchainError"
	case ErrSigner:
		return "SignerError"
	default:
		return "UnknownError"
	}
}

// Error is the error type returned by every transition in this module. It
// carries a Kind so callers can branch on failure category without string
// matching, and an optional wrapped cause for collaborator faults.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// NewError builds an Error of the given Kind with a formatted message.
func NewError(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// WrapCollaboratorError tags an error surfaced by one of the Wallet,
// Blockchain or Signer collaborators with the corresponding Kind. The
// original error is preserved via go-errors so a stack trace survives
// across the collaborator boundary, the same way server.go/peer.go in lnd
// wrap unexpected faults before logging them.
func WrapCollaboratorError(kind Kind, cause error) *Error {
	if cause == nil {
		return nil
	}
	return &Error{
		Kind:    kind,
		Message: "collaborator fault",
		Cause:   goerrors.Wrap(cause, 1),
	}
}
