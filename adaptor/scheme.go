// Package adaptor generates and verifies the ECDSA adaptor signatures that
// bind each Contract Execution Transaction to the oracle outcome that
// unlocks it, and builds the AdaptorInfo structures the closure step later
// walks to find the right CET.
package adaptor

import (
	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/lightninglabs/dlcd/contract"
)

// Scheme is the single-sighash ECDSA adaptor-sign/verify primitive. It is
// the one piece of cryptography spec.md treats as a genuinely external,
// swappable dependency (S1.i): no library in this module's corpus
// implements adaptor signatures, so callers supply one (NewNonceScheme
// below is a reference implementation, not a production-grade one).
type Scheme interface {
	// Sign produces an adaptor signature over msg that becomes a valid
	// ECDSA signature once combined with the discrete log of
	// encryptionPoint.
	Sign(msg [32]byte, sk *btcec.PrivateKey, encryptionPoint *btcec.PublicKey) (*contract.AdaptorSignature, error)

	// Verify checks an adaptor signature against the signer's pubkey and
	// the encryption point it was produced under.
	Verify(sig *contract.AdaptorSignature, msg [32]byte, pk *btcec.PublicKey, encryptionPoint *btcec.PublicKey) error

	// Decrypt combines an adaptor signature with the discrete log of its
	// encryption point (the secret recovered from an oracle attestation),
	// producing a plain DER-encoded ECDSA signature spendable on chain.
	Decrypt(sig *contract.AdaptorSignature, secret *btcec.PrivateKey) ([]byte, error)
}
