package contract

// AdaptorSignature is an encrypted ECDSA signature: valid once combined
// with the secret scalar recovered from an oracle attestation. The
// encoding is opaque to this package: a 33-byte compressed encryption
// point, two 32-byte scalars (r, s'), and a 32-byte DLEQ proof transcript,
// padded to the 162-byte EcdsaAdaptorSignature wire size used elsewhere in
// the DLC ecosystem (the remaining bytes are reserved and unused by the
// reference adaptor.Scheme, whose full proof machinery lives there).
type AdaptorSignature [162]byte

// RefundSignature is a plain (non-adaptor) ECDSA signature over the refund
// transaction's single multisig input, DER-encoded.
type RefundSignature []byte
