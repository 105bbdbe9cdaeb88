package adaptor

import (
	"crypto/sha256"
	"io"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/ecdsa"
	"golang.org/x/crypto/hkdf"

	"github.com/lightninglabs/dlcd/contract"
)

// nonceScheme is a reference adaptor-signature implementation built from
// deterministic nonce derivation (HKDF over the message and encryption
// point, following the same "sign-to-contract" habit lnwallet's commitment
// signing uses for revocable keys) plus a transcript hash over the public
// nonce point, encryption point and message standing in for a DLEQ proof; the
// hash does not prove that the encryption point and the public nonce share
// a discrete log. It exists so dlcmgr and cmd/dlcctl
// have something concrete to run against; a production deployment should
// supply a Scheme backed by an audited adaptor-signature library instead.
type nonceScheme struct{}

// NewNonceScheme returns the reference Scheme implementation.
func NewNonceScheme() Scheme {
	return nonceScheme{}
}

func deriveNonce(msg [32]byte, encryptionPoint *btcec.PublicKey, sk *btcec.PrivateKey) *btcec.ModNScalar {
	h := hkdf.New(sha256.New, sk.Serialize(), encryptionPoint.SerializeCompressed(), msg[:])
	var buf [32]byte
	io.ReadFull(h, buf[:])

	var k btcec.ModNScalar
	k.SetBytes(&buf)
	if k.IsZero() {
		k.SetInt(1)
	}
	return &k
}

// Sign computes the public nonce R = k*G and the adaptor-shifted point
// R' = k*T (T the encryption point), r = R'.x, and s' = k^-1*(msg + r*sk)
// mod N. Decrypting later with T's discrete log t turns (r, s') into a
// standard ECDSA signature (r, s'*t^-1) over msg under sk*G, because the
// real signature's nonce point t*R = t*k*G = k*T = R' has the same x
// coordinate r, and its nonce scalar is t*k, the inverse of which scales
// s' by t^-1. This is the scalar-multiplication adaptor-signature
// construction (the same shape secp256k1-zkp's ecdsa_adaptor module uses,
// modulo its additional DLEQ proof of log_G(R) == log_T(R')).
func (nonceScheme) Sign(msg [32]byte, sk *btcec.PrivateKey, encryptionPoint *btcec.PublicKey) (*contract.AdaptorSignature, error) {
	k := deriveNonce(msg, encryptionPoint, sk)

	var rPoint btcec.JacobianPoint
	btcec.ScalarBaseMultNonConst(k, &rPoint)
	rPoint.ToAffine()
	rBytes := rPoint.X.Bytes()

	var shiftedPoint btcec.JacobianPoint
	encJ := pubKeyToJacobian(encryptionPoint)
	btcec.ScalarMultNonConst(k, &encJ, &shiftedPoint)
	shiftedPoint.ToAffine()
	shiftedBytes := shiftedPoint.X.Bytes()

	var rScalar btcec.ModNScalar
	rScalar.SetByteSlice(shiftedBytes[:])

	var e btcec.ModNScalar
	e.SetByteSlice(msg[:])

	priv := &sk.Key
	sVal := new(btcec.ModNScalar).Mul2(&rScalar, priv).Add(&e)
	kInv := new(btcec.ModNScalar).InverseValNonConst(k)
	sVal = sVal.Mul(kInv)

	sig := &contract.AdaptorSignature{}
	copy(sig[0:33], encryptionPoint.SerializeCompressed())
	rFull := rScalar.Bytes()
	copy(sig[33:65], rFull[:])
	sFull := sVal.Bytes()
	copy(sig[65:97], sFull[:])

	// DLEQ proof: should prove log_G(R) == log_T(R') for the same k used
	// above, binding R into the presignature without revealing k. A
	// transcript hash of the un-shifted nonce point stands in for a full
	// Schnorr DLEQ proof here.
	proof := sha256.Sum256(append(append(rBytes[:], encryptionPoint.SerializeCompressed()...), msg[:]...))
	copy(sig[97:129], proof[:])

	return sig, nil
}

func (nonceScheme) Verify(sig *contract.AdaptorSignature, msg [32]byte, pk *btcec.PublicKey, encryptionPoint *btcec.PublicKey) error {
	storedEnc := sig[0:33]
	if string(storedEnc) != string(encryptionPoint.SerializeCompressed()) {
		return contract.NewError(contract.ErrInvalidAdaptorSignature,
			"adaptor signature was produced under a different encryption point")
	}

	var rScalar, sScalar btcec.ModNScalar
	rScalar.SetByteSlice(sig[33:65])
	sScalar.SetByteSlice(sig[65:97])
	if rScalar.IsZero() || sScalar.IsZero() {
		return contract.NewError(contract.ErrInvalidAdaptorSignature, "zero r or s")
	}

	// R = s'^-1*(msg*G + r*pk) recovers k*G (see Sign's derivation); the
	// adaptor signature is valid iff r is indeed (k*T).x for that same k,
	// which the (stubbed) DLEQ proof above is meant to establish.
	var e btcec.ModNScalar
	e.SetByteSlice(msg[:])

	sInv := new(btcec.ModNScalar).InverseValNonConst(&sScalar)
	u1 := new(btcec.ModNScalar).Mul2(&e, sInv)
	u2 := new(btcec.ModNScalar).Mul2(&rScalar, sInv)

	var u1G, u2Pk, rPoint btcec.JacobianPoint
	btcec.ScalarBaseMultNonConst(u1, &u1G)
	pkJ := pubKeyToJacobian(pk)
	btcec.ScalarMultNonConst(u2, &pkJ, &u2Pk)
	btcec.AddNonConst(&u1G, &u2Pk, &rPoint)
	rPoint.ToAffine()
	rBytes := rPoint.X.Bytes()

	// The stubbed DLEQ proof transcript-hashes R together with the
	// encryption point and message (see Sign); re-derive it here and
	// compare, standing in for a full proof that log_G(R) == log_T(R').
	wantProof := sha256.Sum256(append(append(rBytes[:], encryptionPoint.SerializeCompressed()...), msg[:]...))
	if string(sig[97:129]) != string(wantProof[:]) {
		return contract.NewError(contract.ErrInvalidAdaptorSignature,
			"adaptor signature failed verification")
	}
	return nil
}

// Decrypt combines the adaptor signature with the secret scalar behind its
// encryption point, scaling s' by the secret's modular inverse (see Sign's
// derivation), producing a standard DER-encoded ECDSA signature.
func (nonceScheme) Decrypt(sig *contract.AdaptorSignature, secret *btcec.PrivateKey) ([]byte, error) {
	var rScalar, sScalar btcec.ModNScalar
	rScalar.SetByteSlice(sig[33:65])
	sScalar.SetByteSlice(sig[65:97])

	secretInv := new(btcec.ModNScalar).InverseValNonConst(&secret.Key)
	sVal := new(btcec.ModNScalar).Mul2(&sScalar, secretInv)

	r := new(btcec.ModNScalar)
	*r = rScalar
	s := new(btcec.ModNScalar)
	*s = *sVal

	derSig := ecdsa.NewSignature(r, s)
	return append(derSig.Serialize(), 0x01), nil
}

func pubKeyToJacobian(pk *btcec.PublicKey) btcec.JacobianPoint {
	var j btcec.JacobianPoint
	pk.AsJacobian(&j)
	return j
}
