package main

import (
	"crypto/sha256"

	"github.com/btcsuite/btcd/btcec/v2"

	"github.com/lightninglabs/dlcd/contract"
)

// toyOracle is a stand-in oracle that both announces a commitment and
// later attests by revealing the Schnorr-style scalar s = k + e*x mod N
// for each message it is asked to attest. It announces one nonce per
// attestable position: a single nonce for an enumerated outcome, one per
// digit for a numeric outcome. Parsing a real oracle
// announcement/attestation format is out of scope (spec.md S1.ii); this
// produces values shaped the way the Adaptor Engine expects to consume
// them.
type toyOracle struct {
	priv       *btcec.PrivateKey
	noncePrivs []*btcec.PrivateKey
}

// newToyOracle creates an oracle with numNonces announced nonces (1 for
// enumerated outcomes, NumDigits for numeric ones).
func newToyOracle(numNonces int) *toyOracle {
	priv, _ := btcec.NewPrivateKey()
	nonces := make([]*btcec.PrivateKey, numNonces)
	for i := range nonces {
		nonces[i], _ = btcec.NewPrivateKey()
	}
	return &toyOracle{priv: priv, noncePrivs: nonces}
}

func (o *toyOracle) announcement() contract.OracleAnnouncement {
	nonces := make([]*btcec.PublicKey, len(o.noncePrivs))
	for i, n := range o.noncePrivs {
		nonces[i] = n.PubKey()
	}
	return contract.OracleAnnouncement{
		PublicKey: o.priv.PubKey(),
		Nonces:    nonces,
	}
}

// attestAt computes the revealed scalar for the given message at nonce
// position idx.
func (o *toyOracle) attestAt(idx int, msg string) [32]byte {
	noncePriv := o.noncePrivs[idx]
	digest := sha256.Sum256(append(noncePriv.PubKey().SerializeCompressed(), []byte(msg)...))
	var e btcec.ModNScalar
	e.SetByteSlice(digest[:])

	priv := o.priv.Key
	k := noncePriv.Key
	s := new(btcec.ModNScalar).Mul2(&e, &priv).Add(&k)

	var out [32]byte
	sBytes := s.Bytes()
	copy(out[:], sBytes[:])
	return out
}

// attest reveals the scalar for an enumerated outcome label.
func (o *toyOracle) attest(outcome string) [32]byte {
	return o.attestAt(0, outcome)
}

// attestDigits reveals one scalar per digit of a numeric outcome, most
// significant first.
func (o *toyOracle) attestDigits(digits []int64) [][32]byte {
	out := make([][32]byte, len(digits))
	for i, d := range digits {
		out[i] = o.attestAt(i, digitString(d))
	}
	return out
}

// digitString mirrors the per-digit message the adaptor engine hashes when
// deriving a digit's outcome point.
func digitString(d int64) string {
	if d < 10 {
		return string([]byte{byte('0' + d)})
	}
	return string([]byte{byte('a' + d - 10)})
}
