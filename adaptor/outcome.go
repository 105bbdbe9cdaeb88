package adaptor

import (
	"crypto/sha256"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/lightninglabs/dlcd/contract"
)

// ComputeOutcomePoint derives the encryption point a single oracle commits
// an outcome message to: R + hash(R || outcome)*P, where R is the oracle's
// public nonce and P its long-term public key -- the standard
// Schnorr-signature-as-adaptor-point construction DLCs build on (the point
// whose discrete log an oracle's attestation scalar s = k + e*x reveals, so
// that s*G equals exactly this sum). Parsing the announcement itself is out
// of scope (spec.md S1.ii); this is the in-scope use the Adaptor Engine
// makes of it once parsed.
func ComputeOutcomePoint(oracle contract.OracleAnnouncement, outcome string) (*btcec.PublicKey, error) {
	if len(oracle.Nonces) == 0 {
		return nil, contract.NewError(contract.ErrInvalidParameters, "oracle announcement has no nonces")
	}
	return addOutcomeHash(oracle.Nonces[0], oracle.PublicKey, outcome)
}

func addOutcomeHash(noncePub, oraclePub *btcec.PublicKey, outcome string) (*btcec.PublicKey, error) {
	digest := sha256.Sum256(append(noncePub.SerializeCompressed(), []byte(outcome)...))
	var e btcec.ModNScalar
	e.SetByteSlice(digest[:])

	var oraclePoint, eP, noncePoint, sum btcec.JacobianPoint
	oraclePub.AsJacobian(&oraclePoint)
	btcec.ScalarMultNonConst(&e, &oraclePoint, &eP)
	noncePub.AsJacobian(&noncePoint)
	btcec.AddNonConst(&eP, &noncePoint, &sum)
	sum.ToAffine()

	x := sum.X
	y := sum.Y
	return btcec.NewPublicKey(&x, &y), nil
}

// sumPoints adds a set of public keys, returning the affine sum.
func sumPoints(points []*btcec.PublicKey) (*btcec.PublicKey, error) {
	if len(points) == 0 {
		return nil, contract.NewError(contract.ErrInvalidParameters, "no points to aggregate")
	}
	var acc btcec.JacobianPoint
	points[0].AsJacobian(&acc)
	for _, p := range points[1:] {
		var j btcec.JacobianPoint
		p.AsJacobian(&j)
		btcec.AddNonConst(&acc, &j, &acc)
	}
	acc.ToAffine()
	x := acc.X
	y := acc.Y
	return btcec.NewPublicKey(&x, &y), nil
}

// enumOutcomePoint aggregates the single-nonce outcome points of every
// oracle in the set. Every listed oracle must attest for the aggregate
// secret to be recoverable, so enumerated outcome trees are n-of-n over
// their announced oracles.
func enumOutcomePoint(oracles []contract.OracleAnnouncement, outcome string) (*btcec.PublicKey, error) {
	points := make([]*btcec.PublicKey, len(oracles))
	for i, o := range oracles {
		p, err := ComputeOutcomePoint(o, outcome)
		if err != nil {
			return nil, err
		}
		points[i] = p
	}
	return sumPoints(points)
}

// numericOutcomePoint derives the encryption point for a covering prefix
// attested by a specific combination of oracles: for each oracle in the
// combination, one per-digit point R_j + hash(R_j || digit)*P summed over
// the prefix's digits, then summed across the combination. The discrete
// log is the sum of each participating oracle's per-digit attestation
// scalars over the same digits.
func numericOutcomePoint(
	oracles []contract.OracleAnnouncement, combo []int, digits []int64,
) (*btcec.PublicKey, error) {

	var points []*btcec.PublicKey
	for _, oracleIdx := range combo {
		if oracleIdx >= len(oracles) {
			return nil, contract.NewError(contract.ErrInvalidParameters,
				"oracle index %d past announced oracle set (%d)", oracleIdx, len(oracles))
		}
		o := oracles[oracleIdx]
		if len(o.Nonces) < len(digits) {
			return nil, contract.NewError(contract.ErrInvalidParameters,
				"oracle %d announced %d nonces, need %d for digit prefix",
				oracleIdx, len(o.Nonces), len(digits))
		}
		for j, d := range digits {
			p, err := addOutcomeHash(o.Nonces[j], o.PublicKey, digitLabel(d))
			if err != nil {
				return nil, err
			}
			points = append(points, p)
		}
	}
	return sumPoints(points)
}

// AggregateOutcomeSecret sums a set of revealed attestation scalars mod N
// into the private key that decrypts an adaptor signature whose encryption
// point was the matching sum of outcome points.
func AggregateOutcomeSecret(scalars [][32]byte) (*btcec.PrivateKey, error) {
	if len(scalars) == 0 {
		return nil, contract.NewError(contract.ErrNoMatchingCET,
			"no oracle signatures to decrypt with")
	}
	var acc btcec.ModNScalar
	for _, s := range scalars {
		var v btcec.ModNScalar
		v.SetByteSlice(s[:])
		acc.Add(&v)
	}
	if acc.IsZero() {
		return nil, contract.NewError(contract.ErrNoMatchingCET,
			"aggregated oracle secret is zero")
	}
	return secp256k1.NewPrivateKey(&acc), nil
}

// combinations enumerates every k-element subset of {0..n-1} in
// lexicographic order; both sides must agree on this order for adaptor
// signature indices to line up.
func combinations(n, k int) [][]int {
	if k <= 0 || k > n {
		return nil
	}
	var out [][]int
	combo := make([]int, k)
	for i := range combo {
		combo[i] = i
	}
	for {
		out = append(out, append([]int(nil), combo...))
		i := k - 1
		for i >= 0 && combo[i] == n-k+i {
			i--
		}
		if i < 0 {
			return out
		}
		combo[i]++
		for j := i + 1; j < k; j++ {
			combo[j] = combo[j-1] + 1
		}
	}
}

// digitsForValue decomposes v into NumDigits digits in the given base,
// most significant first.
func digitsForValue(v int64, base, numDigits int) []int64 {
	digits := make([]int64, numDigits)
	for i := numDigits - 1; i >= 0; i-- {
		digits[i] = v % int64(base)
		v /= int64(base)
	}
	return digits
}

// digitLabel renders one digit as the message an oracle signs when
// attesting that digit's position.
func digitLabel(d int64) string {
	if d < 10 {
		return string([]byte{byte('0' + d)})
	}
	return string([]byte{byte('a' + d - 10)})
}

// outcomeLabelForDigits renders a digit path into a compact label used to
// identify a covering prefix's payout leaf.
func outcomeLabelForDigits(digits []int64) string {
	b := make([]byte, 0, len(digits))
	for _, d := range digits {
		b = append(b, digitLabel(d)[0])
	}
	return string(b)
}
