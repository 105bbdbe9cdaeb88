package adaptor

import (
	"crypto/sha256"
	"testing"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/wire"
	"github.com/lightninglabs/dlcd/contract"
	"github.com/stretchr/testify/require"
)

// TestNonceSchemeSignVerifyRoundTrip confirms a freshly produced adaptor
// signature verifies against the same message, signer pubkey, and
// encryption point it was created with, and is rejected once any of those
// three is swapped out.
func TestNonceSchemeSignVerifyRoundTrip(t *testing.T) {
	scheme := NewNonceScheme()

	sk, err := btcec.NewPrivateKey()
	require.NoError(t, err)
	encSK, err := btcec.NewPrivateKey()
	require.NoError(t, err)
	encPoint := encSK.PubKey()

	msg := sha256.Sum256([]byte("dlc outcome"))

	sig, err := scheme.Sign(msg, sk, encPoint)
	require.NoError(t, err)

	require.NoError(t, scheme.Verify(sig, msg, sk.PubKey(), encPoint))

	otherSK, err := btcec.NewPrivateKey()
	require.NoError(t, err)
	require.Error(t, scheme.Verify(sig, msg, otherSK.PubKey(), encPoint))

	otherMsg := sha256.Sum256([]byte("different outcome"))
	require.Error(t, scheme.Verify(sig, otherMsg, sk.PubKey(), encPoint))

	otherEncSK, err := btcec.NewPrivateKey()
	require.NoError(t, err)
	require.Error(t, scheme.Verify(sig, msg, sk.PubKey(), otherEncSK.PubKey()))
}

// TestNonceSchemeDecryptProducesParseableSignature confirms Decrypt yields
// a well-formed DER-encoded ECDSA signature (with trailing sighash byte)
// once the encryption point's discrete log is supplied.
func TestNonceSchemeDecryptProducesParseableSignature(t *testing.T) {
	scheme := NewNonceScheme()

	sk, err := btcec.NewPrivateKey()
	require.NoError(t, err)
	encSK, err := btcec.NewPrivateKey()
	require.NoError(t, err)

	msg := sha256.Sum256([]byte("dlc outcome"))
	sig, err := scheme.Sign(msg, sk, encSK.PubKey())
	require.NoError(t, err)

	der, err := scheme.Decrypt(sig, encSK)
	require.NoError(t, err)
	require.NotEmpty(t, der)
	require.Equal(t, byte(0x01), der[len(der)-1])
}

// buildFakeCET returns a single-input transaction suitable as a stand-in
// CET for adaptor-signature generation: only its sighash matters here, not
// its outputs.
func buildFakeCET(outcome byte) *wire.MsgTx {
	tx := wire.NewMsgTx(2)
	tx.AddTxIn(wire.NewTxIn(&wire.OutPoint{Index: uint32(outcome)}, nil, nil))
	tx.AddTxOut(wire.NewTxOut(int64(outcome)+1, []byte{0x00, 0x20}))
	return tx
}

// TestGetAndVerifyEnumAdaptorInfoRoundTrip exercises spec.md S4.2's
// generate/verify symmetry for an enumerated outcome tree: every adaptor
// signature GetAdaptorInfo produces must verify under
// VerifyAndGetAdaptorInfo.
func TestGetAndVerifyEnumAdaptorInfoRoundTrip(t *testing.T) {
	scheme := NewNonceScheme()

	fundSK, err := btcec.NewPrivateKey()
	require.NoError(t, err)
	oraclePriv, err := btcec.NewPrivateKey()
	require.NoError(t, err)
	noncePriv, err := btcec.NewPrivateKey()
	require.NoError(t, err)

	ci := &contract.ContractInfo{
		Oracles: []contract.OracleAnnouncement{{
			PublicKey: oraclePriv.PubKey(),
			Nonces:    []*btcec.PublicKey{noncePriv.PubKey()},
		}},
		Threshold: 1,
		Outcomes: &contract.EnumeratedOutcomes{Outcomes: []contract.Payout{
			{Outcome: "win", OfferPayout: 100_000},
			{Outcome: "lose", OfferPayout: 0},
		}},
	}

	cets := []*wire.MsgTx{buildFakeCET(0), buildFakeCET(1)}
	fundingScript := []byte{0x51}
	const fundValue = 200_000

	info, sigs, err := GetAdaptorInfo(scheme, ci, fundValue, fundSK, fundingScript, fundValue, cets)
	require.NoError(t, err)
	require.IsType(t, &contract.EnumAdaptorInfo{}, info)
	require.Len(t, sigs, 2)

	verifiedInfo, next, err := VerifyAndGetAdaptorInfo(
		scheme, ci, fundSK.PubKey(), fundingScript, fundValue, cets, sigs, 0,
	)
	require.NoError(t, err)
	require.Equal(t, 2, next)
	require.IsType(t, &contract.EnumAdaptorInfo{}, verifiedInfo)

	next, err = VerifyAdaptorInfo(scheme, ci, verifiedInfo, fundSK.PubKey(), fundingScript, fundValue, cets, sigs, 0)
	require.NoError(t, err)
	require.Equal(t, 2, next)

	// Tampering with a signature must break verification.
	tampered := append([]contract.AdaptorSignature(nil), sigs...)
	tampered[0][70] ^= 0xFF
	_, _, err = VerifyAndGetAdaptorInfo(scheme, ci, fundSK.PubKey(), fundingScript, fundValue, cets, tampered, 0)
	require.Error(t, err)
}

// numericTestOracle bundles an oracle key with per-digit nonce keys so the
// test can announce and attest the way a numeric oracle would.
type numericTestOracle struct {
	priv   *btcec.PrivateKey
	nonces []*btcec.PrivateKey
}

func newNumericTestOracle(t *testing.T, numDigits int) *numericTestOracle {
	priv, err := btcec.NewPrivateKey()
	require.NoError(t, err)
	nonces := make([]*btcec.PrivateKey, numDigits)
	for i := range nonces {
		nonces[i], err = btcec.NewPrivateKey()
		require.NoError(t, err)
	}
	return &numericTestOracle{priv: priv, nonces: nonces}
}

func (o *numericTestOracle) announcement() contract.OracleAnnouncement {
	nonces := make([]*btcec.PublicKey, len(o.nonces))
	for i, n := range o.nonces {
		nonces[i] = n.PubKey()
	}
	return contract.OracleAnnouncement{PublicKey: o.priv.PubKey(), Nonces: nonces}
}

// TestGetAndVerifyNumericAdaptorInfoRoundTrip exercises the numeric path
// with a 2-of-3 oracle threshold: every (covering prefix, oracle pair)
// combination gets one adaptor signature, and the verifying side rebuilds
// a trie resolving the same (oracle indices, digit path) tuples to the
// same RangeInfo pairs.
func TestGetAndVerifyNumericAdaptorInfoRoundTrip(t *testing.T) {
	scheme := NewNonceScheme()

	fundSK, err := btcec.NewPrivateKey()
	require.NoError(t, err)

	const numDigits = 4
	oracles := []*numericTestOracle{
		newNumericTestOracle(t, numDigits),
		newNumericTestOracle(t, numDigits),
		newNumericTestOracle(t, numDigits),
	}
	announcements := make([]contract.OracleAnnouncement, len(oracles))
	for i, o := range oracles {
		announcements[i] = o.announcement()
	}

	outcomes := &contract.NumericOutcomes{
		Base:      2,
		NumDigits: numDigits,
		Intervals: []contract.NumericInterval{
			{Start: 0, End: 7, StartPayout: 0, EndPayout: 50_000},
			{Start: 8, End: 15, StartPayout: 50_000, EndPayout: 100_000},
		},
	}
	ci := &contract.ContractInfo{
		Oracles:   announcements,
		Threshold: 2,
		Outcomes:  outcomes,
	}

	// Both intervals are block-aligned single prefixes -> 2 CETs, and
	// C(3,2) = 3 signatures per CET.
	cets := []*wire.MsgTx{buildFakeCET(0), buildFakeCET(1)}
	fundingScript := []byte{0x51}
	const fundValue = 100_000

	info, sigs, err := GetAdaptorInfo(scheme, ci, fundValue, fundSK, fundingScript, fundValue, cets)
	require.NoError(t, err)
	require.Len(t, sigs, 6)

	genInfo, ok := info.(*contract.NumericAdaptorInfo)
	require.True(t, ok)

	verifiedInfo, next, err := VerifyAndGetAdaptorInfo(
		scheme, ci, fundSK.PubKey(), fundingScript, fundValue, cets, sigs, 0,
	)
	require.NoError(t, err)
	require.Equal(t, 6, next)

	verInfo, ok := verifiedInfo.(*contract.NumericAdaptorInfo)
	require.True(t, ok)

	// Both tries resolve every (oracle pair, digit path) tuple to the
	// same RangeInfo, at the same depth.
	for _, tc := range []struct {
		key  []int64
		want contract.RangeInfo
	}{
		{key: []int64{0, 1, 0, 1, 1, 0}, want: contract.RangeInfo{CETIndex: 0, AdaptorIndex: 0}},
		{key: []int64{0, 2, 0, 0, 0, 0}, want: contract.RangeInfo{CETIndex: 0, AdaptorIndex: 1}},
		{key: []int64{1, 2, 1, 1, 1, 1}, want: contract.RangeInfo{CETIndex: 1, AdaptorIndex: 5}},
	} {
		got, depth, ok := genInfo.Trie.Lookup(tc.key)
		require.True(t, ok)
		require.Equal(t, tc.want, got)
		require.Equal(t, 3, depth)

		gotVer, depthVer, ok := verInfo.Trie.Lookup(tc.key)
		require.True(t, ok)
		require.Equal(t, got, gotVer)
		require.Equal(t, depth, depthVer)
	}

	// An oracle set below the threshold never matches.
	_, _, ok = genInfo.Trie.Lookup([]int64{0, 0, 0, 0, 0})
	require.False(t, ok)

	// The cached-info re-verification pass consumes the same signature
	// span (spec.md S4.2 / S8.5).
	next, err = VerifyAdaptorInfo(scheme, ci, verifiedInfo, fundSK.PubKey(), fundingScript, fundValue, cets, sigs, 0)
	require.NoError(t, err)
	require.Equal(t, 6, next)

	count, err := AdaptorSigCount(ci, 100_000)
	require.NoError(t, err)
	require.Equal(t, 6, count)
}
