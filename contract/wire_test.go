package contract

import (
	"bytes"
	"testing"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/stretchr/testify/require"
)

func mustPubKey(t *testing.T) *btcec.PublicKey {
	priv, err := btcec.NewPrivateKey()
	require.NoError(t, err)
	return priv.PubKey()
}

func samplePartyParams(t *testing.T) PartyParams {
	return PartyParams{
		FundPubKey:         mustPubKey(t),
		ChangeScriptPubKey: []byte{0x00, 0x14, 1, 2, 3},
		ChangeSerialID:     11,
		PayoutScriptPubKey: []byte{0x00, 0x14, 4, 5, 6},
		PayoutSerialID:     22,
		FundingInputs: []FundingInputInfo{{
			PrevTx:        []byte{0xde, 0xad, 0xbe, 0xef},
			PrevTxVout:    1,
			SerialID:      33,
			Sequence:      0xffffffff,
			MaxWitnessLen: 108,
			RedeemScript:  []byte{0x51},
		}},
		InputAmount: 150_000,
		Collateral:  100_000,
	}
}

// TestOfferDlcRoundTrip exercises spec.md S8.4's "serializing and
// re-parsing wire messages at each hop preserves equality" property for
// OfferDlc.
func TestOfferDlcRoundTrip(t *testing.T) {
	offer := &OfferDlc{
		ContractFlags: 1,
		ContractInfo: []ContractInfo{{
			Oracles: []OracleAnnouncement{{
				PublicKey: mustPubKey(t),
				Nonces:    []*btcec.PublicKey{mustPubKey(t)},
			}},
			Threshold: 1,
			Outcomes: &EnumeratedOutcomes{Outcomes: []Payout{
				{Outcome: "win", OfferPayout: 100_000},
				{Outcome: "lose", OfferPayout: 0},
			}},
		}},
		OfferParams:        samplePartyParams(t),
		FeeRatePerVb:       10,
		CetLocktime:        100,
		RefundLocktime:     200,
		FundOutputSerialID: 7,
	}

	raw, err := Bytes(offer.Encode)
	require.NoError(t, err)

	var decoded OfferDlc
	require.NoError(t, decoded.Decode(bytes.NewReader(raw)))

	require.Equal(t, offer.ContractFlags, decoded.ContractFlags)
	require.Equal(t, offer.FeeRatePerVb, decoded.FeeRatePerVb)
	require.Equal(t, offer.CetLocktime, decoded.CetLocktime)
	require.Equal(t, offer.RefundLocktime, decoded.RefundLocktime)
	require.Equal(t, offer.FundOutputSerialID, decoded.FundOutputSerialID)
	require.Len(t, decoded.ContractInfo, 1)
	require.Equal(t, offer.ContractInfo[0].Threshold, decoded.ContractInfo[0].Threshold)

	outcomes, ok := decoded.ContractInfo[0].Outcomes.(*EnumeratedOutcomes)
	require.True(t, ok)
	require.Equal(t, []Payout{
		{Outcome: "win", OfferPayout: 100_000},
		{Outcome: "lose", OfferPayout: 0},
	}, outcomes.Outcomes)

	require.True(t, offer.OfferParams.FundPubKey.IsEqual(decoded.OfferParams.FundPubKey))
	require.Equal(t, offer.OfferParams.ChangeScriptPubKey, decoded.OfferParams.ChangeScriptPubKey)
	require.Equal(t, offer.OfferParams.FundingInputs, decoded.OfferParams.FundingInputs)
}

func TestAcceptDlcRoundTrip(t *testing.T) {
	accept := &AcceptDlc{
		AcceptCollateral: 50_000,
		FundingInputs: []FundingInputInfo{{
			PrevTx: []byte{1, 2, 3}, PrevTxVout: 0, SerialID: 5,
		}},
		ChangeSpk:      []byte{0x00, 0x14},
		ChangeSerialID: 9,
		PayoutSpk:      []byte{0x00, 0x14, 1},
		PayoutSerialID: 10,
		CetAdaptorSignatures: CetAdaptorSignatures{
			Signatures: []AdaptorSignature{{1, 2, 3}, {4, 5, 6}},
		},
		RefundSignature: RefundSignature([]byte{9, 9, 9}),
	}
	copy(accept.FundingPubkeyBytes[:], mustPubKey(t).SerializeCompressed())

	raw, err := Bytes(accept.Encode)
	require.NoError(t, err)

	var decoded AcceptDlc
	require.NoError(t, decoded.Decode(bytes.NewReader(raw)))

	require.Equal(t, accept.AcceptCollateral, decoded.AcceptCollateral)
	require.Equal(t, accept.FundingInputs, decoded.FundingInputs)
	require.Equal(t, accept.ChangeSpk, decoded.ChangeSpk)
	require.Equal(t, accept.ChangeSerialID, decoded.ChangeSerialID)
	require.Equal(t, accept.PayoutSpk, decoded.PayoutSpk)
	require.Equal(t, accept.PayoutSerialID, decoded.PayoutSerialID)
	require.Equal(t, accept.FundingPubkeyBytes, decoded.FundingPubkeyBytes)
	require.Equal(t, accept.CetAdaptorSignatures.Signatures, decoded.CetAdaptorSignatures.Signatures)
	require.Equal(t, accept.RefundSignature, decoded.RefundSignature)
}

func TestSignDlcRoundTrip(t *testing.T) {
	signMsg := &SignDlc{
		CetAdaptorSignatures: CetAdaptorSignatures{
			Signatures: []AdaptorSignature{{1, 2, 3}},
		},
		RefundSignature: RefundSignature([]byte{7, 7, 7}),
		FundingSignatures: FundingSignatures{
			FundingSignatures: []FundingSignature{{
				WitnessElements: []WitnessElement{
					{Witness: []byte{1, 2}},
					{Witness: []byte{3, 4, 5}},
				},
			}},
		},
	}

	raw, err := Bytes(signMsg.Encode)
	require.NoError(t, err)

	var decoded SignDlc
	require.NoError(t, decoded.Decode(bytes.NewReader(raw)))

	require.Equal(t, signMsg.CetAdaptorSignatures.Signatures, decoded.CetAdaptorSignatures.Signatures)
	require.Equal(t, signMsg.RefundSignature, decoded.RefundSignature)
	require.Equal(t, signMsg.FundingSignatures, decoded.FundingSignatures)
}

var _ = btcutil.Amount(0)
