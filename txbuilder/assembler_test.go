package txbuilder

import (
	"bytes"
	"testing"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/wire"
	"github.com/davecgh/go-spew/spew"
	"github.com/lightninglabs/dlcd/contract"
	"github.com/stretchr/testify/require"
)

// fakePrevTx builds a minimal serialized transaction with a single output
// of the given value, usable as a FundingInputInfo.PrevTx fixture.
func fakePrevTx(t *testing.T, value int64) []byte {
	tx := wire.NewMsgTx(2)
	tx.AddTxIn(wire.NewTxIn(&wire.OutPoint{}, nil, nil))
	tx.AddTxOut(wire.NewTxOut(value, []byte{0x00, 0x14, 1, 2, 3, 4}))
	var buf bytes.Buffer
	require.NoError(t, tx.Serialize(&buf))
	return buf.Bytes()
}

func fakeFundingInput(t *testing.T, serialID uint64, value int64) contract.FundingInputInfo {
	return contract.FundingInputInfo{
		PrevTx:        fakePrevTx(t, value),
		PrevTxVout:    0,
		SerialID:      serialID,
		Sequence:      wire.MaxTxInSequenceNum,
		MaxWitnessLen: 108,
	}
}

func samplePartyParams(t *testing.T, serialBase uint64, inputAmt, collateral btcutil.Amount) contract.PartyParams {
	priv, err := btcec.NewPrivateKey()
	require.NoError(t, err)
	return contract.PartyParams{
		FundPubKey:         priv.PubKey(),
		ChangeScriptPubKey: []byte{0x00, 0x14, 9, 9, 9, 9},
		ChangeSerialID:     serialBase + 1,
		PayoutScriptPubKey: []byte{0x00, 0x14, 8, 8, 8, 8},
		PayoutSerialID:     serialBase + 2,
		FundingInputs:      []contract.FundingInputInfo{fakeFundingInput(t, serialBase, int64(inputAmt))},
		InputAmount:        inputAmt,
		Collateral:         collateral,
	}
}

// TestCreateDlcTransactionsDeterministic exercises spec.md S8.1's "both
// parties derive byte-identical DlcTransactions from identical parameters"
// property: calling CreateDlcTransactions twice with equal arguments must
// produce the same fund/CET/refund transactions.
func TestCreateDlcTransactionsDeterministic(t *testing.T) {
	offer := samplePartyParams(t, 10, 200_000, 100_000)
	accept := samplePartyParams(t, 20, 200_000, 100_000)
	payouts := []contract.Payout{
		{Outcome: "win", OfferPayout: 200_000},
		{Outcome: "lose", OfferPayout: 0},
	}

	txs1, err := CreateDlcTransactions(offer, accept, payouts, 200_000, 200, 100, 10, 5)
	require.NoError(t, err)
	txs2, err := CreateDlcTransactions(offer, accept, payouts, 200_000, 200, 100, 10, 5)
	require.NoError(t, err)

	require.Equalf(t, txs1.Fund.TxHash(), txs2.Fund.TxHash(),
		"fund tx diverged across identical inputs:\n%s\nvs\n%s", spew.Sdump(txs1.Fund), spew.Sdump(txs2.Fund))
	require.Len(t, txs1.Cets, 2)
	require.Equal(t, txs1.Cets[0].TxHash(), txs2.Cets[0].TxHash())
	require.Equal(t, txs1.Refund.TxHash(), txs2.Refund.TxHash())
}

// TestBuildFundTxInputOrdering verifies fund-tx inputs land in ascending
// serial-id order regardless of which party contributed them (spec.md
// S4.1), using a cross-party interleaving (accept's input sorts before
// offer's).
func TestBuildFundTxInputOrdering(t *testing.T) {
	offer := samplePartyParams(t, 100, 150_000, 100_000)
	accept := samplePartyParams(t, 50, 150_000, 100_000)

	merged := mergeFundingInputs(offer, accept)
	require.Len(t, merged, 2)
	require.Equal(t, uint64(50), merged[0].info.SerialID)
	require.False(t, merged[0].isOffer)
	require.Equal(t, uint64(100), merged[1].info.SerialID)
	require.True(t, merged[1].isOffer)
}

// TestCreateCETsFromTemplateClonesInput confirms every CET after the first
// shares the identical funding input (fund outpoint, sequence) the template
// established, per CreateCETsFromTemplate's clone-don't-rebuild contract.
func TestCreateCETsFromTemplateClonesInput(t *testing.T) {
	offer := samplePartyParams(t, 10, 200_000, 100_000)
	accept := samplePartyParams(t, 20, 200_000, 100_000)

	fundOutpoint := wire.OutPoint{Index: 0}
	redeemScript, _, err := genFundingPkScript(
		PubKeyBytes(offer.FundPubKey), PubKeyBytes(accept.FundPubKey), 200_000,
	)
	require.NoError(t, err)

	payouts := []contract.Payout{
		{Outcome: "a", OfferPayout: 50_000},
		{Outcome: "b", OfferPayout: 150_000},
		{Outcome: "c", OfferPayout: 200_000},
	}

	cets, err := CreateCETsFromTemplate(fundOutpoint, redeemScript, offer, accept, payouts, 200_000, 50)
	require.NoError(t, err)
	require.Len(t, cets, 3)

	for _, cet := range cets {
		require.Len(t, cet.TxIn, 1)
		require.Equal(t, fundOutpoint, cet.TxIn[0].PreviousOutPoint)
		require.Equal(t, wire.MaxTxInSequenceNum-1, cet.TxIn[0].Sequence)
		require.Equal(t, uint32(50), cet.LockTime)
	}
}

func TestGenFundingPkScriptRejectsNonPositiveAmount(t *testing.T) {
	priv, err := btcec.NewPrivateKey()
	require.NoError(t, err)
	_, _, err = genFundingPkScript(priv.PubKey().SerializeCompressed(), priv.PubKey().SerializeCompressed(), 0)
	require.Error(t, err)
}

// TestCreateDlcTransactionsFeeInsufficiency confirms a party whose inputs
// only just cover its collateral, leaving nothing for its fee share, fails
// the whole construction (spec.md S4.1).
func TestCreateDlcTransactionsFeeInsufficiency(t *testing.T) {
	offer := samplePartyParams(t, 10, 100_000, 100_000)
	accept := samplePartyParams(t, 20, 200_000, 100_000)
	payouts := []contract.Payout{{Outcome: "win", OfferPayout: 200_000}}

	_, err := CreateDlcTransactions(offer, accept, payouts, 200_000, 200, 100, 10, 5)
	require.Error(t, err)

	var cerr *contract.Error
	require.ErrorAs(t, err, &cerr)
	require.Equal(t, contract.ErrInvalidParameters, cerr.Kind)
}

// TestCreateDlcTransactionsValueConservation checks the fund transaction
// never creates value: its outputs (fund output plus both changes) total
// its inputs minus the fee, the fund output carries at least the full
// collateral, and the refund returns exactly each party's collateral.
func TestCreateDlcTransactionsValueConservation(t *testing.T) {
	const totalCollateral = btcutil.Amount(200_000)
	offer := samplePartyParams(t, 10, 180_000, 120_000)
	accept := samplePartyParams(t, 20, 150_000, 80_000)
	payouts := []contract.Payout{
		{Outcome: "win", OfferPayout: totalCollateral},
		{Outcome: "lose", OfferPayout: 0},
	}

	txs, err := CreateDlcTransactions(offer, accept, payouts, totalCollateral, 200, 100, 10, 5)
	require.NoError(t, err)

	var outSum int64
	for _, out := range txs.Fund.TxOut {
		outSum += out.Value
	}
	inSum := int64(offer.InputAmount + accept.InputAmount)
	require.Greater(t, inSum, outSum, "fund tx must leave a positive fee")

	fundOut := txs.FundOutput()
	require.NotNil(t, fundOut)
	require.GreaterOrEqual(t, fundOut.Value, int64(totalCollateral))

	require.Len(t, txs.Refund.TxOut, 2)
	refundValues := []int64{txs.Refund.TxOut[0].Value, txs.Refund.TxOut[1].Value}
	require.ElementsMatch(t, []int64{120_000, 80_000}, refundValues)

	// Every CET pays out exactly the total collateral.
	for _, cet := range txs.Cets {
		var cetSum int64
		for _, out := range cet.TxOut {
			cetSum += out.Value
		}
		require.Equal(t, int64(totalCollateral), cetSum)
	}
}

// TestBuildFundTxRejectsDuplicateSerialIDs covers the global-uniqueness
// invariant on input serial ids.
func TestBuildFundTxRejectsDuplicateSerialIDs(t *testing.T) {
	offer := samplePartyParams(t, 10, 200_000, 100_000)
	accept := samplePartyParams(t, 10, 200_000, 100_000)
	payouts := []contract.Payout{{Outcome: "win", OfferPayout: 200_000}}

	_, err := CreateDlcTransactions(offer, accept, payouts, 200_000, 200, 100, 10, 5)
	require.Error(t, err)
}
