// Package txbuilder assembles the fund, CET, and refund transactions for a
// DLC contract from agreed-upon parameters, and supplies the raw ECDSA
// signing/verification primitives the rest of the core builds on.
package txbuilder

import (
	"bytes"
	"sort"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
	"github.com/lightninglabs/dlcd/contract"
)

// serialInput pairs a funding input with the party that contributed it, so
// the canonical ordering can carry that association through to signing.
type serialInput struct {
	info    contract.FundingInputInfo
	isOffer bool
}

// serialOutput pairs a fund-tx output with its serial id for sorting.
type serialOutput struct {
	serialID uint64
	txOut    *wire.TxOut
}

// mergeFundingInputs concatenates both parties' funding inputs and sorts
// them ascending by serial id, which spec.md S4.1 defines as the canonical
// fund-tx input order.
func mergeFundingInputs(offer, accept contract.PartyParams) []serialInput {
	merged := make([]serialInput, 0, len(offer.FundingInputs)+len(accept.FundingInputs))
	for _, in := range offer.FundingInputs {
		merged = append(merged, serialInput{info: in, isOffer: true})
	}
	for _, in := range accept.FundingInputs {
		merged = append(merged, serialInput{info: in, isOffer: false})
	}
	sort.Slice(merged, func(i, j int) bool {
		return merged[i].info.SerialID < merged[j].info.SerialID
	})
	return merged
}

// CreateDlcTransactions builds the canonical fund, CET, and refund
// transactions. Both parties must call it with identical arguments (derived
// from the same OfferedContract/AcceptedContract snapshot) to arrive at a
// byte-identical DlcTransactions independently, per spec.md S8.1.
func CreateDlcTransactions(
	offer, accept contract.PartyParams,
	payouts []contract.Payout,
	totalCollateral btcutil.Amount,
	refundLocktime, cetLocktime uint32,
	feeRatePerVb btcutil.Amount,
	fundOutputSerialID uint64,
) (*contract.DlcTransactions, error) {

	// The fund output locks the full collateral plus a reserve covering
	// the eventual CET (or refund) fee, so that every CET can spend it
	// paying exactly the agreed payouts and still confirm.
	cetFee := estimateCetFee(offer, accept, feeRatePerVb)
	fundingScript, fundOut, err := genFundingPkScript(
		PubKeyBytes(offer.FundPubKey), PubKeyBytes(accept.FundPubKey),
		int64(totalCollateral)+cetFee,
	)
	if err != nil {
		return nil, err
	}

	fundTx, err := buildFundTx(offer, accept, fundOut, fundOutputSerialID, feeRatePerVb, cetFee)
	if err != nil {
		return nil, err
	}

	fundOutpoint := wire.OutPoint{
		Hash:  fundTx.TxHash(),
		Index: uint32(findOutput(fundTx, fundOut.PkScript)),
	}

	cets, err := CreateCETsFromTemplate(
		fundOutpoint, fundingScript, offer, accept, payouts, totalCollateral, cetLocktime,
	)
	if err != nil {
		return nil, err
	}

	refundTx, err := buildRefundTx(
		fundOutpoint, fundingScript, offer, accept, totalCollateral, refundLocktime,
	)
	if err != nil {
		return nil, err
	}

	log.Tracef("built dlc transactions: fund=%v cets=%d refund_locktime=%d",
		fundTx.TxHash(), len(cets), refundLocktime)

	return &contract.DlcTransactions{
		Fund:                fundTx,
		Cets:                cets,
		Refund:              refundTx,
		FundingScriptPubkey: fundingScript,
	}, nil
}

func findOutput(tx *wire.MsgTx, pkScript []byte) int {
	for i, out := range tx.TxOut {
		if bytes.Equal(out.PkScript, pkScript) {
			return i
		}
	}
	return -1
}

// fundFeeShare is the portion of the fund transaction's fee one party is
// responsible for at the given feerate: half the shared overhead (version,
// locktime, the 2-of-2 output), plus the full cost of that party's own
// funding inputs (sized from each input's declared MaxWitnessLen) and
// change output.
func fundFeeShare(p contract.PartyParams, feeRatePerVb btcutil.Amount) int64 {
	vsize := (TxOverheadSize + P2WSHOutputSize + 1) / 2
	for _, in := range p.FundingInputs {
		vsize += FundingInputBaseSize + (int(in.MaxWitnessLen)+3)/4
	}
	if p.ChangeScriptPubKey != nil {
		vsize += 8 + 1 + len(p.ChangeScriptPubKey)
	}
	return int64(feeRatePerVb) * int64(vsize)
}

// estimateCetFee estimates the fee of a single CET (one 2-of-2 input, two
// payout outputs) at the given feerate. The same reserve also covers the
// refund transaction, which has the identical shape.
func estimateCetFee(offer, accept contract.PartyParams, feeRatePerVb btcutil.Amount) int64 {
	vsize := TxOverheadSize + FundingInputBaseSize + FundingInputWitnessSize/4 +
		(8 + 1 + len(offer.PayoutScriptPubKey)) + (8 + 1 + len(accept.PayoutScriptPubKey))
	return int64(feeRatePerVb) * int64(vsize)
}

// buildFundTx assembles the fund transaction: inputs merged and sorted by
// serial id (spec.md S4.1), outputs being the 2-of-2 fund output plus each
// party's change output, sorted ascending by serial id. Each party's change
// is its input total minus its collateral, its fund-tx fee share, and its
// half of the CET fee reserve; a party whose inputs cannot cover that fails
// the whole construction.
func buildFundTx(
	offer, accept contract.PartyParams, fundOut *wire.TxOut,
	fundOutputSerialID uint64, feeRatePerVb btcutil.Amount, cetFee int64,
) (*wire.MsgTx, error) {

	tx := wire.NewMsgTx(2)

	merged := mergeFundingInputs(offer, accept)
	for i, in := range merged {
		if i > 0 && merged[i-1].info.SerialID == in.info.SerialID {
			return nil, contract.NewError(contract.ErrInvalidParameters,
				"duplicate funding input serial id %d", in.info.SerialID)
		}
		prevHash, vout, err := decodePrevOutpoint(in.info)
		if err != nil {
			return nil, err
		}
		txIn := wire.NewTxIn(wire.NewOutPoint(prevHash, vout), nil, nil)
		txIn.Sequence = in.info.Sequence
		tx.AddTxIn(txIn)
	}

	offerChange := int64(offer.InputAmount-offer.Collateral) -
		fundFeeShare(offer, feeRatePerVb) - (cetFee+1)/2
	acceptChange := int64(accept.InputAmount-accept.Collateral) -
		fundFeeShare(accept, feeRatePerVb) - cetFee/2
	if offerChange < 0 || acceptChange < 0 {
		return nil, contract.NewError(contract.ErrInvalidParameters,
			"funding inputs insufficient to cover collateral plus fee "+
				"(offer remainder %d, accept remainder %d)", offerChange, acceptChange)
	}

	outs := []serialOutput{
		{serialID: fundOutputSerialID, txOut: fundOut},
	}
	if offer.ChangeScriptPubKey != nil {
		outs = append(outs, serialOutput{
			serialID: offer.ChangeSerialID,
			txOut:    wire.NewTxOut(offerChange, offer.ChangeScriptPubKey),
		})
	}
	if accept.ChangeScriptPubKey != nil {
		outs = append(outs, serialOutput{
			serialID: accept.ChangeSerialID,
			txOut:    wire.NewTxOut(acceptChange, accept.ChangeScriptPubKey),
		})
	}

	sort.Slice(outs, func(i, j int) bool { return outs[i].serialID < outs[j].serialID })
	for _, o := range outs {
		if o.txOut.Value > 0 {
			tx.AddTxOut(o.txOut)
		}
	}

	return tx, nil
}

func decodePrevOutpoint(in contract.FundingInputInfo) (*chainhash.Hash, uint32, error) {
	var prevTx wire.MsgTx
	if err := prevTx.Deserialize(bytes.NewReader(in.PrevTx)); err != nil {
		return nil, 0, contract.NewError(contract.ErrInvalidParameters,
			"cannot decode previous transaction: %v", err)
	}
	if int(in.PrevTxVout) >= len(prevTx.TxOut) {
		return nil, 0, contract.NewError(contract.ErrInvalidParameters,
			"vout %d past end of previous transaction outputs (%d)",
			in.PrevTxVout, len(prevTx.TxOut))
	}
	hash := prevTx.TxHash()
	return &hash, in.PrevTxVout, nil
}

// CreateCETsFromTemplate builds one CET per payout leaf. The first CET is
// fully constructed; every subsequent CET clones its single funding input
// (the 2-of-2 fund outpoint, locktime and sequence) and only replaces the
// payout outputs, the way the original dlc-manager's create_cets clones
// cets[0].input[0] rather than rebuilding the input from scratch each time.
func CreateCETsFromTemplate(
	fundOutpoint wire.OutPoint,
	fundingScript []byte,
	offer, accept contract.PartyParams,
	payouts []contract.Payout,
	totalCollateral btcutil.Amount,
	cetLocktime uint32,
) ([]*wire.MsgTx, error) {

	if len(payouts) == 0 {
		return nil, contract.NewError(contract.ErrInvalidParameters, "no payout leaves")
	}

	template := wire.NewMsgTx(2)
	templateIn := wire.NewTxIn(&fundOutpoint, nil, nil)
	templateIn.Sequence = wire.MaxTxInSequenceNum - 1
	template.AddTxIn(templateIn)
	template.LockTime = cetLocktime

	cets := make([]*wire.MsgTx, 0, len(payouts))
	for _, p := range payouts {
		if p.OfferPayout < 0 || p.OfferPayout > totalCollateral {
			return nil, contract.NewError(contract.ErrInvalidParameters,
				"payout %d outside [0, %d]", p.OfferPayout, totalCollateral)
		}
		cet := template.Copy()

		outs := []serialOutput{
			{serialID: offer.PayoutSerialID, txOut: wire.NewTxOut(int64(p.OfferPayout), offer.PayoutScriptPubKey)},
			{serialID: accept.PayoutSerialID, txOut: wire.NewTxOut(int64(p.AcceptPayout(totalCollateral)), accept.PayoutScriptPubKey)},
		}
		sort.Slice(outs, func(i, j int) bool { return outs[i].serialID < outs[j].serialID })
		for _, o := range outs {
			if o.txOut.Value > 0 {
				cet.AddTxOut(o.txOut)
			}
		}

		cets = append(cets, cet)
	}

	return cets, nil
}

// buildRefundTx builds the refund transaction: offer collateral back to the
// offer party's payout spk, accept collateral back to the accept party's,
// sorted by payout serial id, spending the fund outpoint after
// refundLocktime.
func buildRefundTx(
	fundOutpoint wire.OutPoint,
	fundingScript []byte,
	offer, accept contract.PartyParams,
	totalCollateral btcutil.Amount,
	refundLocktime uint32,
) (*wire.MsgTx, error) {

	tx := wire.NewMsgTx(2)
	txIn := wire.NewTxIn(&fundOutpoint, nil, nil)
	txIn.Sequence = wire.MaxTxInSequenceNum - 1
	tx.AddTxIn(txIn)
	tx.LockTime = refundLocktime

	outs := []serialOutput{
		{serialID: offer.PayoutSerialID, txOut: wire.NewTxOut(int64(offer.Collateral), offer.PayoutScriptPubKey)},
		{serialID: accept.PayoutSerialID, txOut: wire.NewTxOut(int64(totalCollateral-offer.Collateral), accept.PayoutScriptPubKey)},
	}
	sort.Slice(outs, func(i, j int) bool { return outs[i].serialID < outs[j].serialID })
	for _, o := range outs {
		tx.AddTxOut(o.txOut)
	}

	return tx, nil
}

// SatPerVByte is a fee rate expressed in satoshis per virtual byte.
type SatPerVByte btcutil.Amount
