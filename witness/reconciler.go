// Package witness orders funding inputs by serial id across both parties'
// views and reconciles each side's signature into the fund transaction's
// final witnesses.
package witness

import (
	"bytes"
	"sort"

	"github.com/btcsuite/btcd/wire"
	"github.com/lightninglabs/dlcd/contract"
)

// Signer signs one input of a transaction given the previous output it
// spends, returning a witness stack. It is the narrow interface the core
// uses for key custody (spec.md S1.iv).
type Signer interface {
	SignInput(tx *wire.MsgTx, inputIndex int, prevOut *wire.TxOut, redeemScript []byte) (wire.TxWitness, error)
}

// AllSerialIDs computes the canonical ascending merge of both parties'
// funding-input serial ids, the order CreateDlcTransactions placed fund-tx
// inputs in (spec.md S4.1, S8.2 step 1).
func AllSerialIDs(own, peer []contract.FundingInputInfo) []uint64 {
	all := make([]uint64, 0, len(own)+len(peer))
	for _, in := range own {
		all = append(all, in.SerialID)
	}
	for _, in := range peer {
		all = append(all, in.SerialID)
	}
	sort.Slice(all, func(i, j int) bool { return all[i] < all[j] })
	return all
}

// indexOf returns the position of id within a sorted serial-id slice, or
// -1 if absent.
func indexOf(all []uint64, id uint64) int {
	for i, v := range all {
		if v == id {
			return i
		}
	}
	return -1
}

// SignFundingInputs signs every one of `own`'s funding inputs in place on
// fundTx, at the position its serial id occupies in the canonical merge of
// own and peer's serial ids, and returns the resulting witnesses as
// FundingSignature entries in `own`'s declaration order (spec.md S4.3,
// S8.2).
func SignFundingInputs(
	signer Signer,
	fundTx *wire.MsgTx,
	own, peer []contract.FundingInputInfo,
	redeemScript []byte,
) (contract.FundingSignatures, error) {

	allSerials := AllSerialIDs(own, peer)

	out := contract.FundingSignatures{
		FundingSignatures: make([]contract.FundingSignature, len(own)),
	}

	for i, in := range own {
		idx := indexOf(allSerials, in.SerialID)
		if idx == -1 {
			return contract.FundingSignatures{}, contract.NewError(contract.ErrInvalidState,
				"serial id %d not present in canonical input order", in.SerialID)
		}
		if idx >= len(fundTx.TxIn) {
			return contract.FundingSignatures{}, contract.NewError(contract.ErrInvalidState,
				"serial id %d maps past the end of the fund transaction's inputs", in.SerialID)
		}

		prevOut, err := resolvePrevOut(in)
		if err != nil {
			return contract.FundingSignatures{}, err
		}

		witness, err := signer.SignInput(fundTx, idx, prevOut, redeemScript)
		if err != nil {
			return contract.FundingSignatures{}, contract.WrapCollaboratorError(contract.ErrSigner, err)
		}

		fundTx.TxIn[idx].Witness = witness

		log.Tracef("signed funding input serial_id=%d at canonical index %d", in.SerialID, idx)

		elems := make([]contract.WitnessElement, len(witness))
		for j, w := range witness {
			elems[j] = contract.WitnessElement{Witness: w}
		}
		out.FundingSignatures[i] = contract.FundingSignature{WitnessElements: elems}
	}

	return out, nil
}

// InstallWitnesses writes previously-produced FundingSignature witnesses
// back onto fundTx, at the position each input's serial id occupies in the
// canonical merge of own and peer's serial ids. Calling it twice with the
// same arguments reproduces the identical fund transaction, i.e. witness
// installation is idempotent (spec.md S4.3).
func InstallWitnesses(
	fundTx *wire.MsgTx,
	inputs []contract.FundingInputInfo,
	sigs contract.FundingSignatures,
	peer []contract.FundingInputInfo,
) error {

	if len(inputs) != len(sigs.FundingSignatures) {
		return contract.NewError(contract.ErrInvalidParameters,
			"%d funding inputs but %d funding signatures", len(inputs), len(sigs.FundingSignatures))
	}

	allSerials := AllSerialIDs(inputs, peer)

	for i, in := range inputs {
		idx := indexOf(allSerials, in.SerialID)
		if idx == -1 {
			return contract.NewError(contract.ErrInvalidState,
				"serial id %d not present in canonical input order", in.SerialID)
		}
		if idx >= len(fundTx.TxIn) {
			return contract.NewError(contract.ErrInvalidState,
				"serial id %d maps past the end of the fund transaction's inputs", in.SerialID)
		}

		witness := make(wire.TxWitness, len(sigs.FundingSignatures[i].WitnessElements))
		for j, we := range sigs.FundingSignatures[i].WitnessElements {
			witness[j] = we.Witness
		}
		fundTx.TxIn[idx].Witness = witness
	}

	return nil
}

func resolvePrevOut(in contract.FundingInputInfo) (*wire.TxOut, error) {
	var prevTx wire.MsgTx
	if err := prevTx.Deserialize(bytes.NewReader(in.PrevTx)); err != nil {
		return nil, contract.NewError(contract.ErrInvalidParameters,
			"cannot decode previous transaction: %v", err)
	}
	if int(in.PrevTxVout) >= len(prevTx.TxOut) {
		return nil, contract.NewError(contract.ErrInvalidParameters,
			"vout %d past end of previous transaction outputs (%d)",
			in.PrevTxVout, len(prevTx.TxOut))
	}
	return prevTx.TxOut[in.PrevTxVout], nil
}

