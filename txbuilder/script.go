package txbuilder

import (
	"bytes"
	"crypto/sha256"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"
	"github.com/lightninglabs/dlcd/contract"
)

// witnessScriptHash generates a P2WSH pkscript paying to the sha256 of the
// given witness (redeem) script.
func witnessScriptHash(redeemScript []byte) ([]byte, error) {
	bldr := txscript.NewScriptBuilder()
	bldr.AddOp(txscript.OP_0)
	scriptHash := sha256.Sum256(redeemScript)
	bldr.AddData(scriptHash[:])
	return bldr.Script()
}

// sortedPubKeys returns the two compressed pubkeys lexicographically larger
// first, the order the 2-of-2 script and witness stack must agree on.
func sortedPubKeys(aPub, bPub []byte) (first, second []byte) {
	if bytes.Compare(aPub, bPub) == -1 {
		return bPub, aPub
	}
	return aPub, bPub
}

// genMultiSigScript generates the non-P2SH 2-of-2 multisig witness script
// for the fund output.
func genMultiSigScript(aPub, bPub []byte) ([]byte, error) {
	if len(aPub) != 33 || len(bPub) != 33 {
		return nil, contract.NewError(contract.ErrInvalidParameters,
			"compressed pubkeys only")
	}

	first, second := sortedPubKeys(aPub, bPub)

	bldr := txscript.NewScriptBuilder()
	bldr.AddOp(txscript.OP_2)
	bldr.AddData(first)
	bldr.AddData(second)
	bldr.AddOp(txscript.OP_2)
	bldr.AddOp(txscript.OP_CHECKMULTISIG)
	return bldr.Script()
}

// genFundingPkScript builds the 2-of-2 redeem script and the matching
// P2WSH fund output for the given amount.
func genFundingPkScript(aPub, bPub []byte, amt int64) ([]byte, *wire.TxOut, error) {
	if amt <= 0 {
		return nil, nil, contract.NewError(contract.ErrInvalidParameters,
			"fund output amount must be positive, got %d", amt)
	}

	redeemScript, err := genMultiSigScript(aPub, bPub)
	if err != nil {
		return nil, nil, err
	}

	pkScript, err := witnessScriptHash(redeemScript)
	if err != nil {
		return nil, nil, err
	}

	return redeemScript, wire.NewTxOut(amt, pkScript), nil
}

// spendMultiSig assembles the witness stack for the 2-of-2 P2WSH fund
// output, placing each signature in the slot its pubkey's sort position
// requires.
func spendMultiSig(redeemScript, pubA, sigA, pubB, sigB []byte) wire.TxWitness {
	witness := make(wire.TxWitness, 4)

	// P2WSH multisig spends need a leading nil element to work around the
	// OP_CHECKMULTISIG off-by-one bug.
	witness[0] = nil

	if bytes.Compare(pubA, pubB) == -1 {
		witness[1] = sigB
		witness[2] = sigA
	} else {
		witness[1] = sigA
		witness[2] = sigB
	}

	witness[3] = redeemScript
	return witness
}

// PubKeyBytes returns the compressed serialization of a public key, used
// throughout this package to avoid sprinkling SerializeCompressed calls.
func PubKeyBytes(pk *btcec.PublicKey) []byte {
	return pk.SerializeCompressed()
}
