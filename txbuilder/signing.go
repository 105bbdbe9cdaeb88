package txbuilder

import (
	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/ecdsa"
	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"
	"github.com/lightninglabs/dlcd/contract"
)

// GetRawSigForTxInput computes the BIP-143 sighash for the given input of a
// P2WSH multisig spend, the raw digest that both a plain ECDSA signature
// and an adaptor signature are computed over.
func GetRawSigForTxInput(
	tx *wire.MsgTx, inputIndex int, redeemScript []byte, amt int64,
) ([32]byte, error) {

	pkScript, err := witnessScriptHash(redeemScript)
	if err != nil {
		return [32]byte{}, err
	}
	fetcher := txscript.NewCannedPrevOutputFetcher(pkScript, amt)
	hashes := txscript.NewTxSigHashes(tx, fetcher)
	digest, err := txscript.CalcWitnessSigHash(
		redeemScript, hashes, txscript.SigHashAll, tx, inputIndex, amt,
	)
	if err != nil {
		return [32]byte{}, contract.NewError(contract.ErrInvalidParameters,
			"failed computing sighash: %v", err)
	}
	var digestArr [32]byte
	copy(digestArr[:], digest)
	return digestArr, nil
}

// SignCET produces a plain DER-encoded ECDSA signature, with a trailing
// SIGHASH_ALL byte, over a CET-shaped transaction's single funding input.
// It signs the refund transaction, and at closure the closing party's own
// half of the CET's 2-of-2 witness.
func SignCET(
	tx *wire.MsgTx, inputIndex int, redeemScript []byte, amt int64,
	privKey *btcec.PrivateKey,
) ([]byte, error) {

	digest, err := GetRawSigForTxInput(tx, inputIndex, redeemScript, amt)
	if err != nil {
		return nil, err
	}
	sig := ecdsa.Sign(privKey, digest[:])
	return append(sig.Serialize(), byte(txscript.SigHashAll)), nil
}

// VerifyTxInputSig verifies a DER-encoded signature against the digest for
// the given transaction input; a trailing SIGHASH_ALL byte, if present, is
// stripped before parsing.
func VerifyTxInputSig(
	sig []byte, tx *wire.MsgTx, inputIndex int, redeemScript []byte, amt int64,
	pubKey *btcec.PublicKey,
) error {

	digest, err := GetRawSigForTxInput(tx, inputIndex, redeemScript, amt)
	if err != nil {
		return err
	}

	raw := sig
	if len(raw) > 0 && raw[len(raw)-1] == byte(txscript.SigHashAll) {
		raw = raw[:len(raw)-1]
	}
	parsed, err := ecdsa.ParseDERSignature(raw)
	if err != nil {
		return contract.NewError(contract.ErrInvalidRefundSignature,
			"malformed signature: %v", err)
	}
	if !parsed.Verify(digest[:], pubKey) {
		return contract.NewError(contract.ErrInvalidRefundSignature,
			"signature verification failed")
	}
	return nil
}

// SignMultiSigInput installs the final witness for a 2-of-2 P2WSH input
// given both parties' signatures.
func SignMultiSigInput(
	tx *wire.MsgTx, inputIndex int, redeemScript []byte,
	pubA, sigA, pubB, sigB []byte,
) {
	tx.TxIn[inputIndex].Witness = spendMultiSig(redeemScript, pubA, sigA, pubB, sigB)
}
