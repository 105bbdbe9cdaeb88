package contract

import (
	"crypto/sha256"

	"github.com/btcsuite/btcd/wire"
)

// DlcTransactions is the canonical fund/CET/refund transaction bundle
// produced by the Transaction Assembler. Both parties must arrive at a
// byte-identical value independently (spec.md S8.1); it is cached on the
// AcceptedContract/SignedContract snapshots rather than recomputed at every
// step.
type DlcTransactions struct {
	Fund                *wire.MsgTx
	Cets                []*wire.MsgTx
	Refund              *wire.MsgTx
	FundingScriptPubkey []byte
}

// FundOutputIndex locates the 2-of-2 funding output within Fund by matching
// the P2WSH output script (OP_0 <sha256(script)>) of the 2-of-2 witness
// script held in FundingScriptPubkey, returning false if it isn't present.
func (d *DlcTransactions) FundOutputIndex() (int, bool) {
	scriptHash := sha256.Sum256(d.FundingScriptPubkey)
	pkScript := append([]byte{0x00, 0x20}, scriptHash[:]...)
	for i, out := range d.Fund.TxOut {
		if string(out.PkScript) == string(pkScript) {
			return i, true
		}
	}
	return 0, false
}

// FundOutput returns the 2-of-2 funding output of the fund transaction.
func (d *DlcTransactions) FundOutput() *wire.TxOut {
	idx, ok := d.FundOutputIndex()
	if !ok {
		return nil
	}
	return d.Fund.TxOut[idx]
}
