// Package dlcmgr drives a DLC contract through its four protocol phases
// (Offered, Accepted, Signed, Closed) by composing the contract, txbuilder,
// adaptor and witness packages behind a small Manager type, the way
// lnwallet.LightningWallet composes the chain backend, database and
// signer behind one handle.
package dlcmgr

import (
	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/wire"

	"github.com/lightninglabs/dlcd/adaptor"
	"github.com/lightninglabs/dlcd/contract"
	"github.com/lightninglabs/dlcd/txbuilder"
)

// Wallet supplies a fresh set of on-chain identity parameters for one side
// of a new contract: a fund pubkey, change/payout destinations, and the
// UTXOs to spend. UTXO selection, change address derivation and blockchain
// queries are all out of scope for this module (spec.md S1.iii); Wallet is
// the narrow contract the core calls through instead.
type Wallet interface {
	GetNewPartyParams(collateral btcutil.Amount, feeRate txbuilder.SatPerVByte) (
		*contract.PartyParams, *btcec.PrivateKey, error)
}

// Blockchain is opaque to this module; Wallet implementations use it to
// source UTXOs and check confirmations, but dlcmgr never calls it
// directly (spec.md S1.iii).
type Blockchain interface{}

// Signer is this module's key-custody boundary (spec.md S1.iv): it
// resolves a pubkey to the private key needed to produce the offer/accept
// party's refund signature and adaptor signatures, and produces the witness
// for a funding input, which the caller installs on the transaction.
type Signer interface {
	GetSecretKeyForPubkey(pk *btcec.PublicKey) (*btcec.PrivateKey, error)
	SignTxInput(tx *wire.MsgTx, idx int, prevOut *wire.TxOut, redeemScriptOverride []byte) (wire.TxWitness, error)
}

// Time supplies the current unix time, read once by Offer to stamp
// OfferedContract.OfferUnixTime and to set the CET locktime (the refund
// locktime is that value plus the refund delay); injected so transitions
// stay pure and reproducible in tests.
type Time interface {
	UnixTimeNow() uint32
}

// Manager holds the collaborators every phase transition needs. It is safe
// for concurrent use across different contracts, provided the caller does
// not invoke two transitions against the same snapshot concurrently
// (spec.md S5).
type Manager struct {
	Wallet     Wallet
	Blockchain Blockchain
	Signer     Signer
	Time       Time
	Scheme     adaptor.Scheme
}

// NewManager constructs a Manager from its collaborators.
func NewManager(wallet Wallet, blockchain Blockchain, signer Signer, clock Time, scheme adaptor.Scheme) *Manager {
	return &Manager{
		Wallet:     wallet,
		Blockchain: blockchain,
		Signer:     signer,
		Time:       clock,
		Scheme:     scheme,
	}
}

// signerWitness adapts this package's Signer interface onto witness.Signer,
// so SignFundingInputs can drive it without that package importing dlcmgr.
type signerWitness struct {
	inner Signer
}

func (s signerWitness) SignInput(tx *wire.MsgTx, inputIndex int, prevOut *wire.TxOut, redeemScript []byte) (wire.TxWitness, error) {
	return s.inner.SignTxInput(tx, inputIndex, prevOut, redeemScript)
}
