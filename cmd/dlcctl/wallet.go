package main

import (
	"crypto/rand"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/ecdsa"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"

	"github.com/lightninglabs/dlcd/contract"
	"github.com/lightninglabs/dlcd/txbuilder"
)

// toyWallet is a self-funding, single-process stand-in for a real on-chain
// wallet: GetNewPartyParams mines its own coinbase-like previous
// transaction rather than querying a UTXO set. It exists only so cmd/dlcctl
// can drive a contract end to end without a chain backend (spec.md S1.iii).
type toyWallet struct {
	keys map[string]*btcec.PrivateKey
}

func newToyWallet() *toyWallet {
	return &toyWallet{keys: make(map[string]*btcec.PrivateKey)}
}

func (w *toyWallet) newKey() *btcec.PrivateKey {
	priv, err := btcec.NewPrivateKey()
	if err != nil {
		panic(err)
	}
	w.keys[string(priv.PubKey().SerializeCompressed())] = priv
	return priv
}

func (w *toyWallet) p2wpkhScript(priv *btcec.PrivateKey) []byte {
	addr, err := btcutil.NewAddressWitnessPubKeyHash(
		btcutil.Hash160(priv.PubKey().SerializeCompressed()), &chaincfg.RegressionNetParams,
	)
	if err != nil {
		panic(err)
	}
	script, err := txscript.PayToAddrScript(addr)
	if err != nil {
		panic(err)
	}
	return script
}

// fakePrevTx synthesizes a one-output transaction paying amt to the given
// pkScript, so a FundingInputInfo has something plausible to point at.
func (w *toyWallet) fakePrevTx(pkScript []byte, amt int64) *wire.MsgTx {
	tx := wire.NewMsgTx(2)
	var seed [32]byte
	rand.Read(seed[:])
	tx.AddTxIn(&wire.TxIn{
		PreviousOutPoint: wire.OutPoint{Hash: chainhashFromSeed(seed), Index: 0},
	})
	tx.AddTxOut(wire.NewTxOut(amt, pkScript))
	return tx
}

// GetNewPartyParams implements dlcmgr.Wallet: it mints a fresh fund key, a
// change and payout address, and a single funding input covering the
// requested collateral plus a fixed fee cushion.
func (w *toyWallet) GetNewPartyParams(
	collateral btcutil.Amount, feeRate txbuilder.SatPerVByte,
) (*contract.PartyParams, *btcec.PrivateKey, error) {

	fundKey := w.newKey()
	changeKey := w.newKey()
	payoutKey := w.newKey()
	inputKey := w.newKey()

	const feeCushion = 5000
	inputAmt := int64(collateral) + feeCushion

	prevTx := w.fakePrevTx(w.p2wpkhScript(inputKey), inputAmt)
	var buf []byte
	{
		b := newByteBuffer()
		if err := prevTx.Serialize(b); err != nil {
			return nil, nil, err
		}
		buf = b.Bytes()
	}

	params := &contract.PartyParams{
		FundPubKey:         fundKey.PubKey(),
		ChangeScriptPubKey: w.p2wpkhScript(changeKey),
		ChangeSerialID:     randSerialID(),
		PayoutScriptPubKey: w.p2wpkhScript(payoutKey),
		PayoutSerialID:     randSerialID(),
		FundingInputs: []contract.FundingInputInfo{{
			PrevTx:        buf,
			PrevTxVout:    0,
			SerialID:      randSerialID(),
			Sequence:      wire.MaxTxInSequenceNum,
			MaxWitnessLen: 108,
		}},
		InputAmount: btcutil.Amount(inputAmt),
		Collateral:  collateral,
	}

	return params, fundKey, nil
}

// GetSecretKeyForPubkey implements dlcmgr.Signer for fund keys this wallet
// minted.
func (w *toyWallet) GetSecretKeyForPubkey(pk *btcec.PublicKey) (*btcec.PrivateKey, error) {
	priv, ok := w.keys[string(pk.SerializeCompressed())]
	if !ok {
		return nil, contract.NewError(contract.ErrSigner, "unknown pubkey")
	}
	return priv, nil
}

// SignTxInput implements dlcmgr.Signer for the wallet's own P2WPKH funding
// inputs.
func (w *toyWallet) SignTxInput(
	tx *wire.MsgTx, idx int, prevOut *wire.TxOut, _ []byte,
) (wire.TxWitness, error) {

	pkHash := prevOut.PkScript[2:]
	var priv *btcec.PrivateKey
	for _, k := range w.keys {
		if string(btcutil.Hash160(k.PubKey().SerializeCompressed())) == string(pkHash) {
			priv = k
			break
		}
	}
	if priv == nil {
		return nil, contract.NewError(contract.ErrSigner, "no key for funding input")
	}

	script, err := txscript.PayToAddrScript(mustP2WPKHAddr(pkHash))
	if err != nil {
		return nil, err
	}
	fetcher := txscript.NewCannedPrevOutputFetcher(prevOut.PkScript, prevOut.Value)
	hashes := txscript.NewTxSigHashes(tx, fetcher)
	digest, err := txscript.CalcWitnessSigHash(
		script, hashes, txscript.SigHashAll, tx, idx, prevOut.Value,
	)
	if err != nil {
		return nil, err
	}
	sig := ecdsa.Sign(priv, digest)
	sigBytes := append(sig.Serialize(), byte(txscript.SigHashAll))
	return wire.TxWitness{sigBytes, priv.PubKey().SerializeCompressed()}, nil
}

// UnixTimeNow implements dlcmgr.Time.
type toyClock struct{}

func (toyClock) UnixTimeNow() uint32 { return 1_700_000_000 }

func mustP2WPKHAddr(hash160 []byte) btcutil.Address {
	addr, err := btcutil.NewAddressWitnessPubKeyHash(hash160, &chaincfg.RegressionNetParams)
	if err != nil {
		panic(err)
	}
	return addr
}
