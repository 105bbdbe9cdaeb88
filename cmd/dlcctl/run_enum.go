package main

import (
	"bytes"
	"fmt"

	"github.com/btcsuite/btcd/btcutil"

	"github.com/lightninglabs/dlcd/adaptor"
	"github.com/lightninglabs/dlcd/contract"
	"github.com/lightninglabs/dlcd/dlcmgr"
)

// runEnumScenario walks a two-outcome enumerated contract through
// Offer -> Accept -> VerifyAcceptAndSign -> VerifySign -> CloseCET.
func runEnumScenario(attestedOutcome string) error {
	const totalCollateral = btcutil.Amount(200_000)
	const offerCollateral = btcutil.Amount(100_000)

	oracle := newToyOracle(1)
	scheme := adaptor.NewNonceScheme()

	offerWallet := newToyWallet()
	acceptWallet := newToyWallet()
	offerMgr := dlcmgr.NewManager(offerWallet, nil, offerWallet, toyClock{}, scheme)
	acceptMgr := dlcmgr.NewManager(acceptWallet, nil, acceptWallet, toyClock{}, scheme)

	ci := contract.ContractInputInfo{
		Threshold: 1,
		Outcomes: &contract.EnumeratedOutcomes{
			Outcomes: []contract.Payout{
				{Outcome: "team-a-wins", OfferPayout: totalCollateral},
				{Outcome: "team-b-wins", OfferPayout: 0},
			},
		},
	}
	input := &contract.ContractInput{
		OfferCollateral: offerCollateral,
		TotalCollateral: totalCollateral,
		FeeRatePerVb:    10,
		ContractInfos:   []contract.ContractInputInfo{ci},
	}

	contractInfos := []contract.ContractInfo{{
		Oracles:   []contract.OracleAnnouncement{oracle.announcement()},
		Threshold: 1,
		Outcomes:  ci.Outcomes,
	}}

	acceptFundKeyPlaceholder := acceptWallet.newKey()
	offered, offerMsg, err := offerMgr.Offer(
		input, contractInfos, acceptFundKeyPlaceholder.PubKey(), 86_400, 7,
	)
	if err != nil {
		return err
	}
	fmt.Println("offered contract built, total collateral", totalCollateral)

	reOffered, err := roundTripOffer(offerMsg, offered)
	if err != nil {
		return err
	}

	accepted, acceptMsg, err := acceptMgr.Accept(reOffered)
	if err != nil {
		return err
	}
	fmt.Println("accept party built", len(accepted.DlcTransactions.Cets), "CETs")

	signed, signMsg, err := offerMgr.VerifyAcceptAndSign(offered, acceptMsg)
	if err != nil {
		return fmt.Errorf("verify accept and sign: %w", err)
	}
	fmt.Println("offer party verified accept and countersigned")

	acceptSigned, err := acceptMgr.VerifySign(accepted, signMsg)
	if err != nil {
		return fmt.Errorf("verify sign: %w", err)
	}
	fmt.Println("accept party verified sign, fund tx:", acceptSigned.Accepted.DlcTransactions.Fund.TxHash())

	attestation := contract.OracleAttestation{
		Outcome:    attestedOutcome,
		Signatures: [][32]byte{oracle.attest(attestedOutcome)},
	}

	cet, err := offerMgr.CloseCET(signed, 0, []contract.OracleAttestation{attestation})
	if err != nil {
		return fmt.Errorf("close cet: %w", err)
	}
	printTx("closing CET", cet.TxHash().String())

	refund, err := offerMgr.CloseRefund(signed)
	if err != nil {
		return fmt.Errorf("close refund (informational): %w", err)
	}
	printTx("refund tx", refund.TxHash().String())

	return nil
}

// roundTripOffer simulates sending OfferDlc over the wire and reconstructing
// the accepting party's view of the OfferedContract from it, plus an
// Encode/Decode pass through contract.OfferDlc to exercise the wire codec.
func roundTripOffer(msg *contract.OfferDlc, offered *contract.OfferedContract) (*contract.OfferedContract, error) {
	raw, err := contract.Bytes(msg.Encode)
	if err != nil {
		return nil, err
	}
	var decoded contract.OfferDlc
	if err := decoded.Decode(bytes.NewReader(raw)); err != nil {
		return nil, err
	}

	reOffered := *offered
	reOffered.IsOfferParty = false
	reOffered.ContractInfo = decoded.ContractInfo
	reOffered.OfferParams = decoded.OfferParams
	reOffered.FeeRatePerVb = btcutil.Amount(decoded.FeeRatePerVb)
	reOffered.CetLocktime = decoded.CetLocktime
	reOffered.RefundLocktime = decoded.RefundLocktime
	reOffered.FundOutputSerialID = decoded.FundOutputSerialID
	return &reOffered, nil
}
