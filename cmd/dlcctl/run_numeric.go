package main

import (
	"fmt"

	"github.com/btcsuite/btcd/btcutil"

	"github.com/lightninglabs/dlcd/adaptor"
	"github.com/lightninglabs/dlcd/contract"
	"github.com/lightninglabs/dlcd/dlcmgr"
)

// runNumericScenario walks a numeric (CET-DLC) contract -- a piecewise
// linear payout curve over an 8-bit base-2 oracle value -- through the same
// four phases as runEnumScenario, then closes it against an attested value.
func runNumericScenario(attestedValue int64) error {
	const totalCollateral = btcutil.Amount(500_000)
	const offerCollateral = btcutil.Amount(250_000)
	const base = 2
	const numDigits = 8

	oracle := newToyOracle(numDigits)
	scheme := adaptor.NewNonceScheme()

	offerWallet := newToyWallet()
	acceptWallet := newToyWallet()
	offerMgr := dlcmgr.NewManager(offerWallet, nil, offerWallet, toyClock{}, scheme)
	acceptMgr := dlcmgr.NewManager(acceptWallet, nil, acceptWallet, toyClock{}, scheme)

	outcomes := &contract.NumericOutcomes{
		Base:      base,
		NumDigits: numDigits,
		Intervals: []contract.NumericInterval{
			{Start: 0, End: 127, StartPayout: 0, EndPayout: totalCollateral / 2},
			{Start: 128, End: 255, StartPayout: totalCollateral / 2, EndPayout: totalCollateral},
		},
	}
	ciInput := contract.ContractInputInfo{Threshold: 1, Outcomes: outcomes}
	input := &contract.ContractInput{
		OfferCollateral: offerCollateral,
		TotalCollateral: totalCollateral,
		FeeRatePerVb:    10,
		ContractInfos:   []contract.ContractInputInfo{ciInput},
	}

	contractInfos := []contract.ContractInfo{{
		Oracles:   []contract.OracleAnnouncement{oracle.announcement()},
		Threshold: 1,
		Outcomes:  outcomes,
	}}

	acceptFundKeyPlaceholder := acceptWallet.newKey()
	offered, offerMsg, err := offerMgr.Offer(
		input, contractInfos, acceptFundKeyPlaceholder.PubKey(), 86_400, 11,
	)
	if err != nil {
		return err
	}

	reOffered, err := roundTripOffer(offerMsg, offered)
	if err != nil {
		return err
	}

	accepted, acceptMsg, err := acceptMgr.Accept(reOffered)
	if err != nil {
		return err
	}
	fmt.Println("accept party built", len(accepted.DlcTransactions.Cets), "CETs for the numeric payout curve")

	signed, signMsg, err := offerMgr.VerifyAcceptAndSign(offered, acceptMsg)
	if err != nil {
		return fmt.Errorf("verify accept and sign: %w", err)
	}

	acceptSigned, err := acceptMgr.VerifySign(accepted, signMsg)
	if err != nil {
		return fmt.Errorf("verify sign: %w", err)
	}
	fmt.Println("accept party verified sign, fund tx:", acceptSigned.Accepted.DlcTransactions.Fund.TxHash())

	digits := digitsOf(attestedValue, base, numDigits)
	attestation := contract.OracleAttestation{
		OracleIndex: 0,
		Value:       attestedValue,
		Signatures:  oracle.attestDigits(digits),
	}

	cet, err := offerMgr.CloseCET(signed, 0, []contract.OracleAttestation{attestation})
	if err != nil {
		return fmt.Errorf("close cet: %w", err)
	}
	printTx("closing CET", cet.TxHash().String())

	return nil
}

// digitsOf decomposes v into numDigits base-b digits, most significant
// first, matching the decomposition the adaptor engine signs against.
func digitsOf(v int64, base, numDigits int) []int64 {
	digits := make([]int64, numDigits)
	for i := numDigits - 1; i >= 0; i-- {
		digits[i] = v % int64(base)
		v /= int64(base)
	}
	return digits
}
