package dlcmgr

import (
	"bytes"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/wire"

	"github.com/lightninglabs/dlcd/adaptor"
	"github.com/lightninglabs/dlcd/contract"
	"github.com/lightninglabs/dlcd/txbuilder"
	"github.com/lightninglabs/dlcd/witness"
)

// Offer builds the initial OfferedContract snapshot and its wire
// counterpart from caller-supplied terms, oracle announcements already
// attached to each ContractInputInfo's ContractInfo, and a fresh set of
// on-chain parameters drawn from the Wallet collaborator. The CET locktime
// is the single "now" read this module performs; the refund locktime
// trails it by refundDelay seconds.
func (m *Manager) Offer(
	input *contract.ContractInput,
	contractInfos []contract.ContractInfo,
	counterPartyPubKey *btcec.PublicKey,
	refundDelay uint32,
	fundOutputSerialID uint64,
) (*contract.OfferedContract, *contract.OfferDlc, error) {

	if err := input.Validate(); err != nil {
		return nil, nil, err
	}
	if err := validateAnnouncements(contractInfos); err != nil {
		return nil, nil, err
	}

	offerParams, _, err := m.Wallet.GetNewPartyParams(
		input.OfferCollateral, txbuilder.SatPerVByte(input.FeeRatePerVb),
	)
	if err != nil {
		return nil, nil, contract.WrapCollaboratorError(contract.ErrWallet, err)
	}

	cetLocktime := m.Time.UnixTimeNow()
	refundLocktime := cetLocktime + refundDelay

	offered := &contract.OfferedContract{
		IsOfferParty:       true,
		OfferParams:        *offerParams,
		ContractInfo:       contractInfos,
		TotalCollateral:    input.TotalCollateral,
		FeeRatePerVb:       input.FeeRatePerVb,
		FundOutputSerialID: fundOutputSerialID,
		CetLocktime:        cetLocktime,
		RefundLocktime:     refundLocktime,
		FundingInputsInfo:  offerParams.FundingInputs,
		CounterPartyPubKey: counterPartyPubKey,
		OfferUnixTime:      cetLocktime,
	}

	msg := &contract.OfferDlc{
		ContractInfo:       contractInfos,
		OfferParams:        *offerParams,
		FeeRatePerVb:       uint64(input.FeeRatePerVb),
		CetLocktime:        cetLocktime,
		RefundLocktime:     refundLocktime,
		FundOutputSerialID: fundOutputSerialID,
	}

	log.Debugf("built offer: total_collateral=%v offer_collateral=%v contract_infos=%v",
		input.TotalCollateral, input.OfferCollateral, len(contractInfos))

	return offered, msg, nil
}

// validateAnnouncements checks each ContractInfo's oracle announcements
// are shaped for its outcome tree: a usable threshold, and enough
// per-oracle nonces to cover every digit of a numeric tree (an enumerated
// tree consumes a single nonce per oracle).
func validateAnnouncements(contractInfos []contract.ContractInfo) error {
	for i, ci := range contractInfos {
		n := len(ci.Oracles)
		if n == 0 {
			return contract.NewError(contract.ErrInvalidParameters,
				"contract info %d has no oracle announcements", i)
		}
		if ci.Threshold == 0 || int(ci.Threshold) > n {
			return contract.NewError(contract.ErrInvalidParameters,
				"contract info %d threshold %d incompatible with %d oracles", i, ci.Threshold, n)
		}
		needNonces := 1
		if numeric, ok := ci.Outcomes.(*contract.NumericOutcomes); ok {
			needNonces = numeric.NumDigits
		}
		for j, o := range ci.Oracles {
			if o.PublicKey == nil || len(o.Nonces) < needNonces {
				return contract.NewError(contract.ErrInvalidParameters,
					"contract info %d oracle %d announcement malformed "+
						"(%d nonces, need %d)", i, j, len(o.Nonces), needNonces)
			}
		}
	}
	return nil
}

// buildAllCets concatenates, per spec.md S4.2's multi-ContractInfo
// composition rule, one CET set per ContractInfo using a shared input
// template, and returns the flat CET list alongside each ContractInfo's own
// CET slice (needed later to slice the flat adaptor signature array back
// apart).
func buildAllCets(
	fundOutpoint wire.OutPoint,
	fundingScript []byte,
	offer, accept contract.PartyParams,
	totalCollateral btcutil.Amount,
	cetLocktime uint32,
	contractInfos []contract.ContractInfo,
) ([]*wire.MsgTx, [][]*wire.MsgTx, error) {

	var all []*wire.MsgTx
	perInfo := make([][]*wire.MsgTx, len(contractInfos))

	for i, ci := range contractInfos {
		payouts, err := cetPayoutsForContractInfo(&ci, totalCollateral)
		if err != nil {
			return nil, nil, err
		}
		cets, err := txbuilder.CreateCETsFromTemplate(
			fundOutpoint, fundingScript, offer, accept, payouts, totalCollateral, cetLocktime,
		)
		if err != nil {
			return nil, nil, err
		}
		perInfo[i] = cets
		all = append(all, cets...)
	}

	return all, perInfo, nil
}

// cetPayoutsForContractInfo expands a ContractInfo's outcome tree into the
// payout leaves the Transaction Assembler should build one CET per. For a
// NumericOutcomes tree this must be the covering-prefix blocks the Adaptor
// Engine assigns signatures to (adaptor.NumericCETPayouts), not
// NumericOutcomes.Payouts' per-interval-endpoint curve description; for an
// EnumeratedOutcomes tree the two coincide.
func cetPayoutsForContractInfo(ci *contract.ContractInfo, totalCollateral btcutil.Amount) ([]contract.Payout, error) {
	if numeric, ok := ci.Outcomes.(*contract.NumericOutcomes); ok {
		return adaptor.NumericCETPayouts(numeric, totalCollateral)
	}
	return ci.GetPayouts(totalCollateral)
}

// Accept builds an AcceptedContract for the accepting party: fresh
// on-chain parameters, the canonical transaction bundle, and this party's
// own adaptor signatures (sent in AcceptDlc but left out of the returned
// snapshot, per spec.md S3 invariant 6) and refund signature (kept as
// AcceptRefundSignature).
func (m *Manager) Accept(offered *contract.OfferedContract) (*contract.AcceptedContract, *contract.AcceptDlc, error) {
	acceptCollateral := offered.TotalCollateral - offered.OfferParams.Collateral

	acceptParams, fundSK, err := m.Wallet.GetNewPartyParams(
		acceptCollateral, txbuilder.SatPerVByte(offered.FeeRatePerVb),
	)
	if err != nil {
		return nil, nil, contract.WrapCollaboratorError(contract.ErrWallet, err)
	}

	payouts0, err := cetPayoutsForContractInfo(&offered.ContractInfo[0], offered.TotalCollateral)
	if err != nil {
		return nil, nil, err
	}

	dlcTxs, err := txbuilder.CreateDlcTransactions(
		offered.OfferParams, *acceptParams, payouts0, offered.TotalCollateral,
		offered.RefundLocktime, offered.CetLocktime, offered.FeeRatePerVb, offered.FundOutputSerialID,
	)
	if err != nil {
		return nil, nil, err
	}

	fundIdx, ok := dlcTxs.FundOutputIndex()
	if !ok {
		return nil, nil, contract.NewError(contract.ErrInvalidState, "fund output not found")
	}
	fundOutpoint := wire.OutPoint{Hash: dlcTxs.Fund.TxHash(), Index: uint32(fundIdx)}
	fundValue := dlcTxs.Fund.TxOut[fundIdx].Value

	allCets, _, err := buildAllCets(
		fundOutpoint, dlcTxs.FundingScriptPubkey, offered.OfferParams, *acceptParams,
		offered.TotalCollateral, offered.CetLocktime, offered.ContractInfo,
	)
	if err != nil {
		return nil, nil, err
	}
	dlcTxs.Cets = allCets

	adaptorInfos := make([]contract.AdaptorInfo, len(offered.ContractInfo))
	var adaptorSigs []contract.AdaptorSignature
	cursor := 0
	for i, ci := range offered.ContractInfo {
		payouts, err := cetPayoutsForContractInfo(&ci, offered.TotalCollateral)
		if err != nil {
			return nil, nil, err
		}
		cets := allCets[cursor : cursor+len(payouts)]
		info, sigs, err := adaptor.GetAdaptorInfo(
			m.Scheme, &ci, int64(offered.TotalCollateral), fundSK,
			dlcTxs.FundingScriptPubkey, fundValue, cets,
		)
		if err != nil {
			return nil, nil, err
		}
		adaptorInfos[i] = info
		adaptorSigs = append(adaptorSigs, sigs...)
		cursor += len(cets)
	}

	refundSig, err := txbuilder.SignCET(dlcTxs.Refund, 0, dlcTxs.FundingScriptPubkey, fundValue, fundSK)
	if err != nil {
		return nil, nil, err
	}

	accepted := &contract.AcceptedContract{
		Offered:               *offered,
		AcceptParams:          *acceptParams,
		AcceptFundingInputs:   acceptParams.FundingInputs,
		AdaptorInfos:          adaptorInfos,
		AdaptorSignatures:     nil,
		DlcTransactions:       *dlcTxs,
		AcceptRefundSignature: contract.RefundSignature(refundSig),
	}

	msg := &contract.AcceptDlc{
		AcceptCollateral:     uint64(acceptCollateral),
		FundingInputs:        acceptParams.FundingInputs,
		ChangeSpk:            acceptParams.ChangeScriptPubKey,
		ChangeSerialID:       acceptParams.ChangeSerialID,
		PayoutSpk:            acceptParams.PayoutScriptPubKey,
		PayoutSerialID:       acceptParams.PayoutSerialID,
		CetAdaptorSignatures: contract.CetAdaptorSignatures{Signatures: adaptorSigs},
		RefundSignature:      contract.RefundSignature(refundSig),
	}
	copy(msg.FundingPubkeyBytes[:], acceptParams.FundPubKey.SerializeCompressed())

	log.Debugf("accepted contract: fund_outpoint=%v cets=%v", fundOutpoint, len(allCets))

	return accepted, msg, nil
}

// VerifyAcceptAndSign verifies an AcceptDlc against an OfferedContract,
// producing a SignedContract and the corresponding SignDlc message. It
// rebuilds the transaction bundle independently and must arrive at the
// same fund/CET/refund transactions the accepting party computed
// (spec.md S8.1).
func (m *Manager) VerifyAcceptAndSign(
	offered *contract.OfferedContract, accept *contract.AcceptDlc,
) (*contract.SignedContract, *contract.SignDlc, error) {

	acceptFundPK, err := btcec.ParsePubKey(accept.FundingPubkeyBytes[:])
	if err != nil {
		return nil, nil, contract.NewError(contract.ErrInvalidParameters,
			"malformed accept funding pubkey: %v", err)
	}

	if offered.OfferParams.Collateral+btcutil.Amount(accept.AcceptCollateral) !=
		offered.TotalCollateral {

		return nil, nil, contract.NewError(contract.ErrInvalidParameters,
			"offer collateral %d + accept collateral %d != total collateral %d",
			offered.OfferParams.Collateral, accept.AcceptCollateral,
			offered.TotalCollateral)
	}

	acceptParams := contract.PartyParams{
		FundPubKey:         acceptFundPK,
		ChangeScriptPubKey: accept.ChangeSpk,
		ChangeSerialID:     accept.ChangeSerialID,
		PayoutScriptPubKey: accept.PayoutSpk,
		PayoutSerialID:     accept.PayoutSerialID,
		FundingInputs:      accept.FundingInputs,
		Collateral:         btcutil.Amount(accept.AcceptCollateral),
	}
	for _, in := range accept.FundingInputs {
		acceptParams.InputAmount += inputAmount(in)
	}

	payouts0, err := cetPayoutsForContractInfo(&offered.ContractInfo[0], offered.TotalCollateral)
	if err != nil {
		return nil, nil, err
	}

	dlcTxs, err := txbuilder.CreateDlcTransactions(
		offered.OfferParams, acceptParams, payouts0, offered.TotalCollateral,
		offered.RefundLocktime, offered.CetLocktime, offered.FeeRatePerVb, offered.FundOutputSerialID,
	)
	if err != nil {
		return nil, nil, err
	}

	fundIdx, ok := dlcTxs.FundOutputIndex()
	if !ok {
		return nil, nil, contract.NewError(contract.ErrInvalidState, "fund output not found")
	}
	fundOutpoint := wire.OutPoint{Hash: dlcTxs.Fund.TxHash(), Index: uint32(fundIdx)}
	fundValue := dlcTxs.Fund.TxOut[fundIdx].Value

	allCets, _, err := buildAllCets(
		fundOutpoint, dlcTxs.FundingScriptPubkey, offered.OfferParams, acceptParams,
		offered.TotalCollateral, offered.CetLocktime, offered.ContractInfo,
	)
	if err != nil {
		return nil, nil, err
	}
	dlcTxs.Cets = allCets

	adaptorInfos := make([]contract.AdaptorInfo, len(offered.ContractInfo))
	cursor := 0
	sigCursor := 0
	for i := range offered.ContractInfo {
		ci := offered.ContractInfo[i]
		payouts, err := cetPayoutsForContractInfo(&ci, offered.TotalCollateral)
		if err != nil {
			return nil, nil, err
		}
		cets := allCets[cursor : cursor+len(payouts)]
		info, next, err := adaptor.VerifyAndGetAdaptorInfo(
			m.Scheme, &ci, acceptParams.FundPubKey, dlcTxs.FundingScriptPubkey, fundValue,
			cets, accept.CetAdaptorSignatures.Signatures, sigCursor,
		)
		if err != nil {
			return nil, nil, err
		}
		adaptorInfos[i] = info
		sigCursor = next
		cursor += len(cets)
	}
	if sigCursor != len(accept.CetAdaptorSignatures.Signatures) {
		return nil, nil, contract.NewError(contract.ErrInvalidAdaptorSignature,
			"unused trailing adaptor signatures: consumed %d of %d", sigCursor, len(accept.CetAdaptorSignatures.Signatures))
	}

	if err := txbuilder.VerifyTxInputSig(
		[]byte(accept.RefundSignature), dlcTxs.Refund, 0, dlcTxs.FundingScriptPubkey, fundValue,
		acceptParams.FundPubKey,
	); err != nil {
		return nil, nil, contract.NewError(contract.ErrInvalidRefundSignature, "%v", err)
	}

	fundSK, err := m.Signer.GetSecretKeyForPubkey(offered.OfferParams.FundPubKey)
	if err != nil {
		return nil, nil, contract.WrapCollaboratorError(contract.ErrSigner, err)
	}

	var offerAdaptorSigs []contract.AdaptorSignature
	cursor = 0
	for i := range offered.ContractInfo {
		ci := offered.ContractInfo[i]
		payouts, err := cetPayoutsForContractInfo(&ci, offered.TotalCollateral)
		if err != nil {
			return nil, nil, err
		}
		cets := allCets[cursor : cursor+len(payouts)]
		_, sigs, err := adaptor.GetAdaptorInfo(
			m.Scheme, &ci, int64(offered.TotalCollateral), fundSK,
			dlcTxs.FundingScriptPubkey, fundValue, cets,
		)
		if err != nil {
			return nil, nil, err
		}
		offerAdaptorSigs = append(offerAdaptorSigs, sigs...)
		cursor += len(cets)
	}

	offerRefundSig, err := txbuilder.SignCET(dlcTxs.Refund, 0, dlcTxs.FundingScriptPubkey, fundValue, fundSK)
	if err != nil {
		return nil, nil, err
	}

	fundingSigs, err := witness.SignFundingInputs(
		signerWitness{m.Signer}, dlcTxs.Fund,
		offered.OfferParams.FundingInputs, acceptParams.FundingInputs,
		dlcTxs.FundingScriptPubkey,
	)
	if err != nil {
		return nil, nil, err
	}

	signed := &contract.SignedContract{
		Accepted: contract.AcceptedContract{
			Offered:               *offered,
			AcceptParams:          acceptParams,
			AcceptFundingInputs:   acceptParams.FundingInputs,
			AdaptorInfos:          adaptorInfos,
			AdaptorSignatures:     accept.CetAdaptorSignatures.Signatures,
			DlcTransactions:       *dlcTxs,
			AcceptRefundSignature: accept.RefundSignature,
		},
		AdaptorSignatures:    offerAdaptorSigs,
		OfferRefundSignature: contract.RefundSignature(offerRefundSig),
		FundingSignatures:    fundingSigs,
	}

	signMsg := &contract.SignDlc{
		CetAdaptorSignatures: contract.CetAdaptorSignatures{Signatures: offerAdaptorSigs},
		RefundSignature:      contract.RefundSignature(offerRefundSig),
		FundingSignatures:    fundingSigs,
	}

	log.Infof("contract signed: fund_txid=%v", dlcTxs.Fund.TxHash())

	return signed, signMsg, nil
}

// VerifySign verifies a SignDlc on the accepting party's side, re-checking
// all adaptor signatures against the cached AdaptorInfo (via
// adaptor.VerifyAdaptorInfo) and the refund signature, then installs both parties' funding witnesses
// to produce the terminal SignedContract.
func (m *Manager) VerifySign(accepted *contract.AcceptedContract, sign *contract.SignDlc) (*contract.SignedContract, error) {
	fundIdx, ok := accepted.DlcTransactions.FundOutputIndex()
	if !ok {
		return nil, contract.NewError(contract.ErrInvalidState, "fund output not found")
	}
	fundValue := accepted.DlcTransactions.Fund.TxOut[fundIdx].Value

	cursor := 0
	sigCursor := 0
	for i := range accepted.Offered.ContractInfo {
		ci := accepted.Offered.ContractInfo[i]
		payouts, err := cetPayoutsForContractInfo(&ci, accepted.Offered.TotalCollateral)
		if err != nil {
			return nil, err
		}
		cets := accepted.DlcTransactions.Cets[cursor : cursor+len(payouts)]
		next, err := adaptor.VerifyAdaptorInfo(
			m.Scheme, &ci, accepted.AdaptorInfos[i], accepted.Offered.OfferParams.FundPubKey,
			accepted.DlcTransactions.FundingScriptPubkey, fundValue, cets,
			sign.CetAdaptorSignatures.Signatures, sigCursor,
		)
		if err != nil {
			return nil, err
		}
		sigCursor = next
		cursor += len(cets)
	}
	if sigCursor != len(sign.CetAdaptorSignatures.Signatures) {
		return nil, contract.NewError(contract.ErrInvalidAdaptorSignature,
			"unused trailing adaptor signatures: consumed %d of %d", sigCursor, len(sign.CetAdaptorSignatures.Signatures))
	}

	if err := txbuilder.VerifyTxInputSig(
		[]byte(sign.RefundSignature), accepted.DlcTransactions.Refund, 0,
		accepted.DlcTransactions.FundingScriptPubkey, fundValue,
		accepted.Offered.OfferParams.FundPubKey,
	); err != nil {
		return nil, contract.NewError(contract.ErrInvalidRefundSignature, "%v", err)
	}

	if err := witness.InstallWitnesses(
		accepted.DlcTransactions.Fund, accepted.Offered.OfferParams.FundingInputs,
		sign.FundingSignatures, accepted.AcceptFundingInputs,
	); err != nil {
		return nil, err
	}

	// Sign the accept side's own funding inputs (spec.md S4.4
	// verify_sign step 4); this, plus the peer witnesses just installed,
	// is what makes dlcTxs.Fund broadcast-ready.
	if _, err := witness.SignFundingInputs(
		signerWitness{m.Signer}, accepted.DlcTransactions.Fund,
		accepted.AcceptFundingInputs, accepted.Offered.OfferParams.FundingInputs,
		accepted.DlcTransactions.FundingScriptPubkey,
	); err != nil {
		return nil, err
	}

	return &contract.SignedContract{
		Accepted:             *accepted,
		AdaptorSignatures:    sign.CetAdaptorSignatures.Signatures,
		OfferRefundSignature: sign.RefundSignature,
		FundingSignatures:    sign.FundingSignatures,
	}, nil
}

func inputAmount(in contract.FundingInputInfo) btcutil.Amount {
	var tx wire.MsgTx
	if err := tx.Deserialize(bytes.NewReader(in.PrevTx)); err != nil {
		return 0
	}
	if int(in.PrevTxVout) >= len(tx.TxOut) {
		return 0
	}
	return btcutil.Amount(tx.TxOut[in.PrevTxVout].Value)
}
