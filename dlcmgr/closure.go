package dlcmgr

import (
	"sort"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/wire"

	"github.com/lightninglabs/dlcd/adaptor"
	"github.com/lightninglabs/dlcd/contract"
	"github.com/lightninglabs/dlcd/txbuilder"
)

// rangeInfoForAttestations maps a set of oracle attestations through a
// ContractInfo's AdaptorInfo to the RangeInfo (cet_index, adaptor_index)
// pair those attestations resolve, along with the raw oracle signature
// scalars whose sum decrypts the selected adaptor signature.
func rangeInfoForAttestations(
	ci *contract.ContractInfo, info contract.AdaptorInfo, attestations []contract.OracleAttestation,
) (contract.RangeInfo, [][32]byte, error) {

	if len(attestations) < int(ci.Threshold) {
		return contract.RangeInfo{}, nil, contract.NewError(contract.ErrNoMatchingCET,
			"only %d of %d required oracle attestations provided", len(attestations), ci.Threshold)
	}

	switch outcomes := ci.Outcomes.(type) {
	case *contract.EnumeratedOutcomes:
		return enumRangeInfo(ci, outcomes, attestations)
	case *contract.NumericOutcomes:
		numericInfo, ok := info.(*contract.NumericAdaptorInfo)
		if !ok {
			return contract.RangeInfo{}, nil, contract.NewError(contract.ErrInvalidParameters,
				"AdaptorInfo/outcome tree mismatch")
		}
		return numericRangeInfo(ci, outcomes, numericInfo, attestations)
	default:
		return contract.RangeInfo{}, nil, contract.NewError(contract.ErrInvalidParameters,
			"unsupported outcome tree type %T", ci.Outcomes)
	}
}

// enumRangeInfo resolves an enumerated outcome: every announced oracle
// must have attested the same outcome label, and the decryption secret is
// the sum of their revealed scalars (matching the n-of-n aggregation the
// signatures were encrypted to).
func enumRangeInfo(
	ci *contract.ContractInfo, outcomes *contract.EnumeratedOutcomes,
	attestations []contract.OracleAttestation,
) (contract.RangeInfo, [][32]byte, error) {

	outcome := attestations[0].Outcome
	leaf := -1
	for i, p := range outcomes.Outcomes {
		if p.Outcome == outcome {
			leaf = i
			break
		}
	}
	if leaf == -1 {
		return contract.RangeInfo{}, nil, contract.NewError(contract.ErrNoMatchingCET,
			"no payout leaf matches attested outcome %q", outcome)
	}

	byOracle := make(map[int]contract.OracleAttestation, len(attestations))
	for _, att := range attestations {
		byOracle[att.OracleIndex] = att
	}

	scalars := make([][32]byte, 0, len(ci.Oracles))
	for i := range ci.Oracles {
		att, ok := byOracle[i]
		if !ok || att.Outcome != outcome || len(att.Signatures) == 0 {
			return contract.RangeInfo{}, nil, contract.NewError(contract.ErrNoMatchingCET,
				"oracle %d did not attest outcome %q", i, outcome)
		}
		scalars = append(scalars, att.Signatures[0])
	}

	return contract.RangeInfo{CETIndex: leaf, AdaptorIndex: leaf}, scalars, nil
}

// numericRangeInfo resolves a numeric outcome: the attesting oracles'
// indices (sorted ascending, truncated to the threshold) plus the attested
// digit path are looked up in the digit-decomposition trie, and the
// decryption secret is the sum of each participating oracle's per-digit
// scalars over the covering prefix the lookup matched.
func numericRangeInfo(
	ci *contract.ContractInfo, outcomes *contract.NumericOutcomes,
	info *contract.NumericAdaptorInfo, attestations []contract.OracleAttestation,
) (contract.RangeInfo, [][32]byte, error) {

	combo := append([]contract.OracleAttestation(nil), attestations...)
	sort.Slice(combo, func(i, j int) bool { return combo[i].OracleIndex < combo[j].OracleIndex })
	combo = combo[:ci.Threshold]

	digits := digitsForAttestedValue(combo[0].Value, outcomes.Base, outcomes.NumDigits)

	key := make([]int64, 0, len(combo)+len(digits))
	for _, att := range combo {
		key = append(key, int64(att.OracleIndex))
	}
	key = append(key, digits...)

	rangeInfo, depth, ok := info.Trie.Lookup(key)
	if !ok {
		return contract.RangeInfo{}, nil, contract.NewError(contract.ErrNoMatchingCET,
			"no covering prefix matches attested value %d for oracle set", combo[0].Value)
	}
	prefixLen := depth - len(combo)

	var scalars [][32]byte
	for _, att := range combo {
		attDigits := digitsForAttestedValue(att.Value, outcomes.Base, outcomes.NumDigits)
		for j := 0; j < prefixLen; j++ {
			if attDigits[j] != digits[j] {
				return contract.RangeInfo{}, nil, contract.NewError(contract.ErrNoMatchingCET,
					"oracle %d attested a different digit prefix", att.OracleIndex)
			}
		}
		if len(att.Signatures) < prefixLen {
			return contract.RangeInfo{}, nil, contract.NewError(contract.ErrNoMatchingCET,
				"oracle %d revealed %d digit scalars, need %d",
				att.OracleIndex, len(att.Signatures), prefixLen)
		}
		scalars = append(scalars, att.Signatures[:prefixLen]...)
	}

	return rangeInfo, scalars, nil
}

func digitsForAttestedValue(v int64, base, numDigits int) []int64 {
	digits := make([]int64, numDigits)
	for i := numDigits - 1; i >= 0; i-- {
		digits[i] = v % int64(base)
		v /= int64(base)
	}
	return digits
}

// flatIndexOffsets returns where ciIndex's own CET slice and adaptor
// signature slice begin within the flat, declaration-order-concatenated
// arrays (spec.md S4.2). The two offsets differ for numeric trees, where
// each CET carries one adaptor signature per oracle combination.
func flatIndexOffsets(infos []contract.ContractInfo, ciIndex int, totalCollateral btcutil.Amount) (int, int, error) {
	cetOffset, sigOffset := 0, 0
	for i := 0; i < ciIndex; i++ {
		payouts, err := cetPayoutsForContractInfo(&infos[i], totalCollateral)
		if err != nil {
			return 0, 0, err
		}
		cetOffset += len(payouts)
		sigCount, err := adaptor.AdaptorSigCount(&infos[i], totalCollateral)
		if err != nil {
			return 0, 0, err
		}
		sigOffset += sigCount
	}
	return cetOffset, sigOffset, nil
}

// CloseCET signs and returns the spendable CET matching the given oracle
// attestations. ciIndex selects which of the OfferedContract's
// ContractInfo entries the attestations resolve against; its cached
// AdaptorInfo is looked up from the snapshot rather than passed in, since
// that is exactly what it was cached for (spec.md S4.2). Selection of which
// side's adaptor signature to decrypt (the offer party's own vs. the accept
// party's) mirrors the original is_offer_party branch: each side decrypts
// the *other* side's adaptor signature with the secret recovered from the
// oracle attestations, and signs its own half with its fund secret key.
func (m *Manager) CloseCET(
	signed *contract.SignedContract, ciIndex int,
	attestations []contract.OracleAttestation,
) (*wire.MsgTx, error) {

	infos := signed.Accepted.Offered.ContractInfo
	if ciIndex < 0 || ciIndex >= len(infos) {
		return nil, contract.NewError(contract.ErrInvalidParameters,
			"contract info index %d out of range (%d contract infos)", ciIndex, len(infos))
	}
	ci := &infos[ciIndex]
	adaptorInfo := signed.Accepted.AdaptorInfos[ciIndex]

	rangeInfo, oracleSigs, err := rangeInfoForAttestations(ci, adaptorInfo, attestations)
	if err != nil {
		return nil, err
	}

	// RangeInfo's CETIndex/AdaptorIndex are local to this ContractInfo's
	// own CET/adaptor-signature slice; offset them by the flat position
	// every prior ContractInfo occupies to index into the concatenated
	// arrays the rest of the snapshot carries (spec.md S4.2's
	// multi-ContractInfo composition).
	cetOffset, sigOffset, err := flatIndexOffsets(infos, ciIndex, signed.Accepted.Offered.TotalCollateral)
	if err != nil {
		return nil, err
	}
	cetIndex := cetOffset + rangeInfo.CETIndex
	adaptorIndex := sigOffset + rangeInfo.AdaptorIndex

	log.Debugf("closing cet_index=%v adaptor_index=%v", cetIndex, adaptorIndex)

	cet := signed.Accepted.DlcTransactions.Cets[cetIndex].Copy()

	var adaptorSigs []contract.AdaptorSignature
	var fundPubKey, otherPubKey *btcec.PublicKey
	if signed.Accepted.Offered.IsOfferParty {
		adaptorSigs = signed.Accepted.AdaptorSignatures
		fundPubKey = signed.Accepted.Offered.OfferParams.FundPubKey
		otherPubKey = signed.Accepted.AcceptParams.FundPubKey
	} else {
		adaptorSigs = signed.AdaptorSignatures
		fundPubKey = signed.Accepted.AcceptParams.FundPubKey
		otherPubKey = signed.Accepted.Offered.OfferParams.FundPubKey
	}

	if adaptorIndex >= len(adaptorSigs) {
		return nil, contract.NewError(contract.ErrInvalidState,
			"adaptor index %d out of range (%d signatures)", adaptorIndex, len(adaptorSigs))
	}

	fundSK, err := m.Signer.GetSecretKeyForPubkey(fundPubKey)
	if err != nil {
		return nil, contract.WrapCollaboratorError(contract.ErrSigner, err)
	}

	fundValue := signed.Accepted.DlcTransactions.FundOutput().Value
	fundingScript := signed.Accepted.DlcTransactions.FundingScriptPubkey

	ownSig, err := txbuilder.SignCET(cet, 0, fundingScript, fundValue, fundSK)
	if err != nil {
		return nil, err
	}

	otherSig, err := decryptAdaptorSig(m.Scheme, &adaptorSigs[adaptorIndex], oracleSigs)
	if err != nil {
		return nil, err
	}

	txbuilder.SignMultiSigInput(
		cet, 0, fundingScript,
		txbuilder.PubKeyBytes(fundPubKey), ownSig,
		txbuilder.PubKeyBytes(otherPubKey), otherSig,
	)

	return cet, nil
}

func decryptAdaptorSig(
	scheme adaptor.Scheme, sig *contract.AdaptorSignature, oracleSigs [][32]byte,
) ([]byte, error) {

	secret, err := adaptor.AggregateOutcomeSecret(oracleSigs)
	if err != nil {
		return nil, err
	}
	return scheme.Decrypt(sig, secret)
}

// CloseRefund signs and returns the spendable refund transaction. Like
// CloseCET, which side's previously-received signature gets merged with a
// freshly produced one depends on is_offer_party.
func (m *Manager) CloseRefund(signed *contract.SignedContract) (*wire.MsgTx, error) {
	fundValue := signed.Accepted.DlcTransactions.FundOutput().Value
	fundingScript := signed.Accepted.DlcTransactions.FundingScriptPubkey

	var fundPubKey, otherPubKey *btcec.PublicKey
	var otherSig contract.RefundSignature
	if signed.Accepted.Offered.IsOfferParty {
		fundPubKey = signed.Accepted.Offered.OfferParams.FundPubKey
		otherPubKey = signed.Accepted.AcceptParams.FundPubKey
		otherSig = signed.Accepted.AcceptRefundSignature
	} else {
		fundPubKey = signed.Accepted.AcceptParams.FundPubKey
		otherPubKey = signed.Accepted.Offered.OfferParams.FundPubKey
		otherSig = signed.OfferRefundSignature
	}

	fundSK, err := m.Signer.GetSecretKeyForPubkey(fundPubKey)
	if err != nil {
		return nil, contract.WrapCollaboratorError(contract.ErrSigner, err)
	}

	refund := signed.Accepted.DlcTransactions.Refund.Copy()
	ownSig, err := txbuilder.SignCET(refund, 0, fundingScript, fundValue, fundSK)
	if err != nil {
		return nil, err
	}

	txbuilder.SignMultiSigInput(
		refund, 0, fundingScript,
		txbuilder.PubKeyBytes(fundPubKey), ownSig,
		txbuilder.PubKeyBytes(otherPubKey), []byte(otherSig),
	)

	return refund, nil
}
