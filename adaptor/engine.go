package adaptor

import (
	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/wire"
	"github.com/lightninglabs/dlcd/contract"
	"github.com/lightninglabs/dlcd/txbuilder"
)

// GetAdaptorInfo generates the adaptor signature for every CET belonging
// to a single ContractInfo, using fundSK as the adaptor secret (spec.md
// S4.2: "using fund_secret_key as the adaptor secret"), and the AdaptorInfo
// structure needed to look the right one up again at closure time.
func GetAdaptorInfo(
	scheme Scheme,
	ci *contract.ContractInfo,
	totalCollateral int64,
	fundSK *btcec.PrivateKey,
	fundingScript []byte,
	fundValue int64,
	cets []*wire.MsgTx,
) (contract.AdaptorInfo, []contract.AdaptorSignature, error) {

	switch outcomes := ci.Outcomes.(type) {
	case *contract.EnumeratedOutcomes:
		return getEnumAdaptorInfo(scheme, ci, outcomes, fundSK, fundingScript, fundValue, cets)
	case *contract.NumericOutcomes:
		return getNumericAdaptorInfo(scheme, ci, outcomes, fundSK, fundingScript, fundValue, cets)
	default:
		return nil, nil, contract.NewError(contract.ErrInvalidParameters,
			"unsupported outcome tree type %T", ci.Outcomes)
	}
}

func getEnumAdaptorInfo(
	scheme Scheme,
	ci *contract.ContractInfo,
	outcomes *contract.EnumeratedOutcomes,
	fundSK *btcec.PrivateKey,
	fundingScript []byte,
	fundValue int64,
	cets []*wire.MsgTx,
) (contract.AdaptorInfo, []contract.AdaptorSignature, error) {

	if len(outcomes.Outcomes) != len(cets) {
		return nil, nil, contract.NewError(contract.ErrInvalidParameters,
			"%d payout leaves but %d CETs", len(outcomes.Outcomes), len(cets))
	}

	sigs := make([]contract.AdaptorSignature, len(cets))
	for i, payout := range outcomes.Outcomes {
		encPoint, err := enumOutcomePoint(ci.Oracles, payout.Outcome)
		if err != nil {
			return nil, nil, err
		}
		sig, err := signCETAdaptor(scheme, fundSK, fundingScript, fundValue, cets[i], encPoint)
		if err != nil {
			return nil, nil, err
		}
		sigs[i] = *sig
	}
	return &contract.EnumAdaptorInfo{}, sigs, nil
}

func getNumericAdaptorInfo(
	scheme Scheme,
	ci *contract.ContractInfo,
	outcomes *contract.NumericOutcomes,
	fundSK *btcec.PrivateKey,
	fundingScript []byte,
	fundValue int64,
	cets []*wire.MsgTx,
) (contract.AdaptorInfo, []contract.AdaptorSignature, error) {

	combos, err := oracleCombinations(ci)
	if err != nil {
		return nil, nil, err
	}

	trie := contract.NewRangeTrie()

	var sigs []contract.AdaptorSignature
	cetIndex := 0
	for _, iv := range outcomes.Intervals {
		blocks := rangeToPrefixes(iv.Start, iv.End, outcomes.Base, outcomes.NumDigits)
		for _, block := range blocks {
			if cetIndex >= len(cets) {
				return nil, nil, contract.NewError(contract.ErrInvalidParameters,
					"more covering prefixes than CETs provided")
			}
			for _, combo := range combos {
				encPoint, err := numericOutcomePoint(ci.Oracles, combo, block.digits)
				if err != nil {
					return nil, nil, err
				}
				sig, err := signCETAdaptor(scheme, fundSK, fundingScript, fundValue, cets[cetIndex], encPoint)
				if err != nil {
					return nil, nil, err
				}
				sigs = append(sigs, *sig)
				trie.Insert(trieKey(combo, block.digits), contract.RangeInfo{
					CETIndex:     cetIndex,
					AdaptorIndex: len(sigs) - 1,
				})
			}
			cetIndex++
		}
	}

	log.Tracef("generated %d numeric adaptor signatures over %d cets (%d oracle combinations)",
		len(sigs), cetIndex, len(combos))

	return &contract.NumericAdaptorInfo{Trie: trie}, sigs, nil
}

// oracleCombinations enumerates the threshold-sized oracle subsets a
// numeric ContractInfo's adaptor signatures are generated for, in the
// lexicographic order both sides must agree on.
func oracleCombinations(ci *contract.ContractInfo) ([][]int, error) {
	n := len(ci.Oracles)
	t := int(ci.Threshold)
	if n == 0 || t <= 0 || t > n {
		return nil, contract.NewError(contract.ErrInvalidParameters,
			"threshold %d incompatible with %d announced oracles", t, n)
	}
	return combinations(n, t), nil
}

// trieKey prepends a combination's oracle indices to a digit path, forming
// the (oracle indices, digit path) tuple the RangeTrie's leaves are keyed
// by. The combination segment has fixed length (the threshold), so prefix
// matching within the trie still operates purely on the digit segment.
func trieKey(combo []int, digits []int64) []int64 {
	key := make([]int64, 0, len(combo)+len(digits))
	for _, idx := range combo {
		key = append(key, int64(idx))
	}
	return append(key, digits...)
}

// AdaptorSigCount returns the number of adaptor signatures a single
// ContractInfo contributes to the flat signature array: one per payout
// leaf for an enumerated tree, one per (covering prefix, oracle
// combination) pair for a numeric tree.
func AdaptorSigCount(ci *contract.ContractInfo, totalCollateral btcutil.Amount) (int, error) {
	switch outcomes := ci.Outcomes.(type) {
	case *contract.EnumeratedOutcomes:
		return len(outcomes.Outcomes), nil
	case *contract.NumericOutcomes:
		combos, err := oracleCombinations(ci)
		if err != nil {
			return 0, err
		}
		numBlocks := 0
		for _, iv := range outcomes.Intervals {
			numBlocks += len(rangeToPrefixes(iv.Start, iv.End, outcomes.Base, outcomes.NumDigits))
		}
		return numBlocks * len(combos), nil
	default:
		return 0, contract.NewError(contract.ErrInvalidParameters,
			"unsupported outcome tree type %T", ci.Outcomes)
	}
}

func signCETAdaptor(
	scheme Scheme, fundSK *btcec.PrivateKey, fundingScript []byte, fundValue int64,
	cet *wire.MsgTx, encPoint *btcec.PublicKey,
) (*contract.AdaptorSignature, error) {

	digest, err := txbuilder.GetRawSigForTxInput(cet, 0, fundingScript, fundValue)
	if err != nil {
		return nil, err
	}
	return scheme.Sign(digest, fundSK, encPoint)
}

// VerifyAndGetAdaptorInfo verifies a flat slice of adaptor signatures
// starting at startIndex against ci's CETs, returning the reconstructed
// AdaptorInfo and the index immediately past the signatures it consumed.
func VerifyAndGetAdaptorInfo(
	scheme Scheme,
	ci *contract.ContractInfo,
	counterPK *btcec.PublicKey,
	fundingScript []byte,
	fundValue int64,
	cets []*wire.MsgTx,
	providedSigs []contract.AdaptorSignature,
	startIndex int,
) (contract.AdaptorInfo, int, error) {

	switch outcomes := ci.Outcomes.(type) {
	case *contract.EnumeratedOutcomes:
		return verifyEnumAdaptorInfo(scheme, ci, outcomes, counterPK, fundingScript, fundValue, cets, providedSigs, startIndex)
	case *contract.NumericOutcomes:
		return verifyNumericAdaptorInfo(scheme, ci, outcomes, counterPK, fundingScript, fundValue, cets, providedSigs, startIndex)
	default:
		return nil, startIndex, contract.NewError(contract.ErrInvalidParameters,
			"unsupported outcome tree type %T", ci.Outcomes)
	}
}

func verifyEnumAdaptorInfo(
	scheme Scheme,
	ci *contract.ContractInfo,
	outcomes *contract.EnumeratedOutcomes,
	counterPK *btcec.PublicKey,
	fundingScript []byte,
	fundValue int64,
	cets []*wire.MsgTx,
	providedSigs []contract.AdaptorSignature,
	startIndex int,
) (contract.AdaptorInfo, int, error) {

	if len(outcomes.Outcomes) != len(cets) {
		return nil, startIndex, contract.NewError(contract.ErrInvalidParameters,
			"%d payout leaves but %d CETs", len(outcomes.Outcomes), len(cets))
	}
	if startIndex+len(cets) > len(providedSigs) {
		return nil, startIndex, contract.NewError(contract.ErrInvalidAdaptorSignature,
			"not enough adaptor signatures provided")
	}

	for i, payout := range outcomes.Outcomes {
		encPoint, err := enumOutcomePoint(ci.Oracles, payout.Outcome)
		if err != nil {
			return nil, startIndex, err
		}
		digest, err := txbuilder.GetRawSigForTxInput(cets[i], 0, fundingScript, fundValue)
		if err != nil {
			return nil, startIndex, err
		}
		sig := providedSigs[startIndex+i]
		if err := scheme.Verify(&sig, digest, counterPK, encPoint); err != nil {
			return nil, startIndex, err
		}
	}

	return &contract.EnumAdaptorInfo{}, startIndex + len(cets), nil
}

func verifyNumericAdaptorInfo(
	scheme Scheme,
	ci *contract.ContractInfo,
	outcomes *contract.NumericOutcomes,
	counterPK *btcec.PublicKey,
	fundingScript []byte,
	fundValue int64,
	cets []*wire.MsgTx,
	providedSigs []contract.AdaptorSignature,
	startIndex int,
) (contract.AdaptorInfo, int, error) {

	combos, err := oracleCombinations(ci)
	if err != nil {
		return nil, startIndex, err
	}

	trie := contract.NewRangeTrie()
	cetIndex := 0
	sigIndex := startIndex

	for _, iv := range outcomes.Intervals {
		blocks := rangeToPrefixes(iv.Start, iv.End, outcomes.Base, outcomes.NumDigits)
		for _, block := range blocks {
			if cetIndex >= len(cets) {
				return nil, startIndex, contract.NewError(contract.ErrInvalidParameters,
					"more covering prefixes than CETs provided")
			}
			digest, err := txbuilder.GetRawSigForTxInput(cets[cetIndex], 0, fundingScript, fundValue)
			if err != nil {
				return nil, startIndex, err
			}
			for _, combo := range combos {
				if sigIndex >= len(providedSigs) {
					return nil, startIndex, contract.NewError(contract.ErrInvalidAdaptorSignature,
						"not enough adaptor signatures provided")
				}
				encPoint, err := numericOutcomePoint(ci.Oracles, combo, block.digits)
				if err != nil {
					return nil, startIndex, err
				}
				sig := providedSigs[sigIndex]
				if err := scheme.Verify(&sig, digest, counterPK, encPoint); err != nil {
					return nil, startIndex, err
				}
				// RangeInfo indices are local to this ContractInfo's
				// own CET/signature slice; dlcmgr applies the flat
				// offset across ContractInfos at closure time.
				trie.Insert(trieKey(combo, block.digits), contract.RangeInfo{
					CETIndex:     cetIndex,
					AdaptorIndex: sigIndex - startIndex,
				})
				sigIndex++
			}
			cetIndex++
		}
	}

	return &contract.NumericAdaptorInfo{Trie: trie}, sigIndex, nil
}

// VerifyAdaptorInfo re-verifies a flat signature slice against a cached
// AdaptorInfo and returns the next start index (spec.md S4.2). The cached
// info selects the enumerated or numeric path; for a numeric tree the
// digit-decomposition trie is rebuilt during verification and then
// discarded, so the cached trie is not reused.
func VerifyAdaptorInfo(
	scheme Scheme,
	ci *contract.ContractInfo,
	info contract.AdaptorInfo,
	counterPK *btcec.PublicKey,
	fundingScript []byte,
	fundValue int64,
	cets []*wire.MsgTx,
	providedSigs []contract.AdaptorSignature,
	startIndex int,
) (int, error) {

	switch info.(type) {
	case *contract.EnumAdaptorInfo:
		outcomes, ok := ci.Outcomes.(*contract.EnumeratedOutcomes)
		if !ok {
			return startIndex, contract.NewError(contract.ErrInvalidParameters,
				"AdaptorInfo/outcome tree mismatch")
		}
		_, next, err := verifyEnumAdaptorInfo(scheme, ci, outcomes, counterPK, fundingScript, fundValue, cets, providedSigs, startIndex)
		return next, err
	case *contract.NumericAdaptorInfo:
		outcomes, ok := ci.Outcomes.(*contract.NumericOutcomes)
		if !ok {
			return startIndex, contract.NewError(contract.ErrInvalidParameters,
				"AdaptorInfo/outcome tree mismatch")
		}
		_, next, err := verifyNumericAdaptorInfo(scheme, ci, outcomes, counterPK, fundingScript, fundValue, cets, providedSigs, startIndex)
		return next, err
	default:
		return startIndex, contract.NewError(contract.ErrInvalidParameters,
			"unsupported AdaptorInfo type %T", info)
	}
}
