package adaptor

import (
	"github.com/btcsuite/btcd/btcutil"

	"github.com/lightninglabs/dlcd/contract"
)

// prefixBlock is one covering prefix returned by rangeToPrefixes, along
// with the inclusive value range of leaf outcomes it covers.
type prefixBlock struct {
	digits     []int64
	start, end int64
}

// rangeToPrefixes decomposes the inclusive range [start, end] of an
// n-digit base-b number into the minimal set of digit prefixes whose union
// is exactly that range: the greedy maximal aligned block algorithm, the
// same idea CIDR aggregation uses for IP ranges. Each returned prefix is a
// most-significant-first digit slice shorter than numDigits whenever it
// covers more than one leaf value.
func rangeToPrefixes(start, end int64, base, numDigits int) []prefixBlock {
	var blocks []prefixBlock

	cur := start
	for cur <= end {
		blockSize := int64(1)
		exp := 0
		for exp < numDigits {
			nextBlockSize := blockSize * int64(base)
			if cur%nextBlockSize != 0 {
				break
			}
			if cur+nextBlockSize-1 > end {
				break
			}
			blockSize = nextBlockSize
			exp++
		}

		prefixLen := numDigits - exp
		prefixValue := cur / blockSize
		blocks = append(blocks, prefixBlock{
			digits: digitsForValue(prefixValue, base, prefixLen),
			start:  cur,
			end:    cur + blockSize - 1,
		})

		cur += blockSize
	}

	return blocks
}

// interpolatePayout linearly interpolates the offer party's payout at value
// v within [iv.Start, iv.End], rounding toward the start payout.
func interpolatePayout(iv contract.NumericInterval, v int64) btcutil.Amount {
	if iv.End == iv.Start {
		return iv.StartPayout
	}
	span := iv.End - iv.Start
	delta := int64(iv.EndPayout) - int64(iv.StartPayout)
	return iv.StartPayout + btcutil.Amount(delta*(v-iv.Start)/span)
}

// NumericCETPayouts expands a NumericOutcomes tree into one payout leaf per
// covering-prefix block rangeToPrefixes produces, in the same order
// getNumericAdaptorInfo assigns adaptor signatures: the count and order the
// Transaction Assembler must build CETs in for a numeric outcome tree to
// agree with the Adaptor Engine's signature indexing (spec.md S4.2, S6.2).
// NumericOutcomes.Payouts instead returns one leaf per interval endpoint,
// which is the right shape for describing the payout curve but the wrong
// shape for CET generation; this is the bridge between the two.
func NumericCETPayouts(outcomes *contract.NumericOutcomes, totalCollateral btcutil.Amount) ([]contract.Payout, error) {
	var payouts []contract.Payout
	for _, iv := range outcomes.Intervals {
		if iv.End < iv.Start {
			return nil, contract.NewError(contract.ErrInvalidParameters,
				"numeric interval end %d before start %d", iv.End, iv.Start)
		}
		for _, block := range rangeToPrefixes(iv.Start, iv.End, outcomes.Base, outcomes.NumDigits) {
			payouts = append(payouts, contract.Payout{
				Outcome:     outcomeLabelForDigits(block.digits),
				OfferPayout: interpolatePayout(iv, block.start),
			})
		}
	}
	return payouts, nil
}
