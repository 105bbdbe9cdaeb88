package contract

import (
	"testing"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/stretchr/testify/require"
)

func TestRangeTrieLookup(t *testing.T) {
	trie := NewRangeTrie()
	trie.Insert([]int64{1, 0}, RangeInfo{CETIndex: 0, AdaptorIndex: 0})
	trie.Insert([]int64{1, 1}, RangeInfo{CETIndex: 1, AdaptorIndex: 1})
	trie.Insert([]int64{0}, RangeInfo{CETIndex: 2, AdaptorIndex: 2})

	info, depth, ok := trie.Lookup([]int64{1, 0})
	require.True(t, ok)
	require.Equal(t, RangeInfo{CETIndex: 0, AdaptorIndex: 0}, info)
	require.Equal(t, 2, depth)

	// A prefix shorter than the inserted path still resolves once its
	// own leaf is reached on the way down (the "0" block covers every
	// path starting with 0, regardless of trailing digits), and the
	// reported depth is the prefix's length, not the query's.
	info, depth, ok = trie.Lookup([]int64{0, 1})
	require.True(t, ok)
	require.Equal(t, RangeInfo{CETIndex: 2, AdaptorIndex: 2}, info)
	require.Equal(t, 1, depth)

	_, _, ok = trie.Lookup([]int64{1, 2})
	require.False(t, ok)
}

func TestContractInputValidate(t *testing.T) {
	valid := &ContractInput{
		OfferCollateral: 50_000,
		TotalCollateral: 100_000,
		ContractInfos: []ContractInputInfo{{
			Outcomes: &EnumeratedOutcomes{Outcomes: []Payout{
				{Outcome: "win", OfferPayout: 100_000},
				{Outcome: "lose", OfferPayout: 0},
			}},
		}},
	}
	require.NoError(t, valid.Validate())

	t.Run("offer exceeds total", func(t *testing.T) {
		bad := *valid
		bad.OfferCollateral = 200_000
		require.Error(t, bad.Validate())
	})

	t.Run("no contract infos", func(t *testing.T) {
		bad := *valid
		bad.ContractInfos = nil
		require.Error(t, bad.Validate())
	})

	t.Run("payout exceeds total collateral", func(t *testing.T) {
		bad := &ContractInput{
			OfferCollateral: 50_000,
			TotalCollateral: 100_000,
			ContractInfos: []ContractInputInfo{{
				Outcomes: &EnumeratedOutcomes{Outcomes: []Payout{
					{Outcome: "win", OfferPayout: 200_000},
				}},
			}},
		}
		require.Error(t, bad.Validate())
	})
}

func TestPayoutAcceptPayout(t *testing.T) {
	p := Payout{OfferPayout: 30_000}
	require.Equal(t, btcutil.Amount(70_000), p.AcceptPayout(100_000))
}
