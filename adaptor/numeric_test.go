package adaptor

import (
	"testing"

	"github.com/lightninglabs/dlcd/contract"
	"github.com/stretchr/testify/require"
)

// TestRangeToPrefixesCoversWholeRangeExactly confirms the greedy block
// decomposition's union of leaf values exactly equals the requested range,
// with no gaps or overlaps, for a range that is not itself block-aligned.
func TestRangeToPrefixesCoversWholeRangeExactly(t *testing.T) {
	const base, numDigits = 2, 4 // values 0..15

	blocks := rangeToPrefixes(3, 11, base, numDigits)
	require.NotEmpty(t, blocks)

	covered := make(map[int64]bool)
	for _, b := range blocks {
		for v := b.start; v <= b.end; v++ {
			require.Falsef(t, covered[v], "value %d covered by more than one block", v)
			covered[v] = true
		}
	}
	for v := int64(3); v <= 11; v++ {
		require.Truef(t, covered[v], "value %d not covered by any block", v)
	}
	require.Len(t, covered, 9)
}

// TestRangeToPrefixesAlignedBlock confirms a perfectly block-aligned range
// collapses to a single minimal-length prefix.
func TestRangeToPrefixesAlignedBlock(t *testing.T) {
	const base, numDigits = 2, 4 // values 0..15

	blocks := rangeToPrefixes(8, 15, base, numDigits)
	require.Len(t, blocks, 1)
	require.Equal(t, []int64{1}, blocks[0].digits)
	require.Equal(t, int64(8), blocks[0].start)
	require.Equal(t, int64(15), blocks[0].end)
}

func TestInterpolatePayoutEndpoints(t *testing.T) {
	iv := contract.NumericInterval{Start: 0, End: 100, StartPayout: 0, EndPayout: 1000}
	require.Equal(t, int64(0), int64(interpolatePayout(iv, 0)))
	require.Equal(t, int64(1000), int64(interpolatePayout(iv, 100)))
	require.Equal(t, int64(500), int64(interpolatePayout(iv, 50)))
}
