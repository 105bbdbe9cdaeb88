// Package contract defines the immutable data model that the dlcmgr phase
// transitions operate over: the user-supplied ContractInput, each party's
// PartyParams, the per-outcome-tree ContractInfo, the cached AdaptorInfo
// produced when generating adaptor signatures, and the three contract
// snapshots (OfferedContract, AcceptedContract, SignedContract) that record
// the protocol's progress through Offered -> Accepted -> Signed -> Closed.
package contract

import (
	"strconv"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcutil"
)

// FundingInputInfo describes one spendable UTXO a party contributes to the
// fund transaction.
type FundingInputInfo struct {
	// PrevTx is the serialized previous transaction containing the
	// output this input spends.
	PrevTx []byte

	// PrevTxVout is the index of the spent output within PrevTx.
	PrevTxVout uint32

	// SerialID is the caller-assigned nonce used to order this input
	// (and its counterpart change output) deterministically across both
	// parties' independent views.
	SerialID uint64

	// Sequence is the nSequence value for this input.
	Sequence uint32

	// MaxWitnessLen bounds the size of the witness this input will
	// produce once signed, used for fee estimation before signing.
	MaxWitnessLen uint16

	// RedeemScript is the redeem script needed to spend this input, if
	// any (e.g. nested P2SH wrapping a P2WPKH key).
	RedeemScript []byte
}

// PartyParams holds one side's on-chain identity for the contract: the key
// used for the 2-of-2 fund output, the change and payout destinations (each
// tagged with its own serial id for output ordering), and the funding
// inputs it contributes.
type PartyParams struct {
	FundPubKey *btcec.PublicKey

	ChangeScriptPubKey []byte
	ChangeSerialID     uint64

	PayoutScriptPubKey []byte
	PayoutSerialID     uint64

	FundingInputs []FundingInputInfo

	// InputAmount is the sum of the value of every FundingInputInfo
	// above, as resolved from each input's previous output.
	InputAmount btcutil.Amount

	Collateral btcutil.Amount
}

// Payout is one leaf of an outcome tree's payout function: the amount paid
// to the offer party if this outcome is attested (the accept party
// receives the remainder of the total collateral).
type Payout struct {
	// Outcome is an opaque label identifying which oracle outcome (or
	// numeric value) this payout corresponds to; only used for
	// enumerated outcome trees; numeric trees instead key off the
	// digit-decomposition trie in AdaptorInfo.
	Outcome string

	OfferPayout btcutil.Amount
}

// AcceptPayout returns the amount paid to the accept party for this payout
// leaf, given the contract's total collateral.
func (p Payout) AcceptPayout(totalCollateral btcutil.Amount) btcutil.Amount {
	return totalCollateral - p.OfferPayout
}

// OutcomeTree is the payout curve a ContractInfo is built from: either an
// enumerated set of discrete outcomes, or a numeric range with a
// digit-decomposed payout function. Modeled as a small closed interface
// (see lnwallet.WitnessType) rather than an inheritance hierarchy.
type OutcomeTree interface {
	// Payouts expands the curve into a concrete list of payout leaves,
	// given the contract's total collateral. For enumerated trees these
	// are the CET payout leaves; for numeric trees they describe the
	// curve only (see NumericOutcomes.Payouts).
	Payouts(totalCollateral btcutil.Amount) ([]Payout, error)

	isOutcomeTree()
}

// EnumeratedOutcomes is an outcome tree whose payouts are given explicitly,
// one per possible oracle outcome.
type EnumeratedOutcomes struct {
	Outcomes []Payout
}

func (e *EnumeratedOutcomes) Payouts(_ btcutil.Amount) ([]Payout, error) {
	return e.Outcomes, nil
}

func (e *EnumeratedOutcomes) isOutcomeTree() {}

// NumericOutcomes is a CET-DLC numeric outcome tree: the attested value is
// an unsigned integer of NumDigits digits in the given Base, and the payout
// is a piecewise-linear function over that range. Intervals must be
// contiguous, non-overlapping, and cover [0, Base^NumDigits).
type NumericOutcomes struct {
	Base      int
	NumDigits int
	Intervals []NumericInterval
}

// NumericInterval is one piece of a NumericOutcomes payout function: for
// any attested value in [Start, End], the offer party is paid a value
// linearly interpolated between StartPayout and EndPayout.
type NumericInterval struct {
	Start, End             int64
	StartPayout, EndPayout btcutil.Amount
}

func (n *NumericOutcomes) isOutcomeTree() {}

// Payouts expands every interval's endpoints into Payout leaves describing
// the payout curve. CETs are not built from these: the adaptor engine
// builds one CET per covering prefix (adaptor.NumericCETPayouts) rather
// than one per integer outcome (outcome space is exponential in NumDigits).
func (n *NumericOutcomes) Payouts(totalCollateral btcutil.Amount) ([]Payout, error) {
	if len(n.Intervals) == 0 {
		return nil, NewError(ErrInvalidParameters, "numeric outcome tree has no intervals")
	}
	var payouts []Payout
	for _, iv := range n.Intervals {
		if iv.End < iv.Start {
			return nil, NewError(ErrInvalidParameters,
				"numeric interval end %d before start %d", iv.End, iv.Start)
		}
		payouts = append(payouts, Payout{
			Outcome:     intervalOutcomeLabel(iv.Start),
			OfferPayout: iv.StartPayout,
		})
	}
	last := n.Intervals[len(n.Intervals)-1]
	payouts = append(payouts, Payout{
		Outcome:     intervalOutcomeLabel(last.End),
		OfferPayout: last.EndPayout,
	})
	return payouts, nil
}

func intervalOutcomeLabel(v int64) string {
	return strconv.FormatInt(v, 10)
}

// ContractInfo is one outcome tree within a (possibly disjunctive) offer:
// an oracle set, the threshold of oracles required to attest, and the
// payout curve those oracles' attestations resolve.
type ContractInfo struct {
	Oracles   []OracleAnnouncement
	Threshold uint16
	Outcomes  OutcomeTree
}

// GetPayouts expands this contract info's outcome tree.
func (ci *ContractInfo) GetPayouts(totalCollateral btcutil.Amount) ([]Payout, error) {
	return ci.Outcomes.Payouts(totalCollateral)
}

// OracleAnnouncement is consumed opaquely by the core; its only job here is
// to carry the public nonces the Adaptor Engine needs to compute each
// outcome's encryption point. Parsing the announcement itself is out of
// scope (spec.md S1.ii).
type OracleAnnouncement struct {
	PublicKey *btcec.PublicKey
	Nonces    []*btcec.PublicKey
}

// OracleAttestation is consumed opaquely by the core at closure time; the
// Adaptor Engine uses the revealed Signatures to recover the outcome secret
// that decrypts the matching adaptor signature. OracleIndex identifies
// which of the ContractInfo's announced oracles produced it. For an
// enumerated outcome a single scalar is revealed; for a numeric outcome
// one scalar per attested digit, most significant first.
type OracleAttestation struct {
	OracleIndex int
	Outcome     string
	Value       int64
	Signatures  [][32]byte
}

// ContractInputInfo is the caller-supplied description of one outcome tree
// before oracle announcements are attached; Offer binds each entry to its
// corresponding announcement set to build the OfferedContract's
// ContractInfo list.
type ContractInputInfo struct {
	Outcomes  OutcomeTree
	Threshold uint16
}

// ContractInput is the user-supplied set of parameters for a new contract,
// before either party's on-chain identity has been attached.
type ContractInput struct {
	OfferCollateral btcutil.Amount
	TotalCollateral btcutil.Amount
	FeeRatePerVb    btcutil.Amount
	ContractInfos   []ContractInputInfo
}

// AcceptCollateral returns the accept party's share of the total
// collateral.
func (ci *ContractInput) AcceptCollateral() btcutil.Amount {
	return ci.TotalCollateral - ci.OfferCollateral
}

// Validate checks the coherence invariants spec.md S4.4.1 requires before a
// contract can be offered: collateral consistency and a non-empty outcome
// tree list.
func (ci *ContractInput) Validate() error {
	if ci.OfferCollateral < 0 || ci.TotalCollateral < 0 {
		return NewError(ErrInvalidParameters, "collateral values must be non-negative")
	}
	if ci.OfferCollateral > ci.TotalCollateral {
		return NewError(ErrInvalidParameters,
			"offer collateral %d exceeds total collateral %d",
			ci.OfferCollateral, ci.TotalCollateral)
	}
	if len(ci.ContractInfos) == 0 {
		return NewError(ErrInvalidParameters, "contract input has no contract infos")
	}
	for i, info := range ci.ContractInfos {
		payouts, err := info.Outcomes.Payouts(ci.TotalCollateral)
		if err != nil {
			return err
		}
		if len(payouts) == 0 {
			return NewError(ErrInvalidParameters,
				"contract info %d has no payout leaves", i)
		}
		for _, p := range payouts {
			if p.OfferPayout < 0 || p.OfferPayout > ci.TotalCollateral {
				return NewError(ErrInvalidParameters,
					"payout %d out of range [0, %d]",
					p.OfferPayout, ci.TotalCollateral)
			}
		}
	}
	return nil
}

// AdaptorInfo is the cached outcome-tree structure produced alongside a
// ContractInfo's adaptor signatures, so a later verification pass (or
// closure lookup) doesn't need to rebuild it. It is a tagged variant: an
// enumerated tree carries no extra data (the payout leaf order already
// determines the CET/adaptor index), while numeric trees carry the
// digit-decomposition trie built while generating the signatures.
type AdaptorInfo interface {
	isAdaptorInfo()
}

// EnumAdaptorInfo is the AdaptorInfo for an EnumeratedOutcomes tree: one
// adaptor signature per payout leaf, in declaration order.
type EnumAdaptorInfo struct{}

func (EnumAdaptorInfo) isAdaptorInfo() {}

// NumericAdaptorInfo is the AdaptorInfo for a NumericOutcomes tree: a trie
// mapping (oracle indices, digit path) to the (cet index, adaptor index)
// pair that path's covering prefix was assigned.
type NumericAdaptorInfo struct {
	Trie *RangeTrie
}

func (*NumericAdaptorInfo) isAdaptorInfo() {}

// NumericWithDifferenceAdaptorInfo is the AdaptorInfo for a numeric tree
// whose oracles are allowed to disagree on their least-significant digits.
// MaxErrorExponent bounds how many trailing digits (in Base) may differ
// between participating oracles while still being considered a match.
type NumericWithDifferenceAdaptorInfo struct {
	Trie             *RangeTrie
	MaxErrorExponent int
}

func (*NumericWithDifferenceAdaptorInfo) isAdaptorInfo() {}

// RangeInfo records where a particular outcome-tree leaf landed once CETs
// were generated: which CET it corresponds to, and which adaptor signature
// (within this ContractInfo's slice) covers it.
type RangeInfo struct {
	CETIndex     int
	AdaptorIndex int
}

// RangeTrie is a digit-decomposition trie: each path from the root spells
// out a sequence of attested digits (most significant first), and a leaf
// records the RangeInfo for the CET that covering prefix was assigned.
type RangeTrie struct {
	root *rangeTrieNode
}

type rangeTrieNode struct {
	children map[int64]*rangeTrieNode
	leaf     *RangeInfo
}

// NewRangeTrie creates an empty trie.
func NewRangeTrie() *RangeTrie {
	return &RangeTrie{root: &rangeTrieNode{children: map[int64]*rangeTrieNode{}}}
}

// Insert records that the covering prefix `digits` maps to the given
// RangeInfo.
func (t *RangeTrie) Insert(digits []int64, info RangeInfo) {
	node := t.root
	for _, d := range digits {
		next, ok := node.children[d]
		if !ok {
			next = &rangeTrieNode{children: map[int64]*rangeTrieNode{}}
			node.children[d] = next
		}
		node = next
	}
	node.leaf = &info
}

// Lookup walks the trie along `digits`, returning the RangeInfo of the
// first leaf reached (the covering prefix that contains `digits` as a
// sub-path) along with the number of path elements consumed to reach it,
// or false if no prefix of `digits` was ever inserted.
func (t *RangeTrie) Lookup(digits []int64) (RangeInfo, int, bool) {
	node := t.root
	if node.leaf != nil {
		return *node.leaf, 0, true
	}
	for i, d := range digits {
		next, ok := node.children[d]
		if !ok {
			return RangeInfo{}, 0, false
		}
		node = next
		if node.leaf != nil {
			return *node.leaf, i + 1, true
		}
	}
	return RangeInfo{}, 0, false
}
