package contract

import (
	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcutil"
)

// ContractID uniquely identifies a contract once it has progressed far
// enough to need one (the temporary id assigned at offer time becomes the
// permanent contract id once the fund transaction's outpoint is known).
type ContractID [32]byte

// ChannelID optionally threads a DLC through an existing payment channel;
// the core never inspects it beyond passing it through.
type ChannelID [32]byte

// OfferedContract is the snapshot produced by Offer and consumed by either
// Accept (on the counterparty's side) or VerifyAcceptAndSign (on the
// offering side). It is immutable from the moment it is returned.
type OfferedContract struct {
	ID ContractID

	// IsOfferParty is true on the snapshot held by the party that called
	// Offer; false on the snapshot reconstructed by the accepting party.
	IsOfferParty bool

	OfferParams  PartyParams
	ContractInfo []ContractInfo

	TotalCollateral btcutil.Amount
	FeeRatePerVb    btcutil.Amount

	FundOutputSerialID uint64
	CetLocktime        uint32
	RefundLocktime     uint32

	FundingInputsInfo []FundingInputInfo

	CounterPartyPubKey *btcec.PublicKey

	OfferUnixTime uint32
}

// AcceptedContract is the snapshot produced by Accept (on the accepting
// party's side, with its own adaptor signatures immediately discarded) or
// by VerifyAcceptAndSign (on the offering party's side, where the
// counterparty's adaptor signatures are retained for later closure).
type AcceptedContract struct {
	Offered OfferedContract

	AcceptParams        PartyParams
	AcceptFundingInputs []FundingInputInfo

	AdaptorInfos []AdaptorInfo

	// AdaptorSignatures holds the counterparty's adaptor signatures once
	// verified (set by VerifyAcceptAndSign); nil on the accepting
	// party's own snapshot, where they are recomputable on demand and so
	// are dropped rather than retained (spec.md S3 invariant 6).
	AdaptorSignatures []AdaptorSignature

	DlcTransactions DlcTransactions

	AcceptRefundSignature RefundSignature
}

// SignedContract is the terminal snapshot produced by VerifyAcceptAndSign
// (offering party) or VerifySign (accepting party). It is ready for
// closure via CloseCET or CloseRefund.
type SignedContract struct {
	Accepted AcceptedContract

	// AdaptorSignatures holds the offering party's adaptor signatures:
	// its own freshly generated ones on the offering side (produced by
	// VerifyAcceptAndSign), the verified ones received in SignDlc on the
	// accepting side (recorded by VerifySign). Together with the accept
	// side's signatures on the AcceptedContract, each party can select
	// the counterparty's signature at closure time.
	AdaptorSignatures []AdaptorSignature

	OfferRefundSignature RefundSignature

	FundingSignatures FundingSignatures

	ChannelID *ChannelID
}
