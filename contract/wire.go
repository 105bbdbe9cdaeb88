package contract

import (
	"bytes"
	"encoding/binary"
	"io"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/lightningnetwork/lnd/tlv"
)

// WitnessElement is one item of a funding input's witness stack.
type WitnessElement struct {
	Witness []byte
}

// FundingSignature is the witness stack produced for a single funding
// input.
type FundingSignature struct {
	WitnessElements []WitnessElement
}

// FundingSignatures carries the witnesses for every funding input a party
// contributed, in the same order its FundingInputInfo list was sent.
type FundingSignatures struct {
	FundingSignatures []FundingSignature
}

// CetAdaptorSignatures is the flat list of adaptor signatures in
// declaration order, matching dlc_messages::CetAdaptorSignatures's
// ecdsa_adaptor_signatures list.
type CetAdaptorSignatures struct {
	Signatures []AdaptorSignature
}

// OfferDlc is the first protocol message: the offer party's contract terms
// and on-chain identity, bit-exact with the wire fields spec.md S6
// describes.
type OfferDlc struct {
	ContractFlags      byte
	ContractInfo       []ContractInfo
	OfferParams        PartyParams
	FeeRatePerVb       uint64
	CetLocktime        uint32
	RefundLocktime     uint32
	FundOutputSerialID uint64
}

// AcceptDlc is the accepting party's response: their on-chain identity,
// their adaptor signatures over every CET, and their refund signature.
type AcceptDlc struct {
	TempContractID       ContractID
	AcceptCollateral     uint64
	FundingInputs        []FundingInputInfo
	ChangeSpk            []byte
	ChangeSerialID       uint64
	PayoutSpk            []byte
	PayoutSerialID       uint64
	FundingPubkeyBytes   [33]byte
	CetAdaptorSignatures CetAdaptorSignatures
	RefundSignature      RefundSignature
}

// SignDlc is the offering party's final message: their adaptor signatures,
// their refund signature, and their witnesses for every funding input they
// contributed.
type SignDlc struct {
	ContractID           ContractID
	CetAdaptorSignatures CetAdaptorSignatures
	RefundSignature      RefundSignature
	FundingSignatures    FundingSignatures
}

// TLV type assignments for the top-level fields of each wire message.
// Nested repeated structures (funding inputs, per-CET adaptor signatures,
// per-input witnesses) are flattened with the simple length-prefixed
// helpers below and carried as a single var-bytes record each, the same
// way lnwire messages pack repeated sub-records into one TLV blob rather
// than one record per element.
const (
	typeAcceptCollateral    tlv.Type = 0
	typeFundingInputs       tlv.Type = 1
	typeChangeSpk           tlv.Type = 2
	typeChangeSerialID      tlv.Type = 3
	typePayoutSpk           tlv.Type = 4
	typePayoutSerialID      tlv.Type = 5
	typeFundingPubkey       tlv.Type = 6
	typeAdaptorSignatures   tlv.Type = 7
	typeRefundSignature     tlv.Type = 8
	typeTempContractID      tlv.Type = 9
	typeContractID          tlv.Type = 10
	typeFundingSignatures   tlv.Type = 11
	typeContractFlags       tlv.Type = 12
	typeContractInfoList    tlv.Type = 13
	typeOfferParams         tlv.Type = 14
	typeFeeRatePerVb        tlv.Type = 15
	typeCetLocktime         tlv.Type = 16
	typeRefundLocktime      tlv.Type = 17
	typeFundOutputSerialID  tlv.Type = 18
)

func putVarBytes(buf *bytes.Buffer, b []byte) {
	binary.Write(buf, binary.BigEndian, uint32(len(b)))
	buf.Write(b)
}

func readVarBytes(r io.Reader) ([]byte, error) {
	var n uint32
	if err := binary.Read(r, binary.BigEndian, &n); err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, nil
	}
	b := make([]byte, n)
	if _, err := io.ReadFull(r, b); err != nil {
		return nil, err
	}
	return b, nil
}

func putPubKey(buf *bytes.Buffer, pk *btcec.PublicKey) {
	putVarBytes(buf, pk.SerializeCompressed())
}

func readPubKey(r io.Reader) (*btcec.PublicKey, error) {
	b, err := readVarBytes(r)
	if err != nil {
		return nil, err
	}
	return btcec.ParsePubKey(b)
}

func putPartyParams(buf *bytes.Buffer, p PartyParams) {
	putPubKey(buf, p.FundPubKey)
	putVarBytes(buf, p.ChangeScriptPubKey)
	binary.Write(buf, binary.BigEndian, p.ChangeSerialID)
	putVarBytes(buf, p.PayoutScriptPubKey)
	binary.Write(buf, binary.BigEndian, p.PayoutSerialID)
	buf.Write(encodeFundingInputs(p.FundingInputs))
	binary.Write(buf, binary.BigEndian, int64(p.InputAmount))
	binary.Write(buf, binary.BigEndian, int64(p.Collateral))
}

func readPartyParams(r io.Reader) (PartyParams, error) {
	var p PartyParams
	pk, err := readPubKey(r)
	if err != nil {
		return p, err
	}
	p.FundPubKey = pk
	if p.ChangeScriptPubKey, err = readVarBytes(r); err != nil {
		return p, err
	}
	if err = binary.Read(r, binary.BigEndian, &p.ChangeSerialID); err != nil {
		return p, err
	}
	if p.PayoutScriptPubKey, err = readVarBytes(r); err != nil {
		return p, err
	}
	if err = binary.Read(r, binary.BigEndian, &p.PayoutSerialID); err != nil {
		return p, err
	}
	// FundingInputs shares encodeFundingInputs's framing, which is
	// self-delimiting (its own leading count), so it can be read
	// directly from the same stream without an enclosing length prefix.
	inputs, err := decodeFundingInputsFromReader(r)
	if err != nil {
		return p, err
	}
	p.FundingInputs = inputs
	var inputAmt, collateral int64
	if err = binary.Read(r, binary.BigEndian, &inputAmt); err != nil {
		return p, err
	}
	if err = binary.Read(r, binary.BigEndian, &collateral); err != nil {
		return p, err
	}
	p.InputAmount = btcutil.Amount(inputAmt)
	p.Collateral = btcutil.Amount(collateral)
	return p, nil
}

func decodeFundingInputsFromReader(r io.Reader) ([]FundingInputInfo, error) {
	var n uint32
	if err := binary.Read(r, binary.BigEndian, &n); err != nil {
		return nil, err
	}
	out := make([]FundingInputInfo, n)
	for i := range out {
		prevTx, err := readVarBytes(r)
		if err != nil {
			return nil, err
		}
		out[i].PrevTx = prevTx
		if err := binary.Read(r, binary.BigEndian, &out[i].PrevTxVout); err != nil {
			return nil, err
		}
		if err := binary.Read(r, binary.BigEndian, &out[i].SerialID); err != nil {
			return nil, err
		}
		if err := binary.Read(r, binary.BigEndian, &out[i].Sequence); err != nil {
			return nil, err
		}
		if err := binary.Read(r, binary.BigEndian, &out[i].MaxWitnessLen); err != nil {
			return nil, err
		}
		redeem, err := readVarBytes(r)
		if err != nil {
			return nil, err
		}
		out[i].RedeemScript = redeem
	}
	return out, nil
}

const (
	outcomeTreeEnumerated byte = iota
	outcomeTreeNumeric
)

func putOutcomeTree(buf *bytes.Buffer, tree OutcomeTree) error {
	switch t := tree.(type) {
	case *EnumeratedOutcomes:
		buf.WriteByte(outcomeTreeEnumerated)
		binary.Write(buf, binary.BigEndian, uint32(len(t.Outcomes)))
		for _, p := range t.Outcomes {
			putVarBytes(buf, []byte(p.Outcome))
			binary.Write(buf, binary.BigEndian, int64(p.OfferPayout))
		}
	case *NumericOutcomes:
		buf.WriteByte(outcomeTreeNumeric)
		binary.Write(buf, binary.BigEndian, uint32(t.Base))
		binary.Write(buf, binary.BigEndian, uint32(t.NumDigits))
		binary.Write(buf, binary.BigEndian, uint32(len(t.Intervals)))
		for _, iv := range t.Intervals {
			binary.Write(buf, binary.BigEndian, iv.Start)
			binary.Write(buf, binary.BigEndian, iv.End)
			binary.Write(buf, binary.BigEndian, int64(iv.StartPayout))
			binary.Write(buf, binary.BigEndian, int64(iv.EndPayout))
		}
	default:
		return NewError(ErrInvalidParameters, "unknown outcome tree type %T", tree)
	}
	return nil
}

func readOutcomeTree(r io.Reader) (OutcomeTree, error) {
	var tag byte
	if err := binary.Read(r, binary.BigEndian, &tag); err != nil {
		return nil, err
	}
	switch tag {
	case outcomeTreeEnumerated:
		var n uint32
		if err := binary.Read(r, binary.BigEndian, &n); err != nil {
			return nil, err
		}
		outcomes := make([]Payout, n)
		for i := range outcomes {
			label, err := readVarBytes(r)
			if err != nil {
				return nil, err
			}
			var payout int64
			if err := binary.Read(r, binary.BigEndian, &payout); err != nil {
				return nil, err
			}
			outcomes[i] = Payout{Outcome: string(label), OfferPayout: btcutil.Amount(payout)}
		}
		return &EnumeratedOutcomes{Outcomes: outcomes}, nil
	case outcomeTreeNumeric:
		var base, numDigits, n uint32
		if err := binary.Read(r, binary.BigEndian, &base); err != nil {
			return nil, err
		}
		if err := binary.Read(r, binary.BigEndian, &numDigits); err != nil {
			return nil, err
		}
		if err := binary.Read(r, binary.BigEndian, &n); err != nil {
			return nil, err
		}
		intervals := make([]NumericInterval, n)
		for i := range intervals {
			if err := binary.Read(r, binary.BigEndian, &intervals[i].Start); err != nil {
				return nil, err
			}
			if err := binary.Read(r, binary.BigEndian, &intervals[i].End); err != nil {
				return nil, err
			}
			var start, end int64
			if err := binary.Read(r, binary.BigEndian, &start); err != nil {
				return nil, err
			}
			if err := binary.Read(r, binary.BigEndian, &end); err != nil {
				return nil, err
			}
			intervals[i].StartPayout = btcutil.Amount(start)
			intervals[i].EndPayout = btcutil.Amount(end)
		}
		return &NumericOutcomes{Base: int(base), NumDigits: int(numDigits), Intervals: intervals}, nil
	default:
		return nil, NewError(ErrInvalidParameters, "unknown outcome tree tag %d", tag)
	}
}

func putContractInfos(buf *bytes.Buffer, infos []ContractInfo) error {
	binary.Write(buf, binary.BigEndian, uint32(len(infos)))
	for _, ci := range infos {
		binary.Write(buf, binary.BigEndian, uint32(len(ci.Oracles)))
		for _, o := range ci.Oracles {
			putPubKey(buf, o.PublicKey)
			binary.Write(buf, binary.BigEndian, uint32(len(o.Nonces)))
			for _, nonce := range o.Nonces {
				putPubKey(buf, nonce)
			}
		}
		binary.Write(buf, binary.BigEndian, ci.Threshold)
		if err := putOutcomeTree(buf, ci.Outcomes); err != nil {
			return err
		}
	}
	return nil
}

func readContractInfos(r io.Reader) ([]ContractInfo, error) {
	var n uint32
	if err := binary.Read(r, binary.BigEndian, &n); err != nil {
		return nil, err
	}
	infos := make([]ContractInfo, n)
	for i := range infos {
		var numOracles uint32
		if err := binary.Read(r, binary.BigEndian, &numOracles); err != nil {
			return nil, err
		}
		oracles := make([]OracleAnnouncement, numOracles)
		for j := range oracles {
			pk, err := readPubKey(r)
			if err != nil {
				return nil, err
			}
			var numNonces uint32
			if err := binary.Read(r, binary.BigEndian, &numNonces); err != nil {
				return nil, err
			}
			nonces := make([]*btcec.PublicKey, numNonces)
			for k := range nonces {
				nonce, err := readPubKey(r)
				if err != nil {
					return nil, err
				}
				nonces[k] = nonce
			}
			oracles[j] = OracleAnnouncement{PublicKey: pk, Nonces: nonces}
		}
		infos[i].Oracles = oracles
		if err := binary.Read(r, binary.BigEndian, &infos[i].Threshold); err != nil {
			return nil, err
		}
		tree, err := readOutcomeTree(r)
		if err != nil {
			return nil, err
		}
		infos[i].Outcomes = tree
	}
	return infos, nil
}

// Encode serializes an OfferDlc as a canonical TLV stream.
func (o *OfferDlc) Encode(w io.Writer) error {
	var contractInfoBuf, partyParamsBuf bytes.Buffer
	if err := putContractInfos(&contractInfoBuf, o.ContractInfo); err != nil {
		return err
	}
	putPartyParams(&partyParamsBuf, o.OfferParams)

	contractFlags := []byte{o.ContractFlags}
	contractInfoBytes := contractInfoBuf.Bytes()
	offerParamsBytes := partyParamsBuf.Bytes()

	records := []tlv.Record{
		tlv.MakePrimitiveRecord(typeContractFlags, &contractFlags),
		tlv.MakePrimitiveRecord(typeContractInfoList, &contractInfoBytes),
		tlv.MakePrimitiveRecord(typeOfferParams, &offerParamsBytes),
		tlv.MakePrimitiveRecord(typeFeeRatePerVb, &o.FeeRatePerVb),
		tlv.MakePrimitiveRecord(typeCetLocktime, &o.CetLocktime),
		tlv.MakePrimitiveRecord(typeRefundLocktime, &o.RefundLocktime),
		tlv.MakePrimitiveRecord(typeFundOutputSerialID, &o.FundOutputSerialID),
	}
	stream, err := tlv.NewStream(records...)
	if err != nil {
		return err
	}
	return stream.Encode(w)
}

// Decode parses an OfferDlc previously produced by Encode.
func (o *OfferDlc) Decode(r io.Reader) error {
	var contractFlags, contractInfoBytes, offerParamsBytes []byte

	records := []tlv.Record{
		tlv.MakePrimitiveRecord(typeContractFlags, &contractFlags),
		tlv.MakePrimitiveRecord(typeContractInfoList, &contractInfoBytes),
		tlv.MakePrimitiveRecord(typeOfferParams, &offerParamsBytes),
		tlv.MakePrimitiveRecord(typeFeeRatePerVb, &o.FeeRatePerVb),
		tlv.MakePrimitiveRecord(typeCetLocktime, &o.CetLocktime),
		tlv.MakePrimitiveRecord(typeRefundLocktime, &o.RefundLocktime),
		tlv.MakePrimitiveRecord(typeFundOutputSerialID, &o.FundOutputSerialID),
	}
	stream, err := tlv.NewStream(records...)
	if err != nil {
		return err
	}
	if err := stream.Decode(r); err != nil {
		return err
	}

	if len(contractFlags) == 1 {
		o.ContractFlags = contractFlags[0]
	}
	if o.ContractInfo, err = readContractInfos(bytes.NewReader(contractInfoBytes)); err != nil {
		return err
	}
	if o.OfferParams, err = readPartyParams(bytes.NewReader(offerParamsBytes)); err != nil {
		return err
	}
	return nil
}

// encodeFundingInputs flattens a FundingInputInfo slice into one
// self-delimiting byte blob.
func encodeFundingInputs(inputs []FundingInputInfo) []byte {
	var buf bytes.Buffer
	binary.Write(&buf, binary.BigEndian, uint32(len(inputs)))
	for _, in := range inputs {
		putVarBytes(&buf, in.PrevTx)
		binary.Write(&buf, binary.BigEndian, in.PrevTxVout)
		binary.Write(&buf, binary.BigEndian, in.SerialID)
		binary.Write(&buf, binary.BigEndian, in.Sequence)
		binary.Write(&buf, binary.BigEndian, in.MaxWitnessLen)
		putVarBytes(&buf, in.RedeemScript)
	}
	return buf.Bytes()
}

func decodeFundingInputs(b []byte) ([]FundingInputInfo, error) {
	r := bytes.NewReader(b)
	var n uint32
	if err := binary.Read(r, binary.BigEndian, &n); err != nil {
		return nil, err
	}
	out := make([]FundingInputInfo, n)
	for i := range out {
		prevTx, err := readVarBytes(r)
		if err != nil {
			return nil, err
		}
		out[i].PrevTx = prevTx
		if err := binary.Read(r, binary.BigEndian, &out[i].PrevTxVout); err != nil {
			return nil, err
		}
		if err := binary.Read(r, binary.BigEndian, &out[i].SerialID); err != nil {
			return nil, err
		}
		if err := binary.Read(r, binary.BigEndian, &out[i].Sequence); err != nil {
			return nil, err
		}
		if err := binary.Read(r, binary.BigEndian, &out[i].MaxWitnessLen); err != nil {
			return nil, err
		}
		redeem, err := readVarBytes(r)
		if err != nil {
			return nil, err
		}
		out[i].RedeemScript = redeem
	}
	return out, nil
}

func encodeAdaptorSigs(sigs []AdaptorSignature) []byte {
	var buf bytes.Buffer
	binary.Write(&buf, binary.BigEndian, uint32(len(sigs)))
	for _, s := range sigs {
		buf.Write(s[:])
	}
	return buf.Bytes()
}

func decodeAdaptorSigs(b []byte) ([]AdaptorSignature, error) {
	r := bytes.NewReader(b)
	var n uint32
	if err := binary.Read(r, binary.BigEndian, &n); err != nil {
		return nil, err
	}
	out := make([]AdaptorSignature, n)
	for i := range out {
		if _, err := io.ReadFull(r, out[i][:]); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func encodeFundingSignatures(fs FundingSignatures) []byte {
	var buf bytes.Buffer
	binary.Write(&buf, binary.BigEndian, uint32(len(fs.FundingSignatures)))
	for _, sig := range fs.FundingSignatures {
		binary.Write(&buf, binary.BigEndian, uint32(len(sig.WitnessElements)))
		for _, we := range sig.WitnessElements {
			putVarBytes(&buf, we.Witness)
		}
	}
	return buf.Bytes()
}

func decodeFundingSignatures(b []byte) (FundingSignatures, error) {
	r := bytes.NewReader(b)
	var n uint32
	if err := binary.Read(r, binary.BigEndian, &n); err != nil {
		return FundingSignatures{}, err
	}
	out := FundingSignatures{FundingSignatures: make([]FundingSignature, n)}
	for i := range out.FundingSignatures {
		var m uint32
		if err := binary.Read(r, binary.BigEndian, &m); err != nil {
			return FundingSignatures{}, err
		}
		elems := make([]WitnessElement, m)
		for j := range elems {
			w, err := readVarBytes(r)
			if err != nil {
				return FundingSignatures{}, err
			}
			elems[j] = WitnessElement{Witness: w}
		}
		out.FundingSignatures[i] = FundingSignature{WitnessElements: elems}
	}
	return out, nil
}

// Encode serializes an AcceptDlc as a canonical TLV stream, the way lnwire
// messages serialize themselves, using lnd's own wire-codec dependency
// instead of a hand-rolled framing format.
func (a *AcceptDlc) Encode(w io.Writer) error {
	fundingInputsBytes := encodeFundingInputs(a.FundingInputs)
	adaptorSigsBytes := encodeAdaptorSigs(a.CetAdaptorSignatures.Signatures)
	fundingPubkey := a.FundingPubkeyBytes[:]
	tempID := a.TempContractID[:]
	refundSig := []byte(a.RefundSignature)

	records := []tlv.Record{
		tlv.MakePrimitiveRecord(typeAcceptCollateral, &a.AcceptCollateral),
		tlv.MakePrimitiveRecord(typeFundingInputs, &fundingInputsBytes),
		tlv.MakePrimitiveRecord(typeChangeSpk, &a.ChangeSpk),
		tlv.MakePrimitiveRecord(typeChangeSerialID, &a.ChangeSerialID),
		tlv.MakePrimitiveRecord(typePayoutSpk, &a.PayoutSpk),
		tlv.MakePrimitiveRecord(typePayoutSerialID, &a.PayoutSerialID),
		tlv.MakePrimitiveRecord(typeFundingPubkey, &fundingPubkey),
		tlv.MakePrimitiveRecord(typeAdaptorSignatures, &adaptorSigsBytes),
		tlv.MakePrimitiveRecord(typeRefundSignature, &refundSig),
		tlv.MakePrimitiveRecord(typeTempContractID, &tempID),
	}

	stream, err := tlv.NewStream(records...)
	if err != nil {
		return err
	}
	return stream.Encode(w)
}

// Decode parses an AcceptDlc previously produced by Encode.
func (a *AcceptDlc) Decode(r io.Reader) error {
	var (
		tempID, fundingPubkey                []byte
		fundingInputsBytes, adaptorSigsBytes []byte
		refundSig                            []byte
	)

	records := []tlv.Record{
		tlv.MakePrimitiveRecord(typeAcceptCollateral, &a.AcceptCollateral),
		tlv.MakePrimitiveRecord(typeFundingInputs, &fundingInputsBytes),
		tlv.MakePrimitiveRecord(typeChangeSpk, &a.ChangeSpk),
		tlv.MakePrimitiveRecord(typeChangeSerialID, &a.ChangeSerialID),
		tlv.MakePrimitiveRecord(typePayoutSpk, &a.PayoutSpk),
		tlv.MakePrimitiveRecord(typePayoutSerialID, &a.PayoutSerialID),
		tlv.MakePrimitiveRecord(typeFundingPubkey, &fundingPubkey),
		tlv.MakePrimitiveRecord(typeAdaptorSignatures, &adaptorSigsBytes),
		tlv.MakePrimitiveRecord(typeRefundSignature, &refundSig),
		tlv.MakePrimitiveRecord(typeTempContractID, &tempID),
	}

	stream, err := tlv.NewStream(records...)
	if err != nil {
		return err
	}
	if err := stream.Decode(r); err != nil {
		return err
	}

	copy(a.TempContractID[:], tempID)
	copy(a.FundingPubkeyBytes[:], fundingPubkey)
	a.RefundSignature = RefundSignature(refundSig)

	if a.FundingInputs, err = decodeFundingInputs(fundingInputsBytes); err != nil {
		return err
	}
	if a.CetAdaptorSignatures.Signatures, err = decodeAdaptorSigs(adaptorSigsBytes); err != nil {
		return err
	}
	return nil
}

// Encode serializes a SignDlc as a canonical TLV stream.
func (s *SignDlc) Encode(w io.Writer) error {
	contractID := s.ContractID[:]
	adaptorSigsBytes := encodeAdaptorSigs(s.CetAdaptorSignatures.Signatures)
	refundSig := []byte(s.RefundSignature)
	fundingSigsBytes := encodeFundingSignatures(s.FundingSignatures)

	records := []tlv.Record{
		tlv.MakePrimitiveRecord(typeAdaptorSignatures, &adaptorSigsBytes),
		tlv.MakePrimitiveRecord(typeRefundSignature, &refundSig),
		tlv.MakePrimitiveRecord(typeContractID, &contractID),
		tlv.MakePrimitiveRecord(typeFundingSignatures, &fundingSigsBytes),
	}
	stream, err := tlv.NewStream(records...)
	if err != nil {
		return err
	}
	return stream.Encode(w)
}

// Decode parses a SignDlc previously produced by Encode.
func (s *SignDlc) Decode(r io.Reader) error {
	var (
		contractID, adaptorSigsBytes []byte
		refundSig                    []byte
		fundingSigsBytes             []byte
	)

	records := []tlv.Record{
		tlv.MakePrimitiveRecord(typeAdaptorSignatures, &adaptorSigsBytes),
		tlv.MakePrimitiveRecord(typeRefundSignature, &refundSig),
		tlv.MakePrimitiveRecord(typeContractID, &contractID),
		tlv.MakePrimitiveRecord(typeFundingSignatures, &fundingSigsBytes),
	}
	stream, err := tlv.NewStream(records...)
	if err != nil {
		return err
	}
	if err := stream.Decode(r); err != nil {
		return err
	}

	copy(s.ContractID[:], contractID)
	s.RefundSignature = RefundSignature(refundSig)

	if s.CetAdaptorSignatures.Signatures, err = decodeAdaptorSigs(adaptorSigsBytes); err != nil {
		return err
	}
	if s.FundingSignatures, err = decodeFundingSignatures(fundingSigsBytes); err != nil {
		return err
	}
	return nil
}

// Bytes is a small helper used by tests to round-trip a message through
// Encode/Decode and assert equality.
func Bytes(enc func(io.Writer) error) ([]byte, error) {
	var buf bytes.Buffer
	if err := enc(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
