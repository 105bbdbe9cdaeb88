package txbuilder

// Byte-size constants used to estimate the weight of transactions before
// they are signed, the way lnwallet/size.go documents commitment and
// funding transaction sizes.
const (
	// P2WSHOutputSize is the size of a P2WSH output: 8 byte value, 1 byte
	// varint length, 34 byte P2WSH pkscript.
	P2WSHOutputSize = 8 + 1 + 34

	// MultiSigWitnessScriptSize is the size of the 2-of-2 multisig
	// witness script: OP_2, two compressed pubkeys (each length-prefixed),
	// OP_2, OP_CHECKMULTISIG.
	MultiSigWitnessScriptSize = 1 + 1 + 33 + 1 + 33 + 1 + 1

	// FundingInputBaseSize is the non-witness size of a single funding
	// input: 32 byte prevout hash, 4 byte prevout index, 1 byte empty
	// scriptSig length, 4 byte sequence.
	FundingInputBaseSize = 32 + 4 + 1 + 4

	// FundingInputWitnessSize is the witness size of a 2-of-2 multisig
	// input: element count, a leading nil push, two DER signatures (up to
	// 73 bytes each), and the redeem script.
	FundingInputWitnessSize = 1 + 1 + 1 + 73 + 1 + 73 + 1 + MultiSigWitnessScriptSize

	// TxOverheadSize accounts for version, segwit marker/flag, and
	// locktime.
	TxOverheadSize = 4 + 1 + 1 + 4
)
