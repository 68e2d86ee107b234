package txscript

// Opcode values. Push opcodes and the common Bitcoin-derived operators keep
// their familiar byte values; the oracle-data and timestamp extensions that
// have no Bitcoin counterpart are assigned values above the standard opcode
// range so a disassembler can still tell them apart at a glance.
const (
	OpData1   = 0x01 // 0x01-0x4b: implicit push of the following N bytes
	OpData75  = 0x4b
	OpPushData1 = 0x4c // next byte is the length of data to push
	Op0         = 0x00
	Op1         = 0x51
	Op16        = 0x60

	OpDup         = 0x76
	OpEqual       = 0x87
	OpEqualVerify = 0x88

	OpHash160       = 0xa9
	OpCheckSig      = 0xac
	OpCheckMultiSig = 0xae

	OpCheckDataSig        = 0xd0
	OpGreaterThanTimestamp = 0xd1
	OpDataStrEqual         = 0xd2
	OpDataGreaterThan      = 0xd3
	OpDataMatchValue       = 0xd4
	OpDataMatchInterval    = 0xd5
	OpFindP2PKH            = 0xd6
)

// MaxScriptElementSize bounds a single pushed data element, mirroring the
// Bitcoin-derived convention the teacher's engine enforced.
const MaxScriptElementSize = 520

// ScriptBuilder assembles a script byte string, choosing the minimal push
// encoding for each data element.
type ScriptBuilder struct {
	buf []byte
}

func NewScriptBuilder() *ScriptBuilder {
	return &ScriptBuilder{}
}

// AddData appends data using an implicit-length push (<=75 bytes) or
// OP_PUSHDATA1 (76-255 bytes).
func (b *ScriptBuilder) AddData(data []byte) *ScriptBuilder {
	n := len(data)
	switch {
	case n <= OpData75:
		b.buf = append(b.buf, byte(n))
	case n <= 0xff:
		b.buf = append(b.buf, OpPushData1, byte(n))
	default:
		// Any real script here would chunk or use PUSHDATA2; this engine's
		// fields (scripts, oracle blobs) never approach that size.
		b.buf = append(b.buf, OpPushData1, 0xff)
		data = data[:0xff]
	}
	b.buf = append(b.buf, data...)
	return b
}

// AddOp appends a single opcode byte.
func (b *ScriptBuilder) AddOp(op byte) *ScriptBuilder {
	b.buf = append(b.buf, op)
	return b
}

// AddInt32 pushes v as a big-endian uint32, the encoding the oracle
// comparison opcodes expect.
func (b *ScriptBuilder) AddInt32(v uint32) *ScriptBuilder {
	return b.AddData(PackUint32(v))
}

func (b *ScriptBuilder) Script() []byte {
	return b.buf
}

// P2PKHScript returns the standard pay-to-pubkey-hash output script:
// OP_DUP OP_HASH160 <hash160> OP_EQUALVERIFY OP_CHECKSIG.
func P2PKHScript(hash160 []byte) []byte {
	return NewScriptBuilder().
		AddOp(OpDup).
		AddOp(OpHash160).
		AddData(hash160).
		AddOp(OpEqualVerify).
		AddOp(OpCheckSig).
		Script()
}

// P2PKHSigScript returns the standard pay-to-pubkey-hash input script:
// <signature> <pubkey>.
func P2PKHSigScript(signature, pubkey []byte) []byte {
	return NewScriptBuilder().AddData(signature).AddData(pubkey).Script()
}
