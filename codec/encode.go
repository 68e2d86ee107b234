package codec

import (
	"encoding/binary"
	"math"

	"github.com/dagledger/fullnode/vertex"
)

// Limits mirror the configured maxima from spec.md §6; callers needing the
// configured (rather than wire-format) limits should validate separately in
// the validator package. These are the hard ceilings the wire format's
// length-prefix byte widths can represent.
const (
	maxTokens  = 1<<8 - 1
	maxInputs  = 1<<8 - 1
	maxOutputs = 1<<8 - 1
	maxParents = 1<<8 - 1
)

// Encode serializes v into its canonical byte form: funds_struct ‖
// graph_struct ‖ nonce, exactly as spec.md §4.1/§6 describe.
func Encode(v *vertex.Vertex) ([]byte, error) {
	buf := make([]byte, 0, 256)

	buf, err := encodeFunds(buf, v)
	if err != nil {
		return nil, err
	}
	buf, err = encodeGraph(buf, v)
	if err != nil {
		return nil, err
	}
	buf = encodeNonce(buf, v)
	return buf, nil
}

func encodeFunds(buf []byte, v *vertex.Vertex) ([]byte, error) {
	if len(v.Tokens) > maxTokens {
		return nil, decodeError(ErrTooManyTokens, "too many tokens to encode")
	}
	if len(v.Inputs) > maxInputs {
		return nil, decodeError(ErrTooManyInputs, "too many inputs to encode")
	}
	if len(v.Outputs) > maxOutputs {
		return nil, decodeError(ErrTooManyOutputs, "too many outputs to encode")
	}

	var versionBuf [2]byte
	binary.BigEndian.PutUint16(versionBuf[:], uint16(v.Kind))
	buf = append(buf, versionBuf[:]...)

	buf = append(buf, uint8(len(v.Tokens)))
	for _, token := range v.Tokens {
		buf = append(buf, token[:]...)
	}

	buf = append(buf, uint8(len(v.Inputs)))
	for _, in := range v.Inputs {
		buf = append(buf, in.TxID[:]...)
		buf = append(buf, in.OutputIndex)
		var lenBuf [2]byte
		binary.BigEndian.PutUint16(lenBuf[:], uint16(len(in.ScriptSig)))
		buf = append(buf, lenBuf[:]...)
		buf = append(buf, in.ScriptSig...)
	}

	buf = append(buf, uint8(len(v.Outputs)))
	for _, out := range v.Outputs {
		buf = writeValue(buf, out.Value)
		buf = append(buf, out.TokenData)
		var lenBuf [2]byte
		binary.BigEndian.PutUint16(lenBuf[:], uint16(len(out.Script)))
		buf = append(buf, lenBuf[:]...)
		buf = append(buf, out.Script...)
	}

	return buf, nil
}

func encodeGraph(buf []byte, v *vertex.Vertex) ([]byte, error) {
	if len(v.Parents) > maxParents {
		return nil, decodeError(ErrTooManyParents, "too many parents to encode")
	}
	if v.IsBlock() && len(v.Data) > MaxBlockDataSize {
		return nil, decodeError(ErrOversizedField, "block data exceeds MaxBlockDataSize")
	}

	var weightBuf [8]byte
	binary.BigEndian.PutUint64(weightBuf[:], math.Float64bits(v.Weight))
	buf = append(buf, weightBuf[:]...)

	var tsBuf [8]byte
	binary.BigEndian.PutUint64(tsBuf[:], uint64(v.Timestamp))
	buf = append(buf, tsBuf[:]...)

	buf = append(buf, uint8(len(v.Parents)))
	for _, p := range v.Parents {
		buf = append(buf, p[:]...)
	}

	// Block data is appended to graph_struct: spec.md §3 defines the field
	// but §6's wire layout is silent on its placement; placing it here
	// (length-prefixed, single byte suffices since it is capped at 100)
	// keeps funds_struct identical for blocks and transactions.
	if v.IsBlock() {
		buf = append(buf, uint8(len(v.Data)))
		buf = append(buf, v.Data...)
	}

	return buf, nil
}

func encodeNonce(buf []byte, v *vertex.Vertex) []byte {
	nonce := make([]byte, NonceSize)
	copy(nonce, v.Nonce)
	return append(buf, nonce...)
}
