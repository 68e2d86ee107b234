package codec

import (
	"github.com/dagledger/fullnode/hashutil"
	"github.com/dagledger/fullnode/vertex"
)

// Decode parses a canonical byte form back into a Vertex. decode(encode(v))
// must equal v for every well-formed vertex (spec.md §8's round-trip law).
func Decode(b []byte) (*vertex.Vertex, error) {
	c := &cursor{buf: b}

	v := &vertex.Vertex{}

	if err := decodeFunds(c, v); err != nil {
		return nil, err
	}
	if err := decodeGraph(c, v); err != nil {
		return nil, err
	}
	if err := decodeNonce(c, v); err != nil {
		return nil, err
	}
	if c.remaining() != 0 {
		return nil, decodeError(ErrTrailingBytes, "bytes remain after decoding a complete vertex")
	}
	return v, nil
}

func decodeFunds(c *cursor, v *vertex.Vertex) error {
	versionRaw, err := c.readUint16()
	if err != nil {
		return err
	}
	v.Kind = vertex.Kind(versionRaw)

	tokensLen, err := c.readUint8()
	if err != nil {
		return err
	}
	tokens := make([]hashutil.Hash, tokensLen)
	for i := range tokens {
		h, err := c.readHash()
		if err != nil {
			return err
		}
		tokens[i] = h
	}
	v.Tokens = tokens

	inputsLen, err := c.readUint8()
	if err != nil {
		return err
	}
	inputs := make([]vertex.TxInput, inputsLen)
	for i := range inputs {
		txID, err := c.readHash()
		if err != nil {
			return err
		}
		idx, err := c.readUint8()
		if err != nil {
			return err
		}
		sigLen, err := c.readUint16()
		if err != nil {
			return err
		}
		sig, err := c.readBytes(int(sigLen))
		if err != nil {
			return err
		}
		inputs[i] = vertex.TxInput{
			TxID:        txID,
			OutputIndex: idx,
			ScriptSig:   append([]byte(nil), sig...),
		}
	}
	v.Inputs = inputs

	outputsLen, err := c.readUint8()
	if err != nil {
		return err
	}
	outputs := make([]vertex.TxOutput, outputsLen)
	for i := range outputs {
		value, err := c.readValue()
		if err != nil {
			return err
		}
		tokenData, err := c.readUint8()
		if err != nil {
			return err
		}
		scriptLen, err := c.readUint16()
		if err != nil {
			return err
		}
		script, err := c.readBytes(int(scriptLen))
		if err != nil {
			return err
		}
		outputs[i] = vertex.TxOutput{
			Value:     value,
			Script:    append([]byte(nil), script...),
			TokenData: tokenData,
		}
	}
	v.Outputs = outputs

	return nil
}

func decodeGraph(c *cursor, v *vertex.Vertex) error {
	weight, err := c.readFloat64()
	if err != nil {
		return err
	}
	v.Weight = weight

	ts, err := c.readUint64()
	if err != nil {
		return err
	}
	v.Timestamp = int64(ts)

	parentsLen, err := c.readUint8()
	if err != nil {
		return err
	}
	parents := make([]hashutil.Hash, parentsLen)
	for i := range parents {
		h, err := c.readHash()
		if err != nil {
			return err
		}
		parents[i] = h
	}
	v.Parents = parents

	if v.IsBlock() {
		dataLen, err := c.readUint8()
		if err != nil {
			return err
		}
		if int(dataLen) > MaxBlockDataSize {
			return decodeError(ErrOversizedField, "block data exceeds MaxBlockDataSize")
		}
		data, err := c.readBytes(int(dataLen))
		if err != nil {
			return err
		}
		v.Data = append([]byte(nil), data...)
	}

	return nil
}

func decodeNonce(c *cursor, v *vertex.Vertex) error {
	nonce, err := c.readBytes(NonceSize)
	if err != nil {
		return err
	}
	v.Nonce = append([]byte(nil), nonce...)
	return nil
}
