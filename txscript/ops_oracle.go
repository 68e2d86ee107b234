package txscript

import "encoding/binary"

// getDataValue parses blob as a sequence of length-prefixed fields (one
// byte of length followed by that many bytes of value) and returns the i-th
// field, per spec.md §4.2's get_data_value. It is exported for use by the
// validator when decoding an output's stored oracle data outside of script
// execution (e.g. for JSON display).
func getDataValue(i int, blob []byte) ([]byte, error) {
	pos := 0
	for idx := 0; ; idx++ {
		if pos >= len(blob) {
			return nil, scriptError(ErrDataIndexError, "oracle data index out of range")
		}
		length := int(blob[pos])
		pos++
		if pos+length > len(blob) {
			return nil, scriptError(ErrOutOfData, "oracle data field truncated")
		}
		value := blob[pos : pos+length]
		pos += length
		if idx == i {
			return value, nil
		}
	}
}

func opDataIndex(s *stack) (int, []byte, error) {
	items, err := s.popN(2)
	if err != nil {
		return 0, nil, err
	}
	blob, idxBytes := items[0], items[1]
	if len(idxBytes) != 1 {
		return 0, nil, scriptError(ErrInvalidStackData, "oracle field index must be a single byte")
	}
	return int(idxBytes[0]), blob, nil
}

// opDataStrEqual compares the i-th oracle data field against a literal
// value, leaving the original blob on the stack when it matches.
func opDataStrEqual(s *stack, extras *ScriptExtras) error {
	value, err := s.pop()
	if err != nil {
		return err
	}
	idx, blob, err := opDataIndex(s)
	if err != nil {
		return err
	}
	field, err := getDataValue(idx, blob)
	if err != nil {
		return err
	}
	if string(field) != string(value) {
		return scriptError(ErrVerifyFailed, "oracle data field does not equal expected value")
	}
	s.push(blob)
	return nil
}

// opDataGreaterThan compares the i-th oracle data field, parsed as a
// big-endian uint32, against a threshold, leaving the blob on success.
func opDataGreaterThan(s *stack, extras *ScriptExtras) error {
	thresholdBytes, err := s.pop()
	if err != nil {
		return err
	}
	idx, blob, err := opDataIndex(s)
	if err != nil {
		return err
	}
	field, err := getDataValue(idx, blob)
	if err != nil {
		return err
	}
	fieldValue, err := parseUint32(field)
	if err != nil {
		return err
	}
	threshold, err := parseUint32(thresholdBytes)
	if err != nil {
		return err
	}
	if !(fieldValue > threshold) {
		return scriptError(ErrVerifyFailed, "oracle data field not greater than threshold")
	}
	s.push(blob)
	return nil
}

// popKeyValuePairs pops a count byte N, a trailing default key, and N
// (key, value) pairs, reconstructing them in declaration order. The stack
// holds, bottom to top: key1, value1, key2, value2, ..., keyN, valueN,
// defaultKey, N — so they pop in the reverse of that order.
func popKeyValuePairs(s *stack) (keys [][]byte, values []uint32, defaultKey []byte, err error) {
	countBytes, err := s.pop()
	if err != nil {
		return nil, nil, nil, err
	}
	if len(countBytes) != 1 {
		return nil, nil, nil, scriptError(ErrInvalidStackData, "key count must be a single byte")
	}
	count := int(countBytes[0])

	defaultKey, err = s.pop()
	if err != nil {
		return nil, nil, nil, err
	}

	keys = make([][]byte, count)
	values = make([]uint32, count)
	for i := count - 1; i >= 0; i-- {
		valueBytes, err := s.pop()
		if err != nil {
			return nil, nil, nil, err
		}
		v, err := parseUint32(valueBytes)
		if err != nil {
			return nil, nil, nil, err
		}
		key, err := s.pop()
		if err != nil {
			return nil, nil, nil, err
		}
		keys[i] = key
		values[i] = v
	}
	return keys, values, defaultKey, nil
}

// opDataMatchValue selects the key whose paired value equals the i-th
// oracle data field exactly; if none match, the default key is pushed.
func opDataMatchValue(s *stack, extras *ScriptExtras) error {
	keys, values, defaultKey, err := popKeyValuePairs(s)
	if err != nil {
		return err
	}
	idx, blob, err := opDataIndex(s)
	if err != nil {
		return err
	}
	field, err := getDataValue(idx, blob)
	if err != nil {
		return err
	}
	fieldValue, err := parseUint32(field)
	if err != nil {
		return err
	}

	for i, v := range values {
		if fieldValue == v {
			s.push(keys[i])
			return nil
		}
	}
	s.push(defaultKey)
	return nil
}

// opDataMatchInterval selects the first key (in declaration order) whose
// paired threshold the field value meets (value <= threshold); if no
// threshold is met, the default key is pushed.
func opDataMatchInterval(s *stack, extras *ScriptExtras) error {
	keys, values, defaultKey, err := popKeyValuePairs(s)
	if err != nil {
		return err
	}
	idx, blob, err := opDataIndex(s)
	if err != nil {
		return err
	}
	field, err := getDataValue(idx, blob)
	if err != nil {
		return err
	}
	fieldValue, err := parseUint32(field)
	if err != nil {
		return err
	}

	for i, threshold := range values {
		if fieldValue <= threshold {
			s.push(keys[i])
			return nil
		}
	}
	s.push(defaultKey)
	return nil
}

func parseUint32(b []byte) (uint32, error) {
	if len(b) != 4 {
		return 0, scriptError(ErrVerifyFailed, "expected a 4-byte big-endian integer")
	}
	return binary.BigEndian.Uint32(b), nil
}
