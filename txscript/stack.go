package txscript

import "encoding/binary"

// stack is the data stack a script executes against: a slice of byte
// strings. Integers used by comparison opcodes are big-endian uint32s, per
// the wire encoding the oracle opcodes share with struct.pack('!I', ...).
type stack [][]byte

func (s *stack) push(item []byte) {
	*s = append(*s, item)
}

func (s *stack) pushBool(v bool) {
	if v {
		s.push([]byte{1})
	} else {
		s.push([]byte{0})
	}
}

func (s *stack) pop() ([]byte, error) {
	if len(*s) == 0 {
		return nil, scriptError(ErrMissingStackItems, "pop from empty stack")
	}
	n := len(*s) - 1
	item := (*s)[n]
	*s = (*s)[:n]
	return item, nil
}

func (s *stack) popN(n int) ([][]byte, error) {
	if len(*s) < n {
		return nil, scriptError(ErrMissingStackItems, "not enough items on stack")
	}
	items := make([][]byte, n)
	for i := n - 1; i >= 0; i-- {
		item, err := s.pop()
		if err != nil {
			return nil, err
		}
		items[i] = item
	}
	return items, nil
}

func (s *stack) popBool() (bool, error) {
	item, err := s.pop()
	if err != nil {
		return false, err
	}
	if len(item) != 1 {
		return false, scriptError(ErrInvalidStackData, "expected a single boolean byte")
	}
	return item[0] != 0, nil
}

func (s *stack) popUint32() (uint32, error) {
	item, err := s.pop()
	if err != nil {
		return 0, err
	}
	if len(item) != 4 {
		return 0, scriptError(ErrVerifyFailed, "expected a 4-byte big-endian integer")
	}
	return binary.BigEndian.Uint32(item), nil
}

func (s *stack) peek() ([]byte, error) {
	if len(*s) == 0 {
		return nil, scriptError(ErrMissingStackItems, "peek on empty stack")
	}
	return (*s)[len(*s)-1], nil
}

func (s *stack) depth() int {
	return len(*s)
}

// PackUint32 big-endian encodes v, the wire form oracle comparison opcodes
// expect on the stack.
func PackUint32(v uint32) []byte {
	b := make([]byte, 4)
	binary.BigEndian.PutUint32(b, v)
	return b
}
