package base58

import (
	"errors"
	"math/big"

	"github.com/dagledger/fullnode/hashutil"
)

const alphabet = "123456789ABCDEFGHJKLMNPQRSTUVWXYZabcdefghijkmnopqrstuvwxyz"

var decodeTable [256]int8

func init() {
	for i := range decodeTable {
		decodeTable[i] = -1
	}
	for i := 0; i < len(alphabet); i++ {
		decodeTable[alphabet[i]] = int8(i)
	}
}

// Encode encodes b using the modified base58 alphabet (omitting 0, O, I, l).
func Encode(b []byte) string {
	zero := alphabet[0]

	x := new(big.Int).SetBytes(b)
	base := big.NewInt(58)
	mod := new(big.Int)

	var out []byte
	for x.Sign() > 0 {
		x.DivMod(x, base, mod)
		out = append(out, alphabet[mod.Int64()])
	}
	for _, c := range b {
		if c != 0 {
			break
		}
		out = append(out, zero)
	}
	reverse(out)
	return string(out)
}

// Decode reverses Encode. It returns an error if s contains characters
// outside the base58 alphabet.
func Decode(s string) ([]byte, error) {
	x := big.NewInt(0)
	base := big.NewInt(58)
	for i := 0; i < len(s); i++ {
		v := decodeTable[s[i]]
		if v < 0 {
			return nil, errors.New("base58: invalid character")
		}
		x.Mul(x, base)
		x.Add(x, big.NewInt(int64(v)))
	}

	decoded := x.Bytes()

	numZeros := 0
	for numZeros < len(s) && s[numZeros] == alphabet[0] {
		numZeros++
	}

	out := make([]byte, numZeros+len(decoded))
	copy(out[numZeros:], decoded)
	return out, nil
}

func reverse(b []byte) {
	for i, j := 0, len(b)-1; i < j; i, j = i+1, j-1 {
		b[i], b[j] = b[j], b[i]
	}
}

// ChecksumSize is the length, in bytes, of a Base58Check checksum.
const ChecksumSize = 4

// CheckEncode prepends version to payload, appends the first ChecksumSize
// bytes of SHA256d(version‖payload), and base58-encodes the result, per
// spec.md §6's address format.
func CheckEncode(payload []byte, version byte) string {
	b := make([]byte, 0, 1+len(payload)+ChecksumSize)
	b = append(b, version)
	b = append(b, payload...)
	sum := hashutil.DoubleSHA256(b)
	b = append(b, sum[:ChecksumSize]...)
	return Encode(b)
}

var ErrChecksumMismatch = errors.New("base58: checksum mismatch")
var ErrInvalidFormat = errors.New("base58: invalid format")

// CheckDecode reverses CheckEncode, returning the payload and version byte.
// It returns ErrChecksumMismatch if the embedded checksum does not match.
func CheckDecode(s string) (payload []byte, version byte, err error) {
	decoded, err := Decode(s)
	if err != nil {
		return nil, 0, err
	}
	if len(decoded) < 1+ChecksumSize {
		return nil, 0, ErrInvalidFormat
	}

	version = decoded[0]
	payload = decoded[1 : len(decoded)-ChecksumSize]
	checksum := decoded[len(decoded)-ChecksumSize:]

	sum := hashutil.DoubleSHA256(decoded[:len(decoded)-ChecksumSize])
	for i := 0; i < ChecksumSize; i++ {
		if sum[i] != checksum[i] {
			return nil, 0, ErrChecksumMismatch
		}
	}
	return payload, version, nil
}
