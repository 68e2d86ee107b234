package txscript

import (
	"bytes"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/ecdsa"
	"github.com/dagledger/fullnode/codec"
	"github.com/dagledger/fullnode/hashutil"
)

func opDup(s *stack, extras *ScriptExtras) error {
	top, err := s.peek()
	if err != nil {
		return err
	}
	s.push(append([]byte(nil), top...))
	return nil
}

func opEqual(s *stack, extras *ScriptExtras) error {
	items, err := s.popN(2)
	if err != nil {
		return err
	}
	s.pushBool(bytes.Equal(items[0], items[1]))
	return nil
}

func opEqualVerify(s *stack, extras *ScriptExtras) error {
	items, err := s.popN(2)
	if err != nil {
		return err
	}
	if !bytes.Equal(items[0], items[1]) {
		return scriptError(ErrEqualVerifyFailed, "OP_EQUALVERIFY: operands not equal")
	}
	return nil
}

func opHash160(s *stack, extras *ScriptExtras) error {
	item, err := s.pop()
	if err != nil {
		return err
	}
	s.push(hashutil.Hash160(item))
	return nil
}

// opCheckSig verifies a signature over the spending transaction's sighash.
// An invalid signature pushes false rather than erroring; only a malformed
// signature or pubkey encoding is an error.
func opCheckSig(s *stack, extras *ScriptExtras) error {
	items, err := s.popN(2)
	if err != nil {
		return err
	}
	sigBytes, pubKeyBytes := items[0], items[1]

	ok, err := verifySignature(extras, sigBytes, pubKeyBytes)
	if err != nil {
		return err
	}
	s.pushBool(ok)
	return nil
}

func verifySignature(extras *ScriptExtras, sigBytes, pubKeyBytes []byte) (bool, error) {
	pubKey, err := btcec.ParsePubKey(pubKeyBytes)
	if err != nil {
		return false, nil
	}
	sig, err := ecdsa.ParseDERSignature(sigBytes)
	if err != nil {
		return false, nil
	}
	digest, err := codec.SigHash(extras.Tx)
	if err != nil {
		return false, err
	}
	return sig.Verify(digest[:], pubKey), nil
}

// opCheckDataSig verifies a signature over arbitrary oracle data rather than
// the spending transaction, leaving the data on the stack for subsequent
// oracle opcodes to inspect. Unlike OP_CHECKSIG a failed verification is an
// error: oracle data with no valid signature should never let script
// execution continue past this point.
func opCheckDataSig(s *stack, extras *ScriptExtras) error {
	items, err := s.popN(3)
	if err != nil {
		return err
	}
	data, sigBytes, pubKeyBytes := items[0], items[1], items[2]

	pubKey, err := btcec.ParsePubKey(pubKeyBytes)
	if err != nil {
		return scriptError(ErrOracleChecksigFailed, "invalid oracle public key")
	}
	sig, err := ecdsa.ParseDERSignature(sigBytes)
	if err != nil {
		return scriptError(ErrOracleChecksigFailed, "invalid oracle signature encoding")
	}
	digest := hashutil.DoubleSHA256(data)
	if !sig.Verify(digest[:], pubKey) {
		return scriptError(ErrOracleChecksigFailed, "oracle signature does not match data")
	}
	s.push(data)
	return nil
}

// opCheckMultiSig implements M-of-N verification. Signatures must appear on
// the stack in the same order as their matching public keys; a mismatched
// ordering is not an error, it simply fails to verify and pushes false.
func opCheckMultiSig(s *stack, extras *ScriptExtras) error {
	nBytes, err := s.pop()
	if err != nil {
		return err
	}
	if len(nBytes) != 1 {
		return scriptError(ErrInvalidStackData, "OP_CHECKMULTISIG: N must be a single byte")
	}
	n := int(nBytes[0])
	pubKeys, err := s.popN(n)
	if err != nil {
		return err
	}
	mBytes, err := s.pop()
	if err != nil {
		return err
	}
	if len(mBytes) != 1 {
		return scriptError(ErrInvalidStackData, "OP_CHECKMULTISIG: M must be a single byte")
	}
	m := int(mBytes[0])
	sigs, err := s.popN(m)
	if err != nil {
		return err
	}

	digest, err := codec.SigHash(extras.Tx)
	if err != nil {
		return err
	}

	keyIdx := 0
	matched := 0
	for _, sigBytes := range sigs {
		sig, err := ecdsa.ParseDERSignature(sigBytes)
		if err != nil {
			s.pushBool(false)
			return nil
		}
		found := false
		for keyIdx < len(pubKeys) {
			pubKey, err := btcec.ParsePubKey(pubKeys[keyIdx])
			keyIdx++
			if err != nil {
				continue
			}
			if sig.Verify(digest[:], pubKey) {
				found = true
				matched++
				break
			}
		}
		if !found {
			s.pushBool(false)
			return nil
		}
	}
	s.pushBool(matched == m)
	return nil
}
