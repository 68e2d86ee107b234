package txscript

// ExtractP2PKHHash returns the hash160 a P2PKH output script pays, matching
// against the exact byte layout P2PKHScript produces, and ok=false for any
// other script shape (including multisig, which has no single address).
func ExtractP2PKHHash(script []byte) (hash160 []byte, ok bool) {
	if len(script) != 25 {
		return nil, false
	}
	if script[0] != OpDup || script[1] != OpHash160 || script[2] != 20 {
		return nil, false
	}
	if script[23] != OpEqualVerify || script[24] != OpCheckSig {
		return nil, false
	}
	return script[3:23], true
}
