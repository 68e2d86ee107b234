// Copyright (c) 2013-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package txscript implements the stack-based virtual machine that verifies
// a transaction input's script_sig against its spent output's pk_script:
// P2PKH, M-of-N multisig, and the oracle-data and timelock extensions of
// spec.md §4.2. The opcode dispatch table is built once at package init,
// mirroring the teacher's table-driven opcode execution.
package txscript

// opFn is the signature every opcode handler implements.
type opFn func(s *stack, extras *ScriptExtras) error

var opTable = map[byte]opFn{
	OpDup:                  opDup,
	OpEqual:                opEqual,
	OpEqualVerify:          opEqualVerify,
	OpHash160:              opHash160,
	OpCheckSig:             opCheckSig,
	OpCheckMultiSig:        opCheckMultiSig,
	OpCheckDataSig:         opCheckDataSig,
	OpGreaterThanTimestamp: opGreaterThanTimestamp,
	OpDataStrEqual:         opDataStrEqual,
	OpDataGreaterThan:      opDataGreaterThan,
	OpDataMatchValue:       opDataMatchValue,
	OpDataMatchInterval:    opDataMatchInterval,
	OpFindP2PKH:            opFindP2PKH,
}

// Engine executes a concatenated script_sig‖pk_script against a data stack.
type Engine struct {
	script []byte
	extras *ScriptExtras
	stack  stack
}

// NewEngine constructs an Engine ready to run script against extras.
func NewEngine(script []byte, extras *ScriptExtras) *Engine {
	return &Engine{script: script, extras: extras}
}

// Execute runs the full script and returns an error unless it completes
// with exactly one truthy value left on the stack, per spec.md §4.7 step 5.
func (e *Engine) Execute() error {
	pos := 0
	for pos < len(e.script) {
		op := e.script[pos]
		pos++

		switch {
		case op == Op0:
			e.stack.push(nil)

		case op >= OpData1 && op <= OpData75:
			n := int(op)
			if pos+n > len(e.script) {
				return scriptError(ErrOutOfData, "script ends mid-push")
			}
			e.stack.push(append([]byte(nil), e.script[pos:pos+n]...))
			pos += n

		case op == OpPushData1:
			if pos >= len(e.script) {
				return scriptError(ErrOutOfData, "OP_PUSHDATA1 missing length byte")
			}
			n := int(e.script[pos])
			pos++
			if pos+n > len(e.script) {
				return scriptError(ErrOutOfData, "OP_PUSHDATA1 data truncated")
			}
			e.stack.push(append([]byte(nil), e.script[pos:pos+n]...))
			pos += n

		case op >= Op1 && op <= Op16:
			e.stack.push([]byte{op - Op1 + 1})

		default:
			fn, ok := opTable[op]
			if !ok {
				return scriptError(ErrScriptError, "unknown opcode")
			}
			if err := fn(&e.stack, e.extras); err != nil {
				return err
			}
		}
	}

	if e.stack.depth() == 0 {
		return scriptError(ErrMissingStackItems, "script left nothing on the stack")
	}
	top, err := e.stack.pop()
	if err != nil {
		return err
	}
	if len(top) == 0 || (len(top) == 1 && top[0] == 0) {
		return scriptError(ErrVerifyFailed, "script left a falsy value on the stack")
	}
	return nil
}

// Verify runs scriptSig followed by pkScript against a fresh stack, per
// spec.md §4.7 step 5.
func Verify(scriptSig, pkScript []byte, extras *ScriptExtras) error {
	full := make([]byte, 0, len(scriptSig)+len(pkScript))
	full = append(full, scriptSig...)
	full = append(full, pkScript...)
	return NewEngine(full, extras).Execute()
}
