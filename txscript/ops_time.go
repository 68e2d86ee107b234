package txscript

// opGreaterThanTimestamp fails TimeLocked unless the spending transaction's
// timestamp is strictly greater than the pushed timelock argument.
func opGreaterThanTimestamp(s *stack, extras *ScriptExtras) error {
	arg, err := s.pop()
	if err != nil {
		return err
	}
	timelock, err := parseUint32(arg)
	if err != nil {
		return err
	}
	if extras == nil || extras.Tx == nil {
		return scriptError(ErrVerifyFailed, "OP_GREATERTHAN_TIMESTAMP requires transaction context")
	}
	if extras.Tx.Timestamp <= int64(timelock) {
		return scriptError(ErrTimeLocked, "transaction timestamp has not passed the timelock")
	}
	return nil
}
