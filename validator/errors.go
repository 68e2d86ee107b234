package validator

import "github.com/pkg/errors"

// ErrorCode tags the validation failure taxonomy of spec.md §7. It is
// flat and exhaustive: every check in the pipeline maps to exactly one
// code, with no sub-codes.
type ErrorCode int

const (
	// Structural
	ErrTooManyInputs ErrorCode = iota
	ErrTooManyOutputs
	ErrBlockWithInputs
	ErrBlockDataError
	ErrIncorrectParents
	ErrDuplicatedParents

	// Reference
	ErrParentDoesNotExist
	ErrInexistentInput
	ErrTransactionDoesNotExist

	// Arithmetic
	ErrInputOutputMismatch
	ErrPowError

	// Time
	ErrTimestampError
	ErrTimeLocked

	// Script
	ErrInvalidInputData

	// Consensus-observable
	ErrConflictingInputs

	// Weight / reward
	ErrWeightTooLow
	ErrRewardMismatch
)

var errorCodeNames = map[ErrorCode]string{
	ErrTooManyInputs:           "TooManyInputs",
	ErrTooManyOutputs:          "TooManyOutputs",
	ErrBlockWithInputs:         "BlockWithInputs",
	ErrBlockDataError:          "BlockDataError",
	ErrIncorrectParents:        "IncorrectParents",
	ErrDuplicatedParents:       "DuplicatedParents",
	ErrParentDoesNotExist:      "ParentDoesNotExist",
	ErrInexistentInput:         "InexistentInput",
	ErrTransactionDoesNotExist: "TransactionDoesNotExist",
	ErrInputOutputMismatch:     "InputOutputMismatch",
	ErrPowError:                "PowError",
	ErrTimestampError:          "TimestampError",
	ErrTimeLocked:              "TimeLocked",
	ErrInvalidInputData:        "InvalidInputData",
	ErrConflictingInputs:       "ConflictingInputs",
	ErrWeightTooLow:            "WeightTooLow",
	ErrRewardMismatch:          "RewardMismatch",
}

func (c ErrorCode) String() string {
	if name, ok := errorCodeNames[c]; ok {
		return name
	}
	return "UnknownValidationError"
}

// ValidationError is the single error type the validator returns; callers
// switch on Code rather than matching strings.
type ValidationError struct {
	Code    ErrorCode
	Message string
}

func (e *ValidationError) Error() string {
	return e.Code.String() + ": " + e.Message
}

func validationError(code ErrorCode, format string, args ...interface{}) error {
	return &ValidationError{Code: code, Message: errors.Errorf(format, args...).Error()}
}

// CodeOf extracts the ErrorCode from err, ok=false if err isn't (or doesn't
// wrap) a *ValidationError.
func CodeOf(err error) (ErrorCode, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Code, true
	}
	return 0, false
}
