package processor

import (
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/goran-ethernal/GnosisPayIndexor/internal/fetcher"
)

// Code classifies why a log could not be processed.
type Code string

const (
	// CodeAlreadyProcessed means the log was applied before. It is expected on resume.
	CodeAlreadyProcessed Code = "ALREADY_PROCESSED"
	// CodeNotFound means a block, token or owner set the log depends on is missing.
	CodeNotFound Code = "NOT_FOUND"
	// CodeValidation means the log does not satisfy the processor preconditions.
	CodeValidation Code = "VALIDATION"
	// CodeUpstream means a chain read failed.
	CodeUpstream Code = "UPSTREAM"
	// CodeConsistency means the stored aggregates contradict the log.
	CodeConsistency Code = "CONSISTENCY"
	// CodeInternal covers store failures and recovered panics.
	CodeInternal Code = "INTERNAL"
)

// ProcessError is the error returned for a log that was not applied.
type ProcessError struct {
	Code   Code
	Kind   fetcher.Kind
	TxHash common.Hash
	Err    error
}

func (e *ProcessError) Error() string {
	return fmt.Sprintf("%s: %s log of tx %s: %v", e.Code, e.Kind, e.TxHash.Hex(), e.Err)
}

func (e *ProcessError) Unwrap() error {
	return e.Err
}

// CodeOf returns the code of a ProcessError in err's chain, or CodeInternal.
func CodeOf(err error) Code {
	var pErr *ProcessError
	if errors.As(err, &pErr) {
		return pErr.Code
	}
	return CodeInternal
}

// IsAlreadyProcessed reports whether err is an idempotency hit.
func IsAlreadyProcessed(err error) bool {
	return err != nil && CodeOf(err) == CodeAlreadyProcessed
}

func fail(code Code, format string, args ...any) *ProcessError {
	return &ProcessError{Code: code, Err: fmt.Errorf(format, args...)}
}
