package core

import (
	"errors"
	"fmt"
)

// AbortCode is the numeric reason an operation refused to apply. Codes are
// part of the wire contract: callers map them to user-facing text but never
// reinterpret them.
type AbortCode uint32

const (
	CodeNotOrganizer        AbortCode = 1
	CodeNotSponsor          AbortCode = 2
	CodeEventNotFound       AbortCode = 3
	CodeEventNotActive      AbortCode = 4
	CodeEventCompleted      AbortCode = 5
	CodeInvalidCapacity     AbortCode = 6
	CodeInvalidTimestamp    AbortCode = 7
	CodeCapacityReached     AbortCode = 8
	CodeInvalidCapability   AbortCode = 9
	CodeAlreadyRegistered   AbortCode = 10
	CodeNotRegistered       AbortCode = 11
	CodeInvalidState        AbortCode = 12
	CodeInvalidRating       AbortCode = 13
	CodeAlreadyRated        AbortCode = 14
	CodeEscrowNotFound      AbortCode = 15
	CodeAlreadySettled      AbortCode = 16
	CodeGracePeriodActive   AbortCode = 17
	CodeAirdropNotFound     AbortCode = 18
	CodeAirdropNotActive    AbortCode = 19
	CodeAirdropExpired      AbortCode = 20
	CodeAirdropNotExpired   AbortCode = 21
	CodeAlreadyClaimed      AbortCode = 22
	CodeInsufficientFunds   AbortCode = 23
	CodeNotEligible         AbortCode = 24
	CodeInvalidDistribution AbortCode = 25
	CodeInvalidAmount       AbortCode = 26
)

// Abort is the only error kind core operations return. A returned Abort
// guarantees no registry state was mutated.
type Abort struct {
	Code   AbortCode
	Reason string
}

func (a *Abort) Error() string {
	return fmt.Sprintf("abort(%d): %s", a.Code, a.Reason)
}

func abortf(code AbortCode, format string, args ...interface{}) error {
	return &Abort{Code: code, Reason: fmt.Sprintf(format, args...)}
}

// CodeOf extracts the abort code from err, unwrapping as needed.
func CodeOf(err error) (AbortCode, bool) {
	var a *Abort
	if errors.As(err, &a) {
		return a.Code, true
	}
	return 0, false
}

// IsCode reports whether err carries the given abort code.
func IsCode(err error, code AbortCode) bool {
	c, ok := CodeOf(err)
	return ok && c == code
}
