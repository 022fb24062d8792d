package errors

import (
	"errors"
	"fmt"
)

// Taxonomy categories. Transports switch on these; application code returns
// the condition sentinels below, each of which wraps its category so both
// errors.Is(err, ErrAlreadyVoted) and errors.Is(err, ErrConflict) hold.
var (
	ErrValidation       = errors.New("validation failed")
	ErrConflict         = errors.New("conflict")
	ErrNotFound         = errors.New("not found")
	ErrInsufficientPool = errors.New("reward pool exhausted")
	ErrAuthentication   = errors.New("authentication failed")
	ErrAuthorization    = errors.New("not authorized")
	ErrExternalLedger   = errors.New("external ledger call failed")
	ErrPersistence      = errors.New("ledger persistence failed")
)

var (
	ErrBlankField          = fmt.Errorf("%w: username, password, or address cannot be blank", ErrValidation)
	ErrMalformedAddress    = fmt.Errorf("%w: invalid ledger address", ErrValidation)
	ErrUnknownAddress      = fmt.Errorf("%w: address is not a recognized ledger account", ErrValidation)
	ErrNonPositivePledge   = fmt.Errorf("%w: pledge must be a positive amount", ErrValidation)
	ErrPledgeBelowMinimum  = fmt.Errorf("%w: pledge is below the minimum required stake", ErrValidation)
	ErrInsufficientBalance = fmt.Errorf("%w: not enough ether in your wallet", ErrValidation)

	ErrUsernameTaken     = fmt.Errorf("%w: username already taken", ErrConflict)
	ErrAlreadyCandidate  = fmt.Errorf("%w: already registered as a candidate", ErrConflict)
	ErrAlreadyVoted      = fmt.Errorf("%w: you have already voted", ErrConflict)
	ErrAlreadyReconciled = fmt.Errorf("%w: remainder already transferred this cycle", ErrConflict)

	ErrUserNotFound      = fmt.Errorf("%w: user", ErrNotFound)
	ErrCandidateNotFound = fmt.Errorf("%w: candidate", ErrNotFound)
	ErrNoCandidates      = fmt.Errorf("%w: no candidates declared", ErrNotFound)
	ErrAdminNotFound     = fmt.Errorf("%w: admin account", ErrNotFound)

	ErrPoolExhausted = fmt.Errorf("%w: no more ether to reward", ErrInsufficientPool)

	ErrInvalidCredentials = fmt.Errorf("%w: invalid username or password", ErrAuthentication)
	ErrAdminOnly          = fmt.Errorf("%w: admin role required", ErrAuthorization)

	ErrStageClosed    = fmt.Errorf("%w: operation not available at the current stage", ErrConflict)
	ErrStageExhausted = fmt.Errorf("%w: no stage follows results", ErrConflict)
)

// External wraps a gateway failure into the taxonomy without losing the
// underlying cause.
func External(err error) error {
	return fmt.Errorf("%w: %v", ErrExternalLedger, err)
}

// Persistence wraps a store read/write failure into the taxonomy.
func Persistence(err error) error {
	return fmt.Errorf("%w: %v", ErrPersistence, err)
}
