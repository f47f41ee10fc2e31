package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
)

// ErrDivisionByZero is returned when a return or dividend computation is asked to
// divide by a zero or negative duration.
var ErrDivisionByZero = stderrors.New("division by zero duration")

type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return e.Field + ": " + e.Message
}

// Entities reported by ErrNotFound
const (
	EntityUser        = "user"
	EntityWallet      = "wallet"
	EntityListing     = "listing"
	EntityInvestment  = "investment"
	EntityPortfolio   = "portfolio"
	EntityTransaction = "transaction"
)

// ErrNotFound reports a missing user, wallet, listing, investment or portfolio.
type ErrNotFound struct {
	Entity string
	ID     string
}

func (e *ErrNotFound) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Entity, e.ID)
}

// MissingListing builds the not-found error for a listing id.
func MissingListing(id string) error {
	return &ErrNotFound{Entity: EntityListing, ID: id}
}

// MissingWallet builds the not-found error for a user's wallet.
func MissingWallet(userID string) error {
	return &ErrNotFound{Entity: EntityWallet, ID: userID}
}

// MissingUser builds the not-found error for a user id.
func MissingUser(id string) error {
	return &ErrNotFound{Entity: EntityUser, ID: id}
}

func MissingInvestment(id string) error {
	return &ErrNotFound{Entity: EntityInvestment, ID: id}
}

func MissingPortfolio(id string) error {
	return &ErrNotFound{Entity: EntityPortfolio, ID: id}
}

func MissingTransaction(id string) error {
	return &ErrNotFound{Entity: EntityTransaction, ID: id}
}

// IsNotFound reports whether err wraps an ErrNotFound for the given entity.
// An empty entity matches any not-found error.
func IsNotFound(err error, entity string) bool {
	var nf *ErrNotFound
	if !stderrors.As(err, &nf) {
		return false
	}
	return entity == "" || nf.Entity == entity
}

// StepFailure records the funding state in which a write failed.
type StepFailure struct {
	State string
	Err   error
}

// ErrFundingAborted is returned when the funding transaction was rolled back after
// validation had passed.
type ErrFundingAborted struct {
	RequestID string
	Failures  []StepFailure
}

func (e *ErrFundingAborted) Error() string {
	reasons := make([]string, 0, len(e.Failures))
	for _, f := range e.Failures {
		reasons = append(reasons, f.State+": "+f.Err.Error())
	}
	return fmt.Sprintf("funding %s aborted: %s", e.RequestID, strings.Join(reasons, "; "))
}

// Unwrap exposes the underlying step errors to errors.Is and errors.As.
func (e *ErrFundingAborted) Unwrap() []error {
	errs := make([]error, 0, len(e.Failures))
	for _, f := range e.Failures {
		errs = append(errs, f.Err)
	}
	return errs
}

// ErrNotification is a best-effort delivery failure. It is only ever logged.
type ErrNotification struct {
	Event string
	Err   error
}

func (e *ErrNotification) Error() string {
	return "notification " + e.Event + " failed: " + e.Err.Error()
}

func (e *ErrNotification) Unwrap() error {
	return e.Err
}
