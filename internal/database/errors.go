package database

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Kind classifies a store failure. Classification happens once, at this
// boundary; callers switch on Kind instead of sniffing error strings.
type Kind int

const (
	// KindUnknown covers unexpected failures with no better classification.
	KindUnknown Kind = iota
	// KindNotFound covers missing rows and missing database objects.
	KindNotFound
	// KindUniqueViolation covers duplicate-key rejections.
	KindUniqueViolation
	// KindConstraintViolation covers trigger-raised and constraint
	// rejections. These are routine business outcomes, not defects; the
	// store's message is relayed verbatim.
	KindConstraintViolation
	// KindConnectivity covers an unreachable store and refused credentials.
	KindConnectivity
)

// StoreError is a classified store failure with a user-visible message.
type StoreError struct {
	Kind    Kind
	Message string
	cause   error
}

func (e *StoreError) Error() string {
	return e.Message
}

func (e *StoreError) Unwrap() error {
	return e.cause
}

// SQLSTATE class prefixes and codes, see
// https://www.postgresql.org/docs/current/errcodes-appendix.html
const (
	codeUniqueViolation = "23505"
	codeRaiseException  = "P0001"
	codeUndefinedTable  = "42P01"
	codeUndefinedFunc   = "42883"
)

// Classify converts a raw store error into a StoreError. Returns nil for
// a nil error.
func Classify(err error) *StoreError {
	if err == nil {
		return nil
	}

	if errors.Is(err, pgx.ErrNoRows) {
		return &StoreError{Kind: KindNotFound, Message: "No matching rows found.", cause: err}
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch {
		case pgErr.Code == codeUniqueViolation:
			return &StoreError{Kind: KindUniqueViolation, Message: pgErr.Message, cause: err}
		case pgErr.Code == codeRaiseException:
			// Trigger-raised business-rule rejection, message is the rule.
			return &StoreError{Kind: KindConstraintViolation, Message: pgErr.Message, cause: err}
		case strings.HasPrefix(pgErr.Code, "23"):
			return &StoreError{Kind: KindConstraintViolation, Message: pgErr.Message, cause: err}
		case pgErr.Code == codeUndefinedTable || pgErr.Code == codeUndefinedFunc:
			return &StoreError{Kind: KindNotFound, Message: pgErr.Message, cause: err}
		case strings.HasPrefix(pgErr.Code, "08"), strings.HasPrefix(pgErr.Code, "28"),
			strings.HasPrefix(pgErr.Code, "3D"), strings.HasPrefix(pgErr.Code, "57"):
			return &StoreError{Kind: KindConnectivity, Message: "Database error: " + pgErr.Message, cause: err}
		default:
			return &StoreError{Kind: KindUnknown, Message: "Database error: " + pgErr.Message, cause: err}
		}
	}

	var connectErr *pgconn.ConnectError
	if errors.As(err, &connectErr) {
		return &StoreError{Kind: KindConnectivity, Message: "Could not reach the database.", cause: err}
	}

	return &StoreError{Kind: KindUnknown, Message: "An unexpected error occurred: " + err.Error(), cause: err}
}
