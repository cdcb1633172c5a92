package schemas

// CustomError is the error shape returned to clients.
// Code is stable and machine-readable, Message is for humans.
type CustomError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

var (
	// BadRequest is returned when the request body fails decoding, sanitizing or validation.
	BadRequest = &CustomError{Code: "ERR-001", Message: "The request body is invalid. Please check the request body and try again."}

	// InvalidCredentials deliberately does not distinguish a wrong password from an unknown login code.
	InvalidCredentials = &CustomError{Code: "ERR-002", Message: "Invalid username or password."}

	// AccountInactive is returned when credentials are correct but the account is deactivated.
	AccountInactive = &CustomError{Code: "ERR-003", Message: "Your account is inactive. Please contact an administrator."}

	// Unauthorized is returned when the JWT is missing, expired or malformed.
	Unauthorized = &CustomError{Code: "ERR-004", Message: "The request is unauthorized. Please login to your account."}

	// Forbidden is returned when the authenticated role may not use the requested dashboard.
	Forbidden = &CustomError{Code: "ERR-005", Message: "You do not have permission to perform this action."}

	// SessionExpired is returned when the session referenced by the token no longer exists.
	SessionExpired = &CustomError{Code: "ERR-006", Message: "Your session has expired. Please login again."}

	// DatabaseError is returned for connectivity failures and unclassified store errors.
	DatabaseError = &CustomError{Code: "ERR-007", Message: "A database error occurred. Please try again later."}

	// OperationRejected carries the store's rejection reason for constraint and business-rule failures.
	OperationRejected = &CustomError{Code: "ERR-008", Message: "The operation was rejected by the data store."}

	// NotFound is returned when the referenced entity does not exist.
	NotFound = &CustomError{Code: "ERR-009", Message: "The requested resource could not be found."}

	// ProfileNotFound is returned when an account has no student or professor profile behind it.
	ProfileNotFound = &CustomError{Code: "ERR-010", Message: "Could not identify your profile. Please contact an administrator."}

	// InternalServerError is the catch-all for unexpected failures.
	InternalServerError = &CustomError{Code: "ERR-011", Message: "An internal error occurred. Please try again later."}

	// EmailUnreachable is returned when an email address fails MX verification.
	EmailUnreachable = &CustomError{Code: "ERR-012", Message: "The email address could not be verified. Please check the address and try again."}
)

// WithMessage derives a copy of the error carrying a more specific,
// store-provided message. The code stays stable for clients.
func (e *CustomError) WithMessage(message string) *CustomError {
	if message == "" {
		return e
	}
	return &CustomError{Code: e.Code, Message: message}
}
