package hierarchy

// Error is an application-layer error that can be mapped to an HTTP response.
type Error struct {
	Status  int
	Code    string
	Message string
	Details map[string]any
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Message != "" {
		return e.Message
	}
	return e.Code
}

// Error codes raised by this package. NotFound maps to 404, Validation to 422,
// Conflict to 409 and Forbidden to 403.
const (
	CodeMembershipNotFound     = "MEMBERSHIP_NOT_FOUND"
	CodeMasterNotFound         = "MASTER_NOT_FOUND"
	CodeSecondaryNotFound      = "SECONDARY_NOT_FOUND"
	CodeMembershipTypeNotFound = "MEMBERSHIP_TYPE_NOT_FOUND"
	CodeAlreadyMaster          = "ALREADY_MASTER"
	CodeNotASecondary          = "NOT_A_SECONDARY"
	CodeSecondaryCannotUpgrade = "SECONDARY_CANNOT_BE_MASTER"
	CodeMembershipNotPaid      = "MEMBERSHIP_NOT_PAID"
	CodeSecondaryLimitReached  = "SECONDARY_LIMIT_REACHED"
	CodeEmailRequired          = "EMAIL_REQUIRED"
	CodeEmailAlreadyInUse      = "EMAIL_ALREADY_IN_USE"
	CodeCompetitorNameRequired = "COMPETITOR_NAME_REQUIRED"
	CodeMasterNotPaid          = "MASTER_NOT_PAID"
	CodeMasterIsSecondary      = "MASTER_IS_SECONDARY"
	CodeForbidden              = "FORBIDDEN"
)

func notFound(code, message string) *Error {
	return &Error{Status: 404, Code: code, Message: message}
}

func validation(code, message string, details map[string]any) *Error {
	return &Error{Status: 422, Code: code, Message: message, Details: details}
}

func conflict(code, message string) *Error {
	return &Error{Status: 409, Code: code, Message: message}
}

func forbidden(message string) *Error {
	return &Error{Status: 403, Code: CodeForbidden, Message: message}
}
