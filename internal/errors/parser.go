package errors

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

// ErrorInfo is a code plus a caller-safe message.
type ErrorInfo struct {
	Code    string
	Message string
}

// IsNotFound reports whether err is gorm's record-not-found.
func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

// IsForeignKeyViolation matches both the Postgres (23503) and SQLite wording.
func IsForeignKeyViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrForeignKeyViolated) {
		return true
	}
	return strings.Contains(strings.ToLower(err.Error()), "foreign key constraint")
}

// IsUniqueViolation matches both the Postgres (23505) and SQLite wording.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	lower := strings.ToLower(err.Error())
	return strings.Contains(lower, "duplicate key") || strings.Contains(lower, "unique constraint")
}

// ParseError converts a storage error into a code and a message that does
// not leak driver details. context names the operation, e.g. "create product".
func ParseError(err error, context string) ErrorInfo {
	switch {
	case err == nil:
		return ErrorInfo{Code: InternalServerError, Message: getDefaultErrorMessage(context)}
	case IsNotFound(err):
		return ErrorInfo{Code: ResourceNotFound, Message: getNotFoundMessage(context)}
	case IsUniqueViolation(err):
		return ErrorInfo{Code: ResourceAlreadyExists, Message: "Resource already exists"}
	case IsForeignKeyViolation(err):
		return parseForeignKeyError(err.Error(), context)
	}

	errStrLower := strings.ToLower(err.Error())
	if strings.Contains(errStrLower, "connection refused") ||
		strings.Contains(errStrLower, "no such host") ||
		strings.Contains(errStrLower, "timeout") {
		return ErrorInfo{
			Code:    InternalExternalAPI,
			Message: "A dependent service is unavailable, please retry later",
		}
	}

	return ErrorInfo{Code: InternalServerError, Message: getDefaultErrorMessage(context)}
}

func parseForeignKeyError(errStr string, context string) ErrorInfo {
	errLower := strings.ToLower(errStr)

	if strings.Contains(errLower, "still referenced") {
		return ErrorInfo{Code: ResourceConflict, Message: "Resource is still referenced by other records"}
	}
	if strings.Contains(errLower, "sub_sub_category_id") || strings.Contains(errLower, "main_category_id") ||
		strings.Contains(errLower, "sub_category_id") {
		return ErrorInfo{Code: CategoryNotFound, Message: "Referenced category does not exist"}
	}
	if strings.Contains(errLower, "filter_value_id") {
		return ErrorInfo{Code: FilterValueNotFound, Message: "Referenced filter value does not exist"}
	}
	if strings.Contains(errLower, "filter_option_id") {
		return ErrorInfo{Code: FilterOptionNotFound, Message: "Referenced filter option does not exist"}
	}

	return ErrorInfo{Code: ResourceNotFound, Message: "Referenced " + subjectOf(context) + " data does not exist"}
}

func getNotFoundMessage(context string) string {
	return strings.ToUpper(subjectOf(context)[:1]) + subjectOf(context)[1:] + " not found"
}

func getDefaultErrorMessage(context string) string {
	if context == "" {
		return "Internal server error"
	}
	return "Failed to " + context
}

// subjectOf picks the noun out of an operation context ("delete filter value" -> "filter value").
func subjectOf(context string) string {
	fields := strings.Fields(context)
	if len(fields) > 1 {
		switch fields[0] {
		case "create", "update", "delete", "fetch", "list", "get":
			return strings.Join(fields[1:], " ")
		}
	}
	if context == "" {
		return "resource"
	}
	return context
}

// ParseAndRespond parses err and writes the ErrorResponse.
func ParseAndRespond(c interface{ JSON(int, interface{}) }, statusCode int, err error, context string) {
	errorInfo := ParseError(err, context)
	c.JSON(statusCode, ErrorResponse{
		Error:   errorInfo.Code,
		Message: errorInfo.Message,
	})
}
