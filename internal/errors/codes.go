package errors

// Error codes returned in ErrorResponse.Error.
// Format: CATEGORY_SPECIFIC_DETAIL

const (
	// ==================== Validation (VALIDATION_) ====================
	ValidationInvalidInput  = "VALIDATION_INVALID_INPUT"
	ValidationInvalidID     = "VALIDATION_INVALID_ID"
	ValidationInvalidFormat = "VALIDATION_INVALID_FORMAT"
	ValidationInvalidRange  = "VALIDATION_INVALID_RANGE"
	ValidationRequired      = "VALIDATION_REQUIRED"
	ValidationInvalidSort   = "VALIDATION_INVALID_SORT"

	// ==================== Resources (RESOURCE_) ====================
	ResourceNotFound      = "RESOURCE_NOT_FOUND"
	ResourceAlreadyExists = "RESOURCE_ALREADY_EXISTS"
	ResourceConflict      = "RESOURCE_CONFLICT"

	// ==================== Catalog ====================
	CategoryNotFound     = "CATEGORY_NOT_FOUND"
	FilterOptionNotFound = "FILTER_OPTION_NOT_FOUND"
	FilterValueNotFound  = "FILTER_VALUE_NOT_FOUND"
	ProductNotFound      = "PRODUCT_NOT_FOUND"

	// ==================== Upload (UPLOAD_) ====================
	UploadInvalidFileType = "UPLOAD_INVALID_FILE_TYPE"
	UploadFileTooLarge    = "UPLOAD_FILE_TOO_LARGE"
	UploadFailed          = "UPLOAD_FAILED"

	// ==================== Internal (INTERNAL_) ====================
	InternalServerError   = "INTERNAL_SERVER_ERROR"
	InternalDatabaseError = "INTERNAL_DATABASE_ERROR"
	InternalExternalAPI   = "INTERNAL_EXTERNAL_API"
)
