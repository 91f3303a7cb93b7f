package constants

// User-facing error messages, collected here so handlers stay consistent.

const (
	ErrUserIDRequired             = "user_id is required in the request"
	ErrInvalidSession             = "Your session has expired or is invalid. Please login again"
	ErrAdministratorOnly          = "Only administrators can perform this action"
	ErrFailedToParseMultipartForm = "Failed to parse multipart form"
	ErrNoFileUploaded             = "No spreadsheet file uploaded"
	ErrUnsupportedFileType        = "Unsupported file type: upload .xlsx, .xls or .csv"
	ErrTxBeginFailed              = "Failed to start database transaction"
	ErrCommitFailed               = "Failed to commit transaction: "

	ErrPropertyIDRequired = "property_id is required"
	ErrDateRequired       = "registration_date is required (YYYY-MM-DD)"
	ErrShareOutOfRange    = "percentage must be between 0 and 100"
	ErrUnknownTemplate    = "Unknown template kind: use owners, properties, shares or rentledger"
)
