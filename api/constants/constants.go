package constants

const (
	KeyUserID = "user_id"
	KeyFile   = "file"

	ContentTypeHeader = "Content-Type"
	ContentTypeJSON   = "application/json"

	// MaxUploadBytes caps multipart parsing for spreadsheet uploads.
	MaxUploadBytes = 32 << 20

	DateFormat    = "2006-01-02"
	DateFormatAlt = "02/01/2006"
)
