// internal/app/system/limits/limits.go
package limits

// Request body size limits. These keep oversized payloads from exhausting
// memory before validation even runs.
const (
	// MaxNoticeBody caps notice create/update JSON bodies (the description
	// can carry sanitized HTML, so this is generous).
	MaxNoticeBody = 256 << 10 // 256 KB

	// MaxJSONBody caps all other JSON request bodies.
	MaxJSONBody = 64 << 10 // 64 KB

	// MaxUploadSize caps a single image/PDF upload.
	MaxUploadSize = 10 << 20 // 10 MB
)
