package errors

// ErrorTemplate defines a registered error type.
type ErrorTemplate struct {
	Category Category
	Message  string
	Detail   string
	DocURL   string
}

const docBase = "https://gobarber.dev/docs/errors/"

// registry maps error codes to their templates.
var registry = map[string]ErrorTemplate{
	// ============================================
	// Configuration Errors (G001-G019)
	// ============================================

	"G001": {
		Category: CategoryConfig,
		Message:  "Invalid configuration",
		Detail:   "One or more configuration values are out of range or missing.",
		DocURL:   docBase + "G001",
	},
	"G002": {
		Category: CategoryConfig,
		Message:  "Failed to load configuration",
		Detail:   "The configuration file exists but could not be read or parsed.",
		DocURL:   docBase + "G002",
	},
	"G003": {
		Category: CategoryConfig,
		Message:  "Unknown upload backend",
		Detail:   "upload.backend must be either \"disk\" or \"s3\".",
		DocURL:   docBase + "G003",
	},
	"G004": {
		Category: CategoryConfig,
		Message:  "Invalid environment override",
		Detail:   "A GOBARBER_* environment variable could not be parsed.",
		DocURL:   docBase + "G004",
	},

	// ============================================
	// CLI Errors (G020-G039)
	// ============================================

	"G020": {
		Category: CategoryCLI,
		Message:  "Server failed",
		Detail:   "The HTTP server stopped with an error.",
		DocURL:   docBase + "G020",
	},
	"G021": {
		Category: CategoryCLI,
		Message:  "Address already in use",
		Detail:   "Another process is listening on the configured address.",
		DocURL:   docBase + "G021",
	},

	// ============================================
	// Server Errors (G040-G059)
	// ============================================

	"G040": {
		Category: CategoryServer,
		Message:  "Notification provider unavailable",
		Detail:   "A toast was emitted outside a session's provisioning scope.",
		DocURL:   docBase + "G040",
	},
	"G041": {
		Category: CategoryServer,
		Message:  "Malformed request body",
		Detail:   "The request body could not be decoded.",
		DocURL:   docBase + "G041",
	},

	// ============================================
	// API Errors (G060-G079)
	// ============================================

	"G060": {
		Category: CategoryAPI,
		Message:  "Backend API unreachable",
		Detail:   "The request to the backend API failed before a response was received.",
		DocURL:   docBase + "G060",
	},

	// ============================================
	// Session Errors (G080-G099)
	// ============================================

	"G080": {
		Category: CategorySession,
		Message:  "Session not found",
		Detail:   "The session ID is invalid or the session has expired.",
		DocURL:   docBase + "G080",
	},
	"G081": {
		Category: CategorySession,
		Message:  "Session limit reached",
		Detail:   "The server is holding the maximum number of sessions.",
		DocURL:   docBase + "G081",
	},

	// ============================================
	// Upload Errors (G100-G119)
	// ============================================

	"G100": {
		Category: CategoryUpload,
		Message:  "Upload too large",
		Detail:   "The uploaded file exceeds the configured size limit.",
		DocURL:   docBase + "G100",
	},
	"G101": {
		Category: CategoryUpload,
		Message:  "Storage unavailable",
		Detail:   "The avatar storage backend could not be initialized.",
		DocURL:   docBase + "G101",
	},
}

// GetAllCodes returns all registered error codes.
func GetAllCodes() []string {
	codes := make([]string, 0, len(registry))
	for code := range registry {
		codes = append(codes, code)
	}
	return codes
}

// GetTemplate returns the template for an error code.
func GetTemplate(code string) (ErrorTemplate, bool) {
	t, ok := registry[code]
	return t, ok
}

// Register adds a new error template to the registry.
func Register(code string, template ErrorTemplate) {
	registry[code] = template
}
