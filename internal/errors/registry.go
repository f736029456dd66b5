package errors

// ErrorTemplate defines a registered error type.
type ErrorTemplate struct {
	Category Category
	Message  string
	Detail   string
	DocURL   string
}

// registry maps error codes to their templates.
var registry = map[string]ErrorTemplate{
	// ============================================
	// Manifest Errors (Z001-Z019)
	// ============================================

	"Z001": {
		Category: CategoryManifest,
		Message:  "No routes found",
		Detail:   "The routes directory contains no page files. A project needs at least one page before a manifest can be built.",
		DocURL:   "https://zenith.dev/docs/errors/Z001",
	},
	"Z002": {
		Category: CategoryManifest,
		Message:  "Duplicate route pattern",
		Detail:   "Two route definitions produce the same URL pattern. Only the first would ever match, so duplicates are rejected.",
		DocURL:   "https://zenith.dev/docs/errors/Z002",
	},
	"Z003": {
		Category: CategoryManifest,
		Message:  "Unmatchable route",
		Detail:   "The route pattern can never match a URL. This happens with empty or duplicated parameter names, or segments after a catch-all.",
		DocURL:   "https://zenith.dev/docs/errors/Z003",
	},
	"Z004": {
		Category: CategoryManifest,
		Message:  "Invalid page file name",
		Detail:   "The page file name cannot be converted into a route pattern.",
		DocURL:   "https://zenith.dev/docs/errors/Z004",
	},
	"Z005": {
		Category: CategoryManifest,
		Message:  "Invalid manifest file",
		Detail:   "The route manifest file is malformed and cannot be decoded.",
		DocURL:   "https://zenith.dev/docs/errors/Z005",
	},
	"Z006": {
		Category: CategoryManifest,
		Message:  "Route shadowed by earlier route",
		Detail:   "In declaration-order matching an earlier route always matches first, so this route is unreachable for some or all of its URLs.",
		DocURL:   "https://zenith.dev/docs/errors/Z006",
	},

	// ============================================
	// Configuration Errors (Z020-Z039)
	// ============================================

	"Z020": {
		Category: CategoryConfig,
		Message:  "Invalid zenith.json",
		Detail:   "The zenith.json configuration file is malformed.",
		DocURL:   "https://zenith.dev/docs/errors/Z020",
	},
	"Z021": {
		Category: CategoryConfig,
		Message:  "Missing required configuration",
		Detail:   "A required configuration value is not set.",
		DocURL:   "https://zenith.dev/docs/errors/Z021",
	},
	"Z022": {
		Category: CategoryConfig,
		Message:  "Invalid port number",
		Detail:   "The configured port number is outside the valid range.",
		DocURL:   "https://zenith.dev/docs/errors/Z022",
	},
	"Z023": {
		Category: CategoryConfig,
		Message:  "Invalid routes directory",
		Detail:   "The configured routes directory does not exist or is not a directory.",
		DocURL:   "https://zenith.dev/docs/errors/Z023",
	},
	"Z024": {
		Category: CategoryConfig,
		Message:  "Invalid match mode",
		Detail:   "The matching mode must be \"order\" or \"rank\".",
		DocURL:   "https://zenith.dev/docs/errors/Z024",
	},

	// ============================================
	// CLI Errors (Z040-Z059)
	// ============================================

	"Z040": {
		Category: CategoryCLI,
		Message:  "Project directory already exists",
		Detail:   "A directory with this name already exists.",
		DocURL:   "https://zenith.dev/docs/errors/Z040",
	},
	"Z041": {
		Category: CategoryCLI,
		Message:  "Not a zenith project",
		Detail:   "The current directory is not a zenith project. Run this command from a directory with zenith.json, or pass --config.",
		DocURL:   "https://zenith.dev/docs/errors/Z041",
	},
	"Z042": {
		Category: CategoryCLI,
		Message:  "Invalid project name",
		Detail:   "Project names must be valid directory names without path separators.",
		DocURL:   "https://zenith.dev/docs/errors/Z042",
	},
	"Z043": {
		Category: CategoryCLI,
		Message:  "Manifest generation failed",
		Detail:   "The route manifest could not be generated from the routes directory.",
		DocURL:   "https://zenith.dev/docs/errors/Z043",
	},
	"Z044": {
		Category: CategoryCLI,
		Message:  "File already exists",
		Detail:   "The target file already exists and will not be overwritten.",
		DocURL:   "https://zenith.dev/docs/errors/Z044",
	},

	// ============================================
	// Dev Server Errors (Z060-Z079)
	// ============================================

	"Z060": {
		Category: CategoryDev,
		Message:  "Dev server failed to start",
		Detail:   "The development server could not bind its address. The port may already be in use.",
		DocURL:   "https://zenith.dev/docs/errors/Z060",
	},
	"Z061": {
		Category: CategoryDev,
		Message:  "Route watch failed",
		Detail:   "The routes directory could not be watched for changes.",
		DocURL:   "https://zenith.dev/docs/errors/Z061",
	},
	"Z062": {
		Category: CategoryDev,
		Message:  "WebSocket upgrade failed",
		Detail:   "A live-reload client could not upgrade its connection to a WebSocket.",
		DocURL:   "https://zenith.dev/docs/errors/Z062",
	},

	// ============================================
	// Deploy Errors (Z080-Z099)
	// ============================================

	"Z080": {
		Category: CategoryDeploy,
		Message:  "Missing deploy bucket",
		Detail:   "No S3 bucket is configured. Set deploy.bucket in zenith.json or pass --bucket.",
		DocURL:   "https://zenith.dev/docs/errors/Z080",
	},
	"Z081": {
		Category: CategoryDeploy,
		Message:  "Upload failed",
		Detail:   "One or more files could not be uploaded to the deploy target.",
		DocURL:   "https://zenith.dev/docs/errors/Z081",
	},
	"Z082": {
		Category: CategoryDeploy,
		Message:  "AWS configuration not found",
		Detail:   "AWS credentials or region could not be resolved from the environment.",
		DocURL:   "https://zenith.dev/docs/errors/Z082",
	},
	"Z083": {
		Category: CategoryDeploy,
		Message:  "Deploy directory missing",
		Detail:   "The directory to deploy does not exist. Build the project before deploying.",
		DocURL:   "https://zenith.dev/docs/errors/Z083",
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
