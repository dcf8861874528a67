package constants

import "os"

// File Permissions
const (
	DirPermissions  os.FileMode = 0755 // Directory creation permissions
	FilePermissions os.FileMode = 0644 // File creation permissions
)

// Form Field Names (multipart form uploads)
const (
	FormFieldFile  = "file"
	FormFieldFiles = "files"
)

// MaxFilesPerUpload caps how many files one multiple-upload request may
// carry.
const MaxFilesPerUpload = 10

// MultipartOverheadBytes is subtracted from the request Content-Length
// when no per-part length is declared, so multipart framing does not
// trip the declared-size check for files at exactly the cap. The hard
// cap on the stream itself stays authoritative.
const MultipartOverheadBytes = 1024

// Filename Sanitization
const (
	MaxOriginNameLength     = 255 // Maximum allowed length for an uploaded filename
	MaxExtensionLength      = 32  // Maximum allowed length for a file extension
	FilenameReplacementChar = "_" // Character used to replace invalid characters in filenames
	FallbackFilename        = "file"
)

// TempFileSuffix marks in-progress writes in the local disk backend.
// Objects with this suffix are invisible to List and never served.
const TempFileSuffix = ".tmp"
