package constants

import "time"

// App
const (
	AppName        = "gatehouse"
	AppDisplayName = "Gatehouse"
)

// Paths
const (
	ConfigDir  = ".config/gatehouse"
	ConfigFile = "config.yaml"

	DefaultDatabaseFile = "gatehouse.db"
	DefaultUploadDir    = "uploads"
)

// Storage buckets. Uploaded objects are split into two top-level buckets
// based on content type: image/* goes to images, everything else to files.
const (
	BucketImages = "images"
	BucketFiles  = "files"
)

// StaticURLPrefix is the public path prefix the local disk backend serves
// uploaded objects under. Public URLs are {base_url}{StaticURLPrefix}{key}.
const StaticURLPrefix = "/uploads/"

// API
const (
	DefaultPort    = 5000
	DefaultBaseURL = "http://localhost:5000"
)

// Upload policy defaults
const (
	DefaultMaxUploadBytes = 100 * 1024 * 1024 // 100MB
	SniffLen              = 512               // bytes fed to content-type sniffing
)

// SweepGracePeriod protects just-uploaded objects from the orphan sweep.
// An upload and its reference row are written in two steps; objects
// younger than this are skipped so the sweep never races that window.
const SweepGracePeriod = 10 * time.Minute

// DefaultAllowedTypes is the default upload content-type allowlist.
// A trailing /* matches every subtype of the given top-level type.
var DefaultAllowedTypes = []string{
	"image/*",
	"application/pdf",
	"text/plain",
	"application/msword",
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
}

// Environments
const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Logging
const (
	DefaultLogLevel    = "DEBUG"
	LogTimestampFormat = "2006-01-02 15:04:05.000"
	LogFileExtension   = ".log"
	LogsDir            = "logs"
)

// Database pragmas applied to every connection.
var SQLitePragmas = []string{
	"PRAGMA journal_mode=WAL",
	"PRAGMA busy_timeout=5000",
	"PRAGMA synchronous=NORMAL",
	"PRAGMA foreign_keys=ON",
}
