package services

import (
	"bufio"
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/zeebo/blake3"

	"gatehouse/internal/constants"
	"gatehouse/internal/logger"
	"gatehouse/internal/sanitize"
	"gatehouse/internal/storage"
)

// errStreamTooLarge signals that the stream exceeded the hard cap while
// being copied to the backend.
var errStreamTooLarge = errors.New("stream exceeds size limit")

// UploadPolicy is the per-deployment upload acceptance policy.
type UploadPolicy struct {
	// MaxBytes is the hard size cap applied to both the declared size
	// and the actual stream.
	MaxBytes int64
	// AllowedTypes holds accepted media types. Entries may use a glob
	// subtype, e.g. "image/*".
	AllowedTypes []string
}

// Allows reports whether the policy accepts the given media type.
func (p UploadPolicy) Allows(mediaType string) bool {
	for _, pattern := range p.AllowedTypes {
		if pattern == mediaType {
			return true
		}
		if prefix, ok := strings.CutSuffix(pattern, "/*"); ok {
			if strings.HasPrefix(mediaType, prefix+"/") {
				return true
			}
		}
	}
	return false
}

// BucketFor returns the destination bucket for a media type. Images get
// their own bucket; everything else lands in the general file bucket.
func BucketFor(mediaType string) string {
	if strings.HasPrefix(mediaType, "image/") {
		return constants.BucketImages
	}
	return constants.BucketFiles
}

// UploadRequest describes one incoming upload.
type UploadRequest struct {
	Reader       io.Reader
	Filename     string
	ContentType  string
	DeclaredSize int64
}

// UploadResult describes a completed upload.
type UploadResult struct {
	StorageKey   string `json:"storage_key"`
	PublicURL    string `json:"url"`
	OriginalName string `json:"original_name"`
	ContentType  string `json:"content_type"`
	Size         int64  `json:"size"`
	Checksum     string `json:"checksum"`
}

// UploadService validates incoming uploads and streams accepted ones to
// the storage backend.
type UploadService struct {
	backend storage.Backend
	policy  UploadPolicy
	logger  *logger.Logger
}

// NewUploadService creates the upload pipeline over the given backend.
func NewUploadService(backend storage.Backend, policy UploadPolicy, log *logger.Logger) *UploadService {
	return &UploadService{backend: backend, policy: policy, logger: log}
}

// Upload runs the full acceptance pipeline: size and type validation,
// key generation, and the streaming write. The stream is hashed and
// counted as it passes through; it is never buffered in memory or
// trusted to match its declared size. On any failure the backend holds
// no object under the generated key.
func (s *UploadService) Upload(ctx context.Context, req UploadRequest) (*UploadResult, error) {
	if req.Reader == nil {
		return nil, ErrInvalidRequest
	}
	if req.DeclaredSize > s.policy.MaxBytes {
		return nil, ErrFileTooLarge
	}

	name := sanitize.Filename(req.Filename)
	if name == "" {
		name = constants.FallbackFilename
	}

	declared := normalizeMediaType(req.ContentType)
	if declared == "" {
		declared = constants.DefaultContentType
	}
	if !s.policy.Allows(declared) {
		return nil, ErrUnsupportedType
	}

	// Sniff the leading bytes without consuming them. A conclusive
	// sniff that is neither allowed nor a known container form of the
	// declared type is rejected.
	br := bufio.NewReaderSize(req.Reader, constants.SniffLen)
	head, err := br.Peek(constants.SniffLen)
	if err != nil && err != io.EOF {
		return nil, WrapInternalError(err)
	}
	sniffed := normalizeMediaType(http.DetectContentType(head))
	if sniffed != constants.DefaultContentType &&
		!s.policy.Allows(sniffed) &&
		!mimeCompatible(declared, sniffed) {
		s.logger.Warn("Upload: rejected %s: declared %s but content looks like %s", name, declared, sniffed)
		return nil, ErrUnsupportedType
	}

	key := fmt.Sprintf("%s/%d-%s-%s",
		BucketFor(declared), time.Now().UnixMilli(), shortID(), name)

	hasher := blake3.New()
	counted := &countingReader{r: io.TeeReader(br, hasher)}
	capped := &cappedReader{r: counted, remaining: s.policy.MaxBytes}

	url, err := s.backend.Store(ctx, key, capped, declared)
	if err != nil {
		if errors.Is(err, errStreamTooLarge) {
			s.logger.Warn("Upload: rejected %s: stream exceeded %d bytes", name, s.policy.MaxBytes)
			return nil, ErrFileTooLarge
		}
		s.logger.Error("Upload: backend store failed for %s: %v", key, err)
		return nil, WrapBackendError(err)
	}

	s.logger.Info("Upload: stored %s (%d bytes, %s)", key, counted.n, declared)
	return &UploadResult{
		StorageKey:   key,
		PublicURL:    url,
		OriginalName: name,
		ContentType:  declared,
		Size:         counted.n,
		Checksum:     hex.EncodeToString(hasher.Sum(nil)),
	}, nil
}

// normalizeMediaType lowercases a content type and strips parameters.
func normalizeMediaType(ct string) string {
	mediaType, _, err := mime.ParseMediaType(ct)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(strings.SplitN(ct, ";", 2)[0]))
	}
	return mediaType
}

// mimeCompatible reports whether a sniffed type is an expected container
// form of the declared type. Office documents are zip archives, legacy
// office documents are OLE storages, and sniffing cannot tell text
// subtypes apart.
func mimeCompatible(declared, sniffed string) bool {
	switch declared {
	case "application/vnd.openxmlformats-officedocument.wordprocessingml.document":
		return sniffed == "application/zip"
	case "application/msword":
		return sniffed == "application/zip" || sniffed == "application/x-ole-storage"
	case "text/plain":
		return strings.HasPrefix(sniffed, "text/")
	}
	return false
}

// shortID returns a compact random component for storage keys.
func shortID() string {
	id := uuid.New()
	return hex.EncodeToString(id[:4])
}

// cappedReader passes through at most remaining bytes and fails with
// errStreamTooLarge once the cap is exceeded.
type cappedReader struct {
	r         io.Reader
	remaining int64
}

func (c *cappedReader) Read(p []byte) (int, error) {
	if c.remaining < 0 {
		return 0, errStreamTooLarge
	}
	if int64(len(p)) > c.remaining+1 {
		// Read one byte past the cap so overflow is detectable.
		p = p[:c.remaining+1]
	}
	n, err := c.r.Read(p)
	c.remaining -= int64(n)
	if c.remaining < 0 {
		return n, errStreamTooLarge
	}
	return n, err
}

// countingReader counts bytes as they pass through.
type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}
