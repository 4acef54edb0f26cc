package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

var (
	// ErrNotFound is returned when no object exists at a location
	ErrNotFound = errors.New("object not found")
	// ErrUnavailable is returned when the backend cannot be reached or refuses the operation
	ErrUnavailable = errors.New("storage unavailable")
	// ErrInvalidLocation is returned for locations this backend did not produce
	ErrInvalidLocation = errors.New("invalid storage location")
)

// Location is the opaque locator returned by Put. Remote backends use
// "<scheme>://<bucket>/<key>"; local storage uses an absolute file path.
type Location string

// Scheme returns the locator scheme, or "" for filesystem paths
func (l Location) Scheme() string {
	if i := strings.Index(string(l), "://"); i > 0 {
		return string(l)[:i]
	}
	return ""
}

func (l Location) String() string {
	return string(l)
}

// Storage interface for document blob operations
type Storage interface {
	// Put stores data under key and returns its location
	Put(ctx context.Context, key string, data []byte) (Location, error)

	// Get opens the object at loc. The caller must close the reader.
	Get(ctx context.Context, loc Location) (io.ReadCloser, error)

	// Delete removes the object at loc. Deleting a missing object succeeds.
	Delete(ctx context.Context, loc Location) error
}

// StorageType represents the storage backend type
type StorageType string

const (
	StorageTypeLocal StorageType = "local"
	StorageTypeS3    StorageType = "s3"
	StorageTypeMinio StorageType = "minio"
)

// StorageConfig holds configuration for storage
type StorageConfig struct {
	Type      StorageType
	LocalPath string // For local storage and fallback

	S3Bucket     string
	S3Region     string
	S3Endpoint   string // Optional, for S3-compatible services
	AWSAccessKey string
	AWSSecretKey string

	MinioEndpoint  string
	MinioBucket    string
	MinioAccessKey string
	MinioSecretKey string
	MinioUseSSL    bool

	// FallbackLocal selects local storage when the remote backend cannot be initialized
	FallbackLocal bool
}

// NewStorage creates a new storage instance based on configuration
func NewStorage(ctx context.Context, cfg StorageConfig, logger zerolog.Logger) (Storage, error) {
	switch cfg.Type {
	case StorageTypeLocal, "":
		return NewLocalStorage(cfg.LocalPath)
	case StorageTypeS3:
		st, err := NewS3Storage(ctx, cfg)
		if err != nil {
			return fallbackToLocal(cfg, err, logger)
		}
		return st, nil
	case StorageTypeMinio:
		st, err := NewMinioStorage(ctx, cfg)
		if err != nil {
			return fallbackToLocal(cfg, err, logger)
		}
		return st, nil
	default:
		return nil, fmt.Errorf("unknown storage type: %s", cfg.Type)
	}
}

func fallbackToLocal(cfg StorageConfig, cause error, logger zerolog.Logger) (Storage, error) {
	if !cfg.FallbackLocal {
		return nil, cause
	}
	logger.Warn().
		Err(cause).
		Str("storage_type", string(cfg.Type)).
		Str("local_path", cfg.LocalPath).
		Msg("remote storage unavailable, falling back to local storage")
	return NewLocalStorage(cfg.LocalPath)
}

// Kind groups objects under a client prefix
type Kind string

const (
	KindThesis   Kind = "theses"
	KindPetition Kind = "petitions"
)

const maxSlugRunes = 80

// ObjectKey builds the key for a new object:
// client_<id>/<kind>/<YYYYMMDD_HHMMSS>_<random>_<title>.<ext>.
// The random component keeps keys unique for objects created within the same second.
func ObjectKey(clientID uuid.UUID, kind Kind, title, ext string, at time.Time) string {
	return fmt.Sprintf("client_%s/%s/%s_%s_%s%s",
		clientID, kind, at.UTC().Format("20060102_150405"), uuid.NewString()[:8], slugify(title), ext)
}

// slugify makes title safe as a single path segment
func slugify(title string) string {
	slug := strings.Join(strings.Fields(title), "_")
	slug = strings.Map(func(r rune) rune {
		switch {
		case r == '/', r == '\\', r == ':', r == '*', r == '?', r == '"', r == '<', r == '>', r == '|', r == '#', r == '%':
			return '_'
		case unicode.IsControl(r):
			return -1
		}
		return r
	}, slug)
	slug = strings.Trim(slug, ".")

	if runes := []rune(slug); len(runes) > maxSlugRunes {
		slug = string(runes[:maxSlugRunes])
	}
	if slug == "" {
		return "untitled"
	}
	return slug
}

// remoteLocation formats the locator of an object in a bucket
func remoteLocation(scheme, bucket, key string) Location {
	return Location(scheme + "://" + bucket + "/" + key)
}

// remoteKey extracts the key from a locator produced for scheme and bucket
func remoteKey(loc Location, scheme, bucket string) (string, error) {
	if loc.Scheme() != scheme {
		return "", fmt.Errorf("%w: %s storage cannot resolve %q", ErrUnavailable, scheme, loc)
	}
	prefix := scheme + "://" + bucket + "/"
	key, ok := strings.CutPrefix(string(loc), prefix)
	if !ok || key == "" {
		return "", fmt.Errorf("%w: %q is not in bucket %s", ErrInvalidLocation, loc, bucket)
	}
	return key, nil
}

// getContentType returns the content type based on key extension
func getContentType(key string) string {
	switch strings.ToLower(filepath.Ext(key)) {
	case ".docx":
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	case ".pdf":
		return "application/pdf"
	case ".txt":
		return "text/plain"
	default:
		return "application/octet-stream"
	}
}
