package storage

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// objectServer is an in-memory S3-compatible endpoint with one bucket,
// addressed path style
type objectServer struct {
	mu      sync.Mutex
	bucket  string
	objects map[string][]byte
}

func newObjectServer(t *testing.T, bucket string) (*objectServer, *httptest.Server) {
	t.Helper()
	s := &objectServer{bucket: bucket, objects: make(map[string][]byte)}
	srv := httptest.NewServer(s)
	t.Cleanup(srv.Close)
	return s, srv
}

func (s *objectServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	bucket, key, _ := strings.Cut(strings.TrimPrefix(r.URL.Path, "/"), "/")
	if bucket != s.bucket {
		writeS3Error(w, r, http.StatusNotFound, "NoSuchBucket")
		return
	}

	if key == "" {
		if r.URL.Query().Has("location") {
			w.Header().Set("Content-Type", "application/xml")
			fmt.Fprint(w, `<?xml version="1.0" encoding="UTF-8"?><LocationConstraint xmlns="http://s3.amazonaws.com/doc/2006-03-01/">us-east-1</LocationConstraint>`)
			return
		}
		w.WriteHeader(http.StatusOK)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	switch r.Method {
	case http.MethodPut:
		body, err := io.ReadAll(r.Body)
		if err != nil {
			writeS3Error(w, r, http.StatusBadRequest, "IncompleteBody")
			return
		}
		if strings.Contains(r.Header.Get("Content-Encoding"), "aws-chunked") ||
			strings.HasPrefix(r.Header.Get("X-Amz-Content-Sha256"), "STREAMING-") {
			if body, err = decodeChunked(body); err != nil {
				writeS3Error(w, r, http.StatusBadRequest, "IncompleteBody")
				return
			}
		}
		s.objects[key] = body
		w.Header().Set("ETag", `"`+strconv.Itoa(len(body))+`"`)
		w.WriteHeader(http.StatusOK)
	case http.MethodGet, http.MethodHead:
		data, ok := s.objects[key]
		if !ok {
			writeS3Error(w, r, http.StatusNotFound, "NoSuchKey")
			return
		}
		status := http.StatusOK
		if start, ok := rangeStart(r.Header.Get("Range")); ok && start < len(data) {
			w.Header().Set("Content-Range", fmt.Sprintf("bytes %d-%d/%d", start, len(data)-1, len(data)))
			data = data[start:]
			status = http.StatusPartialContent
		}
		w.Header().Set("Content-Type", "application/octet-stream")
		w.Header().Set("Content-Length", strconv.Itoa(len(data)))
		w.Header().Set("ETag", `"`+strconv.Itoa(len(s.objects[key]))+`"`)
		w.Header().Set("Last-Modified", time.Now().UTC().Format(http.TimeFormat))
		w.WriteHeader(status)
		if r.Method == http.MethodGet {
			w.Write(data)
		}
	case http.MethodDelete:
		delete(s.objects, key)
		w.WriteHeader(http.StatusNoContent)
	default:
		writeS3Error(w, r, http.StatusMethodNotAllowed, "MethodNotAllowed")
	}
}

func (s *objectServer) has(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.objects[key]
	return ok
}

func writeS3Error(w http.ResponseWriter, r *http.Request, status int, code string) {
	w.Header().Set("Content-Type", "application/xml")
	w.WriteHeader(status)
	if r.Method != http.MethodHead {
		fmt.Fprintf(w, `<?xml version="1.0" encoding="UTF-8"?><Error><Code>%s</Code><Message>%s</Message><Resource>%s</Resource><RequestId>1</RequestId></Error>`, code, code, r.URL.Path)
	}
}

// decodeChunked strips aws-chunked framing: "<hex size>[;ext]\r\n<data>\r\n" until a zero-size chunk
func decodeChunked(body []byte) ([]byte, error) {
	var out []byte
	r := bufio.NewReader(bytes.NewReader(body))
	for {
		line, err := r.ReadString('\n')
		if err != nil {
			return nil, err
		}
		sizeHex, _, _ := strings.Cut(strings.TrimRight(line, "\r\n"), ";")
		size, err := strconv.ParseInt(sizeHex, 16, 64)
		if err != nil {
			return nil, err
		}
		if size == 0 {
			return out, nil
		}
		chunk := make([]byte, size)
		if _, err := io.ReadFull(r, chunk); err != nil {
			return nil, err
		}
		out = append(out, chunk...)
		if _, err := r.ReadString('\n'); err != nil {
			return nil, err
		}
	}
}

func rangeStart(header string) (int, bool) {
	spec, ok := strings.CutPrefix(header, "bytes=")
	if !ok {
		return 0, false
	}
	from, _, _ := strings.Cut(spec, "-")
	start, err := strconv.Atoi(from)
	if err != nil {
		return 0, false
	}
	return start, true
}

type remoteBackend struct {
	name   string
	scheme string
	open   func(ctx context.Context, endpoint, bucket string) (Storage, error)
}

func remoteBackends() []remoteBackend {
	return []remoteBackend{
		{
			name:   "s3",
			scheme: s3Scheme,
			open: func(ctx context.Context, endpoint, bucket string) (Storage, error) {
				return NewS3Storage(ctx, StorageConfig{
					S3Bucket:     bucket,
					S3Region:     "us-east-1",
					S3Endpoint:   endpoint,
					AWSAccessKey: "test-access",
					AWSSecretKey: "test-secret",
				})
			},
		},
		{
			name:   "minio",
			scheme: minioScheme,
			open: func(ctx context.Context, endpoint, bucket string) (Storage, error) {
				return NewMinioStorage(ctx, StorageConfig{
					MinioEndpoint:  strings.TrimPrefix(endpoint, "http://"),
					MinioBucket:    bucket,
					MinioAccessKey: "test-access",
					MinioSecretKey: "test-secret",
				})
			},
		},
	}
}

func TestRemoteStoragePutGetDelete(t *testing.T) {
	for _, backend := range remoteBackends() {
		t.Run(backend.name, func(t *testing.T) {
			ctx := context.Background()
			server, srv := newObjectServer(t, "documents")

			st, err := backend.open(ctx, srv.URL, "documents")
			require.NoError(t, err)

			key := "client_1/petitions/20240510_093000_abcd1234_Contestacao.docx"
			data := bytes.Repeat([]byte("conteúdo da petição "), 512)

			loc, err := st.Put(ctx, key, data)
			require.NoError(t, err)
			assert.Equal(t, Location(backend.scheme+"://documents/"+key), loc)
			assert.Equal(t, backend.scheme, loc.Scheme())
			assert.True(t, server.has(key))

			rc, err := st.Get(ctx, loc)
			require.NoError(t, err)
			got, err := io.ReadAll(rc)
			require.NoError(t, err)
			require.NoError(t, rc.Close())
			assert.Equal(t, data, got)

			require.NoError(t, st.Delete(ctx, loc))
			assert.False(t, server.has(key))

			_, err = st.Get(ctx, loc)
			assert.ErrorIs(t, err, ErrNotFound)

			// deleting a missing object is not an error
			assert.NoError(t, st.Delete(ctx, loc))
		})
	}
}

func TestRemoteStorageRejectsForeignLocations(t *testing.T) {
	for _, backend := range remoteBackends() {
		t.Run(backend.name, func(t *testing.T) {
			ctx := context.Background()
			_, srv := newObjectServer(t, "documents")

			st, err := backend.open(ctx, srv.URL, "documents")
			require.NoError(t, err)

			_, err = st.Get(ctx, Location(backend.scheme+"://other/a.docx"))
			assert.ErrorIs(t, err, ErrInvalidLocation)
			assert.ErrorIs(t, st.Delete(ctx, Location(backend.scheme+"://other/a.docx")), ErrInvalidLocation)

			_, err = st.Get(ctx, Location("/var/data/a.docx"))
			assert.ErrorIs(t, err, ErrUnavailable)
		})
	}
}

func TestRemoteStorageMissingBucket(t *testing.T) {
	for _, backend := range remoteBackends() {
		t.Run(backend.name, func(t *testing.T) {
			_, srv := newObjectServer(t, "documents")

			_, err := backend.open(context.Background(), srv.URL, "missing")
			assert.ErrorIs(t, err, ErrUnavailable)
		})
	}
}
