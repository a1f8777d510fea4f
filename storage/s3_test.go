package storage

import (
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeS3 只实现路径风格的 Put/Get/Head/Delete/ListObjectsV2
type fakeS3 struct {
	mu      sync.Mutex
	bucket  string
	objects map[string][]byte
}

type listContent struct {
	Key          string `xml:"Key"`
	LastModified string `xml:"LastModified"`
	Size         int64  `xml:"Size"`
}

type listResult struct {
	XMLName     xml.Name      `xml:"ListBucketResult"`
	Xmlns       string        `xml:"xmlns,attr"`
	Name        string        `xml:"Name"`
	KeyCount    int           `xml:"KeyCount"`
	IsTruncated bool          `xml:"IsTruncated"`
	Contents    []listContent `xml:"Contents"`
}

func writeS3Error(w http.ResponseWriter, status int, code string) {
	w.Header().Set("Content-Type", "application/xml")
	w.WriteHeader(status)
	_, _ = fmt.Fprintf(w, `<?xml version="1.0" encoding="UTF-8"?><Error><Code>%s</Code><Message>%s</Message></Error>`, code, code)
}

func (f *fakeS3) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	path := strings.TrimPrefix(r.URL.Path, "/")
	bucket, key, _ := strings.Cut(path, "/")
	if bucket != f.bucket {
		writeS3Error(w, http.StatusNotFound, "NoSuchBucket")
		return
	}

	switch {
	case key == "" && r.Method == http.MethodGet:
		keys := make([]string, 0, len(f.objects))
		for k := range f.objects {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		res := listResult{Xmlns: "http://s3.amazonaws.com/doc/2006-03-01/", Name: f.bucket, KeyCount: len(keys)}
		for _, k := range keys {
			res.Contents = append(res.Contents, listContent{
				Key:          k,
				LastModified: "2024-01-01T00:00:00.000Z",
				Size:         int64(len(f.objects[k])),
			})
		}
		w.Header().Set("Content-Type", "application/xml")
		_ = xml.NewEncoder(w).Encode(res)
	case key == "" && r.Method == http.MethodHead:
		w.WriteHeader(http.StatusOK)
	case r.Method == http.MethodPut:
		if _, ok := f.objects[key]; ok && r.Header.Get("If-None-Match") == "*" {
			writeS3Error(w, http.StatusPreconditionFailed, "PreconditionFailed")
			return
		}
		data, err := io.ReadAll(r.Body)
		if err != nil {
			writeS3Error(w, http.StatusBadRequest, "IncompleteBody")
			return
		}
		f.objects[key] = data
		w.Header().Set("ETag", `"etag"`)
		w.WriteHeader(http.StatusOK)
	case r.Method == http.MethodGet:
		data, ok := f.objects[key]
		if !ok {
			writeS3Error(w, http.StatusNotFound, "NoSuchKey")
			return
		}
		w.Header().Set("Content-Length", fmt.Sprint(len(data)))
		_, _ = w.Write(data)
	case r.Method == http.MethodHead:
		data, ok := f.objects[key]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Length", fmt.Sprint(len(data)))
		w.WriteHeader(http.StatusOK)
	case r.Method == http.MethodDelete:
		delete(f.objects, key)
		w.WriteHeader(http.StatusNoContent)
	default:
		writeS3Error(w, http.StatusMethodNotAllowed, "MethodNotAllowed")
	}
}

func newTestS3Storage(t *testing.T) (*S3Storage, *fakeS3) {
	t.Helper()
	fake := &fakeS3{bucket: "photos", objects: make(map[string][]byte)}
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	client := s3.New(s3.Options{
		Region:                     "us-east-1",
		BaseEndpoint:               aws.String(srv.URL),
		UsePathStyle:               true,
		Credentials:                credentials.NewStaticCredentialsProvider("test", "test", ""),
		RequestChecksumCalculation: aws.RequestChecksumCalculationWhenRequired,
		ResponseChecksumValidation: aws.ResponseChecksumValidationWhenRequired,
	})
	return &S3Storage{client: client, bucket: fake.bucket}, fake
}

func TestS3StorageValidation(t *testing.T) {
	_, err := NewS3Storage(context.Background(), S3Config{})
	assert.EqualError(t, err, "s3 bucket is required")
}

func TestS3Storage_SaveGetDelete(t *testing.T) {
	s, _ := newTestS3Storage(t)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	name := "1700000000000000000_sunset.jpg"

	require.NoError(t, s.SaveWithContext(ctx, name, strings.NewReader("jpeg bytes")))

	exists, err := s.Exists(ctx, name)
	require.NoError(t, err)
	assert.True(t, exists)

	r, err := s.GetWithContext(ctx, name)
	require.NoError(t, err)
	data, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, "jpeg bytes", string(data))

	blobs, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, blobs, 1)
	assert.Equal(t, name, blobs[0].Name)
	assert.Equal(t, int64(len("jpeg bytes")), blobs[0].Size)

	require.NoError(t, s.DeleteWithContext(ctx, name))
	exists, err = s.Exists(ctx, name)
	require.NoError(t, err)
	assert.False(t, exists)

	_, err = s.GetWithContext(ctx, name)
	assert.True(t, errors.Is(err, ErrNotExist), "got %v", err)
	err = s.DeleteWithContext(ctx, name)
	assert.True(t, errors.Is(err, ErrNotExist), "got %v", err)
}

func TestS3Storage_NoOverwrite(t *testing.T) {
	s, fake := newTestS3Storage(t)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	name := "1700000000000000000_sunset.jpg"

	require.NoError(t, s.SaveWithContext(ctx, name, strings.NewReader("first")))
	err := s.SaveWithContext(ctx, name, strings.NewReader("second"))
	assert.True(t, errors.Is(err, ErrExist), "got %v", err)
	assert.Equal(t, "first", string(fake.objects[name]))
}

func TestS3PreconditionClassification(t *testing.T) {
	assert.True(t, isS3PreconditionFailed(&smithy.GenericAPIError{Code: "PreconditionFailed"}))
	assert.True(t, isS3PreconditionFailed(fmt.Errorf("wrapped: %w", &smithy.GenericAPIError{Code: "ConditionalRequestConflict"})))
	assert.False(t, isS3PreconditionFailed(&smithy.GenericAPIError{Code: "AccessDenied"}))
	assert.False(t, isS3PreconditionFailed(errors.New("connection refused")))
}
