package s3

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/aws/smithy-go"
	smithyhttp "github.com/aws/smithy-go/transport/http"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/williamokano/r2_uploader/pkg/storage"
)

type recordedRequest struct {
	method      string
	path        string
	contentType string
	auth        string
	body        []byte
}

func newRecordingServer(t *testing.T, status int, respBody string) (*httptest.Server, func() []recordedRequest) {
	t.Helper()

	var mu sync.Mutex
	var requests []recordedRequest

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		mu.Lock()
		requests = append(requests, recordedRequest{
			method:      r.Method,
			path:        r.URL.Path,
			contentType: r.Header.Get("Content-Type"),
			auth:        r.Header.Get("Authorization"),
			body:        body,
		})
		mu.Unlock()

		if status != http.StatusOK {
			w.Header().Set("Content-Type", "application/xml")
			w.WriteHeader(status)
			_, _ = io.WriteString(w, respBody)
			return
		}
		w.Header().Set("ETag", `"d41d8cd98f00b204e9800998ecf8427e"`)
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(srv.Close)

	return srv, func() []recordedRequest {
		mu.Lock()
		defer mu.Unlock()
		return append([]recordedRequest(nil), requests...)
	}
}

func testConfig(endpoint string) Config {
	return Config{
		Endpoint:        endpoint,
		Bucket:          "notes-assets",
		AccessKeyID:     "AKIDEXAMPLE",
		SecretAccessKey: "wJalrXUtnFEMI/K7MDENG+bPxRfiCYEXAMPLEKEY",
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		field   string
		message string
	}{
		{"complete", func(*Config) {}, "", ""},
		{"missing endpoint", func(c *Config) { c.Endpoint = "" }, "endpoint", "R2 settings are missing (endpoint)"},
		{"missing keys", func(c *Config) { c.AccessKeyID = ""; c.SecretAccessKey = "" }, "access key id", "R2 settings are missing (access key id, secret key)"},
		{"missing bucket", func(c *Config) { c.Bucket = "" }, "bucket", "bucket is empty"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig("https://example.r2.cloudflarestorage.com")
			tt.mutate(&cfg)

			err := cfg.Validate()
			if tt.field == "" {
				assert.NoError(t, err)
				return
			}

			require.Error(t, err)
			assert.ErrorIs(t, err, storage.ErrInvalidConfig)
			var cfgErr *storage.ConfigurationError
			require.True(t, errors.As(err, &cfgErr))
			assert.Equal(t, tt.field, cfgErr.Field)
			assert.Equal(t, tt.message, err.Error())
		})
	}
}

func TestConfig_GetRegion(t *testing.T) {
	assert.Equal(t, "auto", Config{}.GetRegion())
	assert.Equal(t, "eu-west-1", Config{Region: "eu-west-1"}.GetRegion())
}

func TestNew_MissingCredentials(t *testing.T) {
	_, err := New(context.Background(), Config{Bucket: "b"})
	assert.ErrorIs(t, err, storage.ErrInvalidConfig)
}

func TestStore_Put(t *testing.T) {
	t.Run("signed_path_style_put", func(t *testing.T) {
		srv, requests := newRecordingServer(t, http.StatusOK, "")

		store, err := New(context.Background(), testConfig(srv.URL))
		require.NoError(t, err)
		assert.Equal(t, "s3://notes-assets", store.Name())

		body := []byte("\x89PNG fake image")
		err = store.Put(context.Background(), "2025/01/Notes/My Photo-abc.PNG", "image/png", body)
		require.NoError(t, err)

		reqs := requests()
		require.Len(t, reqs, 1)
		assert.Equal(t, http.MethodPut, reqs[0].method)
		assert.Equal(t, "/notes-assets/2025/01/Notes/My Photo-abc.PNG", reqs[0].path)
		assert.Equal(t, "image/png", reqs[0].contentType)
		assert.Equal(t, body, reqs[0].body)
		assert.True(t, strings.HasPrefix(reqs[0].auth, "AWS4-HMAC-SHA256 "), "request must be SigV4 signed")
		assert.Contains(t, reqs[0].auth, "/auto/s3/aws4_request")
		assert.Contains(t, reqs[0].auth, "Credential=AKIDEXAMPLE/")
	})

	t.Run("default_content_type", func(t *testing.T) {
		srv, requests := newRecordingServer(t, http.StatusOK, "")

		store, err := New(context.Background(), testConfig(srv.URL))
		require.NoError(t, err)

		require.NoError(t, store.Put(context.Background(), "a/b.bin", "", []byte{1, 2, 3}))

		reqs := requests()
		require.Len(t, reqs, 1)
		assert.Equal(t, storage.DefaultContentType, reqs[0].contentType)
	})

	t.Run("access_denied_is_not_retried", func(t *testing.T) {
		srv, requests := newRecordingServer(t, http.StatusForbidden,
			`<?xml version="1.0" encoding="UTF-8"?><Error><Code>AccessDenied</Code><Message>Access Denied</Message></Error>`)

		store, err := New(context.Background(), testConfig(srv.URL))
		require.NoError(t, err)

		err = store.Put(context.Background(), "a.txt", "text/plain", []byte("x"))
		require.Error(t, err)
		assert.ErrorIs(t, err, storage.ErrUploadFailed)
		assert.ErrorIs(t, err, storage.ErrPermissionDenied)
		assert.Len(t, requests(), 1, "exactly one PUT, no retries")
	})

	t.Run("server_error_is_not_retried", func(t *testing.T) {
		srv, requests := newRecordingServer(t, http.StatusInternalServerError,
			`<?xml version="1.0" encoding="UTF-8"?><Error><Code>InternalError</Code><Message>oops</Message></Error>`)

		store, err := New(context.Background(), testConfig(srv.URL))
		require.NoError(t, err)

		err = store.Put(context.Background(), "a.txt", "text/plain", []byte("x"))
		require.Error(t, err)
		assert.ErrorIs(t, err, storage.ErrUploadFailed)
		assert.Len(t, requests(), 1)
	})

	t.Run("connection_refused", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		endpoint := srv.URL
		srv.Close()

		store, err := New(context.Background(), testConfig(endpoint))
		require.NoError(t, err)

		err = store.Put(context.Background(), "a.txt", "text/plain", []byte("x"))
		require.Error(t, err)
		assert.ErrorIs(t, err, storage.ErrUploadFailed)
		assert.ErrorIs(t, err, storage.ErrConnFailed)
	})
}

func TestClassifyError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"invalid key", &smithy.GenericAPIError{Code: "InvalidAccessKeyId"}, storage.ErrAuthFailed},
		{"bad signature", &smithy.GenericAPIError{Code: "SignatureDoesNotMatch"}, storage.ErrAuthFailed},
		{"access denied", &smithy.GenericAPIError{Code: "AccessDenied"}, storage.ErrPermissionDenied},
		{"no such bucket", &smithy.GenericAPIError{Code: "NoSuchBucket"}, nil},
		{"send failure", &smithyhttp.RequestSendError{Err: errors.New("dial tcp: refused")}, storage.ErrConnFailed},
		{"other", errors.New("boom"), nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, classifyError(tt.err))
		})
	}
}
