package export

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
)

func TestS3Uploader_ObjectKey(t *testing.T) {
	u := &S3Uploader{cfg: S3Config{Prefix: "exports/"}}

	if got := u.ObjectKey("/tmp/users.csv", ""); got != "exports/users.csv" {
		t.Errorf("Unexpected key: %s", got)
	}
	if got := u.ObjectKey("/tmp/users.csv", "daily/u.csv"); got != "exports/daily/u.csv" {
		t.Errorf("Unexpected key: %s", got)
	}

	bare := &S3Uploader{}
	if got := bare.ObjectKey("/tmp/users.csv", ""); got != "users.csv" {
		t.Errorf("Unexpected key: %s", got)
	}
}

func TestNewS3Uploader_RequiresBucket(t *testing.T) {
	if _, err := NewS3Uploader(context.Background(), S3Config{}); err == nil {
		t.Fatal("Expected error without bucket")
	}
}

func TestUploadS3_PathStyle(t *testing.T) {
	var (
		mu     sync.Mutex
		method string
		path   string
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		method, path = r.Method, r.URL.Path
		mu.Unlock()
		w.Header().Set("ETag", `"d41d8cd98f00b204e9800998ecf8427e"`)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	local := filepath.Join(t.TempDir(), "users.csv")
	if err := os.WriteFile(local, []byte("id\n1\n"), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	_, err := UploadS3(context.Background(), S3Config{
		Bucket:       "reports",
		Region:       "us-east-1",
		Endpoint:     server.URL,
		AccessKey:    "test",
		SecretKey:    "test",
		Prefix:       "exports",
		UsePathStyle: true,
	}, local, "")
	if err != nil {
		t.Fatalf("UploadS3 failed: %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if method != http.MethodPut || path != "/reports/exports/users.csv" {
		t.Errorf("Unexpected request: %s %s", method, path)
	}
}
