package deploy

import (
	"context"
	stderrors "errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/zenith-dev/zenith/internal/config"
	"github.com/zenith-dev/zenith/internal/errors"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// writeProject creates a project directory with the given zenith.json
// and files (paths relative to the project root, slash-separated).
func writeProject(t *testing.T, configJSON string, files map[string]string) *config.Config {
	t.Helper()
	dir := t.TempDir()

	if err := os.WriteFile(filepath.Join(dir, config.ConfigFileName), []byte(configJSON), 0644); err != nil {
		t.Fatal(err)
	}
	for name, content := range files {
		path := filepath.Join(dir, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}

	cfg, err := config.Load(dir)
	if err != nil {
		t.Fatalf("config.Load() failed: %v", err)
	}
	return cfg
}

type capturedPut struct {
	Bucket       string
	Key          string
	ContentType  string
	CacheControl string
	Body         string
}

// fakeS3 records uploads and deletes, and serves a fixed object
// listing.
type fakeS3 struct {
	mu      sync.Mutex
	puts    []capturedPut
	deleted []string
	objects []string
	putErr  error
}

func (f *fakeS3) PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.putErr != nil {
		return nil, f.putErr
	}

	body, err := io.ReadAll(params.Body)
	if err != nil {
		return nil, err
	}
	f.puts = append(f.puts, capturedPut{
		Bucket:       aws.ToString(params.Bucket),
		Key:          aws.ToString(params.Key),
		ContentType:  aws.ToString(params.ContentType),
		CacheControl: aws.ToString(params.CacheControl),
		Body:         string(body),
	})
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.deleted = append(f.deleted, aws.ToString(params.Key))
	return &s3.DeleteObjectOutput{}, nil
}

func (f *fakeS3) ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	prefix := aws.ToString(params.Prefix)
	var contents []types.Object
	for _, key := range f.objects {
		if strings.HasPrefix(key, prefix) {
			contents = append(contents, types.Object{Key: aws.String(key)})
		}
	}
	return &s3.ListObjectsV2Output{Contents: contents}, nil
}

func zenithErr(t *testing.T, err error) *errors.ZenithError {
	t.Helper()
	var ze *errors.ZenithError
	if !stderrors.As(err, &ze) {
		t.Fatalf("error type = %T, want *errors.ZenithError", err)
	}
	return ze
}

func TestDeploy_UploadsOutputTree(t *testing.T) {
	cfg := writeProject(t, `{"deploy": {"bucket": "zenith-site", "prefix": "v1"}}`, map[string]string{
		"dist/index.html":     "<!doctype html>",
		"dist/manifest.json":  `{"routes": []}`,
		"dist/static/app.css": "body{color:red}",
		"dist/.DS_Store":      "junk",
	})

	fake := &fakeS3{}
	var seen []string
	d := New(Options{
		Config:   cfg,
		Client:   fake,
		Logger:   discardLogger(),
		OnUpload: func(up Upload) { seen = append(seen, up.Key) },
	})

	result, err := d.Deploy(context.Background())
	if err != nil {
		t.Fatalf("Deploy() failed: %v", err)
	}

	if result.Bucket != "zenith-site" {
		t.Errorf("Bucket = %q, want zenith-site", result.Bucket)
	}
	if result.Uploaded != 3 {
		t.Errorf("Uploaded = %d, want 3", result.Uploaded)
	}
	wantBytes := int64(len("<!doctype html>") + len(`{"routes": []}`) + len("body{color:red}"))
	if result.Bytes != wantBytes {
		t.Errorf("Bytes = %d, want %d", result.Bytes, wantBytes)
	}

	wantKeys := []string{"v1/index.html", "v1/manifest.json", "v1/static/app.css"}
	if len(fake.puts) != len(wantKeys) {
		t.Fatalf("got %d uploads, want %d", len(fake.puts), len(wantKeys))
	}
	for i, want := range wantKeys {
		if fake.puts[i].Key != want {
			t.Errorf("puts[%d].Key = %q, want %q", i, fake.puts[i].Key, want)
		}
		if fake.puts[i].Bucket != "zenith-site" {
			t.Errorf("puts[%d].Bucket = %q, want zenith-site", i, fake.puts[i].Bucket)
		}
	}
	if len(seen) != len(wantKeys) || seen[0] != wantKeys[0] {
		t.Errorf("OnUpload keys = %v, want %v", seen, wantKeys)
	}

	if fake.puts[0].Body != "<!doctype html>" {
		t.Errorf("index.html body = %q", fake.puts[0].Body)
	}
	if !strings.HasPrefix(fake.puts[0].ContentType, "text/html") {
		t.Errorf("index.html ContentType = %q", fake.puts[0].ContentType)
	}
	if !strings.HasPrefix(fake.puts[2].ContentType, "text/css") {
		t.Errorf("app.css ContentType = %q", fake.puts[2].ContentType)
	}

	// Pages and the manifest revalidate; assets get the default policy.
	if fake.puts[0].CacheControl != "no-cache" {
		t.Errorf("index.html CacheControl = %q, want no-cache", fake.puts[0].CacheControl)
	}
	if fake.puts[1].CacheControl != "no-cache" {
		t.Errorf("manifest.json CacheControl = %q, want no-cache", fake.puts[1].CacheControl)
	}
	if fake.puts[2].CacheControl != DefaultCacheControl {
		t.Errorf("app.css CacheControl = %q, want %q", fake.puts[2].CacheControl, DefaultCacheControl)
	}
}

func TestDeploy_CustomCacheControl(t *testing.T) {
	cfg := writeProject(t, `{"deploy": {"bucket": "b", "cacheControl": "public, max-age=86400"}}`, map[string]string{
		"dist/static/app.js": "console.log(1)",
	})

	fake := &fakeS3{}
	d := New(Options{Config: cfg, Client: fake, Logger: discardLogger()})
	if _, err := d.Deploy(context.Background()); err != nil {
		t.Fatalf("Deploy() failed: %v", err)
	}

	if len(fake.puts) != 1 {
		t.Fatalf("got %d uploads, want 1", len(fake.puts))
	}
	if fake.puts[0].CacheControl != "public, max-age=86400" {
		t.Errorf("CacheControl = %q, want the configured value", fake.puts[0].CacheControl)
	}
}

func TestDeploy_DryRun(t *testing.T) {
	cfg := writeProject(t, `{"deploy": {"bucket": "b", "prefix": "v1"}}`, map[string]string{
		"dist/index.html": "<!doctype html>",
	})

	fake := &fakeS3{objects: []string{"v1/stale.css"}}
	d := New(Options{Config: cfg, Client: fake, Logger: discardLogger(), DryRun: true, Prune: true})

	result, err := d.Deploy(context.Background())
	if err != nil {
		t.Fatalf("Deploy() failed: %v", err)
	}

	if result.Uploaded != 1 {
		t.Errorf("Uploaded = %d, want 1", result.Uploaded)
	}
	if result.Deleted != 1 {
		t.Errorf("Deleted = %d, want 1", result.Deleted)
	}
	if len(fake.puts) != 0 {
		t.Errorf("dry run put %d objects, want 0", len(fake.puts))
	}
	if len(fake.deleted) != 0 {
		t.Errorf("dry run deleted %d objects, want 0", len(fake.deleted))
	}
}

func TestDeploy_PruneDeletesStaleObjects(t *testing.T) {
	cfg := writeProject(t, `{"deploy": {"bucket": "b", "prefix": "v1"}}`, map[string]string{
		"dist/index.html": "<!doctype html>",
	})

	fake := &fakeS3{objects: []string{
		"v1/index.html",
		"v1/old.css",
		"other/keep.js",
	}}
	d := New(Options{Config: cfg, Client: fake, Logger: discardLogger(), Prune: true})

	result, err := d.Deploy(context.Background())
	if err != nil {
		t.Fatalf("Deploy() failed: %v", err)
	}

	if result.Deleted != 1 {
		t.Errorf("Deleted = %d, want 1", result.Deleted)
	}
	if len(fake.deleted) != 1 || fake.deleted[0] != "v1/old.css" {
		t.Errorf("deleted = %v, want [v1/old.css]", fake.deleted)
	}
}

func TestDeploy_MissingBucket(t *testing.T) {
	cfg := writeProject(t, `{}`, map[string]string{
		"dist/index.html": "x",
	})

	d := New(Options{Config: cfg, Client: &fakeS3{}, Logger: discardLogger()})
	_, err := d.Deploy(context.Background())
	if err == nil {
		t.Fatal("Deploy() should fail without a bucket")
	}
	if ze := zenithErr(t, err); ze.Code != "Z080" {
		t.Errorf("Code = %q, want Z080", ze.Code)
	}
}

func TestDeploy_MissingOutputDir(t *testing.T) {
	cfg := writeProject(t, `{"deploy": {"bucket": "b"}}`, nil)

	d := New(Options{Config: cfg, Client: &fakeS3{}, Logger: discardLogger()})
	_, err := d.Deploy(context.Background())
	if err == nil {
		t.Fatal("Deploy() should fail without a build output directory")
	}
	if ze := zenithErr(t, err); ze.Code != "Z083" {
		t.Errorf("Code = %q, want Z083", ze.Code)
	}
}

func TestDeploy_UploadFailure(t *testing.T) {
	cfg := writeProject(t, `{"deploy": {"bucket": "b"}}`, map[string]string{
		"dist/index.html": "x",
	})

	cause := stderrors.New("access denied")
	d := New(Options{Config: cfg, Client: &fakeS3{putErr: cause}, Logger: discardLogger()})

	_, err := d.Deploy(context.Background())
	if err == nil {
		t.Fatal("Deploy() should surface upload errors")
	}
	ze := zenithErr(t, err)
	if ze.Code != "Z081" {
		t.Errorf("Code = %q, want Z081", ze.Code)
	}
	if !strings.Contains(ze.Detail, "index.html") {
		t.Errorf("Detail = %q, want the failing key", ze.Detail)
	}
	if !stderrors.Is(err, cause) {
		t.Error("Deploy() should wrap the underlying S3 error")
	}
}

func TestObjectKey(t *testing.T) {
	tests := []struct {
		prefix string
		rel    string
		want   string
	}{
		{"", "index.html", "index.html"},
		{"v1", "index.html", "v1/index.html"},
		{"/v1/", filepath.Join("static", "app.css"), "v1/static/app.css"},
		{"app/v2", filepath.Join("static", "img", "logo.png"), "app/v2/static/img/logo.png"},
	}

	for _, tt := range tests {
		if got := objectKey(tt.prefix, tt.rel); got != tt.want {
			t.Errorf("objectKey(%q, %q) = %q, want %q", tt.prefix, tt.rel, got, tt.want)
		}
	}
}

func TestContentTypeFor(t *testing.T) {
	tests := []struct {
		file string
		want string
	}{
		{"index.html", "text/html"},
		{"static/app.css", "text/css"},
		{"manifest.json", "application/json"},
		{"app.wasm", "application/wasm"},
		{"routes/index.zen", "application/octet-stream"},
		{"LICENSE", "application/octet-stream"},
	}

	for _, tt := range tests {
		if got := contentTypeFor(tt.file); !strings.HasPrefix(got, tt.want) {
			t.Errorf("contentTypeFor(%q) = %q, want prefix %q", tt.file, got, tt.want)
		}
	}

	// Platform mime tables disagree on the exact javascript type.
	if got := contentTypeFor("app.js"); !strings.Contains(got, "javascript") {
		t.Errorf("contentTypeFor(app.js) = %q, want a javascript type", got)
	}
}
