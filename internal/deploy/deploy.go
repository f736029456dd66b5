package deploy

import (
	"context"
	"io/fs"
	"log/slog"
	"mime"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/zenith-dev/zenith/internal/config"
	"github.com/zenith-dev/zenith/internal/errors"
)

// DefaultCacheControl is applied to uploaded assets when
// deploy.cacheControl is not set in zenith.json.
const DefaultCacheControl = "public, max-age=3600"

// S3Client is the subset of the AWS S3 API the deployer calls.
// *s3.Client satisfies it.
type S3Client interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
	ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
}

// Options configures a Deployer.
type Options struct {
	// Config is the project configuration. Required.
	Config *config.Config

	// Client uploads objects. When nil, Deploy builds one from the
	// default AWS credential chain via NewClient.
	Client S3Client

	// Logger receives deploy progress. Defaults to slog.Default().
	Logger *slog.Logger

	// DryRun logs what would be uploaded or deleted without touching
	// the bucket.
	DryRun bool

	// Prune deletes objects under the key prefix that are not part of
	// the current deploy.
	Prune bool

	// OnUpload is called after each file upload.
	OnUpload func(up Upload)
}

// Upload describes a single deployed file.
type Upload struct {
	// Key is the object key within the bucket.
	Key string

	// Path is the local file the object came from.
	Path string

	// Size is the file size in bytes.
	Size int64

	// ContentType is the Content-Type the object was stored with.
	ContentType string
}

// Result summarizes a completed deploy.
type Result struct {
	// Bucket is the bucket files were uploaded to.
	Bucket string

	// Uploaded is the number of files uploaded. With DryRun it counts
	// the files that would have been uploaded.
	Uploaded int

	// Deleted is the number of stale objects removed by Prune.
	Deleted int

	// Bytes is the total size of the uploaded files.
	Bytes int64

	// Duration is how long the deploy took.
	Duration time.Duration
}

// Deployer uploads a build output directory to S3.
type Deployer struct {
	cfg      *config.Config
	client   S3Client
	logger   *slog.Logger
	dryRun   bool
	prune    bool
	onUpload func(up Upload)
}

// New creates a Deployer from the given options.
func New(options Options) *Deployer {
	logger := options.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Deployer{
		cfg:      options.Config,
		client:   options.Client,
		logger:   logger.With("component", "deploy"),
		dryRun:   options.DryRun,
		prune:    options.Prune,
		onUpload: options.OnUpload,
	}
}

// NewClient builds an S3 client from the default AWS credential chain
// and the configured deploy region.
func NewClient(ctx context.Context, cfg *config.Config) (*s3.Client, error) {
	var optFns []func(*awsconfig.LoadOptions) error
	if cfg.Deploy.Region != "" {
		optFns = append(optFns, awsconfig.WithRegion(cfg.Deploy.Region))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, optFns...)
	if err != nil {
		return nil, errors.New("Z082").Wrap(err)
	}

	return s3.NewFromConfig(awsCfg), nil
}

// Deploy uploads every file under the build output directory to the
// configured bucket. Object keys mirror the directory layout under
// deploy.prefix. Hidden files are skipped.
func (d *Deployer) Deploy(ctx context.Context) (*Result, error) {
	start := time.Now()

	bucket := d.cfg.Deploy.Bucket
	if bucket == "" {
		return nil, errors.New("Z080")
	}

	root := d.cfg.OutputPath()
	info, err := os.Stat(root)
	if err != nil || !info.IsDir() {
		return nil, errors.New("Z083").
			WithDetail("Build output directory " + d.cfg.Build.Output + " does not exist").
			WithSuggestion("Run 'zenith gen manifest' to build the project first")
	}

	if d.client == nil {
		client, err := NewClient(ctx, d.cfg)
		if err != nil {
			return nil, err
		}
		d.client = client
	}

	files, err := collectFiles(root)
	if err != nil {
		return nil, errors.New("Z083").
			WithDetail("Could not read " + d.cfg.Build.Output).
			Wrap(err)
	}

	result := &Result{Bucket: bucket}
	kept := make(map[string]bool, len(files))
	for _, file := range files {
		up, err := d.uploadFile(ctx, bucket, root, file)
		if err != nil {
			return nil, err
		}
		kept[up.Key] = true
		result.Uploaded++
		result.Bytes += up.Size
		if d.onUpload != nil {
			d.onUpload(up)
		}
	}

	if d.prune {
		deleted, err := d.pruneStale(ctx, bucket, kept)
		if err != nil {
			return nil, err
		}
		result.Deleted = deleted
	}

	result.Duration = time.Since(start)
	d.logger.Info("deploy complete",
		"bucket", bucket,
		"files", result.Uploaded,
		"deleted", result.Deleted,
		"bytes", result.Bytes,
		"duration", result.Duration,
		"dryRun", d.dryRun)
	return result, nil
}

// uploadFile puts a single file into the bucket.
func (d *Deployer) uploadFile(ctx context.Context, bucket, root, file string) (Upload, error) {
	rel, err := filepath.Rel(root, file)
	if err != nil {
		return Upload{}, errors.New("Z081").Wrap(err)
	}

	info, err := os.Stat(file)
	if err != nil {
		return Upload{}, errors.New("Z081").
			WithDetail("Could not read " + file).
			Wrap(err)
	}

	up := Upload{
		Key:         objectKey(d.cfg.Deploy.Prefix, rel),
		Path:        file,
		Size:        info.Size(),
		ContentType: contentTypeFor(file),
	}

	if d.dryRun {
		d.logger.Info("would upload", "key", up.Key, "size", up.Size)
		return up, nil
	}

	f, err := os.Open(file)
	if err != nil {
		return Upload{}, errors.New("Z081").
			WithDetail("Could not read " + file).
			Wrap(err)
	}
	defer f.Close()

	_, err = d.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:       aws.String(bucket),
		Key:          aws.String(up.Key),
		Body:         f,
		ContentType:  aws.String(up.ContentType),
		CacheControl: aws.String(d.cacheControlFor(rel)),
	})
	if err != nil {
		return Upload{}, errors.New("Z081").
			WithDetail("Uploading " + up.Key + " to bucket " + bucket).
			Wrap(err)
	}

	d.logger.Debug("uploaded",
		"key", up.Key,
		"size", up.Size,
		"contentType", up.ContentType)
	return up, nil
}

// pruneStale removes objects under the deploy prefix that were not
// part of this deploy. Objects outside the prefix are left alone.
func (d *Deployer) pruneStale(ctx context.Context, bucket string, kept map[string]bool) (int, error) {
	input := &s3.ListObjectsV2Input{
		Bucket: aws.String(bucket),
	}
	if prefix := strings.Trim(d.cfg.Deploy.Prefix, "/"); prefix != "" {
		input.Prefix = aws.String(prefix + "/")
	}

	deleted := 0
	paginator := s3.NewListObjectsV2Paginator(d.client, input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return deleted, errors.New("Z081").
				WithDetail("Listing bucket " + bucket).
				Wrap(err)
		}

		for _, obj := range page.Contents {
			key := aws.ToString(obj.Key)
			if kept[key] {
				continue
			}

			if d.dryRun {
				d.logger.Info("would delete", "key", key)
				deleted++
				continue
			}

			_, err := d.client.DeleteObject(ctx, &s3.DeleteObjectInput{
				Bucket: aws.String(bucket),
				Key:    aws.String(key),
			})
			if err != nil {
				return deleted, errors.New("Z081").
					WithDetail("Deleting stale object " + key).
					Wrap(err)
			}

			d.logger.Debug("deleted stale object", "key", key)
			deleted++
		}
	}

	return deleted, nil
}

// cacheControlFor returns the Cache-Control header for a file. HTML
// pages and the route manifest are always revalidated.
func (d *Deployer) cacheControlFor(rel string) string {
	base := filepath.Base(rel)
	if strings.HasSuffix(base, ".html") || base == "manifest.json" {
		return "no-cache"
	}
	if d.cfg.Deploy.CacheControl != "" {
		return d.cfg.Deploy.CacheControl
	}
	return DefaultCacheControl
}

// objectKey maps a file path relative to the output directory to its
// object key under the configured prefix.
func objectKey(prefix, rel string) string {
	key := filepath.ToSlash(rel)
	if prefix = strings.Trim(prefix, "/"); prefix != "" {
		key = path.Join(prefix, key)
	}
	return key
}

// contentTypeFor guesses the Content-Type for a file from its
// extension.
func contentTypeFor(file string) string {
	if ct := mime.TypeByExtension(strings.ToLower(filepath.Ext(file))); ct != "" {
		return ct
	}
	return "application/octet-stream"
}

// collectFiles lists every regular file under root in lexical order,
// skipping hidden files and directories.
func collectFiles(root string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(p string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if p != root && strings.HasPrefix(entry.Name(), ".") {
			if entry.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if !entry.IsDir() {
			files = append(files, p)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}
