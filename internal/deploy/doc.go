// Package deploy uploads a built Zenith project to Amazon S3.
//
// Deploy walks the build output directory and uploads every file to
// the bucket configured under "deploy" in zenith.json, preserving the
// directory layout under an optional key prefix. HTML pages and the
// route manifest are stored with a no-cache policy; other assets use
// the configured Cache-Control header. With Prune enabled, objects
// under the prefix that are no longer part of the build are deleted.
//
// Usage:
//
//	d := deploy.New(deploy.Options{Config: cfg})
//	result, err := d.Deploy(ctx)
package deploy
