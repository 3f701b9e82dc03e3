// Package storage talks to the S3 compatible bucket holding image payloads.
package storage

import "time"

// ObjectStore defines presigning, existence checks and deletion of image objects.
// Implementations never return errors; failures are logged and reported as false.
type ObjectStore interface {
	// PresignUpload returns a URL the client can PUT the object to
	PresignUpload(key, contentType string, ttl time.Duration) (string, bool)
	// PresignDownload returns a time-limited GET URL for the object
	PresignDownload(key string, ttl time.Duration) (string, bool)
	// Exists reports whether the object is present in the bucket
	Exists(key string) bool
	// Delete removes the object
	Delete(key string) bool
	// TestConnection checks credentials and bucket access
	TestConnection() (ok bool, message string, latencyMs float64)
	// IsConfigured reports whether endpoint and credentials are set
	IsConfigured() bool
}
