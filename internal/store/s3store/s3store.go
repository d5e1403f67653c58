// Package s3store is the reference BinaryService backed by an S3-compatible
// object store, grounded on storage/s3aws.go and storage/s3_interface.go's
// S3Client DI seam from the teacher.
package s3store

import (
	"context"
	"crypto/md5"
	"crypto/sha1"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"hash"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/trellis-ldp/ldpcore/pkg/ldp/apierror"
)

// digestAlgorithms lists the digest algorithm names Digest accepts, in
// Want-Digest preference order (§4.7.1 step 4, §6).
var digestAlgorithms = []string{"md5", "sha-256", "sha"}

// Client abstracts the AWS S3 SDK client to enable dependency injection and
// testing with mock implementations (mirrors storage.S3Client exactly). The
// multipart methods are required so a Client can also back manager.Uploader,
// which transparently switches to multipart for objects above its part-size
// threshold the way storage/s3aws.go's HetznerUploaderFile does.
type Client interface {
	manager.UploadAPIClient
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// Store is the services.BinaryService implementation backed by a single
// S3-compatible bucket.
type Store struct {
	Client   Client
	Bucket   string
	uploader *manager.Uploader
	logger   *logrus.Logger
}

// New builds a Store over an already-configured S3 client, wrapping it in
// a manager.Uploader for Put so large binaries are split into multipart
// uploads automatically rather than failing a single PutObject call.
func New(client Client, bucket string) *Store {
	return &Store{Client: client, Bucket: bucket, uploader: manager.NewUploader(client)}
}

// WithLogger attaches a logger Put uses to report each upload's
// human-readable size, returning s for chaining at construction time.
func (s *Store) WithLogger(logger *logrus.Logger) *Store {
	s.logger = logger
	return s
}

// Resolver allocates a fresh object key for a new binary, scoped under the
// resource's internal identifier so a key collision across partitions is
// impossible.
func (s *Store) Resolver(ctx context.Context, internalID string) (string, error) {
	return fmt.Sprintf("%s/%s", internalID, uuid.NewString()), nil
}

// Put uploads content as the object at binaryID via manager.Uploader,
// which transparently multiparts large bodies instead of requiring the
// caller to size-check and branch into §4.8's upload state machine itself.
func (s *Store) Put(ctx context.Context, binaryID string, content io.Reader, size int64, mimeType string) error {
	_, err := s.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.Bucket),
		Key:           aws.String(binaryID),
		Body:          content,
		ContentLength: aws.Int64(size),
		ContentType:   aws.String(mimeType),
	})
	if err != nil {
		return apierror.Internal(err, "failed to upload object %s", binaryID)
	}
	if s.logger != nil {
		s.logger.Debugf("uploaded %s (%s)", binaryID, humanize.Bytes(uint64(size)))
	}
	return nil
}

// Get opens the object at binaryID, optionally restricted to a byte range.
func (s *Store) Get(ctx context.Context, binaryID string, rangeStart, rangeEnd int64, hasRange bool) (io.ReadCloser, error) {
	input := &s3.GetObjectInput{Bucket: aws.String(s.Bucket), Key: aws.String(binaryID)}
	if hasRange {
		input.Range = aws.String(fmt.Sprintf("bytes=%d-%d", rangeStart, rangeEnd))
	}
	out, err := s.Client.GetObject(ctx, input)
	if err != nil {
		return nil, apierror.Internal(err, "failed to fetch object %s", binaryID)
	}
	return out.Body, nil
}

// Delete removes the object at binaryID.
func (s *Store) Delete(ctx context.Context, binaryID string) error {
	_, err := s.Client.DeleteObject(ctx, &s3.DeleteObjectInput{Bucket: aws.String(s.Bucket), Key: aws.String(binaryID)})
	if err != nil {
		return apierror.Internal(err, "failed to delete object %s", binaryID)
	}
	return nil
}

// SupportedAlgorithms reports the digest algorithms this store can compute.
func (s *Store) SupportedAlgorithms() []string {
	return append([]string(nil), digestAlgorithms...)
}

// Digest streams the object at binaryID through algorithm's hash function,
// returning the base64-encoded result for a Digest response header.
func (s *Store) Digest(ctx context.Context, binaryID, algorithm string) (string, error) {
	var h hash.Hash
	switch strings.ToLower(algorithm) {
	case "md5":
		h = md5.New()
	case "sha":
		h = sha1.New()
	case "sha-256":
		h = sha256.New()
	default:
		return "", apierror.BadRequest(nil, "unsupported digest algorithm: %s", algorithm)
	}
	body, err := s.Get(ctx, binaryID, 0, 0, false)
	if err != nil {
		return "", err
	}
	defer body.Close()
	if _, err := io.Copy(h, body); err != nil {
		return "", apierror.Internal(err, "failed to compute %s digest for %s", algorithm, binaryID)
	}
	return base64.StdEncoding.EncodeToString(h.Sum(nil)), nil
}
