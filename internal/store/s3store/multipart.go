package s3store

import (
	"bytes"
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/trellis-ldp/ldpcore/pkg/ldp/apierror"
	"github.com/trellis-ldp/ldpcore/pkg/ldp/multipart"
)

// MultipartClient is the slice of the S3 SDK the upload backend needs
// beyond Client, using S3's own native multipart upload API rather than
// staging parts locally.
type MultipartClient interface {
	CreateMultipartUpload(ctx context.Context, params *s3.CreateMultipartUploadInput, optFns ...func(*s3.Options)) (*s3.CreateMultipartUploadOutput, error)
	UploadPart(ctx context.Context, params *s3.UploadPartInput, optFns ...func(*s3.Options)) (*s3.UploadPartOutput, error)
	CompleteMultipartUpload(ctx context.Context, params *s3.CompleteMultipartUploadInput, optFns ...func(*s3.Options)) (*s3.CompleteMultipartUploadOutput, error)
	AbortMultipartUpload(ctx context.Context, params *s3.AbortMultipartUploadInput, optFns ...func(*s3.Options)) (*s3.AbortMultipartUploadOutput, error)
}

// s3Upload tracks the S3-side identity of one in-progress multipart upload.
type s3Upload struct {
	uploadID string // S3's UploadId
	key      string // destination object key
}

// Backend is the multipart.Backend implementation over S3's native
// multipart API. It keeps its own map from a multipart.Session's UploadID
// to the matching S3 upload, since multipart.Engine addresses uploads by
// its own UUID, not S3's.
type Backend struct {
	Client  MultipartClient
	Bucket  string
	uploads map[string]s3Upload
}

// NewBackend builds a Backend over an already-configured S3 client.
func NewBackend(client MultipartClient, bucket string) *Backend {
	return &Backend{Client: client, Bucket: bucket, uploads: make(map[string]s3Upload)}
}

// EnsureUpload must be called once, right after multipart.Engine.Initiate,
// with the session's real destination key — S3 requires the object key up
// front, before any part is staged, unlike multipart.Engine which only
// learns the destination at Complete time.
func (b *Backend) EnsureUpload(ctx context.Context, uploadID, destBinaryID string) error {
	if _, ok := b.uploads[uploadID]; ok {
		return nil
	}
	out, err := b.Client.CreateMultipartUpload(ctx, &s3.CreateMultipartUploadInput{
		Bucket: aws.String(b.Bucket),
		Key:    aws.String(destBinaryID),
	})
	if err != nil {
		return apierror.Internal(err, "failed to start S3 multipart upload for %s", destBinaryID)
	}
	b.uploads[uploadID] = s3Upload{uploadID: aws.ToString(out.UploadId), key: destBinaryID}
	return nil
}

// PutPart stages one part directly against S3. EnsureUpload must have been
// called for uploadID first.
func (b *Backend) PutPart(ctx context.Context, uploadID string, partNumber int, content []byte) (string, error) {
	u, ok := b.uploads[uploadID]
	if !ok {
		return "", apierror.Internal(nil, "EnsureUpload was not called for %s before PutPart", uploadID)
	}
	out, err := b.Client.UploadPart(ctx, &s3.UploadPartInput{
		Bucket:     aws.String(b.Bucket),
		Key:        aws.String(u.key),
		UploadId:   aws.String(u.uploadID),
		PartNumber: aws.Int32(int32(partNumber)),
		Body:       bytes.NewReader(content),
	})
	if err != nil {
		return "", apierror.Internal(err, "failed to upload part %d of %s", partNumber, uploadID)
	}
	return aws.ToString(out.ETag), nil
}

// Assemble completes the S3 multipart upload, producing the final object
// at destBinaryID.
func (b *Backend) Assemble(ctx context.Context, uploadID string, parts []multipart.PartState, destBinaryID string) error {
	u, ok := b.uploads[uploadID]
	if !ok {
		return apierror.Internal(nil, "no S3 multipart upload found for %s", uploadID)
	}
	completed := make([]types.CompletedPart, len(parts))
	for i, p := range parts {
		completed[i] = types.CompletedPart{ETag: aws.String(p.ETag), PartNumber: aws.Int32(int32(p.PartNumber))}
	}
	_, err := b.Client.CompleteMultipartUpload(ctx, &s3.CompleteMultipartUploadInput{
		Bucket:          aws.String(b.Bucket),
		Key:             aws.String(u.key),
		UploadId:        aws.String(u.uploadID),
		MultipartUpload: &types.CompletedMultipartUpload{Parts: completed},
	})
	if err != nil {
		return apierror.Internal(err, "failed to complete multipart upload %s -> %s", uploadID, destBinaryID)
	}
	delete(b.uploads, uploadID)
	return nil
}

// AbortParts cancels the S3 multipart upload and discards any staged parts.
func (b *Backend) AbortParts(ctx context.Context, uploadID string) error {
	u, ok := b.uploads[uploadID]
	if !ok {
		return nil
	}
	_, err := b.Client.AbortMultipartUpload(ctx, &s3.AbortMultipartUploadInput{
		Bucket:   aws.String(b.Bucket),
		Key:      aws.String(u.key),
		UploadId: aws.String(u.uploadID),
	})
	delete(b.uploads, uploadID)
	if err != nil {
		return apierror.Internal(err, "failed to abort multipart upload %s", uploadID)
	}
	return nil
}
