// Package multipart implements the large-binary upload state machine of
// §4.8: initiate, uploadPart, complete, and abort, backed by an
// UploadSession tracker (the reference implementation lives in
// internal/store/uploadsession, Redis-backed per the teacher's
// redis/go-redis/v9 usage elsewhere in the pack).
package multipart

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/trellis-ldp/ldpcore/pkg/ldp/apierror"
)

// PartState is the metadata recorded for one completed part.
type PartState struct {
	PartNumber int
	ETag       string
	Size       int64
}

// Session tracks a single in-progress multipart upload (§4.8).
type Session struct {
	UploadID   string
	BinaryID   string // the BinaryService identifier the final object lands at
	MimeType   string
	Partition  string
	StartedAt  time.Time
	Parts      map[int]PartState
}

// Tracker is the collaborator boundary a session store must satisfy —
// deliberately narrower than a full ResourceService/BinaryService since an
// upload session's lifetime is much shorter and its storage needs (TTL,
// part bookkeeping) are different enough to warrant a dedicated interface.
type Tracker interface {
	Save(ctx context.Context, s *Session) error
	Load(ctx context.Context, uploadID string) (*Session, error)
	Delete(ctx context.Context, uploadID string) error
}

// Backend is the minimal binary-storage capability multipart upload needs
// beyond services.BinaryService: a way to stage individual parts and later
// assemble them into the final object.
type Backend interface {
	PutPart(ctx context.Context, uploadID string, partNumber int, content []byte) (etag string, err error)
	Assemble(ctx context.Context, uploadID string, parts []PartState, destBinaryID string) error
	AbortParts(ctx context.Context, uploadID string) error
}

// Engine wires a Tracker and Backend together into the four operations
// §4.8 names.
type Engine struct {
	Tracker Tracker
	Backend Backend
}

// Initiate starts a new upload session for a partition and mime type.
func (e *Engine) Initiate(ctx context.Context, partition, binaryID, mimeType string, now time.Time) (*Session, error) {
	s := &Session{
		UploadID:  uuid.NewString(),
		BinaryID:  binaryID,
		MimeType:  mimeType,
		Partition: partition,
		StartedAt: now,
		Parts:     make(map[int]PartState),
	}
	if err := e.Tracker.Save(ctx, s); err != nil {
		return nil, apierror.Internal(err, "failed to start upload session")
	}
	return s, nil
}

// UploadPart stages one part of an in-progress upload.
func (e *Engine) UploadPart(ctx context.Context, uploadID string, partNumber int, content []byte) (PartState, error) {
	if partNumber < 1 {
		return PartState{}, apierror.BadRequest(nil, "part number must be >= 1, got %d", partNumber)
	}
	s, err := e.Tracker.Load(ctx, uploadID)
	if err != nil {
		return PartState{}, apierror.NotFound("no such upload session: %s", uploadID)
	}
	etag, err := e.Backend.PutPart(ctx, uploadID, partNumber, content)
	if err != nil {
		return PartState{}, apierror.Internal(err, "failed to stage part %d of %s", partNumber, uploadID)
	}
	part := PartState{PartNumber: partNumber, ETag: etag, Size: int64(len(content))}
	s.Parts[partNumber] = part
	if err := e.Tracker.Save(ctx, s); err != nil {
		return PartState{}, apierror.Internal(err, "failed to record part %d of %s", partNumber, uploadID)
	}
	return part, nil
}

// Complete assembles every staged part, in part-number order, into the
// session's destination binary, then clears the session.
func (e *Engine) Complete(ctx context.Context, uploadID string) error {
	s, err := e.Tracker.Load(ctx, uploadID)
	if err != nil {
		return apierror.NotFound("no such upload session: %s", uploadID)
	}
	if len(s.Parts) == 0 {
		return apierror.Conflict("upload %s has no parts to complete", uploadID)
	}

	parts := make([]PartState, 0, len(s.Parts))
	for _, p := range s.Parts {
		parts = append(parts, p)
	}
	sort.Slice(parts, func(i, j int) bool { return parts[i].PartNumber < parts[j].PartNumber })
	for i, p := range parts {
		if p.PartNumber != i+1 {
			return apierror.Conflict("upload %s is missing part %d", uploadID, i+1)
		}
	}

	if err := e.Backend.Assemble(ctx, uploadID, parts, s.BinaryID); err != nil {
		return apierror.Internal(err, "failed to assemble upload %s", uploadID)
	}
	return e.Tracker.Delete(ctx, uploadID)
}

// Abort discards an in-progress upload and its staged parts.
func (e *Engine) Abort(ctx context.Context, uploadID string) error {
	if _, err := e.Tracker.Load(ctx, uploadID); err != nil {
		return apierror.NotFound("no such upload session: %s", uploadID)
	}
	if err := e.Backend.AbortParts(ctx, uploadID); err != nil {
		return apierror.Internal(err, "failed to abort parts for upload %s", uploadID)
	}
	return e.Tracker.Delete(ctx, uploadID)
}

// UploadURL builds the external path convention for referring to a part of
// an in-progress upload (§4.8): `/upload/<partition>/<uploadId>/<partNumber>`.
func UploadURL(partition, uploadID string, partNumber int) string {
	if partNumber <= 0 {
		return fmt.Sprintf("/upload/%s/%s", partition, uploadID)
	}
	return fmt.Sprintf("/upload/%s/%s/%d", partition, uploadID, partNumber)
}
