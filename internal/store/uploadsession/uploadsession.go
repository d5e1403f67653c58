// Package uploadsession is the Redis-backed multipart.Tracker, grounded on
// db/repository/redis.go's cache-key-prefix-plus-JSON-marshal pattern.
package uploadsession

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/trellis-ldp/ldpcore/pkg/ldp/apierror"
	"github.com/trellis-ldp/ldpcore/pkg/ldp/multipart"
)

const keyPrefix = "upload:"

// ttl bounds how long an abandoned upload session lingers in Redis before
// expiring on its own; §4.8 leaves cleanup of orphaned sessions
// unspecified, so this is a practical default rather than a protocol rule.
const ttl = 24 * time.Hour

// sessionDoc is the JSON shape stored in Redis; multipart.Session's map
// field needs explicit (de)serialization since Redis values are opaque
// byte strings.
type sessionDoc struct {
	UploadID  string                    `json:"uploadId"`
	BinaryID  string                    `json:"binaryId"`
	MimeType  string                    `json:"mimeType"`
	Partition string                    `json:"partition"`
	StartedAt time.Time                 `json:"startedAt"`
	Parts     map[int]multipart.PartState `json:"parts"`
}

// Tracker is the multipart.Tracker implementation over a Redis client.
type Tracker struct {
	Client *redis.Client
}

// New connects to Redis the way repository.NewRedisRepository does,
// pinging immediately so misconfiguration surfaces at startup.
func New(url string) (*Tracker, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, apierror.Internal(err, "failed to parse redis url")
	}
	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, apierror.Internal(err, "failed to connect to redis")
	}
	return &Tracker{Client: client}, nil
}

func (t *Tracker) Save(ctx context.Context, s *multipart.Session) error {
	doc := sessionDoc{
		UploadID:  s.UploadID,
		BinaryID:  s.BinaryID,
		MimeType:  s.MimeType,
		Partition: s.Partition,
		StartedAt: s.StartedAt,
		Parts:     s.Parts,
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return apierror.Internal(err, "failed to marshal upload session %s", s.UploadID)
	}
	if err := t.Client.Set(ctx, keyPrefix+s.UploadID, data, ttl).Err(); err != nil {
		return apierror.Internal(err, "failed to save upload session %s", s.UploadID)
	}
	return nil
}

func (t *Tracker) Load(ctx context.Context, uploadID string) (*multipart.Session, error) {
	data, err := t.Client.Get(ctx, keyPrefix+uploadID).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, apierror.NotFound("no such upload session: %s", uploadID)
	}
	if err != nil {
		return nil, apierror.Internal(err, "failed to load upload session %s", uploadID)
	}
	var doc sessionDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, apierror.Internal(err, "corrupt upload session %s", uploadID)
	}
	if doc.Parts == nil {
		doc.Parts = make(map[int]multipart.PartState)
	}
	return &multipart.Session{
		UploadID:  doc.UploadID,
		BinaryID:  doc.BinaryID,
		MimeType:  doc.MimeType,
		Partition: doc.Partition,
		StartedAt: doc.StartedAt,
		Parts:     doc.Parts,
	}, nil
}

func (t *Tracker) Delete(ctx context.Context, uploadID string) error {
	if err := t.Client.Del(ctx, keyPrefix+uploadID).Err(); err != nil {
		return apierror.Internal(err, "failed to delete upload session %s", uploadID)
	}
	return nil
}
