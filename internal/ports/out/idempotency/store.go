package idempotency

import (
	"context"
	"time"

	"github.com/newmeca/membership-api/internal/domain"
)

// Key is the caller-provided idempotency key (Idempotency-Key header).
type Key string

// Fingerprint identifies a request uniquely for idempotency purposes.
//
// Strategy: key + route + requesting profile + request body hash. Route is
// HTTP method plus normalized path template (e.g. "POST /memberships/secondary").
// Secondary provisioning is the main consumer: a retried create must not bill
// the master twice.
type Fingerprint struct {
	Key      Key
	Profile  domain.ProfileID
	Method   string
	Route    string
	BodyHash string
}

// Record is the stored response we can replay for a duplicate request.
type Record struct {
	StatusCode  int
	ContentType string
	Body        []byte
	CreatedAt   time.Time
}

// Store persists idempotency records for replaying safe responses on retries.
type Store interface {
	Get(ctx context.Context, fp Fingerprint) (Record, bool, error)
	Put(ctx context.Context, fp Fingerprint, rec Record) error
}
