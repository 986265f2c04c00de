// backend-go/internal/service/outcome.go
package service

// Saving a power range is a two-phase write: the database first, then the
// Redis mirror. The outcome keeps both legs explicit so the HTTP layer can
// decide the messaging instead of a swallowed try/catch: a failed mirror
// after a successful remote write is a warning, not a failure.

type LegStatus string

const (
	LegOK      LegStatus = "ok"
	LegFailed  LegStatus = "failed"
	LegSkipped LegStatus = "skipped"
)

// WriteOutcome reports both legs of a two-phase write.
type WriteOutcome struct {
	Remote    LegStatus
	RemoteErr error
	Cache     LegStatus
	CacheErr  error
}

// Complete reports whether the write took effect: the remote store is the
// source of truth, so a successful remote leg is enough.
func (o WriteOutcome) Complete() bool { return o.Remote == LegOK }

// Degraded reports a completed write whose cache leg failed; a subsequent
// refresh reconciles the mirror.
func (o WriteOutcome) Degraded() bool { return o.Remote == LegOK && o.Cache == LegFailed }
