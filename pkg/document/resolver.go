package document

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/anams/page-server/pkg/logger"
	"github.com/anams/page-server/pkg/metrics"
	"github.com/anams/page-server/pkg/storage"
	"github.com/anams/page-server/pkg/telemetry"
)

// Resolver turns a document ID into content or a typed failure. It holds no
// state besides its backend and never caches, so edits to an asset are
// visible on the next call. Safe for concurrent use.
type Resolver struct {
	store storage.AssetStorage
	log   *logger.Logger
}

// NewResolver creates a resolver reading from store
func NewResolver(store storage.AssetStorage, log *logger.Logger) *Resolver {
	if log == nil {
		log = logger.Discard(logger.ComponentResolver)
	}
	return &Resolver{store: store, log: log}
}

// Location returns where id would be read from
func (r *Resolver) Location(id ID) string {
	return r.store.Location(string(id))
}

// Resolve reads the asset for id. Every failure is returned as data; Resolve
// never returns an error or panics on a missing, unreadable or empty asset.
func (r *Resolver) Resolve(ctx context.Context, id ID) Resolved {
	backend := r.store.Backend()
	ctx, span := telemetry.StartSpan(ctx, "document.resolve",
		telemetry.AttrDocumentID.String(string(id)),
		telemetry.AttrBackend.String(backend),
	)
	defer span.End()

	start := time.Now()
	res := r.resolve(ctx, id)
	metrics.ResolveDuration.WithLabelValues(backend).Observe(time.Since(start).Seconds())
	metrics.Resolutions.WithLabelValues(backend, res.Outcome()).Inc()

	span.SetAttributes(
		telemetry.AttrLocation.String(res.Location),
		telemetry.AttrOutcome.String(res.Outcome()),
	)
	if res.OK() {
		telemetry.SetSpanOK(span)
		r.log.Debug("Resolved document", "document", id, "location", res.Location, "bytes", len(res.Content))
	} else {
		r.log.Failure("Document unavailable",
			"document", id,
			"reason", res.Failure.Reason,
			"location", res.Location,
			"detail", res.Failure.Detail)
	}
	return res
}

func (r *Resolver) resolve(ctx context.Context, id ID) Resolved {
	location := r.Location(id)

	if err := ValidateID(id); err != nil {
		return failure(id, location, NotFound, err.Error())
	}

	data, err := r.store.Get(ctx, string(id))
	if err != nil {
		var nf *storage.ErrNotFound
		if errors.As(err, &nf) {
			return failure(id, location, NotFound, "no asset at this location")
		}
		return failure(id, location, ReadError, err.Error())
	}

	if !utf8.Valid(data) {
		return failure(id, location, ReadError, "content is not valid UTF-8")
	}

	content := string(data)
	if strings.TrimSpace(content) == "" {
		return failure(id, location, EmptyContent, "asset is empty or whitespace-only")
	}

	return success(id, location, content)
}
