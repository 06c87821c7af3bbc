package registry

import (
	"context"
	"errors"
	"sort"
	"strings"

	"github.com/anams/page-server/pkg/document"
	"github.com/anams/page-server/pkg/logger"
	"github.com/anams/page-server/pkg/metrics"
	"github.com/anams/page-server/pkg/storage"
	"github.com/anams/page-server/pkg/telemetry"
)

// Dynamic rebuilds its listing from a storage backend on every List call
type Dynamic struct {
	store  storage.AssetStorage
	suffix string
	log    *logger.Logger
}

// NewDynamic creates a registry that lists keys ending in suffix
func NewDynamic(store storage.AssetStorage, suffix string, log *logger.Logger) *Dynamic {
	if log == nil {
		log = logger.Discard(logger.ComponentRegistry)
	}
	return &Dynamic{store: store, suffix: suffix, log: log}
}

// List scans the backend. A missing root, an unreadable root or a root with
// no matching keys all yield an empty listing and a logged warning.
func (d *Dynamic) List(ctx context.Context) []Entry {
	ctx, span := telemetry.StartSpan(ctx, "registry.scan",
		telemetry.AttrRegistry.String(d.Mode()),
		telemetry.AttrBackend.String(d.store.Backend()),
	)
	defer span.End()

	keys, err := d.store.List(ctx)
	if err != nil {
		var nf *storage.ErrNotFound
		if errors.As(err, &nf) {
			d.log.Warn("Document directory does not exist", "location", nf.Location)
		} else {
			telemetry.SetSpanError(span, err)
			d.log.Warn("Failed to scan documents", "error", err)
		}
		recordSize(d.Mode(), 0)
		return []Entry{}
	}

	entries, skipped := Scan(keys, d.suffix)
	for _, sk := range skipped {
		d.log.Warn("Skipping document with unsupported name", "key", sk.Key, "error", sk.Err)
	}
	switch {
	case len(entries) == 0 && len(skipped) > 0:
		d.log.Warn("No usable documents found", "location", d.store.Location(""), "suffix", d.suffix, "skipped", len(skipped))
	case len(entries) == 0:
		d.log.Warn("No documents found", "location", d.store.Location(""), "suffix", d.suffix)
	}
	recordSize(d.Mode(), len(entries))
	return entries
}

// Mode returns "dynamic"
func (d *Dynamic) Mode() string {
	return "dynamic"
}

// Skipped is a key that carried the suffix but is not a usable document ID
type Skipped struct {
	Key string
	Err error
}

// Scan turns raw keys into entries: keys with the suffix (and a non-empty
// stem) that are valid document IDs, sorted lexicographically by key, with
// the suffix removed to form the name. Keys with the suffix that fail ID
// validation are returned in skipped, sorted by key.
func Scan(keys []string, suffix string) (entries []Entry, skipped []Skipped) {
	matched := make([]string, 0, len(keys))
	for _, k := range keys {
		if !strings.HasSuffix(k, suffix) || len(k) == len(suffix) {
			continue
		}
		if err := document.ValidateID(document.ID(k)); err != nil {
			skipped = append(skipped, Skipped{Key: k, Err: err})
			continue
		}
		matched = append(matched, k)
	}
	sort.Strings(matched)
	sort.Slice(skipped, func(i, j int) bool { return skipped[i].Key < skipped[j].Key })

	entries = make([]Entry, 0, len(matched))
	for _, k := range matched {
		entries = append(entries, Entry{
			Name: strings.TrimSuffix(k, suffix),
			ID:   document.ID(k),
		})
	}
	return entries, skipped
}

func recordSize(mode string, n int) {
	metrics.RegistryDocuments.WithLabelValues(mode).Set(float64(n))
}
