// Package predict evaluates a fixed feature vector against a small set of
// classifier models that are loaded once and shared read-only.
//
// A model file is a Rego module in package `model` whose `predict` rule
// yields the class label as a string. Training and feature engineering
// happen elsewhere; this package only loads and evaluates.
package predict

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/open-policy-agent/opa/v1/rego"
	gocache "github.com/patrickmn/go-cache"
	"golang.org/x/sync/errgroup"

	"github.com/anams/page-server/pkg/logger"
	"github.com/anams/page-server/pkg/metrics"
	"github.com/anams/page-server/pkg/telemetry"
)

const predictQuery = "data.model.predict"

// Result values reported in place of a class label
const (
	ResultLoadFailed  = "model load failed"
	ResultNoModels    = "no model available"
	resultErrorPrefix = "error: "
)

// ModelSpec names a model and the file it is loaded from
type ModelSpec struct {
	Key  string
	File string
}

// DefaultModels maps model keys to their files in the model directory
var DefaultModels = []ModelSpec{
	{Key: "rnn", File: "neural.rego"},
	{Key: "svm", File: "SVM.rego"},
	{Key: "knn", File: "kNN.rego"},
}

// Cache holds prepared models keyed by model key. It is filled once by
// NewCache and only read afterwards, so it is safe for concurrent use.
type Cache struct {
	specs  []ModelSpec
	models *gocache.Cache
	log    *logger.Logger
}

// NewCache loads every model in specs from dir. A model that cannot be read
// or compiled is logged and left unavailable; it is not retried.
func NewCache(ctx context.Context, dir string, specs []ModelSpec, log *logger.Logger) *Cache {
	if log == nil {
		log = logger.Discard(logger.ComponentPredict)
	}
	c := &Cache{
		specs:  append([]ModelSpec(nil), specs...),
		models: gocache.New(gocache.NoExpiration, 0),
		log:    log,
	}

	log.Info("Loading models", "dir", dir, "count", len(specs))
	for _, spec := range c.specs {
		query, err := loadModel(ctx, filepath.Join(dir, spec.File))
		if err != nil {
			log.Failure("Model unavailable", "model", spec.Key, "file", spec.File, "error", err)
			continue
		}
		c.models.Set(spec.Key, query, gocache.NoExpiration)
		log.Model(spec.Key, "Loaded", "file", spec.File)
	}
	return c
}

func loadModel(ctx context.Context, path string) (rego.PreparedEvalQuery, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return rego.PreparedEvalQuery{}, fmt.Errorf("model file not found: %s", path)
		}
		return rego.PreparedEvalQuery{}, fmt.Errorf("failed to read model: %w", err)
	}
	query, err := rego.New(
		rego.Query(predictQuery),
		rego.Module(filepath.Base(path), string(src)),
	).PrepareForEval(ctx)
	if err != nil {
		return rego.PreparedEvalQuery{}, fmt.Errorf("failed to compile model: %w", err)
	}
	return query, nil
}

// Keys returns the configured model keys in table order
func (c *Cache) Keys() []string {
	keys := make([]string, len(c.specs))
	for i, s := range c.specs {
		keys[i] = s.Key
	}
	return keys
}

// Available reports whether the model with key loaded successfully
func (c *Cache) Available(key string) bool {
	_, ok := c.models.Get(key)
	return ok
}

// Ready reports whether at least one model is available
func (c *Cache) Ready() bool {
	return c.models.ItemCount() > 0
}

func (c *Cache) model(key string) (rego.PreparedEvalQuery, bool) {
	v, ok := c.models.Get(key)
	if !ok {
		return rego.PreparedEvalQuery{}, false
	}
	q, ok := v.(rego.PreparedEvalQuery)
	return q, ok
}

// Predict evaluates in against every configured model concurrently and
// returns one entry per model, keyed by the upper-cased model key. Failures
// are reported in the value; Predict itself never fails.
func (c *Cache) Predict(ctx context.Context, in Input) map[string]string {
	out := make(map[string]string, len(c.specs))
	if !c.Ready() {
		for _, s := range c.specs {
			out[strings.ToUpper(s.Key)] = ResultNoModels
			metrics.Predictions.WithLabelValues(s.Key, "unavailable").Inc()
		}
		return out
	}

	results := make([]string, len(c.specs))
	g, gctx := errgroup.WithContext(ctx)
	for i, spec := range c.specs {
		g.Go(func() error {
			results[i] = c.predictOne(gctx, spec.Key, in)
			return nil
		})
	}
	_ = g.Wait()

	for i, s := range c.specs {
		out[strings.ToUpper(s.Key)] = results[i]
	}
	return out
}

func (c *Cache) predictOne(ctx context.Context, key string, in Input) string {
	ctx, span := telemetry.StartSpan(ctx, "model.predict", telemetry.AttrModel.String(key))
	defer span.End()

	query, ok := c.model(key)
	if !ok {
		metrics.Predictions.WithLabelValues(key, "unavailable").Inc()
		return ResultLoadFailed
	}

	start := time.Now()
	class, err := evaluate(ctx, query, in)
	if err != nil {
		telemetry.SetSpanError(span, err)
		metrics.Predictions.WithLabelValues(key, "error").Inc()
		c.log.Error("Prediction failed", "model", key, "error", err)
		return resultErrorPrefix + err.Error()
	}

	span.SetAttributes(telemetry.AttrClass.String(class))
	metrics.Predictions.WithLabelValues(key, "ok").Inc()
	c.log.Debug("Prediction", "model", key, "class", class, "elapsed", time.Since(start))
	return class
}

func evaluate(ctx context.Context, query rego.PreparedEvalQuery, in Input) (string, error) {
	rs, err := query.Eval(ctx, rego.EvalInput(in.regoInput()))
	if err != nil {
		return "", fmt.Errorf("evaluation error: %w", err)
	}
	if len(rs) == 0 || len(rs[0].Expressions) == 0 {
		return "", errors.New("model produced no class")
	}
	class, ok := rs[0].Expressions[0].Value.(string)
	if !ok {
		return "", fmt.Errorf("model returned %T, want string", rs[0].Expressions[0].Value)
	}
	return class, nil
}
