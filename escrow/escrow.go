package escrow

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/optioncounsel/escrow/internal/decryptor"
	"github.com/optioncounsel/escrow/internal/encryptor"
	"github.com/optioncounsel/escrow/internal/metrics"
	"github.com/optioncounsel/escrow/internal/model"
	"github.com/optioncounsel/escrow/internal/primitives"
	"github.com/optioncounsel/escrow/internal/useredit"
)

// KeySize is the required length, in bytes, of every symmetric key,
// passphrase, and sealed-box key this package's operations accept.
const KeySize = primitives.KeySize

// Engine is the cryptographic core. It holds no per-call state and no
// mutable shared resources beyond an optional logger and metrics
// recorder; multiple Engines may coexist freely.
type Engine struct {
	logger          *slog.Logger
	metrics         *metrics.Metrics
	parallelEncrypt bool
	clock           func() time.Time
}

// Option configures an Engine at construction time.
type Option func(*Engine)

// WithLogger attaches a diagnostic logger. The engine never logs key
// material, records, or shares through it — only operation-level
// counts and malformed-entry kinds.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// WithMetrics attaches a Prometheus metrics recorder.
func WithMetrics(m *metrics.Metrics) Option {
	return func(e *Engine) { e.metrics = m }
}

// WithParallelEncrypt enables fanning independent per-randID encryption
// work out over a bounded worker pool. The default is off, preserving
// the single-threaded baseline.
func WithParallelEncrypt() Option {
	return func(e *Engine) { e.parallelEncrypt = true }
}

// WithClock overrides the func Encrypt uses to stamp every produced
// EncryptedData's CreatedAt. New defaults it to time.Now, so CreatedAt is
// the wall-clock time unless a caller supplies a clock of its own (for
// example a fixed one in tests).
func WithClock(clock func() time.Time) Option {
	return func(e *Engine) { e.clock = clock }
}

// New builds an Engine from the given options.
func New(opts ...Option) *Engine {
	e := &Engine{logger: slog.New(slog.DiscardHandler), clock: time.Now}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Encrypt builds one submission per randID, fanned out across every OC in
// ocKeys, and merges them into a single EncryptedMap.
func (e *Engine) Encrypt(
	randIDs [][32]byte,
	record Record,
	ocKeys map[string][KeySize]byte,
	userPassphrase [KeySize]byte,
) (EncryptedMap, []Malformed) {
	if e.metrics != nil {
		e.metrics.EncryptCalls.Inc()
	}

	var result encryptor.Result
	if e.parallelEncrypt && len(randIDs) > 1 {
		result = e.encryptParallel(randIDs, record, ocKeys, userPassphrase)
	} else {
		result = encryptor.Encrypt(randIDs, record, ocKeys, userPassphrase, e.clock)
	}

	e.recordMalformed(result.Malformed)
	e.logger.Debug("encrypt complete", "randIDs", len(randIDs), "malformed", len(result.Malformed))

	return result.Map, result.Malformed
}

// encryptParallel fans independent per-randID encryption out over a
// bounded worker pool and merges the results, keeping Encrypt's output
// order-independent regardless of which worker finishes first.
func (e *Engine) encryptParallel(
	randIDs [][32]byte,
	record Record,
	ocKeys map[string][KeySize]byte,
	userPassphrase [KeySize]byte,
) encryptor.Result {
	results := make([]encryptor.Result, len(randIDs))

	g, _ := errgroup.WithContext(context.Background())
	g.SetLimit(8)

	for i, randID := range randIDs {
		i, randID := i, randID
		g.Go(func() error {
			results[i] = encryptor.Encrypt([][32]byte{randID}, record, ocKeys, userPassphrase, e.clock)
			return nil
		})
	}
	_ = g.Wait()

	merged := encryptor.Result{Map: make(model.EncryptedMap)}
	for _, r := range results {
		merged.Malformed = append(merged.Malformed, r.Malformed...)
		for pi, ocs := range r.Map {
			if merged.Map[pi] == nil {
				merged.Map[pi] = make(map[string][]model.EncryptedData)
			}
			for ocID, list := range ocs {
				merged.Map[pi][ocID] = append(merged.Map[pi][ocID], list...)
			}
		}
	}

	return merged
}

// Decrypt runs the try-every-partner O(n^2) pairing loop over one OC's
// view of a bucket of submissions.
func (e *Engine) Decrypt(entries []EncryptedData, ocPublic, ocSecret [KeySize]byte) ([]Record, []Malformed) {
	if e.metrics != nil {
		e.metrics.DecryptCalls.Inc()
	}

	result := decryptor.Decrypt(entries, ocPublic, ocSecret)
	e.recordDecryptMetrics(result)

	return result.Records, result.Malformed
}

// DecryptFast is an O(n) bucket-first alternate to Decrypt with an
// identical external contract: it reconstructs k once per matching-index
// bucket from the first pair of shares whose k opens a record key, then
// opens every share in the bucket with that k.
func (e *Engine) DecryptFast(entries []EncryptedData, ocPublic, ocSecret [KeySize]byte) ([]Record, []Malformed) {
	if e.metrics != nil {
		e.metrics.DecryptCalls.Inc()
	}

	result := decryptor.DecryptFast(entries, ocPublic, ocSecret)
	e.recordDecryptMetrics(result)

	return result.Records, result.Malformed
}

// DecryptUserRecord lets the original submitter read back their own
// record using only their passphrase.
func (e *Engine) DecryptUserRecord(userPassphrase [KeySize]byte, entries []EncryptedData) ([]Record, []Malformed) {
	if e.metrics != nil {
		e.metrics.UserEditCalls.Inc()
	}

	result := useredit.DecryptUserRecord(userPassphrase, entries)
	e.recordMalformed(result.Malformed)

	return result.Records, result.Malformed
}

// UpdateUserRecord rewrites eRecord in each entry in place with a fresh
// nonce and newRecord's plaintext.
func (e *Engine) UpdateUserRecord(userPassphrase [KeySize]byte, entries []EncryptedData, newRecord Record) []Malformed {
	if e.metrics != nil {
		e.metrics.UserEditCalls.Inc()
	}

	malformed := useredit.UpdateUserRecord(userPassphrase, entries, newRecord)
	e.recordMalformed(malformed)

	return malformed
}

func (e *Engine) recordDecryptMetrics(result decryptor.Result) {
	e.recordMalformed(result.Malformed)

	if e.metrics != nil {
		e.metrics.RecordsDecrypted.Add(float64(len(result.Records)))
		for _, size := range result.BucketSizes {
			e.metrics.PairReconstructions.Observe(float64(size))
		}
	}

	e.logger.Debug("decrypt complete", "records", len(result.Records), "malformed", len(result.Malformed))
}

func (e *Engine) recordMalformed(malformed []Malformed) {
	if e.metrics == nil {
		return
	}
	for _, m := range malformed {
		e.metrics.MalformedTotal.WithLabelValues(string(m.Kind)).Inc()
	}
}
