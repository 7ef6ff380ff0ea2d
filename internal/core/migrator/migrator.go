// Package migrator is the entry point callers use to bring records forward:
// single values through Convert and independent records in parallel through
// Batch.
package migrator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/zeusync/dataconverter/internal/core/converter"
	"github.com/zeusync/dataconverter/internal/core/observability/log"
	"github.com/zeusync/dataconverter/internal/core/types"
	"github.com/zeusync/dataconverter/internal/core/types/native"
	"github.com/zeusync/dataconverter/pkg/concurrent"
	"github.com/zeusync/dataconverter/pkg/encoding"
	"github.com/zeusync/dataconverter/pkg/sequence"
)

var ErrBackwards = errors.New("target version is older than source version")

// Converter is the dispatch surface of a frozen registry.
type Converter interface {
	ConvertMap(name string, data types.MapType, from, to converter.Version) (types.MapType, error)
	ConvertValue(name string, data any, from, to converter.Version) (any, error)
}

// Migrator runs conversions against one registry.
type Migrator struct {
	conv    Converter
	log     log.Log
	codec   encoding.Codec
	workers int
}

type Option func(*Migrator)

// WithWorkers bounds the goroutines used by Batch. Zero means one per CPU.
func WithWorkers(n int) Option {
	return func(m *Migrator) { m.workers = n }
}

// New returns a migrator. Fingerprints are computed over deterministic CBOR.
func New(conv Converter, logger log.Log, opts ...Option) (*Migrator, error) {
	if logger == nil {
		logger = log.NewNop()
	}
	codec, err := native.NewCodec()
	if err != nil {
		return nil, fmt.Errorf("cbor codec: %w", err)
	}
	m := &Migrator{
		conv:  conv,
		log:   logger.With(log.String("component", "migrator")),
		codec: codec,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// Convert advances one value of type typ. Maps go through the map dispatch,
// anything else through the value dispatch. An absent value stays absent.
func (m *Migrator) Convert(typ string, value any, from, to converter.Version) (any, error) {
	if to.Less(from) {
		return value, fmt.Errorf("%w: %s < %s", ErrBackwards, to, from)
	}
	if value == nil {
		return nil, nil
	}
	if data, ok := value.(types.MapType); ok {
		return m.conv.ConvertMap(typ, data, from, to)
	}
	return m.conv.ConvertValue(typ, value, from, to)
}

// Result is the outcome of one record of a batch.
type Result struct {
	Value   types.MapType
	Before  uint64
	After   uint64
	Changed bool
	Err     error
}

// Report describes a finished batch. Results are in input order.
type Report struct {
	JobID    uuid.UUID
	Type     string
	From     converter.Version
	To       converter.Version
	Results  []Result
	Changed  int
	Failed   int
	Duration time.Duration
}

// Batch migrates independent records in parallel. A record whose conversion
// fails keeps its input value and carries the error in its Result; the batch
// itself only fails when ctx is done.
func (m *Migrator) Batch(ctx context.Context, typ string, records []types.MapType, from, to converter.Version) (*Report, error) {
	report := &Report{
		JobID: uuid.New(),
		Type:  typ,
		From:  from,
		To:    to,
	}
	logger := m.log.With(
		log.String("job", report.JobID.String()),
		log.String("type", typ),
		log.String("from", from.String()),
		log.String("to", to.String()),
	)
	start := time.Now()

	results, err := concurrent.ParallelMap(ctx, sequence.From(records...), m.workers,
		func(_ context.Context, _ int, record types.MapType) (Result, error) {
			return m.one(typ, record, from, to), nil
		})
	if err != nil {
		logger.Warn("batch interrupted", log.Error(err))
		return nil, err
	}

	report.Results = results
	for _, r := range results {
		switch {
		case r.Err != nil:
			report.Failed++
		case r.Changed:
			report.Changed++
		}
	}
	report.Duration = time.Since(start)

	logger.Info("batch migrated",
		log.Int("records", len(records)),
		log.Int("changed", report.Changed),
		log.Int("failed", report.Failed),
		log.Duration("took", report.Duration),
	)
	return report, nil
}

func (m *Migrator) one(typ string, record types.MapType, from, to converter.Version) Result {
	if record == nil {
		return Result{}
	}
	before, err := native.Fingerprint(m.codec, record)
	if err != nil {
		return Result{Value: record, Err: fmt.Errorf("fingerprint: %w", err)}
	}

	// rules edit in place; keep the input for the failure path
	input := record.Copy()
	out, err := m.Convert(typ, record, from, to)
	if err != nil {
		return Result{Value: input, Before: before, After: before, Err: err}
	}
	value, _ := out.(types.MapType)
	if value == nil {
		value = record
	}

	after, err := native.Fingerprint(m.codec, value)
	if err != nil {
		return Result{Value: value, Before: before, Err: fmt.Errorf("fingerprint: %w", err)}
	}
	return Result{Value: value, Before: before, After: after, Changed: before != after}
}
