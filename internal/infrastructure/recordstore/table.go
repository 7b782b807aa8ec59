// Package recordstore is a durable in-memory table of id-keyed records
// persisted as a CSV file. Every mutation runs under a single store lock and
// is written to disk before the caller sees it succeed.
package recordstore

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"maps"
	"os"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v5"

	apperrors "github.com/chamberirc/chamberbnc/internal/shared/errors"
	"github.com/chamberirc/chamberbnc/internal/shared/logger"
)

// DegradedHook is called when a write fails after its retry.
type DegradedHook func(table string, err error)

type Option func(*options)

type options struct {
	name       string
	retryDelay time.Duration
	onDegraded DegradedHook
}

// WithName sets the table name used in logs and degraded notices.
func WithName(name string) Option {
	return func(o *options) { o.name = name }
}

// WithRetryDelay sets the pause before the single write retry.
func WithRetryDelay(d time.Duration) Option {
	return func(o *options) { o.retryDelay = d }
}

func WithDegradedHook(hook DegradedHook) Option {
	return func(o *options) { o.onDegraded = hook }
}

// Table holds records of type T. T should be a value type; records handed
// out are copies and mutations go through Mutate.
type Table[T any] struct {
	mu     sync.RWMutex
	path   string
	codec  Codec[T]
	rows   map[uint]T
	seq    uint
	opts   options
	logger logger.Interface

	degraded bool
	lastErr  error
}

// Open creates the table and loads path. A missing file yields an empty table.
func Open[T any](path string, codec Codec[T], log logger.Interface, opts ...Option) (*Table[T], error) {
	o := options{name: path, retryDelay: 200 * time.Millisecond}
	for _, opt := range opts {
		opt(&o)
	}

	t := &Table[T]{
		path:   path,
		codec:  codec,
		rows:   make(map[uint]T),
		opts:   o,
		logger: log.With("table", o.name),
	}
	if err := t.Load(); err != nil {
		return nil, err
	}
	return t, nil
}

// Load replaces the in-memory table with the file contents. Malformed rows
// are logged and skipped.
func (t *Table[T]) Load() error {
	rows, maxID, err := t.readFile()
	if err != nil {
		return err
	}
	seq, err := readSeq(t.path)
	if errors.Is(err, errCorruptSeq) {
		t.logger.Warnw("ignoring id sequence file, continuing from the highest id",
			"path", seqPath(t.path), "error", err)
		seq = 0
	} else if err != nil {
		return err
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	t.rows = rows
	t.seq = max(seq, maxID)

	t.logger.Infow("table loaded", "path", t.path, "records", len(rows), "next_id", t.seq+1)
	return nil
}

func (t *Table[T]) readFile() (map[uint]T, uint, error) {
	rows := make(map[uint]T)

	f, err := os.Open(t.path)
	if os.IsNotExist(err) {
		t.logger.Warnw("table file not found, starting empty", "path", t.path)
		return rows, 0, nil
	}
	if err != nil {
		return nil, 0, fmt.Errorf("opening %s: %w", t.path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	var maxID uint
	for line := 1; ; line++ {
		record, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		var parseErr *csv.ParseError
		if errors.As(err, &parseErr) {
			t.logger.Warnw("skipping unreadable row", "line", parseErr.Line, "error", parseErr.Err)
			continue
		}
		if err != nil {
			return nil, 0, fmt.Errorf("reading %s: %w", t.path, err)
		}

		if line == 1 && t.isHeader(record) {
			continue
		}

		v, err := t.codec.Decode(record)
		if err != nil {
			t.logger.Warnw("skipping malformed row", "line", line, "error", err)
			continue
		}
		id := t.codec.ID(v)
		if id == 0 {
			t.logger.Warnw("skipping row without id", "line", line)
			continue
		}
		if _, dup := rows[id]; dup {
			t.logger.Warnw("skipping duplicate id", "line", line, "id", id)
			continue
		}
		rows[id] = v
		maxID = max(maxID, id)
	}
	return rows, maxID, nil
}

func (t *Table[T]) isHeader(record []string) bool {
	if len(record) != len(t.codec.Header) {
		return false
	}
	for i, h := range t.codec.Header {
		if !strings.EqualFold(strings.TrimSpace(record[i]), h) {
			return false
		}
	}
	return true
}

// Get returns a copy of the record with the given id.
func (t *Table[T]) Get(id uint) (T, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	v, ok := t.rows[id]
	return v, ok
}

// Snapshot returns every record ordered by id.
func (t *Table[T]) Snapshot() []T {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return sortedValues(t.rows)
}

func (t *Table[T]) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.rows)
}

// NextID is the id the next insert will receive.
func (t *Table[T]) NextID() uint {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.seq + 1
}

// Degraded reports whether the last write failed, and why.
func (t *Table[T]) Degraded() (bool, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.degraded, t.lastErr
}

func (t *Table[T]) Name() string {
	return t.opts.name
}

// Mutate runs fn against a working copy of the table while holding the
// store lock. If fn changed anything the copy is persisted, with one retry,
// and only then becomes visible. fn's error, or a persistence failure,
// leaves the table untouched.
func (t *Table[T]) Mutate(ctx context.Context, fn func(tx *Tx[T]) error) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	tx := &Tx[T]{
		rows:  maps.Clone(t.rows),
		seq:   t.seq,
		codec: t.codec,
	}
	if err := fn(tx); err != nil {
		return err
	}
	if !tx.dirty {
		return nil
	}

	if err := t.persist(ctx, tx.rows, tx.seq); err != nil {
		t.degraded = true
		t.lastErr = err
		t.logger.Errorw("write failed after retry, change rolled back", "path", t.path, "error", err)
		if t.opts.onDegraded != nil {
			t.opts.onDegraded(t.opts.name, err)
		}
		return apperrors.NewPersistenceError(fmt.Sprintf("could not save %s", t.opts.name), err)
	}

	if t.degraded {
		t.logger.Infow("table writable again", "path", t.path)
	}
	t.degraded = false
	t.lastErr = nil
	t.rows = tx.rows
	t.seq = tx.seq
	return nil
}

func (t *Table[T]) persist(ctx context.Context, rows map[uint]T, seq uint) error {
	attempt := 0
	_, err := backoff.Retry(ctx, func() (struct{}, error) {
		attempt++
		err := t.writeAll(rows, seq)
		if err != nil {
			t.logger.Warnw("table write failed", "path", t.path, "attempt", attempt, "error", err)
		}
		return struct{}{}, err
	},
		backoff.WithBackOff(backoff.NewConstantBackOff(t.opts.retryDelay)),
		backoff.WithMaxTries(2),
	)
	return err
}

// writeAll stores the id sequence before the table so a crash between the
// two writes can only skip ids, never reuse them.
func (t *Table[T]) writeAll(rows map[uint]T, seq uint) error {
	if err := writeSeq(t.path, seq); err != nil {
		return err
	}
	return writeFileAtomic(t.path, func(w io.Writer) error {
		cw := csv.NewWriter(w)
		if err := cw.Write(t.codec.Header); err != nil {
			return fmt.Errorf("writing header: %w", err)
		}
		for _, v := range sortedValues(rows) {
			if err := cw.Write(t.codec.Encode(v)); err != nil {
				return fmt.Errorf("writing record %d: %w", t.codec.ID(v), err)
			}
		}
		cw.Flush()
		return cw.Error()
	})
}

func sortedValues[T any](rows map[uint]T) []T {
	ids := slices.Sorted(maps.Keys(rows))
	out := make([]T, 0, len(ids))
	for _, id := range ids {
		out = append(out, rows[id])
	}
	return out
}
