// Package observe reports selection core events through zerolog.
package observe

import (
	"github.com/bnema/mmwall/internal/domain"
	"github.com/rs/zerolog"
)

type Logger struct {
	log   zerolog.Logger
	debug bool
}

var _ domain.Observer = (*Logger)(nil)

// NewLogger logs selections at debug level, or at info level when debug
// selection logging is switched on. Pool and collection changes are always
// logged at info.
func NewLogger(log zerolog.Logger, debug bool) *Logger {
	if debug && log.GetLevel() > zerolog.DebugLevel {
		log = log.Level(zerolog.DebugLevel)
	}
	return &Logger{log: log, debug: debug}
}

func (l *Logger) ImageSelected(event domain.SelectionEvent) {
	entry := l.log.Debug()
	if l.debug {
		entry = l.log.Info()
	}
	entry.
		Int("index", event.Index).
		Str("url", event.URL).
		Str("method", string(event.Method)).
		Bool("from_history", event.FromHistory).
		Bool("fallback", event.Fallback).
		Int("pool_size", event.PoolSize).
		Int("tracked", event.Tracked).
		Time("at", event.At).
		Msg("image selected")
}

func (l *Logger) PoolRotated(event domain.PoolEvent) {
	l.log.Info().
		Int64("bucket", event.Window.Bucket).
		Int64("cycle", event.Window.Cycle).
		Int("total_buckets", event.Window.TotalBuckets).
		Int("active_bucket", event.Window.ActiveBucket).
		Int("start", event.Window.Start).
		Int("end", event.Window.End).
		Int("pool_size", event.PoolSize).
		Int("collection_size", event.CollectionSize).
		Msg("pool rotated")
}

func (l *Logger) CollectionReplaced(event domain.CollectionEvent) {
	entry := l.log.Debug()
	if event.Changed {
		entry = l.log.Info()
	}
	entry.
		Int("received", event.Received).
		Int("accepted", event.Accepted).
		Bool("changed", event.Changed).
		Msg("collection replaced")
}
