package toml

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/bnema/mmwall/internal/domain"
	"github.com/bnema/mmwall/internal/ports"
	toml "github.com/pelletier/go-toml/v2"
	"github.com/spf13/viper"
)

const (
	statePathKey  = "state.path"
	stateFileName = "state.toml"
)

type StateRepository struct {
	path string
	mu   *sync.RWMutex
}

var _ ports.StateRepository = (*StateRepository)(nil)

func NewStateRepository(cfg *viper.Viper) (*StateRepository, error) {
	if cfg == nil {
		cfg = viper.New()
	}

	path := cfg.GetString(statePathKey)
	if path == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolve home directory: %w", err)
		}
		path = filepath.Join(homeDir, configDir, stateFileName)
	}

	path, err := normalizePath(path)
	if err != nil {
		return nil, err
	}

	return &StateRepository{path: path, mu: lockForPath(path)}, nil
}

func (r *StateRepository) Path() string {
	return r.path
}

func (r *StateRepository) Load(ctx context.Context) (domain.SlideshowState, error) {
	if err := ctx.Err(); err != nil {
		return domain.SlideshowState{}, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	data, err := os.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return domain.SlideshowState{}, domain.ErrStateNotFound
		}
		return domain.SlideshowState{}, fmt.Errorf("read state file: %w", err)
	}

	var file stateFileSchema
	if err := toml.Unmarshal(data, &file); err != nil {
		return domain.SlideshowState{}, fmt.Errorf("decode state file: %w", err)
	}
	if err := file.validateVersion(); err != nil {
		return domain.SlideshowState{}, err
	}

	return fromStateSchema(file), nil
}

func (r *StateRepository) Save(ctx context.Context, state domain.SlideshowState) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	file := toStateSchema(state)
	file.applyDefaults()

	return writeTOMLFile(r.path, file)
}

func toStateSchema(state domain.SlideshowState) stateFileSchema {
	history := make([]historyEntrySchema, 0, len(state.History))
	for _, entry := range state.History {
		history = append(history, historyEntrySchema{
			Index:      entry.Index,
			URL:        entry.URL,
			RecordedAt: formatTime(entry.RecordedAt),
		})
	}

	recent := make([]recentEntrySchema, 0, len(state.Recent))
	for _, entry := range state.Recent {
		recent = append(recent, recentEntrySchema{URL: entry.URL, ShownAt: formatTime(entry.ShownAt)})
	}

	return stateFileSchema{
		UpdatedAt:             formatTime(state.UpdatedAt),
		CollectionFingerprint: state.CollectionFingerprint,
		LedgerFingerprint:     state.LedgerFingerprint,
		Current:               currentSchema{Index: state.CurrentIndex, URL: state.CurrentURL},
		Pool:                  poolSchema{Fingerprint: state.PoolFingerprint, Bucket: state.PoolBucket, URLs: state.PoolURLs},
		History:               historySchema{Cursor: state.HistoryCursor, Entries: history},
		Recent:                recent,
	}
}

func fromStateSchema(file stateFileSchema) domain.SlideshowState {
	state := domain.SlideshowState{
		CollectionFingerprint: file.CollectionFingerprint,
		LedgerFingerprint:     file.LedgerFingerprint,
		PoolFingerprint:       file.Pool.Fingerprint,
		PoolBucket:            file.Pool.Bucket,
		PoolURLs:              file.Pool.URLs,
		CurrentIndex:          file.Current.Index,
		CurrentURL:            file.Current.URL,
		HistoryCursor:         file.History.Cursor,
		UpdatedAt:             parseTime(file.UpdatedAt),
	}

	for _, entry := range file.History.Entries {
		state.History = append(state.History, domain.NavigationEntry{
			Index:      entry.Index,
			URL:        entry.URL,
			RecordedAt: parseTime(entry.RecordedAt),
		})
	}
	for _, entry := range file.Recent {
		state.Recent = append(state.Recent, domain.RecencyEntry{URL: entry.URL, ShownAt: parseTime(entry.ShownAt)})
	}

	return state
}
