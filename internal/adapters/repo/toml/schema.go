package toml

import "fmt"

const currentSchemaVersion = 1

type stateFileSchema struct {
	Version               int                 `toml:"version"`
	UpdatedAt             string              `toml:"updated_at"`
	CollectionFingerprint string              `toml:"collection_fingerprint"`
	LedgerFingerprint     string              `toml:"ledger_fingerprint"`
	Current               currentSchema       `toml:"current"`
	Pool                  poolSchema          `toml:"pool"`
	History               historySchema       `toml:"history"`
	Recent                []recentEntrySchema `toml:"recent,omitempty"`
}

func (s *stateFileSchema) applyDefaults() {
	if s.Version == 0 {
		s.Version = currentSchemaVersion
	}
}

func (s stateFileSchema) validateVersion() error {
	if s.Version > currentSchemaVersion {
		return fmt.Errorf("unsupported state schema version %d (current %d)", s.Version, currentSchemaVersion)
	}

	return nil
}

type currentSchema struct {
	Index int    `toml:"index"`
	URL   string `toml:"url,omitempty"`
}

type poolSchema struct {
	Fingerprint string   `toml:"fingerprint"`
	Bucket      int64    `toml:"bucket"`
	URLs        []string `toml:"urls,omitempty"`
}

type historySchema struct {
	Cursor  int                  `toml:"cursor"`
	Entries []historyEntrySchema `toml:"entries,omitempty"`
}

type historyEntrySchema struct {
	Index      int    `toml:"index"`
	URL        string `toml:"url"`
	RecordedAt string `toml:"recorded_at"`
}

type recentEntrySchema struct {
	URL     string `toml:"url"`
	ShownAt string `toml:"shown_at"`
}
