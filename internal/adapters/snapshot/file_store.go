package snapshot

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/andrescamacho/idlecolony-go/internal/application/game"
)

const fileSuffix = ".save.zst"

// FileStore keeps one compressed snapshot per slot in a directory
type FileStore struct {
	dir       string
	validator BodyValidator
}

// NewFileStore creates a store rooted at dir. The validator may be nil.
func NewFileStore(dir string, validator BodyValidator) *FileStore {
	return &FileStore{dir: dir, validator: validator}
}

func (s *FileStore) path(slot string) (string, error) {
	if slot == "" || slot != filepath.Base(slot) || strings.HasPrefix(slot, ".") {
		return "", fmt.Errorf("invalid save slot %q", slot)
	}
	return filepath.Join(s.dir, slot+fileSuffix), nil
}

// Save writes the state to a temporary file and renames it over the slot
func (s *FileStore) Save(ctx context.Context, slot string, state *game.GameState) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	path, err := s.path(slot)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("failed to create snapshot directory: %w", err)
	}

	tmp, err := os.CreateTemp(s.dir, slot+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create snapshot file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := Encode(tmp, slot, state); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write slot %s: %w", slot, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close snapshot file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to replace slot %s: %w", slot, err)
	}
	return nil
}

// Load reads and validates the slot's snapshot
func (s *FileStore) Load(ctx context.Context, slot string) (*game.GameState, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path, err := s.path(slot)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &game.ErrSaveNotFound{Slot: slot}
		}
		return nil, fmt.Errorf("failed to open slot %s: %w", slot, err)
	}
	defer f.Close()

	_, state, err := Decode(f, s.validator)
	if err != nil {
		return nil, fmt.Errorf("failed to read slot %s: %w", slot, err)
	}
	return state, nil
}

// List returns every readable slot, newest first. Unreadable files are skipped.
func (s *FileStore) List(ctx context.Context) ([]game.SaveSummary, error) {
	matches, err := filepath.Glob(filepath.Join(s.dir, "*"+fileSuffix))
	if err != nil {
		return nil, fmt.Errorf("failed to list snapshots: %w", err)
	}

	summaries := make([]game.SaveSummary, 0, len(matches))
	for _, path := range matches {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		summary, err := readSummary(path)
		if err != nil {
			continue
		}
		summaries = append(summaries, summary)
	}

	sort.Slice(summaries, func(i, j int) bool {
		if summaries[i].SavedAt.Equal(summaries[j].SavedAt) {
			return summaries[i].Slot < summaries[j].Slot
		}
		return summaries[i].SavedAt.After(summaries[j].SavedAt)
	})
	return summaries, nil
}

func readSummary(path string) (game.SaveSummary, error) {
	f, err := os.Open(path)
	if err != nil {
		return game.SaveSummary{}, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return game.SaveSummary{}, err
	}
	h, err := ReadHeader(f)
	if err != nil {
		return game.SaveSummary{}, err
	}
	return game.SaveSummary{
		Slot:      strings.TrimSuffix(filepath.Base(path), fileSuffix),
		Version:   h.Version,
		SavedAt:   h.SavedAt,
		ClockTime: h.ClockTime,
		Size:      int(info.Size()),
	}, nil
}

// Delete removes the slot's snapshot
func (s *FileStore) Delete(ctx context.Context, slot string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	path, err := s.path(slot)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &game.ErrSaveNotFound{Slot: slot}
		}
		return fmt.Errorf("failed to delete slot %s: %w", slot, err)
	}
	return nil
}
