package storage

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/AI-Jie01/Whisperboard/internal/domain"
	"github.com/AI-Jie01/Whisperboard/internal/ports"
)

const collectionFile = "recordings.json"

var (
	// ErrRead wraps any failure to load the collection blob. Callers are
	// expected to degrade to an empty collection.
	ErrRead = errors.New("storage: read failed")
	// ErrWrite wraps any failure to persist the collection blob. The next
	// successful write self-heals.
	ErrWrite = errors.New("storage: write failed")
)

// FileStore keeps the recording collection as a single JSON blob in dir,
// with audio payloads as separate WAV files alongside it. There is no
// in-memory caching: every Load/Save is a full round-trip, so the last
// completed write wins.
type FileStore struct {
	dir   string
	idGen ports.IDGen
	log   zerolog.Logger
}

func NewFileStore(dir string, idGen ports.IDGen, log zerolog.Logger) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrap(err, "create storage dir")
	}
	return &FileStore{dir: dir, idGen: idGen, log: log.With().Str("component", "store").Logger()}, nil
}

// Load reads the full collection blob. A missing or corrupt blob yields
// ErrRead; the caller falls back to an empty collection.
func (s *FileStore) Load(_ context.Context) ([]domain.Recording, error) {
	raw, err := os.ReadFile(filepath.Join(s.dir, collectionFile))
	if err != nil {
		return nil, errors.Wrapf(ErrRead, "%v", err)
	}
	var recs []domain.Recording
	if err := json.Unmarshal(raw, &recs); err != nil {
		return nil, errors.Wrapf(ErrRead, "decode collection: %v", err)
	}
	for i := range recs {
		recs[i].PlaybackMode = domain.PlaybackNotPlaying
	}
	return recs, nil
}

// Save persists the full collection atomically: the blob is written to a
// temp file and renamed over the previous one, so a crash mid-write never
// corrupts previously valid data.
func (s *FileStore) Save(_ context.Context, recs []domain.Recording) error {
	if recs == nil {
		recs = []domain.Recording{}
	}
	raw, err := json.MarshalIndent(recs, "", "  ")
	if err != nil {
		return errors.Wrapf(ErrWrite, "encode collection: %v", err)
	}
	tmp, err := os.CreateTemp(s.dir, collectionFile+".*")
	if err != nil {
		return errors.Wrapf(ErrWrite, "%v", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return errors.Wrapf(ErrWrite, "%v", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return errors.Wrapf(ErrWrite, "%v", err)
	}
	if err := os.Rename(tmpName, filepath.Join(s.dir, collectionFile)); err != nil {
		os.Remove(tmpName)
		return errors.Wrapf(ErrWrite, "%v", err)
	}
	return nil
}

// Cleanup deletes audio files that have no corresponding collection entry.
// Best-effort: individual failures are logged and swallowed.
func (s *FileStore) Cleanup(ctx context.Context) error {
	var recs []domain.Recording
	if _, statErr := os.Stat(filepath.Join(s.dir, collectionFile)); statErr == nil {
		var err error
		recs, err = s.Load(ctx)
		if err != nil {
			// A corrupt blob references nothing; refuse to reap in that
			// case rather than wipe every audio file.
			s.log.Warn().Err(err).Msg("cleanup skipped, collection unreadable")
			return nil
		}
	} else if !os.IsNotExist(statErr) {
		s.log.Warn().Err(statErr).Msg("cleanup skipped, collection unreadable")
		return nil
	}
	referenced := make(map[string]struct{}, len(recs))
	for _, r := range recs {
		referenced[r.FileName] = struct{}{}
	}

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		s.log.Warn().Err(err).Msg("cleanup skipped, storage dir unreadable")
		return nil
	}
	removed := 0
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".wav") {
			continue
		}
		if _, ok := referenced[name]; ok {
			continue
		}
		if err := os.Remove(filepath.Join(s.dir, name)); err != nil {
			s.log.Warn().Err(err).Str("file", name).Msg("orphan removal failed")
			continue
		}
		removed++
	}
	if removed > 0 {
		s.log.Info().Int("removed", removed).Msg("reclaimed orphaned audio files")
	}
	return nil
}

// NewRecordingFile allocates a fresh, collision-free audio file name.
func (s *FileStore) NewRecordingFile() string {
	return s.idGen.NewID() + ".wav"
}

// AudioPath resolves an audio file path from its recording file name.
func (s *FileStore) AudioPath(fileName string) string {
	return filepath.Join(s.dir, fileName)
}
