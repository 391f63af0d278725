// Package filestore implements the artifact cache on the local filesystem.
// Text artifacts are JSON records and audio artifacts are raw MP3 bytes,
// both addressed by the cache key's slug so the two kinds for one logical
// entry are trivially correlatable.
package filestore

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/curiolab/curio-hub/internal/domain/content"
	"github.com/curiolab/curio-hub/internal/domain/shared"
)

const (
	textExt  = ".json"
	audioExt = ".mp3"
)

// textRecord is the persisted form of a text artifact. The normalized key
// source strings are stored alongside the artifact for auditability and for
// the tolerant any-skill scan.
type textRecord struct {
	Artifact content.ContentArtifact `json:"artifact"`
	Key      keyRecord               `json:"key"`
}

type keyRecord struct {
	Hash      string `json:"hash"`
	Slug      string `json:"slug"`
	Topic     string `json:"topic"`
	Dimension string `json:"dimension"`
	Skill     string `json:"skill"`
}

// Store implements content.Store on a local directory.
type Store struct {
	root string
}

// New creates a Store rooted at the given directory, creating it if absent.
// The root is explicit and injected; the store never consults ambient
// process state.
func New(root string) (*Store, error) {
	if root == "" {
		return nil, fmt.Errorf("filestore: root directory must not be empty")
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("filestore: create root %s: %w", root, err)
	}
	return &Store{root: root}, nil
}

// Root returns the store's root directory.
func (s *Store) Root() string {
	return s.root
}

// LookupText returns the stored article for a key.
func (s *Store) LookupText(ctx context.Context, key content.CacheKey) (*content.ContentArtifact, error) {
	data, err := os.ReadFile(s.textPath(key.Slug))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, shared.ErrNotFound
		}
		return nil, shared.WrapError("content", "LookupText", shared.ErrCacheUnavailable,
			"artifact read failed", err)
	}

	var rec textRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, shared.WrapError("content", "LookupText", shared.ErrCacheUnavailable,
			"artifact record is corrupt", err)
	}

	return &rec.Artifact, nil
}

// PutText persists an article atomically: the record is written to a
// temporary file in the same directory and renamed into place, so readers
// never observe a partial artifact.
func (s *Store) PutText(ctx context.Context, key content.CacheKey, artifact *content.ContentArtifact) error {
	rec := textRecord{
		Artifact: *artifact,
		Key: keyRecord{
			Hash:      key.Hash,
			Slug:      key.Slug,
			Topic:     key.Topic,
			Dimension: key.Dimension,
			Skill:     key.Skill,
		},
	}

	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return shared.WrapError("content", "PutText", shared.ErrCacheUnavailable,
			"artifact encode failed", err)
	}

	if err := s.writeAtomic(s.textPath(key.Slug), data); err != nil {
		return shared.WrapError("content", "PutText", shared.ErrCacheUnavailable,
			"artifact write failed", err)
	}

	return nil
}

// LookupAudio returns the stored narration bytes for a key.
func (s *Store) LookupAudio(ctx context.Context, key content.CacheKey) ([]byte, error) {
	data, err := os.ReadFile(s.audioPath(key.Slug))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, shared.ErrNotFound
		}
		return nil, shared.WrapError("content", "LookupAudio", shared.ErrCacheUnavailable,
			"audio read failed", err)
	}
	return data, nil
}

// PutAudio persists raw narration audio atomically.
func (s *Store) PutAudio(ctx context.Context, key content.CacheKey, audio []byte) error {
	if err := s.writeAtomic(s.audioPath(key.Slug), audio); err != nil {
		return shared.WrapError("content", "PutAudio", shared.ErrCacheUnavailable,
			"audio write failed", err)
	}
	return nil
}

// FindAnyText scans stored text records whose normalized topic and dimension
// match the given values regardless of skill label, returning the one with
// the latest CreatedAt. Corrupt records are skipped, not fatal.
func (s *Store) FindAnyText(ctx context.Context, topic, dimension string) (*content.ContentArtifact, error) {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		return nil, shared.WrapError("content", "FindAnyText", shared.ErrCacheUnavailable,
			"artifact scan failed", err)
	}

	wantTopic := strings.ToLower(strings.TrimSpace(topic))
	wantDimension := strings.ToLower(strings.TrimSpace(dimension))

	var best *content.ContentArtifact
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), textExt) {
			continue
		}

		data, err := os.ReadFile(filepath.Join(s.root, entry.Name()))
		if err != nil {
			continue
		}

		var rec textRecord
		if err := json.Unmarshal(data, &rec); err != nil {
			continue
		}

		if rec.Key.Topic != wantTopic || rec.Key.Dimension != wantDimension {
			continue
		}

		if best == nil || rec.Artifact.CreatedAt.After(best.CreatedAt) {
			artifact := rec.Artifact
			best = &artifact
		}
	}

	if best == nil {
		return nil, shared.ErrNotFound
	}
	return best, nil
}

// Stats returns the number of cached text artifacts and the aggregate size
// of all stored files, text and audio.
func (s *Store) Stats(ctx context.Context) (content.CacheStats, error) {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		return content.CacheStats{}, shared.WrapError("content", "Stats", shared.ErrCacheUnavailable,
			"artifact scan failed", err)
	}

	var stats content.CacheStats
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		stats.TotalBytes += info.Size()
		if strings.HasSuffix(entry.Name(), textExt) {
			stats.ArtifactCount++
		}
	}

	return stats, nil
}

func (s *Store) textPath(slug string) string {
	return filepath.Join(s.root, slug+textExt)
}

func (s *Store) audioPath(slug string) string {
	return filepath.Join(s.root, slug+audioExt)
}

// writeAtomic writes data to a temporary file in the target directory and
// renames it into place.
func (s *Store) writeAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(s.root, ".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}

	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return err
	}

	return nil
}
