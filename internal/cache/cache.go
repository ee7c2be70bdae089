// Package cache persists lrclib lookups under the user cache dir so repeat
// sessions for the same track skip the network. Entries are gob files keyed
// by a hash of artist and title, with a hot in-memory layer in front.
package cache

import (
	"crypto/sha256"
	"encoding/gob"
	"encoding/hex"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

const (
	entryVersion   = 1
	defaultTTLDays = 30
	cacheDirName   = "lrctap"
	lyricsSubdir   = "lyrics"
)

var (
	ErrMiss    = errors.New("cache miss")
	ErrExpired = errors.New("cache expired")
	ErrCorrupt = errors.New("cache corrupt")
)

// Entry is one cached lrclib response.
type Entry struct {
	Version      uint8
	TrackName    string
	ArtistName   string
	AlbumName    string
	Duration     float64
	Instrumental bool
	PlainLyrics  string
	SyncedLyrics string
	CreatedAt    int64
	ExpiresAt    int64
}

type DiskCache struct {
	basePath string
	mu       sync.RWMutex
	hot      map[string]*Entry
}

var (
	global     *DiskCache
	globalOnce sync.Once
)

// Global returns the shared cache. When the cache dir cannot be created the
// cache degrades to memory-only rather than failing.
func Global() *DiskCache {
	globalOnce.Do(func() {
		c, err := New()
		if err != nil {
			c = &DiskCache{hot: make(map[string]*Entry)}
		}
		global = c
	})
	return global
}

// New opens the cache under XDG_CACHE_HOME (or ~/.cache).
func New() (*DiskCache, error) {
	dir, err := cacheDirectory()
	if err != nil {
		return nil, err
	}
	return NewAt(filepath.Join(dir, lyricsSubdir))
}

// NewAt opens a cache rooted at an explicit directory.
func NewAt(dir string) (*DiskCache, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}
	return &DiskCache{
		basePath: dir,
		hot:      make(map[string]*Entry),
	}, nil
}

// Dir reports where entries are stored on disk; empty for a memory-only cache.
func (c *DiskCache) Dir() string {
	return c.basePath
}

func cacheDirectory() (string, error) {
	if xdg := os.Getenv("XDG_CACHE_HOME"); xdg != "" {
		return filepath.Join(xdg, cacheDirName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", cacheDirName), nil
}

func entryKey(artist, title string) string {
	normalized := strings.ToLower(artist) + "|" + strings.ToLower(title)
	hash := sha256.Sum256([]byte(normalized))
	return hex.EncodeToString(hash[:12])
}

func (c *DiskCache) filePath(key string) string {
	if c.basePath == "" {
		return ""
	}
	return filepath.Join(c.basePath, key+".bin")
}

func (c *DiskCache) Get(artist, title string) (*Entry, error) {
	if artist == "" || title == "" {
		return nil, ErrMiss
	}
	key := entryKey(artist, title)

	c.mu.RLock()
	entry, exists := c.hot[key]
	c.mu.RUnlock()
	if exists {
		if entry.ExpiresAt > time.Now().Unix() {
			return entry, nil
		}
		c.mu.Lock()
		delete(c.hot, key)
		c.mu.Unlock()
	}

	if c.basePath == "" {
		return nil, ErrMiss
	}

	path := c.filePath(key)
	entry, err := readEntry(path)
	if err != nil {
		return nil, err
	}
	if entry.ExpiresAt <= time.Now().Unix() {
		_ = os.Remove(path)
		return nil, ErrExpired
	}

	c.mu.Lock()
	c.hot[key] = entry
	c.mu.Unlock()
	return entry, nil
}

func (c *DiskCache) Set(artist, title string, entry *Entry) error {
	if artist == "" || title == "" || entry == nil {
		return errors.New("invalid cache entry")
	}
	key := entryKey(artist, title)

	now := time.Now().Unix()
	entry.Version = entryVersion
	entry.CreatedAt = now
	entry.ExpiresAt = now + int64(defaultTTLDays)*24*60*60

	c.mu.Lock()
	c.hot[key] = entry
	c.mu.Unlock()

	if c.basePath == "" {
		return nil
	}
	return writeEntry(c.filePath(key), entry)
}

func (c *DiskCache) Delete(artist, title string) error {
	if artist == "" || title == "" {
		return errors.New("invalid artist or title")
	}
	key := entryKey(artist, title)

	c.mu.Lock()
	delete(c.hot, key)
	c.mu.Unlock()

	if c.basePath == "" {
		return nil
	}
	err := os.Remove(c.filePath(key))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func (c *DiskCache) Clear() error {
	c.mu.Lock()
	c.hot = make(map[string]*Entry)
	c.mu.Unlock()

	if c.basePath == "" {
		return nil
	}

	files, err := os.ReadDir(c.basePath)
	if err != nil {
		return err
	}
	for _, f := range files {
		if !f.IsDir() && strings.HasSuffix(f.Name(), ".bin") {
			_ = os.Remove(filepath.Join(c.basePath, f.Name()))
		}
	}
	return nil
}

// Prune removes expired and unreadable entries, reporting how many went.
func (c *DiskCache) Prune() (int, error) {
	if c.basePath == "" {
		return 0, nil
	}

	files, err := os.ReadDir(c.basePath)
	if err != nil {
		return 0, err
	}

	pruned := 0
	now := time.Now().Unix()
	for _, f := range files {
		if f.IsDir() || !strings.HasSuffix(f.Name(), ".bin") {
			continue
		}
		path := filepath.Join(c.basePath, f.Name())
		entry, err := readEntry(path)
		if err != nil || entry.ExpiresAt <= now {
			_ = os.Remove(path)
			pruned++
		}
	}
	return pruned, nil
}

func (c *DiskCache) Stats() (count int, sizeBytes int64, err error) {
	if c.basePath == "" {
		return 0, 0, nil
	}

	files, err := os.ReadDir(c.basePath)
	if err != nil {
		return 0, 0, err
	}
	for _, f := range files {
		if f.IsDir() || !strings.HasSuffix(f.Name(), ".bin") {
			continue
		}
		info, err := f.Info()
		if err != nil {
			continue
		}
		count++
		sizeBytes += info.Size()
	}
	return count, sizeBytes, nil
}

// List reads every readable entry, skipping corrupt ones.
func (c *DiskCache) List() ([]*Entry, error) {
	if c.basePath == "" {
		return nil, nil
	}

	files, err := os.ReadDir(c.basePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var entries []*Entry
	for _, f := range files {
		if f.IsDir() || !strings.HasSuffix(f.Name(), ".bin") {
			continue
		}
		entry, err := readEntry(filepath.Join(c.basePath, f.Name()))
		if err != nil {
			continue
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func readEntry(path string) (*Entry, error) {
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrMiss
		}
		return nil, err
	}
	defer file.Close()

	var entry Entry
	if err := gob.NewDecoder(file).Decode(&entry); err != nil {
		return nil, ErrCorrupt
	}
	if entry.Version != entryVersion {
		_ = os.Remove(path)
		return nil, ErrCorrupt
	}
	return &entry, nil
}

// writeEntry goes through a temp file and rename so a crash mid-write never
// leaves a truncated entry behind.
func writeEntry(path string, entry *Entry) error {
	tmpPath := path + ".tmp"

	file, err := os.Create(tmpPath)
	if err != nil {
		return err
	}

	if err := gob.NewEncoder(file).Encode(entry); err != nil {
		file.Close()
		_ = os.Remove(tmpPath)
		return err
	}
	if err := file.Sync(); err != nil {
		file.Close()
		_ = os.Remove(tmpPath)
		return err
	}
	if err := file.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return err
	}

	return os.Rename(tmpPath, path)
}
