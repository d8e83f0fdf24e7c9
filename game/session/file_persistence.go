package session

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// DefaultScoresFile is the file name used inside the data directory
const DefaultScoresFile = "scores.json"

// FileStore implements HighScoreStore as a JSON object on disk
type FileStore struct {
	path string
	mu   sync.Mutex
}

// NewFileStore creates a file-backed store inside dataDir
func NewFileStore(dataDir string) (*FileStore, error) {
	// Create data directory if it doesn't exist
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	return &FileStore{
		path: filepath.Join(dataDir, DefaultScoresFile),
	}, nil
}

// Path returns the location of the scores file
func (fs *FileStore) Path() string {
	return fs.path
}

// Get returns the stored value for key
func (fs *FileStore) Get(ctx context.Context, key string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}

	fs.mu.Lock()
	defer fs.mu.Unlock()

	values, err := fs.read()
	if err != nil {
		return "", false, err
	}

	v, ok := values[key]
	return v, ok, nil
}

// Set stores value under key. The file is replaced atomically.
func (fs *FileStore) Set(ctx context.Context, key, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	fs.mu.Lock()
	defer fs.mu.Unlock()

	values, err := fs.read()
	if err != nil {
		// A corrupt file is replaced rather than blocking every future write
		values = map[string]string{}
	}
	values[key] = value

	return fs.write(values)
}

// read loads the key-value map; a missing file is an empty store
func (fs *FileStore) read() (map[string]string, error) {
	data, err := os.ReadFile(fs.path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("failed to read scores file: %w", err)
	}

	values := map[string]string{}
	if len(data) == 0 {
		return values, nil
	}
	if err := json.Unmarshal(data, &values); err != nil {
		return nil, fmt.Errorf("failed to parse scores file: %w", err)
	}
	return values, nil
}

func (fs *FileStore) write(values map[string]string) error {
	// Marshal to JSON with indentation for readability
	data, err := json.MarshalIndent(values, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal scores: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(fs.path), ".scores-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp scores file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write scores file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close scores file: %w", err)
	}
	if err := os.Rename(tmpName, fs.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace scores file: %w", err)
	}

	return nil
}
