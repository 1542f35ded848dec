package store

import (
	"encoding/json"
	"os"
	"path/filepath"

	"ms-scanning/internal/kiosk"
)

// FileStore persists queue snapshots as a JSON file in the kiosk profile
// directory. The local-storage equivalent of the browser kiosk.
type FileStore struct {
	Path string
}

func NewFileStore(path string) *FileStore {
	return &FileStore{Path: path}
}

func (s *FileStore) Load() ([]kiosk.PendingScan, error) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var scans []kiosk.PendingScan
	if err := json.Unmarshal(data, &scans); err != nil {
		return nil, err
	}
	return scans, nil
}

func (s *FileStore) Save(scans []kiosk.PendingScan) error {
	data, err := json.Marshal(scans)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(s.Path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	return os.WriteFile(s.Path, data, 0644)
}
