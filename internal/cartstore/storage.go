package cartstore

import (
	"os"
	"path/filepath"
)

// Storage persiste l'état du panier entre deux lancements du client.
type Storage interface {
	Load(name string) ([]byte, error)
	Save(name string, data []byte) error
}

// FileStorage écrit chaque entrée dans un fichier JSON du dossier donné.
type FileStorage struct {
	Dir string
}

func NewFileStorage(dir string) (*FileStorage, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &FileStorage{Dir: dir}, nil
}

func (fs *FileStorage) path(name string) string {
	return filepath.Join(fs.Dir, name+".json")
}

func (fs *FileStorage) Load(name string) ([]byte, error) {
	data, err := os.ReadFile(fs.path(name))
	if os.IsNotExist(err) {
		return nil, nil
	}
	return data, err
}

func (fs *FileStorage) Save(name string, data []byte) error {
	tmp := fs.path(name) + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, fs.path(name))
}
