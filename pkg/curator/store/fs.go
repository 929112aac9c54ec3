package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path"
	"sync"

	"github.com/spf13/afero"
)

// metaSuffix marks the sidecar file carrying an object's content type and
// metadata, standing in for object-storage metadata.
const metaSuffix = ".meta"

// objectMeta is the sidecar format.
type objectMeta struct {
	ContentType string            `json:"contentType,omitempty"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}

// FsStore is an ObjectStore backed by an afero filesystem. Keys are
// slash-separated paths under the root; production uses afero.NewOsFs,
// tests use afero.NewMemMapFs.
type FsStore struct {
	fs   afero.Fs
	root string
	mu   sync.RWMutex
}

// NewFsStore creates an object store rooted at root on the given filesystem.
func NewFsStore(fs afero.Fs, root string) *FsStore {
	return &FsStore{fs: fs, root: root}
}

// Put implements ObjectStore. The write overwrites any existing object at
// the key; metadata is kept in a sidecar next to the object.
func (s *FsStore) Put(ctx context.Context, obj Object) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	full := path.Join(s.root, obj.Key)
	if err := s.fs.MkdirAll(path.Dir(full), 0o755); err != nil {
		return fmt.Errorf("create object directory: %w", err)
	}
	if err := afero.WriteFile(s.fs, full, obj.Data, 0o644); err != nil {
		return fmt.Errorf("write object: %w", err)
	}

	if obj.ContentType == "" && len(obj.Metadata) == 0 {
		return nil
	}
	meta, err := json.Marshal(objectMeta{ContentType: obj.ContentType, Metadata: obj.Metadata})
	if err != nil {
		return fmt.Errorf("marshal object metadata: %w", err)
	}
	if err := afero.WriteFile(s.fs, full+metaSuffix, meta, 0o644); err != nil {
		return fmt.Errorf("write object metadata: %w", err)
	}
	return nil
}

// Get implements ObjectStore.
func (s *FsStore) Get(ctx context.Context, key string) (Object, error) {
	if err := ctx.Err(); err != nil {
		return Object{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	full := path.Join(s.root, key)
	data, err := afero.ReadFile(s.fs, full)
	if err != nil {
		if os.IsNotExist(err) {
			return Object{}, ErrNotFound
		}
		return Object{}, fmt.Errorf("read object: %w", err)
	}

	obj := Object{Key: key, Data: data}
	metaData, err := afero.ReadFile(s.fs, full+metaSuffix)
	if err != nil {
		if os.IsNotExist(err) {
			return obj, nil
		}
		return Object{}, fmt.Errorf("read object metadata: %w", err)
	}
	var meta objectMeta
	if err := json.Unmarshal(metaData, &meta); err != nil {
		return Object{}, fmt.Errorf("parse object metadata: %w", err)
	}
	obj.ContentType = meta.ContentType
	obj.Metadata = meta.Metadata
	return obj, nil
}
