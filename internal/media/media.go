package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// ErrDisabled is returned when no media backend is configured
var ErrDisabled = errors.New("image uploads are not configured")

// Object identifies an uploaded file at the media provider
type Object struct {
	Key string
	URL string
}

// Upload is a single file waiting to be stored
type Upload struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// Store persists listing images and hands back their public location
type Store interface {
	Put(ctx context.Context, upload Upload) (Object, error)
	Delete(ctx context.Context, key string) error
}

// ObjectKey builds a collision free key that keeps the original extension
func ObjectKey(prefix, filename string) string {
	ext := strings.ToLower(path.Ext(filename))
	if len(ext) > 10 {
		ext = ""
	}
	return fmt.Sprintf("%s/%s%s", strings.Trim(prefix, "/"), uuid.NewString(), ext)
}

// Disabled rejects every upload
type Disabled struct{}

func (Disabled) Put(context.Context, Upload) (Object, error) {
	return Object{}, ErrDisabled
}

func (Disabled) Delete(context.Context, string) error {
	return nil
}

// MemoryStore keeps objects in memory. Used for local runs and tests.
type MemoryStore struct {
	mu      sync.Mutex
	baseURL string
	objects map[string][]byte
}

// NewMemoryStore creates an empty MemoryStore serving URLs under baseURL
func NewMemoryStore(baseURL string) *MemoryStore {
	return &MemoryStore{
		baseURL: strings.TrimRight(baseURL, "/"),
		objects: make(map[string][]byte),
	}
}

func (m *MemoryStore) Put(_ context.Context, upload Upload) (Object, error) {
	data, err := io.ReadAll(upload.Body)
	if err != nil {
		return Object{}, fmt.Errorf("failed to read upload: %w", err)
	}

	key := ObjectKey("listings", upload.Filename)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = data

	return Object{Key: key, URL: m.baseURL + "/" + key}, nil
}

func (m *MemoryStore) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, key)
	return nil
}

// Has reports whether key is stored
func (m *MemoryStore) Has(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.objects[key]
	return ok
}

// Len returns the number of stored objects
func (m *MemoryStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.objects)
}
