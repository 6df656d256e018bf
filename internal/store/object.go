package store

import (
	"context"
	"errors"
	"strings"

	"github.com/huggnote/api/internal/client"
)

// ObjectBackend stores each record as a JSON object in a bucket.
type ObjectBackend struct {
	objects client.ObjectStorage
	prefix  string
}

// NewObjectBackend creates a backend writing under prefix.
func NewObjectBackend(objects client.ObjectStorage, prefix string) *ObjectBackend {
	return &ObjectBackend{objects: objects, prefix: strings.TrimSuffix(prefix, "/")}
}

func (b *ObjectBackend) objectKey(key string) string {
	// colons are legal in S3 keys but awkward in bucket browsers
	name := strings.ReplaceAll(key, ":", "/") + ".json"
	if b.prefix == "" {
		return name
	}
	return b.prefix + "/" + name
}

func (b *ObjectBackend) Load(ctx context.Context, key string) ([]byte, error) {
	data, err := b.objects.Get(ctx, b.objectKey(key))
	if errors.Is(err, client.ErrObjectNotFound) {
		return nil, ErrNotFound
	}
	return data, err
}

func (b *ObjectBackend) Save(ctx context.Context, key string, data []byte) error {
	return b.objects.Put(ctx, b.objectKey(key), data, "application/json")
}

func (b *ObjectBackend) Delete(ctx context.Context, key string) error {
	return b.objects.Delete(ctx, b.objectKey(key))
}

func (b *ObjectBackend) Name() string { return "r2" }
