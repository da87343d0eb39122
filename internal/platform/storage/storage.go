// Package storage uploads binary objects (receipts, rendered reports) to a bucket
// and hands back the public URL persisted alongside the owning row.
package storage

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"path"
	"strings"
	"sync"
)

// ErrUnsupportedType indicates content outside the accepted MIME types.
var ErrUnsupportedType = errors.New("storage: unsupported content type")

// Object describes a single upload.
type Object struct {
	Bucket      string
	Name        string
	ContentType string
	Data        []byte
}

// Store persists objects and resolves their public URL.
type Store interface {
	Put(ctx context.Context, obj Object) (string, error)
}

var allowedTypes = map[string]bool{
	"application/pdf":          true,
	"image/jpeg":               true,
	"image/png":                true,
	"image/webp":               true,
	"text/html; charset=utf-8": true,
}

// DetectContentType sniffs data, keeping the declared type when sniffing is inconclusive.
func DetectContentType(declared string, data []byte) string {
	sniffed := http.DetectContentType(data)
	if sniffed == "application/octet-stream" && declared != "" {
		return declared
	}
	return sniffed
}

// CheckContentType rejects MIME types that are not accepted for upload.
func CheckContentType(contentType string) error {
	if !allowedTypes[contentType] {
		return fmt.Errorf("%w: %s", ErrUnsupportedType, contentType)
	}
	return nil
}

// PublicURL joins base, bucket and object name into an URL, escaping each path segment.
func PublicURL(base, bucket, name string) string {
	base = strings.TrimRight(base, "/")
	segments := strings.Split(name, "/")
	for i, seg := range segments {
		segments[i] = url.PathEscape(seg)
	}
	return base + "/" + url.PathEscape(bucket) + "/" + path.Join(segments...)
}

// Memory keeps objects in process. Used by tests and local runs without bucket credentials.
type Memory struct {
	mu      sync.Mutex
	base    string
	objects map[string]Object
	fail    error
}

// NewMemory builds an in-memory store rooted at base.
func NewMemory(base string) *Memory {
	return &Memory{base: base, objects: make(map[string]Object)}
}

// FailWith makes subsequent Put calls return err.
func (m *Memory) FailWith(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fail = err
}

// Put stores a copy of obj.
func (m *Memory) Put(ctx context.Context, obj Object) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return "", m.fail
	}
	data := make([]byte, len(obj.Data))
	copy(data, obj.Data)
	obj.Data = data
	m.objects[obj.Bucket+"/"+obj.Name] = obj
	return PublicURL(m.base, obj.Bucket, obj.Name), nil
}

// Get returns a stored object.
func (m *Memory) Get(bucket, name string) (Object, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	obj, ok := m.objects[bucket+"/"+name]
	return obj, ok
}

// Len reports the number of stored objects.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.objects)
}
