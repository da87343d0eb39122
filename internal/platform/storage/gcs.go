package storage

import (
	"context"
	"fmt"
	"strings"

	gcs "cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

// DefaultPublicBase is the public endpoint for objects readable by allUsers.
const DefaultPublicBase = "https://storage.googleapis.com"

// GCS uploads objects to Google Cloud Storage.
type GCS struct {
	client     *gcs.Client
	publicBase string
}

// NewGCS builds a GCS store. Explicit credentials JSON wins over application default credentials.
func NewGCS(ctx context.Context, credentialsJSON, publicBase string) (*GCS, error) {
	var opts []option.ClientOption
	if strings.TrimSpace(credentialsJSON) != "" {
		opts = append(opts, option.WithCredentialsJSON([]byte(credentialsJSON)))
	}
	client, err := gcs.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("storage: gcs client: %w", err)
	}
	if publicBase == "" {
		publicBase = DefaultPublicBase
	}
	return &GCS{client: client, publicBase: publicBase}, nil
}

// Put writes obj and returns its public URL.
func (g *GCS) Put(ctx context.Context, obj Object) (string, error) {
	if obj.Bucket == "" || obj.Name == "" {
		return "", fmt.Errorf("storage: bucket and object name required")
	}
	wc := g.client.Bucket(obj.Bucket).Object(obj.Name).NewWriter(ctx)
	wc.ContentType = obj.ContentType
	if _, err := wc.Write(obj.Data); err != nil {
		_ = wc.Close()
		return "", fmt.Errorf("storage: write %s/%s: %w", obj.Bucket, obj.Name, err)
	}
	if err := wc.Close(); err != nil {
		return "", fmt.Errorf("storage: close %s/%s: %w", obj.Bucket, obj.Name, err)
	}
	return PublicURL(g.publicBase, obj.Bucket, obj.Name), nil
}

// Close releases the underlying client.
func (g *GCS) Close() error {
	return g.client.Close()
}
