package supabase

import (
	"context"
	"fmt"
	"io"
	"strings"

	storage_go "github.com/supabase-community/storage-go"
	"github.com/supabase-community/supabase-go"

	"github.com/kidandcat/heartquest/internal/media"
)

// Bucket is a public storage bucket holding memory images and uploaded
// music and video.
type Bucket struct {
	client *supabase.Client
	name   string
	prefix string
}

func NewBucket(client *supabase.Client, name string) *Bucket {
	// Public URLs are prefix + object path; derive the prefix from the SDK
	// rather than rebuilding its URL scheme.
	probe := client.Storage.GetPublicUrl(name, "probe").SignedURL
	return &Bucket{client: client, name: name, prefix: strings.TrimSuffix(probe, "probe")}
}

func (b *Bucket) Put(ctx context.Context, name, contentType string, r io.Reader) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	upsert := false
	_, err := b.client.Storage.UploadFile(b.name, name, r, storage_go.FileOptions{
		ContentType: &contentType,
		Upsert:      &upsert,
	})
	if err != nil {
		return "", fmt.Errorf("upload %s: %w", name, err)
	}
	return b.prefix + name, nil
}

// Remove deletes the objects behind urls in a single call.
func (b *Bucket) Remove(_ context.Context, urls []string) error {
	var paths []string
	for _, u := range urls {
		p, ok := strings.CutPrefix(u, b.prefix)
		if !ok {
			return fmt.Errorf("%w: %s", media.ErrOutsideBucket, u)
		}
		paths = append(paths, p)
	}
	if len(paths) == 0 {
		return nil
	}
	if _, err := b.client.Storage.RemoveFile(b.name, paths); err != nil {
		return fmt.Errorf("remove objects: %w", err)
	}
	return nil
}
