// Package media stores uploaded images, music and video and hands back the
// public URL they are served from.
package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

var ErrOutsideBucket = errors.New("media: url does not belong to this bucket")

// Bucket is an object store with public URLs.
type Bucket interface {
	Put(ctx context.Context, name, contentType string, r io.Reader) (string, error)
	Remove(ctx context.Context, urls []string) error
}

// ObjectName builds a collision-free name under folder keeping the
// original extension.
func ObjectName(folder, filename string) string {
	ext := strings.ToLower(path.Ext(filename))
	return path.Join(folder, uuid.NewString()+ext)
}

// Disk is a Bucket on the local filesystem, served by Handler.
type Disk struct {
	dir    string
	prefix string
}

// NewDisk stores objects under dir. prefix is the URL path they are
// served from, e.g. "/media/".
func NewDisk(dir, prefix string) (*Disk, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create media dir: %w", err)
	}
	if !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	return &Disk{dir: dir, prefix: prefix}, nil
}

func (d *Disk) path(name string) (string, error) {
	clean := path.Clean("/" + name)[1:]
	if clean == "" {
		return "", fmt.Errorf("invalid object name %q", name)
	}
	return filepath.Join(d.dir, filepath.FromSlash(clean)), nil
}

func (d *Disk) Put(ctx context.Context, name, _ string, r io.Reader) (string, error) {
	p, err := d.path(name)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
		return "", fmt.Errorf("create folder: %w", err)
	}
	f, err := os.Create(p)
	if err != nil {
		return "", fmt.Errorf("create object: %w", err)
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(p)
		return "", fmt.Errorf("write object: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close object: %w", err)
	}
	return d.prefix + path.Clean("/" + name)[1:], ctx.Err()
}

// Remove deletes the objects behind urls. Missing objects are ignored.
func (d *Disk) Remove(_ context.Context, urls []string) error {
	var errs []error
	for _, u := range urls {
		name, ok := strings.CutPrefix(u, d.prefix)
		if !ok {
			errs = append(errs, fmt.Errorf("%w: %s", ErrOutsideBucket, u))
			continue
		}
		p, err := d.path(name)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Handler serves stored objects under the bucket prefix.
func (d *Disk) Handler() http.Handler {
	return http.StripPrefix(d.prefix, http.FileServer(http.Dir(d.dir)))
}
