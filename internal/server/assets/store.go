// Package assets stores recipe images. The local backend keeps them in a
// directory, the s3 backend in an S3 compatible bucket.
package assets

import (
	"context"
	"path"
	"strings"
)

// Store is a flat namespace of image files addressed by plain file name.
type Store interface {
	// Ensure creates the backing directory or bucket when missing.
	Ensure(ctx context.Context) error
	// List returns the names of regular, non-hidden files, sorted.
	List(ctx context.Context) ([]string, error)
	// ListAll is List including dotfiles.
	ListAll(ctx context.Context) ([]string, error)
	// Read returns common.ErrorNotFound when name does not exist.
	Read(ctx context.Context, name string) ([]byte, error)
	// Write creates or overwrites name.
	Write(ctx context.Context, name string, data []byte) error
	Delete(ctx context.Context, name string) error
}

// Presigner is implemented by stores that can hand out temporary public URLs.
type Presigner interface {
	PresignGet(ctx context.Context, name string) (string, error)
}

// KeepFile is never removed by CleanOrphans.
const KeepFile = ".gitkeep"

// CleanOrphans deletes every stored file, dotfiles included, whose name is
// not the base name of one of imagePaths and returns how many were removed.
// KeepFile always stays.
func CleanOrphans(ctx context.Context, store Store, imagePaths []string) (int, error) {
	used := make(map[string]struct{}, len(imagePaths))
	for _, p := range imagePaths {
		if p == "" {
			continue
		}
		used[path.Base(strings.ReplaceAll(p, `\`, "/"))] = struct{}{}
	}

	names, err := store.ListAll(ctx)
	if err != nil {
		return 0, err
	}

	deleted := 0
	for _, name := range names {
		if name == KeepFile {
			continue
		}
		if _, ok := used[name]; ok {
			continue
		}
		if err := store.Delete(ctx, name); err != nil {
			return deleted, err
		}
		deleted++
	}
	return deleted, nil
}

// ContentType maps an image file name to the type it is served with.
func ContentType(name string) string {
	switch strings.ToLower(path.Ext(name)) {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".webp":
		return "image/webp"
	case ".gif":
		return "image/gif"
	default:
		return "application/octet-stream"
	}
}
