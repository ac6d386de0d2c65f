// Package storage moves product images from the upload area to their final location.
package storage

import (
	"context"
	"errors"
	"io"
	"path"
	"strconv"
	"strings"
)

const TempPrefix = "tmp/"

var ErrInvalidKey = errors.New("storage: invalid key")

// Mover is implemented by the local filesystem and S3 backends.
type Mover interface {
	Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) error
	Move(ctx context.Context, from, to string) error
	Delete(ctx context.Context, key string) error
}

// CleanKey normalizes a slash separated object key and rejects keys escaping the root.
func CleanKey(key string) (string, error) {
	key = strings.TrimSpace(key)
	if key == "" || strings.Contains(key, "\\") {
		return "", ErrInvalidKey
	}
	cleaned := path.Clean("/" + key)[1:]
	if cleaned == "" || cleaned != strings.TrimPrefix(key, "/") {
		return "", ErrInvalidKey
	}
	return cleaned, nil
}

func ProductImageKey(websiteID, productID uint, name string) string {
	return path.Join("products", uitoa(websiteID), uitoa(productID), path.Base(name))
}

func IsTemp(key string) bool { return strings.HasPrefix(key, TempPrefix) }

func uitoa(v uint) string { return strconv.FormatUint(uint64(v), 10) }
