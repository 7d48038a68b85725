// Package datasource abstracts where dataset bytes come from. Analyses only
// ever see an io.ReadCloser; whether it is backed by a local file or an HTTP
// download is decided once, from the configured location.
package datasource

import (
	"context"
	"io"
	"strings"

	"movielens/internal/datasource/file"
	"movielens/internal/datasource/httpds"
)

// Source opens a fresh stream over a dataset. Every call starts from the
// first byte so callers can iterate the same dataset more than once.
type Source interface {
	Open(ctx context.Context) (io.ReadCloser, error)
}

// Resolve returns an HTTP source for http(s) locations and a local file source
// otherwise. client may be nil when only local paths are used.
func Resolve(location string, client *httpds.Client) Source {
	lower := strings.ToLower(location)
	if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") {
		if client == nil {
			client = httpds.NewClient(httpds.Config{})
		}
		return httpds.NewSource(client, location)
	}
	return file.NewLocal(location)
}
