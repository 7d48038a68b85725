package httpds

import (
	"context"
	"fmt"
	"io"
)

// Source is a dataset served over HTTP. Each Open issues a fresh GET so the
// dataset can be iterated more than once.
type Source struct {
	client *Client
	url    string
}

// NewSource binds client to url.
func NewSource(client *Client, url string) *Source { return &Source{client: client, url: url} }

// Open fetches the dataset. Anything but 200 is an error; the body of a
// failed response is discarded.
func (s *Source) Open(ctx context.Context) (io.ReadCloser, error) {
	resp, err := s.client.Get(ctx, s.url, nil)
	if err != nil {
		return nil, fmt.Errorf("httpds: get %s: %w", s.url, err)
	}
	if resp.StatusCode != 200 {
		_ = resp.Body.Close()
		return nil, fmt.Errorf("httpds: get %s: status %d", s.url, resp.StatusCode)
	}
	return resp.Body, nil
}
