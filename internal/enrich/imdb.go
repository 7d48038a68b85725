package enrich

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"movielens/internal/datasource/httpds"
	"movielens/internal/errs"
	"movielens/internal/parser/html"
)

// DefaultIMDBURL is the title page template; %s is the numeric IMDB id
// without the "tt" prefix, as stored in links.csv.
const DefaultIMDBURL = "https://www.imdb.com/title/tt%s/"

// IMDB scrapes the metadata lists of an IMDB title page.
type IMDB struct {
	client      *httpds.Client
	urlTemplate string
	selectors   html.Selectors
}

// NewIMDB returns an IMDB source. An empty urlTemplate selects
// DefaultIMDBURL.
func NewIMDB(client *httpds.Client, urlTemplate string) *IMDB {
	if urlTemplate == "" {
		urlTemplate = DefaultIMDBURL
	}
	if client == nil {
		client = httpds.NewClient(httpds.Config{})
	}
	return &IMDB{client: client, urlTemplate: urlTemplate, selectors: html.IMDBSelectors}
}

// Name labels IMDB fetches in metrics.
func (s *IMDB) Name() string { return "imdb" }

// URL returns the page address for id.
func (s *IMDB) URL(id string) string { return fmt.Sprintf(s.urlTemplate, id) }

// Fetch issues one GET for id. Anything but 200 is a RetrievalError
// carrying the status.
func (s *IMDB) Fetch(ctx context.Context, id string) (map[string]string, error) {
	url := s.URL(id)
	resp, err := s.client.Get(ctx, url, nil)
	if err != nil {
		return nil, &errs.RetrievalError{ID: id, URL: url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, &errs.RetrievalError{ID: id, URL: url, Status: resp.StatusCode}
	}

	fields, err := html.ExtractLabeled(resp.Body, s.selectors)
	if err != nil {
		return nil, &errs.RetrievalError{ID: id, URL: url, Err: err}
	}
	return fields, nil
}
