package movielens

import (
	"context"
	"fmt"
	"regexp"
	"slices"
	"strings"
	"unicode/utf8"

	"movielens/internal/aggregate"
	"movielens/internal/dataset"
	"movielens/internal/datasource"

	"golang.org/x/text/cases"
)

var wordPattern = regexp.MustCompile(`\w+`)

// Tags analyses tags.csv.
type Tags struct {
	src datasource.Source
}

// NewTags binds the analyses to src.
func NewTags(src datasource.Source) *Tags { return &Tags{src: src} }

// MostWords returns the n distinct tags with the most words.
func (t *Tags) MostWords(ctx context.Context, n int) (aggregate.Ranking[string, int], error) {
	c, err := t.distinct(ctx, func(tag string) int { return len(wordPattern.FindAllString(tag, -1)) })
	if err != nil {
		return nil, fmt.Errorf("tags: most words: %w", err)
	}
	return c.Top(n), nil
}

// Longest returns the n distinct tags with the most characters.
func (t *Tags) Longest(ctx context.Context, n int) ([]string, error) {
	c, err := t.distinct(ctx, utf8.RuneCountInString)
	if err != nil {
		return nil, fmt.Errorf("tags: longest: %w", err)
	}
	return c.Top(n).Keys(), nil
}

// MostWordsAndLongest returns the top n tags by word count followed by those
// top n longest tags not already listed.
func (t *Tags) MostWordsAndLongest(ctx context.Context, n int) ([]string, error) {
	words, err := t.MostWords(ctx, n)
	if err != nil {
		return nil, err
	}
	longest, err := t.Longest(ctx, n)
	if err != nil {
		return nil, err
	}
	out := words.Keys()
	for _, tag := range longest {
		if !slices.Contains(out, tag) {
			out = append(out, tag)
		}
	}
	return out, nil
}

// MostPopular counts tag occurrences case-insensitively and returns the n
// most used, lowercased.
func (t *Tags) MostPopular(ctx context.Context, n int) (aggregate.Ranking[string, int], error) {
	c := aggregate.NewCounter[string]()
	err := scan(ctx, t.src, TagsSchema, func(rec dataset.Record) error {
		c.Add(strings.ToLower(rec.String(tagText)))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("tags: most popular: %w", err)
	}
	return c.Top(n), nil
}

// TagsWith returns every distinct tag containing word, ignoring case,
// sorted alphabetically.
func (t *Tags) TagsWith(ctx context.Context, word string) ([]string, error) {
	fold := cases.Fold()
	needle := fold.String(word)

	seen := make(map[string]struct{})
	var out []string
	err := scan(ctx, t.src, TagsSchema, func(rec dataset.Record) error {
		tag := rec.String(tagText)
		if !strings.Contains(fold.String(tag), needle) {
			return nil
		}
		if _, dup := seen[tag]; dup {
			return nil
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("tags: tags with %q: %w", word, err)
	}
	slices.Sort(out)
	return out, nil
}

// distinct scores every distinct tag once, in first-seen order.
func (t *Tags) distinct(ctx context.Context, score func(string) int) (*aggregate.Counter[string], error) {
	c := aggregate.NewCounter[string]()
	err := scan(ctx, t.src, TagsSchema, func(rec dataset.Record) error {
		tag := rec.String(tagText)
		c.SetOnce(tag, score(tag))
		return nil
	})
	return c, err
}
