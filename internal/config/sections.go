package config

import (
	"slices"
	"strings"
)

// Section kinds. The prefix names the dataset view the section reads.
const (
	MoviesDistByRelease = "movies.dist_by_release"
	MoviesDistByGenres  = "movies.dist_by_genres"
	MoviesMostGenres    = "movies.most_genres"

	RatingsMoviesDistByYear         = "ratings.movies.dist_by_year"
	RatingsMoviesDistByRating       = "ratings.movies.dist_by_rating"
	RatingsMoviesTopByNumOfRatings  = "ratings.movies.top_by_num_of_ratings"
	RatingsMoviesTopByRatings       = "ratings.movies.top_by_ratings"
	RatingsMoviesTopControversial   = "ratings.movies.top_controversial"
	RatingsUsersDistByRatingsNumber = "ratings.users.dist_by_ratings_number"
	RatingsUsersDistByRatingsValues = "ratings.users.dist_by_ratings_values"
	RatingsUsersTopByVariance       = "ratings.users.top_by_variance"

	TagsMostWords           = "tags.most_words"
	TagsLongest             = "tags.longest"
	TagsMostWordsAndLongest = "tags.most_words_and_longest"
	TagsMostPopular         = "tags.most_popular"
	TagsWith                = "tags.tags_with"

	LinksIMDB             = "links.imdb"
	LinksTopDirectors     = "links.top_directors"
	LinksMostExpensive    = "links.most_expensive"
	LinksMostProfitable   = "links.most_profitable"
	LinksLongest          = "links.longest"
	LinksTopCostPerMinute = "links.top_cost_per_minute"
)

// SectionKind describes the parameters a section kind accepts.
type SectionKind struct {
	Kind string

	// TakesN means the section honours options.n (default DefaultN).
	TakesN bool
	// TakesMetric means the section honours options.metric.
	TakesMetric bool
	// NeedsTitles means rows are keyed by movie title, which requires the
	// movies dataset.
	NeedsTitles bool
}

var sectionKinds = []SectionKind{
	{Kind: MoviesDistByRelease},
	{Kind: MoviesDistByGenres},
	{Kind: MoviesMostGenres, TakesN: true},

	{Kind: RatingsMoviesDistByYear},
	{Kind: RatingsMoviesDistByRating},
	{Kind: RatingsMoviesTopByNumOfRatings, TakesN: true, NeedsTitles: true},
	{Kind: RatingsMoviesTopByRatings, TakesN: true, TakesMetric: true, NeedsTitles: true},
	{Kind: RatingsMoviesTopControversial, TakesN: true, NeedsTitles: true},
	{Kind: RatingsUsersDistByRatingsNumber},
	{Kind: RatingsUsersDistByRatingsValues, TakesMetric: true},
	{Kind: RatingsUsersTopByVariance, TakesN: true},

	{Kind: TagsMostWords, TakesN: true},
	{Kind: TagsLongest, TakesN: true},
	{Kind: TagsMostWordsAndLongest, TakesN: true},
	{Kind: TagsMostPopular, TakesN: true},
	{Kind: TagsWith},

	{Kind: LinksIMDB},
	{Kind: LinksTopDirectors, TakesN: true},
	{Kind: LinksMostExpensive, TakesN: true, NeedsTitles: true},
	{Kind: LinksMostProfitable, TakesN: true, NeedsTitles: true},
	{Kind: LinksLongest, TakesN: true, NeedsTitles: true},
	{Kind: LinksTopCostPerMinute, TakesN: true, NeedsTitles: true},
}

// SectionKinds returns every known section kind in declaration order.
func SectionKinds() []SectionKind { return slices.Clone(sectionKinds) }

// LookupSectionKind finds the descriptor for kind.
func LookupSectionKind(kind string) (SectionKind, bool) {
	i := slices.IndexFunc(sectionKinds, func(k SectionKind) bool { return k.Kind == kind })
	if i < 0 {
		return SectionKind{}, false
	}
	return sectionKinds[i], true
}

// Dataset returns the dataset group a kind reads: "movies", "ratings",
// "tags" or "links".
func Dataset(kind string) string {
	group, _, _ := strings.Cut(kind, ".")
	return group
}
