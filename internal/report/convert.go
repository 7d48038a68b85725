package report

import (
	"movielens/internal/aggregate"
)

// ranked adapts an analysis result to a Section.
func ranked[K comparable, V aggregate.Number](name, kind string, r aggregate.Ranking[K, V], err error) (Section, error) {
	if err != nil {
		return Section{}, err
	}
	return FromRanking(name, kind, r), nil
}

// listed is ranked for analyses that return plain lists.
func listed(name, kind string, items []string, err error) (Section, error) {
	if err != nil {
		return Section{}, err
	}
	return FromList(name, kind, items), nil
}
