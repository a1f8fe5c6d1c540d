package services

import "github.com/DMcoder75/Teachermeet-1Aug25/internal/models"

// The store has no join path from some relations to educators, so those
// reads run as two queries joined in memory. joinByKey is that join step: a
// pure left join over two record slices, matched on a key.
func joinByKey[L, R any, K comparable, O any](
	left []L,
	right []R,
	leftKey func(L) K,
	rightKey func(R) K,
	merge func(L, *R) O,
) []O {
	index := make(map[K]int, len(right))
	for i, r := range right {
		index[rightKey(r)] = i
	}

	out := make([]O, 0, len(left))
	for _, l := range left {
		var match *R
		if i, ok := index[leftKey(l)]; ok {
			match = &right[i]
		}
		out = append(out, merge(l, match))
	}
	return out
}

func joinPostsWithAuthors(posts []models.Post, authors []models.Educator) []models.FeedPost {
	return joinByKey(posts, authors,
		func(p models.Post) int64 { return p.EducatorID },
		func(e models.Educator) int64 { return e.ID },
		func(p models.Post, e *models.Educator) models.FeedPost {
			return models.FeedPost{Post: p, Author: e}
		},
	)
}
