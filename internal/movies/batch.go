package movies

import (
	"context"

	"github.com/syssam/tabula/predicate"
)

// batchSize bounds the number of identities matched by one query.
const batchSize = 50

// moviesByID loads the movies with the given identities, batchSize per
// query. The result follows the order of ids; missing holds the identities
// that matched no row.
func (c *Catalog) moviesByID(ctx context.Context, ids []int) (found []*Movie, missing []int, err error) {
	found = make([]*Movie, 0, len(ids))
	for start := 0; start < len(ids); start += batchSize {
		chunk := ids[start:min(start+batchSize, len(ids))]
		ms, err := c.Movies.Where(ctx, anyID(chunk))
		if err != nil {
			return nil, nil, err
		}
		ordered, ok := orderByKeys(chunk, ms, func(m *Movie) int { return m.Id })
		for i, m := range ordered {
			if !ok[i] {
				missing = append(missing, chunk[i])
				continue
			}
			found = append(found, m)
		}
	}
	return found, missing, nil
}

// anyID matches rows whose identity is one of ids. ids is not empty.
func anyID(ids []int) predicate.Node {
	if len(ids) == 1 {
		return MovieColumns.Id.EQ(ids[0])
	}
	more := make([]predicate.Node, 0, len(ids)-2)
	for _, id := range ids[2:] {
		more = append(more, MovieColumns.Id.EQ(id))
	}
	return predicate.Or(MovieColumns.Id.EQ(ids[0]), MovieColumns.Id.EQ(ids[1]), more...)
}

// orderByKeys reorders values to match keys. ok[i] reports whether a value
// with keys[i] was present; duplicate keys share the value.
func orderByKeys[K comparable, V any](keys []K, values []V, key func(V) K) (ordered []V, ok []bool) {
	lookup := make(map[K]V, len(values))
	for _, v := range values {
		lookup[key(v)] = v
	}
	ordered = make([]V, len(keys))
	ok = make([]bool, len(keys))
	for i, k := range keys {
		ordered[i], ok[i] = lookup[k]
	}
	return ordered, ok
}
