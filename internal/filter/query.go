package filter

import (
	"net/url"
	"strings"

	"github.com/samber/lo"
)

// Query is the set of request parameters sent to the stats API.
// Key order is irrelevant; Encode sorts keys.
type Query map[string]string

// Merge returns a new query holding q overlaid with overrides.
// Blank values on either side are dropped.
func (q Query) Merge(overrides Query) Query {
	return lo.PickBy(lo.Assign(q, overrides), func(_, v string) bool {
		return strings.TrimSpace(v) != ""
	})
}

func (q Query) Encode() string {
	if len(q) == 0 {
		return ""
	}
	values := url.Values{}
	for k, v := range q {
		values.Set(k, v)
	}
	return values.Encode()
}

func (q Query) Get(key string) string {
	return q[key]
}
