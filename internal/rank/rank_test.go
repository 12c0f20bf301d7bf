package rank

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type item struct {
	name  string
	count float64
}

func names(items []item) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.name
	}
	return out
}

func byCount(it item) float64 { return it.count }

func TestDescending(t *testing.T) {
	in := []item{{"a", 1}, {"b", 3}, {"c", 3}, {"d", 2}}
	got := Descending(in, byCount)
	assert.Equal(t, []string{"b", "c", "d", "a"}, names(got))
	assert.Equal(t, []string{"a", "b", "c", "d"}, names(in), "input untouched")
}

func TestAscending(t *testing.T) {
	in := []item{{"x", 2001}, {"y", 1999}, {"z", 2001}}
	assert.Equal(t, []string{"y", "x", "z"}, names(Ascending(in, byCount)))
}

func TestTop(t *testing.T) {
	in := []item{{"a", 1}, {"b", 3}, {"c", 2}}
	assert.Equal(t, []string{"b", "c"}, names(Top(in, 2, byCount)))
	assert.Equal(t, []string{"b", "c", "a"}, names(Top(in, 0, byCount)))
	assert.Empty(t, Top([]item{}, 3, byCount))
}
