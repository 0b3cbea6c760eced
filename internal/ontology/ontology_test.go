package ontology

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsHeadNounHandlesPlurals(t *testing.T) {
	s := Default()

	assert.True(t, s.IsHeadNoun("oats"))
	assert.True(t, s.IsHeadNoun("egg"))
	assert.True(t, s.IsHeadNoun("Eggs"))
	assert.True(t, s.IsHeadNoun("bagels")) // singular form is in the table
	assert.False(t, s.IsHeadNoun("weather"))
	assert.False(t, s.IsHeadNoun(""))
}

func TestBeverageKindOfPrefersLongestMatch(t *testing.T) {
	s := Default()

	kind, ok := s.BeverageKindOf("jasmine tea")
	require.True(t, ok)
	assert.Equal(t, BeverageTea, kind)

	kind, ok = s.BeverageKindOf("a grande cold brew")
	require.True(t, ok)
	assert.Equal(t, BeverageCoffee, kind)

	// "oat milk" must win over the bare "milk" keyword.
	kind, ok = s.BeverageKindOf("oat milk")
	require.True(t, ok)
	assert.Equal(t, BeverageMilk, kind)

	_, ok = s.BeverageKindOf("toast")
	assert.False(t, ok)
}

func TestLookupBrandResolvesVariants(t *testing.T) {
	s := Default()

	b, ok := s.LookupBrand("oatley")
	require.True(t, ok)
	assert.Equal(t, "Oatly", b)

	b, ok = s.LookupBrand("Chobany")
	require.True(t, ok)
	assert.Equal(t, "Chobani", b)

	_, ok = s.LookupBrand("nestle")
	assert.False(t, ok)
}

func TestContainsBMKeywordUsesWordBoundaries(t *testing.T) {
	s := Default()

	assert.True(t, s.ContainsBMKeyword("bad poop this morning"))
	assert.True(t, s.ContainsBMKeyword("BM was loose"))
	// "bm" inside another word must not match.
	assert.False(t, s.ContainsBMKeyword("submarine sandwich"))
	assert.False(t, s.ContainsBMKeyword("had oats"))
}

func TestContainsWordBoundaries(t *testing.T) {
	assert.True(t, ContainsWord("feeling low today", "low"))
	assert.False(t, ContainsWord("yellow curry", "low"))
	assert.True(t, ContainsWord("acid reflux", "acid"))
	assert.False(t, ContainsWord("acidity", "acid"))
	assert.True(t, ContainsWord("heart burn", "heart burn"))
}

func TestSeverityAndBristolScalesAreInRange(t *testing.T) {
	s := Default()

	for word, sev := range s.SeverityWords {
		assert.GreaterOrEqual(t, sev, 1, "severity word %q", word)
		assert.LessOrEqual(t, sev, 10, "severity word %q", word)
	}
	for word, scale := range s.BristolWords {
		assert.GreaterOrEqual(t, scale, 1, "bristol word %q", word)
		assert.LessOrEqual(t, scale, 7, "bristol word %q", word)
	}

	assert.Equal(t, 2, s.SeverityWords["mild"])
	assert.Equal(t, 6, s.BristolWords["bad"])
	assert.Equal(t, 7, s.BristolWords["watery"])
}

func TestDensityFor(t *testing.T) {
	s := Default()

	d, ok := s.DensityFor("overnight oats")
	require.True(t, ok)
	assert.Equal(t, 234.0, d.GramsPerCup)

	_, ok = s.DensityFor("coffee")
	assert.False(t, ok)
}

func TestDefaultThresholdsValid(t *testing.T) {
	th := DefaultThresholds()
	assert.True(t, th.Valid())
	assert.Equal(t, 0.80, th.Strict)
	assert.Equal(t, 0.72, th.Lenient)
	assert.Equal(t, 0.65, th.Rescue)
	assert.Equal(t, 0.50, th.Reject)

	bad := th
	bad.Lenient = 0.9 // above strict
	assert.False(t, bad.Valid())
}

func TestProtectedWordsCoverBMKeywords(t *testing.T) {
	s := Default()
	for _, kw := range []string{"poop", "stool", "diarrhea", "constipated"} {
		assert.True(t, s.ProtectedWords[kw], "%q must be protected from spell correction", kw)
	}
}

func TestSingular(t *testing.T) {
	cases := []struct {
		in   string
		want string
		ok   bool
	}{
		{"berries", "berry", true},
		{"pancakes", "pancak", true},
		{"oats", "oat", true},
		{"tea", "tea", false},
		{"is", "is", false},
	}
	for _, tc := range cases {
		got, ok := Singular(tc.in)
		assert.Equal(t, tc.ok, ok, tc.in)
		if ok {
			assert.Equal(t, tc.want, got, tc.in)
		}
	}
}
