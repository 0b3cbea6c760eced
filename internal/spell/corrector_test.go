package spell

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkellerman/gutlog/internal/ontology"
)

func newCorrector() *Corrector {
	return New(ontology.Default(), ontology.DefaultThresholds())
}

func TestCorrectExactMatchScoresOne(t *testing.T) {
	c := newCorrector()
	got, score, ok := c.Correct("oats", ontology.Default().FoodDict(), 0.84)
	require.True(t, ok)
	assert.Equal(t, "oats", got)
	assert.Equal(t, 1.0, score)
}

func TestCorrectFuzzyMatch(t *testing.T) {
	c := newCorrector()
	got, score, ok := c.Correct("oatmeel", ontology.Default().FoodDict(), 0.84)
	require.True(t, ok)
	assert.Equal(t, "oatmeal", got)
	assert.Greater(t, score, 0.84)
}

func TestCorrectRejectsBelowThreshold(t *testing.T) {
	c := newCorrector()
	_, _, ok := c.Correct("xylophone", ontology.Default().FoodDict(), 0.84)
	assert.False(t, ok)
}

func TestCorrectTokensFixesTypos(t *testing.T) {
	c := newCorrector()
	dicts := DefaultDictionaries(ontology.Default())

	out, corrections := c.CorrectTokens("had some oatmeel for breakfast", dicts, ContextGeneral)
	assert.Equal(t, "had some oatmeal for breakfast", out)
	require.Len(t, corrections, 1)
	assert.Equal(t, "oatmeel", corrections[0].From)
	assert.Equal(t, "oatmeal", corrections[0].To)
	assert.Equal(t, "food", corrections[0].Dict)
}

func TestCorrectTokensSkipsProtectedWords(t *testing.T) {
	c := newCorrector()
	dicts := DefaultDictionaries(ontology.Default())

	// "poop" is close enough to food vocabulary that an unguarded
	// corrector could rewrite it. Protected words are never touched.
	out, corrections := c.CorrectTokens("bad poop this morning", dicts, ContextGeneral)
	assert.Equal(t, "bad poop this morning", out)
	assert.Empty(t, corrections)
}

func TestCorrectTokensSkipsShortAndNumericTokens(t *testing.T) {
	c := newCorrector()
	dicts := DefaultDictionaries(ontology.Default())

	out, corrections := c.CorrectTokens("2 am so ok 16.5", dicts, ContextGeneral)
	assert.Equal(t, "2 am so ok 16.5", out)
	assert.Empty(t, corrections)
}

func TestSymptomaticContextRaisesCrossDomainBar(t *testing.T) {
	c := newCorrector()
	dicts := DefaultDictionaries(ontology.Default())

	// In a symptom report, near-miss food matches must clear the higher
	// SpellProtected threshold instead of the ordinary one.
	_, generalCorr := c.CorrectTokens("stomach hurts after taco", dicts, ContextGeneral)
	_, sympCorr := c.CorrectTokens("stomach hurts after taco", dicts, ContextSymptomatic)
	assert.LessOrEqual(t, len(sympCorr), len(generalCorr))

	th := ontology.DefaultThresholds()
	assert.Greater(t, th.SpellProtected, th.Spell)
}

func TestCorrectTokensPreservesPunctuationAndCase(t *testing.T) {
	c := newCorrector()
	dicts := DefaultDictionaries(ontology.Default())

	out, corrections := c.CorrectTokens("Oatmeel, then coffee.", dicts, ContextGeneral)
	assert.Equal(t, "Oatmeal, then coffee.", out)
	require.Len(t, corrections, 1)
	assert.Equal(t, "Oatmeal", corrections[0].To)
}

func TestCorrectTokensKeepsExactWordsFromOtherDicts(t *testing.T) {
	c := newCorrector()
	dicts := DefaultDictionaries(ontology.Default())

	// "green" is a beverage-dictionary word; the food dictionary's fuzzy
	// candidate "greek" must not rewrite it just because food is checked
	// first.
	out, corrections := c.CorrectTokens("green tea", dicts, ContextGeneral)
	assert.Equal(t, "green tea", out)
	assert.Empty(t, corrections)
}

func TestCorrectTokensNeverPluralizes(t *testing.T) {
	c := newCorrector()
	dicts := DefaultDictionaries(ontology.Default())

	// "bite" scores high against "bites" but a number difference is not a
	// spelling error; rewriting it would double an implied portion.
	out, corrections := c.CorrectTokens("egg bite and jasmine tea", dicts, ContextGeneral)
	assert.Equal(t, "egg bite and jasmine tea", out)
	assert.Empty(t, corrections)

	assert.True(t, pluralVariant("bite", "bites"))
	assert.True(t, pluralVariant("berries", "berry"))
	assert.False(t, pluralVariant("oatmeel", "oatmeal"))
}

func TestCorrectTokensCanonicalizesBrands(t *testing.T) {
	c := newCorrector()
	dicts := DefaultDictionaries(ontology.Default())

	out, corrections := c.CorrectTokens("oatley milk with breakfast", dicts, ContextGeneral)
	assert.Contains(t, out, "Oatly")
	require.NotEmpty(t, corrections)
	assert.Equal(t, "brand", corrections[0].Dict)
}
