package llm

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func TestExtractJSONPlainObject(t *testing.T) {
	got, err := ExtractJSON[sample](`{"name": "oats", "count": 2}`, nil)
	require.NoError(t, err)
	assert.Equal(t, sample{Name: "oats", Count: 2}, got)
}

func TestExtractJSONWithSurroundingProse(t *testing.T) {
	raw := "Sure! Here is the result:\n{\"name\": \"tea\", \"count\": 1}\nLet me know if you need more."
	got, err := ExtractJSON[sample](raw, nil)
	require.NoError(t, err)
	assert.Equal(t, "tea", got.Name)
}

func TestExtractJSONStripsCodeFences(t *testing.T) {
	raw := "```json\n{\"name\": \"soup\", \"count\": 3}\n```"
	got, err := ExtractJSON[sample](raw, nil)
	require.NoError(t, err)
	assert.Equal(t, "soup", got.Name)
	assert.Equal(t, 3, got.Count)
}

func TestExtractJSONNestedBraces(t *testing.T) {
	type outer struct {
		Inner map[string]string `json:"inner"`
	}
	got, err := ExtractJSON[outer](`prefix {"inner": {"a": "b"}} suffix`, nil)
	require.NoError(t, err)
	assert.Equal(t, "b", got.Inner["a"])
}

func TestExtractJSONBracesInsideStrings(t *testing.T) {
	got, err := ExtractJSON[sample](`{"name": "odd } value", "count": 1}`, nil)
	require.NoError(t, err)
	assert.Equal(t, "odd } value", got.Name)
}

func TestExtractJSONNoObject(t *testing.T) {
	_, err := ExtractJSON[sample]("no json here", nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidOutput)
}

func TestExtractJSONMalformed(t *testing.T) {
	_, err := ExtractJSON[sample](`{"name": `, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidOutput)
}

func TestExtractJSONValidatorFailure(t *testing.T) {
	validator := func(s sample) error {
		if s.Count < 0 {
			return fmt.Errorf("count %d negative", s.Count)
		}
		return nil
	}
	_, err := ExtractJSON[sample](`{"name": "x", "count": -1}`, validator)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidOutput)

	got, err := ExtractJSON[sample](`{"name": "x", "count": 1}`, validator)
	require.NoError(t, err)
	assert.Equal(t, 1, got.Count)
}
