package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractJSONObject(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    string
		wantErr bool
	}{
		{"bare object", `{"a":1}`, `{"a":1}`, false},
		{"prose around", "Here you go:\n```json\n{\"a\":{\"b\":2}}\n```\nThanks", `{"a":{"b":2}}`, false},
		{"greedy across objects", `{"a":1} and {"b":2}`, `{"a":1} and {"b":2}`, false},
		{"no braces", "I could not read the PDF", "", true},
		{"close before open", "} oops {", "", true},
		{"empty", "", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractJSONObject(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrNoJSON)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseJSONObject(t *testing.T) {
	got, err := ParseJSONObject("sure! {\"vendor\":{\"name\":\"Acme\"}} done")
	require.NoError(t, err)
	assert.Equal(t, "Acme", got["vendor"].(map[string]any)["name"])

	_, err = ParseJSONObject(`{"a":1} and {"b":2}`)
	assert.ErrorIs(t, err, ErrNoJSON, "greedy span that is not valid JSON")

	_, err = ParseJSONObject("nothing here")
	assert.ErrorIs(t, err, ErrNoJSON)
}
