package constants

import (
	"strings"
)

// Provider names an extraction backend as accepted on the wire.
type Provider string

const (
	ProviderGemini Provider = "gemini"
	ProviderGroq   Provider = "groq"
)

var allProviders = []Provider{
	ProviderGemini,
	ProviderGroq,
}

func ProvidersAsStringSlice() []string {
	result := make([]string, len(allProviders))
	for i, p := range allProviders {
		result[i] = string(p)
	}
	return result
}

// ParseProvider matches input exactly against the known provider names.
func ParseProvider(input string) (Provider, bool) {
	for _, p := range allProviders {
		if input == string(p) {
			return p, true
		}
	}
	return "", false
}

// CanonicalProvider is the lenient variant used by the CLI flags.
func CanonicalProvider(input string) (Provider, bool) {
	normalized := strings.ToLower(strings.TrimSpace(input))
	synonyms := map[string]Provider{
		"google": ProviderGemini,
		"grok":   ProviderGroq,
	}
	if p, ok := synonyms[normalized]; ok {
		return p, true
	}
	return ParseProvider(normalized)
}
