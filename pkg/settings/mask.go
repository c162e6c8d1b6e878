package settings

import "strings"

const maskPrefix = "****"

// MaskAPIKey hides all but the last four characters of key. Short keys are hidden
// entirely and an empty key stays empty.
func MaskAPIKey(key string) string {
	if key == "" {
		return ""
	}

	runes := []rune(key)
	if len(runes) <= 8 {
		return maskPrefix
	}

	return maskPrefix + string(runes[len(runes)-4:])
}

// IsMaskedAPIKey reports whether key looks like a MaskAPIKey result.
func IsMaskedAPIKey(key string) bool {
	return strings.HasPrefix(key, maskPrefix)
}

// WithMaskedAPIKeys returns a copy of g whose API keys are masked.
func (g GeneralSettings) WithMaskedAPIKeys() GeneralSettings {
	masked := g
	if g.APIKeys != nil {
		masked.APIKeys = make(map[string]string, len(g.APIKeys))
		for provider, key := range g.APIKeys {
			masked.APIKeys[provider] = MaskAPIKey(key)
		}
	}

	return masked
}

// RestoreMaskedAPIKeys puts back the keys of stored that g only carries in masked
// form, so settings read with masked keys can be saved again unchanged.
func (g *GeneralSettings) RestoreMaskedAPIKeys(stored GeneralSettings) {
	for provider, key := range g.APIKeys {
		if !IsMaskedAPIKey(key) {
			continue
		}
		if old := stored.APIKeys[provider]; old != "" && MaskAPIKey(old) == key {
			g.APIKeys[provider] = old
		}
	}
}
