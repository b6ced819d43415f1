package translation

import "strings"

// Pair is an ordered (source, target) language pair.
type Pair struct {
	Source string
	Target string
}

// Dictionary is a static phrasebook used before any network attempt.
// Matching is whole-string, case-insensitive and whitespace-trimmed.
type Dictionary struct {
	entries map[Pair]map[string]string
}

// NewDictionary copies entries, normalizing every phrase key.
func NewDictionary(entries map[Pair]map[string]string) *Dictionary {
	d := &Dictionary{entries: make(map[Pair]map[string]string, len(entries))}
	for pair, phrases := range entries {
		norm := make(map[string]string, len(phrases))
		for k, v := range phrases {
			norm[normalizePhrase(k)] = v
		}
		d.entries[pair] = norm
	}
	return d
}

// Lookup returns the dictionary translation for text, if any.
func (d *Dictionary) Lookup(text, source, target string) (string, bool) {
	if d == nil {
		return "", false
	}
	phrases, ok := d.entries[Pair{Source: source, Target: target}]
	if !ok {
		return "", false
	}
	v, ok := phrases[normalizePhrase(text)]
	if !ok || v == "" {
		return "", false
	}
	return v, true
}

// Pairs lists the language pairs with at least one entry.
func (d *Dictionary) Pairs() []Pair {
	if d == nil {
		return nil
	}
	out := make([]Pair, 0, len(d.entries))
	for p, phrases := range d.entries {
		if len(phrases) > 0 {
			out = append(out, p)
		}
	}
	return out
}

func normalizePhrase(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// DefaultDictionary returns the built-in phrasebook of common greetings.
func DefaultDictionary() *Dictionary {
	return NewDictionary(map[Pair]map[string]string{
		{Source: "pt", Target: "en"}: {
			"olá":                "hello",
			"oi":                 "hi",
			"obrigado":           "thank you",
			"por favor":          "please",
			"sim":                "yes",
			"não":                "no",
			"tudo bem":           "how are you",
			"adeus":              "goodbye",
			"tchau":              "bye",
			"bom dia":            "good morning",
			"boa noite":          "good night",
			"como você está":     "how are you",
			"estou bem":          "i am well",
			"muito bem":          "very well",
			"eu estou bem":       "i am well",
			"estou bem obrigado": "i am well thank you",
			"e você":             "and you",
			"tudo certo":         "all good",
			"tudo ok":            "all ok",
			"água":               "water",
			"comida":             "food",
		},
		{Source: "en", Target: "pt"}: {
			"hello":        "olá",
			"hi":           "oi",
			"thank you":    "obrigado",
			"please":       "por favor",
			"yes":          "sim",
			"no":           "não",
			"how are you":  "como você está",
			"goodbye":      "adeus",
			"bye":          "tchau",
			"good morning": "bom dia",
			"good night":   "boa noite",
			"i am well":    "estou bem",
			"very well":    "muito bem",
			"and you":      "e você",
			"all good":     "tudo certo",
			"all ok":       "tudo ok",
			"water":        "água",
			"food":         "comida",
		},
		{Source: "pt", Target: "es"}: {
			"olá":       "hola",
			"obrigado":  "gracias",
			"por favor": "por favor",
			"sim":       "sí",
			"não":       "no",
			"água":      "agua",
			"comida":    "comida",
		},
		{Source: "en", Target: "es"}: {
			"hello":     "hola",
			"thank you": "gracias",
			"please":    "por favor",
			"yes":       "sí",
			"no":        "no",
		},
	})
}
