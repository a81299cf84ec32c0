// Package voicedna derives a stylistic fingerprint from writing samples and
// runs analyses in the background.
package voicedna

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"unicode"

	"socialbot-gateway/pkg/models"
)

// ToneTags is the fixed whitelist of tone tags a fingerprint may carry.
var ToneTags = map[string]bool{
	"concise":              true,
	"detailed":             true,
	"formal":               true,
	"casual":               true,
	"no_emojis":            true,
	"emojis_ok":            true,
	"enthusiastic":         true,
	"inquisitive":          true,
	"warm_supportive":      true,
	"neutral_professional": true,
}

// mutuallyExclusive pairs tags where at most one may be present.
var mutuallyExclusive = [][2]string{
	{"concise", "detailed"},
	{"formal", "casual"},
	{"no_emojis", "emojis_ok"},
	{"warm_supportive", "neutral_professional"},
}

// Traits that can be nudged through an adjustment.
const (
	TraitFormality   = "formality"
	TraitEmoji       = "emoji_rate"
	TraitExclamation = "exclamation_rate"
	TraitQuestion    = "question_rate"
	TraitLength      = "avg_sentence_length"
)

var ErrNotEnoughSamples = errors.New("not enough writing samples")

var stopWords = map[string]bool{
	"the": true, "a": true, "an": true, "and": true, "or": true, "but": true, "to": true,
	"of": true, "in": true, "on": true, "for": true, "is": true, "it": true, "you": true,
	"i": true, "we": true, "our": true, "your": true, "me": true, "my": true, "this": true,
	"that": true, "with": true, "be": true, "are": true, "at": true, "so": true, "if": true,
	"just": true, "was": true, "have": true, "has": true, "will": true, "can": true, "do": true,
}

var casualWords = map[string]bool{
	"lol": true, "omg": true, "haha": true, "gonna": true, "wanna": true, "hey": true,
	"yay": true, "btw": true, "tbh": true, "u": true, "ya": true, "thx": true, "omw": true,
}

// Analyzer computes fingerprints. MinSamples is the number of non-blank
// samples required.
type Analyzer struct {
	MinSamples int
}

func NewAnalyzer(minSamples int) *Analyzer {
	if minSamples < 1 {
		minSamples = 1
	}
	return &Analyzer{MinSamples: minSamples}
}

func (a *Analyzer) Analyze(samples []string) (models.VoiceFingerprint, error) {
	var texts []string
	for _, s := range samples {
		if s = strings.TrimSpace(s); s != "" {
			texts = append(texts, s)
		}
	}
	if len(texts) < a.MinSamples {
		return models.VoiceFingerprint{}, fmt.Errorf("%w: have %d, need %d", ErrNotEnoughSamples, len(texts), a.MinSamples)
	}

	var sentences, words, emojis, exclaims, questions, upper, letters, casual int
	freq := map[string]int{}
	lastLines := map[string]int{}
	for _, text := range texts {
		sentences += countSentences(text)
		for _, r := range text {
			switch {
			case isEmoji(r):
				emojis++
			case r == '!':
				exclaims++
			case r == '?':
				questions++
			case unicode.IsLetter(r):
				letters++
				if unicode.IsUpper(r) {
					upper++
				}
			}
		}
		for _, w := range tokenize(text) {
			words++
			if casualWords[w] || strings.Contains(w, "'") {
				casual++
			}
			if len(w) > 2 && !stopWords[w] {
				freq[w]++
			}
		}
		if line := signoffCandidate(text); line != "" {
			lastLines[line]++
		}
	}

	fp := models.VoiceFingerprint{
		AvgSentenceLength: round(float64(words) / float64(max(sentences, 1))),
		EmojiRate:         round(float64(emojis) / float64(len(texts))),
		ExclamationRate:   round(float64(exclaims) / float64(max(sentences, 1))),
		QuestionRate:      round(float64(questions) / float64(max(sentences, 1))),
		UppercaseRatio:    round(float64(upper) / float64(max(letters, 1))),
		TopWords:          topWords(freq, 5),
		Signoffs:          repeated(lastLines, 2),
	}
	fp.Formality = round(formality(fp, float64(casual)/float64(len(texts))))
	fp.ToneTags = inferTones(fp)
	return fp, nil
}

// Adjust applies trait deltas and tone edits to a fingerprint. Unknown traits
// and tags outside the whitelist are rejected.
func Adjust(fp models.VoiceFingerprint, req models.VoiceDNAAdjustRequest) (models.VoiceFingerprint, error) {
	out := fp
	out.ToneTags = append([]string(nil), fp.ToneTags...)
	out.Adjustments = map[string]float64{}
	for k, v := range fp.Adjustments {
		out.Adjustments[k] = v
	}

	for trait, delta := range req.Traits {
		if delta < -1 || delta > 1 {
			return fp, fmt.Errorf("adjustment for %s must be within [-1, 1]", trait)
		}
		switch trait {
		case TraitFormality:
			out.Formality = round(clamp01(out.Formality + delta))
		case TraitEmoji:
			out.EmojiRate = round(math.Max(0, out.EmojiRate+delta))
		case TraitExclamation:
			out.ExclamationRate = round(math.Max(0, out.ExclamationRate+delta))
		case TraitQuestion:
			out.QuestionRate = round(math.Max(0, out.QuestionRate+delta))
		case TraitLength:
			out.AvgSentenceLength = round(math.Max(1, out.AvgSentenceLength*(1+delta)))
		default:
			return fp, fmt.Errorf("unknown trait %q", trait)
		}
		out.Adjustments[trait] = round(out.Adjustments[trait] + delta)
	}

	for _, t := range req.RemoveTones {
		out.ToneTags = removeTag(out.ToneTags, normalizeTag(t))
	}
	for _, t := range req.AddTones {
		tag := normalizeTag(t)
		if !ToneTags[tag] {
			return fp, fmt.Errorf("unknown tone tag %q", t)
		}
		out.ToneTags = addTag(out.ToneTags, tag)
	}
	return out, nil
}

// ExampleReplies renders a few canned replies in the fingerprint's style so
// the owner can judge it.
func ExampleReplies(fp models.VoiceFingerprint) []string {
	bases := []string{
		"Thanks so much for reaching out",
		"Great question, the details are in your DMs",
		"We really appreciate the support",
	}
	if fp.Formality >= 0.6 {
		bases = []string{
			"Thank you for your message",
			"We have sent the details to your inbox",
			"We appreciate your continued support",
		}
	}
	out := make([]string, 0, len(bases))
	for i, b := range bases {
		s := b
		switch {
		case fp.ExclamationRate >= 0.3:
			s += "!"
		default:
			s += "."
		}
		if fp.EmojiRate >= 0.5 && i%2 == 0 {
			s += " ✨"
		}
		if len(fp.Signoffs) > 0 && i == len(bases)-1 {
			s += " " + fp.Signoffs[0]
		}
		out = append(out, s)
	}
	return out
}

func inferTones(fp models.VoiceFingerprint) []string {
	var tags []string
	switch {
	case fp.AvgSentenceLength <= 8:
		tags = append(tags, "concise")
	case fp.AvgSentenceLength >= 18:
		tags = append(tags, "detailed")
	}
	switch {
	case fp.Formality >= 0.65:
		tags = append(tags, "formal", "neutral_professional")
	case fp.Formality <= 0.4:
		tags = append(tags, "casual")
	}
	if fp.EmojiRate >= 0.5 {
		tags = append(tags, "emojis_ok")
	} else if fp.EmojiRate == 0 {
		tags = append(tags, "no_emojis")
	}
	if fp.ExclamationRate >= 0.3 {
		tags = append(tags, "enthusiastic")
		if fp.Formality < 0.65 {
			tags = append(tags, "warm_supportive")
		}
	}
	if fp.QuestionRate >= 0.25 {
		tags = append(tags, "inquisitive")
	}
	return tags
}

func formality(fp models.VoiceFingerprint, casualPerSample float64) float64 {
	f := 0.5
	f += math.Min(fp.AvgSentenceLength/40, 0.25)
	f -= math.Min(fp.EmojiRate*0.15, 0.25)
	f -= math.Min(fp.ExclamationRate*0.2, 0.2)
	f -= math.Min(casualPerSample*0.1, 0.3)
	return clamp01(f)
}

func addTag(tags []string, tag string) []string {
	for _, pair := range mutuallyExclusive {
		if pair[0] == tag {
			tags = removeTag(tags, pair[1])
		}
		if pair[1] == tag {
			tags = removeTag(tags, pair[0])
		}
	}
	for _, t := range tags {
		if t == tag {
			return tags
		}
	}
	return append(tags, tag)
}

func removeTag(tags []string, tag string) []string {
	out := tags[:0]
	for _, t := range tags {
		if t != tag {
			out = append(out, t)
		}
	}
	return out
}

func normalizeTag(t string) string {
	return strings.ToLower(strings.TrimSpace(t))
}

func countSentences(text string) int {
	n := 0
	prevTerminal := false
	for _, r := range text {
		terminal := r == '.' || r == '!' || r == '?' || r == '\n'
		if terminal && !prevTerminal {
			n++
		}
		prevTerminal = terminal
	}
	if !prevTerminal {
		n++
	}
	return n
}

func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '\''
	})
}

func signoffCandidate(text string) string {
	lines := strings.Split(strings.TrimSpace(text), "\n")
	last := strings.TrimSpace(lines[len(lines)-1])
	if len(lines) < 2 || last == "" || len(strings.Fields(last)) > 4 {
		return ""
	}
	return last
}

func isEmoji(r rune) bool {
	return (r >= 0x1F300 && r <= 0x1FAFF) || (r >= 0x2600 && r <= 0x27BF)
}

func topWords(freq map[string]int, n int) []string {
	words := make([]string, 0, len(freq))
	for w := range freq {
		words = append(words, w)
	}
	sort.Slice(words, func(i, j int) bool {
		if freq[words[i]] != freq[words[j]] {
			return freq[words[i]] > freq[words[j]]
		}
		return words[i] < words[j]
	})
	if len(words) > n {
		words = words[:n]
	}
	return words
}

func repeated(counts map[string]int, threshold int) []string {
	var out []string
	for s, n := range counts {
		if n >= threshold {
			out = append(out, s)
		}
	}
	sort.Strings(out)
	return out
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}

func round(v float64) float64 {
	return math.Round(v*100) / 100
}
