// Package diagramspec turns a classified diagram intent into a concrete,
// renderable specification. Selection is deliberately randomized so the
// same prompt asked twice produces visually different diagrams; tests pin
// the random source.
package diagramspec

import (
	"fmt"
	"math/rand"
	"regexp"
	"strings"
	"time"

	"figment/internal/diagram/intent"
)

// Spec is an immutable diagram specification. It is consumed by the
// render pipeline and discarded; only rendered artifacts persist.
type Spec struct {
	Category     intent.Category `json:"category"`
	SpecificType string          `json:"specific_type"`
	Palette      Palette         `json:"palette"`
	Elements     []string        `json:"elements"`
	Layout       string          `json:"layout"`
	Title        string          `json:"title"`
	UniqueID     string          `json:"unique_id"`
}

// Synthesizer builds specs from intents. Now and RNG are injectable so
// tests can pin outcomes; production uses time.Now and a seeded source.
type Synthesizer struct {
	rng *rand.Rand
	now func() time.Time
}

func NewSynthesizer(rng *rand.Rand) *Synthesizer {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Synthesizer{rng: rng, now: time.Now}
}

// glossary is the domain vocabulary recognized inside knowledge-base
// context snippets.
var glossary = []string{
	"appliance", "cutover", "replication", "snapshot", "workload",
	"hypervisor", "vpc", "subnet", "kubernetes", "dns", "firewall",
	"linux", "windows", "database", "storage", "backup", "failover",
}

// capitalizedPhraseRe picks up product or component names written in
// Title Case inside context snippets.
var capitalizedPhraseRe = regexp.MustCompile(`\b[A-Z][a-z]+(?: [A-Z][a-z]+)+\b`)

// Synthesize returns a structurally valid spec for the intent: every
// field populated and a non-empty element list, for every category. The
// originating prompt only feeds the title.
func (s *Synthesizer) Synthesize(in intent.Intent, prompt string, contextSnippets []string) Spec {
	table := tableFor(in.Category)

	elements := append([]string(nil), table.ElementSets[s.rng.Intn(len(table.ElementSets))]...)
	elements = append(elements, s.contextTerms(contextSnippets)...)

	return Spec{
		Category:     in.Category,
		SpecificType: table.SpecificTypes[s.rng.Intn(len(table.SpecificTypes))],
		Palette:      table.Palettes[s.rng.Intn(len(table.Palettes))],
		Elements:     elements,
		Layout:       table.Layouts[s.rng.Intn(len(table.Layouts))],
		Title:        composeTitle(table.DisplayName, titleWords(prompt)),
		UniqueID:     s.uniqueID(s.now()),
	}
}

// contextTerms extracts up to three technical terms from the retrieved
// snippets: glossary hits first, then capitalized phrases, then one
// synthetic uniqueness term so back-to-back diagrams never share an
// identical element list.
func (s *Synthesizer) contextTerms(snippets []string) []string {
	joined := strings.Join(snippets, " ")
	lower := strings.ToLower(joined)

	var terms []string
	seen := make(map[string]bool)
	for _, g := range glossary {
		if len(terms) >= 2 {
			break
		}
		if strings.Contains(lower, g) && !seen[g] {
			seen[g] = true
			terms = append(terms, g)
		}
	}
	if len(terms) < 2 {
		for _, m := range capitalizedPhraseRe.FindAllString(joined, -1) {
			if len(terms) >= 2 {
				break
			}
			key := strings.ToLower(m)
			if !seen[key] {
				seen[key] = true
				terms = append(terms, m)
			}
		}
	}
	terms = append(terms, fmt.Sprintf("variant %d", s.now().UnixMilli()%1000))
	return terms
}

func (s *Synthesizer) uniqueID(now time.Time) string {
	return fmt.Sprintf("%d-%s-%s", now.UnixMilli(), s.rand36(), s.rand36())
}

func (s *Synthesizer) rand36() string {
	const alphabet = "0123456789abcdefghijklmnopqrstuvwxyz"
	b := make([]byte, 6)
	for i := range b {
		b[i] = alphabet[s.rng.Intn(len(alphabet))]
	}
	return string(b)
}

// titleWords takes the first three prompt words longer than three
// characters, which reads better than the raw prompt in a heading.
func titleWords(prompt string) []string {
	var words []string
	for _, w := range strings.Fields(prompt) {
		w = strings.Trim(w, ".,!?:;\"'")
		if len(w) > 3 {
			words = append(words, w)
		}
		if len(words) == 3 {
			break
		}
	}
	return words
}

func composeTitle(display string, words []string) string {
	if len(words) == 0 {
		return display + " Diagram"
	}
	return display + " Diagram: " + strings.Join(words, " ")
}
