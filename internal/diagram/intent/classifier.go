// Package intent decides whether a free-text prompt is asking for a
// diagram at all, and if so which category of diagram fits best.
package intent

import (
	"math/rand"
	"regexp"
	"strings"
)

// Category tags the broad style of diagram a prompt calls for.
type Category string

const (
	CategoryNetwork   Category = "network"
	CategoryProcess   Category = "process"
	CategorySoftware  Category = "software"
	CategoryMigration Category = "migration"
	CategoryCloud     Category = "cloud"
	CategoryGeneric   Category = "generic"
)

// Intent is the classification result for one prompt. Derived fresh per
// prompt and never persisted.
type Intent struct {
	IsDiagramRequest bool
	Category         Category
	// Signals lists the keyword classes that fired, for logging.
	Signals []string
}

// Classifier is a pure classifier over prompt text. The random source
// only jitters category selection; diagram-or-not is deterministic.
type Classifier struct {
	product string
	rng     *rand.Rand
}

// NewClassifier builds a classifier for the given product name. A nil
// rng falls back to a shared unseeded source.
func NewClassifier(product string, rng *rand.Rand) *Classifier {
	return &Classifier{product: strings.ToLower(strings.TrimSpace(product)), rng: rng}
}

var interrogativeStarters = map[string]bool{
	"what": true, "how": true, "why": true, "when": true, "where": true,
	"who": true, "can": true, "is": true, "are": true, "do": true,
	"does": true, "which": true, "could": true, "would": true,
	"should": true, "will": true,
}

// explicitVisualRe matches phrasings that request a visual outright, e.g.
// "draw me a network diagram" or "generate a chart of the process".
var explicitVisualRe = regexp.MustCompile(`(?i)\b(show|create|draw|generate|visualize|make)\b.*\b(diagram|chart|visual|graph|picture|image)s?\b`)

var (
	primaryTerms   = []string{"flowchart", "diagram", "architecture", "chart"}
	secondaryTerms = []string{"picture", "image", "illustration", "visual", "graph", "visualization", "infographic"}
	actionVerbs    = []string{"visualize", "draw", "illustrate", "sketch"}
)

var categoryKeywords = map[Category][]string{
	CategoryNetwork: {
		"network", "topology", "vpc", "subnet", "firewall", "router",
		"switch", "vpn", "connectivity", "lan", "wan",
	},
	CategoryProcess: {
		"process", "workflow", "flow", "pipeline", "steps", "procedure",
		"sequence", "lifecycle", "stages",
	},
	CategorySoftware: {
		"architecture", "component", "microservice", "service", "module",
		"api", "database", "stack", "interface",
	},
	CategoryMigration: {
		"migration", "migrate", "cutover", "replatform", "rehost",
		"lift and shift", "workload", "source", "target",
	},
	CategoryCloud: {
		"cloud", "aws", "azure", "gcp", "google cloud", "kubernetes",
		"instance", "region", "vm",
	},
}

// Classify is total: any input yields a valid Intent, never an error.
// Optional context snippets (retrieved knowledge-base passages) only
// influence category selection, at half weight.
func (c *Classifier) Classify(prompt string, contextSnippets ...string) Intent {
	lower := strings.ToLower(strings.TrimSpace(prompt))
	if lower == "" {
		return Intent{Category: CategoryGeneric}
	}

	// Plain questions must not spuriously trigger generation.
	if startsInterrogative(lower) && !explicitVisualRe.MatchString(lower) {
		return Intent{Category: CategoryGeneric}
	}

	score := 0
	var signals []string
	if containsAny(lower, primaryTerms) {
		score += 2
		signals = append(signals, "primary")
	}
	if containsAny(lower, secondaryTerms) {
		score++
		signals = append(signals, "secondary")
	}
	if containsAny(lower, actionVerbs) {
		score++
		signals = append(signals, "action")
	}
	if c.product != "" && strings.Contains(lower, c.product) {
		score++
		signals = append(signals, "product")
	}
	if strings.Contains(lower, "migration") {
		score++
		signals = append(signals, "migration")
	}

	isRequest := score >= 2
	// Domain short-circuits: migration diagrams and product visuals are
	// always honored regardless of score.
	if strings.Contains(lower, "migration") && strings.Contains(lower, "diagram") {
		isRequest = true
	}
	if c.product != "" && strings.Contains(lower, c.product) &&
		(containsAny(lower, primaryTerms) || containsAny(lower, secondaryTerms)) {
		isRequest = true
	}
	if !isRequest {
		return Intent{Category: CategoryGeneric, Signals: signals}
	}

	return Intent{
		IsDiagramRequest: true,
		Category:         c.pickCategory(lower, contextSnippets),
		Signals:          signals,
	}
}

// pickCategory scores the five concrete categories and usually returns
// the winner. One time in five it deliberately returns the runner-up so
// repeated similar prompts do not all render the same way.
func (c *Classifier) pickCategory(lower string, contextSnippets []string) Category {
	contextLower := strings.ToLower(strings.Join(contextSnippets, " "))

	type scored struct {
		cat   Category
		score float64
	}
	ranked := make([]scored, 0, len(categoryKeywords))
	for cat, keywords := range categoryKeywords {
		s := 0.0
		for _, kw := range keywords {
			if strings.Contains(lower, kw) {
				s++
			}
			if contextLower != "" && strings.Contains(contextLower, kw) {
				s += 0.5
			}
		}
		if s > 0 {
			s += c.float64() * 0.8
			ranked = append(ranked, scored{cat, s})
		}
	}
	if len(ranked) == 0 {
		return CategoryProcess
	}

	best, second := ranked[0], scored{}
	for _, r := range ranked[1:] {
		switch {
		case r.score > best.score:
			second = best
			best = r
		case r.score > second.score:
			second = r
		}
	}
	if second.cat != "" && c.float64() < 0.2 {
		return second.cat
	}
	return best.cat
}

func (c *Classifier) float64() float64 {
	if c.rng != nil {
		return c.rng.Float64()
	}
	return rand.Float64()
}

func startsInterrogative(lower string) bool {
	first := lower
	if i := strings.IndexAny(lower, " \t\n"); i > 0 {
		first = lower[:i]
	}
	first = strings.Trim(first, ",.?!")
	return interrogativeStarters[first]
}

func containsAny(s string, terms []string) bool {
	for _, t := range terms {
		if strings.Contains(s, t) {
			return true
		}
	}
	return false
}
