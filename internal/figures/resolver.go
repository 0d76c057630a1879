package figures

import (
	"regexp"
	"strconv"
	"strings"
)

// Resolver cross-references a model answer against the images extracted
// from the source document and returns the citations the answer is
// "about". Matching runs in five ordered stages; later stages consult
// what earlier stages already collected, so the order is load-bearing.
type Resolver struct {
	// Product is the lowercase product name used by the forced-inclusion
	// rules (e.g. "rivermeadow").
	Product string
	// OSMigrationFigure is the canonical figure id that must illustrate
	// OS-migration topics whenever it exists in the candidate set.
	OSMigrationFigure int
	// AssumedCloudFigures are last-resort figure ids for cloud-provider
	// topics when no caption matches. Document-instance specific; keep
	// configurable rather than meaningful.
	AssumedCloudFigures []int
}

// NewResolver returns a resolver with the defaults used by the sample
// knowledge base.
func NewResolver(product string) *Resolver {
	return &Resolver{
		Product:             strings.ToLower(strings.TrimSpace(product)),
		OSMigrationFigure:   11,
		AssumedCloudFigures: []int{20, 25, 30},
	}
}

var figureNumberRe = regexp.MustCompile(`(?i)figure\s+(\d+)`)

var implicitAnswerPhrases = []string{
	"here is the diagram",
	"this diagram shows",
	"see the figure",
	"as shown in",
}

var visualPromptTerms = []string{
	"diagram", "image", "figure", "chart", "graph",
	"picture", "illustration", "show me", "visual",
}

var cloudTopicKeywords = []string{
	"google cloud", "gcp", "appliance", "prerequisite", "prerequisites", "launch",
}

// topicVocabulary is the extended keyword set used by the implicit sweep:
// generic diagram types, cloud/platform terms, technical operations, and
// migration-domain terms.
var topicVocabulary = []string{
	"architecture", "flowchart", "workflow", "topology", "network",
	"process", "sequence", "overview",
	"cloud", "aws", "azure", "google cloud", "gcp", "vmware", "appliance",
	"migration", "cutover", "replication", "sync", "snapshot", "upgrade",
	"prerequisite", "prerequisites", "configuration", "setup", "launch",
	"source", "target", "workload", "os",
}

// Resolve returns the deduplicated, insertion-ordered citation list for
// one chat turn. It is total: no matches yields nil, never an error.
func (r *Resolver) Resolve(answerText, userPrompt string, candidates []DocumentImage) []ImageReference {
	if len(candidates) == 0 {
		return nil
	}

	var refs []ImageReference
	seen := make(map[int]bool)
	add := func(img DocumentImage) bool {
		if seen[img.ID] {
			return false
		}
		seen[img.ID] = true
		refs = append(refs, referenceFor(img))
		return true
	}

	answerLower := strings.ToLower(answerText)
	promptLower := strings.ToLower(userPrompt)

	r.matchFigureNumbers(answerText, candidates, add)
	r.forceOSMigration(promptLower, candidates, seen, add)
	r.forceCloudTopics(promptLower, candidates, add)
	r.sweepImplicit(answerLower, promptLower, candidates, len(refs) == 0, add)
	r.sweepLiteralCaptions(answerLower, candidates, add)

	return refs
}

// Stage 1: exact "Figure N" mentions in the answer. An id match beats a
// caption match for the same number; first match wins per number.
func (r *Resolver) matchFigureNumbers(answerText string, candidates []DocumentImage, add func(DocumentImage) bool) {
	for _, num := range extractFigureNumbers(answerText) {
		if img, ok := findByID(candidates, num); ok {
			add(img)
			continue
		}
		if img, ok := findByCaptionNumber(candidates, num); ok {
			add(img)
		}
	}
}

// Stage 2: certain topics must always be illustrated by the canonical
// OS-migration figure, independent of what the answer mentioned.
func (r *Resolver) forceOSMigration(promptLower string, candidates []DocumentImage, seen map[int]bool, add func(DocumentImage) bool) {
	forced := strings.Contains(promptLower, "os migration") ||
		strings.Contains(promptLower, "os-based migration") ||
		(r.Product != "" && strings.Contains(promptLower, r.Product) && strings.Contains(promptLower, "migration"))
	if !forced || seen[r.OSMigrationFigure] {
		return
	}
	if img, ok := findByID(candidates, r.OSMigrationFigure); ok {
		add(img)
	}
}

// Stage 3: cloud-provider topics pull in up to two caption matches, or at
// most one assumed figure when no caption matches.
func (r *Resolver) forceCloudTopics(promptLower string, candidates []DocumentImage, add func(DocumentImage) bool) {
	cloudTopic := (strings.Contains(promptLower, "google cloud") || strings.Contains(promptLower, "gcp")) &&
		(strings.Contains(promptLower, "prerequisite") ||
			strings.Contains(promptLower, "appliance") ||
			strings.Contains(promptLower, "launch"))
	if !cloudTopic {
		return
	}

	added := 0
	for _, img := range candidates {
		if added >= 2 {
			break
		}
		caption := strings.ToLower(img.Caption)
		for _, kw := range cloudTopicKeywords {
			if strings.Contains(caption, kw) {
				if add(img) {
					added++
				}
				break
			}
		}
	}
	if added > 0 {
		return
	}
	for _, id := range r.AssumedCloudFigures {
		if img, ok := findByID(candidates, id); ok {
			if add(img) {
				return
			}
		}
	}
}

// Stage 4: the answer (or the prompt itself) implies a visual but nothing
// matched yet. Score candidates by topic-keyword overlap; fall back to
// the first three candidates when no topic matches at all.
func (r *Resolver) sweepImplicit(answerLower, promptLower string, candidates []DocumentImage, nothingYet bool, add func(DocumentImage) bool) {
	if !nothingYet {
		return
	}
	implied := false
	for _, phrase := range implicitAnswerPhrases {
		if strings.Contains(answerLower, phrase) {
			implied = true
			break
		}
	}
	if !implied {
		for _, term := range visualPromptTerms {
			if strings.Contains(promptLower, term) {
				implied = true
				break
			}
		}
	}
	if !implied {
		return
	}

	topics := extractTopics(promptLower)
	added := 0
	for _, img := range candidates {
		if added >= 3 {
			return
		}
		if topicScore(img, topics) > 0 {
			if add(img) {
				added++
			}
		}
	}
	if added > 0 {
		return
	}
	// Generic "show some examples" floor: first three in original order.
	for i, img := range candidates {
		if i >= 3 {
			return
		}
		add(img)
	}
}

// Stage 5: any candidate whose caption (or alt text when the caption is
// empty) appears verbatim inside the answer gets cited.
func (r *Resolver) sweepLiteralCaptions(answerLower string, candidates []DocumentImage, add func(DocumentImage) bool) {
	for _, img := range candidates {
		text := strings.TrimSpace(img.Caption)
		if text == "" {
			text = strings.TrimSpace(img.AltText)
		}
		if text == "" {
			continue
		}
		if strings.Contains(answerLower, strings.ToLower(text)) {
			add(img)
		}
	}
}

// extractFigureNumbers returns distinct figure numbers in answer order.
func extractFigureNumbers(text string) []int {
	var nums []int
	seen := make(map[int]bool)
	for _, m := range figureNumberRe.FindAllStringSubmatch(text, -1) {
		n, err := strconv.Atoi(m[1])
		if err != nil || seen[n] {
			continue
		}
		seen[n] = true
		nums = append(nums, n)
	}
	return nums
}

func findByID(candidates []DocumentImage, id int) (DocumentImage, bool) {
	for _, img := range candidates {
		if img.ID == id {
			return img, true
		}
	}
	return DocumentImage{}, false
}

func findByCaptionNumber(candidates []DocumentImage, num int) (DocumentImage, bool) {
	literal := "figure " + strconv.Itoa(num)
	for _, img := range candidates {
		caption := strings.ToLower(img.Caption)
		if caption == "" {
			continue
		}
		if strings.Contains(caption, literal) {
			return img, true
		}
		for _, m := range figureNumberRe.FindAllStringSubmatch(img.Caption, -1) {
			if n, err := strconv.Atoi(m[1]); err == nil && n == num {
				return img, true
			}
		}
	}
	return DocumentImage{}, false
}

func extractTopics(promptLower string) []string {
	var topics []string
	for _, kw := range topicVocabulary {
		if strings.Contains(promptLower, kw) {
			topics = append(topics, kw)
		}
	}
	return topics
}

func topicScore(img DocumentImage, topics []string) int {
	if len(topics) == 0 {
		return 0
	}
	haystack := strings.ToLower(img.Caption + " " + img.AltText)
	score := 0
	for _, kw := range topics {
		if strings.Contains(haystack, kw) {
			score++
		}
	}
	return score
}
