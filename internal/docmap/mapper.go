// Package docmap parses a document's linearized text into sections and
// maps extracted images onto the section each most plausibly belongs
// to. The result enriches chat prompts and ranks which figures are
// worth mentioning to the model at all.
package docmap

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"figment/internal/figures"
)

// ContextInfo is what the mapper knows about one image's place in the
// document. Section is the enclosing top-level heading and Context the
// nearest preceding sub-heading (they coincide when the image sits
// directly under a top-level section). Importance is in [0,1]: 0.9 base
// for an explicit "Figure N" marker hit, scaled lower for term-overlap
// guesses, 0.2 floor for images the text never locates, with small
// boosts layered on top for the canonical figure, high figure numbers,
// domain vocabulary in the surrounding text, and long context.
type ContextInfo struct {
	Section      string  `json:"section,omitempty"`
	Context      string  `json:"context,omitempty"`
	FigureNumber int     `json:"figureNumber,omitempty"`
	Importance   float64 `json:"importance"`
	Surrounding  string  `json:"surroundingText,omitempty"`
}

const (
	markerImportance  = 0.9
	overlapThreshold  = 0.3
	overlapBase       = 0.4
	floorImportance   = 0.2
	surroundingRadius = 200

	canonicalBoost    = 0.25
	figureNumberFloor = 3
	figureNumberBoost = 0.05
	termBoost         = 0.05
	maxTermBoost      = 0.15
	longContextChars  = 150
	longContextBoost  = 0.05
	maxImportance     = 1.0
)

// domainTerms are the vocabulary whose presence near an image marks it
// as migration-relevant rather than decorative.
var domainTerms = []string{
	"migration", "appliance", "snapshot", "replication", "cutover", "workload",
}

var (
	figureMarkerRe = regexp.MustCompile(`(?i)figure\s+(\d+)`)
	numberedRe     = regexp.MustCompile(`^\d+(\.\d+)*\.?\s+\S`)
	wordRe         = regexp.MustCompile(`[a-z0-9]+`)
)

var stopwords = map[string]bool{
	"the": true, "and": true, "for": true, "with": true, "that": true,
	"this": true, "from": true, "are": true, "was": true, "you": true,
	"your": true, "into": true, "its": true, "has": true, "have": true,
}

type section struct {
	Title string
	Body  string
	Level int
}

// Mapper computes image-to-section mappings. Results are recomputed per
// call unless a document id is supplied, in which case a short-lived
// cache absorbs repeat turns against the same document.
type Mapper struct {
	cache *expirable.LRU[string, map[int]ContextInfo]

	// canonicalID is the figure id that always matters to the product
	// story; it keeps its prompt slot even when the text never
	// mentions it. Zero disables the boost.
	canonicalID int
}

func NewMapper(canonicalFigureID int) *Mapper {
	return &Mapper{
		cache:       expirable.NewLRU[string, map[int]ContextInfo](128, nil, 5*time.Minute),
		canonicalID: canonicalFigureID,
	}
}

// MapImages returns a ContextInfo per image id. docID may be empty to
// bypass the cache.
func (m *Mapper) MapImages(docID, documentText string, images []figures.DocumentImage) map[int]ContextInfo {
	if docID != "" {
		if cached, ok := m.cache.Get(docID); ok {
			return cached
		}
	}
	infos := m.mapImages(documentText, images)
	if docID != "" {
		m.cache.Add(docID, infos)
	}
	return infos
}

func (m *Mapper) mapImages(documentText string, images []figures.DocumentImage) map[int]ContextInfo {
	sections := parseSections(documentText)
	infos := make(map[int]ContextInfo, len(images))
	for _, img := range images {
		infos[img.ID] = m.locate(documentText, sections, img)
	}
	return infos
}

// parseSections recognizes three heading shapes: markdown hashes,
// numbered headings ("3.2 Launching the Appliance"), and short
// all-caps lines. Text before the first heading lands in an untitled
// preamble section.
func parseSections(text string) []section {
	lines := strings.Split(text, "\n")
	var out []section
	cur := section{Title: "", Level: 0}
	var body strings.Builder

	flush := func() {
		cur.Body = body.String()
		if cur.Title != "" || strings.TrimSpace(cur.Body) != "" {
			out = append(out, cur)
		}
		body.Reset()
	}

	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if title, level, ok := headingOf(trimmed); ok {
			flush()
			cur = section{Title: title, Level: level}
			continue
		}
		body.WriteString(line)
		body.WriteByte('\n')
	}
	flush()
	return out
}

func headingOf(line string) (title string, level int, ok bool) {
	if line == "" {
		return "", 0, false
	}
	if strings.HasPrefix(line, "#") {
		level = 0
		for level < len(line) && line[level] == '#' {
			level++
		}
		title = strings.TrimSpace(line[level:])
		if title == "" {
			return "", 0, false
		}
		return title, level, true
	}
	if numberedRe.MatchString(line) && len(line) < 80 {
		depth := strings.Count(strings.Fields(line)[0], ".") + 1
		return line, depth, true
	}
	if isAllCapsHeading(line) {
		return line, 1, true
	}
	return "", 0, false
}

// isAllCapsHeading: short line, has letters, every letter uppercase,
// and not ending like a sentence.
func isAllCapsHeading(line string) bool {
	if len(line) > 60 || strings.HasSuffix(line, ".") {
		return false
	}
	hasLetter := false
	for _, r := range line {
		if r >= 'a' && r <= 'z' {
			return false
		}
		if r >= 'A' && r <= 'Z' {
			hasLetter = true
		}
	}
	return hasLetter && len(strings.Fields(line)) >= 1
}

func (m *Mapper) locate(documentText string, sections []section, img figures.DocumentImage) ContextInfo {
	info := ContextInfo{
		FigureNumber: figureNumber(img),
		Importance:   floorImportance,
	}

	// Explicit marker beats everything.
	if info.FigureNumber > 0 {
		marker := "figure " + strconv.Itoa(info.FigureNumber)
		for i, sec := range sections {
			if idx := indexFold(sec.Body, marker); idx >= 0 {
				info.Section, info.Context = sectionAndContext(sections, i)
				info.Importance = markerImportance
				info.Surrounding = window(sec.Body, idx, surroundingRadius)
				return m.boost(info, img)
			}
		}
		// Marker may sit in flowing text outside any parsed section.
		if idx := indexFold(documentText, marker); idx >= 0 {
			info.Importance = markerImportance
			info.Surrounding = window(documentText, idx, surroundingRadius)
			return m.boost(info, img)
		}
	}

	// Term overlap between the image's caption/alt text and each
	// section body, best score above the threshold wins.
	terms := tokens(img.Caption + " " + img.AltText)
	if len(terms) == 0 {
		return m.boost(info, img)
	}
	bestScore := 0.0
	bestIdx := -1
	for i, sec := range sections {
		body := tokenSet(sec.Body + " " + sec.Title)
		hits := 0
		for _, t := range terms {
			if body[t] {
				hits++
			}
		}
		score := float64(hits) / float64(len(terms))
		if score > bestScore {
			bestScore = score
			bestIdx = i
		}
	}
	if bestIdx >= 0 && bestScore >= overlapThreshold {
		imp := overlapBase + 0.4*bestScore
		if imp > markerImportance {
			imp = markerImportance
		}
		info.Importance = imp
		info.Section, info.Context = sectionAndContext(sections, bestIdx)
		info.Surrounding = window(sections[bestIdx].Body, 0, surroundingRadius)
	}
	return m.boost(info, img)
}

// boost layers the secondary importance signals on top of the base
// heuristic: the canonical figure, figure numbers past the
// front-matter range, domain vocabulary near the image, and long
// surrounding context. The sum is clamped to 1.
func (m *Mapper) boost(info ContextInfo, img figures.DocumentImage) ContextInfo {
	if m.canonicalID != 0 && img.ID == m.canonicalID {
		info.Importance += canonicalBoost
	}
	if info.FigureNumber > figureNumberFloor {
		info.Importance += figureNumberBoost
	}
	if info.Surrounding != "" {
		lower := strings.ToLower(info.Surrounding)
		termSum := 0.0
		for _, term := range domainTerms {
			if strings.Contains(lower, term) {
				termSum += termBoost
			}
		}
		if termSum > maxTermBoost {
			termSum = maxTermBoost
		}
		info.Importance += termSum
		if len(info.Surrounding) > longContextChars {
			info.Importance += longContextBoost
		}
	}
	if info.Importance > maxImportance {
		info.Importance = maxImportance
	}
	return info
}

// sectionAndContext resolves the located section index into the
// enclosing top-level title and the nearest sub-heading. A hit under
// "## Console Access" inside "# Launching" yields ("Launching",
// "Console Access"); a hit directly under a top-level heading yields
// the same title for both.
func sectionAndContext(sections []section, i int) (string, string) {
	cur := sections[i]
	for j := i - 1; j >= 0; j-- {
		if sections[j].Level > 0 && sections[j].Level < cur.Level && sections[j].Title != "" {
			return sections[j].Title, cur.Title
		}
	}
	return cur.Title, cur.Title
}

func figureNumber(img figures.DocumentImage) int {
	for _, src := range []string{img.Caption, img.AltText} {
		if m := figureMarkerRe.FindStringSubmatch(src); m != nil {
			n, err := strconv.Atoi(m[1])
			if err == nil {
				return n
			}
		}
	}
	return 0
}

func tokens(s string) []string {
	var out []string
	for _, w := range wordRe.FindAllString(strings.ToLower(s), -1) {
		if len(w) < 3 || stopwords[w] || w == "figure" {
			continue
		}
		out = append(out, w)
	}
	return out
}

func tokenSet(s string) map[string]bool {
	set := make(map[string]bool)
	for _, w := range tokens(s) {
		set[w] = true
	}
	return set
}

func indexFold(haystack, needle string) int {
	return strings.Index(strings.ToLower(haystack), strings.ToLower(needle))
}

func window(s string, center, radius int) string {
	start := center - radius
	if start < 0 {
		start = 0
	}
	end := center + radius
	if end > len(s) {
		end = len(s)
	}
	return strings.TrimSpace(s[start:end])
}

// TopImages orders images by mapped importance, highest first, and
// returns at most n. Ties keep original order so results are stable
// across calls.
func TopImages(images []figures.DocumentImage, infos map[int]ContextInfo, n int) []figures.DocumentImage {
	ranked := make([]figures.DocumentImage, len(images))
	copy(ranked, images)
	sort.SliceStable(ranked, func(i, j int) bool {
		return infos[ranked[i].ID].Importance > infos[ranked[j].ID].Importance
	})
	if n > 0 && len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}

// PromptLines renders the top-n images as one prompt line each, the
// shape the chat service embeds in its system context.
func PromptLines(images []figures.DocumentImage, infos map[int]ContextInfo, n int) []string {
	var lines []string
	for _, img := range TopImages(images, infos, n) {
		info := infos[img.ID]
		var b strings.Builder
		if info.FigureNumber > 0 {
			b.WriteString("Figure " + strconv.Itoa(info.FigureNumber))
		} else {
			b.WriteString("Image " + strconv.Itoa(img.ID))
		}
		if info.Section != "" {
			b.WriteString(" (section: " + info.Section + ")")
		}
		if img.Caption != "" {
			b.WriteString(": " + img.Caption)
		}
		lines = append(lines, b.String())
	}
	return lines
}
