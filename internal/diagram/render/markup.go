package render

import (
	"fmt"
	"strings"

	"figment/internal/diagram/intent"
	diagramspec "figment/internal/diagram/spec"
)

// StripFences removes enclosing markdown code-fence markers from model
// output so the remainder can be treated as raw markup.
func StripFences(out string) string {
	out = strings.TrimSpace(out)
	if !strings.HasPrefix(out, "```") {
		return out
	}
	lines := strings.Split(out, "\n")
	// Drop the opening fence (possibly tagged, e.g. ```dot).
	lines = lines[1:]
	for len(lines) > 0 && strings.TrimSpace(lines[len(lines)-1]) == "```" {
		lines = lines[:len(lines)-1]
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

// ValidDot is a cheap sanity check, not a parser: the external renderer
// is the real validator.
func ValidDot(markup string) bool {
	markup = strings.TrimSpace(markup)
	if len(markup) < 20 {
		return false
	}
	return strings.Contains(markup, "digraph") || strings.HasPrefix(markup, "graph ")
}

// ValidMermaid rejects trivially short or headerless output from the
// simple-markup fallback tier.
func ValidMermaid(markup string) bool {
	markup = strings.TrimSpace(markup)
	if len(markup) < 20 {
		return false
	}
	first := strings.TrimSpace(strings.SplitN(markup, "\n", 2)[0])
	for _, header := range []string{"graph ", "graph\t", "flowchart ", "sequenceDiagram", "classDiagram", "stateDiagram"} {
		if strings.HasPrefix(first, header) {
			return true
		}
	}
	return false
}

var dotSystemPrompts = map[intent.Category]string{
	intent.CategoryNetwork:   "You design network topology diagrams. Emit only Graphviz DOT, no prose, no code fences. Use rounded boxes for devices and label every edge.",
	intent.CategoryProcess:   "You design process flowcharts. Emit only Graphviz DOT, no prose, no code fences. Use one node per step and directed edges in execution order.",
	intent.CategorySoftware:  "You design software architecture diagrams. Emit only Graphviz DOT, no prose, no code fences. Group related components in clusters.",
	intent.CategoryMigration: "You design workload migration diagrams. Emit only Graphviz DOT, no prose, no code fences. Show source, transport, and target phases left to right.",
	intent.CategoryCloud:     "You design cloud infrastructure diagrams. Emit only Graphviz DOT, no prose, no code fences. Nest resources inside their region and network boundaries.",
	intent.CategoryGeneric:   "You design clear block diagrams. Emit only Graphviz DOT, no prose, no code fences.",
}

func dotSystemPrompt(cat intent.Category) string {
	if p, ok := dotSystemPrompts[cat]; ok {
		return p
	}
	return dotSystemPrompts[intent.CategoryGeneric]
}

func dotUserPrompt(spec diagramspec.Spec, prompt string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Create a %s titled %q.\n", spec.SpecificType, spec.Title)
	fmt.Fprintf(&b, "Layout: %s. Colors: primary %s, secondary %s, accent %s.\n",
		spec.Layout, spec.Palette.Primary, spec.Palette.Secondary, spec.Palette.Accent)
	fmt.Fprintf(&b, "Include these elements: %s.\n", strings.Join(spec.Elements, ", "))
	if strings.TrimSpace(prompt) != "" {
		fmt.Fprintf(&b, "The user asked: %s\n", strings.TrimSpace(prompt))
	}
	return b.String()
}

func mermaidUserPrompt(spec diagramspec.Spec, prompt string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Create a Mermaid flowchart titled %q for: %s.\n", spec.Title, spec.SpecificType)
	fmt.Fprintf(&b, "Nodes: %s.\n", strings.Join(spec.Elements, ", "))
	b.WriteString("Respond with Mermaid markup only, starting with 'graph TD' or 'flowchart LR'. No prose, no code fences.\n")
	if strings.TrimSpace(prompt) != "" {
		fmt.Fprintf(&b, "The user asked: %s\n", strings.TrimSpace(prompt))
	}
	return b.String()
}

const mermaidSystemPrompt = "You write Mermaid diagram markup. Output only the markup, nothing else."
