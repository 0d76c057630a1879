package render

import (
	"fmt"
	"html"
	"strings"

	"figment/internal/diagram/intent"
	diagramspec "figment/internal/diagram/spec"
)

// fallbackTemplates are the hand-authored last-resort diagrams, one per
// category. They are substituted verbatim when both LLM markup tiers
// fail validation, so a diagram request never yields a blank result.
var fallbackTemplates = map[intent.Category]string{
	intent.CategoryNetwork: `graph LR
    A[Edge Router] --> B[Firewall]
    B --> C[Core Switch]
    C --> D[App Subnet]
    C --> E[DB Subnet]
    B --> F[VPN Gateway]
    F --> G[Remote Site]`,
	intent.CategoryProcess: `graph TD
    A[Start] --> B[Prepare]
    B --> C{Ready?}
    C -->|Yes| D[Execute]
    C -->|No| B
    D --> E[Verify]
    E --> F[Complete]`,
	intent.CategorySoftware: `graph TD
    A[Client] --> B[API Gateway]
    B --> C[Auth Service]
    B --> D[Core Service]
    D --> E[(Database)]
    D --> F[Message Queue]
    F --> G[Worker]`,
	intent.CategoryMigration: `graph LR
    A[Source Workload] --> B[Migration Appliance]
    B --> C[Replication]
    C --> D[Target Instance]
    D --> E[Validation]
    E --> F[Cutover]`,
	intent.CategoryCloud: `graph TD
    A[Region] --> B[VPC]
    B --> C[Public Subnet]
    B --> D[Private Subnet]
    C --> E[Load Balancer]
    D --> F[Compute Fleet]
    D --> G[(Managed DB)]`,
	intent.CategoryGeneric: `graph TD
    A[Overview] --> B[Detail A]
    A --> C[Detail B]
    B --> D[Summary]
    C --> D`,
}

// FallbackTemplate returns the hand-authored markup for a category.
func FallbackTemplate(cat intent.Category) string {
	if t, ok := fallbackTemplates[cat]; ok {
		return t
	}
	return fallbackTemplates[intent.CategoryGeneric]
}

// previewSVG builds a server-side summary card for diagrams whose real
// rendering happens client-side (the Mermaid tiers). It keeps the SVG
// endpoint non-empty for every generated diagram.
func previewSVG(spec diagramspec.Spec) []byte {
	var b strings.Builder
	height := 120 + 28*len(spec.Elements)
	fmt.Fprintf(&b, `<svg xmlns="http://www.w3.org/2000/svg" width="640" height="%d" viewBox="0 0 640 %d">`, height, height)
	fmt.Fprintf(&b, `<rect width="640" height="%d" fill="%s"/>`, height, spec.Palette.Secondary)
	fmt.Fprintf(&b, `<rect x="0" y="0" width="640" height="56" fill="%s"/>`, spec.Palette.Primary)
	fmt.Fprintf(&b, `<text x="20" y="36" font-family="sans-serif" font-size="20" fill="#ffffff">%s</text>`, html.EscapeString(spec.Title))
	y := 96
	for i, el := range spec.Elements {
		fmt.Fprintf(&b, `<rect x="20" y="%d" width="600" height="22" rx="6" fill="#ffffff" stroke="%s"/>`, y-16, spec.Palette.Accent)
		fmt.Fprintf(&b, `<text x="32" y="%d" font-family="sans-serif" font-size="13" fill="#1f2937">%d. %s</text>`, y, i+1, html.EscapeString(el))
		y += 28
	}
	b.WriteString(`</svg>`)
	return []byte(b.String())
}

// NotFoundSVG is served for stale artifact links instead of an HTTP
// error, so persisted chat history keeps rendering.
func NotFoundSVG(name string) []byte {
	return []byte(fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" width="420" height="120" viewBox="0 0 420 120">
<rect width="420" height="120" fill="#f1f5f9" stroke="#cbd5e1"/>
<text x="210" y="54" text-anchor="middle" font-family="sans-serif" font-size="16" fill="#475569">Diagram not found</text>
<text x="210" y="82" text-anchor="middle" font-family="sans-serif" font-size="12" fill="#94a3b8">%s</text>
</svg>`, html.EscapeString(name)))
}
