package diagramspec

import "figment/internal/diagram/intent"

// Palette is the color triple applied to a rendered diagram.
type Palette struct {
	Primary   string `json:"primary"`
	Secondary string `json:"secondary"`
	Accent    string `json:"accent"`
}

// categoryTable holds every per-category option list the synthesizer
// draws from. Keeping the options in one table per category (instead of
// switch statements scattered over the pipeline) keeps coverage of the
// category enum visible in one place.
type categoryTable struct {
	DisplayName   string
	SpecificTypes []string
	Palettes      []Palette
	ElementSets   [][]string
	Layouts       []string
}

var tables = map[intent.Category]categoryTable{
	intent.CategoryNetwork: {
		DisplayName: "Network",
		SpecificTypes: []string{
			"site-to-site topology", "hub-and-spoke topology", "dmz layout",
			"vpn mesh", "segmented lan", "hybrid connectivity map",
		},
		Palettes: []Palette{
			{"#1d4ed8", "#93c5fd", "#f59e0b"},
			{"#0f766e", "#5eead4", "#f97316"},
			{"#312e81", "#a5b4fc", "#22d3ee"},
			{"#134e4a", "#99f6e4", "#fde047"},
			{"#1e3a8a", "#bfdbfe", "#fb7185"},
			{"#164e63", "#a5f3fc", "#facc15"},
		},
		ElementSets: [][]string{
			{"edge router", "core switch", "firewall", "dmz", "app subnet", "db subnet"},
			{"vpn gateway", "source network", "target vpc", "bastion", "dns"},
			{"load balancer", "web tier", "app tier", "data tier", "monitoring"},
			{"on-prem lan", "ipsec tunnel", "cloud vpc", "peering", "nat gateway"},
		},
		Layouts: []string{"horizontal", "radial", "layered", "clustered"},
	},
	intent.CategoryProcess: {
		DisplayName: "Process",
		SpecificTypes: []string{
			"linear flowchart", "decision flowchart", "swim-lane flow",
			"approval chain", "feedback loop", "stage-gate flow",
		},
		Palettes: []Palette{
			{"#166534", "#86efac", "#fbbf24"},
			{"#3f6212", "#d9f99d", "#fb923c"},
			{"#065f46", "#6ee7b7", "#f472b6"},
			{"#365314", "#bef264", "#38bdf8"},
			{"#14532d", "#bbf7d0", "#c084fc"},
			{"#1a2e05", "#ecfccb", "#fda4af"},
		},
		ElementSets: [][]string{
			{"intake", "validation", "execution", "review", "sign-off"},
			{"discover", "plan", "test", "run", "verify"},
			{"request", "approve", "provision", "configure", "hand over"},
			{"capture", "triage", "resolve", "close"},
			{"prepare", "replicate", "cut over", "decommission"},
		},
		Layouts: []string{"horizontal", "vertical", "swim-lanes", "stepped"},
	},
	intent.CategorySoftware: {
		DisplayName: "Software Architecture",
		SpecificTypes: []string{
			"layered architecture", "microservice map", "event-driven design",
			"hexagonal architecture", "service mesh", "monolith decomposition",
			"api gateway pattern",
		},
		Palettes: []Palette{
			{"#7c3aed", "#ddd6fe", "#34d399"},
			{"#6d28d9", "#c4b5fd", "#fbbf24"},
			{"#4c1d95", "#e9d5ff", "#60a5fa"},
			{"#5b21b6", "#ede9fe", "#f87171"},
			{"#3730a3", "#c7d2fe", "#4ade80"},
			{"#581c87", "#f3e8ff", "#fb923c"},
		},
		ElementSets: [][]string{
			{"client", "api gateway", "auth service", "core service", "database"},
			{"frontend", "bff", "domain services", "message bus", "storage"},
			{"ingress", "service a", "service b", "cache", "queue", "warehouse"},
			{"ui", "application layer", "domain layer", "infrastructure"},
		},
		Layouts: []string{"hierarchical", "layered", "hub-and-spoke", "left-to-right"},
	},
	intent.CategoryMigration: {
		DisplayName: "Migration",
		SpecificTypes: []string{
			"os-based migration flow", "lift-and-shift plan", "replatform path",
			"cutover sequence", "wave plan", "rollback path",
		},
		Palettes: []Palette{
			{"#b91c1c", "#fecaca", "#2563eb"},
			{"#9a3412", "#fed7aa", "#0891b2"},
			{"#854d0e", "#fef08a", "#4f46e5"},
			{"#7f1d1d", "#fee2e2", "#059669"},
			{"#92400e", "#fde68a", "#7c3aed"},
			{"#78350f", "#fef3c7", "#0ea5e9"},
		},
		ElementSets: [][]string{
			{"source workload", "migration appliance", "replication", "target instance", "validation"},
			{"discovery", "assessment", "wave planning", "execution", "cutover"},
			{"source os", "worker", "target os", "dns switch", "decommission"},
			{"on-prem host", "sync engine", "cloud landing zone", "smoke test"},
			{"inventory", "dependency map", "pilot wave", "bulk waves", "close-out"},
		},
		Layouts: []string{"horizontal", "phased", "swim-lanes", "timeline"},
	},
	intent.CategoryCloud: {
		DisplayName: "Cloud",
		SpecificTypes: []string{
			"landing zone", "multi-region design", "vpc layout",
			"autoscaling group", "serverless pipeline", "disaster recovery pair",
		},
		Palettes: []Palette{
			{"#0369a1", "#bae6fd", "#f59e0b"},
			{"#0e7490", "#a5f3fc", "#f43f5e"},
			{"#075985", "#e0f2fe", "#84cc16"},
			{"#155e75", "#cffafe", "#fbbf24"},
			{"#0c4a6e", "#7dd3fc", "#fb923c"},
			{"#164e63", "#67e8f9", "#a78bfa"},
		},
		ElementSets: [][]string{
			{"region", "vpc", "public subnet", "private subnet", "managed db"},
			{"dns", "cdn", "load balancer", "compute fleet", "object storage"},
			{"project", "network", "gke cluster", "cloud sql", "iam"},
			{"primary region", "replica region", "failover", "health checks"},
		},
		Layouts: []string{"clustered", "hierarchical", "zoned", "horizontal"},
	},
	intent.CategoryGeneric: {
		DisplayName: "Overview",
		SpecificTypes: []string{
			"concept map", "block diagram", "relationship map", "summary chart",
		},
		Palettes: []Palette{
			{"#334155", "#cbd5e1", "#f59e0b"},
			{"#1f2937", "#d1d5db", "#34d399"},
			{"#0f172a", "#e2e8f0", "#60a5fa"},
			{"#27272a", "#e4e4e7", "#f472b6"},
			{"#374151", "#f3f4f6", "#fbbf24"},
			{"#44403c", "#e7e5e4", "#38bdf8"},
		},
		ElementSets: [][]string{
			{"topic", "inputs", "outputs", "constraints"},
			{"overview", "detail a", "detail b", "summary"},
			{"context", "system", "actors", "outcomes"},
			{"start", "middle", "end"},
		},
		Layouts: []string{"radial", "horizontal", "grid", "freeform"},
	},
}

// tableFor never fails: unknown categories get the generic table.
func tableFor(cat intent.Category) categoryTable {
	if t, ok := tables[cat]; ok {
		return t
	}
	return tables[intent.CategoryGeneric]
}
