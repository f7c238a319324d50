package catalog

// Glyph is a renderable icon. Renderers map it to whatever drawing primitive
// they use; the core only carries the name.
type Glyph struct {
	Name  string
	Label string
}

// FallbackIcon is used for any identifier missing from the table.
const FallbackIcon = "Circle"

var icons = map[string]Glyph{
	"Play":          {Name: "Play", Label: "play"},
	"Webhook":       {Name: "Webhook", Label: "webhook"},
	"Clock":         {Name: "Clock", Label: "clock"},
	"Globe":         {Name: "Globe", Label: "globe"},
	"Code":          {Name: "Code", Label: "code"},
	"GitBranch":     {Name: "GitBranch", Label: "branch"},
	"Mail":          {Name: "Mail", Label: "mail"},
	"Database":      {Name: "Database", Label: "database"},
	"RefreshCw":     {Name: "RefreshCw", Label: "refresh"},
	"Filter":        {Name: "Filter", Label: "filter"},
	"Merge":         {Name: "Merge", Label: "merge"},
	"Split":         {Name: "Split", Label: "split"},
	"Pause":         {Name: "Pause", Label: "pause"},
	"AlertTriangle": {Name: "AlertTriangle", Label: "alert"},
	"Bell":          {Name: "Bell", Label: "bell"},
	FallbackIcon:    {Name: FallbackIcon, Label: "circle"},
}

// Icon resolves an icon identifier. Unknown identifiers resolve to the
// fallback glyph and ok is false.
func Icon(name string) (g Glyph, ok bool) {
	g, ok = icons[name]
	if !ok {
		return icons[FallbackIcon], false
	}
	return g, true
}
