package xlgrid

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/xuri/excelize/v2"
)

// StyleSpec is a nested mapping from presentation attribute names to values.
// Recognized top-level keys: "font", "fill", "border", "align", "format".
// Unknown keys are ignored by translation. Specs are merged against the
// book's default style before translation; two specs that merge to equal
// values share one native style handle.
type StyleSpec map[string]any

// MergeStyles deep-merges overlay onto base: nested maps combine key-wise,
// leaf values from overlay win. Neither input is mutated.
func MergeStyles(base, overlay StyleSpec) StyleSpec {
	merged := make(StyleSpec, len(base)+len(overlay))
	for k, v := range base {
		if sub, ok := asSpec(v); ok {
			merged[k] = MergeStyles(sub, nil)
			continue
		}
		merged[k] = v
	}
	for k, v := range overlay {
		over, overIsMap := asSpec(v)
		if !overIsMap {
			merged[k] = v
			continue
		}
		if under, ok := asSpec(merged[k]); ok {
			merged[k] = MergeStyles(under, over)
		} else {
			merged[k] = MergeStyles(over, nil)
		}
	}
	return merged
}

// asSpec normalizes the two map shapes a spec value can arrive in
// (StyleSpec literals from Go code, map[string]any from YAML).
func asSpec(v any) (StyleSpec, bool) {
	switch m := v.(type) {
	case StyleSpec:
		return m, true
	case map[string]any:
		return StyleSpec(m), true
	default:
		return nil, false
	}
}

// canonicalKey serializes a merged spec into a stable value-equality key:
// keys sorted recursively, leaves rendered with %v.
func canonicalKey(spec StyleSpec) string {
	if len(spec) == 0 {
		return ""
	}
	var b strings.Builder
	writeCanonical(&b, spec)
	return b.String()
}

func writeCanonical(b *strings.Builder, spec StyleSpec) {
	keys := make([]string, 0, len(spec))
	for k := range spec {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	b.WriteByte('{')
	for _, k := range keys {
		b.WriteString(k)
		b.WriteByte('=')
		if sub, ok := asSpec(spec[k]); ok {
			writeCanonical(b, sub)
		} else {
			fmt.Fprintf(b, "%v", spec[k])
		}
		b.WriteByte(';')
	}
	b.WriteByte('}')
}

// styleCache memoizes the translation from a merged style spec to a native
// excelize style ID. Style IDs are a per-document resource with a hard
// ceiling, so one handle is created per distinct resolved value, never per
// cell. Lookup-or-create is a single critical section so independent sheets
// may resolve styles concurrently.
type styleCache struct {
	mu   sync.Mutex
	file *excelize.File
	base StyleSpec
	ids  map[string]int
}

func newStyleCache(f *excelize.File, base StyleSpec) *styleCache {
	return &styleCache{file: f, base: base, ids: make(map[string]int)}
}

// resolve merges spec onto the default style and returns the interned style
// ID for the merged value. A nil or empty spec resolves to the default style.
// ID 0 means "no style" and is returned only when the merged spec is empty.
func (c *styleCache) resolve(spec StyleSpec) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	merged := MergeStyles(c.base, spec)
	key := canonicalKey(merged)
	if id, ok := c.ids[key]; ok {
		return id, nil
	}
	if len(merged) == 0 {
		c.ids[key] = 0
		return 0, nil
	}
	style, err := translateStyle(merged)
	if err != nil {
		return 0, err
	}
	id, err := c.file.NewStyle(style)
	if err != nil {
		return 0, fmt.Errorf("create style: %w", err)
	}
	c.ids[key] = id
	return id, nil
}

// borderStyles maps named border styles to the worksheet style codes.
var borderStyles = map[string]int{
	"thin":   1,
	"medium": 2,
	"dashed": 3,
	"dotted": 4,
	"thick":  5,
	"double": 6,
	"hair":   7,
}

var borderEdges = []string{"left", "right", "top", "bottom"}

// translateStyle maps a resolved spec attribute-by-attribute onto an
// excelize style. Unknown attributes are skipped.
func translateStyle(spec StyleSpec) (*excelize.Style, error) {
	style := &excelize.Style{}

	if font, ok := asSpec(spec["font"]); ok {
		f := &excelize.Font{}
		f.Bold = specBool(font, "bold")
		f.Italic = specBool(font, "italic")
		f.Size = specFloat(font, "size")
		f.Color = strings.TrimPrefix(specString(font, "color"), "#")
		f.Family = specString(font, "name")
		if specBool(font, "underline") {
			f.Underline = "single"
		}
		style.Font = f
	}

	if fill, ok := asSpec(spec["fill"]); ok {
		color := strings.TrimPrefix(specString(fill, "color"), "#")
		if color != "" {
			style.Fill = excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{color}}
		}
	}

	if border, borderErr := translateBorder(spec["border"]); borderErr != nil {
		return nil, borderErr
	} else if border != nil {
		style.Border = border
	}

	if align, ok := asSpec(spec["align"]); ok {
		style.Alignment = &excelize.Alignment{
			Horizontal: specString(align, "horizontal"),
			Vertical:   specString(align, "vertical"),
			WrapText:   specBool(align, "wrap"),
		}
	}

	if format := specString(spec, "format"); format != "" {
		style.CustomNumFmt = &format
	}

	return style, nil
}

// translateBorder accepts either a named style applied to all four edges
// ("border": "thin") or a per-edge mapping with optional colors.
func translateBorder(v any) ([]excelize.Border, error) {
	if v == nil {
		return nil, nil
	}
	if name, ok := v.(string); ok {
		code, ok := borderStyles[name]
		if !ok {
			return nil, fmt.Errorf("unknown border style %q", name)
		}
		borders := make([]excelize.Border, 0, len(borderEdges))
		for _, edge := range borderEdges {
			borders = append(borders, excelize.Border{Type: edge, Style: code, Color: "000000"})
		}
		return borders, nil
	}
	spec, ok := asSpec(v)
	if !ok {
		return nil, fmt.Errorf("border spec must be a style name or a mapping, got %T", v)
	}
	defaultColor := strings.TrimPrefix(specString(spec, "color"), "#")
	if defaultColor == "" {
		defaultColor = "000000"
	}
	var borders []excelize.Border
	for _, edge := range borderEdges {
		ev, present := spec[edge]
		if !present {
			continue
		}
		b := excelize.Border{Type: edge, Color: defaultColor}
		switch e := ev.(type) {
		case string:
			code, ok := borderStyles[e]
			if !ok {
				return nil, fmt.Errorf("unknown border style %q for edge %s", e, edge)
			}
			b.Style = code
		default:
			es, ok := asSpec(ev)
			if !ok {
				return nil, fmt.Errorf("invalid border edge %s: %T", edge, ev)
			}
			name := specString(es, "style")
			code, ok := borderStyles[name]
			if !ok {
				return nil, fmt.Errorf("unknown border style %q for edge %s", name, edge)
			}
			b.Style = code
			if c := strings.TrimPrefix(specString(es, "color"), "#"); c != "" {
				b.Color = c
			}
		}
		borders = append(borders, b)
	}
	return borders, nil
}

func specString(spec StyleSpec, key string) string {
	if s, ok := spec[key].(string); ok {
		return s
	}
	return ""
}

func specBool(spec StyleSpec, key string) bool {
	if b, ok := spec[key].(bool); ok {
		return b
	}
	return false
}

func specFloat(spec StyleSpec, key string) float64 {
	switch n := spec[key].(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	case int:
		return float64(n)
	case int64:
		return float64(n)
	default:
		return 0
	}
}
