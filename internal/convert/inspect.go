package convert

import (
	"strings"

	"github.com/Faultbox/scenebake/pkg/scene"
)

// DrawableMasks is the mask pair computed for one drawable.
type DrawableMasks struct {
	// Path is the slash separated chain of node names leading to the drawable.
	Path  string
	Masks MaskPair
}

// Inspect reports the mask pair each drawable under n would be converted with,
// without building anything. Shared drawables are reported once.
func (c *Converter) Inspect(n scene.Node) []DrawableMasks {
	var out []DrawableMasks
	seen := make(map[scene.Node]bool)
	states := newStateStack()

	var walk func(n scene.Node, path []string, nodeShading ShadingModes, nodeAttrs Attributes)
	walk = func(n scene.Node, path []string, nodeShading ShadingModes, nodeAttrs Attributes) {
		if n == nil || seen[n] {
			return
		}
		seen[n] = true

		defer states.push(n.StateSet())()
		path = append(path, nodeName(n))

		if g, ok := n.(*scene.Geometry); ok {
			out = append(out, DrawableMasks{
				Path: strings.Join(path, "/"),
				Masks: CalculateMasks(states.top(), g, MaskInputs{
					OverrideShading:     c.opts.OverrideShading,
					NodeShading:         nodeShading,
					SupportedShading:    c.opts.SupportedShading,
					OverrideAttributes:  c.opts.OverrideAttributes | nodeAttrs,
					SupportedAttributes: c.opts.SupportedAttributes,
				}),
			})
			return
		}

		childShading, childAttrs := NoShadingModes, NoAttributes
		if _, ok := n.(*scene.Billboard); ok {
			childShading = Billboard
			if !c.opts.BillboardTransform {
				childShading |= ShaderTranslate
				childAttrs = TranslateOverall
			}
		}
		for _, child := range scene.Children(n) {
			walk(child, path, childShading, childAttrs)
		}
	}

	walk(n, nil, NoShadingModes, NoAttributes)
	return out
}

func nodeName(n scene.Node) string {
	var name string
	switch n := n.(type) {
	case *scene.Geometry:
		name = n.Name
	case *scene.Group:
		name = n.Name
	case *scene.Transform:
		name = n.Name
	case *scene.CoordinateSystem:
		name = n.Name
	case *scene.Billboard:
		name = n.Name
	case *scene.LOD:
		name = n.Name
	case *scene.PagedLOD:
		name = n.Name
	case *scene.TerrainTile:
		name = n.Name
	}
	if name == "" {
		return "-"
	}
	return name
}
