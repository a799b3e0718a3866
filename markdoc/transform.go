package markdoc

// RenderableKind discriminates the Transformer's output algebra (spec §3).
type RenderableKind int

const (
	RenderableTag RenderableKind = iota
	RenderableFragment
	RenderableString
	RenderableNull
)

// Renderable is the minimal output tree the Transformer produces:
// Tag{name, attributes?, children?} | Fragment(children) | String(text) | Null.
type Renderable struct {
	Kind       RenderableKind
	Name       string // Tag only
	Attributes Attributes
	Children   []Renderable
	Text       string // String only
}

// TransformNode walks node with cfg's schema to build a Renderable (spec
// §4.6). Totality: every node produces a Renderable; a node with no
// governing schema and no children transforms to Null.
func TransformNode(node *Node, cfg *Config) Renderable {
	schema, ok := cfg.schemaFor(node)
	if !ok {
		children := transformChildren(node, cfg)
		if len(children) == 0 {
			return Renderable{Kind: RenderableNull}
		}
		return Renderable{Kind: RenderableFragment, Children: children}
	}

	if schema.Transform != nil {
		return schema.Transform(node, cfg)
	}

	children := transformChildren(node, cfg)
	if schema.Render != "" {
		return Renderable{Kind: RenderableTag, Name: schema.Render, Attributes: transformAttributes(node, schema), Children: children}
	}
	if len(children) > 0 {
		return Renderable{Kind: RenderableFragment, Children: children}
	}
	return Renderable{Kind: RenderableNull}
}

func transformChildren(node *Node, cfg *Config) []Renderable {
	if len(node.Children) == 0 {
		return nil
	}
	out := make([]Renderable, 0, len(node.Children))
	for _, c := range node.Children {
		out = append(out, TransformNode(c, cfg))
	}
	return out
}

// transformAttributes implements spec §4.6's transform_attributes: skip
// render=False, keep render=True under its source key, rename under
// render=Name(n). Returns nil (spec's "None") when the result is empty.
func transformAttributes(node *Node, schema Schema) Attributes {
	return transformAttributesExcept(node, schema)
}

// transformAttributesExcept is transformAttributes with additional keys
// suppressed, for custom node transforms (Heading, List) that already
// consume some attributes structurally (level, ordered, number) and
// render only the rest.
func transformAttributesExcept(node *Node, schema Schema, except ...string) Attributes {
	skip := make(map[string]bool, len(except))
	for _, k := range except {
		skip[k] = true
	}

	out := Attributes{}
	for key, spec := range schema.Attributes {
		if skip[key] {
			continue
		}
		if spec.Render == RenderFalse {
			continue
		}
		v, ok := node.Attributes[key]
		if !ok {
			continue
		}
		outKey := key
		if spec.Render == RenderName {
			outKey = spec.Name
		}
		out[outKey] = v
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
