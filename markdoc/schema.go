package markdoc

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/pkoukk/tiktoken-go"
)

// AttributeRender discriminates how an attribute is rendered (spec §3).
type AttributeRender int

const (
	RenderTrue AttributeRender = iota
	RenderName
	RenderFalse
)

// AttributeSpec describes one schema-governed attribute (spec §3).
type AttributeSpec struct {
	Kind     string // "String","Number","Boolean","Object","Array"; empty = unconstrained
	Render   AttributeRender
	Name     string // set iff Render == RenderName
	Required bool
}

// TransformFunc is a Schema's optional custom transform callback (spec
// §9: "a function pointer (Node, Config) -> Renderable").
type TransformFunc func(node *Node, cfg *Config) Renderable

// Schema is the declarative rendering contract for one node kind or tag
// name (spec §3).
type Schema struct {
	Render       string
	Attributes   map[string]AttributeSpec
	SelfClosing  bool
	Transform    TransformFunc
}

// FunctionSchema is a built-in/user function bindable from `{% name(...) %}`
// expressions (spec §3).
type FunctionSchema struct {
	Attributes map[string]AttributeSpec
	Evaluate   func(params map[string]Value, cfg *Config) Value
}

// Variables supplies variable lookups to the Resolver, either a resolver
// function or a plain value map (spec §3).
type Variables struct {
	Resolver func(path []Value) Value
	Values   Attributes
}

// Config is the full binding a Resolver/Transformer runs against (spec §3).
type Config struct {
	Nodes     map[NodeKind]Schema
	Tags      map[string]Schema
	Variables *Variables
	Functions map[string]FunctionSchema
}

// schemaFor selects the schema governing node, per spec §4.6: by tag name
// when the node is a Tag, else by NodeKind. The ok result is false when
// neither map has an entry (the "no schema found" transform case).
func (cfg *Config) schemaFor(n *Node) (Schema, bool) {
	if n.Kind == TagKind {
		s, ok := cfg.Tags[n.Tag]
		return s, ok
	}
	s, ok := cfg.Nodes[n.Kind]
	return s, ok
}

// DefaultConfig returns the built-in node schema (spec §4.4) plus the
// always-on function set supplementing it (SPEC_FULL §4.5/§5): upper,
// lower, tokencount. Variables default to an empty Values map.
func DefaultConfig() *Config {
	cfg := &Config{
		Nodes:     defaultNodeSchemas(),
		Tags:      map[string]Schema{},
		Variables: &Variables{Values: Attributes{}},
		Functions: defaultFunctions(),
	}
	return cfg
}

func attr(render AttributeRender, name string, required bool) AttributeSpec {
	return AttributeSpec{Render: render, Name: name, Required: required}
}

func defaultNodeSchemas() map[NodeKind]Schema {
	return map[NodeKind]Schema{
		Document: {
			Attributes: map[string]AttributeSpec{
				"frontmatter": attr(RenderFalse, "", false),
			},
		},
		Heading: {
			Transform: transformHeading,
			Attributes: map[string]AttributeSpec{
				"level": attr(RenderFalse, "", true),
			},
		},
		Paragraph: {Render: "p"},
		Image: {
			Render: "img",
			Attributes: map[string]AttributeSpec{
				"src":   attr(RenderTrue, "", true),
				"alt":   attr(RenderTrue, "", false),
				"title": attr(RenderTrue, "", false),
			},
		},
		Fence: {
			Render: "pre",
			Attributes: map[string]AttributeSpec{
				"content":  attr(RenderFalse, "", true),
				"language": attr(RenderName, "data-language", false),
				"process":  attr(RenderFalse, "", false),
			},
		},
		Blockquote: {Render: "blockquote"},
		Item:       {Render: "li"},
		ListKind: {
			Transform: transformList,
			Attributes: map[string]AttributeSpec{
				"ordered": attr(RenderFalse, "", true),
			},
		},
		Table:     {Render: "table"},
		TableHead: {Render: "thead"},
		TableBody: {Render: "tbody"},
		TableRow:  {Render: "tr"},
		TableHeadCell: {
			Render: "th",
			Attributes: map[string]AttributeSpec{
				"width": attr(RenderTrue, "", false),
				"align": attr(RenderTrue, "", false),
			},
		},
		TableCell: {
			Render: "td",
			Attributes: map[string]AttributeSpec{
				"colspan": attr(RenderTrue, "", false),
				"rowspan": attr(RenderTrue, "", false),
				"align":   attr(RenderTrue, "", false),
			},
		},
		Strong:   {Render: "strong"},
		Emphasis: {Render: "em"},
		Strike:   {Render: "s"},
		Code: {
			Render: "code",
			Attributes: map[string]AttributeSpec{
				"content": attr(RenderFalse, "", true),
			},
		},
		Link: {
			Render: "a",
			Attributes: map[string]AttributeSpec{
				"href":  attr(RenderTrue, "", true),
				"title": attr(RenderTrue, "", false),
			},
		},
		Inline: {Transform: transformChildrenOnly},
		Text:   {Transform: transformText},
		Rule:   {Render: "hr", SelfClosing: true},
		HardBreak: {Render: "br", SelfClosing: true},
		SoftBreak: {Transform: transformSoftBreak},
	}
}

func transformHeading(n *Node, cfg *Config) Renderable {
	level := n.Attributes["level"].Resolved()
	name := fmt.Sprintf("h%d", int(level.Number))
	children := transformChildren(n, cfg)
	return Renderable{Kind: RenderableTag, Name: name, Attributes: transformAttributesExcept(n, cfg.Nodes[Heading], "level"), Children: children}
}

func transformList(n *Node, cfg *Config) Renderable {
	ordered := n.Attributes["ordered"].Resolved()
	name := "ul"
	if ordered.Boolean {
		name = "ol"
	}
	children := transformChildren(n, cfg)
	return Renderable{Kind: RenderableTag, Name: name, Attributes: transformAttributesExcept(n, cfg.Nodes[ListKind], "ordered", "number"), Children: children}
}

func transformChildrenOnly(n *Node, cfg *Config) Renderable {
	children := transformChildren(n, cfg)
	if len(children) == 0 {
		return Renderable{Kind: RenderableNull}
	}
	return Renderable{Kind: RenderableFragment, Children: children}
}

func transformText(n *Node, cfg *Config) Renderable {
	content := n.Attributes["content"].Resolved()
	return Renderable{Kind: RenderableString, Text: content.Display()}
}

func transformSoftBreak(n *Node, cfg *Config) Renderable {
	return Renderable{Kind: RenderableString, Text: " "}
}

var (
	cl100kOnce sync.Once
	cl100kEnc  *tiktoken.Tiktoken
	cl100kErr  error
)

// cl100kEncoding lazily builds the cl100k_base encoder once per process
// and caches it, so repeated DefaultConfig() calls (one per render, per
// the CLI and per test) don't each pay its construction cost.
func cl100kEncoding() (*tiktoken.Tiktoken, error) {
	cl100kOnce.Do(func() {
		cl100kEnc, cl100kErr = tiktoken.GetEncoding("cl100k_base")
	})
	return cl100kEnc, cl100kErr
}

// defaultFunctions is the always-on function set (SPEC_FULL §4.5/§5).
func defaultFunctions() map[string]FunctionSchema {
	return map[string]FunctionSchema{
		"upper": {
			Evaluate: func(params map[string]Value, cfg *Config) Value {
				v := Resolve(params["0"], cfg)
				return StringValue(toUpper(v.Display()))
			},
		},
		"lower": {
			Evaluate: func(params map[string]Value, cfg *Config) Value {
				v := Resolve(params["0"], cfg)
				return StringValue(toLower(v.Display()))
			},
		},
		"tokencount": {
			Evaluate: func(params map[string]Value, cfg *Config) Value {
				enc, err := cl100kEncoding()
				if err != nil {
					return NumberValue(0)
				}
				v := Resolve(params["0"], cfg)
				tokens := enc.Encode(v.Display(), nil, nil)
				return NumberValue(float64(len(tokens)))
			},
		},
	}
}

func toUpper(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'a' && c <= 'z' {
			b[i] = c - 32
		}
	}
	return string(b)
}

func toLower(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c + 32
		}
	}
	return string(b)
}

// --- JSON (de)serialization (spec §6) ---

type schemaJSON struct {
	Render      string                        `json:"render,omitempty"`
	Attributes  map[string]attributeSpecJSON `json:"attributes,omitempty"`
	SelfClosing bool                          `json:"self_closing,omitempty"`
}

type attributeSpecJSON struct {
	Kind     string `json:"kind,omitempty"`
	Render   string `json:"render,omitempty"`
	Required bool   `json:"required,omitempty"`
}

func (s Schema) MarshalJSON() ([]byte, error) {
	out := schemaJSON{Render: s.Render, SelfClosing: s.SelfClosing}
	if len(s.Attributes) > 0 {
		out.Attributes = make(map[string]attributeSpecJSON, len(s.Attributes))
		for k, a := range s.Attributes {
			aj := attributeSpecJSON{Kind: a.Kind, Required: a.Required}
			switch a.Render {
			case RenderTrue:
				aj.Render = "true"
			case RenderName:
				aj.Render = a.Name
			case RenderFalse:
				aj.Render = "false"
			}
			out.Attributes[k] = aj
		}
	}
	return json.Marshal(out)
}

func (s *Schema) UnmarshalJSON(data []byte) error {
	var in schemaJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return fmt.Errorf("schema: %w", err)
	}
	s.Render = in.Render
	s.SelfClosing = in.SelfClosing
	if len(in.Attributes) > 0 {
		s.Attributes = make(map[string]AttributeSpec, len(in.Attributes))
		for k, a := range in.Attributes {
			spec := AttributeSpec{Kind: a.Kind, Required: a.Required}
			switch a.Render {
			case "", "true":
				spec.Render = RenderTrue
			case "false":
				spec.Render = RenderFalse
			default:
				spec.Render = RenderName
				spec.Name = a.Render
			}
			s.Attributes[k] = spec
		}
	}
	return nil
}

// nodeKindJSONNames maps NodeKind to its lowercase serialized form, with
// the renames spec §6 requires (thead/tbody/tr/th/td/em/hr).
var nodeKindJSONNames = map[NodeKind]string{
	Document: "document", Paragraph: "paragraph", Heading: "heading",
	Blockquote: "blockquote", Fence: "fence", ListKind: "list", Item: "item",
	Inline: "inline", Table: "table", TableHead: "thead", TableBody: "tbody",
	TableRow: "tr", TableHeadCell: "th", TableCell: "td", Emphasis: "em",
	Strong: "strong", Strike: "strike", Link: "link", Image: "image",
	Text: "text", Code: "code", SoftBreak: "softbreak", HardBreak: "hardbreak",
	Rule: "hr", Nop: "nop", ErrorKind: "error", TagKind: "tag",
}

var jsonNameToNodeKind = func() map[string]NodeKind {
	m := make(map[string]NodeKind, len(nodeKindJSONNames))
	for k, v := range nodeKindJSONNames {
		m[v] = k
	}
	return m
}()

// ConfigJSON is the JSON-serializable projection of Config (spec §6):
// node schemas keyed by their lowercase NodeKind name, tag schemas keyed
// by tag name. Variables and Transform callbacks are not serialized.
type ConfigJSON struct {
	Nodes map[string]Schema `json:"nodes,omitempty"`
	Tags  map[string]Schema `json:"tags,omitempty"`
}

// MarshalConfig projects cfg into its JSON form.
func MarshalConfig(cfg *Config) ([]byte, error) {
	out := ConfigJSON{Tags: cfg.Tags}
	if len(cfg.Nodes) > 0 {
		out.Nodes = make(map[string]Schema, len(cfg.Nodes))
		for k, s := range cfg.Nodes {
			name, ok := nodeKindJSONNames[k]
			if !ok {
				continue
			}
			out.Nodes[name] = s
		}
	}
	return json.Marshal(out)
}

// UnmarshalConfig parses a JSON-serialized Config, merging onto
// DefaultConfig() transforms/functions/variables (which JSON never
// carries) with the incoming node/tag render schemas.
func UnmarshalConfig(data []byte) (*Config, error) {
	var in ConfigJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return nil, fmt.Errorf("markdoc: decode config: %w", err)
	}
	cfg := DefaultConfig()
	for name, s := range in.Nodes {
		kind, ok := jsonNameToNodeKind[name]
		if !ok {
			return nil, fmt.Errorf("markdoc: unknown node kind %q", name)
		}
		existing := cfg.Nodes[kind]
		s.Transform = existing.Transform
		cfg.Nodes[kind] = s
	}
	for name, s := range in.Tags {
		cfg.Tags[name] = s
	}
	return cfg, nil
}
