package markdoc

// Resolve recursively resolves v in place against cfg (spec §4.5):
// Hash/Array descend; an Expression(Function) writes its slot from the
// bound FunctionSchema's Evaluate (or Undefined if unbound); an
// Expression(Variable) writes its slot from cfg.Variables (or Undefined
// if unbound or missing along the path). Returns v unchanged (the slot
// mutation is what matters; Expression values are cheap to pass by value
// since Expr is a pointer).
func Resolve(v Value, cfg *Config) Value {
	switch v.Kind {
	case KindHash:
		for k, child := range v.Hash {
			v.Hash[k] = Resolve(child, cfg)
		}
	case KindArray:
		for i, child := range v.Array {
			v.Array[i] = Resolve(child, cfg)
		}
	case KindExpression:
		resolveExpression(v.Expr, cfg)
	}
	return v
}

func resolveExpression(e *Expression, cfg *Config) {
	switch e.Kind {
	case ExprFunction:
		for k, param := range e.Parameters {
			e.Parameters[k] = Resolve(param, cfg)
		}
		fn, ok := cfg.Functions[e.Name]
		if !ok {
			e.Slot.Value = Undefined()
			return
		}
		e.Slot.Value = fn.Evaluate(e.Parameters, cfg)

	case ExprVariable:
		e.Slot.Value = resolveVariable(e.Path, cfg)
	}
}

func resolveVariable(path []Value, cfg *Config) Value {
	if cfg.Variables == nil || len(path) == 0 {
		return Undefined()
	}
	if cfg.Variables.Resolver != nil {
		return cfg.Variables.Resolver(path)
	}
	first := path[0].Display()
	root, ok := cfg.Variables.Values[first]
	if !ok {
		return Undefined()
	}
	return deepGet(root, path[1:])
}

// ResolveNode resolves node's attributes in place, then recurses into
// its children (spec §4.5), appending a "missing-attribute" diagnostic
// (SPEC_FULL §5) for any schema-required attribute that is absent or
// resolves to Undefined.
func ResolveNode(node *Node, cfg *Config) {
	for k, v := range node.Attributes {
		node.Attributes[k] = Resolve(v, cfg)
	}
	checkRequiredAttributes(node, cfg)
	for _, c := range node.Children {
		ResolveNode(c, cfg)
	}
}

func checkRequiredAttributes(node *Node, cfg *Config) {
	schema, ok := cfg.schemaFor(node)
	if !ok {
		return
	}
	for key, spec := range schema.Attributes {
		if !spec.Required {
			continue
		}
		v, present := node.Attributes[key]
		if !present || v.IsUndefined() {
			node.addError(Error{
				ID:      "missing-attribute",
				Level:   ErrorLvl,
				Message: "required attribute \"" + key + "\" is missing",
			})
		}
	}
}
