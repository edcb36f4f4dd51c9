// Package golang is the reference analyzer adapter (§6.1) for Go source,
// built on github.com/smacker/go-tree-sitter's golang grammar. It is the one
// analyzer the core ships, grounded on internal/symbols/treesitter.go and
// internal/complexity/treesitter.go in SimplyLiz-CodeMCP, extended with call-site
// and import-map extraction SimplyLiz-CodeMCP's symbol extractor does not do.
package golang

import (
	"context"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"dimpact/internal/symbol"
	"dimpact/internal/tsparse"
)

const Language = "go"

var functionNodeTypes = map[string]bool{
	"function_declaration": true,
	"method_declaration":   true,
}

var typeSpecType = "type_spec"

// Adapter implements analyzer.Analyzer for Go. Not safe for concurrent use;
// the registry hands out one instance per call (per worker).
type Adapter struct {
	parser *tsparse.Parser
}

// New constructs a fresh Go adapter with its own tree-sitter parser.
func New() *Adapter {
	return &Adapter{parser: tsparse.NewParser()}
}

func (a *Adapter) Language() string { return Language }

func (a *Adapter) parse(source []byte) *sitter.Node {
	root, err := a.parser.Parse(context.Background(), source, tsparse.LangGo)
	if err != nil {
		return nil
	}
	return root
}

// SymbolsInFile returns every top-level function, method, struct, and
// interface declaration in source. Malformed input yields an empty parse
// tree from tree-sitter rather than a panic, so the result degrades to nil
// rather than erroring.
func (a *Adapter) SymbolsInFile(path string, source []byte) []symbol.Symbol {
	root := a.parse(source)
	if root == nil {
		return nil
	}

	var out []symbol.Symbol

	for _, node := range tsparse.FindNodes(root, functionNodeTypes) {
		name := fieldText(node, "name", source)
		if name == "" {
			continue
		}
		kind := symbol.KindFunction
		if node.Type() == "method_declaration" {
			kind = symbol.KindMethod
		}
		out = append(out, symbol.Symbol{
			Name:     name,
			Kind:     kind,
			File:     path,
			Range:    nodeRange(node),
			Language: Language,
		})
	}

	for _, node := range tsparse.FindNodes(root, map[string]bool{typeSpecType: true}) {
		name := fieldText(node, "name", source)
		if name == "" {
			continue
		}
		underlying := node.ChildByFieldName("type")
		if underlying == nil {
			continue
		}
		var kind symbol.Kind
		switch underlying.Type() {
		case "struct_type":
			kind = symbol.KindStruct
		case "interface_type":
			kind = symbol.KindTrait
		default:
			continue
		}
		out = append(out, symbol.Symbol{
			Name:     name,
			Kind:     kind,
			File:     path,
			Range:    nodeRange(node),
			Language: Language,
		})
	}

	return out
}

// UnresolvedRefsInFile returns every call_expression in source, classifying
// package-qualified calls (qualifier is a known import alias) as free calls
// and every other selector-based call as a method call — the only
// distinction tree-sitter's syntax alone can make without type information.
func (a *Adapter) UnresolvedRefsInFile(path string, source []byte) []symbol.UnresolvedRef {
	root := a.parse(source)
	if root == nil {
		return nil
	}

	imports := a.ImportsInFile(path, source)

	var out []symbol.UnresolvedRef
	for _, call := range tsparse.FindNodes(root, map[string]bool{"call_expression": true}) {
		fn := call.ChildByFieldName("function")
		if fn == nil {
			continue
		}
		line := int(call.StartPoint().Row) + 1

		switch fn.Type() {
		case "identifier":
			out = append(out, symbol.UnresolvedRef{
				Name:     nodeText(fn, source),
				File:     path,
				Line:     line,
				IsMethod: false,
			})
		case "selector_expression":
			operand := fn.ChildByFieldName("operand")
			field := fn.ChildByFieldName("field")
			if field == nil {
				continue
			}
			name := nodeText(field, source)
			qualifier := ""
			isMethod := true
			if operand != nil && operand.Type() == "identifier" {
				qualifier = nodeText(operand, source)
				if _, ok := imports.Alias(qualifier); ok {
					isMethod = false
				}
			}
			out = append(out, symbol.UnresolvedRef{
				Name:      name,
				File:      path,
				Line:      line,
				Qualifier: qualifier,
				IsMethod:  isMethod,
			})
		}
	}
	return out
}

// ImportsInFile returns the file's import map. Go import paths are already
// normalized (no source extension, no relative specifiers to resolve), so
// this is mostly bookkeeping: a plain `import "pkg/path"` aliases the last
// path segment to the full path, an explicit alias overrides that, a blank
// import (`_`) contributes nothing resolvable, and a dot import (`.`)
// contributes a glob prefix — the only Go construct that behaves like a
// wildcard import.
//
// Go has no `from x import y` syntax, but package-facade shims commonly
// re-export an imported package's names through a type alias (`type Foo =
// pkg.Foo`) or a package-level var/const alias (`var Foo = pkg.Foo`); both
// forms record a __export__ entry so the resolver's re-export chase (§4.3
// step 4) can follow a facade to its underlying package the same way it
// follows a Python __init__.py aggregator.
func (a *Adapter) ImportsInFile(path string, source []byte) symbol.ImportMap {
	im := symbol.NewImportMap()
	root := a.parse(source)
	if root == nil {
		return im
	}

	for _, spec := range tsparse.FindNodes(root, map[string]bool{"import_spec": true}) {
		pathNode := spec.ChildByFieldName("path")
		if pathNode == nil {
			continue
		}
		importPath := strings.Trim(nodeText(pathNode, source), `"`)
		if importPath == "" {
			continue
		}

		nameNode := spec.ChildByFieldName("name")
		if nameNode != nil {
			alias := nodeText(nameNode, source)
			switch alias {
			case "_":
				continue
			case ".":
				im.SetGlob(importPath)
				continue
			default:
				im.SetAlias(alias, importPath)
				continue
			}
		}

		segments := strings.Split(importPath, "/")
		im.SetAlias(segments[len(segments)-1], importPath)
	}

	for _, decl := range tsparse.FindNodes(root, map[string]bool{"type_declaration": true}) {
		for i := 0; i < int(decl.NamedChildCount()); i++ {
			spec := decl.NamedChild(i)
			if spec.Type() != "type_spec" || !hasAliasToken(spec) {
				continue
			}
			name := fieldText(spec, "name", source)
			underlying := spec.ChildByFieldName("type")
			if name == "" || underlying == nil {
				continue
			}
			recordFacadeExport(im, name, underlying, source)
		}
	}

	for _, decl := range tsparse.FindNodes(root, map[string]bool{"var_declaration": true, "const_declaration": true}) {
		for i := 0; i < int(decl.NamedChildCount()); i++ {
			spec := decl.NamedChild(i)
			if spec.Type() != "var_spec" && spec.Type() != "const_spec" {
				continue
			}
			name := fieldText(spec, "name", source)
			value := spec.ChildByFieldName("value")
			if name == "" || value == nil {
				continue
			}
			recordFacadeExport(im, name, value, source)
		}
	}

	return im
}

// recordFacadeExport records name as a re-export of pkg.Orig in im, when
// expr is a qualified_type or selector_expression referencing a package the
// file has imported under a known alias.
func recordFacadeExport(im symbol.ImportMap, name string, expr *sitter.Node, source []byte) {
	pkgAlias, orig, ok := qualifiedName(expr, source)
	if !ok {
		return
	}
	target, known := im.Alias(pkgAlias)
	if !known {
		return
	}
	im.SetExport(name, target, orig)
}

// qualifiedName extracts (package alias, name) from a qualified_type
// (`pkg.Type`) or selector_expression (`pkg.Value`) node.
func qualifiedName(n *sitter.Node, source []byte) (pkg, name string, ok bool) {
	switch n.Type() {
	case "qualified_type":
		pkgNode := n.ChildByFieldName("package")
		nameNode := n.ChildByFieldName("name")
		if pkgNode == nil || nameNode == nil {
			return "", "", false
		}
		return nodeText(pkgNode, source), nodeText(nameNode, source), true
	case "selector_expression":
		operand := n.ChildByFieldName("operand")
		field := n.ChildByFieldName("field")
		if operand == nil || field == nil || operand.Type() != "identifier" {
			return "", "", false
		}
		return nodeText(operand, source), nodeText(field, source), true
	default:
		return "", "", false
	}
}

// hasAliasToken reports whether spec carries a literal "=" child, the
// distinguishing token of a type alias (`type X = Y`) versus a plain type
// definition (`type X Y`).
func hasAliasToken(spec *sitter.Node) bool {
	for i := 0; i < int(spec.ChildCount()); i++ {
		if spec.Child(i).Type() == "=" {
			return true
		}
	}
	return false
}

func nodeRange(n *sitter.Node) symbol.TextRange {
	return symbol.TextRange{
		Start: int(n.StartPoint().Row) + 1,
		End:   int(n.EndPoint().Row) + 1,
	}
}

func nodeText(n *sitter.Node, source []byte) string {
	return string(source[n.StartByte():n.EndByte()])
}

func fieldText(n *sitter.Node, field string, source []byte) string {
	child := n.ChildByFieldName(field)
	if child == nil {
		return ""
	}
	return nodeText(child, source)
}
