// Package python is a second, lighter analyzer adapter demonstrating that
// adding a language to the registry is purely additive (§4.1). Python's
// `from x import *`, `from x import y as z`, and relative imports exercise
// the glob/alias/re-export key families of the import map more richly than
// Go's import syntax does.
package python

import (
	"context"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"dimpact/internal/symbol"
	"dimpact/internal/tsparse"
)

const Language = "python"

var functionNodeType = map[string]bool{"function_definition": true}
var classNodeType = map[string]bool{"class_definition": true}

// Adapter implements analyzer.Analyzer for Python.
type Adapter struct {
	parser *tsparse.Parser
}

// New constructs a fresh Python adapter with its own tree-sitter parser.
func New() *Adapter {
	return &Adapter{parser: tsparse.NewParser()}
}

func (a *Adapter) Language() string { return Language }

func (a *Adapter) parse(source []byte) *sitter.Node {
	root, err := a.parser.Parse(context.Background(), source, tsparse.LangPython)
	if err != nil {
		return nil
	}
	return root
}

// SymbolsInFile returns every function, method (a function nested under a
// class body), and class declaration in source.
func (a *Adapter) SymbolsInFile(path string, source []byte) []symbol.Symbol {
	root := a.parse(source)
	if root == nil {
		return nil
	}

	var out []symbol.Symbol

	for _, node := range tsparse.FindNodes(root, functionNodeType) {
		name := fieldText(node, "name", source)
		if name == "" {
			continue
		}
		kind := symbol.KindFunction
		if insideClass(node) {
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

	for _, node := range tsparse.FindNodes(root, classNodeType) {
		name := fieldText(node, "name", source)
		if name == "" {
			continue
		}
		out = append(out, symbol.Symbol{
			Name:     name,
			Kind:     symbol.KindStruct,
			File:     path,
			Range:    nodeRange(node),
			Language: Language,
		})
	}

	return out
}

// UnresolvedRefsInFile returns every call expression in source. An attribute
// call (`obj.method()`) is a method call with the attribute base as
// qualifier; a bare-name call (`func()`) is a free call.
func (a *Adapter) UnresolvedRefsInFile(path string, source []byte) []symbol.UnresolvedRef {
	root := a.parse(source)
	if root == nil {
		return nil
	}

	var out []symbol.UnresolvedRef
	for _, call := range tsparse.FindNodes(root, map[string]bool{"call": true}) {
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
		case "attribute":
			object := fn.ChildByFieldName("object")
			attr := fn.ChildByFieldName("attribute")
			if attr == nil {
				continue
			}
			qualifier := ""
			if object != nil {
				qualifier = nodeText(object, source)
			}
			out = append(out, symbol.UnresolvedRef{
				Name:      nodeText(attr, source),
				File:      path,
				Line:      line,
				Qualifier: qualifier,
				IsMethod:  true,
			})
		}
	}
	return out
}

// ImportsInFile returns the file's import map, covering `import x`,
// `import x as y`, `from x import y`, `from x import y as z`, and
// `from x import *`. Relative specifiers (leading dots on the module name)
// are resolved against the importing file's directory, per §4.1; `.` names
// the importing file's own package and each additional `.` climbs one
// level, the Python form of a `super::`-style relative path (§4.3.1).
//
// Inside an __init__.py, `from .x import Name` and `from .x import Name as
// Alias` additionally record a __export__ entry (and `from .x import *`
// records a __export_glob__ entry): the package's __init__.py is Python's
// canonical re-export aggregator, and a plain alias entry would make the
// resolver's re-export chase (§4.3 step 4) unreachable for the idiom it
// exists to handle.
func (a *Adapter) ImportsInFile(path string, source []byte) symbol.ImportMap {
	im := symbol.NewImportMap()
	root := a.parse(source)
	if root == nil {
		return im
	}

	isAggregator := isInitFile(path)
	dir := dirname(path)

	for _, node := range tsparse.FindNodes(root, map[string]bool{"import_statement": true}) {
		for i := 0; i < int(node.NamedChildCount()); i++ {
			child := node.NamedChild(i)
			switch child.Type() {
			case "dotted_name":
				modPath := dottedPath(child, source)
				segments := strings.Split(modPath, ".")
				im.SetAlias(segments[len(segments)-1], modPath)
			case "aliased_import":
				nameNode := child.ChildByFieldName("name")
				aliasNode := child.ChildByFieldName("alias")
				if nameNode == nil || aliasNode == nil {
					continue
				}
				im.SetAlias(nodeText(aliasNode, source), dottedPath(nameNode, source))
			}
		}
	}

	for _, node := range tsparse.FindNodes(root, map[string]bool{"import_from_statement": true}) {
		moduleNode := node.ChildByFieldName("module_name")
		if moduleNode == nil {
			continue
		}
		module := resolveRelative(dir, moduleNode, source)

		wildcard := false
		for i := 0; i < int(node.NamedChildCount()); i++ {
			child := node.NamedChild(i)
			if child == moduleNode {
				continue
			}
			switch child.Type() {
			case "wildcard_import":
				wildcard = true
			case "dotted_name":
				name := dottedPath(child, source)
				if isAggregator {
					im.SetExport(name, module, name)
				} else {
					im.SetAlias(name, module+"::"+name)
				}
			case "aliased_import":
				nameNode := child.ChildByFieldName("name")
				aliasNode := child.ChildByFieldName("alias")
				if nameNode == nil || aliasNode == nil {
					continue
				}
				orig := dottedPath(nameNode, source)
				alias := nodeText(aliasNode, source)
				if isAggregator {
					im.SetExport(alias, module, orig)
				} else {
					im.SetAlias(alias, module+"::"+orig)
				}
			}
		}
		if wildcard {
			if isAggregator {
				im.SetExportGlob(module)
			} else {
				im.SetGlob(module)
			}
		}
	}

	return im
}

// isInitFile reports whether path is a Python package aggregator
// (__init__.py), the file whose `from .x import Name` statements Python
// treats as the package's public re-exports.
func isInitFile(path string) bool {
	i := strings.LastIndexByte(path, '/')
	base := path
	if i >= 0 {
		base = path[i+1:]
	}
	return base == "__init__.py"
}

// resolveRelative expands a `from . import x` / `from .. import x` /
// `from .pkg import x` module specifier against dir, the importing file's
// directory, without touching the filesystem: each leading dot beyond the
// first climbs one directory level, and any trailing dotted name is
// appended.
func resolveRelative(dir string, moduleNode *sitter.Node, source []byte) string {
	raw := nodeText(moduleNode, source)
	if moduleNode.Type() != "relative_import" {
		return raw
	}

	dots := 0
	rest := ""
	for _, child := range childrenOf(moduleNode) {
		if child.Type() == "import_prefix" {
			dots = len(nodeText(child, source))
		}
		if child.Type() == "dotted_name" {
			rest = dottedPath(child, source)
		}
	}

	base := dir
	for i := 0; i < dots-1; i++ {
		if j := strings.LastIndexByte(base, '.'); j >= 0 {
			base = base[:j]
		} else {
			base = ""
		}
	}
	if base == "" || base == "." {
		base = rest
	} else if rest != "" {
		base = base + "." + rest
	}
	return base
}

func childrenOf(n *sitter.Node) []*sitter.Node {
	out := make([]*sitter.Node, 0, n.ChildCount())
	for i := 0; i < int(n.ChildCount()); i++ {
		out = append(out, n.Child(i))
	}
	return out
}

func insideClass(n *sitter.Node) bool {
	for p := n.Parent(); p != nil; p = p.Parent() {
		if p.Type() == "class_definition" {
			return true
		}
	}
	return false
}

func dottedPath(n *sitter.Node, source []byte) string {
	return strings.ReplaceAll(nodeText(n, source), " ", "")
}

func dirname(path string) string {
	i := strings.LastIndexByte(path, '/')
	if i < 0 {
		return ""
	}
	return strings.ReplaceAll(path[:i], "/", ".")
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
