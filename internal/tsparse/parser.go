// Package tsparse wraps tree-sitter for multi-language parsing, shared by
// every analyzer adapter. A Parser is not safe for concurrent use: the
// concurrency model (§5) requires one instance per worker goroutine.
package tsparse

import (
	"context"
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/golang"
	"github.com/smacker/go-tree-sitter/python"
)

// Language identifies a tree-sitter grammar registered with this package.
type Language string

const (
	LangGo     Language = "go"
	LangPython Language = "python"
)

// Parser wraps a single tree-sitter parser instance.
type Parser struct {
	parser *sitter.Parser
}

// NewParser creates a new tree-sitter parser. Callers must not share a
// Parser across goroutines.
func NewParser() *Parser {
	return &Parser{parser: sitter.NewParser()}
}

// Parse parses source and returns the AST root node for lang.
func (p *Parser) Parse(ctx context.Context, source []byte, lang Language) (*sitter.Node, error) {
	tsLang, err := getLanguage(lang)
	if err != nil {
		return nil, err
	}
	p.parser.SetLanguage(tsLang)
	tree, err := p.parser.ParseCtx(ctx, nil, source)
	if err != nil {
		return nil, fmt.Errorf("parse error: %w", err)
	}
	return tree.RootNode(), nil
}

func getLanguage(lang Language) (*sitter.Language, error) {
	switch lang {
	case LangGo:
		return golang.GetLanguage(), nil
	case LangPython:
		return python.GetLanguage(), nil
	default:
		return nil, fmt.Errorf("unsupported language: %s", lang)
	}
}

// Walk recursively visits every node in the subtree rooted at n, including
// n itself, calling visit for each. Traversal order is depth-first,
// child-index order — the order analyzer adapters rely on for emission
// order (used to break enclosing-symbol ties, §4.2).
func Walk(n *sitter.Node, visit func(*sitter.Node)) {
	if n == nil {
		return
	}
	visit(n)
	count := int(n.ChildCount())
	for i := 0; i < count; i++ {
		Walk(n.Child(i), visit)
	}
}

// FindNodes returns every node in the subtree rooted at n whose type is in
// types, in depth-first emission order.
func FindNodes(n *sitter.Node, types map[string]bool) []*sitter.Node {
	var out []*sitter.Node
	Walk(n, func(node *sitter.Node) {
		if types[node.Type()] {
			out = append(out, node)
		}
	})
	return out
}
