package editor

import (
	"context"
	"fmt"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/golang"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/python"

	"github.com/dshills/winctl/internal/symbols"
)

// grammar pairs a tree-sitter language with the query that extracts its
// declarations. Capture names select the symbol kind; a capture suffixed with
// ".body" marks the declared node's body and is not itself a symbol.
type grammar struct {
	lang  func() *sitter.Language
	query string
}

var grammars = map[string]grammar{
	LangGo: {
		lang: golang.GetLanguage,
		query: `
(function_declaration name: (identifier) @function)
(method_declaration name: (field_identifier) @method)
(type_spec name: (type_identifier) @type type: (_) @type.body)
(source_file (const_declaration (const_spec name: (identifier) @constant)))
(source_file (var_declaration (var_spec name: (identifier) @variable)))
`,
	},
	LangPython: {
		lang: python.GetLanguage,
		query: `
(class_definition name: (identifier) @class)
(function_definition name: (identifier) @function)
`,
	},
	LangJavaScript: {
		lang: javascript.GetLanguage,
		query: `
(class_declaration name: (identifier) @class)
(function_declaration name: (identifier) @function)
(method_definition name: (property_identifier) @method)
`,
	},
}

// HasGrammar reports whether lang is parsed with tree-sitter.
func HasGrammar(lang string) bool {
	_, ok := grammars[lang]
	return ok
}

// ParseTree extracts declarations from content with the tree-sitter grammar
// for lang.
func ParseTree(ctx context.Context, lang string, content []byte) ([]symbols.Entry, error) {
	g, ok := grammars[lang]
	if !ok {
		return nil, fmt.Errorf("no grammar for %q", lang)
	}
	language := g.lang()

	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(language)

	tree, err := parser.ParseCtx(ctx, nil, content)
	if err != nil {
		return nil, err
	}
	defer tree.Close()

	query, err := sitter.NewQuery([]byte(g.query), language)
	if err != nil {
		return nil, fmt.Errorf("compile %s symbol query: %w", lang, err)
	}
	defer query.Close()

	cursor := sitter.NewQueryCursor()
	defer cursor.Close()
	cursor.Exec(query, tree.RootNode())

	var out []symbols.Entry
	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		match, ok := cursor.NextMatch()
		if !ok {
			break
		}
		match = cursor.FilterPredicates(match, content)

		var name *sitter.Node
		var capture, body string
		for _, c := range match.Captures {
			if c.Node == nil {
				continue
			}
			cn := query.CaptureNameForId(c.Index)
			if strings.HasSuffix(cn, ".body") {
				body = c.Node.Type()
				continue
			}
			name, capture = c.Node, cn
		}
		if name == nil {
			continue
		}

		entry := symbols.Entry{
			Name:   name.Content(content),
			Kind:   captureKind(capture, body),
			Line:   int(name.StartPoint().Row),
			Column: int(name.StartPoint().Column),
		}
		switch lang {
		case LangGo:
			if entry.Kind == symbols.KindMethod {
				entry.Container = goReceiver(name.Parent(), content)
			}
		case LangPython:
			if cls := enclosingOfType(name.Parent(), "class_definition"); cls != nil && entry.Kind == symbols.KindFunction {
				entry.Kind = symbols.KindMethod
				entry.Container = declName(cls, content)
			}
		case LangJavaScript:
			if cls := enclosingOfType(name.Parent(), "class_declaration"); cls != nil && entry.Kind == symbols.KindMethod {
				entry.Container = declName(cls, content)
			}
		}
		out = append(out, entry)
	}
	return out, nil
}

func captureKind(capture, body string) symbols.Kind {
	switch capture {
	case "function":
		return symbols.KindFunction
	case "method":
		return symbols.KindMethod
	case "class":
		return symbols.KindClass
	case "constant":
		return symbols.KindConstant
	case "variable":
		return symbols.KindVariable
	case "type":
		switch body {
		case "struct_type":
			return symbols.KindStruct
		case "interface_type":
			return symbols.KindInterface
		default:
			return symbols.KindClass
		}
	default:
		return symbols.KindVariable
	}
}

// goReceiver returns the receiver type name of a method declaration.
func goReceiver(decl *sitter.Node, content []byte) string {
	if decl == nil {
		return ""
	}
	recv := decl.ChildByFieldName("receiver")
	if recv == nil {
		return ""
	}
	text := strings.Trim(recv.Content(content), "()")
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return ""
	}
	typ := strings.TrimPrefix(fields[len(fields)-1], "*")
	if i := strings.IndexByte(typ, '['); i >= 0 {
		typ = typ[:i]
	}
	return typ
}

// enclosingOfType walks up from n (exclusive of n's own declaration) to the
// nearest ancestor of the given node type.
func enclosingOfType(n *sitter.Node, typ string) *sitter.Node {
	if n == nil {
		return nil
	}
	for p := n.Parent(); p != nil; p = p.Parent() {
		if p.Type() == typ {
			return p
		}
	}
	return nil
}

func declName(n *sitter.Node, content []byte) string {
	if name := n.ChildByFieldName("name"); name != nil {
		return name.Content(content)
	}
	return ""
}
