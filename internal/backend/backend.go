package backend

import (
	"fmt"
	"os"
	"sync"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_cpp "github.com/tree-sitter/tree-sitter-cpp/bindings/go"
)

// Index is the process-wide parser resource: created once at engine
// construction, disposed once at shutdown. Every TranslationUnit it
// opens shares the same compiled grammar.
type Index struct {
	lang *tree_sitter.Language

	mu     sync.Mutex
	closed bool
}

// NewIndex creates the backend's global index. Failure here is the one
// fatal error in the engine (spec §7): construction propagates it to the
// caller rather than converting it to a resolved-empty future.
func NewIndex() (*Index, error) {
	ptr := tree_sitter_cpp.Language()
	lang := tree_sitter.NewLanguage(ptr)
	if lang == nil {
		return nil, fmt.Errorf("backend: failed to load c++ grammar")
	}
	return &Index{lang: lang}, nil
}

// Close disposes the index. Safe to call once; further Open calls after
// Close return an error.
func (idx *Index) Close() error {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	idx.closed = true
	return nil
}

// Open parses path from scratch. unsaved, if it contains an entry for
// path, overrides on-disk contents.
func (idx *Index) Open(path string, unsaved []UnsavedFile) (*TranslationUnit, error) {
	idx.mu.Lock()
	closed := idx.closed
	idx.mu.Unlock()
	if closed {
		return nil, fmt.Errorf("backend: index is closed")
	}

	content, err := resolveContent(path, unsaved)
	if err != nil {
		return nil, err
	}

	parser := tree_sitter.NewParser()
	if err := parser.SetLanguage(idx.lang); err != nil {
		return nil, fmt.Errorf("backend: set language: %w", err)
	}

	tree := parser.Parse(content, nil)
	if tree == nil {
		return nil, fmt.Errorf("backend: parse produced no tree for %s", path)
	}

	return &TranslationUnit{
		path:    path,
		parser:  parser,
		tree:    tree,
		content: content,
	}, nil
}

// TranslationUnit is the opaque per-path parser handle owned by the
// translation-unit cache. At most one TranslationUnit per path exists;
// its lifetime is the process lifetime (no eviction, per spec).
type TranslationUnit struct {
	mu sync.Mutex

	path    string
	parser  *tree_sitter.Parser
	tree    *tree_sitter.Tree
	content []byte
}

// Reparse re-analyzes the translation unit against unsaved (or, absent an
// override, the on-disk file), reusing the prior tree as the incremental
// parse's edit base — the analogue of clang's preamble-cached reparse.
func (tu *TranslationUnit) Reparse(unsaved []UnsavedFile) error {
	content, err := resolveContent(tu.path, unsaved)
	if err != nil {
		return err
	}

	tu.mu.Lock()
	defer tu.mu.Unlock()

	oldTree := tu.tree
	if oldTree != nil {
		oldTree.Edit(&tree_sitter.InputEdit{
			StartByte:  0,
			OldEndByte: uint(len(tu.content)),
			NewEndByte: uint(len(content)),
		})
	}

	newTree := tu.parser.Parse(content, oldTree)
	if newTree == nil {
		return fmt.Errorf("backend: reparse produced no tree for %s", tu.path)
	}

	if oldTree != nil {
		oldTree.Close()
	}
	tu.tree = newTree
	tu.content = content
	return nil
}

// CompleteAt returns raw completion candidates at a 1-based line/column.
// Per spec this does not reparse the cached tree first — it parses the
// supplied unsaved content (or, absent an override, the on-disk file)
// into a scratch tree so a stale cache never blocks completion.
func (tu *TranslationUnit) CompleteAt(line, column int, unsaved []UnsavedFile) ([]CompletionData, error) {
	content, err := resolveContent(tu.path, unsaved)
	if err != nil {
		return nil, err
	}

	tu.mu.Lock()
	parser := tu.parser
	tu.mu.Unlock()

	scratch := parser.Parse(content, nil)
	if scratch == nil {
		return nil, fmt.Errorf("backend: completion parse produced no tree for %s", tu.path)
	}
	defer scratch.Close()

	target := byteOffsetForPosition(content, line, column)
	root := scratch.RootNode()
	at := nodeAtByte(root, target)

	return candidatesInScope(at, content), nil
}

// Diagnostics walks the cached tree for ERROR/MISSING nodes.
func (tu *TranslationUnit) Diagnostics() ([]Diagnostic, error) {
	tu.mu.Lock()
	tree := tu.tree
	content := tu.content
	tu.mu.Unlock()

	if tree == nil {
		return nil, nil
	}

	var diags []Diagnostic
	collectDiagnostics(tree.RootNode(), content, &diags)
	return diags, nil
}

// Close releases the translation unit's tree-sitter resources.
func (tu *TranslationUnit) Close() error {
	tu.mu.Lock()
	defer tu.mu.Unlock()
	if tu.tree != nil {
		tu.tree.Close()
		tu.tree = nil
	}
	return nil
}

func resolveContent(path string, unsaved []UnsavedFile) ([]byte, error) {
	for _, uf := range unsaved {
		if uf.Path == path {
			return uf.Contents, nil
		}
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("backend: read %s: %w", path, err)
	}
	return data, nil
}

// byteOffsetForPosition converts a 1-based (line, column) into a byte
// offset into content, clamping to content bounds.
func byteOffsetForPosition(content []byte, line, column int) uint {
	if line < 1 {
		line = 1
	}
	currentLine := 1
	i := 0
	for i < len(content) && currentLine < line {
		if content[i] == '\n' {
			currentLine++
		}
		i++
	}
	col := column - 1
	if col < 0 {
		col = 0
	}
	end := i + col
	if end > len(content) {
		end = len(content)
	}
	return uint(end)
}

// nodeAtByte returns the smallest node spanning targetByte.
func nodeAtByte(node *tree_sitter.Node, targetByte uint) *tree_sitter.Node {
	if node == nil {
		return nil
	}
	if targetByte < node.StartByte() || targetByte > node.EndByte() {
		return node
	}
	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		if child == nil {
			continue
		}
		if targetByte >= child.StartByte() && targetByte <= child.EndByte() {
			return nodeAtByte(child, targetByte)
		}
	}
	return node
}

// candidatesInScope walks up from at to the translation-unit root,
// collecting identifier-shaped siblings at each enclosing level — a
// stand-in for clang's scope-aware code completion.
func candidatesInScope(at *tree_sitter.Node, content []byte) []CompletionData {
	seen := make(map[string]bool)
	var out []CompletionData

	add := func(text string) {
		if text == "" || seen[text] {
			return
		}
		seen[text] = true
		out = append(out, CompletionData{
			InsertionText: text,
			MenuText:      text,
			KindHint:      "identifier",
		})
	}

	node := at
	for node != nil {
		walkIdentifiers(node, content, add)
		node = node.Parent()
	}
	return out
}

func walkIdentifiers(node *tree_sitter.Node, content []byte, add func(string)) {
	if node == nil {
		return
	}
	switch node.Kind() {
	case "identifier", "field_identifier", "type_identifier", "namespace_identifier":
		add(nodeText(node, content))
	}
	for i := uint(0); i < node.ChildCount(); i++ {
		walkIdentifiers(node.Child(i), content, add)
	}
}

func collectDiagnostics(node *tree_sitter.Node, content []byte, out *[]Diagnostic) {
	if node == nil {
		return
	}
	if node.IsError() {
		pos := node.StartPosition()
		*out = append(*out, Diagnostic{
			Line:     int(pos.Row) + 1,
			Column:   int(pos.Column) + 1,
			Severity: SeverityError,
			Text:     fmt.Sprintf("syntax error near %q", nodeText(node, content)),
		})
	} else if node.IsMissing() {
		pos := node.StartPosition()
		*out = append(*out, Diagnostic{
			Line:     int(pos.Row) + 1,
			Column:   int(pos.Column) + 1,
			Severity: SeverityWarning,
			Text:     fmt.Sprintf("missing %s", node.Kind()),
		})
	}
	for i := uint(0); i < node.ChildCount(); i++ {
		collectDiagnostics(node.Child(i), content, out)
	}
}

func nodeText(node *tree_sitter.Node, content []byte) string {
	start, end := node.StartByte(), node.EndByte()
	if int(end) > len(content) || start > end {
		return ""
	}
	return string(content[start:end])
}
