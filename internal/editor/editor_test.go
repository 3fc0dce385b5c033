package editor

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/dshills/winctl/internal/document"
	"github.com/dshills/winctl/internal/logging"
	"github.com/dshills/winctl/internal/symbols"
)

func byName(entries []symbols.Entry) map[string]symbols.Entry {
	m := make(map[string]symbols.Entry, len(entries))
	for _, e := range entries {
		m[e.Name] = e
	}
	return m
}

func TestDetectLanguage(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"/src/main.go", LangGo},
		{"script.PY", LangPython},
		{"app.mjs", LangJavaScript},
		{"README.md", LangMarkdown},
		{"notes", LangPlainText},
		{"Cargo.toml", "toml"},
	}
	for _, tt := range tests {
		if got := DetectLanguage(tt.path); got != tt.want {
			t.Errorf("DetectLanguage(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}

const goSource = `package demo

const Max = 3

var registry = map[string]int{}

type Store struct{}

type Reader interface{ Read() }

type ID string

func New() *Store { return nil }

func (s *Store) Get(id ID) int { var local int; return local }
`

func TestParseTreeGo(t *testing.T) {
	entries, err := ParseTree(context.Background(), LangGo, []byte(goSource))
	if err != nil {
		t.Fatalf("ParseTree: %v", err)
	}
	got := byName(entries)

	tests := []struct {
		name      string
		kind      symbols.Kind
		line      int
		container string
	}{
		{"Max", symbols.KindConstant, 2, ""},
		{"registry", symbols.KindVariable, 4, ""},
		{"Store", symbols.KindStruct, 6, ""},
		{"Reader", symbols.KindInterface, 8, ""},
		{"ID", symbols.KindClass, 10, ""},
		{"New", symbols.KindFunction, 12, ""},
		{"Get", symbols.KindMethod, 14, "Store"},
	}
	for _, tt := range tests {
		e, ok := got[tt.name]
		if !ok {
			t.Errorf("missing symbol %q in %v", tt.name, entries)
			continue
		}
		if e.Kind != tt.kind || e.Line != tt.line || e.Container != tt.container {
			t.Errorf("%s = %+v, want kind %v line %d container %q", tt.name, e, tt.kind, tt.line, tt.container)
		}
	}
	if _, ok := got["local"]; ok {
		t.Error("function-local variables should not be symbols")
	}
}

func TestParseTreePython(t *testing.T) {
	src := "class Greeter:\n    def hello(self):\n        pass\n\ndef main():\n    pass\n"
	entries, err := ParseTree(context.Background(), LangPython, []byte(src))
	if err != nil {
		t.Fatal(err)
	}
	got := byName(entries)
	if got["Greeter"].Kind != symbols.KindClass {
		t.Errorf("Greeter = %+v", got["Greeter"])
	}
	if e := got["hello"]; e.Kind != symbols.KindMethod || e.Container != "Greeter" || e.Line != 1 {
		t.Errorf("hello = %+v", e)
	}
	if e := got["main"]; e.Kind != symbols.KindFunction || e.Line != 4 {
		t.Errorf("main = %+v", e)
	}
}

func TestParseTreeJavaScript(t *testing.T) {
	src := "class Widget {\n  render() {}\n}\nfunction boot() {}\n"
	entries, err := ParseTree(context.Background(), LangJavaScript, []byte(src))
	if err != nil {
		t.Fatal(err)
	}
	got := byName(entries)
	if e := got["render"]; e.Kind != symbols.KindMethod || e.Container != "Widget" {
		t.Errorf("render = %+v", e)
	}
	if e := got["boot"]; e.Kind != symbols.KindFunction || e.Line != 3 {
		t.Errorf("boot = %+v", e)
	}
}

func TestParseTreeUnknownLanguage(t *testing.T) {
	if _, err := ParseTree(context.Background(), "cobol", nil); err == nil {
		t.Error("expected error for language without grammar")
	}
}

func TestParseOutlineMarkdown(t *testing.T) {
	src := "# Title\n\ntext\n\n## Usage ##\n```\n# not a heading\n```\n#nospace\n### Notes\n"
	entries := ParseOutline(LangMarkdown, []byte(src))
	var names []string
	for _, e := range entries {
		names = append(names, e.Name)
	}
	want := []string{"Title", "Usage", "Notes"}
	if len(names) != len(want) {
		t.Fatalf("headings = %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("heading %d = %q, want %q", i, names[i], want[i])
		}
	}
	if entries[2].Line != 9 || entries[2].Kind != symbols.KindHeading {
		t.Errorf("Notes entry = %+v", entries[2])
	}
}

func TestParseOutlineDeclarations(t *testing.T) {
	src := "local function setup()\nend\n\nfn main() {}\n  def helper(x):\nclass Thing\n"
	got := byName(ParseOutline("lua", []byte(src)))
	if e := got["setup"]; e.Kind != symbols.KindFunction || e.Column != 15 {
		t.Errorf("setup = %+v", e)
	}
	if e := got["helper"]; e.Line != 4 || e.Column != 6 {
		t.Errorf("helper = %+v", e)
	}
	if got["Thing"].Kind != symbols.KindClass {
		t.Errorf("Thing = %+v", got["Thing"])
	}
	if _, ok := got["main"]; !ok {
		t.Error("missing main")
	}
}

func TestStoreOpenAndVersions(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "main.go")
	if err := os.WriteFile(path, []byte(goSource), 0o644); err != nil {
		t.Fatal(err)
	}

	s := NewStore(logging.Nop())
	var changes []symbols.Change
	sub := s.Subscribe(func(ch symbols.Change) { changes = append(changes, ch) })

	doc, err := s.Open(context.Background(), document.ID("file://"+path))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if doc.ID() != document.ID(path) || doc.Name() != "main.go" {
		t.Errorf("doc = %v %q", doc.ID(), doc.Name())
	}
	again, _ := s.Open(context.Background(), document.ID(path))
	if again != doc {
		t.Error("second Open should return the same buffer")
	}
	if v := s.ContentVersion(doc.ID()); v != 1 {
		t.Errorf("version = %d, want 1", v)
	}

	if err := s.Edit(doc.ID(), []byte("package x\n")); err != nil {
		t.Fatal(err)
	}
	if v := s.ContentVersion(doc.ID()); v != 2 {
		t.Errorf("version after edit = %d, want 2", v)
	}
	if len(changes) != 2 || changes[1].Version != 2 {
		t.Errorf("changes = %+v", changes)
	}

	sub.Unsubscribe()
	s.Close(doc.ID())
	if len(changes) != 2 {
		t.Error("unsubscribed observer should not be called")
	}
	if v := s.ContentVersion(doc.ID()); v != 0 {
		t.Errorf("closed document version = %d", v)
	}
}

func TestStoreOpenMissingFile(t *testing.T) {
	s := NewStore(nil)
	_, err := s.Open(context.Background(), document.ID(filepath.Join(t.TempDir(), "nope.txt")))
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("Open missing = %v", err)
	}
	if err := s.Edit("/nope", nil); !errors.Is(err, ErrUnknownDocument) {
		t.Errorf("Edit unknown = %v", err)
	}
}

func TestStoreScratch(t *testing.T) {
	s := NewStore(nil)
	a := s.NewScratch()
	b := s.NewScratch()
	if a.ID() == b.ID() {
		t.Error("scratch buffers need distinct identifiers")
	}
	if a.Name() != "Untitled" || b.Name() != "Untitled 2" {
		t.Errorf("names = %q, %q", a.Name(), b.Name())
	}
	if _, err := s.Open(context.Background(), "untitled://99"); !errors.Is(err, ErrUnknownDocument) {
		t.Errorf("Open unknown scratch = %v", err)
	}
	got, err := s.Open(context.Background(), a.ID())
	if err != nil || got != a {
		t.Errorf("Open existing scratch = %v, %v", got, err)
	}
}

func TestStoreParseSymbols(t *testing.T) {
	s := NewStore(nil)
	s.Put("/notes/todo.md", []byte("# Today\n## Later\n"))
	entries, err := s.ParseSymbols(context.Background(), "/notes/todo.md")
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 {
		t.Errorf("entries = %v", entries)
	}
	if _, err := s.ParseSymbols(context.Background(), "/missing"); !errors.Is(err, ErrUnknownDocument) {
		t.Errorf("ParseSymbols unknown = %v", err)
	}
}

func TestStoreWithSymbolCache(t *testing.T) {
	s := NewStore(nil)
	s.Put("/src/a.go", []byte(goSource))
	cache := symbols.NewCache(s, symbols.Options{Logger: logging.Nop()})
	sub := cache.Watch(s)
	defer sub.Unsubscribe()

	ctx := context.Background()
	got, err := cache.Symbols(ctx, "/src/a.go", "re")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 3 { // registry, Store, Reader
		t.Errorf("filtered = %v", got)
	}

	_ = s.Edit("/src/a.go", []byte("package demo\n\nfunc Only() {}\n"))
	got, _ = cache.Symbols(ctx, "/src/a.go", "")
	if len(got) != 1 || got[0].Name != "Only" {
		t.Errorf("after edit = %v", got)
	}
	if st := cache.Stats(); st.Parses != 2 {
		t.Errorf("parses = %d, want 2", st.Parses)
	}
}
