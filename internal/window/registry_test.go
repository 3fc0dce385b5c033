package window

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/dshills/winctl/internal/document"
	"github.com/dshills/winctl/internal/layout"
	"github.com/dshills/winctl/internal/logging"
	"github.com/dshills/winctl/internal/nav"
	"github.com/dshills/winctl/internal/symbols"
)

type fakeOpener struct {
	opened []document.ID
	fail   map[document.ID]error
}

func (o *fakeOpener) Open(ctx context.Context, id document.ID) (document.Document, error) {
	if err := o.fail[id]; err != nil {
		return nil, err
	}
	o.opened = append(o.opened, id)
	return document.NewRef(id), nil
}

type fakePlaceholders struct {
	n int
}

func (p *fakePlaceholders) NewScratch() document.Document {
	p.n++
	return document.Ref{Resource: document.ID(fmt.Sprintf("untitled://%d", p.n)), Title: "Untitled"}
}

type fakeIndex struct {
	invalidated []document.ID
	entries     []symbols.Entry
}

func (f *fakeIndex) Symbols(ctx context.Context, id document.ID, filter string) ([]symbols.Entry, error) {
	return symbols.Filter(f.entries, filter, symbols.MatchSubstring), nil
}

func (f *fakeIndex) SymbolAt(ctx context.Context, id document.ID, line int) (symbols.Entry, bool, error) {
	e, ok := symbols.Enclosing(f.entries, line)
	return e, ok, nil
}

func (f *fakeIndex) Invalidate(id document.ID) {
	f.invalidated = append(f.invalidated, id)
}

func newRegistry(policy LastViewPolicy) (*Registry, *fakeOpener, *fakePlaceholders, *fakeIndex) {
	op := &fakeOpener{fail: map[document.ID]error{}}
	ph := &fakePlaceholders{}
	idx := &fakeIndex{}
	r := New(Options{
		Policy:      Policy{LastView: policy},
		Opener:      op,
		Placeholder: ph,
		Symbols:     idx,
		Logger:      logging.Nop(),
	})
	return r, op, ph, idx
}

var (
	docA = document.NewRef("/src/a.go")
	docB = document.NewRef("/src/b.go")
	docC = document.NewRef("/src/c.go")
)

func mustOpen(t *testing.T, r *Registry, doc document.Document) *layout.ViewSlot {
	t.Helper()
	s, err := r.OpenDocument(doc)
	if err != nil {
		t.Fatalf("OpenDocument(%s): %v", doc.ID(), err)
	}
	return s
}

// OpenDocument Tests

func TestOpenDocumentFirstCreatesTab(t *testing.T) {
	r, _, _, _ := newRegistry(LastViewRefuse)
	if r.CurrentView() != nil || r.CurrentTabIndex() != -1 {
		t.Fatal("new registry should be empty")
	}
	s := mustOpen(t, r, docA)
	if r.TabCount() != 1 || r.CurrentView() != s || r.CurrentTabIndex() != 0 {
		t.Errorf("tabs=%d current=%v", r.TabCount(), r.CurrentView())
	}
	if r.JumpList().Len() != 0 {
		t.Error("OpenDocument must not record history")
	}
}

func TestOpenDocumentReusesVisibleSlot(t *testing.T) {
	r, _, _, _ := newRegistry(LastViewRefuse)
	a := mustOpen(t, r, docA)
	b, _ := r.SplitCurrent(layout.Vertical)
	_ = r.SetCurrentView(a)

	got := mustOpen(t, r, docA)
	if got != a {
		t.Error("visible slot should be reused")
	}
	// The split copy is also visible; opening from it must not duplicate.
	_ = r.SetCurrentView(b)
	if got := mustOpen(t, r, docA); got != a || r.ViewCount() != 2 {
		t.Errorf("expected reuse of first slot, views=%d", r.ViewCount())
	}
}

func TestOpenDocumentReplacesCurrentLeaf(t *testing.T) {
	r, _, _, _ := newRegistry(LastViewRefuse)
	a := mustOpen(t, r, docA)
	b := mustOpen(t, r, docB)
	if b == a {
		t.Fatal("a new slot should be created")
	}
	tab := r.Tabs()[0]
	if tab.LeafCount() != 1 || tab.Contains(a) || !tab.Contains(b) {
		t.Error("new slot should take the current leaf's place")
	}
	if len(r.Documents()) != 2 {
		t.Error("replaced document stays registered")
	}
	if doc, ok := r.LastDocument(); !ok || doc.ID() != docA.ID() {
		t.Errorf("LastDocument() = %v, %v", doc, ok)
	}
}

func TestOpenNil(t *testing.T) {
	r, _, _, _ := newRegistry(LastViewRefuse)
	if _, err := r.OpenDocument(nil); !errors.Is(err, ErrNoDocument) {
		t.Errorf("OpenDocument(nil) = %v", err)
	}
	if _, err := r.OpenInNewTab(nil); !errors.Is(err, ErrNoDocument) {
		t.Errorf("OpenInNewTab(nil) = %v", err)
	}
}

// Split/Close Tests

func TestSplitThenCloseScenario(t *testing.T) {
	r, _, _, _ := newRegistry(LastViewRefuse)
	original := mustOpen(t, r, docA)
	tab := r.Tabs()[0]
	before := tab.Snapshot(nil)

	leaf2, err := r.SplitCurrent(layout.Horizontal)
	if err != nil {
		t.Fatal(err)
	}
	if tab.LeafCount() != 2 {
		t.Fatalf("leaf count = %d", tab.LeafCount())
	}
	if diff := cmp.Diff([]float64{0.5, 0.5}, tab.Root().Sizes()); diff != "" {
		t.Errorf("sizes (-want +got):\n%s", diff)
	}
	if r.CurrentView() != leaf2 || leaf2 == original {
		t.Error("split copy should become current")
	}
	if leaf2.Document().ID() != docA.ID() {
		t.Error("both halves show the same document")
	}

	if err := r.CloseView(leaf2); err != nil {
		t.Fatal(err)
	}
	if tab.LeafCount() != 1 || r.CurrentView() != original {
		t.Error("close should restore the single original leaf")
	}
	if diff := cmp.Diff(before, tab.Snapshot(nil)); diff != "" {
		t.Errorf("layout not restored:\n%s", diff)
	}
}

func TestSplitIndependentState(t *testing.T) {
	r, _, _, _ := newRegistry(LastViewRefuse)
	a := mustOpen(t, r, docA)
	a.SetCaret(nav.Position{Line: 10})
	b, _ := r.SplitCurrent(layout.Vertical)
	b.SetCaret(nav.Position{Line: 99})
	if a.State().Caret.Line != 10 {
		t.Error("split halves must keep independent state")
	}
}

func TestSplitWithoutView(t *testing.T) {
	r, _, _, _ := newRegistry(LastViewRefuse)
	if _, err := r.SplitCurrent(layout.Vertical); !errors.Is(err, ErrNoCurrentView) {
		t.Errorf("SplitCurrent on empty = %v", err)
	}
}

func TestCloseLastLeafRemovesTab(t *testing.T) {
	r, _, _, _ := newRegistry(LastViewRefuse)
	mustOpen(t, r, docA)
	b, _ := r.OpenInNewTab(docB)
	c, _ := r.OpenInNewTab(docC)
	_ = r.SelectTab(1)

	if err := r.CloseView(b); err != nil {
		t.Fatal(err)
	}
	if r.TabCount() != 2 {
		t.Fatalf("tabs = %d", r.TabCount())
	}
	if r.CurrentView() != c || r.CurrentTabIndex() != 1 {
		t.Errorf("tab sliding into place should become current, got index %d", r.CurrentTabIndex())
	}
}

func TestCloseViewNotFound(t *testing.T) {
	r, _, _, _ := newRegistry(LastViewRefuse)
	mustOpen(t, r, docA)
	stray := layout.NewViewSlot(docB)
	err := r.CloseView(stray)
	if !errors.Is(err, ErrViewNotFound) {
		t.Errorf("CloseView(stray) = %v", err)
	}
	var oe *OperationError
	if !errors.As(err, &oe) || oe.Op != "close view" {
		t.Errorf("expected OperationError, got %T", err)
	}
}

func TestLastViewPolicy(t *testing.T) {
	tests := []struct {
		name     string
		policy   LastViewPolicy
		wantErr  error
		wantDoc  document.ID
		wantDocs int
		wantSame bool
	}{
		{"refuse", LastViewRefuse, ErrIllegalClose, docA.ID(), 1, true},
		{"placeholder", LastViewPlaceholder, nil, "untitled://1", 2, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, _, _, _ := newRegistry(tt.policy)
			a := mustOpen(t, r, docA)

			err := r.CloseView(a)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("CloseView(last) = %v, want %v", err, tt.wantErr)
			}
			if r.TabCount() != 1 || r.ViewCount() != 1 {
				t.Errorf("tabs=%d views=%d", r.TabCount(), r.ViewCount())
			}
			cur := r.CurrentView()
			if cur.Document().ID() != tt.wantDoc {
				t.Errorf("current document = %s, want %s", cur.Document().ID(), tt.wantDoc)
			}
			if (cur == a) != tt.wantSame {
				t.Errorf("slot identity kept = %v, want %v", cur == a, tt.wantSame)
			}
			if len(r.Documents()) != tt.wantDocs {
				t.Errorf("documents = %d, want %d", len(r.Documents()), tt.wantDocs)
			}

			// The registry stays usable after either outcome.
			if _, err := r.OpenInNewTab(docB); err != nil {
				t.Errorf("registry unusable after close: %v", err)
			}
		})
	}
}

func TestPlaceholderPolicyWithoutFactory(t *testing.T) {
	r := New(Options{Policy: Policy{LastView: LastViewPlaceholder}})
	a := mustOpen(t, r, docA)
	if err := r.CloseView(a); !errors.Is(err, ErrIllegalClose) {
		t.Errorf("CloseView without factory = %v", err)
	}
}

func TestCloseCurrentViewUnlessLast(t *testing.T) {
	r, _, _, _ := newRegistry(LastViewPlaceholder)
	mustOpen(t, r, docA)
	if r.CloseCurrentViewUnlessLast() {
		t.Error("must not close the only view")
	}
	_, _ = r.SplitCurrent(layout.Vertical)
	if !r.CloseCurrentViewUnlessLast() || r.ViewCount() != 1 {
		t.Error("should close one of two views")
	}
}

func TestCloseOtherViews(t *testing.T) {
	r, _, _, _ := newRegistry(LastViewRefuse)
	mustOpen(t, r, docA)
	_, _ = r.SplitCurrent(layout.Vertical)
	_, _ = r.SplitCurrent(layout.Horizontal)
	keep := r.CurrentView()
	_, _ = r.OpenInNewTab(docB)
	_ = r.SetCurrentView(keep)

	if err := r.CloseOtherViews(); err != nil {
		t.Fatal(err)
	}
	if r.Tabs()[0].LeafCount() != 1 || r.CurrentView() != keep {
		t.Error("only the current view should remain in its tab")
	}
	if r.TabCount() != 2 {
		t.Error("other tabs are untouched")
	}
}

// CloseDocument Tests

func TestCloseDocumentFanOut(t *testing.T) {
	r, _, _, idx := newRegistry(LastViewRefuse)
	mustOpen(t, r, docA)
	_, _ = r.SplitCurrent(layout.Vertical) // tab 0: A | A
	_, _ = r.OpenInNewTab(docA)            // tab 1: A
	_, _ = r.SplitCurrent(layout.Vertical) // tab 1: A | A
	_ = mustOpen(t, r, docB)               // tab 1: A | B

	if got := len(r.ViewsFor(docA.ID())); got != 3 {
		t.Fatalf("setup: %d views of A, want 3", got)
	}

	if err := r.CloseDocument(docA); err != nil {
		t.Fatal(err)
	}
	if got := len(r.ViewsFor(docA.ID())); got != 0 {
		t.Errorf("%d views of A remain", got)
	}
	if _, ok := r.DocumentForID(docA.ID()); ok {
		t.Error("A should be unregistered")
	}
	if r.TabCount() != 1 || r.ViewCount() != 1 {
		t.Errorf("tabs=%d views=%d", r.TabCount(), r.ViewCount())
	}
	if r.CurrentView().Document().ID() != docB.ID() {
		t.Error("B should be current")
	}
	if diff := cmp.Diff([]document.ID{docA.ID()}, idx.invalidated); diff != "" {
		t.Errorf("invalidations (-want +got):\n%s", diff)
	}
}

func TestCloseDocumentUnregisteredIsNoop(t *testing.T) {
	r, _, _, idx := newRegistry(LastViewRefuse)
	mustOpen(t, r, docA)
	before := r.Snapshot()
	if err := r.CloseDocument(docB); err != nil {
		t.Fatal(err)
	}
	if err := r.CloseDocument(nil); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(before, r.Snapshot()); diff != "" {
		t.Errorf("no-op close changed state:\n%s", diff)
	}
	if len(idx.invalidated) != 0 {
		t.Error("no invalidation expected")
	}
}

func TestCloseDocumentLastView(t *testing.T) {
	tests := []struct {
		name        string
		policy      LastViewPolicy
		factory     bool
		wantErr     error
		wantDoc     document.ID
		wantPlaces  int
		wantOpen    bool
		wantInvalid int
	}{
		{"refuse", LastViewRefuse, true, ErrIllegalClose, docA.ID(), 0, true, 0},
		{"placeholder", LastViewPlaceholder, true, nil, "untitled://1", 1, false, 1},
		{"placeholder without factory", LastViewPlaceholder, false, ErrIllegalClose, docA.ID(), 0, true, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ph := &fakePlaceholders{}
			idx := &fakeIndex{}
			opts := Options{Policy: Policy{LastView: tt.policy}, Symbols: idx, Logger: logging.Nop()}
			if tt.factory {
				opts.Placeholder = ph
			}
			r := New(opts)
			mustOpen(t, r, docA)
			_, _ = r.SplitCurrent(layout.Vertical)
			_, _ = r.OpenInNewTab(docB)
			_, _ = r.OpenInNewTab(docA)
			_ = r.CloseView(r.Tabs()[1].Leaves()[0]) // A | A, then A

			err := r.CloseDocument(docA)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("CloseDocument = %v, want %v", err, tt.wantErr)
			}
			if r.ViewCount() != 1 || r.TabCount() != 1 {
				t.Errorf("tabs=%d views=%d", r.TabCount(), r.ViewCount())
			}
			if got := r.CurrentView().Document().ID(); got != tt.wantDoc {
				t.Errorf("current document = %s, want %s", got, tt.wantDoc)
			}
			if ph.n != tt.wantPlaces {
				t.Errorf("placeholders created = %d, want %d", ph.n, tt.wantPlaces)
			}
			if _, ok := r.DocumentForID(docA.ID()); ok != tt.wantOpen {
				t.Errorf("A registered = %v, want %v", ok, tt.wantOpen)
			}
			if len(idx.invalidated) != tt.wantInvalid {
				t.Errorf("invalidations = %v", idx.invalidated)
			}
		})
	}
}

func TestCloseDocumentRefusedCanBeRetried(t *testing.T) {
	r, _, _, _ := newRegistry(LastViewRefuse)
	a := mustOpen(t, r, docA)
	if err := r.CloseDocument(docA); !errors.Is(err, ErrIllegalClose) {
		t.Fatalf("CloseDocument = %v", err)
	}
	if err := r.CloseDocument(docA); !errors.Is(err, ErrIllegalClose) {
		t.Errorf("second CloseDocument = %v", err)
	}
	if r.CurrentView() != a {
		t.Error("the final view is left in place")
	}

	// Once another view exists the document can be closed.
	_, _ = r.OpenInNewTab(docB)
	if err := r.CloseDocument(docA); err != nil {
		t.Fatal(err)
	}
	if _, ok := r.DocumentForID(docA.ID()); ok || len(r.ViewsFor(docA.ID())) != 0 {
		t.Error("A should be gone")
	}
}

func TestPlaceholderReleasedWhenReplaced(t *testing.T) {
	r, _, _, _ := newRegistry(LastViewPlaceholder)
	a := mustOpen(t, r, docA)
	_ = r.CloseView(a)
	if _, ok := r.DocumentForID("untitled://1"); !ok {
		t.Fatal("placeholder should be registered while shown")
	}

	mustOpen(t, r, docB)
	if _, ok := r.DocumentForID("untitled://1"); ok {
		t.Error("placeholder should be unregistered once no view shows it")
	}
	if diff := cmp.Diff([]document.ID{docA.ID(), docB.ID()}, docIDs(r.Documents())); diff != "" {
		t.Errorf("documents (-want +got):\n%s", diff)
	}

	// Closing a placeholder's last view releases it for the next one.
	_ = r.CloseDocument(docA)
	_ = r.CloseView(r.CurrentView())
	_ = r.CloseView(r.CurrentView())
	if diff := cmp.Diff([]document.ID{docB.ID(), "untitled://3"}, docIDs(r.Documents())); diff != "" {
		t.Errorf("documents after closing placeholders (-want +got):\n%s", diff)
	}
}

func TestOpenDocumentBindsRegisteredHandle(t *testing.T) {
	r, _, _, _ := newRegistry(LastViewRefuse)
	first := document.Ref{Resource: "/src/a.go", Title: "first"}
	second := document.Ref{Resource: "/src/a.go", Title: "second"}
	mustOpen(t, r, first)
	mustOpen(t, r, docB)

	s := mustOpen(t, r, second)
	if got := s.Document().Name(); got != "first" {
		t.Errorf("OpenDocument bound %q, want the registered handle", got)
	}
	s, _ = r.OpenInNewTab(second)
	if got := s.Document().Name(); got != "first" {
		t.Errorf("OpenInNewTab bound %q, want the registered handle", got)
	}
	if len(r.Documents()) != 2 {
		t.Errorf("documents = %d", len(r.Documents()))
	}
}

func docIDs(docs []document.Document) []document.ID {
	out := make([]document.ID, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.ID())
	}
	return out
}

// Current view & tab Tests

func TestSetCurrentView(t *testing.T) {
	r, _, _, _ := newRegistry(LastViewRefuse)
	a := mustOpen(t, r, docA)
	_, _ = r.OpenInNewTab(docB)

	if err := r.SetCurrentView(a); err != nil {
		t.Fatal(err)
	}
	if r.CurrentTabIndex() != 0 {
		t.Error("setting a view in another tab switches tabs")
	}
	if err := r.SetCurrentView(layout.NewViewSlot(docC)); !errors.Is(err, ErrViewNotFound) {
		t.Errorf("SetCurrentView(stray) = %v", err)
	}
	if err := r.SetCurrentView(nil); !errors.Is(err, ErrViewNotFound) {
		t.Errorf("SetCurrentView(nil) = %v", err)
	}
}

func TestSelectTab(t *testing.T) {
	r, _, _, _ := newRegistry(LastViewRefuse)
	mustOpen(t, r, docA)
	right, _ := r.SplitCurrent(layout.Vertical)
	_, _ = r.OpenInNewTab(docB)

	for _, idx := range []int{-1, 2, 100} {
		if err := r.SelectTab(idx); !errors.Is(err, ErrIndexOutOfRange) {
			t.Errorf("SelectTab(%d) = %v", idx, err)
		}
	}
	if err := r.SelectTab(0); err != nil {
		t.Fatal(err)
	}
	if r.CurrentView() != right {
		t.Error("SelectTab should restore the tab's most recently active view")
	}
}

func TestSelectNextPreviousTabWraps(t *testing.T) {
	r, _, _, _ := newRegistry(LastViewRefuse)
	if err := r.SelectNextTab(); !errors.Is(err, ErrIndexOutOfRange) {
		t.Errorf("SelectNextTab on empty = %v", err)
	}
	mustOpen(t, r, docA)
	_, _ = r.OpenInNewTab(docB)
	_, _ = r.OpenInNewTab(docC)

	_ = r.SelectNextTab()
	if r.CurrentTabIndex() != 0 {
		t.Errorf("next from last = %d, want 0", r.CurrentTabIndex())
	}
	_ = r.SelectPreviousTab()
	if r.CurrentTabIndex() != 2 {
		t.Errorf("previous from first = %d, want 2", r.CurrentTabIndex())
	}
}

func TestMoveCurrentViewToNewTab(t *testing.T) {
	r, _, _, _ := newRegistry(LastViewRefuse)
	a := mustOpen(t, r, docA)
	if _, err := r.MoveCurrentViewToNewTab(); !errors.Is(err, ErrCannotMoveLastView) {
		t.Errorf("move single leaf = %v", err)
	}

	moved, _ := r.SplitCurrent(layout.Vertical)
	got, err := r.MoveCurrentViewToNewTab()
	if err != nil {
		t.Fatal(err)
	}
	if got != moved || r.TabCount() != 2 || r.CurrentTabIndex() != 1 {
		t.Errorf("tabs=%d current=%d", r.TabCount(), r.CurrentTabIndex())
	}
	origin := r.Tabs()[0]
	if origin.LeafCount() != 1 || !origin.Root().IsLeaf() || origin.Root().Slot() != a {
		t.Error("origin tab should collapse to the remaining view")
	}
}

func TestNormalizeSplitSizes(t *testing.T) {
	r, _, _, _ := newRegistry(LastViewRefuse)
	mustOpen(t, r, docA)
	_, _ = r.SplitCurrent(layout.Vertical)
	_ = r.ResizeCurrent(0.3)
	r.NormalizeSplitSizes()
	tab := r.Tabs()[0]
	if diff := cmp.Diff([]float64{0.5, 0.5}, tab.Root().Sizes()); diff != "" {
		t.Errorf("sizes (-want +got):\n%s", diff)
	}
	if !tab.ProportionsValid() {
		t.Error("proportions invalid after normalize")
	}
}

// Navigation Tests

func TestGotoBackForward(t *testing.T) {
	r, op, _, _ := newRegistry(LastViewRefuse)
	ctx := context.Background()
	a := mustOpen(t, r, docA)
	a.SetCaret(nav.Position{Line: 5})

	target := nav.NewLocation("/src/other.go", 20, 4)
	slot, err := r.GotoLocation(ctx, target)
	if err != nil {
		t.Fatal(err)
	}
	if slot.Location() != target {
		t.Errorf("caret at %v, want %v", slot.Location(), target)
	}
	if diff := cmp.Diff([]document.ID{"/src/other.go"}, op.opened); diff != "" {
		t.Errorf("opener calls:\n%s", diff)
	}
	if !r.JumpList().CanGoBack() || r.JumpList().CanGoForward() {
		t.Error("expected back only")
	}

	back, ok, err := r.JumpBack(ctx)
	if err != nil || !ok {
		t.Fatalf("JumpBack = %v, %v", ok, err)
	}
	if back.Location() != nav.NewLocation(docA.ID(), 5, 0) {
		t.Errorf("back to %v", back.Location())
	}
	if _, ok, _ := r.JumpBack(ctx); ok {
		t.Error("expected none at the head")
	}

	fwd, ok, _ := r.JumpForward(ctx)
	if !ok || fwd.Location() != target {
		t.Errorf("forward to %v", fwd.Location())
	}
	if _, ok, _ := r.JumpForward(ctx); ok {
		t.Error("expected none at the tail")
	}
	if len(op.opened) != 1 {
		t.Error("registered documents must not be reopened")
	}
}

func TestGotoOpenerFailure(t *testing.T) {
	r, op, _, _ := newRegistry(LastViewRefuse)
	mustOpen(t, r, docA)
	op.fail["/missing"] = errors.New("no such file")
	if _, err := r.GotoLocation(context.Background(), nav.NewLocation("/missing", 0, 0)); err == nil {
		t.Fatal("expected error")
	}
	if r.JumpList().Len() != 0 {
		t.Error("failed navigation must not record history")
	}
	if _, err := r.GotoLocation(context.Background(), nav.Location{}); !errors.Is(err, ErrNoDocument) {
		t.Errorf("goto zero location = %v", err)
	}
}

func TestTagPushPop(t *testing.T) {
	r, _, _, _ := newRegistry(LastViewRefuse)
	ctx := context.Background()
	a := mustOpen(t, r, docA)
	a.SetCaret(nav.Position{Line: 3, Column: 1})

	def := nav.NewLocation(docB.ID(), 40, 0)
	if _, err := r.PushTag(ctx, def); err != nil {
		t.Fatal(err)
	}
	if r.TagStack().Len() != 1 {
		t.Fatalf("tag depth = %d", r.TagStack().Len())
	}
	if r.CurrentView().Location() != def {
		t.Errorf("at %v", r.CurrentView().Location())
	}

	slot, ok, err := r.PopTag(ctx)
	if err != nil || !ok {
		t.Fatalf("PopTag = %v, %v", ok, err)
	}
	if slot.Location() != nav.NewLocation(docA.ID(), 3, 1) {
		t.Errorf("returned to %v", slot.Location())
	}
	if _, ok, _ := r.PopTag(ctx); ok {
		t.Error("expected none on empty stack")
	}
}

func TestPushTagFailureKeepsStack(t *testing.T) {
	r := New(Options{Logger: logging.Nop()})
	mustOpen(t, r, docA)
	if _, err := r.PushTag(context.Background(), nav.NewLocation("/nowhere", 1, 1)); err == nil {
		t.Fatal("expected error without opener")
	}
	if r.TagStack().Len() != 0 {
		t.Error("failed push should not leave a tag behind")
	}
}

func TestSwitchToLastDocument(t *testing.T) {
	r, _, _, _ := newRegistry(LastViewRefuse)
	if _, err := r.SwitchToLastDocument(); !errors.Is(err, ErrNoDocument) {
		t.Errorf("SwitchToLastDocument on empty = %v", err)
	}
	mustOpen(t, r, docA)
	_, _ = r.OpenInNewTab(docB)

	s, err := r.SwitchToLastDocument()
	if err != nil {
		t.Fatal(err)
	}
	if s.Document().ID() != docA.ID() || r.CurrentTabIndex() != 0 {
		t.Error("should switch to A's existing view in tab 0")
	}
	s, _ = r.SwitchToLastDocument()
	if s.Document().ID() != docB.ID() {
		t.Error("alternate switching should toggle")
	}
}

func TestFilteredDocuments(t *testing.T) {
	r, _, _, _ := newRegistry(LastViewRefuse)
	mustOpen(t, r, docA)
	mustOpen(t, r, docB)
	mustOpen(t, r, document.NewRef("/docs/README.md"))

	got := r.FilteredDocuments("READ")
	if len(got) != 1 || got[0].Name() != "README.md" {
		t.Errorf("filtered = %v", got)
	}
	if len(r.Documents()) != 3 {
		t.Error("filtering must not change the source list")
	}
}

func TestSymbolsOfCurrentDocument(t *testing.T) {
	r, _, _, idx := newRegistry(LastViewRefuse)
	ctx := context.Background()
	if _, err := r.Symbols(ctx, ""); !errors.Is(err, ErrNoCurrentView) {
		t.Errorf("Symbols on empty = %v", err)
	}
	idx.entries = []symbols.Entry{
		{Name: "alpha", Line: 1},
		{Name: "beta", Line: 10},
	}
	mustOpen(t, r, docA)

	got, err := r.Symbols(ctx, "be")
	if err != nil || len(got) != 1 || got[0].Name != "beta" {
		t.Errorf("Symbols = %v, %v", got, err)
	}
	e, ok, _ := r.SymbolAt(ctx, 5)
	if !ok || e.Name != "alpha" {
		t.Errorf("SymbolAt(5) = %v, %v", e, ok)
	}

	slot, err := r.GotoSymbol(ctx, got[0])
	if err != nil || slot.Location().Line != 10 {
		t.Errorf("GotoSymbol = %v, %v", slot, err)
	}
}

// Listener & Snapshot Tests

func TestListenerNotifications(t *testing.T) {
	r, _, _, _ := newRegistry(LastViewRefuse)
	var tabs, views int
	var lastBack, lastFwd bool
	r.AddListener(ListenerFuncs{
		OnTabs:        func() { tabs++ },
		OnCurrentView: func(*layout.ViewSlot) { views++ },
		OnJumpList:    func(b, f bool) { lastBack, lastFwd = b, f },
	})

	mustOpen(t, r, docA)
	_, _ = r.SplitCurrent(layout.Vertical)
	if tabs != 2 || views != 2 {
		t.Errorf("tabs=%d views=%d", tabs, views)
	}

	_, _ = r.GotoLocation(context.Background(), nav.NewLocation(docA.ID(), 9, 0))
	if !lastBack || lastFwd {
		t.Errorf("jump list state back=%v fwd=%v", lastBack, lastFwd)
	}
}

func TestSnapshot(t *testing.T) {
	r, _, _, _ := newRegistry(LastViewRefuse)
	a := mustOpen(t, r, docA)
	_, _ = r.OpenInNewTab(docB)
	_ = r.SetCurrentView(a)

	s := r.Snapshot()
	if len(s.Tabs) != 2 || s.CurrentTab != 0 || s.CurrentDocument != docA.ID() {
		t.Errorf("snapshot = %+v", s)
	}
	if s.Tabs[1].Title != "b.go" || s.Tabs[0].Views != 1 {
		t.Errorf("tab snapshots = %+v", s.Tabs)
	}
	if !s.Tabs[0].Layout.Active || s.Tabs[1].Layout.Active {
		t.Error("only the current view is marked active")
	}
	if diff := cmp.Diff([]document.ID{docA.ID(), docB.ID()}, s.Documents); diff != "" {
		t.Errorf("documents (-want +got):\n%s", diff)
	}
}

func TestParseLastViewPolicy(t *testing.T) {
	if p, ok := ParseLastViewPolicy("placeholder"); !ok || p != LastViewPlaceholder {
		t.Error("placeholder should parse")
	}
	if p, ok := ParseLastViewPolicy(""); !ok || p != LastViewRefuse {
		t.Error("empty should default to refuse")
	}
	if _, ok := ParseLastViewPolicy("maybe"); ok {
		t.Error("unknown policy should not parse")
	}
	if LastViewPlaceholder.String() != "placeholder" {
		t.Error("unexpected policy name")
	}
}

func TestOperationError(t *testing.T) {
	err := NewOperationError("select tab", "7", ErrIndexOutOfRange)
	if err.Error() != "select tab 7: index out of range" {
		t.Errorf("Error() = %q", err.Error())
	}
	if !errors.Is(err, ErrIndexOutOfRange) || !IsStructural(err) {
		t.Error("errors.Is should see the sentinel")
	}
	if IsStructural(ErrNoCurrentView) {
		t.Error("ErrNoCurrentView is not structural")
	}
	var nilErr *OperationError
	if nilErr.Error() != "" || nilErr.Unwrap() != nil {
		t.Error("nil receiver should be safe")
	}
}
