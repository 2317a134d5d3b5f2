package index

import (
	"testing"

	"github.com/arxml-community/arxml-dev-tools/internal/arxml"
)

const fixtureARXML = `<AUTOSAR>
  <AR-PACKAGES>
    <AR-PACKAGE UUID="aaaaaaaa-bbbb-cccc-dddd-eeeeeeeeeeee">
      <SHORT-NAME>PkgA</SHORT-NAME>
      <ELEMENTS>
        <ELEMENT>
          <SHORT-NAME>Elem1</SHORT-NAME>
          <REF DEST="DEST">/PkgA/Elem2</REF>
        </ELEMENT>
        <ELEMENT>
          <SHORT-NAME>Elem2</SHORT-NAME>
        </ELEMENT>
      </ELEMENTS>
    </AR-PACKAGE>
    <AR-PACKAGE>
      <SHORT-NAME>PkgB</SHORT-NAME>
      <ELEMENTS>
        <CONTAINER>
          <SHORT-NAME>Cont</SHORT-NAME>
          <PARAMETERS>
            <PARAMETER>
              <SHORT-NAME>Param</SHORT-NAME>
              <VALUE>42</VALUE>
            </PARAMETER>
          </PARAMETERS>
        </CONTAINER>
      </ELEMENTS>
    </AR-PACKAGE>
  </AR-PACKAGES>
</AUTOSAR>`

func loadFixture(t *testing.T) (*Index, *arxml.Document) {
	t.Helper()
	doc, err := arxml.ParseString(fixtureARXML, "fixture.arxml")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	ix := New()
	if n := ix.IndexDocument(doc); n != 6 {
		t.Fatalf("indexed %d elements, want 6", n)
	}
	return ix, doc
}

func TestIndexDocument(t *testing.T) {
	ix, _ := loadFixture(t)

	for _, path := range []string{"/PkgA", "/PkgA/Elem1", "/PkgA/Elem2", "/PkgB", "/PkgB/Cont", "/PkgB/Cont/Param"} {
		if ix.ByPath(path) == nil {
			t.Errorf("missing record for %s", path)
		}
	}

	rec := ix.ByPath("/PkgB/Cont/Param")
	if rec.Type != "PARAMETER" {
		t.Errorf("Type = %q, want PARAMETER", rec.Type)
	}
	if rec.ParentPath != "/PkgB/Cont" {
		t.Errorf("ParentPath = %q", rec.ParentPath)
	}

	if got := ix.ByUUID("aaaaaaaa-bbbb-cccc-dddd-eeeeeeeeeeee"); got == nil || got.Path != "/PkgA" {
		t.Errorf("ByUUID lookup failed: %+v", got)
	}
	if got := len(ix.ByType("AR-PACKAGE")); got != 2 {
		t.Errorf("ByType(AR-PACKAGE) = %d records, want 2", got)
	}
	if got := len(ix.Children("/PkgA")); got != 2 {
		t.Errorf("Children(/PkgA) = %d, want 2", got)
	}
	if got := len(ix.Descendants("/PkgB")); got != 2 {
		t.Errorf("Descendants(/PkgB) = %d, want 2", got)
	}
	if ix.ByPath("/Nope") != nil || ix.ByUUID("nope") != nil {
		t.Error("unknown keys must yield nil")
	}
}

func TestRemoveSubtreeCascades(t *testing.T) {
	ix, _ := loadFixture(t)

	if !ix.RemoveSubtree("/PkgB") {
		t.Fatal("RemoveSubtree failed")
	}
	for _, path := range []string{"/PkgB", "/PkgB/Cont", "/PkgB/Cont/Param"} {
		if ix.ByPath(path) != nil {
			t.Errorf("record %s should be gone", path)
		}
	}
	if ix.ByPath("/PkgA") == nil {
		t.Error("sibling subtree must survive")
	}
	if len(ix.ByType("PARAMETER")) != 0 {
		t.Error("secondary indexes must drop cascaded records")
	}
}

func TestRemoveElementIsNotRecursive(t *testing.T) {
	ix, _ := loadFixture(t)

	if !ix.RemoveElement("/PkgB/Cont") {
		t.Fatal("RemoveElement failed")
	}
	if ix.ByPath("/PkgB/Cont/Param") == nil {
		t.Error("RemoveElement must not cascade to descendants")
	}
	if ix.RemoveElement("/PkgB/Cont") {
		t.Error("second removal should report false")
	}
}

func TestCreateElement(t *testing.T) {
	ix, doc := loadFixture(t)

	path, ok := ix.CreateElement("/PkgA", "ELEMENT", "Elem3", nil)
	if !ok || path != "/PkgA/Elem3" {
		t.Fatalf("CreateElement = (%q, %v)", path, ok)
	}
	rec := ix.ByPath("/PkgA/Elem3")
	if rec == nil {
		t.Fatal("new element not indexed")
	}
	if rec.UUID == "" {
		t.Error("new element should carry a generated UUID")
	}
	if ix.ByUUID(rec.UUID) != rec {
		t.Error("generated UUID not indexed")
	}
	if doc.ShortName(rec.Node) != "Elem3" {
		t.Error("SHORT-NAME child not created")
	}

	if _, ok := ix.CreateElement("/Nope", "ELEMENT", "X", nil); ok {
		t.Error("creating under an unknown parent should fail")
	}
}

func TestDeleteElementDetachesNode(t *testing.T) {
	ix, doc := loadFixture(t)

	rec := ix.ByPath("/PkgA/Elem1")
	parent := doc.Node(rec.Node).Parent

	if !ix.DeleteElement("/PkgA/Elem1") {
		t.Fatal("DeleteElement failed")
	}
	if ix.ByPath("/PkgA/Elem1") != nil {
		t.Error("record should be gone")
	}
	for _, c := range doc.Node(parent).Children {
		if c == rec.Node {
			t.Error("node should be detached from its parent")
		}
	}
}

func TestRenameElementRecomputesPaths(t *testing.T) {
	ix, doc := loadFixture(t)

	newPath, ok := ix.RenameElement("/PkgB", "PkgRenamed")
	if !ok || newPath != "/PkgRenamed" {
		t.Fatalf("RenameElement = (%q, %v)", newPath, ok)
	}

	if ix.ByPath("/PkgB") != nil {
		t.Error("old path should be gone")
	}
	for _, path := range []string{"/PkgRenamed", "/PkgRenamed/Cont", "/PkgRenamed/Cont/Param"} {
		if ix.ByPath(path) == nil {
			t.Errorf("missing record for %s after rename", path)
		}
	}
	if got := ix.ByPath("/PkgRenamed/Cont/Param").ParentPath; got != "/PkgRenamed/Cont" {
		t.Errorf("descendant ParentPath = %q", got)
	}
	if got := doc.ShortName(ix.ByPath("/PkgRenamed").Node); got != "PkgRenamed" {
		t.Errorf("SHORT-NAME = %q", got)
	}

	if _, ok := ix.RenameElement("/PkgRenamed", "1bad"); ok {
		t.Error("invalid segment must be rejected")
	}
}

func TestGenerationAdvancesOnMutation(t *testing.T) {
	ix, doc := loadFixture(t)

	gen := ix.Generation()
	ix.SetElementText("/PkgB/Cont/Param", "x")
	if ix.Generation() == gen {
		t.Error("SetElementText must advance the generation")
	}

	gen = ix.Generation()
	ix.SetElementAttribute("/PkgA", "UUID", "ffffffff-0000-1111-2222-333333333333")
	if ix.Generation() == gen {
		t.Error("attribute updates must advance the generation")
	}
	if ix.ByUUID("ffffffff-0000-1111-2222-333333333333") == nil {
		t.Error("UUID change must be reindexed")
	}
	if ix.ByUUID("aaaaaaaa-bbbb-cccc-dddd-eeeeeeeeeeee") != nil {
		t.Error("old UUID entry must be dropped")
	}

	_ = doc
}

func TestSearchByName(t *testing.T) {
	ix, _ := loadFixture(t)

	if got := len(ix.SearchByName("elem", false)); got != 2 {
		t.Errorf("case-insensitive search found %d, want 2", got)
	}
	if got := len(ix.SearchByName("elem", true)); got != 0 {
		t.Errorf("case-sensitive search found %d, want 0", got)
	}
	if got := len(ix.SearchByName("Pkg", true)); got != 2 {
		t.Errorf("prefix search found %d, want 2", got)
	}
}

func TestStatistics(t *testing.T) {
	ix, _ := loadFixture(t)

	s := ix.Statistics()
	if s.TotalElements != 6 {
		t.Errorf("TotalElements = %d, want 6", s.TotalElements)
	}
	if s.ElementsWithUUID != 1 {
		t.Errorf("ElementsWithUUID = %d, want 1", s.ElementsWithUUID)
	}
	if s.Files != 1 {
		t.Errorf("Files = %d, want 1", s.Files)
	}
	if s.ReferenceEdges != 1 {
		t.Errorf("ReferenceEdges = %d, want 1", s.ReferenceEdges)
	}
}
