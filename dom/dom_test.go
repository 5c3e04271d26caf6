package dom

import (
	"errors"
	"strings"
	"testing"
)

func TestNewDocument(t *testing.T) {
	doc := NewDocument()
	if doc.AsNode().NodeType() != DocumentNode {
		t.Errorf("Expected DocumentNode, got %v", doc.AsNode().NodeType())
	}
	if doc.Body() == nil {
		t.Fatal("Expected a body element")
	}
	if doc.Head() == nil {
		t.Fatal("Expected a head element")
	}
	w, h := doc.Viewport()
	if w != DefaultViewportWidth || h != DefaultViewportHeight {
		t.Errorf("Expected default viewport, got %vx%v", w, h)
	}
}

func TestAppendAndRemoveChild(t *testing.T) {
	doc := NewDocument()
	parent := doc.CreateElement("ul")
	a := doc.CreateElement("li")
	b := doc.CreateElement("li")
	parent.AppendElement(a)
	parent.AppendElement(b)

	if got := len(parent.Children()); got != 2 {
		t.Fatalf("Expected 2 children, got %d", got)
	}
	if a.NextElementSibling() != b {
		t.Error("Expected b to follow a")
	}
	if _, err := parent.AsNode().RemoveChild(a.AsNode()); err != nil {
		t.Fatalf("RemoveChild failed: %v", err)
	}
	if parent.FirstElementChild() != b {
		t.Error("Expected b to be first after removal")
	}
	if _, err := parent.AsNode().RemoveChild(a.AsNode()); err == nil {
		t.Error("Expected error removing a node that is not a child")
	}
}

func TestInsertCycleRejected(t *testing.T) {
	doc := NewDocument()
	outer := doc.CreateElement("div")
	inner := outer.AppendElement(doc.CreateElement("div"))

	_, err := inner.AsNode().AppendChild(outer.AsNode())
	if err == nil {
		t.Fatal("Expected HierarchyRequestError")
	}
	if !errors.Is(err, HierarchyRequest) {
		t.Errorf("Expected HierarchyRequestError, got %v", err)
	}
	if errors.Is(err, NotFound) {
		t.Errorf("Expected only HierarchyRequestError to match, got %v", err)
	}
}

func TestWrapInnerAndUnwrap(t *testing.T) {
	doc, err := ParseHTMLString(`<div id="c"><p>one</p><p>two</p></div>`)
	if err != nil {
		t.Fatal(err)
	}
	c := doc.GetElementByID("c")
	wrapper := c.WrapInner(doc.CreateElement("section"))

	if len(c.Children()) != 1 || c.FirstElementChild() != wrapper {
		t.Fatalf("Expected a single wrapper child, got %s", c.InnerHTML())
	}
	if len(wrapper.Children()) != 2 {
		t.Errorf("Expected 2 wrapped children, got %d", len(wrapper.Children()))
	}

	wrapper.Unwrap()
	if got := c.InnerHTML(); got != "<p>one</p><p>two</p>" {
		t.Errorf("Expected original markup after unwrap, got %q", got)
	}
}

func TestCloneDeep(t *testing.T) {
	doc, _ := ParseHTMLString(`<div id="x" style="width: 10px"><img src="a.png"></div>`)
	orig := doc.GetElementByID("x")
	orig.On("click", func(*Event) {})

	clone := orig.Clone(true)
	if clone.GetAttribute("id") != "x" {
		t.Errorf("Expected id to be copied, got %q", clone.GetAttribute("id"))
	}
	if clone.QuerySelector("img") == nil {
		t.Error("Expected deep clone to copy children")
	}
	if clone.AsNode().HasEventListeners("click") {
		t.Error("Expected listeners not to be cloned")
	}
	clone.Style().SetProperty("width", "20px")
	if orig.Style().GetPropertyValue("width") != "10px" {
		t.Error("Expected clone style changes not to affect original")
	}
	if clone.ParentElement() != nil {
		t.Error("Expected clone to be detached")
	}
}

func TestParseAndRender(t *testing.T) {
	doc, err := ParseHTMLString(`<!DOCTYPE html><html><body><div data-ss-widget="carousel" data-ss-options="finite peek"><span>a</span></div></body></html>`)
	if err != nil {
		t.Fatal(err)
	}
	div := doc.QuerySelector("[data-ss-widget]")
	if div == nil {
		t.Fatal("Expected to find the widget root")
	}
	if div.GetAttribute("data-ss-options") != "finite peek" {
		t.Errorf("Expected options attribute, got %q", div.GetAttribute("data-ss-options"))
	}
	var sb strings.Builder
	if err := doc.Render(&sb); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(sb.String(), `<span>a</span>`) {
		t.Errorf("Expected rendered output to contain the span, got %s", sb.String())
	}
}

func TestAppendHTML(t *testing.T) {
	doc := NewDocument()
	body := doc.Body()
	elems, err := body.AppendHTML(`<div data-ss-component="dot"></div><div data-ss-component="dot"></div>`)
	if err != nil {
		t.Fatal(err)
	}
	if len(elems) != 2 {
		t.Fatalf("Expected 2 elements, got %d", len(elems))
	}
	if elems[0].OwnerDocument() != doc {
		t.Error("Expected parsed nodes to belong to the document")
	}
}

func TestTextContent(t *testing.T) {
	doc, _ := ParseHTMLString(`<p id="p">Hello <b>World</b></p>`)
	p := doc.GetElementByID("p")
	if got := p.TextContent(); got != "Hello World" {
		t.Errorf("Expected 'Hello World', got %q", got)
	}
	p.SetTextContent("bye")
	if got := p.InnerHTML(); got != "bye" {
		t.Errorf("Expected 'bye', got %q", got)
	}
}

func TestSetAttributeWithError(t *testing.T) {
	el := NewDocument().CreateElement("div")
	if err := el.SetAttributeWithError("bad name", "x"); err == nil {
		t.Error("Expected InvalidCharacterError for a name with a space")
	}
	if err := el.SetAttributeWithError("data-ok", "x"); err != nil {
		t.Errorf("Unexpected error: %v", err)
	}
	if !el.HasAttribute("DATA-OK") {
		t.Error("Expected attribute lookups to be case-insensitive")
	}
}
