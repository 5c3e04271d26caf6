package dom

import (
	"strings"
)

// Default viewport dimensions used when none has been set.
const (
	DefaultViewportWidth  = 375
	DefaultViewportHeight = 667
)

// Document is the root of a DOM tree. It also carries the viewport size
// that block-level geometry falls back to.
type Document Node

// NewDocument creates an empty document with <html>, <head> and <body>.
func NewDocument() *Document {
	doc := newEmptyDocument()
	html := doc.CreateElement("html")
	doc.AsNode().AppendChild(html.AsNode())
	html.AppendElement(doc.CreateElement("head"))
	html.AppendElement(doc.CreateElement("body"))
	return doc
}

func newEmptyDocument() *Document {
	n := &Node{
		nodeType: DocumentNode,
		nodeName: "#document",
		documentData: &documentData{
			viewportWidth:  DefaultViewportWidth,
			viewportHeight: DefaultViewportHeight,
			url:            "about:blank",
		},
	}
	doc := (*Document)(n)
	n.ownerDoc = doc
	return doc
}

// AsNode returns the underlying Node.
func (d *Document) AsNode() *Node {
	return (*Node)(d)
}

// Viewport returns the viewport width and height in CSS pixels.
func (d *Document) Viewport() (width, height float64) {
	return d.documentData.viewportWidth, d.documentData.viewportHeight
}

// SetViewport sets the viewport size that unsized block elements fill.
func (d *Document) SetViewport(width, height float64) {
	d.documentData.viewportWidth = width
	d.documentData.viewportHeight = height
}

// URL returns the document's URL.
func (d *Document) URL() string {
	return d.documentData.url
}

// SetURL sets the document's URL, used as the base for relative links.
func (d *Document) SetURL(url string) {
	d.documentData.url = url
}

// CreateElement creates a new element with the given tag name.
func (d *Document) CreateElement(tag string) *Element {
	tag = strings.ToLower(tag)
	n := &Node{
		nodeType:    ElementNode,
		nodeName:    tag,
		ownerDoc:    d,
		elementData: &elementData{localName: tag},
	}
	return (*Element)(n)
}

// CreateTextNode creates a new text node.
func (d *Document) CreateTextNode(text string) *Node {
	return &Node{
		nodeType: TextNode,
		nodeName: "#text",
		data:     text,
		ownerDoc: d,
	}
}

// CreateComment creates a new comment node.
func (d *Document) CreateComment(text string) *Node {
	return &Node{
		nodeType: CommentNode,
		nodeName: "#comment",
		data:     text,
		ownerDoc: d,
	}
}

// DocumentElement returns the root <html> element, or nil.
func (d *Document) DocumentElement() *Element {
	for c := d.firstChild; c != nil; c = c.nextSibling {
		if c.nodeType == ElementNode {
			return (*Element)(c)
		}
	}
	return nil
}

// Body returns the <body> element, or nil.
func (d *Document) Body() *Element {
	return d.childOfRoot("body")
}

// Head returns the <head> element, or nil.
func (d *Document) Head() *Element {
	return d.childOfRoot("head")
}

func (d *Document) childOfRoot(tag string) *Element {
	root := d.DocumentElement()
	if root == nil {
		return nil
	}
	for _, c := range root.Children() {
		if c.Is(tag) {
			return c
		}
	}
	return nil
}

// QuerySelector returns the first element in the document matching the
// selector, or nil.
func (d *Document) QuerySelector(selector string) *Element {
	return querySelector(d.AsNode(), selector)
}

// QuerySelectorAll returns every element in the document matching the
// selector, in document order.
func (d *Document) QuerySelectorAll(selector string) []*Element {
	return querySelectorAll(d.AsNode(), selector)
}

// GetElementByID returns the first element whose id attribute equals id.
func (d *Document) GetElementByID(id string) *Element {
	var found *Element
	walkElements(d.AsNode(), func(e *Element) bool {
		if e.GetAttribute("id") == id {
			found = e
			return false
		}
		return true
	})
	return found
}

// AddEventListener registers a listener on the document node.
func (d *Document) AddEventListener(eventType string, fn Listener, opts ...ListenerOptions) *Subscription {
	return d.AsNode().AddEventListener(eventType, fn, opts...)
}

// DispatchEvent dispatches ev with the document as target.
func (d *Document) DispatchEvent(ev *Event) bool {
	return d.AsNode().DispatchEvent(ev)
}

// walkElements visits every element below root in document order until fn
// returns false.
func walkElements(root *Node, fn func(*Element) bool) bool {
	for c := root.firstChild; c != nil; c = c.nextSibling {
		if c.nodeType != ElementNode {
			continue
		}
		if !fn((*Element)(c)) {
			return false
		}
		if !walkElements(c, fn) {
			return false
		}
	}
	return true
}
