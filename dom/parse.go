package dom

import (
	"bytes"
	"io"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// ParseHTML parses a full HTML document.
func ParseHTML(r io.Reader) (*Document, error) {
	netDoc, err := html.Parse(r)
	if err != nil {
		return nil, err
	}
	doc := newEmptyDocument()
	for c := netDoc.FirstChild; c != nil; c = c.NextSibling {
		if n := doc.convertNode(c); n != nil {
			doc.AsNode().AppendChild(n)
		}
	}
	return doc, nil
}

// ParseHTMLString parses a full HTML document from a string.
func ParseHTMLString(s string) (*Document, error) {
	return ParseHTML(strings.NewReader(s))
}

// ParseFragment parses markup in the context of the given element and
// returns the resulting top-level nodes, owned by the element's document
// but not yet attached.
func ParseFragment(markup string, context *Element) ([]*Node, error) {
	doc := context.OwnerDocument()
	contextNode := &html.Node{
		Type:     html.ElementNode,
		Data:     context.TagName(),
		DataAtom: atom.Lookup([]byte(context.TagName())),
	}
	netNodes, err := html.ParseFragment(strings.NewReader(markup), contextNode)
	if err != nil {
		return nil, err
	}
	var nodes []*Node
	for _, nn := range netNodes {
		if n := doc.convertNode(nn); n != nil {
			nodes = append(nodes, n)
		}
	}
	return nodes, nil
}

// SetInnerHTML replaces the element's children with parsed markup.
func (e *Element) SetInnerHTML(markup string) error {
	nodes, err := ParseFragment(markup, e)
	if err != nil {
		return err
	}
	e.Empty()
	return e.Append(nodes...)
}

// AppendHTML parses markup and appends the resulting nodes. It returns the
// element nodes that were appended.
func (e *Element) AppendHTML(markup string) ([]*Element, error) {
	nodes, err := ParseFragment(markup, e)
	if err != nil {
		return nil, err
	}
	if err := e.Append(nodes...); err != nil {
		return nil, err
	}
	var elems []*Element
	for _, n := range nodes {
		if el := n.AsElement(); el != nil {
			elems = append(elems, el)
		}
	}
	return elems, nil
}

// convertNode converts a golang.org/x/net/html node to a Node owned by d.
// Doctype and error nodes are dropped.
func (d *Document) convertNode(n *html.Node) *Node {
	var node *Node
	switch n.Type {
	case html.ElementNode:
		el := d.CreateElement(n.Data)
		for _, attr := range n.Attr {
			el.setAttributeRaw(strings.ToLower(attr.Key), attr.Val)
		}
		node = el.AsNode()
	case html.TextNode:
		return d.CreateTextNode(n.Data)
	case html.CommentNode:
		return d.CreateComment(n.Data)
	default:
		return nil
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if child := d.convertNode(c); child != nil {
			node.AppendChild(child)
		}
	}
	return node
}

// toNetNode converts n back into a golang.org/x/net/html tree for rendering.
func toNetNode(n *Node) *html.Node {
	var out *html.Node
	switch n.nodeType {
	case ElementNode:
		out = &html.Node{
			Type:     html.ElementNode,
			Data:     n.nodeName,
			DataAtom: atom.Lookup([]byte(n.nodeName)),
		}
		for _, attr := range n.elementData.attributes {
			out.Attr = append(out.Attr, html.Attribute{Key: attr.Name, Val: attr.Value})
		}
	case TextNode:
		return &html.Node{Type: html.TextNode, Data: n.data}
	case CommentNode:
		return &html.Node{Type: html.CommentNode, Data: n.data}
	case DocumentNode:
		out = &html.Node{Type: html.DocumentNode}
	default:
		return nil
	}
	for c := n.firstChild; c != nil; c = c.nextSibling {
		if child := toNetNode(c); child != nil {
			out.AppendChild(child)
		}
	}
	return out
}

// OuterHTML serializes the element and its descendants.
func (e *Element) OuterHTML() string {
	var buf bytes.Buffer
	if err := html.Render(&buf, toNetNode(e.AsNode())); err != nil {
		return ""
	}
	return buf.String()
}

// InnerHTML serializes the element's children.
func (e *Element) InnerHTML() string {
	var buf bytes.Buffer
	for c := e.firstChild; c != nil; c = c.nextSibling {
		if nn := toNetNode(c); nn != nil {
			html.Render(&buf, nn)
		}
	}
	return buf.String()
}

// Render writes the whole document as HTML.
func (d *Document) Render(w io.Writer) error {
	return html.Render(w, toNetNode(d.AsNode()))
}
