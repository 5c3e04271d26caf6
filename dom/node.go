package dom

import (
	"strings"
)

// NodeType represents the type of a node.
type NodeType int

const (
	ElementNode  NodeType = 1
	TextNode     NodeType = 3
	CommentNode  NodeType = 8
	DocumentNode NodeType = 9
)

// Node represents a node in the DOM tree. Elements, text, comments and the
// document itself are all Nodes; Element is a typed view over an element Node.
type Node struct {
	nodeType NodeType
	nodeName string
	data     string
	ownerDoc *Document

	parentNode  *Node
	firstChild  *Node
	lastChild   *Node
	prevSibling *Node
	nextSibling *Node

	// Type-specific data (only one will be non-nil based on nodeType)
	elementData  *elementData
	documentData *documentData

	// Created lazily on first listener registration
	events *eventTarget
}

// elementData holds data specific to Element nodes.
type elementData struct {
	localName  string
	attributes []Attribute
	style      *CSSStyleDeclaration
}

// documentData holds data specific to Document nodes.
type documentData struct {
	viewportWidth  float64
	viewportHeight float64
	url            string
}

// Attribute is a single name/value pair on an element.
type Attribute struct {
	Name  string
	Value string
}

// NodeType returns the type of the node.
func (n *Node) NodeType() NodeType {
	return n.nodeType
}

// NodeName returns the lowercase tag name for elements, "#text" for text
// nodes, "#comment" for comments and "#document" for documents.
func (n *Node) NodeName() string {
	return n.nodeName
}

// OwnerDocument returns the document this node belongs to.
func (n *Node) OwnerDocument() *Document {
	return n.ownerDoc
}

// ParentNode returns the parent of this node, or nil.
func (n *Node) ParentNode() *Node {
	return n.parentNode
}

// ParentElement returns the parent if it is an element, or nil.
func (n *Node) ParentElement() *Element {
	if n.parentNode != nil && n.parentNode.nodeType == ElementNode {
		return (*Element)(n.parentNode)
	}
	return nil
}

// FirstChild returns the first child node, or nil.
func (n *Node) FirstChild() *Node {
	return n.firstChild
}

// LastChild returns the last child node, or nil.
func (n *Node) LastChild() *Node {
	return n.lastChild
}

// NextSibling returns the next sibling node, or nil.
func (n *Node) NextSibling() *Node {
	return n.nextSibling
}

// PreviousSibling returns the previous sibling node, or nil.
func (n *Node) PreviousSibling() *Node {
	return n.prevSibling
}

// ChildNodes returns a snapshot of the children of this node.
func (n *Node) ChildNodes() []*Node {
	var children []*Node
	for c := n.firstChild; c != nil; c = c.nextSibling {
		children = append(children, c)
	}
	return children
}

// HasChildNodes returns true if this node has any children.
func (n *Node) HasChildNodes() bool {
	return n.firstChild != nil
}

// IsElement reports whether the node is an element.
func (n *Node) IsElement() bool {
	return n.nodeType == ElementNode
}

// AsElement returns the node as an Element, or nil if it is not one.
func (n *Node) AsElement() *Element {
	if n == nil || n.nodeType != ElementNode {
		return nil
	}
	return (*Element)(n)
}

// Contains returns true if other is this node or one of its descendants.
func (n *Node) Contains(other *Node) bool {
	for cur := other; cur != nil; cur = cur.parentNode {
		if cur == n {
			return true
		}
	}
	return false
}

// AppendChild adds a child node to the end of this node's children.
// A node that already has a parent is moved.
func (n *Node) AppendChild(child *Node) (*Node, error) {
	if err := n.validateInsert(child); err != nil {
		return nil, err
	}
	if child.parentNode != nil {
		child.parentNode.removeChild(child)
	}
	child.parentNode = n
	child.prevSibling = n.lastChild
	child.nextSibling = nil
	if n.lastChild != nil {
		n.lastChild.nextSibling = child
	} else {
		n.firstChild = child
	}
	n.lastChild = child
	child.adopt(n.ownerDocument())
	return child, nil
}

// InsertBefore inserts newChild before refChild. If refChild is nil,
// newChild is appended.
func (n *Node) InsertBefore(newChild, refChild *Node) (*Node, error) {
	if refChild == nil {
		return n.AppendChild(newChild)
	}
	if refChild.parentNode != n {
		return nil, ErrNotFound("the reference node is not a child of this node")
	}
	if newChild == refChild {
		return newChild, nil
	}
	if err := n.validateInsert(newChild); err != nil {
		return nil, err
	}
	if newChild.parentNode != nil {
		newChild.parentNode.removeChild(newChild)
	}
	newChild.parentNode = n
	newChild.nextSibling = refChild
	newChild.prevSibling = refChild.prevSibling
	if refChild.prevSibling != nil {
		refChild.prevSibling.nextSibling = newChild
	} else {
		n.firstChild = newChild
	}
	refChild.prevSibling = newChild
	newChild.adopt(n.ownerDocument())
	return newChild, nil
}

// RemoveChild removes child from this node's children.
func (n *Node) RemoveChild(child *Node) (*Node, error) {
	if child == nil || child.parentNode != n {
		return nil, ErrNotFound("the node to be removed is not a child of this node")
	}
	n.removeChild(child)
	return child, nil
}

func (n *Node) removeChild(child *Node) {
	if child.prevSibling != nil {
		child.prevSibling.nextSibling = child.nextSibling
	} else {
		n.firstChild = child.nextSibling
	}
	if child.nextSibling != nil {
		child.nextSibling.prevSibling = child.prevSibling
	} else {
		n.lastChild = child.prevSibling
	}
	child.parentNode = nil
	child.prevSibling = nil
	child.nextSibling = nil
}

// Remove detaches the node from its parent, if any.
func (n *Node) Remove() {
	if n.parentNode != nil {
		n.parentNode.removeChild(n)
	}
}

// validateInsert rejects insertions that would create a cycle or put a
// document inside another node.
func (n *Node) validateInsert(child *Node) error {
	if child == nil {
		return ErrHierarchyRequest("cannot insert a nil node")
	}
	if child.nodeType == DocumentNode {
		return ErrHierarchyRequest("cannot insert a document")
	}
	if child.Contains(n) {
		return ErrHierarchyRequest("the new child is an ancestor of the parent")
	}
	if n.nodeType == TextNode || n.nodeType == CommentNode {
		return ErrHierarchyRequest("text and comment nodes cannot have children")
	}
	return nil
}

func (n *Node) ownerDocument() *Document {
	if n.nodeType == DocumentNode {
		return (*Document)(n)
	}
	return n.ownerDoc
}

func (n *Node) adopt(doc *Document) {
	if doc == nil || n.ownerDoc == doc {
		return
	}
	n.ownerDoc = doc
	for c := n.firstChild; c != nil; c = c.nextSibling {
		c.adopt(doc)
	}
}

// TextContent returns the concatenated text of this node and its descendants.
func (n *Node) TextContent() string {
	switch n.nodeType {
	case TextNode, CommentNode:
		return n.data
	}
	var sb strings.Builder
	n.collectText(&sb)
	return sb.String()
}

func (n *Node) collectText(sb *strings.Builder) {
	for c := n.firstChild; c != nil; c = c.nextSibling {
		if c.nodeType == TextNode {
			sb.WriteString(c.data)
		} else if c.nodeType == ElementNode {
			c.collectText(sb)
		}
	}
}

// SetTextContent replaces all children with a single text node.
func (n *Node) SetTextContent(text string) {
	switch n.nodeType {
	case TextNode, CommentNode:
		n.data = text
		return
	}
	for n.firstChild != nil {
		n.removeChild(n.firstChild)
	}
	if text != "" {
		n.AppendChild(n.ownerDocument().CreateTextNode(text))
	}
}

// CloneNode returns a copy of the node. Attributes and inline styles are
// copied; event listeners are not. If deep is true, children are cloned too.
func (n *Node) CloneNode(deep bool) *Node {
	clone := &Node{
		nodeType: n.nodeType,
		nodeName: n.nodeName,
		data:     n.data,
		ownerDoc: n.ownerDoc,
	}
	if n.elementData != nil {
		clone.elementData = &elementData{
			localName:  n.elementData.localName,
			attributes: append([]Attribute(nil), n.elementData.attributes...),
		}
	}
	if deep {
		for c := n.firstChild; c != nil; c = c.nextSibling {
			clone.AppendChild(c.CloneNode(true))
		}
	}
	return clone
}
