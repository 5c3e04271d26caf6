package dom

import (
	"strings"
)

// Element represents an element in the DOM tree.
// Element is a typed view over a Node whose type is ElementNode.
type Element Node

// AsNode returns the underlying Node.
func (e *Element) AsNode() *Node {
	return (*Node)(e)
}

// TagName returns the lowercase tag name of the element.
func (e *Element) TagName() string {
	return e.elementData.localName
}

// Is reports whether the element has the given tag name (case-insensitive).
func (e *Element) Is(tag string) bool {
	return e != nil && strings.EqualFold(e.elementData.localName, tag)
}

// OwnerDocument returns the document this element belongs to.
func (e *Element) OwnerDocument() *Document {
	return e.ownerDoc
}

// GetAttribute returns the value of the named attribute, or "" if absent.
func (e *Element) GetAttribute(name string) string {
	v, _ := e.LookupAttribute(name)
	return v
}

// LookupAttribute returns the value of the named attribute and whether it
// is present at all.
func (e *Element) LookupAttribute(name string) (string, bool) {
	name = strings.ToLower(name)
	for _, attr := range e.elementData.attributes {
		if attr.Name == name {
			return attr.Value, true
		}
	}
	return "", false
}

// HasAttribute returns true if the element has the named attribute.
func (e *Element) HasAttribute(name string) bool {
	_, ok := e.LookupAttribute(name)
	return ok
}

// SetAttribute sets an attribute value, creating it if it doesn't exist.
func (e *Element) SetAttribute(name, value string) {
	name = strings.ToLower(name)
	e.setAttributeRaw(name, value)
	if name == "style" && e.elementData.style != nil {
		e.elementData.style.RefreshFromAttribute()
	}
}

// setAttributeRaw writes the attribute without touching the style cache.
func (e *Element) setAttributeRaw(name, value string) {
	for i, attr := range e.elementData.attributes {
		if attr.Name == name {
			e.elementData.attributes[i].Value = value
			return
		}
	}
	e.elementData.attributes = append(e.elementData.attributes, Attribute{Name: name, Value: value})
}

// SetAttributeWithError validates the name before setting the attribute.
func (e *Element) SetAttributeWithError(name, value string) error {
	if !isValidAttributeName(name) {
		return ErrInvalidCharacter("'" + name + "' is not a valid attribute name")
	}
	e.SetAttribute(name, value)
	return nil
}

// RemoveAttribute removes the named attribute if present.
func (e *Element) RemoveAttribute(name string) {
	name = strings.ToLower(name)
	attrs := e.elementData.attributes
	for i, attr := range attrs {
		if attr.Name == name {
			e.elementData.attributes = append(attrs[:i], attrs[i+1:]...)
			if name == "style" && e.elementData.style != nil {
				e.elementData.style.RefreshFromAttribute()
			}
			return
		}
	}
}

// Attributes returns a copy of the element's attributes in document order.
func (e *Element) Attributes() []Attribute {
	return append([]Attribute(nil), e.elementData.attributes...)
}

// Style returns the inline style declaration of the element.
func (e *Element) Style() *CSSStyleDeclaration {
	if e.elementData.style == nil {
		e.elementData.style = NewCSSStyleDeclaration(e)
	}
	return e.elementData.style
}

// HasClass reports whether the whitespace-separated class attribute
// contains name.
func (e *Element) HasClass(name string) bool {
	for _, c := range strings.Fields(e.GetAttribute("class")) {
		if c == name {
			return true
		}
	}
	return false
}

// ParentElement returns the parent element, or nil.
func (e *Element) ParentElement() *Element {
	return e.AsNode().ParentElement()
}

// Children returns the element children of this element.
func (e *Element) Children() []*Element {
	var children []*Element
	for c := e.firstChild; c != nil; c = c.nextSibling {
		if c.nodeType == ElementNode {
			children = append(children, (*Element)(c))
		}
	}
	return children
}

// FirstElementChild returns the first element child, or nil.
func (e *Element) FirstElementChild() *Element {
	for c := e.firstChild; c != nil; c = c.nextSibling {
		if c.nodeType == ElementNode {
			return (*Element)(c)
		}
	}
	return nil
}

// NextElementSibling returns the next sibling that is an element, or nil.
func (e *Element) NextElementSibling() *Element {
	for s := e.nextSibling; s != nil; s = s.nextSibling {
		if s.nodeType == ElementNode {
			return (*Element)(s)
		}
	}
	return nil
}

// PreviousElementSibling returns the previous sibling that is an element, or nil.
func (e *Element) PreviousElementSibling() *Element {
	for s := e.prevSibling; s != nil; s = s.prevSibling {
		if s.nodeType == ElementNode {
			return (*Element)(s)
		}
	}
	return nil
}

// Append appends nodes as the last children of the element.
func (e *Element) Append(nodes ...*Node) error {
	for _, n := range nodes {
		if _, err := e.AsNode().AppendChild(n); err != nil {
			return err
		}
	}
	return nil
}

// AppendElement appends an element child and returns it.
func (e *Element) AppendElement(child *Element) *Element {
	e.AsNode().AppendChild(child.AsNode())
	return child
}

// Prepend inserts nodes before the first child of the element.
func (e *Element) Prepend(nodes ...*Node) error {
	ref := e.firstChild
	for _, n := range nodes {
		if _, err := e.AsNode().InsertBefore(n, ref); err != nil {
			return err
		}
	}
	return nil
}

// Before inserts n immediately before the element.
func (e *Element) Before(n *Node) error {
	if e.parentNode == nil {
		return ErrHierarchyRequest("element has no parent")
	}
	_, err := e.parentNode.InsertBefore(n, e.AsNode())
	return err
}

// After inserts n immediately after the element.
func (e *Element) After(n *Node) error {
	if e.parentNode == nil {
		return ErrHierarchyRequest("element has no parent")
	}
	_, err := e.parentNode.InsertBefore(n, e.nextSibling)
	return err
}

// Remove detaches the element from its parent.
func (e *Element) Remove() {
	e.AsNode().Remove()
}

// Empty removes every child of the element.
func (e *Element) Empty() {
	for e.firstChild != nil {
		e.AsNode().removeChild(e.firstChild)
	}
}

// WrapInner moves every child of e into wrapper and appends wrapper to e.
func (e *Element) WrapInner(wrapper *Element) *Element {
	for c := e.firstChild; c != nil; c = e.firstChild {
		wrapper.AsNode().AppendChild(c)
	}
	e.AsNode().AppendChild(wrapper.AsNode())
	return wrapper
}

// Unwrap replaces the element with its own children.
func (e *Element) Unwrap() {
	parent := e.parentNode
	if parent == nil {
		return
	}
	for c := e.firstChild; c != nil; c = e.firstChild {
		parent.InsertBefore(c, e.AsNode())
	}
	parent.removeChild(e.AsNode())
}

// Clone returns a copy of the element. See Node.CloneNode.
func (e *Element) Clone(deep bool) *Element {
	return (*Element)(e.AsNode().CloneNode(deep))
}

// Contains returns true if other is e or one of its descendants.
func (e *Element) Contains(other *Element) bool {
	return other != nil && e.AsNode().Contains(other.AsNode())
}

// TextContent returns the concatenated text of the element's descendants.
func (e *Element) TextContent() string {
	return e.AsNode().TextContent()
}

// SetTextContent replaces the element's children with a text node.
func (e *Element) SetTextContent(text string) {
	e.AsNode().SetTextContent(text)
}

// Closest returns the nearest inclusive ancestor matching the selector,
// or nil. An invalid selector matches nothing.
func (e *Element) Closest(selector string) *Element {
	sel, err := ParseSelector(selector)
	if err != nil {
		return nil
	}
	for cur := e; cur != nil; cur = cur.ParentElement() {
		if sel.Matches(cur, nil) {
			return cur
		}
	}
	return nil
}

// Matches reports whether the element matches the selector.
func (e *Element) Matches(selector string) bool {
	sel, err := ParseSelector(selector)
	if err != nil {
		return false
	}
	return sel.Matches(e, nil)
}

// Parents returns every ancestor element matching the selector, nearest first.
func (e *Element) Parents(selector string) []*Element {
	sel, err := ParseSelector(selector)
	if err != nil {
		return nil
	}
	var result []*Element
	for cur := e.ParentElement(); cur != nil; cur = cur.ParentElement() {
		if sel.Matches(cur, nil) {
			result = append(result, cur)
		}
	}
	return result
}

// isValidAttributeName checks the XML Name production loosely: no
// whitespace, quotes, '>', '/', '=' or NUL.
func isValidAttributeName(name string) bool {
	if name == "" {
		return false
	}
	return !strings.ContainsAny(name, " \t\n\f\r\"'>/=\x00")
}
