package dom

import (
	"strings"
	"sync"
)

// Combinator joins two compound selectors.
type Combinator int

const (
	CombinatorDescendant      Combinator = iota // A B
	CombinatorChild                             // A > B
	CombinatorNextSibling                       // A + B
	CombinatorSubsequentSibling                 // A ~ B
)

// AttributeOperator is the comparison in an attribute selector.
type AttributeOperator int

const (
	AttrExists    AttributeOperator = iota // [attr]
	AttrEquals                             // [attr=value]
	AttrIncludes                           // [attr~=value]
	AttrDashMatch                          // [attr|=value]
	AttrPrefix                             // [attr^=value]
	AttrSuffix                             // [attr$=value]
	AttrSubstring                          // [attr*=value]
)

// Selector is a parsed selector list such as
// "[data-ss-widget]:not([data-ss-id]), [data-ss-component='button']".
type Selector struct {
	alternatives []*complexSelector
}

type complexSelector struct {
	compounds   []*compoundSelector
	combinators []Combinator
	// Leading "> x" selects children of the query scope.
	scoped bool
}

type compoundSelector struct {
	tag        string
	attributes []attributeMatcher
	not        []*Selector
	firstChild bool
}

type attributeMatcher struct {
	name     string
	operator AttributeOperator
	value    string
}

var selectorCache sync.Map

// ParseSelector parses a selector list. Supported syntax: type and universal
// selectors, #id, .class, attribute selectors with all operators, :not(),
// :first-child, and the descendant, child, + and ~ combinators. A leading
// combinator is relative to the query scope.
func ParseSelector(input string) (*Selector, error) {
	if cached, ok := selectorCache.Load(input); ok {
		return cached.(*Selector), nil
	}
	p := &selectorParser{input: input}
	sel, err := p.parseList()
	if err != nil {
		return nil, err
	}
	p.skipSpace()
	if p.pos < len(p.input) {
		return nil, ErrSyntax("unexpected '" + string(p.input[p.pos]) + "' in selector '" + input + "'")
	}
	selectorCache.Store(input, sel)
	return sel, nil
}

// Matches reports whether e matches any selector in the list. scope is the
// element a relative selector is anchored to and may be nil.
func (s *Selector) Matches(e *Element, scope *Element) bool {
	for _, cs := range s.alternatives {
		if cs.matchAt(len(cs.compounds)-1, e, scope) {
			return true
		}
	}
	return false
}

func (cs *complexSelector) matchAt(idx int, e *Element, scope *Element) bool {
	if !cs.compounds[idx].matches(e, scope) {
		return false
	}
	if idx == 0 {
		if cs.scoped {
			return scope != nil && e.ParentElement() == scope
		}
		return true
	}
	switch cs.combinators[idx-1] {
	case CombinatorChild:
		parent := e.ParentElement()
		return parent != nil && cs.matchAt(idx-1, parent, scope)
	case CombinatorNextSibling:
		prev := e.PreviousElementSibling()
		return prev != nil && cs.matchAt(idx-1, prev, scope)
	case CombinatorSubsequentSibling:
		for prev := e.PreviousElementSibling(); prev != nil; prev = prev.PreviousElementSibling() {
			if cs.matchAt(idx-1, prev, scope) {
				return true
			}
		}
		return false
	default:
		for anc := e.ParentElement(); anc != nil; anc = anc.ParentElement() {
			if cs.matchAt(idx-1, anc, scope) {
				return true
			}
		}
		return false
	}
}

func (c *compoundSelector) matches(e *Element, scope *Element) bool {
	if c.tag != "" && c.tag != "*" && !e.Is(c.tag) {
		return false
	}
	for _, am := range c.attributes {
		if !am.matches(e) {
			return false
		}
	}
	if c.firstChild && e.PreviousElementSibling() != nil {
		return false
	}
	for _, n := range c.not {
		if n.Matches(e, scope) {
			return false
		}
	}
	return true
}

func (am attributeMatcher) matches(e *Element) bool {
	v, ok := e.LookupAttribute(am.name)
	if !ok {
		return false
	}
	switch am.operator {
	case AttrExists:
		return true
	case AttrEquals:
		return v == am.value
	case AttrIncludes:
		for _, f := range strings.Fields(v) {
			if f == am.value {
				return true
			}
		}
		return false
	case AttrDashMatch:
		return v == am.value || strings.HasPrefix(v, am.value+"-")
	case AttrPrefix:
		return am.value != "" && strings.HasPrefix(v, am.value)
	case AttrSuffix:
		return am.value != "" && strings.HasSuffix(v, am.value)
	case AttrSubstring:
		return am.value != "" && strings.Contains(v, am.value)
	}
	return false
}

type selectorParser struct {
	input string
	pos   int
}

func (p *selectorParser) peek() byte {
	if p.pos >= len(p.input) {
		return 0
	}
	return p.input[p.pos]
}

func (p *selectorParser) skipSpace() bool {
	start := p.pos
	for p.pos < len(p.input) && strings.IndexByte(" \t\n\r\f", p.input[p.pos]) >= 0 {
		p.pos++
	}
	return p.pos > start
}

func (p *selectorParser) parseList() (*Selector, error) {
	sel := &Selector{}
	for {
		cs, err := p.parseComplex()
		if err != nil {
			return nil, err
		}
		sel.alternatives = append(sel.alternatives, cs)
		p.skipSpace()
		if p.peek() != ',' {
			return sel, nil
		}
		p.pos++
	}
}

func (p *selectorParser) parseComplex() (*complexSelector, error) {
	cs := &complexSelector{}
	p.skipSpace()
	if p.peek() == '>' {
		cs.scoped = true
		p.pos++
		p.skipSpace()
	}
	for {
		compound, err := p.parseCompound()
		if err != nil {
			return nil, err
		}
		cs.compounds = append(cs.compounds, compound)

		hadSpace := p.skipSpace()
		var comb Combinator
		switch p.peek() {
		case '>':
			comb = CombinatorChild
		case '+':
			comb = CombinatorNextSibling
		case '~':
			comb = CombinatorSubsequentSibling
		case ',', ')', 0:
			return cs, nil
		default:
			if !hadSpace {
				return nil, ErrSyntax("unexpected '" + string(p.peek()) + "' in selector '" + p.input + "'")
			}
			cs.combinators = append(cs.combinators, CombinatorDescendant)
			continue
		}
		p.pos++
		p.skipSpace()
		cs.combinators = append(cs.combinators, comb)
	}
}

func (p *selectorParser) parseCompound() (*compoundSelector, error) {
	c := &compoundSelector{}
	start := p.pos
	if p.peek() == '*' {
		c.tag = "*"
		p.pos++
	} else if isIdentStart(p.peek()) {
		c.tag = strings.ToLower(p.parseIdent())
	}
	for {
		switch p.peek() {
		case '[':
			am, err := p.parseAttribute()
			if err != nil {
				return nil, err
			}
			c.attributes = append(c.attributes, am)
		case '#':
			p.pos++
			c.attributes = append(c.attributes, attributeMatcher{name: "id", operator: AttrEquals, value: p.parseIdent()})
		case '.':
			p.pos++
			c.attributes = append(c.attributes, attributeMatcher{name: "class", operator: AttrIncludes, value: p.parseIdent()})
		case ':':
			if err := p.parsePseudo(c); err != nil {
				return nil, err
			}
		default:
			if p.pos == start {
				return nil, ErrSyntax("expected a selector in '" + p.input + "'")
			}
			return c, nil
		}
	}
}

func (p *selectorParser) parseAttribute() (attributeMatcher, error) {
	p.pos++ // [
	p.skipSpace()
	am := attributeMatcher{name: strings.ToLower(p.parseIdent())}
	if am.name == "" {
		return am, ErrSyntax("missing attribute name in '" + p.input + "'")
	}
	p.skipSpace()
	if p.peek() == ']' {
		p.pos++
		am.operator = AttrExists
		return am, nil
	}
	ops := []struct {
		token string
		op    AttributeOperator
	}{
		{"~=", AttrIncludes}, {"|=", AttrDashMatch}, {"^=", AttrPrefix},
		{"$=", AttrSuffix}, {"*=", AttrSubstring}, {"=", AttrEquals},
	}
	matched := false
	for _, o := range ops {
		if strings.HasPrefix(p.input[p.pos:], o.token) {
			am.operator = o.op
			p.pos += len(o.token)
			matched = true
			break
		}
	}
	if !matched {
		return am, ErrSyntax("bad attribute operator in '" + p.input + "'")
	}
	p.skipSpace()
	if q := p.peek(); q == '\'' || q == '"' {
		end := strings.IndexByte(p.input[p.pos+1:], q)
		if end == -1 {
			return am, ErrSyntax("unterminated string in '" + p.input + "'")
		}
		am.value = p.input[p.pos+1 : p.pos+1+end]
		p.pos += end + 2
	} else {
		am.value = p.parseIdent()
	}
	p.skipSpace()
	if p.peek() != ']' {
		return am, ErrSyntax("expected ']' in '" + p.input + "'")
	}
	p.pos++
	return am, nil
}

func (p *selectorParser) parsePseudo(c *compoundSelector) error {
	p.pos++ // :
	name := strings.ToLower(p.parseIdent())
	switch name {
	case "first-child":
		c.firstChild = true
		return nil
	case "not":
		if p.peek() != '(' {
			return ErrSyntax("expected '(' after :not in '" + p.input + "'")
		}
		p.pos++
		inner, err := p.parseList()
		if err != nil {
			return err
		}
		p.skipSpace()
		if p.peek() != ')' {
			return ErrSyntax("expected ')' in '" + p.input + "'")
		}
		p.pos++
		c.not = append(c.not, inner)
		return nil
	}
	return ErrSyntax("unsupported pseudo-class ':" + name + "'")
}

func (p *selectorParser) parseIdent() string {
	start := p.pos
	for p.pos < len(p.input) && isIdentChar(p.input[p.pos]) {
		p.pos++
	}
	return p.input[start:p.pos]
}

func isIdentStart(c byte) bool {
	return c == '_' || c == '-' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || c >= 0x80
}

func isIdentChar(c byte) bool {
	return isIdentStart(c) || (c >= '0' && c <= '9')
}

// QuerySelector returns the first descendant matching selector, or nil.
func (e *Element) QuerySelector(selector string) *Element {
	return querySelector(e.AsNode(), selector)
}

// QuerySelectorAll returns every descendant matching selector in document
// order. A leading "> " restricts matches to direct children of e.
func (e *Element) QuerySelectorAll(selector string) []*Element {
	return querySelectorAll(e.AsNode(), selector)
}

func querySelector(root *Node, selector string) *Element {
	sel, err := ParseSelector(selector)
	if err != nil {
		return nil
	}
	scope := root.AsElement()
	var found *Element
	walkElements(root, func(e *Element) bool {
		if sel.Matches(e, scope) {
			found = e
			return false
		}
		return true
	})
	return found
}

func querySelectorAll(root *Node, selector string) []*Element {
	sel, err := ParseSelector(selector)
	if err != nil {
		return nil
	}
	scope := root.AsElement()
	var result []*Element
	walkElements(root, func(e *Element) bool {
		if sel.Matches(e, scope) {
			result = append(result, e)
		}
		return true
	})
	return result
}
