package dom

import (
	"strconv"
	"strings"
)

// CSSStyleDeclaration represents an element's inline style. Changes are
// written straight back to the element's style attribute.
type CSSStyleDeclaration struct {
	element *Element

	// property name -> value
	declarations map[string]*styleProperty

	// Order in which properties were set (for cssText serialization)
	propertyOrder []string
}

type styleProperty struct {
	value    string
	priority string // "important" or ""
}

// NewCSSStyleDeclaration creates a style declaration bound to element and
// seeded from its style attribute.
func NewCSSStyleDeclaration(element *Element) *CSSStyleDeclaration {
	sd := &CSSStyleDeclaration{
		element:      element,
		declarations: make(map[string]*styleProperty),
	}
	if element != nil {
		if attr, ok := element.LookupAttribute("style"); ok {
			sd.parse(attr)
		}
	}
	return sd
}

// CSSText returns the textual representation of the declaration block.
func (sd *CSSStyleDeclaration) CSSText() string {
	var parts []string
	for _, prop := range sd.propertyOrder {
		sp := sd.declarations[prop]
		part := prop + ": " + sp.value
		if sp.priority == "important" {
			part += " !important"
		}
		parts = append(parts, part)
	}
	return strings.Join(parts, "; ")
}

// SetCSSText replaces every property with those parsed from cssText.
func (sd *CSSStyleDeclaration) SetCSSText(cssText string) {
	sd.declarations = make(map[string]*styleProperty)
	sd.propertyOrder = nil
	sd.parse(cssText)
	sd.syncToAttribute()
}

// Length returns the number of properties set.
func (sd *CSSStyleDeclaration) Length() int {
	return len(sd.declarations)
}

// GetPropertyValue returns the value of a CSS property, or "".
func (sd *CSSStyleDeclaration) GetPropertyValue(property string) string {
	if sp, ok := sd.declarations[normalizeCSSPropertyName(property)]; ok {
		return sp.value
	}
	return ""
}

// SetProperty sets a CSS property. An empty value removes it.
func (sd *CSSStyleDeclaration) SetProperty(property, value string, priority ...string) {
	property = normalizeCSSPropertyName(property)
	if property == "" {
		return
	}
	if value == "" {
		sd.RemoveProperty(property)
		return
	}
	pri := ""
	if len(priority) > 0 && strings.EqualFold(priority[0], "important") {
		pri = "important"
	}
	if _, exists := sd.declarations[property]; !exists {
		sd.propertyOrder = append(sd.propertyOrder, property)
	}
	sd.declarations[property] = &styleProperty{value: value, priority: pri}
	sd.syncToAttribute()
}

// SetPixels sets property to v formatted as a px length.
func (sd *CSSStyleDeclaration) SetPixels(property string, v float64) {
	sd.SetProperty(property, FormatPx(v))
}

// Pixels returns the px value of property. The second result is false when
// the property is unset or not a plain px/unitless length.
func (sd *CSSStyleDeclaration) Pixels(property string) (float64, bool) {
	return ParsePx(sd.GetPropertyValue(property))
}

// RemoveProperty removes a CSS property and returns its old value.
func (sd *CSSStyleDeclaration) RemoveProperty(property string) string {
	property = normalizeCSSPropertyName(property)
	sp, ok := sd.declarations[property]
	if !ok {
		return ""
	}
	delete(sd.declarations, property)
	for i, p := range sd.propertyOrder {
		if p == property {
			sd.propertyOrder = append(sd.propertyOrder[:i], sd.propertyOrder[i+1:]...)
			break
		}
	}
	sd.syncToAttribute()
	return sp.value
}

// RefreshFromAttribute reloads declarations from the element's style
// attribute after it was changed directly.
func (sd *CSSStyleDeclaration) RefreshFromAttribute() {
	sd.declarations = make(map[string]*styleProperty)
	sd.propertyOrder = nil
	if sd.element != nil {
		sd.parse(sd.element.GetAttribute("style"))
	}
}

// PropertyNames returns all property names in declaration order.
func (sd *CSSStyleDeclaration) PropertyNames() []string {
	return append([]string(nil), sd.propertyOrder...)
}

func (sd *CSSStyleDeclaration) parse(cssText string) {
	for _, part := range strings.Split(cssText, ";") {
		colon := strings.Index(part, ":")
		if colon == -1 {
			continue
		}
		property := normalizeCSSPropertyName(strings.TrimSpace(part[:colon]))
		value := strings.TrimSpace(part[colon+1:])
		if property == "" || value == "" {
			continue
		}
		priority := ""
		if i := strings.LastIndex(value, "!"); i != -1 && strings.EqualFold(strings.TrimSpace(value[i+1:]), "important") {
			priority = "important"
			value = strings.TrimSpace(value[:i])
		}
		if _, exists := sd.declarations[property]; !exists {
			sd.propertyOrder = append(sd.propertyOrder, property)
		}
		sd.declarations[property] = &styleProperty{value: value, priority: priority}
	}
}

func (sd *CSSStyleDeclaration) syncToAttribute() {
	if sd.element == nil {
		return
	}
	cssText := sd.CSSText()
	if cssText == "" {
		sd.element.RemoveAttribute("style")
		return
	}
	// Bypass SetAttribute so the declarations are not re-parsed.
	sd.element.setAttributeRaw("style", cssText)
}

// normalizeCSSPropertyName converts camelCase to kebab-case and lowercases.
// Examples: "backgroundColor" -> "background-color", "minHeight" -> "min-height"
func normalizeCSSPropertyName(name string) string {
	if strings.Contains(name, "-") {
		return strings.ToLower(name)
	}
	var result strings.Builder
	for i, r := range name {
		if r >= 'A' && r <= 'Z' {
			if i > 0 {
				result.WriteByte('-')
			}
			result.WriteByte(byte(r - 'A' + 'a'))
		} else {
			result.WriteRune(r)
		}
	}
	return result.String()
}

// ParsePx parses "12px", "12.5px" or a bare number. Anything else,
// including percentages and "auto", reports false.
func ParsePx(value string) (float64, bool) {
	value = strings.TrimSpace(value)
	value = strings.TrimSuffix(value, "px")
	if value == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// FormatPx formats v as a px length with no trailing zeros.
func FormatPx(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64) + "px"
}
