package normalize

import (
	"sort"

	"github.com/beevik/etree"
)

// Tag comparisons use the local name only, so prefixed roots such as
// witd:WITD and cat:CATEGORIES match their bare names.

// childrenByTag returns the direct child elements with a given local name.
func childrenByTag(el *etree.Element, tag string) []*etree.Element {
	var out []*etree.Element
	for _, c := range el.ChildElements() {
		if c.Tag == tag {
			out = append(out, c)
		}
	}
	return out
}

// firstChild returns the first direct child element with a given local name.
func firstChild(el *etree.Element, tag string) *etree.Element {
	for _, c := range el.ChildElements() {
		if c.Tag == tag {
			return c
		}
	}
	return nil
}

// path follows a chain of child tags, fanning out at every step.
func path(el *etree.Element, tags ...string) []*etree.Element {
	current := []*etree.Element{el}
	for _, tag := range tags {
		var next []*etree.Element
		for _, c := range current {
			next = append(next, childrenByTag(c, tag)...)
		}
		current = next
	}
	return current
}

// walk visits el and all its descendants in document order.
func walk(el *etree.Element, fn func(*etree.Element)) {
	fn(el)
	for _, c := range el.ChildElements() {
		walk(c, fn)
	}
}

// walkPostOrder visits descendants before their parent.
func walkPostOrder(el *etree.Element, fn func(*etree.Element)) {
	for _, c := range el.ChildElements() {
		walkPostOrder(c, fn)
	}
	fn(el)
}

// prune drops every descendant of root matching pred. Children are pruned
// before their parent is tested, so a parent emptied by pruning can match too.
func prune(root *etree.Element, pred func(*etree.Element) bool) {
	for _, c := range root.ChildElements() {
		prune(c, pred)
		if pred(c) {
			root.RemoveChild(c)
		}
	}
}

// replaceChildren swaps the child token list of el for tokens, in order.
func replaceChildren(el *etree.Element, tokens []etree.Token) {
	for len(el.Child) > 0 {
		el.RemoveChildAt(len(el.Child) - 1)
	}
	for _, t := range tokens {
		el.AddChild(t)
	}
}

// sortChildren orders the child elements of el by key, falling back to the
// canonical serialization for equal keys. Non-element tokens keep their
// relative order ahead of the elements.
func sortChildren(el *etree.Element, key func(*etree.Element) string) {
	children := el.ChildElements()
	if len(children) < 2 {
		return
	}

	type keyed struct {
		el        *etree.Element
		key       string
		canonical string
	}
	entries := make([]keyed, len(children))
	for i, c := range children {
		entries[i] = keyed{el: c, key: key(c), canonical: canonicalString(c)}
	}
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].key != entries[j].key {
			return entries[i].key < entries[j].key
		}
		return entries[i].canonical < entries[j].canonical
	})

	tokens := make([]etree.Token, 0, len(el.Child))
	for _, t := range el.Child {
		if _, ok := t.(*etree.Element); !ok {
			tokens = append(tokens, t)
		}
	}
	for _, e := range entries {
		tokens = append(tokens, e.el)
	}
	replaceChildren(el, tokens)
}

// byAttr sorts by one attribute value.
func byAttr(name string) func(*etree.Element) string {
	return func(el *etree.Element) string {
		return el.SelectAttrValue(name, "")
	}
}

// byTag sorts by local name.
func byTag(el *etree.Element) string {
	return el.Tag
}

// byTagThenAttr sorts by local name, then one attribute value.
func byTagThenAttr(name string) func(*etree.Element) string {
	return func(el *etree.Element) string {
		return el.Tag + "\x00" + el.SelectAttrValue(name, "")
	}
}

// byText sorts by the element's text content.
func byText(el *etree.Element) string {
	return el.Text()
}

// byRuleKey sorts by tag plus the first identifying attribute present.
// Elements without one fall through to their canonical serialization.
func byRuleKey(el *etree.Element) string {
	for _, name := range []string{"value", "name", "refname"} {
		if a := el.SelectAttr(name); a != nil {
			return el.Tag + "\x00" + a.Value
		}
	}
	return el.Tag + "\x00"
}

// sortAttrsDeep sorts the attributes of el and all descendants by namespace
// prefix, then key. The sort is stable so repeated keys keep their order.
func sortAttrsDeep(el *etree.Element) {
	walk(el, func(e *etree.Element) {
		sort.SliceStable(e.Attr, func(i, j int) bool {
			if e.Attr[i].Space != e.Attr[j].Space {
				return e.Attr[i].Space < e.Attr[j].Space
			}
			return e.Attr[i].Key < e.Attr[j].Key
		})
	})
}

// canonicalString serializes a copy of el with attributes sorted, for use as a
// sort key. Errors cannot occur when writing to memory.
func canonicalString(el *etree.Element) string {
	c := el.Copy()
	sortAttrsDeep(c)
	s, _ := SerializeElement(c)
	return s
}

// rewriteStrings applies fn to every attribute value and text token under root.
func rewriteStrings(root *etree.Element, fn func(string) string) {
	walk(root, func(el *etree.Element) {
		for i := range el.Attr {
			el.Attr[i].Value = fn(el.Attr[i].Value)
		}
		for _, t := range el.Child {
			if cd, ok := t.(*etree.CharData); ok {
				cd.Data = fn(cd.Data)
			}
		}
	})
}

// setDefaultAttr adds an attribute only when it is absent.
func setDefaultAttr(el *etree.Element, name, value string) {
	if el.SelectAttr(name) == nil {
		el.CreateAttr(name, value)
	}
}

// isEmpty reports whether an element has no attributes and no child tokens.
func isEmpty(el *etree.Element) bool {
	return len(el.Attr) == 0 && len(el.Child) == 0
}

// hasTag reports whether tag is one of tags.
func hasTag(tag string, tags ...string) bool {
	for _, t := range tags {
		if t == tag {
			return true
		}
	}
	return false
}
