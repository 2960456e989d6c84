// Package xmlnode is a minimal generic XML element tree, grounded on
// encoding/xml token streams rather than a fixed set of Go structs: the
// GUI XML / Complete XML schemas grow new tags faster than a
// struct-tagged model can track, and both the expander and the
// semantic graph builder dispatch on tag name at runtime.
package xmlnode

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strings"
)

// Element is one node in the tree: a tag, its attributes (insertion
// order preserved), character data, and ordered children.
type Element struct {
	Tag      string
	Attrs    []xml.Attr
	Text     string
	Children []*Element
}

// New creates an element with the given tag and attribute pairs
// (key, value, key, value, ...).
func New(tag string, attrPairs ...string) *Element {
	e := &Element{Tag: tag}
	for i := 0; i+1 < len(attrPairs); i += 2 {
		e.SetAttr(attrPairs[i], attrPairs[i+1])
	}
	return e
}

// SetAttr sets an attribute, overwriting any existing value for the same
// key while preserving its original position.
func (e *Element) SetAttr(key, value string) *Element {
	for i := range e.Attrs {
		if e.Attrs[i].Name.Local == key {
			e.Attrs[i].Value = value
			return e
		}
	}
	e.Attrs = append(e.Attrs, xml.Attr{Name: xml.Name{Local: key}, Value: value})
	return e
}

// Attr returns an attribute's value, or "" with ok=false if absent.
func (e *Element) Attr(key string) (string, bool) {
	for _, a := range e.Attrs {
		if a.Name.Local == key {
			return a.Value, true
		}
	}
	return "", false
}

// AttrOr returns an attribute's value or a fallback default.
func (e *Element) AttrOr(key, def string) string {
	if v, ok := e.Attr(key); ok {
		return v
	}
	return def
}

// SetText sets the element's character data.
func (e *Element) SetText(text string) *Element {
	e.Text = text
	return e
}

// Append adds a child element and returns it for chaining.
func (e *Element) Append(child *Element) *Element {
	e.Children = append(e.Children, child)
	return child
}

// AddChild creates, appends, and returns a new child element.
func (e *Element) AddChild(tag string, attrPairs ...string) *Element {
	child := New(tag, attrPairs...)
	e.Append(child)
	return child
}

// Find returns the first direct child with the given tag.
func (e *Element) Find(tag string) *Element {
	for _, c := range e.Children {
		if c.Tag == tag {
			return c
		}
	}
	return nil
}

// FindAll returns every direct child with the given tag, in document order.
func (e *Element) FindAll(tag string) []*Element {
	var out []*Element
	for _, c := range e.Children {
		if c.Tag == tag {
			out = append(out, c)
		}
	}
	return out
}

// Parse reads a generic element tree from r. Namespaces are ignored;
// only the local tag name is kept (the GUI/Complete XML schemas are
// unnamespaced by design).
func Parse(r io.Reader) (*Element, error) {
	dec := xml.NewDecoder(r)
	var stack []*Element
	var root *Element

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("xmlnode: parse error: %w", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			el := &Element{Tag: t.Name.Local, Attrs: append([]xml.Attr(nil), t.Attr...)}
			if len(stack) > 0 {
				parent := stack[len(stack)-1]
				parent.Children = append(parent.Children, el)
			} else {
				root = el
			}
			stack = append(stack, el)
		case xml.EndElement:
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}
		case xml.CharData:
			if len(stack) > 0 {
				text := strings.TrimSpace(string(t))
				if text != "" {
					stack[len(stack)-1].Text += text
				}
			}
		}
	}
	if root == nil {
		return nil, fmt.Errorf("xmlnode: empty document")
	}
	return root, nil
}

// ParseString is a convenience wrapper around Parse for in-memory XML.
func ParseString(s string) (*Element, error) {
	return Parse(strings.NewReader(s))
}

// Write renders the tree as indented XML text (4-space indent, matching
// the rest of this compiler's strict-4-space style) with the standard
// XML declaration header.
func (e *Element) Write() string {
	var b bytes.Buffer
	b.WriteString(`<?xml version="1.0" encoding="utf-8"?>` + "\n")
	e.write(&b, 0)
	return b.String()
}

func (e *Element) write(b *bytes.Buffer, depth int) {
	indent := strings.Repeat("    ", depth)
	b.WriteString(indent)
	b.WriteString("<")
	b.WriteString(e.Tag)
	for _, a := range e.Attrs {
		b.WriteString(" ")
		b.WriteString(a.Name.Local)
		b.WriteString(`="`)
		b.WriteString(escapeAttr(a.Value))
		b.WriteString(`"`)
	}
	if len(e.Children) == 0 && e.Text == "" {
		b.WriteString("/>\n")
		return
	}
	b.WriteString(">")
	if e.Text != "" && len(e.Children) == 0 {
		b.WriteString(escapeText(e.Text))
		b.WriteString("</")
		b.WriteString(e.Tag)
		b.WriteString(">\n")
		return
	}
	b.WriteString("\n")
	for _, c := range e.Children {
		c.write(b, depth+1)
	}
	b.WriteString(indent)
	b.WriteString("</")
	b.WriteString(e.Tag)
	b.WriteString(">\n")
}

func escapeAttr(s string) string {
	r := strings.NewReplacer("&", "&amp;", `"`, "&quot;", "<", "&lt;", ">", "&gt;")
	return r.Replace(s)
}

func escapeText(s string) string {
	r := strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")
	return r.Replace(s)
}
