// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package parse

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/encoding/htmlindex"
)

// node is an element or text node of a parsed XML document. Elements keep
// both the prefix as written and the namespace URI it resolves to, so
// lookups can match either the qualified name or the namespace.
type node struct {
	prefix string
	local  string
	space  string
	attrs  []xml.Attr
	text   string // text nodes only
	isText bool

	parent   *node
	children []*node
}

// qualified returns the element name as written, e.g. "kml:Placemark".
func (n *node) qualified() string {
	if n.prefix == "" {
		return n.local
	}
	return n.prefix + ":" + n.local
}

// attr returns the value of the first attribute with the given local name.
func (n *node) attr(local string) (string, bool) {
	for _, a := range n.attrs {
		if a.Name.Local == local && a.Name.Space != "xmlns" {
			return a.Value, true
		}
	}
	return "", false
}

// textContent concatenates every descendant text node.
func (n *node) textContent() string {
	if n.isText {
		return n.text
	}
	var b strings.Builder
	n.writeText(&b)
	return b.String()
}

func (n *node) writeText(b *strings.Builder) {
	for _, c := range n.children {
		if c.isText {
			b.WriteString(c.text)
		} else {
			c.writeText(b)
		}
	}
}

// find returns every descendant element of n matching pred, in document order.
func (n *node) find(pred func(*node) bool) []*node {
	var out []*node
	var walk func(*node)
	walk = func(cur *node) {
		for _, c := range cur.children {
			if c.isText {
				continue
			}
			if pred(c) {
				out = append(out, c)
			}
			walk(c)
		}
	}
	walk(n)
	return out
}

// first returns the first descendant element matching pred, or nil.
func (n *node) first(pred func(*node) bool) *node {
	for _, c := range n.children {
		if c.isText {
			continue
		}
		if pred(c) {
			return c
		}
		if found := c.first(pred); found != nil {
			return found
		}
	}
	return nil
}

func byQualified(name string) func(*node) bool {
	return func(n *node) bool { return n.qualified() == name }
}

func byNamespace(space, local string) func(*node) bool {
	return func(n *node) bool { return n.space == space && n.local == local }
}

func byLocal(local string) func(*node) bool {
	return func(n *node) bool { return n.local == local }
}

// parseXML builds a document tree. The returned node is a synthetic
// document node whose only element child is the root element.
func parseXML(data []byte) (*node, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))
	dec.Entity = xml.HTMLEntity
	dec.CharsetReader = charsetReader

	doc := &node{}
	cur := doc
	scopes := []map[string]string{{"xml": "http://www.w3.org/XML/1998/namespace"}}

	for {
		tok, err := dec.RawToken()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			scope := make(map[string]string, len(scopes[len(scopes)-1]))
			for k, v := range scopes[len(scopes)-1] {
				scope[k] = v
			}
			for _, a := range t.Attr {
				switch {
				case a.Name.Space == "xmlns":
					scope[a.Name.Local] = a.Value
				case a.Name.Space == "" && a.Name.Local == "xmlns":
					scope[""] = a.Value
				}
			}
			scopes = append(scopes, scope)

			el := &node{
				prefix: t.Name.Space,
				local:  t.Name.Local,
				space:  scope[t.Name.Space],
				attrs:  append([]xml.Attr(nil), t.Attr...),
				parent: cur,
			}
			cur.children = append(cur.children, el)
			cur = el

		case xml.EndElement:
			if cur == doc {
				return nil, errors.New("unexpected closing tag")
			}
			if t.Name.Space != cur.prefix || t.Name.Local != cur.local {
				return nil, fmt.Errorf("element <%s> closed by </%s>", cur.qualified(), qualifiedName(t.Name))
			}
			cur = cur.parent
			scopes = scopes[:len(scopes)-1]

		case xml.CharData:
			if cur == doc {
				continue
			}
			cur.children = append(cur.children, &node{isText: true, text: string(t), parent: cur})
		}
	}

	if cur != doc {
		return nil, fmt.Errorf("element <%s> is not closed", cur.qualified())
	}
	if doc.root() == nil {
		return nil, errors.New("document has no root element")
	}
	return doc, nil
}

// charsetReader decodes a declared encoding to UTF-8. UTF-16 declarations
// pass through: such input has already been transcoded from its byte order
// mark by the caller.
func charsetReader(label string, input io.Reader) (io.Reader, error) {
	switch strings.ToLower(strings.TrimSpace(label)) {
	case "", "utf-8", "utf8", "us-ascii", "ascii", "utf-16", "utf-16le", "utf-16be":
		return input, nil
	}
	enc, err := htmlindex.Get(label)
	if err != nil {
		return nil, fmt.Errorf("unsupported charset %q", label)
	}
	return enc.NewDecoder().Reader(input), nil
}

// root returns the document element.
func (n *node) root() *node {
	for _, c := range n.children {
		if !c.isText {
			return c
		}
	}
	return nil
}

func qualifiedName(n xml.Name) string {
	if n.Space == "" {
		return n.Local
	}
	return n.Space + ":" + n.Local
}
