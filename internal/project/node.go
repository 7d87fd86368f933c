package project

import (
	"encoding/xml"
	"fmt"
	"io"
	"strings"
)

// Node is a generic XML element. Elements and attributes the package does not
// understand are kept as-is so that saving a project only changes the
// functions that were updated.
type Node struct {
	XMLName xml.Name
	Attrs   []xml.Attr `xml:",any,attr"`
	Text    string     `xml:",chardata"`
	Nodes   []*Node    `xml:",any"`
}

func decodeNode(r io.Reader) (*Node, error) {
	var root Node
	if err := xml.NewDecoder(r).Decode(&root); err != nil {
		return nil, fmt.Errorf("decode xml: %w", err)
	}
	root.normalize()
	return &root, nil
}

func (n *Node) encode(w io.Writer) error {
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(n); err != nil {
		return fmt.Errorf("encode xml: %w", err)
	}
	_, err := io.WriteString(w, "\n")
	return err
}

// normalize drops indentation whitespace around child elements; the encoder
// re-indents on write.
func (n *Node) normalize() {
	if len(n.Nodes) > 0 && strings.TrimSpace(n.Text) == "" {
		n.Text = ""
	}
	for _, c := range n.Nodes {
		c.normalize()
	}
}

func (n *Node) child(local string) *Node {
	for _, c := range n.Nodes {
		if c.XMLName.Local == local {
			return c
		}
	}
	return nil
}

// ensureChild returns the first child named local, appending an empty one if
// there is none.
func (n *Node) ensureChild(local string) *Node {
	if c := n.child(local); c != nil {
		return c
	}
	c := &Node{XMLName: xml.Name{Local: local}}
	n.Nodes = append(n.Nodes, c)
	return c
}

func (n *Node) childText(local string) string {
	if c := n.child(local); c != nil {
		return c.Text
	}
	return ""
}

func (n *Node) attr(local string) (string, bool) {
	for _, a := range n.Attrs {
		if a.Name.Local == local {
			return a.Value, true
		}
	}
	return "", false
}

func (n *Node) setAttr(local, value string) {
	for i := range n.Attrs {
		if n.Attrs[i].Name.Local == local {
			n.Attrs[i].Value = value
			return
		}
	}
	n.Attrs = append(n.Attrs, xml.Attr{Name: xml.Name{Local: local}, Value: value})
}

// walk calls fn for n and every descendant in document order.
func (n *Node) walk(fn func(*Node)) {
	fn(n)
	for _, c := range n.Nodes {
		c.walk(fn)
	}
}
