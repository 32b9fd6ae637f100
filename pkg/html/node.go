package html

import (
	"sort"
	"strings"
)

type NodeType int

const (
	ElementNode NodeType = iota
	TextNode
)

// Node is a single element or text node in the document tree.
type Node struct {
	Type       NodeType
	TagName    string
	Attributes map[string]string
	Text       string
	Children   []*Node
	Parent     *Node
	Owner      *Document // document the node belongs to; nil for detached trees
}

// Document is the root of a parsed page: the node tree plus the raw
// CSS and script sources collected from <style> and <script> tags.
type Document struct {
	Root        *Node
	Stylesheets []string
	Scripts     []string

	observers map[int]func(Mutation)
	nextObsID int
}

func NewDocument() *Document {
	doc := &Document{}
	doc.Root = &Node{
		Type:     ElementNode,
		TagName:  "document",
		Children: make([]*Node, 0),
		Owner:    doc,
	}
	return doc
}

// MutationKind distinguishes the two observable change categories:
// child-list changes (nodes added or removed) and attribute changes.
type MutationKind int

const (
	MutationChildList MutationKind = iota
	MutationAttribute
)

// Mutation describes one observed change to the tree.
type Mutation struct {
	Kind      MutationKind
	Target    *Node
	Attribute string // set for MutationAttribute
}

// Observe registers fn to be called synchronously on every tree mutation
// that flows through the Node mutators. The returned cancel detaches it.
func (d *Document) Observe(fn func(Mutation)) (cancel func()) {
	if d.observers == nil {
		d.observers = make(map[int]func(Mutation))
	}
	id := d.nextObsID
	d.nextObsID++
	d.observers[id] = fn
	return func() { delete(d.observers, id) }
}

func (d *Document) notify(m Mutation) {
	for _, fn := range d.observers {
		fn(m)
	}
}

// adopt attaches child to the owner document of its new parent, recursively,
// so that mutations anywhere in an adopted subtree reach the observers.
func (n *Node) adopt(child *Node) {
	child.Owner = n.Owner
	for _, c := range child.Children {
		child.adopt(c)
	}
}

func (n *Node) notifyMutation(m Mutation) {
	if n.Owner != nil {
		n.Owner.notify(m)
	}
}

func (n *Node) GetAttribute(name string) (string, bool) {
	if n.Attributes == nil {
		return "", false
	}
	val, ok := n.Attributes[name]
	return val, ok
}

// SetAttribute writes an attribute and notifies document observers.
// All attribute mutation in the engine goes through here so that the
// observation facility sees style/class rewrites.
func (n *Node) SetAttribute(name, value string) {
	if n.Attributes == nil {
		n.Attributes = make(map[string]string)
	}
	if old, ok := n.Attributes[name]; ok && old == value {
		return
	}
	n.Attributes[name] = value
	n.notifyMutation(Mutation{Kind: MutationAttribute, Target: n, Attribute: name})
}

// RemoveAttribute deletes an attribute, notifying observers if it existed.
func (n *Node) RemoveAttribute(name string) {
	if n.Attributes == nil {
		return
	}
	if _, ok := n.Attributes[name]; !ok {
		return
	}
	delete(n.Attributes, name)
	n.notifyMutation(Mutation{Kind: MutationAttribute, Target: n, Attribute: name})
}

// AddChild appends child and sets up the parent/owner relationship.
func (n *Node) AddChild(child *Node) {
	child.Parent = n
	n.adopt(child)
	n.Children = append(n.Children, child)
	n.notifyMutation(Mutation{Kind: MutationChildList, Target: n})
}

// AppendText creates a text node child. Empty text is dropped.
func (n *Node) AppendText(text string) {
	if text == "" {
		return
	}
	n.AddChild(&Node{Type: TextNode, Text: text})
}

// RemoveChild detaches child from this node and returns it, or nil if
// child is not one of this node's children.
func (n *Node) RemoveChild(child *Node) *Node {
	for i, c := range n.Children {
		if c == child {
			n.Children = append(n.Children[:i], n.Children[i+1:]...)
			child.Parent = nil
			n.notifyMutation(Mutation{Kind: MutationChildList, Target: n})
			return child
		}
	}
	return nil
}

// InsertBefore inserts newChild before refChild, appending when refChild
// is nil or not found. A parented newChild is detached first.
func (n *Node) InsertBefore(newChild, refChild *Node) *Node {
	if newChild.Parent != nil {
		newChild.Parent.RemoveChild(newChild)
	}
	if refChild == nil {
		n.AddChild(newChild)
		return newChild
	}
	for i, c := range n.Children {
		if c == refChild {
			n.Children = append(n.Children, nil)
			copy(n.Children[i+1:], n.Children[i:])
			n.Children[i] = newChild
			newChild.Parent = n
			n.adopt(newChild)
			n.notifyMutation(Mutation{Kind: MutationChildList, Target: n})
			return newChild
		}
	}
	n.AddChild(newChild)
	return newChild
}

// ReplaceChildren removes every child and installs the given nodes.
func (n *Node) ReplaceChildren(nodes ...*Node) {
	for _, c := range n.Children {
		c.Parent = nil
	}
	n.Children = n.Children[:0]
	for _, c := range nodes {
		c.Parent = n
		n.adopt(c)
		n.Children = append(n.Children, c)
	}
	n.notifyMutation(Mutation{Kind: MutationChildList, Target: n})
}

// IndexInParent returns this node's position among its parent's
// children, or -1 when detached.
func (n *Node) IndexInParent() int {
	if n.Parent == nil {
		return -1
	}
	for i, c := range n.Parent.Children {
		if c == n {
			return i
		}
	}
	return -1
}

// CloneNode copies the node and its attributes. With deep set, the
// whole subtree is copied. The clone starts detached and unowned.
func (n *Node) CloneNode(deep bool) *Node {
	clone := &Node{Type: n.Type, TagName: n.TagName, Text: n.Text}
	if n.Attributes != nil {
		clone.Attributes = make(map[string]string, len(n.Attributes))
		for k, v := range n.Attributes {
			clone.Attributes[k] = v
		}
	}
	if deep {
		for _, child := range n.Children {
			c := child.CloneNode(true)
			c.Parent = clone
			clone.Children = append(clone.Children, c)
		}
	}
	return clone
}

// Contains reports whether other is n or a descendant of n.
func (n *Node) Contains(other *Node) bool {
	if n == other {
		return true
	}
	for _, child := range n.Children {
		if child.Contains(other) {
			return true
		}
	}
	return false
}

// TextContent returns the concatenated text of the subtree.
func (n *Node) TextContent() string {
	if n.Type == TextNode {
		return n.Text
	}
	var sb strings.Builder
	for _, child := range n.Children {
		sb.WriteString(child.TextContent())
	}
	return sb.String()
}

// SetTextContent replaces all children with one text node.
func (n *Node) SetTextContent(text string) {
	for _, c := range n.Children {
		c.Parent = nil
	}
	n.Children = n.Children[:0]
	if text != "" {
		child := &Node{Type: TextNode, Text: text, Parent: n}
		n.adopt(child)
		n.Children = append(n.Children, child)
	}
	n.notifyMutation(Mutation{Kind: MutationChildList, Target: n})
}

// Serialize returns the innerHTML of the node: its children serialized,
// without the node's own tags.
func (n *Node) Serialize() string {
	var sb strings.Builder
	for _, child := range n.Children {
		serializeNode(&sb, child)
	}
	return sb.String()
}

// SerializeOuter returns the outerHTML of the node, including its own
// tags.
func (n *Node) SerializeOuter() string {
	var sb strings.Builder
	serializeNode(&sb, n)
	return sb.String()
}

func serializeNode(sb *strings.Builder, n *Node) {
	if n.Type == TextNode {
		sb.WriteString(escapeText(n.Text))
		return
	}
	sb.WriteByte('<')
	sb.WriteString(n.TagName)
	if len(n.Attributes) > 0 {
		keys := make([]string, 0, len(n.Attributes))
		for k := range n.Attributes {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			sb.WriteByte(' ')
			sb.WriteString(k)
			sb.WriteString(`="`)
			sb.WriteString(escapeAttr(n.Attributes[k]))
			sb.WriteByte('"')
		}
	}
	sb.WriteByte('>')
	if isVoidElement(n.TagName) {
		return
	}
	for _, child := range n.Children {
		serializeNode(sb, child)
	}
	sb.WriteString("</")
	sb.WriteString(n.TagName)
	sb.WriteByte('>')
}

func escapeText(s string) string {
	s = strings.ReplaceAll(s, "&", "&amp;")
	s = strings.ReplaceAll(s, "<", "&lt;")
	s = strings.ReplaceAll(s, ">", "&gt;")
	return s
}

func escapeAttr(s string) string {
	s = escapeText(s)
	return strings.ReplaceAll(s, `"`, "&quot;")
}

func isVoidElement(tag string) bool {
	switch tag {
	case "br", "hr", "img", "input", "meta", "link", "area", "base",
		"col", "embed", "param", "source", "track", "wbr":
		return true
	}
	return false
}
