package domain

// NodeType annotates a document node with the gateway's wire type attribute.
type NodeType string

const (
	NodeTypeNone     NodeType = ""
	NodeTypeBoolean  NodeType = "boolean"
	NodeTypeInteger  NodeType = "integer"
	NodeTypeDatetime NodeType = "datetime"
	NodeTypeArray    NodeType = "array"
)

// Document is one node of a transaction request tree. A node is either a leaf
// (Text set, no Children) or a container (Children set). Optional subtrees are
// simply never attached; the serializer emits exactly what is present, so an
// omitted block can never surface as an empty tag on the wire.
type Document struct {
	Name     string
	Type     NodeType
	Text     string
	Children []*Document
}

// NewDocument creates a container node with the given tag name.
func NewDocument(name string) *Document {
	return &Document{Name: name}
}

// Add appends a child container node and returns it for chained building.
func (d *Document) Add(name string) *Document {
	child := &Document{Name: name}
	d.Children = append(d.Children, child)
	return child
}

// AddText appends a leaf node. Empty values are dropped so callers can pass
// through optional fields without guarding every one.
func (d *Document) AddText(name, value string) *Document {
	if value == "" {
		return d
	}
	d.Children = append(d.Children, &Document{Name: name, Text: value})
	return d
}

// AddBool appends a boolean-typed leaf node.
func (d *Document) AddBool(name string, value bool) *Document {
	text := "false"
	if value {
		text = "true"
	}
	d.Children = append(d.Children, &Document{Name: name, Type: NodeTypeBoolean, Text: text})
	return d
}

// AddInt appends an integer-typed leaf node.
func (d *Document) AddInt(name, value string) *Document {
	if value == "" {
		return d
	}
	d.Children = append(d.Children, &Document{Name: name, Type: NodeTypeInteger, Text: value})
	return d
}

// AddChild attaches an already-built subtree. Nil and empty containers are
// ignored so conditional blocks can be assembled independently.
func (d *Document) AddChild(child *Document) *Document {
	if child == nil {
		return d
	}
	if child.Text == "" && len(child.Children) == 0 {
		return d
	}
	d.Children = append(d.Children, child)
	return d
}

// Find returns the first direct child with the given name, or nil.
func (d *Document) Find(name string) *Document {
	for _, child := range d.Children {
		if child.Name == name {
			return child
		}
	}
	return nil
}

// IsEmpty reports whether the node carries neither text nor children.
func (d *Document) IsEmpty() bool {
	return d.Text == "" && len(d.Children) == 0
}

// Request pairs a request document with the gateway endpoint it targets.
type Request struct {
	Method string
	Path   string
	Body   *Document
}
