package braintree

import (
	"bytes"
	"encoding/xml"
	"strings"

	"github.com/storebridge/braintree-checkout/internal/domain"
)

// Serialize renders a request document as compact XML. Nodes that carry
// neither text nor children are skipped entirely; the gateway's schema
// rejects empty optional tags.
func Serialize(doc *domain.Document) []byte {
	if doc == nil || doc.IsEmpty() {
		return nil
	}
	var buf bytes.Buffer
	writeNode(&buf, doc)
	return buf.Bytes()
}

func writeNode(buf *bytes.Buffer, node *domain.Document) {
	if node.IsEmpty() {
		return
	}
	buf.WriteByte('<')
	buf.WriteString(node.Name)
	if node.Type != domain.NodeTypeNone {
		buf.WriteString(` type="`)
		buf.WriteString(string(node.Type))
		buf.WriteByte('"')
	}
	buf.WriteByte('>')
	if len(node.Children) > 0 {
		for _, child := range node.Children {
			writeNode(buf, child)
		}
	} else {
		xml.EscapeText(buf, []byte(node.Text))
	}
	buf.WriteString("</")
	buf.WriteString(node.Name)
	buf.WriteByte('>')
}

type xmlNode struct {
	XMLName xml.Name
	Type    string    `xml:"type,attr"`
	Content string    `xml:",chardata"`
	Nodes   []xmlNode `xml:",any"`
}

// Parse converts a gateway XML document into a plain object tree. Tag names
// are camel-cased at hyphens ("first-name" becomes "firstName") and the root
// tag is included as the top-level key. A node whose type attribute is
// "array" or "collection" becomes a slice: of strings when its children are
// simple text leaves (arrays only), of objects otherwise. Leaf values stay
// verbatim strings; no type coercion happens here.
func Parse(data []byte) (map[string]interface{}, error) {
	var root xmlNode
	if err := xml.Unmarshal(data, &root); err != nil {
		return nil, domain.WrapError(domain.ErrorCodeParseError, "malformed gateway document", err)
	}
	result := make(map[string]interface{})
	result[camelKey(root.XMLName.Local)] = parseNode(root)
	return result, nil
}

func parseNode(node xmlNode) interface{} {
	if len(node.Nodes) == 0 {
		return node.Content
	}

	if node.Type == "array" || node.Type == "collection" {
		items := make([]interface{}, 0, len(node.Nodes))
		if node.Type == "array" && len(node.Nodes[0].Nodes) == 0 {
			for _, child := range node.Nodes {
				items = append(items, child.Content)
			}
			return items
		}
		for _, child := range node.Nodes {
			items = append(items, parseNode(child))
		}
		return items
	}

	obj := make(map[string]interface{}, len(node.Nodes))
	for _, child := range node.Nodes {
		obj[camelKey(child.XMLName.Local)] = parseNode(child)
	}
	return obj
}

func camelKey(name string) string {
	parts := strings.Split(name, "-")
	if len(parts) == 1 {
		return name
	}
	var b strings.Builder
	b.WriteString(parts[0])
	for _, part := range parts[1:] {
		if part == "" {
			continue
		}
		b.WriteString(strings.ToUpper(part[:1]))
		b.WriteString(part[1:])
	}
	return b.String()
}
