package markup

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/antchfx/xmlquery"
)

// DocumentName is the name given to the synthetic node wrapping the root
// element of a parsed document.
const DocumentName = "#document"

// ErrInvalidMarkup is wrapped by every error Parse returns. The input is not
// a well-formed document, so reading it again gives the same result.
var ErrInvalidMarkup = errors.New("invalid markup")

// Parse converts XML text into a Node tree. The returned node is the document
// itself; the root element is its only child.
func Parse(data []byte) (*Node, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, fmt.Errorf("%w: document is empty", ErrInvalidMarkup)
	}

	doc, err := xmlquery.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidMarkup, err)
	}

	root := NewNode(DocumentName)
	for c := doc.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == xmlquery.ElementNode {
			root.Add(convert(c))
		}
	}

	if !root.HasChildren() {
		return nil, fmt.Errorf("%w: document has no root element", ErrInvalidMarkup)
	}

	return root, nil
}

func convert(n *xmlquery.Node) *Node {
	node := NewNode(n.Data)
	node.source = n

	for _, attr := range n.Attr {
		node.Attrs[attr.Name.Local] = strings.TrimSpace(attr.Value)
	}

	var text strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		switch c.Type {
		case xmlquery.ElementNode:
			node.Add(convert(c))
		case xmlquery.TextNode, xmlquery.CharDataNode:
			text.WriteString(c.Data)
		}
	}

	node.Text = strings.TrimSpace(text.String())

	return node
}
