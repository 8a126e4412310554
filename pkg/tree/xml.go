package tree

import (
	"encoding/xml"
	"fmt"
	"io"
)

// WriteXML writes root and its descendants as indented XML. Element names
// are node kinds, attributes are node attributes.
func WriteXML(w io.Writer, root *Node) error {
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")

	if err := encodeNode(enc, root); err != nil {
		return fmt.Errorf("encode %s: %w", root, err)
	}
	if err := enc.Flush(); err != nil {
		return err
	}
	_, err := io.WriteString(w, "\n")
	return err
}

func encodeNode(enc *xml.Encoder, n *Node) error {
	start := xml.StartElement{Name: xml.Name{Local: n.Kind}}
	for _, a := range n.Attrs {
		start.Attr = append(start.Attr, xml.Attr{Name: xml.Name{Local: a.Name}, Value: a.Value})
	}
	if err := enc.EncodeToken(start); err != nil {
		return err
	}
	for _, c := range n.Children {
		if err := encodeNode(enc, c); err != nil {
			return err
		}
	}
	return enc.EncodeToken(start.End())
}
