package manifest

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"github.com/beevik/etree"

	"github.com/Infineon/mtb-manifest-checker/pkg/safeio"
)

// Rewrite parses the XML manifest at input, hands its root element to fn and
// writes a normalized copy to output: comments and whitespace-only text are
// dropped, CDATA sections kept, and the tree re-indented with two spaces. The
// copy is written even when fn fails; fn's error is returned in that case.
func Rewrite(input, output string, fn func(root *etree.Element) error) error {
	data, err := os.ReadFile(input)
	if err != nil {
		return &DocumentError{Path: input, Err: err}
	}

	doc := etree.NewDocument()
	doc.ReadSettings.PreserveCData = true
	if err := doc.ReadFromBytes(data); err != nil {
		return &DocumentError{Path: input, Err: fmt.Errorf("XML is not well-formed: %w", err)}
	}
	root := doc.Root()
	if root == nil {
		return &DocumentError{Path: input, Err: errors.New("no root element")}
	}
	stripTokens(&doc.Element)

	fnErr := fn(root)

	doc.Indent(2)
	if err := writeDocument(doc, output); err != nil {
		return errors.Join(fnErr, err)
	}
	return fnErr
}

// stripTokens removes comments and whitespace-only character data below e.
func stripTokens(e *etree.Element) {
	for i := len(e.Child) - 1; i >= 0; i-- {
		switch t := e.Child[i].(type) {
		case *etree.Comment:
			e.RemoveChildAt(i)
		case *etree.CharData:
			if !t.IsCData() && t.IsWhitespace() {
				e.RemoveChildAt(i)
			}
		case *etree.Element:
			stripTokens(t)
		}
	}
}

func writeDocument(doc *etree.Document, output string) error {
	var buf bytes.Buffer
	if _, err := doc.WriteTo(&buf); err != nil {
		return fmt.Errorf("failed to format XML: %w", err)
	}
	if err := safeio.EnsureParentDir(output); err != nil {
		return err
	}
	if err := safeio.WriteFilePreservePerms(output, buf.Bytes()); err != nil {
		return fmt.Errorf("failed to write %s: %w", output, err)
	}
	return nil
}
