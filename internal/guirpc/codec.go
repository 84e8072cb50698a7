// Package guirpc implements the client side of the BOINC GUI RPC protocol:
// the XML wire codec, the authenticated session, and the typed domain model
// the rest of the system consumes.
//
// The wire format carries no type metadata, so decoding is driven by the
// target shape: every domain type has an explicit tag table mapping child
// element names to typed setters. Unknown tags are ignored, missing tags
// leave the field at its declared default.
package guirpc

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// MalformedPayloadError reports a reply that could not be parsed as
// well-formed XML. It is scoped to the single operation that received the
// payload; the session remains usable.
type MalformedPayloadError struct {
	Err error
}

func (e *MalformedPayloadError) Error() string {
	return fmt.Sprintf("malformed GUI RPC payload: %v", e.Err)
}

func (e *MalformedPayloadError) Unwrap() error {
	return e.Err
}

// Element is one node of a parsed reply tree. Text holds the element's own
// character data; Children holds sub-elements in document order.
type Element struct {
	Tag      string
	Text     string
	Children []*Element
}

// Find returns the first child with the given tag, or nil.
func (e *Element) Find(tag string) *Element {
	for _, c := range e.Children {
		if c.Tag == tag {
			return c
		}
	}
	return nil
}

// ParseElement parses a single XML fragment into an Element tree. Any parse
// failure is reported as a MalformedPayloadError.
func ParseElement(data []byte) (*Element, error) {
	decoder := xml.NewDecoder(bytes.NewReader(data))
	// Replies from old clients are not always valid UTF-8.
	decoder.CharsetReader = func(charset string, input io.Reader) (io.Reader, error) {
		return input, nil
	}

	var root *Element
	var stack []*Element

	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, &MalformedPayloadError{Err: err}
		}

		switch t := tok.(type) {
		case xml.StartElement:
			elem := &Element{Tag: t.Name.Local}
			if len(stack) == 0 {
				if root != nil {
					return nil, &MalformedPayloadError{Err: fmt.Errorf("multiple root elements, second is <%s>", elem.Tag)}
				}
				root = elem
			} else {
				parent := stack[len(stack)-1]
				parent.Children = append(parent.Children, elem)
			}
			stack = append(stack, elem)
		case xml.EndElement:
			if len(stack) == 0 {
				return nil, &MalformedPayloadError{Err: fmt.Errorf("unexpected closing tag </%s>", t.Name.Local)}
			}
			stack = stack[:len(stack)-1]
		case xml.CharData:
			if len(stack) > 0 {
				stack[len(stack)-1].Text += string(t)
			}
		}
	}

	if root == nil {
		return nil, &MalformedPayloadError{Err: fmt.Errorf("empty payload")}
	}
	if len(stack) != 0 {
		return nil, &MalformedPayloadError{Err: fmt.Errorf("unclosed element <%s>", stack[len(stack)-1].Tag)}
	}
	return root, nil
}

// boolText decodes wire booleans: a self-closed or blank element means true,
// "0" and "false" (any case) mean false, anything else non-empty means true.
func boolText(e *Element) bool {
	text := strings.TrimSpace(e.Text)
	if text == "" {
		return true
	}
	lower := strings.ToLower(text)
	return lower != "0" && lower != "false"
}

// intText decodes wire integers. The core client sometimes renders integers
// with a decimal point, so parse as float and truncate.
func intText(e *Element) int {
	text := strings.TrimSpace(e.Text)
	if text == "" {
		return 0
	}
	f, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return 0
	}
	return int(f)
}

func floatText(e *Element) float64 {
	text := strings.TrimSpace(e.Text)
	if text == "" {
		return 0.0
	}
	f, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return 0.0
	}
	return f
}

func strText(e *Element) string {
	return strings.TrimSpace(e.Text)
}
