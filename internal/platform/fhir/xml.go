package fhir

import (
	"bytes"
	"encoding/json"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/cce/oncogen/pkg/fhirmodels"
)

// field is one member of a JSON object, kept in document order.
type field struct {
	name  string
	value interface{}
}

type object []field

// MarshalXML renders a resource in the FHIR XML format. The JSON form is the
// source of truth: objects become elements, primitives become value
// attributes, arrays repeat their element and nested resources are wrapped
// in an element named after their resourceType.
func MarshalXML(r Resource) ([]byte, error) {
	var buf bytes.Buffer
	if err := EncodeXML(&buf, r); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// EncodeXML writes the FHIR XML form of r to w.
func EncodeXML(w io.Writer, r Resource) error {
	raw, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", r.GetResourceType(), err)
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	root, err := decodeOrdered(dec)
	if err != nil {
		return fmt.Errorf("decode %s: %w", r.GetResourceType(), err)
	}
	obj, ok := root.(object)
	if !ok {
		return errors.New("resource is not a JSON object")
	}

	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := writeResource(enc, obj, true); err != nil {
		return err
	}
	return enc.Flush()
}

func decodeOrdered(dec *json.Decoder) (interface{}, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			var obj object
			for dec.More() {
				keyTok, err := dec.Token()
				if err != nil {
					return nil, err
				}
				key, ok := keyTok.(string)
				if !ok {
					return nil, fmt.Errorf("unexpected object key %v", keyTok)
				}
				val, err := decodeOrdered(dec)
				if err != nil {
					return nil, err
				}
				obj = append(obj, field{name: key, value: val})
			}
			if _, err := dec.Token(); err != nil {
				return nil, err
			}
			return obj, nil
		case '[':
			var arr []interface{}
			for dec.More() {
				val, err := decodeOrdered(dec)
				if err != nil {
					return nil, err
				}
				arr = append(arr, val)
			}
			if _, err := dec.Token(); err != nil {
				return nil, err
			}
			return arr, nil
		}
		return nil, fmt.Errorf("unexpected delimiter %v", t)
	default:
		return t, nil
	}
}

func (o object) resourceType() string {
	for _, f := range o {
		if f.name == "resourceType" {
			s, _ := f.value.(string)
			return s
		}
	}
	return ""
}

func writeResource(enc *xml.Encoder, obj object, root bool) error {
	rt := obj.resourceType()
	if rt == "" {
		return errors.New("nested resource without resourceType")
	}
	start := xml.StartElement{Name: xml.Name{Local: rt}}
	if root {
		start.Attr = []xml.Attr{{Name: xml.Name{Local: "xmlns"}, Value: fhirmodels.FHIRNamespace}}
	}
	if err := enc.EncodeToken(start); err != nil {
		return err
	}
	if err := writeFields(enc, obj); err != nil {
		return err
	}
	return enc.EncodeToken(start.End())
}

func writeFields(enc *xml.Encoder, obj object) error {
	for _, f := range obj {
		if f.name == "resourceType" {
			continue
		}
		items, isArray := f.value.([]interface{})
		if !isArray {
			items = []interface{}{f.value}
		}
		for _, item := range items {
			if err := writeElement(enc, f.name, item); err != nil {
				return err
			}
		}
	}
	return nil
}

func writeElement(enc *xml.Encoder, name string, value interface{}) error {
	start := xml.StartElement{Name: xml.Name{Local: name}}

	switch v := value.(type) {
	case object:
		if err := enc.EncodeToken(start); err != nil {
			return err
		}
		if v.resourceType() != "" {
			if err := writeResource(enc, v, false); err != nil {
				return err
			}
		} else if err := writeFields(enc, v); err != nil {
			return err
		}
		return enc.EncodeToken(start.End())
	case nil:
		return nil
	}

	if name == "div" {
		s, _ := value.(string)
		return copyXHTML(enc, s)
	}

	start.Attr = []xml.Attr{{Name: xml.Name{Local: "value"}, Value: primitiveString(value)}}
	if err := enc.EncodeToken(start); err != nil {
		return err
	}
	return enc.EncodeToken(start.End())
}

func primitiveString(v interface{}) string {
	switch p := v.(type) {
	case string:
		return p
	case json.Number:
		return p.String()
	case bool:
		if p {
			return "true"
		}
		return "false"
	default:
		return fmt.Sprint(p)
	}
}

// copyXHTML re-emits a narrative div verbatim as XML tokens.
func copyXHTML(enc *xml.Encoder, div string) error {
	dec := xml.NewDecoder(strings.NewReader(div))
	for {
		tok, err := dec.RawToken()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("narrative div: %w", err)
		}
		if err := enc.EncodeToken(xml.CopyToken(tok)); err != nil {
			return err
		}
	}
}
