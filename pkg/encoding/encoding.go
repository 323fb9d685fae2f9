// Package encoding converts evaluation results to interchange formats.
//
// A Document holds a tensor as row-major (re, im) pairs plus its shape and
// kind. It is the shared structure behind the JSON and msgpack encodings.
package encoding

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/thomasrohde/dirac/pkg/evaluator"
	"github.com/thomasrohde/dirac/pkg/tensor"
)

// Document is the serialized form of a value.
type Document struct {
	Kind  string       `json:"kind" msgpack:"kind"`
	Shape [2]int       `json:"shape" msgpack:"shape"`
	Data  [][2]float64 `json:"data" msgpack:"data"`
}

// FromValue builds the document for v.
func FromValue(v *evaluator.Value) Document {
	s := v.Shape()
	data := v.Tensor.Data()
	doc := Document{
		Kind:  v.Kind.String(),
		Shape: [2]int{s.Rows, s.Cols},
		Data:  make([][2]float64, len(data)),
	}
	for i, c := range data {
		doc.Data[i] = [2]float64{real(c), imag(c)}
	}
	return doc
}

// Value reconstructs the value described by d.
func (d Document) Value() (*evaluator.Value, error) {
	kind, err := evaluator.ParseKind(d.Kind)
	if err != nil {
		return nil, fmt.Errorf("encoding: %w", err)
	}
	data := make([]complex128, len(d.Data))
	for i, p := range d.Data {
		data[i] = complex(p[0], p[1])
	}
	t, err := tensor.New(data, tensor.Shape{Rows: d.Shape[0], Cols: d.Shape[1]})
	if err != nil {
		return nil, fmt.Errorf("encoding: %w", err)
	}
	return &evaluator.Value{Tensor: t, Kind: kind}, nil
}

// MarshalJSON encodes v as a JSON document.
func MarshalJSON(v *evaluator.Value) ([]byte, error) {
	return json.Marshal(FromValue(v))
}

// UnmarshalJSON decodes a JSON document.
func UnmarshalJSON(b []byte) (*evaluator.Value, error) {
	var d Document
	if err := json.Unmarshal(b, &d); err != nil {
		return nil, fmt.Errorf("encoding: decode json: %w", err)
	}
	return d.Value()
}

// MarshalMsgpack encodes v as a msgpack document.
func MarshalMsgpack(v *evaluator.Value) ([]byte, error) {
	return msgpack.Marshal(FromValue(v))
}

// UnmarshalMsgpack decodes a msgpack document.
func UnmarshalMsgpack(b []byte) (*evaluator.Value, error) {
	var d Document
	if err := msgpack.Unmarshal(b, &d); err != nil {
		return nil, fmt.Errorf("encoding: decode msgpack: %w", err)
	}
	return d.Value()
}

// Text renders one element per line in row-major order.
func Text(v *evaluator.Value) string {
	data := v.Tensor.Data()
	lines := make([]string, len(data))
	for i, c := range data {
		lines[i] = tensor.FormatComplex(c)
	}
	return strings.Join(lines, "\n")
}

// WriteTable renders v as a grid with one column per tensor column.
func WriteTable(w io.Writer, v *evaluator.Value) {
	s := v.Shape()
	table := tablewriter.NewWriter(w)
	header := make([]string, s.Cols)
	for j := range header {
		header[j] = fmt.Sprintf("%d", j)
	}
	table.SetHeader(header)
	table.SetAutoFormatHeaders(false)
	table.SetAlignment(tablewriter.ALIGN_RIGHT)
	for i := 0; i < s.Rows; i++ {
		row := make([]string, s.Cols)
		for j := range row {
			row[j] = tensor.FormatComplex(v.Tensor.At(i, j))
		}
		table.Append(row)
	}
	table.SetCaption(true, fmt.Sprintf("%s %s", v.Kind, s))
	table.Render()
}

// Formats lists the names accepted by Write.
var Formats = []string{"text", "json", "table", "msgpack"}

// Write encodes v to w in the named format.
func Write(w io.Writer, format string, v *evaluator.Value) error {
	switch format {
	case "", "text":
		_, err := fmt.Fprintln(w, Text(v))
		return err
	case "json":
		b, err := MarshalJSON(v)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, string(b))
		return err
	case "msgpack":
		b, err := MarshalMsgpack(v)
		if err != nil {
			return err
		}
		_, err = w.Write(b)
		return err
	case "table":
		WriteTable(w, v)
		return nil
	}
	return fmt.Errorf("encoding: unknown format %q (want one of %s)", format, strings.Join(Formats, ", "))
}
