// Package format renders check results for the command line.
package format

import (
	"encoding"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/dhamidi/pegcss/workspace"
)

type Encoder interface {
	encoding.TextMarshaler
	Encode(file *workspace.FileInfo) error
}

// NewEncoder returns the encoder registered under name: "text", "line"
// or "json".
func NewEncoder(name string, w io.Writer) (Encoder, error) {
	switch name {
	case "", "text":
		return NewTextEncoder(w), nil
	case "line":
		return NewLineEncoder(w), nil
	case "json":
		return NewJSONEncoder(w), nil
	default:
		return nil, fmt.Errorf("unknown format %q", name)
	}
}

// TextEncoder prints PARSED for a file that matched, or a report that
// points at the farthest failure:
//
//	a.css:
//	On line 1, column 11:
//	Failed to match '<rendered rule>' (rule '<name>')
//	Got: "}"
//	=> a { color }
//	             ^
type TextEncoder struct {
	w    io.Writer
	file *workspace.FileInfo
}

func NewTextEncoder(w io.Writer) *TextEncoder {
	return &TextEncoder{w: w}
}

func (e *TextEncoder) Encode(file *workspace.FileInfo) error {
	e.file = file
	text, err := e.MarshalText()
	if err != nil {
		return err
	}
	_, err = e.w.Write(text)
	return err
}

func (e *TextEncoder) MarshalText() ([]byte, error) {
	var sb strings.Builder
	f := e.file

	if f.OK {
		if f.Path != "" {
			fmt.Fprintf(&sb, "%s: ", f.Path)
		}
		sb.WriteString("PARSED\n")
		return []byte(sb.String()), nil
	}

	if f.Path != "" {
		fmt.Fprintf(&sb, "%s:\n", f.Path)
	}
	d := f.Diagnostic
	if d == nil {
		sb.WriteString("Failed to match\n")
		return []byte(sb.String()), nil
	}

	fmt.Fprintf(&sb, "On line %d, column %d:\n", d.Line, d.Column)
	if d.Rule != nil {
		fmt.Fprintf(&sb, "Failed to match '%s' (rule '%s')\n", d.Rule.Rendered, d.Rule.Name)
	} else {
		sb.WriteString("Failed to match\n")
	}
	fmt.Fprintf(&sb, "Got: %s\n", strconv.Quote(d.Character()))

	source, caret, _ := strings.Cut(d.Caret(), "\n")
	fmt.Fprintf(&sb, "=> %s\n   %s\n", source, caret)
	return []byte(sb.String()), nil
}
