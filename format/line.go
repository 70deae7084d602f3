package format

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/dhamidi/pegcss/workspace"
)

// LineEncoder writes one tab-separated line per file:
//
//	path	ok	consumed
//	path	fail	line:column	rule	"character"
type LineEncoder struct {
	w    io.Writer
	file *workspace.FileInfo
}

func NewLineEncoder(w io.Writer) *LineEncoder {
	return &LineEncoder{w: w}
}

func (e *LineEncoder) Encode(file *workspace.FileInfo) error {
	e.file = file
	text, err := e.MarshalText()
	if err != nil {
		return err
	}
	_, err = e.w.Write(text)
	return err
}

func (e *LineEncoder) MarshalText() ([]byte, error) {
	var sb strings.Builder
	f := e.file

	path := f.Path
	if path == "" {
		path = "-"
	}

	if f.OK {
		fmt.Fprintf(&sb, "%s\tok\t%d\n", path, f.Consumed)
		return []byte(sb.String()), nil
	}

	d := f.Diagnostic
	if d == nil {
		fmt.Fprintf(&sb, "%s\tfail\t-\t-\t-\n", path)
		return []byte(sb.String()), nil
	}
	rule := "-"
	if d.Rule != nil {
		rule = d.Rule.Name
	}
	fmt.Fprintf(&sb, "%s\tfail\t%d:%d\t%s\t%s\n", path, d.Line, d.Column, rule, strconv.Quote(d.Character()))
	return []byte(sb.String()), nil
}
