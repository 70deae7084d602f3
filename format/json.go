package format

import (
	"encoding/json"
	"io"

	"github.com/dhamidi/pegcss/workspace"
)

type JSONEncoder struct {
	w    io.Writer
	file *workspace.FileInfo
}

func NewJSONEncoder(w io.Writer) *JSONEncoder {
	return &JSONEncoder{w: w}
}

func (e *JSONEncoder) Encode(file *workspace.FileInfo) error {
	e.file = file
	text, err := e.MarshalText()
	if err != nil {
		return err
	}
	if _, err := e.w.Write(text); err != nil {
		return err
	}
	_, err = io.WriteString(e.w, "\n")
	return err
}

func (e *JSONEncoder) MarshalText() ([]byte, error) {
	return json.MarshalIndent(e.buildFileData(), "", "  ")
}

type jsonFile struct {
	Path     string       `json:"path,omitempty"`
	OK       bool         `json:"ok"`
	Consumed int          `json:"consumed"`
	Failure  *jsonFailure `json:"failure,omitempty"`
	Stats    jsonStats    `json:"stats"`
}

type jsonFailure struct {
	Rule      string `json:"rule,omitempty"`
	Rendered  string `json:"rendered,omitempty"`
	Offset    int    `json:"offset"`
	Line      int    `json:"line"`
	Column    int    `json:"column"`
	Character string `json:"character"`
	Source    string `json:"source"`
	Message   string `json:"message"`
}

type jsonStats struct {
	Entries     int `json:"entries"`
	Hits        int `json:"hits"`
	Evaluations int `json:"evaluations"`
	Growths     int `json:"growths"`
}

func (e *JSONEncoder) buildFileData() jsonFile {
	f := e.file
	data := jsonFile{
		Path:     f.Path,
		OK:       f.OK,
		Consumed: f.Consumed,
		Stats: jsonStats{
			Entries:     f.Stats.Entries,
			Hits:        f.Stats.Hits,
			Evaluations: f.Stats.Evaluations,
			Growths:     f.Stats.Growths,
		},
	}
	if !f.OK && f.Diagnostic != nil {
		d := f.Diagnostic
		data.Failure = &jsonFailure{
			Offset:    d.Offset,
			Line:      d.Line,
			Column:    d.Column,
			Character: d.Character(),
			Source:    d.Source,
			Message:   d.Message(),
		}
		if d.Rule != nil {
			data.Failure.Rule = d.Rule.Name
			data.Failure.Rendered = d.Rule.Rendered
		}
	}
	return data
}
