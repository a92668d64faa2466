package cli

import (
	"fmt"
	"io"

	"github.com/goccy/go-json"
)

// output writes command results as JSON or text.
type output struct {
	format string
	w      io.Writer
}

func newOutput(format string, w io.Writer) *output {
	return &output{format: format, w: w}
}

// emit writes v as indented JSON in json mode, and calls text otherwise.
func (o *output) emit(v any, text func(w io.Writer) error) error {
	if o.format == "json" {
		data, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return fmt.Errorf("encode output: %w", err)
		}
		_, err = fmt.Fprintln(o.w, string(data))
		return err
	}
	return text(o.w)
}

// compact renders v as single-line JSON for text output.
func compact(v any) string {
	if v == nil {
		return "null"
	}
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(data)
}
