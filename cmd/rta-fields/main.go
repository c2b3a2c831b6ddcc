// Command rta-fields lists the interactive fields of a PDF form. It is used to
// inspect company templates when the field-name mapping needs updating.
package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/pflag"

	"github.com/autorta/rta-filler/internal/pdf/form"
)

const (
	formatText = "text"
	formatJSON = "json"
)

type report struct {
	File   string            `json:"file"`
	Info   form.TemplateInfo `json:"info"`
	Fields []form.Field      `json:"fields"`
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run executes the command and returns the process exit code
func run(args []string, stdout, stderr io.Writer) int {
	fs := pflag.NewFlagSet("rta-fields", pflag.ContinueOnError)
	fs.SetOutput(stderr)
	format := fs.StringP("format", "f", formatText, "Output format: text, json")
	maxMB := fs.Int("max-mb", 50, "Maximum accepted file size in megabytes")
	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: rta-fields [options] <file.pdf>\n\nOptions:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return 0
		}
		return 2
	}
	if fs.NArg() != 1 {
		fmt.Fprintf(stderr, "Error: exactly one PDF file path required\n\n")
		fs.Usage()
		return 2
	}
	if *format != formatText && *format != formatJSON {
		fmt.Fprintf(stderr, "Error: unknown format %q\n", *format)
		return 2
	}

	path := fs.Arg(0)
	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	rep, err := inspect(path, data, int64(*maxMB)*1024*1024)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %s: %v\n", path, err)
		return 1
	}

	if *format == formatJSON {
		err = writeJSON(stdout, rep)
	} else {
		err = writeText(stdout, rep)
	}
	if err != nil {
		fmt.Fprintf(stderr, "Error writing output: %v\n", err)
		return 1
	}
	return 0
}

func inspect(path string, data []byte, maxSize int64) (*report, error) {
	info, err := form.NewValidator(maxSize).Validate(data)
	if err != nil {
		return nil, err
	}
	fields, err := form.ReadFields(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	return &report{File: path, Info: *info, Fields: fields}, nil
}

func writeJSON(w io.Writer, rep *report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(rep)
}

func writeText(w io.Writer, rep *report) error {
	fmt.Fprintf(w, "%s: %d pages, %d fields\n\n", rep.File, rep.Info.Pages, rep.Info.Fields)

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "PAGE\tNAME\tTYPE\tVALUE\tFLAGS\tSTATES")
	for _, f := range rep.Fields {
		value := f.Value
		if f.Type == form.FieldTypeCheckbox || f.Type == form.FieldTypeRadio {
			value = fmt.Sprintf("%t", f.Checked)
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\n",
			f.Page, f.Name, f.Type, value, fieldFlags(f), strings.Join(f.States, ","))
	}
	return tw.Flush()
}

func fieldFlags(f form.Field) string {
	var flags []string
	if f.ReadOnly {
		flags = append(flags, "ro")
	}
	if f.Required {
		flags = append(flags, "req")
	}
	if len(flags) == 0 {
		return "-"
	}
	return strings.Join(flags, ",")
}
