package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/kbukum/sseclient/session"
)

// printer writes one line per event. It is called from the session's
// delivery goroutine only.
type printer struct {
	out  io.Writer
	json bool
}

func newPrinter(out io.Writer, jsonLines bool) *printer {
	return &printer{out: out, json: jsonLines}
}

func (p *printer) print(e session.Event) {
	if p.json {
		if len(e.Raw) == 0 {
			return
		}
		fmt.Fprintf(p.out, "%s\n", e.Raw)
		return
	}
	fmt.Fprintln(p.out, formatEvent(e))
}

// formatEvent renders an event as "type[/subType] [code=N] [id=ID] message".
func formatEvent(e session.Event) string {
	var b strings.Builder
	b.WriteString(e.Type)
	if e.SubType != "" {
		b.WriteString("/")
		b.WriteString(e.SubType)
	}
	if e.Code != 0 {
		fmt.Fprintf(&b, " code=%d", e.Code)
	}
	if e.ID != "" {
		fmt.Fprintf(&b, " id=%s", e.ID)
	}
	if e.Message != "" {
		b.WriteString(" ")
		b.WriteString(e.Message)
	}
	return b.String()
}
