package tweakfile

import (
	"fmt"
	"io"
	"os"
	"slices"
	"strings"
	"unicode"

	"github.com/Gaming32/syntax-tweaker/internal/errors"
	"github.com/Gaming32/syntax-tweaker/internal/signature"
	"github.com/Gaming32/syntax-tweaker/internal/tweaks"
)

// Format selects the layout the writer produces.
type Format struct {
	// Indent is the unit of indentation for the pretty form. It must be blank.
	Indent string
	// Minify writes everything on one line and ignores Indent.
	Minify bool
}

var (
	// Pretty is the canonical multi-line form.
	Pretty = Format{Indent: "    "}
	// Minified is the canonical single-line form.
	Minified = Format{Minify: true}
)

var keywords = map[string]struct{}{
	"package": {},
	"class":   {},
	"member":  {},
}

// WriteString renders the set in the given format.
func WriteString(s *tweaks.Set, f Format) (string, error) {
	var b strings.Builder
	if err := Write(&b, s, f); err != nil {
		return "", err
	}
	return b.String(), nil
}

// WriteFile renders the set to path.
func WriteFile(path string, s *tweaks.Set, f Format) error {
	out, err := WriteString(s, f)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, []byte(out), 0644); err != nil {
		return errors.Wrap(errors.IO, "writing "+path, err)
	}
	return nil
}

// Write renders the set to w.
func Write(w io.Writer, s *tweaks.Set, f Format) error {
	if !f.Minify && strings.TrimSpace(f.Indent) != "" {
		return errors.Newf(errors.Config, "Indent %q is not blank", f.Indent)
	}
	wr := &writer{pretty: !f.Minify, indent: f.Indent}
	wr.set(s)
	_, err := io.WriteString(w, wr.b.String())
	return err
}

type writer struct {
	b      strings.Builder
	pretty bool
	indent string
}

func (w *writer) set(s *tweaks.Set) {
	wroteSomething := false

	for _, e := range s.Metadata() {
		wroteSomething = true
		w.str(e.Key)
		if e.Value != "" {
			if w.pretty {
				w.b.WriteString(" = ")
			} else {
				w.b.WriteByte('=')
			}
			w.str(e.Value)
		}
		w.endLine(';')
	}

	for _, p := range s.Packages() {
		if wroteSomething {
			w.blankLine()
		}
		wroteSomething = true
		w.b.WriteString("package ")
		w.str(p.Name)
		w.open()
		for _, t := range p.Tweaks {
			w.tweak(t, w.indent)
		}
		w.endLine('}')
	}

	deepIndent := strings.Repeat(w.indent, 2)
	for _, c := range s.Classes() {
		if wroteSomething {
			w.blankLine()
		}
		wroteSomething = true
		w.b.WriteString("class ")
		w.str(c.Name)
		w.open()
		wroteInner := false
		for _, t := range c.Tweaks {
			wroteInner = true
			w.tweak(t, w.indent)
		}
		for _, m := range c.Members() {
			if wroteInner {
				w.blankLine()
			}
			wroteInner = true
			if w.pretty {
				w.b.WriteString(w.indent)
			}
			w.b.WriteString("member ")
			w.member(m.Member)
			w.open()
			for _, t := range m.Tweaks {
				w.tweak(t, deepIndent)
			}
			if w.pretty {
				w.b.WriteString(w.indent)
			}
			w.endLine('}')
		}
		w.endLine('}')
	}
}

func (w *writer) member(m signature.MemberReference) {
	method, ok := m.Type.(signature.Method)
	if !ok {
		w.str(m.Type.String())
		w.b.WriteByte(' ')
		w.str(m.Name)
		return
	}
	if method.Return != nil {
		w.str(method.Return.String())
		w.b.WriteByte(' ')
	}
	w.str(m.Name)
	w.b.WriteByte('(')
	for i, p := range method.Params {
		if i > 0 {
			if w.pretty {
				w.b.WriteString(", ")
			} else {
				w.b.WriteByte(',')
			}
		}
		w.str(p.String())
	}
	w.b.WriteByte(')')
}

func (w *writer) tweak(t tweaks.Tweak, indent string) {
	id := t.ID()
	if id == "" {
		return
	}
	if w.pretty {
		w.b.WriteString(indent)
	}
	w.str(id)
	for _, arg := range t.SerializeArgs() {
		w.b.WriteByte(' ')
		w.str(arg)
	}
	named := t.SerializeNamedArgs()
	keys := make([]string, 0, len(named))
	for k := range named {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		w.b.WriteByte(' ')
		w.str(k)
		w.b.WriteByte('=')
		w.str(named[k])
	}
	w.endLine(';')
}

func (w *writer) open() {
	if w.pretty {
		w.b.WriteString(" {\n")
	} else {
		w.b.WriteByte('{')
	}
}

func (w *writer) endLine(c byte) {
	w.b.WriteByte(c)
	if w.pretty {
		w.b.WriteByte('\n')
	}
}

func (w *writer) blankLine() {
	if w.pretty {
		w.b.WriteByte('\n')
	}
}

func (w *writer) str(s string) {
	if needsQuoting(s) {
		w.b.WriteString(quote(s))
	} else {
		w.b.WriteString(s)
	}
}

func needsQuoting(s string) bool {
	if s == "" {
		return true
	}
	if _, ok := keywords[s]; ok {
		return true
	}
	for _, r := range s {
		if r < ' ' || r >= 127 || isPunct(r) || unicode.IsSpace(r) {
			return true
		}
		switch r {
		case '\'', '"', '/':
			return true
		}
	}
	return false
}

// quote renders s as a string literal using the escapes the tokenizer accepts.
func quote(s string) string {
	var b strings.Builder
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\b':
			b.WriteString(`\b`)
		case '\f':
			b.WriteString(`\f`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		default:
			if r < ' ' {
				fmt.Fprintf(&b, `\u%04x`, r)
			} else {
				b.WriteRune(r)
			}
		}
	}
	b.WriteByte('"')
	return b.String()
}
