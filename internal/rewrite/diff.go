package rewrite

import (
	"bytes"
	"fmt"
	"sort"
	"strings"

	godiff "github.com/sourcegraph/go-diff/diff"
)

// ContextLines is the number of unchanged lines around each hunk.
const ContextLines = 3

const noNewline = "\\ No newline at end of file\n"

// region is a run of original lines [lo, hi] touched by edits.
type region struct {
	lo, hi int
	edits  []Edit
}

// UnifiedDiff renders the edits in res as a unified diff of name. The
// hunks come straight from the edit spans, so no line matching is done.
// It returns "" when the text did not change.
func UnifiedDiff(name string, original []byte, res *Result) (string, error) {
	if res == nil || !res.Changed {
		return "", nil
	}
	src := string(original)
	if res.Text == src {
		return "", nil
	}
	lines, starts := splitLines(src)
	if len(lines) == 0 {
		return printDiff(name, []*godiff.Hunk{wholeFile(res.Text)})
	}
	regions := groupEdits(starts, res.Edits)

	type change struct {
		r        region
		old, new []string
	}
	var changes []change
	for _, r := range regions {
		from, to := starts[r.lo], lineEnd(src, starts, r.hi)
		replaced := NewChanges()
		for _, e := range r.edits {
			replaced.Replace(shift(e, -from).Span, e.produce)
		}
		text, err := replaced.Apply(src[from:to])
		if err != nil {
			return "", err
		}
		if text == src[from:to] {
			continue
		}
		newLines, _ := splitLines(text)
		changes = append(changes, change{r: r, old: lines[r.lo : r.hi+1], new: newLines})
	}
	if len(changes) == 0 {
		return "", nil
	}

	var hunks []*godiff.Hunk
	delta := 0 // new line count minus old line count so far
	for i := 0; i < len(changes); {
		j := i + 1
		for j < len(changes) && changes[j].r.lo-changes[j-1].r.hi-1 <= 2*ContextLines {
			j++
		}

		first, last := changes[i].r, changes[j-1].r
		ctxStart := max(0, first.lo-ContextLines)
		ctxEnd := min(len(lines)-1, last.hi+ContextLines)

		var body bytes.Buffer
		var origLines, newLines int32
		context := func(from, to int) {
			for k := from; k <= to; k++ {
				writeLine(&body, ' ', lines[k])
				origLines++
				newLines++
			}
		}

		context(ctxStart, first.lo-1)
		newStart := ctxStart + delta
		for k := i; k < j; k++ {
			c := changes[k]
			if k > i {
				context(changes[k-1].r.hi+1, c.r.lo-1)
			}
			for _, l := range c.old {
				writeLine(&body, '-', l)
			}
			for _, l := range c.new {
				writeLine(&body, '+', l)
			}
			origLines += int32(len(c.old))
			newLines += int32(len(c.new))
			delta += len(c.new) - len(c.old)
		}
		context(last.hi+1, ctxEnd)

		hunks = append(hunks, &godiff.Hunk{
			OrigStartLine: startLine(ctxStart, origLines),
			OrigLines:     origLines,
			NewStartLine:  startLine(newStart, newLines),
			NewLines:      newLines,
			Body:          body.Bytes(),
		})
		i = j
	}

	return printDiff(name, hunks)
}

func printDiff(name string, hunks []*godiff.Hunk) (string, error) {
	out, err := godiff.PrintFileDiff(&godiff.FileDiff{
		OrigName: "a/" + name,
		NewName:  "b/" + name,
		Hunks:    hunks,
	})
	if err != nil {
		return "", fmt.Errorf("printing diff for %s: %w", name, err)
	}
	return string(out), nil
}

// wholeFile is the single hunk that creates text from nothing.
func wholeFile(text string) *godiff.Hunk {
	var body bytes.Buffer
	lines, _ := splitLines(text)
	for _, l := range lines {
		writeLine(&body, '+', l)
	}
	return &godiff.Hunk{
		NewStartLine: startLine(0, int32(len(lines))),
		NewLines:     int32(len(lines)),
		Body:         body.Bytes(),
	}
}

// startLine converts a 0-based first line to the 1-based number used in
// hunk headers. An empty range names the line before it.
func startLine(first int, count int32) int32 {
	if count == 0 {
		return int32(first)
	}
	return int32(first + 1)
}

func writeLine(b *bytes.Buffer, prefix byte, line string) {
	b.WriteByte(prefix)
	b.WriteString(line)
	if !strings.HasSuffix(line, "\n") {
		b.WriteByte('\n')
		b.WriteString(noNewline)
	}
}

// splitLines splits s after each newline and returns the byte offset of
// every line start. Empty input has no lines.
func splitLines(s string) ([]string, []int) {
	var lines []string
	var starts []int
	for pos := 0; pos < len(s); {
		starts = append(starts, pos)
		end := strings.IndexByte(s[pos:], '\n')
		if end < 0 {
			lines = append(lines, s[pos:])
			break
		}
		lines = append(lines, s[pos:pos+end+1])
		pos += end + 1
	}
	return lines, starts
}

func lineEnd(s string, starts []int, line int) int {
	if line+1 < len(starts) {
		return starts[line+1]
	}
	return len(s)
}

func lineOf(starts []int, offset int) int {
	return max(0, sort.SearchInts(starts, offset+1)-1)
}

// groupEdits merges edits whose line ranges touch into regions.
func groupEdits(starts []int, edits []Edit) []region {
	var regions []region
	for _, e := range edits {
		lo := lineOf(starts, e.Span.Start)
		hi := lo
		if e.Span.End > e.Span.Start {
			hi = lineOf(starts, e.Span.End-1)
		}
		if n := len(regions); n > 0 && lo <= regions[n-1].hi {
			regions[n-1].hi = max(regions[n-1].hi, hi)
			regions[n-1].edits = append(regions[n-1].edits, e)
			continue
		}
		regions = append(regions, region{lo: lo, hi: hi, edits: []Edit{e}})
	}
	return regions
}

func shift(e Edit, by int) Edit {
	e.Span.Start += by
	e.Span.End += by
	return e
}

// DiffStats counts the added and removed lines of a unified diff.
func DiffStats(diff string) (added, removed int, err error) {
	if diff == "" {
		return 0, 0, nil
	}
	fileDiffs, err := godiff.ParseMultiFileDiff([]byte(diff))
	if err != nil {
		return 0, 0, fmt.Errorf("failed to parse diff: %w", err)
	}
	for _, fd := range fileDiffs {
		for _, hunk := range fd.Hunks {
			for _, line := range strings.Split(string(hunk.Body), "\n") {
				if line == "" {
					continue
				}
				switch line[0] {
				case '+':
					added++
				case '-':
					removed++
				}
			}
		}
	}
	return added, removed, nil
}
