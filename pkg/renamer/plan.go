package renamer

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
)

// Order controls how matched entries are numbered.
type Order string

const (
	// OrderListing numbers entries in the order the directory listing returns them.
	OrderListing Order = "listing"
	// OrderName numbers entries after sorting their names lexicographically.
	OrderName Order = "name"
)

// ParseOrder validates an order name; empty means OrderListing.
func ParseOrder(s string) (Order, error) {
	switch Order(s) {
	case "", OrderListing:
		return OrderListing, nil
	case OrderName:
		return OrderName, nil
	default:
		return "", fmt.Errorf("%w: unknown order %q (want %q or %q)", ErrInvalidArgument, s, OrderListing, OrderName)
	}
}

// Entry is a directory entry captured at scan time.
type Entry struct {
	Name  string
	IsDir bool
}

// Step renames From to To inside the plan folder.
type Step struct {
	Index int
	From  string
	To    string
}

// Plan is the full rename mapping computed before anything is touched.
type Plan struct {
	Folder    string
	Extension string
	Prefix    string
	Steps     []Step

	// snapshot of every name present at scan time, used by Conflicts
	present []string
}

// TargetName builds the numbered file name for index.
func TargetName(prefix string, index int, extension string) string {
	return prefix + strconv.Itoa(index) + extension
}

// newPlan filters entries by suffix, skipping directories, and numbers them from 1.
func newPlan(folder, extension, prefix string, entries []Entry, order Order) *Plan {
	p := &Plan{Folder: folder, Extension: extension, Prefix: prefix}

	var matched []string
	for _, e := range entries {
		p.present = append(p.present, e.Name)
		if e.IsDir || !strings.HasSuffix(e.Name, extension) {
			continue
		}
		matched = append(matched, e.Name)
	}

	if order == OrderName {
		sort.Strings(matched)
	}

	for i, name := range matched {
		p.Steps = append(p.Steps, Step{
			Index: i + 1,
			From:  name,
			To:    TargetName(prefix, i+1, extension),
		})
	}
	return p
}

// Empty reports whether the plan renames nothing.
func (p *Plan) Empty() bool {
	return len(p.Steps) == 0
}

// Len returns the number of steps.
func (p *Plan) Len() int {
	return len(p.Steps)
}

// Name of the operation, used in the printed plan header.
func (p *Plan) Name() string {
	return "rename"
}

// Conflicts replays the plan against the scanned snapshot. A step conflicts
// when its target is occupied at the moment it would run: an untouched file,
// a source not yet moved, or the target of an earlier step.
func (p *Plan) Conflicts() []Conflict {
	occupied := make(map[string]bool, len(p.present))
	for _, name := range p.present {
		occupied[name] = true
	}

	var conflicts []Conflict
	for _, s := range p.Steps {
		if s.To != s.From && occupied[s.To] {
			conflicts = append(conflicts, Conflict{Step: s, Reason: "target exists"})
			continue
		}
		delete(occupied, s.From)
		occupied[s.To] = true
	}
	return conflicts
}

// Log writes a human readable version of the plan.
func (p *Plan) Log(w io.Writer) {
	fmt.Fprintf(w, `Plan for "%s" operation:`, p.Name())
	fmt.Fprintln(w)
	if p.Empty() {
		fmt.Fprintln(w, "  no files to rename")
		return
	}
	for _, s := range p.Steps {
		fmt.Fprintf(w, "  - %s -> %s\n", s.From, s.To)
	}
}
