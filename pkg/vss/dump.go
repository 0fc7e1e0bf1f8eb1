package vss

import (
	"fmt"
	"io"
)

// Dumper renders a walked database as human-readable text, the format
// vssdump prints.
type Dumper struct {
	w       io.Writer
	verbose bool
}

// NewDumper wraps w. When verbose is set, tree entries also show their kind
// and physical name, and changeset lines show the action kind, path and
// physical name instead of the action description. Record offsets, raw
// header bytes and CRC values are not printed in either mode.
func NewDumper(w io.Writer, verbose bool) *Dumper {
	return &Dumper{w: w, verbose: verbose}
}

// DumpTree prints the live project tree of the database's root project
// (RootPhysicalName) as an indented listing, with rootPath as the path
// prefix of every entry.
func (d *Dumper) DumpTree(walker *Walker, rootPath string) error {
	fmt.Fprintln(d.w, rootPath)
	return walker.Walk(rootPath, RootPhysicalName, func(e TreeEntry) error {
		depth := pathDepth(e.Path) - pathDepth(rootPath)
		kind := "file"
		if e.IsProject {
			kind = "project"
		}
		if d.verbose {
			fmt.Fprintf(d.w, "%s%s [%s %s]\n", indent(depth), e.Path, kind, e.Physical)
		} else {
			fmt.Fprintf(d.w, "%s%s\n", indent(depth), e.Path)
		}
		return nil
	})
}

// DumpChangesets prints each Change in chronological order, one header line
// per change followed by its constituent per-path actions.
func (d *Dumper) DumpChangesets(changes []Change) error {
	for _, c := range changes {
		fmt.Fprintf(d.w, "%s  %s\n", c.Timestamp.Format("2006-01-02 15:04:05"), c.User)
		if c.Comment != "" {
			fmt.Fprintf(d.w, "    %s\n", c.Comment)
		}
		for _, pa := range c.Actions {
			if d.verbose {
				fmt.Fprintf(d.w, "    %-9s %s [%s]\n", pa.Action.Kind, pa.Path, pa.Physical)
			} else {
				fmt.Fprintf(d.w, "    %s\n", pa.Action.String())
			}
		}
	}
	return nil
}

func indent(depth int) string {
	out := make([]byte, 0, depth*2)
	for i := 0; i < depth; i++ {
		out = append(out, ' ', ' ')
	}
	return string(out)
}

func pathDepth(path string) int {
	depth := 0
	for _, c := range path {
		if c == '/' {
			depth++
		}
	}
	return depth
}
