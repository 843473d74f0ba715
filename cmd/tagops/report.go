package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"

	"github.com/funvibe/tagops/internal/tagops"
	"github.com/funvibe/tagops/internal/tags"
)

const (
	colorBold  = "\033[1m"
	colorReset = "\033[0m"
)

// useColor follows the NO_COLOR convention and only colours terminals.
func useColor() bool {
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}
	if os.Getenv("TERM") == "dumb" {
		return false
	}
	return isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
}

// tableKind describes where the table used for t comes from.
func tableKind(rt *tagops.Runtime, t *tags.Tag) string {
	if rt.HasTable(t) {
		if rt.IsBuiltin(t) {
			return "builtin"
		}
		return "dynamic"
	}
	for cur := t.Base(); cur != nil; cur = cur.Base() {
		if rt.HasTable(cur) {
			return "inherited:" + cur.Name
		}
	}
	return "inherited:" + rt.Tags.Unknown().Name
}

func chain(t *tags.Tag) string {
	var names []string
	for cur := t.Base(); cur != nil; cur = cur.Base() {
		names = append(names, cur.Name)
	}
	if len(names) == 0 {
		return "-"
	}
	return strings.Join(names, " > ")
}

func lockState(rt *tagops.Runtime, t *tags.Tag) string {
	if !rt.HasTable(t) || rt.IsBuiltin(t) {
		return "-"
	}
	d, ok := rt.Resolve(t).(*tagops.DynamicOperations)
	if !ok {
		return "-"
	}
	kinds := make([]string, 0, len(d.Kinds()))
	for _, k := range d.Kinds() {
		kinds = append(kinds, k.String())
	}
	state := "open"
	if d.Locked() {
		state = "locked"
	}
	if len(kinds) > 0 {
		state += " [" + strings.Join(kinds, ",") + "]"
	}
	return state
}

// report prints one line per registered tag.
func report(w io.Writer, rt *tagops.Runtime, color bool) {
	header := fmt.Sprintf("%-4s %-16s %-20s %-18s %-4s %s", "ID", "NAME", "BASES", "TABLE", "FMT", "STATE")
	if color {
		header = colorBold + header + colorReset
	}
	fmt.Fprintln(w, header)

	for _, t := range rt.Tags.All() {
		ops := rt.Resolve(t)
		spec := string([]byte{ops.FormatSpec(t, false), ops.FormatSpec(t, true)})
		fmt.Fprintf(w, "%-4d %-16s %-20s %-18s %-4s %s\n",
			t.ID, t.Name, chain(t), tableKind(rt, t), spec, lockState(rt, t))
	}
	fmt.Fprintf(w, "(%d tags)\n", rt.Tags.Len())
}
