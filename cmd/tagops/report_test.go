package main

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	"github.com/funvibe/tagops/internal/config"
	"github.com/funvibe/tagops/internal/script"
	"github.com/funvibe/tagops/internal/tagops"
)

func TestReport(t *testing.T) {
	cfg, err := config.ParseConfig([]byte(`
tags:
  - name: Vec
  - name: Vec@Fast
overrides:
  - tag: Vec
    lock: true
    ops:
      - op: add
        handler: vec_add
`), "tagops.yaml")
	if err != nil {
		t.Fatal(err)
	}
	rt := tagops.New(tagops.Options{})
	if err := tagops.Apply(rt, cfg, rt.Scripts.Load(script.NewMachine())); err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	report(&buf, rt, false)
	out := buf.String()
	if strings.Contains(out, colorBold) {
		t.Error("colour codes written with colour disabled")
	}

	if footer := fmt.Sprintf("(%d tags)", rt.Tags.Len()); !strings.Contains(out, footer) {
		t.Errorf("output does not end with %q:\n%s", footer, out)
	}

	lines := map[string]string{}
	for _, line := range strings.Split(strings.TrimSpace(out), "\n")[1:] {
		fields := strings.Fields(line)
		lines[fields[1]] = line
	}
	checks := []struct {
		name string
		want []string
	}{
		{"Float", []string{"builtin", "fa", "-"}},
		{"Vec", []string{"dynamic", "locked [add]"}},
		{"Vec@Fast", []string{"Vec", "inherited:Vec"}},
	}
	for _, c := range checks {
		line, ok := lines[c.name]
		if !ok {
			t.Errorf("no line for %s in\n%s", c.name, out)
			continue
		}
		for _, w := range c.want {
			if !strings.Contains(line, w) {
				t.Errorf("%s line %q does not contain %q", c.name, line, w)
			}
		}
	}
}

func TestUseColorHonoursNoColor(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	if useColor() {
		t.Error("useColor() = true with NO_COLOR set")
	}
}
