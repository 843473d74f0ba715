package tagops

import (
	"io"
	"log"
	"testing"

	"github.com/funvibe/tagops/internal/cell"
	"github.com/funvibe/tagops/internal/tags"
)

func newTestRuntime(t *testing.T) *Runtime {
	t.Helper()
	return New(Options{Logger: log.New(io.Discard, "", 0)})
}

func tagOf(t *testing.T, rt *Runtime, id tags.ID) *tags.Tag {
	t.Helper()
	tag := rt.Tags.Find(id)
	if tag == nil {
		t.Fatalf("tag %d not registered", id)
	}
	return tag
}

func stringOf(t *testing.T, rt *Runtime, h cell.Cell) string {
	t.Helper()
	s, ok := rt.StringValue(h)
	if !ok {
		t.Fatalf("string handle %d is not live", h)
	}
	return s
}
