package montecarlo

import (
	"bytes"
	"strings"
	"testing"

	"github.com/matryer/is"
)

func TestTraceWriterNestsTagsByDepth(t *testing.T) {
	is := is.New(t)
	var buf bytes.Buffer
	tr := newTraceWriter(&buf, LogFormatTrace)

	tr.openIteration(1)
	tr.openPlayahead(fakeMove{name: "8D CAT"})
	tr.closePlayahead(false, 1)
	tr.closeIteration()
	tr.closeHeader()

	out := buf.String()
	is.True(strings.Contains(out, "<simulation>"))
	is.True(strings.Contains(out, `<iteration index="1">`))
	is.True(strings.Contains(out, "<playahead>"))
	is.True(strings.Contains(out, `<gameover win="1" />`))
	is.True(strings.Contains(out, "</simulation>"))
}

func TestTraceWriterSharedConsiderationOmittedWhenZero(t *testing.T) {
	is := is.New(t)
	var buf bytes.Buffer
	tr := newTraceWriter(&buf, LogFormatTrace)
	tr.openIteration(1)
	before := buf.Len()

	tr.sharedConsideration(0)
	is.Equal(buf.Len(), before)

	tr.sharedConsideration(1.5)
	is.True(buf.Len() > before)
}

func TestTraceWriterDisabledWhenWriterIsNil(t *testing.T) {
	is := is.New(t)
	tr := newTraceWriter(nil, LogFormatTrace)
	// None of these should panic even though there's nowhere to write.
	tr.openIteration(1)
	tr.openPlayahead(fakeMove{name: "8D CAT"})
	tr.playerConsideration(1)
	tr.sharedConsideration(1)
	tr.closePlayahead(true, 0.5)
	tr.closeIteration()
	tr.closeHeader()
	is.True(true)
}

func TestTraceWriterYAMLFormatBuffersUntilIterationCloses(t *testing.T) {
	is := is.New(t)
	var buf bytes.Buffer
	tr := newTraceWriter(&buf, LogFormatYAML)

	tr.openIteration(7)
	tr.openPlayahead(fakeMove{name: "8D CAT"})
	is.Equal(buf.Len(), 0)
	tr.closePlayahead(false, 0.8)
	tr.closeIteration()

	out := buf.String()
	is.True(strings.Contains(out, "iteration: 7"))
	is.True(strings.Contains(out, "8D CAT"))
}
