package montecarlo

import (
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"

	"github.com/cnolan/simrollout/playengine"
)

// LogFormat selects how Simulator.SetLogStream renders its trace.
type LogFormat int

const (
	// LogFormatTrace is the nested tag trace described in spec.md §6,
	// grounded directly on sim.cpp's literal m_xmlIndent bookkeeping.
	LogFormatTrace LogFormat = iota
	// LogFormatYAML marshals one yamlIteration record per iteration,
	// mirroring the teacher's LogIteration/LogPlay YAML tags.
	LogFormatYAML
)

// traceWriter owns the simulator's log stream and the tab-depth indentation
// state of the nested trace. It is not safe for concurrent use; the
// Simulator serializes all writes to it.
type traceWriter struct {
	w      io.Writer
	format LogFormat
	depth  int
	opened bool

	// buffered per-iteration record, used only in LogFormatYAML mode.
	yamlIter *yamlIteration
	yamlPlay *yamlPlay
}

func newTraceWriter(w io.Writer, format LogFormat) *traceWriter {
	return &traceWriter{w: w, format: format}
}

func (t *traceWriter) indent() string {
	return strings.Repeat("\t", t.depth)
}

func (t *traceWriter) printf(format string, args ...interface{}) {
	if t.w == nil {
		return
	}
	fmt.Fprintf(t.w, "%s%s\n", t.indent(), fmt.Sprintf(format, args...))
}

func (t *traceWriter) openHeader() {
	if t.w == nil || t.opened || t.format != LogFormatTrace {
		return
	}
	t.printf("<simulation>")
	t.depth++
	t.opened = true
}

func (t *traceWriter) closeHeader() {
	if t.w == nil || !t.opened || t.format != LogFormatTrace {
		return
	}
	t.depth = 0
	t.printf("</simulation>")
	t.opened = false
}

func (t *traceWriter) openIteration(index uint64) {
	if t.w == nil {
		return
	}
	if t.format == LogFormatYAML {
		t.yamlIter = &yamlIteration{Index: index}
		return
	}
	t.openHeader()
	t.printf(`<iteration index="%d">`, index)
	t.depth++
}

func (t *traceWriter) closeIteration() {
	if t.w == nil {
		return
	}
	if t.format == LogFormatYAML {
		if t.yamlIter == nil {
			return
		}
		out, err := yaml.Marshal([]yamlIteration{*t.yamlIter})
		if err != nil {
			log.Error().Err(err).Msg("marshalling simulation log")
			return
		}
		t.w.Write(out)
		t.yamlIter = nil
		return
	}
	t.depth--
	t.printf("</iteration>")
}

func (t *traceWriter) openPlayahead(move playengine.Move) {
	if t.w == nil {
		return
	}
	if t.format == LogFormatYAML {
		t.yamlPlay = &yamlPlay{Play: move.String()}
		return
	}
	t.printf("<playahead>")
	t.depth++
}

func (t *traceWriter) closePlayahead(bogowin bool, wins float64) {
	if t.w == nil {
		return
	}
	if t.format == LogFormatYAML {
		if t.yamlPlay == nil {
			return
		}
		t.yamlPlay.WinRatio = wins
		if t.yamlIter != nil {
			t.yamlIter.Plays = append(t.yamlIter.Plays, *t.yamlPlay)
		}
		t.yamlPlay = nil
		return
	}
	if !bogowin {
		t.printf(`<gameover win="%v" />`, wins)
	}
	t.depth--
	t.printf("</playahead>")
}

func (t *traceWriter) openPly(index int, rack playengine.Rack, move playengine.Move) {
	if t.w == nil || t.format == LogFormatYAML {
		return
	}
	t.printf(`<ply index="%d">`, index)
	t.depth++
	t.printf("%v", rack.Tiles())
	t.printf("%v", move)
}

func (t *traceWriter) closePly() {
	if t.w == nil || t.format == LogFormatYAML {
		return
	}
	t.depth--
	t.printf("</ply>")
}

func (t *traceWriter) playerConsideration(v float64) {
	if t.w == nil || t.format == LogFormatYAML {
		return
	}
	t.printf(`<pc value="%v" />`, v)
}

func (t *traceWriter) sharedConsideration(v float64) {
	if t.w == nil || t.format == LogFormatYAML || v == 0 {
		return
	}
	t.printf(`<sc value="%v" />`, v)
}

// yamlIteration and yamlPlay are the YAML sink's record shapes, intentionally
// parallel to the teacher's LogIteration/LogPlay.
type yamlIteration struct {
	Index uint64     `yaml:"iteration"`
	Plays []yamlPlay `yaml:"plays"`
}

type yamlPlay struct {
	Play     string  `yaml:"play"`
	WinRatio float64 `yaml:"win,omitempty"`
}
