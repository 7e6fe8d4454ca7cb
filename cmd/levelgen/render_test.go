package main

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	"github.com/milk9111/tilecrowd/levelgen"
)

func TestRenderMarksPath(t *testing.T) {
	res := levelgen.Generate(30, 16, 42)
	plain := render(res, false)
	marked := render(res, true)

	if plain != res.Grid.String() {
		t.Fatalf("plain render should match the grid text")
	}
	if len(plain) != len(marked) {
		t.Fatalf("marking changed the layout: %d vs %d bytes", len(plain), len(marked))
	}
	if !strings.ContainsRune(marked, pathMark) {
		t.Fatalf("no path marks in\n%s", marked)
	}
	for i := range plain {
		if marked[i] == pathMark && plain[i] != '#' {
			t.Fatalf("path mark over a non-solid tile at byte %d", i)
		}
	}
}

func TestReportHeader(t *testing.T) {
	opt := options{cols: 40, rows: 18, seed: 9, merge: true, quiet: true}
	gen, err := newGenerator(opt)
	if err != nil {
		t.Fatalf("newGenerator: %v", err)
	}
	var buf bytes.Buffer
	if err := report(&buf, gen, run(gen, opt), opt); err != nil {
		t.Fatalf("report: %v", err)
	}
	out := buf.String()
	if strings.Contains(out, "%!") {
		t.Fatalf("bad format verb in report:\n%s", out)
	}
	env := gen.Envelope()
	jump := fmt.Sprintf("envelope: jump=%.0fpx gap=%d..%d", env.SingleJumpHeightPx, env.MinGapTiles, env.MaxGapTiles)
	for _, want := range []string{"seed=9", "reachable=true", jump, "collision: "} {
		if !strings.Contains(out, want) {
			t.Fatalf("report missing %q:\n%s", want, out)
		}
	}
}
