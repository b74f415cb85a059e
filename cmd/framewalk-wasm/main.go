//go:build js && wasm

// Command framewalk-wasm runs a seeded walk inside a web page and measures
// each update with requestAnimationFrame.
//
// Each step moves the element with id "cursor" (if the page has one) and
// arms a measurement. The summary is written to the console when the walk
// ends. The page may set a global framewalkConfig object with seed, steps
// and intervalMs to override the defaults.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"syscall/js"
	"time"

	"github.com/roach88/framewalk/internal/host/browser"
	"github.com/roach88/framewalk/internal/probe"
	"github.com/roach88/framewalk/internal/stats"
	"github.com/roach88/framewalk/internal/walk"
)

const cellPx = 12

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	cfg := pageConfig(js.Global().Get("framewalkConfig"))

	samples := stats.NewLog()
	p := probe.New(browser.NewRAFPresenter(),
		probe.WithClock(browser.NewPerformanceClock()),
		probe.WithRecorder(samples),
		probe.WithLogger(logger))

	cursor := js.Global().Get("document").Call("getElementById", "cursor")
	var pending []*probe.Pending
	seq, err := walk.Start(context.Background(), cfg, func(s walk.Step) {
		if cursor.Truthy() {
			cursor.Get("style").Set("transform",
				fmt.Sprintf("translate(%dpx, %dpx)", s.Col*cellPx, s.Row*cellPx))
		}
		pending = append(pending, p.Arm())
	}, walk.WithLogger(logger))
	if err != nil {
		logger.Error("walk rejected", "error", err)
		return
	}
	<-seq.Done()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	unresolved := 0
	for _, pd := range pending {
		if _, err := pd.Wait(ctx); probe.IsUnresolved(err) {
			unresolved++
		}
	}

	logger.Info("walk measured",
		"config", cfg.Hash(),
		"summary", samples.Summary().Text(),
		"unresolved", unresolved)
}

// pageConfig reads overrides from the page, falling back to a 20x20
// board seeded with "42".
func pageConfig(v js.Value) walk.Config {
	cfg := walk.Config{
		Seed:     "42",
		Bounds:   walk.Bounds{Height: 20, Width: 20},
		Origin:   walk.DefaultOrigin,
		MaxSteps: 30,
		Interval: 50 * time.Millisecond,
	}
	if !v.Truthy() {
		return cfg
	}
	if s := v.Get("seed"); s.Truthy() {
		cfg.Seed = walk.Seed(s.String())
	}
	if n := v.Get("steps"); n.Truthy() {
		cfg.MaxSteps = n.Int()
	}
	if ms := v.Get("intervalMs"); ms.Truthy() {
		cfg.Interval = time.Duration(ms.Int()) * time.Millisecond
	}
	return cfg
}
