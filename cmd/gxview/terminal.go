package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/term"
)

// termSize returns the usable character grid, falling back to 80x24 when
// stdout is not a terminal.
func termSize() (cols, rows int) {
	fd := int(os.Stdout.Fd())
	if !term.IsTerminal(fd) {
		return 80, 24
	}
	w, h, err := term.GetSize(fd)
	if err != nil || w < 8 || h < 4 {
		return 80, 24
	}
	// last row holds the status line
	return w, h - 1
}

// fitGrid picks the largest cols x rows cell grid with the screen's aspect
// ratio, each cell being one pixel wide and two tall.
func fitGrid(maxCols, maxRows int) (cols, rows int) {
	cols = min(maxCols, screenW)
	rows = cols * screenH / screenW / 2
	if rows > maxRows {
		rows = maxRows
		cols = rows * 2 * screenW / screenH
	}
	return max(cols, 1), max(rows, 1)
}

// writeHalfBlocks draws rgba as cols x rows upper-half-block cells, top
// pixel in the foreground colour and bottom pixel in the background.
func writeHalfBlocks(w *bufio.Writer, rgba []byte, cols, rows int) {
	sample := func(cx, py int) (byte, byte, byte) {
		x := cx * screenW / cols
		y := min(py*screenH/(rows*2), screenH-1)
		i := (y*screenW + x) * 4
		return rgba[i], rgba[i+1], rgba[i+2]
	}

	w.WriteString("\x1b[H")
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			tr, tg, tb := sample(c, r*2)
			br, bg, bb := sample(c, r*2+1)
			fmt.Fprintf(w, "\x1b[38;2;%d;%d;%dm\x1b[48;2;%d;%d;%dm▀", tr, tg, tb, br, bg, bb)
		}
		w.WriteString("\x1b[0m\r\n")
	}
}

// runTerminal renders frames on one goroutine and presents them on
// another, at most one frame in flight.
func runTerminal(ctx context.Context, d *driver, frames int, out io.Writer) error {
	cols, rows := fitGrid(termSize())

	g, ctx := errgroup.WithContext(ctx)
	pics := make(chan frameOut, 1)

	g.Go(func() error {
		defer close(pics)
		tick := time.NewTicker(time.Second / 60)
		defer tick.Stop()
		for frames <= 0 || d.frame < frames {
			if err := d.step(); err != nil {
				return err
			}
			pic := frameOut{rgba: append([]byte(nil), d.rgba...), status: d.status()}
			select {
			case pics <- pic:
			case <-ctx.Done():
				return nil
			}
			select {
			case <-tick.C:
			case <-ctx.Done():
				return nil
			}
		}
		return nil
	})

	g.Go(func() error {
		w := bufio.NewWriterSize(out, 1<<16)
		w.WriteString("\x1b[2J\x1b[?25l")
		defer func() {
			w.WriteString("\x1b[0m\x1b[?25h\r\n")
			w.Flush()
		}()
		for pic := range pics {
			writeHalfBlocks(w, pic.rgba, cols, rows)
			w.WriteString(pic.status)
			w.WriteString("\x1b[K")
			if err := w.Flush(); err != nil {
				return fmt.Errorf("terminal output: %w", err)
			}
		}
		return nil
	})

	return g.Wait()
}

type frameOut struct {
	rgba   []byte
	status string
}
