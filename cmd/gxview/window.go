//go:build !headless

// window.go - Ebiten window presenter for gxview

/*
 ██▓ ███▄    █ ▄▄▄█████▓ █    ██  ██▓▄▄▄█████▓ ██▓ ▒█████   ███▄    █    ▓█████  ███▄    █   ▄████  ██▓ ███▄    █ ▓█████
▓██▒ ██ ▀█   █ ▓  ██▒ ▓▒ ██  ▓██▒▓██▒▓  ██▒ ▓▒▓██▒▒██▒  ██▒ ██ ▀█   █    ▓█   ▀  ██ ▀█   █  ██▒ ▀█▒▓██▒ ██ ▀█   █ ▓█   ▀
▒██▒▓██  ▀█ ██▒▒ ▓██░ ▒░▓██  ▒██░▒██▒▒ ▓██░ ▒░▒██▒▒██░  ██▒▓██  ▀█ ██▒   ▒███   ▓██  ▀█ ██▒▒██░▄▄▄░▒██▒▓██  ▀█ ██▒▒███
░██░▓██▒  ▐▌██▒░ ▓██▓ ░ ▓▓█  ░██░░██░░ ▓██▓ ░ ░██░▒██   ██░▓██▒  ▐▌██▒   ▒▓█  ▄ ▓██▒  ▐▌██▒░▓█  ██▓░██░▓██▒  ▐▌██▒▒▓█  ▄
░██░▒██░   ▓██░  ▒██▒ ░ ▒▒█████▓ ░██░  ▒██▒ ░ ░██░░ ████▓▒░▒██░   ▓██░   ░▒████▒▒██░   ▓██░░▒▓███▀▒░██░▒██░   ▓██░░▒████▒
░▓  ░ ▒░   ▒ ▒   ▒ ░░   ░▒▓▒ ▒ ▒ ░▓    ▒ ░░   ░▓  ░ ▒░▒░▒░ ░ ▒░   ▒ ▒    ░░ ▒░ ░░ ▒░   ▒ ▒  ░▒   ▒ ░▓  ░ ▒░   ▒ ▒ ░░ ▒░ ░
 ▒ ░░ ░░   ░ ▒░    ░    ░░▒░ ░ ░  ▒ ░    ░     ▒ ░  ░ ▒ ▒░ ░ ░░   ░ ▒░    ░ ░  ░░ ░░   ░ ▒░  ░   ░  ▒ ░░ ░░   ░ ▒░ ░ ░  ░
 ▒ ░   ░   ░ ░   ░       ░░░ ░ ░  ▒ ░  ░       ▒ ░░ ░ ░ ▒     ░   ░ ░       ░      ░   ░ ░ ░ ░   ░  ▒ ░   ░   ░ ░    ░
 ░           ░             ░      ░            ░      ░ ░           ░       ░  ░         ░       ░  ░           ░    ░  ░

(c) 2024 - 2026 Zayn Otley
https://github.com/IntuitionAmiga/IntuitionEngine

License: GPLv3 or later
*/

package main

import (
	"fmt"
	"image/color"
	"log/slog"
	"sync"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/text"
	"golang.design/x/clipboard"
	"golang.org/x/image/font/basicfont"
)

type viewer struct {
	d      *driver
	frames int
	img    *ebiten.Image
	err    error

	showStatus    bool
	clipboardOnce sync.Once
	clipboardOK   bool
}

// runWindow opens a window of the given scale and steps one engine frame
// per tick until the window closes or frames have been shown.
func runWindow(d *driver, frames, scale int) error {
	v := &viewer{d: d, frames: frames, showStatus: true}

	ebiten.SetWindowSize(screenW*scale, screenH*scale)
	ebiten.SetWindowTitle("gxview")
	ebiten.SetWindowResizable(true)
	ebiten.SetTPS(60)

	if err := ebiten.RunGame(v); err != nil {
		return fmt.Errorf("window: %w", err)
	}
	return v.err
}

func (v *viewer) Update() error {
	if ebiten.IsWindowBeingClosed() || inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyF12) {
		v.showStatus = !v.showStatus
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyC) {
		v.copyStatus()
	}

	if v.frames > 0 && v.d.frame >= v.frames {
		return ebiten.Termination
	}
	if err := v.d.step(); err != nil {
		v.err = err
		return ebiten.Termination
	}
	return nil
}

func (v *viewer) copyStatus() {
	v.clipboardOnce.Do(func() {
		v.clipboardOK = clipboard.Init() == nil
	})
	if !v.clipboardOK {
		slog.Warn("clipboard unavailable")
		return
	}
	clipboard.Write(clipboard.FmtText, []byte(v.d.status()))
}

func (v *viewer) Draw(screen *ebiten.Image) {
	if v.img == nil {
		v.img = ebiten.NewImage(screenW, screenH)
	}
	v.img.WritePixels(v.d.rgba)
	screen.DrawImage(v.img, nil)

	if !v.showStatus {
		return
	}
	const barHeight = 16
	ebitenutil.DrawRect(screen, 0, screenH-barHeight, screenW, barHeight, color.RGBA{0, 0, 0, 180})
	polys, _ := v.d.e.RenderPolygons()
	line := fmt.Sprintf("F%d P%d C:copy", v.d.frame, len(polys))
	text.Draw(screen, line, basicfont.Face7x13, 4, screenH-4, color.RGBA{160, 160, 160, 255})
}

func (v *viewer) Layout(_, _ int) (int, int) {
	return screenW, screenH
}
