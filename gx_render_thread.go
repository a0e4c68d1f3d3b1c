package gx3d

import (
	"context"
	"fmt"
	"log/slog"
)

// renderJob is one closed-off frame handed to the worker.
type renderJob struct {
	rs   renderState
	ram  *GeometryRAM
	list []int32
}

// renderWorker renders frames on a background goroutine. At most one
// frame is in flight: the engine waits for renderDone before it latches
// the next one, and GetLine waits on the per-scanline semaphore so the
// display can follow the renderer line by line.
type renderWorker struct {
	r   *SoftRenderer
	log func() *slog.Logger

	renderStart chan renderJob
	renderDone  chan struct{}
	scanlines   chan struct{}

	ctx    context.Context
	cancel context.CancelFunc
	exited chan struct{}

	// owned by the engine goroutine
	running    bool
	rendering  bool
	linesTaken int
}

func newRenderWorker(r *SoftRenderer, log func() *slog.Logger) *renderWorker {
	return &renderWorker{
		r:           r,
		log:         log,
		renderStart: make(chan renderJob),
		renderDone:  make(chan struct{}, 1),
		scanlines:   make(chan struct{}, GX_SCREEN_HEIGHT),
	}
}

// Start launches the worker goroutine.
func (w *renderWorker) Start() error {
	if w.running {
		return fmt.Errorf("gx3d: start render worker: %w", ErrWorkerRunning)
	}
	w.ctx, w.cancel = context.WithCancel(context.Background())
	w.exited = make(chan struct{})
	w.running = true
	w.rendering = false
	go w.loop(w.ctx, w.exited)
	w.log().Info("gx3d: render worker started")
	return nil
}

func (w *renderWorker) loop(ctx context.Context, exited chan struct{}) {
	defer close(exited)
	for {
		select {
		case <-ctx.Done():
			return
		case job := <-w.renderStart:
			err := w.r.RenderFrame(ctx, &job.rs, job.ram, job.list, func(int) {
				w.scanlines <- struct{}{}
			})
			if err != nil {
				// cancelled mid-frame, the output is discarded
				return
			}
			w.renderDone <- struct{}{}
		}
	}
}

// Stop cancels the worker and waits for it to exit. A frame in progress is
// abandoned.
func (w *renderWorker) Stop() {
	if !w.running {
		return
	}
	w.cancel()
	<-w.exited
	w.running = false
	w.rendering = false
	w.drain()
	w.log().Info("gx3d: render worker stopped")
}

func (w *renderWorker) drain() {
	for {
		select {
		case <-w.scanlines:
		case <-w.renderDone:
		default:
			return
		}
	}
}

// Submit hands a frame to the worker. The previous frame must be done.
func (w *renderWorker) Submit(job renderJob) {
	w.WaitDone()
	w.drain()
	w.linesTaken = 0
	w.rendering = true
	select {
	case w.renderStart <- job:
	case <-w.ctx.Done():
		w.rendering = false
	}
}

// WaitDone blocks until the frame in flight is finished.
func (w *renderWorker) WaitDone() {
	if !w.rendering {
		return
	}
	select {
	case <-w.renderDone:
	case <-w.ctx.Done():
	}
	w.rendering = false
}

// WaitLine blocks until scanline y of the current frame is final.
func (w *renderWorker) WaitLine(y int) {
	if !w.running {
		return
	}
	for w.linesTaken <= y {
		// after WaitDone every line of the frame has been posted
		if !w.rendering && len(w.scanlines) == 0 {
			return
		}
		select {
		case <-w.scanlines:
			w.linesTaken++
		case <-w.ctx.Done():
			return
		}
	}
}
