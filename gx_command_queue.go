// gx_command_queue.go - GX Geometry Command Pipe, FIFO and Stall Buffer

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

/*
gx_command_queue.go - GX Geometry Command Pipe, FIFO and Stall Buffer

Commands reach the geometry engine as (opcode, parameter) entries. Each
parameter word of a multi-parameter command is its own entry; zero-parameter
commands occupy a single entry with a don't-care parameter.

Entries flow through three stages:

	producer -> [stall 64] -> [FIFO 256] -> [pipe 4] -> dispatch

A write goes straight to the pipe while the FIFO is empty and the pipe has
room, otherwise to the FIFO. When the FIFO is full the entry is parked in the
stall buffer and the producer is told to stop. Every time dispatch pops the
pipe down to two entries it refills it from the FIFO and moves parked entries
back into the FIFO. Once the stall buffer is empty the producer is released.

Nothing is ever dropped. A goroutine that keeps writing while stalled blocks
in Enqueue until dispatch makes room.
*/

package gx3d

import (
	"context"
	"sync"
)

// CmdEntry is one command queue slot.
type CmdEntry struct {
	Command uint8
	Param   uint32
}

// CommandQueue buffers geometry commands between a producer and the
// dispatcher. It is the only part of the engine guarded by a lock.
type CommandQueue struct {
	mu   sync.Mutex
	cond *sync.Cond

	pipe  ringFIFO[CmdEntry]
	fifo  ringFIFO[CmdEntry]
	stall ringFIFO[CmdEntry]

	// Outstanding commands that keep GXSTAT busy bits raised
	numPushPop int
	numTest    int

	// Packed GXFIFO port decode state
	packedCmd    uint32
	packedLeft   int
	packedParam  int
	packedParams int

	stalled bool
	closed  bool
	onStall func(stalled bool)
}

// NewCommandQueue returns an empty queue. onStall may be nil.
func NewCommandQueue(onStall func(stalled bool)) *CommandQueue {
	q := &CommandQueue{
		pipe:    newRingFIFO[CmdEntry](GX_CMD_PIPE_SIZE),
		fifo:    newRingFIFO[CmdEntry](GX_CMD_FIFO_SIZE),
		stall:   newRingFIFO[CmdEntry](GX_CMD_STALL_SIZE),
		onStall: onStall,
	}
	q.cond = sync.NewCond(&q.mu)
	return q
}

// Reset empties every stage and releases any blocked producer.
func (q *CommandQueue) Reset() {
	q.mu.Lock()
	q.pipe.Clear()
	q.fifo.Clear()
	q.stall.Clear()
	q.numPushPop = 0
	q.numTest = 0
	q.packedCmd = 0
	q.packedLeft = 0
	q.packedParam = 0
	q.packedParams = 0
	wasStalled := q.stalled
	q.stalled = false
	q.cond.Broadcast()
	q.mu.Unlock()

	if wasStalled && q.onStall != nil {
		q.onStall(false)
	}
}

// Close wakes blocked producers for good. Enqueue returns
// context.Canceled afterwards.
func (q *CommandQueue) Close() {
	q.mu.Lock()
	q.closed = true
	q.cond.Broadcast()
	q.mu.Unlock()
}

// Write appends one entry. It never blocks and never drops: when the FIFO is
// full the entry goes to the stall buffer and Write reports true to tell the
// producer to stop. Callers on the dispatch goroutine must then run the
// engine until Stalled is false; callers on other goroutines use Enqueue.
func (q *CommandQueue) Write(e CmdEntry) (stalled bool) {
	q.mu.Lock()
	stalled, notify := q.writeLocked(e)
	q.mu.Unlock()

	if notify && q.onStall != nil {
		q.onStall(true)
	}
	return stalled
}

func (q *CommandQueue) writeLocked(e CmdEntry) (stalled, notify bool) {
	if q.fifo.IsEmpty() && !q.pipe.IsFull() {
		q.pipe.Write(e)
	} else if q.fifo.IsFull() {
		for q.stall.IsFull() && !q.closed {
			q.cond.Wait()
		}
		q.stall.Write(e)
		notify = !q.stalled
		q.stalled = true
		return true, notify
	} else {
		q.fifo.Write(e)
	}

	switch e.Command {
	case GX_CMD_MTX_PUSH, GX_CMD_MTX_POP:
		q.numPushPop++
	case GX_CMD_BOX_TEST, GX_CMD_POS_TEST, GX_CMD_VEC_TEST:
		q.numTest++
	}
	return q.stalled, false
}

// Enqueue writes all entries of one command from a producer goroutine. It
// first waits for the stall buffer to drain, then writes every entry without
// yielding so a multi-word command is never interleaved with another
// producer's.
func (q *CommandQueue) Enqueue(ctx context.Context, entries ...CmdEntry) error {
	if err := q.WaitWritable(ctx); err != nil {
		return err
	}
	q.mu.Lock()
	notify := false
	for _, e := range entries {
		_, n := q.writeLocked(e)
		notify = notify || n
	}
	q.mu.Unlock()

	if notify && q.onStall != nil {
		q.onStall(true)
	}
	return nil
}

// WaitWritable blocks until the stall buffer is empty or ctx is done.
func (q *CommandQueue) WaitWritable(ctx context.Context) error {
	stop := context.AfterFunc(ctx, func() {
		q.mu.Lock()
		q.cond.Broadcast()
		q.mu.Unlock()
	})
	defer stop()

	q.mu.Lock()
	defer q.mu.Unlock()
	for q.stalled && !q.closed {
		if err := ctx.Err(); err != nil {
			return err
		}
		q.cond.Wait()
	}
	if q.closed {
		return context.Canceled
	}
	return ctx.Err()
}

// Read pops the next entry for dispatch. refilled reports that the pipe was
// topped up from the FIFO, which is when FIFO level based IRQ and DMA
// conditions must be re-evaluated.
func (q *CommandQueue) Read() (e CmdEntry, refilled, ok bool) {
	q.mu.Lock()
	e, ok = q.pipe.Read()
	if !ok {
		q.mu.Unlock()
		return e, false, false
	}

	released := false
	if q.pipe.Level() <= 2 {
		refilled = true
		for i := 0; i < 2; i++ {
			next, more := q.fifo.Read()
			if !more {
				break
			}
			q.pipe.Write(next)
		}

		if !q.stall.IsEmpty() {
			for !q.stall.IsEmpty() && !q.fifo.IsFull() {
				parked, _ := q.stall.Read()
				q.writeLocked(parked)
			}
			q.cond.Broadcast()
		}
		if q.stalled && q.stall.IsEmpty() {
			q.stalled = false
			released = true
			q.cond.Broadcast()
		}
	}
	q.mu.Unlock()

	if released && q.onStall != nil {
		q.onStall(false)
	}
	return e, refilled, true
}

// CommandDone retires one push/pop or test command. The counters count
// queued entries, so a command retires all of its parameter words.
func (q *CommandQueue) CommandDone(cmd uint8) {
	n := max(int(gxCmdNumParams[cmd]), 1)
	q.mu.Lock()
	switch cmd {
	case GX_CMD_MTX_PUSH, GX_CMD_MTX_POP:
		q.numPushPop = max(q.numPushPop-n, 0)
	case GX_CMD_BOX_TEST, GX_CMD_POS_TEST, GX_CMD_VEC_TEST:
		q.numTest = max(q.numTest-n, 0)
	}
	q.mu.Unlock()
}

// WritePacked decodes one word written to the packed GXFIFO port. The first
// word carries up to four opcodes, one per byte from the low end; the words
// that follow are their parameters in order. A word of all zeroes is a
// single NOP.
func (q *CommandQueue) WritePacked(val uint32) {
	var out [5]CmdEntry
	n := 0

	q.mu.Lock()
	if q.packedLeft == 0 {
		q.packedLeft = 4
		q.packedCmd = val
		q.packedParam = 0
		q.packedParams = int(gxCmdNumParams[val&0xFF])
		if q.packedParams > 0 {
			q.mu.Unlock()
			return
		}
	} else {
		q.packedParam++
	}

	for {
		if q.packedCmd&0xFF != 0 || (q.packedLeft == 4 && q.packedCmd == 0) {
			out[n] = CmdEntry{Command: uint8(q.packedCmd), Param: val}
			n++
		}
		if q.packedParam >= q.packedParams {
			q.packedCmd >>= 8
			q.packedLeft--
			if q.packedLeft == 0 {
				break
			}
			q.packedParam = 0
			q.packedParams = int(gxCmdNumParams[q.packedCmd&0xFF])
		}
		if q.packedParam < q.packedParams {
			break
		}
	}
	q.mu.Unlock()

	for i := 0; i < n; i++ {
		q.Write(out[i])
	}
}

// Stalled reports whether the producer has been told to stop.
func (q *CommandQueue) Stalled() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.stalled
}

// PipeEmpty reports whether dispatch has nothing left to read.
func (q *CommandQueue) PipeEmpty() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.pipe.IsEmpty()
}

// FIFOLevel returns the number of entries waiting in the 256-entry FIFO.
func (q *CommandQueue) FIFOLevel() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.fifo.Level()
}

// Pending returns the outstanding push/pop and test command counts.
func (q *CommandQueue) Pending() (pushPop, tests int) {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.numPushPop, q.numTest
}

// Len returns the total number of queued entries across all stages.
func (q *CommandQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.pipe.Level() + q.fifo.Level() + q.stall.Level()
}
