// Package ui draws the host board on a cursor-addressable terminal and
// turns the first keypress or interrupt into a stop request.
package ui

import (
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/gdamore/tcell/v2"
)

// Dashboard owns the terminal for the duration of a run. It paints the
// fixed layout once, then overwrites the host rows in place every round;
// tcell only transmits cells that actually changed, so updates do not
// flicker.
type Dashboard struct {
	screen tcell.Screen

	stop     chan struct{}
	stopOnce sync.Once
	done     chan struct{}
	doneOnce sync.Once

	nameWidth int
	cells     int
	rows      int
}

func NewDashboard() *Dashboard {
	return &Dashboard{
		stop: make(chan struct{}),
		done: make(chan struct{}),
	}
}

// Open takes over the terminal and starts the input watchers. It fails
// when the terminal cannot do cursor addressing (TERM=dumb, a pipe);
// callers must treat that as fatal rather than draw into a scrolling
// stream.
func (d *Dashboard) Open() error {
	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("terminal does not support cursor control: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("cannot initialize terminal: %w", err)
	}

	screen.SetStyle(styleBase)
	screen.HideCursor()
	screen.Clear()
	d.screen = screen

	go d.watchKeys()
	go d.watchSignals()

	return nil
}

// watchKeys drains the event queue and turns the first keypress into the
// stop request. Resizes just repaint what is already on screen.
func (d *Dashboard) watchKeys() {
	for {
		ev := d.screen.PollEvent()
		if ev == nil {
			return
		}
		switch ev.(type) {
		case *tcell.EventKey:
			d.requestStop()
		case *tcell.EventResize:
			d.screen.Sync()
		}
	}
}

// watchSignals maps SIGINT and SIGTERM onto the same stop request as a
// keypress. Raw mode swallows the usual Ctrl-C-to-SIGINT translation,
// but signals from outside (kill, a closing terminal emulator) still
// arrive here.
func (d *Dashboard) watchSignals() {
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(ch)

	select {
	case <-ch:
		d.requestStop()
	case <-d.done:
	}
}

func (d *Dashboard) requestStop() {
	d.stopOnce.Do(func() { close(d.stop) })
}

// Stopped returns the channel that is closed on the first keypress or
// termination signal.
func (d *Dashboard) Stopped() <-chan struct{} {
	return d.stop
}

// Width is the current terminal width in cells.
func (d *Dashboard) Width() int {
	w, _ := d.screen.Size()
	return w
}

// Close releases the terminal and restores the previous screen content.
// Safe to call when Open never succeeded.
func (d *Dashboard) Close() {
	d.doneOnce.Do(func() { close(d.done) })
	if d.screen != nil {
		d.screen.Fini()
	}
}
