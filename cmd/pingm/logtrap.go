package main

import (
	"bytes"
	"fmt"
	"io"
	"log"
	"os"
	"sync"
)

// logTrap buffers everything the standard logger emits while the board
// owns the screen, so stray messages cannot tear the display.
type logTrap struct {
	mtx      sync.Mutex
	keep     int
	messages []string
}

func trapLogs(keep int) *logTrap {
	lt := &logTrap{keep: keep}
	log.SetFlags(0)
	log.SetOutput(lt)
	return lt
}

func (lt *logTrap) Write(p []byte) (n int, err error) {
	lt.mtx.Lock()
	defer lt.mtx.Unlock()

	lt.messages = append(lt.messages, string(bytes.TrimSpace(p)))
	if delta := len(lt.messages) - lt.keep; lt.keep > 0 && delta > 0 {
		lt.messages = lt.messages[delta:]
	}
	return len(p), nil
}

// Replay hands the logger back to stderr and reprints what was trapped
// while the screen was taken over.
func (lt *logTrap) Replay(w io.Writer) {
	log.SetOutput(os.Stderr)

	lt.mtx.Lock()
	defer lt.mtx.Unlock()
	for _, msg := range lt.messages {
		fmt.Fprintln(w, msg)
	}
	lt.messages = nil
}
