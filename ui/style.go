package ui

import (
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/brsh/pingm/board"
)

// Latency tiers. Replies at or below warnAbove are calm green, those at
// or below alertAbove are yellow; everything slower, and every round
// without a reply, is red.
const (
	warnAbove  = 250 * time.Millisecond
	alertAbove = 700 * time.Millisecond
)

// History symbols, one per round.
const (
	symbolReply       = '.'
	symbolTimeout     = 'x'
	symbolError       = '?'
	symbolUnreachable = ' '
)

func symbolFor(o board.Outcome) rune {
	switch o {
	case board.Reply:
		return symbolReply
	case board.Timeout:
		return symbolTimeout
	case board.Error:
		return symbolError
	default:
		return symbolUnreachable
	}
}

// tier buckets a result for coloring.
type tier uint8

const (
	tierGood tier = iota
	tierWarn
	tierAlert
)

func tierFor(r board.Result) tier {
	if r.Outcome != board.Reply {
		return tierAlert
	}
	switch {
	case r.RTT > alertAbove:
		return tierAlert
	case r.RTT > warnAbove:
		return tierWarn
	default:
		return tierGood
	}
}

var (
	styleBase   = tcell.StyleDefault
	styleMuted  = tcell.StyleDefault.Foreground(tcell.ColorGray)
	styleHeader = tcell.StyleDefault.Bold(true)

	// foregrounds for the latency column and the freshest history symbol
	tierText = map[tier]tcell.Style{
		tierGood:  tcell.StyleDefault.Foreground(tcell.ColorGreen),
		tierWarn:  tcell.StyleDefault.Foreground(tcell.ColorYellow),
		tierAlert: tcell.StyleDefault.Foreground(tcell.ColorRed),
	}

	// background tints for the host name cell, tracking the newest round
	tierTint = map[tier]tcell.Style{
		tierGood:  tcell.StyleDefault.Background(tcell.ColorGreen).Foreground(tcell.ColorBlack),
		tierWarn:  tcell.StyleDefault.Background(tcell.ColorYellow).Foreground(tcell.ColorBlack),
		tierAlert: tcell.StyleDefault.Background(tcell.ColorRed).Foreground(tcell.ColorWhite),
	}
)
