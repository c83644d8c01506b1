package ui

import (
	"fmt"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/brsh/pingm/board"
)

const (
	marginX  = 1
	gutterW  = 2
	rttWidth = 6 // widest latency text, "999+ms"

	minNameWidth = 4 // the "host" header
	maxNameWidth = 24

	minHistory = 5
	maxHistory = 1000
)

func clampNameWidth(w int) int {
	if w < minNameWidth {
		return minNameWidth
	}
	if w > maxNameWidth {
		return maxNameWidth
	}
	return w
}

// HistoryCapacity reports how many response cells fit beside a name
// column of the given width, clamped to a sane range. A terminal too
// narrow for the layout still yields a small usable history; the
// overflow is clipped at the screen edge.
func (d *Dashboard) HistoryCapacity(nameWidth int) int {
	cells := d.Width() - 2*marginX - clampNameWidth(nameWidth) - rttWidth - 2*gutterW
	if cells < minHistory {
		return minHistory
	}
	if cells > maxHistory {
		return maxHistory
	}
	return cells
}

func (d *Dashboard) xName() int { return marginX }
func (d *Dashboard) xRTT() int  { return marginX + d.nameWidth + gutterW }
func (d *Dashboard) xHist() int { return d.xRTT() + rttWidth + gutterW }

// Layout paints the static parts of the board: the column headers, one
// row per host in the given order, the legend and the quit hint. Row
// geometry is fixed here; Render only ever overwrites the row contents.
func (d *Dashboard) Layout(hosts []*board.Host) {
	d.rows = len(hosts)
	d.nameWidth = minNameWidth
	for _, h := range hosts {
		if w := len([]rune(h.Name)); w > d.nameWidth {
			d.nameWidth = w
		}
	}
	d.nameWidth = clampNameWidth(d.nameWidth)
	if len(hosts) > 0 {
		d.cells = hosts[0].History.Cap()
	}

	d.screen.Clear()

	d.putText(d.xName(), 0, pad("host", d.nameWidth), styleHeader)
	d.putText(d.xRTT(), 0, padLeft("rtt", rttWidth), styleHeader)
	d.putText(d.xHist(), 0, "responses", styleHeader)

	for i, h := range hosts {
		d.putText(d.xName(), 1+i, pad(truncate(h.Name, d.nameWidth), d.nameWidth), styleBase)
		d.putText(d.xRTT(), 1+i, padLeft("--", rttWidth), styleMuted)
	}

	d.legend(1 + d.rows + 1)
	d.screen.Show()
}

func (d *Dashboard) legend(y int) {
	x := d.xName()
	for _, item := range []struct {
		sym   rune
		style tcell.Style
		label string
	}{
		{symbolReply, tierText[tierGood], "reply"},
		{symbolTimeout, tierText[tierAlert], "timeout"},
		{symbolError, tierText[tierAlert], "error"},
	} {
		d.screen.SetContent(x, y, item.sym, nil, item.style)
		d.putText(x+2, y, item.label, styleMuted)
		x += 2 + len(item.label) + 3
	}
	d.putText(x, y, "blank unreachable", styleMuted)

	d.putText(d.xName(), y+1, "press any key to quit", styleMuted)
}

// Render overwrites every host row with its current state: the name cell
// tinted by the newest result, the latency of the newest reply, and the
// response history oldest to newest. The freshest symbol carries its
// tier color, older ones fade to gray.
func (d *Dashboard) Render(hosts []*board.Host) {
	for i, h := range hosts {
		y := 1 + i

		nameStyle := styleBase
		rttText := padLeft("--", rttWidth)
		rttStyle := styleMuted

		if newest, ok := h.Last(); ok {
			nameStyle = tierTint[tierFor(newest)]
			if newest.Outcome == board.Reply {
				rttText = formatRTT(newest.RTT)
				rttStyle = tierText[tierFor(newest)]
			}
		}

		d.putText(d.xName(), y, pad(truncate(h.Name, d.nameWidth), d.nameWidth), nameStyle)
		d.putText(d.xRTT(), y, rttText, rttStyle)

		last := h.History.Len() - 1
		for j := 0; j < d.cells; j++ {
			sym, style := ' ', styleBase
			if j <= last {
				r := h.History.At(j)
				sym = symbolFor(r.Outcome)
				if j == last {
					style = tierText[tierFor(r)]
				} else {
					style = styleMuted
				}
			}
			d.screen.SetContent(d.xHist()+j, y, sym, nil, style)
		}
	}

	d.screen.Show()
}

// formatRTT renders a round trip time right-aligned in rttWidth cells.
// Everything at a second or above reads "999+ms"; such a reply is
// indistinguishable from dead for interactive purposes, and the column
// never shifts.
func formatRTT(rtt time.Duration) string {
	ms := rtt.Milliseconds()
	if ms >= 1000 {
		return "999+ms"
	}
	return fmt.Sprintf("%4dms", ms)
}

func pad(s string, width int) string {
	return fmt.Sprintf("%-*s", width, s)
}

func padLeft(s string, width int) string {
	return fmt.Sprintf("%*s", width, s)
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-1]) + "…"
}

func (d *Dashboard) putText(x, y int, s string, style tcell.Style) {
	for i, r := range []rune(s) {
		d.screen.SetContent(x+i, y, r, nil, style)
	}
}
