package tui

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"cutline/internal/timeline"
)

const (
	nameWidth  = 10
	rulerEvery = 10
)

var clipGlyphs = map[timeline.ClipKind]rune{
	timeline.KindVideo:   '█',
	timeline.KindAudio:   '▓',
	timeline.KindCaption: '░',
}

// cell is one rendered column of a track lane.
type cell struct {
	r     rune
	style string
}

// ColumnOf maps a timeline position to a display column at the given zoom.
func ColumnOf(t, zoom, unitsPerColumn float64) int {
	units, err := timeline.TimeToUnits(t, zoom)
	if err != nil || unitsPerColumn <= 0 {
		return 0
	}
	return int(math.Floor(units / unitsPerColumn))
}

// RenderTimeline draws a ruler and one lane per track, scrolled so the
// playhead stays visible within width columns.
func RenderTimeline(doc timeline.Document, selected string, unitsPerColumn float64, width int) string {
	lane := width - nameWidth - 1
	if lane < 10 {
		lane = 10
	}
	playhead := ColumnOf(doc.CurrentTime, doc.Zoom, unitsPerColumn)
	first := 0
	if playhead >= lane {
		first = playhead - lane/2
	}

	var b strings.Builder
	b.WriteString(strings.Repeat(" ", nameWidth+1))
	b.WriteString(renderRuler(doc.Zoom, unitsPerColumn, first, lane))
	b.WriteByte('\n')

	if len(doc.Tracks) == 0 {
		b.WriteString(infoLineStyle.Render("(no tracks)"))
		b.WriteByte('\n')
		return b.String()
	}

	for _, t := range doc.Tracks {
		name := TruncateWithEllipsis(NonEmptyOrDash(firstNonEmpty(t.Name, t.ID)), nameWidth)
		b.WriteString(trackNameStyle.Render(pad(name, nameWidth)))
		b.WriteByte(' ')
		b.WriteString(renderLane(t, doc, selected, unitsPerColumn, first, lane, playhead))
		b.WriteByte('\n')
	}
	return b.String()
}

func renderRuler(zoom, unitsPerColumn float64, first, lane int) string {
	ruler := []rune(strings.Repeat(" ", lane))
	for col := first; col < first+lane; col++ {
		if col%rulerEvery != 0 {
			continue
		}
		t, err := timeline.UnitsToTime(float64(col)*unitsPerColumn, zoom)
		if err != nil {
			continue
		}
		label := []rune(fmt.Sprintf("|%gs", math.Round(t*10)/10))
		for i, r := range label {
			if pos := col - first + i; pos < lane {
				ruler[pos] = r
			}
		}
	}
	return infoLineStyle.Render(string(ruler))
}

func renderLane(t timeline.Track, doc timeline.Document, selected string, unitsPerColumn float64, first, lane, playhead int) string {
	cells := make([]cell, lane)
	for i := range cells {
		cells[i] = cell{r: '·', style: "empty"}
	}

	for _, c := range t.Clips {
		start := ColumnOf(c.StartTime, doc.Zoom, unitsPerColumn)
		end := ColumnOf(c.EndTime, doc.Zoom, unitsPerColumn)
		if end <= start {
			end = start + 1
		}
		glyph, ok := clipGlyphs[c.Kind]
		if !ok {
			glyph = '█'
		}
		style := string(c.Kind)
		if c.ID == selected {
			style = "selected"
		}
		for col := start; col < end; col++ {
			pos := col - first
			if pos < 0 || pos >= lane {
				continue
			}
			r := glyph
			if col == start {
				r = '▌'
			}
			cells[pos] = cell{r: r, style: style}
		}
	}

	for _, tr := range t.Transitions {
		a, okA := doc.Clip(tr.ClipAID)
		if !okA {
			continue
		}
		pos := ColumnOf(a.EndTime, doc.Zoom, unitsPerColumn) - first
		if pos >= 0 && pos < lane {
			cells[pos] = cell{r: '⋈', style: "transition"}
		}
	}

	if pos := playhead - first; pos >= 0 && pos < lane {
		if cells[pos].style == "empty" {
			cells[pos].r = '│'
		}
		cells[pos].style = "playhead"
	}

	var b strings.Builder
	var run []rune
	current := ""
	flush := func() {
		if len(run) == 0 {
			return
		}
		b.WriteString(styleFor(current).Render(string(run)))
		run = run[:0]
	}
	for _, c := range cells {
		if c.style != current {
			flush()
			current = c.style
		}
		run = append(run, c.r)
	}
	flush()
	return b.String()
}

func styleFor(name string) lipgloss.Style {
	switch name {
	case "selected":
		return selectedClipStyle
	case "playhead":
		return playheadStyle
	case "empty", "transition":
		return infoLineStyle
	}
	return clipStyle(name)
}

// FormatTimecode renders seconds as m:ss.t.
func FormatTimecode(seconds float64) string {
	if seconds < 0 || math.IsNaN(seconds) || math.IsInf(seconds, 0) {
		seconds = 0
	}
	tenths := int(math.Round(seconds * 10))
	return fmt.Sprintf("%d:%02d.%d", tenths/600, (tenths/10)%60, tenths%10)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
