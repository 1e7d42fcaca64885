package main

import (
	"net/url"

	"github.com/gdamore/tcell"
	"github.com/thistlecode/gemini"
)

func NewBrowser(s tcell.Screen, w int, u *url.URL, resp *gemini.DialResponse) (b *Browser, err error) {
	b = &Browser{
		Screen:          s,
		URL:             u,
		Code:            resp.Code,
		Meta:            resp.Meta,
		ActiveLineIndex: -1,
	}
	maxWidth, _ := s.Size()
	if maxWidth > w {
		maxWidth = w
	}
	b.Lines, err = NewLineConverter(resp, maxWidth).Lines()
	b.calculateLinkIndices()
	return
}

// Browser renders a converted document as a scrollable, link-navigable
// screen.
type Browser struct {
	Screen          tcell.Screen
	URL             *url.URL
	Code            gemini.Code
	Meta            string
	Lines           []Line
	ScrollX         int
	MinScrollX      int
	ScrollY         int
	MinScrollY      int
	LinkLineIndices []int
	ActiveLineIndex int
}

func (b *Browser) ScrollLeft(by int) {
	if b.ScrollX < 0 {
		b.ScrollX += by
		if b.ScrollX > 0 {
			b.ScrollX = 0
		}
	}
}

func (b *Browser) ScrollRight(by int) {
	if b.ScrollX > b.MinScrollX {
		b.ScrollX -= by
		if b.ScrollX < b.MinScrollX {
			b.ScrollX = b.MinScrollX
		}
	}
}

func (b *Browser) ScrollUp(by int) {
	if b.ScrollY < 0 {
		b.ScrollY += by
		if b.ScrollY > 0 {
			b.ScrollY = 0
		}
	}
}

func (b *Browser) ScrollDown(by int) {
	if b.ScrollY > b.MinScrollY {
		b.ScrollY -= by
		if b.ScrollY < b.MinScrollY {
			b.ScrollY = b.MinScrollY
		}
	}
}

func (b *Browser) calculateLinkIndices() {
	for i := 0; i < len(b.Lines); i++ {
		if _, ok := b.Lines[i].(LinkLine); ok {
			b.LinkLineIndices = append(b.LinkLineIndices, i)
		}
	}
}

func (b *Browser) CurrentLink() (u *url.URL, err error) {
	for i := 0; i < len(b.Lines); i++ {
		if i == b.ActiveLineIndex {
			if ll, ok := b.Lines[b.ActiveLineIndex].(LinkLine); ok {
				return ll.URL(b.URL)
			}
		}
	}
	return nil, nil
}

func (b *Browser) PreviousLink() {
	if len(b.LinkLineIndices) == 0 {
		return
	}
	if b.ActiveLineIndex < 0 {
		b.ActiveLineIndex = b.LinkLineIndices[len(b.LinkLineIndices)-1]
		return
	}
	var curIndex, li int
	for curIndex, li = range b.LinkLineIndices {
		if li == b.ActiveLineIndex {
			break
		}
	}
	if curIndex == 0 {
		b.ActiveLineIndex = b.LinkLineIndices[len(b.LinkLineIndices)-1]
		return
	}
	b.ActiveLineIndex = b.LinkLineIndices[curIndex-1]
}

func (b *Browser) NextLink() {
	if len(b.LinkLineIndices) == 0 {
		return
	}
	if b.ActiveLineIndex < 0 {
		b.ActiveLineIndex = b.LinkLineIndices[0]
		return
	}
	var curIndex, li int
	for curIndex, li = range b.LinkLineIndices {
		if li == b.ActiveLineIndex {
			break
		}
	}
	if curIndex == len(b.LinkLineIndices)-1 {
		b.ActiveLineIndex = b.LinkLineIndices[0]
		return
	}
	b.ActiveLineIndex = b.LinkLineIndices[curIndex+1]
}

func (b *Browser) Draw() {
	b.Screen.Clear()
	var maxX int
	x := b.ScrollX
	y := b.ScrollY
	for lineIndex, line := range b.Lines {
		highlighted := lineIndex == b.ActiveLineIndex
		xx, yy := line.Draw(b.Screen, x, y, highlighted)
		if xx > maxX {
			maxX = xx
		}
		y = yy + 1
	}
	// Calculate the maximum scroll area.
	w, h := b.Screen.Size()
	b.MinScrollX = (maxX * -1) + b.ScrollX + w
	b.MinScrollY = (y * -1) + b.ScrollY + h + 1
}

func (b *Browser) Focus() (next *url.URL, back, forward bool, err error) {
	b.Draw()
	b.Screen.Sync()
	for {
		switch ev := b.Screen.PollEvent().(type) {
		case *tcell.EventResize:
			b.Screen.Sync()
		case *tcell.EventKey:
			switch ev.Key() {
			case tcell.KeyEscape:
				return
			case tcell.KeyBacktab:
				b.PreviousLink()
			case tcell.KeyTAB:
				b.NextLink()
			case tcell.KeyCtrlO:
				b.PreviousLink()
			case tcell.KeyEnter:
				next, err = b.CurrentLink()
				return
			case tcell.KeyHome:
				b.ScrollX = 0
			case tcell.KeyEnd:
				b.ScrollX = b.MinScrollX
			case tcell.KeyLeft:
				b.ScrollLeft(1)
			case tcell.KeyUp:
				b.ScrollUp(1)
			case tcell.KeyDown:
				b.ScrollDown(1)
			case tcell.KeyRight:
				b.ScrollRight(1)
			case tcell.KeyCtrlU:
				_, h := b.Screen.Size()
				b.ScrollUp(h / 2)
			case tcell.KeyCtrlD:
				_, h := b.Screen.Size()
				b.ScrollDown(h / 2)
			case tcell.KeyPgUp:
				b.ScrollUp(5)
			case tcell.KeyPgDn:
				b.ScrollDown(5)
			case tcell.KeyRune:
				switch ev.Rune() {
				case 'g':
					b.ScrollY = 0
				case 'G':
					b.ScrollY = b.MinScrollY
				case 'H':
					back = true
					return
				case 'L':
					forward = true
					return
				case 'h':
					b.ScrollLeft(1)
				case 'j':
					b.ScrollDown(1)
				case 'k':
					b.ScrollUp(1)
				case 'l':
					b.ScrollRight(1)
				case 'n':
					b.NextLink()
				}
			}
		}
		b.Draw()
		b.Screen.Show()
	}
}
