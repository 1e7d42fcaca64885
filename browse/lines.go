package main

import (
	"bufio"
	"io"
	"net/url"
	"strings"

	"github.com/gdamore/tcell"
	"github.com/mattn/go-runewidth"
	"github.com/thistlecode/gemini"
)

func NewLineConverter(resp *gemini.DialResponse, width int) *LineConverter {
	return &LineConverter{
		Response: resp,
		MaxWidth: width,
	}
}

// LineConverter turns a response body's text/gemini lines into
// drawable Lines, tracking whether a "```" toggle has put the reader
// inside a preformatted block.
type LineConverter struct {
	Response     *gemini.DialResponse
	MaxWidth     int
	preFormatted bool
}

func (lc *LineConverter) process(s string) (l Line, isVisualLine bool) {
	if strings.HasPrefix(s, "```") {
		lc.preFormatted = !lc.preFormatted
		return l, false
	}
	if lc.preFormatted {
		return PreformattedTextLine{Text: s}, true
	}
	if strings.HasPrefix(s, "=>") {
		return LinkLine{Text: s, MaxWidth: lc.MaxWidth}, true
	}
	if strings.HasPrefix(s, "#") {
		return HeadingLine{Text: s, MaxWidth: lc.MaxWidth}, true
	}
	if strings.HasPrefix(s, "* ") {
		return UnorderedListItemLine{Text: s, MaxWidth: lc.MaxWidth}, true
	}
	if strings.HasPrefix(s, ">") {
		return QuoteLine{Text: s, MaxWidth: lc.MaxWidth}, true
	}
	return TextLine{Text: s, MaxWidth: lc.MaxWidth}, true
}

func (lc *LineConverter) Lines() (lines []Line, err error) {
	reader := bufio.NewReader(lc.Response.Body)
	var s string
	for {
		s, err = reader.ReadString('\n')
		line, isVisual := lc.process(strings.TrimRight(s, "\n"))
		if isVisual {
			lines = append(lines, line)
		}
		if err != nil {
			break
		}
	}
	if err == io.EOF {
		err = nil
	}
	return
}

// Line is a single renderable gemtext line.
type Line interface {
	Draw(to tcell.Screen, atX, atY int, highlighted bool) (x, y int)
}

type TextLine struct {
	Text     string
	MaxWidth int
}

func (l TextLine) Draw(to tcell.Screen, atX, atY int, highlighted bool) (x, y int) {
	return NewText(to, l.Text).WithOffset(atX, atY).WithMaxWidth(l.MaxWidth).Draw()
}

type PreformattedTextLine struct {
	Text string
}

func (l PreformattedTextLine) Draw(to tcell.Screen, atX, atY int, highlighted bool) (x, y int) {
	for _, c := range l.Text {
		var comb []rune
		w := runewidth.RuneWidth(c)
		if w == 0 {
			comb = []rune{c}
			c = ' '
			w = 1
		}
		to.SetContent(atX, atY, c, comb, tcell.StyleDefault)
		atX += w
	}
	return atX, atY
}

type LinkLine struct {
	Text     string
	MaxWidth int
}

// URL extracts the destination of a "=> target [title]" line, resolved
// against relativeTo. The target ends at the first space or tab, so
// both a space-separated title and the tab-aliased form that
// gemtext.Builder.AddLink produces are handled.
func (l LinkLine) URL(relativeTo *url.URL) (u *url.URL, err error) {
	urlString := strings.TrimPrefix(l.Text, "=>")
	urlString = strings.TrimSpace(urlString)
	urlString = strings.SplitN(urlString, " ", 2)[0]
	urlString = strings.SplitN(urlString, "\t", 2)[0]
	u, err = url.Parse(urlString)
	if err != nil {
		return
	}
	if relativeTo == nil {
		return
	}
	return relativeTo.ResolveReference(u), nil
}

func (l LinkLine) Draw(to tcell.Screen, atX, atY int, highlighted bool) (x, y int) {
	ls := tcell.StyleDefault.Foreground(tcell.ColorBlue)
	if highlighted {
		ls = ls.Underline(true)
	}
	return NewText(to, l.Text).WithOffset(atX+2, atY).WithMaxWidth(l.MaxWidth).WithStyle(ls).Draw()
}

type HeadingLine struct {
	Text     string
	MaxWidth int
}

func (l HeadingLine) Draw(to tcell.Screen, atX, atY int, highlighted bool) (x, y int) {
	return NewText(to, l.Text).WithOffset(atX, atY).WithMaxWidth(l.MaxWidth).WithStyle(tcell.StyleDefault.Foreground(tcell.ColorGreen)).Draw()
}

type UnorderedListItemLine struct {
	Text     string
	MaxWidth int
}

func (l UnorderedListItemLine) Draw(to tcell.Screen, atX, atY int, highlighted bool) (x, y int) {
	return NewText(to, l.Text).WithOffset(atX+2, atY).WithMaxWidth(l.MaxWidth).Draw()
}

type QuoteLine struct {
	Text     string
	MaxWidth int
}

func (l QuoteLine) Draw(to tcell.Screen, atX, atY int, highlighted bool) (x, y int) {
	return NewText(to, l.Text).WithOffset(atX+2, atY).WithMaxWidth(l.MaxWidth).WithStyle(tcell.StyleDefault.Foreground(tcell.ColorLightGrey)).Draw()
}
