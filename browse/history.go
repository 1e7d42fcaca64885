package main

import (
	"fmt"
	"io"
	"net/url"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/thistlecode/gemini"
	"github.com/thistlecode/gemini/gemtext"
)

func NewHistory(size int, historyFileName string) (h *History, closer func(), err error) {
	h = &History{
		max:      size,
		past:     []Visit{},
		browsers: []*Browser{},
	}
	// Read past history.
	lines, err := readLines(historyFileName)
	if err != nil {
		return
	}
	for _, s := range lines {
		var v Visit
		v, err = ParseVisit(s)
		if err != nil {
			err = fmt.Errorf("history: couldn't parse visit: %w", err)
			return
		}
		h.past = append(h.past, v)
	}
	// Open file to add to history.
	h.f, err = os.OpenFile(historyFileName, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return
	}
	closer = func() {
		h.f.Sync()
		h.f.Close()
	}
	return
}

// History tracks the stack of pages viewed this session (for
// back/forward navigation) and the on-disk log of every visit, ever
// (for the "min://history" pseudo-page).
type History struct {
	max      int
	past     []Visit
	browsers []*Browser
	index    int
	f        *os.File
}

func ParseVisit(s string) (v Visit, err error) {
	parts := strings.SplitN(s, "\t", 2)
	if len(parts) != 2 {
		return
	}
	v.Time, err = time.Parse(time.RFC3339, parts[0])
	if err != nil {
		return
	}
	v.URL = parts[1]
	return
}

type Visit struct {
	Time time.Time
	URL  string
}

func (v Visit) TabDelimited() string {
	return fmt.Sprintf("%s\t%s\n", v.Time.Format(time.RFC3339), v.URL)
}

func (h *History) Current() (b *Browser) {
	if h.index < len(h.browsers) {
		return h.browsers[h.index]
	}
	return nil
}

func (h *History) Back() {
	if h.index > 0 {
		h.index--
	}
}

func (h *History) Forward() {
	h.index++
	if h.index >= len(h.browsers) {
		h.index = len(h.browsers) - 1
	}
}

func (h *History) Add(b *Browser) error {
	if len(h.browsers) == h.max && h.max > 0 {
		h.browsers = h.browsers[1:]
	}
	h.browsers = append(h.browsers, b)
	h.index = len(h.browsers) - 1
	if b.URL.Scheme == "min" {
		// Don't save the fact that we viewed history or bookmarks.
		return nil
	}
	v := Visit{
		URL:  b.URL.String(),
		Time: time.Now(),
	}
	h.past = append(h.past, v)
	_, err := fmt.Fprintf(h.f, v.TabDelimited())
	return err
}

// All renders the "min://history" pseudo-page: every past visit, most
// recent first, as a gemtext document built with the same Builder the
// domain handlers use for generated pages.
func (h *History) All() (u *url.URL, resp *gemini.DialResponse) {
	u = &url.URL{Scheme: "min", Opaque: "history"}
	doc := gemtext.NewBuilder()
	doc.AddH1Header("History")
	doc.AddLine("")
	for _, v := range byTimeDescending(h.past) {
		doc.AddRawLink(v.URL)
		doc.AddLine(fmt.Sprintf("  visited %s", v.Time.Format(time.RFC3339)))
	}
	resp = &gemini.DialResponse{
		Code: gemini.CodeSuccess,
		Body: io.NopCloser(strings.NewReader(string(doc.Build()))),
	}
	return
}

func byTimeDescending(views []Visit) []Visit {
	sort.Slice(views, func(i, j int) bool {
		return views[j].Time.Before(views[i].Time)
	})
	return views
}
