package nmon

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru"
	"github.com/xtxerr/nmonreport/config"
)

// dateLayouts are tried in order. nmon writes 15-JUN-2015; the ISO forms
// show up in post-processed captures. Month names match case-insensitively.
var dateLayouts = []string{
	"02-Jan-2006",
	"2-Jan-2006",
	"2006-01-02",
	"2006/01/02",
	"01/02/2006",
}

// DateParser parses marker dates, caching results since every marker of a
// day repeats the same text.
type DateParser struct {
	cache  *lru.Cache
	hits   int
	misses int
}

// NewDateParser creates a parser with a cache of the given size.
// size <= 0 uses the default size.
func NewDateParser(size int) *DateParser {
	if size <= 0 {
		size = config.DefaultDateCacheSize
	}
	cache, _ := lru.New(size)
	return &DateParser{cache: cache}
}

// Parse returns midnight UTC of the given date text.
func (p *DateParser) Parse(text string) (time.Time, error) {
	if v, ok := p.cache.Get(text); ok {
		p.hits++
		return v.(time.Time), nil
	}
	p.misses++

	trimmed := strings.TrimSpace(text)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, trimmed); err == nil {
			p.cache.Add(text, t)
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", text)
}

// Stats returns cache hits and misses.
func (p *DateParser) Stats() (hits, misses int) {
	return p.hits, p.misses
}

// ParseClock parses "HH:MM:SS" (seconds optional) into its components.
func ParseClock(text string) (hour, min, sec int, err error) {
	parts := strings.Split(strings.TrimSpace(text), ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, 0, 0, fmt.Errorf("unrecognized time %q", text)
	}

	vals := [3]int{}
	limits := [3]int{23, 59, 60}
	for i, part := range parts {
		n, err := strconv.Atoi(part)
		if err != nil || n < 0 || n > limits[i] {
			return 0, 0, 0, fmt.Errorf("unrecognized time %q", text)
		}
		vals[i] = n
	}
	return vals[0], vals[1], vals[2], nil
}
