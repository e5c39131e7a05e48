package models

import (
	"fmt"
	"strings"
)

// MarketContext is the market condition a trade was taken in.
type MarketContext int

const (
	ContextUnknown MarketContext = iota
	ContextStrongTrend
	ContextTradingRange
	ContextBroadChannel
	ContextTightChannel
	ContextBreakoutMode
	ContextClimax
)

type contextLabels struct {
	canonical string
	short     string
	legacy    string
}

var contextTable = map[MarketContext]contextLabels{
	ContextStrongTrend:  {"Strong Trend (強趨勢)", "Strong Trend", "強趨勢 (Strong Trend)"},
	ContextTradingRange: {"Trading Range (交易區間)", "Trading Range", "交易區間 (Trading Range)"},
	ContextBroadChannel: {"Broad Channel (寬通道)", "Broad Channel", "寬通道 (Broad Channel)"},
	ContextTightChannel: {"Tight Channel (窄通道)", "Tight Channel", "窄通道 (Tight Channel)"},
	ContextBreakoutMode: {"Breakout Mode (突破模式)", "Breakout Mode", "突破模式 (Breakout Mode)"},
	ContextClimax:       {"Climax (高潮)", "Climax", "高潮 (Climax)"},
}

// contextOrder is the fixed display order of the six contexts.
var contextOrder = []MarketContext{
	ContextStrongTrend,
	ContextTradingRange,
	ContextBroadChannel,
	ContextTightChannel,
	ContextBreakoutMode,
	ContextClimax,
}

var contextByLabel = func() map[string]MarketContext {
	m := make(map[string]MarketContext, len(contextTable)*3)
	for c, l := range contextTable {
		m[l.canonical] = c
		m[l.short] = c
		m[l.legacy] = c
	}
	return m
}()

// Contexts returns the six known contexts in display order.
func Contexts() []MarketContext {
	out := make([]MarketContext, len(contextOrder))
	copy(out, contextOrder)
	return out
}

// ParseContext resolves a label to a context. Only exact matches on a
// canonical, short or legacy label are recognized.
func ParseContext(s string) MarketContext {
	if c, ok := contextByLabel[s]; ok {
		return c
	}
	return ContextUnknown
}

// ShortLabel strips a parenthetical alias from a free-text context label.
func ShortLabel(s string) string {
	if i := strings.Index(s, "("); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSpace(s)
}

// Known reports whether c is one of the six contexts.
func (c MarketContext) Known() bool {
	_, ok := contextTable[c]
	return ok
}

// Label returns the canonical label.
func (c MarketContext) Label() string {
	return contextTable[c].canonical
}

// Short returns the label without its alias.
func (c MarketContext) Short() string {
	return contextTable[c].short
}

// Legacy returns the label written by earlier journal versions.
func (c MarketContext) Legacy() string {
	return contextTable[c].legacy
}

func (c MarketContext) String() string {
	if !c.Known() {
		return "Unknown"
	}
	return c.Short()
}

// MarshalText encodes the context as its canonical label.
func (c MarketContext) MarshalText() ([]byte, error) {
	if !c.Known() {
		return []byte(""), nil
	}
	return []byte(c.Label()), nil
}

// UnmarshalText decodes any recognized label.
func (c *MarketContext) UnmarshalText(text []byte) error {
	parsed := ParseContext(string(text))
	if !parsed.Known() {
		return fmt.Errorf("unknown market context %q", string(text))
	}
	*c = parsed
	return nil
}
