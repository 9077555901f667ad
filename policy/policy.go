package policy

import (
	"context"
	"fmt"
	"strings"
)

// Drain priorities.
const (
	PriorityStrict    = "strict"    // VIP queue always first (default)
	PriorityAlternate = "alternate" // one Normal attempt after VIPBurst VIP seatings
)

// DefaultVIPBurst is used by the alternate priority when VIPBurst is unset.
const DefaultVIPBurst = 3

// Policy controls queue draining.
//
//   - Priority selects strict or alternating VIP priority.
//   - VIPBurst is the number of consecutive VIP seatings after which the
//     alternate priority gives the Normal queue one attempt first.
//   - HeadOfLine restricts draining to the first entry of each queue;
//     otherwise the first entry that fits is seated.
//
// A nil *Policy means strict first-fit draining.
type Policy struct {
	Priority   string
	VIPBurst   int
	HeadOfLine bool
}

// Config represents the declarative, serialisable part of a Policy.
type Config struct {
	Priority   string `json:"priority,omitempty" yaml:"priority,omitempty"`
	VIPBurst   int    `json:"vipBurst,omitempty" yaml:"vipBurst,omitempty"`
	HeadOfLine bool   `json:"headOfLine,omitempty" yaml:"headOfLine,omitempty"`
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if c == nil {
		return nil
	}
	switch strings.ToLower(c.Priority) {
	case "", PriorityStrict, PriorityAlternate:
	default:
		return fmt.Errorf("unsupported drain priority: %q", c.Priority)
	}
	if c.VIPBurst < 0 {
		return fmt.Errorf("vipBurst must be >= 0, got %d", c.VIPBurst)
	}
	return nil
}

// ToConfig converts a runtime Policy into a Config.
func ToConfig(p *Policy) *Config {
	if p == nil {
		return nil
	}
	return &Config{Priority: p.Priority, VIPBurst: p.VIPBurst, HeadOfLine: p.HeadOfLine}
}

// FromConfig converts a Config to a runtime Policy.
func FromConfig(c *Config) *Policy {
	if c == nil {
		return nil
	}
	return &Policy{Priority: strings.ToLower(c.Priority), VIPBurst: c.VIPBurst, HeadOfLine: c.HeadOfLine}
}

// Alternate reports whether the alternating priority is in effect.
func (p *Policy) Alternate() bool {
	return p != nil && p.Priority == PriorityAlternate
}

// FirstFit reports whether any fitting entry may be seated, not only the head.
func (p *Policy) FirstFit() bool {
	return p == nil || !p.HeadOfLine
}

// NormalFirst reports whether the next drain pass should try the Normal
// queue before the VIP queue, given the number of consecutive VIP seatings.
func (p *Policy) NormalFirst(vipStreak int) bool {
	if !p.Alternate() {
		return false
	}
	burst := p.VIPBurst
	if burst <= 0 {
		burst = DefaultVIPBurst
	}
	return vipStreak >= burst
}

type ctxKeyT struct{}

var ctxKey ctxKeyT

// WithPolicy embeds policy in ctx.
func WithPolicy(ctx context.Context, p *Policy) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxKey, p)
}

// FromContext extracts the policy embedded with WithPolicy.
func FromContext(ctx context.Context) *Policy {
	if ctx == nil {
		return nil
	}
	if v, ok := ctx.Value(ctxKey).(*Policy); ok {
		return v
	}
	return nil
}
