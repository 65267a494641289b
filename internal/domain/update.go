package domain

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// FlexInt is an int64 that also accepts numeric strings when decoding JSON.
// The web app occasionally serializes counters as strings, so the store
// coerces rather than trusting the client to send proper numbers.
type FlexInt int64

// UnmarshalJSON accepts a JSON number or a numeric string. Anything else is
// reported as ErrInvalidUpdate so the whole submission is rejected.
func (f *FlexInt) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		var unquoted string
		if err := json.Unmarshal(data, &unquoted); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidUpdate, err)
		}
		s = strings.TrimSpace(unquoted)
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		// Some clients send whole numbers with a fractional part (e.g. 42.0).
		fl, ferr := strconv.ParseFloat(s, 64)
		if ferr != nil || fl != float64(int64(fl)) {
			return fmt.Errorf("%w: not a whole number: %q", ErrInvalidUpdate, s)
		}
		n = int64(fl)
	}
	*f = FlexInt(n)
	return nil
}

// Int64 returns the underlying value, or fallback when f is nil.
func (f *FlexInt) Int64(fallback int64) int64 {
	if f == nil {
		return fallback
	}
	return int64(*f)
}

// PlayerUpdate is a partial game-end submission. Nil fields keep their
// current value. Score is additive on total_taps; Score and TapsPerMinute
// are max-merged against the stored bests.
type PlayerUpdate struct {
	Nickname      *string  `json:"nickname,omitempty"`
	Avatar        *string  `json:"avatar,omitempty"`
	Score         *FlexInt `json:"score,omitempty"`
	TapPower      *FlexInt `json:"tapPower,omitempty"`
	TapsPerMinute *FlexInt `json:"tapsPerMinute,omitempty"`
}

// Normalize clamps numeric fields to their legal floors: score and
// taps-per-minute at 0, tap power at 1. Clamping happens before the update
// reaches the storage engine so the stored invariants cannot be violated.
func (u *PlayerUpdate) Normalize() {
	clamp := func(f *FlexInt, floor int64) {
		if f != nil && int64(*f) < floor {
			*f = FlexInt(floor)
		}
	}
	clamp(u.Score, 0)
	clamp(u.TapsPerMinute, 0)
	clamp(u.TapPower, DefaultTapPower)
}

// Empty reports whether the update carries no fields at all.
func (u *PlayerUpdate) Empty() bool {
	return u.Nickname == nil && u.Avatar == nil && u.Score == nil &&
		u.TapPower == nil && u.TapsPerMinute == nil
}
