package consent

import "time"

// Preferences records which cookie categories the visitor accepted.
type Preferences struct {
	Necessary bool      `json:"necessary"`
	Analytics bool      `json:"analytics"`
	Marketing bool      `json:"marketing"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Input is the body of a consent update.
type Input struct {
	Necessary bool `json:"necessary"`
	Analytics bool `json:"analytics"`
	Marketing bool `json:"marketing"`
}

// Undecided is what a visitor without a consent cookie gets.
func Undecided() Preferences {
	return Preferences{}
}

// AcceptAll grants every category.
func AcceptAll(now time.Time) Preferences {
	return Preferences{Necessary: true, Analytics: true, Marketing: true, UpdatedAt: now.UTC()}
}

// Apply builds the stored preferences from an update. Optional categories
// depend on the necessary one: declining it declines everything.
func Apply(in Input, now time.Time) Preferences {
	p := Preferences{Necessary: in.Necessary, UpdatedAt: now.UTC()}
	if in.Necessary {
		p.Analytics = in.Analytics
		p.Marketing = in.Marketing
	}
	return p
}

// AllowsCartMirror reports whether the cart may be mirrored into a cookie.
func (p Preferences) AllowsCartMirror() bool {
	return p.Necessary
}

// Decided reports whether the visitor has answered the consent banner.
func (p Preferences) Decided() bool {
	return !p.UpdatedAt.IsZero()
}
