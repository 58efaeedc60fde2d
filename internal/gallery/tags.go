package gallery

import (
	"math/rand/v2"
	"strings"
)

// Mode selects between the general-purpose and restricted API paths.
type Mode int

const (
	ModeSFW Mode = iota
	ModeNSFW
)

// String returns the path segment used by the API.
func (m Mode) String() string {
	if m == ModeNSFW {
		return "nsfw"
	}
	return "sfw"
}

// Label returns a short human-readable name.
func (m Mode) Label() string {
	if m == ModeNSFW {
		return "NSFW"
	}
	return "SFW"
}

// Selection is a tag chosen for the next fetch.
type Selection struct {
	Tag  string
	Mode Mode
}

// Rand is the randomness source used by SelectTag.
type Rand interface {
	IntN(n int) int
}

type defaultRand struct{}

func (defaultRand) IntN(n int) int { return rand.IntN(n) }

// DefaultRand returns a Rand backed by math/rand/v2.
func DefaultRand() Rand {
	return defaultRand{}
}

// SelectTag picks a random tag from the selected general and restricted tags.
// When both groups are non-empty a fair coin decides which one is used.
func SelectTag(r Rand, general, restricted []string) (Selection, error) {
	if r == nil {
		r = DefaultRand()
	}

	switch {
	case len(general) == 0 && len(restricted) == 0:
		return Selection{}, ErrInvalidSelection
	case len(restricted) == 0:
		return Selection{Tag: general[r.IntN(len(general))], Mode: ModeSFW}, nil
	case len(general) == 0:
		return Selection{Tag: restricted[r.IntN(len(restricted))], Mode: ModeNSFW}, nil
	}

	if r.IntN(2) == 0 {
		return Selection{Tag: general[r.IntN(len(general))], Mode: ModeSFW}, nil
	}
	return Selection{Tag: restricted[r.IntN(len(restricted))], Mode: ModeNSFW}, nil
}

// Catalog lists the tags the API understands, per mode.
type Catalog struct {
	SFW  []string `json:"sfw"`
	NSFW []string `json:"nsfw"`
}

// Has reports whether tag is known for the given mode.
func (c Catalog) Has(mode Mode, tag string) bool {
	list := c.SFW
	if mode == ModeNSFW {
		list = c.NSFW
	}
	for _, t := range list {
		if t == tag {
			return true
		}
	}
	return false
}

// DefaultCatalog returns the built-in tag list.
func DefaultCatalog() Catalog {
	return Catalog{
		SFW: []string{
			"waifu", "neko", "shinobu", "megumin", "bully", "cuddle", "cry",
			"hug", "awoo", "kiss", "lick", "pat", "smug", "bonk", "yeet",
			"blush", "smile", "wave", "highfive", "handhold", "nom", "bite",
			"glomp", "slap", "kill", "kick", "happy", "wink", "poke", "dance",
			"cringe",
		},
		NSFW: []string{"waifu", "neko", "trap", "blowjob"},
	}
}

// NormalizeTags lowercases and trims tags, dropping blanks and duplicates
// while keeping the first-seen order.
func NormalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]bool, len(tags))
	for _, t := range tags {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}
