package gallery

import (
	"errors"
	"reflect"
	"testing"
)

// seqRand returns the queued values in order, modulo n.
type seqRand struct {
	vals  []int
	calls []int
}

func (r *seqRand) IntN(n int) int {
	r.calls = append(r.calls, n)
	if len(r.vals) == 0 {
		return 0
	}
	v := r.vals[0]
	r.vals = r.vals[1:]
	return v % n
}

func TestSelectTag(t *testing.T) {
	tests := []struct {
		name       string
		general    []string
		restricted []string
		vals       []int
		want       Selection
	}{
		{"general only", []string{"waifu", "neko"}, nil, []int{1}, Selection{"neko", ModeSFW}},
		{"restricted only", nil, []string{"trap", "neko"}, []int{0}, Selection{"trap", ModeNSFW}},
		{"both, coin heads", []string{"hug", "pat"}, []string{"waifu"}, []int{0, 1}, Selection{"pat", ModeSFW}},
		{"both, coin tails", []string{"hug"}, []string{"waifu", "neko"}, []int{1, 1}, Selection{"neko", ModeNSFW}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := SelectTag(&seqRand{vals: tt.vals}, tt.general, tt.restricted)
			if err != nil {
				t.Fatalf("SelectTag() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("SelectTag() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestSelectTagCoinFlipOnlyWhenBothSet(t *testing.T) {
	r := &seqRand{}
	if _, err := SelectTag(r, []string{"a", "b", "c"}, nil); err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(r.calls, []int{3}) {
		t.Errorf("IntN calls = %v, want [3]", r.calls)
	}

	r = &seqRand{}
	if _, err := SelectTag(r, []string{"a"}, []string{"x", "y"}); err != nil {
		t.Fatal(err)
	}
	if len(r.calls) != 2 || r.calls[0] != 2 {
		t.Errorf("IntN calls = %v, want coin flip first", r.calls)
	}
}

func TestSelectTagRestrictedOnlyAlwaysNSFW(t *testing.T) {
	for i := 0; i < 50; i++ {
		sel, err := SelectTag(nil, nil, []string{"waifu", "neko", "trap"})
		if err != nil {
			t.Fatal(err)
		}
		if sel.Mode != ModeNSFW {
			t.Fatalf("Mode = %v, want nsfw", sel.Mode)
		}
	}
}

func TestSelectTagEmpty(t *testing.T) {
	_, err := SelectTag(nil, nil, []string{})
	if !errors.Is(err, ErrInvalidSelection) {
		t.Errorf("error = %v, want ErrInvalidSelection", err)
	}
}

func TestModeString(t *testing.T) {
	if ModeSFW.String() != "sfw" || ModeNSFW.String() != "nsfw" {
		t.Errorf("mode strings = %q/%q", ModeSFW, ModeNSFW)
	}
}

func TestNormalizeTags(t *testing.T) {
	got := NormalizeTags([]string{" Waifu", "neko", "", "WAIFU", "Hug "})
	want := []string{"waifu", "neko", "hug"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("NormalizeTags() = %v, want %v", got, want)
	}
}

func TestDefaultCatalog(t *testing.T) {
	cat := DefaultCatalog()
	if len(cat.SFW) != 31 || len(cat.NSFW) != 4 {
		t.Errorf("catalog sizes = %d/%d, want 31/4", len(cat.SFW), len(cat.NSFW))
	}
	if !cat.Has(ModeSFW, "waifu") || !cat.Has(ModeNSFW, "trap") || cat.Has(ModeNSFW, "hug") {
		t.Error("Has reports wrong membership")
	}
}
