package item

import (
	"math"

	"github.com/kasuganosora/mmoitems/resource"
)

// Stat is one attribute bonus: a flat amount plus a percentage rate.
type Stat struct {
	Attribute int     `json:"attribute"`
	Flat      int     `json:"flat"`
	Rate      float64 `json:"rate"`
}

// ItemStats is the per-instance stat block. Constants are rolled once from
// the template and rarity; Enchants and LimitBreak follow the upgrade levels.
type ItemStats struct {
	Constants  []Stat `json:"constants"`
	Enchants   []Stat `json:"enchants"`
	LimitBreak []Stat `json:"limit_break"`
}

// rarityMultiplier scales template stats; index is rarity.
var rarityMultiplier = [...]float64{1.0, 1.0, 1.1, 1.25, 1.5, 1.8, 2.2}

// RarityMultiplier returns the stat scale for rarity. Out of range values
// clamp to the table ends.
func RarityMultiplier(rarity int) float64 {
	if rarity < 0 {
		return 1.0
	}
	if rarity >= len(rarityMultiplier) {
		return rarityMultiplier[len(rarityMultiplier)-1]
	}
	return rarityMultiplier[rarity]
}

// NewItemStats seeds a stat block from template options and instance state.
// Currencies, furnishings and untyped items carry no stats.
func NewItemStats(opts []resource.ItemStatOption, rarity int, t ItemType, enchant, limitBreak int) *ItemStats {
	s := &ItemStats{}
	switch t {
	case ItemTypeNone, ItemTypeCurrency, ItemTypeFurnishing, ItemTypeLapenshard:
		return s
	}
	m := RarityMultiplier(rarity)
	for _, o := range opts {
		s.Constants = append(s.Constants, Stat{
			Attribute: o.Attribute,
			Flat:      int(math.Round(float64(o.Flat) * m)),
			Rate:      o.Rate * m,
		})
	}
	s.Recompute(enchant, limitBreak)
	return s
}

// Recompute rebuilds the upgrade-derived stats: every enchant level adds 5%
// of each constant, every limit-break level adds 10%.
func (s *ItemStats) Recompute(enchant, limitBreak int) {
	s.Enchants = scaled(s.Constants, enchant, 0.05)
	s.LimitBreak = scaled(s.Constants, limitBreak, 0.10)
}

func scaled(base []Stat, level int, step float64) []Stat {
	if level <= 0 {
		return nil
	}
	out := make([]Stat, 0, len(base))
	for _, b := range base {
		out = append(out, Stat{
			Attribute: b.Attribute,
			Flat:      int(float64(b.Flat) * step * float64(level)),
			Rate:      b.Rate * step * float64(level),
		})
	}
	return out
}

// Total sums every bonus for attribute.
func (s *ItemStats) Total(attribute int) Stat {
	total := Stat{Attribute: attribute}
	for _, group := range [][]Stat{s.Constants, s.Enchants, s.LimitBreak} {
		for _, st := range group {
			if st.Attribute == attribute {
				total.Flat += st.Flat
				total.Rate += st.Rate
			}
		}
	}
	return total
}

// Clone returns a deep copy that shares no slices with s.
func (s *ItemStats) Clone() *ItemStats {
	if s == nil {
		return nil
	}
	return &ItemStats{
		Constants:  append([]Stat(nil), s.Constants...),
		Enchants:   append([]Stat(nil), s.Enchants...),
		LimitBreak: append([]Stat(nil), s.LimitBreak...),
	}
}
