package economy

import (
	"strings"

	"github.com/talgya/copclicker/internal/numeric"
)

// RankID identifies a tier on the rank ladder.
type RankID string

const (
	RankBeatCop    RankID = "beat_cop"
	RankDetective  RankID = "detective"
	RankSergeant   RankID = "sergeant"
	RankLieutenant RankID = "lieutenant"
	RankCaptain    RankID = "captain"
	RankChief      RankID = "chief"
)

// RankTier is one step of the ladder. Threshold is lifetime currency before
// any legacy reduction.
type RankTier struct {
	ID        RankID          `json:"id"`
	Name      string          `json:"name"`
	Threshold numeric.Decimal `json:"threshold"`
}

// RankBonusPerTier is the production bonus each tier adds.
const RankBonusPerTier = 0.25

// Ascending by threshold; index 0 is the starting rank.
var rankTable = []RankTier{
	{ID: RankBeatCop, Name: "Beat Cop", Threshold: numeric.Zero},
	{ID: RankDetective, Name: "Detective", Threshold: numeric.FromInt(100)},
	{ID: RankSergeant, Name: "Sergeant", Threshold: numeric.FromInt(500)},
	{ID: RankLieutenant, Name: "Lieutenant", Threshold: numeric.FromInt(2000)},
	{ID: RankCaptain, Name: "Captain", Threshold: numeric.FromInt(10000)},
	{ID: RankChief, Name: "Chief", Threshold: numeric.FromInt(50000)},
}

// Ranks returns the ladder, lowest first.
func Ranks() []RankTier {
	return rankTable
}

// TerminalRankIndex is the index of the highest tier.
func TerminalRankIndex() int {
	return len(rankTable) - 1
}

// RankAt returns the tier at index i, clamped to the ladder.
func RankAt(i int) RankTier {
	switch {
	case i < 0:
		i = 0
	case i > TerminalRankIndex():
		i = TerminalRankIndex()
	}
	return rankTable[i]
}

// RankIndex returns the position of id on the ladder, or -1.
func RankIndex(id RankID) int {
	for i, r := range rankTable {
		if r.ID == id {
			return i
		}
	}
	return -1
}

// RankByID looks up a tier by id.
func RankByID(id RankID) (RankTier, bool) {
	i := RankIndex(id)
	if i < 0 {
		return RankTier{}, false
	}
	return rankTable[i], true
}

// RankByName matches a display name such as "Detective". Older saves stored
// the name rather than the id.
func RankByName(name string) (RankTier, bool) {
	name = strings.TrimSpace(name)
	for _, r := range rankTable {
		if strings.EqualFold(r.Name, name) || strings.EqualFold(string(r.ID), name) {
			return r, true
		}
	}
	return RankTier{}, false
}

// RankMultiplier is the production multiplier at rank index i.
func RankMultiplier(i int) float64 {
	if i < 0 {
		i = 0
	}
	return 1 + RankBonusPerTier*float64(i)
}
