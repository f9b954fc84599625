package economy

import "github.com/talgya/copclicker/internal/numeric"

// AchievementID identifies an achievement.
type AchievementID string

// AchievementCategory groups achievements for display.
type AchievementCategory string

const (
	AchievementMilestone  AchievementCategory = "milestone"
	AchievementRank       AchievementCategory = "rank"
	AchievementUpgrades   AchievementCategory = "upgrades"
	AchievementProduction AchievementCategory = "production"
	AchievementPrestige   AchievementCategory = "prestige"
	AchievementDedication AchievementCategory = "dedication"
)

// CriterionKind selects which part of the player state a Criterion reads.
type CriterionKind string

const (
	CriterionLifetime      CriterionKind = "lifetime_currency"
	CriterionRank          CriterionKind = "rank_reached"
	CriterionUpgradeCount  CriterionKind = "upgrade_count"
	CriterionClickValue    CriterionKind = "click_value"
	CriterionPassiveIncome CriterionKind = "passive_income"
	CriterionPrestigeCount CriterionKind = "prestige_count"
	CriterionPlayTime      CriterionKind = "play_time"
)

// Criterion is a tagged variant. Threshold applies to every kind except
// CriterionRank; Upgrade is set only for CriterionUpgradeCount.
type Criterion struct {
	Kind      CriterionKind   `json:"kind"`
	Threshold numeric.Decimal `json:"threshold,omitempty"`
	Rank      RankID          `json:"rank,omitempty"`
	Upgrade   UpgradeKind     `json:"upgrade,omitempty"`
}

func LifetimeAtLeast(n int64) Criterion {
	return Criterion{Kind: CriterionLifetime, Threshold: numeric.FromInt(n)}
}

func RankReached(id RankID) Criterion {
	return Criterion{Kind: CriterionRank, Rank: id}
}

func UpgradeCountAtLeast(kind UpgradeKind, n int64) Criterion {
	return Criterion{Kind: CriterionUpgradeCount, Upgrade: kind, Threshold: numeric.FromInt(n)}
}

func ClickValueAtLeast(n int64) Criterion {
	return Criterion{Kind: CriterionClickValue, Threshold: numeric.FromInt(n)}
}

func PassiveIncomeAtLeast(n int64) Criterion {
	return Criterion{Kind: CriterionPassiveIncome, Threshold: numeric.FromInt(n)}
}

func PrestigeCountAtLeast(n int64) Criterion {
	return Criterion{Kind: CriterionPrestigeCount, Threshold: numeric.FromInt(n)}
}

func PlayTimeAtLeast(seconds int64) Criterion {
	return Criterion{Kind: CriterionPlayTime, Threshold: numeric.FromInt(seconds)}
}

// RewardKind says which currency a claim pays out in.
type RewardKind string

const (
	RewardCurrency RewardKind = "currency" // adds to currency and lifetime currency
	RewardLegacy   RewardKind = "legacy"
)

// Reward is paid once, on claim.
type Reward struct {
	Kind   RewardKind      `json:"kind"`
	Amount numeric.Decimal `json:"amount"`
}

func currencyReward(n int64) Reward { return Reward{Kind: RewardCurrency, Amount: numeric.FromInt(n)} }
func legacyReward(n int64) Reward   { return Reward{Kind: RewardLegacy, Amount: numeric.FromInt(n)} }

// AchievementDefinition is one row of the achievement table.
type AchievementDefinition struct {
	ID          AchievementID       `json:"id"`
	Name        string              `json:"name"`
	Description string              `json:"description"`
	Category    AchievementCategory `json:"category"`
	Criterion   Criterion           `json:"criterion"`
	Reward      Reward              `json:"reward"`
}

// Achievement IDs referenced outside the table.
const (
	AchievementFirstCollar AchievementID = "first_collar"
	AchievementTopCop      AchievementID = "top_cop"
	AchievementFreshStart  AchievementID = "fresh_start"
)

var achievementTable = []AchievementDefinition{
	// Lifetime milestones.
	{AchievementFirstCollar, "First Collar", "Earn 100 Respect", AchievementMilestone, LifetimeAtLeast(100), currencyReward(50)},
	{"rising_star", "Rising Star", "Earn 1,000 Respect", AchievementMilestone, LifetimeAtLeast(1000), currencyReward(250)},
	{"household_name", "Household Name", "Earn 100,000 Respect", AchievementMilestone, LifetimeAtLeast(100000), currencyReward(10000)},
	{"living_legend", "Living Legend", "Earn 10M Respect", AchievementMilestone, LifetimeAtLeast(10000000), currencyReward(1000000)},

	{"made_detective", "Made Detective", "Reach Detective", AchievementRank, RankReached(RankDetective), currencyReward(100)},
	{"earned_stripes", "Earned Stripes", "Reach Sergeant", AchievementRank, RankReached(RankSergeant), currencyReward(250)},
	{"silver_bars", "Silver Bars", "Reach Lieutenant", AchievementRank, RankReached(RankLieutenant), currencyReward(1000)},
	{"the_captaincy", "The Captaincy", "Reach Captain", AchievementRank, RankReached(RankCaptain), currencyReward(5000)},
	{AchievementTopCop, "Top Cop", "Reach Chief", AchievementRank, RankReached(RankChief), legacyReward(1)},

	{"geared_up", "Geared Up", "Own 10 Better Equipment", AchievementUpgrades, UpgradeCountAtLeast(UpgradeEquipment, 10), currencyReward(200)},
	{"drill_instructor", "Drill Instructor", "Own 10 Advanced Training", AchievementUpgrades, UpgradeCountAtLeast(UpgradeTraining, 10), currencyReward(500)},
	{"buddy_system", "Buddy System", "Hire 5 Partners", AchievementUpgrades, UpgradeCountAtLeast(UpgradePartner, 5), currencyReward(100)},
	{"full_patrol", "Full Patrol", "Run 10 Patrol Units", AchievementUpgrades, UpgradeCountAtLeast(UpgradePatrol, 10), currencyReward(1000)},
	{"case_closed", "Case Closed", "Staff 5 Investigation Teams", AchievementUpgrades, UpgradeCountAtLeast(UpgradeInvestigation, 5), currencyReward(2000)},
	{"precinct_network", "Precinct Network", "Open 3 Precincts", AchievementUpgrades, UpgradeCountAtLeast(UpgradePrecinct, 3), currencyReward(10000)},
	{"machine_age", "Machine Age", "Buy Automation", AchievementUpgrades, UpgradeCountAtLeast(UpgradeAutomation, 1), currencyReward(5000)},

	{"heavy_hand", "Heavy Hand", "Reach 50 Respect per click", AchievementProduction, ClickValueAtLeast(50), currencyReward(500)},
	{"steady_stream", "Steady Stream", "Reach 100 Respect per second", AchievementProduction, PassiveIncomeAtLeast(100), currencyReward(1000)},
	{"respect_machine", "Respect Machine", "Reach 10,000 Respect per second", AchievementProduction, PassiveIncomeAtLeast(10000), currencyReward(100000)},

	{AchievementFreshStart, "Fresh Start", "Prestige once", AchievementPrestige, PrestigeCountAtLeast(1), legacyReward(1)},
	{"career_veteran", "Career Veteran", "Prestige 5 times", AchievementPrestige, PrestigeCountAtLeast(5), legacyReward(5)},

	{"night_shift", "Night Shift", "Play for an hour", AchievementDedication, PlayTimeAtLeast(3600), currencyReward(500)},
	{"lifer", "Lifer", "Play for a day", AchievementDedication, PlayTimeAtLeast(86400), legacyReward(2)},
}

// Achievements returns the achievement table in display order.
func Achievements() []AchievementDefinition {
	return achievementTable
}

// AchievementByID looks up an achievement.
func AchievementByID(id AchievementID) (AchievementDefinition, bool) {
	for _, def := range achievementTable {
		if def.ID == id {
			return def, true
		}
	}
	return AchievementDefinition{}, false
}
