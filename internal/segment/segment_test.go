package segment

import (
	"testing"

	"github.com/shopspring/decimal"

	"supervision/internal/model"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

var defaultWeights = map[string]float64{
	"01/2026": 8, "02/2026": 11, "03/2026": 11, "04/2026": 12, "05/2026": 11,
	"06/2026": 15, "07/2026": 10, "08/2026": 11, "09/2026": 10,
}

func TestClassifyBoundaries(t *testing.T) {
	t.Parallel()

	cases := []struct {
		total string
		want  string
	}{
		{"0", KeyIniciante},
		{"-10", KeyIniciante},
		{"2999.98", KeyIniciante},
		{"2999.99", KeyBronze},
		{"2999.995", KeyBronze},
		{"3000.00", KeyPrata},
		{"8999.99", KeyPrata},
		{"9000", KeyOuro},
		{"20000", KeyPlatina},
		{"50000", KeyRubi},
		{"129999.99", KeyEsmeralda},
		{"130000.00", KeyDiamante},
		{"1000000", KeyDiamante},
	}
	for _, tc := range cases {
		if got := Classify(dec(tc.total)).Key; got != tc.want {
			t.Fatalf("Classify(%s) want=%s got=%s", tc.total, tc.want, got)
		}
	}
}

func TestInfoMiddleTier(t *testing.T) {
	t.Parallel()

	info := Info(dec("12000"), defaultWeights, "06/2026")
	if info.TierKey != KeyOuro || info.Tier != "Ouro" || info.Color != "#FFD700" {
		t.Fatalf("unexpected tier: %+v", info)
	}
	if info.NextTierKey == nil || *info.NextTierKey != KeyPlatina {
		t.Fatalf("unexpected next tier: %v", info.NextTierKey)
	}
	if !info.TierMaintainFloor.Equal(dec("9000")) || !info.TierUpgradeFloor.Equal(dec("20000")) {
		t.Fatalf("unexpected floors: %s %s", info.TierMaintainFloor, info.TierUpgradeFloor)
	}
	if !info.CycleMaintainTarget.Equal(dec("1350")) || !info.CycleUpgradeTarget.Equal(dec("3000")) {
		t.Fatalf("unexpected cycle targets: %s %s", info.CycleMaintainTarget, info.CycleUpgradeTarget)
	}
	if !info.ProgressMaintain.Equal(dec("100")) || !info.ProgressUpgrade.Equal(dec("60")) {
		t.Fatalf("unexpected progress: %s %s", info.ProgressMaintain, info.ProgressUpgrade)
	}
	if !info.ShortfallMaintain.IsZero() || !info.ShortfallUpgrade.Equal(dec("8000")) {
		t.Fatalf("unexpected shortfall: %s %s", info.ShortfallMaintain, info.ShortfallUpgrade)
	}
	if info.MessageKind != model.MessagePositive || info.Message != "Bom progresso! Continue assim!" {
		t.Fatalf("unexpected message: %s %s", info.MessageKind, info.Message)
	}
	if info.AtRisk || info.FallbackTier != nil {
		t.Fatalf("unexpected risk: %v %v", info.AtRisk, info.FallbackTier)
	}
}

func TestInfoTopTier(t *testing.T) {
	t.Parallel()

	info := Info(dec("140000"), defaultWeights, "01/2026")
	if info.TierKey != KeyDiamante {
		t.Fatalf("unexpected tier: %s", info.TierKey)
	}
	if info.NextTier != nil || info.TierUpgradeFloor != nil || info.CycleUpgradeTarget != nil || info.ShortfallUpgrade != nil {
		t.Fatalf("top tier must not have upgrade targets: %+v", info)
	}
	if !info.ProgressUpgrade.IsZero() {
		t.Fatalf("unexpected upgrade progress: %s", info.ProgressUpgrade)
	}
	if info.MessageKind != model.MessagePositive {
		t.Fatalf("unexpected message kind: %s", info.MessageKind)
	}
}

func TestInfoStarter(t *testing.T) {
	t.Parallel()

	info := Info(dec("2900"), defaultWeights, "99/2026")
	if info.TierKey != KeyIniciante {
		t.Fatalf("unexpected tier: %s", info.TierKey)
	}
	if !info.ProgressMaintain.IsZero() || !info.ShortfallMaintain.IsZero() {
		t.Fatalf("zero floor must yield zero progress: %s %s", info.ProgressMaintain, info.ShortfallMaintain)
	}
	// 2900/2999.99 = 96.67%
	if !info.ProgressUpgrade.Equal(dec("96.67")) || info.MessageKind != model.MessageSuccess {
		t.Fatalf("unexpected upgrade: %s %s", info.ProgressUpgrade, info.MessageKind)
	}
	if !info.CycleMaintainTarget.IsZero() || !info.CycleUpgradeTarget.IsZero() {
		t.Fatalf("missing cycle weight must give zero targets")
	}
	if info.AtRisk {
		t.Fatalf("starter tier is never at risk")
	}
}

func TestInfoProgressRange(t *testing.T) {
	t.Parallel()

	hundred := dec("100")
	for _, total := range []string{"0", "1", "2999.99", "3000", "8999.99", "19999", "75000", "129999.99", "500000"} {
		info := Info(dec(total), defaultWeights, "01/2026")
		for _, p := range []decimal.Decimal{info.ProgressMaintain, info.ProgressUpgrade} {
			if p.IsNegative() || p.GreaterThan(hundred) {
				t.Fatalf("progress out of range for %s: %s", total, p)
			}
		}
	}
}

func TestInfoIndependentOfAccumulationOrder(t *testing.T) {
	t.Parallel()

	parts := []string{"1200.10", "33.33", "4000", "0.57"}
	forward, backward := decimal.Zero, decimal.Zero
	for i := range parts {
		forward = forward.Add(dec(parts[i]))
		backward = backward.Add(dec(parts[len(parts)-1-i]))
	}

	a := Info(forward, defaultWeights, "03/2026")
	b := Info(backward, defaultWeights, "03/2026")
	if a.TierKey != b.TierKey || !a.ProgressUpgrade.Equal(b.ProgressUpgrade) || !a.Total.Equal(b.Total) {
		t.Fatalf("order changed result: %+v vs %+v", a, b)
	}
}

func TestMessageLadder(t *testing.T) {
	t.Parallel()

	cases := []struct {
		maintain, upgrade string
		want              model.MessageKind
	}{
		{"100", "95", model.MessageSuccess},
		{"100", "80", model.MessageSuccess},
		{"100", "60", model.MessagePositive},
		{"100", "59.99", model.MessagePositive},
		{"80", "10", model.MessageCaution},
		{"50", "10", model.MessageCaution},
		{"30", "10", model.MessageAlert},
		{"29.99", "10", model.MessageUrgent},
	}
	for _, tc := range cases {
		if _, got := message(dec(tc.maintain), dec(tc.upgrade)); got != tc.want {
			t.Fatalf("message(%s,%s) want=%s got=%s", tc.maintain, tc.upgrade, tc.want, got)
		}
	}
}

func TestAtRisk(t *testing.T) {
	t.Parallel()

	// 所有非起始等级的 total 都不低于其下限，因此保级进度为 100，不在风险中
	info := Info(dec("3000"), defaultWeights, "01/2026")
	if info.AtRisk {
		t.Fatalf("total at floor must not be at risk")
	}
}

func TestAccumulatedWeight(t *testing.T) {
	t.Parallel()

	if got := AccumulatedWeight(defaultWeights, "03/2026"); got != 30 {
		t.Fatalf("want 30 got %v", got)
	}
	if got := AccumulatedWeight(defaultWeights, "09/2026"); got != 100 {
		t.Fatalf("want 100 got %v", got)
	}
	if got := AccumulatedWeight(defaultWeights, "12/2030"); got != 100 {
		t.Fatalf("unknown cycle sums everything, got %v", got)
	}
	if got := AccumulatedWeight(nil, "01/2026"); got != 0 {
		t.Fatalf("want 0 got %v", got)
	}
}

func TestTiersCopy(t *testing.T) {
	t.Parallel()

	list := Tiers()
	if len(list) != 8 || list[0].Key != KeyIniciante || list[7].Next != "" {
		t.Fatalf("unexpected tiers: %+v", list)
	}
	list[0].Name = "changed"
	if Tiers()[0].Name != "Iniciante" {
		t.Fatalf("Tiers must return a copy")
	}
}
