package segment

import (
	"sort"

	"github.com/shopspring/decimal"

	"supervision/internal/model"
)

var hundred = decimal.NewFromInt(100)

// Info 计算经销商的分级信息
//
// weights 为各周期代表性百分比；当前周期缺失时按 0 处理。
// 所有金额与百分比在输出时保留两位小数。
func Info(total decimal.Decimal, weights map[string]float64, currentCycle string) model.TierInfo {
	tier := Classify(total)
	weight := decimal.NewFromFloat(weights[currentCycle]).Div(hundred)

	maintainFloor := tier.Floor
	info := model.TierInfo{
		Tier:                tier.Name,
		TierKey:             tier.Key,
		Color:               tier.Color,
		TierMaintainFloor:   round(maintainFloor),
		CycleMaintainTarget: round(maintainFloor.Mul(weight)),
		ShortfallMaintain:   decimal.Zero,
		Total:               round(total),
	}

	progressMaintain := decimal.Zero
	if maintainFloor.IsPositive() {
		progressMaintain = progress(total, maintainFloor)
		info.ShortfallMaintain = round(decimal.Max(decimal.Zero, maintainFloor.Sub(total)))
	}

	progressUpgrade := decimal.Zero
	if next, ok := byKey[tier.Next]; ok {
		name, key := next.Name, next.Key
		info.NextTier = &name
		info.NextTierKey = &key

		upgradeFloor := round(next.Floor)
		cycleTarget := round(next.Floor.Mul(weight))
		info.TierUpgradeFloor = &upgradeFloor
		info.CycleUpgradeTarget = &cycleTarget

		shortfall := decimal.Zero
		if next.Floor.IsPositive() {
			progressUpgrade = progress(total, next.Floor)
			shortfall = round(decimal.Max(decimal.Zero, next.Floor.Sub(total)))
		}
		info.ShortfallUpgrade = &shortfall
	}

	info.ProgressMaintain = round(progressMaintain)
	info.ProgressUpgrade = round(progressUpgrade)
	info.Message, info.MessageKind = message(progressMaintain, progressUpgrade)

	info.AtRisk = progressMaintain.LessThan(decimal.NewFromInt(80)) && tier.Key != KeyIniciante
	if info.AtRisk && total.LessThan(maintainFloor) {
		// total 不会低于 Classify(total) 的下限，此分支实际不会命中
		name := Classify(total).Name
		info.FallbackTier = &name
	}

	return info
}

// progress total/floor*100，上限 100，下限 0
func progress(total, floor decimal.Decimal) decimal.Decimal {
	p := total.Div(floor).Mul(hundred)
	if p.GreaterThan(hundred) {
		return hundred
	}
	if p.IsNegative() {
		return decimal.Zero
	}
	return p
}

// message 激励信息，按固定顺序判断
func message(maintain, upgrade decimal.Decimal) (string, model.MessageKind) {
	switch {
	case upgrade.GreaterThanOrEqual(decimal.NewFromInt(95)):
		return "Quase lá! Reta final para subir!", model.MessageSuccess
	case upgrade.GreaterThanOrEqual(decimal.NewFromInt(80)):
		return "Excelente ritmo! Promoção à vista!", model.MessageSuccess
	case upgrade.GreaterThanOrEqual(decimal.NewFromInt(60)):
		return "Bom progresso! Continue assim!", model.MessagePositive
	case maintain.GreaterThanOrEqual(hundred):
		return "Segmento garantido! Vamos subir?", model.MessagePositive
	case maintain.GreaterThanOrEqual(decimal.NewFromInt(80)):
		return "Quase mantendo! Foco no objetivo!", model.MessageCaution
	case maintain.GreaterThanOrEqual(decimal.NewFromInt(50)):
		return "Ritmo bom, vamos acelerar!", model.MessageCaution
	case maintain.GreaterThanOrEqual(decimal.NewFromInt(30)):
		return "Hora de intensificar! Bora!", model.MessageAlert
	}
	return "Precisamos focar! Vamos juntas!", model.MessageUrgent
}

// AccumulatedWeight 按周期名排序后累加权重，直到（含）当前周期
func AccumulatedWeight(weights map[string]float64, currentCycle string) float64 {
	cycles := make([]string, 0, len(weights))
	for c := range weights {
		cycles = append(cycles, c)
	}
	sort.Strings(cycles)

	acc := decimal.Zero
	for _, c := range cycles {
		acc = acc.Add(decimal.NewFromFloat(weights[c]))
		if c == currentCycle {
			break
		}
	}
	f, _ := acc.Float64()
	return f
}

func round(v decimal.Decimal) decimal.Decimal {
	return v.Round(2)
}
