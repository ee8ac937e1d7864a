// Package segment 经销商分级（8 个等级）与目标进度计算
package segment

import "github.com/shopspring/decimal"

// Tier 分级定义
type Tier struct {
	Key   string          `json:"key"`
	Name  string          `json:"name"`
	Floor decimal.Decimal `json:"floor"` // 保级下限（全周期累计）
	Next  string          `json:"next,omitempty"`
	Color string          `json:"color"`
}

// 等级 key
const (
	KeyIniciante = "INICIANTE"
	KeyBronze    = "BRONZE"
	KeyPrata     = "PRATA"
	KeyOuro      = "OURO"
	KeyPlatina   = "PLATINA"
	KeyRubi      = "RUBI"
	KeyEsmeralda = "ESMERALDA"
	KeyDiamante  = "DIAMANTE"
)

// tiers 从低到高；BRONZE 只占 2999.99 这一个点
var tiers = []Tier{
	{Key: KeyIniciante, Name: "Iniciante", Floor: decimal.Zero, Next: KeyBronze, Color: "#9CA3AF"},
	{Key: KeyBronze, Name: "Bronze", Floor: decimal.RequireFromString("2999.99"), Next: KeyPrata, Color: "#CD7F32"},
	{Key: KeyPrata, Name: "Prata", Floor: decimal.RequireFromString("3000.00"), Next: KeyOuro, Color: "#C0C0C0"},
	{Key: KeyOuro, Name: "Ouro", Floor: decimal.RequireFromString("9000.00"), Next: KeyPlatina, Color: "#FFD700"},
	{Key: KeyPlatina, Name: "Platina", Floor: decimal.RequireFromString("20000.00"), Next: KeyRubi, Color: "#E5E4E2"},
	{Key: KeyRubi, Name: "Rubi", Floor: decimal.RequireFromString("50000.00"), Next: KeyEsmeralda, Color: "#E0115F"},
	{Key: KeyEsmeralda, Name: "Esmeralda", Floor: decimal.RequireFromString("80000.00"), Next: KeyDiamante, Color: "#50C878"},
	{Key: KeyDiamante, Name: "Diamante", Floor: decimal.RequireFromString("130000.00"), Color: "#B9F2FF"},
}

var byKey = func() map[string]Tier {
	m := make(map[string]Tier, len(tiers))
	for _, t := range tiers {
		m[t.Key] = t
	}
	return m
}()

// Tiers 全部等级（从低到高）
func Tiers() []Tier {
	out := make([]Tier, len(tiers))
	copy(out, tiers)
	return out
}

// Lookup 按 key 查找等级
func Lookup(key string) (Tier, bool) {
	t, ok := byKey[key]
	return t, ok
}

// Classify 按累计金额确定等级（从高到低比较下限）
func Classify(total decimal.Decimal) Tier {
	for i := len(tiers) - 1; i > 0; i-- {
		if total.GreaterThanOrEqual(tiers[i].Floor) {
			return tiers[i]
		}
	}
	return tiers[0]
}
