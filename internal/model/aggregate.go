package model

import "github.com/shopspring/decimal"

// SectorAggregate 区域汇总
type SectorAggregate struct {
	SectorID    string              `json:"sectorId"`
	SectorLabel string              `json:"sectorLabel"`
	Resellers   []ResellerAggregate `json:"resellers"`
	SectorTotal decimal.Decimal     `json:"sectorTotal"`
}

// FindReseller 按代码查找经销商
func (a *SectorAggregate) FindReseller(code string) (ResellerAggregate, bool) {
	if a == nil {
		return ResellerAggregate{}, false
	}
	for _, r := range a.Resellers {
		if r.ResellerCode == code {
			return r, true
		}
	}
	return ResellerAggregate{}, false
}

// ResellerAggregate 经销商汇总
type ResellerAggregate struct {
	ResellerCode  string                     `json:"resellerCode"`
	ResellerName  string                     `json:"resellerName"`
	TotalAmount   decimal.Decimal            `json:"totalAmount"`   // 保留两位小数
	TotalsByCycle map[string]decimal.Decimal `json:"totalsByCycle"` // 周期 -> 小计
	ItemCount     int                        `json:"itemCount"`     // 商品件数合计
	LineCount     int                        `json:"lineCount"`     // 交易行数（不是去重后的商品数）
}

// Comparison 上午/下午快照对比结果
type Comparison struct {
	SectorTotalMorning   decimal.Decimal `json:"sectorTotalMorning"`
	SectorTotalAfternoon decimal.Decimal `json:"sectorTotalAfternoon"`
	SectorDelta          decimal.Decimal `json:"sectorDelta"`
	Resellers            []ResellerDelta `json:"resellers"` // 按 Delta 降序
}

// ResellerDelta 单个经销商的变化量
type ResellerDelta struct {
	ResellerCode   string          `json:"resellerCode"`
	ResellerName   string          `json:"resellerName"`
	TotalMorning   decimal.Decimal `json:"totalMorning"`
	TotalAfternoon decimal.Decimal `json:"totalAfternoon"`
	Delta          decimal.Decimal `json:"delta"`
	GrewToday      bool            `json:"grewToday"`
}
