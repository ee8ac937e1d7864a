package model

import "github.com/shopspring/decimal"

func init() {
	// 金额在 API 中按数字输出
	decimal.MarshalJSONWithoutQuotes = true
}

// KindSale 销售类交易（只有此类交易计入汇总）
const KindSale = "venda"

// Record 标准化后的交易记录
type Record struct {
	SectorLabel  string          `json:"sectorLabel"`  // 原始区域名称
	SectorCode   string          `json:"sectorCode"`   // 解析出的区域代码
	ResellerCode string          `json:"resellerCode"` // 经销商代码
	ResellerName string          `json:"resellerName"` // 经销商名称
	BillingCycle string          `json:"billingCycle"` // 结算周期
	ProductCode  string          `json:"productCode"`
	ProductName  string          `json:"productName"`
	ItemQuantity int             `json:"itemQuantity"`
	Amount       decimal.Decimal `json:"amount"`
	Kind         string          `json:"kind"` // 小写
}

// IsSale 是否为销售
func (r Record) IsSale() bool {
	return r.Kind == KindSale
}
