// Package aggregator 按区域汇总经销商销售额，并对比上午/下午快照
package aggregator

import (
	"strings"

	"github.com/shopspring/decimal"

	"supervision/internal/model"
	"supervision/internal/sector"
)

// Aggregate 汇总指定区域的销售记录；没有匹配记录或查询为空时返回 nil
//
// 记录匹配条件（任一成立）：
//   - 区域代码等于查询
//   - 原始区域名称（忽略大小写）包含查询
//   - 查询为纯数字，且按名称查到的区域代码等于查询
func Aggregate(records []model.Record, query string, resolver sector.Resolver) *model.SectorAggregate {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil
	}
	if resolver == nil {
		resolver = sector.Default()
	}

	m := newMatcher(query, resolver)

	var (
		agg     *model.SectorAggregate
		index   = make(map[string]int)
		raw     []decimal.Decimal // 未舍入的合计
		matched bool
	)
	for _, rec := range records {
		if !m.match(rec) {
			continue
		}
		if !matched {
			matched = true
			agg = &model.SectorAggregate{
				SectorID:    query,
				SectorLabel: rec.SectorLabel,
				Resellers:   []model.ResellerAggregate{},
			}
		}
		if !rec.IsSale() {
			continue
		}

		i, ok := index[rec.ResellerCode]
		if !ok {
			i = len(agg.Resellers)
			index[rec.ResellerCode] = i
			agg.Resellers = append(agg.Resellers, model.ResellerAggregate{
				ResellerCode:  rec.ResellerCode,
				ResellerName:  rec.ResellerName,
				TotalsByCycle: make(map[string]decimal.Decimal),
			})
			raw = append(raw, decimal.Zero)
		}

		r := &agg.Resellers[i]
		raw[i] = raw[i].Add(rec.Amount)
		r.ItemCount += rec.ItemQuantity
		r.LineCount++
		if rec.BillingCycle != "" {
			r.TotalsByCycle[rec.BillingCycle] = r.TotalsByCycle[rec.BillingCycle].Add(rec.Amount)
		}
	}
	if agg == nil {
		return nil
	}

	total := decimal.Zero
	for i := range agg.Resellers {
		agg.Resellers[i].TotalAmount = raw[i].Round(2)
		total = total.Add(agg.Resellers[i].TotalAmount)
	}
	agg.SectorTotal = total
	return agg
}

type matcher struct {
	query    string
	folded   string
	numeric  bool
	resolver sector.Resolver
	byLabel  map[string]string // 标签 -> FindSectorCode 结果
}

func newMatcher(query string, resolver sector.Resolver) *matcher {
	return &matcher{
		query:    query,
		folded:   strings.ToLower(query),
		numeric:  sector.IsNumeric(query),
		resolver: resolver,
		byLabel:  make(map[string]string),
	}
}

func (m *matcher) match(rec model.Record) bool {
	if rec.SectorCode == m.query {
		return true
	}
	if strings.Contains(strings.ToLower(rec.SectorLabel), m.folded) {
		return true
	}
	if !m.numeric {
		return false
	}
	code, ok := m.byLabel[rec.SectorLabel]
	if !ok {
		code = m.resolver.FindSectorCode(rec.SectorLabel)
		m.byLabel[rec.SectorLabel] = code
	}
	return code == m.query
}
