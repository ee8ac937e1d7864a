package aggregator

import (
	"sort"

	"github.com/shopspring/decimal"

	"supervision/internal/model"
	"supervision/internal/sector"
)

// Compare 对比上午与下午快照；任一侧没有该区域数据时返回 nil
//
// 以下午快照为准：只出现在上午的经销商不计入结果。
func Compare(morning, afternoon []model.Record, query string, resolver sector.Resolver) *model.Comparison {
	am := Aggregate(morning, query, resolver)
	pm := Aggregate(afternoon, query, resolver)
	if am == nil || pm == nil {
		return nil
	}

	before := make(map[string]decimal.Decimal, len(am.Resellers))
	for _, r := range am.Resellers {
		before[r.ResellerCode] = r.TotalAmount
	}

	deltas := make([]model.ResellerDelta, 0, len(pm.Resellers))
	for _, r := range pm.Resellers {
		m := before[r.ResellerCode]
		d := r.TotalAmount.Sub(m)
		deltas = append(deltas, model.ResellerDelta{
			ResellerCode:   r.ResellerCode,
			ResellerName:   r.ResellerName,
			TotalMorning:   m,
			TotalAfternoon: r.TotalAmount,
			Delta:          d,
			GrewToday:      d.IsPositive(),
		})
	}
	sort.SliceStable(deltas, func(i, j int) bool {
		return deltas[i].Delta.GreaterThan(deltas[j].Delta)
	})

	return &model.Comparison{
		SectorTotalMorning:   am.SectorTotal,
		SectorTotalAfternoon: pm.SectorTotal,
		SectorDelta:          pm.SectorTotal.Sub(am.SectorTotal),
		Resellers:            deltas,
	}
}
