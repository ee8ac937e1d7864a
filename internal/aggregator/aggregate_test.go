package aggregator

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"supervision/internal/model"
	"supervision/internal/parser"
	"supervision/internal/sector"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func sale(sectorCode, label, reseller, cycle, amount string, qty int) model.Record {
	return model.Record{
		SectorLabel:  label,
		SectorCode:   sectorCode,
		ResellerCode: reseller,
		ResellerName: "R" + reseller,
		BillingCycle: cycle,
		ItemQuantity: qty,
		Amount:       d(amount),
		Kind:         model.KindSale,
	}
}

func TestAggregateSumsSalesOnly(t *testing.T) {
	t.Parallel()

	records := []model.Record{
		sale("14210", "14210 FVC", "100", "01/2026", "100.00", 2),
		sale("14210", "14210 FVC", "100", "02/2026", "50.50", 1),
		{SectorCode: "14210", SectorLabel: "14210 FVC", ResellerCode: "100", Amount: d("1000"), Kind: "devolucao"},
	}

	agg := Aggregate(records, "14210", sector.Default())
	require.NotNil(t, agg)
	require.Len(t, agg.Resellers, 1)

	r := agg.Resellers[0]
	assert.True(t, r.TotalAmount.Equal(d("150.50")), "total=%s", r.TotalAmount)
	assert.Equal(t, 3, r.ItemCount)
	assert.Equal(t, 2, r.LineCount)
	assert.True(t, r.TotalsByCycle["01/2026"].Equal(d("100")))
	assert.True(t, r.TotalsByCycle["02/2026"].Equal(d("50.5")))
	assert.True(t, agg.SectorTotal.Equal(d("150.50")))
	assert.Equal(t, "14210 FVC", agg.SectorLabel)
}

func TestAggregateFirstAppearanceOrder(t *testing.T) {
	t.Parallel()

	records := []model.Record{
		sale("14210", "A", "300", "", "1", 1),
		sale("14210", "A", "100", "", "1", 1),
		sale("14210", "A", "300", "", "1", 1),
		sale("14210", "A", "200", "", "1", 1),
	}
	agg := Aggregate(records, "14210", nil)
	require.NotNil(t, agg)

	var codes []string
	for _, r := range agg.Resellers {
		codes = append(codes, r.ResellerCode)
	}
	assert.Equal(t, []string{"300", "100", "200"}, codes)
	assert.Empty(t, agg.Resellers[0].TotalsByCycle)
}

func TestAggregateMatching(t *testing.T) {
	t.Parallel()

	records := []model.Record{
		// 标签未带数字前缀，代码由名称匹配得到
		sale("9540", "PLATINA / PENEDO /", "1", "", "10", 1),
		sale("23032", "BRONZE", "2", "", "20", 1),
	}

	byCode := Aggregate(records, "9540", sector.Default())
	require.NotNil(t, byCode)
	assert.Len(t, byCode.Resellers, 1)

	byLabel := Aggregate(records, "penedo", sector.Default())
	require.NotNil(t, byLabel)
	assert.Equal(t, "1", byLabel.Resellers[0].ResellerCode)

	// 代码不一致但名称可解析到查询代码
	mislabeled := []model.Record{sale("99999", "BRONZE", "3", "", "5", 1)}
	byResolver := Aggregate(mislabeled, "23032", sector.Default())
	require.NotNil(t, byResolver)
	assert.Equal(t, "3", byResolver.Resellers[0].ResellerCode)

	assert.Nil(t, Aggregate(records, "77777", sector.Default()))
	assert.Nil(t, Aggregate(records, "   ", sector.Default()))
	assert.Nil(t, Aggregate(nil, "9540", sector.Default()))
}

func TestAggregateRoundsResellerTotals(t *testing.T) {
	t.Parallel()

	records := []model.Record{
		sale("1", "1 X", "a", "", "0.005", 1),
		sale("1", "1 X", "a", "", "0.001", 1),
		sale("1", "1 X", "b", "", "1.004", 1),
	}
	agg := Aggregate(records, "1", nil)
	require.NotNil(t, agg)
	assert.True(t, agg.Resellers[0].TotalAmount.Equal(d("0.01")), "a=%s", agg.Resellers[0].TotalAmount)
	assert.True(t, agg.Resellers[1].TotalAmount.Equal(d("1.00")), "b=%s", agg.Resellers[1].TotalAmount)
	assert.True(t, agg.SectorTotal.Equal(d("1.01")))
}

func TestAggregateHugeExponentCellIsZero(t *testing.T) {
	t.Parallel()

	huge := sale("14210", "14210 FVC", "100", "01/2026", "0", 1)
	huge.Amount = parser.ParseMoney("1e300000000")
	records := []model.Record{huge, sale("14210", "14210 FVC", "100", "01/2026", "10", 1)}

	done := make(chan *model.SectorAggregate, 1)
	go func() { done <- Aggregate(records, "14210", sector.Default()) }()

	select {
	case agg := <-done:
		require.NotNil(t, agg)
		assert.True(t, agg.SectorTotal.Equal(d("10")))
	case <-time.After(5 * time.Second):
		require.FailNow(t, "aggregate did not finish")
	}
}
