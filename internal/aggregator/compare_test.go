package aggregator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"supervision/internal/model"
)

func TestCompare(t *testing.T) {
	t.Parallel()

	morning := []model.Record{
		sale("14210", "14210 FVC", "100", "", "200", 1),
		sale("14210", "14210 FVC", "200", "", "80", 1),
		sale("14210", "14210 FVC", "400", "", "10", 1), // 只在上午出现
	}
	afternoon := []model.Record{
		sale("14210", "14210 FVC", "200", "", "90", 1),
		sale("14210", "14210 FVC", "100", "", "250", 1),
		sale("14210", "14210 FVC", "300", "", "30", 1),
		sale("14210", "14210 FVC", "500", "", "0", 1),
	}

	cmp := Compare(morning, afternoon, "14210", nil)
	require.NotNil(t, cmp)
	require.Len(t, cmp.Resellers, 4)

	first := cmp.Resellers[0]
	assert.Equal(t, "100", first.ResellerCode)
	assert.True(t, first.Delta.Equal(d("50")))
	assert.True(t, first.GrewToday)

	assert.Equal(t, "300", cmp.Resellers[1].ResellerCode)
	assert.True(t, cmp.Resellers[1].TotalMorning.IsZero())
	assert.Equal(t, "200", cmp.Resellers[2].ResellerCode)
	assert.Equal(t, "500", cmp.Resellers[3].ResellerCode)
	assert.False(t, cmp.Resellers[3].GrewToday)

	assert.True(t, cmp.SectorTotalMorning.Equal(d("290")))
	assert.True(t, cmp.SectorTotalAfternoon.Equal(d("370")))
	assert.True(t, cmp.SectorDelta.Equal(d("80")))
}

func TestCompareMissingSide(t *testing.T) {
	t.Parallel()

	afternoon := []model.Record{sale("14210", "14210 FVC", "100", "", "250", 1)}
	assert.Nil(t, Compare(nil, afternoon, "14210", nil))
	assert.Nil(t, Compare(afternoon, nil, "14210", nil))
}
