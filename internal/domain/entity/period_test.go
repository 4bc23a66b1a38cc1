package entity_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/komplek-api/internal/domain/entity"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestParseBillingPeriod(t *testing.T) {
	p, err := entity.ParseBillingPeriod("2024-03")
	require.NoError(t, err)
	assert.Equal(t, 2024, p.Year)
	assert.Equal(t, time.March, p.Month)
	assert.Equal(t, "2024-03", p.String())

	for _, bad := range []string{"", "2024-13", "03-2024", "2024/03", "2024-3"} {
		_, err := entity.ParseBillingPeriod(bad)
		assert.Error(t, err, "periodo %q", bad)
	}
}

func TestBillingPeriod_DueDate_AjustaFinDeMes(t *testing.T) {
	cases := []struct {
		period string
		day    int
		want   time.Time
	}{
		{"2024-03", 5, date(2024, time.March, 5)},
		{"2024-02", 31, date(2024, time.February, 29)},
		{"2023-02", 30, date(2023, time.February, 28)},
		{"2024-04", 31, date(2024, time.April, 30)},
		{"2024-12", 31, date(2024, time.December, 31)},
	}
	for _, tc := range cases {
		p, err := entity.ParseBillingPeriod(tc.period)
		require.NoError(t, err)
		assert.Equal(t, tc.want, p.DueDate(tc.day), "%s día %d", tc.period, tc.day)
	}
}

func TestIuran_Covers(t *testing.T) {
	iu := &entity.Iuran{
		DueDate:   5,
		StartDate: date(2024, time.January, 1),
		EndDate:   date(2024, time.December, 31),
		Amount:    decimal.NewFromInt(50000),
	}
	in, _ := entity.ParseBillingPeriod("2024-03")
	before, _ := entity.ParseBillingPeriod("2023-12")
	after, _ := entity.ParseBillingPeriod("2025-01")

	assert.True(t, iu.Covers(in))
	assert.False(t, iu.Covers(before))
	assert.False(t, iu.Covers(after))

	// vigencia que empieza después del día de vencimiento del primer mes
	iu.StartDate = date(2024, time.January, 10)
	jan, _ := entity.ParseBillingPeriod("2024-01")
	assert.False(t, iu.Covers(jan))
}
