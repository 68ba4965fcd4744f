package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRelativeChange(t *testing.T) {
	tests := []struct {
		name string
		prev *float64
		cur  *float64
		want *float64
	}{
		{"growth", float(4), float(5), float(25)},
		{"decline", float(8), float(2), float(-75)},
		{"equal non zero", float(3), float(3), float(0)},
		{"both zero", float(0), float(0), float(0)},
		{"from zero", float(0), float(4), nil},
		{"missing previous", nil, float(4), nil},
		{"missing current", float(4), nil, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RelativeChange(tt.prev, tt.cur)
			if tt.want == nil {
				assert.Nil(t, got)
				return
			}
			if assert.NotNil(t, got) {
				assert.InDelta(t, *tt.want, *got, 1e-9)
			}
		})
	}
}

func TestPointChange(t *testing.T) {
	got := PointChange(float(50), float(87.5))
	if assert.NotNil(t, got) {
		assert.InDelta(t, 37.5, *got, 1e-9)
	}
	assert.Nil(t, PointChange(nil, float(10)))
	assert.Nil(t, PointChange(float(10), nil))

	got = PointChange(float(0), float(40))
	if assert.NotNil(t, got) {
		assert.InDelta(t, 40, *got, 1e-9)
	}
}

func TestCompareUsesPointsForResponseRate(t *testing.T) {
	prev := Weekly{InboundTotal: 4, OutboundTotal: 0, Conversations: 2, ResponseRate24h: float(50), FRTAvgMinutes: float(10)}
	cur := Weekly{InboundTotal: 4, OutboundTotal: 3, Conversations: 2, ResponseRate24h: float(75), FRTAvgMinutes: float(5)}

	c := Compare(prev, cur)
	assert.InDelta(t, 0, *c.Inbound.Change, 1e-9)
	assert.Nil(t, c.Outbound.Change)
	assert.InDelta(t, -50, *c.FRTAvgMinutes.Change, 1e-9)
	assert.InDelta(t, 25, *c.ResponseRate24h.Change, 1e-9)
	assert.InDelta(t, 0, *c.Conversations.Change, 1e-9)
}
