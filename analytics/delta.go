package analytics

// RelativeChange returns (cur-prev)/prev*100. It is nil when either value is
// nil or when prev is zero and cur is not, and 0 when both are zero.
func RelativeChange(prev, cur *float64) *float64 {
	if prev == nil || cur == nil {
		return nil
	}
	if *prev == 0 {
		if *cur == 0 {
			return float(0)
		}
		return nil
	}
	return float((*cur - *prev) / *prev * 100)
}

// PointChange returns the absolute difference cur-prev, or nil when either
// value is nil.
func PointChange(prev, cur *float64) *float64 {
	if prev == nil || cur == nil {
		return nil
	}
	return float(*cur - *prev)
}

// Compare builds the week over week comparison.
func Compare(prev, cur Weekly) Comparison {
	relative := func(p, c *float64) Delta {
		return Delta{Previous: p, Current: c, Change: RelativeChange(p, c)}
	}

	return Comparison{
		Inbound:       relative(count(prev.InboundTotal), count(cur.InboundTotal)),
		Outbound:      relative(count(prev.OutboundTotal), count(cur.OutboundTotal)),
		FRTAvgMinutes: relative(prev.FRTAvgMinutes, cur.FRTAvgMinutes),
		ResponseRate24h: Delta{
			Previous: prev.ResponseRate24h,
			Current:  cur.ResponseRate24h,
			Change:   PointChange(prev.ResponseRate24h, cur.ResponseRate24h),
		},
		Conversations: relative(count(prev.Conversations), count(cur.Conversations)),
	}
}

func float(v float64) *float64 {
	return &v
}

func count(n int) *float64 {
	return float(float64(n))
}
