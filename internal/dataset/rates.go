package dataset

// ComputeRates derives the four open-rate columns for each record.
// A zero Sends count maps to a null rate rather than a division blow-up,
// so downstream means stay well-defined under null-skipping aggregation.
func ComputeRates(records []Record) []RateRecord {
	out := make([]RateRecord, len(records))
	for i, rec := range records {
		out[i] = RateRecord{
			Record:                rec,
			AndroidDirectOpenRate: rate(rec.Android.DirectOpens, rec.Android.Sends),
			AndroidTotalOpenRate:  rate(rec.Android.TotalOpens, rec.Android.Sends),
			IOSDirectOpenRate:     rate(rec.IOS.DirectOpens, rec.IOS.Sends),
			IOSTotalOpenRate:      rate(rec.IOS.TotalOpens, rec.IOS.Sends),
		}
	}
	return out
}

func rate(opens, sends float64) Float {
	if sends == 0 {
		return Float{}
	}
	return FloatFrom(opens / sends)
}
