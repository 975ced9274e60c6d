package analytics

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// UnknownBucket groups rows whose product has no category or supplier, and
// orphan transactions whose product is missing from the catalog. A catalog
// value spelled "unknown" lands in the same bucket.
const UnknownBucket = "unknown"

func lineAmount(qty int64, unitPrice float64) decimal.Decimal {
	return decimal.NewFromInt(qty).Mul(decimal.NewFromFloat(unitPrice))
}

func toFloat(d decimal.Decimal) float64 {
	f, _ := d.Float64()
	return f
}

// monthStart truncates ts to the first day of its UTC calendar month.
func monthStart(ts time.Time) time.Time {
	ts = ts.UTC()
	return time.Date(ts.Year(), ts.Month(), 1, 0, 0, 0, 0, time.UTC)
}

func bucketOf(value string) string {
	if value == "" {
		return UnknownBucket
	}
	return value
}

// sortedBuckets returns the keys ascending with UnknownBucket last.
func sortedBuckets[V any](groups map[string]V) []string {
	keys := make([]string, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		ui, uj := keys[i] == UnknownBucket, keys[j] == UnknownBucket
		if ui != uj {
			return uj
		}
		return keys[i] < keys[j]
	})
	return keys
}
