package hours

// Extraction of periods from opaque place records. Records arrive as
// JSON-shaped map[string]any; numbers may be float64 (encoding/json) or
// integer types (msgpack/cbor snapshots), so day values are coerced.

// PeriodsFrom pulls the weekly periods out of a record's opening_hours.
// Missing or malformed structure yields nil, never an error: a record
// without usable hours is simply treated as "no schedule".
func PeriodsFrom(record map[string]any) []Period {
	oh, ok := record["opening_hours"].(map[string]any)
	if !ok {
		return nil
	}
	raw, ok := oh["periods"].([]any)
	if !ok {
		return nil
	}

	periods := make([]Period, 0, len(raw))
	for _, rp := range raw {
		pm, ok := rp.(map[string]any)
		if !ok {
			continue
		}
		open, okO := timePointFrom(pm["open"])
		close, okC := timePointFrom(pm["close"])
		if !okO || !okC {
			continue
		}
		periods = append(periods, Period{Open: open, Close: close})
	}
	return periods
}

func timePointFrom(v any) (TimePoint, bool) {
	m, ok := v.(map[string]any)
	if !ok {
		return TimePoint{}, false
	}
	day, ok := asInt(m["day"])
	if !ok || day < 0 || day > 6 {
		return TimePoint{}, false
	}
	t, ok := m["time"].(string)
	if !ok {
		return TimePoint{}, false
	}
	return TimePoint{Day: day, Time: t}, true
}

func asInt(v any) (int, bool) {
	switch n := v.(type) {
	case float64:
		return int(n), true
	case int:
		return n, true
	case int8:
		return int(n), true
	case int16:
		return int(n), true
	case int32:
		return int(n), true
	case int64:
		return int(n), true
	case uint8:
		return int(n), true
	case uint16:
		return int(n), true
	case uint32:
		return int(n), true
	case uint64:
		return int(n), true
	default:
		return 0, false
	}
}
