package availability

import (
	"sort"

	"github.com/md-rashed-zaman/availcap/services/availability-service/internal/interval"
)

// OpenWindows returns the parts of workingHours not covered by any break, in order.
// Breaks are clipped to working hours; overlapping or touching breaks are merged first.
func OpenWindows(workingHours interval.Interval, breaks []Break) []interval.Interval {
	if !workingHours.Valid() {
		return nil
	}
	base0 := interval.ToMinutes(workingHours.Start)
	base1 := interval.ToMinutes(workingHours.End)

	type span struct{ start, end int }
	var blocks []span
	for _, b := range breaks {
		s := interval.ToMinutes(b.Start)
		e := interval.ToMinutes(b.End)
		if e <= base0 || s >= base1 {
			continue
		}
		s = max(s, base0)
		e = min(e, base1)
		if e > s {
			blocks = append(blocks, span{s, e})
		}
	}
	if len(blocks) == 0 {
		return []interval.Interval{workingHours}
	}

	sort.Slice(blocks, func(i, j int) bool {
		if blocks[i].start != blocks[j].start {
			return blocks[i].start < blocks[j].start
		}
		return blocks[i].end < blocks[j].end
	})
	merged := make([]span, 0, len(blocks))
	for _, cur := range blocks {
		if len(merged) == 0 {
			merged = append(merged, cur)
			continue
		}
		last := &merged[len(merged)-1]
		if cur.start > last.end {
			merged = append(merged, cur)
			continue
		}
		last.end = max(last.end, cur.end)
	}

	var out []interval.Interval
	cursor := base0
	for _, m := range merged {
		if m.start > cursor {
			out = append(out, mustSpan(cursor, m.start))
		}
		cursor = max(cursor, m.end)
	}
	if base1 > cursor {
		out = append(out, mustSpan(cursor, base1))
	}
	return out
}

// mustSpan converts offsets that were derived from valid TimeOfDay values.
func mustSpan(start, end int) interval.Interval {
	s, err := interval.FromMinutes(start)
	if err != nil {
		panic(err)
	}
	e, err := interval.FromMinutes(end)
	if err != nil {
		panic(err)
	}
	return interval.New(s, e)
}
