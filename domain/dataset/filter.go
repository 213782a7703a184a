package dataset

// FilterByYear returns a table holding exactly the records with
// Year <= threshold, in their original order. The input table is not
// modified and records are shared, never rewritten.
func FilterByYear(t *Table, threshold int) *Table {
	if t == nil {
		return nil
	}
	filtered := &Table{
		Columns:  t.Columns,
		Source:   t.Source,
		Digest:   t.Digest,
		LoadID:   t.LoadID,
		LoadedAt: t.LoadedAt,
		Records:  make([]Record, 0, len(t.Records)),
	}
	for _, r := range t.Records {
		if r.Year <= threshold {
			filtered.Records = append(filtered.Records, r)
		}
	}
	return filtered
}

// IsSubsetOf reports whether every record of t appears in parent in the same
// relative order.
func (t *Table) IsSubsetOf(parent *Table) bool {
	j := 0
	for _, r := range t.Records {
		for j < len(parent.Records) && !parent.Records[j].Equal(r) {
			j++
		}
		if j == len(parent.Records) {
			return false
		}
		j++
	}
	return true
}
