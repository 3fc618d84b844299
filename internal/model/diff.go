package model

// Change describes one member whose extracted fields differ between runs.
type Change struct {
	Name   string
	Region string
	// Fields lists the canonical fields whose values changed.
	Fields []Field
	Before Record
	After  Record
}

// Diff is the difference between an older and a newer set of records.
// Members are matched by name and region.
type Diff struct {
	Added   []Record
	Removed []Record
	Changed []Change
}

// IsEmpty reports whether both record sets were equivalent.
func (d Diff) IsEmpty() bool {
	return len(d.Added) == 0 && len(d.Removed) == 0 && len(d.Changed) == 0
}

type recordKey struct {
	name   string
	region string
}

// DiffRecords compares two record sets. Results follow the order of the
// newer set for Added and Changed, and of the older set for Removed.
func DiffRecords(older, newer []Record) Diff {
	before := make(map[recordKey]Record, len(older))
	for _, r := range older {
		before[recordKey{r.Name, r.Region}] = r
	}
	after := make(map[recordKey]bool, len(newer))

	var d Diff
	for _, r := range newer {
		k := recordKey{r.Name, r.Region}
		after[k] = true
		old, ok := before[k]
		if !ok {
			d.Added = append(d.Added, r)
			continue
		}
		var changed []Field
		for _, f := range []Field{FieldEmail, FieldGroup, FieldDistrict} {
			if old.Value(f) != r.Value(f) {
				changed = append(changed, f)
			}
		}
		if len(changed) > 0 {
			d.Changed = append(d.Changed, Change{
				Name:   r.Name,
				Region: r.Region,
				Fields: changed,
				Before: old,
				After:  r,
			})
		}
	}
	for _, r := range older {
		if !after[recordKey{r.Name, r.Region}] {
			d.Removed = append(d.Removed, r)
		}
	}
	return d
}
