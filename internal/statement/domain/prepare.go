package statement

import (
	"regexp"
	"sort"
	"strconv"
)

var docNumberPattern = regexp.MustCompile(`\d{6,}`)

// DocSortKey extracts a numeric ordering key from a free-text document
// number: the first run of six or more consecutive digits. The second return
// is false when no such run exists.
func DocSortKey(docNumber string) (int64, bool) {
	match := docNumberPattern.FindString(docNumber)
	if match == "" {
		return 0, false
	}
	key, err := strconv.ParseInt(match, 10, 64)
	if err != nil {
		return 0, false
	}
	return key, true
}

type sortableMovement struct {
	Movement
	key    int64
	hasKey bool
}

// SortMovements orders rows by issue date ascending. When at least one row in
// the set carries a derivable document key, equal-date rows are tie-broken by
// that key ascending; rows lacking a key sort after keyed rows of the same
// date. Rows with a missing issue date sort last. The sort is stable, so the
// source order survives where nothing else distinguishes two rows.
func SortMovements(rows []Movement) {
	anyKey := false
	sortable := make([]sortableMovement, len(rows))
	for i, m := range rows {
		key, ok := DocSortKey(m.DocNumber)
		sortable[i] = sortableMovement{Movement: m, key: key, hasKey: ok}
		anyKey = anyKey || ok
	}

	sort.SliceStable(sortable, func(i, j int) bool {
		a, b := sortable[i], sortable[j]
		switch {
		case a.IssueDate.IsZero() && b.IssueDate.IsZero():
			// fall through to the key tie-break
		case a.IssueDate.IsZero():
			return false
		case b.IssueDate.IsZero():
			return true
		case !a.IssueDate.Equal(b.IssueDate):
			return a.IssueDate.Before(b.IssueDate)
		}
		if !anyKey {
			return false
		}
		switch {
		case a.hasKey && b.hasKey:
			return a.key < b.key
		case a.hasKey:
			return true
		default:
			return false
		}
	})

	for i := range sortable {
		rows[i] = sortable[i].Movement
	}
}
