package core

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// OrderSentinel is larger than any real identifier component. Values with no
// digits at all get (OrderSentinel, OrderSentinel) and sort last.
const OrderSentinel = 1_000_000_000

var (
	numberYearRegex = regexp.MustCompile(`(\d+)\s*/\s*(\d{4})`) // 123/2025
	firstIntRegex   = regexp.MustCompile(`\d+`)
)

// OrderKey is the (epoch, sequence) pair derived from an identifier such as
// "Portaria nº 45/2024". It is only used to compare records.
type OrderKey struct {
	Epoch    int
	Sequence int
}

// Compare returns -1, 0 or +1 ordering by epoch, then by sequence.
func (k OrderKey) Compare(o OrderKey) int {
	switch {
	case k.Epoch < o.Epoch:
		return -1
	case k.Epoch > o.Epoch:
		return 1
	case k.Sequence < o.Sequence:
		return -1
	case k.Sequence > o.Sequence:
		return 1
	}
	return 0
}

// Less reports whether k sorts before o.
func (k OrderKey) Less(o OrderKey) bool {
	return k.Compare(o) < 0
}

// ParseOrderValue extracts an OrderKey from free-form identifier text.
//
//	"45/2024"        -> (2024, 45)
//	"Atesto 12"      -> (0, 12)
//	"sem número"     -> (OrderSentinel, OrderSentinel)
//
// Entries numbered without a year get epoch 0 and therefore sort before any
// year-qualified entry.
func ParseOrderValue(text string) OrderKey {
	text = SafeString(text)

	if m := numberYearRegex.FindStringSubmatch(text); m != nil {
		return OrderKey{Epoch: atoiSaturating(m[2]), Sequence: atoiSaturating(m[1])}
	}
	if m := firstIntRegex.FindString(text); m != "" {
		return OrderKey{Epoch: 0, Sequence: atoiSaturating(m)}
	}
	return OrderKey{Epoch: OrderSentinel, Sequence: OrderSentinel}
}

// atoiSaturating parses a digit run. Runs that overflow int become
// OrderSentinel; anything that fits keeps its value, so large identifiers
// still compare against each other.
func atoiSaturating(digits string) int {
	n, err := strconv.Atoi(digits)
	if err != nil {
		return OrderSentinel
	}
	return n
}

// SortRecords returns a copy of records ordered ascending by the OrderKey of
// column. The sort is stable: equal keys keep their sheet order.
func SortRecords(records []Record, column string) []Record {
	out := make([]Record, len(records))
	copy(out, records)
	if column == "" {
		return out
	}

	keys := make(map[int]OrderKey, len(out))
	for i, r := range out {
		keys[i] = ParseOrderValue(r.Get(column))
	}
	idx := make([]int, len(out))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return keys[idx[a]].Less(keys[idx[b]])
	})

	sorted := make([]Record, len(out))
	for i, j := range idx {
		sorted[i] = out[j]
	}
	return sorted
}

// preferredOrderColumns are tried first, in order, when guessing.
var preferredOrderColumns = []string{FieldNumeroPortaria, FieldAtesto}

// orderColumnHints mark a column as holding an identifier.
var orderColumnHints = []string{"PORTARIA", "ATESTO", "NUMERO"}

// GuessOrderColumn picks the column most likely to hold the record number.
// Returns "" when nothing looks like one.
func GuessOrderColumn(columns []string) string {
	present := make(map[string]bool, len(columns))
	for _, c := range columns {
		present[c] = true
	}
	for _, c := range preferredOrderColumns {
		if present[c] {
			return c
		}
	}

	for _, c := range columns {
		if c == FieldTextoPortaria {
			continue
		}
		for _, hint := range orderColumnHints {
			if strings.Contains(c, hint) {
				return c
			}
		}
		if strings.HasPrefix(c, "N_") || strings.HasPrefix(c, "NO_") {
			return c
		}
	}
	return ""
}
