// Package pages parses human page selections such as "1-3,5,7-9".
package pages

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// MaxPage bounds every page number ParseRange accepts. No PDF reader copes with documents
// anywhere near this size, and it keeps range expansion small.
const MaxPage = 100_000

// ParseRange parses a comma-separated list of page numbers and inclusive ranges into a
// sorted, de-duplicated slice. Blank segments are ignored.
func ParseRange(expr string) ([]int, error) {
	seen := make(map[int]bool)

	for part := range strings.SplitSeq(expr, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		if a, b, isRange := strings.Cut(part, "-"); isRange {
			start, err := strconv.Atoi(strings.TrimSpace(a))
			if err != nil {
				return nil, fmt.Errorf("invalid range segment: %s", part)
			}
			end, err := strconv.Atoi(strings.TrimSpace(b))
			if err != nil {
				return nil, fmt.Errorf("invalid range segment: %s", part)
			}
			if start <= 0 || end <= 0 || end < start {
				return nil, fmt.Errorf("invalid range segment: %s", part)
			}
			if end > MaxPage {
				return nil, fmt.Errorf("page %d exceeds the maximum of %d", end, MaxPage)
			}
			for p := start; ; p++ {
				seen[p] = true
				if p == end {
					break
				}
			}
			continue
		}

		val, err := strconv.Atoi(part)
		if err != nil || val <= 0 {
			return nil, fmt.Errorf("invalid page number: %s", part)
		}
		if val > MaxPage {
			return nil, fmt.Errorf("page %d exceeds the maximum of %d", val, MaxPage)
		}
		seen[val] = true
	}

	result := make([]int, 0, len(seen))
	for p := range seen {
		result = append(result, p)
	}
	sort.Ints(result)
	return result, nil
}

// Clamp checks every page lies within 1..maxPage and returns them in the given order.
func Clamp(pages []int, maxPage int) ([]int, error) {
	result := make([]int, 0, len(pages))
	for _, p := range pages {
		if p < 1 || p > maxPage {
			return nil, fmt.Errorf("page %d is out of bounds (1..%d)", p, maxPage)
		}
		result = append(result, p)
	}
	return result, nil
}

// All returns 1..n.
func All(n int) []int {
	result := make([]int, n)
	for i := range n {
		result[i] = i + 1
	}
	return result
}

// Strings converts page numbers to the string selection form used by pdfcpu.
func Strings(pages []int) []string {
	out := make([]string, len(pages))
	for i, p := range pages {
		out[i] = strconv.Itoa(p)
	}
	return out
}
