package allocator

import "strconv"

// RowLabel converts a zero-based row index to an alphabetical label:
// 0 -> A, 25 -> Z, 26 -> AA, 27 -> AB.
func RowLabel(i int) string {
	if i < 0 {
		return ""
	}
	res := []rune{}
	for {
		rem := i % 26
		res = append(res, rune('A'+rem))
		i = i/26 - 1
		if i < 0 {
			break
		}
	}
	for j, k := 0, len(res)-1; j < k; j, k = j+1, k-1 {
		res[j], res[k] = res[k], res[j]
	}
	return string(res)
}

// Label returns the spot label of a zero-based grid cell, e.g. (1,1) -> "B2".
func Label(row, col int) string {
	return RowLabel(row) + strconv.Itoa(col+1)
}
