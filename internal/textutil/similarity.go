package textutil

// Ratio computes the Ratcliff-Obershelp similarity of two strings: twice the
// number of matching characters over the total length, where matches are
// found by recursively locating the longest common substring. The result is
// in [0, 1] and symmetric in its arguments. Two empty strings are identical.
func Ratio(a, b string) float64 {
	ar := []rune(Normalize(a))
	br := []rune(Normalize(b))
	total := len(ar) + len(br)
	if total == 0 {
		return 1
	}
	matched := matchedRunes(ar, br)
	return 2 * float64(matched) / float64(total)
}

func matchedRunes(a, b []rune) int {
	i, j, size := longestCommonRun(a, b)
	if size == 0 {
		return 0
	}
	matched := size
	matched += matchedRunes(a[:i], b[:j])
	matched += matchedRunes(a[i+size:], b[j+size:])
	return matched
}

func longestCommonRun(a, b []rune) (bestI, bestJ, bestSize int) {
	if len(a) == 0 || len(b) == 0 {
		return 0, 0, 0
	}
	// lengths[j] holds the run length ending at a[i-1], b[j-1].
	lengths := make([]int, len(b)+1)
	for i := 1; i <= len(a); i++ {
		prev := 0
		for j := 1; j <= len(b); j++ {
			cur := lengths[j]
			if a[i-1] == b[j-1] {
				lengths[j] = prev + 1
				if lengths[j] > bestSize {
					bestSize = lengths[j]
					bestI = i - bestSize
					bestJ = j - bestSize
				}
			} else {
				lengths[j] = 0
			}
			prev = cur
		}
	}
	return bestI, bestJ, bestSize
}
