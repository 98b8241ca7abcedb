package models

// RankOrder is the canonical condition-grade ordering, best first
var RankOrder = []string{"SA", "S", "A", "AB", "B", "BC", "C", "N/A"}

var rankIndex = func() map[string]int {
	m := make(map[string]int, len(RankOrder))
	for i, r := range RankOrder {
		m[r] = i
	}
	return m
}()

// RankPosition returns the sort position of a rank; unknown ranks sort last
func RankPosition(rank string) int {
	if i, ok := rankIndex[rank]; ok {
		return i
	}
	return len(RankOrder)
}
