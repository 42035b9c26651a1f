package schema

import (
	"sort"
	"strings"

	"db-refcheck/internal/logger"
)

// RankTables orders tables so that every table comes after the tables it
// references and returns each table's 1-based position, keyed by lower-case
// name. deps maps a referencing table to the tables it points at. Cycles are
// broken greedily: the candidate with the fewest pending dependencies wins,
// with a bonus for tables caught in a direct two-way cycle.
func RankTables(deps map[string][]string) map[string]int {
	graph := make(map[string][]string)
	for from, tos := range deps {
		f := strings.ToLower(from)
		if _, ok := graph[f]; !ok {
			graph[f] = nil
		}
		for _, to := range tos {
			t := strings.ToLower(to)
			if t == f {
				continue
			}
			graph[f] = append(graph[f], t)
			if _, ok := graph[t]; !ok {
				graph[t] = nil
			}
		}
	}

	names := make([]string, 0, len(graph))
	for n := range graph {
		names = append(names, n)
	}
	sort.Strings(names)

	ranks := make(map[string]int, len(names))
	processed := make(map[string]bool, len(names))
	next := 1

	for len(processed) < len(names) {
		added := false

		for _, n := range names {
			if processed[n] {
				continue
			}
			ready := true
			for _, dep := range graph[n] {
				if !processed[dep] {
					ready = false
					break
				}
			}
			if ready {
				processed[n] = true
				ranks[n] = next
				next++
				added = true
			}
		}
		if added {
			continue
		}

		best, bestScore := "", -1<<31
		for _, n := range names {
			if processed[n] {
				continue
			}
			score := 0
			circular := false
			for _, dep := range graph[n] {
				if processed[dep] {
					continue
				}
				score -= 100
				for _, back := range graph[dep] {
					if back == n {
						circular = true
					}
				}
			}
			if circular {
				score += 500
			}
			if score > bestScore {
				best, bestScore = n, score
			}
		}
		logger.L().Debugf("Breaking reference cycle at %s (score %d)", best, bestScore)
		processed[best] = true
		ranks[best] = next
		next++
	}
	return ranks
}
