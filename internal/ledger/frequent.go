package ledger

import "sort"

// TopRecipients counts the withdrawal counterparties in entries and returns
// the n most frequent account numbers. Entries are expected newest-first;
// ties keep that order, so the most recently paid recipient wins.
func TopRecipients(entries []Entry, n int) []string {
	counts := make(map[string]int)
	firstSeen := make(map[string]int)

	for i, entry := range entries {
		if entry.Type != TypeWithdrawal || entry.Recipient == "" {
			continue
		}
		if _, seen := counts[entry.Recipient]; !seen {
			firstSeen[entry.Recipient] = i
		}
		counts[entry.Recipient]++
	}

	numbers := make([]string, 0, len(counts))
	for number := range counts {
		numbers = append(numbers, number)
	}
	sort.Slice(numbers, func(i, j int) bool {
		if counts[numbers[i]] != counts[numbers[j]] {
			return counts[numbers[i]] > counts[numbers[j]]
		}
		return firstSeen[numbers[i]] < firstSeen[numbers[j]]
	})

	if len(numbers) > n {
		numbers = numbers[:n]
	}
	return numbers
}
