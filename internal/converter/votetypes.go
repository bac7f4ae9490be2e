package converter

import "github.com/ginjaninja78/clarity-to-csv/internal/clarity"

// CollectVoteTypes returns the distinct vote-type names across all choices,
// each at its first occurrence in document order. The result is the column
// schema shared by every candidate, so a vote type reported for only one
// choice still gets a column for all of them.
func CollectVoteTypes(choices []clarity.Choice) []string {
	var names []string
	seen := make(map[string]bool)
	for _, choice := range choices {
		for _, voteType := range choice.VoteTypes {
			if voteType.Name == "" || seen[voteType.Name] {
				continue
			}
			seen[voteType.Name] = true
			names = append(names, voteType.Name)
		}
	}
	return names
}
