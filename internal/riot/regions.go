package riot

import "sort"

// Queue identifiers. The league-v4 ladder endpoint takes the queue name,
// match-v5 history takes the numeric id.
const (
	QueueRankedSolo = "RANKED_SOLO_5x5"
	QueueClashID    = 700
)

// bigRegions maps a server region (league-v4 routing) to its continental
// routing value (match-v5 routing).
var bigRegions = map[string]string{
	"euw1": "europe",
	"eun1": "europe",
	"jp1":  "asia",
	"kr":   "asia",
	"na1":  "americas",
	"br1":  "americas",
}

// BigRegion returns the continental routing value for a server region.
// The second return is false for regions this crawler does not know.
func BigRegion(region string) (string, bool) {
	big, ok := bigRegions[region]
	return big, ok
}

// KnownRegions lists the server regions with a routing mapping, sorted.
func KnownRegions() []string {
	regions := make([]string, 0, len(bigRegions))
	for region := range bigRegions {
		regions = append(regions, region)
	}
	sort.Strings(regions)
	return regions
}
