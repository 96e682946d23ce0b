package chat

import "math/rand/v2"

type loadingAction int

const (
	actionSearching loadingAction = iota
	actionThinking
	actionAnalyzing
)

// Typing-indicator phrase pools, one per kind of work the guru is doing.
var loadingPhrases = map[loadingAction][]string{
	actionSearching: {
		"Scanning the horizon",
		"Digging up insight",
		"Surfacing hidden layers",
		"Scouting vantage points",
		"Testing the waters",
		"Sampling perspectives",
		"Catching inspiration",
	},
	actionThinking: {
		"Cycling through insight",
		"Storming the mind",
		"Rippling with reason",
		"Tuning the mental dial",
		"Mulling over vantage",
		"Drifting through logic",
		"Provoking deeper thought",
	},
	actionAnalyzing: {
		"Reading between the tags",
		"Counting the cards",
		"Weighing the on-page odds",
		"Pacing the crawl",
		"Inspecting the foundation",
	},
}

func loadingPhrase(action loadingAction) string {
	pool := loadingPhrases[action]
	return pool[rand.IntN(len(pool))]
}
