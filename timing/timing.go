// Package timing converts between spoken duration and word counts at a fixed
// speaking rate.
package timing

import (
	"math"
	"strings"
)

// DefaultWordsPerMinute is the assumed natural speaking rate.
const DefaultWordsPerMinute = 150

// WordBudget returns the target word count for a spoken duration at the given
// rate.
func WordBudget(targetMinutes float64, wordsPerMinute int) int {
	if wordsPerMinute <= 0 {
		wordsPerMinute = DefaultWordsPerMinute
	}
	return int(math.Round(targetMinutes * float64(wordsPerMinute)))
}

// EstimateDuration returns the estimated spoken duration of text in seconds.
// Empty text estimates to 0.
func EstimateDuration(text string, wordsPerMinute int) float64 {
	if wordsPerMinute <= 0 {
		wordsPerMinute = DefaultWordsPerMinute
	}
	return float64(WordCount(text)) / float64(wordsPerMinute) * 60.0
}

// WordCount counts whitespace-separated words.
func WordCount(text string) int {
	return len(strings.Fields(text))
}
