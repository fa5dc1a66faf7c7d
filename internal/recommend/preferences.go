// VideoParty - Synchronized Video Watching Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/videoparty

package recommend

import (
	"strings"
)

// Category is a coarse content preference bucket.
type Category string

// Preference categories, in the order Smart visits them.
const (
	CategoryMusic         Category = "music"
	CategoryEducational   Category = "educational"
	CategoryAmbient       Category = "ambient"
	CategoryEntertainment Category = "entertainment"
)

// Categories lists every category in evaluation order.
var Categories = []Category{
	CategoryMusic,
	CategoryEducational,
	CategoryAmbient,
	CategoryEntertainment,
}

// PlaylistItem is one entry of a user's playlist.
type PlaylistItem struct {
	Title string `json:"title" validate:"max=500"`
	URL   string `json:"url" validate:"max=2048"`
}

// Preferences maps categories to weights summing to 1.
type Preferences map[Category]float64

// keywordRules are checked in order; the first rule with a matching keyword
// claims the title. Titles matching nothing count as entertainment.
var keywordRules = []struct {
	category Category
	keywords []string
}{
	{CategoryMusic, []string{"music", "song", "beat", "lofi", "jazz"}},
	{CategoryEducational, []string{"tutorial", "learn", "course", "code"}},
	{CategoryAmbient, []string{"nature", "rain", "ocean", "ambient"}},
}

// DefaultPreferences is returned for an empty playlist.
func DefaultPreferences() Preferences {
	return Preferences{
		CategoryMusic:         0.4,
		CategoryEducational:   0.3,
		CategoryAmbient:       0.2,
		CategoryEntertainment: 0.1,
	}
}

// AnalyzePreferences buckets playlist titles by keyword and normalizes the
// counts. The keyword lists are a heuristic, not a ranking model.
func AnalyzePreferences(playlist []PlaylistItem) Preferences {
	if len(playlist) == 0 {
		return DefaultPreferences()
	}

	counts := make(map[Category]int, len(Categories))
	for _, item := range playlist {
		counts[categorize(item.Title)]++
	}

	prefs := make(Preferences, len(counts))
	total := float64(len(playlist))
	for cat, n := range counts {
		prefs[cat] = float64(n) / total
	}
	return prefs
}

func categorize(title string) Category {
	title = strings.ToLower(title)
	for _, r := range keywordRules {
		for _, kw := range r.keywords {
			if strings.Contains(title, kw) {
				return r.category
			}
		}
	}
	return CategoryEntertainment
}

// categoryCollections maps a preference category to the collections serving it.
var categoryCollections = map[Category][]Collection{
	CategoryMusic:         {CollectionLofi, CollectionJazz},
	CategoryEducational:   {CollectionTech},
	CategoryAmbient:       {CollectionNature},
	CategoryEntertainment: {CollectionGaming},
}

// moodCollections maps a mood to its collections. Unknown moods use lofi.
var moodCollections = map[string][]Collection{
	"chill":  {CollectionLofi, CollectionJazz},
	"focus":  {CollectionTech, CollectionNature},
	"relax":  {CollectionNature, CollectionJazz},
	"energy": {CollectionGaming},
	"study":  {CollectionLofi, CollectionTech},
}

// Moods lists the recognized moods.
func Moods() []string {
	return []string{"chill", "focus", "relax", "energy", "study"}
}
