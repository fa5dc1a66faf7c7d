// VideoParty - Synchronized Video Watching Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/videoparty

// Package recommend suggests videos from a small fixed catalog.
//
// The catalog is immutable. All randomness comes from the source handed to
// the Engine, so a seeded engine produces repeatable results in tests.
package recommend

import (
	"github.com/samber/lo"

	"github.com/tomtom215/videoparty/internal/video"
)

// Collection names a group of catalog items.
type Collection string

// Catalog collections.
const (
	CollectionLofi   Collection = "lofi"
	CollectionJazz   Collection = "jazz"
	CollectionNature Collection = "nature"
	CollectionTech   Collection = "tech"
	CollectionGaming Collection = "gaming"
)

// Item is a recommendable video.
type Item struct {
	Title     string `json:"title"`
	URL       string `json:"url"`
	Platform  string `json:"platform"`
	Category  string `json:"category"`
	Mood      string `json:"mood"`
	Thumbnail string `json:"thumbnail"`
	Views     string `json:"views,omitempty"`

	// Video is the classifier's view of URL.
	Video *video.Descriptor `json:"video,omitempty"`
}

// Catalog is an immutable set of collections plus a trending list.
type Catalog struct {
	collections map[Collection][]Item
	trending    []Item
}

// NewCatalog builds a catalog from the given collections and trending list.
// Items are annotated with classifier descriptors. The inputs are copied.
func NewCatalog(collections map[Collection][]Item, trending []Item, classifier *video.Classifier) *Catalog {
	annotate := func(items []Item) []Item {
		return lo.Map(items, func(it Item, _ int) Item {
			d := classifier.Classify(it.URL)
			it.Video = &d
			return it
		})
	}

	c := &Catalog{
		collections: make(map[Collection][]Item, len(collections)),
		trending:    annotate(trending),
	}
	for name, items := range collections {
		c.collections[name] = annotate(items)
	}
	return c
}

// Items returns a copy of the named collections concatenated in order.
// Unknown names contribute nothing.
func (c *Catalog) Items(names ...Collection) []Item {
	return lo.Flatten(lo.Map(names, func(n Collection, _ int) []Item {
		return c.collections[n]
	}))
}

// Trending returns a copy of the trending list.
func (c *Catalog) Trending() []Item {
	return append([]Item(nil), c.trending...)
}

// Collections returns the collection names present in the catalog.
func (c *Catalog) Collections() []Collection {
	return lo.Keys(c.collections)
}

func ytItem(title, id, category, mood string) Item {
	return Item{
		Title:     title,
		URL:       "https://www.youtube.com/watch?v=" + id,
		Platform:  string(video.PlatformYouTube),
		Category:  category,
		Mood:      mood,
		Thumbnail: "https://img.youtube.com/vi/" + id + "/maxresdefault.jpg",
	}
}

func trendingItem(title, id, category, views string) Item {
	it := ytItem(title, id, category, "trending")
	it.Views = views
	return it
}

// DefaultCollections returns the built-in catalog content.
func DefaultCollections() map[Collection][]Item {
	return map[Collection][]Item{
		CollectionLofi: {
			ytItem("🎵 Lofi Hip Hop Radio - Beats to Relax/Study", "jfKfPfyJRdk", "music", "chill"),
			ytItem("🌙 Midnight Lofi Vibes", "DWcJFNfaw9c", "music", "chill"),
		},
		CollectionJazz: {
			ytItem("🎷 Smooth Jazz for Work & Study", "Dx5qFachd3A", "music", "relaxing"),
			ytItem("☕ Coffee Shop Jazz Ambience", "bM7SZ5SBzyY", "music", "relaxing"),
		},
		CollectionNature: {
			ytItem("🌊 Ocean Waves for Deep Sleep", "V1bFr2SWP1I", "ambient", "peaceful"),
			ytItem("🌲 Forest Rain Sounds", "nDq6TstdEi8", "ambient", "peaceful"),
		},
		CollectionTech: {
			ytItem("💻 Coding in Python - Live Session", "kqtD5dpn9C8", "educational", "focused"),
			ytItem("🚀 React Tutorial for Beginners", "Ke90Tje7VS0", "educational", "focused"),
		},
		CollectionGaming: {
			ytItem("🎮 Epic Gaming Moments Compilation", "dQw4w9WgXcQ", "entertainment", "energetic"),
		},
	}
}

// DefaultTrending returns the built-in trending list.
func DefaultTrending() []Item {
	return []Item{
		trendingItem("🔥 Trending: Epic Chill Vibes", "jfKfPfyJRdk", "music", "10M+"),
		trendingItem("🌟 Popular: Night City Ambience", "V1bFr2SWP1I", "ambient", "5M+"),
		trendingItem("⚡ Hot: Gaming Music Mix", "dQw4w9WgXcQ", "entertainment", "8M+"),
	}
}

// DefaultCatalog returns the built-in catalog.
func DefaultCatalog(classifier *video.Classifier) *Catalog {
	return NewCatalog(DefaultCollections(), DefaultTrending(), classifier)
}
