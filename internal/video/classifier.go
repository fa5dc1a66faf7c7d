// VideoParty - Synchronized Video Watching Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/videoparty

// Package video classifies video URLs into hosting platforms and builds the
// embeddable player URL for each one.
//
// Classification never fails. A URL that no platform rule recognizes is
// returned as a direct media link with its input preserved verbatim:
//
//	c := video.NewClassifier("watch.example.com")
//	d := c.Classify("https://www.twitch.tv/videos/123456789")
//	// d.Platform == video.PlatformTwitch
//	// d.EmbedURL == "https://player.twitch.tv/?video=123456789&parent=watch.example.com"
//
// A Classifier holds no mutable state and is safe for concurrent use.
package video

import (
	"net/url"
	"regexp"
)

// Platform identifies the service hosting a video.
type Platform string

// Known platforms.
const (
	PlatformYouTube    Platform = "youtube"
	PlatformVimeo      Platform = "vimeo"
	PlatformTwitch     Platform = "twitch"
	PlatformTwitchLive Platform = "twitch_live"
	PlatformDirect     Platform = "direct"
)

// Platforms lists every platform in classification priority order.
var Platforms = []Platform{
	PlatformYouTube,
	PlatformVimeo,
	PlatformTwitch,
	PlatformTwitchLive,
	PlatformDirect,
}

// DefaultEmbedHost is the Twitch parent host used by Classify.
const DefaultEmbedHost = "localhost"

// Descriptor describes how to embed and control a video.
type Descriptor struct {
	Platform Platform `json:"platform"`

	// VideoID is the platform identifier, or the channel name for live
	// Twitch streams. Nil for direct links.
	VideoID *string `json:"video_id"`

	EmbedURL string `json:"embed_url"`

	// Thumbnail is nil for Twitch and direct links.
	Thumbnail *string `json:"thumbnail"`

	// SupportsSync is false only for live streams, which have no shared
	// seekable timeline.
	SupportsSync bool `json:"supports_sync"`

	// RequiresCORS tells clients they must handle cross-origin playback
	// control themselves.
	RequiresCORS bool `json:"requires_cors"`
}

// ID returns the video id or "" when absent.
func (d Descriptor) ID() string {
	if d.VideoID == nil {
		return ""
	}
	return *d.VideoID
}

// rule pairs a matcher with the constructor for its descriptor.
type rule struct {
	platform Platform
	match    func(raw string) (id string, ok bool)
	build    func(id string) Descriptor
}

var (
	// The trailing group stops a longer run of id characters from matching.
	youtubeRe      = regexp.MustCompile(`(?:youtube\.com/watch\?v=|youtu\.be/|youtube\.com/embed/)([A-Za-z0-9_-]{11})(?:[^A-Za-z0-9_-]|$)`)
	youtubeQueryRe = regexp.MustCompile(`youtube\.com/watch\?(?:[^#]*&)?v=([A-Za-z0-9_-]{11})(?:[^A-Za-z0-9_-]|$)`)
	vimeoRe        = regexp.MustCompile(`vimeo\.com/(?:video/)?(\d+)`)
	twitchVODRe    = regexp.MustCompile(`twitch\.tv/videos/(\d+)`)
	twitchLiveRe   = regexp.MustCompile(`twitch\.tv/([A-Za-z0-9_]+)$`)
)

// Classifier maps URLs to descriptors using a fixed, ordered rule list.
type Classifier struct {
	embedHost string
	rules     []rule
}

// NewClassifier creates a classifier whose Twitch embeds name embedHost as
// the parent page. An empty host falls back to DefaultEmbedHost.
func NewClassifier(embedHost string) *Classifier {
	if embedHost == "" {
		embedHost = DefaultEmbedHost
	}
	c := &Classifier{embedHost: embedHost}
	c.rules = []rule{
		{PlatformYouTube, matchFirst(youtubeRe, youtubeQueryRe), youtubeDescriptor},
		{PlatformVimeo, matchFirst(vimeoRe), vimeoDescriptor},
		{PlatformTwitch, matchFirst(twitchVODRe), c.twitchVODDescriptor},
		{PlatformTwitchLive, matchTwitchChannel, c.twitchLiveDescriptor},
	}
	return c
}

// EmbedHost returns the configured Twitch parent host.
func (c *Classifier) EmbedHost() string {
	return c.embedHost
}

// Classify returns the descriptor of the first rule matching raw, or a
// direct descriptor echoing raw when none does.
func (c *Classifier) Classify(raw string) Descriptor {
	for _, r := range c.rules {
		if id, ok := r.match(raw); ok {
			return r.build(id)
		}
	}
	return directDescriptor(raw)
}

var defaultClassifier = NewClassifier(DefaultEmbedHost)

// Classify classifies raw with the default embed host.
func Classify(raw string) Descriptor {
	return defaultClassifier.Classify(raw)
}

// matchFirst tries each pattern in order and returns the first capture.
func matchFirst(patterns ...*regexp.Regexp) func(string) (string, bool) {
	return func(raw string) (string, bool) {
		for _, re := range patterns {
			if m := re.FindStringSubmatch(raw); m != nil {
				return m[1], true
			}
		}
		return "", false
	}
}

// matchTwitchChannel matches a bare channel path. "videos" is the VOD
// listing, never a channel.
func matchTwitchChannel(raw string) (string, bool) {
	m := twitchLiveRe.FindStringSubmatch(raw)
	if m == nil || m[1] == "videos" {
		return "", false
	}
	return m[1], true
}

func youtubeDescriptor(id string) Descriptor {
	return Descriptor{
		Platform:     PlatformYouTube,
		VideoID:      strPtr(id),
		EmbedURL:     "https://www.youtube.com/embed/" + id,
		Thumbnail:    strPtr("https://img.youtube.com/vi/" + id + "/maxresdefault.jpg"),
		SupportsSync: true,
		RequiresCORS: false,
	}
}

func vimeoDescriptor(id string) Descriptor {
	return Descriptor{
		Platform:     PlatformVimeo,
		VideoID:      strPtr(id),
		EmbedURL:     "https://player.vimeo.com/video/" + id,
		Thumbnail:    strPtr("https://vumbnail.com/" + id + ".jpg"),
		SupportsSync: true,
		RequiresCORS: false,
	}
}

func (c *Classifier) twitchVODDescriptor(id string) Descriptor {
	return Descriptor{
		Platform:     PlatformTwitch,
		VideoID:      strPtr(id),
		EmbedURL:     "https://player.twitch.tv/?video=" + id + "&parent=" + url.QueryEscape(c.embedHost),
		SupportsSync: true,
		RequiresCORS: true,
	}
}

func (c *Classifier) twitchLiveDescriptor(channel string) Descriptor {
	return Descriptor{
		Platform:     PlatformTwitchLive,
		VideoID:      strPtr(channel),
		EmbedURL:     "https://player.twitch.tv/?channel=" + channel + "&parent=" + url.QueryEscape(c.embedHost),
		SupportsSync: false,
		RequiresCORS: true,
	}
}

func directDescriptor(raw string) Descriptor {
	return Descriptor{
		Platform:     PlatformDirect,
		EmbedURL:     raw,
		SupportsSync: true,
		RequiresCORS: true,
	}
}

func strPtr(s string) *string {
	return &s
}
