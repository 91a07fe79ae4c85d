// Package facebook extracts video metadata from Facebook videos, watch
// pages, reels and fb.watch short links.
//
// The desktop page is scanned first for the player's source URLs, best
// quality first. The mobile site is tried next with an iPhone user agent.
// Reaction counts, the owning page and the live flag are read from the
// same markup as the video URL.
package facebook
