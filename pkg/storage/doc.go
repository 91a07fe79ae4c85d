// Package storage writes downloaded videos to disk.
//
// Videos are stored flat in the output directory as <key>.mp4, where the
// key is built by Key from the platform and the normalized post URL. When
// metadata writing is enabled a <key>.mp4.json sidecar is written next to
// each video.
//
// Writes go through a temporary file and a rename, so a crashed download
// never leaves a truncated video behind. Existing videos are scanned on
// startup and skipped unless Overwrite is set.
//
// Usage:
//
//	manager, err := storage.NewManager("downloads", storage.Options{WriteMetadata: true})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	key := storage.Key(platform.Instagram, "https://www.instagram.com/reel/Cx1abc/")
//	if !manager.IsDownloaded(key) {
//	    path, err := manager.SaveVideoWithMetadata(bytes.NewReader(data), key, meta)
//	    ...
//	}
package storage
