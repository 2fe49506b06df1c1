// Package storage provides file management for the emoji scraper.
//
// A Manager owns one directory. It is used twice:
//   - as the default deliverer of emoji-data.json (Deliver)
//   - as the image store of a workspace, where it tracks which emoji ids
//     already have an image on disk (IsDownloaded, SaveImage)
//
// All writes go to a temporary file first and are renamed into place, so a
// crash never leaves a truncated export or image behind.
//
// Usage:
//
//	images, err := storage.NewManager(filepath.Join(ws, "emojis"), "{id}.png")
//	if err != nil {
//	    return err
//	}
//	if !images.IsDownloaded(id) {
//	    err = images.SaveImage(pngReader, id)
//	}
package storage
