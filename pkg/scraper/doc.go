// Package scraper coordinates an emoji collection run.
//
// The Scraper owns the collected state and wires the scanner, the scan
// scheduler and the exporter together:
//   - the scheduler scans the page every interval until the first save
//   - Save (manual, repeatable) and SaveOnce (key press, single-shot) export
//     emoji-data.json and stop the scheduler for good
//   - scan and save handlers never run at the same time, and a scan tick
//     that was already queued when the save ran does nothing
//
// Usage:
//
//	s, err := scraper.New(cfg, page.NewHTMLFile(path, cfg.Scan.Selector), files)
//	if err != nil {
//	    return err
//	}
//	go terminal.Listen(ctx, func() { s.SaveOnce(ctx) })
//	return s.Run(ctx)
package scraper
