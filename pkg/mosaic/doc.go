// Package mosaic rebuilds a source picture out of emoji tiles.
//
// The source is scaled so that it is WidthEmojis tiles wide, cut into
// Resize×Resize cells and every cell is replaced by the emoji whose
// downscaled image is closest in HSV space. Channel differences are summed
// per pixel and weighted by HueWeight, SaturationWeight and ValueWeight.
//
// A Mosaic renders either as chat text (":name: :name:" rows) or as a
// composite image built from the full-size emoji tiles.
package mosaic
