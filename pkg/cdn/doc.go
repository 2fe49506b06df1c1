// Package cdn fetches custom emoji images and renders them as opaque PNG
// tiles: the image is composited over the chat background colour and
// centered on a square canvas.
package cdn
