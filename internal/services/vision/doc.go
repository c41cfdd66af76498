// Package vision talks to the drawing element detection service. The
// service accepts an uploaded drawing, runs object detection over it, and
// returns the labeled regions plus an annotated copy of the image.
package vision
