// Package detect implements the first pipeline stage: locating drawing
// elements in the uploaded image via the detection service and recording
// the labeled regions on the run.
package detect
