// Package video renders share videos: a still image with a slow Ken Burns
// zoom, scored with an excerpt of the generated song.
//
// Rendering is CPU bound. Frames are computed in bounded parallel windows and
// streamed in order to an Encoder, by default an ffmpeg process reading raw
// RGBA from stdin.
package video
