// Package domain contains the core business entities of the service: the
// image-to-song Task with its status state machine, and the SongConfig that
// image analysis produces and music generation consumes. It is independent
// of any vendor client or delivery mechanism.
package domain
