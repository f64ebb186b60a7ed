// Package suno implements generation.Submitter and generation.StatusQuerier
// against the Suno music generation HTTP API.
package suno
