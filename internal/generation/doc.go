// Package generation defines the boundary between the task pipeline and the
// external AI services it drives. An Analyzer (Gemini) turns an image into a
// domain.SongConfig, a Submitter (Suno) starts a music generation job, and a
// StatusQuerier reports the state of that job. The package also owns the
// error taxonomy the pipeline records on failed tasks.
package generation
