// Package gemini provides an implementation of the generation.Analyzer
// interface that uses Google's Gemini API to turn a photo into a song
// configuration.
//
// This package is an infrastructure adapter, connecting the task pipeline to
// Google's external Gemini AI service without exposing the details of the
// external service to the rest of the application.
//
// Key components:
//
// 1. Analyzer:
//   - Implements the generation.Analyzer interface
//   - Sends a system prompt loaded from a file plus the image as inline data
//   - Requests JSON output from the model
//
// 2. Response Processing:
//   - Strips Markdown code fences the model sometimes wraps around JSON
//   - Checks the required fields and reports missing ones by name
//   - Normalizes vocal gender, fills default tuning weights, and forces the
//     generation mode and model expected downstream
//
// 3. Error Handling:
//   - Retries transient API errors with exponential backoff and jitter
//   - Treats safety blocks and unparseable output as permanent
package gemini
