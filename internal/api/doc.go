// Package api handles incoming HTTP requests, routing, request validation,
// and response formatting. It adapts the task orchestrator and the video
// renderer to the JSON API the mobile client speaks.
package api
