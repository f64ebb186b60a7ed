// Package mocks provides centralized mock implementations for testing.
//
// The mocks cover the interfaces of the generation package: the image
// analyzer, the music job submitter and the job status querier. Each mock has
// a function field per method and records its calls, so tests can script
// behavior and then verify what the code under test asked for.
//
// Usage:
//
//	analyzer := &mocks.MockAnalyzer{
//	    AnalyzeFn: func(ctx context.Context, image []byte, mimeType string) (*domain.SongConfig, error) {
//	        return cfg, nil
//	    },
//	}
//
//	querier := mocks.NewScriptedStatusQuerier(mocks.JobRunning(), mocks.JobSucceeded(url))
package mocks
