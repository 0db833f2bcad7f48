// Package async runs functions in goroutines and collects their results as
// typed futures.
//
// The workspace dashboard uses it to fan out independent store reads and join
// them:
//
//	projects := async.Go(ctx, repo.ListProjects)
//	tasks := async.Go(ctx, repo.ListTasks)
//	ps, err := projects.Await()
//
// Futures are not cancelled when their caller gives up; pass a context the
// function honours if that matters.
package async
