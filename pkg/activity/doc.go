// Package activity records what users did: project and task creation,
// updates and team changes.
//
// A Recorder writes every entry to a primary Sink and then, best effort, to any
// number of mirrors. StoreSink keeps entries in the activity_logs table
// through pkg/repository and is the usual primary; MongoSink stores them in a
// MongoDB collection for deployments that ship the log elsewhere.
//
//	rec := activity.NewRecorder(activity.NewStoreSink(repos.Activity),
//		activity.WithMirror(mongoSink),
//	)
//	err := rec.Record(ctx, domain.ActivityEntry{Action: domain.ActionProjectCreated, UserID: uid})
package activity
