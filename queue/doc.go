// Package queue provides Redis-based work queue primitives for distributed
// coverage analysis.
//
// Large scan imports can be analyzed off the review path: submitters push
// analysis jobs to a Redis list, workers consume and analyze them, and
// results flow back through Redis pub/sub keyed by job ID.
//
// # Core Components
//
// Client: interface for interacting with the Redis queue. Provides
// Push/Pop for jobs, Publish/Subscribe for result delivery, and Close.
//
// Job: a unit of work carrying a scan's findings and trace context.
//
// JobResult: the outcome of analyzing a Job, holding the coverage analysis
// or an error.
//
// Worker: a consumer loop that pops jobs, runs coverage analysis, and
// publishes results.
//
// # Redis Key Schema
//
//   - cerno:jobs - list of pending jobs (LPUSH/BRPOP)
//   - cerno:results:<jobID> - pub/sub channel for that job's result
//
// # Usage
//
// Submitting a job and waiting for its result:
//
//	client, err := queue.NewRedisClient(queue.RedisOptions{
//		URL: "redis://localhost:6379",
//	})
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer client.Close()
//
//	job := queue.NewJob("scan-42", findings)
//	results, err := client.SubscribeResults(ctx, job.ID)
//	if err != nil {
//		log.Fatal(err)
//	}
//	if err := client.PushJob(ctx, job); err != nil {
//		log.Fatal(err)
//	}
//	res := <-results
//
// Running a worker:
//
//	worker := queue.NewWorker(client, nil)
//	if err := worker.Run(ctx); err != nil {
//		log.Fatal(err)
//	}
//
// # Thread Safety
//
// RedisClient is safe for concurrent use by multiple goroutines.
package queue
