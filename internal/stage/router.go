package stage

import "clipforge/internal/queue"

// Advance mutates a job after a stage succeeded, deciding where it goes next.
//
// A job that was requested as a single manual step has its routing metadata
// cleared and waits for the next explicit trigger. An auto-chained job is
// pointed at the next stage in pipeline order and the chain sentinel is
// re-asserted in original_action so the next stage's router can see it.
//
// Publishing is never chained into: after the video stage an auto-chained job
// parks at ready with no next-stage hint, because an upload is an irreversible
// external side effect that requires an explicit trigger. The chain sentinel
// in original_action survives the park so a ready job still shows how it was
// submitted; publish is the final stage and the only one that clears it.
// Publish success is the only path to completed.
func Advance(job *queue.Job, current queue.Stage) {
	chained := job.Meta.ChainRequested()
	job.ClaimedBy = ""

	switch current {
	case queue.StagePublish:
		job.Meta.ClearRouting()
		job.Status = queue.StatusCompleted
		return
	case queue.StageVideo:
		job.Meta.ActionNeeded = ""
		job.Meta.MissingDependencies = nil
		job.Meta.SubStatus = ""
		job.Status = queue.StatusReady
		return
	}

	if chained {
		if next, ok := nextStage(current); ok {
			job.Meta.ActionNeeded = next.Action()
			job.Meta.OriginalAction = queue.ActionRunAll
			job.Meta.MissingDependencies = nil
			job.Meta.SubStatus = ""
			job.Status = queue.StatusPending
			return
		}
	}

	job.Meta.ClearRouting()
	job.Status = queue.StatusPending
}

func nextStage(current queue.Stage) (queue.Stage, bool) {
	for i, stg := range queue.PipelineOrder {
		if stg == current && i+1 < len(queue.PipelineOrder) {
			return queue.PipelineOrder[i+1], true
		}
	}
	return "", false
}
