// Package publishing implements the publish stage: it uploads the rendered
// video to YouTube and records the published identity on the job and in the
// publish log.
package publishing
