// Package voiceover implements the voiceover stage: it narrates a job's
// script into an MP3 using the configured text-to-speech engine.
package voiceover
