// Package rendering implements the video stage: it transcribes the narration
// into subtitles, picks a looping background clip, and composes the final
// vertical video with ffmpeg.
package rendering
