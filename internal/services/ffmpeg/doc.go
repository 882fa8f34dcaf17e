// Package ffmpeg composes the final vertical video: it probes voiceover
// duration with ffprobe and renders background footage, voiceover audio, and
// burned-in captions into an mp4 with ffmpeg.
package ffmpeg
