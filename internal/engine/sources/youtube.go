// Package sources talks to YouTube: link parsing, transcripts, subtitles and metadata.
package sources

// YouTube implementation is split across files by responsibility:
//   youtube_url.go        : link → VideoRef (structured parse, pattern fallback)
//   youtube_innertube.go  : watch page / Innertube types, constants, and HTTP primitives
//   youtube_transcript.go : transcript fetching, failure taxonomy, caption track choice
//   youtube_subtitles.go  : yt-dlp subtitle download fallback (VTT)
//   youtube_meta.go       : Data API v3 metadata lookup
