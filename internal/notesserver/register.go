// Package notesserver exposes the notes pipeline as an MCP tool.
package notesserver

import (
	"context"
	"errors"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/anatolykoptev/go_ytnotes/internal/notes"
)

// Runner executes one request. *notes.Pipeline satisfies it.
type Runner interface {
	Run(ctx context.Context, req notes.Request) notes.Outcome
}

// NotesInput is the youtube_notes tool input.
type NotesInput struct {
	URL      string `json:"url" jsonschema:"YouTube video link (watch, youtu.be, embed or shorts URL) or bare 11-character video ID"`
	Language string `json:"language,omitempty" jsonschema:"Summary language as code or name: en, es, fr, de, it, pt, ru, ja, zh, hi, te, kn, ta (default en)"`
}

// NotesOutput is the youtube_notes tool output.
type NotesOutput struct {
	VideoID      string `json:"video_id"`
	Title        string `json:"title,omitempty"`
	ThumbnailURL string `json:"thumbnail_url"`
	Language     string `json:"language"`
	Summary      string `json:"summary"`
	Text         string `json:"text"`
	Translated   bool   `json:"translated"`
	Warning      string `json:"warning,omitempty"`
}

// RegisterTools registers youtube_notes on the given MCP server.
func RegisterTools(server *mcp.Server, r Runner) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "youtube_notes",
		Description: "Fetch the transcript of a YouTube video, summarize its important points in about 250 words, and translate the summary into the requested language. Returns the summary, the translated text, and the video thumbnail. If translation fails the original summary is returned with a warning.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, func(ctx context.Context, req *mcp.CallToolRequest, input NotesInput) (*mcp.CallToolResult, NotesOutput, error) {
		out, err := Notes(ctx, r, input)
		return nil, out, err
	})
}

// Notes runs the pipeline for one tool call and maps the outcome onto the tool output.
func Notes(ctx context.Context, r Runner, input NotesInput) (NotesOutput, error) {
	if strings.TrimSpace(input.URL) == "" {
		return NotesOutput{}, errors.New("url is required")
	}

	res := r.Run(ctx, notes.Request{URL: input.URL, Language: input.Language})
	if !res.OK() {
		return NotesOutput{}, errors.New(res.Message)
	}

	out := NotesOutput{
		VideoID:      res.Video.ID,
		ThumbnailURL: res.Video.ThumbnailURL(),
		Language:     res.Language.Code,
		Summary:      res.Summary,
		Text:         res.Text,
		Translated:   res.Translated,
		Warning:      res.Warning(),
	}
	if res.Meta != nil {
		out.Title = res.Meta.Title
	}
	return out, nil
}
