package sources

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sosodev/duration"
	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"

	"github.com/anatolykoptev/go_ytnotes/internal/engine"
)

// VideoMeta is the display metadata of a video.
type VideoMeta struct {
	ID          string
	Title       string
	Channel     string
	PublishedAt time.Time
	Duration    time.Duration
}

// ErrVideoNotFound is returned by Describe when the Data API knows no such video.
var ErrVideoNotFound = errors.New("video not found")

// Describer looks up video metadata through the YouTube Data API v3.
type Describer struct {
	service *youtube.Service
}

// NewDescriber creates a Describer authenticated with an API key.
// Extra options (endpoint, HTTP client) are passed to the service.
func NewDescriber(ctx context.Context, apiKey string, opts ...option.ClientOption) (*Describer, error) {
	opts = append([]option.ClientOption{option.WithAPIKey(apiKey)}, opts...)
	service, err := youtube.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("youtube data api: %w", err)
	}
	return &Describer{service: service}, nil
}

// Describe returns title, channel, publish time and duration of videoID.
func (d *Describer) Describe(ctx context.Context, videoID string) (VideoMeta, error) {
	engine.IncrMetadataRequest()

	response, err := d.service.Videos.List([]string{"snippet", "contentDetails"}).Id(videoID).Context(ctx).Do()
	if err != nil {
		return VideoMeta{}, fmt.Errorf("videos.list: %w", err)
	}
	if len(response.Items) == 0 {
		return VideoMeta{}, fmt.Errorf("%w: %s", ErrVideoNotFound, videoID)
	}

	item := response.Items[0]
	meta := VideoMeta{ID: item.Id}
	if item.Snippet != nil {
		meta.Title = item.Snippet.Title
		meta.Channel = item.Snippet.ChannelTitle
		if t, err := time.Parse(time.RFC3339, item.Snippet.PublishedAt); err == nil {
			meta.PublishedAt = t
		}
	}
	if item.ContentDetails != nil && item.ContentDetails.Duration != "" {
		d, err := duration.Parse(item.ContentDetails.Duration)
		if err != nil {
			return VideoMeta{}, fmt.Errorf("parse duration %q: %w", item.ContentDetails.Duration, err)
		}
		meta.Duration = d.ToTimeDuration()
	}
	return meta, nil
}
