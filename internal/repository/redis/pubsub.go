package redis

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

// ShowingsPubSub broadcasts seat-map changes so connected clients can refresh
// a showing without polling.
type ShowingsPubSub struct {
	rdb     *redis.Client
	channel string
}

func NewShowingsPubSub(rdb *redis.Client) *ShowingsPubSub {
	return &ShowingsPubSub{
		rdb:     rdb,
		channel: ChannelShowingsChanged(),
	}
}

type showingChangedMsg struct {
	Type      string `json:"type"`
	ShowingID string `json:"showing_id"`
	TsUnix    int64  `json:"ts_unix"`
}

func (p *ShowingsPubSub) PublishShowingChanged(ctx context.Context, showingID string) error {
	msg := showingChangedMsg{
		Type:      "showing_changed",
		ShowingID: showingID,
		TsUnix:    time.Now().Unix(),
	}

	b, _ := json.Marshal(msg)

	return p.rdb.Publish(ctx, p.channel, b).Err()
}

func (p *ShowingsPubSub) Subscribe(ctx context.Context, handler func(ctx context.Context, showingID string)) error {
	sub := p.rdb.Subscribe(ctx, p.channel)
	defer sub.Close()

	ch := sub.Channel(redis.WithChannelSize(256))
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case m, ok := <-ch:
			if !ok {
				return nil
			}
			var ev showingChangedMsg
			if err := json.Unmarshal([]byte(m.Payload), &ev); err == nil &&
				ev.ShowingID != "" {
				handler(ctx, ev.ShowingID)
			}
		}
	}
}
