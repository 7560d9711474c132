package slack

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/antonio-hickey/dev-notify/internal/domain/model"
)

// blockText field order matters: the encoder emits struct fields in
// declaration order and consumers may compare payloads byte for byte.
type blockText struct {
	Text string `json:"text"`
	Type string `json:"type"`
}

type block struct {
	Text blockText `json:"text"`
	Type string    `json:"type"`
}

type payload struct {
	Blocks []block `json:"blocks"`
}

// RenderEntry renders one context entry as a quoted mrkdwn line.
func RenderEntry(entry model.ContextEntry) string {
	return fmt.Sprintf(">`%s`: %s\n", entry.Label, entry.Value)
}

// RenderMessage renders the notification into mrkdwn display text: an issue
// header, a timestamp line, then one line per context entry in input order.
func RenderMessage(notification model.Notification) string {
	var builder strings.Builder
	builder.WriteString(fmt.Sprintf("`Issue`: %s\n", notification.Message))
	builder.WriteString(fmt.Sprintf(">`Timestamp`: _%s_\n", notification.Timestamp))
	for _, entry := range notification.Context {
		builder.WriteString(RenderEntry(entry))
	}
	return builder.String()
}

// RenderPayload wraps the rendered message in a Slack blocks payload, ready
// to be posted as a request body.
func RenderPayload(notification model.Notification) string {
	p := payload{
		Blocks: []block{
			{
				Text: blockText{
					Text: RenderMessage(notification),
					Type: "mrkdwn",
				},
				Type: "section",
			},
		},
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	// the default encoder escapes ">" to > and would corrupt the
	// blockquote prefixes
	enc.SetEscapeHTML(false)
	_ = enc.Encode(p)

	return strings.TrimSuffix(buf.String(), "\n")
}
