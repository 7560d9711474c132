package feed

import (
	"strings"

	"golang.org/x/net/html"

	"github.com/antonio-hickey/dev-notify/internal/domain/model"
)

// sanitize flattens HTML fragments in the message and context values so
// upstream markup never leaks into chat output. The message is collapsed to
// a single line; rendering gives it exactly one header line.
func sanitize(notification model.Notification) model.Notification {
	notification.Message = strings.Join(strings.Fields(htmlToText(notification.Message)), " ")
	for i, entry := range notification.Context {
		notification.Context[i].Value = strings.TrimSpace(htmlToText(entry.Value))
	}
	return notification
}

func htmlToText(input string) string {
	if input == "" {
		return ""
	}

	node, err := html.Parse(strings.NewReader(input))
	if err != nil {
		return input
	}

	var builder strings.Builder
	extractText(node, &builder)
	return builder.String()
}

func extractText(node *html.Node, builder *strings.Builder) {
	switch node.Type {
	case html.TextNode:
		builder.WriteString(node.Data)
	case html.ElementNode:
		if node.Data == "br" || node.Data == "p" || node.Data == "li" {
			builder.WriteRune('\n')
		}
	}

	for child := node.FirstChild; child != nil; child = child.NextSibling {
		extractText(child, builder)
	}

	if node.Type == html.ElementNode && (node.Data == "p" || node.Data == "li") {
		builder.WriteRune('\n')
	}
}
