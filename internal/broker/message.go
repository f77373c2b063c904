package broker

import (
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// Message is a JSON document travelling through a queue.
type Message struct {
	Body string
}

// NewMessage builds a message with a sequence number and a text payload.
func NewMessage(seq int, text string) Message {
	body := `{}`
	body, _ = sjson.Set(body, "seq", seq)
	body, _ = sjson.Set(body, "text", text)
	return Message{Body: body}
}

// Seq returns the message's sequence number, or 0 if it has none.
func (m Message) Seq() int {
	return int(gjson.Get(m.Body, "seq").Int())
}

// Text returns the message's text payload.
func (m Message) Text() string {
	return gjson.Get(m.Body, "text").String()
}
