// Package chat builds JSON chat components.
package chat

import "encoding/json"

// Message is a Minecraft JSON chat component.
type Message struct {
	Text      string    `json:"text,omitempty"`
	Translate string    `json:"translate,omitempty"`
	With      []Message `json:"with,omitempty"`
	Color     string    `json:"color,omitempty"`
	Bold      bool      `json:"bold,omitempty"`
	Italic    bool      `json:"italic,omitempty"`
	Extra     []Message `json:"extra,omitempty"`
}

// MarshalJSON always writes "text" unless the component is a translation,
// since the client rejects components with neither.
func (m Message) MarshalJSON() ([]byte, error) {
	type plain Message
	if m.Translate != "" {
		return json.Marshal(plain(m))
	}
	return json.Marshal(struct {
		Text string `json:"text"`
		plain
	}{m.Text, plain(m)})
}

// String returns the JSON encoding of the message.
func (m Message) String() string {
	b, _ := json.Marshal(m)
	return string(b)
}

// Text creates a simple text message.
func Text(text string) Message {
	return Message{Text: text}
}

// Colored creates a text message with a color.
func Colored(text, color string) Message {
	return Message{Text: text, Color: color}
}

// Translate references a client-side translation key.
func Translate(key string, with ...Message) Message {
	return Message{Translate: key, With: with}
}

// Join concatenates components under an empty root.
func Join(parts ...Message) Message {
	return Message{Text: "", Extra: parts}
}
