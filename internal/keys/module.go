package keys

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Entry is one key of a translation module.
type Entry struct {
	Key  string
	Text string
}

// Content maps keys to display text and remembers insertion order, which
// JSON objects and Go maps would otherwise lose.
type Content struct {
	entries []Entry
	index   map[string]int
}

// NewContent builds content from entries; later duplicates overwrite earlier
// ones in place.
func NewContent(entries ...Entry) Content {
	var c Content
	for _, e := range entries {
		c.Set(e.Key, e.Text)
	}
	return c
}

// Get returns the text stored under key.
func (c *Content) Get(key string) (string, bool) {
	i, ok := c.index[key]
	if !ok {
		return "", false
	}
	return c.entries[i].Text, true
}

// Set stores text under key, keeping the original position of existing keys.
func (c *Content) Set(key, text string) {
	if c.index == nil {
		c.index = make(map[string]int)
	}
	if i, ok := c.index[key]; ok {
		c.entries[i].Text = text
		return
	}
	c.index[key] = len(c.entries)
	c.entries = append(c.entries, Entry{Key: key, Text: text})
}

// Entries returns a copy of the entries in insertion order.
func (c *Content) Entries() []Entry {
	out := make([]Entry, len(c.entries))
	copy(out, c.entries)
	return out
}

// Len returns the number of keys.
func (c *Content) Len() int {
	return len(c.entries)
}

func (c Content) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, e := range c.entries {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := marshalNoEscape(e.Key)
		if err != nil {
			return nil, err
		}
		v, err := marshalNoEscape(e.Text)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (c *Content) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("read content: %w", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("content must be a JSON object, got %v", tok)
	}

	*c = Content{}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return fmt.Errorf("read content key: %w", err)
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("content key must be a string, got %v", keyTok)
		}

		var text string
		if err := dec.Decode(&text); err != nil {
			return fmt.Errorf("read text for key %q: %w", key, err)
		}
		c.Set(key, text)
	}

	if _, err := dec.Token(); err != nil {
		return fmt.Errorf("close content: %w", err)
	}
	return nil
}

func marshalNoEscape(s string) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// Module is a named group of translation keys.
type Module struct {
	Prefix  string  `json:"prefix"`
	Content Content `json:"content"`
}
