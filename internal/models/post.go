package models

import "encoding/json"

// Post is an entry in the community feed.
type Post struct {
	ID        string   `json:"id"`
	Author    Ref      `json:"author"`
	Content   string   `json:"content"`
	Images    []string `json:"images"`
	Likes     int      `json:"likes"`
	Comments  int      `json:"comments"`
	CreatedAt Time     `json:"created_at"`
}

func (p *Post) UnmarshalJSON(b []byte) error {
	var w struct {
		MongoID  string          `json:"_id"`
		ID       string          `json:"id"`
		Author   Ref             `json:"author"`
		User     Ref             `json:"user"`
		Content  string          `json:"content"`
		Text     string          `json:"text"`
		Images   []Image         `json:"images"`
		Likes    json.RawMessage `json:"likes"`
		Comments json.RawMessage `json:"comments"`
		Created  Time            `json:"createdAt"`
	}
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}
	author := w.Author
	if author.ID == "" {
		author = w.User
	}
	*p = Post{
		ID:        firstNonEmpty(w.MongoID, w.ID),
		Author:    author,
		Content:   firstNonEmpty(w.Content, w.Text),
		Images:    imageURLs(w.Images),
		Likes:     countOf(w.Likes),
		Comments:  countOf(w.Comments),
		CreatedAt: w.Created,
	}
	return nil
}

// countOf accepts either a number or an array and returns its size.
func countOf(raw json.RawMessage) int {
	if len(raw) == 0 {
		return 0
	}
	var n int
	if err := json.Unmarshal(raw, &n); err == nil {
		return n
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err == nil {
		return len(items)
	}
	return 0
}
