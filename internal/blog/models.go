package blog

import "errors"

var ErrNotFound = errors.New("blog not found")

// Post mirrors a row of the Blogs table. JSON keys follow the column names.
type Post struct {
	ID       int64   `json:"Id"`
	Title    string  `json:"Title"`
	Content  string  `json:"Content"`
	Summary  string  `json:"Summary"`
	MediaURL *string `json:"MediaUrl"`
}
