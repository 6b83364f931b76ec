package models

import "time"

// File describes an uploaded object. The payload itself lives in object
// storage under Path, which is also the public download path.
type File struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Title string `json:"title"`
	Mime  string `json:"mime"`
	// Path is the storage key, files/<yyyy>/<m>/<d>/<random><ext>.
	Path      string    `json:"path"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
