package domain

import "time"

// AdminComment is a comment with every stored field.
type AdminComment struct {
	Id      CommentId   `json:"id"`
	Dt      time.Time   `json:"dt"`
	Name    CommentName `json:"name"`
	Trip    string      `json:"trip,omitempty"`
	Text    CommentText `json:"text"`
	Host    Host        `json:"host"`
	Info    string      `json:"info"`
	Visible bool        `json:"visible"`
}

// Comment is the public projection: no host, info or visibility flag.
type Comment struct {
	Id       CommentId   `json:"id"`
	Dt       time.Time   `json:"dt"`
	Name     CommentName `json:"name"`
	Trip     string      `json:"trip,omitempty"`
	Text     CommentText `json:"text"`
	TextHTML string      `json:"text_html,omitempty"`
}

// to iterate thru layers: handler -> service -> storage
type CommentCreationData struct {
	Board  BoardId
	Thread ThreadId
	Name   CommentName
	Text   CommentText
	Host   Host
	Info   string
}
