package models

import (
	"encoding/json"
	"time"
)

const APIVersion = "v1"

type Meta struct {
	RequestID  string    `json:"request_id"`
	Timestamp  time.Time `json:"timestamp"`
	APIVersion string    `json:"api_version"`
}

type Pagination struct {
	Page       int   `json:"page"`
	PerPage    int   `json:"per_page"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
}

// NewPagination fills TotalPages from the total row count.
func NewPagination(page, perPage int, total int64) *Pagination {
	pages := 0
	if perPage > 0 {
		pages = int((total + int64(perPage) - 1) / int64(perPage))
	}
	return &Pagination{Page: page, PerPage: perPage, Total: total, TotalPages: pages}
}

type ErrorBody struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

// Response is the envelope written by the server.
type Response struct {
	Success    bool        `json:"success"`
	Data       interface{} `json:"data,omitempty"`
	Pagination *Pagination `json:"pagination,omitempty"`
	Error      *ErrorBody  `json:"error,omitempty"`
	Meta       Meta        `json:"meta"`
}

// Envelope is the envelope as read by clients, with data left undecoded.
type Envelope struct {
	Success    bool            `json:"success"`
	Data       json.RawMessage `json:"data,omitempty"`
	Pagination *Pagination     `json:"pagination,omitempty"`
	Error      *ErrorBody      `json:"error,omitempty"`
	Meta       Meta            `json:"meta"`
}

// RealtimeEvent is pushed over the websocket channel.
type RealtimeEvent struct {
	Channel string          `json:"channel"`
	Type    string          `json:"type"`
	Data    json.RawMessage `json:"data"`
}

const (
	ChannelNotifications  = "notifications"
	ChannelVoiceDNAStatus = "voice_dna_status"
)
