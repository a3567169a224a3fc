package api

import (
	"time"

	"github.com/dustin/go-humanize"

	"cutline/internal/journal"
	"cutline/internal/timeline"
)

type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

type HealthResponse struct {
	Status    string `json:"status"`
	Version   string `json:"version"`
	UptimeS   int64  `json:"uptime_s"`
	SessionID string `json:"session_id"`
}

type HistoryEntryResponse struct {
	Index        int                  `json:"index"`
	Description  string               `json:"description"`
	Command      timeline.CommandType `json:"command"`
	IsCheckpoint bool                 `json:"is_checkpoint"`
	Current      bool                 `json:"current"`
	Timestamp    time.Time            `json:"timestamp"`
	Age          string               `json:"age"`
}

type HistoryResponse struct {
	State        timeline.HistoryState  `json:"state"`
	CurrentIndex int                    `json:"current_index"`
	CanUndo      bool                   `json:"can_undo"`
	CanRedo      bool                   `json:"can_redo"`
	Entries      []HistoryEntryResponse `json:"entries"`
}

type JournalEntryResponse struct {
	ID        int64                `json:"id"`
	Command   timeline.CommandType `json:"command"`
	Applied   bool                 `json:"applied"`
	Error     string               `json:"error,omitempty"`
	CreatedAt time.Time            `json:"created_at"`
	Age       string               `json:"age"`
}

type JournalResponse struct {
	Entries []JournalEntryResponse `json:"entries"`
}

type ClipResponse struct {
	TrackID string        `json:"track_id"`
	Clip    timeline.Clip `json:"clip"`
}

// HistoryToResponse summarizes h without its deltas.
func HistoryToResponse(h timeline.History, now time.Time) HistoryResponse {
	resp := HistoryResponse{
		State:        h.State(),
		CurrentIndex: h.CurrentIndex,
		CanUndo:      h.CanUndo(),
		CanRedo:      h.CanRedo(),
		Entries:      make([]HistoryEntryResponse, len(h.Entries)),
	}
	for i, e := range h.Entries {
		resp.Entries[i] = HistoryEntryResponse{
			Index:        i,
			Description:  e.Description,
			Command:      e.Command,
			IsCheckpoint: e.IsCheckpoint,
			Current:      i == h.CurrentIndex,
			Timestamp:    e.Timestamp,
			Age:          humanize.RelTime(e.Timestamp, now, "ago", "from now"),
		}
	}
	return resp
}

func JournalToResponse(records []journal.Record, now time.Time) JournalResponse {
	resp := JournalResponse{Entries: make([]JournalEntryResponse, len(records))}
	for i, r := range records {
		resp.Entries[i] = JournalEntryResponse{
			ID:        r.ID,
			Command:   r.Command,
			Applied:   r.Applied,
			Error:     r.Error,
			CreatedAt: r.CreatedAt,
			Age:       humanize.RelTime(r.CreatedAt, now, "ago", "from now"),
		}
	}
	return resp
}
