// Package messaging is the request/response and notification protocol
// between page sessions, the background service and the popup.
package messaging

import "encoding/json"

// Type identifies a message.
type Type string

const (
	TypeAddMatch          Type = "add_match"
	TypeGetMatchCount     Type = "get_match_count"
	TypeGetAllMatches     Type = "get_all_matches"
	TypeClearMatches      Type = "clear_matches"
	TypeTakeAllMatches    Type = "take_all_matches"
	TypeOpenJobTabs       Type = "OPEN_JOB_TABS"
	TypeOpenJobTabsStatus Type = "OPEN_JOB_TABS_STATUS"
	TypeUpdateJobCount    Type = "UPDATE_JOB_COUNT"
	TypeGetJobCount       Type = "GET_JOB_COUNT"
	TypeExtractJobIDs     Type = "EXTRACT_JOB_IDS"
	TypeShowErrorAlert    Type = "SHOW_ERROR_ALERT"
	TypeUpdateIcon        Type = "updateIcon"
)

// Message carries the payload of every message type; each type only uses
// the fields its constructor sets.
type Message struct {
	Type    Type     `json:"type"`
	Data    string   `json:"data,omitempty"`
	URLs    []string `json:"urls,omitempty"`
	Count   int      `json:"count,omitempty"`
	Message string   `json:"message,omitempty"`
	Enabled bool     `json:"enabled,omitempty"`

	// OPEN_JOB_TABS_STATUS fields
	Status string `json:"status,omitempty"`
	Opened int    `json:"opened,omitempty"`
	Total  int    `json:"total,omitempty"`
}

// MarshalJSON writes the payload fields of the message type, zero values
// included.
func (m Message) MarshalJSON() ([]byte, error) {
	out := map[string]any{"type": m.Type}
	switch m.Type {
	case TypeAddMatch:
		out["data"] = m.Data
	case TypeOpenJobTabs:
		urls := m.URLs
		if urls == nil {
			urls = []string{}
		}
		out["urls"] = urls
	case TypeUpdateJobCount:
		out["count"] = m.Count
	case TypeShowErrorAlert:
		out["message"] = m.Message
	case TypeUpdateIcon:
		out["enabled"] = m.Enabled
	case TypeOpenJobTabsStatus:
		out["status"] = m.Status
		switch m.Status {
		case "started":
			out["total"] = m.Total
		case "finished":
			out["opened"] = m.Opened
		default:
			out["opened"] = m.Opened
			out["total"] = m.Total
		}
	default:
		// requests without payload, and unknown types
		type plain Message
		return json.Marshal(plain(m))
	}
	return json.Marshal(out)
}

func AddMatch(record string) Message {
	return Message{Type: TypeAddMatch, Data: record}
}

func GetMatchCount() Message {
	return Message{Type: TypeGetMatchCount}
}

func GetAllMatches() Message {
	return Message{Type: TypeGetAllMatches}
}

func ClearMatches() Message {
	return Message{Type: TypeClearMatches}
}

// TakeAllMatches asks for every stored match and empties the store atomically.
func TakeAllMatches() Message {
	return Message{Type: TypeTakeAllMatches}
}

func OpenJobTabs(urls []string) Message {
	return Message{Type: TypeOpenJobTabs, URLs: urls}
}

func UpdateJobCount(count int) Message {
	return Message{Type: TypeUpdateJobCount, Count: count}
}

func GetJobCount() Message {
	return Message{Type: TypeGetJobCount}
}

func ExtractJobIDs() Message {
	return Message{Type: TypeExtractJobIDs}
}

func ShowErrorAlert(text string) Message {
	return Message{Type: TypeShowErrorAlert, Message: text}
}

func UpdateIcon(enabled bool) Message {
	return Message{Type: TypeUpdateIcon, Enabled: enabled}
}

// OpenJobTabsStatus reports batch progress; status is started, progress or finished.
func OpenJobTabsStatus(status string, opened, total int) Message {
	return Message{Type: TypeOpenJobTabsStatus, Status: status, Opened: opened, Total: total}
}

// StatusResponse answers add_match, clear_matches and unknown messages.
type StatusResponse struct {
	Status string `json:"status"`
}

// CountResponse answers get_match_count and GET_JOB_COUNT.
type CountResponse struct {
	Count int `json:"count"`
}

// MatchesResponse answers get_all_matches and take_all_matches.
type MatchesResponse struct {
	Matches []string `json:"matches"`
}

// OpenTabsResponse answers OPEN_JOB_TABS.
type OpenTabsResponse struct {
	Status string `json:"status"`
	Opened int    `json:"opened"`
}

const (
	StatusOK          = "ok"
	StatusCleared     = "cleared"
	StatusUnknownType = "unknown_message_type"
)
