package etherpad

import "encoding/json"

// DefaultAPIVersion is the Etherpad API version requested when none is configured.
const DefaultAPIVersion = "1.2.13"

// envelope is the JSON body of every Etherpad API response.
type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type groupIDData struct {
	GroupID string `json:"groupID"`
}

type authorIDData struct {
	AuthorID string `json:"authorID"`
}

type padIDData struct {
	PadID string `json:"padID"`
}

type publicStatusData struct {
	PublicStatus bool `json:"publicStatus"`
}

type readOnlyIDData struct {
	ReadOnlyID string `json:"readOnlyID"`
}
