package api

import (
	"strings"

	"github.com/danielgtaylor/huma/v2"

	domainerrors "github.com/padlinkapp/padlink-server/internal/errors"
)

// EnvelopeVersion is the value of the "v" field of every response.
const EnvelopeVersion = 1

// Envelope wraps every JSON response body.
//
//	{"v":1,"success":true,"data":{...}}
//	{"v":1,"success":false,"error":"...","code":"NOT_FOUND","message":"...","details":{...}}
type Envelope struct {
	Version int    `json:"v"`
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
	Details any    `json:"details,omitempty"`
}

// EnvelopeTransformer is a huma transformer that wraps response bodies in an Envelope.
func EnvelopeTransformer(_ huma.Context, status string, v any) (any, error) {
	if env, ok := v.(*Envelope); ok {
		return env, nil
	}
	if domainErr, ok := v.(*domainerrors.Error); ok {
		v = fromDomain(domainErr, domainErr)
	}
	if apiErr, ok := v.(*APIError); ok {
		return errorEnvelope(apiErr), nil
	}
	if !strings.HasPrefix(status, "2") {
		if model, ok := v.(*huma.ErrorModel); ok {
			return &Envelope{
				Version: EnvelopeVersion,
				Error:   model.Detail,
				Code:    statusToCode(model.Status),
				Message: model.Detail,
			}, nil
		}
	}
	return &Envelope{Version: EnvelopeVersion, Success: true, Data: v}, nil
}

func errorEnvelope(apiErr *APIError) *Envelope {
	return &Envelope{
		Version: EnvelopeVersion,
		Error:   apiErr.Message,
		Code:    apiErr.Code,
		Message: apiErr.Message,
		Details: apiErr.Details,
	}
}
