package dto

import "encoding/json"

const KindReply = "reply"

// Request is a message addressed to a module action.
type Request struct {
	Module string          `json:"module" binding:"required"`
	Action string          `json:"action" binding:"required"`
	Kind   string          `json:"kind" binding:"required,eq=request"`
	Data   json.RawMessage `json:"data,omitempty"`
}

type Reply struct {
	Module string `json:"module"`
	Action string `json:"action"`
	Kind   string `json:"kind"`
	Data   any    `json:"data"`
}

type ErrorDescription struct {
	Description string `json:"description"`
}

type ErrorReply struct {
	Module string             `json:"module,omitempty"`
	Action string             `json:"action,omitempty"`
	Kind   string             `json:"kind"`
	Errors []ErrorDescription `json:"errors"`
}
