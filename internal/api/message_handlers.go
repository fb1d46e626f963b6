package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	apperrors "github.com/vocabkeep/vocabkeep/internal/errors"
	"github.com/vocabkeep/vocabkeep/internal/message"
)

const messagesPath = "/api/v1/messages"

func (s *Server) registerMessageRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "handleMessage",
		Method:      http.MethodPost,
		Path:        messagesPath,
		Summary:     "Send a message",
		Description: "Dispatches one {id, action, payload} message and returns its {success, data, error, code} reply.",
		Tags:        []string{"Messages"},
	}, s.handleMessage)
}

// MessageInput is the raw message. The payload shape depends on the action,
// so the body is decoded by hand rather than through a schema.
type MessageInput struct {
	RawBody []byte
}

// MessageOutput is the reply envelope with the status derived from its code.
type MessageOutput struct {
	Status int
	Body   message.Response
}

func (s *Server) handleMessage(ctx context.Context, input *MessageInput) (*MessageOutput, error) {
	var req message.Request
	if err := json.Unmarshal(input.RawBody, &req); err != nil {
		return &MessageOutput{
			Status: http.StatusBadRequest,
			Body: message.Response{
				ID:    getRequestID(ctx),
				Code:  apperrors.CodeValidation,
				Error: "invalid message: " + err.Error(),
			},
		}, nil
	}
	if req.ID == "" {
		req.ID = getRequestID(ctx)
	}

	resp := s.messages.Handle(ctx, req)

	status := http.StatusOK
	if !resp.Success {
		status = resp.Code.HTTPStatus()
	}
	return &MessageOutput{Status: status, Body: resp}, nil
}
