package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/EternisAI/datacollect/internal/api/http/dto"
	"github.com/EternisAI/datacollect/internal/datacollect"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

const incorrectInput = "Incorrect input."

var errIncorrectInput = errors.New("incorrect input")

// DataCollect is the backend served under the data_collect module.
type DataCollect interface {
	Get(ctx context.Context) (datacollect.Info, error)
	Set(ctx context.Context, agreed bool) (bool, error)
	GetHoneypots(ctx context.Context) (datacollect.HoneypotConfig, error)
	SetHoneypots(ctx context.Context, cfg datacollect.HoneypotConfig) (bool, error)
	GetRegistered(ctx context.Context, email, language string) (datacollect.RegistrationStatus, error)
}

type actionFunc func(ctx context.Context, data json.RawMessage) (any, error)

type RPCHandler struct {
	modules map[string]map[string]actionFunc
}

func NewRPCHandler(dc DataCollect) *RPCHandler {
	h := &RPCHandler{modules: make(map[string]map[string]actionFunc)}
	h.modules[datacollect.ModuleName] = dataCollectActions(dc)
	return h
}

func dataCollectActions(dc DataCollect) map[string]actionFunc {
	return map[string]actionFunc{
		"get": func(ctx context.Context, data json.RawMessage) (any, error) {
			var req struct{}
			if err := decodeData(data, &req); err != nil {
				return nil, err
			}
			return dc.Get(ctx)
		},
		"set": func(ctx context.Context, data json.RawMessage) (any, error) {
			var req dto.SetRequest
			if err := decodeData(data, &req); err != nil {
				return nil, err
			}
			result, err := dc.Set(ctx, *req.Agreed)
			if err != nil {
				return nil, err
			}
			return dto.ResultResponse{Result: result}, nil
		},
		"get_honeypots": func(ctx context.Context, data json.RawMessage) (any, error) {
			var req struct{}
			if err := decodeData(data, &req); err != nil {
				return nil, err
			}
			return dc.GetHoneypots(ctx)
		},
		"set_honeypots": func(ctx context.Context, data json.RawMessage) (any, error) {
			var req dto.SetHoneypotsRequest
			if err := decodeData(data, &req); err != nil {
				return nil, err
			}
			result, err := dc.SetHoneypots(ctx, datacollect.HoneypotConfig{
				LogCredentials: *req.LogCredentials,
				Minipots:       req.Minipots,
			})
			if err != nil {
				return nil, err
			}
			return dto.ResultResponse{Result: result}, nil
		},
		"get_registered": func(ctx context.Context, data json.RawMessage) (any, error) {
			var req dto.GetRegisteredRequest
			if err := decodeData(data, &req); err != nil {
				return nil, err
			}
			return dc.GetRegistered(ctx, req.Email, req.Language)
		},
	}
}

// decodeData strictly decodes a request payload and runs the binding
// validator over it. A missing payload decodes as an empty object.
func decodeData(data json.RawMessage, out any) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		trimmed = []byte("{}")
	}

	dec := json.NewDecoder(bytes.NewReader(trimmed))
	dec.DisallowUnknownFields()
	if err := dec.Decode(out); err != nil {
		return errors.Join(errIncorrectInput, err)
	}
	if dec.More() {
		return errIncorrectInput
	}
	if err := binding.Validator.ValidateStruct(out); err != nil {
		return errors.Join(errIncorrectInput, err)
	}
	return nil
}

func (h *RPCHandler) Handle(ctx *gin.Context) {
	var req dto.Request
	if err := ctx.ShouldBindJSON(&req); err != nil {
		slog.Debug("Rejected malformed message", "error", err)
		ctx.JSON(http.StatusBadRequest, errorReply(req.Module, req.Action, incorrectInput))
		return
	}

	actions, ok := h.modules[req.Module]
	if !ok {
		ctx.JSON(http.StatusNotFound, errorReply(req.Module, req.Action, "Unknown module."))
		return
	}
	action, ok := actions[req.Action]
	if !ok {
		ctx.JSON(http.StatusNotFound, errorReply(req.Module, req.Action, "Unknown action."))
		return
	}

	data, err := action(ctx.Request.Context(), req.Data)
	if errors.Is(err, errIncorrectInput) {
		slog.Debug("Rejected message data", "module", req.Module, "action", req.Action, "error", err)
		ctx.JSON(http.StatusBadRequest, errorReply(req.Module, req.Action, incorrectInput))
		return
	}
	if err != nil {
		slog.Error("Action failed", "module", req.Module, "action", req.Action, "error", err)
		ctx.JSON(http.StatusInternalServerError, errorReply(req.Module, req.Action, err.Error()))
		return
	}

	ctx.JSON(http.StatusOK, dto.Reply{
		Module: req.Module,
		Action: req.Action,
		Kind:   dto.KindReply,
		Data:   data,
	})
}

func errorReply(module, action, description string) dto.ErrorReply {
	return dto.ErrorReply{
		Module: module,
		Action: action,
		Kind:   dto.KindReply,
		Errors: []dto.ErrorDescription{{Description: description}},
	}
}
