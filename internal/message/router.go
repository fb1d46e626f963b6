package message

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/vocabkeep/vocabkeep/internal/errors"
	"github.com/vocabkeep/vocabkeep/internal/export"
	"github.com/vocabkeep/vocabkeep/internal/service"
	"github.com/vocabkeep/vocabkeep/internal/validation"
)

// Exporter writes a snapshot of the vocabulary.
type Exporter interface {
	Export(ctx context.Context) (*export.Result, error)
}

// Services are the collaborators the router dispatches to.
type Services struct {
	Words    *service.WordService
	Lists    *service.ListService
	Settings *service.SettingsService
	Reviews  *service.ReviewService
	Exporter Exporter
}

type handlerFunc func(ctx context.Context, payload json.RawMessage) (any, error)

// Router dispatches requests to one handler per action.
type Router struct {
	svc       Services
	validator *validation.Validator
	logger    *slog.Logger
	handlers  map[string]handlerFunc
}

// NewRouter creates a router with every action registered.
func NewRouter(svc Services, validator *validation.Validator, logger *slog.Logger) *Router {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	r := &Router{
		svc:       svc,
		validator: validator,
		logger:    logger,
	}
	r.registerHandlers()
	return r
}

// Actions returns the registered action names, sorted.
func (r *Router) Actions() []string {
	actions := make([]string, 0, len(r.handlers))
	for action := range r.handlers {
		actions = append(actions, action)
	}
	slices.Sort(actions)
	return actions
}

// Handle runs the handler for req.Action. It never returns a nil response;
// failures are reported in the envelope.
func (r *Router) Handle(ctx context.Context, req Request) (resp Response) {
	if req.ID == "" {
		req.ID = uuid.NewString()
	}
	start := time.Now()

	defer func() {
		if p := recover(); p != nil {
			r.logger.Error("handler panicked",
				"request_id", req.ID,
				"action", req.Action,
				"panic", p,
			)
			resp = r.fail(req, apperrors.Internal(fmt.Sprintf("action %s failed unexpectedly", req.Action)))
		}
	}()

	handler, ok := r.handlers[req.Action]
	if !ok {
		return r.fail(req, apperrors.Validationf("unknown action %q", req.Action))
	}

	data, err := handler(ctx, req.Payload)
	if err != nil {
		return r.fail(req, err)
	}

	r.logger.Debug("message handled",
		"request_id", req.ID,
		"action", req.Action,
		"duration", time.Since(start),
	)
	return Response{ID: req.ID, Success: true, Data: data}
}

// fail builds the error envelope. Only domain errors expose their message.
func (r *Router) fail(req Request, err error) Response {
	resp := Response{ID: req.ID, Code: apperrors.CodeOf(err)}

	var domainErr *apperrors.Error
	if apperrors.As(err, &domainErr) {
		resp.Error = domainErr.Message
		resp.Details = domainErr.Details
	} else {
		resp.Error = "internal error"
	}

	switch resp.Code {
	case apperrors.CodeStorage, apperrors.CodeInternal:
		r.logger.Error("message failed",
			"request_id", req.ID,
			"action", req.Action,
			"code", resp.Code,
			"error", err,
		)
	default:
		r.logger.Debug("message rejected",
			"request_id", req.ID,
			"action", req.Action,
			"code", resp.Code,
			"error", err,
		)
	}
	return resp
}

// handle adapts a typed handler: it decodes the payload into P and validates it.
// A missing or null payload decodes to the zero P.
func handle[P any](v *validation.Validator, fn func(ctx context.Context, p *P) (any, error)) handlerFunc {
	return func(ctx context.Context, raw json.RawMessage) (any, error) {
		var p P
		if len(raw) > 0 && string(raw) != "null" {
			if err := json.Unmarshal(raw, &p); err != nil {
				return nil, apperrors.Validationf("invalid payload: %v", err)
			}
		}
		if err := v.Validate(&p); err != nil {
			return nil, err
		}
		return fn(ctx, &p)
	}
}

func (r *Router) registerHandlers() {
	v := r.validator
	words, lists, settings, reviews := r.svc.Words, r.svc.Lists, r.svc.Settings, r.svc.Reviews

	r.handlers = map[string]handlerFunc{
		// Words
		ActionAddWord: handle(v, func(ctx context.Context, p *service.AddWordRequest) (any, error) {
			return words.AddWord(ctx, p.Text, p.Definitions)
		}),
		ActionGetWord: handle(v, func(ctx context.Context, p *idPayload) (any, error) {
			return words.GetWord(ctx, p.ID)
		}),
		ActionGetAllWords: handle(v, func(ctx context.Context, _ *emptyPayload) (any, error) {
			return nonNil(words.ListWords(ctx))
		}),
		ActionUpdateWord: handle(v, func(ctx context.Context, p *service.WordUpdate) (any, error) {
			return words.UpdateWord(ctx, p)
		}),
		ActionDeleteWord: handle(v, func(ctx context.Context, p *idPayload) (any, error) {
			return nil, words.DeleteWord(ctx, p.ID)
		}),
		ActionLookupWord: handle(v, func(ctx context.Context, p *textPayload) (any, error) {
			return words.LookupWord(ctx, p.Text)
		}),
		ActionSearchWords: handle(v, func(ctx context.Context, p *searchPayload) (any, error) {
			return nonNil(words.SearchWords(ctx, p.Query, p.Limit))
		}),

		// Lists
		ActionAddList: handle(v, func(ctx context.Context, p *service.AddListRequest) (any, error) {
			return lists.AddList(ctx, p.Name, p.Description)
		}),
		ActionGetList: handle(v, func(ctx context.Context, p *idPayload) (any, error) {
			return lists.GetList(ctx, p.ID)
		}),
		ActionGetAllLists: handle(v, func(ctx context.Context, _ *emptyPayload) (any, error) {
			return nonNil(lists.ListLists(ctx))
		}),
		ActionGetListWords: handle(v, func(ctx context.Context, p *listIDPayload) (any, error) {
			return nonNil(lists.GetListWords(ctx, p.ListID))
		}),
		ActionUpdateList: handle(v, func(ctx context.Context, p *service.ListUpdate) (any, error) {
			return lists.UpdateList(ctx, p)
		}),
		ActionDeleteList: handle(v, func(ctx context.Context, p *idPayload) (any, error) {
			return nil, lists.DeleteList(ctx, p.ID)
		}),
		ActionAddWordToList: handle(v, func(ctx context.Context, p *membershipPayload) (any, error) {
			return nil, lists.AddWordToList(ctx, p.WordID, p.ListID)
		}),
		ActionRemoveWordFromList: handle(v, func(ctx context.Context, p *membershipPayload) (any, error) {
			return nil, lists.RemoveWordFromList(ctx, p.WordID, p.ListID)
		}),

		// Settings and stats
		ActionGetSettings: handle(v, func(ctx context.Context, _ *emptyPayload) (any, error) {
			return settings.GetOrCreateSettings(ctx)
		}),
		ActionUpdateSettings: handle(v, func(ctx context.Context, p *service.SettingsUpdate) (any, error) {
			return settings.UpdateSettings(ctx, p)
		}),
		ActionGetStats: handle(v, func(ctx context.Context, _ *emptyPayload) (any, error) {
			return settings.GetOrCreateStats(ctx)
		}),
		ActionUpdateStats: handle(v, func(ctx context.Context, p *service.StatsUpdate) (any, error) {
			return settings.UpdateStats(ctx, p)
		}),

		// Review
		ActionSubmitReview: handle(v, func(ctx context.Context, p *submitReviewPayload) (any, error) {
			return reviews.SubmitReview(ctx, p.WordID, p.Outcome, time.Duration(p.TimeSpent)*time.Millisecond)
		}),
		ActionGetReviewQueue: handle(v, func(ctx context.Context, p *reviewQueuePayload) (any, error) {
			return nonNil(reviews.ReviewQueue(ctx, p.MaxWords))
		}),

		// Export
		ActionExportVocabulary: handle(v, func(ctx context.Context, _ *emptyPayload) (any, error) {
			if r.svc.Exporter == nil {
				return nil, apperrors.Internal("export not configured")
			}
			return r.svc.Exporter.Export(ctx)
		}),
	}
}

// nonNil makes empty results encode as [] rather than null.
func nonNil[T any](items []T, err error) (any, error) {
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []T{}
	}
	return items, nil
}
