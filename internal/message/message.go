// Package message routes inbound extension messages to the vocabulary services.
//
// Every request names an action and carries a JSON payload; every response
// has the same envelope, so the transport never needs to know about actions.
package message

import (
	"encoding/json"

	apperrors "github.com/vocabkeep/vocabkeep/internal/errors"
)

// Actions understood by the router.
const (
	ActionAddWord            = "addWord"
	ActionGetWord            = "getWord"
	ActionGetAllWords        = "getAllWords"
	ActionUpdateWord         = "updateWord"
	ActionDeleteWord         = "deleteWord"
	ActionLookupWord         = "lookupWord"
	ActionSearchWords        = "searchWords"
	ActionAddList            = "addList"
	ActionGetList            = "getList"
	ActionGetAllLists        = "getAllLists"
	ActionGetListWords       = "getListWords"
	ActionUpdateList         = "updateList"
	ActionDeleteList         = "deleteList"
	ActionAddWordToList      = "addWordToList"
	ActionRemoveWordFromList = "removeWordFromList"
	ActionGetSettings        = "getSettings"
	ActionUpdateSettings     = "updateSettings"
	ActionGetStats           = "getStats"
	ActionUpdateStats        = "updateStats"
	ActionSubmitReview       = "submitReview"
	ActionGetReviewQueue     = "getReviewQueue"
	ActionExportVocabulary   = "exportVocabulary"
)

// Request is one inbound message. ID is echoed back; one is generated when empty.
type Request struct {
	ID      string          `json:"id"`
	Action  string          `json:"action"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Response is the reply to a Request.
type Response struct {
	ID      string         `json:"id"`
	Success bool           `json:"success"`
	Data    any            `json:"data,omitempty"`
	Error   string         `json:"error,omitempty"`
	Code    apperrors.Code `json:"code,omitempty"`
	Details any            `json:"details,omitempty"`
}
