package slack

import (
	"encoding/json"

	"github.com/m-mizutani/goerr/v2"
	"github.com/pmsync-dev/pmsync/pkg/domain/types"
)

// Interaction action IDs. The controller routes block actions by these.
const (
	ActionIDApprove      = "proposal_approve"
	ActionIDReject       = "proposal_reject"
	ActionIDDocumentSync = "document_sync"
)

// DecisionValue is the payload carried in approve/reject button values.
type DecisionValue struct {
	SessionID  types.SessionID  `json:"session_id"`
	ProposalID types.ProposalID `json:"proposal_id"`
}

func (v DecisionValue) Encode() string {
	raw, _ := json.Marshal(v)
	return string(raw)
}

func DecodeDecisionValue(raw string) (DecisionValue, error) {
	var v DecisionValue
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return v, goerr.Wrap(err, "invalid decision action value", goerr.V("raw", raw))
	}
	if v.SessionID == "" || v.ProposalID == "" {
		return v, goerr.New("decision action value is incomplete", goerr.V("raw", raw))
	}
	return v, nil
}
