package gateway

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/meikuraledutech/workflow"
)

// remoteID is an id as the service sends it: a JSON string or a JSON
// number. Numbers keep their literal text, so 42 becomes "42".
type remoteID string

func (id *remoteID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case len(b) == 0 || string(b) == "null":
		*id = ""
	case b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = remoteID(s)
	default:
		var n json.Number
		if err := json.Unmarshal(b, &n); err != nil {
			return fmt.Errorf("id must be a string or a number: %w", err)
		}
		*id = remoteID(n.String())
	}
	return nil
}

// The outer ID fields shadow the embedded string ones when decoding.

type remoteDocument struct {
	workflow.Document
	ID remoteID `json:"id"`
}

func (d remoteDocument) document() workflow.Document {
	doc := d.Document
	doc.ID = string(d.ID)
	return doc
}

type remoteSummary struct {
	workflow.Summary
	ID remoteID `json:"id"`
}

type remoteExecution struct {
	workflow.Execution
	ID         remoteID `json:"id"`
	WorkflowID remoteID `json:"workflowId"`
}

func (e remoteExecution) execution() workflow.Execution {
	out := e.Execution
	out.ID = string(e.ID)
	out.WorkflowID = string(e.WorkflowID)
	return out
}
