package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"veritas-hq/minerva/pkg/audit"
	"veritas-hq/minerva/pkg/conversation"
	"veritas-hq/minerva/pkg/incident"
	"veritas-hq/minerva/pkg/obligation"
	"veritas-hq/minerva/pkg/policy"
	"veritas-hq/minerva/pkg/policy/engine"
	"veritas-hq/minerva/pkg/records"
)

// maxRequestBody caps evaluate request bodies at 1MB.
const maxRequestBody = 1 << 20

// persistTimeout bounds the background record write after an
// evaluation response has been sent.
const persistTimeout = 10 * time.Second

// handleEvaluate is POST /v1/evaluate.
func (s *Server) handleEvaluate(w http.ResponseWriter, r *http.Request) {
	var req EvaluateRequest
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBody)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_INPUT", "malformed request body: "+err.Error())
		return
	}

	conv, err := buildConversation(&req)
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_INPUT", err.Error())
		return
	}

	// No fallback pack: a verdict must come from the pack the caller
	// named.
	if req.PackID == "" {
		writeError(w, http.StatusBadRequest, "INVALID_INPUT", "packId is required")
		return
	}

	riskClass, err := parseRiskClass(req.RiskClass)
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_INPUT", err.Error())
		return
	}

	eval, err := s.engine.Evaluate(r.Context(), conv, req.PackID)
	if err != nil {
		s.writeEvaluateError(w, err)
		return
	}

	cls, _ := incident.Classify(eval.Signals)
	obligations := obligation.MapObligations(eval.Signals, riskClass)

	s.persist(conv.ID, eval, riskClass, obligations)

	writeJSON(w, http.StatusOK, &EvaluateResponse{
		Evaluation:       eval,
		RiskClass:        riskClass,
		Incident:         cls,
		Obligations:      obligations,
		ProcessingTimeMs: eval.ProcessingTime.Milliseconds(),
	})
}

// writeEvaluateError maps engine errors onto HTTP statuses.
func (s *Server) writeEvaluateError(w http.ResponseWriter, err error) {
	var invalidInput *conversation.InvalidInputError
	var packNotFound *policy.PackNotFoundError
	var cancelled *engine.CancelledError

	switch {
	case errors.As(err, &invalidInput):
		writeError(w, http.StatusBadRequest, "INVALID_INPUT", err.Error())
	case errors.As(err, &packNotFound):
		writeError(w, http.StatusNotFound, "PACK_NOT_FOUND", err.Error())
	case errors.As(err, &cancelled):
		writeError(w, http.StatusServiceUnavailable, "EVALUATION_CANCELLED", err.Error())
	default:
		s.logger.Error("evaluation failed", "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL", "evaluation failed")
	}
}

// persist writes the audit record and the evaluation record. The audit
// recorder is already asynchronous; record storage runs in its own
// goroutine so the response is never held up by persistence.
func (s *Server) persist(conversationID string, eval *engine.Evaluation, riskClass obligation.RiskClass, obligations []obligation.Obligation) {
	if s.recorder != nil {
		record := audit.NewRecord(conversationID, eval)
		if err := s.recorder.Record(context.Background(), record); err != nil {
			s.logger.Error("audit recording failed",
				"audit_id", eval.AuditID,
				"error", err,
			)
		}
	}

	if s.recordStore != nil {
		rec := records.NewEvaluationRecord(conversationID, eval, riskClass, obligations)
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
			defer cancel()
			if err := s.recordStore.PutEvaluation(ctx, rec); err != nil {
				s.logger.Error("evaluation record write failed",
					"audit_id", eval.AuditID,
					"error", err,
				)
			}
		}()
	}
}

// handlePacks is GET /v1/packs.
func (s *Server) handlePacks(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, &PacksResponse{
		Packs:           s.registry.List(),
		RegistryVersion: s.registry.Version(),
	})
}

// handleAuditGet is GET /v1/audit/{id}. The stored record is returned
// together with the result of recomputing its integrity hash.
func (s *Server) handleAuditGet(w http.ResponseWriter, r *http.Request) {
	if s.auditStore == nil {
		writeError(w, http.StatusServiceUnavailable, "AUDIT_DISABLED", "audit storage is not configured")
		return
	}

	id := r.PathValue("id")
	record, err := s.auditStore.Get(r.Context(), id)
	if err != nil {
		var storageErr *audit.StorageError
		if errors.As(err, &storageErr) && storageErr.Operation == "not_found" {
			writeError(w, http.StatusNotFound, "AUDIT_NOT_FOUND", "no audit record with id "+id)
			return
		}
		s.logger.Error("audit lookup failed", "record_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL", "audit lookup failed")
		return
	}

	writeJSON(w, http.StatusOK, &AuditResponse{
		Record:   record,
		Verified: record.Verify(),
	})
}

// handleHealth is GET /healthz. The server is healthy when at least one
// pack is registered and every configured probe answers.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	type healthStatus struct {
		Status          string            `json:"status"`
		Packs           int               `json:"packs"`
		RegistryVersion string            `json:"registryVersion"`
		Checks          map[string]string `json:"checks,omitempty"`
	}

	status := healthStatus{
		Status:          "ok",
		Packs:           s.registry.Count(),
		RegistryVersion: s.registry.Version(),
	}

	code := http.StatusOK
	if status.Packs == 0 {
		status.Status = "degraded"
		code = http.StatusServiceUnavailable
	}

	if len(s.probes) > 0 {
		status.Checks = make(map[string]string, len(s.probes))
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		for name, probe := range s.probes {
			if err := probe.Health(ctx); err != nil {
				status.Checks[name] = err.Error()
				status.Status = "degraded"
				code = http.StatusServiceUnavailable
			} else {
				status.Checks[name] = "ok"
			}
		}
	}

	writeJSON(w, code, status)
}

// buildConversation assembles the conversation from an evaluate
// request: structured messages when present, the plain transcript
// otherwise.
func buildConversation(req *EvaluateRequest) (*conversation.Conversation, error) {
	if len(req.Messages) > 0 {
		return &conversation.Conversation{
			ID:       req.ConversationID,
			Messages: req.Messages,
			Metadata: req.Metadata,
		}, nil
	}

	if strings.TrimSpace(req.Transcript) == "" {
		return nil, &conversation.InvalidInputError{Reason: "either messages or transcript is required"}
	}

	conv, err := conversation.ParseTranscript(req.Transcript)
	if err != nil {
		return nil, err
	}
	conv.ID = req.ConversationID
	conv.Metadata = req.Metadata
	return conv, nil
}

// parseRiskClass validates the request risk class, defaulting to HIGH.
func parseRiskClass(s string) (obligation.RiskClass, error) {
	if s == "" {
		return obligation.RiskHigh, nil
	}
	switch rc := obligation.RiskClass(strings.ToUpper(s)); rc {
	case obligation.RiskUnacceptable, obligation.RiskHigh, obligation.RiskLimited, obligation.RiskMinimal:
		return rc, nil
	default:
		return "", &conversation.InvalidInputError{Reason: "unknown risk class " + s}
	}
}

// writeJSON writes a JSON response with the given status.
func writeJSON(w http.ResponseWriter, code int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(body)
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, code int, errCode, message string) {
	writeJSON(w, code, &ErrorResponse{Error: message, Code: errCode})
}
