package http

import (
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"studentrisk/ml"
	"studentrisk/monitoring"
)

// PredictResponse mirrors the public prediction contract. Probabilities are
// rounded to four decimals for display; the sum-to-one invariant holds on
// the full-precision values used internally.
type PredictResponse struct {
	Prediction              int     `json:"prediction"`
	Label                   string  `json:"label"`
	ProbabilityNoDepression float64 `json:"probability_no_depression"`
	ProbabilityDepression   float64 `json:"probability_depression"`
	ModelVersion            string  `json:"model_version"`
}

type HealthResponse struct {
	Status      string `json:"status"`
	ModelLoaded bool   `json:"model_loaded"`
	Version     string `json:"version"`
}

type ErrorResponse struct {
	Error  string   `json:"error"`
	Detail string   `json:"detail,omitempty"`
	Fields []string `json:"fields,omitempty"`
}

// BatchItem pairs one input record with its result or its error, so a bad
// row never corrupts its neighbours.
type BatchItem struct {
	Result *PredictResponse `json:"result,omitempty"`
	Error  *ErrorResponse   `json:"error,omitempty"`
}

type BatchResponse struct {
	Results []BatchItem `json:"results"`
}

func RegisterHandlers(mux *http.ServeMux, state *ServiceState, hub *monitoring.Hub) {
	mux.HandleFunc("GET /api/health", state.handleHealth)
	mux.HandleFunc("POST /api/predict", state.handlePredict(hub))
	mux.HandleFunc("POST /api/predict/batch", state.handleBatchPredict)
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.HandleFunc("GET /api/ws/predictions", hub.ServeWS)
	mux.HandleFunc("GET /", handleDashboard)
}

// handleHealth always succeeds; orchestration branches on model_loaded.
func (s *ServiceState) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:      "healthy",
		ModelLoaded: s.Ready(),
		Version:     ml.ModelVersion,
	})
}

func (s *ServiceState) handlePredict(hub *monitoring.Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		defer func() {
			monitoring.PredictionLatency.Observe(time.Since(start).Seconds())
		}()

		record, errResp := decodeRecord(r)
		if errResp != nil {
			monitoring.PredictionRequestsTotal.WithLabelValues(monitoring.StatusError).Inc()
			writeJSON(w, http.StatusBadRequest, errResp)
			return
		}

		pred, err := s.Predict(*record)
		if err != nil {
			monitoring.PredictionRequestsTotal.WithLabelValues(monitoring.StatusError).Inc()
			if errors.Is(err, ErrModelNotLoaded) {
				writeJSON(w, http.StatusServiceUnavailable, &ErrorResponse{
					Error:  "model not loaded",
					Detail: "run training first",
				})
				return
			}
			// Full detail stays in the server log; the caller gets a
			// generic message.
			s.logger.Error("prediction failed", zap.Error(err))
			writeJSON(w, http.StatusInternalServerError, &ErrorResponse{Error: "prediction failed"})
			return
		}

		monitoring.PredictionRequestsTotal.WithLabelValues(monitoring.StatusSuccess).Inc()
		monitoring.PredictionResults.WithLabelValues(pred.Label).Inc()
		hub.BroadcastPrediction(monitoring.PredictionEvent{
			Timestamp:             time.Now().UTC(),
			Prediction:            pred.Class,
			Label:                 pred.Label,
			ProbabilityDepression: pred.Probability[1],
			ModelVersion:          s.ModelVersion(),
		})

		writeJSON(w, http.StatusOK, toResponse(pred, s.ModelVersion()))
	}
}

// handleBatchPredict applies the same validation and transform rules to each
// record independently and returns a per-record result/error pairing. A
// degraded service rejects the whole batch up front, distinctly from
// validation failures.
func (s *ServiceState) handleBatchPredict(w http.ResponseWriter, r *http.Request) {
	var rawRecords []json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&rawRecords); err != nil {
		monitoring.PredictionRequestsTotal.WithLabelValues(monitoring.StatusError).Inc()
		writeJSON(w, http.StatusBadRequest, &ErrorResponse{
			Error:  "invalid request body",
			Detail: "expected a JSON array of student records",
		})
		return
	}
	if !s.Ready() {
		monitoring.PredictionRequestsTotal.WithLabelValues(monitoring.StatusError).Inc()
		writeJSON(w, http.StatusServiceUnavailable, &ErrorResponse{
			Error:  "model not loaded",
			Detail: "run training first",
		})
		return
	}

	resp := BatchResponse{Results: make([]BatchItem, len(rawRecords))}
	for i, raw := range rawRecords {
		record, errResp := decodeRawRecord(raw)
		if errResp != nil {
			monitoring.PredictionRequestsTotal.WithLabelValues(monitoring.StatusError).Inc()
			resp.Results[i] = BatchItem{Error: errResp}
			continue
		}
		start := time.Now()
		pred, err := s.Predict(*record)
		monitoring.PredictionLatency.Observe(time.Since(start).Seconds())
		if err != nil {
			monitoring.PredictionRequestsTotal.WithLabelValues(monitoring.StatusError).Inc()
			s.logger.Error("batch prediction failed", zap.Int("index", i), zap.Error(err))
			resp.Results[i] = BatchItem{Error: &ErrorResponse{Error: "prediction failed"}}
			continue
		}
		monitoring.PredictionRequestsTotal.WithLabelValues(monitoring.StatusSuccess).Inc()
		monitoring.PredictionResults.WithLabelValues(pred.Label).Inc()
		out := toResponse(pred, s.ModelVersion())
		resp.Results[i] = BatchItem{Result: &out}
	}
	writeJSON(w, http.StatusOK, resp)
}

// decodeRecord reads and validates one record from the request body.
func decodeRecord(r *http.Request) (*ml.StudentRecord, *ErrorResponse) {
	var raw json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		return nil, &ErrorResponse{Error: "invalid request body", Detail: err.Error()}
	}
	return decodeRawRecord(raw)
}

// decodeRawRecord enforces the feature contract: every field present, every
// bound respected, types correct. Violations never reach the model.
func decodeRawRecord(raw json.RawMessage) (*ml.StudentRecord, *ErrorResponse) {
	var object map[string]json.RawMessage
	if err := json.Unmarshal(raw, &object); err != nil {
		return nil, &ErrorResponse{Error: "invalid request body", Detail: "expected a JSON object"}
	}
	if missing := ml.MissingFields(object); len(missing) > 0 {
		return nil, &ErrorResponse{Error: "missing required fields", Fields: missing}
	}

	var record ml.StudentRecord
	if err := json.Unmarshal(raw, &record); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return nil, &ErrorResponse{Error: "wrong field type", Fields: []string{typeErr.Field}}
		}
		return nil, &ErrorResponse{Error: "invalid request body", Detail: err.Error()}
	}

	if err := record.Validate(); err != nil {
		var verr *ml.ValidationError
		if errors.As(err, &verr) {
			return nil, &ErrorResponse{Error: "validation failed", Fields: verr.Fields}
		}
		return nil, &ErrorResponse{Error: "validation failed", Detail: err.Error()}
	}
	return &record, nil
}

func toResponse(pred ml.Prediction, version string) PredictResponse {
	return PredictResponse{
		Prediction:              pred.Class,
		Label:                   pred.Label,
		ProbabilityNoDepression: round4(pred.Probability[0]),
		ProbabilityDepression:   round4(pred.Probability[1]),
		ModelVersion:            version,
	}
}

func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}
