package api

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/goccy/go-json"
	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/realslimshanky/Pricy/models"
	"github.com/realslimshanky/Pricy/utils"
)

// maxBodyBytes caps the request body size
const maxBodyBytes = 1 << 20

// PricePredictor predicts the nightly price of one listing.
type PricePredictor interface {
	Predict(ctx context.Context, r models.Record) (float64, error)
}

// Handler serves the prediction endpoint
type Handler struct {
	predictor PricePredictor
	schema    *jsonschema.Schema
	logger    *utils.Logger
}

// NewHandler creates a handler around an already loaded predictor
func NewHandler(predictor PricePredictor, logger *utils.Logger) (*Handler, error) {
	schema, err := compileRequestSchema()
	if err != nil {
		return nil, err
	}
	return &Handler{predictor: predictor, schema: schema, logger: logger}, nil
}

// PredictPrice handles POST /predict_price
func (h *Handler) PredictPrice(w http.ResponseWriter, r *http.Request) {
	logger := loggerFrom(r.Context(), h.logger)

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondError(w, http.StatusRequestEntityTooLarge, "request body too large", nil, logger)
			return
		}
		respondError(w, http.StatusBadRequest, "could not read request body", nil, logger)
		return
	}

	var doc interface{}
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	if err := dec.Decode(&doc); err != nil {
		respondError(w, http.StatusBadRequest, "malformed JSON body", nil, logger)
		return
	}

	if err := h.schema.Validate(doc); err != nil {
		respondError(w, http.StatusUnprocessableEntity, "request does not match schema",
			schemaViolations(err), logger)
		return
	}

	var req PredictRequest
	if err := json.Unmarshal(body, &req); err != nil {
		field := "(body)"
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) && typeErr.Field != "" {
			field = typeErr.Field
		}
		respondError(w, http.StatusUnprocessableEntity, "request does not match schema",
			[]FieldError{{Field: field, Message: "must be an integer"}}, logger)
		return
	}
	if violations := validateRequest(&req); len(violations) > 0 {
		respondError(w, http.StatusUnprocessableEntity, "request validation failed", violations, logger)
		return
	}

	price, err := h.predictor.Predict(r.Context(), req.Record())
	if err != nil {
		logger.Error("Prediction failed: %v", err)
		respondError(w, http.StatusInternalServerError, "prediction failed", nil, logger)
		return
	}
	respondJSON(w, http.StatusOK, PredictResponse{PredictedPrice: price}, logger)
}
