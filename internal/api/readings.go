package api

import (
	"errors"
	"fmt"
	"mime"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/nerrad567/envsense-core/internal/infrastructure/influxdb"
	"github.com/nerrad567/envsense-core/internal/sensor"
)

// Limits for GET /{sensor}?limit=N.
const (
	defaultLatestLimit = 10
	maxLatestLimit     = influxdb.MaxLatestLimit
)

// handleRecord accepts one reading for sn as form fields.
func (s *Server) handleRecord(sn sensor.Sensor) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		values, err := parseReading(r, sn)
		if err != nil {
			var tooLarge *http.MaxBytesError
			switch {
			case errors.As(err, &tooLarge):
				writeError(w, http.StatusRequestEntityTooLarge, ErrCodeBadRequest, "request body too large")
			case sensor.IsValidation(err):
				writeError(w, http.StatusBadRequest, ErrCodeValidation, err.Error())
			default:
				writeBadRequest(w, err.Error())
			}
			return
		}

		if err := s.recorder.RecordSensor(r.Context(), sn, values); err != nil {
			if sensor.IsValidation(err) {
				writeError(w, http.StatusBadRequest, ErrCodeValidation, err.Error())
				return
			}
			s.logger.Error("storing reading failed",
				"sensor", sn.Kind,
				"error", err,
				"request_id", r.Context().Value(ctxKeyRequestID),
			)
			writeError(w, http.StatusInternalServerError, ErrCodeStorage, "storing reading: "+err.Error())
			return
		}

		resp := map[string]any{
			"status":    "success",
			"message":   fmt.Sprintf("%s reading stored", sn.Kind),
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		}
		for _, name := range sn.FieldNames() {
			resp[name] = values[name]
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

// parseReading extracts sn's fields from a multipart or urlencoded body.
//
// Only the body is read; query-string parameters are ignored. A missing or
// non-numeric field is reported as a *sensor.ValidationError.
func parseReading(r *http.Request, sn sensor.Sensor) (map[string]float64, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))

	var err error
	if mediaType == "multipart/form-data" {
		err = r.ParseMultipartForm(maxRequestBodySize)
	} else {
		err = r.ParseForm()
	}
	if err != nil {
		return nil, fmt.Errorf("parsing form: %w", err)
	}

	values := make(map[string]float64, len(sn.Fields))
	for _, name := range sn.FieldNames() {
		raw, ok := r.PostForm[name]
		if !ok || len(raw) == 0 || strings.TrimSpace(raw[0]) == "" {
			return nil, &sensor.ValidationError{Sensor: sn.Kind, Field: name, Err: sensor.ErrMissingField}
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(raw[0]), 64)
		if err != nil {
			return nil, &sensor.ValidationError{Sensor: sn.Kind, Field: name, Err: sensor.ErrInvalidValue}
		}
		values[name] = v
	}
	return values, nil
}

// handleLatest returns the most recent stored readings for sn.
func (s *Server) handleLatest(sn sensor.Sensor) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := defaultLatestLimit
		if raw := r.URL.Query().Get("limit"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil || n < 1 || n > maxLatestLimit {
				writeBadRequest(w, fmt.Sprintf("limit must be an integer between 1 and %d", maxLatestLimit))
				return
			}
			limit = n
		}

		if s.reader == nil {
			writeJSON(w, http.StatusOK, map[string]any{
				"status":  "success",
				"message": "querying is disabled",
				"count":   0,
				"data":    []influxdb.Point{},
			})
			return
		}

		points, err := s.reader.Latest(r.Context(), sn.Measurement, sn.FieldNames(), limit)
		if err != nil {
			s.logger.Error("querying readings failed",
				"sensor", sn.Kind,
				"error", err,
				"request_id", r.Context().Value(ctxKeyRequestID),
			)
			writeError(w, http.StatusInternalServerError, ErrCodeStorage, "querying readings failed")
			return
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"status": "success",
			"count":  len(points),
			"data":   points,
		})
	}
}
