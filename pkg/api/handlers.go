package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ssargent/rowdb/pkg/store"
)

// maxBodyBytes bounds insert and update request bodies
const maxBodyBytes = 4 << 20

// Server holds the API server state
type Server struct {
	store   IRecordStore
	config  ServerConfig
	metrics *Metrics
	logger  *slog.Logger
}

// NewServer creates a new API server
func NewServer(store IRecordStore, config ServerConfig, metrics *Metrics, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		store:   store,
		config:  config,
		metrics: metrics,
		logger:  logger,
	}
}

// handleHealth godoc
//
//	@Summary		Health check
//	@Description	Get the health status of the API
//	@Tags			health
//	@Produce		json
//	@Success		200	{object}	APIResponse
//	@Router			/health [get]
//	@Security		ApiKeyAuth
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.metrics.RecordHealthCheck(true)
	sendSuccess(w, map[string]string{"status": "healthy"})
}

// handleInsert godoc
//
//	@Summary		Insert a record
//	@Description	Append a record to a table, creating the table on first use
//	@Tags			records
//	@Accept			json
//	@Produce		json
//	@Param			table	path		string		true	"Table name"
//	@Param			values	body		[]string	true	"Field values"
//	@Success		200		{object}	APIResponse
//	@Failure		400		{object}	APIResponse
//	@Failure		500		{object}	APIResponse
//	@Security		ApiKeyAuth
//	@Router			/insert/{table} [post]
func (s *Server) handleInsert(w http.ResponseWriter, r *http.Request) {
	table := chi.URLParam(r, "table")
	if table == "" {
		sendError(w, "Table is required", http.StatusBadRequest)
		return
	}

	values, err := decodeValues(w, r)
	if err != nil {
		sendError(w, err.Error(), http.StatusBadRequest)
		return
	}

	id, err := s.store.Insert(table, values)
	if err != nil {
		s.sendStoreError(w, r, "insert", err)
		return
	}

	sendSuccess(w, id)
}

// handleUpdate godoc
//
//	@Summary		Update a record
//	@Description	Replace the values of a record. The record moves to the end of the table file.
//	@Tags			records
//	@Accept			json
//	@Produce		json
//	@Param			table	path		string		true	"Table name"
//	@Param			id		path		int			true	"Record id"
//	@Param			values	body		[]string	true	"Field values"
//	@Success		200		{object}	APIResponse
//	@Failure		400		{object}	APIResponse
//	@Failure		404		{object}	APIResponse
//	@Failure		500		{object}	APIResponse
//	@Security		ApiKeyAuth
//	@Router			/update/{table}/{id} [post]
func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request) {
	table := chi.URLParam(r, "table")
	id, err := parseID(chi.URLParam(r, "id"))
	if err != nil {
		sendError(w, err.Error(), http.StatusBadRequest)
		return
	}

	values, err := decodeValues(w, r)
	if err != nil {
		sendError(w, err.Error(), http.StatusBadRequest)
		return
	}

	found, err := s.store.Update(table, values, id)
	if err != nil {
		s.sendStoreError(w, r, "update", err)
		return
	}

	sendSuccess(w, found)
}

// handleSelect godoc
//
//	@Summary		Select a record
//	@Description	Look up a record by id. The first field of the result is the id.
//	@Tags			records
//	@Produce		json
//	@Param			table	path		string	true	"Table name"
//	@Param			id		path		int		true	"Record id"
//	@Success		200		{object}	APIResponse
//	@Failure		400		{object}	APIResponse
//	@Failure		404		{object}	APIResponse
//	@Failure		500		{object}	APIResponse
//	@Security		ApiKeyAuth
//	@Router			/select/{table}/{id} [get]
func (s *Server) handleSelect(w http.ResponseWriter, r *http.Request) {
	table := chi.URLParam(r, "table")
	id, err := parseID(chi.URLParam(r, "id"))
	if err != nil {
		sendError(w, err.Error(), http.StatusBadRequest)
		return
	}

	fields, found, err := s.store.Select(table, id)
	if err != nil {
		s.sendStoreError(w, r, "select", err)
		return
	}
	if !found {
		sendError(w, "Record not found", http.StatusNotFound)
		return
	}

	sendSuccess(w, fields)
}

// handleTables godoc
//
//	@Summary		List tables
//	@Description	List the tables known to the store with their last allocated id
//	@Tags			diagnostics
//	@Produce		json
//	@Success		200	{object}	APIResponse
//	@Failure		500	{object}	APIResponse
//	@Security		ApiKeyAuth
//	@Router			/tables [get]
func (s *Server) handleTables(w http.ResponseWriter, r *http.Request) {
	tables, err := s.store.Tables()
	if err != nil {
		s.sendStoreError(w, r, "tables", err)
		return
	}
	sendSuccess(w, tables)
}

// handleStats godoc
//
//	@Summary		Store statistics
//	@Description	Table count and total bytes on disk
//	@Tags			diagnostics
//	@Produce		json
//	@Success		200	{object}	APIResponse
//	@Failure		500	{object}	APIResponse
//	@Security		ApiKeyAuth
//	@Router			/stats [get]
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.store.Stats()
	if err != nil {
		s.sendStoreError(w, r, "stats", err)
		return
	}
	s.metrics.UpdateDBStats(stats.Tables, stats.DataSize)
	sendSuccess(w, stats)
}

// startMetricsUpdater periodically updates store gauges until done is closed
func (s *Server) startMetricsUpdater(interval time.Duration, done <-chan struct{}) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			stats, err := s.store.Stats()
			if err != nil {
				s.logger.Warn("metrics update failed", "error", err)
				continue
			}
			s.metrics.UpdateDBStats(stats.Tables, stats.DataSize)
		}
	}
}

// sendStoreError maps a store error to an HTTP status
func (s *Server) sendStoreError(w http.ResponseWriter, r *http.Request, operation string, err error) {
	status := statusForError(err)
	if status == http.StatusInternalServerError {
		s.logger.Error("store operation failed",
			"operation", operation,
			"error", err,
			"request_id", RequestID(r.Context()),
		)
	}
	sendError(w, fmt.Sprintf("Failed to %s: %v", operation, err), status)
}

func statusForError(err error) int {
	switch {
	case errors.Is(err, store.ErrInvalidTableName), errors.Is(err, store.ErrInvalidValue):
		return http.StatusBadRequest
	case errors.Is(err, store.ErrTableNotInitialized):
		return http.StatusNotFound
	case errors.Is(err, store.ErrStoreClosed):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func parseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid record id %q", raw)
	}
	return id, nil
}

// decodeValues reads a JSON array of strings from the request body
func decodeValues(w http.ResponseWriter, r *http.Request) ([]string, error) {
	var values []string
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(&values); err != nil {
		return nil, fmt.Errorf("request body must be a JSON array of strings: %w", err)
	}
	return values, nil
}
