package rpc

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"colorcore/go-daemon/internal/operations"
	"colorcore/go-daemon/internal/txformat"
)

// Error codes shared with the CLI front end's taxonomy. 102-104 are request
// shape failures, 201/301 are recognized operation failures, 0 is anything
// unrecognized.
const (
	codeInternal           = 0
	codeInvalidPath        = 102
	codeInvalidOperation   = 103
	codeInvalidParams      = 104
	codeControllerError    = 201
	codeTransactionBuilder = 301
)

var pathRE = regexp.MustCompile(`^/(\w+)$`)

type errorBody struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

type errorEnvelope struct {
	Error errorBody `json:"error"`
}

func (s *Server) handleOperation(w http.ResponseWriter, r *http.Request) {
	requestID := uuid.NewString()
	started := time.Now()
	operation := "unknown"
	defer func() {
		s.metrics.observeDuration(operation, time.Since(started))
	}()

	// A panicking operation must cost its own request only, never the
	// server process.
	defer func() {
		if rec := recover(); rec != nil {
			slog.Default().Error("rpc panic",
				"request_id", requestID, "operation", operation, "panic", rec)
			s.respondError(w, operation, http.StatusInternalServerError, errorBody{
				Code:    codeInternal,
				Message: "Internal server error",
				Details: fmt.Sprintf("panic: %v", rec),
			})
		}
	}()

	if !s.limiter.allow(clientKey(r), time.Now()) {
		http.Error(w, "too many requests", http.StatusTooManyRequests)
		return
	}
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	match := pathRE.FindStringSubmatch(r.URL.Path)
	if match == nil {
		s.respondError(w, operation, http.StatusBadRequest, errorBody{
			Code:    codeInvalidPath,
			Message: "The request path is invalid",
		})
		return
	}

	name := match[1]
	op, found := s.registry.Lookup(name)
	if name == "" || strings.HasPrefix(name, "_") || !found {
		s.respondError(w, operation, http.StatusBadRequest, errorBody{
			Code:    codeInvalidOperation,
			Message: "The operation name " + name + " is invalid",
		})
		return
	}
	operation = name

	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodyBytes)
	body, err := io.ReadAll(r.Body)
	if err != nil {
		s.respondError(w, operation, http.StatusInternalServerError, errorBody{
			Code:    codeInternal,
			Message: "Internal server error",
			Details: err.Error(),
		})
		return
	}
	form, err := url.ParseQuery(string(body))
	if err != nil {
		s.respondError(w, operation, http.StatusInternalServerError, errorBody{
			Code:    codeInternal,
			Message: "Internal server error",
			Details: err.Error(),
		})
		return
	}

	format := txformat.FormatJSON
	if values, ok := form[txformat.ParamKey]; ok {
		format = values[len(values)-1]
		form.Del(txformat.ParamKey)
	}
	args := make(operations.Args, len(form))
	for key, values := range form {
		args[key] = values[len(values)-1]
	}

	slog.Default().Info("rpc request",
		"request_id", requestID, "operation", operation, "txformat", format)

	opCtx := operations.NewContext(s.cfg, s.newCache, txformat.Select(format))
	result, err := op.Invoke(r.Context(), opCtx, args)
	if err != nil {
		status, envelope := mapError(err)
		slog.Default().Error("rpc failed",
			"request_id", requestID, "operation", operation,
			"code", envelope.Code, "latency_ms", time.Since(started).Milliseconds())
		s.respondError(w, operation, status, envelope)
		return
	}

	slog.Default().Info("rpc response",
		"request_id", requestID, "operation", operation,
		"latency_ms", time.Since(started).Milliseconds())
	s.respond(w, operation, http.StatusOK, opCtx.Format(result))
}

// mapError converts a dispatch failure into its envelope. Only the
// recognized taxonomy gets a specific code; everything else is internal.
func mapError(err error) (int, errorBody) {
	var invalidParams *operations.InvalidParamsError
	if errors.As(err, &invalidParams) {
		return http.StatusBadRequest, errorBody{
			Code:    codeInvalidParams,
			Message: "Invalid parameters provided",
		}
	}
	var ctrlErr *operations.ControllerError
	if errors.As(err, &ctrlErr) {
		return http.StatusBadRequest, errorBody{
			Code:    codeControllerError,
			Message: ctrlErr.Message,
		}
	}
	var builderErr *operations.TransactionBuilderError
	if errors.As(err, &builderErr) {
		return http.StatusBadRequest, errorBody{
			Code:    codeTransactionBuilder,
			Message: string(builderErr.Kind),
		}
	}
	return http.StatusInternalServerError, errorBody{
		Code:    codeInternal,
		Message: "Internal server error",
		Details: err.Error(),
	}
}

func (s *Server) respond(w http.ResponseWriter, operation string, status int, body any) {
	s.metrics.observeResult(operation, "ok")
	w.Header().Set("Content-Type", "text/json")
	w.WriteHeader(status)
	encoded, err := json.MarshalIndent(body, "", "  ")
	if err != nil {
		// Headers are already out; nothing recoverable remains.
		slog.Default().Error("rpc encode failed", "operation", operation, "error", err)
		return
	}
	_, _ = w.Write(encoded)
}

func (s *Server) respondError(w http.ResponseWriter, operation string, status int, body errorBody) {
	s.metrics.observeResult(operation, strconv.Itoa(body.Code))
	w.Header().Set("Content-Type", "text/json")
	w.WriteHeader(status)
	encoded, _ := json.MarshalIndent(errorEnvelope{Error: body}, "", "  ")
	_, _ = w.Write(encoded)
}

func clientKey(r *http.Request) string {
	remote := strings.TrimSpace(r.RemoteAddr)
	if remote == "" {
		return "ip:unknown"
	}
	host, _, err := net.SplitHostPort(remote)
	if err != nil || strings.TrimSpace(host) == "" {
		return "ip:" + remote
	}
	return "ip:" + host
}
