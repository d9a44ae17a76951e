package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/MarkoPoloResearchLab/stringkit/stringutil"
)

const (
	maxRequestBodyBytes = 1 << 20

	operationBeginsWith = "begins_with"
	operationEndsWith   = "ends_with"
	operationUniqueID   = "unique_id"

	errorCodeInvalidJSON      = "invalid_json"
	errorCodeBadRequestBody   = "bad_request_body"
	errorCodeRequestTooLarge  = "request_too_large"
	errorCodeInvalidArgument  = "invalid_argument"
	errorCodeMethodNotAllowed = "method_not_allowed"
	errorCodeNotFound         = "not_found"

	queryPrefix = "prefix"
	queryCount  = "count"
)

// Pointer fields tell a missing or null value apart from an empty string.
type matchRequest struct {
	Haystack *string `json:"haystack"`
	Needle   *string `json:"needle"`
}

type matchResponse struct {
	Result bool `json:"result"`
}

type uniqueIDResponse struct {
	IDs []string `json:"ids"`
}

type matchFunc func(haystack string, needle string) (bool, error)

func handleMatch(operation string, match matchFunc, metrics *serviceMetrics, logger *slog.Logger) http.HandlerFunc {
	return func(httpResponseWriter http.ResponseWriter, httpRequest *http.Request) {
		defer httpRequest.Body.Close()
		requestBodyBytes, readBodyError := io.ReadAll(http.MaxBytesReader(httpResponseWriter, httpRequest.Body, maxRequestBodyBytes))
		if readBodyError != nil {
			var maxBytesError *http.MaxBytesError
			if errors.As(readBodyError, &maxBytesError) {
				httpErrorJSONMessage(httpResponseWriter, http.StatusRequestEntityTooLarge, errorCodeRequestTooLarge,
					fmt.Sprintf("body exceeds %d bytes", maxBytesError.Limit))
				return
			}
			httpErrorJSON(httpResponseWriter, http.StatusBadRequest, errorCodeBadRequestBody)
			return
		}

		var request matchRequest
		if unmarshalError := json.Unmarshal(requestBodyBytes, &request); unmarshalError != nil {
			var typeError *json.UnmarshalTypeError
			if errors.As(unmarshalError, &typeError) && typeError.Field != "" {
				metrics.observeOperation(operation, stringutil.ErrInvalidArgument)
				httpErrorJSONMessage(httpResponseWriter, http.StatusBadRequest, errorCodeInvalidArgument,
					fmt.Sprintf("%s can not be interpreted as string", typeError.Field))
				return
			}
			httpErrorJSON(httpResponseWriter, http.StatusBadRequest, errorCodeInvalidJSON)
			return
		}
		if request.Haystack == nil {
			metrics.observeOperation(operation, stringutil.ErrInvalidArgument)
			httpErrorJSONMessage(httpResponseWriter, http.StatusBadRequest, errorCodeInvalidArgument, "haystack is required")
			return
		}
		if request.Needle == nil {
			metrics.observeOperation(operation, stringutil.ErrInvalidArgument)
			httpErrorJSONMessage(httpResponseWriter, http.StatusBadRequest, errorCodeInvalidArgument, "needle is required")
			return
		}

		matched, matchError := match(*request.Haystack, *request.Needle)
		metrics.observeOperation(operation, matchError)
		if matchError != nil {
			logger.DebugContext(httpRequest.Context(), "rejected match", "operation", operation, "err", matchError)
			httpErrorJSONMessage(httpResponseWriter, http.StatusBadRequest, errorCodeInvalidArgument, matchError.Error())
			return
		}
		writeJSON(httpResponseWriter, http.StatusOK, matchResponse{Result: matched})
	}
}

func handleUniqueID(generator *stringutil.Generator, maxBatch int, metrics *serviceMetrics) http.HandlerFunc {
	return func(httpResponseWriter http.ResponseWriter, httpRequest *http.Request) {
		queryValues := httpRequest.URL.Query()

		requestedCount := 1
		if rawCount := stringsTrimSpace(queryValues.Get(queryCount)); rawCount != "" {
			parsedCount, parseCountError := strconv.Atoi(rawCount)
			if parseCountError != nil || parsedCount < 1 || parsedCount > maxBatch {
				metrics.observeOperation(operationUniqueID, stringutil.ErrInvalidArgument)
				httpErrorJSONMessage(httpResponseWriter, http.StatusBadRequest, errorCodeInvalidArgument,
					fmt.Sprintf("count must be an integer between 1 and %d", maxBatch))
				return
			}
			requestedCount = parsedCount
		}

		prefix := queryValues.Get(queryPrefix)
		identifiers := make([]string, requestedCount)
		for index := range identifiers {
			identifiers[index] = generator.Generate(prefix)
		}
		metrics.observeOperation(operationUniqueID, nil)
		metrics.observeUniqueIDs(generator.Format(), requestedCount)
		writeJSON(httpResponseWriter, http.StatusOK, uniqueIDResponse{IDs: identifiers})
	}
}

func handleHealth(httpResponseWriter http.ResponseWriter, _ *http.Request) {
	writeJSON(httpResponseWriter, http.StatusOK, map[string]string{"status": "ok"})
}

func handleMethodNotAllowed(httpResponseWriter http.ResponseWriter, _ *http.Request) {
	httpErrorJSON(httpResponseWriter, http.StatusMethodNotAllowed, errorCodeMethodNotAllowed)
}

func handleNotFound(httpResponseWriter http.ResponseWriter, _ *http.Request) {
	httpErrorJSON(httpResponseWriter, http.StatusNotFound, errorCodeNotFound)
}
