package main

import (
	"encoding/json"
	"net"
	"net/http"
)

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

const bearerScheme = "Bearer "

func parseBearer(authorizationHeaderValue string) string {
	if !stringsBeginsWith(authorizationHeaderValue, bearerScheme) {
		return ""
	}
	return stringsTrimSpace(authorizationHeaderValue[len(bearerScheme):])
}

func writeJSON(httpResponseWriter http.ResponseWriter, statusCode int, payload any) {
	httpResponseWriter.Header().Set(headerContentType, contentTypeJSON)
	httpResponseWriter.WriteHeader(statusCode)
	_ = json.NewEncoder(httpResponseWriter).Encode(payload)
}

func httpErrorJSON(httpResponseWriter http.ResponseWriter, statusCode int, errorCode string) {
	writeJSON(httpResponseWriter, statusCode, errorResponse{Error: errorCode})
}

func httpErrorJSONMessage(httpResponseWriter http.ResponseWriter, statusCode int, errorCode string, message string) {
	writeJSON(httpResponseWriter, statusCode, errorResponse{Error: errorCode, Message: message})
}

func rateKey(remoteAddress string, originHeader string) string {
	hostPart, _, splitError := net.SplitHostPort(remoteAddress)
	if splitError != nil {
		hostPart = remoteAddress
	}
	return originHeader + "|" + hostPart
}
