package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func postJSON(t *testing.T, handler http.Handler, path string, body string) *httptest.ResponseRecorder {
	t.Helper()
	recorder := httptest.NewRecorder()
	request := httptest.NewRequest(http.MethodPost, "http://stringkit.example"+path, strings.NewReader(body))
	request.Header.Set(headerContentType, contentTypeJSON)
	handler.ServeHTTP(recorder, request)
	return recorder
}

func TestMatchEndpoints(t *testing.T) {
	handler := newTestRouter(t, testConfig())
	testCases := []struct {
		path     string
		body     string
		expected bool
	}{
		{path: "/v1/begins-with", body: `{"haystack":"hello world","needle":"hello"}`, expected: true},
		{path: "/v1/begins-with", body: `{"haystack":"hello world","needle":"World"}`, expected: false},
		{path: "/v1/begins-with", body: `{"haystack":"abc","needle":"abcd"}`, expected: false},
		{path: "/v1/ends-with", body: `{"haystack":"hello world","needle":"world"}`, expected: true},
		{path: "/v1/ends-with", body: `{"haystack":"hello world","needle":"World"}`, expected: false},
		{path: "/v1/ends-with", body: `{"haystack":"","needle":"x"}`, expected: false},
	}
	for _, testCase := range testCases {
		recorder := postJSON(t, handler, testCase.path, testCase.body)
		if recorder.Code != http.StatusOK {
			t.Fatalf("%s %s: expected 200, got %d %s", testCase.path, testCase.body, recorder.Code, recorder.Body.String())
		}
		var response matchResponse
		if decodeError := json.NewDecoder(recorder.Body).Decode(&response); decodeError != nil {
			t.Fatalf("Decode response: %v", decodeError)
		}
		if response.Result != testCase.expected {
			t.Fatalf("%s %s: expected %v, got %v", testCase.path, testCase.body, testCase.expected, response.Result)
		}
	}
}

func TestMatchEndpointsRejectInvalidArguments(t *testing.T) {
	handler := newTestRouter(t, testConfig())
	testCases := []struct {
		body          string
		expectedCode  string
		messageSubstr string
	}{
		{body: `{"haystack":"abc","needle":""}`, expectedCode: errorCodeInvalidArgument, messageSubstr: "zero length"},
		{body: `{"needle":"a"}`, expectedCode: errorCodeInvalidArgument, messageSubstr: "haystack is required"},
		{body: `{"haystack":null,"needle":"a"}`, expectedCode: errorCodeInvalidArgument, messageSubstr: "haystack is required"},
		{body: `{"haystack":"abc"}`, expectedCode: errorCodeInvalidArgument, messageSubstr: "needle is required"},
		{body: `{"haystack":{"nested":true},"needle":"a"}`, expectedCode: errorCodeInvalidArgument, messageSubstr: "haystack can not be interpreted as string"},
		{body: `{"haystack":"abc","needle":12}`, expectedCode: errorCodeInvalidArgument, messageSubstr: "needle can not be interpreted as string"},
		{body: `{"haystack":`, expectedCode: errorCodeInvalidJSON},
	}
	for _, path := range []string{"/v1/begins-with", "/v1/ends-with"} {
		for _, testCase := range testCases {
			recorder := postJSON(t, handler, path, testCase.body)
			if recorder.Code != http.StatusBadRequest {
				t.Fatalf("%s %s: expected 400, got %d", path, testCase.body, recorder.Code)
			}
			var response errorResponse
			if decodeError := json.NewDecoder(recorder.Body).Decode(&response); decodeError != nil {
				t.Fatalf("Decode response: %v", decodeError)
			}
			if response.Error != testCase.expectedCode || !strings.Contains(response.Message, testCase.messageSubstr) {
				t.Fatalf("%s %s: unexpected error body %+v", path, testCase.body, response)
			}
		}
	}
}

func TestUniqueIDEndpoint(t *testing.T) {
	handler := newTestRouter(t, testConfig())

	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "http://stringkit.example/v1/unique-id?prefix=row-&count=10", nil))
	if recorder.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", recorder.Code)
	}
	var response uniqueIDResponse
	if decodeError := json.NewDecoder(recorder.Body).Decode(&response); decodeError != nil {
		t.Fatalf("Decode response: %v", decodeError)
	}
	if len(response.IDs) != 10 {
		t.Fatalf("expected 10 ids, got %d", len(response.IDs))
	}
	seen := make(map[string]struct{})
	for _, identifier := range response.IDs {
		if !strings.HasPrefix(identifier, "row-") || strings.Contains(identifier, ".") {
			t.Fatalf("unexpected id %q", identifier)
		}
		if _, duplicate := seen[identifier]; duplicate {
			t.Fatalf("duplicate id %q", identifier)
		}
		seen[identifier] = struct{}{}
	}

	recorder = httptest.NewRecorder()
	handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "http://stringkit.example/v1/unique-id", nil))
	if decodeError := json.NewDecoder(recorder.Body).Decode(&response); decodeError != nil || len(response.IDs) != 1 || response.IDs[0] == "" {
		t.Fatalf("expected a single non-empty id by default: %v %+v", decodeError, response)
	}
}

func TestUniqueIDEndpointRejectsBadCount(t *testing.T) {
	handler := newTestRouter(t, testConfig())
	for _, rawCount := range []string{"0", "-1", "11", "many"} {
		recorder := httptest.NewRecorder()
		handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "http://stringkit.example/v1/unique-id?count="+rawCount, nil))
		if recorder.Code != http.StatusBadRequest {
			t.Fatalf("count=%s: expected 400, got %d", rawCount, recorder.Code)
		}
	}
}

func TestMatchEndpointRejectsOversizedBody(t *testing.T) {
	handler := newTestRouter(t, testConfig())
	oversizedBody := `{"haystack":"` + strings.Repeat("a", maxRequestBodyBytes) + `","needle":"a"}`

	recorder := postJSON(t, handler, "/v1/begins-with", oversizedBody)
	if recorder.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("expected 413, got %d", recorder.Code)
	}
	var response errorResponse
	if decodeError := json.NewDecoder(recorder.Body).Decode(&response); decodeError != nil {
		t.Fatalf("Decode response: %v", decodeError)
	}
	if response.Error != errorCodeRequestTooLarge {
		t.Fatalf("unexpected error body %+v", response)
	}
}
