package planner

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/thadeu-ct/Mentor-Gradus/pkg/catalog"
	"github.com/thadeu-ct/Mentor-Gradus/pkg/model"
)

// Error codes carried by ErrorBody
const (
	CodeBadRequest         = "bad_request"
	CodeUnknownCourse      = "unknown_course"
	CodeInvalidTerm        = "invalid_term"
	CodeInvalidChoice      = "invalid_choice"
	CodePlacementRejected  = "placement_rejected"
	CodeServiceUnavailable = "service_unavailable"
	CodeSessionNotFound    = "session_not_found"
	CodeUnknownGroup       = "unknown_group"
	CodeUnknownTrack       = "unknown_track"
	CodeInternal           = "internal"
)

// ErrorBody is the error payload of the HTTP API
type ErrorBody struct {
	Error      string            `json:"error"`
	Code       string            `json:"code"`
	Validation *model.Validation `json:"validation,omitempty"`
}

// GroupOptionsRequest is the body of a group options query
type GroupOptionsRequest struct {
	Taken []string `json:"taken"`
}

// HTTPClient is a RequirementsService served over HTTP by another instance
type HTTPClient struct {
	baseURL string
	client  *http.Client
}

func NewHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

func (client *HTTPClient) Requirements(ctx context.Context, request catalog.RequirementsRequest) (catalog.RequirementsResponse, error) {
	var response catalog.RequirementsResponse
	err := client.do(ctx, http.MethodPost, "/api/v1/requirements", request, &response)
	return response, err
}

func (client *HTTPClient) GroupOptions(ctx context.Context, group string, taken []string) ([]model.Course, error) {
	var options []model.Course
	err := client.do(ctx, http.MethodPost, "/api/v1/groups/"+url.PathEscape(group)+"/options", GroupOptionsRequest{Taken: taken}, &options)
	return options, err
}

func (client *HTTPClient) Groups(ctx context.Context) (model.Groups, error) {
	var groups model.Groups
	err := client.do(ctx, http.MethodGet, "/api/v1/catalog/groups", nil, &groups)
	return groups, err
}

func (client *HTTPClient) do(ctx context.Context, method, path string, body any, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(payload)
	}

	request, err := http.NewRequestWithContext(ctx, method, client.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		request.Header.Set("Content-Type", "application/json")
	}
	request.Header.Set("Accept", "application/json")

	response, err := client.client.Do(request)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrServiceUnavailable, err)
	}
	defer response.Body.Close()

	if response.StatusCode >= http.StatusBadRequest {
		var errorBody ErrorBody
		_ = json.NewDecoder(response.Body).Decode(&errorBody)
		switch errorBody.Code {
		case CodeUnknownGroup:
			return fmt.Errorf("%w: %s", catalog.ErrUnknownGroup, errorBody.Error)
		case CodeUnknownTrack:
			return fmt.Errorf("%w: %s", catalog.ErrUnknownTrack, errorBody.Error)
		}
		return fmt.Errorf("%w: %s %s answered %d: %s", ErrServiceUnavailable, method, path, response.StatusCode, errorBody.Error)
	}

	if err := json.NewDecoder(response.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decoding %s: %w", ErrServiceUnavailable, path, err)
	}
	return nil
}
