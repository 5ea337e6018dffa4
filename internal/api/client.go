package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
)

// Client is the single HTTP client for the CloudGrade backend. Every request
// passes through the bearer transport, which attaches the session token held
// in the request context.
type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Transport: &bearerTransport{base: http.DefaultTransport}},
	}
}

type tokenKey struct{}

// WithToken stores the session token on the context so the transport can
// attach it to the outgoing request.
func WithToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenKey{}, token)
}

func tokenFromContext(ctx context.Context) string {
	token, _ := ctx.Value(tokenKey{}).(string)
	return token
}

type bearerTransport struct {
	base http.RoundTripper
}

func (t *bearerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	clone := req.Clone(req.Context())
	if token := tokenFromContext(req.Context()); token != "" {
		clone.Header.Set("Authorization", "Bearer "+token)
	}
	if clone.Header.Get("Content-Type") == "" {
		clone.Header.Set("Content-Type", "application/json")
	}
	return t.base.RoundTrip(clone)
}

type errorResponse struct {
	Message string `json:"message"`
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(payload)
	}
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if err := checkStatus(resp); err != nil {
		return err
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func checkStatus(resp *http.Response) error {
	if resp.StatusCode < 400 {
		return nil
	}
	if resp.StatusCode == http.StatusUnauthorized {
		_, _ = io.Copy(io.Discard, resp.Body)
		return ErrUnauthorized
	}
	var payload errorResponse
	_ = json.NewDecoder(resp.Body).Decode(&payload)
	return &APIError{Status: resp.StatusCode, Message: payload.Message}
}

type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type registerRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// LoginResult is the backend's answer to a successful login.
type LoginResult struct {
	Token    string `json:"token"`
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

func (c *Client) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	var result LoginResult
	err := c.do(ctx, http.MethodPost, "/auth/login", nil, credentials{Username: username, Password: password}, &result)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) Register(ctx context.Context, username, password, role string) error {
	return c.do(ctx, http.MethodPost, "/auth/register", nil, registerRequest{Username: username, Password: password, Role: role}, nil)
}

// GradeRecord is one row of the grade table.
type GradeRecord struct {
	ID          int64   `json:"id"`
	StudentID   string  `json:"studentId"`
	StudentName string  `json:"studentName"`
	CourseName  string  `json:"courseName"`
	Score       float64 `json:"score"`
	Semester    string  `json:"semester"`
}

type gradeUpdate struct {
	Score    float64 `json:"score"`
	Semester string  `json:"semester"`
}

func (c *Client) GradesByUserID(ctx context.Context, userID int64) ([]GradeRecord, error) {
	query := url.Values{"userId": {strconv.FormatInt(userID, 10)}}
	var records []GradeRecord
	if err := c.do(ctx, http.MethodGet, "/grades/searchByUserId", query, nil, &records); err != nil {
		return nil, err
	}
	return records, nil
}

func (c *Client) SearchGrades(ctx context.Context, studentID string) ([]GradeRecord, error) {
	query := url.Values{"studentId": {studentID}}
	var records []GradeRecord
	if err := c.do(ctx, http.MethodGet, "/grades/search", query, nil, &records); err != nil {
		return nil, err
	}
	return records, nil
}

func (c *Client) UpdateGrade(ctx context.Context, id int64, score float64, semester string) error {
	path := fmt.Sprintf("/grades/update/%d", id)
	return c.do(ctx, http.MethodPut, path, nil, gradeUpdate{Score: score, Semester: semester}, nil)
}

func (c *Client) DeleteGrade(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/grades/delete/%d", id), nil, nil, nil)
}

// UploadResult is the backend's response to a grade file upload.
type UploadResult struct {
	Message string `json:"message"`
}

// UploadGrades streams the teacher's grade file to the backend as multipart
// form data without buffering it in memory.
func (c *Client) UploadGrades(ctx context.Context, filename string, file io.Reader) (*UploadResult, error) {
	pipeReader, pipeWriter := io.Pipe()
	form := multipart.NewWriter(pipeWriter)
	go func() {
		part, err := form.CreateFormFile("file", filename)
		if err != nil {
			_ = pipeWriter.CloseWithError(err)
			return
		}
		if _, err := io.Copy(part, file); err != nil {
			_ = pipeWriter.CloseWithError(err)
			return
		}
		_ = pipeWriter.CloseWithError(form.Close())
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/grades/upload", pipeReader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", form.FormDataContentType())
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if err := checkStatus(resp); err != nil {
		return nil, err
	}
	var result UploadResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, err
	}
	return &result, nil
}
