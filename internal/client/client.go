package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/BuzzLyutic/taskcentral/internal/model"
)

var (
	// ErrStatus сервер ответил неожиданным статусом
	ErrStatus = errors.New("unexpected status")
	// ErrNotFound сервер ответил 404, errors.Is(err, ErrStatus) при этом тоже true
	ErrNotFound = errors.New("not found")
)

// StatusError оборачивает ErrStatus, чтобы вызывающий мог достать код и сообщение сервера
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s: %d", ErrStatus, e.Code)
	}
	return fmt.Sprintf("%s: %d: %s", ErrStatus, e.Code, e.Message)
}

func (e *StatusError) Unwrap() error { return ErrStatus }

func (e *StatusError) Is(target error) bool {
	return target == ErrNotFound && e.Code == http.StatusNotFound
}

// Client типизированный клиент HTTP API задач
type Client struct {
	baseURL string
	http    *http.Client
}

func New(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
	}
}

func (c *Client) ListTasks(ctx context.Context, ownerID int64) ([]model.Task, error) {
	var tasks []model.Task
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/todos/%d", ownerID), nil, nil, http.StatusOK, &tasks); err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return tasks, nil
}

// CreateTask каждый вызов получает свой Idempotency-Key
func (c *Client) CreateTask(ctx context.Context, task model.Task) (model.Task, error) {
	headers := http.Header{}
	headers.Set("Idempotency-Key", uuid.NewString())

	var created model.Task
	if err := c.do(ctx, http.MethodPost, "/todos", task, headers, http.StatusCreated, &created); err != nil {
		return model.Task{}, fmt.Errorf("create task: %w", err)
	}
	return created, nil
}

func (c *Client) ToggleCompleted(ctx context.Context, id int64, value bool) (model.Task, error) {
	var task model.Task
	err := c.do(ctx, http.MethodPut, fmt.Sprintf("/todos/%d", id), model.ToggleRequest{Value: value}, nil, http.StatusOK, &task)
	if err != nil {
		return model.Task{}, fmt.Errorf("toggle task %d: %w", id, err)
	}
	return task, nil
}

func (c *Client) DeleteTask(ctx context.Context, id int64) error {
	if err := c.do(ctx, http.MethodDelete, fmt.Sprintf("/todos/%d", id), nil, nil, http.StatusOK, nil); err != nil {
		return fmt.Errorf("delete task %d: %w", id, err)
	}
	return nil
}

func (c *Client) ShareTask(ctx context.Context, shared model.SharedTask) (model.SharedTask, error) {
	var created model.SharedTask
	if err := c.do(ctx, http.MethodPost, "/todos/shared_todos", shared, nil, http.StatusCreated, &created); err != nil {
		return model.SharedTask{}, fmt.Errorf("share task %d: %w", shared.TaskID, err)
	}
	return created, nil
}

func (c *Client) GetUser(ctx context.Context, id int64) (model.User, error) {
	var user model.User
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/users/%d", id), nil, nil, http.StatusOK, &user); err != nil {
		return model.User{}, fmt.Errorf("get user %d: %w", id, err)
	}
	return user, nil
}

// Upload отправляет файл в поле "file" и возвращает имя, под которым сервер его сохранил
func (c *Client) Upload(ctx context.Context, filename string, r io.Reader) (string, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return "", fmt.Errorf("upload %s: %w", filename, err)
	}
	if _, err := io.Copy(part, r); err != nil {
		return "", fmt.Errorf("upload %s: %w", filename, err)
	}
	if err := mw.Close(); err != nil {
		return "", fmt.Errorf("upload %s: %w", filename, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/upload", &body)
	if err != nil {
		return "", fmt.Errorf("upload %s: %w", filename, err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	var resp struct {
		Filename string `json:"filename"`
	}
	if err := c.send(req, http.StatusOK, &resp); err != nil {
		return "", fmt.Errorf("upload %s: %w", filename, err)
	}
	return resp.Filename, nil
}

// Download вызывающий обязан закрыть тело
func (c *Client) Download(ctx context.Context, filename string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/download/"+url.PathEscape(filename), nil)
	if err != nil {
		return nil, fmt.Errorf("download %s: %w", filename, err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download %s: %w", filename, err)
	}
	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		return nil, fmt.Errorf("download %s: %w", filename, statusError(resp))
	}
	return resp.Body, nil
}

func (c *Client) do(ctx context.Context, method, path string, in any, headers http.Header, want int, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header[k] = v
	}
	return c.send(req, want, out)
}

func (c *Client) send(req *http.Request, want int, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != want {
		return statusError(resp)
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func statusError(resp *http.Response) error {
	var body struct {
		Error string `json:"error"`
	}
	// тело может быть не JSON, тогда остается только код
	_ = json.NewDecoder(io.LimitReader(resp.Body, 1<<16)).Decode(&body)
	return &StatusError{Code: resp.StatusCode, Message: body.Error}
}
