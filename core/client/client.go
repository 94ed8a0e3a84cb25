/*
Package client provides easy and fast in-process access to a REST api

Instead of marshalling HTTP, the client talks directly to the mux router.
It is perfectly suited for unit tests, and doubles as a regular HTTP
client when created with a URL.
*/
package client

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/gorilla/mux"
)

// Client provides easy access to the REST API.
type Client struct {
	router     *mux.Router
	httpClient *http.Client
	url        string
	ctx        context.Context

	defaultHeaders map[string]string
}

// NewWithRouter creates a client to make pseudo-REST requests to the
// backend, through the mux router.
func NewWithRouter(router *mux.Router) Client {
	return Client{
		router:         router,
		defaultHeaders: map[string]string{},
	}
}

// NewWithURL creates a client to make REST requests to a running service.
func NewWithURL(url string) Client {
	return Client{
		url:            url,
		httpClient:     &http.Client{Timeout: 20 * time.Second},
		defaultHeaders: map[string]string{},
	}
}

// WithHeader returns a new client with a default header added.
func (c Client) WithHeader(key string, value string) Client {
	headers := map[string]string{key: value}
	for k, v := range c.defaultHeaders {
		headers[k] = v
	}
	c.defaultHeaders = headers
	return c
}

// WithContext returns a new client with a specific request context.
func (c Client) WithContext(ctx context.Context) Client {
	c.ctx = ctx
	return c
}

// Context returns the client's base context.
func (c Client) Context() context.Context {
	if c.ctx == nil {
		return context.Background()
	}
	return c.ctx
}

// do executes the request, either in-process through the router or over
// the wire, and returns status, response header and body.
func (c Client) do(method, path string, headers map[string]string, body []byte) (int, http.Header, []byte, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	r, err := http.NewRequestWithContext(c.Context(), method, c.url+path, reader)
	if err != nil {
		return http.StatusInternalServerError, nil, nil, err
	}
	for key, value := range c.defaultHeaders {
		r.Header.Add(key, value)
	}
	for key, value := range headers {
		r.Header.Add(key, value)
	}
	if body != nil {
		r.Header.Set("Content-Type", "application/json")
	}

	if c.router != nil {
		rec := httptest.NewRecorder()
		c.router.ServeHTTP(rec, r)
		res := rec.Result()
		return res.StatusCode, res.Header, rec.Body.Bytes(), nil
	}

	res, err := c.httpClient.Do(r)
	if err != nil {
		return http.StatusInternalServerError, nil, nil, err
	}
	defer res.Body.Close()
	resBody, _ := io.ReadAll(res.Body)
	return res.StatusCode, res.Header, resBody, nil
}

func decode(resBody []byte, result interface{}) error {
	if len(resBody) == 0 || result == nil {
		return nil
	}
	if raw, ok := result.(*[]byte); ok {
		*raw = resBody
		return nil
	}
	return json.Unmarshal(resBody, result)
}

func statusError(method, path string, got, want int, resBody []byte) error {
	return fmt.Errorf("%s %s returned wrong status code: got %v want %v. Error: %s",
		method, path, got, want, strings.TrimSpace(string(resBody)))
}

// RawGet gets the resource from path. Expects http.StatusOK as response,
// otherwise it will flag an error. Returns the actual http status code.
//
// The path can be extended with query strings. result can be a struct,
// a map[string]interface{} or a raw *[]byte; result can be nil.
func (c Client) RawGet(path string, result interface{}) (int, error) {
	status, _, err := c.RawGetWithHeader(path, nil, result)
	return status, err
}

// RawGetWithHeader gets the resource from path with extra request
// headers, and also returns the response header.
func (c Client) RawGetWithHeader(path string, header map[string]string, result interface{}) (int, http.Header, error) {
	status, resHeader, resBody, err := c.do(http.MethodGet, path, header, nil)
	if err != nil {
		return status, resHeader, err
	}
	if status == http.StatusNotModified {
		return status, resHeader, nil
	}
	if status != http.StatusOK {
		return status, resHeader, statusError(http.MethodGet, path, status, http.StatusOK, resBody)
	}
	return status, resHeader, decode(resBody, result)
}

// RawPost posts a resource to path. Expects http.StatusCreated as
// response, otherwise it will flag an error.
//
// body can also be a []byte; result can be nil.
func (c Client) RawPost(path string, body interface{}, result interface{}) (int, error) {
	return c.rawPostExpect(path, body, result, http.StatusCreated)
}

// RawPostAccepted posts to path and expects http.StatusAccepted, the
// response of asynchronous operations such as geocode requests.
func (c Client) RawPostAccepted(path string, body interface{}, result interface{}) (int, error) {
	return c.rawPostExpect(path, body, result, http.StatusAccepted)
}

func (c Client) rawPostExpect(path string, body interface{}, result interface{}, want int) (int, error) {
	j, err := marshalBody(body)
	if err != nil {
		return http.StatusBadRequest, fmt.Errorf("POST to %s: %w", path, err)
	}
	status, _, resBody, err := c.do(http.MethodPost, path, nil, j)
	if err != nil {
		return status, err
	}
	if status != want {
		return status, statusError(http.MethodPost, path, status, want, resBody)
	}
	return status, decode(resBody, result)
}

// RawPatch patches a resource at path. Expects http.StatusOK as response,
// otherwise it will flag an error.
func (c Client) RawPatch(path string, body interface{}, result interface{}) (int, error) {
	j, err := marshalBody(body)
	if err != nil {
		return http.StatusBadRequest, fmt.Errorf("PATCH to %s: %w", path, err)
	}
	status, _, resBody, err := c.do(http.MethodPatch, path, nil, j)
	if err != nil {
		return status, err
	}
	if status != http.StatusOK {
		return status, statusError(http.MethodPatch, path, status, http.StatusOK, resBody)
	}
	return status, decode(resBody, result)
}

// RawDelete deletes a resource at path. Expects http.StatusOK as
// response; the deleted representation is decoded into result.
func (c Client) RawDelete(path string, result interface{}) (int, error) {
	status, _, resBody, err := c.do(http.MethodDelete, path, nil, nil)
	if err != nil {
		return status, err
	}
	if status != http.StatusOK {
		return status, statusError(http.MethodDelete, path, status, http.StatusOK, resBody)
	}
	return status, decode(resBody, result)
}

func marshalBody(body interface{}) ([]byte, error) {
	if body == nil {
		return nil, nil
	}
	if j, ok := body.([]byte); ok {
		return j, nil
	}
	return json.Marshal(body)
}
