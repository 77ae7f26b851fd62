package fakeserver

import (
	"encoding/json"
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"
)

// httpError is an error response with status code and description.
type httpError struct {
	Description string `json:"description"`
	StatusCode  int    `json:"http_status_code"`
}

type errorRsp struct {
	Result int    `json:"result"`
	Error  string `json:"error"`
}

const failureResult int = 0

func (e *httpError) Error() string {
	return e.Description
}

func (e *httpError) send(w http.ResponseWriter) {
	rspJson, err := json.Marshal(&errorRsp{Result: failureResult, Error: e.Description})
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("Unable to parse error"))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(e.StatusCode)
	w.Write(rspJson)
}

func errNotFound(what string) *httpError {
	return &httpError{Description: what + " not found", StatusCode: http.StatusNotFound}
}

func errConflict(what string) *httpError {
	return &httpError{Description: what + " already exists", StatusCode: http.StatusConflict}
}

func errBadRequest(msg string) *httpError {
	return &httpError{Description: msg, StatusCode: http.StatusBadRequest}
}

type response struct {
	StatusCode int
	Body       any
}

type requestHandler func(r *http.Request) (*response, error)

// wrap turns a requestHandler into an http.HandlerFunc that writes JSON results and errors.
func wrap(handler requestHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rsp, err := handler(r)
		if err != nil {
			if herr, ok := err.(*httpError); ok {
				herr.send(w)
				return
			}
			(&httpError{Description: err.Error(), StatusCode: http.StatusInternalServerError}).send(w)
			return
		}
		sendJSON(w, rsp.StatusCode, rsp.Body)
	}
}

func sendJSON(w http.ResponseWriter, statusCode int, body any) {
	data, err := json.Marshal(body)
	if err != nil {
		(&httpError{Description: "unable to marshal json", StatusCode: http.StatusInternalServerError}).send(w)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	w.Write(data)
}

func readObject(r *http.Request) (map[string]any, error) {
	obj := make(map[string]any)
	if err := json.NewDecoder(r.Body).Decode(&obj); err != nil {
		return nil, errBadRequest("unable to parse request data")
	}
	return obj, nil
}

func urlParam(r *http.Request, key string) string {
	v := chi.URLParam(r, key)
	if unescaped, err := url.PathUnescape(v); err == nil {
		return unescaped
	}
	return v
}

func timestamp() string {
	return time.Now().UTC().Format("2006-01-02T15:04:05.000000")
}
