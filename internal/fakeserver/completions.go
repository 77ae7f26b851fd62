package fakeserver

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
	Stream   bool          `json:"stream"`
}

type openAIError struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

// Answer is the completion the fake produces for mind when asked question.
func Answer(mind, question string) string {
	return fmt.Sprintf("%s answered: %s", mind, question)
}

// chatCompletions serves the OpenAI compatible chat endpoint. The model must name a mind
// of the default project; the answer is built by Answer from the last user message.
func (s *Server) chatCompletions(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendOpenAIError(w, http.StatusBadRequest, "invalid_request_error", "unable to parse request data")
		return
	}
	s.mu.Lock()
	_, known := s.projectMinds(DefaultProject)[req.Model]
	s.mu.Unlock()
	if !known {
		sendOpenAIError(w, http.StatusNotFound, "invalid_request_error", "mind "+req.Model+" not found")
		return
	}

	var question string
	for _, m := range req.Messages {
		if m.Role == "user" {
			question = m.Content
		}
	}
	answer := Answer(req.Model, question)

	if !req.Stream {
		sendJSON(w, http.StatusOK, map[string]any{
			"id":      "chatcmpl-fake",
			"object":  "chat.completion",
			"created": 0,
			"model":   req.Model,
			"choices": []map[string]any{{
				"index":         0,
				"message":       map[string]any{"role": "assistant", "content": answer},
				"finish_reason": "stop",
			}},
		})
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		sendOpenAIError(w, http.StatusInternalServerError, "server_error", "streaming not supported")
		return
	}
	w.Header().Set("Content-Type", "text/event-stream")
	w.WriteHeader(http.StatusOK)
	words := strings.SplitAfter(answer, " ")
	for i, word := range words {
		var finish any
		if i == len(words)-1 {
			finish = "stop"
		}
		chunk, _ := json.Marshal(map[string]any{
			"id":      "chatcmpl-fake",
			"object":  "chat.completion.chunk",
			"created": 0,
			"model":   req.Model,
			"choices": []map[string]any{{
				"index":         0,
				"delta":         map[string]any{"role": "assistant", "content": word},
				"finish_reason": finish,
			}},
		})
		fmt.Fprintf(w, "data: %s\n\n", chunk)
		flusher.Flush()
	}
	fmt.Fprint(w, "data: [DONE]\n\n")
	flusher.Flush()
}

func sendOpenAIError(w http.ResponseWriter, status int, typ, msg string) {
	var e openAIError
	e.Error.Message = msg
	e.Error.Type = typ
	sendJSON(w, status, e)
}
