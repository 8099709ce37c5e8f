//go:build js && wasm

package main

import (
	"encoding/json"
	"errors"
	"syscall/js"

	"holdem-recorder/history"
	"holdem-recorder/holdem"
	"holdem-recorder/locale"
)

type replayRequest struct {
	Spec history.HandSpec `json:"spec"`
	Lang string           `json:"lang,omitempty"`
}

type shareRequest struct {
	Code string `json:"code"`
	Lang string `json:"lang,omitempty"`
}

type replayResponse struct {
	OK         bool                 `json:"ok"`
	Spec       *history.HandSpec    `json:"spec,omitempty"`
	View       *holdem.View         `json:"view,omitempty"`
	Transcript string               `json:"transcript,omitempty"`
	ShareCode  string               `json:"share_code,omitempty"`
	Error      *history.ReplayError `json:"error,omitempty"`
}

func main() {
	js.Global().Set("__recorderReplay", js.FuncOf(func(this js.Value, args []js.Value) any {
		if len(args) < 1 {
			return mustJSON(failure("invalid_request", "missing request payload"))
		}
		var req replayRequest
		if err := json.Unmarshal([]byte(args[0].String()), &req); err != nil {
			return mustJSON(failure("invalid_json", err.Error()))
		}
		return mustJSON(replay(req.Spec, req.Lang))
	}))
	js.Global().Set("__recorderOpenShare", js.FuncOf(func(this js.Value, args []js.Value) any {
		if len(args) < 1 {
			return mustJSON(failure("invalid_request", "missing request payload"))
		}
		var req shareRequest
		if err := json.Unmarshal([]byte(args[0].String()), &req); err != nil {
			return mustJSON(failure("invalid_json", err.Error()))
		}
		spec, err := history.DecodeShareCode(req.Code)
		if err != nil {
			return mustJSON(fromError(err))
		}
		return mustJSON(replay(spec, req.Lang))
	}))
	js.Global().Set("__recorderLanguages", js.FuncOf(func(this js.Value, args []js.Value) any {
		return mustJSON(locale.Languages())
	}))

	select {}
}

// replay rebuilds the hand and answers every query the page needs.
func replay(spec history.HandSpec, lang string) replayResponse {
	h, err := history.Build(spec)
	if err != nil {
		return fromError(err)
	}
	exported := history.Export(h, spec.Title)
	view := h.View()
	resp := replayResponse{
		OK:         true,
		Spec:       &exported,
		View:       &view,
		Transcript: history.Transcript(h, spec.Title, locale.Lookup(lang)),
	}
	if code, err := history.EncodeShareCode(exported); err == nil {
		resp.ShareCode = code
	}
	return resp
}

func failure(reason, msg string) replayResponse {
	return replayResponse{OK: false, Error: &history.ReplayError{StepIndex: -1, Reason: reason, Message: msg}}
}

func fromError(err error) replayResponse {
	var replayErr *history.ReplayError
	if errors.As(err, &replayErr) {
		return replayResponse{OK: false, Error: replayErr}
	}
	return failure("replay_failed", err.Error())
}

func mustJSON(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		b2, _ := json.Marshal(failure("marshal_failed", err.Error()))
		return string(b2)
	}
	return string(b)
}
