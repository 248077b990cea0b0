// internal/httpserver/routes_session.go
//
// HTTP routes for one player's session.
//   - POST   /session               → new session on the title screen (sets cookie)
//   - GET    /session               → current snapshot
//   - POST   /session/start|region|mode|submit|home|navigate → menu and answer intents
//   - POST   /session/tray, DELETE /session/tray[/{index}]   → tray edits
//   - POST   /session/speak, GET /session/speech, POST /session/speech/done → announcements
//
// Every intent answers with the resulting snapshot; intents the state machine ignores
// answer 409 with the unchanged snapshot.

package httpserver

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/hlog"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/duoshao/internal/game"
	"github.com/robalobadob/duoshao/internal/play"
	"github.com/robalobadob/duoshao/internal/regions"
	"github.com/robalobadob/duoshao/internal/speech"
)

// mountSession registers all /session routes.
func (s *Server) mountSession() {
	s.r.Route("/session", func(r chi.Router) {
		r.Post("/", s.handleNewSession)

		r.Group(func(r chi.Router) {
			r.Use(s.withSession)
			r.Get("/", func(w http.ResponseWriter, r *http.Request) {
				_ = json.NewEncoder(w).Encode(tableFrom(r).Snapshot())
			})
			r.Post("/start", intent((*play.Table).Start))
			r.Post("/region", s.handleRegion)
			r.Post("/mode", s.handleMode)
			r.Post("/tray", s.handleAddTray)
			r.Delete("/tray", intent((*play.Table).ClearTray))
			r.Delete("/tray/{index}", s.handleRemoveTray)
			r.Post("/submit", intent((*play.Table).Submit))
			r.Post("/home", intent((*play.Table).Home))
			r.Post("/navigate", s.handleNavigate)
			r.Post("/speak", s.handleSpeak)
			r.Get("/speech", s.handlePendingSpeech)
			r.Post("/speech/done", s.handleSpeechDone)
		})
	})
}

// intent adapts a body-less Table intent to a handler.
func intent(fn func(*play.Table) (game.Snapshot, bool)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snap, ok := fn(tableFrom(r))
		writeSnapshot(w, snap, ok)
	}
}

// -----------------------------------------------------------------------------
// POST /session

// newSessionRes is returned by POST /session.
type newSessionRes struct {
	Token    string        `json:"token"`
	Snapshot game.Snapshot `json:"snapshot"`
}

// handleNewSession creates a table, stores it and hands out its token.
// A previous session named by the caller's token is dropped.
func (s *Server) handleNewSession(w http.ResponseWriter, r *http.Request) {
	if raw := s.bearerOrCookie(r); raw != "" {
		if old, err := s.tokens.parse(raw); err == nil {
			_ = s.store.Delete(r.Context(), old.SID)
		}
	}

	t := s.newTable(uuid.NewString())
	if err := s.store.Save(r.Context(), t); err != nil {
		hlog.FromRequest(r).Error().Err(err).Msg("save session")
		http.Error(w, `{"error":"save_failed"}`, http.StatusInternalServerError)
		return
	}
	tok, exp, err := s.tokens.sign(t.ID())
	if err != nil {
		http.Error(w, `{"error":"sign_failed"}`, http.StatusInternalServerError)
		return
	}
	s.setSessionCookie(w, tok, exp)
	hlog.FromRequest(r).Info().Str("session", t.ID()).Msg("session created")

	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(newSessionRes{Token: tok, Snapshot: t.Snapshot()})
}

// newTable wires a table whose announcements are voiced by the browser.
func (s *Server) newTable(id string) *play.Table {
	voice := speech.NewCoalescer(speech.NewHandoff(s.cfg.SpeechTimeout), s.cfg.SpeechLeadIn)
	return play.NewTable(id, s.engine, play.Options{
		Scheduler: s.sched,
		Voice:     voice,
		OnChange: func(snap game.Snapshot) {
			log.Debug().Str("session", snap.SessionID).Str("view", string(snap.View)).
				Uint64("version", snap.Version).Msg("session changed")
		},
	})
}

// -----------------------------------------------------------------------------
// menu intents

type regionReq struct {
	Region string `json:"region" validate:"required"`
}

func (s *Server) handleRegion(w http.ResponseWriter, r *http.Request) {
	var req regionReq
	if err := decode(r, &req); err != nil {
		http.Error(w, `{"error":"bad_request"}`, http.StatusBadRequest)
		return
	}
	snap, ok := tableFrom(r).SelectRegion(regions.ID(req.Region))
	writeSnapshot(w, snap, ok)
}

type modeReq struct {
	Mode string `json:"mode" validate:"required,oneof=survival challenge oni"`
}

func (s *Server) handleMode(w http.ResponseWriter, r *http.Request) {
	var req modeReq
	if err := decode(r, &req); err != nil {
		http.Error(w, `{"error":"bad_request"}`, http.StatusBadRequest)
		return
	}
	m, _ := game.ParseMode(req.Mode)
	snap, ok := tableFrom(r).SelectMode(m)
	writeSnapshot(w, snap, ok)
}

type navigateReq struct {
	View string `json:"view" validate:"required,oneof=title regionSelect modeSelect playing result info ranking"`
}

func (s *Server) handleNavigate(w http.ResponseWriter, r *http.Request) {
	var req navigateReq
	if err := decode(r, &req); err != nil {
		http.Error(w, `{"error":"bad_request"}`, http.StatusBadRequest)
		return
	}
	snap, ok := tableFrom(r).NavigateTo(game.View(req.View))
	writeSnapshot(w, snap, ok)
}

// -----------------------------------------------------------------------------
// tray

type trayReq struct {
	Value int `json:"value" validate:"gt=0"`
}

func (s *Server) handleAddTray(w http.ResponseWriter, r *http.Request) {
	var req trayReq
	if err := decode(r, &req); err != nil {
		http.Error(w, `{"error":"bad_request"}`, http.StatusBadRequest)
		return
	}
	snap, ok := tableFrom(r).AddDenomination(req.Value)
	writeSnapshot(w, snap, ok)
}

func (s *Server) handleRemoveTray(w http.ResponseWriter, r *http.Request) {
	i, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		http.Error(w, `{"error":"bad_index"}`, http.StatusBadRequest)
		return
	}
	snap, ok := tableFrom(r).RemoveTrayItem(i)
	writeSnapshot(w, snap, ok)
}

// -----------------------------------------------------------------------------
// speech

// speakRes is returned by POST /session/speak.
type speakRes struct {
	Utterance speech.Utterance `json:"utterance"`
	Snapshot  game.Snapshot    `json:"snapshot"`
}

func (s *Server) handleSpeak(w http.ResponseWriter, r *http.Request) {
	u, snap, ok := tableFrom(r).Speak()
	if !ok {
		writeSnapshot(w, snap, false)
		return
	}
	_ = json.NewEncoder(w).Encode(speakRes{Utterance: u, Snapshot: snap})
}

// pendingRes is returned by GET /session/speech; Utterance is null when idle.
type pendingRes struct {
	Utterance *speech.Utterance `json:"utterance"`
}

func (s *Server) handlePendingSpeech(w http.ResponseWriter, r *http.Request) {
	var res pendingRes
	if u, ok := tableFrom(r).PendingSpeech(); ok {
		res.Utterance = &u
	}
	_ = json.NewEncoder(w).Encode(res)
}

type speechDoneReq struct {
	ID uint64 `json:"id" validate:"gt=0"`
}

// handleSpeechDone acknowledges the browser finished (or failed) voicing an utterance.
// Acks for utterances that are no longer pending report ok=false.
func (s *Server) handleSpeechDone(w http.ResponseWriter, r *http.Request) {
	var req speechDoneReq
	if err := decode(r, &req); err != nil {
		http.Error(w, `{"error":"bad_request"}`, http.StatusBadRequest)
		return
	}
	ok := tableFrom(r).SpeechDone(req.ID)
	_ = json.NewEncoder(w).Encode(map[string]bool{"ok": ok})
}
