package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/onecx/workspace-menu/internal/cache"
	"github.com/onecx/workspace-menu/internal/domain"
	"github.com/onecx/workspace-menu/internal/lock"
	"github.com/onecx/workspace-menu/internal/menu"
	"github.com/onecx/workspace-menu/internal/metric"
)

// maxBodyBytes limits request bodies of mutating endpoints.
const maxBodyBytes = 1 << 20

// MenuResponse is the body of a resolved menu.
type MenuResponse struct {
	Workspace string             `json:"workspace"`
	MenuKey   string             `json:"menuKey"`
	Lang      string             `json:"lang"`
	Items     []domain.MenuEntry `json:"items"`
	// Degraded is set when the menu could not be loaded and Items is empty.
	Degraded bool `json:"degraded,omitempty"`
}

// MoveBody is the request body of a move. Parent is empty or "root" for
// the top level; a missing Index appends.
type MoveBody struct {
	Key    string `json:"key"`
	Parent string `json:"parent,omitempty"`
	Index  *int   `json:"index,omitempty"`
	DryRun bool   `json:"dryRun,omitempty"`
}

// MoveResponse is the body returned by a move.
type MoveResponse struct {
	Item        domain.MenuItemRecord   `json:"item"`
	OldParentID string                  `json:"oldParentId,omitempty"`
	NewParentID string                  `json:"newParentId,omitempty"`
	Updates     []domain.PositionUpdate `json:"updates"`
	Planned     bool                    `json:"planned,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) routes() {
	s.mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	s.mux.HandleFunc("GET /readyz", s.handleReady)
	s.mux.Handle("GET /metrics", metric.GetHandlerForRegistry(s.registry))

	s.mux.HandleFunc("GET /workspaces/{workspace}/menus/{menu}", s.handleMenu)
	s.mux.HandleFunc("GET /workspaces/{workspace}/menus/{menu}/match", s.handleMatch)
	s.mux.HandleFunc("GET /workspaces/{workspace}/menus/{menu}/tree", s.handleTree)
	s.mux.HandleFunc("POST /workspaces/{workspace}/menus/{menu}/move", s.handleMove)
}

func menuRef(r *http.Request) domain.MenuRef {
	return domain.MenuRef{Workspace: r.PathValue("workspace"), MenuKey: r.PathValue("menu")}
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.ready != nil {
		if err := s.ready.Ready(r.Context()); err != nil {
			s.logger.Warn("readiness check failed", "error", err)
			writeError(w, http.StatusServiceUnavailable, err)
			return
		}
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleMenu(w http.ResponseWriter, r *http.Request) {
	ref := menuRef(r)
	lang := s.langs.Code(r)
	entries, degraded := s.entries(r, ref, lang)
	writeJSON(w, http.StatusOK, MenuResponse{
		Workspace: ref.Workspace,
		MenuKey:   ref.MenuKey,
		Lang:      lang,
		Items:     entries,
		Degraded:  degraded,
	})
}

func (s *Server) handleMatch(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Query().Get("path")
	if path == "" {
		writeError(w, http.StatusBadRequest, errors.New("path parameter is required"))
		return
	}
	entries, _ := s.entries(r, menuRef(r), s.langs.Code(r))
	m := domain.FindActiveItemBestMatch(entries, path)
	if m == nil {
		writeError(w, http.StatusNotFound, errors.New("no menu entry matches "+path))
		return
	}
	writeJSON(w, http.StatusOK, m)
}

func (s *Server) handleTree(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	state := domain.NewExpansionState(splitList(q.Get("expanded"))...)
	expandAll, _ := strconv.ParseBool(q.Get("expandAll"))

	nodes := s.svc.Tree(r.Context(), menuRef(r), state)
	if expandAll {
		state.ExpandAll(nodes)
		state.Apply(nodes)
	}
	if nodes == nil {
		nodes = []*domain.TreeNode{}
	}
	writeJSON(w, http.StatusOK, nodes)
}

func (s *Server) handleMove(w http.ResponseWriter, r *http.Request) {
	ref := menuRef(r)

	var body MoveBody
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	req, err := body.request()
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	result, err := s.svc.Move(r.Context(), ref, req, !body.DryRun)
	if err != nil {
		s.logger.Warn("move failed", "workspace", ref.Workspace, "menu", ref.MenuKey, "key", body.Key, "error", err)
		writeError(w, statusFor(err), err)
		return
	}

	if !body.DryRun {
		if err := s.cache.DeletePrefix(r.Context(), cache.MenuPrefix(ref.Workspace, ref.MenuKey)); err != nil {
			s.logger.Warn("menu cache invalidation failed", "workspace", ref.Workspace, "menu", ref.MenuKey, "error", err)
		}
	}

	updates := result.Updates
	if updates == nil {
		updates = []domain.PositionUpdate{}
	}
	writeJSON(w, http.StatusOK, MoveResponse{
		Item:        result.Item,
		OldParentID: result.OldParentID,
		NewParentID: result.NewParentID,
		Updates:     updates,
		Planned:     body.DryRun,
	})
}

func (b MoveBody) request() (menu.MoveRequest, error) {
	src, err := domain.ParseSelector(b.Key)
	if err != nil {
		return menu.MoveRequest{}, err
	}
	req := menu.MoveRequest{Source: src, Index: menu.AppendIndex}
	if b.Index != nil {
		if *b.Index < 0 {
			return menu.MoveRequest{}, errors.New("index must not be negative")
		}
		req.Index = *b.Index
	}
	if b.Parent != "" && !domain.IsRootSelector(b.Parent) {
		target, err := domain.ParseSelector(b.Parent)
		if err != nil {
			return menu.MoveRequest{}, err
		}
		req.Target = &target
	}
	return req, nil
}

// entries returns the resolved menu from the cache, loading and caching it
// on a miss. Degraded loads are returned but never cached.
func (s *Server) entries(r *http.Request, ref domain.MenuRef, lang string) ([]domain.MenuEntry, bool) {
	ctx := r.Context()
	key := cache.Key(ref.Workspace, ref.MenuKey, lang)

	var entries []domain.MenuEntry
	ok, err := cache.GetJSON(ctx, s.cache, key, &entries)
	if err != nil {
		s.logger.Warn("menu cache read failed", "key", key, "error", err)
	}
	if ok {
		s.cacheResults.Increment("hit")
		return nonNil(entries), false
	}
	s.cacheResults.Increment("miss")

	res := s.svc.Load(ctx, ref)
	entries = nonNil(s.svc.Construct(res.Items, lang))
	if res.Degraded {
		return entries, true
	}
	if err := cache.SetJSON(ctx, s.cache, key, entries); err != nil {
		s.logger.Warn("menu cache write failed", "key", key, "error", err)
	}
	return entries, false
}

func nonNil(entries []domain.MenuEntry) []domain.MenuEntry {
	if entries == nil {
		return []domain.MenuEntry{}
	}
	return entries
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidSelector), errors.Is(err, domain.ErrAmbiguousSelector):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrNodeNotFound), errors.Is(err, domain.ErrParentNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrCycleDetected), errors.Is(err, lock.ErrAlreadyLocked):
		return http.StatusConflict
	case errors.Is(err, menu.ErrNotConfigured):
		return http.StatusNotImplemented
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
