// Package server exposes the device's configuration and control surface
// to the GUI over a small localhost-only JSON API: one POST route per
// command, mirroring the original app's IPC command set.
package server

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/matthewpi/redragon-deck/internal/action"
	"github.com/matthewpi/redragon-deck/internal/config"
	"github.com/matthewpi/redragon-deck/internal/refresh"
	"github.com/matthewpi/redragon-deck/internal/session"
)

const udevRulesPath = "/etc/udev/rules.d/99-redragon.rules"
const udevRulesContent = `SUBSYSTEM=="usb", ATTR{idVendor}=="0200", ATTR{idProduct}=="1000", MODE="0666"`

// iconMIME maps a listable icon extension to the MIME type used in the
// get_icon_data data-URL response. The render package decodes PNG, JPEG
// and GIF (first frame only); it has no WebP decoder, so a WebP icon is
// listable and previewable here but renders on the key as the button's
// solid background color.
var iconMIME = map[string]string{
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".gif":  "image/gif",
	".webp": "image/webp",
}

// Server binds the command surface to a single localhost address.
type Server struct {
	log *zap.SugaredLogger

	http *http.Server

	store      *config.Store
	sess       *session.Session
	refresh    *refresh.Signal
	dispatcher *action.Dispatcher
	iconsDir   string
}

// New builds a Server listening on addr (e.g. "127.0.0.1:8765"). Call Run
// to start serving.
func New(addr string, store *config.Store, sess *session.Session, sig *refresh.Signal, dispatcher *action.Dispatcher, iconsDir string, log *zap.SugaredLogger) *Server {
	s := &Server{
		log:        log,
		store:      store,
		sess:       sess,
		refresh:    sig,
		dispatcher: dispatcher,
		iconsDir:   iconsDir,
	}

	r := mux.NewRouter()
	sr := r.Methods("POST").Subrouter()

	sr.HandleFunc("/get_config", s.handleGetConfig)
	sr.HandleFunc("/save_full_config", s.handleSaveFullConfig)
	sr.HandleFunc("/get_status", s.handleGetStatus)
	sr.HandleFunc("/connect_device", s.handleConnectDevice)
	sr.HandleFunc("/set_page", s.handleSetPage)
	sr.HandleFunc("/add_page", s.handleAddPage)
	sr.HandleFunc("/delete_page", s.handleDeletePage)
	sr.HandleFunc("/update_page_name", s.handleUpdatePageName)
	sr.HandleFunc("/update_button", s.handleUpdateButton)
	sr.HandleFunc("/set_brightness_level", s.handleSetBrightnessLevel)
	sr.HandleFunc("/clear_page_buttons", s.handleClearPageButtons)
	sr.HandleFunc("/run_command", s.handleRunCommand)
	sr.HandleFunc("/refresh_device", s.handleRefreshDevice)
	sr.HandleFunc("/load_current_page", s.handleRefreshDevice)
	sr.HandleFunc("/get_icons_path", s.handleGetIconsPath)
	sr.HandleFunc("/list_icons", s.handleListIcons)
	sr.HandleFunc("/get_icon_data", s.handleGetIconData)
	sr.HandleFunc("/save_icon", s.handleSaveIcon)
	sr.HandleFunc("/reset_config", s.handleResetConfig)
	sr.HandleFunc("/setup_udev_rules", s.handleSetupUdevRules)
	sr.HandleFunc("/check_udev_rules", s.handleCheckUdevRules)
	sr.HandleFunc("/get_preset_commands", s.handleGetPresetCommands)

	var h http.Handler = r
	h = CORS(localhostValidator())(h)
	h = handlers.LoggingHandler(zapWriter{log}, h)
	h = s.logRequest(h)

	s.http = &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

// Run blocks serving HTTP until Close is called.
func (s *Server) Run() error {
	return s.http.ListenAndServe()
}

// Close shuts the HTTP listener down.
func (s *Server) Close() error {
	return s.http.Close()
}

func (s *Server) logRequest(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.log.Debugw("server: request", "method", r.Method, "path", r.URL.Path)
		h.ServeHTTP(w, r)
	})
}

// zapWriter adapts a SugaredLogger to the io.Writer gorilla/handlers'
// LoggingHandler wants for its Apache-format access log line.
type zapWriter struct{ log *zap.SugaredLogger }

func (z zapWriter) Write(p []byte) (int, error) {
	z.log.Infow("server: access", "line", strings.TrimRight(string(p), "\n"))
	return len(p), nil
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeError(w http.ResponseWriter, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusBadRequest)
	_ = json.NewEncoder(w).Encode(errorResponse{Error: err.Error()})
}

func decodeBody(r *http.Request, v interface{}) error {
	if r.Body == nil {
		return nil
	}
	defer r.Body.Close()
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("server: bad request body: %w", err)
	}
	return nil
}

func (s *Server) handleGetConfig(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.store.Snapshot())
}

func (s *Server) handleSaveFullConfig(w http.ResponseWriter, r *http.Request) {
	var cfg config.Config
	if err := decodeBody(r, &cfg); err != nil {
		writeError(w, err)
		return
	}
	if err := s.store.SaveFullConfig(cfg); err != nil {
		writeError(w, err)
		return
	}
	s.refresh.Raise()
	writeJSON(w, struct{}{})
}

type statusResponse struct {
	Connected bool `json:"connected"`
}

func (s *Server) handleGetStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, statusResponse{Connected: s.sess.Connected()})
}

func (s *Server) handleConnectDevice(w http.ResponseWriter, r *http.Request) {
	// The session loop owns reconnection; this RPC just reports its
	// current state, matching the original app's polling-based UI.
	writeJSON(w, statusResponse{Connected: s.sess.Connected()})
}

type pageIndexRequest struct {
	Index int `json:"index"`
}

func (s *Server) handleSetPage(w http.ResponseWriter, r *http.Request) {
	var req pageIndexRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if err := s.store.SetPage(req.Index); err != nil {
		writeError(w, err)
		return
	}
	s.refresh.Raise()
	writeJSON(w, struct{}{})
}

type nameRequest struct {
	Name string `json:"name"`
}

type pageIndexResult struct {
	Index int `json:"index"`
}

func (s *Server) handleAddPage(w http.ResponseWriter, r *http.Request) {
	var req nameRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	idx, err := s.store.AddPage(req.Name)
	if err != nil {
		writeError(w, err)
		return
	}
	s.refresh.Raise()
	writeJSON(w, pageIndexResult{Index: idx})
}

func (s *Server) handleDeletePage(w http.ResponseWriter, r *http.Request) {
	var req pageIndexRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if err := s.store.DeletePage(req.Index); err != nil {
		writeError(w, err)
		return
	}
	s.refresh.Raise()
	writeJSON(w, struct{}{})
}

type updatePageNameRequest struct {
	Index int    `json:"index"`
	Name  string `json:"name"`
}

func (s *Server) handleUpdatePageName(w http.ResponseWriter, r *http.Request) {
	var req updatePageNameRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if err := s.store.UpdatePageName(req.Index, req.Name); err != nil {
		writeError(w, err)
		return
	}
	s.refresh.Raise()
	writeJSON(w, struct{}{})
}

type updateButtonRequest struct {
	PageIndex int                  `json:"pageIndex"`
	ButtonID  string               `json:"buttonId"`
	Button    config.ButtonConfig `json:"button"`
}

func (s *Server) handleUpdateButton(w http.ResponseWriter, r *http.Request) {
	var req updateButtonRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if err := s.store.UpdateButton(req.PageIndex, req.ButtonID, req.Button); err != nil {
		writeError(w, err)
		return
	}
	s.refresh.Raise()
	writeJSON(w, struct{}{})
}

type brightnessRequest struct {
	Brightness int `json:"brightness"`
}

func (s *Server) handleSetBrightnessLevel(w http.ResponseWriter, r *http.Request) {
	var req brightnessRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if err := s.store.SetBrightnessLevel(req.Brightness); err != nil {
		writeError(w, err)
		return
	}
	s.refresh.Raise()
	writeJSON(w, struct{}{})
}

func (s *Server) handleClearPageButtons(w http.ResponseWriter, r *http.Request) {
	var req pageIndexRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if err := s.store.ClearPageButtons(req.Index); err != nil {
		writeError(w, err)
		return
	}
	s.refresh.Raise()
	writeJSON(w, struct{}{})
}

type commandRequest struct {
	Command string `json:"command"`
}

func (s *Server) handleRunCommand(w http.ResponseWriter, r *http.Request) {
	var req commandRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	s.dispatcher.RunCommand(req.Command)
	writeJSON(w, struct{}{})
}

// handleRefreshDevice backs both refresh_device and load_current_page:
// both just need the session to reload the current page onto the pad,
// which the refresh signal already coalesces.
func (s *Server) handleRefreshDevice(w http.ResponseWriter, r *http.Request) {
	s.refresh.Raise()
	writeJSON(w, struct{}{})
}

type pathResponse struct {
	Path string `json:"path"`
}

func (s *Server) handleGetIconsPath(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, pathResponse{Path: s.iconsDir})
}

type iconListResponse struct {
	Icons []string `json:"icons"`
}

func (s *Server) handleListIcons(w http.ResponseWriter, r *http.Request) {
	entries, err := os.ReadDir(s.iconsDir)
	if err != nil {
		if os.IsNotExist(err) {
			writeJSON(w, iconListResponse{Icons: []string{}})
			return
		}
		writeError(w, err)
		return
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if _, ok := iconMIME[strings.ToLower(filepath.Ext(e.Name()))]; ok {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	writeJSON(w, iconListResponse{Icons: names})
}

type filenameRequest struct {
	Filename string `json:"filename"`
}

type iconDataResponse struct {
	DataURL string `json:"dataUrl"`
}

func (s *Server) handleGetIconData(w http.ResponseWriter, r *http.Request) {
	var req filenameRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	mime, ok := iconMIME[strings.ToLower(filepath.Ext(req.Filename))]
	if !ok {
		writeError(w, fmt.Errorf("server: unsupported icon extension: %s", req.Filename))
		return
	}
	data, err := os.ReadFile(filepath.Join(s.iconsDir, req.Filename))
	if err != nil {
		writeError(w, fmt.Errorf("server: icon not found: %s", req.Filename))
		return
	}
	writeJSON(w, iconDataResponse{
		DataURL: "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data),
	})
}

type saveIconRequest struct {
	SourcePath string `json:"sourcePath"`
	IconName   string `json:"iconName"`
}

type saveIconResponse struct {
	Filename string `json:"filename"`
}

func (s *Server) handleSaveIcon(w http.ResponseWriter, r *http.Request) {
	var req saveIconRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	src, err := os.ReadFile(req.SourcePath)
	if err != nil {
		writeError(w, fmt.Errorf("server: source file does not exist: %s", req.SourcePath))
		return
	}
	if err := os.MkdirAll(s.iconsDir, 0o755); err != nil {
		writeError(w, err)
		return
	}

	name := req.IconName
	if name == "" {
		name = fmt.Sprintf("custom_%d.png", unixNow())
	}
	if err := os.WriteFile(filepath.Join(s.iconsDir, name), src, 0o644); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, saveIconResponse{Filename: name})
}

// unixNow is a seam so the auto-generated icon name stays deterministic
// under test; production callers always get the real wall clock.
var unixNow = func() int64 { return time.Now().Unix() }

func (s *Server) handleResetConfig(w http.ResponseWriter, r *http.Request) {
	if err := s.store.ResetConfig(); err != nil {
		writeError(w, err)
		return
	}
	if err := emptyDir(s.iconsDir); err != nil {
		s.log.Warnw("server: failed to empty icons directory on reset", "error", err)
	}
	s.refresh.Raise()
	writeJSON(w, struct{}{})
}

func emptyDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	for _, e := range entries {
		if err := os.RemoveAll(filepath.Join(dir, e.Name())); err != nil {
			return err
		}
	}
	return nil
}

type boolResponse struct {
	OK bool `json:"ok"`
}

func (s *Server) handleSetupUdevRules(w http.ResponseWriter, r *http.Request) {
	if _, err := os.Stat(udevRulesPath); err == nil {
		writeJSON(w, boolResponse{OK: true})
		return
	}
	script := fmt.Sprintf("echo '%s' > %s && udevadm control --reload-rules && udevadm trigger", udevRulesContent, udevRulesPath)
	if err := execPkexec(script); err != nil {
		writeError(w, fmt.Errorf("server: failed to set up udev rules: %w", err))
		return
	}
	writeJSON(w, boolResponse{OK: true})
}

func (s *Server) handleCheckUdevRules(w http.ResponseWriter, r *http.Request) {
	_, err := os.Stat(udevRulesPath)
	writeJSON(w, boolResponse{OK: err == nil})
}

func (s *Server) handleGetPresetCommands(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, presetCommands)
}
