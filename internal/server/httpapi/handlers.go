package httpapi

import (
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/DAC098/tj2/internal/common"
	"github.com/DAC098/tj2/internal/server/models"
	"github.com/DAC098/tj2/internal/server/services"
)

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type tokenPairResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type attachedFileRequest struct {
	Key  string `json:"key"`
	Name string `json:"name"`
	MIME string `json:"mime"`
}

type saveEntryRequest struct {
	Id           string                `json:"id"`
	Title        string                `json:"title"`
	Contents     string                `json:"contents"`
	Date         time.Time             `json:"date"`
	Tags         json.RawMessage       `json:"tags"`
	CustomFields json.RawMessage       `json:"custom_fields"`
	Attached     []attachedFileRequest `json:"attached"`
}

type entryResponse struct {
	Id           string          `json:"id"`
	Title        string          `json:"title"`
	Contents     string          `json:"contents"`
	Date         time.Time       `json:"date"`
	Tags         json.RawMessage `json:"tags,omitempty"`
	CustomFields json.RawMessage `json:"custom_fields,omitempty"`
}

type fileResponse struct {
	Id          string `json:"id"`
	EntryId     string `json:"entry_id"`
	Name        string `json:"name"`
	MIME        string `json:"mime"`
	Size        int64  `json:"size"`
	Status      string `json:"status"`
	AttachedKey string `json:"attached_key,omitempty"`
}

type saveEntryResponse struct {
	Entry entryResponse  `json:"entry"`
	Files []fileResponse `json:"files"`
}

func fileToResponse(f *models.File) fileResponse {
	return fileResponse{
		Id:          f.ID,
		EntryId:     f.EntryID,
		Name:        f.Name,
		MIME:        f.MIME,
		Size:        f.Size,
		Status:      f.Status,
		AttachedKey: f.AttachedKey,
	}
}

func (s *Server) handlePing(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "OK"})
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, common.ErrorValidation)
		return
	}

	if _, err := s.users.Register(r.Context(), req.Username, req.Password); err != nil {
		s.log.Warn(r.Context(), "registration failed", "username", req.Username, "error", err)
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{"status": "created"})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, common.ErrorValidation)
		return
	}

	pair, err := s.users.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, tokenPairResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	})
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.RefreshToken == "" {
		writeError(w, http.StatusBadRequest, common.ErrorValidation)
		return
	}

	pair, err := s.users.RefreshToken(r.Context(), req.RefreshToken)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, tokenPairResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	})
}

func (s *Server) handleSaveEntry(w http.ResponseWriter, r *http.Request) {
	var req saveEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, common.ErrorValidation)
		return
	}

	entry := &models.Entry{
		ID:           req.Id,
		Title:        req.Title,
		Contents:     req.Contents,
		Date:         req.Date,
		Tags:         normalizeJSONArray(req.Tags),
		CustomFields: normalizeJSONArray(req.CustomFields),
	}

	attached := make([]services.AttachmentRequest, 0, len(req.Attached))
	for _, a := range req.Attached {
		attached = append(attached, services.AttachmentRequest{Key: a.Key, Name: a.Name, MIME: a.MIME})
	}

	saved, placeholders, err := s.entries.Save(r.Context(), userID(r.Context()), entry, attached)
	if err != nil {
		s.log.Warn(r.Context(), "entry save failed", "entry_id", req.Id, "error", err)
		writeServiceError(w, err)
		return
	}

	resp := saveEntryResponse{
		Entry: entryResponse{
			Id:           saved.ID,
			Title:        saved.Title,
			Contents:     saved.Contents,
			Date:         saved.Date,
			Tags:         json.RawMessage(saved.Tags),
			CustomFields: json.RawMessage(saved.CustomFields),
		},
		Files: make([]fileResponse, 0, len(placeholders)),
	}
	for _, f := range placeholders {
		resp.Files = append(resp.Files, fileToResponse(f))
	}

	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleUploadFile(w http.ResponseWriter, r *http.Request) {
	entryID := r.PathValue("id")
	fileID := r.PathValue("fileID")

	payload, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.maxUploadBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, common.ErrorValidation)
		return
	}

	file, err := s.files.StoreUpload(r.Context(), userID(r.Context()), entryID, fileID, r.Header.Get("Content-Type"), payload)
	if err != nil {
		s.log.Warn(r.Context(), "upload failed", "entry_id", entryID, "file_id", fileID, "error", err)
		writeServiceError(w, err)
		return
	}

	w.Header().Set(common.AttachmentKeyHeaderName, file.AttachedKey)
	writeJSON(w, http.StatusOK, fileToResponse(file))
}

func (s *Server) handleDownloadFile(w http.ResponseWriter, r *http.Request) {
	entryID := r.PathValue("id")
	fileID := r.PathValue("fileID")

	url, err := s.files.DownloadURL(r.Context(), userID(r.Context()), entryID, fileID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	http.Redirect(w, r, url, http.StatusTemporaryRedirect)
}

// normalizeJSONArray keeps the jsonb columns non-null for absent fields.
func normalizeJSONArray(raw json.RawMessage) []byte {
	if len(raw) == 0 {
		return []byte("[]")
	}
	return raw
}
