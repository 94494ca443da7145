package api

import (
	"database/sql"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/gorilla/websocket"
	"github.com/pageturn/bookchat/internal/database"
	"github.com/pageturn/bookchat/internal/server"
	"github.com/pageturn/bookchat/internal/stats"
	"github.com/pageturn/bookchat/internal/types"
)

const (
	defaultUserListLimit = 20
	defaultBookListLimit = 50
	maxUploadSize        = 32 << 20
)

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Token string     `json:"token"`
	User  types.User `json:"user"`
}

type RegisterRequest struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
}

type UpdateProfileRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type SendMessageRequest struct {
	ReceiverId int    `json:"receiver_id"`
	Content    string `json:"content"`
}

type UserInfoResponse struct {
	User   types.User       `json:"user"`
	Status types.UserStatus `json:"status"`
}

func (s *BookChatApp) writeJson(w http.ResponseWriter, statusCode int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if v == nil {
		return
	}

	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Printf("json encode: %v", err)
	}
}

func wireUser(u database.User) types.User {
	return types.User{
		Id:           u.Id,
		Username:     u.Username,
		EmailAddress: u.EmailAddress,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}

func wireMessage(m database.Message) types.Message {
	return types.Message{
		Id:         m.Id,
		SenderId:   m.SenderId,
		ReceiverId: m.ReceiverId,
		Content:    m.Content,
		FileUrl:    m.FileUrl,
		FileType:   m.FileType,
		Timestamp:  m.Timestamp,
		IsRead:     m.IsRead,
	}
}

func wireStatus(st database.UserStatus) types.UserStatus {
	return types.UserStatus{
		UserId:   st.UserId,
		IsOnline: st.IsOnline,
		LastSeen: st.LastSeen,
	}
}

func (s *BookChatApp) health(w http.ResponseWriter, r *http.Request) {
	if err := s.db.Ping(); err != nil {
		errResp := NewInternalServerError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	s.writeJson(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *BookChatApp) createAccount(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	if req.Username == "" || req.Email == "" || req.Password == "" {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	pwdHash, err := hashPassword(req.Password)
	if err != nil {
		errResp := NewInternalServerError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	params := database.CreateAccountParams{
		Username:     req.Username,
		EmailAddress: req.Email,
		PasswordHash: pwdHash,
	}

	newUser, err := s.db.CreateAccount(params)
	if err != nil {
		errResp := NewInternalServerError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	s.writeJson(w, http.StatusCreated, wireUser(newUser))
}

func (s *BookChatApp) login(w http.ResponseWriter, r *http.Request) {
	var lr LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&lr); err != nil {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	if lr.Email == "" || lr.Password == "" {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	dbUser, err := s.db.GetAccountByEmail(lr.Email)
	if err != nil {
		var errResp *ApiError
		if errors.Is(err, sql.ErrNoRows) {
			errResp = NewNotFoundError()
		} else {
			errResp = NewInternalServerError(err)
		}
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	if !verifyPassword(dbUser.PasswordHash, lr.Password) {
		errResp := NewUnauthorizedError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	token, err := s.createJwtForSession(dbUser.Id, defaultJwtExpiration)
	if err != nil {
		errResp := NewInternalServerError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	s.writeJson(w, http.StatusOK, LoginResponse{
		Token: token,
		User:  wireUser(dbUser),
	})
}

func (s *BookChatApp) session(w http.ResponseWriter, r *http.Request) {
	userId, ok := UserId(r.Context())
	if !ok {
		errResp := NewUnauthorizedError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	user, err := s.db.GetAccountById(userId)
	if err != nil {
		var errResp *ApiError
		if errors.Is(err, sql.ErrNoRows) {
			errResp = NewNotFoundError()
		} else {
			errResp = NewInternalServerError(err)
		}
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	s.writeJson(w, http.StatusOK, wireUser(user))
}

// updateProfile replaces the account's username and password.
func (s *BookChatApp) updateProfile(w http.ResponseWriter, r *http.Request) {
	userId, ok := UserId(r.Context())
	if !ok {
		errResp := NewUnauthorizedError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	var req UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	if req.Username == "" || req.Password == "" {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	pwdHash, err := hashPassword(req.Password)
	if err != nil {
		errResp := NewInternalServerError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	dbUser, err := s.db.UpdateAccount(database.UpdateAccountParams{
		UserId:       userId,
		Username:     req.Username,
		PasswordHash: pwdHash,
	})
	if err != nil {
		var errResp *ApiError
		if errors.Is(err, sql.ErrNoRows) {
			errResp = NewNotFoundError()
		} else {
			errResp = NewInternalServerError(err)
		}
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	s.writeJson(w, http.StatusOK, wireUser(dbUser))
}

// listConversations returns the user's chat peers with the latest message
// exchanged and the count of unread messages from each.
func (s *BookChatApp) listConversations(w http.ResponseWriter, r *http.Request) {
	userId, ok := UserId(r.Context())
	if !ok {
		errResp := NewUnauthorizedError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	search := r.URL.Query().Get("search")
	users, err := s.db.ListAccounts(userId, search, defaultUserListLimit)
	if err != nil {
		errResp := NewInternalServerError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	conversations := make([]types.Conversation, 0, len(users))
	for _, u := range users {
		conv := types.Conversation{
			User:   wireUser(u),
			Status: types.UserStatus{UserId: u.Id},
		}

		if status, err := s.db.GetUserPresence(u.Id); err == nil {
			conv.Status = wireStatus(status)
		} else if !errors.Is(err, sql.ErrNoRows) {
			s.log.Println("GetUserPresence:", err)
		}

		last, err := s.db.GetLastMessage(userId, u.Id)
		switch {
		case err == nil:
			ts := last.Timestamp
			conv.LastMessage = last.Content
			conv.LastMessageTime = &ts
		case !errors.Is(err, sql.ErrNoRows):
			errResp := NewInternalServerError(err)
			s.writeJson(w, errResp.StatusCode, errResp)
			return
		}

		unread, err := s.db.CountUnread(u.Id, userId)
		if err != nil {
			errResp := NewInternalServerError(err)
			s.writeJson(w, errResp.StatusCode, errResp)
			return
		}
		conv.UnreadCount = unread

		conversations = append(conversations, conv)
	}

	s.writeJson(w, http.StatusOK, conversations)
}

// getConversation returns the full history with a peer in creation order
// and marks the peer's unread messages as read.
func (s *BookChatApp) getConversation(w http.ResponseWriter, r *http.Request) {
	userId, ok := UserId(r.Context())
	if !ok {
		errResp := NewUnauthorizedError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	peerId, err := strconv.Atoi(r.PathValue("userId"))
	if err != nil {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	dbMessages, err := s.db.GetConversation(userId, peerId)
	if err != nil {
		errResp := NewInternalServerError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	if err := s.db.MarkConversationRead(peerId, userId); err != nil {
		s.log.Println("MarkConversationRead:", err)
	}

	messages := make([]types.Message, 0, len(dbMessages))
	for _, m := range dbMessages {
		messages = append(messages, wireMessage(m))
	}

	s.writeJson(w, http.StatusOK, messages)
}

// sendMessage is the REST send path. The row is created first; only then
// are the real-time events fanned out to any registered connections.
func (s *BookChatApp) sendMessage(w http.ResponseWriter, r *http.Request) {
	userId, ok := UserId(r.Context())
	if !ok {
		errResp := NewUnauthorizedError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	var req SendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	if req.ReceiverId == 0 || req.Content == "" {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	if !s.db.UserExists(req.ReceiverId) {
		errResp := NewNotFoundError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	dbMsg, err := s.db.CreateMessage(database.CreateMessageParams{
		SenderId:   userId,
		ReceiverId: req.ReceiverId,
		Content:    req.Content,
	})
	if err != nil {
		errResp := NewInternalServerError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	msg := wireMessage(dbMsg)
	s.cs.DeliverMessage(msg)

	s.writeJson(w, http.StatusCreated, msg)
}

// fileTypeForExt maps a filename extension to the coarse attachment type
// tag stored with the message.
func fileTypeForExt(ext string) string {
	switch ext {
	case ".jpg", ".jpeg", ".png", ".gif", ".webp":
		return "image"
	case ".mp4", ".webm", ".ogg", ".mov":
		return "video"
	case ".pdf":
		return "pdf"
	default:
		return "file"
	}
}

// uploadFile accepts a multipart attachment with an optional caption and
// creates the message carrying it.
func (s *BookChatApp) uploadFile(w http.ResponseWriter, r *http.Request) {
	userId, ok := UserId(r.Context())
	if !ok {
		errResp := NewUnauthorizedError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	receiverId, err := strconv.Atoi(r.FormValue("receiver_id"))
	if err != nil || receiverId == 0 {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	if !s.db.UserExists(receiverId) {
		errResp := NewNotFoundError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}
	defer file.Close()

	if header.Filename == "" {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	sid, err := s.generateShortId()
	if err != nil {
		errResp := NewInternalServerError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	ext := strings.ToLower(filepath.Ext(header.Filename))
	filename := sid + ext

	destDir := filepath.Join(s.uploadDir, "chat")
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		errResp := NewInternalServerError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	dest, err := os.Create(filepath.Join(destDir, filename))
	if err != nil {
		errResp := NewInternalServerError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}
	defer dest.Close()

	if _, err := io.Copy(dest, file); err != nil {
		errResp := NewInternalServerError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	dbMsg, err := s.db.CreateMessage(database.CreateMessageParams{
		SenderId:   userId,
		ReceiverId: receiverId,
		Content:    r.FormValue("content"),
		FileUrl:    "/uploads/chat/" + filename,
		FileType:   fileTypeForExt(ext),
	})
	if err != nil {
		errResp := NewInternalServerError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	msg := wireMessage(dbMsg)
	s.cs.DeliverMessage(msg)
	s.stats.Incr(stats.FilesUploaded)

	s.writeJson(w, http.StatusCreated, msg)
}

func (s *BookChatApp) getUserInfo(w http.ResponseWriter, r *http.Request) {
	targetId, err := strconv.Atoi(r.PathValue("userId"))
	if err != nil {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	user, err := s.db.GetAccountById(targetId)
	if err != nil {
		var errResp *ApiError
		if errors.Is(err, sql.ErrNoRows) {
			errResp = NewNotFoundError()
		} else {
			errResp = NewInternalServerError(err)
		}
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	resp := UserInfoResponse{
		User:   wireUser(user),
		Status: types.UserStatus{UserId: user.Id},
	}

	if status, err := s.db.GetUserPresence(user.Id); err == nil {
		resp.Status = wireStatus(status)
	} else if !errors.Is(err, sql.ErrNoRows) {
		s.log.Println("GetUserPresence:", err)
	}

	s.writeJson(w, http.StatusOK, resp)
}

func (s *BookChatApp) listBooks(w http.ResponseWriter, r *http.Request) {
	search := r.URL.Query().Get("search")
	dbBooks, err := s.db.ListBooks(search, defaultBookListLimit)
	if err != nil {
		errResp := NewInternalServerError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	books := make([]types.Book, 0, len(dbBooks))
	for _, b := range dbBooks {
		books = append(books, wireBook(b))
	}

	s.writeJson(w, http.StatusOK, books)
}

func (s *BookChatApp) getBook(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	book, err := s.db.GetBook(id)
	if err != nil {
		var errResp *ApiError
		if errors.Is(err, sql.ErrNoRows) {
			errResp = NewNotFoundError()
		} else {
			errResp = NewInternalServerError(err)
		}
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	s.writeJson(w, http.StatusOK, wireBook(book))
}

func wireBook(b database.Book) types.Book {
	return types.Book{
		Id:          b.Id,
		Title:       b.Title,
		Author:      b.Author,
		Description: b.Description,
		PriceCents:  b.PriceCents,
		CoverUrl:    b.CoverUrl,
		CreatedAt:   b.CreatedAt,
	}
}

// serveWs completes the event-channel handshake. The token was already
// verified by authMiddleware from the token query parameter; the account
// lookup rejects tokens whose identity no longer resolves to a user.
func (s *BookChatApp) serveWs(w http.ResponseWriter, r *http.Request) {
	id, ok := UserId(r.Context())
	if !ok {
		errResp := NewUnauthorizedError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	user, err := s.db.GetAccountById(id)
	if err != nil {
		var errResp *ApiError
		if errors.Is(err, sql.ErrNoRows) {
			errResp = NewUnauthorizedError()
		} else {
			errResp = NewInternalServerError(err)
		}
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			// only allow connections from allowed origins
			origin := r.Header.Get("Origin")
			if origin == "" {
				// no Origin header means a non-browser client; the
				// allowlist exists to stop cross-site browser requests,
				// and browsers always send Origin on upgrade
				return true
			}

			return slices.Contains(s.allowedOrigins, origin)
		},
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Println("error upgrading connection:", err)
		return
	}

	client := server.NewClient(wireUser(user), conn, s.cs, s.log)

	s.cs.RegisterClient(client)
	go client.Write()
	go client.Read()
}
