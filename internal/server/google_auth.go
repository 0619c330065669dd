package server

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"healspace-backend/internal/store"
)

// GET /api/auth/status
// Returns { authenticated: bool, email?: string, name?: string }
func (s *Server) handleAuthStatus(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	sid := getSessionID(r)

	resp := map[string]any{"authenticated": false}
	if sid != "" {
		if p, ok := s.store.GetProfile(sid); ok {
			resp["authenticated"] = true
			resp["email"] = p.Email
			if p.Name != "" {
				resp["name"] = p.Name
			}
			// Surface the signed-up account when one exists so the
			// frontend can gate pending_consent / pending_approval users.
			if acc, err := s.accountStore().GetAccount(p.Email); err == nil {
				resp["accountStatus"] = acc.Status
				resp["role"] = acc.Role
			}
			_ = json.NewEncoder(w).Encode(resp)
			return
		}
	}
	// A persisted token without a session profile still counts as signed in.
	if tok, _ := s.tokenStore.Read(); tok != nil {
		resp["authenticated"] = true
	}
	_ = json.NewEncoder(w).Encode(resp)
}

// GET /api/auth/google
// Initiates OAuth flow and returns { url } to redirect the browser
func (s *Server) handleGoogleAuth(w http.ResponseWriter, r *http.Request) {
	if s.oauthCfg == nil || s.oauthCfg.ClientID == "" || s.oauthCfg.ClientSecret == "" {
		s.writeError(w, http.StatusBadRequest, "google oauth not configured")
		return
	}
	sid := s.getOrCreateSessionID(r, w)
	state := randomState()
	s.store.SetOAuthState(sid, state)
	url := s.oauthCfg.AuthCodeURL(state)
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Session-Id", sid)
	_ = json.NewEncoder(w).Encode(map[string]string{"url": url, "sessionId": sid})
}

// GET /api/auth/google/callback?code=...&state=...
// Exchanges the code for a token, resolves the Google profile, and redirects
// back to the frontend.
func (s *Server) handleGoogleCallback(w http.ResponseWriter, r *http.Request) {
	if s.oauthCfg == nil {
		s.writeError(w, http.StatusBadRequest, "google oauth not configured")
		return
	}
	state := r.URL.Query().Get("state")
	code := r.URL.Query().Get("code")
	if state == "" || code == "" {
		s.writeError(w, http.StatusBadRequest, "missing state or code")
		return
	}
	sid := s.store.GetSessionByOAuthState(state)
	if sid == "" || s.store.GetOAuthState(sid) != state {
		s.writeError(w, http.StatusBadRequest, "invalid oauth state")
		return
	}

	ctx := r.Context()
	tok, err := s.oauthCfg.Exchange(ctx, code)
	if err != nil {
		s.writeError(w, http.StatusBadGateway, "token exchange failed")
		return
	}

	profile := fetchGoogleProfile(tok.AccessToken)
	if profile.Email == "" {
		s.writeError(w, http.StatusInternalServerError, "failed to fetch Google profile")
		return
	}

	if err := s.tokenStore.Write(&store.GoogleToken{
		AccessToken:  tok.AccessToken,
		TokenType:    tok.TokenType,
		RefreshToken: tok.RefreshToken,
	}); err != nil {
		s.writeError(w, http.StatusInternalServerError, "token persist failed")
		return
	}

	s.store.SetProfile(sid, profile)
	s.store.ClearOAuthState(sid)

	// Set session cookie so popup and main window share the same session
	SetSessionCookie(w, sid)

	redirectURL := fmt.Sprintf("%s?auth=success", s.cfg.FrontendURL)
	http.Redirect(w, r, redirectURL, http.StatusFound)
}

func randomState() string {
	var b [24]byte
	_, _ = rand.Read(b[:])
	return base64.RawURLEncoding.EncodeToString(b[:])
}

// Minimal call to resolve the signed-in Google account; stdlib client is enough.
func fetchGoogleProfile(accessToken string) store.Profile {
	req, _ := http.NewRequest("GET", "https://www.googleapis.com/oauth2/v2/userinfo", nil)
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", accessToken))
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return store.Profile{}
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return store.Profile{}
	}
	var body struct {
		Email string `json:"email"`
		Name  string `json:"name"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return store.Profile{}
	}
	return store.Profile{
		Email: strings.TrimSpace(body.Email),
		Name:  strings.TrimSpace(body.Name),
	}
}
