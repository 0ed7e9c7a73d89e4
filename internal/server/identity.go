package server

import (
	"context"
	"net/http"
)

// identity resolves the requester to a database user and stores both the
// user id and the display identity in the request context. Without a WhoIs
// layer every request maps to the configured dev user.
func (s *Server) identity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		info := UserInfo{Login: s.devUser, DisplayName: "Local Dev User"}
		if s.whois != nil {
			resolved, err := s.whois(r)
			if err != nil {
				s.log.Error("identity lookup failed", "error", err)
				http.Error(w, `{"error":"identity lookup failed"}`, http.StatusForbidden)
				return
			}
			info = resolved
		}

		uid, err := s.resolveUserID(r.Context(), info)
		if err != nil {
			s.log.Error("resolving user", "login", info.Login, "error", err)
			http.Error(w, `{"error":"user lookup failed"}`, http.StatusInternalServerError)
			return
		}

		ctx := context.WithValue(r.Context(), userIDKey, uid)
		ctx = context.WithValue(ctx, userInfoKey, info)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// resolveUserID maps a login to its users row, creating it on first sight.
// Resolved ids are cached so the identity middleware costs one query per
// login, not per request.
func (s *Server) resolveUserID(ctx context.Context, info UserInfo) (int, error) {
	s.usersMu.Lock()
	if uid, ok := s.users[info.Login]; ok {
		s.usersMu.Unlock()
		return uid, nil
	}
	s.usersMu.Unlock()

	uid, err := s.db.GetOrCreateUser(ctx, info.Login, info.DisplayName)
	if err != nil {
		return 0, err
	}

	s.usersMu.Lock()
	s.users[info.Login] = uid
	s.usersMu.Unlock()
	return uid, nil
}

// userIDFromContext returns the user id set by the identity middleware,
// falling back to 1 when none is set.
func userIDFromContext(r *http.Request) int {
	if uid, ok := r.Context().Value(userIDKey).(int); ok {
		return uid
	}
	return 1
}

// userInfoFromContext returns the identity set by the identity middleware,
// falling back to the local dev identity.
func userInfoFromContext(r *http.Request) UserInfo {
	if info, ok := r.Context().Value(userInfoKey).(UserInfo); ok {
		return info
	}
	return UserInfo{Login: "local", DisplayName: "Local Dev User"}
}

// mustUserID extracts the user id or writes a 401 when identity resolution
// left no user on the context.
func mustUserID(w http.ResponseWriter, r *http.Request) (int, bool) {
	if uid, ok := r.Context().Value(userIDKey).(int); ok {
		return uid, true
	}
	writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "no user identity"})
	return 0, false
}
