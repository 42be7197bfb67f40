package auth

import (
	"net/http"
	"strings"

	"github.com/gorilla/sessions"

	"github.com/ghuser/contractflow/pkg/httpx"
	"github.com/ghuser/contractflow/pkg/logger"
)

const sessionName = "contractflow_session"

// Session value keys.
const (
	sessionUserIDKey   = "user_id"
	sessionUserNameKey = "user_name"
	sessionUserRoleKey = "user_role"
)

// Identity headers set by the back-office front end.
const (
	HeaderUserID   = "X-User-Id"
	HeaderUserName = "X-User-Name"
	HeaderUserRole = "X-User-Role"
)

// RequireActor is a chi middleware that resolves the caller. The Redis
// session is consulted first; without a session identity the X-User-*
// headers are used when allowHeaders is set. Requests with neither get 401.
//
// After this middleware, handlers can safely call auth.PrincipalFromCtx(r.Context()).
func RequireActor(store sessions.Store, allowHeaders bool, log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, source := fromSession(store, r, log)
			if p.ID == "" && allowHeaders {
				p, source = fromHeaders(r), "header"
			}
			if p.ID == "" || p.Role == "" {
				log.WarnContext(r.Context(), "request without caller identity")
				httpx.JSONError(w, http.StatusUnauthorized, "authentication required")
				return
			}

			ctx := WithPrincipal(r.Context(), p)
			ctx = logger.ContextWithAttrs(ctx, "actor_id", p.ID, "actor_role", p.Role, "actor_source", source)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func fromSession(store sessions.Store, r *http.Request, log logger.Logger) (Principal, string) {
	if store == nil {
		return Principal{}, ""
	}
	session, err := store.Get(r, sessionName)
	if err != nil {
		log.WarnContext(r.Context(), "invalid session cookie", "error", err)
		return Principal{}, ""
	}
	id, _ := session.Values[sessionUserIDKey].(string)
	name, _ := session.Values[sessionUserNameKey].(string)
	role, _ := session.Values[sessionUserRoleKey].(string)
	return Principal{ID: id, Name: name, Role: role}, "session"
}

func fromHeaders(r *http.Request) Principal {
	return Principal{
		ID:   strings.TrimSpace(r.Header.Get(HeaderUserID)),
		Name: strings.TrimSpace(r.Header.Get(HeaderUserName)),
		Role: strings.TrimSpace(r.Header.Get(HeaderUserRole)),
	}
}
