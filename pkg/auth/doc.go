// Package auth keeps the signed-in user on a session.
//
// The auth package does not validate credentials or tokens. The backend
// API does that; a successful sign in hands back a user and a bearer token
// which are stored on the browser session:
//
//	auth.SetPrincipal(sess, auth.FromUser(resp.User), resp.Token)
//
// Later requests read them back:
//
//	p, ok := auth.Get(sess)
//	token := auth.Token(sess)
//
// # Middleware
//
// RequireAuth guards HTTP routes that need a signed-in user. It answers
// 401 when the session carries no principal and otherwise places the
// principal on the request context, where PrincipalFromContext finds it.
package auth
