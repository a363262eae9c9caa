// Package devapi is an in-memory stand-in for the GoBarber backend API.
//
// It serves the endpoints the web app calls (sessions, users, password
// recovery, profile and avatar) with the same JSON shapes, so the web app
// can run locally and be tested end to end without the real backend:
//
//	srv := devapi.New(store)
//	http.ListenAndServe(":3334", srv.Handler())
//
// Passwords are hashed with bcrypt. Bearer tokens and password reset tokens
// are random uuids held in memory. Reset tokens are handed to the reset
// notifier, which logs them by default since no email is sent.
package devapi
