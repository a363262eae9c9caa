// Package pages implements the account flows of the web app: sign in,
// sign up, password recovery, password reset, profile and avatar updates.
//
// Every flow follows the same shape. The submitted form is validated
// first; a validation failure comes back as Result.FieldErrors and never
// raises a toast. Otherwise the backend API is called. A failed call
// shows an error toast through the provider on ctx and returns an empty
// Result; a successful one may show a success toast and sets
// Result.Redirect.
//
// The ctx passed to each flow must carry a toast.Provider and a
// session.Session, as placed by session.Manager.Middleware.
package pages
