// Package api is the client for the gobarber backend API.
//
// Every call takes a context, starts a client span and returns *Error for
// non-2xx responses:
//
//	c, _ := api.New("http://localhost:3334")
//	sess, err := c.SignIn(ctx, api.Credentials{Email: e, Password: p})
//	var apiErr *api.Error
//	if errors.As(err, &apiErr) && apiErr.Status == http.StatusUnauthorized {
//	    ...
//	}
//
// The client does not retry.
package api
