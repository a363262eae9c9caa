// Package toast provides transient feedback notifications for gobarber-web.
//
// A toast is a short message (info, error or success) that is shown to the
// user and removed automatically after a fixed dwell time, or earlier when
// the user dismisses it.
//
// # Store
//
// The Store owns the ordered list of active messages. Add appends a message
// with a freshly generated id; Remove drops it again and is a no-op for ids
// that are not present, so a timer firing after a manual dismissal (or the
// other way around) is harmless. Listeners registered with Subscribe are
// called synchronously after every mutation:
//
//	store := toast.NewStore()
//	unsubscribe := store.Subscribe(func(ev toast.Event) {
//	    render(ev.Messages)
//	})
//	defer unsubscribe()
//
// # Lifecycle
//
// A Controller watches a Store and starts one single-shot timer per added
// message. When the timer fires the message is removed; when the message is
// removed first, the timer is cancelled.
//
// # Provider
//
// A Provider bundles a Store and a Controller for one application tree (one
// browser session). It is created at the root, carried down through
// context.Context and closed when the root goes away:
//
//	p := toast.NewProvider()
//	defer p.Close()
//	ctx = toast.WithProvider(ctx, p)
//
//	// anywhere below
//	if err := toast.Error(ctx, "Authentication Failure", "Verify your credentials."); err != nil {
//	    return err
//	}
//
// Using the package-level helpers without a live Provider in the context
// fails with a *ConfigurationError.
//
// # Rendering
//
// RenderHTML writes the active messages as an HTML fragment. Titles and
// descriptions are sanitized before they are written.
package toast
