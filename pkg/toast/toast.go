package toast

import (
	"context"
	"time"
)

// Kind represents the toast notification kind.
type Kind string

const (
	KindInfo    Kind = "info"
	KindError   Kind = "error"
	KindSuccess Kind = "success"
)

// DefaultDwellTime is how long a message stays visible before it is
// removed automatically.
const DefaultDwellTime = 3 * time.Second

// Valid reports whether k is one of the known kinds.
func (k Kind) Valid() bool {
	switch k {
	case KindInfo, KindError, KindSuccess:
		return true
	}
	return false
}

func (k Kind) orDefault() Kind {
	if k == "" {
		return KindInfo
	}
	return k
}

// Message is an active notification. Messages are never modified after
// creation; they only leave the active set.
type Message struct {
	ID          string    `json:"id"`
	Kind        Kind      `json:"type"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// Input describes a message to create. Kind defaults to KindInfo.
type Input struct {
	Kind        Kind   `json:"type,omitempty"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
}

// Show adds a message through the Provider carried by ctx.
func Show(ctx context.Context, kind Kind, title, description string) error {
	_, err := Add(ctx, Input{Kind: kind, Title: title, Description: description})
	return err
}

// Success shows a success toast.
//
//	toast.Success(ctx, "Signup Success!", "You may now log in.")
func Success(ctx context.Context, title, description string) error {
	return Show(ctx, KindSuccess, title, description)
}

// Error shows an error toast.
//
//	toast.Error(ctx, "Signup Failure", "Signup error, please try again.")
func Error(ctx context.Context, title, description string) error {
	return Show(ctx, KindError, title, description)
}

// Info shows an info toast.
func Info(ctx context.Context, title, description string) error {
	return Show(ctx, KindInfo, title, description)
}
