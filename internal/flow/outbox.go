package flow

import "context"

// Outbox delivers rendered output to the messaging transport.
//
// Edit updates a previously sent menu message in place; the transport
// implementation must treat the "new content identical to old" case as
// success, not as a failure. Notify surfaces a short transient notice
// without changing any message.
type Outbox interface {
	Edit(ctx context.Context, userID int64, text string, menu *Menu) error
	Send(ctx context.Context, userID int64, text string, menu *Menu) error
	SendAttachment(ctx context.Context, userID int64, att Attachment, caption string, menu *Menu) error
	Notify(ctx context.Context, userID int64, text string) error
}
