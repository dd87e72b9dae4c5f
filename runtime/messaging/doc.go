// Package messaging implements a weak-reference-keyed publish/subscribe
// messenger for in-process, message-driven applications.
//
// # Overview
//
// Recipients register typed handlers with a Messenger and are held by weak
// reference: the registry is never the reason a recipient stays alive. Once
// a recipient is garbage collected its registrations vanish; dead entries
// are evicted lazily while messages are dispatched.
//
// Messages are dispatched by their exact static type. A channel value can
// disambiguate multiple subscriptions of the same message type on the same
// recipient; at most one handler may exist per (recipient, channel, message
// type), and a duplicate registration reports false rather than overwriting.
//
// # Example Usage
//
//	type inbox struct{ got []string }
//	type note struct{ Text string }
//
//	m := messaging.New()
//	r := &inbox{}
//	messaging.Register(m, r, func(r *inbox, msg note) {
//		r.got = append(r.got, msg.Text)
//	})
//	messaging.Send(m, note{Text: "hello"})
//
// Handlers receive the recipient as an argument instead of capturing it, so
// registering a handler does not pin the recipient in memory. Handlers may
// register and unregister recipients freely, including from within a
// dispatch on the same Messenger.
package messaging
