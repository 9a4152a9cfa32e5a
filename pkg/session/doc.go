// Package session wires the codec, the chest arbiter, the orb tracker,
// telemetry and the message router into one participant of a co-op game.
//
// A Session does no I/O of its own. Outgoing messages go to a Sender
// (normally a transport.Conn) and incoming messages are fed to Handle.
//
// # Roles
//
// Exactly one participant runs as RoleHost. The host allocates chest ids,
// decides every chest claim and reserves orb targets. Clients request chest
// opens and adopt the ids the host announces.
//
// A client trusts only the host for grants and spawn announcements, so each
// Frame must carry the real sender. Over the relay, DialRelay declares this
// participant's id and the hub stamps every frame with its origin.
//
// # Usage
//
//	conn, _ := transport.DialRelay(ctx, url, 2)
//	s, err := session.New[*Orb](session.Config{Self: 2, HostID: 1, Role: session.RoleClient},
//	    conn, locator)
//	if err != nil {
//	    return err
//	}
//	go conn.ReadLoop(ctx, func(ctx context.Context, f transport.Frame) error {
//	    return s.Handle(ctx, f.From, f.Message)
//	})
//
//	if _, err := s.OpenChest(ctx, chestID); err != nil {
//	    return err
//	}
package session
