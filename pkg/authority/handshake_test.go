package authority

import (
	"errors"
	"testing"

	"github.com/coopsync-dev/coopsync/pkg/protocol"
)

const hostID = 1

func TestHandshakeTwoClientsOneWinner(t *testing.T) {
	host := NewHost(New(), hostID)
	alice := NewClient(New(), 2, hostID)
	bob := NewClient(New(), 3, hostID)

	reqA, ok := alice.Request(5)
	if !ok {
		t.Fatal("alice.Request(5) = false, want true")
	}
	reqB, ok := bob.Request(5)
	if !ok {
		t.Fatal("bob.Request(5) = false, want true")
	}
	if !alice.IsPending(5) || !bob.IsPending(5) {
		t.Fatal("both requests should be pending")
	}

	grant, ok := host.HandleRequest(reqA)
	if !ok {
		t.Fatal("first request lost")
	}
	if grant.GrantedPlayerID != 2 || grant.ChestID != 5 {
		t.Fatalf("grant = %+v, want chest 5 for player 2", grant)
	}
	if g, ok := host.HandleRequest(reqB); ok {
		t.Fatalf("second request granted: %+v", g)
	}

	// The host broadcasts the grant; every participant records it.
	if won, err := alice.HandleGrant(hostID, grant); err != nil || !won {
		t.Errorf("alice.HandleGrant() = %v, %v, want true, nil", won, err)
	}
	if won, err := bob.HandleGrant(hostID, grant); err != nil || won {
		t.Errorf("bob.HandleGrant() = %v, %v for a grant naming alice", won, err)
	}

	if !alice.IsGranted(5) || alice.IsPending(5) {
		t.Errorf("alice granted=%v pending=%v, want true false", alice.IsGranted(5), alice.IsPending(5))
	}
	if bob.IsGranted(5) {
		t.Error("bob.IsGranted(5) = true")
	}
	if _, ok := bob.Request(5); ok {
		t.Error("bob.Request(5) after decided claim = true")
	}
}

func TestHandshakeRetransmittedRequest(t *testing.T) {
	host := NewHost(New(), hostID)
	req := &protocol.RequestChestOpen{ChestID: 9, RequestingPlayerID: 4}

	first, ok := host.HandleRequest(req)
	if !ok {
		t.Fatal("first request lost")
	}
	again, ok := host.HandleRequest(req)
	if !ok {
		t.Fatal("retransmitted request from claimant got no grant")
	}
	if *first != *again {
		t.Errorf("retransmitted grant = %+v, want %+v", again, first)
	}
}

func TestClientRequestOnlyOnce(t *testing.T) {
	c := NewClient(New(), 2, hostID)
	if _, ok := c.Request(1); !ok {
		t.Fatal("first Request = false")
	}
	if _, ok := c.Request(1); ok {
		t.Error("second Request while pending = true")
	}
	if _, ok := c.Request(2); !ok {
		t.Error("Request for a different chest = false")
	}
}

func TestHostClaimLocal(t *testing.T) {
	host := NewHost(New(), hostID)
	if !host.ClaimLocal(3) {
		t.Fatal("ClaimLocal(3) = false")
	}
	if !host.CanOpen(3) {
		t.Error("CanOpen(3) = false after ClaimLocal")
	}
	if g, ok := host.HandleRequest(&protocol.RequestChestOpen{ChestID: 3, RequestingPlayerID: 2}); ok {
		t.Errorf("request for host-claimed chest granted: %+v", g)
	}
}

func TestClientHandleOpened(t *testing.T) {
	c := NewClient(New(), 2, hostID)
	c.Request(8)
	if err := c.HandleOpened(hostID, &protocol.ChestOpened{ChestID: 8, OwnerID: 3}); err != nil {
		t.Fatalf("HandleOpened() error: %v", err)
	}

	if c.IsPending(8) {
		t.Error("request still pending after ChestOpened")
	}
	if c.IsGranted(8) {
		t.Error("IsGranted(8) = true for a chest opened by another player")
	}
}

func TestHandshakeNilMessages(t *testing.T) {
	host := NewHost(New(), hostID)
	if _, ok := host.HandleRequest(nil); ok {
		t.Error("HandleRequest(nil) = true")
	}
	c := NewClient(New(), 2, hostID)
	if won, err := c.HandleGrant(hostID, nil); won || err != nil {
		t.Errorf("HandleGrant(nil) = %v, %v", won, err)
	}
	if err := c.HandleOpened(hostID, nil); err != nil {
		t.Errorf("HandleOpened(nil) = %v", err)
	}
}

func TestClientReset(t *testing.T) {
	c := NewClient(New(), 2, hostID)
	c.Request(1)
	c.Reset()
	if c.IsPending(1) {
		t.Error("pending survived Reset")
	}
}

func TestLosingClientSettledByGrant(t *testing.T) {
	c := NewClient(New(), 3, hostID)
	c.Request(5)
	if _, err := c.HandleGrant(hostID, &protocol.GrantChestOpen{ChestID: 5, GrantedPlayerID: 2}); err != nil {
		t.Fatalf("HandleGrant() error: %v", err)
	}
	if c.IsPending(5) {
		t.Error("request still pending after grant to another player")
	}
}

func TestClientRejectsGrantFromPeer(t *testing.T) {
	const bob = 3
	alice := NewClient(New(), 2, hostID)
	alice.Request(5)

	won, err := alice.HandleGrant(bob, &protocol.GrantChestOpen{ChestID: 5, GrantedPlayerID: bob})
	if won || !errors.Is(err, ErrNotAuthoritative) {
		t.Fatalf("HandleGrant() from a peer = %v, %v, want false, ErrNotAuthoritative", won, err)
	}
	if !alice.IsPending(5) {
		t.Error("rejected grant settled the request")
	}
	if owner, ok := alice.arb.Claimant(5); ok {
		t.Fatalf("rejected grant recorded owner %d", owner)
	}

	won, err = alice.HandleGrant(hostID, &protocol.GrantChestOpen{ChestID: 5, GrantedPlayerID: 2})
	if err != nil || !won {
		t.Fatalf("HandleGrant() from the host = %v, %v, want true, nil", won, err)
	}
	if !alice.IsGranted(5) || alice.IsPending(5) {
		t.Errorf("granted=%v pending=%v, want true false", alice.IsGranted(5), alice.IsPending(5))
	}
}

func TestClientHandleOpenedTrust(t *testing.T) {
	tests := []struct {
		name    string
		granted uint32 // owner the host granted first, 0 for none
		from    uint32
		owner   uint32
		wantErr bool
	}{
		{name: "host reports any owner", from: hostID, owner: 3},
		{name: "granted claimant reports itself", granted: 3, from: 3, owner: 3},
		{name: "peer without grant", from: 3, owner: 3, wantErr: true},
		{name: "peer reports someone else", granted: 4, from: 3, owner: 4, wantErr: true},
		{name: "peer contradicts grant", granted: 4, from: 3, owner: 3, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewClient(New(), 2, hostID)
			c.Request(8)
			if tt.granted != 0 {
				if _, err := c.HandleGrant(hostID, &protocol.GrantChestOpen{ChestID: 8, GrantedPlayerID: tt.granted}); err != nil {
					t.Fatalf("HandleGrant() error: %v", err)
				}
			}

			err := c.HandleOpened(tt.from, &protocol.ChestOpened{ChestID: 8, OwnerID: tt.owner})
			if (err != nil) != tt.wantErr {
				t.Fatalf("HandleOpened() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr && !errors.Is(err, ErrNotAuthoritative) {
				t.Errorf("HandleOpened() error = %v, want ErrNotAuthoritative", err)
			}

			owner, ok := c.arb.Claimant(8)
			switch {
			case tt.wantErr && tt.granted == 0:
				if ok {
					t.Errorf("rejected report recorded owner %d", owner)
				}
				if !c.IsPending(8) {
					t.Error("rejected report settled the request")
				}
			case tt.wantErr:
				if !ok || owner != tt.granted {
					t.Errorf("owner = %d, %v, want %d", owner, ok, tt.granted)
				}
			default:
				if !ok || owner != tt.owner {
					t.Errorf("owner = %d, %v, want %d", owner, ok, tt.owner)
				}
			}
		})
	}
}
