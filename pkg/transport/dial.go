package transport

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gorilla/websocket"
)

// Dial connects to a relay or peer at url.
func Dial(ctx context.Context, url string, opts ...Option) (*Conn, error) {
	return DialWithHeader(ctx, url, nil, opts...)
}

// DialWithHeader connects to url sending the given handshake headers.
func DialWithHeader(ctx context.Context, url string, header http.Header, opts ...Option) (*Conn, error) {
	ws, resp, err := websocket.DefaultDialer.DialContext(ctx, url, header)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("transport: dial %s: %w (status %d)", url, err, resp.StatusCode)
		}
		return nil, fmt.Errorf("transport: dial %s: %w", url, err)
	}
	return NewConn(ws, opts...), nil
}

// DialRelay connects to a Hub as peer self. The returned connection reports
// the origin peer of every frame in Frame.From.
func DialRelay(ctx context.Context, url string, self uint32, opts ...Option) (*Conn, error) {
	header := http.Header{}
	header.Set(PeerHeader, strconv.FormatUint(uint64(self), 10))
	return DialWithHeader(ctx, url, header, append(opts, WithRelayOrigin())...)
}
