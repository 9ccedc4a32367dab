package suggest

import (
	"context"
	"crypto/tls"
	"net"
	"net/http"
	"strings"

	"github.com/bufbuild/connect-go"
	"golang.org/x/net/http2"

	"github.com/Dleifnesor/PAW/internal/rpc"
	"github.com/Dleifnesor/PAW/internal/rpc/connectjson"
)

// Client calls a running daemon's Suggest procedure.
type Client struct {
	suggest *connect.Client[rpc.SuggestRequest, rpc.SuggestResponse]
}

// NewClient targets the daemon at addr ("host:port", ":port" or a full URL).
// A nil httpClient uses a cleartext HTTP/2 client.
func NewClient(addr string, httpClient connect.HTTPClient) *Client {
	if httpClient == nil {
		httpClient = NewH2CClient()
	}
	return &Client{
		suggest: connect.NewClient[rpc.SuggestRequest, rpc.SuggestResponse](
			httpClient,
			BaseURL(addr)+Procedure,
			connect.WithCodec(connectjson.Codec{}),
		),
	}
}

// Suggest sends req and returns the daemon's suggestions.
func (c *Client) Suggest(ctx context.Context, req rpc.SuggestRequest) (rpc.SuggestResponse, error) {
	resp, err := c.suggest.CallUnary(ctx, connect.NewRequest(&req))
	if err != nil {
		return rpc.SuggestResponse{}, err
	}
	return *resp.Msg, nil
}

// BaseURL turns a listen address into a URL a client can dial.
func BaseURL(addr string) string {
	addr = strings.TrimRight(addr, "/")
	if strings.HasPrefix(addr, "http://") || strings.HasPrefix(addr, "https://") {
		return addr
	}
	if strings.HasPrefix(addr, ":") {
		return "http://localhost" + addr
	}
	return "http://" + addr
}

// NewH2CClient returns an HTTP client speaking HTTP/2 without TLS.
func NewH2CClient() *http.Client {
	return &http.Client{
		Transport: &http2.Transport{
			AllowHTTP: true,
			DialTLSContext: func(ctx context.Context, network, addr string, _ *tls.Config) (net.Conn, error) {
				var d net.Dialer
				return d.DialContext(ctx, network, addr)
			},
		},
	}
}
