// Package suggest exposes the assist Suggest call as a Connect unary RPC.
package suggest

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/bufbuild/connect-go"
	"github.com/google/uuid"

	"github.com/Dleifnesor/PAW/internal/observability"
	"github.com/Dleifnesor/PAW/internal/rpc"
	"github.com/Dleifnesor/PAW/internal/rpc/connectjson"
)

// Procedure is the Connect route of the Suggest call.
const Procedure = "/paw.v1.AssistService/Suggest"

const transport = "connect"

// Suggester produces suggestions for a prompt.
type Suggester interface {
	Suggest(ctx context.Context, req rpc.SuggestRequest) (rpc.SuggestResponse, error)
}

// NewHandler builds the Connect unary handler for Suggest.
func NewHandler(s Suggester, metrics *observability.Metrics) (string, http.Handler) {
	h := &handler{suggester: s, metrics: metrics}
	return Procedure, connect.NewUnaryHandler(Procedure, h.handle, connect.WithCodec(connectjson.Codec{}))
}

type handler struct {
	suggester Suggester
	metrics   *observability.Metrics
}

func (h *handler) handle(ctx context.Context, req *connect.Request[rpc.SuggestRequest]) (*connect.Response[rpc.SuggestResponse], error) {
	msg := *req.Msg
	if msg.Limit < 0 {
		h.metrics.RecordTransportError(transport, "bad_limit")
		return nil, connect.NewError(connect.CodeInvalidArgument, errors.New("limit cannot be negative"))
	}
	if msg.RequestID == "" {
		msg.RequestID = uuid.NewString()
	}

	start := time.Now()
	resp, err := h.suggester.Suggest(ctx, msg)
	if err != nil {
		h.metrics.RecordTransportError(transport, "suggest_error")
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, connect.NewError(connect.CodeCanceled, err)
		}
		return nil, connect.NewError(connect.CodeInternal, err)
	}
	h.metrics.RecordResolve(transport, len(resp.Suggestions), time.Since(start))
	for _, s := range resp.Suggestions {
		h.metrics.RecordExpansion(s.Expansion.AllFilled)
	}
	return connect.NewResponse(&resp), nil
}
