package rpc

import (
	"context"
	"strings"

	"connectrpc.com/connect"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// Client calls a running session service.
type Client struct {
	list    *connect.Client[structpb.Struct, structpb.Struct]
	watch   *connect.Client[structpb.Struct, structpb.Struct]
	toggle  *connect.Client[wrapperspb.StringValue, structpb.Struct]
	trigger *connect.Client[emptypb.Empty, emptypb.Empty]
}

// NewClient creates a Client for the service at baseURL.
func NewClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *Client {
	baseURL = strings.TrimRight(baseURL, "/")
	return &Client{
		list:    connect.NewClient[structpb.Struct, structpb.Struct](httpClient, baseURL+ListSessionsProcedure, opts...),
		watch:   connect.NewClient[structpb.Struct, structpb.Struct](httpClient, baseURL+WatchSessionsProcedure, opts...),
		toggle:  connect.NewClient[wrapperspb.StringValue, structpb.Struct](httpClient, baseURL+ToggleSymbolProcedure, opts...),
		trigger: connect.NewClient[emptypb.Empty, emptypb.Empty](httpClient, baseURL+TriggerProcedure, opts...),
	}
}

// ListSessions returns the current listing.
func (c *Client) ListSessions(ctx context.Context, all bool) (*structpb.Struct, error) {
	req, err := listRequest(all)
	if err != nil {
		return nil, err
	}
	resp, err := c.list.CallUnary(ctx, connect.NewRequest(req))
	if err != nil {
		return nil, err
	}
	return resp.Msg, nil
}

// WatchSessions calls fn with each listing until the stream ends, fn returns
// false, or ctx is done.
func (c *Client) WatchSessions(ctx context.Context, all bool, fn func(*structpb.Struct) bool) error {
	req, err := listRequest(all)
	if err != nil {
		return err
	}
	stream, err := c.watch.CallServerStream(ctx, connect.NewRequest(req))
	if err != nil {
		return err
	}
	defer stream.Close()

	for stream.Receive() {
		if !fn(stream.Msg()) {
			return nil
		}
	}
	return stream.Err()
}

// ToggleSymbol flips symbol and returns whether it is now active.
func (c *Client) ToggleSymbol(ctx context.Context, symbol string) (bool, error) {
	resp, err := c.toggle.CallUnary(ctx, connect.NewRequest(wrapperspb.String(symbol)))
	if err != nil {
		return false, err
	}
	return resp.Msg.GetFields()["active"].GetBoolValue(), nil
}

// Trigger requests an analysis run.
func (c *Client) Trigger(ctx context.Context) error {
	_, err := c.trigger.CallUnary(ctx, connect.NewRequest(&emptypb.Empty{}))
	return err
}

func listRequest(all bool) (*structpb.Struct, error) {
	return structpb.NewStruct(map[string]any{"all": all})
}
