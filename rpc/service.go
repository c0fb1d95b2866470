// Package rpc exposes the reconstructed sessions over Connect: a unary
// listing, a server stream of updates, symbol toggling, and analysis
// triggering. Messages use the well-known protobuf types, so no generated
// code is needed.
package rpc

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"slices"

	"connectrpc.com/connect"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/tailored-agentic-units/neuralcore/history"
	"github.com/tailored-agentic-units/neuralcore/session"
	"github.com/tailored-agentic-units/neuralcore/store"
)

const ServiceName = "neuralcore.v1.SessionService"

const (
	ListSessionsProcedure  = "/" + ServiceName + "/ListSessions"
	WatchSessionsProcedure = "/" + ServiceName + "/WatchSessions"
	ToggleSymbolProcedure  = "/" + ServiceName + "/ToggleSymbol"
	TriggerProcedure       = "/" + ServiceName + "/Trigger"
)

// Sessions is the read side of the session store.
type Sessions interface {
	Snapshot() store.State
	Subscribe(ctx context.Context) <-chan store.State
}

// Symbols is the symbol activation filter.
type Symbols interface {
	Supported() []string
	Active() []string
	Toggle(ctx context.Context, symbol string) bool
	Visible(sessions []session.Session) []session.Session
}

// Triggerer starts an analysis run.
type Triggerer interface {
	Trigger(ctx context.Context) error
}

// Option configures a Service.
type Option func(*Service)

// WithTrigger enables the Trigger procedure.
func WithTrigger(t Triggerer) Option {
	return func(s *Service) { s.trigger = t }
}

// WithLinkStatus reports connection state in listings and health checks.
func WithLinkStatus(fn func() string) Option {
	return func(s *Service) { s.link = fn }
}

// Service implements the session service procedures.
type Service struct {
	sessions Sessions
	symbols  Symbols
	trigger  Triggerer
	link     func() string
}

// NewService creates a Service over the given store and filter.
func NewService(sessions Sessions, symbols Symbols, opts ...Option) *Service {
	s := &Service{
		sessions: sessions,
		symbols:  symbols,
		link:     func() string { return "unknown" },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler returns the path prefix and handler serving all procedures.
func (s *Service) Handler(opts ...connect.HandlerOption) (string, http.Handler) {
	mux := http.NewServeMux()
	mux.Handle(ListSessionsProcedure, connect.NewUnaryHandler(ListSessionsProcedure, s.ListSessions, opts...))
	mux.Handle(WatchSessionsProcedure, connect.NewServerStreamHandler(WatchSessionsProcedure, s.WatchSessions, opts...))
	mux.Handle(ToggleSymbolProcedure, connect.NewUnaryHandler(ToggleSymbolProcedure, s.ToggleSymbol, opts...))
	mux.Handle(TriggerProcedure, connect.NewUnaryHandler(TriggerProcedure, s.Trigger, opts...))
	return "/" + ServiceName + "/", mux
}

// ListSessions returns the current sessions. Request field "all" set to
// true skips the symbol filter.
func (s *Service) ListSessions(ctx context.Context, req *connect.Request[structpb.Struct]) (*connect.Response[structpb.Struct], error) {
	msg, err := s.listing(s.sessions.Snapshot(), wantAll(req.Msg))
	if err != nil {
		return nil, connect.NewError(connect.CodeInternal, err)
	}
	return connect.NewResponse(msg), nil
}

// WatchSessions streams a listing for the current state and every change.
func (s *Service) WatchSessions(ctx context.Context, req *connect.Request[structpb.Struct], stream *connect.ServerStream[structpb.Struct]) error {
	all := wantAll(req.Msg)
	for state := range s.sessions.Subscribe(ctx) {
		msg, err := s.listing(state, all)
		if err != nil {
			return connect.NewError(connect.CodeInternal, err)
		}
		if err := stream.Send(msg); err != nil {
			return err
		}
	}
	return nil
}

// ToggleSymbol flips a supported symbol in the active set.
func (s *Service) ToggleSymbol(ctx context.Context, req *connect.Request[wrapperspb.StringValue]) (*connect.Response[structpb.Struct], error) {
	symbol := req.Msg.GetValue()
	if !slices.Contains(s.symbols.Supported(), symbol) {
		return nil, connect.NewError(connect.CodeInvalidArgument, errors.New("unsupported symbol: "+symbol))
	}

	active := s.symbols.Toggle(ctx, symbol)
	msg, err := structpb.NewStruct(map[string]any{
		"symbol": symbol,
		"active": active,
		"filter": stringList(s.symbols.Active()),
	})
	if err != nil {
		return nil, connect.NewError(connect.CodeInternal, err)
	}
	return connect.NewResponse(msg), nil
}

// Trigger requests an analysis run from the backend.
func (s *Service) Trigger(ctx context.Context, req *connect.Request[emptypb.Empty]) (*connect.Response[emptypb.Empty], error) {
	if s.trigger == nil {
		return nil, connect.NewError(connect.CodeUnimplemented, errors.New("trigger not configured"))
	}
	if err := s.trigger.Trigger(ctx); err != nil {
		if errors.Is(err, history.ErrThrottled) {
			return nil, connect.NewError(connect.CodeResourceExhausted, err)
		}
		return nil, connect.NewError(connect.CodeUnavailable, err)
	}
	return connect.NewResponse(&emptypb.Empty{}), nil
}

func (s *Service) listing(state store.State, all bool) (*structpb.Struct, error) {
	sessions := state.Sessions()
	if !all {
		sessions = s.symbols.Visible(sessions)
	}

	items, err := toValues(sessions)
	if err != nil {
		return nil, err
	}

	return structpb.NewStruct(map[string]any{
		"link":     s.link(),
		"version":  float64(state.Version()),
		"total":    float64(state.Len()),
		"filter":   stringList(s.symbols.Active()),
		"sessions": items,
	})
}

// toValues converts sessions to JSON-shaped values accepted by structpb.
func toValues(sessions []session.Session) ([]any, error) {
	data, err := json.Marshal(sessions)
	if err != nil {
		return nil, err
	}
	items := []any{}
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, err
	}
	return items, nil
}

func stringList(values []string) []any {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}

func wantAll(msg *structpb.Struct) bool {
	return msg.GetFields()["all"].GetBoolValue()
}
