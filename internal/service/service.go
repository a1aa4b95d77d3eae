// Package service exposes classification over gRPC. The service is not
// compiled in: its .proto is parsed at startup and registered dynamically,
// so the wire surface and the binary cannot drift apart.
package service

import (
	"context"
	"fmt"
	"net"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
	"github.com/jhump/protoreflect/desc"
	"github.com/jhump/protoreflect/desc/protoparse"
	"github.com/jhump/protoreflect/dynamic"
	"google.golang.org/grpc"

	"github.com/funvibe/tagval/internal/heap"
	"github.com/funvibe/tagval/internal/inspect"
	"github.com/funvibe/tagval/internal/literal"
	"github.com/funvibe/tagval/pkg/typed"
)

const serviceName = "tagval.Inspector"

type Server struct {
	grpc *grpc.Server

	mu       sync.Mutex
	sessions map[string]*heap.Heap
}

func New() *Server {
	return &Server{
		grpc:     grpc.NewServer(),
		sessions: make(map[string]*heap.Heap),
	}
}

// LoadProto parses the service definition and registers it on the gRPC
// server. Unary methods only; the Inspector has no streams.
func (s *Server) LoadProto(path string) error {
	parser := protoparse.Parser{ImportPaths: []string{filepath.Dir(path)}}
	fds, err := parser.ParseFiles(filepath.Base(path))
	if err != nil {
		return fmt.Errorf("service: parse proto %s: %v", path, err)
	}

	var sd *desc.ServiceDescriptor
	for _, fd := range fds {
		if found := fd.FindService(serviceName); found != nil {
			sd = found
			break
		}
	}
	if sd == nil {
		return fmt.Errorf("service: %s not found in %s", serviceName, path)
	}

	svcDesc := &grpc.ServiceDesc{
		ServiceName: serviceName,
		HandlerType: (*interface{})(nil),
		Methods:     []grpc.MethodDesc{},
		Streams:     []grpc.StreamDesc{},
		Metadata:    sd.GetFile().GetName(),
	}
	for _, method := range sd.GetMethods() {
		if method.IsClientStreaming() || method.IsServerStreaming() {
			continue
		}
		md := method
		svcDesc.Methods = append(svcDesc.Methods, grpc.MethodDesc{
			MethodName: md.GetName(),
			Handler: func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
				return srv.(*Server).handleUnary(ctx, md, dec)
			},
		})
	}

	s.grpc.RegisterService(svcDesc, s)
	return nil
}

func (s *Server) handleUnary(ctx context.Context, md *desc.MethodDescriptor, dec func(interface{}) error) (interface{}, error) {
	in := dynamic.NewMessage(md.GetInputType())
	if err := dec(in); err != nil {
		return nil, err
	}
	out := dynamic.NewMessage(md.GetOutputType())

	switch md.GetName() {
	case "NewSession":
		id := uuid.NewString()
		s.mu.Lock()
		s.sessions[id] = heap.New()
		s.mu.Unlock()
		out.SetFieldByName("session_id", id)
	case "Classify":
		h, err := s.session(in)
		if err != nil {
			return nil, err
		}
		lit, _ := in.GetFieldByName("literal").(string)
		v, err := literal.Read(h, lit)
		if err != nil {
			return nil, fmt.Errorf("bad literal: %v", err)
		}
		variant := typed.Classify(h, v)
		out.SetFieldByName("kind", typed.Kind(variant))
		out.SetFieldByName("tag", h.TagOf(v).String())
		out.SetFieldByName("rendered", inspect.Render(variant))
	case "CloseSession":
		id, _ := in.GetFieldByName("session_id").(string)
		s.mu.Lock()
		_, ok := s.sessions[id]
		delete(s.sessions, id)
		s.mu.Unlock()
		out.SetFieldByName("closed", ok)
	default:
		return nil, fmt.Errorf("method %s not implemented", md.GetName())
	}
	return out, nil
}

func (s *Server) session(in *dynamic.Message) (*heap.Heap, error) {
	id, _ := in.GetFieldByName("session_id").(string)
	s.mu.Lock()
	h, ok := s.sessions[id]
	s.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("unknown session %q", id)
	}
	return h, nil
}

// Serve blocks on the listener until Stop.
func (s *Server) Serve(addr string) error {
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("service: listen %s: %v", addr, err)
	}
	return s.grpc.Serve(lis)
}

// ServeListener serves on an existing listener; tests use this to bind
// port zero.
func (s *Server) ServeListener(lis net.Listener) error {
	return s.grpc.Serve(lis)
}

func (s *Server) Stop() {
	s.grpc.GracefulStop()
}
