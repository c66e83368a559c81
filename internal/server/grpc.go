package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/joseph-ayodele/nutrition-extractor/internal/common"
	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

const (
	ExtractorServiceName  = "nutrition.v1.Extractor"
	extractFullMethod     = "/" + ExtractorServiceName + "/Extract"
	CredentialMetadataKey = "x-gemini-api-key"
)

// ExtractorServer is the gRPC surface: raw PDF bytes in, the result document out.
type ExtractorServer interface {
	Extract(ctx context.Context, in *wrapperspb.BytesValue) (*structpb.Struct, error)
}

// ExtractorServiceDesc describes nutrition.v1.Extractor using well-known
// wrapper types, so no generated stubs are needed.
var ExtractorServiceDesc = grpc.ServiceDesc{
	ServiceName: ExtractorServiceName,
	HandlerType: (*ExtractorServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Extract", Handler: extractHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "nutrition/v1/extractor.proto",
}

func RegisterExtractorServer(s grpc.ServiceRegistrar, srv ExtractorServer) {
	s.RegisterService(&ExtractorServiceDesc, srv)
}

func extractHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(wrapperspb.BytesValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ExtractorServer).Extract(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: extractFullMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(ExtractorServer).Extract(ctx, req.(*wrapperspb.BytesValue))
	}
	return interceptor(ctx, in, info, handler)
}

// InvokeExtract calls Extract on conn, passing credential as metadata.
func InvokeExtract(ctx context.Context, conn grpc.ClientConnInterface, doc []byte, credential string, opts ...grpc.CallOption) (*structpb.Struct, error) {
	ctx = metadata.AppendToOutgoingContext(ctx, CredentialMetadataKey, credential)
	out := new(structpb.Struct)
	if err := conn.Invoke(ctx, extractFullMethod, wrapperspb.Bytes(doc), out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

// ExtractorService adapts the pipeline to ExtractorServer.
type ExtractorService struct {
	extractor   Extractor
	maxFileSize int64
	logger      *slog.Logger
}

func NewExtractorService(ex Extractor, maxFileSize int64, logger *slog.Logger) *ExtractorService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ExtractorService{extractor: ex, maxFileSize: maxFileSize, logger: logger}
}

func (s *ExtractorService) Extract(ctx context.Context, in *wrapperspb.BytesValue) (*structpb.Struct, error) {
	ctx, rid := common.EnsureRequestID(ctx)

	var credential string
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		if vals := md.Get(CredentialMetadataKey); len(vals) > 0 {
			credential = vals[0]
		}
	}
	data := in.GetValue()

	v := common.NewValidator().
		Field("file", data, common.Required, common.MaxSize(s.maxFileSize)).
		Field(CredentialMetadataKey, credential, common.Required)
	if err := common.ValidateAndReturnError(v); err != nil {
		s.logger.Warn("grpc.extract.invalid", "req_id", rid, "detail", v.ErrorMessage())
		return nil, err
	}

	s.logger.Info("grpc.extract.start", "req_id", rid, "bytes", len(data))
	res := s.extractor.Process(ctx, data, credential)

	out, err := toStruct(res)
	if err != nil {
		s.logger.Error("grpc.extract.encode_failed", "req_id", rid, "error", err)
		return nil, common.InternalErrorf("encode result: %v", err)
	}
	return out, nil
}

func toStruct(v any) (*structpb.Struct, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal: %w", err)
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, fmt.Errorf("unmarshal: %w", err)
	}
	return structpb.NewStruct(m)
}
