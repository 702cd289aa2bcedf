package grpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/godilite/commhealth/pkg/grpc/codec"
)

const ServiceName = "commhealth.v1.CommHealth"

const (
	CommHealth_StartResponse_FullMethodName       = "/commhealth.v1.CommHealth/StartResponse"
	CommHealth_SaveAnswers_FullMethodName         = "/commhealth.v1.CommHealth/SaveAnswers"
	CommHealth_SubmitResponse_FullMethodName      = "/commhealth.v1.CommHealth/SubmitResponse"
	CommHealth_GetResponse_FullMethodName         = "/commhealth.v1.CommHealth/GetResponse"
	CommHealth_GetAnalytics_FullMethodName        = "/commhealth.v1.CommHealth/GetAnalytics"
	CommHealth_GetReportSummary_FullMethodName    = "/commhealth.v1.CommHealth/GetReportSummary"
	CommHealth_GetPeriodComparison_FullMethodName = "/commhealth.v1.CommHealth/GetPeriodComparison"
)

// CommHealthServer is the server API for the CommHealth service.
type CommHealthServer interface {
	StartResponse(context.Context, *StartResponseRequest) (*StartResponseResponse, error)
	SaveAnswers(context.Context, *SaveAnswersRequest) (*SaveAnswersResponse, error)
	SubmitResponse(context.Context, *ResponseRequest) (*SubmitResponseResponse, error)
	GetResponse(context.Context, *ResponseRequest) (*GetResponseResponse, error)
	GetAnalytics(context.Context, *AnalyticsRequest) (*GetAnalyticsResponse, error)
	GetReportSummary(context.Context, *AnalyticsRequest) (*ReportSummaryResponse, error)
	GetPeriodComparison(context.Context, *AnalyticsRequest) (*PeriodComparisonResponse, error)
}

// CommHealth_ServiceDesc describes the CommHealth service. Messages are plain
// structs carried by the JSON codec.
var CommHealth_ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*CommHealthServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "StartResponse", Handler: unaryHandler(CommHealth_StartResponse_FullMethodName, CommHealthServer.StartResponse)},
		{MethodName: "SaveAnswers", Handler: unaryHandler(CommHealth_SaveAnswers_FullMethodName, CommHealthServer.SaveAnswers)},
		{MethodName: "SubmitResponse", Handler: unaryHandler(CommHealth_SubmitResponse_FullMethodName, CommHealthServer.SubmitResponse)},
		{MethodName: "GetResponse", Handler: unaryHandler(CommHealth_GetResponse_FullMethodName, CommHealthServer.GetResponse)},
		{MethodName: "GetAnalytics", Handler: unaryHandler(CommHealth_GetAnalytics_FullMethodName, CommHealthServer.GetAnalytics)},
		{MethodName: "GetReportSummary", Handler: unaryHandler(CommHealth_GetReportSummary_FullMethodName, CommHealthServer.GetReportSummary)},
		{MethodName: "GetPeriodComparison", Handler: unaryHandler(CommHealth_GetPeriodComparison_FullMethodName, CommHealthServer.GetPeriodComparison)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "commhealth/v1/commhealth.json",
}

func unaryHandler[Req, Resp any](fullMethod string, call func(CommHealthServer, context.Context, *Req) (*Resp, error)) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, status.Errorf(codes.InvalidArgument, "decode request: %v", err)
		}
		if interceptor == nil {
			return call(srv.(CommHealthServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(CommHealthServer), ctx, req.(*Req))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// CommHealthClient calls the CommHealth service over the JSON codec.
type CommHealthClient struct {
	cc grpc.ClientConnInterface
}

func NewCommHealthClient(cc grpc.ClientConnInterface) *CommHealthClient {
	return &CommHealthClient{cc: cc}
}

func invoke[Resp any](ctx context.Context, cc grpc.ClientConnInterface, method string, in any, opts []grpc.CallOption) (*Resp, error) {
	out := new(Resp)
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(codec.Name)}, opts...)
	if err := cc.Invoke(ctx, method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *CommHealthClient) StartResponse(ctx context.Context, in *StartResponseRequest, opts ...grpc.CallOption) (*StartResponseResponse, error) {
	return invoke[StartResponseResponse](ctx, c.cc, CommHealth_StartResponse_FullMethodName, in, opts)
}

func (c *CommHealthClient) SaveAnswers(ctx context.Context, in *SaveAnswersRequest, opts ...grpc.CallOption) (*SaveAnswersResponse, error) {
	return invoke[SaveAnswersResponse](ctx, c.cc, CommHealth_SaveAnswers_FullMethodName, in, opts)
}

func (c *CommHealthClient) SubmitResponse(ctx context.Context, in *ResponseRequest, opts ...grpc.CallOption) (*SubmitResponseResponse, error) {
	return invoke[SubmitResponseResponse](ctx, c.cc, CommHealth_SubmitResponse_FullMethodName, in, opts)
}

func (c *CommHealthClient) GetResponse(ctx context.Context, in *ResponseRequest, opts ...grpc.CallOption) (*GetResponseResponse, error) {
	return invoke[GetResponseResponse](ctx, c.cc, CommHealth_GetResponse_FullMethodName, in, opts)
}

func (c *CommHealthClient) GetAnalytics(ctx context.Context, in *AnalyticsRequest, opts ...grpc.CallOption) (*GetAnalyticsResponse, error) {
	return invoke[GetAnalyticsResponse](ctx, c.cc, CommHealth_GetAnalytics_FullMethodName, in, opts)
}

func (c *CommHealthClient) GetReportSummary(ctx context.Context, in *AnalyticsRequest, opts ...grpc.CallOption) (*ReportSummaryResponse, error) {
	return invoke[ReportSummaryResponse](ctx, c.cc, CommHealth_GetReportSummary_FullMethodName, in, opts)
}

func (c *CommHealthClient) GetPeriodComparison(ctx context.Context, in *AnalyticsRequest, opts ...grpc.CallOption) (*PeriodComparisonResponse, error) {
	return invoke[PeriodComparisonResponse](ctx, c.cc, CommHealth_GetPeriodComparison_FullMethodName, in, opts)
}
