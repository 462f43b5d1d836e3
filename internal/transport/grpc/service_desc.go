package grpc

import (
	"context"

	"google.golang.org/grpc"
)

const BookingServiceName = "slotkeeper.v1.BookingService"

const (
	methodWeeklyAvailability      = "WeeklyAvailability"
	methodNextAvailableWeek       = "NextAvailableWeek"
	methodClaimSlot               = "ClaimSlot"
	methodUpdateAppointmentStatus = "UpdateAppointmentStatus"
)

type BookingServiceServer interface {
	WeeklyAvailability(ctx context.Context, req *WeeklyAvailabilityRequest) (*WeeklyAvailabilityResponse, error)
	NextAvailableWeek(ctx context.Context, req *NextAvailableWeekRequest) (*NextAvailableWeekResponse, error)
	ClaimSlot(ctx context.Context, req *ClaimSlotRequest) (*ClaimSlotResponse, error)
	UpdateAppointmentStatus(ctx context.Context, req *UpdateAppointmentStatusRequest) (*UpdateAppointmentStatusResponse, error)
}

func fullMethod(method string) string {
	return "/" + BookingServiceName + "/" + method
}

func unaryMethod[Req, Resp any](name string, call func(BookingServiceServer, context.Context, *Req) (*Resp, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(BookingServiceServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod(name)}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(srv.(BookingServiceServer), ctx, req.(*Req))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

// BookingServiceDesc describes the service for grpc.Server.RegisterService.
// Messages travel as JSON; see CodecName.
var BookingServiceDesc = grpc.ServiceDesc{
	ServiceName: BookingServiceName,
	HandlerType: (*BookingServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		unaryMethod(methodWeeklyAvailability, BookingServiceServer.WeeklyAvailability),
		unaryMethod(methodNextAvailableWeek, BookingServiceServer.NextAvailableWeek),
		unaryMethod(methodClaimSlot, BookingServiceServer.ClaimSlot),
		unaryMethod(methodUpdateAppointmentStatus, BookingServiceServer.UpdateAppointmentStatus),
	},
	Streams: []grpc.StreamDesc{},
}

func RegisterBookingServiceServer(s grpc.ServiceRegistrar, srv BookingServiceServer) {
	s.RegisterService(&BookingServiceDesc, srv)
}

// BookingClient calls the booking service with the JSON codec.
type BookingClient struct {
	cc grpc.ClientConnInterface
}

func NewBookingClient(cc grpc.ClientConnInterface) *BookingClient {
	return &BookingClient{cc: cc}
}

func invoke[Resp any](ctx context.Context, cc grpc.ClientConnInterface, method string, in any, opts []grpc.CallOption) (*Resp, error) {
	out := new(Resp)
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	if err := cc.Invoke(ctx, fullMethod(method), in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *BookingClient) WeeklyAvailability(ctx context.Context, in *WeeklyAvailabilityRequest, opts ...grpc.CallOption) (*WeeklyAvailabilityResponse, error) {
	return invoke[WeeklyAvailabilityResponse](ctx, c.cc, methodWeeklyAvailability, in, opts)
}

func (c *BookingClient) NextAvailableWeek(ctx context.Context, in *NextAvailableWeekRequest, opts ...grpc.CallOption) (*NextAvailableWeekResponse, error) {
	return invoke[NextAvailableWeekResponse](ctx, c.cc, methodNextAvailableWeek, in, opts)
}

func (c *BookingClient) ClaimSlot(ctx context.Context, in *ClaimSlotRequest, opts ...grpc.CallOption) (*ClaimSlotResponse, error) {
	return invoke[ClaimSlotResponse](ctx, c.cc, methodClaimSlot, in, opts)
}

func (c *BookingClient) UpdateAppointmentStatus(ctx context.Context, in *UpdateAppointmentStatusRequest, opts ...grpc.CallOption) (*UpdateAppointmentStatusResponse, error) {
	return invoke[UpdateAppointmentStatusResponse](ctx, c.cc, methodUpdateAppointmentStatus, in, opts)
}
