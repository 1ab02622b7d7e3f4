// Package billingv1 is the wire contract between patient-service and
// billing-service. Messages travel as google.protobuf.Struct so both sides
// share one descriptor without a code generation step.
package billingv1

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

const (
	ServiceName                    = "billing.v1.BillingService"
	CreateBillingAccountMethodName = "CreateBillingAccount"
	CreateBillingAccountFullMethod = "/" + ServiceName + "/" + CreateBillingAccountMethodName
)

const (
	fieldPatientID = "patient_id"
	fieldName      = "name"
	fieldEmail     = "email"
	fieldAccountID = "account_id"
	fieldStatus    = "status"
)

type CreateBillingAccountRequest struct {
	PatientID string
	Name      string
	Email     string
}

type CreateBillingAccountResponse struct {
	AccountID string
	Status    string
}

func (r CreateBillingAccountRequest) ToStruct() (*structpb.Struct, error) {
	return structpb.NewStruct(map[string]any{
		fieldPatientID: r.PatientID,
		fieldName:      r.Name,
		fieldEmail:     r.Email,
	})
}

func (r CreateBillingAccountResponse) ToStruct() (*structpb.Struct, error) {
	return structpb.NewStruct(map[string]any{
		fieldAccountID: r.AccountID,
		fieldStatus:    r.Status,
	})
}

func RequestFromStruct(s *structpb.Struct) (CreateBillingAccountRequest, error) {
	if s == nil {
		return CreateBillingAccountRequest{}, errors.New("empty request")
	}
	return CreateBillingAccountRequest{
		PatientID: stringField(s, fieldPatientID),
		Name:      stringField(s, fieldName),
		Email:     stringField(s, fieldEmail),
	}, nil
}

func ResponseFromStruct(s *structpb.Struct) (CreateBillingAccountResponse, error) {
	if s == nil {
		return CreateBillingAccountResponse{}, errors.New("empty response")
	}
	out := CreateBillingAccountResponse{
		AccountID: stringField(s, fieldAccountID),
		Status:    stringField(s, fieldStatus),
	}
	if strings.TrimSpace(out.AccountID) == "" {
		return CreateBillingAccountResponse{}, fmt.Errorf("response missing %s", fieldAccountID)
	}
	return out, nil
}

func stringField(s *structpb.Struct, key string) string {
	v, ok := s.GetFields()[key]
	if !ok {
		return ""
	}
	return v.GetStringValue()
}

type BillingServiceServer interface {
	CreateBillingAccount(ctx context.Context, req CreateBillingAccountRequest) (CreateBillingAccountResponse, error)
}

func RegisterBillingServiceServer(registrar grpc.ServiceRegistrar, srv BillingServiceServer) {
	registrar.RegisterService(&serviceDesc, srv)
}

var serviceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*BillingServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: CreateBillingAccountMethodName,
			Handler:    createBillingAccountHandler,
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "billing/v1/billing.proto",
}

func createBillingAccountHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	call := func(ctx context.Context, req any) (any, error) {
		parsed, err := RequestFromStruct(req.(*structpb.Struct))
		if err != nil {
			return nil, err
		}
		resp, err := srv.(BillingServiceServer).CreateBillingAccount(ctx, parsed)
		if err != nil {
			return nil, err
		}
		return resp.ToStruct()
	}
	if interceptor == nil {
		return call(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: CreateBillingAccountFullMethod}
	return interceptor(ctx, in, info, call)
}

type BillingServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewBillingServiceClient(cc grpc.ClientConnInterface) *BillingServiceClient {
	return &BillingServiceClient{cc: cc}
}

func (c *BillingServiceClient) CreateBillingAccount(ctx context.Context, req CreateBillingAccountRequest, opts ...grpc.CallOption) (CreateBillingAccountResponse, error) {
	in, err := req.ToStruct()
	if err != nil {
		return CreateBillingAccountResponse{}, fmt.Errorf("encode request: %w", err)
	}
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, CreateBillingAccountFullMethod, in, out, opts...); err != nil {
		return CreateBillingAccountResponse{}, err
	}
	resp, err := ResponseFromStruct(out)
	if err != nil {
		// The call completed, so a malformed reply is a server fault.
		return CreateBillingAccountResponse{}, status.Error(codes.Internal, err.Error())
	}
	return resp, nil
}
