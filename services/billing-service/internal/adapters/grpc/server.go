package grpc

import (
	"context"
	"errors"
	"log/slog"

	billingv1 "github.com/patientmesh/mesh/contracts/billing/v1"
	"github.com/patientmesh/mesh/services/billing-service/internal/application"
	"github.com/patientmesh/mesh/services/billing-service/internal/domain"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type BillingServer struct {
	service *application.Service
}

func NewBillingServer(service *application.Service) *BillingServer {
	return &BillingServer{service: service}
}

func Register(server grpc.ServiceRegistrar, srv *BillingServer) {
	billingv1.RegisterBillingServiceServer(server, srv)
}

func (s *BillingServer) CreateBillingAccount(ctx context.Context, req billingv1.CreateBillingAccountRequest) (billingv1.CreateBillingAccountResponse, error) {
	account, err := s.service.CreateBillingAccount(ctx, domain.AccountRequest{
		PatientID: req.PatientID,
		Name:      req.Name,
		Email:     req.Email,
	})
	if err != nil {
		return billingv1.CreateBillingAccountResponse{}, toStatus(err)
	}
	return billingv1.CreateBillingAccountResponse{AccountID: account.AccountID, Status: account.Status}, nil
}

func toStatus(err error) error {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, domain.ErrStorageUnavailable):
		return status.Error(codes.Unavailable, "account registry unavailable")
	default:
		return status.Error(codes.Internal, "internal error")
	}
}

// LoggingInterceptor records one line per unary call.
func LoggingInterceptor(logger *slog.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		resp, err := handler(ctx, req)
		outcome := "success"
		if err != nil {
			outcome = "failure"
		}
		fields := []any{
			"module", "grpc",
			"layer", "adapter",
			"operation", info.FullMethod,
			"outcome", outcome,
			"code", status.Code(err).String(),
		}
		if err != nil {
			logger.WarnContext(ctx, "grpc call failed", append(fields, "error", err.Error())...)
			return resp, err
		}
		logger.InfoContext(ctx, "grpc call completed", fields...)
		return resp, nil
	}
}

var _ billingv1.BillingServiceServer = (*BillingServer)(nil)
