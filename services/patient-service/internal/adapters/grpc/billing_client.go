package grpc

import (
	"context"
	"errors"
	"fmt"
	"time"

	billingv1 "github.com/patientmesh/mesh/contracts/billing/v1"
	"github.com/patientmesh/mesh/services/patient-service/internal/ports"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
)

const defaultBillingTimeout = 3 * time.Second

type BillingClient struct {
	conn    *grpc.ClientConn
	client  *billingv1.BillingServiceClient
	timeout time.Duration
}

// NewBillingClient does not contact the billing service. Connection problems
// surface on the first call as a network failure.
func NewBillingClient(endpoint string, timeout time.Duration, opts ...grpc.DialOption) (*BillingClient, error) {
	if timeout <= 0 {
		timeout = defaultBillingTimeout
	}
	dialOpts := append([]grpc.DialOption{grpc.WithTransportCredentials(insecure.NewCredentials())}, opts...)
	conn, err := grpc.NewClient(endpoint, dialOpts...)
	if err != nil {
		return nil, fmt.Errorf("dial billing grpc: %w", err)
	}
	return &BillingClient{
		conn:    conn,
		client:  billingv1.NewBillingServiceClient(conn),
		timeout: timeout,
	}, nil
}

func (c *BillingClient) Close() error {
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

func (c *BillingClient) ProvisionAccount(ctx context.Context, req ports.BillingAccountRequest) (ports.BillingAccount, error) {
	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	resp, err := c.client.CreateBillingAccount(callCtx, billingv1.CreateBillingAccountRequest{
		PatientID: req.PatientID,
		Name:      req.Name,
		Email:     req.Email,
	})
	if err != nil {
		return ports.BillingAccount{}, &ports.BillingCallError{Kind: classifyBillingError(err), Err: err}
	}
	return ports.BillingAccount{AccountID: resp.AccountID, Status: resp.Status}, nil
}

func classifyBillingError(err error) ports.BillingFailureKind {
	if errors.Is(err, context.DeadlineExceeded) {
		return ports.BillingFailureTimeout
	}
	st, ok := status.FromError(err)
	if !ok {
		return ports.BillingFailureNetwork
	}
	switch st.Code() {
	case codes.DeadlineExceeded:
		return ports.BillingFailureTimeout
	case codes.Unavailable, codes.Canceled:
		return ports.BillingFailureNetwork
	default:
		return ports.BillingFailureRejected
	}
}

var _ ports.BillingClient = (*BillingClient)(nil)
