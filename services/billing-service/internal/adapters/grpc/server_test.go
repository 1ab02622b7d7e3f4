package grpc

import (
	"context"
	"net"
	"sync"
	"testing"

	billingv1 "github.com/patientmesh/mesh/contracts/billing/v1"
	"github.com/patientmesh/mesh/services/billing-service/internal/adapters/cache"
	"github.com/patientmesh/mesh/services/billing-service/internal/application"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
)

func newBillingConn(t *testing.T) *grpc.ClientConn {
	t.Helper()
	lis := bufconn.Listen(1 << 20)
	server := grpc.NewServer()
	svc := application.NewService(application.Dependencies{Accounts: cache.NewMemoryAccountRegistry()})
	Register(server, NewBillingServer(svc))
	go func() { _ = server.Serve(lis) }()
	t.Cleanup(server.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
	)
	if err != nil {
		t.Fatalf("dial bufnet: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func TestCreateBillingAccountIsIdempotentPerPatient(t *testing.T) {
	t.Parallel()

	client := billingv1.NewBillingServiceClient(newBillingConn(t))
	req := billingv1.CreateBillingAccountRequest{PatientID: "p-1", Name: "Jane Doe", Email: "jane@x.com"}

	var (
		wg  sync.WaitGroup
		mu  sync.Mutex
		ids = map[string]int{}
	)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			resp, err := client.CreateBillingAccount(context.Background(), req)
			if err != nil {
				t.Errorf("create account: %v", err)
				return
			}
			mu.Lock()
			ids[resp.AccountID]++
			mu.Unlock()
			if resp.Status != "ACTIVE" {
				t.Errorf("unexpected status %q", resp.Status)
			}
		}()
	}
	wg.Wait()
	if len(ids) != 1 {
		t.Fatalf("expected a single account id for one patient, got %v", ids)
	}

	other, err := client.CreateBillingAccount(context.Background(), billingv1.CreateBillingAccountRequest{PatientID: "p-2", Name: "John", Email: "john@x.com"})
	if err != nil {
		t.Fatalf("create second account: %v", err)
	}
	if _, dup := ids[other.AccountID]; dup {
		t.Fatalf("distinct patients must get distinct accounts")
	}
}

func TestCreateBillingAccountRejectsBadInput(t *testing.T) {
	t.Parallel()

	client := billingv1.NewBillingServiceClient(newBillingConn(t))
	cases := []billingv1.CreateBillingAccountRequest{
		{PatientID: "", Name: "Jane", Email: "jane@x.com"},
		{PatientID: "p-1", Name: " ", Email: "jane@x.com"},
		{PatientID: "p-1", Name: "Jane", Email: "nope"},
	}
	for _, req := range cases {
		_, err := client.CreateBillingAccount(context.Background(), req)
		if status.Code(err) != codes.InvalidArgument {
			t.Fatalf("expected InvalidArgument for %+v, got %v", req, err)
		}
	}
}
