//go:build pact
// +build pact

package pacttest

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

const (
	ProviderName = "pet-adoption-api"
	ConsumerName = "adoption-portal"

	// GatewayProviderName is the hosted checkout the API itself consumes.
	GatewayProviderName = "sslcommerz"
	GatewayConsumerName = "pet-adoption-api"

	StatePetApproved  = "approved pet pact-pet exists"
	StatePetMissing   = "no pet with id ghost-pet"
	StateWalletFunded = "adopter pact-user has 100.00 in the wallet"
	StatePetPricey    = "approved pet pact-pricey-pet costs more than any wallet holds"

	StateGatewayAccepts = "store credentials are valid"
	StateGatewayRejects = "store credentials are invalid"
)

const (
	ApprovedPetID = "pact-pet"
	MissingPetID  = "ghost-pet"
	PetName       = "Biscuit"
	PetFee        = "25.00"
	PriceyPetID   = "pact-pricey-pet"
	PriceyPetFee  = "5000.00"

	AdopterID       = "pact-user-id"
	AdopterUsername = "pact-user"
	AdopterToken    = "pact-session-token"

	UnknownTransaction = "TXN20240101000000DEADBEEF"

	StoreID       = "pactstore"
	StorePassword = "pactstore@ssl"
	TransactionID = "8f0e7a4c-pact-tran"
	SessionKey    = "PACTSESSIONKEY"
	GatewayPage   = "https://sandbox.sslcommerz.com/EasyCheckOut/testcde" + SessionKey
)

// PactDir returns the workspace-level directory for generated pact files.
func PactDir(t testing.TB) string {
	t.Helper()
	dir := filepath.Join(projectRoot(t), "pacts")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("create pact dir: %v", err)
	}
	return dir
}

// PactFile returns the pact file the portal consumer writes for the API.
func PactFile(t testing.TB) string {
	t.Helper()
	return filepath.Join(PactDir(t), ConsumerName+"-"+ProviderName+".json")
}

// LogDir returns the log output directory for pact-go.
func LogDir(t testing.TB) string {
	t.Helper()
	dir := filepath.Join(projectRoot(t), "bin", "pact-logs")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("create pact log dir: %v", err)
	}
	return dir
}

// projectRoot walks up from this file to the workspace root.
func projectRoot(t testing.TB) string {
	t.Helper()
	_, file, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("cannot determine caller for pact paths")
	}
	return filepath.Clean(filepath.Join(filepath.Dir(file), "..", ".."))
}
