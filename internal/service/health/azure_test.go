package health

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dpetrov/infracopilot/backend/internal/config"
)

type staticCredential struct{}

func (staticCredential) GetToken(context.Context, policy.TokenRequestOptions) (azcore.AccessToken, error) {
	return azcore.AccessToken{Token: "test-token", ExpiresOn: time.Now().Add(time.Hour)}, nil
}

func newARMServer(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer test-token" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")

		switch {
		case strings.Contains(r.URL.Path, "instanceView"):
			w.Write([]byte(`{"statuses":[{"code":"ProvisioningState/succeeded"},{"code":"PowerState/running"}]}`))
		case strings.Contains(r.URL.Path, "virtualMachines"):
			w.Write([]byte(`{"value":[{"name":"vm-ok","id":"/vm-ok"},{"name":"vm-weird","id":"/vm-weird"}]}`))
		case strings.Contains(r.URL.Path, "Microsoft.Web/sites"):
			w.Write([]byte(`{"value":[{"name":"app-1","properties":{"state":"Running"}},{"name":"app-2","properties":{"state":"Stopped"}}]}`))
		case strings.Contains(r.URL.Path, "storageAccounts"):
			w.WriteHeader(http.StatusInternalServerError)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
}

func TestAzureCollectorListsResources(t *testing.T) {
	// vm-weird has no instanceView PowerState entry in this stub, so both
	// VMs resolve through the same handler; make vm-weird's view empty.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch {
		case strings.Contains(r.URL.Path, "vm-weird/instanceView"):
			w.Write([]byte(`{"statuses":[]}`))
		case strings.Contains(r.URL.Path, "instanceView"):
			w.Write([]byte(`{"statuses":[{"code":"PowerState/running"}]}`))
		case strings.Contains(r.URL.Path, "virtualMachines"):
			w.Write([]byte(`{"value":[{"name":"vm-ok","id":"/vm-ok"},{"name":"vm-weird","id":"/vm-weird"}]}`))
		case strings.Contains(r.URL.Path, "Microsoft.Web/sites"):
			w.Write([]byte(`{"value":[{"name":"app-1","properties":{"state":"Running"}},{"name":"app-2","properties":{"state":"Stopped"}}]}`))
		case strings.Contains(r.URL.Path, "storageAccounts"):
			w.Write([]byte(`{"value":[{"name":"store-1","properties":{"provisioningState":"Succeeded"}}]}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	collector := NewAzureCollector(config.AzureConfig{
		SubscriptionID:    "sub",
		ResourceGroup:     "rg",
		BaseURL:           srv.URL,
		VMAPIVersion:      "2024-03-01",
		WebAPIVersion:     "2024-04-01",
		StorageAPIVersion: "2023-01-01",
	}, staticCredential{})

	report, err := collector.Collect(context.Background())
	require.NoError(t, err)
	assert.True(t, report.Configured)
	assert.Equal(t, "warnings", report.Status)

	require.Len(t, report.VMs, 2)
	assert.Equal(t, "running", report.VMs[0].State)
	assert.Equal(t, "unknown", report.VMs[1].State)

	require.Len(t, report.AppServices, 2)
	require.Len(t, report.StorageAccounts, 1)

	// One warning per degraded resource: the unknown-state VM and the
	// stopped app service.
	assert.Contains(t, report.Warnings, "AZURE: VM vm-weird state=unknown")
	assert.Contains(t, report.Warnings, "AZURE: AppService app-2 state=Stopped")
	assert.Len(t, report.Warnings, 2)
}

func TestAzureCollectorIsolatesResourceTypeFailure(t *testing.T) {
	srv := newARMServer(t)
	defer srv.Close()

	collector := NewAzureCollector(config.AzureConfig{
		SubscriptionID:    "sub",
		ResourceGroup:     "rg",
		BaseURL:           srv.URL,
		VMAPIVersion:      "2024-03-01",
		WebAPIVersion:     "2024-04-01",
		StorageAPIVersion: "2023-01-01",
	}, staticCredential{})

	report, err := collector.Collect(context.Background())
	require.NoError(t, err)

	// Storage listing fails with 500 but VMs and app services still land.
	require.Len(t, report.VMs, 2)
	require.Len(t, report.AppServices, 2)
	assert.Empty(t, report.StorageAccounts)

	var storageWarning bool
	for _, warning := range report.Warnings {
		if strings.Contains(warning, "AZURE: Storage list failed") {
			storageWarning = true
		}
	}
	assert.True(t, storageWarning)
}
