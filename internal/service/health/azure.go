package health

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"

	"github.com/dpetrov/infracopilot/backend/internal/config"
	"github.com/dpetrov/infracopilot/backend/internal/model/health"
)

const azureManagementScope = "https://management.azure.com/.default"

// AzureCollector enumerates VMs, web apps and storage accounts in one
// resource group over the ARM REST API. The credential is built once at
// startup and injected.
type AzureCollector struct {
	cfg    config.AzureConfig
	cred   azcore.TokenCredential
	client *http.Client
}

// NewAzureCollector creates the cloud inventory collector. cred may be nil
// when the cloud checks are not configured.
func NewAzureCollector(cfg config.AzureConfig, cred azcore.TokenCredential) *AzureCollector {
	return &AzureCollector{
		cfg:    cfg,
		cred:   cred,
		client: &http.Client{Timeout: 30 * time.Second},
	}
}

// Collect returns the cloud sub-report. Missing configuration is a valid
// non-error state; auth failure is reported inside the payload, not raised.
// Each resource-type listing failure degrades to one warning so the other
// two listings still run.
func (c *AzureCollector) Collect(ctx context.Context) (health.CloudReport, error) {
	report := health.CloudReport{
		VMs:             []health.VM{},
		AppServices:     []health.AppService{},
		StorageAccounts: []health.StorageAccount{},
		Warnings:        []string{},
	}

	if !c.cfg.Configured() {
		report.Status = "not_configured"
		report.Message = "Set AZURE_SUBSCRIPTION_ID and AZURE_RESOURCE_GROUP to enable Azure checks."
		return report, nil
	}
	report.Configured = true

	token, err := c.token(ctx)
	if err != nil {
		report.Status = "auth_failed"
		report.Message = fmt.Sprintf("Azure auth failed: %v", err)
		report.Warnings = append(report.Warnings, fmt.Sprintf("AZURE: auth_failed - %v", err))
		return report, nil
	}

	if vms, err := c.listVMs(ctx, token, &report.Warnings); err != nil {
		report.Warnings = append(report.Warnings, fmt.Sprintf("AZURE: VM list failed - %v", err))
	} else {
		report.VMs = vms
	}

	if apps, err := c.listAppServices(ctx, token, &report.Warnings); err != nil {
		report.Warnings = append(report.Warnings, fmt.Sprintf("AZURE: AppService list failed - %v", err))
	} else {
		report.AppServices = apps
	}

	if storages, err := c.listStorageAccounts(ctx, token, &report.Warnings); err != nil {
		report.Warnings = append(report.Warnings, fmt.Sprintf("AZURE: Storage list failed - %v", err))
	} else {
		report.StorageAccounts = storages
	}

	report.Status = "ok"
	if len(report.Warnings) > 0 {
		report.Status = "warnings"
	}
	report.Message = "Azure checks executed."
	return report, nil
}

func (c *AzureCollector) token(ctx context.Context) (string, error) {
	if c.cred == nil {
		return "", fmt.Errorf("credential not initialized")
	}
	tok, err := c.cred.GetToken(ctx, policy.TokenRequestOptions{Scopes: []string{azureManagementScope}})
	if err != nil {
		return "", err
	}
	return tok.Token, nil
}

type armList struct {
	Value []json.RawMessage `json:"value"`
}

func (c *AzureCollector) listVMs(ctx context.Context, token string, warnings *[]string) ([]health.VM, error) {
	listURL := fmt.Sprintf(
		"%s/subscriptions/%s/resourceGroups/%s/providers/Microsoft.Compute/virtualMachines?api-version=%s",
		c.cfg.BaseURL, url.PathEscape(c.cfg.SubscriptionID), url.PathEscape(c.cfg.ResourceGroup), c.cfg.VMAPIVersion)

	var list armList
	if err := c.getJSON(ctx, listURL, token, &list); err != nil {
		return nil, err
	}

	vms := make([]health.VM, 0, len(list.Value))
	for _, raw := range list.Value {
		var item struct {
			Name string `json:"name"`
			ID   string `json:"id"`
		}
		if err := json.Unmarshal(raw, &item); err != nil {
			continue
		}

		state := c.vmPowerState(ctx, token, item.ID)
		vms = append(vms, health.VM{Name: item.Name, State: state})
		switch state {
		case "running", "stopped", "deallocated":
		default:
			*warnings = append(*warnings, fmt.Sprintf("AZURE: VM %s state=%s", item.Name, state))
		}
	}
	return vms, nil
}

// vmPowerState resolves the instance view's PowerState code. Any failure
// leaves the state unknown rather than failing the VM listing.
func (c *AzureCollector) vmPowerState(ctx context.Context, token, vmID string) string {
	ivURL := fmt.Sprintf("%s%s/instanceView?api-version=%s", c.cfg.BaseURL, vmID, c.cfg.VMAPIVersion)

	var view struct {
		Statuses []struct {
			Code string `json:"code"`
		} `json:"statuses"`
	}
	if err := c.getJSON(ctx, ivURL, token, &view); err != nil {
		return "unknown"
	}

	for _, status := range view.Statuses {
		if strings.HasPrefix(status.Code, "PowerState/") {
			return strings.SplitN(status.Code, "/", 2)[1]
		}
	}
	return "unknown"
}

func (c *AzureCollector) listAppServices(ctx context.Context, token string, warnings *[]string) ([]health.AppService, error) {
	listURL := fmt.Sprintf(
		"%s/subscriptions/%s/resourceGroups/%s/providers/Microsoft.Web/sites?api-version=%s",
		c.cfg.BaseURL, url.PathEscape(c.cfg.SubscriptionID), url.PathEscape(c.cfg.ResourceGroup), c.cfg.WebAPIVersion)

	var list armList
	if err := c.getJSON(ctx, listURL, token, &list); err != nil {
		return nil, err
	}

	apps := make([]health.AppService, 0, len(list.Value))
	for _, raw := range list.Value {
		var item struct {
			Name       string `json:"name"`
			Properties struct {
				State string `json:"state"`
			} `json:"properties"`
		}
		if err := json.Unmarshal(raw, &item); err != nil {
			continue
		}

		state := item.Properties.State
		if state == "" {
			state = "unknown"
		}
		apps = append(apps, health.AppService{Name: item.Name, State: state})
		if !strings.EqualFold(state, "running") {
			*warnings = append(*warnings, fmt.Sprintf("AZURE: AppService %s state=%s", item.Name, state))
		}
	}
	return apps, nil
}

func (c *AzureCollector) listStorageAccounts(ctx context.Context, token string, warnings *[]string) ([]health.StorageAccount, error) {
	listURL := fmt.Sprintf(
		"%s/subscriptions/%s/resourceGroups/%s/providers/Microsoft.Storage/storageAccounts?api-version=%s",
		c.cfg.BaseURL, url.PathEscape(c.cfg.SubscriptionID), url.PathEscape(c.cfg.ResourceGroup), c.cfg.StorageAPIVersion)

	var list armList
	if err := c.getJSON(ctx, listURL, token, &list); err != nil {
		return nil, err
	}

	storages := make([]health.StorageAccount, 0, len(list.Value))
	for _, raw := range list.Value {
		var item struct {
			Name       string `json:"name"`
			Properties struct {
				ProvisioningState string `json:"provisioningState"`
			} `json:"properties"`
		}
		if err := json.Unmarshal(raw, &item); err != nil {
			continue
		}

		state := item.Properties.ProvisioningState
		if state == "" {
			state = "unknown"
		}
		storages = append(storages, health.StorageAccount{Name: item.Name, ProvisioningState: state})
		if !strings.EqualFold(state, "succeeded") {
			*warnings = append(*warnings, fmt.Sprintf("AZURE: Storage %s provisioningState=%s", item.Name, state))
		}
	}
	return storages, nil
}

func (c *AzureCollector) getJSON(ctx context.Context, rawURL, token string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
