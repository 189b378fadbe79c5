package hubspot

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/goliatone/go-integrations/core"
)

type objectRecord struct {
	ID         string            `json:"id"`
	Properties map[string]string `json:"properties"`
}

type objectListResponse struct {
	Results []objectRecord `json:"results"`
}

type objectPage struct {
	path       string
	properties []string
	mapRecord  func(objectRecord) core.IntegrationItem
}

// ListItems fetches one bounded page of contacts and one of companies and
// returns them as normalized items. Pages that fail or come back non-200 are
// skipped rather than surfaced as partial failures.
func (p *Provider) ListItems(ctx context.Context, accessToken string) ([]core.IntegrationItem, error) {
	if p == nil {
		return nil, fmt.Errorf("providers/hubspot: provider is nil")
	}
	accessToken = strings.TrimSpace(accessToken)
	if accessToken == "" {
		return nil, fmt.Errorf("providers/hubspot: access token is required")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	pages := []objectPage{
		{
			path:       "/crm/v3/objects/contacts",
			properties: []string{"firstname", "lastname", "email"},
			mapRecord:  contactItem,
		},
		{
			path:       "/crm/v3/objects/companies",
			properties: []string{"name", "domain"},
			mapRecord:  companyItem,
		},
	}

	items := []core.IntegrationItem{}
	for _, page := range pages {
		records, ok := p.listObjects(ctx, accessToken, page.path, page.properties)
		if !ok {
			continue
		}
		for _, record := range records {
			items = append(items, page.mapRecord(record))
		}
	}
	return items, nil
}

func (p *Provider) listObjects(ctx context.Context, accessToken, path string, properties []string) ([]objectRecord, bool) {
	values := url.Values{}
	values.Set("limit", strconv.Itoa(defaultPageLimit))
	values.Set("properties", strings.Join(properties, ","))
	endpoint := p.cfg.APIBaseURL + path + "?" + values.Encode()

	requestCtx, cancel := context.WithTimeout(ctx, p.cfg.RequestTimeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(requestCtx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, false
	}
	httpReq.Header.Set("Authorization", "Bearer "+accessToken)
	httpReq.Header.Set("Accept", "application/json")

	response, err := p.httpClient.Do(httpReq)
	if err != nil {
		return nil, false
	}
	defer response.Body.Close()

	if response.StatusCode != http.StatusOK {
		return nil, false
	}

	body, err := io.ReadAll(io.LimitReader(response.Body, maxResponseBodyBytes))
	if err != nil {
		return nil, false
	}

	var decoded objectListResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return nil, false
	}
	return decoded.Results, true
}

// contactItem derives a display name by trying first+last name, then email,
// then the raw record id.
func contactItem(record objectRecord) core.IntegrationItem {
	first := record.Properties["firstname"]
	last := record.Properties["lastname"]
	name := strings.TrimSpace(strings.TrimSpace(first) + " " + strings.TrimSpace(last))
	if name == "" {
		name = strings.TrimSpace(record.Properties["email"])
	}
	if name == "" {
		name = record.ID
	}
	return core.IntegrationItem{
		ID:   record.ID + "_contact",
		Type: core.ItemTypeContact,
		Name: name,
	}
}

// companyItem derives a display name by trying the company name, then its
// domain, then the raw record id.
func companyItem(record objectRecord) core.IntegrationItem {
	name := strings.TrimSpace(record.Properties["name"])
	if name == "" {
		name = strings.TrimSpace(record.Properties["domain"])
	}
	if name == "" {
		name = record.ID
	}
	return core.IntegrationItem{
		ID:   record.ID + "_company",
		Type: core.ItemTypeCompany,
		Name: name,
	}
}
