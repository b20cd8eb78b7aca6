package backends

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"strings"

	"github.com/jmertz88/agent_gateway/internal/mcp/dispatch"
	"github.com/jmertz88/agent_gateway/internal/mcp/protocol"
)

// Resolver is the subset of net.Resolver the DNS backend needs
type Resolver interface {
	LookupHost(ctx context.Context, host string) ([]string, error)
	LookupCNAME(ctx context.Context, host string) (string, error)
	LookupMX(ctx context.Context, name string) ([]*net.MX, error)
}

// DNSLookup resolves domain names to their records
type DNSLookup struct {
	resolver Resolver
	logger   *slog.Logger
}

// NewDNSLookup creates a DNS backend using the default resolver
func NewDNSLookup(logger *slog.Logger) *DNSLookup {
	return &DNSLookup{resolver: net.DefaultResolver, logger: logger}
}

// NewDNSLookupWithResolver creates a DNS backend with an injected resolver
func NewDNSLookupWithResolver(resolver Resolver, logger *slog.Logger) *DNSLookup {
	return &DNSLookup{resolver: resolver, logger: logger}
}

// Binding returns the tool binding for DNS lookups
func (d *DNSLookup) Binding() dispatch.ToolBinding {
	return dispatch.ToolBinding{
		Tool: protocol.Tool{
			Name:        "dns_lookup",
			Description: "Resolve a domain name and return its address, CNAME, and MX records",
			InputSchema: protocol.InputSchema{
				Type: "object",
				Properties: map[string]protocol.Property{
					"domain": {
						Type:        "string",
						Description: "Domain name to resolve (e.g. example.com)",
					},
				},
				Required: []string{"domain"},
			},
		},
		Aliases: []string{"domain", "dns_name", "hostname"},
		Invoker: d,
	}
}

// Invoke resolves the domain. A name with no records is a not-found domain
// failure; resolver transport faults are upstream failures.
func (d *DNSLookup) Invoke(ctx context.Context, value string) dispatch.Result {
	domain := strings.TrimSpace(strings.ToLower(value))
	if domain == "" {
		return dispatch.Fail(dispatch.ErrMissingInput, "domain is empty")
	}

	addrs, err := d.resolver.LookupHost(ctx, domain)
	if err != nil {
		var dnsErr *net.DNSError
		if errors.As(err, &dnsErr) && dnsErr.IsNotFound {
			return dispatch.Failf(dispatch.ErrNotFound, "no records found for %s", domain)
		}
		d.logger.Warn("host lookup failed",
			slog.String("domain", domain),
			slog.String("error", err.Error()),
		)
		return dispatch.Failf(dispatch.ErrUpstreamUnavailable, "lookup failed for %s: %v", domain, err)
	}
	if len(addrs) == 0 {
		return dispatch.Failf(dispatch.ErrNotFound, "no records found for %s", domain)
	}

	details := map[string]interface{}{
		"domain":    domain,
		"ip":        addrs[0],
		"addresses": strings.Join(addrs, ", "),
	}

	// CNAME and MX are informational; their failures do not fail the lookup
	if cname, err := d.resolver.LookupCNAME(ctx, domain); err == nil {
		cname = strings.TrimSuffix(cname, ".")
		if cname != "" && cname != domain {
			details["cname"] = cname
		}
	}

	if mxRecords, err := d.resolver.LookupMX(ctx, domain); err == nil && len(mxRecords) > 0 {
		hosts := make([]string, 0, len(mxRecords))
		for _, mx := range mxRecords {
			hosts = append(hosts, strings.TrimSuffix(mx.Host, "."))
		}
		details["mx"] = strings.Join(hosts, ", ")
	}

	d.logger.Info("domain resolved",
		slog.String("domain", domain),
		slog.Int("address_count", len(addrs)),
	)

	return dispatch.Success(details)
}
