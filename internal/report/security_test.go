package report

import (
	"testing"
	"time"

	"github.com/kedare/netscope/internal/gcp"
	"github.com/kedare/netscope/internal/inventory"
	"github.com/stretchr/testify/require"
)

func firewall(name string, created time.Time) inventory.FirewallRule {
	return inventory.FirewallRule{
		Resource: inventory.Resource{
			Kind: gcp.KindFirewallRule, Name: name, ProjectID: "p1", Key: "p1/" + name, CreatedAt: created, NetworkName: "vpc",
		},
		Direction: "INGRESS",
		Priority:  1000,
	}
}

func TestRecentFirewallRules(t *testing.T) {
	rules := []inventory.FirewallRule{
		firewall("old", testNow.Add(-100*time.Hour)),
		firewall("yesterday", testNow.Add(-24*time.Hour)),
		firewall("hour-ago", testNow.Add(-time.Hour)),
		firewall("undated", time.Time{}),
	}

	table := RecentFirewallRules(rules, Options{Now: testNow})
	require.Equal(t, []any{"hour-ago", "yesterday"}, table.Column("name"))

	wide := RecentFirewallRules(rules, Options{Now: testNow, RecentWindow: 200 * time.Hour})
	require.Equal(t, []any{"hour-ago", "yesterday", "old"}, wide.Column("name"))
}

func TestSecurityPolicyRules(t *testing.T) {
	policies := []inventory.SecurityPolicy{
		{
			Resource: inventory.Resource{Kind: gcp.KindSecurityPolicy, Name: "waf", Key: "p1/waf"},
			Rules: []inventory.SecurityPolicyRule{
				{Priority: 100, Action: "deny(403)", Expressions: []string{"evaluatePreconfiguredExpr('xss')"}},
				{Priority: 2147483647, Action: "allow", Expressions: []string{"*"}, Description: "default"},
			},
		},
		{
			Resource: inventory.Resource{Kind: gcp.KindSecurityPolicy, Name: "edge", Key: "p1/edge"},
			Rules: []inventory.SecurityPolicyRule{
				{Priority: 10, Action: "allow", Preview: true, Expressions: []string{"10.0.0.0/8", "192.168.0.0/16"}},
			},
		},
	}

	table := SecurityPolicyRules(policies)

	require.Equal(t, []any{"edge", "waf", "waf"}, table.Column("policy"))
	require.Equal(t, "10.0.0.0/8; 192.168.0.0/16", table.Rows[0]["match"])
	require.Equal(t, []any{int64(10), int64(100), int64(2147483647)}, table.Column("priority"))
}

func TestAccessConfigs(t *testing.T) {
	exposed := nic("p1", "us-east1-b", "web", "p1/vpc", "p1/us-east1/s1", "10.0.0.2")
	exposed.ExternalAddress = "34.1.2.3"
	exposed.AccessConfigName = "External NAT"
	exposed.AccessConfigType = "ONE_TO_ONE_NAT"

	internal := nic("p1", "us-east1-b", "db", "p1/vpc", "p1/us-east1/s1", "10.0.0.3")

	second := nic("p1", "us-east1-b", "app", "p1/vpc", "p1/us-east1/s1", "10.0.0.4")
	second.ExternalAddress = "34.4.4.4"

	table := AccessConfigs([]inventory.Instance{
		instance("p1", "us-east1-b", "web", exposed),
		instance("p1", "us-east1-b", "db", internal),
		instance("p1", "us-east1-b", "app", second),
	})

	require.Equal(t, []any{"app", "web"}, table.Column("name"))
	require.Equal(t, "ONE_TO_ONE_NAT", table.Rows[1]["access_config_type"])
	require.Equal(t, "us-east1", table.Rows[1]["region"])
}
