package report

import (
	"math"
	"sort"
	"time"

	"github.com/kedare/netscope/internal/inventory"
)

// CertificateCandidates lists certificates to renew: not flagged as expired
// at normalization, expiring before Now+CertificateThreshold and referenced by at least one
// target proxy. Unattached certificates are presumed unused. Rows are sorted
// by expiry, soonest first.
func CertificateCandidates(certs []inventory.Certificate, proxies []inventory.TargetProxy, opts Options) *Table {
	opts = opts.withDefaults()
	table := NewTable("certificates", "Certificates To Renew",
		"key", "name", "project_id", "region", "common_name", "issuer", "expires_at", "days_left", "target_proxies")

	usedBy := map[string][]string{}
	for _, proxy := range proxies {
		for _, key := range proxy.CertificateKeys {
			if !contains(usedBy[key], proxy.Name) {
				usedBy[key] = append(usedBy[key], proxy.Name)
			}
		}
	}

	candidates := make([]inventory.Certificate, 0)
	for _, cert := range inventory.Dedupe(certs) {
		if cert.IsExpired || !cert.ExpiresWithin(opts.Now, opts.CertificateThreshold) {
			continue
		}

		if len(usedBy[cert.Key]) == 0 {
			continue
		}

		candidates = append(candidates, cert)
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].ExpiresAt.Before(candidates[j].ExpiresAt)
	})

	for _, cert := range candidates {
		proxiesUsing := append([]string(nil), usedBy[cert.Key]...)
		sort.Strings(proxiesUsing)

		table.Add(cert.Key, cert.Name, cert.ProjectID, cert.Region, cert.CommonName, cert.Issuer,
			cert.ExpiresAt, daysLeft(opts.Now, cert.ExpiresAt), proxiesUsing)
	}

	return table
}

func daysLeft(now, expires time.Time) int {
	return int(math.Floor(expires.Sub(now).Hours() / 24))
}
