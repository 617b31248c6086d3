package report

import "time"

const (
	DefaultCertificateThreshold = 20 * 24 * time.Hour
	DefaultServicesRangeMarker  = "gke-services"
	DefaultRecentWindow         = 72 * time.Hour
	computeAccountDomain        = "developer.gserviceaccount.com"
)

// Options carries every tunable of the reports. It is passed explicitly to
// each report call.
type Options struct {
	Now time.Time
	// CertificateThreshold selects certificates expiring before Now+threshold.
	CertificateThreshold time.Duration
	// HostProjectID restricts shared VPC reports to one host project.
	HostProjectID       string
	ServicesRangeMarker string
	// RecentWindow selects firewall rules created after Now-RecentWindow.
	RecentWindow time.Duration
	// PrivateServices lists the service producer names matched against peerings.
	PrivateServices map[string]string
}

// DefaultOptions returns the defaults evaluated at now.
func DefaultOptions(now time.Time) Options {
	return Options{
		Now:                  now,
		CertificateThreshold: DefaultCertificateThreshold,
		ServicesRangeMarker:  DefaultServicesRangeMarker,
		RecentWindow:         DefaultRecentWindow,
	}
}

func (o Options) withDefaults() Options {
	if o.Now.IsZero() {
		o.Now = time.Now()
	}
	if o.CertificateThreshold == 0 {
		o.CertificateThreshold = DefaultCertificateThreshold
	}
	if o.ServicesRangeMarker == "" {
		o.ServicesRangeMarker = DefaultServicesRangeMarker
	}
	if o.RecentWindow == 0 {
		o.RecentWindow = DefaultRecentWindow
	}

	return o
}
