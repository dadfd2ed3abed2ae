package domain

// NotAvailable is written in place of any text field whose DOM node is missing.
const NotAvailable = "N/A"

// Listing is the extraction output in document order.
type Listing []CompanyGroup

type CompanyGroup struct {
	Name               string        `json:"companyName"`
	Tagline            string        `json:"companyTagline"`
	EmployeeCountLabel string        `json:"employeeCount"`
	Roles              []RoleListing `json:"availableJobs"`
}

type RoleListing struct {
	Title             string   `json:"jobName"`
	ApplyURL          string   `json:"link"`
	CompensationLabel string   `json:"compensation"`
	Locations         []string `json:"locations"`
	PostedLabel       string   `json:"posted"`
}

// RoleCount sums the roles across every company in the listing.
func (l Listing) RoleCount() int {
	n := 0
	for _, c := range l {
		n += len(c.Roles)
	}
	return n
}
