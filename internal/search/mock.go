package search

import (
	"strings"

	"github.com/collegiate-app/collegiate/internal/model"
)

// Bundled dataset served when the catalog is unreachable, so the search
// screen still has something to show offline.

func intPtr(v int) *int { return &v }

func floatPtr(v float64) *float64 { return &v }

var mockColleges = []model.College{
	{
		ID: 100654, Name: "Stanford University", City: "Stanford", State: "CA",
		Website:        "https://www.stanford.edu",
		AcceptanceRate: floatPtr(0.0368), StudentSize: intPtr(7645),
		TuitionInState: intPtr(56169), TuitionOutOfState: intPtr(56169),
		SAT75th: intPtr(1570), ACT75th: intPtr(35),
	},
	{
		ID: 166027, Name: "Harvard University", City: "Cambridge", State: "MA",
		Website:        "https://www.harvard.edu",
		AcceptanceRate: floatPtr(0.0324), StudentSize: intPtr(7153),
		TuitionInState: intPtr(55587), TuitionOutOfState: intPtr(55587),
		SAT75th: intPtr(1580), ACT75th: intPtr(36),
	},
	{
		ID: 110635, Name: "University of California-Berkeley", City: "Berkeley", State: "CA",
		Website:        "https://www.berkeley.edu",
		AcceptanceRate: floatPtr(0.1148), StudentSize: intPtr(30980),
		TuitionInState: intPtr(14226), TuitionOutOfState: intPtr(44008),
		SAT75th: intPtr(1530), ACT75th: intPtr(35),
	},
	{
		ID: 110662, Name: "University of California-Los Angeles", City: "Los Angeles", State: "CA",
		Website:        "https://www.ucla.edu",
		AcceptanceRate: floatPtr(0.0857), StudentSize: intPtr(31636),
		TuitionInState: intPtr(13258), TuitionOutOfState: intPtr(43040),
		SAT75th: intPtr(1510), ACT75th: intPtr(34),
	},
	{
		ID: 170976, Name: "University of Michigan-Ann Arbor", City: "Ann Arbor", State: "MI",
		Website:        "https://www.umich.edu",
		AcceptanceRate: floatPtr(0.1774), StudentSize: intPtr(31329),
		TuitionInState: intPtr(16178), TuitionOutOfState: intPtr(53232),
		SAT75th: intPtr(1530), ACT75th: intPtr(34),
	},
	{
		ID: 228778, Name: "The University of Texas at Austin", City: "Austin", State: "TX",
		Website:        "https://www.utexas.edu",
		AcceptanceRate: floatPtr(0.3114), StudentSize: intPtr(40916),
		TuitionInState: intPtr(11698), TuitionOutOfState: intPtr(41070),
		SAT75th: intPtr(1480), ACT75th: intPtr(33),
	},
	{
		ID: 134130, Name: "University of Florida", City: "Gainesville", State: "FL",
		Website:        "https://www.ufl.edu",
		AcceptanceRate: floatPtr(0.2969), StudentSize: intPtr(34552),
		TuitionInState: intPtr(6381), TuitionOutOfState: intPtr(28659),
		SAT75th: intPtr(1470), ACT75th: intPtr(33),
	},
	{
		ID: 199120, Name: "University of North Carolina at Chapel Hill", City: "Chapel Hill", State: "NC",
		Website:        "https://www.unc.edu",
		AcceptanceRate: floatPtr(0.1933), StudentSize: intPtr(19743),
		TuitionInState: intPtr(8998), TuitionOutOfState: intPtr(37558),
		SAT75th: intPtr(1500), ACT75th: intPtr(33),
	},
	{
		ID: 126614, Name: "Colorado State University Global", City: "Aurora", State: "CO",
		Website:        "https://csuglobal.edu",
		AcceptanceRate: floatPtr(0.97), StudentSize: intPtr(9565),
		TuitionInState: intPtr(8400), TuitionOutOfState: intPtr(8400),
		OnlineOnly: true,
	},
	{
		ID: 433387, Name: "Western Governors University", City: "Salt Lake City", State: "UT",
		Website:        "https://www.wgu.edu",
		AcceptanceRate: floatPtr(1.0), StudentSize: intPtr(150116),
		TuitionInState: intPtr(7452), TuitionOutOfState: intPtr(7452),
		OnlineOnly: true,
	},
	{
		ID: 216339, Name: "Temple University", City: "Philadelphia", State: "PA",
		Website:        "https://www.temple.edu",
		AcceptanceRate: floatPtr(0.7169), StudentSize: intPtr(25279),
		TuitionInState: intPtr(18864), TuitionOutOfState: intPtr(32376),
		SAT75th: intPtr(1310), ACT75th: intPtr(30),
	},
	{
		ID: 123961, Name: "Pepperdine University", City: "Malibu", State: "CA",
		Website:        "https://www.pepperdine.edu",
		AcceptanceRate: floatPtr(0.49), StudentSize: intPtr(3627),
		TuitionInState: intPtr(62390), TuitionOutOfState: intPtr(62390),
	},
}

// FilterMock applies the current filters to the bundled dataset and
// runs the result through the same quality and sort stages as live data.
func FilterMock(f Filters) []model.College {
	query := strings.ToLower(strings.TrimSpace(f.Query))
	state := strings.ToUpper(strings.TrimSpace(f.State))

	out := make([]model.College, 0, len(mockColleges))
	for _, c := range mockColleges {
		if query != "" {
			haystack := strings.ToLower(c.Name + " " + c.City + " " + c.State)
			if !strings.Contains(haystack, query) {
				continue
			}
		}
		if state != "" && c.State != state {
			continue
		}
		if f.OnlineOnly && !c.OnlineOnly {
			continue
		}
		if c.LogoURL == "" {
			c.LogoURL = LogoURL(c.Website)
		}
		out = append(out, c)
	}

	out = FilterQuality(out, state != "")
	Sort(out, f.SortBy, f.SortOrder)
	return out
}
