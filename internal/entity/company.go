package entity

// Media types emitted in Company.Media.
const (
	MediaImage = "image"
	MediaVideo = "video"
)

// Media is one image or video attached to a company.
type Media struct {
	Type string `json:"type"`
	URL  string `json:"url"`
}

// Company represents one directory entry derived from a spreadsheet row.
// Coordinates stay strings; consumers treat unparseable values as no location.
type Company struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Category     string   `json:"category"`
	Tagline      string   `json:"tagline"`
	Description  string   `json:"description"`
	Address      string   `json:"address"`
	Phone        string   `json:"phone"`
	PhoneLink    string   `json:"phoneLink,omitempty"`
	Email        string   `json:"email"`
	Website      string   `json:"website"`
	WebsiteLink  string   `json:"websiteLink,omitempty"`
	MapLink      string   `json:"mapLink"`
	Lat          string   `json:"lat"`
	Lon          string   `json:"lon"`
	Media        []Media  `json:"media"`
	DebugHeaders []string `json:"_debug_headers,omitempty"`
}

// HasLocation reports whether both coordinates resolved.
func (c Company) HasLocation() bool {
	return c.Lat != "" && c.Lon != ""
}
