package ingest

import (
	"net/url"
	"strings"

	"github.com/nyaruka/phonenumbers"
	"golang.org/x/net/idna"
)

// DefaultPhoneRegion is used for numbers written without a country code.
const DefaultPhoneRegion = "FI"

var idnaProfile = idna.Lookup

// PhoneLink returns a tel: URI in E.164 form, or "" when the number does not parse.
func PhoneLink(raw, region string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	region = strings.ToUpper(strings.TrimSpace(region))
	if region == "" {
		region = DefaultPhoneRegion
	}
	num, err := phonenumbers.Parse(raw, region)
	if err != nil || !phonenumbers.IsValidNumber(num) {
		return ""
	}
	return "tel:" + phonenumbers.Format(num, phonenumbers.E164)
}

// WebsiteLink returns an absolute http(s) URL with an ASCII host, adding
// https:// when the sheet omits the scheme. Unusable input yields "".
func WebsiteLink(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}
	parsed, err := url.Parse(raw)
	if err != nil || parsed.Host == "" {
		return ""
	}
	scheme := strings.ToLower(parsed.Scheme)
	if scheme != "http" && scheme != "https" {
		return ""
	}

	host := parsed.Hostname()
	ascii, err := idnaProfile.ToASCII(strings.ToLower(host))
	if err != nil {
		return ""
	}
	if port := parsed.Port(); port != "" {
		ascii = ascii + ":" + port
	}
	parsed.Scheme = scheme
	parsed.Host = ascii
	return parsed.String()
}
