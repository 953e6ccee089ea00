package adapt

import (
	"strings"
	"time"

	"github.com/Masterminds/semver/v3"
	"github.com/pkg/errors"
	"golang.org/x/text/encoding"
)

// ServerContext is a read-only view of the live connection state the
// adaptation layer depends on. ParameterStatus returns the current value of
// a server runtime parameter, or the empty string if the server never
// reported it. The connection layer supplies the implementation; adapttest
// provides a fake for use without a server.
//
// A Map reads parameters once at construction. If the server changes
// DateStyle, IntervalStyle, TimeZone or client_encoding mid-session, a new
// Map must be built for subsequent traffic.
type ServerContext interface {
	ParameterStatus(name string) string
}

// Date component orders derived from DateStyle. The two PG orders use the
// month-name grammar of the Postgres output style.
type dateOrder int

const (
	orderYMD dateOrder = iota
	orderDMY
	orderMDY
	orderPGDM
	orderPGMD
)

// dateFields maps a timestamp order to the purely numeric order used for
// plain dates, which render without month names even in Postgres style.
func (o dateOrder) dateFields() dateOrder {
	switch o {
	case orderPGDM:
		return orderDMY
	case orderPGMD:
		return orderMDY
	}
	return o
}

// serverSettings is the parameter-derived state shared by the codecs of one
// Map. It is fixed at Map construction; codecs never re-read ServerContext.
type serverSettings struct {
	order         dateOrder
	rawDateStyle  string
	intervalStyle string
	hasServer     bool
	location      *time.Location
	encodingName  string
	encoding      encoding.Encoding // nil when the client encoding is UTF8-compatible
	version       int
}

func deriveServerSettings(server ServerContext, log func(level LogLevel, msg string, data map[string]interface{})) (serverSettings, error) {
	settings := serverSettings{
		location:     time.UTC,
		encodingName: "UTF8",
	}

	ds := "ISO, DMY"
	if server != nil {
		settings.hasServer = true
		settings.intervalStyle = server.ParameterStatus("IntervalStyle")

		if s := server.ParameterStatus("DateStyle"); s != "" {
			ds = s
		}

		if name := server.ParameterStatus("TimeZone"); name != "" {
			loc, err := time.LoadLocation(name)
			if err != nil {
				log(LogLevelWarn, "unknown server TimeZone, using UTC", map[string]interface{}{"TimeZone": name, "err": err})
			} else {
				settings.location = loc
			}
		}

		if name := server.ParameterStatus("client_encoding"); name != "" {
			settings.encodingName = normalizeEncodingName(name)
		}

		version, err := parseServerVersion(server.ParameterStatus("server_version"))
		if err != nil {
			log(LogLevelWarn, "unparsable server_version", map[string]interface{}{"err": err})
		}
		settings.version = version
	}

	order, err := parseDateStyle(ds)
	if err != nil {
		return serverSettings{}, err
	}
	settings.order = order
	settings.rawDateStyle = ds

	enc, err := encodingByName(settings.encodingName)
	if err != nil {
		return serverSettings{}, err
	}
	settings.encoding = enc

	return settings, nil
}

// parseDateStyle resolves the component order from the DateStyle parameter,
// e.g. "ISO, DMY" or "Postgres, MDY". Only the leading letter of the style
// and the trailing DMY qualifier are significant, as in the server itself.
func parseDateStyle(ds string) (dateOrder, error) {
	switch {
	case strings.HasPrefix(ds, "I"): // ISO
		return orderYMD, nil
	case strings.HasPrefix(ds, "G"): // German
		return orderDMY, nil
	case strings.HasPrefix(ds, "S"): // SQL
		if strings.HasSuffix(ds, "DMY") {
			return orderDMY, nil
		}
		return orderMDY, nil
	case strings.HasPrefix(ds, "P"): // Postgres
		if strings.HasSuffix(ds, "DMY") {
			return orderPGDM, nil
		}
		return orderPGMD, nil
	}
	return 0, interfaceErrorf("unexpected DateStyle: %s", ds)
}

// parseServerVersion converts the server_version parameter to the integer
// form used by the server itself: 140002 for "14.2", 90624 for "9.6.24".
// The empty string maps to 0.
func parseServerVersion(s string) (int, error) {
	if s == "" {
		return 0, nil
	}

	// Strip decorations such as "13.3 (Debian 13.3-1.pgdg100+1)".
	v, err := semver.NewVersion(strings.Fields(s)[0])
	if err != nil {
		return 0, errors.Errorf("invalid server_version %q", s)
	}

	major := int(v.Major())
	if major >= 10 {
		return major*10000 + int(v.Minor()), nil
	}
	return major*10000 + int(v.Minor())*100 + int(v.Patch()), nil
}
